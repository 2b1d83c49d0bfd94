package app

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/1608-EQUIPOSISTEMAS/SystemFormsWe-Backend/internal/config"
	"github.com/1608-EQUIPOSISTEMAS/SystemFormsWe-Backend/internal/controller"
	"github.com/1608-EQUIPOSISTEMAS/SystemFormsWe-Backend/internal/repository"
	"github.com/1608-EQUIPOSISTEMAS/SystemFormsWe-Backend/internal/service"
	"github.com/1608-EQUIPOSISTEMAS/SystemFormsWe-Backend/pkg/configwatcher"
	"github.com/1608-EQUIPOSISTEMAS/SystemFormsWe-Backend/pkg/database"
	"github.com/1608-EQUIPOSISTEMAS/SystemFormsWe-Backend/pkg/logger"
	"github.com/1608-EQUIPOSISTEMAS/SystemFormsWe-Backend/pkg/monitoring"
	"github.com/1608-EQUIPOSISTEMAS/SystemFormsWe-Backend/pkg/security"
	"github.com/1608-EQUIPOSISTEMAS/SystemFormsWe-Backend/pkg/tracing"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type App struct {
	Config   *config.Config
	Router   *gin.Engine
	DB       *gorm.DB
	Redis    *redis.Client
	services *services
}

type repositories struct {
	form         *repository.FormRepository
	response     *repository.ResponseRepository
	notification *repository.NotificationRepository
}

type services struct {
	form          *service.FormService
	response      *service.ResponseService
	certification *service.CertificationService
	odoo          *service.OdooService
	storage       *service.StorageService
	notification  *service.NotificationService
}

type controllers struct {
	form         *controller.FormController
	response     *controller.ResponseController
	notification *controller.NotificationController
	health       *controller.HealthController
}

func (a *App) initRepositories(db *gorm.DB) *repositories {
	return &repositories{
		form:         repository.NewFormRepository(db),
		response:     repository.NewResponseRepository(db),
		notification: repository.NewNotificationRepository(db),
	}
}

func (a *App) initServices(repos *repositories, cfg *config.Config, rdb *redis.Client) *services {
	s := &services{}

	storage, err := service.NewStorageService(&cfg.Storage)
	if err != nil {
		logger.Log.Fatal("Failed to initialize object storage", zap.Error(err))
	}
	if storage == nil {
		logger.Log.Info("Object storage disabled, certificates will not be archived")
	}
	s.storage = storage

	s.odoo = service.NewOdooService(&cfg.Odoo)
	s.notification = service.NewNotificationService(repos.notification)

	var archiver service.CertificateArchiver
	if s.storage != nil {
		archiver = s.storage
	}
	s.certification = service.NewCertificationService(s.odoo, archiver, repos.response, cfg.Odoo.MaxRetries)
	go s.certification.Run()

	selector := service.NewQuestionSelector()
	s.form = service.NewFormService(repos.form, selector)
	s.response = service.NewResponseService(repos.form, repos.response, selector, s.certification, s.notification, rdb)

	return s
}

func (a *App) initControllers(s *services, db *gorm.DB) *controllers {
	return &controllers{
		form:         controller.NewFormController(s.form),
		response:     controller.NewResponseController(s.response, s.odoo, s.storage),
		notification: controller.NewNotificationController(s.notification),
		health:       controller.NewHealthController(db),
	}
}

func (a *App) setupMiddlewares(router *gin.Engine, cfg *config.Config) {
	router.Use(security.CORS(cfg.CORS.AllowedOrigins))
	router.Use(security.Secure())

	maxRequests := cfg.RateLimit.MaxRequests
	if maxRequests <= 0 {
		maxRequests = 300
	}
	window := time.Duration(cfg.RateLimit.WindowMinutes) * time.Minute
	if window <= 0 {
		window = time.Minute
	}
	router.Use(security.RateLimiter(maxRequests, window))

	if cfg.Tracing.Enabled {
		router.Use(tracing.GinMiddleware())
	}

	router.Use(monitoring.MetricsMiddleware())
}

func NewApp(cfg *config.Config) *App {
	logger.InitLogger(cfg)

	logger.Log.Info("Logger initialized successfully")

	db, err := database.InitDB(&cfg.Database)
	if err != nil {
		logger.Log.Fatal("Failed to initialize database", zap.Error(err))
	}

	rdb, err := database.InitRedis(&cfg.Redis)
	if err != nil {
		// Redis only backs the submission lock; the unique index still
		// protects attempts, so start degraded instead of dying.
		logger.Log.Error("Failed to initialize redis, continuing without submission locks", zap.Error(err))
		rdb = nil
	}

	app := &App{
		Config: cfg,
		DB:     db,
		Redis:  rdb,
	}

	repos := app.initRepositories(db)
	services := app.initServices(repos, cfg, rdb)
	app.services = services
	controllers := app.initControllers(services, db)

	monitoring.Init()

	if cfg.Server.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.Default()
	app.Router = router

	app.setupMiddlewares(router, cfg)

	if cfg.Tracing.Enabled {
		if _, err := tracing.InitTracer("formswe-backend", cfg.Tracing.CollectorEndpoint); err != nil {
			logger.Log.Fatal("Failed to initialize tracing", zap.Error(err))
		}
	}

	app.registerRoutes(router, controllers, cfg)

	// The Odoo service account password rotates periodically; pick up the
	// new credentials without a restart.
	go configwatcher.WatchConfig("configs/config.yaml", func() {
		fresh, err := config.LoadConfig("configs")
		if err != nil {
			logger.Log.Error("config reload failed, keeping previous values", zap.Error(err))
			return
		}
		cfg.Odoo.Login = fresh.Odoo.Login
		cfg.Odoo.Password = fresh.Odoo.Password
		logger.Log.Info("config reloaded")
	})

	return app
}

func (a *App) Run() {
	srv := &http.Server{
		Addr:    ":" + a.Config.Server.Port,
		Handler: a.Router,
	}

	go func() {
		log.Printf("Server running on port %s", a.Config.Server.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("listen: %s\n", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")

	// Drain pending certification jobs before the process exits so a passed
	// exam submitted seconds before shutdown still gets its certificate.
	if a.services != nil && a.services.certification != nil {
		a.services.certification.Stop()
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal("Server forced to shutdown:", err)
	}

	log.Println("Server exiting")
}
