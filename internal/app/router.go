package app

import (
	"github.com/1608-EQUIPOSISTEMAS/SystemFormsWe-Backend/internal/config"
	"github.com/1608-EQUIPOSISTEMAS/SystemFormsWe-Backend/internal/middleware"
	"github.com/1608-EQUIPOSISTEMAS/SystemFormsWe-Backend/pkg/monitoring"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

func (a *App) registerRoutes(router *gin.Engine, c *controllers, cfg *config.Config) {
	router.GET("/metrics", monitoring.PrometheusHandler())
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	api := router.Group("/api")
	{
		api.GET("/health", c.health.HealthCheck)

		public := api.Group("/public")
		{
			public.GET("/forms/:uuid", c.form.GetPublicForm)
			public.GET("/forms/:uuid/attempt-status", c.response.CheckAttempt)
			public.POST("/responses/submit", c.response.Submit)
			public.GET("/responses/:uuid/result", c.response.GetResult)
			public.POST("/validate-student", c.response.ValidateStudent)
			public.GET("/certificate/:uuid", c.response.GetCertificate)
		}

		admin := api.Group("/admin")
		admin.Use(middleware.AuthMiddleware(cfg))
		{
			admin.GET("/responses", c.response.List)
			admin.GET("/responses/:id", c.response.GetByID)
			admin.DELETE("/responses/:id", middleware.RequireRole("admin"), c.response.Delete)

			admin.GET("/notifications", c.notification.List)
			admin.PUT("/notifications/:id/read", c.notification.MarkRead)
		}
	}
}
