package service

import (
	"context"
	"time"

	"github.com/1608-EQUIPOSISTEMAS/SystemFormsWe-Backend/pkg/logger"
	"github.com/1608-EQUIPOSISTEMAS/SystemFormsWe-Backend/pkg/monitoring"

	"go.uber.org/zap"
)

const (
	certificationQueueSize = 100
	certificationTimeout   = 2 * time.Minute
)

// CertificateIssuer is the external authority that actually issues a
// certificate. Implemented by OdooService; faked in tests.
type CertificateIssuer interface {
	CertifyStudent(ctx context.Context, student OdooStudent, courseName string, finalScore float64, completedAt time.Time) (*IssuedCertificate, error)
}

// CertificateArchiver stores a copy of the issued document. Optional.
type CertificateArchiver interface {
	ArchiveCertificate(ctx context.Context, responseUUID, pdfURL string) error
}

// CertificationJob is one passed attempt awaiting certificate issuance.
type CertificationJob struct {
	ResponseID   uint
	ResponseUUID string
	Student      OdooStudent
	CourseName   string
	FinalScore   float64
	CompletedAt  time.Time
}

// certificateStore is the slice of the response repository the worker needs.
type certificateStore interface {
	HasCertificate(responseID uint) (bool, error)
	SetCertificate(responseID uint, certificateID int64, pdfURL string) (bool, error)
}

// CertificationService drains the job queue on a single goroutine. Issuance
// is idempotent per response: a response that already holds a certificate id
// is skipped before calling out, and the conditional update refuses to
// overwrite one written by a concurrent worker.
type CertificationService struct {
	Issuer    CertificateIssuer
	Archiver  CertificateArchiver
	Responses certificateStore

	jobs       chan CertificationJob
	done       chan struct{}
	maxRetries int
	retryDelay time.Duration
}

func NewCertificationService(issuer CertificateIssuer, archiver CertificateArchiver, responses certificateStore, maxRetries int) *CertificationService {
	if maxRetries <= 0 {
		maxRetries = 3
	}
	return &CertificationService{
		Issuer:     issuer,
		Archiver:   archiver,
		Responses:  responses,
		jobs:       make(chan CertificationJob, certificationQueueSize),
		done:       make(chan struct{}),
		maxRetries: maxRetries,
		retryDelay: 2 * time.Second,
	}
}

// Enqueue hands a job to the worker without blocking the request path.
// Returns false when the queue is full.
func (s *CertificationService) Enqueue(job CertificationJob) bool {
	select {
	case s.jobs <- job:
		return true
	default:
		return false
	}
}

// Run drains the queue until Stop closes it. Meant to be launched as a
// goroutine at startup.
func (s *CertificationService) Run() {
	defer close(s.done)
	for job := range s.jobs {
		s.process(job)
	}
}

// Stop closes the queue and waits for in-flight jobs to finish.
func (s *CertificationService) Stop() {
	close(s.jobs)
	<-s.done
}

func (s *CertificationService) process(job CertificationJob) {
	has, err := s.Responses.HasCertificate(job.ResponseID)
	if err != nil {
		logger.Log.Error("certification: state check failed",
			zap.String("responseUuid", job.ResponseUUID), zap.Error(err))
	} else if has {
		logger.Log.Info("certification: already issued, skipping",
			zap.String("responseUuid", job.ResponseUUID))
		monitoring.CertificationOutcomes.WithLabelValues("skipped").Inc()
		return
	}

	cert, err := s.issueWithRetry(job)
	if err != nil {
		logger.Log.Error("certification failed after retries",
			zap.String("responseUuid", job.ResponseUUID),
			zap.String("course", job.CourseName),
			zap.Error(err))
		monitoring.CertificationOutcomes.WithLabelValues("failed").Inc()
		return
	}

	updated, err := s.Responses.SetCertificate(job.ResponseID, cert.ID, cert.PDFURL)
	if err != nil {
		logger.Log.Error("certification: could not record certificate",
			zap.String("responseUuid", job.ResponseUUID),
			zap.Int64("certificateId", cert.ID), zap.Error(err))
		monitoring.CertificationOutcomes.WithLabelValues("record_failed").Inc()
		return
	}
	if !updated {
		logger.Log.Warn("certification: response already had a certificate",
			zap.String("responseUuid", job.ResponseUUID),
			zap.Int64("certificateId", cert.ID))
		monitoring.CertificationOutcomes.WithLabelValues("skipped").Inc()
		return
	}

	logger.Log.Info("certificate issued",
		zap.String("responseUuid", job.ResponseUUID),
		zap.Int64("certificateId", cert.ID))
	monitoring.CertificationOutcomes.WithLabelValues("issued").Inc()

	if s.Archiver != nil && cert.PDFURL != "" {
		ctx, cancel := context.WithTimeout(context.Background(), certificationTimeout)
		defer cancel()
		if err := s.Archiver.ArchiveCertificate(ctx, job.ResponseUUID, cert.PDFURL); err != nil {
			logger.Log.Warn("certification: archive failed",
				zap.String("responseUuid", job.ResponseUUID), zap.Error(err))
		}
	}
}

func (s *CertificationService) issueWithRetry(job CertificationJob) (*IssuedCertificate, error) {
	var lastErr error
	for attempt := 1; attempt <= s.maxRetries; attempt++ {
		ctx, cancel := context.WithTimeout(context.Background(), certificationTimeout)
		cert, err := s.Issuer.CertifyStudent(ctx, job.Student, job.CourseName, job.FinalScore, job.CompletedAt)
		cancel()
		if err == nil {
			return cert, nil
		}
		lastErr = err
		logger.Log.Warn("certification attempt failed",
			zap.String("responseUuid", job.ResponseUUID),
			zap.Int("attempt", attempt), zap.Error(err))
		if attempt < s.maxRetries {
			time.Sleep(time.Duration(attempt) * s.retryDelay)
		}
	}
	return nil, lastErr
}
