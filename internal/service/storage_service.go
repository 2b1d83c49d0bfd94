package service

import (
	"context"
	"fmt"
	"io"
	"net/http"

	"github.com/1608-EQUIPOSISTEMAS/SystemFormsWe-Backend/internal/config"
	"github.com/1608-EQUIPOSISTEMAS/SystemFormsWe-Backend/internal/util"
	"github.com/1608-EQUIPOSISTEMAS/SystemFormsWe-Backend/pkg/logger"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"go.uber.org/zap"
)

// StorageService keeps a local copy of issued certificate PDFs in object
// storage, so a result view can serve the document even when the Odoo
// backend is down. Disabled (nil) when no endpoint is configured.
type StorageService struct {
	client *minio.Client
	bucket string
	http   *http.Client
}

func NewStorageService(cfg *config.StorageConfig) (*StorageService, error) {
	if cfg.MinioEndpoint == "" {
		return nil, nil
	}

	client, err := minio.New(cfg.MinioEndpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.MinioAccessID, cfg.MinioSecret, ""),
		Secure: cfg.MinioUseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("minio init: %w", err)
	}

	bucket := cfg.MinioBucket
	if bucket == "" {
		bucket = "certificates"
	}

	return &StorageService{
		client: client,
		bucket: bucket,
		http:   &http.Client{},
	}, nil
}

func certificateObjectName(responseUUID string) string {
	return fmt.Sprintf("certificates/%s.pdf", responseUUID)
}

// ArchiveCertificate downloads the PDF from its source URL and stores it
// under the response's uuid.
func (s *StorageService) ArchiveCertificate(ctx context.Context, responseUUID, pdfURL string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pdfURL, nil)
	if err != nil {
		return err
	}

	resp, err := s.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("certificate download: status %d", resp.StatusCode)
	}

	_, err = s.client.PutObject(ctx, s.bucket, certificateObjectName(responseUUID), resp.Body, resp.ContentLength,
		minio.PutObjectOptions{ContentType: "application/pdf"})
	if err != nil {
		return fmt.Errorf("certificate upload: %w", err)
	}

	logger.Log.Info("certificate archived", zap.String("responseUuid", responseUUID))
	return nil
}

// FetchCertificate streams the archived PDF back. Callers own the reader.
func (s *StorageService) FetchCertificate(ctx context.Context, responseUUID string) (io.ReadCloser, error) {
	obj, err := s.client.GetObject(ctx, s.bucket, certificateObjectName(responseUUID), minio.GetObjectOptions{})
	if err != nil {
		return nil, err
	}

	// GetObject is lazy; Stat forces the existence check.
	if _, err := obj.Stat(); err != nil {
		obj.Close()
		errResp := minio.ToErrorResponse(err)
		if errResp.Code == "NoSuchKey" {
			return nil, util.ErrCertificateNotFound
		}
		return nil, err
	}

	return obj, nil
}
