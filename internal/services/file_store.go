package services

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/yungbote/doccontrol-backend/internal/observability"
	"github.com/yungbote/doccontrol-backend/internal/platform/gcp"
	"github.com/yungbote/doccontrol-backend/internal/platform/logger"
)

// FileStore persists finalized document artifacts and returns their public URL.
type FileStore interface {
	Store(ctx context.Context, key, contentType string, data []byte) (string, error)
	Delete(ctx context.Context, key string) error
}

type bucketFileStore struct {
	log     *logger.Logger
	bucket  gcp.DocumentBucket
	metrics *observability.Metrics
}

func NewFileStore(log *logger.Logger, bucket gcp.DocumentBucket, metrics *observability.Metrics) FileStore {
	return &bucketFileStore{
		log:     log.With("service", "FileStore"),
		bucket:  bucket,
		metrics: metrics,
	}
}

func (s *bucketFileStore) Store(ctx context.Context, key, contentType string, data []byte) (string, error) {
	if s.bucket == nil {
		return "", fmt.Errorf("object storage not configured")
	}
	start := time.Now()
	err := s.bucket.Upload(ctx, key, contentType, bytes.NewReader(data))
	s.metrics.ObserveStorage("upload", storageStatus(err), time.Since(start))
	if err != nil {
		return "", err
	}
	s.log.Debug("stored object", "key", key, "bytes", len(data))
	return s.bucket.PublicURL(key), nil
}

// Delete treats a missing object as already deleted.
func (s *bucketFileStore) Delete(ctx context.Context, key string) error {
	if s.bucket == nil {
		return fmt.Errorf("object storage not configured")
	}
	start := time.Now()
	err := s.bucket.Delete(ctx, key)
	if errors.Is(err, gcp.ErrObjectNotFound) {
		err = nil
	}
	s.metrics.ObserveStorage("delete", storageStatus(err), time.Since(start))
	return err
}

func storageStatus(err error) string {
	if err != nil {
		return "failure"
	}
	return "success"
}

// Keys are versioned by timestamp so a CDN never serves a stale artifact.
func finalPDFKey(documentID uuid.UUID, at time.Time) string {
	return fmt.Sprintf("documents/%s/final/%d.pdf", documentID, at.UnixNano())
}

func certificateKey(documentID uuid.UUID, at time.Time) string {
	return fmt.Sprintf("documents/%s/certificate/%d.png", documentID, at.UnixNano())
}
