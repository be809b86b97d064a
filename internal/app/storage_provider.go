package app

import (
	"context"
	"errors"
	"fmt"

	"github.com/yungbote/doccontrol-backend/internal/platform/gcp"
	"github.com/yungbote/doccontrol-backend/internal/platform/logger"
)

var newDocumentBucket = gcp.NewDocumentBucket

type StorageBootstrapErrorCode string

const (
	StorageBootstrapErrorInvalidMode         StorageBootstrapErrorCode = "invalid_mode"
	StorageBootstrapErrorMissingBucket       StorageBootstrapErrorCode = "missing_bucket"
	StorageBootstrapErrorMissingEmulatorHost StorageBootstrapErrorCode = "missing_emulator_host"
	StorageBootstrapErrorInvalidEmulatorHost StorageBootstrapErrorCode = "invalid_emulator_host"
	StorageBootstrapErrorInvalidPublicURL    StorageBootstrapErrorCode = "invalid_public_url"
	StorageBootstrapErrorConnectFailed       StorageBootstrapErrorCode = "connect_failed"
)

type StorageBootstrapError struct {
	Code         StorageBootstrapErrorCode
	Mode         string
	EmulatorHost string
	Cause        error
}

func (e *StorageBootstrapError) Error() string {
	if e == nil {
		return "object storage bootstrap failed"
	}
	return fmt.Sprintf(
		"object storage bootstrap failed (code=%s mode=%q emulator_host=%q): %v",
		e.Code,
		e.Mode,
		e.EmulatorHost,
		e.Cause,
	)
}

func (e *StorageBootstrapError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Cause
}

// resolveDocumentBucket loads the storage config and connects the bucket that
// holds finalized PDFs and certificates.
func resolveDocumentBucket(ctx context.Context, log *logger.Logger) (gcp.DocumentBucket, error) {
	storageCfg, err := gcp.LoadStorageConfig(log)
	if err != nil {
		classified := classifyStorageBootstrapError(storageCfg, err)
		log.Error(
			"Object storage config invalid",
			"mode", storageCfg.Mode,
			"emulator_host", storageCfg.EmulatorHost,
			"error_code", storageBootstrapErrorCode(classified),
			"error", err,
		)
		return nil, classified
	}

	log.Info(
		"Selecting object storage provider",
		"mode", storageCfg.Mode,
		"mode_source", storageCfg.ModeSource(),
		"emulator_host", storageCfg.EmulatorHost,
		"bucket", storageCfg.Bucket,
	)

	bucket, err := newDocumentBucket(ctx, log, storageCfg)
	if err != nil {
		classified := classifyStorageBootstrapError(storageCfg, err)
		log.Error(
			"Object storage provider bootstrap failed",
			"mode", storageCfg.Mode,
			"mode_source", storageCfg.ModeSource(),
			"emulator_host", storageCfg.EmulatorHost,
			"error_code", storageBootstrapErrorCode(classified),
			"error", classified,
		)
		return nil, classified
	}
	return bucket, nil
}

func classifyStorageBootstrapError(storageCfg gcp.StorageConfig, err error) error {
	code := StorageBootstrapErrorConnectFailed
	var cfgErr *gcp.ConfigError
	if errors.As(err, &cfgErr) {
		switch cfgErr.Var {
		case "OBJECT_STORAGE_MODE":
			code = StorageBootstrapErrorInvalidMode
		case "DOCUMENT_GCS_BUCKET_NAME":
			code = StorageBootstrapErrorMissingBucket
		case "STORAGE_EMULATOR_HOST":
			code = StorageBootstrapErrorInvalidEmulatorHost
			if cfgErr.Value == "" {
				code = StorageBootstrapErrorMissingEmulatorHost
			}
		case "OBJECT_STORAGE_PUBLIC_BASE_URL":
			code = StorageBootstrapErrorInvalidPublicURL
		}
	}
	return &StorageBootstrapError{
		Code:         code,
		Mode:         string(storageCfg.Mode),
		EmulatorHost: storageCfg.EmulatorHost,
		Cause:        err,
	}
}

func storageBootstrapErrorCode(err error) StorageBootstrapErrorCode {
	var bootstrapErr *StorageBootstrapError
	if errors.As(err, &bootstrapErr) && bootstrapErr.Code != "" {
		return bootstrapErr.Code
	}
	return StorageBootstrapErrorConnectFailed
}
