package gcp

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/yungbote/doccontrol-backend/internal/platform/envutil"
	"github.com/yungbote/doccontrol-backend/internal/platform/logger"
)

type StorageMode string

const (
	StorageModeGCS         StorageMode = "gcs"
	StorageModeGCSEmulator StorageMode = "gcs_emulator"
)

func (m StorageMode) Supported() bool {
	return m == StorageModeGCS || m == StorageModeGCSEmulator
}

func (m StorageMode) Emulated() bool {
	return m == StorageModeGCSEmulator
}

// StorageConfig describes where finalized document artifacts are written.
type StorageConfig struct {
	Mode          StorageMode
	EmulatorHost  string
	ModeInferred  bool
	Bucket        string
	CDNDomain     string
	PublicBaseURL string
}

func (cfg StorageConfig) ModeSource() string {
	if cfg.ModeInferred {
		return "storage_emulator_host"
	}
	return "explicit_or_default"
}

// ConfigError names the offending variable so startup logs point at the fix.
type ConfigError struct {
	Var   string
	Value string
	Want  string
	Cause error
}

func (e *ConfigError) Error() string {
	if e == nil {
		return "invalid object storage config"
	}
	if e.Value == "" {
		return fmt.Sprintf("missing %s (%s)", e.Var, e.Want)
	}
	return fmt.Sprintf("invalid %s=%q (%s)", e.Var, e.Value, e.Want)
}

func (e *ConfigError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Cause
}

// LoadStorageConfig reads OBJECT_STORAGE_MODE, STORAGE_EMULATOR_HOST,
// DOCUMENT_GCS_BUCKET_NAME, DOCUMENT_CDN_DOMAIN and
// OBJECT_STORAGE_PUBLIC_BASE_URL. An unset mode with an emulator host
// selects the emulator.
func LoadStorageConfig(log *logger.Logger) (StorageConfig, error) {
	cfg := StorageConfig{
		EmulatorHost: strings.TrimRight(envutil.String("STORAGE_EMULATOR_HOST", "", log), "/"),
		Bucket:       envutil.String("DOCUMENT_GCS_BUCKET_NAME", "", log),
		CDNDomain:    envutil.String("DOCUMENT_CDN_DOMAIN", "", log),
	}

	rawMode := envutil.String("OBJECT_STORAGE_MODE", "", log)
	switch mode := StorageMode(strings.ToLower(rawMode)); {
	case mode == "" && cfg.EmulatorHost != "":
		cfg.Mode = StorageModeGCSEmulator
		cfg.ModeInferred = true
	case mode == "":
		cfg.Mode = StorageModeGCS
	default:
		cfg.Mode = mode
	}
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}

	base := envutil.String("OBJECT_STORAGE_PUBLIC_BASE_URL", "", log)
	switch {
	case base != "":
		if !absoluteURL(base) {
			return cfg, &ConfigError{Var: "OBJECT_STORAGE_PUBLIC_BASE_URL", Value: base, Want: "absolute URL like http://localhost:4443"}
		}
		cfg.PublicBaseURL = strings.TrimRight(base, "/")
	case cfg.Mode.Emulated():
		cfg.PublicBaseURL = cfg.EmulatorHost
	}
	return cfg, nil
}

func (cfg StorageConfig) Validate() error {
	if !cfg.Mode.Supported() {
		return &ConfigError{
			Var:   "OBJECT_STORAGE_MODE",
			Value: string(cfg.Mode),
			Want:  fmt.Sprintf("allowed: %q, %q", StorageModeGCS, StorageModeGCSEmulator),
		}
	}
	if strings.TrimSpace(cfg.Bucket) == "" {
		return &ConfigError{Var: "DOCUMENT_GCS_BUCKET_NAME", Want: "bucket for finalized documents"}
	}
	if !cfg.Mode.Emulated() {
		return nil
	}
	if cfg.EmulatorHost == "" {
		return &ConfigError{Var: "STORAGE_EMULATOR_HOST", Want: "required by " + string(StorageModeGCSEmulator)}
	}
	if !absoluteURL(cfg.EmulatorHost) {
		return &ConfigError{Var: "STORAGE_EMULATOR_HOST", Value: cfg.EmulatorHost, Want: "absolute URL like http://fake-gcs:4443"}
	}
	return nil
}

func absoluteURL(raw string) bool {
	u, err := url.Parse(raw)
	return err == nil && strings.TrimSpace(u.Scheme) != "" && strings.TrimSpace(u.Host) != ""
}
