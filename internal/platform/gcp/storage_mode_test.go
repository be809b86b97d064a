package gcp

import (
	"errors"
	"testing"
)

func setStorageEnv(t *testing.T, mode, emulator, base string) {
	t.Helper()
	t.Setenv("OBJECT_STORAGE_MODE", mode)
	t.Setenv("STORAGE_EMULATOR_HOST", emulator)
	t.Setenv("OBJECT_STORAGE_PUBLIC_BASE_URL", base)
	t.Setenv("DOCUMENT_GCS_BUCKET_NAME", "dc-documents")
	t.Setenv("DOCUMENT_CDN_DOMAIN", "")
}

func TestLoadStorageConfigDefaultsToGCS(t *testing.T) {
	setStorageEnv(t, "", "", "")

	cfg, err := LoadStorageConfig(nil)
	if err != nil {
		t.Fatalf("LoadStorageConfig: %v", err)
	}
	if cfg.Mode != StorageModeGCS {
		t.Fatalf("mode: want=%q got=%q", StorageModeGCS, cfg.Mode)
	}
	if cfg.ModeInferred || cfg.PublicBaseURL != "" {
		t.Fatalf("unexpected config: %+v", cfg)
	}
}

func TestLoadStorageConfigExplicitGCSIgnoresEmulatorHost(t *testing.T) {
	setStorageEnv(t, "GCS", "http://fake-gcs:4443", "")

	cfg, err := LoadStorageConfig(nil)
	if err != nil {
		t.Fatalf("LoadStorageConfig: %v", err)
	}
	if cfg.Mode != StorageModeGCS || cfg.ModeInferred {
		t.Fatalf("mode: want=%q got=%q inferred=%v", StorageModeGCS, cfg.Mode, cfg.ModeInferred)
	}
}

func TestLoadStorageConfigInfersEmulator(t *testing.T) {
	setStorageEnv(t, "", "http://fake-gcs:4443/", "")

	cfg, err := LoadStorageConfig(nil)
	if err != nil {
		t.Fatalf("LoadStorageConfig: %v", err)
	}
	if cfg.Mode != StorageModeGCSEmulator || !cfg.ModeInferred {
		t.Fatalf("mode: want=%q got=%q inferred=%v", StorageModeGCSEmulator, cfg.Mode, cfg.ModeInferred)
	}
	if got := cfg.ModeSource(); got != "storage_emulator_host" {
		t.Fatalf("ModeSource: want=%q got=%q", "storage_emulator_host", got)
	}
	if cfg.PublicBaseURL != "http://fake-gcs:4443" {
		t.Fatalf("public base: want=%q got=%q", "http://fake-gcs:4443", cfg.PublicBaseURL)
	}
}

func TestLoadStorageConfigPublicBaseOverride(t *testing.T) {
	setStorageEnv(t, "gcs_emulator", "http://fake-gcs:4443", "http://localhost:4443/")

	cfg, err := LoadStorageConfig(nil)
	if err != nil {
		t.Fatalf("LoadStorageConfig: %v", err)
	}
	if cfg.PublicBaseURL != "http://localhost:4443" {
		t.Fatalf("public base: want=%q got=%q", "http://localhost:4443", cfg.PublicBaseURL)
	}
}

func TestLoadStorageConfigRejectsBadInput(t *testing.T) {
	cases := []struct {
		name     string
		mode     string
		emulator string
		base     string
		bucket   string
		wantVar  string
	}{
		{name: "unknown mode", mode: "local", bucket: "b", wantVar: "OBJECT_STORAGE_MODE"},
		{name: "missing bucket", mode: "gcs", wantVar: "DOCUMENT_GCS_BUCKET_NAME"},
		{name: "missing emulator host", mode: "gcs_emulator", bucket: "b", wantVar: "STORAGE_EMULATOR_HOST"},
		{name: "relative emulator host", mode: "gcs_emulator", emulator: "fake-gcs:4443", bucket: "b", wantVar: "STORAGE_EMULATOR_HOST"},
		{name: "relative public base", mode: "gcs", base: "localhost:4443", bucket: "b", wantVar: "OBJECT_STORAGE_PUBLIC_BASE_URL"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			setStorageEnv(t, tc.mode, tc.emulator, tc.base)
			t.Setenv("DOCUMENT_GCS_BUCKET_NAME", tc.bucket)

			_, err := LoadStorageConfig(nil)
			var cfgErr *ConfigError
			if !errors.As(err, &cfgErr) {
				t.Fatalf("want *ConfigError got=%v", err)
			}
			if cfgErr.Var != tc.wantVar {
				t.Fatalf("var: want=%q got=%q", tc.wantVar, cfgErr.Var)
			}
		})
	}
}
