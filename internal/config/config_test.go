package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestDefaults(t *testing.T) {
	cfg := newDefaults()

	if cfg.Server.Host != "0.0.0.0" {
		t.Errorf("default host = %q, want 0.0.0.0", cfg.Server.Host)
	}
	if cfg.Server.Port != 8844 {
		t.Errorf("default port = %d, want 8844", cfg.Server.Port)
	}
	if cfg.Backend.Kind != "llama" {
		t.Errorf("default backend = %q, want llama", cfg.Backend.Kind)
	}
	if cfg.Limits.MaxLength != 512 {
		t.Errorf("default max_length = %d, want 512", cfg.Limits.MaxLength)
	}
	if cfg.Limits.MaxItems != 64 {
		t.Errorf("default max_items = %d, want 64", cfg.Limits.MaxItems)
	}
	if cfg.Limits.MaxBodyBytes != 2_000_000 {
		t.Errorf("default max_body_bytes = %d, want 2000000", cfg.Limits.MaxBodyBytes)
	}
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("EMBEDD_CONFIG_PATH", filepath.Join(t.TempDir(), "missing.yaml"))
	t.Setenv("EMBEDD_PORT", "9001")
	t.Setenv("EMBEDD_BACKEND", "deterministic")
	t.Setenv("EMBEDD_MODEL", "test-model")
	t.Setenv("EMBEDD_MAX_ITEMS", "16")
	t.Setenv("EMBEDD_SHUTDOWN_TIMEOUT", "5s")
	t.Setenv("EMBEDD_LOG_LEVEL", "debug")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}

	if cfg.Server.Port != 9001 {
		t.Errorf("port = %d, want 9001", cfg.Server.Port)
	}
	if cfg.Backend.Kind != "deterministic" {
		t.Errorf("backend = %q, want deterministic", cfg.Backend.Kind)
	}
	if cfg.Backend.Model != "test-model" {
		t.Errorf("model = %q, want test-model", cfg.Backend.Model)
	}
	if cfg.Limits.MaxItems != 16 {
		t.Errorf("max_items = %d, want 16", cfg.Limits.MaxItems)
	}
	if time.Duration(cfg.Server.ShutdownTimeout) != 5*time.Second {
		t.Errorf("shutdown_timeout = %v, want 5s", time.Duration(cfg.Server.ShutdownTimeout))
	}
	if cfg.Log.Level != "debug" {
		t.Errorf("log level = %q, want debug", cfg.Log.Level)
	}
}

func TestEnvOverridesIgnoreMalformedValues(t *testing.T) {
	t.Setenv("EMBEDD_CONFIG_PATH", filepath.Join(t.TempDir(), "missing.yaml"))
	t.Setenv("EMBEDD_PORT", "not-a-port")
	t.Setenv("EMBEDD_MAX_ITEMS", "many")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if cfg.Server.Port != 8844 {
		t.Errorf("port = %d, want default 8844", cfg.Server.Port)
	}
	if cfg.Limits.MaxItems != 64 {
		t.Errorf("max_items = %d, want default 64", cfg.Limits.MaxItems)
	}
}

func TestLimitFloors(t *testing.T) {
	t.Setenv("EMBEDD_CONFIG_PATH", filepath.Join(t.TempDir(), "missing.yaml"))
	t.Setenv("EMBEDD_MAX_LENGTH", "2")
	t.Setenv("EMBEDD_MAX_ITEMS", "0")
	t.Setenv("EMBEDD_MAX_BODY_BYTES", "10")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if cfg.Limits.MaxLength != 8 {
		t.Errorf("max_length = %d, want floor 8", cfg.Limits.MaxLength)
	}
	if cfg.Limits.MaxItems != 1 {
		t.Errorf("max_items = %d, want floor 1", cfg.Limits.MaxItems)
	}
	if cfg.Limits.MaxBodyBytes != 1024 {
		t.Errorf("max_body_bytes = %d, want floor 1024", cfg.Limits.MaxBodyBytes)
	}
}

func TestValidateRejectsUnknownBackend(t *testing.T) {
	t.Setenv("EMBEDD_CONFIG_PATH", filepath.Join(t.TempDir(), "missing.yaml"))
	t.Setenv("EMBEDD_BACKEND", "mystery")

	if _, err := Load(); err == nil {
		t.Fatal("Load() accepted unknown backend")
	}
}

func TestValidateRejectsUnknownPrecision(t *testing.T) {
	t.Setenv("EMBEDD_CONFIG_PATH", filepath.Join(t.TempDir(), "missing.yaml"))
	t.Setenv("EMBEDD_PRECISION", "float8")

	if _, err := Load(); err == nil {
		t.Fatal("Load() accepted unknown precision")
	}
}

func TestLoadFromFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "embedd.yaml")
	doc := `
server:
  port: 9100
  read_timeout: 10s
backend:
  kind: deterministic
  model: file-model
limits:
  max_items: 8
log:
  level: warn
`
	if err := os.WriteFile(path, []byte(doc), 0o600); err != nil {
		t.Fatalf("writing config: %v", err)
	}

	cfg, err := LoadFromFile(path)
	if err != nil {
		t.Fatalf("LoadFromFile() error: %v", err)
	}

	if cfg.Server.Port != 9100 {
		t.Errorf("port = %d, want 9100", cfg.Server.Port)
	}
	if time.Duration(cfg.Server.ReadTimeout) != 10*time.Second {
		t.Errorf("read_timeout = %v, want 10s", time.Duration(cfg.Server.ReadTimeout))
	}
	if cfg.Backend.Kind != "deterministic" {
		t.Errorf("backend = %q, want deterministic", cfg.Backend.Kind)
	}
	if cfg.Limits.MaxItems != 8 {
		t.Errorf("max_items = %d, want 8", cfg.Limits.MaxItems)
	}
	// Values absent from the file keep their defaults.
	if cfg.Limits.MaxLength != 512 {
		t.Errorf("max_length = %d, want default 512", cfg.Limits.MaxLength)
	}
}

func TestEnvOverridesFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "embedd.yaml")
	if err := os.WriteFile(path, []byte("server:\n  port: 9100\n"), 0o600); err != nil {
		t.Fatalf("writing config: %v", err)
	}
	t.Setenv("EMBEDD_PORT", "9200")

	cfg, err := LoadFromFile(path)
	if err != nil {
		t.Fatalf("LoadFromFile() error: %v", err)
	}
	if cfg.Server.Port != 9200 {
		t.Errorf("port = %d, want env override 9200", cfg.Server.Port)
	}
}
