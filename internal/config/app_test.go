package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadDotEnvMissingFileIgnored(t *testing.T) {
	if err := LoadDotEnv(filepath.Join(t.TempDir(), "missing.env")); err != nil {
		t.Fatalf("LoadDotEnv() error = %v", err)
	}
}

func TestLoadDotEnvDoesNotOverride(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.env")
	if err := os.WriteFile(path, []byte("POSTGRES_DSN=postgres://from-file\nHTTP_ADDR=:9999\n"), 0o600); err != nil {
		t.Fatalf("write env file: %v", err)
	}
	t.Setenv("POSTGRES_DSN", "postgres://from-env")
	t.Setenv("HTTP_ADDR", "")
	os.Unsetenv("HTTP_ADDR")

	if err := LoadDotEnv(path); err != nil {
		t.Fatalf("LoadDotEnv() error = %v", err)
	}
	cfg, err := LoadApp()
	if err != nil {
		t.Fatalf("LoadApp() error = %v", err)
	}
	if cfg.Server.PostgresDSN != "postgres://from-env" {
		t.Fatalf("PostgresDSN = %q, want env value", cfg.Server.PostgresDSN)
	}
	if cfg.Server.HTTPAddr != ":9999" {
		t.Fatalf("HTTPAddr = %q, want :9999 from file", cfg.Server.HTTPAddr)
	}
}
