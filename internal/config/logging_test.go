package config

import "testing"

func TestLoadLogDefaults(t *testing.T) {
	cfg, err := LoadLog()
	if err != nil {
		t.Fatalf("LoadLog() error = %v", err)
	}
	if cfg.Level != "info" || cfg.Service != "chip-ledger" || cfg.MaxMB != 10 {
		t.Fatalf("unexpected defaults: %+v", cfg)
	}
	if cfg.Pretty || cfg.File != "" {
		t.Fatalf("pretty output and file logging should be off by default: %+v", cfg)
	}
}

func TestLoadLogOverrides(t *testing.T) {
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("LOG_SERVICE", "ledger-staging")
	t.Setenv("LOG_PRETTY", "true")
	t.Setenv("LOG_FILE", "/tmp/ledger.log")
	t.Setenv("LOG_MAX_MB", "3")

	cfg, err := LoadLog()
	if err != nil {
		t.Fatalf("LoadLog() error = %v", err)
	}
	if cfg.Level != "debug" || cfg.Service != "ledger-staging" || !cfg.Pretty || cfg.File != "/tmp/ledger.log" || cfg.MaxMB != 3 {
		t.Fatalf("unexpected log config: %+v", cfg)
	}
}

func TestLoadLogRejectsBadNumber(t *testing.T) {
	t.Setenv("LOG_MAX_MB", "lots")
	if _, err := LoadLog(); err == nil {
		t.Fatal("expected parse error for LOG_MAX_MB")
	}
}
