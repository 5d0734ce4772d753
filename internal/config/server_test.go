package config

import "testing"

func TestLoadServerDefaults(t *testing.T) {
	t.Setenv("POSTGRES_DSN", "postgres://localhost:5432/ledger?sslmode=disable")

	cfg, err := LoadServer()
	if err != nil {
		t.Fatalf("LoadServer() error = %v", err)
	}
	if cfg.HTTPAddr != ":8080" {
		t.Fatalf("HTTPAddr = %q, want :8080", cfg.HTTPAddr)
	}
	if cfg.PollIntervalMS != 2500 {
		t.Fatalf("PollIntervalMS = %d, want 2500", cfg.PollIntervalMS)
	}
	if cfg.SessionCookie != "ledger_session" {
		t.Fatalf("SessionCookie = %q, want ledger_session", cfg.SessionCookie)
	}
	if cfg.JoinCodeAttempts != 8 {
		t.Fatalf("JoinCodeAttempts = %d, want 8", cfg.JoinCodeAttempts)
	}
	if !cfg.MCPEnabled {
		t.Fatal("MCPEnabled = false, want true")
	}
}

func TestLoadServerRequiresPostgresDSN(t *testing.T) {
	t.Setenv("POSTGRES_DSN", "")

	_, err := LoadServer()
	if err == nil {
		t.Fatal("LoadServer() expected error, got nil")
	}
}

func TestLoadServerParseTypes(t *testing.T) {
	t.Setenv("POSTGRES_DSN", "postgres://localhost:5432/ledger?sslmode=disable")
	t.Setenv("POLL_INTERVAL_MS", "1000")
	t.Setenv("MCP_ENABLED", "false")
	t.Setenv("AUTH_JWT_SECRET", "s3cret")
	t.Setenv("JOIN_CODE_ATTEMPTS", "3")

	cfg, err := LoadServer()
	if err != nil {
		t.Fatalf("LoadServer() error = %v", err)
	}
	if cfg.PollIntervalMS != 1000 {
		t.Fatalf("PollIntervalMS = %d, want 1000", cfg.PollIntervalMS)
	}
	if cfg.MCPEnabled {
		t.Fatal("MCPEnabled = true, want false")
	}
	if cfg.AuthJWTSecret != "s3cret" || cfg.JoinCodeAttempts != 3 {
		t.Fatalf("unexpected server config: %+v", cfg)
	}
}
