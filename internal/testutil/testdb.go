// Package testutil provisions throwaway Postgres schemas for integration
// tests. Tests skip unless TEST_POSTGRES_DSN is set.
package testutil

import (
	"context"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"testing"
	"time"

	"chip-ledger/internal/config"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const initMigration = "000001_init.up.sql"

var schemaNamePattern = regexp.MustCompile(`^[a-zA-Z_][a-zA-Z0-9_]*$`)

// PostgresSchema creates a fresh schema loaded with the init migration and
// returns a DSN whose search_path points at it. The cleanup drops the schema.
func PostgresSchema(t *testing.T) (string, func()) {
	t.Helper()
	cfg, err := config.LoadTest()
	if err != nil {
		t.Skipf("skip test db: %v", err)
	}
	ctx := context.Background()
	schema := fmt.Sprintf("test_%d", time.Now().UnixNano())
	if !schemaNamePattern.MatchString(schema) {
		t.Fatalf("schema %q does not match required pattern", schema)
	}
	ident := pgx.Identifier{schema}.Sanitize()

	base, err := pgxpool.New(ctx, cfg.TestPostgresDSN)
	if err != nil {
		t.Fatalf("open base db: %v", err)
	}
	defer base.Close()
	if _, err := base.Exec(ctx, "CREATE SCHEMA "+ident); err != nil {
		t.Fatalf("create schema: %v", err)
	}

	dsn := withSearchPath(cfg.TestPostgresDSN, schema)
	if err := applyMigration(ctx, dsn, cfg.MigrationsDir); err != nil {
		dropSchema(cfg.TestPostgresDSN, ident)
		t.Fatalf("apply schema: %v", err)
	}
	return dsn, func() { dropSchema(cfg.TestPostgresDSN, ident) }
}

func applyMigration(ctx context.Context, dsn, dir string) error {
	path, err := findInitMigrationPath(dir)
	if err != nil {
		return err
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return err
	}
	defer pool.Close()
	_, err = pool.Exec(ctx, string(b))
	return err
}

func dropSchema(dsn, ident string) {
	base, err := pgxpool.New(context.Background(), dsn)
	if err != nil {
		return
	}
	defer base.Close()
	_, _ = base.Exec(context.Background(), "DROP SCHEMA "+ident+" CASCADE")
}

func findInitMigrationPath(override string) (string, error) {
	if override != "" {
		p := filepath.Join(override, initMigration)
		if _, err := os.Stat(p); err != nil {
			return "", fmt.Errorf("TEST_MIGRATIONS_DIR: %w", err)
		}
		return p, nil
	}
	dir, err := os.Getwd()
	if err != nil {
		return "", err
	}
	for i := 0; i < 6; i++ {
		p := filepath.Join(dir, "migrations", initMigration)
		if _, err := os.Stat(p); err == nil {
			return p, nil
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
	return "", fmt.Errorf("%s not found from %s", initMigration, dir)
}

func withSearchPath(dsn, schema string) string {
	sep := "?"
	if strings.Contains(dsn, "?") {
		sep = "&"
	}
	return dsn + sep + "search_path=" + url.QueryEscape(schema)
}
