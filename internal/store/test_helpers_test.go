package store

import (
	"context"
	"testing"

	"chip-ledger/internal/testutil"
)

func openStore(t *testing.T) (*Store, context.Context, func()) {
	t.Helper()
	dsn, drop := testutil.PostgresSchema(t)
	st, err := New(dsn)
	if err != nil {
		drop()
		t.Fatalf("open store: %v", err)
	}
	return st, context.Background(), func() {
		st.Close()
		drop()
	}
}

func mustCreateTable(t *testing.T, st *Store, ctx context.Context, joinCode, hostID string) *Table {
	t.Helper()
	if _, err := st.EnsureUser(ctx, hostID, hostID+"@example.com"); err != nil {
		t.Fatalf("ensure host: %v", err)
	}
	tbl, err := st.CreateTable(ctx, NewID(), joinCode, "Friday game", hostID)
	if err != nil {
		t.Fatalf("create table: %v", err)
	}
	return tbl
}

func mustCreatePlayer(t *testing.T, st *Store, ctx context.Context, tableID, name string) *Player {
	t.Helper()
	p, err := st.CreatePlayer(ctx, tableID, name, "")
	if err != nil {
		t.Fatalf("create player: %v", err)
	}
	return p
}
