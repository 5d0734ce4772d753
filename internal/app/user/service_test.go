package user

import (
	"context"
	"errors"
	"testing"
	"time"

	"chip-ledger/internal/auth"
	"chip-ledger/internal/ledger"
	"chip-ledger/internal/store"
	"chip-ledger/internal/store/memstore"
)

var (
	hostID = auth.Identity{UserID: "host-1", Email: "host@example.com"}
	ann    = auth.Identity{UserID: "ann-1", Email: "ann@example.com"}
	bo     = auth.Identity{UserID: "bo-1", Email: "bo@example.com"}
)

// archiveGame seeds one archived table where "ann" is matched by email local
// part and loses a 20.00 buy-in.
func archiveGame(t *testing.T, st *memstore.Store, code string, endedAt time.Time) string {
	t.Helper()
	ctx := context.Background()
	for _, id := range []auth.Identity{hostID, ann} {
		if _, err := st.EnsureUser(ctx, id.UserID, id.Email); err != nil {
			t.Fatalf("ensure user: %v", err)
		}
	}
	tbl, err := st.CreateTable(ctx, store.NewID(), code, "Game "+code, hostID.UserID)
	if err != nil {
		t.Fatalf("create table: %v", err)
	}
	p, err := st.CreatePlayer(ctx, tbl.ID, "ann", "")
	if err != nil {
		t.Fatalf("create player: %v", err)
	}
	if _, err := st.AddBuyIn(ctx, tbl.ID, p.ID, 2000); err != nil {
		t.Fatalf("buy-in: %v", err)
	}
	h, err := st.ArchiveTable(ctx, tbl.ID, func(snap store.TableSnapshot, users []store.User) (store.GameHistory, error) {
		return ledger.Settle(snap, users, endedAt)
	})
	if err != nil {
		t.Fatalf("archive: %v", err)
	}
	return h.ID
}

func TestMeCreatesProfile(t *testing.T) {
	svc := NewService(memstore.New())
	ctx := context.Background()

	if _, err := svc.Me(ctx, auth.Identity{}); !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized, got %v", err)
	}
	p, err := svc.Me(ctx, ann)
	if err != nil {
		t.Fatalf("me: %v", err)
	}
	if p.ID != ann.UserID || p.Email != ann.Email || p.DisplayName != "" {
		t.Fatalf("unexpected profile: %+v", p)
	}
}

func TestUpdateDisplayName(t *testing.T) {
	svc := NewService(memstore.New())
	ctx := context.Background()

	if _, err := svc.UpdateDisplayName(ctx, ann, UpdateProfileInput{DisplayName: "   "}); !errors.Is(err, ErrInvalidRequest) {
		t.Fatalf("expected ErrInvalidRequest, got %v", err)
	}
	p, err := svc.UpdateDisplayName(ctx, ann, UpdateProfileInput{DisplayName: "  Annie "})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if p.DisplayName != "Annie" {
		t.Fatalf("expected trimmed name, got %q", p.DisplayName)
	}
	again, err := svc.Me(ctx, ann)
	if err != nil || again.DisplayName != "Annie" {
		t.Fatalf("name not persisted: %+v %v", again, err)
	}
}

func TestHistoryNewestFirst(t *testing.T) {
	st := memstore.New()
	svc := NewService(st)
	base := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	older := archiveGame(t, st, "AAAA", base)
	newer := archiveGame(t, st, "BBBB", base.Add(24*time.Hour))

	h, err := svc.History(context.Background(), ann, 0, 0)
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	if len(h.Items) != 2 || h.Items[0].GameHistoryID != newer || h.Items[1].GameHistoryID != older {
		t.Fatalf("unexpected order: %+v", h.Items)
	}
	if h.ProfitLossCents != -4000 || h.ProfitLoss != "-40.00" || h.Limit != defaultPageSize {
		t.Fatalf("unexpected totals: %+v", h)
	}

	page, err := svc.History(context.Background(), ann, 1, 1)
	if err != nil {
		t.Fatalf("history page: %v", err)
	}
	if len(page.Items) != 1 || page.Items[0].GameHistoryID != older {
		t.Fatalf("unexpected page: %+v", page.Items)
	}
}

func TestGameHistoryAccess(t *testing.T) {
	st := memstore.New()
	svc := NewService(st)
	ctx := context.Background()
	id := archiveGame(t, st, "AAAA", time.Now())

	for _, caller := range []auth.Identity{hostID, ann} {
		h, err := svc.GameHistory(ctx, caller, id)
		if err != nil {
			t.Fatalf("%s: %v", caller.UserID, err)
		}
		if len(h.Results) != 1 || h.Results[0].ProfitLoss != "-20.00" || h.Results[0].CashOut != "0.00" {
			t.Fatalf("unexpected results: %+v", h.Results)
		}
	}
	if _, err := svc.GameHistory(ctx, bo, id); !errors.Is(err, ErrForbidden) {
		t.Fatalf("expected ErrForbidden, got %v", err)
	}
	if _, err := svc.GameHistory(ctx, ann, "missing"); !errors.Is(err, ErrHistoryNotFound) {
		t.Fatalf("expected ErrHistoryNotFound, got %v", err)
	}
}
