package store

import (
	"errors"
	"testing"
	"time"

	"chip-ledger/internal/money"

	"github.com/shopspring/decimal"
)

func TestCreateTableJoinCodeIsUnique(t *testing.T) {
	st, ctx, cleanup := openStore(t)
	defer cleanup()

	first := mustCreateTable(t, st, ctx, "ABCD", "host-1")
	if _, err := st.CreateTable(ctx, NewID(), "ABCD", "Other", "host-1"); !errors.Is(err, ErrConflict) {
		t.Fatalf("expected ErrConflict for duplicate join code, got %v", err)
	}

	byCode, err := st.GetTableByJoinCode(ctx, "ABCD")
	if err != nil {
		t.Fatalf("get by join code: %v", err)
	}
	byID, err := st.GetTable(ctx, first.ID)
	if err != nil {
		t.Fatalf("get by id: %v", err)
	}
	if byCode.ID != byID.ID {
		t.Fatalf("join code and id resolve to different rows: %s vs %s", byCode.ID, byID.ID)
	}
	if _, err := st.GetTableByJoinCode(ctx, "ZZZZ"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound for unknown code, got %v", err)
	}
}

func TestEndTableKeepsFirstTimestamp(t *testing.T) {
	st, ctx, cleanup := openStore(t)
	defer cleanup()

	tbl := mustCreateTable(t, st, ctx, "ENDS", "host-1")
	first := time.Now().Add(-time.Hour).UTC().Truncate(time.Microsecond)
	ended, err := st.EndTable(ctx, tbl.ID, first)
	if err != nil {
		t.Fatalf("end table: %v", err)
	}
	if ended.EndedAt == nil || !ended.EndedAt.Equal(first) {
		t.Fatalf("unexpected ended_at: %v", ended.EndedAt)
	}
	again, err := st.EndTable(ctx, tbl.ID, time.Now())
	if err != nil {
		t.Fatalf("end table again: %v", err)
	}
	if !again.EndedAt.Equal(first) {
		t.Fatalf("ended_at moved from %v to %v", first, again.EndedAt)
	}
	if _, err := st.EndTable(ctx, NewID(), time.Now()); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestDenominationsRoundTripExactly(t *testing.T) {
	st, ctx, cleanup := openStore(t)
	defer cleanup()

	tbl := mustCreateTable(t, st, ctx, "DENO", "host-1")
	if _, err := st.GetDenominations(ctx, tbl.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound before upsert, got %v", err)
	}
	in := money.Denominations{
		White: decimal.RequireFromString("0.25"),
		Blue:  decimal.RequireFromString("0.5"),
		Red:   decimal.RequireFromString("1"),
		Green: decimal.RequireFromString("2.10"),
		Black: decimal.RequireFromString("5"),
	}
	if _, err := st.UpsertDenominations(ctx, tbl.ID, in); err != nil {
		t.Fatalf("upsert denominations: %v", err)
	}
	in.Black = decimal.RequireFromString("25")
	if _, err := st.UpsertDenominations(ctx, tbl.ID, in); err != nil {
		t.Fatalf("overwrite denominations: %v", err)
	}
	got, err := st.GetDenominations(ctx, tbl.ID)
	if err != nil {
		t.Fatalf("get denominations: %v", err)
	}
	if !got.Green.Equal(in.Green) || !got.Black.Equal(in.Black) || !got.White.Equal(in.White) {
		t.Fatalf("unexpected denominations: %+v", got.Denominations)
	}
}
