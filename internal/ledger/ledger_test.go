package ledger

import (
	"errors"
	"testing"
	"time"

	"chip-ledger/internal/money"
	"chip-ledger/internal/store"

	"github.com/shopspring/decimal"
)

var standardDenoms = money.Denominations{
	White: decimal.RequireFromString("0.25"),
	Blue:  decimal.RequireFromString("0.5"),
	Red:   decimal.NewFromInt(1),
	Green: decimal.NewFromInt(2),
	Black: decimal.NewFromInt(5),
}

func baseSnapshot() store.TableSnapshot {
	return store.TableSnapshot{
		Table: store.Table{ID: "t1", JoinCode: "ABCD", Name: "Friday", HostID: "host"},
		Denominations: &store.Denominations{
			TableID:       "t1",
			Denominations: standardDenoms,
		},
		Players: []store.Player{{ID: "p1", TableID: "t1", Name: "Ann"}},
		BuyIns: []store.BuyIn{
			{ID: "b1", TableID: "t1", PlayerID: "p1", AmountCents: 5000},
			{ID: "b2", TableID: "t1", PlayerID: "p1", AmountCents: -1000},
		},
		ChipCounts: []store.ChipCount{
			{ID: "c1", PlayerID: "p1", TableID: "t1", ChipCounts: money.ChipCounts{White: 4, Blue: 2, Red: 10}},
		},
	}
}

func TestReconcileSinglePlayerScenario(t *testing.T) {
	r, err := Reconcile(baseSnapshot())
	if err != nil {
		t.Fatalf("reconcile: %v", err)
	}
	if r.BuyInCents != 4000 || r.BuyIn.StringFixed(2) != "40.00" {
		t.Fatalf("unexpected buy-in total: %d %s", r.BuyInCents, r.BuyIn)
	}
	if r.ChipTotal.StringFixed(2) != "12.00" {
		t.Fatalf("unexpected chip total: %s", r.ChipTotal)
	}
	if r.Delta.StringFixed(2) != "-28.00" {
		t.Fatalf("unexpected delta: %s", r.Delta)
	}
	if len(r.PlayerStacks) != 1 || r.PlayerStacks[0].PlayerID != "p1" {
		t.Fatalf("unexpected stacks: %+v", r.PlayerStacks)
	}
}

func TestReconcileBalancedTableHasZeroDelta(t *testing.T) {
	snap := baseSnapshot()
	snap.BuyIns = []store.BuyIn{{ID: "b1", PlayerID: "p1", AmountCents: 1200}}
	r, err := Reconcile(snap)
	if err != nil {
		t.Fatalf("reconcile: %v", err)
	}
	if !r.Delta.IsZero() {
		t.Fatalf("expected zero delta, got %s", r.Delta)
	}
}

func TestReconcileRequiresDenominations(t *testing.T) {
	snap := baseSnapshot()
	snap.Denominations = nil
	if _, err := Reconcile(snap); !errors.Is(err, ErrDenominationsNotSet) {
		t.Fatalf("expected ErrDenominationsNotSet, got %v", err)
	}
}

func TestReconcileSkipsPlayersWithoutChipCount(t *testing.T) {
	snap := baseSnapshot()
	snap.Players = append(snap.Players, store.Player{ID: "p2", TableID: "t1", Name: "Bo"})
	snap.BuyIns = append(snap.BuyIns, store.BuyIn{ID: "b3", PlayerID: "p2", AmountCents: 2000})

	r, err := Reconcile(snap)
	if err != nil {
		t.Fatalf("reconcile: %v", err)
	}
	if len(r.PlayerStacks) != 1 {
		t.Fatalf("expected player without chip count to be skipped, got %d stacks", len(r.PlayerStacks))
	}
	if r.ChipTotal.StringFixed(2) != "12.00" || r.BuyInCents != 6000 {
		t.Fatalf("unexpected totals: chips=%s buyin=%d", r.ChipTotal, r.BuyInCents)
	}
}

func TestReconcileUsesLatestSnapshot(t *testing.T) {
	now := time.Now()
	snap := baseSnapshot()
	snap.ChipCounts = []store.ChipCount{
		{ID: "c2", PlayerID: "p1", UpdatedAt: now, ChipCounts: money.ChipCounts{Black: 2}},
		{ID: "c1", PlayerID: "p1", UpdatedAt: now.Add(-time.Minute), ChipCounts: money.ChipCounts{Black: 9}},
	}
	r, err := Reconcile(snap)
	if err != nil {
		t.Fatalf("reconcile: %v", err)
	}
	if r.ChipTotal.StringFixed(2) != "10.00" {
		t.Fatalf("expected latest snapshot to win, got %s", r.ChipTotal)
	}
}

func TestLatestChipCountTieBreaksOnID(t *testing.T) {
	at := time.Unix(1700000000, 0)
	counts := []store.ChipCount{
		{ID: "b", PlayerID: "p1", UpdatedAt: at, ChipCounts: money.ChipCounts{Red: 2}},
		{ID: "a", PlayerID: "p1", UpdatedAt: at, ChipCounts: money.ChipCounts{Red: 1}},
	}
	c, ok := LatestChipCount(counts, "p1")
	if !ok || c.ID != "b" {
		t.Fatalf("expected id b, got %+v", c)
	}
	if _, ok := LatestChipCount(counts, "p2"); ok {
		t.Fatalf("expected no snapshot for unknown player")
	}
}

func TestTotalBuyIns(t *testing.T) {
	tests := []struct {
		name string
		in   []store.BuyIn
		want int64
	}{
		{"empty", nil, 0},
		{"corrections", []store.BuyIn{{AmountCents: 500}, {AmountCents: -800}}, -300},
		{"zero entry", []store.BuyIn{{AmountCents: 0}, {AmountCents: 100}}, 100},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := TotalBuyIns(tt.in); got != tt.want {
				t.Fatalf("got %d want %d", got, tt.want)
			}
		})
	}
}

func TestSettleScenario(t *testing.T) {
	h, err := Settle(baseSnapshot(), nil, time.Now())
	if err != nil {
		t.Fatalf("settle: %v", err)
	}
	if len(h.Results) != 1 {
		t.Fatalf("expected 1 result, got %d", len(h.Results))
	}
	r := h.Results[0]
	if r.BuyInTotalCents != 4000 || r.CashOutCents != 1200 || r.ProfitLossCents != -2800 {
		t.Fatalf("unexpected result: %+v", r)
	}
	if h.JoinCode != "ABCD" || h.TableName != "Friday" || h.HostID != "host" {
		t.Fatalf("table metadata not copied: %+v", h)
	}
}

func TestSettleZeroFillsMissingChipCount(t *testing.T) {
	snap := baseSnapshot()
	snap.Players = append(snap.Players, store.Player{ID: "p2", Name: "Bo"})
	snap.BuyIns = append(snap.BuyIns, store.BuyIn{PlayerID: "p2", AmountCents: 2000})

	h, err := Settle(snap, nil, time.Now())
	if err != nil {
		t.Fatalf("settle: %v", err)
	}
	if len(h.Results) != 2 {
		t.Fatalf("expected both players in results, got %d", len(h.Results))
	}
	bo := h.Results[1]
	if bo.Chips != (money.ChipCounts{}) || bo.CashOutCents != 0 || bo.ProfitLossCents != -2000 {
		t.Fatalf("unexpected zero-filled result: %+v", bo)
	}
}

func TestSettleUsesFallbackDenominations(t *testing.T) {
	snap := baseSnapshot()
	snap.Denominations = nil
	snap.ChipCounts[0].ChipCounts = money.ChipCounts{White: 1, Blue: 1, Red: 1, Green: 1, Black: 1}
	h, err := Settle(snap, nil, time.Now())
	if err != nil {
		t.Fatalf("settle: %v", err)
	}
	if got := h.Results[0].CashOutCents; got != 875 {
		t.Fatalf("expected 875 cents with fallback denominations, got %d", got)
	}
}

func TestSettleRoundsCashOutHalfAwayFromZero(t *testing.T) {
	snap := baseSnapshot()
	snap.Denominations.Denominations = money.Denominations{
		White: decimal.RequireFromString("0.015"),
		Blue:  decimal.NewFromInt(1),
		Red:   decimal.NewFromInt(1),
		Green: decimal.NewFromInt(1),
		Black: decimal.NewFromInt(1),
	}
	snap.ChipCounts[0].ChipCounts = money.ChipCounts{White: 1}
	h, err := Settle(snap, nil, time.Now())
	if err != nil {
		t.Fatalf("settle: %v", err)
	}
	if got := h.Results[0].CashOutCents; got != 2 {
		t.Fatalf("expected 1.5 cents to round to 2, got %d", got)
	}
}

func TestSettleRejectsCashOutPastInt64(t *testing.T) {
	snap := baseSnapshot()
	snap.Denominations.Denominations.Black = money.MaxDenomination
	snap.ChipCounts[0].ChipCounts = money.ChipCounts{Black: money.MaxChipCount}
	if _, err := Settle(snap, nil, time.Now()); !errors.Is(err, money.ErrInvalidAmount) {
		t.Fatalf("expected ErrInvalidAmount, got %v", err)
	}
}

func TestSettleEndedAt(t *testing.T) {
	now := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	h, _ := Settle(baseSnapshot(), nil, now)
	if !h.EndedAt.Equal(now) {
		t.Fatalf("expected ended_at %v, got %v", now, h.EndedAt)
	}

	ended := now.Add(-time.Hour)
	snap := baseSnapshot()
	snap.Table.EndedAt = &ended
	h, _ = Settle(snap, nil, now)
	if !h.EndedAt.Equal(ended) {
		t.Fatalf("expected table ended_at %v, got %v", ended, h.EndedAt)
	}
}

func TestSettleLinksPlayers(t *testing.T) {
	snap := baseSnapshot()
	snap.Players = []store.Player{
		{ID: "p1", Name: "ann"},
		{ID: "p2", Name: "Bo", UserID: "u-linked"},
		{ID: "p3", Name: "stranger"},
	}
	users := []store.User{{ID: "u-ann", DisplayName: "Ann"}, {ID: "u-bo", DisplayName: "Bo"}}
	h, err := Settle(snap, users, time.Now())
	if err != nil {
		t.Fatalf("settle: %v", err)
	}
	want := []string{"u-ann", "u-linked", ""}
	for i, r := range h.Results {
		if r.UserID != want[i] {
			t.Fatalf("result %d: user %q want %q", i, r.UserID, want[i])
		}
	}
}

func TestMatchUser(t *testing.T) {
	users := []store.User{
		{ID: "u3", DisplayName: "Sam", Email: "sam@example.com"},
		{ID: "u2", DisplayName: "", Email: "casey@example.com"},
		{ID: "u1", DisplayName: "SAM", Email: "other@example.com"},
		{ID: "u4", DisplayName: "Jordan", Email: "pat@example.com"},
		{ID: "u0", DisplayName: "Pat", Email: "x@example.com"},
	}
	tests := []struct {
		name   string
		player string
		want   string
	}{
		{"display name tie goes to smallest id", "sam", "u1"},
		{"email local part", "Casey", "u2"},
		{"display name beats email", "pat", "u0"},
		{"no match", "nobody", ""},
		{"blank name", "  ", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := MatchUser(tt.player, users); got != tt.want {
				t.Fatalf("MatchUser(%q) = %q want %q", tt.player, got, tt.want)
			}
		})
	}
}
