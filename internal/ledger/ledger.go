// Package ledger aggregates buy-ins and chip counts for a table, reconciles
// cash in against chip value, and settles a table into a game history.
//
// Everything here is pure: callers pass store rows in and persist the result.
package ledger

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"chip-ledger/internal/money"
	"chip-ledger/internal/store"

	"github.com/shopspring/decimal"
)

var ErrDenominationsNotSet = errors.New("denominations_not_set")

// TotalBuyIns sums signed buy-in amounts. An empty ledger totals zero.
func TotalBuyIns(buyIns []store.BuyIn) int64 {
	var total int64
	for _, b := range buyIns {
		total += b.AmountCents
	}
	return total
}

func BuyInsByPlayer(buyIns []store.BuyIn) map[string]int64 {
	out := make(map[string]int64)
	for _, b := range buyIns {
		out[b.PlayerID] += b.AmountCents
	}
	return out
}

// LatestChipCounts picks the newest snapshot per player. Equal timestamps
// resolve to the larger id so the choice does not depend on row order.
func LatestChipCounts(counts []store.ChipCount) map[string]store.ChipCount {
	out := make(map[string]store.ChipCount, len(counts))
	for _, c := range counts {
		cur, ok := out[c.PlayerID]
		if !ok || newer(c, cur) {
			out[c.PlayerID] = c
		}
	}
	return out
}

func newer(a, b store.ChipCount) bool {
	if !a.UpdatedAt.Equal(b.UpdatedAt) {
		return a.UpdatedAt.After(b.UpdatedAt)
	}
	return a.ID > b.ID
}

// LatestChipCount returns the authoritative snapshot for one player.
func LatestChipCount(counts []store.ChipCount, playerID string) (store.ChipCount, bool) {
	c, ok := LatestChipCounts(counts)[playerID]
	return c, ok
}

type PlayerStack struct {
	PlayerID  string
	Name      string
	Chips     money.ChipCounts
	Value     decimal.Decimal
	UpdatedAt time.Time
}

type Reconciliation struct {
	BuyInCents   int64
	BuyIn        decimal.Decimal
	ChipTotal    decimal.Decimal
	Delta        decimal.Decimal
	PlayerStacks []PlayerStack
}

// Reconcile compares total cash in with the value of every recorded stack.
// Players that never reported a chip count are left out of the chip total.
// A positive delta means more chip value is on the table than cash went in.
func Reconcile(snap store.TableSnapshot) (*Reconciliation, error) {
	if snap.Denominations == nil {
		return nil, ErrDenominationsNotSet
	}
	denoms := snap.Denominations.Denominations
	buyIn := TotalBuyIns(snap.BuyIns)
	latest := LatestChipCounts(snap.ChipCounts)

	r := &Reconciliation{
		BuyInCents:   buyIn,
		BuyIn:        money.Dollars(buyIn),
		ChipTotal:    decimal.Zero,
		PlayerStacks: []PlayerStack{},
	}
	for _, p := range snap.Players {
		c, ok := latest[p.ID]
		if !ok {
			continue
		}
		v := money.ChipValue(c.ChipCounts, denoms)
		r.ChipTotal = r.ChipTotal.Add(v)
		r.PlayerStacks = append(r.PlayerStacks, PlayerStack{
			PlayerID:  p.ID,
			Name:      p.Name,
			Chips:     c.ChipCounts,
			Value:     v,
			UpdatedAt: c.UpdatedAt,
		})
	}
	r.Delta = r.ChipTotal.Sub(r.BuyIn)
	return r, nil
}

// Settle freezes a table into a history record. Unlike Reconcile it keeps
// every player, valuing a missing chip count as an empty stack, and falls back
// to FallbackDenominations so a table can always be archived.
func Settle(snap store.TableSnapshot, users []store.User, now time.Time) (store.GameHistory, error) {
	denoms := money.FallbackDenominations
	if snap.Denominations != nil {
		denoms = snap.Denominations.Denominations
	}
	endedAt := now.UTC()
	if snap.Table.EndedAt != nil {
		endedAt = *snap.Table.EndedAt
	}

	h := store.GameHistory{
		TableID:   snap.Table.ID,
		TableName: snap.Table.Name,
		JoinCode:  snap.Table.JoinCode,
		HostID:    snap.Table.HostID,
		CreatedAt: snap.Table.CreatedAt,
		EndedAt:   endedAt,
		Results:   make([]store.PlayerResult, 0, len(snap.Players)),
	}
	buyIns := BuyInsByPlayer(snap.BuyIns)
	latest := LatestChipCounts(snap.ChipCounts)
	for _, p := range snap.Players {
		var chips money.ChipCounts
		if c, ok := latest[p.ID]; ok {
			chips = c.ChipCounts
		}
		userID := p.UserID
		if userID == "" {
			userID = MatchUser(p.Name, users)
		}
		cashOut, err := money.ToSubunits(money.ChipValue(chips, denoms))
		if err != nil {
			return store.GameHistory{}, fmt.Errorf("settle %s: %w", p.Name, err)
		}
		h.Results = append(h.Results, store.PlayerResult{
			UserID:          userID,
			PlayerName:      p.Name,
			BuyInTotalCents: buyIns[p.ID],
			Chips:           chips,
			CashOutCents:    cashOut,
			ProfitLossCents: cashOut - buyIns[p.ID],
		})
	}
	return h, nil
}

// MatchUser links a free-text player name to a user account. Display names
// are tried before email local parts, both case-insensitively; among several
// matches of the same kind the smallest user id wins. Returns "" on no match.
func MatchUser(name string, users []store.User) string {
	name = strings.TrimSpace(name)
	if name == "" {
		return ""
	}
	sorted := make([]store.User, len(users))
	copy(sorted, users)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].ID < sorted[j].ID })

	for _, u := range sorted {
		if u.DisplayName != "" && strings.EqualFold(u.DisplayName, name) {
			return u.ID
		}
	}
	for _, u := range sorted {
		local, _, _ := strings.Cut(u.Email, "@")
		if local != "" && strings.EqualFold(local, name) {
			return u.ID
		}
	}
	return ""
}
