// Package memstore is an in-memory stand-in for the Postgres store, used by
// service, transport and MCP tests. It mirrors the store's not-found and
// conflict semantics.
package memstore

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"chip-ledger/internal/money"
	"chip-ledger/internal/store"
)

type Store struct {
	mu sync.Mutex

	users      map[string]store.User
	tables     map[string]store.Table
	denoms     map[string]store.Denominations
	endCounts  map[string]store.EndChipCounts
	players    map[string]store.Player
	buyIns     map[string]store.BuyIn
	chipCounts map[string]store.ChipCount
	histories  map[string]store.GameHistory

	now func() time.Time
}

func New() *Store {
	return &Store{
		users:      map[string]store.User{},
		tables:     map[string]store.Table{},
		denoms:     map[string]store.Denominations{},
		endCounts:  map[string]store.EndChipCounts{},
		players:    map[string]store.Player{},
		buyIns:     map[string]store.BuyIn{},
		chipCounts: map[string]store.ChipCount{},
		histories:  map[string]store.GameHistory{},
		now:        func() time.Time { return time.Now().UTC() },
	}
}

func (s *Store) Ping(context.Context) error { return nil }

func (s *Store) EnsureUser(_ context.Context, id, email string) (*store.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	if !ok {
		u = store.User{ID: id, Email: email, CreatedAt: s.now()}
	} else if u.Email == "" {
		u.Email = email
	}
	s.users[id] = u
	return &u, nil
}

func (s *Store) UpdateUserDisplayName(_ context.Context, id, displayName string) (*store.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	u.DisplayName = displayName
	s.users[id] = u
	return &u, nil
}

func (s *Store) listUsers() []store.User {
	out := make([]store.User, 0, len(s.users))
	for _, u := range s.users {
		out = append(out, u)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (s *Store) CreateTable(_ context.Context, id, joinCode, name, hostID string) (*store.Table, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, t := range s.tables {
		if t.JoinCode == joinCode {
			return nil, store.ErrConflict
		}
	}
	if _, ok := s.users[hostID]; !ok {
		return nil, store.ErrNotFound
	}
	t := store.Table{ID: id, JoinCode: joinCode, Name: name, HostID: hostID, CreatedAt: s.now()}
	s.tables[id] = t
	return &t, nil
}

func (s *Store) GetTable(_ context.Context, id string) (*store.Table, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.tables[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	return &t, nil
}

func (s *Store) GetTableByJoinCode(_ context.Context, joinCode string) (*store.Table, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, t := range s.tables {
		if t.JoinCode == joinCode {
			return &t, nil
		}
	}
	return nil, store.ErrNotFound
}

func (s *Store) EndTable(_ context.Context, id string, at time.Time) (*store.Table, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.tables[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	if t.EndedAt == nil {
		at = at.UTC()
		t.EndedAt = &at
		s.tables[id] = t
	}
	return &t, nil
}

func (s *Store) LoadTableSnapshot(_ context.Context, id string) (*store.TableSnapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshot(id)
}

func (s *Store) snapshot(id string) (*store.TableSnapshot, error) {
	t, ok := s.tables[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	snap := &store.TableSnapshot{
		Table:      t,
		Players:    []store.Player{},
		BuyIns:     []store.BuyIn{},
		ChipCounts: []store.ChipCount{},
	}
	if d, ok := s.denoms[id]; ok {
		snap.Denominations = &d
	}
	if c, ok := s.endCounts[id]; ok {
		snap.EndChipCounts = &c
	}
	for _, p := range s.players {
		if p.TableID == id {
			snap.Players = append(snap.Players, p)
		}
	}
	for _, b := range s.buyIns {
		if b.TableID == id {
			snap.BuyIns = append(snap.BuyIns, b)
		}
	}
	for _, c := range s.chipCounts {
		if c.TableID == id {
			snap.ChipCounts = append(snap.ChipCounts, c)
		}
	}
	// ULIDs sort by creation time, matching the SQL ORDER BY created_at, id.
	sort.Slice(snap.Players, func(i, j int) bool { return snap.Players[i].ID < snap.Players[j].ID })
	sort.Slice(snap.BuyIns, func(i, j int) bool { return snap.BuyIns[i].ID < snap.BuyIns[j].ID })
	sort.Slice(snap.ChipCounts, func(i, j int) bool { return snap.ChipCounts[i].ID < snap.ChipCounts[j].ID })
	return snap, nil
}

func (s *Store) CreatePlayer(_ context.Context, tableID, name, userID string) (*store.Player, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.tables[tableID]; !ok {
		return nil, store.ErrNotFound
	}
	p := store.Player{ID: store.NewID(), TableID: tableID, Name: name, UserID: userID, CreatedAt: s.now()}
	s.players[p.ID] = p
	return &p, nil
}

func (s *Store) GetPlayer(_ context.Context, tableID, playerID string) (*store.Player, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.players[playerID]
	if !ok || p.TableID != tableID {
		return nil, store.ErrNotFound
	}
	return &p, nil
}

func (s *Store) DeletePlayer(_ context.Context, tableID, playerID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.players[playerID]
	if !ok || p.TableID != tableID {
		return store.ErrNotFound
	}
	for id, b := range s.buyIns {
		if b.PlayerID == playerID {
			delete(s.buyIns, id)
		}
	}
	for id, c := range s.chipCounts {
		if c.PlayerID == playerID {
			delete(s.chipCounts, id)
		}
	}
	delete(s.players, playerID)
	return nil
}

func (s *Store) AddBuyIn(_ context.Context, tableID, playerID string, amountCents int64) (*store.BuyIn, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if p, ok := s.players[playerID]; !ok || p.TableID != tableID {
		return nil, store.ErrNotFound
	}
	b := store.BuyIn{ID: store.NewID(), TableID: tableID, PlayerID: playerID, AmountCents: amountCents, CreatedAt: s.now()}
	s.buyIns[b.ID] = b
	return &b, nil
}

func (s *Store) DeleteBuyIn(_ context.Context, tableID, buyInID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	b, ok := s.buyIns[buyInID]
	if !ok || b.TableID != tableID {
		return store.ErrNotFound
	}
	delete(s.buyIns, buyInID)
	return nil
}

func (s *Store) UpsertChipCount(_ context.Context, c store.ChipCount) (*store.ChipCount, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if p, ok := s.players[c.PlayerID]; !ok || p.TableID != c.TableID {
		return nil, store.ErrNotFound
	}
	for id, cur := range s.chipCounts {
		if cur.PlayerID == c.PlayerID && cur.TableID == c.TableID {
			cur.ChipCounts = c.ChipCounts
			cur.UpdatedAt = s.now()
			s.chipCounts[id] = cur
			return &cur, nil
		}
	}
	c.ID = store.NewID()
	c.UpdatedAt = s.now()
	s.chipCounts[c.ID] = c
	return &c, nil
}

func (s *Store) UpsertDenominations(_ context.Context, tableID string, d money.Denominations) (*store.Denominations, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.tables[tableID]; !ok {
		return nil, store.ErrNotFound
	}
	out := store.Denominations{TableID: tableID, Denominations: d, UpdatedAt: s.now()}
	s.denoms[tableID] = out
	return &out, nil
}

func (s *Store) GetDenominations(_ context.Context, tableID string) (*store.Denominations, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	d, ok := s.denoms[tableID]
	if !ok {
		return nil, store.ErrNotFound
	}
	return &d, nil
}

func (s *Store) UpsertEndChipCounts(_ context.Context, tableID string, c money.ChipCounts) (*store.EndChipCounts, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.tables[tableID]; !ok {
		return nil, store.ErrNotFound
	}
	out := store.EndChipCounts{TableID: tableID, ChipCounts: c, UpdatedAt: s.now()}
	s.endCounts[tableID] = out
	return &out, nil
}

// ArchiveTable holds the store lock for the whole conversion, so a racing
// second call observes ErrNotFound just as the row lock makes it in Postgres.
func (s *Store) ArchiveTable(_ context.Context, tableID string, settle store.SettleFunc) (*store.GameHistory, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	snap, err := s.snapshot(tableID)
	if err != nil {
		return nil, err
	}
	h, err := settle(*snap, s.listUsers())
	if err != nil {
		return nil, err
	}
	if h.ID == "" {
		h.ID = store.NewID()
	}
	h.ArchivedAt = s.now()
	for i := range h.Results {
		h.Results[i].GameHistoryID = h.ID
		if h.Results[i].ID == "" {
			h.Results[i].ID = store.NewID()
		}
	}
	s.histories[h.ID] = h

	for _, p := range snap.Players {
		delete(s.players, p.ID)
	}
	for _, b := range snap.BuyIns {
		delete(s.buyIns, b.ID)
	}
	for _, c := range snap.ChipCounts {
		delete(s.chipCounts, c.ID)
	}
	delete(s.denoms, tableID)
	delete(s.endCounts, tableID)
	delete(s.tables, tableID)
	return &h, nil
}

func (s *Store) GetGameHistory(_ context.Context, id string) (*store.GameHistory, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	h, ok := s.histories[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	h.Results = append([]store.PlayerResult{}, h.Results...)
	sort.Slice(h.Results, func(i, j int) bool {
		if h.Results[i].PlayerName != h.Results[j].PlayerName {
			return h.Results[i].PlayerName < h.Results[j].PlayerName
		}
		return h.Results[i].ID < h.Results[j].ID
	})
	return &h, nil
}

func (s *Store) FindArchivedTable(_ context.Context, tableID, joinCode string) (*store.GameHistory, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var found *store.GameHistory
	for _, h := range s.histories {
		if (tableID != "" && h.TableID == tableID) || (joinCode != "" && h.JoinCode == joinCode) {
			if found == nil || h.ArchivedAt.After(found.ArchivedAt) {
				h := h
				found = &h
			}
		}
	}
	if found == nil {
		return nil, store.ErrNotFound
	}
	return found, nil
}

func (s *Store) ListUserResults(_ context.Context, userID string, limit, offset int) ([]store.UserResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if limit <= 0 {
		limit = 50
	}
	out := []store.UserResult{}
	for _, h := range s.histories {
		for _, r := range h.Results {
			if r.UserID == userID {
				meta := h
				meta.Results = nil
				out = append(out, store.UserResult{Result: r, History: meta})
			}
		}
	}
	sort.Slice(out, func(i, j int) bool {
		a, b := out[i].History, out[j].History
		if !a.EndedAt.Equal(b.EndedAt) {
			return a.EndedAt.After(b.EndedAt)
		}
		return strings.Compare(a.ID, b.ID) > 0
	})
	if offset >= len(out) {
		return []store.UserResult{}, nil
	}
	out = out[offset:]
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}
