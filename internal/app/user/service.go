package user

import (
	"context"
	"errors"
	"strings"

	"chip-ledger/internal/auth"
	"chip-ledger/internal/money"
	"chip-ledger/internal/store"
)

type Store interface {
	EnsureUser(ctx context.Context, id, email string) (*store.User, error)
	UpdateUserDisplayName(ctx context.Context, id, displayName string) (*store.User, error)
	ListUserResults(ctx context.Context, userID string, limit, offset int) ([]store.UserResult, error)
	GetGameHistory(ctx context.Context, id string) (*store.GameHistory, error)
}

const (
	maxDisplayNameLen = 64
	defaultPageSize   = 50
	maxPageSize       = 200
)

type Service struct {
	store Store
}

func NewService(st Store) *Service {
	return &Service{store: st}
}

// Me returns the caller's profile, creating it on first use.
func (s *Service) Me(ctx context.Context, caller auth.Identity) (*ProfileResponse, error) {
	if caller.UserID == "" {
		return nil, ErrUnauthorized
	}
	u, err := s.store.EnsureUser(ctx, caller.UserID, caller.Email)
	if err != nil {
		return nil, err
	}
	return toProfile(u), nil
}

func (s *Service) UpdateDisplayName(ctx context.Context, caller auth.Identity, in UpdateProfileInput) (*ProfileResponse, error) {
	if caller.UserID == "" {
		return nil, ErrUnauthorized
	}
	name := strings.TrimSpace(in.DisplayName)
	if name == "" || len([]rune(name)) > maxDisplayNameLen {
		return nil, ErrInvalidRequest
	}
	if _, err := s.store.EnsureUser(ctx, caller.UserID, caller.Email); err != nil {
		return nil, err
	}
	u, err := s.store.UpdateUserDisplayName(ctx, caller.UserID, name)
	if err != nil {
		return nil, err
	}
	return toProfile(u), nil
}

// History lists the caller's archived results, newest game first. The
// profit/loss total covers the returned page only.
func (s *Service) History(ctx context.Context, caller auth.Identity, limit, offset int) (*HistoryResponse, error) {
	if caller.UserID == "" {
		return nil, ErrUnauthorized
	}
	limit, offset = clampPage(limit, offset)
	rows, err := s.store.ListUserResults(ctx, caller.UserID, limit, offset)
	if err != nil {
		return nil, err
	}
	out := &HistoryResponse{Items: make([]HistoryItem, 0, len(rows)), Limit: limit, Offset: offset}
	for _, row := range rows {
		r, h := row.Result, row.History
		out.Items = append(out.Items, HistoryItem{
			GameHistoryID:   h.ID,
			TableName:       h.TableName,
			JoinCode:        h.JoinCode,
			EndedAt:         h.EndedAt,
			PlayerName:      r.PlayerName,
			BuyInTotalCents: r.BuyInTotalCents,
			CashOutCents:    r.CashOutCents,
			ProfitLossCents: r.ProfitLossCents,
			ProfitLoss:      money.FromSubunits(r.ProfitLossCents),
			Chips:           r.Chips,
		})
		out.ProfitLossCents += r.ProfitLossCents
	}
	out.ProfitLoss = money.FromSubunits(out.ProfitLossCents)
	return out, nil
}

// GameHistory returns one archived game. Only the host and players linked to
// the caller may read it.
func (s *Service) GameHistory(ctx context.Context, caller auth.Identity, id string) (*GameHistoryResponse, error) {
	if caller.UserID == "" {
		return nil, ErrUnauthorized
	}
	if strings.TrimSpace(id) == "" {
		return nil, ErrInvalidRequest
	}
	h, err := s.store.GetGameHistory(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		return nil, ErrHistoryNotFound
	}
	if err != nil {
		return nil, err
	}
	if !canRead(h, caller.UserID) {
		return nil, ErrForbidden
	}
	out := &GameHistoryResponse{
		ID:         h.ID,
		TableName:  h.TableName,
		JoinCode:   h.JoinCode,
		HostID:     h.HostID,
		CreatedAt:  h.CreatedAt,
		EndedAt:    h.EndedAt,
		ArchivedAt: h.ArchivedAt,
		Results:    make([]PlayerResult, 0, len(h.Results)),
	}
	for _, r := range h.Results {
		out.Results = append(out.Results, PlayerResult{
			PlayerName:      r.PlayerName,
			UserID:          r.UserID,
			BuyInTotalCents: r.BuyInTotalCents,
			BuyInTotal:      money.FromSubunits(r.BuyInTotalCents),
			Chips:           r.Chips,
			CashOutCents:    r.CashOutCents,
			CashOut:         money.FromSubunits(r.CashOutCents),
			ProfitLossCents: r.ProfitLossCents,
			ProfitLoss:      money.FromSubunits(r.ProfitLossCents),
		})
	}
	return out, nil
}

func canRead(h *store.GameHistory, userID string) bool {
	if h.HostID == userID {
		return true
	}
	for _, r := range h.Results {
		if r.UserID == userID {
			return true
		}
	}
	return false
}

func clampPage(limit, offset int) (int, int) {
	if limit <= 0 {
		limit = defaultPageSize
	}
	if limit > maxPageSize {
		limit = maxPageSize
	}
	if offset < 0 {
		offset = 0
	}
	return limit, offset
}

func toProfile(u *store.User) *ProfileResponse {
	return &ProfileResponse{ID: u.ID, Email: u.Email, DisplayName: u.DisplayName, CreatedAt: u.CreatedAt}
}
