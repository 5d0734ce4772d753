package table

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"chip-ledger/internal/auth"
	"chip-ledger/internal/config"
	"chip-ledger/internal/ledger"
	"chip-ledger/internal/money"
	"chip-ledger/internal/store"

	"github.com/rs/zerolog/log"
)

// Store is the persistence surface the table service needs. *store.Store
// implements it against Postgres.
type Store interface {
	EnsureUser(ctx context.Context, id, email string) (*store.User, error)
	CreateTable(ctx context.Context, id, joinCode, name, hostID string) (*store.Table, error)
	GetTable(ctx context.Context, id string) (*store.Table, error)
	GetTableByJoinCode(ctx context.Context, joinCode string) (*store.Table, error)
	EndTable(ctx context.Context, id string, at time.Time) (*store.Table, error)
	LoadTableSnapshot(ctx context.Context, id string) (*store.TableSnapshot, error)
	CreatePlayer(ctx context.Context, tableID, name, userID string) (*store.Player, error)
	GetPlayer(ctx context.Context, tableID, playerID string) (*store.Player, error)
	DeletePlayer(ctx context.Context, tableID, playerID string) error
	AddBuyIn(ctx context.Context, tableID, playerID string, amountCents int64) (*store.BuyIn, error)
	DeleteBuyIn(ctx context.Context, tableID, buyInID string) error
	UpsertChipCount(ctx context.Context, c store.ChipCount) (*store.ChipCount, error)
	UpsertDenominations(ctx context.Context, tableID string, d money.Denominations) (*store.Denominations, error)
	GetDenominations(ctx context.Context, tableID string) (*store.Denominations, error)
	UpsertEndChipCounts(ctx context.Context, tableID string, c money.ChipCounts) (*store.EndChipCounts, error)
	ArchiveTable(ctx context.Context, tableID string, settle store.SettleFunc) (*store.GameHistory, error)
	FindArchivedTable(ctx context.Context, tableID, joinCode string) (*store.GameHistory, error)
}

const (
	maxNameLen            = 64
	defaultCodeAttempts   = 8
	defaultPollIntervalMS = 2500
)

type Service struct {
	store Store
	cfg   config.ServerConfig

	now      func() time.Time
	joinCode func() (string, error)
}

func NewService(st Store, cfg config.ServerConfig) *Service {
	if cfg.JoinCodeAttempts <= 0 {
		cfg.JoinCodeAttempts = defaultCodeAttempts
	}
	if cfg.PollIntervalMS <= 0 {
		cfg.PollIntervalMS = defaultPollIntervalMS
	}
	return &Service{
		store:    st,
		cfg:      cfg,
		now:      func() time.Time { return time.Now().UTC() },
		joinCode: randomJoinCode,
	}
}

// SetJoinCodeSourceForTesting swaps the join code generator and returns a
// restore func.
func (s *Service) SetJoinCodeSourceForTesting(next func() (string, error)) func() {
	old := s.joinCode
	s.joinCode = next
	return func() { s.joinCode = old }
}

func (s *Service) CreateTable(ctx context.Context, caller auth.Identity, in CreateTableInput) (*TableView, error) {
	if caller.UserID == "" {
		return nil, ErrUnauthorized
	}
	name, err := cleanName(in.Name)
	if err != nil {
		return nil, err
	}
	if _, err := s.store.EnsureUser(ctx, caller.UserID, caller.Email); err != nil {
		return nil, fmt.Errorf("ensure host user: %w", err)
	}
	for attempt := 0; attempt < s.cfg.JoinCodeAttempts; attempt++ {
		code, err := s.joinCode()
		if err != nil {
			return nil, fmt.Errorf("generate join code: %w", err)
		}
		t, err := s.store.CreateTable(ctx, store.NewID(), code, name, caller.UserID)
		if errors.Is(err, store.ErrConflict) {
			log.Debug().Str("join_code", code).Int("attempt", attempt+1).Msg("join code taken, retrying")
			continue
		}
		if err != nil {
			return nil, err
		}
		log.Info().Str("table_id", t.ID).Str("join_code", t.JoinCode).Str("host_id", t.HostID).Msg("table created")
		return s.view(&store.TableSnapshot{Table: *t}), nil
	}
	return nil, fmt.Errorf("no free join code after %d attempts", s.cfg.JoinCodeAttempts)
}

func (s *Service) JoinTable(ctx context.Context, in JoinTableInput) (*TableView, error) {
	code, err := NormalizeJoinCode(in.JoinCode)
	if err != nil {
		return nil, err
	}
	t, err := s.resolveLive(ctx, Ref{Kind: RefByJoinCode, Value: code})
	if err != nil {
		return nil, err
	}
	return s.loadView(ctx, t.ID)
}

func (s *Service) GetTable(ctx context.Context, raw string) (*TableView, error) {
	t, err := s.resolveRaw(ctx, raw)
	if err != nil {
		return nil, err
	}
	return s.loadView(ctx, t.ID)
}

// EndTable freezes the ledger. Ending twice keeps the first timestamp.
func (s *Service) EndTable(ctx context.Context, caller auth.Identity, raw string) (*TableView, error) {
	t, err := s.resolveHost(ctx, caller, raw)
	if err != nil {
		return nil, err
	}
	if _, err := s.store.EndTable(ctx, t.ID, s.now()); err != nil {
		return nil, s.vanished(err)
	}
	log.Info().Str("table_id", t.ID).Msg("table ended")
	return s.loadView(ctx, t.ID)
}

// ArchiveTable settles the table into a game history and deletes the live
// rows. It runs as one store transaction; a concurrent second call for the
// same table gets ErrTableEnded.
func (s *Service) ArchiveTable(ctx context.Context, caller auth.Identity, raw string) (*ArchiveResponse, error) {
	t, err := s.resolveHost(ctx, caller, raw)
	if err != nil {
		return nil, err
	}
	h, err := s.store.ArchiveTable(ctx, t.ID, func(snap store.TableSnapshot, users []store.User) (store.GameHistory, error) {
		return ledger.Settle(snap, users, s.now())
	})
	if err != nil {
		return nil, s.vanished(err)
	}
	log.Info().
		Str("table_id", t.ID).
		Str("game_history_id", h.ID).
		Int("players", len(h.Results)).
		Msg("table archived")
	return &ArchiveResponse{
		GameHistoryID: h.ID,
		TableName:     h.TableName,
		JoinCode:      h.JoinCode,
		Players:       len(h.Results),
		ArchivedAt:    h.ArchivedAt,
	}, nil
}

func (s *Service) AddPlayer(ctx context.Context, caller auth.Identity, raw string, in AddPlayerInput) (*PlayerView, error) {
	name, err := cleanName(in.Name)
	if err != nil {
		return nil, err
	}
	if in.LinkSelf && caller.UserID == "" {
		return nil, ErrUnauthorized
	}
	t, err := s.resolveLiveRaw(ctx, raw)
	if err != nil {
		return nil, err
	}
	userID := ""
	if in.LinkSelf {
		if _, err := s.store.EnsureUser(ctx, caller.UserID, caller.Email); err != nil {
			return nil, fmt.Errorf("ensure player user: %w", err)
		}
		userID = caller.UserID
	}
	p, err := s.store.CreatePlayer(ctx, t.ID, name, userID)
	if err != nil {
		return nil, s.vanished(err)
	}
	return &PlayerView{
		ID:        p.ID,
		Name:      p.Name,
		UserID:    p.UserID,
		CreatedAt: p.CreatedAt,
		BuyIns:    []BuyInView{},
	}, nil
}

func (s *Service) RemovePlayer(ctx context.Context, raw, playerID string) error {
	if strings.TrimSpace(playerID) == "" {
		return ErrInvalidRequest
	}
	t, err := s.resolveLiveRaw(ctx, raw)
	if err != nil {
		return err
	}
	if err := s.store.DeletePlayer(ctx, t.ID, playerID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return ErrPlayerNotFound
		}
		return err
	}
	return nil
}

func (s *Service) AddBuyIn(ctx context.Context, raw string, in AddBuyInInput) (*BuyInView, error) {
	amount, err := buyInAmount(in)
	if err != nil {
		return nil, err
	}
	t, err := s.resolveLiveRaw(ctx, raw)
	if err != nil {
		return nil, err
	}
	if _, err := s.player(ctx, t.ID, in.PlayerID); err != nil {
		return nil, err
	}
	b, err := s.store.AddBuyIn(ctx, t.ID, in.PlayerID, amount)
	if err != nil {
		return nil, s.vanished(err)
	}
	v := buyInView(*b)
	return &v, nil
}

func buyInAmount(in AddBuyInInput) (int64, error) {
	hasText := strings.TrimSpace(in.Amount) != ""
	switch {
	case in.AmountCents != nil && hasText:
		return 0, ErrInvalidRequest
	case in.AmountCents != nil:
		return *in.AmountCents, nil
	case hasText:
		d, err := money.ParseDisplay(in.Amount)
		if err != nil {
			return 0, fmt.Errorf("%w: %v", ErrInvalidRequest, err)
		}
		cents, err := money.ToSubunits(d)
		if err != nil {
			return 0, fmt.Errorf("%w: %v", ErrInvalidRequest, err)
		}
		return cents, nil
	default:
		return 0, ErrInvalidRequest
	}
}

func (s *Service) RemoveBuyIn(ctx context.Context, raw, buyInID string) error {
	if strings.TrimSpace(buyInID) == "" {
		return ErrInvalidRequest
	}
	t, err := s.resolveLiveRaw(ctx, raw)
	if err != nil {
		return err
	}
	if err := s.store.DeleteBuyIn(ctx, t.ID, buyInID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return ErrBuyInNotFound
		}
		return err
	}
	return nil
}

func (s *Service) UpsertChipCount(ctx context.Context, raw string, in ChipCountInput) (*ChipCountView, error) {
	if err := in.ChipCounts.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidRequest, err)
	}
	t, err := s.resolveLiveRaw(ctx, raw)
	if err != nil {
		return nil, err
	}
	if _, err := s.player(ctx, t.ID, in.PlayerID); err != nil {
		return nil, err
	}
	c, err := s.store.UpsertChipCount(ctx, store.ChipCount{PlayerID: in.PlayerID, TableID: t.ID, ChipCounts: in.ChipCounts})
	if err != nil {
		return nil, s.vanished(err)
	}
	return &ChipCountView{PlayerID: c.PlayerID, ChipCounts: c.ChipCounts, UpdatedAt: c.UpdatedAt}, nil
}

func (s *Service) SetDenominations(ctx context.Context, caller auth.Identity, raw string, d money.Denominations) (*DenominationsView, error) {
	if caller.UserID == "" {
		return nil, ErrUnauthorized
	}
	if err := d.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidRequest, err)
	}
	t, err := s.resolveHost(ctx, caller, raw)
	if err != nil {
		return nil, err
	}
	if t.EndedAt != nil {
		return nil, ErrTableEnded
	}
	out, err := s.store.UpsertDenominations(ctx, t.ID, d)
	if err != nil {
		return nil, s.vanished(err)
	}
	return &DenominationsView{TableID: out.TableID, Denominations: out.Denominations, UpdatedAt: out.UpdatedAt}, nil
}

func (s *Service) GetDenominations(ctx context.Context, raw string) (*DenominationsView, error) {
	t, err := s.resolveRaw(ctx, raw)
	if err != nil {
		return nil, err
	}
	d, err := s.store.GetDenominations(ctx, t.ID)
	if errors.Is(err, store.ErrNotFound) {
		return nil, ErrDenominationsNotSet
	}
	if err != nil {
		return nil, err
	}
	return &DenominationsView{TableID: d.TableID, Denominations: d.Denominations, UpdatedAt: d.UpdatedAt}, nil
}

// SetEndChipCounts records the host's final tally of chips left on the
// table. It is accepted after the table has ended.
func (s *Service) SetEndChipCounts(ctx context.Context, raw string, c money.ChipCounts) (*EndChipCountsView, error) {
	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidRequest, err)
	}
	t, err := s.resolveRaw(ctx, raw)
	if err != nil {
		return nil, err
	}
	out, err := s.store.UpsertEndChipCounts(ctx, t.ID, c)
	if err != nil {
		return nil, s.vanished(err)
	}
	return &EndChipCountsView{TableID: out.TableID, ChipCounts: out.ChipCounts, UpdatedAt: out.UpdatedAt}, nil
}

func (s *Service) Reconcile(ctx context.Context, raw string) (*ReconcileResponse, error) {
	t, err := s.resolveRaw(ctx, raw)
	if err != nil {
		return nil, err
	}
	snap, err := s.store.LoadTableSnapshot(ctx, t.ID)
	if err != nil {
		return nil, s.vanished(err)
	}
	r, err := ledger.Reconcile(*snap)
	if err != nil {
		return nil, err
	}
	out := &ReconcileResponse{
		TableID:          t.ID,
		BuyInCents:       r.BuyInCents,
		BuyInDollars:     r.BuyIn.StringFixed(2),
		ChipTotalDollars: r.ChipTotal.StringFixed(2),
		DeltaDollars:     r.Delta.StringFixed(2),
		Balanced:         r.Delta.IsZero(),
		PlayerStacks:     make([]PlayerStackView, 0, len(r.PlayerStacks)),
		Denominations:    snap.Denominations.Denominations,
	}
	if snap.EndChipCounts != nil {
		c := snap.EndChipCounts.ChipCounts
		out.EndChipCounts = &c
	}
	for _, ps := range r.PlayerStacks {
		out.PlayerStacks = append(out.PlayerStacks, PlayerStackView{
			PlayerID:     ps.PlayerID,
			Name:         ps.Name,
			Chips:        ps.Chips,
			ValueDollars: ps.Value.StringFixed(2),
			UpdatedAt:    ps.UpdatedAt,
		})
	}
	return out, nil
}

func (s *Service) resolveRaw(ctx context.Context, raw string) (*store.Table, error) {
	ref, err := ParseRef(raw)
	if err != nil {
		return nil, err
	}
	return s.resolve(ctx, ref)
}

func (s *Service) resolveLiveRaw(ctx context.Context, raw string) (*store.Table, error) {
	ref, err := ParseRef(raw)
	if err != nil {
		return nil, err
	}
	return s.resolveLive(ctx, ref)
}

// resolve looks up a live or ended table. A reference that only matches an
// archived game answers ErrTableEnded rather than ErrTableNotFound.
func (s *Service) resolve(ctx context.Context, ref Ref) (*store.Table, error) {
	var (
		t   *store.Table
		err error
	)
	switch ref.Kind {
	case RefByJoinCode:
		t, err = s.store.GetTableByJoinCode(ctx, ref.Value)
	default:
		t, err = s.store.GetTable(ctx, ref.Value)
	}
	if err == nil {
		return t, nil
	}
	if !errors.Is(err, store.ErrNotFound) {
		return nil, err
	}
	var tableID, code string
	if ref.Kind == RefByJoinCode {
		code = ref.Value
	} else {
		tableID = ref.Value
	}
	if _, herr := s.store.FindArchivedTable(ctx, tableID, code); herr == nil {
		return nil, ErrTableEnded
	} else if !errors.Is(herr, store.ErrNotFound) {
		return nil, herr
	}
	return nil, ErrTableNotFound
}

func (s *Service) resolveLive(ctx context.Context, ref Ref) (*store.Table, error) {
	t, err := s.resolve(ctx, ref)
	if err != nil {
		return nil, err
	}
	if t.EndedAt != nil {
		return nil, ErrTableEnded
	}
	return t, nil
}

func (s *Service) resolveHost(ctx context.Context, caller auth.Identity, raw string) (*store.Table, error) {
	if caller.UserID == "" {
		return nil, ErrUnauthorized
	}
	t, err := s.resolveRaw(ctx, raw)
	if err != nil {
		return nil, err
	}
	if t.HostID != caller.UserID {
		return nil, ErrForbidden
	}
	return t, nil
}

func (s *Service) player(ctx context.Context, tableID, playerID string) (*store.Player, error) {
	if strings.TrimSpace(playerID) == "" {
		return nil, ErrInvalidRequest
	}
	p, err := s.store.GetPlayer(ctx, tableID, playerID)
	if errors.Is(err, store.ErrNotFound) {
		return nil, ErrPlayerNotFound
	}
	return p, err
}

// vanished maps a not-found that surfaced after a successful resolve: the
// table was archived in between.
func (s *Service) vanished(err error) error {
	if errors.Is(err, store.ErrNotFound) {
		return ErrTableEnded
	}
	return err
}

func (s *Service) loadView(ctx context.Context, tableID string) (*TableView, error) {
	snap, err := s.store.LoadTableSnapshot(ctx, tableID)
	if err != nil {
		return nil, s.vanished(err)
	}
	return s.view(snap), nil
}

func (s *Service) view(snap *store.TableSnapshot) *TableView {
	t := snap.Table
	v := &TableView{
		ID:             t.ID,
		JoinCode:       t.JoinCode,
		Name:           t.Name,
		HostID:         t.HostID,
		Status:         StatusLive,
		CreatedAt:      t.CreatedAt,
		EndedAt:        t.EndedAt,
		Players:        make([]PlayerView, 0, len(snap.Players)),
		PollIntervalMS: s.cfg.PollIntervalMS,
	}
	if t.EndedAt != nil {
		v.Status = StatusEnded
	}
	if snap.Denominations != nil {
		d := snap.Denominations.Denominations
		v.Denominations = &d
	}
	if snap.EndChipCounts != nil {
		c := snap.EndChipCounts.ChipCounts
		v.EndChipCounts = &c
	}

	byPlayer := make(map[string][]BuyInView, len(snap.Players))
	for _, b := range snap.BuyIns {
		byPlayer[b.PlayerID] = append(byPlayer[b.PlayerID], buyInView(b))
	}
	totals := ledger.BuyInsByPlayer(snap.BuyIns)
	latest := ledger.LatestChipCounts(snap.ChipCounts)
	for _, p := range snap.Players {
		pv := PlayerView{
			ID:              p.ID,
			Name:            p.Name,
			UserID:          p.UserID,
			CreatedAt:       p.CreatedAt,
			BuyIns:          byPlayer[p.ID],
			BuyInTotalCents: totals[p.ID],
		}
		if pv.BuyIns == nil {
			pv.BuyIns = []BuyInView{}
		}
		if c, ok := latest[p.ID]; ok {
			pv.ChipCount = &ChipCountView{PlayerID: p.ID, ChipCounts: c.ChipCounts, UpdatedAt: c.UpdatedAt}
		}
		v.Players = append(v.Players, pv)
	}
	v.BuyInTotalCents = ledger.TotalBuyIns(snap.BuyIns)
	v.BuyInTotal = money.FromSubunits(v.BuyInTotalCents)
	return v
}

func buyInView(b store.BuyIn) BuyInView {
	return BuyInView{
		ID:          b.ID,
		PlayerID:    b.PlayerID,
		AmountCents: b.AmountCents,
		Amount:      money.FromSubunits(b.AmountCents),
		CreatedAt:   b.CreatedAt,
	}
}

func cleanName(name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" || len([]rune(name)) > maxNameLen {
		return "", ErrInvalidRequest
	}
	return name, nil
}
