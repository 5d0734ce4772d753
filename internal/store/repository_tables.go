package store

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
)

const tableColumns = `id, join_code, name, host_id, created_at, ended_at`

func scanTable(row interface{ Scan(...any) error }) (Table, error) {
	var (
		t       Table
		endedAt pgtype.Timestamptz
	)
	if err := row.Scan(&t.ID, &t.JoinCode, &t.Name, &t.HostID, &t.CreatedAt, &endedAt); err != nil {
		return Table{}, err
	}
	t.EndedAt = timePtrVal(endedAt)
	return t, nil
}

// CreateTable inserts a live table. A join code already taken by another live
// table yields ErrConflict.
func (s *Store) CreateTable(ctx context.Context, id, joinCode, name, hostID string) (*Table, error) {
	t, err := scanTable(s.q.db.QueryRow(ctx, `
		INSERT INTO tables (id, join_code, name, host_id)
		VALUES ($1, $2, $3, $4)
		RETURNING `+tableColumns, id, joinCode, name, hostID))
	if err != nil {
		return nil, mapConflict(err)
	}
	return &t, nil
}

func (s *Store) GetTable(ctx context.Context, id string) (*Table, error) {
	t, err := scanTable(s.q.db.QueryRow(ctx, `SELECT `+tableColumns+` FROM tables WHERE id = $1`, id))
	if err != nil {
		return nil, mapNotFound(err)
	}
	return &t, nil
}

func (s *Store) GetTableByJoinCode(ctx context.Context, joinCode string) (*Table, error) {
	t, err := scanTable(s.q.db.QueryRow(ctx, `SELECT `+tableColumns+` FROM tables WHERE join_code = $1`, joinCode))
	if err != nil {
		return nil, mapNotFound(err)
	}
	return &t, nil
}

// EndTable stamps ended_at once; later calls keep the first timestamp.
func (s *Store) EndTable(ctx context.Context, id string, at time.Time) (*Table, error) {
	t, err := scanTable(s.q.db.QueryRow(ctx, `
		UPDATE tables SET ended_at = COALESCE(ended_at, $2)
		WHERE id = $1
		RETURNING `+tableColumns, id, timestamptzParam(at)))
	if err != nil {
		return nil, mapNotFound(err)
	}
	return &t, nil
}

func (q *queries) lockTable(ctx context.Context, id string) (*Table, error) {
	t, err := scanTable(q.db.QueryRow(ctx, `SELECT `+tableColumns+` FROM tables WHERE id = $1 FOR UPDATE`, id))
	if err != nil {
		return nil, mapNotFound(err)
	}
	return &t, nil
}

// LoadTableSnapshot reads a table and all of its children in a single
// read-only transaction so the parts agree with each other.
func (s *Store) LoadTableSnapshot(ctx context.Context, id string) (*TableSnapshot, error) {
	tx, err := s.Pool.BeginTx(ctx, pgx.TxOptions{IsoLevel: pgx.RepeatableRead, AccessMode: pgx.ReadOnly})
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	qtx := s.q.WithTx(tx)
	t, err := scanTable(qtx.db.QueryRow(ctx, `SELECT `+tableColumns+` FROM tables WHERE id = $1`, id))
	if err != nil {
		return nil, mapNotFound(err)
	}
	snap, err := qtx.loadChildren(ctx, t)
	if err != nil {
		return nil, err
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return snap, nil
}

func (q *queries) loadChildren(ctx context.Context, t Table) (*TableSnapshot, error) {
	snap := &TableSnapshot{Table: t}
	var err error
	if snap.Denominations, err = q.getDenominations(ctx, t.ID); err != nil && !errors.Is(err, ErrNotFound) {
		return nil, err
	}
	if snap.EndChipCounts, err = q.getEndChipCounts(ctx, t.ID); err != nil && !errors.Is(err, ErrNotFound) {
		return nil, err
	}
	if snap.Players, err = q.listPlayers(ctx, t.ID); err != nil {
		return nil, err
	}
	if snap.BuyIns, err = q.listBuyIns(ctx, t.ID); err != nil {
		return nil, err
	}
	if snap.ChipCounts, err = q.listChipCounts(ctx, t.ID); err != nil {
		return nil, err
	}
	return snap, nil
}
