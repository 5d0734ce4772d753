package store

import (
	"context"
)

const buyInColumns = `id, table_id, player_id, amount_cents, created_at`

func scanBuyIn(row interface{ Scan(...any) error }) (BuyIn, error) {
	var b BuyIn
	err := row.Scan(&b.ID, &b.TableID, &b.PlayerID, &b.AmountCents, &b.CreatedAt)
	return b, err
}

// AddBuyIn appends a signed ledger entry. Negative amounts record corrections
// and mid-game cash-outs; prior entries are never modified.
func (s *Store) AddBuyIn(ctx context.Context, tableID, playerID string, amountCents int64) (*BuyIn, error) {
	b, err := scanBuyIn(s.q.db.QueryRow(ctx, `
		INSERT INTO buy_ins (id, table_id, player_id, amount_cents)
		VALUES ($1, $2, $3, $4)
		RETURNING `+buyInColumns, NewID(), tableID, playerID, amountCents))
	if err != nil {
		return nil, mapForeignKey(err)
	}
	return &b, nil
}

func (s *Store) DeleteBuyIn(ctx context.Context, tableID, buyInID string) error {
	tag, err := s.q.db.Exec(ctx, `DELETE FROM buy_ins WHERE id = $1 AND table_id = $2`, buyInID, tableID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *Store) ListBuyIns(ctx context.Context, tableID string) ([]BuyIn, error) {
	return s.q.listBuyIns(ctx, tableID)
}

func (q *queries) listBuyIns(ctx context.Context, tableID string) ([]BuyIn, error) {
	rows, err := q.db.Query(ctx,
		`SELECT `+buyInColumns+` FROM buy_ins WHERE table_id = $1 ORDER BY created_at, id`, tableID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []BuyIn{}
	for rows.Next() {
		b, err := scanBuyIn(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, b)
	}
	return out, rows.Err()
}

const chipCountColumns = `id, player_id, table_id, white, blue, red, green, black, updated_at`

func scanChipCount(row interface{ Scan(...any) error }) (ChipCount, error) {
	var c ChipCount
	err := row.Scan(&c.ID, &c.PlayerID, &c.TableID, &c.White, &c.Blue, &c.Red, &c.Green, &c.Black, &c.UpdatedAt)
	return c, err
}

// UpsertChipCount keeps exactly one current snapshot per (player, table);
// the last write wins.
func (s *Store) UpsertChipCount(ctx context.Context, c ChipCount) (*ChipCount, error) {
	out, err := scanChipCount(s.q.db.QueryRow(ctx, `
		INSERT INTO player_chip_counts (id, player_id, table_id, white, blue, red, green, black)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (player_id, table_id) DO UPDATE
		  SET white = EXCLUDED.white,
		      blue = EXCLUDED.blue,
		      red = EXCLUDED.red,
		      green = EXCLUDED.green,
		      black = EXCLUDED.black,
		      updated_at = now()
		RETURNING `+chipCountColumns,
		NewID(), c.PlayerID, c.TableID, c.White, c.Blue, c.Red, c.Green, c.Black))
	if err != nil {
		return nil, mapForeignKey(err)
	}
	return &out, nil
}

func (s *Store) ListChipCounts(ctx context.Context, tableID string) ([]ChipCount, error) {
	return s.q.listChipCounts(ctx, tableID)
}

func (q *queries) listChipCounts(ctx context.Context, tableID string) ([]ChipCount, error) {
	rows, err := q.db.Query(ctx,
		`SELECT `+chipCountColumns+` FROM player_chip_counts WHERE table_id = $1 ORDER BY updated_at, id`, tableID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []ChipCount{}
	for rows.Next() {
		c, err := scanChipCount(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}
