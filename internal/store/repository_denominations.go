package store

import (
	"context"

	"chip-ledger/internal/money"

	"github.com/shopspring/decimal"
)

const denominationColumns = `table_id, white::text, blue::text, red::text, green::text, black::text, updated_at`

func scanDenominations(row interface{ Scan(...any) error }) (Denominations, error) {
	var (
		d   Denominations
		raw [5]string
	)
	if err := row.Scan(&d.TableID, &raw[0], &raw[1], &raw[2], &raw[3], &raw[4], &d.UpdatedAt); err != nil {
		return Denominations{}, err
	}
	dst := [5]*decimal.Decimal{&d.White, &d.Blue, &d.Red, &d.Green, &d.Black}
	for i, v := range raw {
		parsed, err := decimalVal(v)
		if err != nil {
			return Denominations{}, err
		}
		*dst[i] = parsed
	}
	return d, nil
}

// UpsertDenominations overwrites all five values; there is no partial update.
func (s *Store) UpsertDenominations(ctx context.Context, tableID string, d money.Denominations) (*Denominations, error) {
	out, err := scanDenominations(s.q.db.QueryRow(ctx, `
		INSERT INTO denominations (table_id, white, blue, red, green, black)
		VALUES ($1, $2::numeric, $3::numeric, $4::numeric, $5::numeric, $6::numeric)
		ON CONFLICT (table_id) DO UPDATE
		  SET white = EXCLUDED.white,
		      blue = EXCLUDED.blue,
		      red = EXCLUDED.red,
		      green = EXCLUDED.green,
		      black = EXCLUDED.black,
		      updated_at = now()
		RETURNING `+denominationColumns,
		tableID, d.White.String(), d.Blue.String(), d.Red.String(), d.Green.String(), d.Black.String()))
	if err != nil {
		return nil, mapForeignKey(err)
	}
	return &out, nil
}

func (s *Store) GetDenominations(ctx context.Context, tableID string) (*Denominations, error) {
	return s.q.getDenominations(ctx, tableID)
}

func (q *queries) getDenominations(ctx context.Context, tableID string) (*Denominations, error) {
	d, err := scanDenominations(q.db.QueryRow(ctx, `SELECT `+denominationColumns+` FROM denominations WHERE table_id = $1`, tableID))
	if err != nil {
		return nil, mapNotFound(err)
	}
	return &d, nil
}

const endChipCountColumns = `table_id, white, blue, red, green, black, updated_at`

func scanEndChipCounts(row interface{ Scan(...any) error }) (EndChipCounts, error) {
	var e EndChipCounts
	err := row.Scan(&e.TableID, &e.White, &e.Blue, &e.Red, &e.Green, &e.Black, &e.UpdatedAt)
	return e, err
}

func (s *Store) UpsertEndChipCounts(ctx context.Context, tableID string, c money.ChipCounts) (*EndChipCounts, error) {
	out, err := scanEndChipCounts(s.q.db.QueryRow(ctx, `
		INSERT INTO end_chip_counts (table_id, white, blue, red, green, black)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (table_id) DO UPDATE
		  SET white = EXCLUDED.white,
		      blue = EXCLUDED.blue,
		      red = EXCLUDED.red,
		      green = EXCLUDED.green,
		      black = EXCLUDED.black,
		      updated_at = now()
		RETURNING `+endChipCountColumns,
		tableID, c.White, c.Blue, c.Red, c.Green, c.Black))
	if err != nil {
		return nil, mapForeignKey(err)
	}
	return &out, nil
}

func (q *queries) getEndChipCounts(ctx context.Context, tableID string) (*EndChipCounts, error) {
	e, err := scanEndChipCounts(q.db.QueryRow(ctx, `SELECT `+endChipCountColumns+` FROM end_chip_counts WHERE table_id = $1`, tableID))
	if err != nil {
		return nil, mapNotFound(err)
	}
	return &e, nil
}
