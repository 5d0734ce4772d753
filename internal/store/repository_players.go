package store

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
)

const playerColumns = `id, table_id, name, user_id, created_at`

func scanPlayer(row interface{ Scan(...any) error }) (Player, error) {
	var (
		p      Player
		userID pgtype.Text
	)
	if err := row.Scan(&p.ID, &p.TableID, &p.Name, &userID, &p.CreatedAt); err != nil {
		return Player{}, err
	}
	p.UserID = textVal(userID)
	return p, nil
}

func (s *Store) CreatePlayer(ctx context.Context, tableID, name, userID string) (*Player, error) {
	p, err := scanPlayer(s.q.db.QueryRow(ctx, `
		INSERT INTO players (id, table_id, name, user_id)
		VALUES ($1, $2, $3, $4)
		RETURNING `+playerColumns, NewID(), tableID, name, textParam(userID)))
	if err != nil {
		return nil, mapForeignKey(err)
	}
	return &p, nil
}

// GetPlayer returns a player only if it sits at the given table.
func (s *Store) GetPlayer(ctx context.Context, tableID, playerID string) (*Player, error) {
	p, err := scanPlayer(s.q.db.QueryRow(ctx,
		`SELECT `+playerColumns+` FROM players WHERE id = $1 AND table_id = $2`, playerID, tableID))
	if err != nil {
		return nil, mapNotFound(err)
	}
	return &p, nil
}

func (q *queries) listPlayers(ctx context.Context, tableID string) ([]Player, error) {
	rows, err := q.db.Query(ctx,
		`SELECT `+playerColumns+` FROM players WHERE table_id = $1 ORDER BY created_at, id`, tableID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []Player{}
	for rows.Next() {
		p, err := scanPlayer(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

// DeletePlayer removes a player together with the player's buy-ins and chip
// counts.
func (s *Store) DeletePlayer(ctx context.Context, tableID, playerID string) error {
	tx, err := s.Pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	qtx := s.q.WithTx(tx)
	if _, err := qtx.db.Exec(ctx, `DELETE FROM player_chip_counts WHERE player_id = $1 AND table_id = $2`, playerID, tableID); err != nil {
		return err
	}
	if _, err := qtx.db.Exec(ctx, `DELETE FROM buy_ins WHERE player_id = $1 AND table_id = $2`, playerID, tableID); err != nil {
		return err
	}
	tag, err := qtx.db.Exec(ctx, `DELETE FROM players WHERE id = $1 AND table_id = $2`, playerID, tableID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return tx.Commit(ctx)
}
