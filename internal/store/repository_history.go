package store

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
)

// SettleFunc turns a locked table snapshot into the history record that
// replaces it. Returning an error aborts the archival with nothing written.
type SettleFunc func(snap TableSnapshot, users []User) (GameHistory, error)

// ArchiveTable converts a live table into a GameHistory in one transaction:
// lock the table row, load its children, settle, insert the history and its
// results, then delete children before the table itself. A concurrent second
// call blocks on the row lock and then sees ErrNotFound.
func (s *Store) ArchiveTable(ctx context.Context, tableID string, settle SettleFunc) (*GameHistory, error) {
	tx, err := s.Pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	qtx := s.q.WithTx(tx)
	t, err := qtx.lockTable(ctx, tableID)
	if err != nil {
		return nil, err
	}
	snap, err := qtx.loadChildren(ctx, *t)
	if err != nil {
		return nil, fmt.Errorf("load table snapshot: %w", err)
	}
	users, err := qtx.listUsers(ctx)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	h, err := settle(*snap, users)
	if err != nil {
		return nil, err
	}
	if h.ID == "" {
		h.ID = NewID()
	}
	if err := qtx.insertGameHistory(ctx, &h); err != nil {
		return nil, fmt.Errorf("insert game history: %w", err)
	}
	for i := range h.Results {
		h.Results[i].GameHistoryID = h.ID
		if h.Results[i].ID == "" {
			h.Results[i].ID = NewID()
		}
		if err := qtx.insertPlayerResult(ctx, h.Results[i]); err != nil {
			return nil, fmt.Errorf("insert player result: %w", err)
		}
	}
	if err := qtx.purgeTable(ctx, tableID); err != nil {
		return nil, err
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return &h, nil
}

// children first, parents last
var purgeStatements = []struct {
	name string
	sql  string
}{
	{"chip counts", `DELETE FROM player_chip_counts WHERE table_id = $1`},
	{"buy-ins", `DELETE FROM buy_ins WHERE table_id = $1`},
	{"players", `DELETE FROM players WHERE table_id = $1`},
	{"denominations", `DELETE FROM denominations WHERE table_id = $1`},
	{"end chip counts", `DELETE FROM end_chip_counts WHERE table_id = $1`},
	{"table", `DELETE FROM tables WHERE id = $1`},
}

func (q *queries) purgeTable(ctx context.Context, tableID string) error {
	for _, stmt := range purgeStatements {
		if _, err := q.db.Exec(ctx, stmt.sql, tableID); err != nil {
			return fmt.Errorf("delete %s: %w", stmt.name, err)
		}
	}
	return nil
}

func (q *queries) insertGameHistory(ctx context.Context, h *GameHistory) error {
	return q.db.QueryRow(ctx, `
		INSERT INTO game_histories (id, table_id, table_name, join_code, host_id, created_at, ended_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING archived_at`,
		h.ID, h.TableID, h.TableName, h.JoinCode, h.HostID,
		timestamptzParam(h.CreatedAt), timestamptzParam(h.EndedAt),
	).Scan(&h.ArchivedAt)
}

func (q *queries) insertPlayerResult(ctx context.Context, r PlayerResult) error {
	_, err := q.db.Exec(ctx, `
		INSERT INTO player_game_results (
		  id, game_history_id, user_id, player_name, buy_in_total_cents,
		  chip_white, chip_blue, chip_red, chip_green, chip_black,
		  cash_out_cents, profit_loss_cents
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`,
		r.ID, r.GameHistoryID, textParam(r.UserID), r.PlayerName, r.BuyInTotalCents,
		r.Chips.White, r.Chips.Blue, r.Chips.Red, r.Chips.Green, r.Chips.Black,
		r.CashOutCents, r.ProfitLossCents)
	return err
}

const historyColumns = `id, table_id, table_name, join_code, host_id, created_at, ended_at, archived_at`

func scanHistory(row interface{ Scan(...any) error }) (GameHistory, error) {
	var h GameHistory
	err := row.Scan(&h.ID, &h.TableID, &h.TableName, &h.JoinCode, &h.HostID, &h.CreatedAt, &h.EndedAt, &h.ArchivedAt)
	return h, err
}

const resultColumns = `id, game_history_id, user_id, player_name, buy_in_total_cents,
  chip_white, chip_blue, chip_red, chip_green, chip_black, cash_out_cents, profit_loss_cents`

func scanResult(row interface{ Scan(...any) error }) (PlayerResult, error) {
	var (
		r      PlayerResult
		userID pgtype.Text
	)
	err := row.Scan(&r.ID, &r.GameHistoryID, &userID, &r.PlayerName, &r.BuyInTotalCents,
		&r.Chips.White, &r.Chips.Blue, &r.Chips.Red, &r.Chips.Green, &r.Chips.Black,
		&r.CashOutCents, &r.ProfitLossCents)
	r.UserID = textVal(userID)
	return r, err
}

func (s *Store) GetGameHistory(ctx context.Context, id string) (*GameHistory, error) {
	h, err := scanHistory(s.q.db.QueryRow(ctx, `SELECT `+historyColumns+` FROM game_histories WHERE id = $1`, id))
	if err != nil {
		return nil, mapNotFound(err)
	}
	rows, err := s.q.db.Query(ctx,
		`SELECT `+resultColumns+` FROM player_game_results WHERE game_history_id = $1 ORDER BY player_name, id`, id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	h.Results = []PlayerResult{}
	for rows.Next() {
		r, err := scanResult(rows)
		if err != nil {
			return nil, err
		}
		h.Results = append(h.Results, r)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return &h, nil
}

// FindArchivedTable returns the most recent history for a former live table,
// matched by its table id or join code.
func (s *Store) FindArchivedTable(ctx context.Context, tableID, joinCode string) (*GameHistory, error) {
	h, err := scanHistory(s.q.db.QueryRow(ctx, `
		SELECT `+historyColumns+` FROM game_histories
		WHERE ($1 <> '' AND table_id = $1) OR ($2 <> '' AND join_code = $2)
		ORDER BY archived_at DESC
		LIMIT 1`, tableID, joinCode))
	if err != nil {
		return nil, mapNotFound(err)
	}
	return &h, nil
}

// ListUserResults returns a user's archived results, newest game first.
func (s *Store) ListUserResults(ctx context.Context, userID string, limit, offset int) ([]UserResult, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.q.db.Query(ctx, `
		SELECT r.id, r.game_history_id, r.user_id, r.player_name, r.buy_in_total_cents,
		       r.chip_white, r.chip_blue, r.chip_red, r.chip_green, r.chip_black,
		       r.cash_out_cents, r.profit_loss_cents,
		       h.id, h.table_id, h.table_name, h.join_code, h.host_id, h.created_at, h.ended_at, h.archived_at
		FROM player_game_results r
		JOIN game_histories h ON h.id = r.game_history_id
		WHERE r.user_id = $1
		ORDER BY h.ended_at DESC, h.id DESC
		LIMIT $2 OFFSET $3`, userID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []UserResult{}
	for rows.Next() {
		var (
			ur  UserResult
			uid pgtype.Text
		)
		r, h := &ur.Result, &ur.History
		if err := rows.Scan(&r.ID, &r.GameHistoryID, &uid, &r.PlayerName, &r.BuyInTotalCents,
			&r.Chips.White, &r.Chips.Blue, &r.Chips.Red, &r.Chips.Green, &r.Chips.Black,
			&r.CashOutCents, &r.ProfitLossCents,
			&h.ID, &h.TableID, &h.TableName, &h.JoinCode, &h.HostID, &h.CreatedAt, &h.EndedAt, &h.ArchivedAt); err != nil {
			return nil, err
		}
		r.UserID = textVal(uid)
		out = append(out, ur)
	}
	return out, rows.Err()
}
