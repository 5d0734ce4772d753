package store

import (
	"context"
)

const userColumns = `id, email, display_name, created_at`

func scanUser(row interface{ Scan(...any) error }) (User, error) {
	var u User
	err := row.Scan(&u.ID, &u.Email, &u.DisplayName, &u.CreatedAt)
	return u, err
}

// EnsureUser creates the profile row for an identity on first sight and
// backfills the email when it was previously unknown.
func (s *Store) EnsureUser(ctx context.Context, id, email string) (*User, error) {
	return s.q.ensureUser(ctx, id, email)
}

func (q *queries) ensureUser(ctx context.Context, id, email string) (*User, error) {
	row := q.db.QueryRow(ctx, `
		INSERT INTO users (id, email, display_name)
		VALUES ($1, $2, '')
		ON CONFLICT (id) DO UPDATE
		  SET email = CASE WHEN users.email = '' THEN EXCLUDED.email ELSE users.email END
		RETURNING `+userColumns, id, email)
	u, err := scanUser(row)
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (s *Store) GetUser(ctx context.Context, id string) (*User, error) {
	u, err := scanUser(s.q.db.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id))
	if err != nil {
		return nil, mapNotFound(err)
	}
	return &u, nil
}

func (s *Store) UpdateUserDisplayName(ctx context.Context, id, displayName string) (*User, error) {
	u, err := scanUser(s.q.db.QueryRow(ctx,
		`UPDATE users SET display_name = $2 WHERE id = $1 RETURNING `+userColumns, id, displayName))
	if err != nil {
		return nil, mapNotFound(err)
	}
	return &u, nil
}

func (s *Store) ListUsers(ctx context.Context) ([]User, error) {
	return s.q.listUsers(ctx)
}

func (q *queries) listUsers(ctx context.Context) ([]User, error) {
	rows, err := q.db.Query(ctx, `SELECT `+userColumns+` FROM users ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []User{}
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, u)
	}
	return out, rows.Err()
}
