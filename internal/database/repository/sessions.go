package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/jask/dbrowse/internal/database"
)

// ErrNoSession is returned when a named session does not exist.
var ErrNoSession = errors.New("no such session")

// SessionRepo stores named sessions.
type SessionRepo struct {
	db *sql.DB
}

func NewSessionRepo(db *sql.DB) *SessionRepo {
	return &SessionRepo{db: db}
}

// Save stores tables under name, replacing any session of that name.
func (r *SessionRepo) Save(ctx context.Context, name string, tables []TableRef) (Session, error) {
	if name == "" {
		return Session{}, errors.New("session name is empty")
	}
	id := uuid.NewString()
	err := database.WithTx(ctx, r.db, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `DELETE FROM sessions WHERE name = ?`, name); err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx, `
		INSERT INTO sessions(id, name, created_at, updated_at)
		VALUES (?, ?, CURRENT_TIMESTAMP, CURRENT_TIMESTAMP)
		`, id, name); err != nil {
			return err
		}
		for i, t := range tables {
			if _, err := tx.ExecContext(ctx, `
			INSERT INTO session_tables(session_id, position, db_path, table_name)
			VALUES (?, ?, ?, ?)
			`, id, i, t.DB, t.Table); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return Session{}, err
	}
	return r.Load(ctx, name)
}

// Load returns the session called name.
func (r *SessionRepo) Load(ctx context.Context, name string) (Session, error) {
	var s Session
	err := r.db.QueryRowContext(ctx, `SELECT id, name, created_at, updated_at FROM sessions WHERE name = ?`, name).
		Scan(&s.ID, &s.Name, &s.CreatedAt, &s.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return Session{}, fmt.Errorf("%s: %w", name, ErrNoSession)
	}
	if err != nil {
		return Session{}, err
	}
	rows, err := r.db.QueryContext(ctx, `SELECT db_path, table_name FROM session_tables WHERE session_id = ? ORDER BY position`, s.ID)
	if err != nil {
		return Session{}, err
	}
	defer rows.Close()
	for rows.Next() {
		var t TableRef
		if err := rows.Scan(&t.DB, &t.Table); err != nil {
			return Session{}, err
		}
		s.Tables = append(s.Tables, t)
	}
	return s, rows.Err()
}

// List returns the session names in name order.
func (r *SessionRepo) List(ctx context.Context) ([]string, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT name FROM sessions ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		out = append(out, name)
	}
	return out, rows.Err()
}

// Delete removes the session called name.
func (r *SessionRepo) Delete(ctx context.Context, name string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM sessions WHERE name = ?`, name)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("%s: %w", name, ErrNoSession)
	}
	return nil
}
