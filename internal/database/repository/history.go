package repository

import (
	"context"
	"database/sql"
	"strings"

	"github.com/google/uuid"

	"github.com/jask/dbrowse/internal/database"
)

// HistoryRepo stores command-line history, newest last by insertion.
type HistoryRepo struct {
	db *sql.DB
}

func NewHistoryRepo(db *sql.DB) *HistoryRepo {
	return &HistoryRepo{db: db}
}

// Append records line as the newest entry. An older identical entry is
// removed first. Blank lines are ignored.
func (r *HistoryRepo) Append(ctx context.Context, line string) error {
	if strings.TrimSpace(line) == "" {
		return nil
	}
	return database.WithTx(ctx, r.db, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `DELETE FROM history WHERE line = ?`, line); err != nil {
			return err
		}
		_, err := tx.ExecContext(ctx, `
		INSERT INTO history(id, line, created_at)
		VALUES (?, ?, ?)
		`, uuid.NewString(), line, database.Now())
		return err
	})
}

// Recent returns up to limit entries, newest first. A limit of 0 or less
// returns everything.
func (r *HistoryRepo) Recent(ctx context.Context, limit int) ([]HistoryEntry, error) {
	if limit <= 0 {
		limit = -1
	}
	rows, err := r.db.QueryContext(ctx, `SELECT id, line, created_at FROM history ORDER BY seq DESC LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []HistoryEntry
	for rows.Next() {
		var e HistoryEntry
		if err := rows.Scan(&e.ID, &e.Line, &e.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

// Lines returns the text of Recent.
func (r *HistoryRepo) Lines(ctx context.Context, limit int) ([]string, error) {
	entries, err := r.Recent(ctx, limit)
	if err != nil {
		return nil, err
	}
	lines := make([]string, len(entries))
	for i, e := range entries {
		lines[i] = e.Line
	}
	return lines, nil
}

// Trim keeps the newest keep entries and reports how many were removed.
func (r *HistoryRepo) Trim(ctx context.Context, keep int) (int64, error) {
	if keep < 0 {
		keep = 0
	}
	res, err := r.db.ExecContext(ctx, `
	DELETE FROM history WHERE seq NOT IN (
		SELECT seq FROM history ORDER BY seq DESC LIMIT ?
	)`, keep)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
