// Package store reads and edits the SQLite databases being browsed. Every
// query addresses rows by rowid and quotes table and column names.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

var (
	ErrNotConnected = errors.New("no connection to the database")
	ErrNoTable      = errors.New("no such table")
	ErrNoRow        = errors.New("no such row")
)

// Conn is an open browsed database.
type Conn struct {
	path string
	db   *sql.DB
}

// Open connects to an existing database file. A missing file is an error
// wrapping os.ErrNotExist rather than a new empty database.
func Open(path string) (*Conn, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	dsn := fmt.Sprintf("file:%s?_foreign_keys=on&_busy_timeout=5000", path)
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(1) // sqlite
	db.SetConnMaxLifetime(0)
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	return &Conn{path: path, db: db}, nil
}

// Path returns the file the connection was opened on.
func (c *Conn) Path() string { return c.path }

// Close closes the connection. Closing twice is harmless.
func (c *Conn) Close() error {
	if c.db == nil {
		return nil
	}
	err := c.db.Close()
	c.db = nil
	return err
}

func (c *Conn) handle() (*sql.DB, error) {
	if c == nil || c.db == nil {
		return nil, ErrNotConnected
	}
	return c.db, nil
}

// Column describes one column of a table.
type Column struct {
	Name    string
	Type    string
	NotNull bool
	Default sql.NullString
	// PK is the 1-based position in the primary key, or 0.
	PK int
}

// Rows is a query result. RowIDs[i] is the rowid of Values[i].
type Rows struct {
	Columns []string
	RowIDs  []int64
	Values  [][]string
}

// Len returns the number of rows.
func (r *Rows) Len() int { return len(r.RowIDs) }

// Record is one row with its raw values, as kept by the copy buffer.
type Record struct {
	Columns []string
	Values  []any
}

// Tables lists the user tables in name order.
func (c *Conn) Tables(ctx context.Context) ([]string, error) {
	db, err := c.handle()
	if err != nil {
		return nil, err
	}
	rows, err := db.QueryContext(ctx, `SELECT name FROM sqlite_master WHERE type = 'table' AND name NOT LIKE 'sqlite_%' ORDER BY name`)
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

// HasTable reports whether table exists.
func (c *Conn) HasTable(ctx context.Context, table string) (bool, error) {
	db, err := c.handle()
	if err != nil {
		return false, err
	}
	var n int
	err = db.QueryRowContext(ctx, `SELECT count(*) FROM sqlite_master WHERE type = 'table' AND name = ?`, table).Scan(&n)
	return n > 0, err
}

func (c *Conn) requireTable(ctx context.Context, table string) (*sql.DB, error) {
	db, err := c.handle()
	if err != nil {
		return nil, err
	}
	ok, err := c.HasTable(ctx, table)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("%s: %w", table, ErrNoTable)
	}
	return db, nil
}

// Columns describes the columns of table in declaration order.
func (c *Conn) Columns(ctx context.Context, table string) ([]Column, error) {
	db, err := c.requireTable(ctx, table)
	if err != nil {
		return nil, err
	}
	rows, err := db.QueryContext(ctx, `SELECT cid, name, type, "notnull", dflt_value, pk FROM pragma_table_info(?)`, table)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []Column
	for rows.Next() {
		var (
			cid int
			col Column
		)
		if err := rows.Scan(&cid, &col.Name, &col.Type, &col.NotNull, &col.Default, &col.PK); err != nil {
			return nil, err
		}
		out = append(out, col)
	}
	return out, rows.Err()
}

// ColumnNames returns the names of table's columns.
func (c *Conn) ColumnNames(ctx context.Context, table string) ([]string, error) {
	cols, err := c.Columns(ctx, table)
	if err != nil {
		return nil, err
	}
	names := make([]string, len(cols))
	for i, col := range cols {
		names[i] = col.Name
	}
	return names, nil
}

// PrimaryKeys returns the primary key columns of table in key order.
func (c *Conn) PrimaryKeys(ctx context.Context, table string) ([]string, error) {
	cols, err := c.Columns(ctx, table)
	if err != nil {
		return nil, err
	}
	keys := make([]string, 0, 1)
	for pos := 1; ; pos++ {
		found := false
		for _, col := range cols {
			if col.PK == pos {
				keys = append(keys, col.Name)
				found = true
			}
		}
		if !found {
			return keys, nil
		}
	}
}

// rowidAlias returns the column that aliases rowid, if any.
func rowidAlias(cols []Column) string {
	var pk []Column
	for _, col := range cols {
		if col.PK > 0 {
			pk = append(pk, col)
		}
	}
	if len(pk) == 1 && strings.EqualFold(pk[0].Type, "INTEGER") {
		return pk[0].Name
	}
	return ""
}

// Schema returns the CREATE TABLE statement of table.
func (c *Conn) Schema(ctx context.Context, table string) (string, error) {
	db, err := c.handle()
	if err != nil {
		return "", err
	}
	var schema string
	err = db.QueryRowContext(ctx, `SELECT sql FROM sqlite_master WHERE type = 'table' AND name = ?`, table).Scan(&schema)
	if errors.Is(err, sql.ErrNoRows) {
		return "", fmt.Errorf("%s: %w", table, ErrNoTable)
	}
	return schema, err
}

// quoteIdent quotes a table or column name for SQLite.
func quoteIdent(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}

func placeholders(n int) string {
	if n <= 0 {
		return ""
	}
	return strings.TrimSuffix(strings.Repeat("?,", n), ",")
}

// Text renders a stored value for display. NULL is empty.
func Text(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case []byte:
		return string(x)
	case string:
		return x
	case time.Time:
		return x.Format(time.DateTime)
	default:
		return fmt.Sprint(x)
	}
}
