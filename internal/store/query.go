package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
)

// Sort orders.
const (
	Asc  = "asc"
	Desc = "desc"
)

// SelectAll returns every row of table in rowid order.
func (c *Conn) SelectAll(ctx context.Context, table string) (*Rows, error) {
	db, err := c.requireTable(ctx, table)
	if err != nil {
		return nil, err
	}
	return query(ctx, db, fmt.Sprintf(`SELECT rowid, * FROM %s`, quoteIdent(table)))
}

// Filter returns the rows whose column contains term.
func (c *Conn) Filter(ctx context.Context, table, column, term string) (*Rows, error) {
	db, err := c.requireTable(ctx, table)
	if err != nil {
		return nil, err
	}
	q := fmt.Sprintf(`SELECT rowid, * FROM %s WHERE %s LIKE ?`, quoteIdent(table), quoteIdent(column))
	return query(ctx, db, q, "%"+term+"%")
}

// Sort returns every row of table ordered by column.
func (c *Conn) Sort(ctx context.Context, table, column, order string) (*Rows, error) {
	order = strings.ToLower(order)
	if order != Asc && order != Desc {
		return nil, fmt.Errorf("sort order %q: want asc or desc", order)
	}
	db, err := c.requireTable(ctx, table)
	if err != nil {
		return nil, err
	}
	q := fmt.Sprintf(`SELECT rowid, * FROM %s ORDER BY %s %s`, quoteIdent(table), quoteIdent(column), strings.ToUpper(order))
	return query(ctx, db, q)
}

func query(ctx context.Context, db *sql.DB, q string, args ...any) (*Rows, error) {
	rows, err := db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	cols, err := rows.Columns()
	if err != nil {
		return nil, err
	}
	out := &Rows{Columns: cols[1:]}
	for rows.Next() {
		var rowid int64
		raw := make([]any, len(cols)-1)
		dest := make([]any, len(cols))
		dest[0] = &rowid
		for i := range raw {
			dest[i+1] = &raw[i]
		}
		if err := rows.Scan(dest...); err != nil {
			return nil, err
		}
		vals := make([]string, len(raw))
		for i, v := range raw {
			vals[i] = Text(v)
		}
		out.RowIDs = append(out.RowIDs, rowid)
		out.Values = append(out.Values, vals)
	}
	return out, rows.Err()
}

// Row returns the raw values of one row.
func (c *Conn) Row(ctx context.Context, table string, rowid int64) (Record, error) {
	db, err := c.requireTable(ctx, table)
	if err != nil {
		return Record{}, err
	}
	rows, err := db.QueryContext(ctx, fmt.Sprintf(`SELECT * FROM %s WHERE rowid = ?`, quoteIdent(table)), rowid)
	if err != nil {
		return Record{}, err
	}
	defer rows.Close()
	cols, err := rows.Columns()
	if err != nil {
		return Record{}, err
	}
	if !rows.Next() {
		if err := rows.Err(); err != nil {
			return Record{}, err
		}
		return Record{}, fmt.Errorf("%s rowid %d: %w", table, rowid, ErrNoRow)
	}
	vals := make([]any, len(cols))
	dest := make([]any, len(cols))
	for i := range vals {
		dest[i] = &vals[i]
	}
	if err := rows.Scan(dest...); err != nil {
		return Record{}, err
	}
	return Record{Columns: cols, Values: vals}, nil
}

// Cell returns one value as display text.
func (c *Conn) Cell(ctx context.Context, table, column string, rowid int64) (string, error) {
	db, err := c.requireTable(ctx, table)
	if err != nil {
		return "", err
	}
	var v any
	q := fmt.Sprintf(`SELECT %s FROM %s WHERE rowid = ?`, quoteIdent(column), quoteIdent(table))
	err = db.QueryRowContext(ctx, q, rowid).Scan(&v)
	if errors.Is(err, sql.ErrNoRows) {
		return "", fmt.Errorf("%s rowid %d: %w", table, rowid, ErrNoRow)
	}
	if err != nil {
		return "", err
	}
	return Text(v), nil
}

// InsertDefault inserts a row of default values and returns its rowid.
func (c *Conn) InsertDefault(ctx context.Context, table string) (int64, error) {
	db, err := c.requireTable(ctx, table)
	if err != nil {
		return 0, err
	}
	res, err := db.ExecContext(ctx, fmt.Sprintf(`INSERT INTO %s DEFAULT VALUES`, quoteIdent(table)))
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

// UpdateCell sets one value.
func (c *Conn) UpdateCell(ctx context.Context, table, column string, rowid int64, value string) error {
	db, err := c.requireTable(ctx, table)
	if err != nil {
		return err
	}
	q := fmt.Sprintf(`UPDATE %s SET %s = ? WHERE rowid = ?`, quoteIdent(table), quoteIdent(column))
	res, err := db.ExecContext(ctx, q, value, rowid)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("%s rowid %d: %w", table, rowid, ErrNoRow)
	}
	return nil
}

// Delete removes rows in one transaction and returns the rowids that
// existed.
func (c *Conn) Delete(ctx context.Context, table string, rowids []int64) ([]int64, error) {
	db, err := c.requireTable(ctx, table)
	if err != nil {
		return nil, err
	}
	var deleted []int64
	err = withTx(ctx, db, func(tx *sql.Tx) error {
		stmt, err := tx.PrepareContext(ctx, fmt.Sprintf(`DELETE FROM %s WHERE rowid = ?`, quoteIdent(table)))
		if err != nil {
			return err
		}
		defer stmt.Close()
		for _, id := range rowids {
			res, err := stmt.ExecContext(ctx, id)
			if err != nil {
				return err
			}
			n, err := res.RowsAffected()
			if err != nil {
				return err
			}
			if n > 0 {
				deleted = append(deleted, id)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return deleted, nil
}

// InsertRows inserts records into table and returns the new rowids. Only
// columns present in table are written, and a rowid alias column is left
// for SQLite to assign.
func (c *Conn) InsertRows(ctx context.Context, table string, recs []Record) ([]int64, error) {
	cols, err := c.Columns(ctx, table)
	if err != nil {
		return nil, err
	}
	db, err := c.handle()
	if err != nil {
		return nil, err
	}
	alias := rowidAlias(cols)
	known := make(map[string]bool, len(cols))
	for _, col := range cols {
		known[col.Name] = col.Name != alias
	}

	var ids []int64
	err = withTx(ctx, db, func(tx *sql.Tx) error {
		for _, rec := range recs {
			var names []string
			var args []any
			for i, name := range rec.Columns {
				if known[name] && i < len(rec.Values) {
					names = append(names, quoteIdent(name))
					args = append(args, rec.Values[i])
				}
			}
			q := fmt.Sprintf(`INSERT INTO %s DEFAULT VALUES`, quoteIdent(table))
			if len(names) > 0 {
				q = fmt.Sprintf(`INSERT INTO %s (%s) VALUES (%s)`,
					quoteIdent(table), strings.Join(names, ", "), placeholders(len(names)))
			}
			res, err := tx.ExecContext(ctx, q, args...)
			if err != nil {
				return err
			}
			id, err := res.LastInsertId()
			if err != nil {
				return err
			}
			ids = append(ids, id)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return ids, nil
}

// Clone creates newName with the schema of table. With copyRows it also
// copies rows: all of them, or only rowids when given.
func (c *Conn) Clone(ctx context.Context, table, newName string, copyRows bool, rowids []int64) error {
	if newName == "" {
		return errors.New("clone: empty table name")
	}
	schema, err := c.Schema(ctx, table)
	if err != nil {
		return err
	}
	body, err := tableBody(schema)
	if err != nil {
		return fmt.Errorf("clone %s: %w", table, err)
	}
	create := "CREATE TABLE " + quoteIdent(newName) + " " + body

	db, err := c.handle()
	if err != nil {
		return err
	}
	return withTx(ctx, db, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, create); err != nil {
			return fmt.Errorf("clone %s: %w", table, err)
		}
		if !copyRows {
			return nil
		}
		q := fmt.Sprintf(`INSERT INTO %s SELECT * FROM %s`, quoteIdent(newName), quoteIdent(table))
		args := make([]any, len(rowids))
		for i, id := range rowids {
			args[i] = id
		}
		if len(rowids) > 0 {
			q += ` WHERE rowid IN (` + placeholders(len(rowids)) + `)`
		}
		_, err := tx.ExecContext(ctx, q, args...)
		return err
	})
}

// tableBody returns the part of a CREATE TABLE statement after the table
// name: the column list and any table options.
func tableBody(schema string) (string, error) {
	rest := strings.TrimSpace(schema)
	for _, kw := range []string{"CREATE", "TABLE", "IF", "NOT", "EXISTS"} {
		word, tail, _ := strings.Cut(rest, " ")
		if !strings.EqualFold(word, kw) {
			if kw == "CREATE" || kw == "TABLE" {
				return "", fmt.Errorf("unexpected schema %q", schema)
			}
			break
		}
		rest = strings.TrimSpace(tail)
	}
	// Skip the name, which may be schema-qualified.
	for {
		n, err := identLen(rest)
		if err != nil {
			return "", fmt.Errorf("schema %q: %w", schema, err)
		}
		rest = strings.TrimSpace(rest[n:])
		if !strings.HasPrefix(rest, ".") {
			break
		}
		rest = strings.TrimSpace(rest[1:])
	}
	if !strings.HasPrefix(rest, "(") {
		return "", fmt.Errorf("unexpected schema %q", schema)
	}
	return rest, nil
}

// identLen returns the length of the quoted or bare identifier at the start
// of s.
func identLen(s string) (int, error) {
	if s == "" {
		return 0, errors.New("missing table name")
	}
	closing := map[byte]byte{'"': '"', '`': '`', '\'': '\'', '[': ']'}
	end, quoted := closing[s[0]]
	if !quoted {
		n := strings.IndexAny(s, " \t\n(.")
		if n < 0 {
			return len(s), nil
		}
		return n, nil
	}
	for i := 1; i < len(s); i++ {
		if s[i] != end {
			continue
		}
		// A doubled quote is an escaped quote.
		if end != ']' && i+1 < len(s) && s[i+1] == end {
			i++
			continue
		}
		return i + 1, nil
	}
	return 0, errors.New("unterminated table name")
}

func withTx(ctx context.Context, db *sql.DB, fn func(tx *sql.Tx) error) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	if err := fn(tx); err != nil {
		_ = tx.Rollback()
		return err
	}
	return tx.Commit()
}
