package app

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/jask/dbrowse/internal/cmdline"
	"github.com/jask/dbrowse/internal/event"
	"github.com/jask/dbrowse/internal/store"
)

// targetRows returns the selected rows of t, or the row under the cursor
// when nothing is selected.
func (c *Context) targetRows(t *Table) []int64 {
	if sel := c.Selection.Get(t.Ref); len(sel) > 0 {
		return sel
	}
	if id, ok := t.CurrentRowID(); ok {
		return []int64{id}
	}
	return nil
}

// Reload reruns the full query of the current table.
func (c *Context) Reload(ctx context.Context) error {
	t, conn, err := c.Current()
	if err != nil {
		return err
	}
	rows, err := conn.SelectAll(ctx, t.Ref.Table)
	if err != nil {
		return err
	}
	c.emitQuery(t.Ref, rows)
	return nil
}

func (c *Context) emitQuery(ref event.TableRef, rows *store.Rows) {
	c.Bus.Emit(event.Query{Ref: ref, Columns: rows.Columns, RowIDs: rows.RowIDs, Values: rows.Values})
}

// Filter shows the rows whose current column contains term. An empty term
// shows every row.
func (c *Context) Filter(ctx context.Context, term string) (int, error) {
	t, conn, err := c.Current()
	if err != nil {
		return 0, err
	}
	col, ok := t.CurrentColumn()
	if !ok {
		return 0, ErrNoColumn
	}
	var rows *store.Rows
	if term == "" {
		rows, err = conn.SelectAll(ctx, t.Ref.Table)
	} else {
		rows, err = conn.Filter(ctx, t.Ref.Table, col, term)
	}
	if err != nil {
		return 0, err
	}
	c.emitQuery(t.Ref, rows)
	return rows.Len(), nil
}

// Sort orders the current table by column, or by the current column when
// column is empty.
func (c *Context) Sort(ctx context.Context, order, column string) error {
	t, conn, err := c.Current()
	if err != nil {
		return err
	}
	if column == "" {
		var ok bool
		if column, ok = t.CurrentColumn(); !ok {
			return ErrNoColumn
		}
	} else if err := checkColumn(ctx, conn, t.Ref.Table, column); err != nil {
		return err
	}
	rows, err := conn.Sort(ctx, t.Ref.Table, column, order)
	if err != nil {
		return err
	}
	c.emitQuery(t.Ref, rows)
	return nil
}

// checkColumn fails when table has no column called column, suggesting the
// closest name. SQLite would otherwise read an unknown quoted name as a
// string literal.
func checkColumn(ctx context.Context, conn *store.Conn, table, column string) error {
	names, err := conn.ColumnNames(ctx, table)
	if err != nil {
		return err
	}
	if slices.ContainsFunc(names, func(n string) bool { return strings.EqualFold(n, column) }) {
		return nil
	}
	if s, ok := cmdline.Suggest(column, names); ok {
		return fmt.Errorf("%w: %s (did you mean %s?)", ErrUnknownColumn, column, s)
	}
	return fmt.Errorf("%w: %s", ErrUnknownColumn, column)
}

// NewEntry inserts a row of default values into the current table.
func (c *Context) NewEntry(ctx context.Context) (int64, error) {
	t, conn, err := c.Current()
	if err != nil {
		return 0, err
	}
	id, err := conn.InsertDefault(ctx, t.Ref.Table)
	if err != nil {
		return 0, err
	}
	if err := c.emitInserted(ctx, conn, t.Ref, []int64{id}); err != nil {
		return id, err
	}
	return id, nil
}

func (c *Context) emitInserted(ctx context.Context, conn *store.Conn, ref event.TableRef, ids []int64) error {
	e := event.Inserted{Ref: ref, RowIDs: ids, Values: make([][]string, len(ids))}
	for i, id := range ids {
		rec, err := conn.Row(ctx, ref.Table, id)
		if err != nil {
			return err
		}
		vals := make([]string, len(rec.Values))
		for j, v := range rec.Values {
			vals[j] = store.Text(v)
		}
		e.Values[i] = vals
	}
	c.Bus.Emit(e)
	return nil
}

// UpdateCell sets the current column of row rowid.
func (c *Context) UpdateCell(ctx context.Context, rowid int64, value string) error {
	t, conn, err := c.Current()
	if err != nil {
		return err
	}
	col, ok := t.CurrentColumn()
	if !ok {
		return ErrNoColumn
	}
	if err := conn.UpdateCell(ctx, t.Ref.Table, col, rowid, value); err != nil {
		return err
	}
	shown, err := conn.Cell(ctx, t.Ref.Table, col, rowid)
	if err != nil {
		return err
	}
	c.Log.Debug("updated cell", "table", t.Name(), "rowid", rowid, "column", col)
	c.Bus.Emit(event.Updated{Ref: t.Ref, RowID: rowid, Column: col, Value: shown})
	return nil
}

// DeleteRows deletes rows from the current table. With no rowids it deletes
// the selection, or the row under the cursor.
func (c *Context) DeleteRows(ctx context.Context, rowids []int64) (int, error) {
	t, conn, err := c.Current()
	if err != nil {
		return 0, err
	}
	if len(rowids) == 0 {
		rowids = c.targetRows(t)
	}
	if len(rowids) == 0 {
		return 0, errors.New("nothing to delete")
	}
	deleted, err := conn.Delete(ctx, t.Ref.Table, rowids)
	if err != nil {
		return 0, err
	}
	c.Selection.Clear()
	c.Bus.Emit(event.Deleted{Ref: t.Ref, RowIDs: deleted})
	return len(deleted), nil
}

// CopyRows copies the selected rows, or the row under the cursor, into
// copy buffer key.
func (c *Context) CopyRows(ctx context.Context, key string) (int, error) {
	t, conn, err := c.Current()
	if err != nil {
		return 0, err
	}
	ids := c.targetRows(t)
	if len(ids) == 0 {
		return 0, errors.New("nothing to copy")
	}
	recs := make([]store.Record, 0, len(ids))
	for _, id := range ids {
		rec, err := conn.Row(ctx, t.Ref.Table, id)
		if err != nil {
			return 0, err
		}
		recs = append(recs, rec)
	}
	if err := c.Copy.Set(key, recs); err != nil {
		c.Log.Warn("clipboard", "err", err)
	}
	return len(recs), nil
}

// Paste inserts copy buffer key into the current table.
func (c *Context) Paste(ctx context.Context, key string) (int, error) {
	t, conn, err := c.Current()
	if err != nil {
		return 0, err
	}
	recs := c.Copy.Get(key)
	if len(recs) == 0 {
		return 0, ErrEmptyCopy
	}
	ids, err := conn.InsertRows(ctx, t.Ref.Table, recs)
	if err != nil {
		return 0, err
	}
	if err := c.emitInserted(ctx, conn, t.Ref, ids); err != nil {
		return len(ids), err
	}
	return len(ids), nil
}

// Select stores rowids as the selection of the current table.
func (c *Context) Select(rowids []int64) error {
	t := c.Buffers.Current()
	if t == nil {
		return ErrNoTable
	}
	c.Bus.Emit(event.Selected{Ref: t.Ref, RowIDs: rowids})
	return nil
}

// Clone creates name with the schema of the current table. With copyRows
// the selection, or every row, is copied as well.
func (c *Context) Clone(ctx context.Context, name string, copyRows bool) error {
	t, conn, err := c.Current()
	if err != nil {
		return err
	}
	var ids []int64
	if copyRows {
		ids = c.Selection.Get(t.Ref)
	}
	if err := conn.Clone(ctx, t.Ref.Table, name, copyRows, ids); err != nil {
		return err
	}
	c.Log.Info("cloned table", "db", t.Ref.DB, "from", t.Ref.Table, "to", name, "rows", copyRows)
	return nil
}
