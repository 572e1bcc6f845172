package app

import (
	"slices"

	"github.com/mattn/go-runewidth"

	"github.com/jask/dbrowse/internal/event"
	"github.com/jask/dbrowse/internal/store"
	"github.com/jask/dbrowse/internal/viewport"
)

// Table is one open buffer: the rows of a query result over a table and the
// viewport that scrolls them.
type Table struct {
	ID      int
	Ref     event.TableRef
	Columns []string
	// Keys are the primary key columns of the table.
	Keys    []string
	RowIDs  []int64
	Values  [][]string
	View    *viewport.Engine

	widths      []int
	maxWidth    int
	unsubscribe []func()
}

func newTable(ref event.TableRef, s Settings, rows, cols int) *Table {
	return &Table{
		Ref:      ref,
		View:     viewport.New(rows, cols, s.VirtualRows, nil),
		widths:   s.ColumnWidths,
		maxWidth: s.MaxColumnWidth,
	}
}

// Name returns "db:table".
func (t *Table) Name() string { return t.Ref.String() }

// ShowRows replaces the displayed rows with a query result.
func (t *Table) ShowRows(rows *store.Rows) {
	t.Columns = slices.Clone(rows.Columns)
	t.RowIDs = slices.Clone(rows.RowIDs)
	t.Values = slices.Clone(rows.Values)
	t.View.SetColumnWidths(t.columnWidths())
	t.View.SetRowCount(len(t.RowIDs))
}

// columnWidths uses the configured width of a column when there is one and
// otherwise fits the header and the widest cell, capped at maxWidth.
func (t *Table) columnWidths() []int {
	out := make([]int, len(t.Columns))
	for i, name := range t.Columns {
		if i < len(t.widths) && t.widths[i] >= 0 {
			out[i] = t.widths[i]
			continue
		}
		w := runewidth.StringWidth(name)
		for _, row := range t.Values {
			if i < len(row) {
				w = max(w, runewidth.StringWidth(row[i]))
			}
		}
		if t.maxWidth > 0 {
			w = min(w, t.maxWidth)
		}
		out[i] = max(w, 1)
	}
	return out
}

// AppendRow adds a row at the end.
func (t *Table) AppendRow(rowid int64, values []string) {
	t.View.InsertRows(1)
	t.RowIDs = append(t.RowIDs, rowid)
	t.Values = append(t.Values, values)
}

// RemoveRows drops the displayed rows with the given rowids and reports how
// many were shown.
func (t *Table) RemoveRows(rowids []int64) int {
	n := 0
	for _, id := range rowids {
		i := slices.Index(t.RowIDs, id)
		if i < 0 {
			continue
		}
		t.RowIDs = slices.Delete(t.RowIDs, i, i+1)
		t.Values = slices.Delete(t.Values, i, i+1)
		t.View.RemoveRow(i)
		n++
	}
	return n
}

// SetCell changes one displayed value. It reports false when the row or
// column is not shown.
func (t *Table) SetCell(rowid int64, column, value string) bool {
	r := slices.Index(t.RowIDs, rowid)
	c := slices.Index(t.Columns, column)
	if r < 0 || c < 0 || c >= len(t.Values[r]) {
		return false
	}
	t.Values[r][c] = value
	return true
}

// CurrentRowID returns the rowid under the cursor.
func (t *Table) CurrentRowID() (int64, bool) {
	r := t.View.Cursor().Row
	if r < 0 || r >= len(t.RowIDs) {
		return 0, false
	}
	return t.RowIDs[r], true
}

// cursorCol returns the column index under the cursor. A hidden column is
// never current: when every column is hidden there is none.
func (t *Table) cursorCol() (int, bool) {
	c := t.View.Cursor().Col
	ext, ok := t.View.Extent(c)
	if !ok || ext.Hidden || c >= len(t.Columns) {
		return 0, false
	}
	return c, true
}

// CurrentColumn returns the column name under the cursor.
func (t *Table) CurrentColumn() (string, bool) {
	c, ok := t.cursorCol()
	if !ok {
		return "", false
	}
	return t.Columns[c], true
}

// CurrentCell returns the value under the cursor.
func (t *Table) CurrentCell() (string, bool) {
	cur := t.View.Cursor()
	if cur.Row < 0 || cur.Row >= len(t.Values) {
		return "", false
	}
	row := t.Values[cur.Row]
	c, ok := t.cursorCol()
	if !ok || c >= len(row) {
		return "", false
	}
	return row[c], true
}

func (t *Table) close() {
	for _, stop := range t.unsubscribe {
		stop()
	}
	t.unsubscribe = nil
}
