// Package app holds the state shared by commands and the UI: open
// databases, open tables, the copy and select buffers, and the event bus
// that keeps every view of a table in step with the store.
package app

import (
	"context"
	"fmt"
	"slices"

	"github.com/jask/dbrowse/internal/database/repository"
	"github.com/jask/dbrowse/internal/event"
	"github.com/jask/dbrowse/internal/logging"
	"github.com/jask/dbrowse/internal/store"
	"github.com/jask/dbrowse/internal/viewport"
)

// Lines of the screen not used for rows: the header and the status bar.
const chromeLines = 2

// Settings are the layout settings taken from configuration.
type Settings struct {
	// ColumnWidths fixes the width of the first columns of every table. A
	// width of 0 hides the column; a negative width means auto.
	ColumnWidths   []int
	MaxColumnWidth int
	VirtualRows    int
}

// Options configure a Context.
type Options struct {
	Settings Settings
	Log      logging.Logger
	History  *repository.HistoryRepo
	Sessions *repository.SessionRepo
	// Clipboard replaces the system clipboard writer. Set NoClipboard to
	// turn mirroring off.
	Clipboard   func(string) error
	NoClipboard bool
}

// Context is the application state. It is owned by the UI goroutine.
type Context struct {
	Stores    *store.Registry
	Buffers   *Buffers
	Copy      *CopyBuffer
	Selection *SelectBuffer
	Bus       *event.Bus
	Log       logging.Logger
	History   *repository.HistoryRepo
	Sessions  *repository.SessionRepo

	settings      Settings
	width, height int
}

// New returns an empty context.
func New(opts Options) *Context {
	log := opts.Log
	if log == nil {
		log = logging.Discard()
	}
	c := &Context{
		Stores:    store.NewRegistry(),
		Buffers:   &Buffers{},
		Copy:      NewCopyBuffer(),
		Selection: &SelectBuffer{},
		Bus:       event.NewBus(),
		Log:       log,
		History:   opts.History,
		Sessions:  opts.Sessions,
		settings:  opts.Settings,
		width:     80,
		height:    24,
	}
	switch {
	case opts.NoClipboard:
		c.Copy.SetClipboard(nil)
	case opts.Clipboard != nil:
		c.Copy.SetClipboard(opts.Clipboard)
	}
	event.On(c.Bus, func(e event.Selected) { c.Selection.Set(e.Ref, e.RowIDs) })
	return c
}

// Size returns the terminal size last reported with Resize.
func (c *Context) Size() (width, height int) { return c.width, c.height }

// viewSize converts the terminal size into viewport extents. Edges are
// inclusive, so n lines of rows give n-1.
func (c *Context) viewSize() (rows, cols int) {
	return max(c.height-chromeLines-1, 0), max(c.width-1, 0)
}

// Resize records the terminal size and resizes every table.
func (c *Context) Resize(width, height int) {
	c.width, c.height = width, height
	c.Bus.Emit(event.Resized{Width: width, Height: height})
	if t := c.Buffers.Current(); t != nil {
		v := t.View
		c.Log.Debug("resized", "width", width, "height", height,
			"rows", v.VisibleRows(), "cols", v.VisibleCols(),
			"grid_rows", v.VirtualRows(), "grid_cols", v.VirtualCols(), "columns", v.ColumnCount())
	}
}

// Current returns the current table and its connection.
func (c *Context) Current() (*Table, *store.Conn, error) {
	t := c.Buffers.Current()
	if t == nil {
		return nil, nil, ErrNoTable
	}
	conn, err := c.Stores.Get(t.Ref.DB)
	if err != nil {
		return nil, nil, err
	}
	return t, conn, nil
}

// OpenDatabase opens tables of the database at path as new buffers. No
// tables, or "*", opens every table.
func (c *Context) OpenDatabase(ctx context.Context, path string, tables ...string) (int, error) {
	conn, err := c.Stores.Create(path)
	if err != nil {
		return 0, err
	}
	if len(tables) == 0 || slices.Contains(tables, "*") {
		tables, err = conn.Tables(ctx)
		if err != nil {
			return 0, err
		}
		if len(tables) == 0 {
			return 0, fmt.Errorf("%s has no tables", path)
		}
	}
	for i, name := range tables {
		if _, err := c.OpenTable(ctx, path, name); err != nil {
			return i, err
		}
	}
	return len(tables), nil
}

// OpenTable opens one table as a new, current buffer.
func (c *Context) OpenTable(ctx context.Context, path, table string) (*Table, error) {
	conn, err := c.Stores.Create(path)
	if err != nil {
		return nil, err
	}
	rows, err := conn.SelectAll(ctx, table)
	if err != nil {
		return nil, err
	}
	keys, err := conn.PrimaryKeys(ctx, table)
	if err != nil {
		return nil, err
	}
	vr, vc := c.viewSize()
	t := newTable(event.TableRef{DB: path, Table: table}, c.settings, vr, vc)
	t.Keys = keys
	t.ShowRows(rows)
	c.subscribe(t)
	idx := c.Buffers.add(t)
	c.Log.Info("opened table", "db", path, "table", table, "rows", len(rows.RowIDs))
	c.Bus.Emit(event.Opened{Ref: t.Ref})
	c.Bus.Emit(event.Switched{Index: idx})
	return t, nil
}

// subscribe keeps t in step with changes to its table.
func (c *Context) subscribe(t *Table) {
	t.unsubscribe = append(t.unsubscribe,
		event.On(c.Bus, func(e event.Query) {
			if e.Ref == t.Ref {
				t.ShowRows(&store.Rows{Columns: e.Columns, RowIDs: e.RowIDs, Values: e.Values})
			}
		}),
		event.On(c.Bus, func(e event.Inserted) {
			if e.Ref != t.Ref {
				return
			}
			for i, id := range e.RowIDs {
				var vals []string
				if i < len(e.Values) {
					vals = slices.Clone(e.Values[i])
				}
				t.AppendRow(id, vals)
			}
		}),
		event.On(c.Bus, func(e event.Deleted) {
			if e.Ref == t.Ref {
				t.RemoveRows(e.RowIDs)
			}
		}),
		event.On(c.Bus, func(e event.Updated) {
			if e.Ref == t.Ref {
				t.SetCell(e.RowID, e.Column, e.Value)
			}
		}),
		event.On(c.Bus, func(e event.Resized) {
			t.View.Resize(c.viewSize())
		}),
	)
}

// CloseTable removes the buffer at position i. A database with no open
// tables left is disconnected.
func (c *Context) CloseTable(i int) error {
	t, err := c.Buffers.remove(i)
	if err != nil {
		return err
	}
	t.close()
	c.Log.Info("closed table", "db", t.Ref.DB, "table", t.Ref.Table)
	inUse := slices.ContainsFunc(c.Buffers.All(), func(o *Table) bool { return o.Ref.DB == t.Ref.DB })
	if !inUse {
		if err := c.Stores.Destroy(t.Ref.DB); err != nil {
			c.Log.Warn("close database", "db", t.Ref.DB, "err", err)
		}
	}
	c.Bus.Emit(event.Switched{Index: c.Buffers.Index()})
	return nil
}

// SwitchTo makes buffer i current.
func (c *Context) SwitchTo(i int) error {
	if !c.Buffers.Switch(i) {
		return fmt.Errorf("no buffer at %d", i)
	}
	c.Bus.Emit(event.Switched{Index: i})
	return nil
}

// NextTable and PrevTable cycle through the buffers.
func (c *Context) NextTable() {
	c.Buffers.Next()
	c.Bus.Emit(event.Switched{Index: c.Buffers.Index()})
}

func (c *Context) PrevTable() {
	c.Buffers.Prev()
	c.Bus.Emit(event.Switched{Index: c.Buffers.Index()})
}

// ShowBuffers publishes the buffer listing.
func (c *Context) ShowBuffers() {
	c.Bus.Emit(event.BuffersShown{Listing: c.Buffers.Listing()})
}

// Scroll moves the cursor of the current table.
func (c *Context) Scroll(d viewport.Direction, count int) viewport.Move {
	t := c.Buffers.Current()
	if t == nil {
		return viewport.Move{}
	}
	return t.View.Scroll(d, count)
}

// Refs lists the open tables in buffer order.
func (c *Context) Refs() []event.TableRef {
	refs := make([]event.TableRef, 0, c.Buffers.Len())
	for _, t := range c.Buffers.All() {
		refs = append(refs, t.Ref)
	}
	return refs
}

// Close disconnects every database.
func (c *Context) Close() error {
	c.Log.Debug("closing databases", "paths", c.Stores.Paths())
	for _, t := range c.Buffers.All() {
		t.close()
	}
	return c.Stores.DestroyAll()
}
