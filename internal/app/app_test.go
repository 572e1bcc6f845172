package app

import (
	"bytes"
	"context"
	"database/sql"
	"path/filepath"
	"strings"
	"testing"

	_ "github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jask/dbrowse/internal/database"
	"github.com/jask/dbrowse/internal/database/repository"
	"github.com/jask/dbrowse/internal/event"
	"github.com/jask/dbrowse/internal/store"
	"github.com/jask/dbrowse/internal/viewport"
)

func newTestDB(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "anime.db")
	db, err := sql.Open("sqlite3", path)
	require.NoError(t, err)
	defer db.Close()
	_, err = db.Exec(`
	CREATE TABLE anime (id INTEGER PRIMARY KEY, title TEXT NOT NULL DEFAULT '', episodes INTEGER);
	CREATE TABLE studios (name TEXT);
	INSERT INTO anime(title, episodes) VALUES ('Cowboy Bebop', 26), ('Monster', 74), ('Mushishi', 26);
	INSERT INTO studios(name) VALUES ('Sunrise'), ('Madhouse');
	`)
	require.NoError(t, err)
	return path
}

type clip struct{ writes []string }

func (c *clip) write(s string) error {
	c.writes = append(c.writes, s)
	return nil
}

func newTestContext(t *testing.T, opts Options) (*Context, *clip) {
	t.Helper()
	cb := &clip{}
	if opts.Clipboard == nil && !opts.NoClipboard {
		opts.Clipboard = cb.write
	}
	c := New(opts)
	t.Cleanup(func() { _ = c.Close() })
	return c, cb
}

func openAnime(t *testing.T, c *Context) (*Table, string) {
	t.Helper()
	path := newTestDB(t)
	tbl, err := c.OpenTable(context.Background(), path, "anime")
	require.NoError(t, err)
	return tbl, path
}

func TestOpenDatabaseOpensEveryTable(t *testing.T) {
	c, _ := newTestContext(t, Options{})
	var opened []string
	event.On(c.Bus, func(e event.Opened) { opened = append(opened, e.Ref.Table) })

	n, err := c.OpenDatabase(context.Background(), newTestDB(t))
	require.NoError(t, err)
	require.Equal(t, 2, n)
	require.Equal(t, []string{"anime", "studios"}, opened)
	require.Equal(t, 2, c.Buffers.Len())
	require.Equal(t, "studios", c.Buffers.Current().Ref.Table)
	require.Equal(t, 2, c.Buffers.Current().ID)

	_, err = c.OpenDatabase(context.Background(), filepath.Join(t.TempDir(), "missing.db"))
	require.Error(t, err)
}

func TestTableRowsAndCursor(t *testing.T) {
	c, _ := newTestContext(t, Options{})
	tbl, _ := openAnime(t, c)

	require.Equal(t, []string{"id", "title", "episodes"}, tbl.Columns)
	require.Equal(t, 3, tbl.View.RowCount())

	id, ok := tbl.CurrentRowID()
	require.True(t, ok)
	require.Equal(t, int64(1), id)

	c.Scroll(viewport.Down, 1)
	c.Scroll(viewport.Right, 1)
	cell, ok := tbl.CurrentCell()
	require.True(t, ok)
	require.Equal(t, "Monster", cell)
	col, ok := tbl.CurrentColumn()
	require.True(t, ok)
	require.Equal(t, "title", col)
}

func TestColumnWidths(t *testing.T) {
	c, _ := newTestContext(t, Options{Settings: Settings{ColumnWidths: []int{0, -1}, MaxColumnWidth: 8}})
	tbl, _ := openAnime(t, c)

	hidden, ok := tbl.View.Extent(0)
	require.True(t, ok)
	require.True(t, hidden.Hidden)

	title, _ := tbl.View.Extent(1)
	require.Equal(t, 8, title.Width())
	episodes, _ := tbl.View.Extent(2)
	require.Equal(t, len("episodes"), episodes.Width())

	require.Equal(t, 1, tbl.View.Cursor().Col)
}

func TestInsertReachesEveryViewOfTable(t *testing.T) {
	ctx := context.Background()
	c, _ := newTestContext(t, Options{})
	first, path := openAnime(t, c)
	second, err := c.OpenTable(ctx, path, "anime")
	require.NoError(t, err)

	id, err := c.NewEntry(ctx)
	require.NoError(t, err)
	require.Equal(t, int64(4), id)

	for _, tbl := range []*Table{first, second} {
		require.Equal(t, 4, tbl.View.RowCount())
		require.Equal(t, int64(4), tbl.RowIDs[3])
		require.Equal(t, []string{"4", "", ""}, tbl.Values[3])
	}
}

func TestUpdateCell(t *testing.T) {
	ctx := context.Background()
	c, _ := newTestContext(t, Options{})
	tbl, _ := openAnime(t, c)
	c.Scroll(viewport.Right, 1)

	require.NoError(t, c.UpdateCell(ctx, 2, "Monster (2004)"))
	require.Equal(t, "Monster (2004)", tbl.Values[1][1])

	require.ErrorIs(t, c.UpdateCell(ctx, 99, "x"), store.ErrNoRow)
}

func TestDeleteSelectedRows(t *testing.T) {
	ctx := context.Background()
	c, _ := newTestContext(t, Options{})
	tbl, _ := openAnime(t, c)

	require.NoError(t, c.Select([]int64{1, 3}))
	require.Equal(t, []int64{1, 3}, c.Selection.Get(tbl.Ref))

	n, err := c.DeleteRows(ctx, nil)
	require.NoError(t, err)
	require.Equal(t, 2, n)
	require.Equal(t, []int64{2}, tbl.RowIDs)
	require.Equal(t, 1, tbl.View.RowCount())
	require.Empty(t, c.Selection.Get(tbl.Ref))

	n, err = c.DeleteRows(ctx, nil)
	require.NoError(t, err)
	require.Equal(t, 1, n)
	require.Zero(t, tbl.View.RowCount())

	_, err = c.DeleteRows(ctx, nil)
	require.Error(t, err)
}

func TestFilterAndSort(t *testing.T) {
	ctx := context.Background()
	c, _ := newTestContext(t, Options{})
	tbl, _ := openAnime(t, c)
	c.Scroll(viewport.Right, 1)

	n, err := c.Filter(ctx, "mu")
	require.NoError(t, err)
	require.Equal(t, 1, n)
	require.Equal(t, []int64{3}, tbl.RowIDs)

	n, err = c.Filter(ctx, "")
	require.NoError(t, err)
	require.Equal(t, 3, n)

	require.NoError(t, c.Sort(ctx, "desc", "episodes"))
	require.Equal(t, int64(2), tbl.RowIDs[0])

	require.NoError(t, c.Sort(ctx, "asc", ""))
	require.Equal(t, []int64{1, 2, 3}, tbl.RowIDs)

	require.NoError(t, c.Reload(ctx))
	require.Equal(t, 3, tbl.View.RowCount())
}

func TestCopyPaste(t *testing.T) {
	ctx := context.Background()
	c, cb := newTestContext(t, Options{})
	tbl, _ := openAnime(t, c)

	_, err := c.Paste(ctx, "")
	require.ErrorIs(t, err, ErrEmptyCopy)

	c.Scroll(viewport.Down, 2)
	n, err := c.CopyRows(ctx, "")
	require.NoError(t, err)
	require.Equal(t, 1, n)
	require.Equal(t, []string{"3\tMushishi\t26"}, cb.writes)

	n, err = c.Paste(ctx, "")
	require.NoError(t, err)
	require.Equal(t, 1, n)
	require.Equal(t, []string{"4", "Mushishi", "26"}, tbl.Values[3])

	_, err = c.CopyRows(ctx, "a")
	require.NoError(t, err)
	require.Len(t, cb.writes, 1)
	require.Len(t, c.Copy.Get("a"), 1)
}

func TestClone(t *testing.T) {
	ctx := context.Background()
	c, _ := newTestContext(t, Options{})
	_, path := openAnime(t, c)

	require.NoError(t, c.Select([]int64{2}))
	require.NoError(t, c.Clone(ctx, "favourites", true))

	fav, err := c.OpenTable(ctx, path, "favourites")
	require.NoError(t, err)
	require.Equal(t, []int64{2}, fav.RowIDs)
}

func TestCloseTable(t *testing.T) {
	ctx := context.Background()
	c, _ := newTestContext(t, Options{})
	_, path := openAnime(t, c)
	other := newTestDB(t)
	_, err := c.OpenTable(ctx, other, "studios")
	require.NoError(t, err)

	require.NoError(t, c.CloseTable(0))
	require.Equal(t, []string{other}, c.Stores.Paths())
	require.Equal(t, "studios", c.Buffers.Current().Ref.Table)
	require.NotContains(t, c.Stores.Paths(), path)

	require.ErrorIs(t, c.CloseTable(0), ErrLastTable)
}

func TestClosedTableStopsListening(t *testing.T) {
	ctx := context.Background()
	c, _ := newTestContext(t, Options{})
	first, path := openAnime(t, c)
	_, err := c.OpenTable(ctx, path, "anime")
	require.NoError(t, err)

	require.NoError(t, c.CloseTable(0))
	_, err = c.NewEntry(ctx)
	require.NoError(t, err)
	require.Equal(t, 3, first.View.RowCount())
}

func TestResize(t *testing.T) {
	c, _ := newTestContext(t, Options{})
	tbl, _ := openAnime(t, c)

	c.Resize(100, 30)
	w, h := c.Size()
	require.Equal(t, 100, w)
	require.Equal(t, 30, h)
	require.Equal(t, 27, tbl.View.VisibleRows())
	require.Equal(t, 99, tbl.View.VisibleCols())
}

func TestNoTable(t *testing.T) {
	ctx := context.Background()
	c, _ := newTestContext(t, Options{})
	_, err := c.NewEntry(ctx)
	require.ErrorIs(t, err, ErrNoTable)
	require.ErrorIs(t, c.Select([]int64{1}), ErrNoTable)
	require.False(t, c.Scroll(viewport.Down, 1).Changed)
}

func TestSessionFileRoundTrip(t *testing.T) {
	ctx := context.Background()
	c, _ := newTestContext(t, Options{})
	_, path := openAnime(t, c)
	_, err := c.OpenTable(ctx, path, "studios")
	require.NoError(t, err)

	file := filepath.Join(t.TempDir(), "session.jsonl")
	require.NoError(t, c.SaveSessionFile(file))

	c2, _ := newTestContext(t, Options{})
	n, err := c2.LoadSessionFile(ctx, file)
	require.NoError(t, err)
	require.Equal(t, 2, n)
	require.Equal(t, c.Refs(), c2.Refs())
}

func TestReadSession(t *testing.T) {
	refs, err := ReadSession(strings.NewReader("[\"a.db\", \"t\"]\n\n[\"b.db\",\"u\"]\n"))
	require.NoError(t, err)
	require.Equal(t, []event.TableRef{{DB: "a.db", Table: "t"}, {DB: "b.db", Table: "u"}}, refs)

	_, err = ReadSession(strings.NewReader("not json\n"))
	require.Error(t, err)
	_, err = ReadSession(strings.NewReader("[\"only-db\"]\n"))
	require.Error(t, err)

	var buf bytes.Buffer
	require.NoError(t, WriteSession(&buf, refs))
	assert.Equal(t, "[\"a.db\",\"t\"]\n[\"b.db\",\"u\"]\n", buf.String())
}

func TestLoadSessionSkipsMissingTables(t *testing.T) {
	ctx := context.Background()
	c, _ := newTestContext(t, Options{})
	path := newTestDB(t)
	file := filepath.Join(t.TempDir(), "s.jsonl")
	var buf bytes.Buffer
	require.NoError(t, WriteSession(&buf, []event.TableRef{{DB: path, Table: "gone"}, {DB: path, Table: "anime"}}))
	require.NoError(t, writeFile(file, buf.Bytes()))

	n, err := c.LoadSessionFile(ctx, file)
	require.Error(t, err)
	require.Equal(t, 1, n)
	require.Equal(t, 1, c.Buffers.Len())
}

func TestNamedSessionsAndHistory(t *testing.T) {
	ctx := context.Background()
	statePath := filepath.Join(t.TempDir(), "state.db")
	require.NoError(t, database.RunMigrations(statePath))
	db, err := database.Open(statePath)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	opts := Options{History: repository.NewHistoryRepo(db), Sessions: repository.NewSessionRepo(db)}
	c, _ := newTestContext(t, opts)
	openAnime(t, c)
	require.NoError(t, c.SaveSession(ctx, "work"))

	c2, _ := newTestContext(t, opts)
	n, err := c2.LoadSession(ctx, "work")
	require.NoError(t, err)
	require.Equal(t, 1, n)

	c2.RecordHistory(ctx, "ls")
	c2.RecordHistory(ctx, "sort asc")
	c2.RecordHistory(ctx, "q")
	require.Equal(t, []string{"q", "sort asc", "ls"}, c2.LoadHistory(ctx, 0))
	c2.TrimHistory(ctx, 1)
	require.Equal(t, []string{"q"}, c2.LoadHistory(ctx, 0))

	names, err := c2.SessionNames(ctx)
	require.NoError(t, err)
	require.Equal(t, []string{"work"}, names)
	require.NoError(t, c2.DeleteSession(ctx, "work"))
	n, err = c2.ShowSessions(ctx)
	require.NoError(t, err)
	require.Zero(t, n)

	bare, _ := newTestContext(t, Options{})
	require.ErrorIs(t, bare.DeleteSession(ctx, "x"), ErrNoStateDB)
	require.ErrorIs(t, bare.SaveSession(ctx, "x"), ErrNoStateDB)
	_, err = bare.LoadSession(ctx, "x")
	require.ErrorIs(t, err, ErrNoStateDB)
	require.Nil(t, bare.LoadHistory(ctx, 10))
}

func TestHiddenColumnIsNeverCurrent(t *testing.T) {
	ctx := context.Background()
	c, _ := newTestContext(t, Options{Settings: Settings{ColumnWidths: []int{0, 0, 0}}})
	tbl, _ := openAnime(t, c)

	_, ok := tbl.CurrentColumn()
	require.False(t, ok)
	_, ok = tbl.CurrentCell()
	require.False(t, ok)

	_, err := c.Filter(ctx, "Mon")
	require.ErrorIs(t, err, ErrNoColumn)
	require.ErrorIs(t, c.Sort(ctx, store.Asc, ""), ErrNoColumn)
	require.ErrorIs(t, c.UpdateCell(ctx, 1, "x"), ErrNoColumn)

	require.NoError(t, c.Sort(ctx, store.Desc, "episodes"))
	require.Equal(t, int64(2), tbl.RowIDs[0])
	require.ErrorIs(t, c.Sort(ctx, store.Desc, "episode"), ErrUnknownColumn)
}

func TestOpenTableKnowsPrimaryKeys(t *testing.T) {
	c, _ := newTestContext(t, Options{})
	tbl, path := openAnime(t, c)
	require.Equal(t, []string{"id"}, tbl.Keys)

	studios, err := c.OpenTable(context.Background(), path, "studios")
	require.NoError(t, err)
	require.Empty(t, studios.Keys)
}
