package viewport

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRows(t *testing.T, visible, rows int) *Engine {
	t.Helper()
	e := New(visible, 80, 0, []int{10, 10, 10})
	e.SetRowCount(rows)
	return e
}

func TestScrollMinimalFollow(t *testing.T) {
	e := newRows(t, 10, 100)

	mv := e.Scroll(Down, 15)
	require.True(t, mv.Changed)
	require.Equal(t, Cell{Row: 0}, mv.From)
	require.Equal(t, Cell{Row: 15}, mv.To)
	w := e.Window()
	require.Equal(t, 5, w.Top)
	require.Equal(t, 15, w.Bottom)

	e.Scroll(Up, 3)
	require.Equal(t, 12, e.Cursor().Row)
	require.Equal(t, w, e.Window())
}

func TestScrollUpPastTopPullsWindow(t *testing.T) {
	e := newRows(t, 10, 100)
	e.Scroll(Down, 40)
	require.Equal(t, 30, e.Window().Top)

	e.Scroll(Up, 15)
	require.Equal(t, 25, e.Cursor().Row)
	require.Equal(t, Rect{Top: 25, Bottom: 35, Right: 80}, e.Window())
}

func TestScrollHomeEnd(t *testing.T) {
	e := newRows(t, 10, 7)

	e.Scroll(End, 1)
	require.Equal(t, 6, e.Cursor().Row)
	e.Scroll(End, 40)
	require.Equal(t, 6, e.Cursor().Row)

	e.Scroll(Home, 1)
	require.Equal(t, 0, e.Cursor().Row)
}

func TestScrollPages(t *testing.T) {
	e := newRows(t, 10, 35)

	e.Scroll(PageDown, 1)
	require.Equal(t, 10, e.Cursor().Row)
	require.Equal(t, 0, e.Window().Top)

	e.Scroll(PageDown, 1)
	require.Equal(t, 20, e.Cursor().Row)
	require.Equal(t, 10, e.Window().Top)

	e.Scroll(PageDown, 1)
	e.Scroll(PageDown, 1)
	require.Equal(t, 34, e.Cursor().Row)
	require.Equal(t, Rect{Top: 24, Bottom: 34, Right: 80}, e.Window())

	e.Scroll(PageUp, 1)
	require.Equal(t, 24, e.Cursor().Row)
	require.Equal(t, 24, e.Window().Top)
}

func TestScrollClampsCount(t *testing.T) {
	e := newRows(t, 10, 5)

	e.Scroll(Down, 1000)
	require.Equal(t, 4, e.Cursor().Row)
	e.Scroll(Up, -3)
	require.Equal(t, 3, e.Cursor().Row)
}

func TestScrollEmptyIsNoop(t *testing.T) {
	e := New(10, 80, 0, []int{10, 10})
	before := *e

	for d := Up; d <= LastColumn; d++ {
		mv := e.Scroll(d, 3)
		require.False(t, mv.Changed, d.String())
	}
	require.Equal(t, before, *e)
}

func TestScrollInvalidDirection(t *testing.T) {
	e := newRows(t, 10, 20)
	e.Scroll(Down, 3)
	before := *e

	mv := e.Scroll(Direction(0), 1)
	require.False(t, mv.Changed)
	mv = e.Scroll(LastColumn+1, 1)
	require.False(t, mv.Changed)
	require.Equal(t, before, *e)
}

func TestRemoveRowReclamps(t *testing.T) {
	e := newRows(t, 10, 5)
	e.Scroll(Down, 4)
	require.Equal(t, 4, e.Cursor().Row)

	require.True(t, e.RemoveRow(4))
	require.Equal(t, 4, e.RowCount())
	require.Equal(t, 3, e.Cursor().Row)

	require.False(t, e.RemoveRow(4))
	require.False(t, e.RemoveRow(-1))
}

func TestRemoveRowKeepsCursorVisible(t *testing.T) {
	e := newRows(t, 10, 50)
	e.Scroll(End, 1)
	require.Equal(t, Rect{Top: 39, Bottom: 49, Right: 80}, e.Window())

	for i := 0; i < 45; i++ {
		require.True(t, e.RemoveRow(e.RowCount()-1))
	}
	require.Equal(t, 4, e.Cursor().Row)
	require.Equal(t, Rect{Top: 4, Bottom: 14, Right: 80}, e.Window())
}

func TestRemoveLastRow(t *testing.T) {
	e := newRows(t, 10, 1)
	require.True(t, e.RemoveRow(0))
	require.Equal(t, 0, e.RowCount())
	require.Equal(t, Cell{}, e.Cursor())
}

func TestEnsureCapacity(t *testing.T) {
	e := New(10, 80, 0, nil)
	require.Equal(t, DefaultVirtualRows, e.VirtualRows())

	capacity, grew := e.EnsureCapacity(50)
	require.False(t, grew)
	require.Equal(t, 100, capacity)

	require.False(t, e.SetRowCount(90))
	capacity, grew = e.EnsureCapacity(20)
	require.True(t, grew)
	require.Equal(t, 200, capacity)

	capacity, grew = e.EnsureCapacity(500)
	require.True(t, grew)
	require.Equal(t, 590, capacity)

	capacity, grew = e.EnsureCapacity(0)
	require.False(t, grew)
	require.Equal(t, 590, capacity)
}

func TestInsertRowsGrows(t *testing.T) {
	e := New(10, 80, 4, nil)
	require.False(t, e.InsertRows(4))
	require.True(t, e.InsertRows(1))
	require.Equal(t, 5, e.RowCount())
	require.Equal(t, 8, e.VirtualRows())
	require.False(t, e.InsertRows(0))
}

func TestResizeAnchorsTopLeft(t *testing.T) {
	e := newRows(t, 10, 100)
	e.Scroll(Down, 50)
	require.Equal(t, 40, e.Window().Top)

	e.Resize(20, 60)
	require.Equal(t, Rect{Top: 40, Bottom: 60, Right: 60}, e.Window())

	e.Resize(5, 60)
	require.Equal(t, Rect{Top: 45, Bottom: 50, Right: 60}, e.Window())
	require.Equal(t, 50, e.Cursor().Row)
}

func TestResizeNegativeClampsToZero(t *testing.T) {
	e := newRows(t, 10, 10)
	e.Resize(-4, -1)
	require.Equal(t, 0, e.VisibleRows())
	require.Equal(t, 0, e.VisibleCols())
}

func TestHorizontalFollow(t *testing.T) {
	e := New(10, 20, 0, []int{10, 10, 10, 10})
	e.SetRowCount(3)

	ext, ok := e.Extent(2)
	require.True(t, ok)
	require.Equal(t, Extent{Beg: 22, End: 31}, ext)
	require.Equal(t, 10, ext.Width())

	e.Scroll(Right, 1)
	require.Equal(t, 1, e.Cursor().Col)
	require.Equal(t, 0, e.Window().Left)

	e.Scroll(Right, 1)
	w := e.Window()
	require.Equal(t, 11, w.Left)
	require.Equal(t, 31, w.Right)

	e.Scroll(LastColumn, 1)
	require.Equal(t, 3, e.Cursor().Col)
	require.Equal(t, 22, e.Window().Left)
	require.Equal(t, 42, e.Window().Right)

	e.Scroll(Left, 1)
	require.Equal(t, 22, e.Window().Left)

	e.Scroll(FirstColumn, 1)
	require.Equal(t, 0, e.Cursor().Col)
	require.Equal(t, 0, e.Window().Left)
	require.Equal(t, 20, e.Window().Right)
}

func TestHorizontalIndependentOfVertical(t *testing.T) {
	e := New(10, 20, 0, []int{10, 10, 10, 10})
	e.SetRowCount(100)
	e.Scroll(Down, 30)
	top := e.Window().Top

	e.Scroll(LastColumn, 1)
	require.Equal(t, top, e.Window().Top)
	require.Equal(t, 30, e.Cursor().Row)

	e.Scroll(Up, 25)
	require.Equal(t, 22, e.Window().Left)
}

func TestHiddenColumnsAreSkipped(t *testing.T) {
	e := New(10, 40, 0, []int{5, 0, 5, 0})
	e.SetRowCount(1)

	hidden, ok := e.Extent(1)
	require.True(t, ok)
	require.True(t, hidden.Hidden)
	require.Zero(t, hidden.Width())

	e.Scroll(Right, 1)
	require.Equal(t, 2, e.Cursor().Col)
	e.Scroll(Right, 1)
	require.Equal(t, 2, e.Cursor().Col)
	e.Scroll(LastColumn, 1)
	require.Equal(t, 2, e.Cursor().Col)
	e.Scroll(Left, 1)
	require.Equal(t, 0, e.Cursor().Col)

	assert.Equal(t, []int{0, 2}, e.VisibleColumns())
}

func TestSetColumnWidthsMovesOffHiddenCursor(t *testing.T) {
	e := New(10, 40, 0, []int{5, 5, 5})
	e.SetRowCount(1)
	e.Scroll(LastColumn, 1)
	require.Equal(t, 2, e.Cursor().Col)

	e.SetColumnWidths([]int{5, 5, 0})
	require.Equal(t, 1, e.Cursor().Col)

	e.SetColumnWidths([]int{5})
	require.Equal(t, 0, e.Cursor().Col)
}

func TestCellRect(t *testing.T) {
	e := New(5, 15, 0, []int{8, 8, 8})
	e.SetRowCount(20)

	r, ok := e.CellRect(Cell{Row: 2, Col: 1})
	require.True(t, ok)
	require.Equal(t, Rect{Top: 2, Bottom: 2, Left: 9, Right: 15}, r)

	_, ok = e.CellRect(Cell{Row: 2, Col: 2})
	require.False(t, ok)
	_, ok = e.CellRect(Cell{Row: 6, Col: 0})
	require.False(t, ok)

	e.Scroll(Down, 10)
	r, ok = e.CellRect(Cell{Row: 10, Col: 0})
	require.True(t, ok)
	require.Equal(t, 5, r.Top)
}

func TestDirectionVocabulary(t *testing.T) {
	vertical, horizontal := 0, 0
	for d := Up; d <= LastColumn; d++ {
		require.True(t, d.Valid())
		require.NotEqual(t, d.Vertical(), d.Horizontal(), d.String())
		if d.Vertical() {
			vertical++
		} else {
			horizontal++
		}
	}
	assert.Equal(t, 6, vertical)
	assert.Equal(t, 4, horizontal)
	assert.False(t, Direction(0).Valid())
	assert.Equal(t, "invalid", Direction(99).String())
	assert.Equal(t, "page_down", PageDown.String())
}
