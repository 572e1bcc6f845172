// Package viewport keeps a window over a grid of rows and variable-width
// columns that is larger than the screen, and the selected cell inside it.
//
// Window edges are inclusive and move together: the bottom edge is always
// topRow+visibleRows and the right edge leftCol+visibleCols, so visibleRows
// and visibleCols are the distance from the first on-screen line or cell to
// the last one. The window follows the cursor with the least movement that
// keeps it in view.
//
// An Engine does no drawing and no locking. Callers serialize access.
package viewport

// DefaultVirtualRows is the initial row capacity when none is given.
const DefaultVirtualRows = 100

// Cell is a position in the grid.
type Cell struct {
	Row int
	Col int
}

// Rect is an inclusive rectangle. Rows are grid rows; columns are character
// offsets.
type Rect struct {
	Top    int
	Left   int
	Bottom int
	Right  int
}

// Extent is the inclusive character span of a column. Hidden columns take
// no space.
type Extent struct {
	Beg    int
	End    int
	Hidden bool
}

// Width returns the number of characters the column occupies.
func (e Extent) Width() int {
	if e.Hidden {
		return 0
	}
	return e.End - e.Beg + 1
}

// Move reports a cursor change so the caller can repaint both cells.
type Move struct {
	From    Cell
	To      Cell
	Changed bool
}

// Engine holds the window and cursor state of one table.
type Engine struct {
	virtualRows int
	virtualCols int
	visibleRows int
	visibleCols int

	topRow    int
	bottomRow int
	leftCol   int
	rightCol  int

	cursorRow int
	cursorCol int

	rowCount int
	extents  []Extent
}

// New returns an empty engine. widths sets the column widths; a width of 0
// hides a column.
func New(visibleRows, visibleCols, virtualRows int, widths []int) *Engine {
	if virtualRows <= 0 {
		virtualRows = DefaultVirtualRows
	}
	e := &Engine{virtualRows: virtualRows}
	e.setVisible(visibleRows, visibleCols)
	e.bottomRow = e.visibleRows
	e.rightCol = e.visibleCols
	e.SetColumnWidths(widths)
	return e
}

func (e *Engine) setVisible(rows, cols int) {
	e.visibleRows = max(rows, 0)
	e.visibleCols = max(cols, 0)
}

// SetColumnWidths replaces the column layout. One separator character
// follows every shown column.
func (e *Engine) SetColumnWidths(widths []int) {
	e.extents = make([]Extent, len(widths))
	pos := 0
	for i, w := range widths {
		if w <= 0 {
			e.extents[i] = Extent{Beg: pos, End: pos - 1, Hidden: true}
			continue
		}
		e.extents[i] = Extent{Beg: pos, End: pos + w - 1}
		pos += w + 1
	}
	if pos > e.virtualCols {
		e.virtualCols = pos
	}
	e.clampCol()
	if e.rowCount > 0 {
		e.followCol()
	}
}

// Scroll moves the cursor and lets the window follow it. count applies to
// Up, Down, Left and Right; values below 1 count as 1. It does nothing when
// the grid has no rows or d is not a known direction.
func (e *Engine) Scroll(d Direction, count int) Move {
	from := e.Cursor()
	if e.rowCount == 0 || !d.Valid() {
		return Move{From: from, To: from}
	}
	if count < 1 {
		count = 1
	}
	switch {
	case d.Vertical():
		e.scrollVertical(d, min(count, e.rowCount))
	case d.Horizontal():
		e.scrollHorizontal(d, min(count, len(e.extents)))
	}
	to := e.Cursor()
	return Move{From: from, To: to, Changed: from != to}
}

func (e *Engine) scrollVertical(d Direction, count int) {
	var delta int
	switch d {
	case Up:
		delta = -count
	case Down:
		delta = count
	case PageUp:
		delta = -e.visibleRows
	case PageDown:
		delta = e.visibleRows
	case Home:
		delta = -e.cursorRow
	case End:
		delta = e.rowCount - 1 - e.cursorRow
	}
	e.cursorRow = clamp(e.cursorRow+delta, 0, e.rowCount-1)
	e.followRow()
}

func (e *Engine) scrollHorizontal(d Direction, count int) {
	if e.firstShown() < 0 {
		return
	}
	switch d {
	case Left:
		for i := 0; i < count; i++ {
			prev := e.prevShown(e.cursorCol)
			if prev < 0 {
				break
			}
			e.cursorCol = prev
		}
	case Right:
		for i := 0; i < count; i++ {
			next := e.nextShown(e.cursorCol)
			if next < 0 {
				break
			}
			e.cursorCol = next
		}
	case FirstColumn:
		e.cursorCol = e.firstShown()
	case LastColumn:
		e.cursorCol = e.prevShown(len(e.extents))
	}
	e.followCol()
}

// followRow moves the window the least amount that shows cursorRow.
func (e *Engine) followRow() {
	if e.cursorRow > e.bottomRow {
		e.bottomRow = e.cursorRow
		e.topRow = e.bottomRow - e.visibleRows
	} else if e.cursorRow < e.topRow {
		e.topRow = e.cursorRow
		e.bottomRow = e.topRow + e.visibleRows
	}
	if e.topRow < 0 {
		e.topRow = 0
		e.bottomRow = e.visibleRows
	}
}

// followCol moves the window the least amount that shows the cursor column.
// A column wider than the window keeps its left edge in view.
func (e *Engine) followCol() {
	if e.cursorCol < 0 || e.cursorCol >= len(e.extents) {
		return
	}
	ext := e.extents[e.cursorCol]
	if ext.Hidden {
		return
	}
	if ext.End > e.rightCol {
		e.rightCol = ext.End
		e.leftCol = e.rightCol - e.visibleCols
	}
	if ext.Beg < e.leftCol {
		e.leftCol = ext.Beg
		e.rightCol = e.leftCol + e.visibleCols
	}
	if e.leftCol < 0 {
		e.leftCol = 0
		e.rightCol = e.visibleCols
	}
}

// EnsureCapacity makes room for additionalRows more rows. The capacity
// doubles, or grows to the exact need when doubling is not enough. grew
// reports that the backing surface must be resized to capacity before the
// rows are written.
func (e *Engine) EnsureCapacity(additionalRows int) (capacity int, grew bool) {
	need := e.rowCount + additionalRows
	if additionalRows <= 0 || need <= e.virtualRows {
		return e.virtualRows, false
	}
	grown := e.virtualRows * 2
	if grown < need {
		grown = need
	}
	e.virtualRows = grown
	return grown, true
}

// InsertRows appends n rows, growing the capacity first if needed.
func (e *Engine) InsertRows(n int) (grew bool) {
	if n <= 0 {
		return false
	}
	_, grew = e.EnsureCapacity(n)
	e.rowCount += n
	return grew
}

// SetRowCount replaces the row count, as when a new query result is shown.
func (e *Engine) SetRowCount(n int) (grew bool) {
	n = max(n, 0)
	if n > e.rowCount {
		_, grew = e.EnsureCapacity(n - e.rowCount)
	}
	e.rowCount = n
	e.clampRow()
	e.followRow()
	return grew
}

// RemoveRow drops one row. The cursor is pulled back onto the last row if it
// was on or past the removed end. It reports false for an index outside the
// grid.
func (e *Engine) RemoveRow(rowIndex int) bool {
	if rowIndex < 0 || rowIndex >= e.rowCount {
		return false
	}
	e.rowCount--
	e.clampRow()
	e.followRow()
	return true
}

// Resize changes the window size. The window stays anchored at its top-left
// corner unless that would leave the cursor outside it.
func (e *Engine) Resize(visibleRows, visibleCols int) {
	e.setVisible(visibleRows, visibleCols)
	e.bottomRow = e.topRow + e.visibleRows
	e.rightCol = e.leftCol + e.visibleCols
	e.followRow()
	e.followCol()
}

func (e *Engine) clampRow() {
	if e.rowCount == 0 {
		e.cursorRow = 0
		return
	}
	e.cursorRow = clamp(e.cursorRow, 0, e.rowCount-1)
}

func (e *Engine) clampCol() {
	if len(e.extents) == 0 {
		e.cursorCol = 0
		return
	}
	e.cursorCol = clamp(e.cursorCol, 0, len(e.extents)-1)
	if !e.extents[e.cursorCol].Hidden {
		return
	}
	if next := e.nextShown(e.cursorCol); next >= 0 {
		e.cursorCol = next
	} else if prev := e.prevShown(e.cursorCol); prev >= 0 {
		e.cursorCol = prev
	}
}

func (e *Engine) firstShown() int { return e.nextShown(-1) }

func (e *Engine) nextShown(from int) int {
	for i := from + 1; i < len(e.extents); i++ {
		if !e.extents[i].Hidden {
			return i
		}
	}
	return -1
}

func (e *Engine) prevShown(from int) int {
	for i := min(from, len(e.extents)) - 1; i >= 0; i-- {
		if !e.extents[i].Hidden {
			return i
		}
	}
	return -1
}

// Cursor returns the selected cell.
func (e *Engine) Cursor() Cell { return Cell{Row: e.cursorRow, Col: e.cursorCol} }

// Window returns the visible part of the grid.
func (e *Engine) Window() Rect {
	return Rect{Top: e.topRow, Left: e.leftCol, Bottom: e.bottomRow, Right: e.rightCol}
}

// CellRect returns the screen-relative rectangle a cell occupies, for
// partial redraws. ok is false when the cell is outside the window.
func (e *Engine) CellRect(c Cell) (r Rect, ok bool) {
	if c.Row < e.topRow || c.Row > e.bottomRow || c.Col < 0 || c.Col >= len(e.extents) {
		return Rect{}, false
	}
	ext := e.extents[c.Col]
	if ext.Hidden || ext.End < e.leftCol || ext.Beg > e.rightCol {
		return Rect{}, false
	}
	row := c.Row - e.topRow
	return Rect{
		Top:    row,
		Bottom: row,
		Left:   max(ext.Beg, e.leftCol) - e.leftCol,
		Right:  min(ext.End, e.rightCol) - e.leftCol,
	}, true
}

// VisibleColumns returns the indexes of shown columns that intersect the
// window, left to right.
func (e *Engine) VisibleColumns() []int {
	var out []int
	for i, ext := range e.extents {
		if ext.Hidden || ext.End < e.leftCol || ext.Beg > e.rightCol {
			continue
		}
		out = append(out, i)
	}
	return out
}

// Extent returns the span of column col.
func (e *Engine) Extent(col int) (Extent, bool) {
	if col < 0 || col >= len(e.extents) {
		return Extent{}, false
	}
	return e.extents[col], true
}

func (e *Engine) RowCount() int    { return e.rowCount }
func (e *Engine) ColumnCount() int { return len(e.extents) }
func (e *Engine) VirtualRows() int { return e.virtualRows }
func (e *Engine) VirtualCols() int { return e.virtualCols }
func (e *Engine) VisibleRows() int { return e.visibleRows }
func (e *Engine) VisibleCols() int { return e.visibleCols }

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
