package tui

import (
	"fmt"
	"slices"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
	"github.com/mattn/go-runewidth"

	"github.com/jask/dbrowse/internal/app"
	"github.com/jask/dbrowse/internal/viewport"
)

var (
	headerStyle   = lipgloss.NewStyle().Bold(true).Underline(true)
	keyStyle      = headerStyle.Foreground(lipgloss.Color("4"))
	cursorStyle   = lipgloss.NewStyle().Reverse(true)
	selectedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("3"))
	statusStyle   = lipgloss.NewStyle().Reverse(true)
	errorStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("1")).Bold(true)
	promptStyle   = lipgloss.NewStyle().Bold(true)
)

func (m *App) View() string {
	if m.quitting {
		return ""
	}
	width, height := m.app.Size()
	body := m.renderBody(width, max(height-1, 0))
	status := m.renderStatus(width)
	if m.statusTop {
		return status + "\n" + body
	}
	return body + "\n" + status
}

// renderBody draws the header and the rows of the current table, or the
// buffer listing, in exactly lines lines.
func (m *App) renderBody(width, lines int) string {
	out := make([]string, 0, lines)
	switch t := m.app.Buffers.Current(); {
	case m.overlay != nil:
		for _, l := range m.overlay {
			out = append(out, ansi.Truncate(l, width, ""))
		}
		out = append(out, promptStyle.Render("Press any key to continue"))
	case t == nil:
		out = append(out, "no table open; use :e <database> [table]")
	default:
		out = append(out, renderTable(t, m.app.Selection.Get(t.Ref))...)
	}
	for len(out) < lines {
		out = append(out, "~")
	}
	return strings.Join(out[:lines], "\n")
}

// renderTable draws the header and the rows inside the window of t's
// viewport. Every line is cut to the window's columns and the cursor cell is
// painted over the rectangle the viewport reports for it.
func renderTable(t *app.Table, selected []int64) []string {
	v := t.View
	win := v.Window()
	cols := v.VisibleColumns()
	cur := v.Cursor()

	lines := []string{renderLine(t, cols, win.Left, win.Right, func(col int) (string, lipgloss.Style) {
		if slices.Contains(t.Keys, t.Columns[col]) {
			return t.Columns[col], keyStyle
		}
		return t.Columns[col], headerStyle
	})}
	last := min(win.Bottom, v.RowCount()-1)
	for row := win.Top; row <= last; row++ {
		rowStyle := lipgloss.NewStyle()
		if slices.Contains(selected, t.RowIDs[row]) {
			rowStyle = selectedStyle
		}
		line := renderLine(t, cols, win.Left, win.Right, func(col int) (string, lipgloss.Style) {
			if col < len(t.Values[row]) {
				return t.Values[row][col], rowStyle
			}
			return "", rowStyle
		})
		if row == cur.Row {
			if r, ok := v.CellRect(cur); ok {
				line = paintCursor(line, r)
			}
		}
		lines = append(lines, line)
	}
	return lines
}

// paintCursor restyles the characters of line inside r.
func paintCursor(line string, r viewport.Rect) string {
	width := ansi.StringWidth(line)
	if r.Left >= width {
		return line
	}
	cell := ansi.Strip(ansi.Cut(line, r.Left, r.Right+1))
	return ansi.Cut(line, 0, r.Left) + cursorStyle.Render(cell) + ansi.Cut(line, r.Right+1, width)
}

// renderLine lays out the visible columns at their extents and cuts the
// result to the inclusive character range [left, right].
func renderLine(t *app.Table, cols []int, left, right int, cell func(col int) (string, lipgloss.Style)) string {
	if len(cols) == 0 {
		return ""
	}
	first, _ := t.View.Extent(cols[0])
	var sb strings.Builder
	if first.Beg > left {
		sb.WriteString(strings.Repeat(" ", first.Beg-left))
	}
	for _, col := range cols {
		ext, _ := t.View.Extent(col)
		text, style := cell(col)
		text = strings.ReplaceAll(text, "\n", " ")
		text = runewidth.FillRight(runewidth.Truncate(text, ext.Width(), ""), ext.Width())
		sb.WriteString(style.Render(text))
		sb.WriteByte(' ')
	}
	start := max(left-first.Beg, 0)
	return ansi.Cut(sb.String(), start, start+right-left+1)
}

func (m *App) renderStatus(width int) string {
	var left string
	switch m.mode {
	case modeCommand:
		return ansi.Truncate(m.renderCommandLine(), width, "")
	case modeConfirm:
		return ansi.Truncate(promptStyle.Render(m.status), width, "")
	}
	if m.statusErr {
		return ansi.Truncate(errorStyle.Render(m.status), width, "")
	}
	left = m.status
	t := m.app.Buffers.Current()
	if left == "" && t != nil {
		left = fmt.Sprintf("[%d] %s", t.ID, t.Name())
	}
	var right string
	if m.count > 0 {
		right += fmt.Sprintf("%d", m.count)
	}
	right += m.pending.String()
	if t != nil {
		cur := t.View.Cursor()
		right += fmt.Sprintf("  %d/%d,%d", cur.Row+1, t.View.RowCount(), cur.Col+1)
	}
	gap := width - runewidth.StringWidth(right) - 1
	left = runewidth.FillRight(runewidth.Truncate(left, max(gap, 0), "…"), max(gap, 0))
	return statusStyle.Render(ansi.Truncate(left+" "+right, width, ""))
}

func (m *App) renderCommandLine() string {
	text := []rune(m.editor.Text())
	pos := m.editor.Cursor()
	under := " "
	var after string
	if pos < len(text) {
		under, after = string(text[pos]), string(text[pos+1:])
	}
	return ":" + string(text[:pos]) + cursorStyle.Render(under) + after
}
