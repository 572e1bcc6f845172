// Package cmdline is the ':' command line: a single-line editor with
// history recall, command-name completion and argument parsing.
package cmdline

import (
	"slices"
	"strings"
)

// DefaultMaxHistory bounds the in-memory history when no size is given.
const DefaultMaxHistory = 500

// Editor holds the line being typed. The cursor is a rune index in
// [0, len(text)].
type Editor struct {
	buf    []rune
	cursor int

	history    []string // newest first
	histIdx    int      // -1 is the live line
	stash      string
	maxHistory int

	names     []string
	matches   []string
	matchIdx  int
	completed bool
}

// NewEditor returns an empty editor. history is newest first. names are the
// completion candidates.
func NewEditor(history []string, maxHistory int, names []string) *Editor {
	if maxHistory <= 0 {
		maxHistory = DefaultMaxHistory
	}
	if len(history) > maxHistory {
		history = history[:maxHistory]
	}
	sorted := slices.Clone(names)
	slices.Sort(sorted)
	return &Editor{
		history:    slices.Clone(history),
		histIdx:    -1,
		maxHistory: maxHistory,
		names:      sorted,
	}
}

// Text returns the current line.
func (e *Editor) Text() string { return string(e.buf) }

// Cursor returns the cursor position in runes.
func (e *Editor) Cursor() int { return e.cursor }

// History returns the history, newest first.
func (e *Editor) History() []string { return slices.Clone(e.history) }

func (e *Editor) edited() {
	e.completed = false
	e.matches = nil
}

// Insert types r at the cursor.
func (e *Editor) Insert(r rune) {
	e.buf = slices.Insert(e.buf, e.cursor, r)
	e.cursor++
	e.edited()
}

// InsertString types s at the cursor.
func (e *Editor) InsertString(s string) {
	for _, r := range s {
		e.Insert(r)
	}
}

// Backspace deletes the rune before the cursor.
func (e *Editor) Backspace() bool {
	if e.cursor == 0 {
		return false
	}
	e.buf = slices.Delete(e.buf, e.cursor-1, e.cursor)
	e.cursor--
	e.edited()
	return true
}

// Delete deletes the rune under the cursor.
func (e *Editor) Delete() bool {
	if e.cursor >= len(e.buf) {
		return false
	}
	e.buf = slices.Delete(e.buf, e.cursor, e.cursor+1)
	e.edited()
	return true
}

// DeleteWord deletes back to the start of the previous word.
func (e *Editor) DeleteWord() bool {
	i := e.cursor
	for i > 0 && e.buf[i-1] == ' ' {
		i--
	}
	for i > 0 && e.buf[i-1] != ' ' {
		i--
	}
	if i == e.cursor {
		return false
	}
	e.buf = slices.Delete(e.buf, i, e.cursor)
	e.cursor = i
	e.edited()
	return true
}

func (e *Editor) Left() {
	if e.cursor > 0 {
		e.cursor--
	}
}

func (e *Editor) Right() {
	if e.cursor < len(e.buf) {
		e.cursor++
	}
}

func (e *Editor) Home() { e.cursor = 0 }

func (e *Editor) End() { e.cursor = len(e.buf) }

// Set replaces the line and puts the cursor at its end.
func (e *Editor) Set(text string) {
	e.set(text)
	e.edited()
}

func (e *Editor) set(text string) {
	e.buf = []rune(text)
	e.cursor = len(e.buf)
}

// Clear empties the line and leaves history navigation.
func (e *Editor) Clear() {
	e.Set("")
	e.histIdx = -1
	e.stash = ""
}

// HistoryPrev recalls the next older entry. The live line is kept and comes
// back when navigating past the newest entry.
func (e *Editor) HistoryPrev() bool {
	if e.histIdx+1 >= len(e.history) {
		return false
	}
	if e.histIdx == -1 {
		e.stash = e.Text()
	}
	e.histIdx++
	e.Set(e.history[e.histIdx])
	return true
}

// HistoryNext recalls the next newer entry, then the live line.
func (e *Editor) HistoryNext() bool {
	if e.histIdx == -1 {
		return false
	}
	e.histIdx--
	if e.histIdx == -1 {
		e.Set(e.stash)
		return true
	}
	e.Set(e.history[e.histIdx])
	return true
}

// Submit returns the line, records it as the newest history entry and
// clears the editor. Blank lines are returned but not recorded.
func (e *Editor) Submit() string {
	line := e.Text()
	if strings.TrimSpace(line) != "" {
		e.push(line)
	}
	e.Clear()
	return line
}

func (e *Editor) push(line string) {
	if i := slices.Index(e.history, line); i >= 0 {
		e.history = slices.Delete(e.history, i, i+1)
	}
	e.history = slices.Insert(e.history, 0, line)
	if len(e.history) > e.maxHistory {
		e.history = e.history[:e.maxHistory]
	}
}

// Complete replaces the line with the next command name sharing its
// prefix, going backwards when forward is false. The candidates are fixed on
// the first call and cycle until the line is edited. It reports false when
// nothing matches or the line already has arguments.
func (e *Editor) Complete(forward bool) bool {
	if !e.completed {
		prefix := e.Text()
		if strings.ContainsRune(prefix, ' ') {
			return false
		}
		e.matches = e.matches[:0]
		for _, name := range e.names {
			if strings.HasPrefix(name, prefix) {
				e.matches = append(e.matches, name)
			}
		}
		if len(e.matches) == 0 {
			return false
		}
		e.completed = true
		e.matchIdx = 0
		if !forward {
			e.matchIdx = len(e.matches) - 1
		}
	} else {
		n := len(e.matches)
		if forward {
			e.matchIdx = (e.matchIdx + 1) % n
		} else {
			e.matchIdx = (e.matchIdx - 1 + n) % n
		}
	}
	e.set(e.matches[e.matchIdx])
	return true
}
