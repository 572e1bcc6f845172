// Package event is the bus commands use to tell tables what changed.
//
// Every event is a concrete type from the fixed set below. Handlers are
// registered per Signal and run synchronously, in subscription order, on the
// goroutine that calls Emit.
package event

import "fmt"

// Signal identifies an event type.
type Signal int

const (
	NewQuery Signal = iota + 1
	EntryDeleted
	EntryInserted
	EntryUpdated
	ScreenResized
	TableSwitched
	EntriesSelected
	TableOpened
	ShowBuffers
)

var signalNames = map[Signal]string{
	NewQuery:        "new_query",
	EntryDeleted:    "entry_deleted",
	EntryInserted:   "entry_inserted",
	EntryUpdated:    "entry_updated",
	ScreenResized:   "screen_resized",
	TableSwitched:   "table_switched",
	EntriesSelected: "entries_selected",
	TableOpened:     "table_opened",
	ShowBuffers:     "show_buffers",
}

func (s Signal) String() string {
	if name, ok := signalNames[s]; ok {
		return name
	}
	return fmt.Sprintf("signal(%d)", int(s))
}

// Event is implemented by the event types of this package only.
type Event interface {
	Signal() Signal
}

// TableRef names a table of an open database.
type TableRef struct {
	DB    string
	Table string
}

func (r TableRef) String() string { return r.DB + ":" + r.Table }

// Query carries the rows of a filter or sort result for one table.
type Query struct {
	Ref     TableRef
	Columns []string
	RowIDs  []int64
	Values  [][]string
}

// Deleted reports rows removed from a table.
type Deleted struct {
	Ref    TableRef
	RowIDs []int64
}

// Inserted reports rows added to a table. Values[i] holds the display text
// of RowIDs[i] in column order.
type Inserted struct {
	Ref    TableRef
	RowIDs []int64
	Values [][]string
}

// Updated reports a changed cell.
type Updated struct {
	Ref    TableRef
	RowID  int64
	Column string
	Value  string
}

// Resized reports the new terminal size.
type Resized struct {
	Width  int
	Height int
}

// Switched asks the UI to make buffer Index current.
type Switched struct {
	Index int
}

// Selected reports rows placed in the select buffer.
type Selected struct {
	Ref    TableRef
	RowIDs []int64
}

// Opened reports a table opened as a new buffer.
type Opened struct {
	Ref TableRef
}

// BuffersShown carries the buffer listing for the status bar.
type BuffersShown struct {
	Listing string
}

func (Query) Signal() Signal        { return NewQuery }
func (Deleted) Signal() Signal      { return EntryDeleted }
func (Inserted) Signal() Signal     { return EntryInserted }
func (Updated) Signal() Signal      { return EntryUpdated }
func (Resized) Signal() Signal      { return ScreenResized }
func (Switched) Signal() Signal     { return TableSwitched }
func (Selected) Signal() Signal     { return EntriesSelected }
func (Opened) Signal() Signal       { return TableOpened }
func (BuffersShown) Signal() Signal { return ShowBuffers }
