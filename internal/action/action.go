// Package action defines the closed set of things a key chord can do and
// the default bindings that map chords onto them.
package action

import (
	"fmt"
	"maps"
	"slices"
	"strings"

	"github.com/jask/dbrowse/internal/viewport"
)

// Kind selects the variant of an Action.
type Kind int

const (
	// Scroll moves the cursor of the current table.
	Scroll Kind = iota + 1
	// NewEntry inserts a row with default values.
	NewEntry
	// CopyEntry copies the current or selected rows into the copy buffer.
	CopyEntry
	// PasteEntry inserts the copy buffer into the current table.
	PasteEntry
	NextTable
	PrevTable
	// Write opens the command line prefilled with Template after macro
	// expansion.
	Write
	// Sort orders the current table by the current column.
	Sort
	// Resize redraws after the terminal changed size.
	Resize
	Quit
	// Cancel drops a pending count or chord.
	Cancel
)

var kindNames = map[Kind]string{
	Scroll:     "scroll",
	NewEntry:   "new_entry",
	CopyEntry:  "copy_entry",
	PasteEntry: "paste_entry",
	NextTable:  "next_table",
	PrevTable:  "prev_table",
	Write:      "write",
	Sort:       "sort",
	Resize:     "resize",
	Quit:       "quit",
	Cancel:     "cancel",
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

// Sort orders.
const (
	Asc  = "asc"
	Desc = "desc"
)

// Action is a resolved key binding. Only the fields of its Kind are set.
type Action struct {
	Kind      Kind
	Direction viewport.Direction
	Count     int
	Template  string
	Order     string
}

// WithCount returns a copy of a with a repeat count. Counts below 1 leave
// the action unchanged.
func (a Action) WithCount(n int) Action {
	if n > 0 {
		a.Count = n
	}
	return a
}

// Times returns the repeat count, at least 1.
func (a Action) Times() int {
	if a.Count < 1 {
		return 1
	}
	return a.Count
}

func (a Action) String() string {
	switch a.Kind {
	case Scroll:
		return fmt.Sprintf("scroll %s x%d", a.Direction, a.Times())
	case Write:
		return fmt.Sprintf("write %q", a.Template)
	case Sort:
		return "sort " + a.Order
	}
	return a.Kind.String()
}

func scroll(d viewport.Direction) Action { return Action{Kind: Scroll, Direction: d} }

func write(template string) Action { return Action{Kind: Write, Template: template} }

var named = map[string]Action{
	"scroll_up":     scroll(viewport.Up),
	"scroll_down":   scroll(viewport.Down),
	"scroll_left":   scroll(viewport.Left),
	"scroll_right":  scroll(viewport.Right),
	"page_up":       scroll(viewport.PageUp),
	"page_down":     scroll(viewport.PageDown),
	"top":           scroll(viewport.Home),
	"bottom":        scroll(viewport.End),
	"first_column":  scroll(viewport.FirstColumn),
	"last_column":   scroll(viewport.LastColumn),
	"new_entry":     {Kind: NewEntry},
	"copy_entry":    {Kind: CopyEntry},
	"paste_entry":   {Kind: PasteEntry},
	"next_table":    {Kind: NextTable},
	"prev_table":    {Kind: PrevTable},
	"command_line":  write(""),
	"edit_cell":     write("edit %p %v"),
	"delete_entry":  write("del_entry %p"),
	"filter":        write("filter "),
	"sort_asc":      {Kind: Sort, Order: Asc},
	"sort_desc":     {Kind: Sort, Order: Desc},
	"resize":        {Kind: Resize},
	"quit":          {Kind: Quit},
	"cancel":        {Kind: Cancel},
	"list_buffers":  write("ls"),
	"select_entry":  write("select %p"),
	"clone_table":   write("clone "),
	"open_database": write("e "),
}

// WritePrefix introduces a literal command-line template in a binding, as
// in "write:sort desc %c".
const WritePrefix = "write:"

// Lookup returns the action bound to a name used in configuration.
func Lookup(name string) (Action, bool) {
	if tmpl, ok := strings.CutPrefix(name, WritePrefix); ok {
		return write(tmpl), true
	}
	a, ok := named[name]
	return a, ok
}

// Names returns every name Lookup knows, sorted, without the write: form.
func Names() []string {
	return slices.Sorted(maps.Keys(named))
}
