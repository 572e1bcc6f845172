package action

import (
	"errors"
	"fmt"

	"github.com/jask/dbrowse/internal/keymap"
	"github.com/jask/dbrowse/internal/logging"
)

// Binding pairs a chord string with an action name.
type Binding struct {
	Chord  string
	Action string
}

var defaultBindings = []Binding{
	{"k", "scroll_up"},
	{"j", "scroll_down"},
	{"h", "scroll_left"},
	{"l", "scroll_right"},
	{"<Ctrl-B>", "page_up"},
	{"<Ctrl-F>", "page_down"},
	{"gg", "top"},
	{"G", "bottom"},
	{"^", "first_column"},
	{"$", "last_column"},
	{"i", "new_entry"},
	{"y", "copy_entry"},
	{"p", "paste_entry"},
	{"gt", "next_table"},
	{"gT", "prev_table"},
	{"<Alt-l>", "next_table"},
	{"<Alt-h>", "prev_table"},
	{":", "command_line"},
	{"c", "edit_cell"},
	{"d", "delete_entry"},
	{"/", "filter"},
	{"v", "select_entry"},
	{"sa", "sort_asc"},
	{"sd", "sort_desc"},
	{"ZZ", "quit"},
	{"<Ctrl-L>", "resize"},
}

var defaultKeys = map[keymap.Code]string{
	keymap.KeyUp:       "scroll_up",
	keymap.KeyDown:     "scroll_down",
	keymap.KeyLeft:     "scroll_left",
	keymap.KeyRight:    "scroll_right",
	keymap.KeyPageUp:   "page_up",
	keymap.KeyPageDown: "page_down",
	keymap.KeyHome:     "top",
	keymap.KeyEnd:      "bottom",
	keymap.KeyResize:   "resize",
	keymap.KeyEscape:   "cancel",
}

// Defaults returns the built-in chord bindings.
func Defaults() []Binding {
	out := make([]Binding, len(defaultBindings))
	copy(out, defaultBindings)
	return out
}

// NewMatcher builds the normal-mode matcher: the defaults first, then
// overrides in order. Bad overrides are logged and skipped. The returned
// error joins every skipped override so the caller can surface it; the
// matcher is usable either way.
func NewMatcher(overrides []Binding, log logging.Logger) (*keymap.Matcher[Action], error) {
	m := keymap.New[Action]()
	for code, name := range defaultKeys {
		a, _ := Lookup(name)
		m.BindCodes(keymap.Chord{code}, a)
	}
	for _, b := range defaultBindings {
		a, _ := Lookup(b.Action)
		if !m.Bind(b.Chord, a) {
			panic(fmt.Sprintf("action: default binding %q does not bind", b.Chord))
		}
	}

	var errs []error
	for _, b := range overrides {
		if err := bind(m, b); err != nil {
			log.Warn("skipping key binding", "chord", b.Chord, "action", b.Action, "err", err)
			errs = append(errs, err)
			continue
		}
		log.Debug("key binding", "chord", b.Chord, "action", b.Action)
	}
	return m, errors.Join(errs...)
}

func bind(m *keymap.Matcher[Action], b Binding) error {
	a, ok := Lookup(b.Action)
	if !ok {
		return fmt.Errorf("key %q: unknown action %q", b.Chord, b.Action)
	}
	if keymap.ParseChord(b.Chord) == nil {
		return fmt.Errorf("key %q: invalid chord", b.Chord)
	}
	if !m.Bind(b.Chord, a) {
		return fmt.Errorf("key %q: overlaps another chord", b.Chord)
	}
	return nil
}
