package tui

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/bubbles/key"

	"github.com/jask/dbrowse/internal/keymap"
)

var syntheticKeys = map[tea.KeyType]keymap.Code{
	tea.KeyUp:       keymap.KeyUp,
	tea.KeyDown:     keymap.KeyDown,
	tea.KeyLeft:     keymap.KeyLeft,
	tea.KeyRight:    keymap.KeyRight,
	tea.KeyPgUp:     keymap.KeyPageUp,
	tea.KeyPgDown:   keymap.KeyPageDown,
	tea.KeyHome:     keymap.KeyHome,
	tea.KeyEnd:      keymap.KeyEnd,
	tea.KeyShiftTab: keymap.KeyShiftTab,
	tea.KeyDelete:   keymap.KeyDelete,
	tea.KeyInsert:   keymap.KeyInsert,
}

// Codes converts a key event into the codes the matcher is fed. A key
// pressed with Alt is preceded by keymap.KeyAlt. Pasted text yields one
// code per rune.
func Codes(msg tea.KeyMsg) []keymap.Code {
	var out []keymap.Code
	alt := func() {
		if msg.Alt {
			out = append(out, keymap.KeyAlt)
		}
	}
	switch {
	case msg.Type == tea.KeyRunes:
		if len(msg.Runes) == 1 {
			alt()
		}
		for _, r := range msg.Runes {
			out = append(out, keymap.Code(r))
		}
	case msg.Type == tea.KeySpace:
		alt()
		out = append(out, ' ')
	case msg.Type >= 0 && msg.Type <= tea.KeyBackspace:
		// Control characters, tab, enter, escape and backspace share their
		// ASCII codes.
		alt()
		out = append(out, keymap.Code(msg.Type))
	default:
		if c, ok := syntheticKeys[msg.Type]; ok {
			alt()
			out = append(out, c)
		}
	}
	return out
}

// lineKeys are the editing keys of the command line.
type lineKeys struct {
	Submit       key.Binding
	Cancel       key.Binding
	HistoryPrev  key.Binding
	HistoryNext  key.Binding
	Left         key.Binding
	Right        key.Binding
	Home         key.Binding
	End          key.Binding
	Backspace    key.Binding
	Delete       key.Binding
	DeleteWord   key.Binding
	Complete     key.Binding
	CompleteBack key.Binding
}

var commandKeys = lineKeys{
	Submit:       key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "run")),
	Cancel:       key.NewBinding(key.WithKeys("esc", "ctrl+c"), key.WithHelp("esc", "cancel")),
	HistoryPrev:  key.NewBinding(key.WithKeys("up", "ctrl+p"), key.WithHelp("↑", "older")),
	HistoryNext:  key.NewBinding(key.WithKeys("down", "ctrl+n"), key.WithHelp("↓", "newer")),
	Left:         key.NewBinding(key.WithKeys("left", "ctrl+b")),
	Right:        key.NewBinding(key.WithKeys("right", "ctrl+f")),
	Home:         key.NewBinding(key.WithKeys("home", "ctrl+a")),
	End:          key.NewBinding(key.WithKeys("end", "ctrl+e")),
	Backspace:    key.NewBinding(key.WithKeys("backspace", "ctrl+h")),
	Delete:       key.NewBinding(key.WithKeys("delete", "ctrl+d")),
	DeleteWord:   key.NewBinding(key.WithKeys("ctrl+w")),
	Complete:     key.NewBinding(key.WithKeys("tab"), key.WithHelp("tab", "complete")),
	CompleteBack: key.NewBinding(key.WithKeys("shift+tab")),
}

var (
	confirmYes = key.NewBinding(key.WithKeys("y", "Y"))
	forceQuit  = key.NewBinding(key.WithKeys("ctrl+c"))
)
