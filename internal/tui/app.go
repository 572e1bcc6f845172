package tui

import (
	"context"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/bubbles/key"

	"github.com/jask/dbrowse/internal/action"
	"github.com/jask/dbrowse/internal/app"
	"github.com/jask/dbrowse/internal/cmdline"
	"github.com/jask/dbrowse/internal/command"
	"github.com/jask/dbrowse/internal/event"
	"github.com/jask/dbrowse/internal/keymap"
	"github.com/jask/dbrowse/internal/logging"
)

// Counts above this are clamped.
const maxCount = 99999

type mode int

const (
	modeNormal mode = iota
	modeCommand
	modeConfirm
)

// Options configure the UI.
type Options struct {
	Keys     *keymap.Matcher[action.Action]
	Commands *command.Registry
	// StatusTop puts the status bar above the table header.
	StatusTop  bool
	MaxHistory int
	Log        logging.Logger
	// Warning is shown in the status bar at startup.
	Warning error
}

// App is the bubbletea model. It owns the app.Context for its lifetime;
// all state changes happen on the Update goroutine.
type App struct {
	ctx      context.Context
	app      *app.Context
	keys     *keymap.Matcher[action.Action]
	commands *command.Registry
	editor   *cmdline.Editor
	log      logging.Logger

	mode    mode
	count   int
	pending keymap.Chord
	confirm *command.Confirmation

	status    string
	statusErr bool
	overlay   []string

	statusTop  bool
	maxHistory int
	quitting   bool

	unsubscribe []func()
}

func New(ctx context.Context, a *app.Context, opts Options) *App {
	if opts.Keys == nil {
		opts.Keys, _ = action.NewMatcher(nil, a.Log)
	}
	if opts.Commands == nil {
		opts.Commands = command.NewRegistry()
	}
	if opts.MaxHistory <= 0 {
		opts.MaxHistory = cmdline.DefaultMaxHistory
	}
	if opts.Log == nil {
		opts.Log = a.Log
	}
	m := &App{
		ctx:        ctx,
		app:        a,
		keys:       opts.Keys,
		commands:   opts.Commands,
		log:        opts.Log,
		statusTop:  opts.StatusTop,
		maxHistory: opts.MaxHistory,
	}
	if opts.Warning != nil {
		m.setError(opts.Warning)
	}
	m.editor = cmdline.NewEditor(a.LoadHistory(ctx, opts.MaxHistory), opts.MaxHistory, opts.Commands.Names())
	m.unsubscribe = []func(){
		event.On(a.Bus, func(e event.BuffersShown) {
			m.overlay = strings.Split(e.Listing, "\n")
		}),
		event.On(a.Bus, func(event.Switched) {
			m.overlay = nil
		}),
		event.On(a.Bus, func(e event.Opened) {
			m.setStatus("opened " + e.Ref.String())
		}),
	}
	return m
}

func (m *App) Init() tea.Cmd { return nil }

// Close drops the bus subscriptions of the UI.
func (m *App) Close() {
	for _, fn := range m.unsubscribe {
		fn()
	}
	m.unsubscribe = nil
}

func (m *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.app.Resize(msg.Width, msg.Height)
	case tea.KeyMsg:
		switch m.mode {
		case modeCommand:
			return m, m.handleCommandKey(msg)
		case modeConfirm:
			return m, m.handleConfirmKey(msg)
		default:
			return m, m.handleNormalKey(msg)
		}
	}
	return m, nil
}

func (m *App) setStatus(s string) {
	m.status, m.statusErr = s, false
}

func (m *App) setError(err error) {
	m.log.Debug("ui error", "err", err)
	m.status, m.statusErr = "ERROR: "+err.Error(), true
}

// report shows err if set and msg otherwise.
func (m *App) report(msg string, err error) {
	if err != nil {
		m.setError(err)
		return
	}
	m.setStatus(msg)
}

func (m *App) handleNormalKey(msg tea.KeyMsg) tea.Cmd {
	if key.Matches(msg, forceQuit) {
		return m.quit()
	}
	if m.overlay != nil {
		m.overlay = nil
		return nil
	}
	codes := Codes(msg)
	if len(codes) == 1 && m.countDigit(codes[0]) {
		m.count = min(m.count*10+int(codes[0]-'0'), maxCount)
		return nil
	}
	for i, c := range codes {
		res := m.keys.Feed(c)
		switch res.Status {
		case keymap.Pending:
			m.pending = append(m.pending, c)
		case keymap.Resolved:
			a := res.Action.WithCount(m.count)
			m.pending, m.count = nil, 0
			m.log.Debug("key action", "action", a.String())
			if cmd := m.dispatch(a); cmd != nil {
				return cmd
			}
			if m.mode != modeNormal {
				m.forward(codes[i+1:])
				return nil
			}
		case keymap.Rejected:
			m.pending, m.count = nil, 0
		}
	}
	return nil
}

// forward hands the rest of a pasted sequence to the mode an action just
// entered. The command line takes them as text; a confirmation prompt
// drops them so a paste cannot answer it.
func (m *App) forward(rest []keymap.Code) {
	if m.mode != modeCommand || len(rest) == 0 {
		return
	}
	var sb strings.Builder
	for _, c := range rest {
		sb.WriteRune(rune(c))
	}
	m.editor.InsertString(sb.String())
}

// countDigit reports whether c extends the count prefix. A leading '0' is
// not a count.
func (m *App) countDigit(c keymap.Code) bool {
	if m.keys.Pending() || !keymap.IsDigit(c) {
		return false
	}
	return c != '0' || m.count > 0
}

func (m *App) dispatch(a action.Action) tea.Cmd {
	switch a.Kind {
	case action.Scroll:
		m.app.Scroll(a.Direction, a.Times())
	case action.NewEntry:
		id, err := m.app.NewEntry(m.ctx)
		m.report(fmt.Sprintf("inserted row %d", id), err)
	case action.CopyEntry:
		n, err := m.app.CopyRows(m.ctx, app.DefaultCopyKey)
		m.report(fmt.Sprintf("copied %d row(s)", n), err)
	case action.PasteEntry:
		total := 0
		for range a.Times() {
			n, err := m.app.Paste(m.ctx, app.DefaultCopyKey)
			if err != nil {
				m.setError(err)
				return nil
			}
			total += n
		}
		m.setStatus(fmt.Sprintf("pasted %d row(s)", total))
	case action.NextTable:
		for range a.Times() {
			m.app.NextTable()
		}
	case action.PrevTable:
		for range a.Times() {
			m.app.PrevTable()
		}
	case action.Write:
		m.openCommandLine(a.Template)
	case action.Sort:
		if err := m.app.Sort(m.ctx, a.Order, ""); err != nil {
			m.setError(err)
		}
	case action.Resize:
		return tea.ClearScreen
	case action.Quit:
		return m.quit()
	case action.Cancel:
		m.keys.Reset()
		m.pending, m.count = nil, 0
		m.setStatus("")
	}
	return nil
}

func (m *App) openCommandLine(template string) {
	line, err := command.Expand(template, m.app.Buffers.Current())
	if err != nil {
		m.setError(err)
		return
	}
	m.editor.Set(line)
	m.mode = modeCommand
}

func (m *App) handleCommandKey(msg tea.KeyMsg) tea.Cmd {
	k := commandKeys
	e := m.editor
	switch {
	case key.Matches(msg, k.Submit):
		return m.submit()
	case key.Matches(msg, k.Cancel):
		e.Clear()
		m.mode = modeNormal
	case key.Matches(msg, k.HistoryPrev):
		e.HistoryPrev()
	case key.Matches(msg, k.HistoryNext):
		e.HistoryNext()
	case key.Matches(msg, k.Left):
		e.Left()
	case key.Matches(msg, k.Right):
		e.Right()
	case key.Matches(msg, k.Home):
		e.Home()
	case key.Matches(msg, k.End):
		e.End()
	case key.Matches(msg, k.Backspace):
		if !e.Backspace() && e.Text() == "" {
			m.mode = modeNormal
		}
	case key.Matches(msg, k.Delete):
		e.Delete()
	case key.Matches(msg, k.DeleteWord):
		e.DeleteWord()
	case key.Matches(msg, k.Complete):
		e.Complete(true)
	case key.Matches(msg, k.CompleteBack):
		e.Complete(false)
	case msg.Type == tea.KeySpace:
		e.Insert(' ')
	case msg.Type == tea.KeyRunes:
		e.InsertString(string(msg.Runes))
	}
	return nil
}

func (m *App) submit() tea.Cmd {
	line := m.editor.Submit()
	m.mode = modeNormal
	if strings.TrimSpace(line) == "" {
		return nil
	}
	m.app.RecordHistory(m.ctx, line)
	res, err := m.commands.Execute(m.ctx, m.app, line)
	return m.apply(res, err)
}

func (m *App) apply(res command.Result, err error) tea.Cmd {
	if err != nil {
		m.setError(err)
		return nil
	}
	if res.Quit {
		return m.quit()
	}
	if res.Confirm != nil {
		m.confirm = res.Confirm
		m.mode = modeConfirm
		m.setStatus(res.Confirm.Prompt)
		return nil
	}
	if res.Message != "" {
		m.setStatus(res.Message)
	}
	return nil
}

func (m *App) handleConfirmKey(msg tea.KeyMsg) tea.Cmd {
	c := m.confirm
	m.confirm, m.mode = nil, modeNormal
	if c == nil || !key.Matches(msg, confirmYes) {
		m.setStatus("cancelled")
		return nil
	}
	res, err := c.Run(m.ctx)
	return m.apply(res, err)
}

func (m *App) quit() tea.Cmd {
	if !m.quitting {
		m.quitting = true
		m.app.TrimHistory(m.ctx, m.maxHistory)
		m.log.Info("quit")
	}
	return tea.Quit
}
