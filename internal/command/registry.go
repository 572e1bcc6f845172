// Package command implements the ex-style commands typed on the ':' line.
package command

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/jask/dbrowse/internal/app"
	"github.com/jask/dbrowse/internal/cmdline"
)

var (
	ErrUnknownCommand = errors.New("not an editor command")
	ErrUsage          = errors.New("usage")
)

// Invocation is a parsed command line.
type Invocation struct {
	Name string
	Bang bool
	Args string
	Line string
}

// Fields splits the arguments with shell quoting.
func (inv Invocation) Fields() ([]string, error) { return cmdline.Fields(inv.Args) }

// Confirmation defers a command until the user answers y or n.
type Confirmation struct {
	Prompt string
	Run    func(ctx context.Context) (Result, error)
}

// Result tells the UI what to show after a command.
type Result struct {
	Message string
	Confirm *Confirmation
	Quit    bool
}

// Command is one entry of the registry.
type Command struct {
	Name        string
	Aliases     []string
	Usage       string
	Description string
	// Bang allows a trailing '!' on the name.
	Bang    bool
	Execute func(ctx context.Context, a *app.Context, inv Invocation) (Result, error)
}

func (c Command) usageErr() error {
	return fmt.Errorf("%w: %s", ErrUsage, c.Usage)
}

// Registry maps command names and aliases to commands.
type Registry struct {
	commands []Command
	byName   map[string]Command
}

// NewRegistry returns a registry with the built-in commands.
func NewRegistry() *Registry {
	r := &Registry{byName: make(map[string]Command)}
	for _, cmd := range builtins() {
		if err := r.Register(cmd); err != nil {
			panic(err)
		}
	}
	return r
}

// Register adds cmd. Names and aliases must be unique.
func (r *Registry) Register(cmd Command) error {
	names := append([]string{cmd.Name}, cmd.Aliases...)
	for _, n := range names {
		if n == "" {
			return errors.New("command with empty name")
		}
		if _, dup := r.byName[n]; dup {
			return fmt.Errorf("command %q already registered", n)
		}
	}
	r.commands = append(r.commands, cmd)
	for _, n := range names {
		r.byName[n] = cmd
	}
	return nil
}

// All returns the commands in registration order.
func (r *Registry) All() []Command {
	out := make([]Command, len(r.commands))
	copy(out, r.commands)
	return out
}

// Names returns every name and alias, sorted, for completion.
func (r *Registry) Names() []string {
	out := make([]string, 0, len(r.byName))
	for n := range r.byName {
		out = append(out, n)
	}
	slices.Sort(out)
	return out
}

// Lookup finds a command by name or alias.
func (r *Registry) Lookup(name string) (Command, bool) {
	cmd, ok := r.byName[name]
	return cmd, ok
}

// Parse splits line into an invocation of a registered command.
func (r *Registry) Parse(line string) (Command, Invocation, error) {
	name, args, err := cmdline.Parse(line)
	if err != nil {
		return Command{}, Invocation{}, err
	}
	inv := Invocation{Name: name, Args: args, Line: line}
	if base, ok := strings.CutSuffix(name, "!"); ok && base != "" {
		inv.Name, inv.Bang = base, true
	}
	cmd, ok := r.Lookup(inv.Name)
	if !ok {
		if s, ok := cmdline.Suggest(inv.Name, r.Names()); ok {
			return Command{}, inv, fmt.Errorf("%w: %s (did you mean %s?)", ErrUnknownCommand, name, s)
		}
		return Command{}, inv, fmt.Errorf("%w: %s", ErrUnknownCommand, name)
	}
	if inv.Bang && !cmd.Bang {
		return Command{}, inv, fmt.Errorf("%s does not take !", cmd.Name)
	}
	return cmd, inv, nil
}

// Execute parses and runs one command line.
func (r *Registry) Execute(ctx context.Context, a *app.Context, line string) (Result, error) {
	cmd, inv, err := r.Parse(line)
	if err != nil {
		return Result{}, err
	}
	a.Log.Debug("command", "name", cmd.Name, "bang", inv.Bang, "args", inv.Args)
	return cmd.Execute(ctx, a, inv)
}
