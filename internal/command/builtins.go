package command

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/mitchellh/go-homedir"

	"github.com/jask/dbrowse/internal/app"
	"github.com/jask/dbrowse/internal/cmdline"
	"github.com/jask/dbrowse/internal/store"
)

func builtins() []Command {
	return []Command{
		{
			Name:        "edit",
			Usage:       "edit <rowid> <value>",
			Description: "Set the current column of a row",
			Execute:     runEdit,
		},
		{
			Name:        "new_entry",
			Usage:       "new_entry",
			Description: "Insert a row of default values",
			Execute: func(ctx context.Context, a *app.Context, _ Invocation) (Result, error) {
				id, err := a.NewEntry(ctx)
				if err != nil {
					return Result{}, err
				}
				return Result{Message: fmt.Sprintf("inserted row %d", id)}, nil
			},
		},
		{
			Name:        "del_entry",
			Usage:       "del_entry <rowids>",
			Description: "Delete the selected rows or the given rows",
			Execute:     runDelete,
		},
		{
			Name:        "filter",
			Usage:       "filter [term]",
			Description: "Show rows whose current column contains term",
			Execute: func(ctx context.Context, a *app.Context, inv Invocation) (Result, error) {
				n, err := a.Filter(ctx, argument(inv.Args))
				if err != nil {
					return Result{}, err
				}
				return Result{Message: fmt.Sprintf("%d rows", n)}, nil
			},
		},
		{
			Name:        "reload",
			Usage:       "reload",
			Description: "Show every row again in rowid order",
			Execute: func(ctx context.Context, a *app.Context, _ Invocation) (Result, error) {
				if err := a.Reload(ctx); err != nil {
					return Result{}, err
				}
				return Result{Message: fmt.Sprintf("%d rows", a.Buffers.Current().View.RowCount())}, nil
			},
		},
		{
			Name:        "sort",
			Usage:       "sort asc|desc [column]",
			Description: "Order rows by the current or given column",
			Execute:     runSort,
		},
		{
			Name:        "select",
			Usage:       "select [rowids]",
			Description: "Select rows such as 1,3,5-7; no ids clears the selection",
			Execute:     runSelect,
		},
		{
			Name:        "clone",
			Usage:       "clone[!] <table>",
			Description: "Create a table with the same schema; ! copies the selected or all rows",
			Bang:        true,
			Execute:     runClone,
		},
		{
			Name:        "e",
			Aliases:     []string{"open"},
			Usage:       "e <database> [table|*]...",
			Description: "Open tables as new buffers",
			Execute:     runOpen,
		},
		{
			Name:        "b",
			Usage:       "b <id|pattern|#>",
			Description: "Switch to a buffer",
			Execute:     runSwitch,
		},
		{
			Name:        "bd",
			Aliases:     []string{"rm"},
			Usage:       "bd [id|pattern|#]",
			Description: "Close a buffer",
			Execute:     runClose,
		},
		{
			Name:        "ls",
			Usage:       "ls[!]",
			Description: "List open buffers; ! lists named sessions",
			Bang:        true,
			Execute:     runList,
		},
		{
			Name:        "mksession",
			Usage:       "mksession[!] <file|name>",
			Description: "Save the open tables to a file; ! saves a named session",
			Bang:        true,
			Execute:     runSaveSession,
		},
		{
			Name:        "ldsession",
			Usage:       "ldsession[!] <file|name>",
			Description: "Open the tables of a session file; ! loads a named session",
			Bang:        true,
			Execute:     runLoadSession,
		},
		{
			Name:        "rmsession",
			Usage:       "rmsession <name>",
			Description: "Delete a named session",
			Execute:     runDeleteSession,
		},
		{
			Name:        "q",
			Aliases:     []string{"quit"},
			Usage:       "q",
			Description: "Quit",
			Execute: func(context.Context, *app.Context, Invocation) (Result, error) {
				return Result{Quit: true}, nil
			},
		},
	}
}

func usage(name string) error {
	for _, c := range builtins() {
		if c.Name == name {
			return c.usageErr()
		}
	}
	return ErrUsage
}

func runEdit(ctx context.Context, a *app.Context, inv Invocation) (Result, error) {
	pk, value, _ := strings.Cut(inv.Args, " ")
	rowid, err := strconv.ParseInt(pk, 10, 64)
	if err != nil {
		return Result{}, usage("edit")
	}
	if err := a.UpdateCell(ctx, rowid, argument(value)); err != nil {
		return Result{}, err
	}
	return Result{}, nil
}

// argument unquotes args when it is a single shell word and otherwise
// returns it as typed.
func argument(args string) string {
	if words, err := cmdline.Fields(args); err == nil && len(words) == 1 {
		return words[0]
	}
	return args
}

func runDelete(ctx context.Context, a *app.Context, inv Invocation) (Result, error) {
	t, _, err := a.Current()
	if err != nil {
		return Result{}, err
	}
	ids := a.Selection.Get(t.Ref)
	if len(ids) == 0 {
		if strings.TrimSpace(inv.Args) == "" {
			return Result{}, usage("del_entry")
		}
		if ids, err = ParseRowIDs(inv.Args); err != nil {
			return Result{}, err
		}
	}
	prompt := fmt.Sprintf("Delete %d row(s) from %s? (y/n): ", len(ids), t.Ref.Table)
	return Result{Confirm: &Confirmation{
		Prompt: prompt,
		Run: func(ctx context.Context) (Result, error) {
			n, err := a.DeleteRows(ctx, ids)
			if err != nil {
				return Result{}, err
			}
			return Result{Message: fmt.Sprintf("deleted %d row(s)", n)}, nil
		},
	}}, nil
}

func runSort(ctx context.Context, a *app.Context, inv Invocation) (Result, error) {
	fields, err := inv.Fields()
	if err != nil {
		return Result{}, err
	}
	if len(fields) == 0 || len(fields) > 2 {
		return Result{}, usage("sort")
	}
	order := strings.ToLower(fields[0])
	if order != store.Asc && order != store.Desc {
		return Result{}, usage("sort")
	}
	column := ""
	if len(fields) == 2 {
		column = fields[1]
	}
	return Result{}, a.Sort(ctx, order, column)
}

func runSelect(_ context.Context, a *app.Context, inv Invocation) (Result, error) {
	ids, err := ParseRowIDs(inv.Args)
	if err != nil {
		return Result{}, err
	}
	if err := a.Select(ids); err != nil {
		return Result{}, err
	}
	if len(ids) == 0 {
		return Result{Message: "selection cleared"}, nil
	}
	return Result{Message: fmt.Sprintf("%d row(s) selected", len(ids))}, nil
}

func runClone(ctx context.Context, a *app.Context, inv Invocation) (Result, error) {
	fields, err := inv.Fields()
	if err != nil {
		return Result{}, err
	}
	if len(fields) != 1 {
		return Result{}, usage("clone")
	}
	if err := a.Clone(ctx, fields[0], inv.Bang); err != nil {
		return Result{}, err
	}
	return Result{Message: "created table " + fields[0]}, nil
}

func runOpen(ctx context.Context, a *app.Context, inv Invocation) (Result, error) {
	fields, err := inv.Fields()
	if err != nil {
		return Result{}, err
	}
	if len(fields) == 0 {
		return Result{}, usage("e")
	}
	path, err := homedir.Expand(fields[0])
	if err != nil {
		return Result{}, err
	}
	n, err := a.OpenDatabase(ctx, path, fields[1:]...)
	if err != nil {
		return Result{}, err
	}
	return Result{Message: fmt.Sprintf("opened %d table(s)", n)}, nil
}

func runSwitch(_ context.Context, a *app.Context, inv Invocation) (Result, error) {
	if strings.TrimSpace(inv.Args) == "" {
		return Result{}, usage("b")
	}
	i, err := a.Buffers.Find(inv.Args)
	if err != nil {
		return Result{}, err
	}
	return Result{}, a.SwitchTo(i)
}

func runClose(_ context.Context, a *app.Context, inv Invocation) (Result, error) {
	i, err := a.Buffers.Find(inv.Args)
	if err != nil {
		return Result{}, err
	}
	name := a.Buffers.At(i).Name()
	if err := a.CloseTable(i); err != nil {
		return Result{}, err
	}
	return Result{Message: "closed " + name}, nil
}

func runList(ctx context.Context, a *app.Context, inv Invocation) (Result, error) {
	if !inv.Bang {
		a.ShowBuffers()
		return Result{}, nil
	}
	n, err := a.ShowSessions(ctx)
	if err != nil {
		return Result{}, err
	}
	if n == 0 {
		return Result{Message: "no named sessions"}, nil
	}
	return Result{}, nil
}

func runDeleteSession(ctx context.Context, a *app.Context, inv Invocation) (Result, error) {
	fields, err := inv.Fields()
	if err != nil {
		return Result{}, err
	}
	if len(fields) != 1 {
		return Result{}, usage("rmsession")
	}
	if err := a.DeleteSession(ctx, fields[0]); err != nil {
		return Result{}, err
	}
	return Result{Message: "deleted session " + fields[0]}, nil
}

func runSaveSession(ctx context.Context, a *app.Context, inv Invocation) (Result, error) {
	target, err := sessionTarget(inv)
	if err != nil {
		return Result{}, err
	}
	if inv.Bang {
		err = a.SaveSession(ctx, target)
	} else {
		err = a.SaveSessionFile(target)
	}
	if err != nil {
		return Result{}, err
	}
	return Result{Message: fmt.Sprintf("saved %d table(s) to %s", len(a.Refs()), target)}, nil
}

func runLoadSession(ctx context.Context, a *app.Context, inv Invocation) (Result, error) {
	target, err := sessionTarget(inv)
	if err != nil {
		return Result{}, err
	}
	var n int
	if inv.Bang {
		n, err = a.LoadSession(ctx, target)
	} else {
		n, err = a.LoadSessionFile(ctx, target)
	}
	if err != nil && n == 0 {
		return Result{}, err
	}
	msg := fmt.Sprintf("opened %d table(s)", n)
	if err != nil {
		var joined interface{ Unwrap() []error }
		if errors.As(err, &joined) {
			msg += fmt.Sprintf(", %d failed", len(joined.Unwrap()))
		}
	}
	return Result{Message: msg}, nil
}

func sessionTarget(inv Invocation) (string, error) {
	fields, err := inv.Fields()
	if err != nil {
		return "", err
	}
	if len(fields) != 1 {
		return "", fmt.Errorf("%w: %s[!] <file|name>", ErrUsage, inv.Name)
	}
	if inv.Bang {
		return fields[0], nil
	}
	return homedir.Expand(fields[0])
}
