package app

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/jask/dbrowse/internal/database/repository"
	"github.com/jask/dbrowse/internal/event"
)

// ErrNoStateDB is returned by named-session operations when the context
// has no state database.
var ErrNoStateDB = errors.New("no state database")

// WriteSession writes one JSON array ["db", "table"] per line.
func WriteSession(w io.Writer, refs []event.TableRef) error {
	enc := json.NewEncoder(w)
	for _, r := range refs {
		if err := enc.Encode([2]string{r.DB, r.Table}); err != nil {
			return err
		}
	}
	return nil
}

// ReadSession parses the format written by WriteSession. Blank lines are
// skipped.
func ReadSession(r io.Reader) ([]event.TableRef, error) {
	var refs []event.TableRef
	sc := bufio.NewScanner(r)
	for n := 1; sc.Scan(); n++ {
		line := strings.TrimSpace(sc.Text())
		if line == "" {
			continue
		}
		var pair [2]string
		if err := json.Unmarshal([]byte(line), &pair); err != nil {
			return nil, fmt.Errorf("session line %d: %w", n, err)
		}
		if pair[0] == "" || pair[1] == "" {
			return nil, fmt.Errorf("session line %d: want [db, table]", n)
		}
		refs = append(refs, event.TableRef{DB: pair[0], Table: pair[1]})
	}
	return refs, sc.Err()
}

// SaveSessionFile writes the open tables to path.
func (c *Context) SaveSessionFile(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := WriteSession(f, c.Refs()); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}

// LoadSessionFile opens every table listed in path.
func (c *Context) LoadSessionFile(ctx context.Context, path string) (int, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, err
	}
	defer f.Close()
	refs, err := ReadSession(f)
	if err != nil {
		return 0, err
	}
	return c.openRefs(ctx, refs)
}

// SaveSession stores the open tables as a named session.
func (c *Context) SaveSession(ctx context.Context, name string) error {
	if c.Sessions == nil {
		return ErrNoStateDB
	}
	refs := c.Refs()
	tables := make([]repository.TableRef, len(refs))
	for i, r := range refs {
		tables[i] = repository.TableRef{DB: r.DB, Table: r.Table}
	}
	_, err := c.Sessions.Save(ctx, name, tables)
	return err
}

// LoadSession opens every table of a named session.
func (c *Context) LoadSession(ctx context.Context, name string) (int, error) {
	if c.Sessions == nil {
		return 0, ErrNoStateDB
	}
	s, err := c.Sessions.Load(ctx, name)
	if err != nil {
		return 0, err
	}
	refs := make([]event.TableRef, len(s.Tables))
	for i, t := range s.Tables {
		refs[i] = event.TableRef{DB: t.DB, Table: t.Table}
	}
	return c.openRefs(ctx, refs)
}

// SessionNames lists the named sessions in name order.
func (c *Context) SessionNames(ctx context.Context) ([]string, error) {
	if c.Sessions == nil {
		return nil, ErrNoStateDB
	}
	return c.Sessions.List(ctx)
}

// ShowSessions emits the named-session listing through the same overlay as
// the buffer listing and reports how many sessions there are.
func (c *Context) ShowSessions(ctx context.Context) (int, error) {
	names, err := c.SessionNames(ctx)
	if err != nil {
		return 0, err
	}
	if len(names) == 0 {
		return 0, nil
	}
	c.Bus.Emit(event.BuffersShown{Listing: "sessions:\n  " + strings.Join(names, "\n  ")})
	return len(names), nil
}

// DeleteSession removes a named session.
func (c *Context) DeleteSession(ctx context.Context, name string) error {
	if c.Sessions == nil {
		return ErrNoStateDB
	}
	return c.Sessions.Delete(ctx, name)
}

// openRefs opens refs, skipping tables that fail, and reports how many
// opened. The errors of skipped tables are joined.
func (c *Context) openRefs(ctx context.Context, refs []event.TableRef) (int, error) {
	opened := 0
	var errs []error
	for _, r := range refs {
		if _, err := c.OpenTable(ctx, r.DB, r.Table); err != nil {
			c.Log.Warn("session table", "db", r.DB, "table", r.Table, "err", err)
			errs = append(errs, fmt.Errorf("%s: %w", r, err))
			continue
		}
		opened++
	}
	return opened, errors.Join(errs...)
}
