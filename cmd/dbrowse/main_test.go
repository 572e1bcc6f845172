package main

import (
	"bytes"
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	_ "github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/require"

	"github.com/jask/dbrowse/internal/action"
	"github.com/jask/dbrowse/internal/app"
	"github.com/jask/dbrowse/internal/config"
	"github.com/jask/dbrowse/internal/database"
	"github.com/jask/dbrowse/internal/event"
)

func TestKeysCommand(t *testing.T) {
	var out bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&out)
	cmd.SetArgs([]string{"keys"})
	require.NoError(t, cmd.Execute())

	require.Contains(t, out.String(), "gt")
	require.Contains(t, out.String(), "next_table")
	require.Contains(t, out.String(), action.WritePrefix+"<template>")
}

func TestBadLogLevel(t *testing.T) {
	cfg := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(cfg, nil, 0o644))

	cmd := newRootCmd()
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{"--config", cfg, "--log-level", "loud"})
	require.Error(t, cmd.Execute())
}

func TestBindings(t *testing.T) {
	got := bindings([]config.KeyBinding{{Chord: "zq", Action: "quit"}})
	require.Equal(t, []action.Binding{{Chord: "zq", Action: "quit"}}, got)
}

func newDB(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "anime.db")
	db, err := sql.Open("sqlite3", path)
	require.NoError(t, err)
	defer db.Close()
	_, err = db.Exec(`CREATE TABLE anime (title TEXT); CREATE TABLE studios (name TEXT)`)
	require.NoError(t, err)
	return path
}

func TestOpenInitial(t *testing.T) {
	ctx := context.Background()
	path := newDB(t)

	a := app.New(app.Options{NoClipboard: true})
	t.Cleanup(func() { _ = a.Close() })
	require.NoError(t, openInitial(ctx, a, "", "", nil))
	require.Zero(t, a.Buffers.Len())

	require.NoError(t, openInitial(ctx, a, "", path, nil))
	require.Equal(t, 2, a.Buffers.Len())

	require.NoError(t, openInitial(ctx, a, "", "", []string{path, "studios"}))
	require.Equal(t, 3, a.Buffers.Len())
	require.Equal(t, "studios", a.Buffers.Current().Ref.Table)

	require.Error(t, openInitial(ctx, a, "", "", []string{filepath.Join(t.TempDir(), "missing.db")}))
}

func TestOpenInitialSession(t *testing.T) {
	ctx := context.Background()
	path := newDB(t)
	file := filepath.Join(t.TempDir(), "session")
	f, err := os.Create(file)
	require.NoError(t, err)
	require.NoError(t, app.WriteSession(f, []event.TableRef{{DB: path, Table: "anime"}}))
	require.NoError(t, f.Close())

	a := app.New(app.Options{NoClipboard: true})
	t.Cleanup(func() { _ = a.Close() })
	require.NoError(t, openInitial(ctx, a, file, "", []string{"ignored.db"}))
	require.Equal(t, 1, a.Buffers.Len())
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestVersionCommand(t *testing.T) {
	dir := t.TempDir()
	statePath := filepath.Join(dir, "state.db")
	cfg := filepath.Join(dir, "config.toml")
	require.NoError(t, os.WriteFile(cfg, []byte(fmt.Sprintf("[database]\nstate_path = %q\n", statePath)), 0o644))

	out, err := execute(t, "version", "--config", cfg)
	require.NoError(t, err)
	require.Contains(t, out, "dbrowse "+version)
	require.Contains(t, out, "not created")

	require.NoError(t, database.RunMigrations(statePath))
	out, err = execute(t, "version", "--config", cfg)
	require.NoError(t, err)
	require.Contains(t, out, "schema 2")
	require.NotContains(t, out, "dirty")
}

func TestConfigInit(t *testing.T) {
	path := filepath.Join(t.TempDir(), "conf", "config.toml")

	out, err := execute(t, "config", "init", "--config", path)
	require.NoError(t, err)
	require.Contains(t, out, "wrote "+path)

	cfg, err := config.Load(path)
	require.NoError(t, err)
	require.Equal(t, config.StatusBottom, cfg.UI.StatusBar)
	require.Equal(t, 500, cfg.History.MaxSize)

	_, err = execute(t, "config", "init", "--config", path)
	require.ErrorContains(t, err, "--force")
	_, err = execute(t, "config", "init", "--force", "--config", path)
	require.NoError(t, err)
}
