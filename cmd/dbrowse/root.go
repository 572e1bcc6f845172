package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/mitchellh/go-homedir"
	"github.com/spf13/cobra"

	"github.com/jask/dbrowse/internal/action"
	"github.com/jask/dbrowse/internal/app"
	"github.com/jask/dbrowse/internal/command"
	"github.com/jask/dbrowse/internal/config"
	"github.com/jask/dbrowse/internal/database"
	"github.com/jask/dbrowse/internal/database/repository"
	"github.com/jask/dbrowse/internal/logging"
	"github.com/jask/dbrowse/internal/tui"
)

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

type rootFlags struct {
	configPath string
	logLevel   string
	session    string
}

func newRootCmd() *cobra.Command {
	var f rootFlags
	cmd := &cobra.Command{
		Use:          "dbrowse [database [table...]]",
		Short:        "Browse and edit SQLite tables with vim-style keys",
		Long:         "dbrowse opens the given tables of a SQLite database, or all of them when none are named.",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd.Context(), f, args)
		},
	}
	cmd.PersistentFlags().StringVar(&f.configPath, "config", "", "config file (default ~/.config/dbrowse/config.toml)")
	cmd.Flags().StringVar(&f.logLevel, "log-level", "", "log level: debug, info, warn or error")
	cmd.Flags().StringVar(&f.session, "session", "", "open the tables listed in a session file")
	cmd.AddCommand(newKeysCmd(), newVersionCmd(&f), newConfigCmd(&f))
	return cmd
}

func newVersionCmd(f *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the dbrowse version and the schema version of the state database",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load(f.configPath)
			if err != nil {
				return err
			}
			return printVersion(cmd.OutOrStdout(), cfg.Database.StatePath)
		},
	}
}

func printVersion(w io.Writer, statePath string) error {
	fmt.Fprintf(w, "dbrowse %s\n", version)
	if _, err := os.Stat(statePath); errors.Is(err, os.ErrNotExist) {
		_, err := fmt.Fprintf(w, "state %s: not created\n", statePath)
		return err
	}
	v, dirty, err := database.Version(statePath)
	if err != nil {
		return fmt.Errorf("state version: %w", err)
	}
	state := ""
	if dirty {
		state = " (dirty)"
	}
	_, err = fmt.Fprintf(w, "state %s: schema %d%s\n", statePath, v, state)
	return err
}

func newConfigCmd(f *rootFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage the config file",
	}
	var force bool
	initCmd := &cobra.Command{
		Use:   "init",
		Short: "Write a config file with the default settings",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			path, err := configPath(f.configPath)
			if err != nil {
				return err
			}
			if _, err := os.Stat(path); err == nil && !force {
				return fmt.Errorf("%s exists; use --force to overwrite it", path)
			}
			cfg, err := config.Default()
			if err != nil {
				return err
			}
			if err := config.Save(path, cfg); err != nil {
				return err
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), "wrote", path)
			return err
		},
	}
	initCmd.Flags().BoolVar(&force, "force", false, "overwrite an existing config file")
	cmd.AddCommand(initCmd)
	return cmd
}

// configPath resolves the config file the same way config.Load looks for it.
func configPath(flag string) (string, error) {
	path := flag
	if path == "" {
		path = os.Getenv("DBROWSE_CONFIG")
	}
	if path == "" {
		return config.DefaultPath(), nil
	}
	return homedir.Expand(path)
}

func newKeysCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "keys",
		Short: "List the default key bindings and the action names usable in config",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return printKeys(cmd.OutOrStdout())
		},
	}
}

func printKeys(w io.Writer) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	for _, b := range action.Defaults() {
		fmt.Fprintf(tw, "%s\t%s\n", b.Chord, b.Action)
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	fmt.Fprintln(w)
	fmt.Fprintln(w, "actions:")
	for _, name := range action.Names() {
		fmt.Fprintln(w, "  "+name)
	}
	_, err := fmt.Fprintf(w, "  %s<template>\n", action.WritePrefix)
	return err
}

func bindings(keys []config.KeyBinding) []action.Binding {
	out := make([]action.Binding, len(keys))
	for i, k := range keys {
		out[i] = action.Binding{Chord: k.Chord, Action: k.Action}
	}
	return out
}

func openLogger(cfg config.LogConfig) (logging.Logger, func() error, error) {
	level, err := logging.ParseLevel(cfg.Level)
	if err != nil {
		return nil, nil, err
	}
	format, err := logging.ParseFormat(cfg.Format)
	if err != nil {
		return nil, nil, err
	}
	f, err := logging.OpenFile(cfg.Path)
	if err != nil {
		return nil, nil, err
	}
	return logging.New(logging.Config{Level: level, Format: format, Output: f, AddTime: true}), f.Close, nil
}

func run(ctx context.Context, f rootFlags, args []string) error {
	cfg, err := config.Load(f.configPath)
	if err != nil {
		return err
	}
	if f.logLevel != "" {
		cfg.Log.Level = f.logLevel
	}
	log, closeLog, err := openLogger(cfg.Log)
	if err != nil {
		return fmt.Errorf("log: %w", err)
	}
	defer closeLog()

	stateDB, err := database.Open(cfg.Database.StatePath)
	if err != nil {
		return fmt.Errorf("open state db: %w", err)
	}
	defer stateDB.Close()
	if err := database.RunMigrations(cfg.Database.StatePath); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}
	if v, _, err := database.Version(cfg.Database.StatePath); err == nil {
		log.Debug("state db", "path", cfg.Database.StatePath, "schema", v)
	}

	a := app.New(app.Options{
		Settings: app.Settings{
			ColumnWidths:   cfg.UI.ColumnWidths,
			MaxColumnWidth: cfg.UI.MaxColumnWidth,
			VirtualRows:    cfg.UI.VirtualRows,
		},
		Log:      log,
		History:  repository.NewHistoryRepo(stateDB),
		Sessions: repository.NewSessionRepo(stateDB),
	})
	defer a.Close()

	keys, keysErr := action.NewMatcher(bindings(cfg.Keys), log)

	if err := openInitial(ctx, a, f.session, cfg.Database.DefaultPath, args); err != nil {
		return err
	}

	ui := tui.New(ctx, a, tui.Options{
		Keys:       keys,
		Commands:   command.NewRegistry(),
		StatusTop:  cfg.UI.StatusBar == config.StatusTop,
		MaxHistory: cfg.History.MaxSize,
		Log:        log,
		Warning:    keysErr,
	})
	defer ui.Close()

	log.Info("start", "tables", len(a.Refs()))
	p := tea.NewProgram(ui, tea.WithAltScreen(), tea.WithContext(ctx))
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("ui: %w", err)
	}
	return nil
}

// openInitial opens the session file if one is given, and otherwise the
// tables named on the command line. Without a database argument the
// configured default database is used; with neither, dbrowse starts empty.
func openInitial(ctx context.Context, a *app.Context, session, defaultDB string, args []string) error {
	if session != "" {
		path, err := homedir.Expand(session)
		if err != nil {
			return err
		}
		n, err := a.LoadSessionFile(ctx, path)
		if err != nil && n == 0 {
			return err
		}
		return nil
	}
	dbPath := defaultDB
	var tables []string
	if len(args) > 0 {
		dbPath, tables = args[0], args[1:]
	}
	if dbPath == "" {
		return nil
	}
	dbPath, err := homedir.Expand(dbPath)
	if err != nil {
		return err
	}
	_, err = a.OpenDatabase(ctx, dbPath, tables...)
	return err
}
