package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/mitchellh/go-homedir"
	"github.com/spf13/viper"
)

// Status bar positions.
const (
	StatusTop    = "top"
	StatusBottom = "bottom"
)

// Config holds application configuration.
type Config struct {
	Database DatabaseConfig `mapstructure:"database"`
	UI       UIConfig       `mapstructure:"ui"`
	Keys     []KeyBinding   `mapstructure:"keys"`
	History  HistoryConfig  `mapstructure:"history"`
	Log      LogConfig      `mapstructure:"log"`
}

// DatabaseConfig holds sqlite settings.
type DatabaseConfig struct {
	// DefaultPath is opened when no database is given on the command line.
	DefaultPath string `mapstructure:"default_path"`
	// StatePath is dbrowse's own database of history and sessions.
	StatePath string `mapstructure:"state_path"`
}

// UIConfig holds presentation settings.
type UIConfig struct {
	StatusBar      string `mapstructure:"status_bar"`
	ColumnWidths   []int  `mapstructure:"column_widths"`
	MaxColumnWidth int    `mapstructure:"max_column_width"`
	VirtualRows    int    `mapstructure:"virtual_rows"`
}

// KeyBinding binds a chord such as "gt" or "<Ctrl-F>" to a named action.
// Bindings are a list because viper lowercases map keys.
type KeyBinding struct {
	Chord  string `mapstructure:"chord"`
	Action string `mapstructure:"action"`
}

type HistoryConfig struct {
	MaxSize int `mapstructure:"max_size"`
}

type LogConfig struct {
	Path   string `mapstructure:"path"`
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// DefaultPath returns the config file used when neither a path nor
// DBROWSE_CONFIG is given.
func DefaultPath() string {
	return expand(filepath.Join("~", ".config", "dbrowse", "config.toml"))
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("database.default_path", "")
	v.SetDefault("database.state_path", filepath.Join("~", ".local", "share", "dbrowse", "state.db"))
	v.SetDefault("ui.status_bar", StatusBottom)
	v.SetDefault("ui.column_widths", []int{})
	v.SetDefault("ui.max_column_width", 40)
	v.SetDefault("ui.virtual_rows", 100)
	v.SetDefault("keys", []map[string]any{})
	v.SetDefault("history.max_size", 500)
	v.SetDefault("log.path", filepath.Join("~", ".local", "share", "dbrowse", "dbrowse.log"))
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")
}

// Default returns the built-in settings with paths left unexpanded, as
// they are written by Save.
func Default() (Config, error) {
	v := viper.New()
	setDefaults(v)
	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}
	return c, nil
}

// Load reads configuration from path, or from DBROWSE_CONFIG, or from the
// default location. A missing file at the default location is not an
// error. Env var overrides use prefix DBROWSE_.
func Load(path string) (Config, error) {
	v := viper.New()
	setDefaults(v)
	v.SetConfigType("toml")

	if path == "" {
		path = os.Getenv("DBROWSE_CONFIG")
	}
	explicit := path != ""
	if explicit {
		v.SetConfigFile(expand(path))
	} else {
		v.AddConfigPath(filepath.Dir(DefaultPath()))
		v.SetConfigName("config")
	}

	v.SetEnvPrefix("DBROWSE")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if explicit || !errors.As(err, &notFound) {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
	}

	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}
	c.Database.DefaultPath = expand(c.Database.DefaultPath)
	c.Database.StatePath = expand(c.Database.StatePath)
	c.Log.Path = expand(c.Log.Path)
	if err := c.Validate(); err != nil {
		return Config{}, err
	}
	return c, nil
}

// Validate checks values that would otherwise fail later and far away.
func (c Config) Validate() error {
	var errs []error
	switch c.UI.StatusBar {
	case StatusTop, StatusBottom:
	default:
		errs = append(errs, fmt.Errorf("ui.status_bar: want %q or %q, got %q", StatusTop, StatusBottom, c.UI.StatusBar))
	}
	if c.UI.MaxColumnWidth < 0 {
		errs = append(errs, fmt.Errorf("ui.max_column_width: must not be negative"))
	}
	if c.UI.VirtualRows < 0 {
		errs = append(errs, fmt.Errorf("ui.virtual_rows: must not be negative"))
	}
	if c.History.MaxSize < 0 {
		errs = append(errs, fmt.Errorf("history.max_size: must not be negative"))
	}
	for i, kb := range c.Keys {
		if kb.Chord == "" || kb.Action == "" {
			errs = append(errs, fmt.Errorf("keys[%d]: chord and action are required", i))
		}
	}
	return errors.Join(errs...)
}

// Save writes the provided config to path, creating the directory if needed.
func Save(path string, cfg Config) error {
	if path == "" {
		path = DefaultPath()
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("mkdir config dir: %w", err)
	}

	keys := make([]map[string]any, len(cfg.Keys))
	for i, kb := range cfg.Keys {
		keys[i] = map[string]any{"chord": kb.Chord, "action": kb.Action}
	}

	v := viper.New()
	v.SetConfigType("toml")
	v.Set("database.default_path", cfg.Database.DefaultPath)
	v.Set("database.state_path", cfg.Database.StatePath)
	v.Set("ui.status_bar", cfg.UI.StatusBar)
	v.Set("ui.column_widths", cfg.UI.ColumnWidths)
	v.Set("ui.max_column_width", cfg.UI.MaxColumnWidth)
	v.Set("ui.virtual_rows", cfg.UI.VirtualRows)
	v.Set("keys", keys)
	v.Set("history.max_size", cfg.History.MaxSize)
	v.Set("log.path", cfg.Log.Path)
	v.Set("log.level", cfg.Log.Level)
	v.Set("log.format", cfg.Log.Format)

	if err := v.WriteConfigAs(path); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}

func expand(path string) string {
	if path == "" {
		return ""
	}
	p, err := homedir.Expand(path)
	if err != nil {
		return path
	}
	return p
}
