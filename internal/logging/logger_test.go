package logging

import (
	"bytes"
	"log/slog"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewFormats(t *testing.T) {
	tests := []struct {
		name   string
		format Format
		want   string
	}{
		{name: "text", format: FormatText, want: "level=INFO"},
		{name: "json", format: FormatJSON, want: `"level":"INFO"`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			l := New(Config{Level: slog.LevelInfo, Format: tt.format, Output: &buf})
			l.Info("opened table", "table", "users")
			assert.Contains(t, buf.String(), tt.want)
			assert.Contains(t, buf.String(), "users")
			assert.NotContains(t, buf.String(), "time=")
		})
	}
}

func TestLevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	l := New(Config{Level: slog.LevelWarn, Output: &buf})
	l.Info("hidden")
	l.Warn("shown")
	require.NotContains(t, buf.String(), "hidden")
	require.Contains(t, buf.String(), "shown")

	buf.Reset()
	child := l.With("component", "matcher")
	l.SetLevel(slog.LevelDebug)
	child.Debug("now visible")
	require.Contains(t, buf.String(), "now visible")
	require.Contains(t, buf.String(), "component=matcher")
}

func TestParseLevel(t *testing.T) {
	for in, want := range map[string]slog.Level{
		"":        slog.LevelInfo,
		"debug":   slog.LevelDebug,
		"WARNING": slog.LevelWarn,
		" error ": slog.LevelError,
	} {
		got, err := ParseLevel(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}
	_, err := ParseLevel("loud")
	require.Error(t, err)
}

func TestParseFormat(t *testing.T) {
	f, err := ParseFormat("JSON")
	require.NoError(t, err)
	require.Equal(t, FormatJSON, f)
	_, err = ParseFormat("xml")
	require.Error(t, err)
}

func TestOpenFileCreatesDir(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "dbrowse.log")
	f, err := OpenFile(path)
	require.NoError(t, err)
	t.Cleanup(func() { _ = f.Close() })

	l := New(Config{Output: f})
	l.Error("boom")
	require.FileExists(t, path)
}

func TestDiscard(t *testing.T) {
	l := Discard()
	l.Error("nothing")
	l.With("k", "v").Warn("nothing")
}
