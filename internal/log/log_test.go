package log

import (
	"bytes"
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want slog.Level
	}{
		{"trace", LevelTrace},
		{"debug", slog.LevelDebug},
		{"", slog.LevelInfo},
		{"info", slog.LevelInfo},
		{"warn", slog.LevelWarn},
		{"error", slog.LevelError},
		{"bogus", slog.LevelInfo},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseLevel(tt.in))
		})
	}
}

func TestResolveFormat(t *testing.T) {
	assert.Equal(t, FormatJSON, ResolveFormat(FormatJSON, 0))
	assert.Equal(t, FormatText, ResolveFormat(FormatText, 0))

	f, err := os.CreateTemp(t.TempDir(), "not-a-tty")
	require.NoError(t, err)
	defer f.Close()
	assert.Equal(t, FormatJSON, ResolveFormat(FormatAuto, f.Fd()))
}

func TestLevelFilterAndMultiHandler(t *testing.T) {
	var low, high bytes.Buffer
	h := MultiHandler{hs: []slog.Handler{
		LevelFilter{pass: func(l slog.Level) bool { return l < slog.LevelError }, h: slog.NewTextHandler(&low, &slog.HandlerOptions{Level: LevelTrace})},
		LevelFilter{pass: func(l slog.Level) bool { return l >= slog.LevelError }, h: slog.NewTextHandler(&high, nil)},
	}}
	logger := slog.New(h).With("run", 1)

	logger.Log(context.Background(), LevelTrace, "deep")
	logger.Info("hello")
	logger.Error("boom")

	assert.Contains(t, low.String(), "msg=deep")
	assert.Contains(t, low.String(), "msg=hello")
	assert.NotContains(t, low.String(), "boom")
	assert.Contains(t, high.String(), "msg=boom run=1")
	assert.NotContains(t, high.String(), "hello")
}

func TestSetupLoggerWritesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rsbridge.log")
	logger, closers, err := SetupLogger("debug", path, FormatText)
	require.NoError(t, err)
	logger.Debug("stage done", "stage", "parse")
	for _, c := range closers {
		require.NoError(t, c.Close())
	}

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "stage=parse")
}

func TestSetupLoggerRejectsFormat(t *testing.T) {
	_, _, err := SetupLogger("info", "", "xml")
	assert.ErrorContains(t, err, `unknown log format "xml"`)
}

func TestArtifactLogger(t *testing.T) {
	var buf bytes.Buffer
	a := NewArtifact(&buf)
	a.Log("header", []byte("typedef int x;"))
	a.Log("empty", nil)

	lines := strings.Split(strings.TrimSuffix(buf.String(), "\n"), "\n")
	require.Len(t, lines, 2)
	assert.Contains(t, lines[0], "==> header (14 bytes)")
	assert.Equal(t, "typedef int x;", lines[1])

	// nil writer is a no-op
	NewArtifact(nil).Log("x", []byte("y"))
}
