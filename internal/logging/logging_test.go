package logging

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	tests := map[string]zerolog.Level{
		"debug":   zerolog.DebugLevel,
		"INFO":    zerolog.InfoLevel,
		"warning": zerolog.WarnLevel,
		"error":   zerolog.ErrorLevel,
		"off":     zerolog.Disabled,
		"bogus":   zerolog.InfoLevel,
	}
	for in, want := range tests {
		assert.Equal(t, want, ParseLevel(in), in)
	}
}

func TestNewWritesToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "game.log")

	logger, closeFn, err := New(Config{Level: "debug", Format: "json", File: path})
	require.NoError(t, err)

	logger.Info().Str("game", "city-guess").Msg("round started")
	require.NoError(t, closeFn())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"game":"city-guess"`)
	assert.Contains(t, string(data), `"message":"round started"`)
}

func TestNewBadFile(t *testing.T) {
	_, _, err := New(Config{File: filepath.Join(t.TempDir(), "missing", "dir", "x.log")})
	assert.Error(t, err)
}

func TestNewConsoleOutput(t *testing.T) {
	var buf bytes.Buffer
	logger, _, err := New(Config{Level: "warn", Format: "console", Output: &buf})
	require.NoError(t, err)

	logger.Info().Msg("hidden")
	logger.Warn().Msg("storage unavailable")
	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), "storage unavailable")
}
