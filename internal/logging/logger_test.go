package logging

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	tests := map[string]slog.Level{
		"debug":   slog.LevelDebug,
		"INFO":    slog.LevelInfo,
		"warn":    slog.LevelWarn,
		"warning": slog.LevelWarn,
		"error":   slog.LevelError,
		"bogus":   slog.LevelInfo,
		"":        slog.LevelInfo,
	}
	for in, want := range tests {
		assert.Equal(t, want, ParseLevel(in), "level %q", in)
	}
}

func TestNewLogger_JSON(t *testing.T) {
	var buf bytes.Buffer
	log := NewLogger(Config{Format: "json", Level: slog.LevelInfo, Output: &buf})

	log.Debug("hidden")
	log.Info("session started", "deck", "golang")

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 1)

	var entry map[string]any
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &entry))
	assert.Equal(t, "session started", entry["msg"])
	assert.Equal(t, "golang", entry["deck"])
	assert.Contains(t, entry, "timestamp")
	assert.NotContains(t, entry, "time")
}

func TestNewLogger_Text(t *testing.T) {
	var buf bytes.Buffer
	log := NewLogger(Config{Format: "text", Level: slog.LevelDebug, Output: &buf})

	log.Debug("checkpoint", "cards", 5)
	assert.Contains(t, buf.String(), "level=DEBUG")
	assert.Contains(t, buf.String(), "cards=5")
	assert.Contains(t, buf.String(), "timestamp=")
}
