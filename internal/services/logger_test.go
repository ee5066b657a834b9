package services

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	assert.Equal(t, slog.LevelDebug, ParseLevel("debug"))
	assert.Equal(t, slog.LevelWarn, ParseLevel("WARN"))
	assert.Equal(t, slog.LevelError, ParseLevel("error"))
	assert.Equal(t, slog.LevelInfo, ParseLevel(""))
	assert.Equal(t, slog.LevelInfo, ParseLevel("verbose"))
}

func TestNewLoggerTagsService(t *testing.T) {
	t.Setenv("GO_ENV", "")
	prev := slog.Default()
	t.Cleanup(func() { slog.SetDefault(prev) })

	var buf bytes.Buffer
	InitLogger(&buf, "info", "json")

	NewLogger("chat").Info("message sent", "chat_id", "c1")

	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "chat", entry["service"])
	assert.Equal(t, "c1", entry["chat_id"])
	assert.Equal(t, "message sent", entry["msg"])
}

func TestLevelFiltering(t *testing.T) {
	t.Setenv("GO_ENV", "")
	prev := slog.Default()
	t.Cleanup(func() { slog.SetDefault(prev) })

	var buf bytes.Buffer
	InitLogger(&buf, "warn", "text")

	logger := NewLogger("auth")
	logger.Info("hidden")
	logger.Warn("shown")

	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), "shown")
}

func TestNoOpLoggerInTestEnv(t *testing.T) {
	t.Setenv("GO_ENV", "test")
	_, ok := NewLogger("x").(*NoOpLogger)
	assert.True(t, ok)
}
