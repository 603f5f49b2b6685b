package logger

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewSlog_JSONWithRFC3339Time(t *testing.T) {
	var buf bytes.Buffer
	log := NewSlog(SlogConfig{Level: "info", Format: "json", Output: &buf})

	log.Info("book borrowed", "book_id", "b-1")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "book borrowed", entry["msg"])
	assert.Equal(t, "b-1", entry["book_id"])

	_, err := time.Parse(time.RFC3339, entry["time"].(string))
	assert.NoError(t, err)
}

func TestNewSlog_LevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	log := NewSlog(SlogConfig{Level: "warn", Format: "text", Output: &buf})

	log.Info("hidden")
	assert.Empty(t, buf.String())

	log.Warn("visible")
	assert.Contains(t, buf.String(), "visible")
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, slog.LevelDebug, parseLevel("debug"))
	assert.Equal(t, slog.LevelError, parseLevel("error"))
	assert.Equal(t, slog.LevelInfo, parseLevel("anything"))
}
