package log

import (
	"bytes"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	t.Parallel()

	assert.Equal(t, LevelDebug, ParseLevel("debug"))
	assert.Equal(t, LevelError, ParseLevel(" Error "))
	assert.Equal(t, LevelInfo, ParseLevel("info"))
	assert.Equal(t, LevelInfo, ParseLevel("verbose"))
}

// Not parallel: mutates the global logger.
func TestLoggerLevelsAndFields(t *testing.T) {
	var buf bytes.Buffer
	SetOutput(&buf, FormatJSON)
	SetLevel(LevelInfo)
	t.Cleanup(func() {
		SetLevel(LevelInfo)
	})

	Debug("hidden", "k", 1)
	assert.Zero(t, buf.Len())

	Info("event added", "id", "abc", "count", 2, "dangling")
	var line map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, "info", line["level"])
	assert.Equal(t, "event added", line["message"])
	assert.Equal(t, "abc", line["id"])
	assert.EqualValues(t, 2, line["count"])
	assert.NotContains(t, line, "dangling")

	buf.Reset()
	SetLevel(LevelError)
	Info("suppressed")
	assert.Zero(t, buf.Len())

	Error("save failed", errors.New("boom"), "id", "abc")
	line = map[string]any{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, "error", line["level"])
	assert.Equal(t, "boom", line["error"])
}
