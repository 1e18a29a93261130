package logging

import (
	"bytes"
	"encoding/json"
	"errors"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewWithFormat_JSON(t *testing.T) {
	var buf bytes.Buffer
	logger := NewWithFormat(&buf, slog.LevelInfo, "JSON")

	logger.Debug("hidden")
	logger.Info("tick", "reason", "SetLevel", "error", errors.New("boom"))

	var line map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line), "exactly one JSON line expected: %s", buf.String())
	assert.Equal(t, "tick", line["msg"])
	assert.Equal(t, "SetLevel", line["reason"])
	assert.Equal(t, "boom", line["err"], "error key is renamed")
	assert.NotContains(t, line, "error")
}

func TestNewWithFormat_Text(t *testing.T) {
	var buf bytes.Buffer
	logger := NewWithFormat(&buf, slog.LevelDebug, "unknown")

	logger.Debug("booted", "error", "none")
	assert.Contains(t, buf.String(), "msg=booted")
	assert.Contains(t, buf.String(), "err=none")
}

func TestNewNop(t *testing.T) {
	assert.NotPanics(t, func() {
		NewNop().Error("discarded")
	})
}
