package logger

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNamedAddsComponent(t *testing.T) {
	var buf bytes.Buffer
	InitializeTo(&buf, slog.LevelInfo, "json")

	Named("deploy").Info("gateway deployed", "address", "0x01")

	var line map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, "deploy", line["name"])
	assert.Equal(t, "gateway deployed", line["msg"])
	assert.Equal(t, "0x01", line["address"])
}

func TestLevelFiltersDebug(t *testing.T) {
	var buf bytes.Buffer
	InitializeTo(&buf, slog.LevelInfo, "text")

	Named("view").Debug("hidden")
	assert.Empty(t, buf.String())

	InitializeTo(&buf, slog.LevelDebug, "text")
	Named("view").Debug("shown")
	assert.Contains(t, buf.String(), "shown")
	assert.Contains(t, buf.String(), "name=view")
}
