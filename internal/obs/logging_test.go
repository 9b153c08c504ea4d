package obs

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSetupWithWriter_JSONFormat(t *testing.T) {
	var buf bytes.Buffer
	SetupWithWriter(slog.LevelInfo, "json", &buf)

	slog.Default().Info("hello", "key", "value")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "hello", entry["msg"])
	assert.Equal(t, "value", entry["key"])
}

func TestSetupWithWriter_TextFormat(t *testing.T) {
	var buf bytes.Buffer
	SetupWithWriter(slog.LevelInfo, "text", &buf)

	slog.Default().Info("hello")
	assert.Contains(t, buf.String(), "msg=hello")
}

func TestSetupWithWriter_LevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	SetupWithWriter(slog.LevelError, "text", &buf)

	slog.Default().Info("should not appear")
	assert.Empty(t, buf.String())

	slog.Default().Error("should appear")
	assert.Contains(t, buf.String(), "should appear")
}

func TestResolveLevel_Defaults(t *testing.T) {
	assert.Equal(t, slog.LevelInfo, ResolveLevel(false, false))
}

func TestResolveLevel_Verbose(t *testing.T) {
	assert.Equal(t, slog.LevelDebug, ResolveLevel(true, false))
}

func TestResolveLevel_Quiet(t *testing.T) {
	assert.Equal(t, slog.LevelError, ResolveLevel(false, true))
}

func TestResolveLevel_VerboseWinsOverQuiet(t *testing.T) {
	assert.Equal(t, slog.LevelDebug, ResolveLevel(true, true))
}

func TestResolveLevel_DebugEnvOverridesAll(t *testing.T) {
	t.Setenv("ENGINE_DEBUG", "1")
	assert.Equal(t, slog.LevelDebug, ResolveLevel(false, true))
}

func TestResolveFormat_DefaultsToText(t *testing.T) {
	assert.Equal(t, "text", ResolveFormat())
}

func TestResolveFormat_JSONEnv(t *testing.T) {
	t.Setenv("ENGINE_LOG_FORMAT", "JSON")
	assert.Equal(t, "json", ResolveFormat())
}

func TestNewLogger_AddsComponentAttr(t *testing.T) {
	var buf bytes.Buffer
	SetupWithWriter(slog.LevelInfo, "json", &buf)

	logger := NewLogger("render")
	logger.Info("rendered")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "render", entry["component"])
}
