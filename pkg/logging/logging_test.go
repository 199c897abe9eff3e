package logging

import (
	"bytes"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLogLevel_String(t *testing.T) {
	tests := []struct {
		level    LogLevel
		expected string
	}{
		{LevelDebug, "DEBUG"},
		{LevelInfo, "INFO"},
		{LevelWarn, "WARN"},
		{LevelError, "ERROR"},
		{LogLevel(999), "UNKNOWN"},
	}

	for _, test := range tests {
		assert.Equal(t, test.expected, test.level.String())
	}
}

func TestLogLevel_SlogLevel(t *testing.T) {
	tests := []struct {
		level    LogLevel
		expected slog.Level
	}{
		{LevelDebug, slog.LevelDebug},
		{LevelInfo, slog.LevelInfo},
		{LevelWarn, slog.LevelWarn},
		{LevelError, slog.LevelError},
		{LogLevel(999), slog.LevelInfo},
	}

	for _, test := range tests {
		assert.Equal(t, test.expected, test.level.SlogLevel())
	}
}

func TestInit(t *testing.T) {
	var buf bytes.Buffer

	Init(LevelInfo, &buf)
	require.NotNil(t, defaultLogger)

	Info("test-subsystem", "test message")

	output := buf.String()
	assert.Contains(t, output, "test message")
	assert.Contains(t, output, "test-subsystem")
}

func TestLevelFiltering(t *testing.T) {
	var buf bytes.Buffer

	Init(LevelInfo, &buf)

	Debug("test", "debug message")
	Info("test", "info message")

	output := buf.String()
	assert.False(t, strings.Contains(output, "debug message"), "debug message should be filtered out at INFO level")
	assert.Contains(t, output, "info message")
}

func TestErrorIncludesErrAttribute(t *testing.T) {
	var buf bytes.Buffer

	Init(LevelInfo, &buf)
	Error("test", assertErr{"boom"}, "failed to do thing")

	output := buf.String()
	assert.Contains(t, output, "failed to do thing")
	assert.Contains(t, output, "boom")
}

type assertErr struct{ msg string }

func (e assertErr) Error() string { return e.msg }
