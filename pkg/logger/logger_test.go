package logger

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_WritesJSON(t *testing.T) {
	var buf bytes.Buffer
	logger := New(Config{Level: "info", Output: &buf})

	logger.Info().Str("component", "test").Msg("test message")

	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "test message", entry["message"])
	assert.Equal(t, "test", entry["component"])
	assert.Contains(t, entry, "time")
	assert.Contains(t, entry, "caller")
}

func TestNew_AllLogLevels(t *testing.T) {
	testCases := []struct {
		level         string
		expectedLevel zerolog.Level
		name          string
	}{
		{"debug", zerolog.DebugLevel, "debug"},
		{"info", zerolog.InfoLevel, "info"},
		{"warn", zerolog.WarnLevel, "warn"},
		{"WARNING", zerolog.WarnLevel, "warning alias"},
		{"error", zerolog.ErrorLevel, "error"},
		{"unknown", zerolog.InfoLevel, "unknown defaults to info"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			logger := New(Config{Level: tc.level, Output: &bytes.Buffer{}})
			assert.NotNil(t, logger)
			assert.Equal(t, tc.expectedLevel, zerolog.GlobalLevel())
		})
	}

	zerolog.SetGlobalLevel(zerolog.InfoLevel)
}

func TestNew_PrettyOutput(t *testing.T) {
	var buf bytes.Buffer
	logger := New(Config{Level: "info", Pretty: true, Output: &buf})

	logger.Info().Msg("pretty message")

	assert.Contains(t, buf.String(), "pretty message")
	assert.False(t, json.Valid(buf.Bytes()), "console writer should not emit raw JSON")
}
