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
	tests := []struct {
		input string
		want  zerolog.Level
	}{
		{"", zerolog.InfoLevel},
		{"debug", zerolog.DebugLevel},
		{"warn", zerolog.WarnLevel},
		{"trace", zerolog.TraceLevel},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseLevel(tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	_, err := ParseLevel("loud")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "loud")
}

func TestNewWriter_FiltersByLevel(t *testing.T) {
	var buf bytes.Buffer
	logger, err := NewWriter(&buf, "warn")
	require.NoError(t, err)

	logger.Info().Msg("hidden")
	logger.Warn().Str("player_id", "11252").Msg("record dropped")

	out := buf.String()
	assert.NotContains(t, out, "hidden")
	assert.Contains(t, out, `"player_id":"11252"`)
	assert.Contains(t, out, `"level":"warn"`)
}

func TestNew_WritesRotatedFile(t *testing.T) {
	tmpDir, err := os.MkdirTemp("", "odbconv_logging_test")
	require.NoError(t, err)
	defer os.RemoveAll(tmpDir)

	devNull, err := os.OpenFile(os.DevNull, os.O_WRONLY, 0)
	require.NoError(t, err)
	defer devNull.Close()

	logPath := filepath.Join(tmpDir, "odbconv.log")
	logger, err := New(devNull, Options{Level: "info", File: logPath, App: "odbconv"})
	require.NoError(t, err)

	logger.Info().Msg("conversion finished")

	data, err := os.ReadFile(logPath)
	require.NoError(t, err)
	assert.Contains(t, string(data), "conversion finished")
	assert.Contains(t, string(data), `"app":"odbconv"`)
}

func TestNew_InvalidLevel(t *testing.T) {
	_, err := New(os.Stdout, Options{Level: "nope"})
	assert.Error(t, err)
}
