package log

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLogger(t *testing.T) {
	t.Run("WritesJSONWithNamespace", func(t *testing.T) {
		buf := &bytes.Buffer{}
		logger := NewLogger(buf)
		logger.InfoNs(NsDatabase, "database opened", KV{"driver": "sqlite3"})

		entry := map[string]any{}
		require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
		assert.Equal(t, "database opened", entry["msg"])
		assert.Equal(t, "INFO", entry["level"])
		assert.Equal(t, NsDatabase, entry["ns"])
		assert.Equal(t, "sqlite3", entry["driver"])
	})

	t.Run("FiltersBelowLevel", func(t *testing.T) {
		buf := &bytes.Buffer{}
		logger := NewLogger(buf, slog.LevelWarn)
		logger.Info("hidden")
		logger.Debug("hidden")
		assert.Empty(t, buf.String())

		logger.Warn("shown")
		assert.Contains(t, buf.String(), "shown")
	})

	t.Run("IsInitialized", func(t *testing.T) {
		var zero Logger
		assert.False(t, zero.IsInitialized())

		logger := NewNopLogger()
		assert.True(t, logger.IsInitialized())
	})

	t.Run("FileLogger", func(t *testing.T) {
		logPath := filepath.Join(t.TempDir(), "songdb.log")
		logger, closer := NewFileLogger(logPath, slog.LevelInfo)
		logger.Error("boom", KV{"error": "x"})
		require.NoError(t, closer.Close())
		assert.FileExists(t, logPath)
	})
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		input   string
		want    slog.Level
		wantErr bool
	}{
		{input: "debug", want: slog.LevelDebug},
		{input: "INFO", want: slog.LevelInfo},
		{input: "warn", want: slog.LevelWarn},
		{input: "error", want: slog.LevelError},
		{input: "trace", want: slog.LevelInfo, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseLevel(tt.input)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
			assert.Equal(t, tt.want, got)
		})
	}
}
