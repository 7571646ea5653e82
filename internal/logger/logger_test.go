package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		input string
		want  slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"INFO", slog.LevelInfo},
		{"warn", slog.LevelWarn},
		{"Warning", slog.LevelWarn},
		{"ERROR", slog.LevelError},
		{"", slog.LevelInfo},
		{"bogus", slog.LevelInfo},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, ParseLevel(tt.input), "ParseLevel(%q)", tt.input)
	}
}

func TestSetOutput_JSON(t *testing.T) {
	var buf bytes.Buffer
	SetOutput(&buf, "info", "json")

	Debug("hidden")
	Warn("host unreachable", "host", "srv1")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "WARN", entry["level"])
	assert.Equal(t, "host unreachable", entry["msg"])
	assert.Equal(t, "srv1", entry["host"])
}

func TestInit_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "run.log")
	require.NoError(t, Init(Config{Level: "debug", Format: "text", Output: path}))
	t.Cleanup(func() { Close() })

	Info("started", "run_id", "abc")
	assert.NoError(t, Close())
	assert.NoError(t, Close())
}

func TestFromContext(t *testing.T) {
	var buf bytes.Buffer
	SetOutput(&buf, "info", "json")

	assert.Same(t, L(), FromContext(context.Background()))

	ctx := NewContext(context.Background(), With("run_id", "r1"))
	FromContext(ctx).Info("phase done")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "r1", entry["run_id"])
}
