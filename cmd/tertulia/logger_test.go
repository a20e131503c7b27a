// ABOUTME: Tests for the CLI logger setup and the colorized handler
// ABOUTME: Colors are disabled in TestMain so output is plain text

package main

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/2389/tertulia/internal/config"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"INFO", slog.LevelInfo},
		{"warn", slog.LevelWarn},
		{"warning", slog.LevelWarn},
		{"error", slog.LevelError},
		{"", slog.LevelWarn},
		{"verbose", slog.LevelWarn},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, parseLevel(tt.in))
		})
	}
}

func TestSetupLogger_TextFiltersByLevel(t *testing.T) {
	var buf bytes.Buffer
	logger := setupLogger(config.LoggingConfig{Level: "info", Format: "text"}, &buf)

	logger.Debug("hidden")
	logger.Info("fetching threads", "channel", "c1")

	out := buf.String()
	assert.NotContains(t, out, "hidden")
	assert.Contains(t, out, "INF fetching threads")
	assert.Contains(t, out, " channel=c1")
}

func TestSetupLogger_JSON(t *testing.T) {
	var buf bytes.Buffer
	logger := setupLogger(config.LoggingConfig{Level: "debug", Format: "json"}, &buf)

	logger.Debug("request completed", "status", 200)

	var rec map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &rec))
	assert.Equal(t, "request completed", rec["msg"])
	assert.Equal(t, "DEBUG", rec["level"])
	assert.EqualValues(t, 200, rec["status"])
}

func TestColorHandler_AttrsAndGroups(t *testing.T) {
	var buf bytes.Buffer
	logger := setupLogger(config.LoggingConfig{Level: "debug"}, &buf)

	logger.With("component", "chat").WithGroup("req").Warn("slow", "path", "/api/v1/hilos/")

	out := buf.String()
	assert.Contains(t, out, "WRN slow")
	assert.Contains(t, out, " component=chat")
	assert.Contains(t, out, " req.path=/api/v1/hilos/")
}

func TestReportError(t *testing.T) {
	var buf bytes.Buffer
	reportError(&buf, assert.AnError)
	assert.Contains(t, buf.String(), "Error: "+assert.AnError.Error())
	assert.NotContains(t, buf.String(), "tertulia login")
}
