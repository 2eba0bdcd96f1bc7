package logger

import (
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/McBride-Ryan/websocket-hss/internal/config"
)

func TestNewLogger(t *testing.T) {
	testCases := []struct {
		name     string
		logLevel string
		expected slog.Level
	}{
		{"DebugLevel", "debug", slog.LevelDebug},
		{"InfoLevel", "info", slog.LevelInfo},
		{"WarnLevel", "warn", slog.LevelWarn},
		{"ErrorLevel", "error", slog.LevelError},
		{"DefaultToInfo", "unknown", slog.LevelInfo},
		{"EmptyToInfo", "", slog.LevelInfo},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := &config.Config{Logging: config.LoggingConfig{Level: tc.logLevel}}

			log := NewLogger(cfg)
			require.NotNil(t, log)
			assert.True(t, log.Enabled(context.Background(), tc.expected))
			if tc.expected > slog.LevelDebug {
				assert.False(t, log.Enabled(context.Background(), slog.LevelDebug))
			}
		})
	}
}
