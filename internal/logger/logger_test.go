package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wallet-ledger/internal/config"
)

func TestNewLogger(t *testing.T) {
	testCases := []struct {
		name              string
		logLevel          string
		expectedSlogLevel slog.Level
	}{
		{"DebugLevel", "debug", slog.LevelDebug},
		{"InfoLevel", "info", slog.LevelInfo},
		{"WarnLevel", "WARN", slog.LevelWarn},
		{"ErrorLevel", "error", slog.LevelError},
		{"DefaultToInfo", "unknown", slog.LevelInfo},
		{"EmptyToInfo", "", slog.LevelInfo},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := &config.Config{
				Logging: config.LoggingConfig{Level: tc.logLevel},
			}

			logger := NewLogger(cfg)
			require.NotNil(t, logger)

			assert.True(t, logger.Enabled(context.Background(), tc.expectedSlogLevel))
			if tc.expectedSlogLevel > slog.LevelDebug {
				assert.False(t, logger.Enabled(context.Background(), tc.expectedSlogLevel-4))
			}
		})
	}
}

func TestNewLoggerWithWriter_ServiceAttributes(t *testing.T) {
	var buf bytes.Buffer
	cfg := &config.Config{
		Application: config.ApplicationConfig{Name: "wallet-api", Env: "test"},
		Logging:     config.LoggingConfig{Level: "info"},
	}

	logger := NewLoggerWithWriter(cfg, &buf)
	require.NotNil(t, logger)

	var record map[string]any
	require.NoError(t, json.Unmarshal(bytes.TrimSpace(buf.Bytes()), &record))
	assert.Equal(t, "logger initialized", record["msg"])
	assert.Equal(t, "wallet-api", record["service"])
	assert.Equal(t, "test", record["env"])
}
