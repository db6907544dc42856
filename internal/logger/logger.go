package logger

import (
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/wallet-ledger/internal/config"
)

// NewLogger creates a JSON slog.Logger writing to stdout
func NewLogger(cfg *config.Config) *slog.Logger {
	return NewLoggerWithWriter(cfg, os.Stdout)
}

// NewLoggerWithWriter creates a JSON slog.Logger tagged with the service name and environment
func NewLoggerWithWriter(cfg *config.Config, w io.Writer) *slog.Logger {
	level := ParseLevel(cfg.Logging.Level)

	opts := &slog.HandlerOptions{
		Level:     level,
		AddSource: level == slog.LevelDebug,
	}

	logger := slog.New(slog.NewJSONHandler(w, opts))
	if cfg.Application.Name != "" {
		logger = logger.With("service", cfg.Application.Name, "env", cfg.Application.Env)
	}

	logger.Info("logger initialized", "level", level)

	return logger
}

// ParseLevel maps a level name to a slog.Level, defaulting to info
func ParseLevel(name string) slog.Level {
	switch strings.ToLower(name) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
