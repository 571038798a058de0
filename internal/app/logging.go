package app

import (
	"log/slog"
	"os"
	"strings"

	"github.com/chuhuyvt/FS-Project/internal/config"
)

// Version задаётся при сборке через -ldflags
var Version = "dev"

// NewLogger создаёт структурированный логгер по секции log конфигурации
func NewLogger(cfg *config.AppConfig) *slog.Logger {
	var logLevel slog.Level
	switch strings.ToLower(cfg.Log.Level) {
	case "debug":
		logLevel = slog.LevelDebug
	case "warn":
		logLevel = slog.LevelWarn
	case "error":
		logLevel = slog.LevelError
	default:
		logLevel = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{
		Level:     logLevel,
		AddSource: logLevel == slog.LevelDebug,
	}

	var handler slog.Handler
	if strings.ToLower(cfg.Log.Format) == "json" {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		handler = slog.NewTextHandler(os.Stdout, opts)
	}

	logger := slog.New(handler).With(
		"service", "plc-gateway",
		"version", Version,
		"pid", os.Getpid(),
	)
	slog.SetDefault(logger)
	return logger
}
