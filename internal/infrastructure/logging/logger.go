package logging

import (
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/roomsense/roomsense-core/internal/infrastructure/config"
)

// Logger is the structured logger used across RoomSense. It embeds
// *slog.Logger, so callers log with key-value pairs directly:
//
//	log.Info("detection", "serial", serial, "zone", zoneName, "count", count)
//
// Every record carries the service name and build version as default fields.
//
// Thread Safety:
//   - All methods are safe for concurrent use from multiple goroutines.
type Logger struct {
	*slog.Logger
}

// New builds a Logger from the logging section of config.yaml.
//
// Format selects JSON (production) or text (development) output, level
// filters below the configured threshold, and output picks stdout or stderr.
//
// Parameters:
//   - cfg: Logging configuration
//   - version: Build version, attached to every record
//
// Returns:
//   - *Logger: Configured logger ready for use
func New(cfg config.LoggingConfig, version string) *Logger {
	handler := newHandler(cfg).WithAttrs([]slog.Attr{
		slog.String("service", "roomsense"),
		slog.String("version", version),
	})

	return &Logger{
		Logger: slog.New(handler),
	}
}

// newHandler builds the slog handler for the configured format, level,
// and destination.
func newHandler(cfg config.LoggingConfig) slog.Handler {
	var output io.Writer
	switch strings.ToLower(cfg.Output) {
	case "stderr":
		output = os.Stderr
	default:
		output = os.Stdout
	}

	opts := &slog.HandlerOptions{
		Level: parseLevel(cfg.Level),
	}

	if strings.ToLower(cfg.Format) == "text" {
		return slog.NewTextHandler(output, opts)
	}
	return slog.NewJSONHandler(output, opts)
}

// parseLevel maps a config string to a slog.Level, defaulting to info.
func parseLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// With returns a child logger carrying extra default attributes. Components
// tag themselves this way so their records are filterable:
//
//	engineLog := log.With("component", "scenario")
//	engineLog.Info("enter dispatched", "user", username)
func (l *Logger) With(args ...any) *Logger {
	return &Logger{
		Logger: l.Logger.With(args...),
	}
}

// Default returns a JSON/info/stdout logger for use before config.yaml has
// been loaded, such as the first lines of startup.
func Default() *Logger {
	return New(config.LoggingConfig{
		Level:  "info",
		Format: "json",
		Output: "stdout",
	}, "dev")
}
