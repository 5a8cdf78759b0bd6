package logging

import (
	"io"
	"log/slog"
	"os"
	"strings"
)

// New returns the text logger used by the service and CLI binaries.
func New(level slog.Level) *slog.Logger {
	return NewWithWriter(os.Stdout, level)
}

func NewWithWriter(w io.Writer, level slog.Level) *slog.Logger {
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}

// Nop returns a logger that discards everything.
func Nop() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// ParseLevel maps debug/info/warn/error to a slog level, defaulting to info.
func ParseLevel(s string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
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

// Recover logs a panic raised in a callback instead of letting it reach the
// host loop. Use it as `defer logging.Recover(logger, "draw")`.
func Recover(logger *slog.Logger, where string) {
	if r := recover(); r != nil {
		logger.Error("recovered panic", "where", where, "panic", r)
	}
}
