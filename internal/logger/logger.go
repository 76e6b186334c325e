// Package logger wraps log/slog with a process-wide logger that the TUI
// can redirect away from the terminal it is drawing on.
package logger

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"sync"
	"time"
)

var (
	mu            sync.Mutex
	defaultLogger *slog.Logger
	logLevel      *slog.LevelVar
)

// ParseLevel maps a config string to a slog level. Unknown strings fall
// back to info.
func ParseLevel(s string) slog.Level {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error", "err":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// Init sets up the package logger. Call once from main before any other
// package logs; later calls replace the output and level.
func Init(level slog.Level, output io.Writer) {
	mu.Lock()
	defer mu.Unlock()
	if logLevel == nil {
		logLevel = new(slog.LevelVar)
	}
	logLevel.Set(level)
	opts := slog.HandlerOptions{
		Level: logLevel,
		ReplaceAttr: func(groups []string, a slog.Attr) slog.Attr {
			if a.Key == slog.TimeKey {
				a.Value = slog.StringValue(a.Value.Time().Format(time.TimeOnly))
			}
			return a
		},
	}
	defaultLogger = slog.New(slog.NewTextHandler(output, &opts))
}

// InitFile opens (or creates) the given log file and initializes the
// logger to write there. An empty path or "-" means stderr.
func InitFile(level slog.Level, path string) error {
	if path == "" || path == "-" {
		Init(level, os.Stderr)
		return nil
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return fmt.Errorf("open log file %q: %w", path, err)
	}
	Init(level, f)
	return nil
}

func ensureInitialized() *slog.Logger {
	mu.Lock()
	defer mu.Unlock()
	if defaultLogger == nil {
		logLevel = new(slog.LevelVar)
		logLevel.Set(slog.LevelInfo)
		defaultLogger = slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: logLevel}))
	}
	return defaultLogger
}

// SetLevel changes the minimum level at runtime.
func SetLevel(level slog.Level) {
	ensureInitialized()
	mu.Lock()
	defer mu.Unlock()
	logLevel.Set(level)
}

// Get returns the underlying slog.Logger for structured call sites.
func Get() *slog.Logger {
	return ensureInitialized()
}

// Debugf logs a formatted message at debug level.
func Debugf(format string, args ...any) {
	ensureInitialized().Debug(fmt.Sprintf(format, args...))
}

// Infof logs a formatted message at info level.
func Infof(format string, args ...any) {
	ensureInitialized().Info(fmt.Sprintf(format, args...))
}

// Warnf logs a formatted message at warn level.
func Warnf(format string, args ...any) {
	ensureInitialized().Warn(fmt.Sprintf(format, args...))
}

// Errorf logs a formatted message at error level.
func Errorf(format string, args ...any) {
	ensureInitialized().Error(fmt.Sprintf(format, args...))
}
