// Package logging builds the structured loggers used across lockmodel.
//
// It wraps [log/slog]. Loggers are constructed from a Config and passed
// explicitly to the machine, the explorer and the CLI; there is no global
// logger, because explorers run many machines side by side.
//
// Example:
//
//	log, closeFn, err := logging.New(logging.Config{Level: logging.LevelDebug, Format: "json"})
//	if err != nil {
//		return err
//	}
//	defer closeFn()
//	m := machine.NewWithOptions(machine.Options{Logger: log})
package logging

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
)

// LogLevel represents logging verbosity.
type LogLevel string

const (
	LevelDebug LogLevel = "DEBUG"
	LevelInfo  LogLevel = "INFO"
	LevelWarn  LogLevel = "WARN"
	LevelError LogLevel = "ERROR"
)

// Config holds logger configuration.
type Config struct {
	Level      LogLevel
	OutputPath string    // Empty for Writer (or stderr), or a file path
	Format     string    // "json" or "text"
	Writer     io.Writer // Used when OutputPath is empty; nil means stderr
}

// ParseLevel converts a case-insensitive level name ("debug", "INFO", ...)
// into a LogLevel.
func ParseLevel(s string) (LogLevel, error) {
	switch lvl := LogLevel(strings.ToUpper(strings.TrimSpace(s))); lvl {
	case LevelDebug, LevelInfo, LevelWarn, LevelError:
		return lvl, nil
	default:
		return "", fmt.Errorf("unknown log level %q (want debug, info, warn or error)", s)
	}
}

func (l LogLevel) slogLevel() slog.Level {
	switch l {
	case LevelDebug:
		return slog.LevelDebug
	case LevelWarn:
		return slog.LevelWarn
	case LevelError:
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// New creates a logger for config and returns a function that releases its
// output file, if any. The close function is never nil.
func New(config Config) (*slog.Logger, func() error, error) {
	closeFn := func() error { return nil }

	writer := config.Writer
	if writer == nil {
		writer = os.Stderr
	}

	if config.OutputPath != "" {
		logDir := filepath.Dir(config.OutputPath)
		if err := os.MkdirAll(logDir, 0o750); err != nil {
			return nil, closeFn, err
		}

		file, err := os.OpenFile(config.OutputPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600)
		if err != nil {
			return nil, closeFn, err
		}
		writer = file
		closeFn = file.Close
	}

	opts := &slog.HandlerOptions{Level: config.Level.slogLevel()}

	var handler slog.Handler
	switch strings.ToLower(config.Format) {
	case "json":
		handler = slog.NewJSONHandler(writer, opts)
	case "", "text":
		handler = slog.NewTextHandler(writer, opts)
	default:
		_ = closeFn()
		return nil, func() error { return nil }, fmt.Errorf("unknown log format %q (want text or json)", config.Format)
	}

	return slog.New(handler), closeFn, nil
}

// Discard returns a logger that drops every record.
func Discard() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}

// WithRun returns a child logger tagged with an exploration run number and
// its choice path.
//
// Example:
//
//	log := logging.WithRun(base, 17, "1.0.2")
//	log.Debug("step", "thread", "T1")
func WithRun(base *slog.Logger, run int, path string) *slog.Logger {
	return base.With(slog.Int("run", run), slog.String("path", path))
}

// WithThread returns a child logger tagged with a thread name.
func WithThread(base *slog.Logger, thread string) *slog.Logger {
	return base.With(slog.String("thread", thread))
}
