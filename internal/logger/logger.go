// Package logger provides structured logging with colored console output,
// optional file output, and per-component logger prefixing using log/slog.
package logger

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"

	"github.com/Guliveer/fh-car-models/internal/model"
)

var eventEmoji = map[model.Event]string{
	model.EventGameDetected:      "🏁",
	model.EventGameStopped:       "⏹️",
	model.EventCarChanged:        "🏎️",
	model.EventCarUnknown:        "❔",
	model.EventLookupLoaded:      "📖",
	model.EventLookupUnavailable: "⚠️",
}

// NotifyFunc is a callback invoked for every logged event. fields holds the
// event's key/value attributes rendered as strings.
// Implementations should be non-blocking.
type NotifyFunc func(ctx context.Context, event model.Event, message string, fields map[string]string)

// Config holds logger configuration options.
type Config struct {
	Level     slog.Level
	FileLevel slog.Level
	Colored   bool
	// Output receives console output. Nil means os.Stdout.
	Output io.Writer
	LogDir string
	// Component prefixes every console line, e.g. "[feed]".
	Component string
	NotifyFn  NotifyFunc
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		Level:     slog.LevelInfo,
		FileLevel: slog.LevelDebug,
		Colored:   true,
	}
}

// Logger wraps slog.Logger with component-scoped context and notification dispatch.
type Logger struct {
	*slog.Logger
	cfg      Config
	notifyFn *atomic.Value // stores NotifyFunc, shared with derived loggers
}

// Setup creates a new Logger based on the provided configuration.
// It sets up console and optional file handlers.
func Setup(cfg Config) (*Logger, error) {
	var handlers []slog.Handler

	out := cfg.Output
	if out == nil {
		out = os.Stdout
	}
	consoleHandler := newColorHandler(out, cfg.Level, cfg.Colored, cfg.Component)
	handlers = append(handlers, consoleHandler)

	if cfg.LogDir != "" {
		if err := os.MkdirAll(cfg.LogDir, 0o755); err != nil {
			return nil, fmt.Errorf("creating log directory %s: %w", cfg.LogDir, err)
		}

		filename := "carmodels.log"
		if cfg.Component != "" {
			filename = cfg.Component + ".log"
		}

		logFile, err := os.OpenFile(
			filepath.Join(cfg.LogDir, filename),
			os.O_CREATE|os.O_WRONLY|os.O_APPEND,
			0o644,
		)
		if err != nil {
			return nil, fmt.Errorf("opening log file: %w", err)
		}

		fileHandler := slog.NewTextHandler(logFile, &slog.HandlerOptions{
			Level: cfg.FileLevel,
		})
		handlers = append(handlers, fileHandler)
	}

	var handler slog.Handler
	if len(handlers) == 1 {
		handler = handlers[0]
	} else {
		handler = multiHandler(handlers)
	}

	logger := &Logger{
		Logger:   slog.New(handler),
		cfg:      cfg,
		notifyFn: &atomic.Value{},
	}

	if cfg.NotifyFn != nil {
		logger.notifyFn.Store(cfg.NotifyFn)
	}

	return logger, nil
}

// WithComponent returns a new Logger whose console lines are prefixed with
// the component name. The notification callback is shared with l, including
// callbacks set later.
func (l *Logger) WithComponent(name string) *Logger {
	newCfg := l.cfg
	newCfg.Component = name
	newCfg.LogDir = ""
	newLogger, err := Setup(newCfg)
	if err != nil {
		return l
	}
	newLogger.notifyFn = l.notifyFn
	return newLogger
}

// Discard returns a Logger that drops every record. Events still reach the
// notification callback once one is set.
func Discard() *Logger {
	l, _ := Setup(Config{Level: slog.LevelError + 1, Output: io.Discard})
	return l
}

// Event logs a message at INFO level and dispatches a notification if configured.
// If the event has a mapped emoji, it is prepended to the log message.
func (l *Logger) Event(ctx context.Context, event model.Event, msg string, args ...any) {
	if emoji, ok := eventEmoji[event]; ok {
		msg = emoji + " " + msg
	}
	l.Logger.Info(msg, append(args, "event", string(event))...)

	if fn, ok := l.notifyFn.Load().(NotifyFunc); ok && fn != nil {
		fn(ctx, event, msg, eventFields(args))
	}
}

// eventFields renders key/value pairs the way slog pairs them. A trailing
// key without a value is dropped.
func eventFields(args []any) map[string]string {
	fields := make(map[string]string, len(args)/2)
	for i := 0; i+1 < len(args); i += 2 {
		key, ok := args[i].(string)
		if !ok {
			continue
		}
		fields[key] = fmt.Sprint(args[i+1])
	}
	return fields
}

// SetNotifyFunc sets the notification callback function. Thread-safe.
func (l *Logger) SetNotifyFunc(fn NotifyFunc) {
	l.notifyFn.Store(fn)
}

// ParseLevel converts a string log level to slog.Level.
func ParseLevel(s string) slog.Level {
	switch strings.ToUpper(s) {
	case "DEBUG":
		return slog.LevelDebug
	case "INFO":
		return slog.LevelInfo
	case "WARN", "WARNING":
		return slog.LevelWarn
	case "ERROR":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
