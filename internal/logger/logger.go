package logger

import (
	"context"
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

type contextKey string

const loggerKey contextKey = "logger"

// New creates a console logger on stdout.
func New() zerolog.Logger {
	return NewConsole(os.Stdout)
}

// NewConsole creates a human-readable logger writing to w.
func NewConsole(w io.Writer) zerolog.Logger {
	output := zerolog.ConsoleWriter{
		Out:        w,
		TimeFormat: time.RFC3339,
	}

	return zerolog.New(output).With().Timestamp().Logger()
}

// NewJSON creates a logger emitting one JSON object per line to w.
func NewJSON(w io.Writer) zerolog.Logger {
	return zerolog.New(w).With().Timestamp().Logger()
}

// NewFormat picks NewConsole or NewJSON from a LOG_FORMAT value.
func NewFormat(format string, w io.Writer) zerolog.Logger {
	if strings.EqualFold(format, "console") {
		return NewConsole(w)
	}

	return NewJSON(w)
}

// UseCloudLoggingFields makes JSON logs readable by Cloud Logging, which takes the level
// from an upper-case "severity" field. It changes zerolog globals and must run before any
// logging happens.
func UseCloudLoggingFields() {
	zerolog.LevelFieldName = "severity"
	zerolog.LevelFieldMarshalFunc = func(l zerolog.Level) string {
		return strings.ToUpper(l.String())
	}
	zerolog.TimeFieldFormat = time.RFC3339Nano
}

// WithContext adds the logger to the context.
func WithContext(ctx context.Context, log zerolog.Logger) context.Context {
	return context.WithValue(ctx, loggerKey, log)
}

// FromContext returns the logger stored in ctx, or fallback.
func FromContext(ctx context.Context, fallback zerolog.Logger) zerolog.Logger {
	if log, ok := ctx.Value(loggerKey).(zerolog.Logger); ok {
		return log
	}

	return fallback
}
