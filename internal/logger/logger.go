package logger

import (
	"fmt"
	"io"
	"log"
	"log/slog"
	"os"
)

// Constants for logging levels
const (
	LevelDebug = "debug"
	LevelInfo  = "info"
	LevelWarn  = "warn"
	LevelError = "error"
)

// Environments: development logs are human-readable text, production ones are JSON
const (
	EnvDevelopment = "dev"
	EnvProduction  = "prod"
)

// Logger interface defines the logging contract
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)

	With(args ...any) Logger
	WithGroup(name string) Logger

	// Standard library logger writing to the same handler with error level
	// Useful for http.Server.ErrorLog
	StdLogger() *log.Logger
}

// New creates logger suitable for the environment writing to stderr
func New(env string, level string) (Logger, error) {
	return NewWithWriter(os.Stderr, env, level)
}

// NewWithWriter creates logger suitable for the environment writing to w
// Development logs are text, production ones are JSON
func NewWithWriter(w io.Writer, env string, level string) (Logger, error) {
	l, err := parseLevel(level)
	if err != nil {
		return nil, err
	}

	opts := &slog.HandlerOptions{
		Level:       l,
		AddSource:   true,
		ReplaceAttr: replace,
	}

	switch env {
	case EnvDevelopment:
		return &slogLogger{logger: slog.New(slog.NewTextHandler(w, opts))}, nil
	case EnvProduction:
		return &slogLogger{logger: slog.New(slog.NewJSONHandler(w, opts))}, nil
	default:
		return nil, fmt.Errorf("unknown environment %q, expected %q or %q", env, EnvDevelopment, EnvProduction)
	}
}

// NewNoOpLogger creates a logger that discards all log messages
func NewNoOpLogger() Logger {
	return &slogLogger{logger: slog.New(slog.DiscardHandler)}
}
