// Package log wraps log/slog with component-tagged loggers shared by the API
// server and the export worker.
package log

import (
	"log/slog"
	"os"
)

// Logger is a slog.Logger that carries its component name. The component is
// attached as a permanent attribute, so every line it emits is attributable
// to one subsystem.
type Logger struct {
	*slog.Logger
	handler   slog.Handler
	component string
}

// Config selects the log level, the owning component and optionally a custom
// handler. A nil handler means text output on stdout.
type Config struct {
	Level     slog.Level
	Component string
	Handler   slog.Handler
}

func DefaultConfig() Config {
	return Config{
		Level:     slog.LevelInfo,
		Component: ComponentApp,
	}
}

// New builds a logger from the configuration.
func New(cfg Config) *Logger {
	handler := cfg.Handler
	if handler == nil {
		handler = slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: cfg.Level})
	}

	base := slog.New(handler)
	if cfg.Component != "" {
		base = base.With(FieldComponent, cfg.Component)
	}

	return &Logger{
		Logger:    base,
		handler:   handler,
		component: cfg.Component,
	}
}

// With returns a logger carrying extra permanent attributes.
func (l *Logger) With(args ...any) *Logger {
	return &Logger{
		Logger:    l.Logger.With(args...),
		handler:   l.handler,
		component: l.component,
	}
}

// WithComponent returns a logger for another component sharing the same
// handler. It starts from the handler, not from l, so the old component
// attribute is not carried along.
func (l *Logger) WithComponent(component string) *Logger {
	handler := l.handler
	if handler == nil {
		handler = l.Logger.Handler()
	}
	return &Logger{
		Logger:    slog.New(handler).With(FieldComponent, component),
		handler:   handler,
		component: component,
	}
}

// Component returns the component name this logger is tagged with.
func (l *Logger) Component() string {
	return l.component
}

// SetDefault routes the package-level slog calls through this logger.
func SetDefault(logger *Logger) {
	slog.SetDefault(logger.Logger)
}
