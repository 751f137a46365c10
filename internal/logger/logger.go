// Package logger provides structured logging functionality
package logger

import (
	"log/slog"
	"os"
)

// Logger wraps slog.Logger for application-wide logging
type Logger struct {
	*slog.Logger
}

// Config holds logger configuration
type Config struct {
	Level  string // debug, info, warn, error
	Format string // text, json
}

// New creates a new structured logger
func New(cfg Config) *Logger {
	var level slog.Level
	switch cfg.Level {
	case "debug":
		level = slog.LevelDebug
	case "info":
		level = slog.LevelInfo
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{
		Level: level,
	}

	var handler slog.Handler
	if cfg.Format == "json" {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		handler = slog.NewTextHandler(os.Stdout, opts)
	}

	return &Logger{
		Logger: slog.New(handler),
	}
}

// WithComponent returns a logger with a component attribute
func (l *Logger) WithComponent(component string) *Logger {
	return &Logger{
		Logger: l.With("component", component),
	}
}

// WithLabel returns a logger with label context attributes
func (l *Logger) WithLabel(labelID string) *Logger {
	return &Logger{
		Logger: l.With("label_id", labelID),
	}
}

// WithArtist returns a logger with artist context attributes
func (l *Logger) WithArtist(artistID, artistName string) *Logger {
	return &Logger{
		Logger: l.With("artist_id", artistID, "artist_name", artistName),
	}
}

// WithStage returns a logger with pipeline stage context attributes
func (l *Logger) WithStage(labelID, stage string) *Logger {
	return &Logger{
		Logger: l.With("label_id", labelID, "stage", stage),
	}
}

// Default returns a default logger for quick usage
func Default() *Logger {
	return New(Config{
		Level:  "info",
		Format: "text",
	})
}
