// Package logging builds the slog loggers used across the module.
package logging

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/encodeous/tint"
	slogmulti "github.com/samber/slog-multi"
	"golang.org/x/xerrors"
)

// Config describes where log records go.
type Config struct {
	Level slog.Level

	// Prefix is printed in front of every console line.
	Prefix string

	// File, if set, receives a plain text copy of every record.
	File string

	// Console defaults to os.Stderr.
	Console io.Writer
}

// New returns a logger that writes colored records to the console and,
// optionally, to a file. The returned close function releases the file.
func New(cfg Config) (*slog.Logger, func() error, error) {
	if cfg.Console == nil {
		cfg.Console = os.Stderr
	}

	handlers := []slog.Handler{
		tint.NewHandler(cfg.Console, &tint.Options{
			Level:        cfg.Level,
			AddSource:    false,
			CustomPrefix: cfg.Prefix,
			ReplaceAttr: func(groups []string, attr slog.Attr) slog.Attr {
				if attr.Key == slog.TimeKey {
					return slog.Attr{}
				}
				return attr
			},
		}),
	}

	closeFn := func() error { return nil }
	if cfg.File != "" {
		if err := os.MkdirAll(filepath.Dir(cfg.File), 0700); err != nil {
			return nil, nil, xerrors.Errorf("create log directory: %w", err)
		}
		f, err := os.OpenFile(cfg.File, os.O_WRONLY|os.O_APPEND|os.O_CREATE, 0600)
		if err != nil {
			return nil, nil, xerrors.Errorf("open log file: %w", err)
		}
		handlers = append(handlers, slog.NewTextHandler(f, &slog.HandlerOptions{Level: cfg.Level}))
		closeFn = f.Close
	}

	return slog.New(slogmulti.Fanout(handlers...)), closeFn, nil
}

// ParseLevel maps debug, info, warn and error (case-insensitive) to a slog
// level. Unknown names yield info.
func ParseLevel(name string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(name)) {
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

// Discard returns a logger that drops every record.
func Discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: slog.LevelError + 1}))
}
