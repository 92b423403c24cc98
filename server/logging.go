package server

import (
	"fmt"
	"io"
	"log/slog"
	"strings"

	"gopkg.in/natefinch/lumberjack.v2"
)

// LogConfig selects the slog handler and, when File is set, a rotating log
// file in place of the default writer.
type LogConfig struct {
	Level      string `json:"level,omitempty" yaml:"level,omitempty"`
	Format     string `json:"format,omitempty" yaml:"format,omitempty"`
	File       string `json:"file,omitempty" yaml:"file,omitempty"`
	MaxSizeMB  int    `json:"max_size_mb,omitempty" yaml:"max_size_mb,omitempty"`
	MaxBackups int    `json:"max_backups,omitempty" yaml:"max_backups,omitempty"`
	MaxAgeDays int    `json:"max_age_days,omitempty" yaml:"max_age_days,omitempty"`
	Compress   bool   `json:"compress,omitempty" yaml:"compress,omitempty"`
}

// DefaultLogConfig returns info-level text logging.
func DefaultLogConfig() LogConfig {
	return LogConfig{
		Level:      "info",
		Format:     "text",
		MaxSizeMB:  100,
		MaxBackups: 5,
		MaxAgeDays: 30,
	}
}

// Merge applies non-zero values from source into c.
func (c *LogConfig) Merge(source *LogConfig) {
	if source.Level != "" {
		c.Level = source.Level
	}
	if source.Format != "" {
		c.Format = source.Format
	}
	if source.File != "" {
		c.File = source.File
	}
	if source.MaxSizeMB > 0 {
		c.MaxSizeMB = source.MaxSizeMB
	}
	if source.MaxBackups > 0 {
		c.MaxBackups = source.MaxBackups
	}
	if source.MaxAgeDays > 0 {
		c.MaxAgeDays = source.MaxAgeDays
	}
	if source.Compress {
		c.Compress = true
	}
}

// NewLogger builds a slog.Logger from cfg. Output goes to fallback unless a
// log file is configured. The returned closer releases the log file and is
// never nil.
func NewLogger(cfg *LogConfig, fallback io.Writer) (*slog.Logger, io.Closer, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(cfg.Level)); err != nil {
		return nil, nil, fmt.Errorf("%w: level %q", ErrInvalidLogConfig, cfg.Level)
	}

	out := fallback
	var closer io.Closer = nopCloser{}
	if cfg.File != "" {
		rotating := &lumberjack.Logger{
			Filename:   cfg.File,
			MaxSize:    cfg.MaxSizeMB,
			MaxBackups: cfg.MaxBackups,
			MaxAge:     cfg.MaxAgeDays,
			Compress:   cfg.Compress,
		}
		out, closer = rotating, rotating
	}

	opts := &slog.HandlerOptions{Level: level}

	var h slog.Handler
	switch strings.ToLower(cfg.Format) {
	case "", "text":
		h = slog.NewTextHandler(out, opts)
	case "json":
		h = slog.NewJSONHandler(out, opts)
	default:
		closer.Close()
		return nil, nil, fmt.Errorf("%w: format %q", ErrInvalidLogConfig, cfg.Format)
	}

	return slog.New(h), closer, nil
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }
