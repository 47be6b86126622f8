package render

import (
	"github.com/sirupsen/logrus"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Logger is the optional rotated diagnostic sink for the render
// pipeline: a *logrus.Logger writing through a lumberjack.Logger so
// long-running tile servers don't need an external logrotate setup.
// It follows tilecache.go's use of logrus for package logging, paired
// with lumberjack the way
// Klaus-Tockloth-dtm-elevation-service/main.go rotates its own log
// file, adapted here from log/slog's handler plumbing to a logrus
// hook since the rest of this package already standardizes on logrus.
type Logger struct {
	*logrus.Logger
	rotate *lumberjack.Logger
}

// LoggerConfig configures the rotated log file Logger writes to.
type LoggerConfig struct {
	Path       string
	MaxSizeMB  int // default 100
	MaxAgeDays int // default: no age limit
	MaxBackups int // default: no backup limit
	Compress   bool
}

// NewLogger builds a Logger writing JSON-formatted entries to cfg.Path,
// rotated by lumberjack. A zero MaxSizeMB/MaxAgeDays/MaxBackups falls
// back to lumberjack's own defaults of 100MB/no age limit/no backup
// limit, matching the original's conservative rotation settings.
func NewLogger(cfg LoggerConfig) *Logger {
	rotate := &lumberjack.Logger{
		Filename:   cfg.Path,
		MaxSize:    cfg.MaxSizeMB,
		MaxAge:     cfg.MaxAgeDays,
		MaxBackups: cfg.MaxBackups,
		Compress:   cfg.Compress,
	}
	l := logrus.New()
	l.SetOutput(rotate)
	l.SetFormatter(&logrus.JSONFormatter{})
	return &Logger{Logger: l, rotate: rotate}
}

// Close flushes and closes the underlying rotated log file.
func (l *Logger) Close() error {
	return l.rotate.Close()
}

// Diag returns a func(string) suitable for Renderer.Diag, logging each
// trace line at debug level tagged with the render component.
func (l *Logger) Diag() func(string) {
	return func(msg string) {
		l.WithField("component", "render").Debug(msg)
	}
}
