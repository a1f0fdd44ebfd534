// Package logging builds the logrus logger used by the yea CLI.
package logging

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/sirupsen/logrus"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Options configures a Logger.
type Options struct {
	Level  string // debug, info, warn, error
	Format string // "text" or "json"

	// Console receives log output; nil means os.Stderr.
	Console io.Writer

	// File enables a rotated log file in addition to the console.
	File       string
	MaxSize    int // MB
	MaxBackups int
	MaxAge     int // days
	Compress   bool
}

// Logger is a logrus logger together with its rotated file, if any.
type Logger struct {
	*logrus.Logger
	file *lumberjack.Logger
}

// New creates a Logger from opts.
func New(opts Options) (*Logger, error) {
	logger := logrus.New()
	logger.SetLevel(ParseLevel(opts.Level))

	if strings.ToLower(opts.Format) == "json" {
		logger.SetFormatter(&logrus.JSONFormatter{
			TimestampFormat: "2006-01-02 15:04:05",
		})
	} else {
		logger.SetFormatter(&logrus.TextFormatter{
			TimestampFormat: "2006-01-02 15:04:05",
			FullTimestamp:   true,
			PadLevelText:    true,
		})
	}

	console := opts.Console
	if console == nil {
		console = os.Stderr
	}

	l := &Logger{Logger: logger}
	if opts.File == "" {
		logger.SetOutput(console)
		return l, nil
	}

	if err := os.MkdirAll(filepath.Dir(opts.File), 0755); err != nil {
		return nil, fmt.Errorf("creating log directory: %w", err)
	}
	l.file = &lumberjack.Logger{
		Filename:   opts.File,
		MaxSize:    opts.MaxSize,
		MaxBackups: opts.MaxBackups,
		MaxAge:     opts.MaxAge,
		Compress:   opts.Compress,
		LocalTime:  true,
	}
	logger.SetOutput(io.MultiWriter(console, l.file))
	return l, nil
}

// ParseLevel parses a level name, defaulting to warn.
func ParseLevel(level string) logrus.Level {
	parsed, err := logrus.ParseLevel(strings.ToLower(level))
	if err != nil {
		return logrus.WarnLevel
	}
	return parsed
}

// Close closes the log file.
func (l *Logger) Close() error {
	if l.file != nil {
		return l.file.Close()
	}
	return nil
}
