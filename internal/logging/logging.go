// Package logging wires up the process-wide slog logger.
package logging

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"gopkg.in/natefinch/lumberjack.v2"
)

// Rotation limits for the optional log file, mirroring the cron setups this
// tooling runs under.
const (
	maxLogSizeMB  = 5
	maxLogBackups = 5
)

// Setup configures and installs the default logger. Console output is
// human-readable text; when logFile is set, JSON records additionally go to
// a size-rotated file.
func Setup(logFile string, debug bool) (*slog.Logger, error) {
	level := slog.LevelInfo
	if debug {
		level = slog.LevelDebug
	}
	opts := &slog.HandlerOptions{Level: level}

	var handler slog.Handler
	if logFile == "" {
		handler = slog.NewTextHandler(os.Stdout, opts)
	} else {
		if dir := filepath.Dir(logFile); dir != "." {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return nil, fmt.Errorf("create log directory %s: %w", dir, err)
			}
		}
		rotator := &lumberjack.Logger{
			Filename:   logFile,
			MaxSize:    maxLogSizeMB,
			MaxBackups: maxLogBackups,
		}
		handler = slog.NewJSONHandler(io.MultiWriter(os.Stdout, rotator), opts)
	}

	logger := slog.New(handler)
	slog.SetDefault(logger)
	return logger, nil
}
