package app

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/bingbr/league-timeline/internal/config"
	"github.com/bingbr/league-timeline/internal/storage/logs"
)

const (
	logFileMaxSizeMB  = 20
	logFileMaxBackups = 5
	logFileMaxAgeDays = 14
	dbLogTimeout      = 2 * time.Second
)

// setupLogger fans records out to the console, the rotating log file and the
// database sink, whichever are configured. The returned func closes the file.
func setupLogger(cfg config.Config, console io.Writer, sink logs.Sink) (*slog.Logger, func()) {
	opts := &slog.HandlerOptions{Level: cfg.LogLevel}
	handlers := []slog.Handler{slog.NewTextHandler(console, opts)}
	closeFile := func() {}

	if cfg.LogFile != "" {
		if err := os.MkdirAll(filepath.Dir(cfg.LogFile), 0o755); err == nil {
			rotator := &lumberjack.Logger{
				Filename:   cfg.LogFile,
				MaxSize:    logFileMaxSizeMB,
				MaxBackups: logFileMaxBackups,
				MaxAge:     logFileMaxAgeDays,
				Compress:   true,
			}
			handlers = append(handlers, slog.NewJSONHandler(rotator, &slog.HandlerOptions{Level: slog.LevelDebug}))
			closeFile = func() { _ = rotator.Close() }
		}
	}
	if sink != nil {
		handlers = append(handlers, logs.NewHandler(sink, slog.LevelDebug, dbLogTimeout))
	}

	var handler slog.Handler = handlers[0]
	if len(handlers) > 1 {
		handler = slog.NewMultiHandler(handlers...)
	}
	logger := slog.New(handler)
	slog.SetDefault(logger)
	if cfg.IsDev {
		logger.Debug("Development mode enabled")
	}
	return logger, closeFile
}
