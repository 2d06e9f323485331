package app

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// NewLogger builds the shell logger writing JSON lines to the given
// file. There is no console sink: the terminal belongs to the
// renderer, and a stray write would tear the frame. Unknown level
// names fall back to info.
func NewLogger(level, file string) (*zap.SugaredLogger, error) {
	lvl, err := zapcore.ParseLevel(level)
	if err != nil {
		lvl = zapcore.InfoLevel
	}

	if dir := filepath.Dir(file); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create log directory %s: %w", dir, err)
		}
	}

	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevelAt(lvl)
	cfg.OutputPaths = []string{file}
	cfg.ErrorOutputPaths = []string{file}
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	logger, err := cfg.Build()
	if err != nil {
		return nil, fmt.Errorf("open log file %s: %w", file, err)
	}
	return logger.Sugar(), nil
}

var (
	globalLogger   *zap.SugaredLogger
	globalLoggerMu sync.RWMutex
)

// GetLogger returns the process-wide logger. Before SetLogger runs it
// is a no-op logger, so library code can log unconditionally.
func GetLogger() *zap.SugaredLogger {
	globalLoggerMu.RLock()
	defer globalLoggerMu.RUnlock()
	if globalLogger == nil {
		return zap.NewNop().Sugar()
	}
	return globalLogger
}

// SetLogger installs the process-wide logger.
func SetLogger(log *zap.SugaredLogger) {
	globalLoggerMu.Lock()
	defer globalLoggerMu.Unlock()
	globalLogger = log
}
