package logger

import (
	"os"
	"path/filepath"

	"anydl/internal/model"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var Logger *zap.Logger

// Init builds the global JSON logger writing to the configured file and
// stdout.
func Init(cfg *model.LoggingConfig) error {
	if dir := filepath.Dir(cfg.FilePath); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}

	var level zapcore.Level
	if err := level.UnmarshalText([]byte(cfg.Level)); err != nil {
		level = zapcore.InfoLevel
	}

	config := zap.Config{
		Level:    zap.NewAtomicLevelAt(level),
		Encoding: "json",
		EncoderConfig: zapcore.EncoderConfig{
			TimeKey:        "timestamp",
			LevelKey:       "level",
			NameKey:        "logger",
			CallerKey:      "caller",
			FunctionKey:    zapcore.OmitKey,
			MessageKey:     "msg",
			StacktraceKey:  "stacktrace",
			LineEnding:     zapcore.DefaultLineEnding,
			EncodeLevel:    zapcore.LowercaseLevelEncoder,
			EncodeTime:     zapcore.ISO8601TimeEncoder,
			EncodeDuration: zapcore.SecondsDurationEncoder,
			EncodeCaller:   zapcore.ShortCallerEncoder,
		},
		OutputPaths:      []string{cfg.FilePath, "stdout"},
		ErrorOutputPaths: []string{cfg.FilePath, "stderr"},
	}

	var err error
	Logger, err = config.Build()
	return err
}

// Sync flushes buffered log entries.
func Sync() error {
	if Logger != nil {
		return Logger.Sync()
	}
	return nil
}
