// Package logging builds the zap loggers used by swarmkit commands.
//
// Hooks run inside the host's tool pipeline, where stderr is part of the
// verdict contract, so hook loggers only ever write to a file. Bootstrap
// runs interactively and logs to stderr.
package logging

import (
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Options selects level, encoding and sinks.
type Options struct {
	Level  string
	Format string
	// File is an optional log file path, created with its parent directory.
	File string
	// Stderr also sends logs to stderr.
	Stderr bool
}

// ParseLevel maps a level name onto a zap level. Unknown names mean info.
func ParseLevel(level string) zapcore.Level {
	switch level {
	case "debug":
		return zapcore.DebugLevel
	case "warn":
		return zapcore.WarnLevel
	case "error":
		return zapcore.ErrorLevel
	default:
		return zapcore.InfoLevel
	}
}

// New builds a logger. With neither a file nor stderr it returns a no-op logger.
func New(opts Options) (*zap.Logger, error) {
	var outputs []string
	if opts.File != "" {
		if err := os.MkdirAll(filepath.Dir(opts.File), 0o755); err != nil {
			return nil, fmt.Errorf("logging: ensure log dir: %w", err)
		}
		outputs = append(outputs, opts.File)
	}
	if opts.Stderr {
		outputs = append(outputs, "stderr")
	}
	if len(outputs) == 0 {
		return zap.NewNop(), nil
	}

	encoding := "console"
	encoderCfg := zap.NewDevelopmentEncoderConfig()
	if opts.Format == "json" {
		encoding = "json"
		encoderCfg = zap.NewProductionEncoderConfig()
	}
	encoderCfg.EncodeTime = zapcore.ISO8601TimeEncoder

	cfg := zap.Config{
		Level:            zap.NewAtomicLevelAt(ParseLevel(opts.Level)),
		Development:      false,
		Encoding:         encoding,
		EncoderConfig:    encoderCfg,
		OutputPaths:      outputs,
		ErrorOutputPaths: outputs,
	}

	logger, err := cfg.Build()
	if err != nil {
		return nil, fmt.Errorf("logging: build logger: %w", err)
	}
	return logger, nil
}

// NewHookLogger builds a file-only logger for hook processes. Any failure
// degrades to a no-op logger so logging can never change a hook verdict.
func NewHookLogger(level, format, file string) *zap.Logger {
	logger, err := New(Options{Level: level, Format: format, File: file})
	if err != nil {
		return zap.NewNop()
	}
	return logger
}
