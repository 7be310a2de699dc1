// Package logging builds the process logger.
package logging

import (
	"fmt"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

type Options struct {
	Level string
	// File receives log output. Empty means stderr, unless Interactive is
	// set, in which case logging is disabled so the terminal stays clean.
	File        string
	Interactive bool
	Verbose     bool
}

func New(o Options) (*zap.Logger, error) {
	if o.Interactive && strings.TrimSpace(o.File) == "" {
		return zap.NewNop(), nil
	}
	lvl, err := ParseLevel(o.Level)
	if err != nil {
		return nil, err
	}
	if o.Verbose {
		lvl = zapcore.DebugLevel
	}
	config := zap.NewProductionConfig()
	config.Level = zap.NewAtomicLevelAt(lvl)
	config.EncoderConfig.TimeKey = "ts"
	config.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	if f := strings.TrimSpace(o.File); f != "" {
		config.OutputPaths = []string{f}
		config.ErrorOutputPaths = []string{f}
	}
	logger, err := config.Build()
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}
	return logger, nil
}

func ParseLevel(s string) (zapcore.Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "info":
		return zapcore.InfoLevel, nil
	case "debug":
		return zapcore.DebugLevel, nil
	case "warn":
		return zapcore.WarnLevel, nil
	case "error":
		return zapcore.ErrorLevel, nil
	}
	return zapcore.InfoLevel, fmt.Errorf("unknown log level: %s", s)
}
