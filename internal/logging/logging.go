// Package logging builds the zap loggers used by the controller and the
// injected module. The injected side always logs to a file: failures inside
// the target process are invisible to the controller, so the log file is
// the only post-mortem available.
package logging

import (
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func encoderConfig() zapcore.EncoderConfig {
	cfg := zap.NewDevelopmentEncoderConfig()
	cfg.EncodeTime = zapcore.ISO8601TimeEncoder
	return cfg
}

// NewFileLogger returns a logger appending human-readable lines to path.
func NewFileLogger(path string) (*zap.Logger, error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, err
	}
	core := zapcore.NewCore(
		zapcore.NewConsoleEncoder(encoderConfig()),
		zapcore.Lock(zapcore.AddSync(f)),
		zapcore.DebugLevel,
	)
	return zap.New(core), nil
}

// NewConsoleLogger returns a stderr logger for controller runs. Debug lines
// are only emitted with verbose set.
func NewConsoleLogger(verbose bool) *zap.Logger {
	level := zapcore.InfoLevel
	if verbose {
		level = zapcore.DebugLevel
	}
	core := zapcore.NewCore(
		zapcore.NewConsoleEncoder(encoderConfig()),
		zapcore.Lock(zapcore.AddSync(os.Stderr)),
		level,
	)
	return zap.New(core)
}
