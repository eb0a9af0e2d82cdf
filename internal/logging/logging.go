// Package logging builds the zap logger used by the command line.
// Logs go to stderr so they never mix with a rendered document on stdout.
package logging

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config selects the log level and destination.
type Config struct {
	Debug  bool
	Output string // zap sink URL or path; default "stderr"
}

// New builds a console logger at warn level, or debug level with Debug set.
func New(cfg Config) (*zap.Logger, error) {
	out := cfg.Output
	if out == "" {
		out = "stderr"
	}
	zc := zap.NewProductionConfig()
	zc.Encoding = "console"
	zc.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	zc.OutputPaths = []string{out}
	zc.ErrorOutputPaths = []string{out}
	zc.Level = zap.NewAtomicLevelAt(zapcore.WarnLevel)
	if cfg.Debug {
		zc.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
		zc.Development = true
	}
	return zc.Build()
}
