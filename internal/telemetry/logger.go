// Package telemetry constructs the structured logger shared by every
// solver component. The engine's run counters live in
// internal/engine.Statistics; this package only owns the logger used
// to report them during a run.
package telemetry

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// NewLogger builds a zap logger whose level tracks verbosity, in the
// same style as theRebelliousNerd-codenerd/cmd/nerd/main.go
// (zap.NewProductionConfig + zap.NewAtomicLevelAt). Verbosity 0 yields a
// no-op logger so a quiet library caller pays nothing for disabled logs.
func NewLogger(verbosity int) *zap.SugaredLogger {
	if verbosity <= 0 {
		return zap.NewNop().Sugar()
	}

	cfg := zap.NewProductionConfig()
	level := zapcore.InfoLevel
	if verbosity >= 2 {
		level = zapcore.DebugLevel
	}
	cfg.Level = zap.NewAtomicLevelAt(level)
	cfg.Encoding = "console"
	cfg.EncoderConfig = zap.NewDevelopmentEncoderConfig()

	logger, err := cfg.Build()
	if err != nil {
		return zap.NewNop().Sugar()
	}
	return logger.Sugar()
}
