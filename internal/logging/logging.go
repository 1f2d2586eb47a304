package logging

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Logger wraps a zap SugaredLogger so call sites can use the key/value
// helpers (Infow, Warnw, ...) directly.
type Logger struct {
	*zap.SugaredLogger
}

// NewLogger returns a console logger. Verbose enables debug output.
func NewLogger(verbose bool) *Logger {
	cfg := zap.NewDevelopmentConfig()
	cfg.DisableStacktrace = true
	cfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	if verbose {
		cfg.Level = zap.NewAtomicLevelAt(zap.DebugLevel)
	} else {
		cfg.Level = zap.NewAtomicLevelAt(zap.InfoLevel)
		cfg.DisableCaller = true
	}

	base, err := cfg.Build()
	if err != nil {
		base = zap.NewNop()
	}
	return &Logger{SugaredLogger: base.Sugar()}
}

// NewLevelLogger is like NewLogger but takes a level name (debug, info,
// warn, error). Unknown names fall back to info.
func NewLevelLogger(level string) *Logger {
	lvl, err := zapcore.ParseLevel(level)
	if err != nil {
		lvl = zapcore.InfoLevel
	}
	if lvl == zapcore.DebugLevel {
		return NewLogger(true)
	}

	l := NewLogger(false)
	return &Logger{SugaredLogger: l.Desugar().WithOptions(
		zap.IncreaseLevel(lvl),
	).Sugar()}
}

func NewNop() *Logger {
	return &Logger{SugaredLogger: zap.NewNop().Sugar()}
}

func (l *Logger) With(keysAndValues ...interface{}) *Logger {
	return &Logger{SugaredLogger: l.SugaredLogger.With(keysAndValues...)}
}

func (l *Logger) Sync() {
	_ = l.SugaredLogger.Sync()
}
