package logging

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// wraps zap's sugared logger so callers only see key/value helpers
type Logger struct {
	*zap.SugaredLogger
}

// console logger, debug level when verbose is set
func NewLogger(verbose bool) *Logger {
	level := zapcore.InfoLevel
	if verbose {
		level = zapcore.DebugLevel
	}

	encoderCfg := zap.NewDevelopmentEncoderConfig()
	encoderCfg.EncodeLevel = zapcore.CapitalColorLevelEncoder
	encoderCfg.EncodeTime = zapcore.TimeEncoderOfLayout("15:04:05")

	cfg := zap.Config{
		Level:             zap.NewAtomicLevelAt(level),
		Development:       verbose,
		DisableCaller:     !verbose,
		DisableStacktrace: true,
		Encoding:          "console",
		EncoderConfig:     encoderCfg,
		OutputPaths:       []string{"stderr"},
		ErrorOutputPaths:  []string{"stderr"},
	}

	base, err := cfg.Build()
	if err != nil {
		base = zap.NewExample()
	}

	return &Logger{SugaredLogger: base.Sugar()}
}

// logger that discards everything, for tests and library defaults
func NewNop() *Logger {
	return &Logger{SugaredLogger: zap.NewNop().Sugar()}
}

// child logger carrying the given key/value pairs
func (l *Logger) Named(name string, keysAndValues ...interface{}) *Logger {
	return &Logger{SugaredLogger: l.SugaredLogger.Named(name).With(keysAndValues...)}
}

// flushes buffered entries; sync errors on stderr are ignored
func (l *Logger) Close() {
	_ = l.Sync()
}
