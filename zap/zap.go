package zap

import (
	"os"

	"github.com/LerianStudio/ledger-sdk-golang/log"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// ZapWithTraceLogger is the go.uber.org/zap implementation of log.Logger.
type ZapWithTraceLogger struct {
	Logger *zap.SugaredLogger
}

// Compile-time assertion: *ZapWithTraceLogger implements log.Logger.
var _ log.Logger = (*ZapWithTraceLogger)(nil)

// InitializeLogger builds a production JSON logger. The minimum level is read
// from the LOG_LEVEL environment variable (default "info"); invalid values
// fall back to the default.
//
//nolint:ireturn
func InitializeLogger() log.Logger {
	var zapCfg zap.Config

	if os.Getenv("ENV_NAME") == "production" {
		zapCfg = zap.NewProductionConfig()
	} else {
		zapCfg = zap.NewDevelopmentConfig()
		zapCfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	}

	if lvl, err := zapcore.ParseLevel(os.Getenv("LOG_LEVEL")); err == nil {
		zapCfg.Level = zap.NewAtomicLevelAt(lvl)
	}

	logger, err := zapCfg.Build(zap.AddCallerSkip(1))
	if err != nil {
		panic(err)
	}

	sugarLogger := logger.Sugar()
	sugarLogger.Infow("Logger initialized", "level", zapCfg.Level.String())

	return &ZapWithTraceLogger{Logger: sugarLogger}
}

// NewWithZap wraps an existing zap logger in the SDK Logger interface.
//
//nolint:ireturn
func NewWithZap(logger *zap.Logger) log.Logger {
	if logger == nil {
		logger = zap.NewNop()
	}

	return &ZapWithTraceLogger{Logger: logger.Sugar()}
}

func (l *ZapWithTraceLogger) must() *zap.SugaredLogger {
	if l == nil || l.Logger == nil {
		return zap.NewNop().Sugar()
	}

	return l.Logger
}

// Info implements Info Logger interface function.
func (l *ZapWithTraceLogger) Info(args ...any) { l.must().Info(args...) }

// Infof implements Infof Logger interface function.
func (l *ZapWithTraceLogger) Infof(format string, args ...any) { l.must().Infof(format, args...) }

// Error implements Error Logger interface function.
func (l *ZapWithTraceLogger) Error(args ...any) { l.must().Error(args...) }

// Errorf implements Errorf Logger interface function.
func (l *ZapWithTraceLogger) Errorf(format string, args ...any) { l.must().Errorf(format, args...) }

// Warn implements Warn Logger interface function.
func (l *ZapWithTraceLogger) Warn(args ...any) { l.must().Warn(args...) }

// Warnf implements Warnf Logger interface function.
func (l *ZapWithTraceLogger) Warnf(format string, args ...any) { l.must().Warnf(format, args...) }

// Debug implements Debug Logger interface function.
func (l *ZapWithTraceLogger) Debug(args ...any) { l.must().Debug(args...) }

// Debugf implements Debugf Logger interface function.
func (l *ZapWithTraceLogger) Debugf(format string, args ...any) { l.must().Debugf(format, args...) }

// Fatal implements Fatal Logger interface function.
func (l *ZapWithTraceLogger) Fatal(args ...any) { l.must().Fatal(args...) }

// Fatalf implements Fatalf Logger interface function.
func (l *ZapWithTraceLogger) Fatalf(format string, args ...any) { l.must().Fatalf(format, args...) }

// WithFields returns a child logger with additional structured fields.
// Fields are alternating key/value pairs, zap "sugar" style.
//
//nolint:ireturn
func (l *ZapWithTraceLogger) WithFields(fields ...any) log.Logger {
	return &ZapWithTraceLogger{Logger: l.must().With(fields...)}
}

// Sync flushes any buffered log entries.
func (l *ZapWithTraceLogger) Sync() error {
	return l.must().Sync()
}
