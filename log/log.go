package log

import (
	"fmt"
	"strings"
)

// Logger is the package interface for SDK logging.
type Logger interface {
	Info(args ...any)
	Infof(format string, args ...any)

	Error(args ...any)
	Errorf(format string, args ...any)

	Warn(args ...any)
	Warnf(format string, args ...any)

	Debug(args ...any)
	Debugf(format string, args ...any)

	Fatal(args ...any)
	Fatalf(format string, args ...any)

	WithFields(fields ...any) Logger

	Sync() error
}

// LogLevel represents the level of verbosity of the logger.
type LogLevel uint8

// Level constants define log severity. Setting a logger's Level to a given
// constant enables that level and every level with a lower numeric value.
//
//	ErrorLevel (1) -- only errors
//	WarnLevel  (2) -- errors + warnings
//	InfoLevel  (3) -- errors + warnings + info
//	DebugLevel (4) -- everything
const (
	FatalLevel LogLevel = iota
	ErrorLevel
	WarnLevel
	InfoLevel
	DebugLevel
)

// String returns the string representation of a log level.
func (level LogLevel) String() string {
	switch level {
	case DebugLevel:
		return "debug"
	case InfoLevel:
		return "info"
	case WarnLevel:
		return "warn"
	case ErrorLevel:
		return "error"
	case FatalLevel:
		return "fatal"
	default:
		return "unknown"
	}
}

// ParseLevel takes a string level and returns the matching LogLevel constant.
func ParseLevel(lvl string) (LogLevel, error) {
	switch strings.ToLower(lvl) {
	case "debug":
		return DebugLevel, nil
	case "info":
		return InfoLevel, nil
	case "warn", "warning":
		return WarnLevel, nil
	case "error":
		return ErrorLevel, nil
	case "fatal":
		return FatalLevel, nil
	}

	var l LogLevel

	return l, fmt.Errorf("not a valid LogLevel: %q", lvl)
}
