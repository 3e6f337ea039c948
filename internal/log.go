package internal

import (
	"log"
	"os"
	"strings"
)

// LogLevel represents different logging verbosity levels
type LogLevel int

const (
	LogLevelError LogLevel = iota
	LogLevelWarn
	LogLevelInfo
	LogLevelDebug
	LogLevelTrace
)

var levelNames = map[LogLevel]string{
	LogLevelError: "ERROR",
	LogLevelWarn:  "WARN",
	LogLevelInfo:  "INFO",
	LogLevelDebug: "DEBUG",
	LogLevelTrace: "TRACE",
}

func (l LogLevel) String() string {
	if name, ok := levelNames[l]; ok {
		return name
	}
	return "UNKNOWN"
}

// ParseLogLevel accepts a level name in any case; unknown names yield INFO
// and false.
func ParseLogLevel(s string) (LogLevel, bool) {
	want := strings.ToUpper(strings.TrimSpace(s))
	for level, name := range levelNames {
		if name == want {
			return level, true
		}
	}
	return LogLevelInfo, false
}

// Logger provides leveled logging with an optional component prefix
type Logger struct {
	level     LogLevel
	component string
}

// NewLogger creates a new logger with the specified level
func NewLogger(level LogLevel) *Logger {
	return &Logger{level: level}
}

// NewDefaultLogger creates a logger based on LOG_LEVEL environment variable
func NewDefaultLogger() *Logger {
	level, _ := ParseLogLevel(os.Getenv("LOG_LEVEL"))
	return &Logger{level: level}
}

// With returns a logger that tags every line with [component].
func (l *Logger) With(component string) *Logger {
	return &Logger{level: l.level, component: component}
}

func (l *Logger) logf(level LogLevel, format string, args ...interface{}) {
	if l.level < level {
		return
	}
	prefix := "[" + level.String() + "] "
	if l.component != "" {
		prefix += "[" + l.component + "] "
	}
	log.Printf(prefix+format, args...)
}

// Error logs error messages
func (l *Logger) Error(format string, args ...interface{}) { l.logf(LogLevelError, format, args...) }

// Warn logs warning messages
func (l *Logger) Warn(format string, args ...interface{}) { l.logf(LogLevelWarn, format, args...) }

// Info logs info messages
func (l *Logger) Info(format string, args ...interface{}) { l.logf(LogLevelInfo, format, args...) }

// Debug logs debug messages
func (l *Logger) Debug(format string, args ...interface{}) { l.logf(LogLevelDebug, format, args...) }

// Trace logs trace messages
func (l *Logger) Trace(format string, args ...interface{}) { l.logf(LogLevelTrace, format, args...) }

// GetLevel returns the current log level
func (l *Logger) GetLevel() LogLevel {
	return l.level
}

// Enabled reports whether messages at level would be written.
func (l *Logger) Enabled(level LogLevel) bool {
	return l.level >= level
}

// Global logger instance
var DefaultLogger = NewDefaultLogger()
