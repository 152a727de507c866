// Package logger provides the structured logger shared by the bridge.
package logger

import (
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/log"
)

// Logger is the global logger instance.
var Logger = newLogger(os.Stderr)

func newLogger(w io.Writer) *log.Logger {
	l := log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		TimeFormat:      "2006-01-02 15:04:05",
	})
	l.SetLevel(log.InfoLevel)
	return l
}

// Configure sets the level and destination of the global logger.
// An empty logFile keeps logging on stderr.
func Configure(level string, logFile string) error {
	var output io.Writer = os.Stderr
	if logFile != "" {
		file, err := os.OpenFile(logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0600)
		if err != nil {
			return err
		}
		output = file
	}

	Logger = newLogger(output)
	Logger.SetLevel(ParseLevel(level))
	return nil
}

// ParseLevel converts a level name to a log level, defaulting to info.
func ParseLevel(level string) log.Level {
	switch strings.ToLower(level) {
	case "debug":
		return log.DebugLevel
	case "warn":
		return log.WarnLevel
	case "error":
		return log.ErrorLevel
	case "fatal":
		return log.FatalLevel
	default:
		return log.InfoLevel
	}
}

// SetReportCaller toggles source locations on every record. Development
// builds turn it on.
func SetReportCaller(on bool) {
	Logger.SetReportCaller(on)
}

// WithPrefix returns a component logger sharing the global configuration.
func WithPrefix(prefix string) *log.Logger {
	return Logger.WithPrefix(prefix)
}

// Debug logs a debug message with optional key-value pairs.
func Debug(msg interface{}, keyvals ...interface{}) {
	Logger.Helper()
	Logger.Debug(msg, keyvals...)
}

// Info logs an info message with optional key-value pairs.
func Info(msg interface{}, keyvals ...interface{}) {
	Logger.Helper()
	Logger.Info(msg, keyvals...)
}

// Warn logs a warning message with optional key-value pairs.
func Warn(msg interface{}, keyvals ...interface{}) {
	Logger.Helper()
	Logger.Warn(msg, keyvals...)
}

// Error logs an error message with optional key-value pairs.
func Error(msg interface{}, keyvals ...interface{}) {
	Logger.Helper()
	Logger.Error(msg, keyvals...)
}

// Infof logs a formatted info message.
func Infof(format string, args ...interface{}) {
	Logger.Helper()
	Logger.Infof(format, args...)
}

// Fatal logs an error message and exits.
func Fatal(msg interface{}, keyvals ...interface{}) {
	Logger.Helper()
	Logger.Fatal(msg, keyvals...)
}
