package logger

import (
	"fmt"
	"os"
	"strings"
	"sync/atomic"
)

var globalLogger atomic.Pointer[Logger]

func init() {
	globalLogger.Store(NewDefault())
	Configure(os.Getenv("LOG_LEVEL"), os.Getenv("LOG_FORMAT"), false)
}

// Configure applies level and format names to the global logger. Unknown or
// empty names leave the current setting alone. The "auto" format selects JSON
// in production and text elsewhere.
func Configure(level, format string, production bool) {
	l := GetGlobalLogger()
	if lvl, ok := parseLogLevel(level); ok {
		l.SetLevel(lvl)
	}
	if strings.EqualFold(format, "auto") {
		if production {
			l.SetFormat(JSONFormat)
		} else {
			l.SetFormat(TextFormat)
		}
		return
	}
	if f, ok := parseLogFormat(format); ok {
		l.SetFormat(f)
	}
}

func parseLogLevel(level string) (LogLevel, bool) {
	switch strings.ToUpper(level) {
	case "DEBUG":
		return DEBUG, true
	case "INFO":
		return INFO, true
	case "WARN", "WARNING":
		return WARN, true
	case "ERROR":
		return ERROR, true
	case "FATAL":
		return FATAL, true
	default:
		return INFO, false
	}
}

func parseLogFormat(format string) (LogFormat, bool) {
	switch strings.ToLower(format) {
	case "json":
		return JSONFormat, true
	case "text":
		return TextFormat, true
	default:
		return JSONFormat, false
	}
}

// GetGlobalLogger returns the global logger instance
func GetGlobalLogger() *Logger {
	return globalLogger.Load()
}

// SetGlobalLogger sets the global logger instance
func SetGlobalLogger(logger *Logger) {
	globalLogger.Store(logger)
}

// Global convenience functions that use the global logger

func Debug(message string, fields ...map[string]interface{}) {
	GetGlobalLogger().log(DEBUG, message, firstFields(fields), nil)
}

func Info(message string, fields ...map[string]interface{}) {
	GetGlobalLogger().log(INFO, message, firstFields(fields), nil)
}

func Warn(message string, fields ...map[string]interface{}) {
	GetGlobalLogger().log(WARN, message, firstFields(fields), nil)
}

func Error(message string, err error, fields ...map[string]interface{}) {
	GetGlobalLogger().log(ERROR, message, firstFields(fields), err)
}

// Fatal logs using the global logger and exits
func Fatal(message string, err error, fields ...map[string]interface{}) {
	GetGlobalLogger().log(FATAL, message, firstFields(fields), err)
}

func Infof(format string, args ...interface{}) {
	GetGlobalLogger().log(INFO, fmt.Sprintf(format, args...), nil, nil)
}
