package base

import (
	"fmt"
	"strings"
)

// LogLevel is the level of a log call, as named by the logging methods
type LogLevel string

// Log levels in ascending rank
const (
	LevelLog   LogLevel = "log"
	LevelDebug LogLevel = "debug"
	LevelInfo  LogLevel = "info"
	LevelWarn  LogLevel = "warn"
	LevelError LogLevel = "error"
)

// Rank returns the order of the level for threshold checks, or -1 for an unknown level
func (level LogLevel) Rank() int {
	switch level {
	case LevelLog:
		return 0
	case LevelDebug:
		return 1
	case LevelInfo:
		return 2
	case LevelWarn:
		return 3
	case LevelError:
		return 4
	default:
		return -1
	}
}

// IsValid checks whether the level is one of the known levels
func (level LogLevel) IsValid() bool {
	return level.Rank() != -1
}

// TraceLevel returns the level name as sent to the server, e.g. "INFO"
func (level LogLevel) TraceLevel() string {
	return strings.ToUpper(string(level))
}

// ParseLogLevel parses a level name case-insensitively
func ParseLogLevel(name string) (LogLevel, error) {
	level := LogLevel(strings.ToLower(strings.TrimSpace(name)))
	if !level.IsValid() {
		return level, fmt.Errorf("invalid log level: '%s'", name)
	}
	return level, nil
}
