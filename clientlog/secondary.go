package clientlog

import (
	"github.com/relex/client-logger/base"
	"github.com/relex/client-logger/util"
	"github.com/relex/gotils/logger"
)

// SecondaryLogger writes log calls locally, alongside delivery to server
type SecondaryLogger interface {
	Log(level base.LogLevel, message string, details interface{})
}

// SecondaryLoggerFunc adapts a function to SecondaryLogger
type SecondaryLoggerFunc func(level base.LogLevel, message string, details interface{})

// Log calls f
func (f SecondaryLoggerFunc) Log(level base.LogLevel, message string, details interface{}) {
	f(level, message, details)
}

type defaultSecondaryLogger struct {
	logger    logger.Logger
	stringify bool
}

// NewDefaultSecondaryLogger creates a SecondaryLogger printing through the given logger
//
// If stringify is true, details are printed as JSON instead of Go values
func NewDefaultSecondaryLogger(l logger.Logger, stringify bool) SecondaryLogger {
	return &defaultSecondaryLogger{
		logger:    l,
		stringify: stringify,
	}
}

func (sl *defaultSecondaryLogger) Log(level base.LogLevel, message string, details interface{}) {
	l := sl.logger
	if details != nil {
		l = l.WithField("details", sl.formatDetails(details))
	}
	switch level {
	case base.LevelLog, base.LevelDebug:
		l.Debug(message)
	case base.LevelWarn:
		l.Warn(message)
	case base.LevelError:
		l.Error(message)
	default:
		l.Info(message)
	}
}

func (sl *defaultSecondaryLogger) formatDetails(details interface{}) interface{} {
	if err, ok := details.(error); ok {
		return err.Error()
	}
	if !sl.stringify {
		return details
	}
	data, err := util.MarshalJSON(details)
	if err != nil {
		return details
	}
	return string(data)
}
