package clientlog

import (
	"github.com/relex/client-logger/base"
)

// NextFunc passes a possibly modified log call on to the next formatter
type NextFunc func(level base.LogLevel, message string, details interface{}, opts MessageOptions)

// Formatter rewrites a log call before it's written anywhere
//
// A formatter drops the call by not calling next.
type Formatter func(level base.LogLevel, message string, details interface{}, opts MessageOptions, next NextFunc)

func (l *Logger) callNextFormatter(formatters []Formatter, level base.LogLevel, message string, details interface{}, opts MessageOptions) {
	if len(formatters) == 0 {
		l.logMessage(level, message, details, opts)
		return
	}
	formatter, remaining := formatters[0], formatters[1:]
	formatter(level, message, details, opts, func(newLevel base.LogLevel, newMessage string, newDetails interface{}, newOpts MessageOptions) {
		l.callNextFormatter(remaining, newLevel, newMessage, newDetails, newOpts)
	})
}

func (l *Logger) defaultFormatter(level base.LogLevel, message string, details interface{}, opts MessageOptions, next NextFunc) {
	if opts.SkipDefaultFormatter || l.config.AppName == "" {
		next(level, message, details, opts)
		return
	}
	next(level, "["+l.config.AppName+"] "+message, details, opts)
}
