// Package clientlog provides Logger, the leveled logging facade writing every call locally and forwarding a durable
// copy to the telemetry server
package clientlog

import (
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/gobwas/glob"
	"github.com/google/uuid"
	"github.com/relex/client-logger/base"
	"github.com/relex/client-logger/base/bconfig"
	"github.com/relex/client-logger/defs"
	"github.com/relex/client-logger/serverlog"
	"github.com/relex/gotils/logger"
)

// StopReason tells why delivery to server has been stopped
type StopReason string

// Stop reasons. A stop by status is caused by the server rejecting requests
const (
	StopForce StopReason = "force"
	Stop401   StopReason = "401"
	Stop403   StopReason = "403"
	Stop404   StopReason = "404"
)

// Logger is a leveled logger sending to a secondary logger and to server
type Logger struct {
	logger     logger.Logger
	config     bconfig.LoggerConfig
	clientID   string
	level      base.LogLevel
	excludes   []glob.Glob
	formatters []Formatter
	secondary  SecondaryLogger
	server     *serverlog.ServerLogger // nil if server logging isn't initialized

	mutex         sync.Mutex
	stopReason    StopReason // empty if running
	startHandlers []func()
	stopHandlers  []func(reason StopReason)
	errorHandlers []func(err error)
}

// New creates a Logger
//
// Returns *bconfig.ConfigError for invalid config. An invalid log level isn't an error: "info" is used with a
// warning printed locally.
func New(parentLogger logger.Logger, config *bconfig.LoggerConfig, options Options) (*Logger, error) {
	if err := config.VerifyConfig(); err != nil {
		return nil, err
	}
	excludes, err := config.CompileServerExclude()
	if err != nil {
		return nil, err
	}

	l := &Logger{
		logger:   parentLogger.WithFields(logger.Fields{defs.LabelComponent: "ClientLogger", defs.LabelTopic: config.AppName}),
		config:   *config,
		clientID: uuid.NewString(),
		excludes: excludes,
	}
	l.secondary = options.Secondary
	if l.secondary == nil {
		l.secondary = NewDefaultSecondaryLogger(parentLogger.WithField(defs.LabelTopic, config.AppName), config.Stringify)
	}
	l.formatters = append(append(make([]Formatter, 0, len(options.Formatters)+1), options.Formatters...), l.defaultFormatter)

	level, levelErr := base.ParseLogLevel(config.LogLevel)
	if levelErr != nil {
		level = base.LevelInfo
		if config.LogLevel != "" {
			l.Warn(fmt.Sprintf("Invalid log level: \"%s\". Default \"info\" will be used instead.", config.LogLevel), nil, SkipServer())
		}
	}
	l.level = level

	if config.ServerLoggingEnabled() {
		l.server, err = serverlog.New(l.logger, &l.config, serverlog.Options{
			Registry:      options.Registry,
			Store:         options.Store,
			Clock:         options.Clock,
			Online:        options.Online,
			MetricFactory: options.MetricFactory,
			ClientID:      l.clientID,
			Local:         l.logLocalOnly,
			OnFatal:       l.onFatalStatus,
			OnError:       l.emitError,
		})
		if err != nil {
			return nil, err
		}
	}

	if config.StartServerLoggingPaused {
		l.StopServerLogging(StopForce)
	}
	return l, nil
}

// ClientID returns the random ID identifying this logger instance in traces
func (l *Logger) ClientID() string {
	return l.clientID
}

// LogAt logs at the given level
func (l *Logger) LogAt(level base.LogLevel, message string, details interface{}, opts ...MessageOption) {
	l.formatMessage(level, message, details, opts)
}

// Log logs at the lowest level
func (l *Logger) Log(message string, details interface{}, opts ...MessageOption) {
	l.formatMessage(base.LevelLog, message, details, opts)
}

// Debug logs at debug level
func (l *Logger) Debug(message string, details interface{}, opts ...MessageOption) {
	l.formatMessage(base.LevelDebug, message, details, opts)
}

// Info logs at info level
func (l *Logger) Info(message string, details interface{}, opts ...MessageOption) {
	l.formatMessage(base.LevelInfo, message, details, opts)
}

// Warn logs at warn level
func (l *Logger) Warn(message string, details interface{}, opts ...MessageOption) {
	l.formatMessage(base.LevelWarn, message, details, opts)
}

// Error logs at error level
func (l *Logger) Error(message string, details interface{}, opts ...MessageOption) {
	l.formatMessage(base.LevelError, message, details, opts)
}

// StartServerLogging resumes delivery to server after StopServerLogging
func (l *Logger) StartServerLogging() {
	l.mutex.Lock()
	l.stopReason = ""
	l.mutex.Unlock()

	if l.server == nil {
		l.Warn("StartServerLogging called but the logger instance is not configured to send logs to the server. "+
			"Ignoring call to start sending logs to server.", nil, SkipServer())
		return
	}
	l.server.Start()
	for _, handler := range l.handlersOnStart() {
		handler()
	}
}

// StopServerLogging stops delivery to server, discarding all pending logs
//
// Use SendAllLogsInstantly first to keep pending logs. A forced stop is never overridden by a stop of other reasons.
func (l *Logger) StopServerLogging(reason StopReason) {
	l.mutex.Lock()
	if l.stopReason == StopForce && reason != StopForce {
		l.mutex.Unlock()
		return
	}
	l.stopReason = reason
	stopHandlers := append([]func(StopReason){}, l.stopHandlers...)
	l.mutex.Unlock()

	if l.server != nil {
		l.server.Stop()
	}
	for _, handler := range stopHandlers {
		handler(reason)
	}
}

// StopReason returns why delivery is stopped, or empty if it's running
func (l *Logger) StopReason() StopReason {
	l.mutex.Lock()
	defer l.mutex.Unlock()
	return l.stopReason
}

// SetAccessToken replaces the token for logs sent from now on
//
// If delivery was stopped by a 401 from server, it's started again
func (l *Logger) SetAccessToken(token string) {
	l.mutex.Lock()
	l.config.AccessToken = token
	reason := l.stopReason
	l.mutex.Unlock()

	if l.server != nil {
		l.server.SetAccessToken(token)
	}
	if reason == Stop401 {
		l.StartServerLogging()
	}
}

// SendAllLogsInstantly sends all pending logs now, see serverlog.ServerLogger.SendAllLogsInstantly
func (l *Logger) SendAllLogsInstantly() []<-chan error {
	if l.server == nil {
		return nil
	}
	return l.server.SendAllLogsInstantly()
}

// Close flushes pending logs, waiting up to the given timeout
func (l *Logger) Close(timeout time.Duration) error {
	if l.server == nil {
		return nil
	}
	return l.server.Close(timeout)
}

// OnStart registers a handler called after delivery is started again
func (l *Logger) OnStart(handler func()) {
	l.mutex.Lock()
	defer l.mutex.Unlock()
	l.startHandlers = append(l.startHandlers, handler)
}

// OnStop registers a handler called after delivery is stopped
func (l *Logger) OnStop(handler func(reason StopReason)) {
	l.mutex.Lock()
	defer l.mutex.Unlock()
	l.stopHandlers = append(l.stopHandlers, handler)
}

// OnError registers a handler called for every batch that failed to be delivered
func (l *Logger) OnError(handler func(err error)) {
	l.mutex.Lock()
	defer l.mutex.Unlock()
	l.errorHandlers = append(l.errorHandlers, handler)
}

func (l *Logger) formatMessage(level base.LogLevel, message string, details interface{}, optFuncs []MessageOption) {
	opts := MessageOptions{}
	for _, f := range optFuncs {
		f(&opts)
	}
	l.callNextFormatter(l.formatters, level, message, details, opts)
}

func (l *Logger) logMessage(level base.LogLevel, message string, details interface{}, opts MessageOptions) {
	if !opts.SkipSecondaryLogger {
		l.writeSecondary(level, message, details)
	}
	if opts.SkipServer || l.server == nil || l.StopReason() != "" {
		return
	}
	if level.Rank() < l.level.Rank() || l.isExcluded(message) {
		return
	}
	l.server.AddLogToSend(level, message, details)
}

func (l *Logger) writeSecondary(level base.LogLevel, message string, details interface{}) {
	defer func() {
		if r := recover(); r != nil {
			l.logger.Errorf("error logging using secondary logger: %v, message=%s", r, message)
		}
	}()
	l.secondary.Log(level, message, details)
}

func (l *Logger) isExcluded(message string) bool {
	for _, g := range l.excludes {
		if g.Match(message) {
			return true
		}
	}
	return false
}

func (l *Logger) logLocalOnly(level base.LogLevel, message string, details interface{}) {
	l.formatMessage(level, message, details, []MessageOption{SkipServer()})
}

func (l *Logger) onFatalStatus(status int) {
	l.StopServerLogging(StopReason(strconv.Itoa(status)))
}

func (l *Logger) emitError(err error) {
	for _, handler := range l.handlersOnError() {
		handler(err)
	}
}

func (l *Logger) handlersOnStart() []func() {
	l.mutex.Lock()
	defer l.mutex.Unlock()
	return append([]func(){}, l.startHandlers...)
}

func (l *Logger) handlersOnError() []func(error) {
	l.mutex.Lock()
	defer l.mutex.Unlock()
	return append([]func(error){}, l.errorHandlers...)
}
