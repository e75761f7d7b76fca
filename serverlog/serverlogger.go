// Package serverlog provides ServerLogger, which turns leveled log calls into traces and delivers them in batches to
// the configured endpoint
package serverlog

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/relex/client-logger/base"
	"github.com/relex/client-logger/base/bconfig"
	"github.com/relex/client-logger/buffer/logbuffer"
	"github.com/relex/client-logger/defs"
	"github.com/relex/client-logger/output/uploader"
	"github.com/relex/client-logger/storage/smemory"
	"github.com/relex/client-logger/transform/ttruncate"
	"github.com/relex/client-logger/util/clock"
	"github.com/relex/gotils/logger"
)

// ServerLogger glues the batch buffer to the uploader of its URL
//
// Log calls never block on delivery. After Stop, or after a fatal status from the server, all pending state is
// discarded and further calls are ignored until Start.
type ServerLogger struct {
	logger    logger.Logger
	config    *bconfig.LoggerConfig
	appInfo   base.AppInfo
	clientID  string
	clock     clock.Clock
	truncator *ttruncate.Truncator
	buffer    *logbuffer.LogBuffer
	uploader  *uploader.Uploader
	ownStore  base.RequestStore // closed on Close if created here
	local     LocalLogFunc
	onFatal   func(status int)
	metrics   serverLoggerMetrics

	mutex       sync.Mutex
	accessToken string
	stopped     bool
}

type serverLoggerMetrics struct {
	acceptedTraces     prometheus.Counter
	truncatedTraces    *prometheus.CounterVec
	undeliverableTotal prometheus.Counter
	fatalStops         prometheus.Counter
}

// New creates a ServerLogger
//
// Returns *bconfig.ConfigError if the URL or app version is missing, in which case nothing is started
func New(parentLogger logger.Logger, config *bconfig.LoggerConfig, options Options) (*ServerLogger, error) {
	if err := config.VerifyServerConfig(); err != nil {
		return nil, err
	}

	slLogger := parentLogger.WithFields(logger.Fields{
		defs.LabelComponent: "ServerLogger",
		defs.LabelTopic:     config.AppName,
	})
	if options.Clock == nil {
		options.Clock = clock.Real()
	}
	if options.MetricFactory == nil {
		options.MetricFactory = base.NewMetricFactory("clientlogger_", nil, nil, nil)
	}

	var ownStore base.RequestStore
	if options.Registry == nil {
		store := options.Store
		if store == nil {
			var err error
			if store, err = newStoreFromConfig(slLogger, config); err != nil {
				return nil, err
			}
			ownStore = store
		}
		options.Registry = NewRegistry(slLogger, config, store, options.Clock, options.Online, options.MetricFactory)
	}

	var u *uploader.Uploader
	if config.UseUniqueLogUploader {
		u = options.Registry.NewPrivate(config.URL)
	} else {
		u = options.Registry.GetOrCreate(config.URL)
	}

	mfactory := options.MetricFactory.NewSubFactory("logger_", []string{defs.LabelTopic}, []string{config.AppName})
	sl := &ServerLogger{
		logger:      slLogger,
		config:      config,
		appInfo:     config.AppInfo(),
		clientID:    options.ClientID,
		clock:       options.Clock,
		truncator:   ttruncate.NewTruncator(config.AppName, config.MaxLogSizeOrDefault()),
		uploader:    u,
		ownStore:    ownStore,
		local:       options.Local,
		onFatal:     options.OnFatal,
		accessToken: config.AccessToken,
		metrics: serverLoggerMetrics{
			acceptedTraces:     mfactory.AddOrGetCounter("accepted_traces_total", "Numbers of traces accepted for delivery", nil, nil),
			truncatedTraces:    mfactory.AddOrGetCounterVec("truncated_traces_total", "Numbers of oversized traces truncated", []string{"stage"}, nil),
			undeliverableTotal: mfactory.AddOrGetCounter("undeliverable_traces_total", "Numbers of traces dropped for being too large even after truncation", nil, nil),
			fatalStops:         mfactory.AddOrGetCounter("fatal_stops_total", "Numbers of times delivery was halted by fatal statuses", nil, nil),
		},
	}
	if sl.local == nil {
		sl.local = sl.logLocally
	}
	sl.buffer = logbuffer.NewLogBuffer(slLogger, logbuffer.Args{
		Sender:        u,
		NewRequest:    sl.newRequest,
		Clock:         options.Clock,
		Debounce:      config.DebounceOrDefault(),
		MaxSize:       config.MaxLogSizeOrDefault(),
		MetricFactory: mfactory,
		OnError:       options.OnError,
		OnFatal:       sl.handleFatal,
	})
	slLogger.Infof("initialized for %s", config.URL)
	return sl, nil
}

// AddLogToSend builds the trace of a log call and adds it to the batch buffer
//
// Oversized traces are truncated with a local warning, or dropped with a local error if they still don't fit
func (sl *ServerLogger) AddLogToSend(level base.LogLevel, message string, details interface{}) {
	if sl.IsStopped() {
		return
	}

	msg := base.NewLogMessage(sl.clock.Now(), sl.clientID, sl.config.Origin, message, details)
	trace, stage := sl.truncator.Truncate(level, msg)
	switch stage {
	case ttruncate.Untouched:
	case ttruncate.Undeliverable:
		sl.metrics.undeliverableTotal.Inc()
		sl.local(base.LevelError, "truncated message is still too large to send to server, not sending message", map[string]interface{}{
			"originalSize": base.CalculateSize(base.NewTrace(sl.config.AppName, level, msg)),
			"maxSize":      sl.truncator.MaxSize(),
		})
		return
	default:
		sl.metrics.truncatedTraces.WithLabelValues(stage.String()).Inc()
		sl.local(base.LevelWarn, "message too large to send to server, "+stage.String(), map[string]interface{}{
			"originalSize":  base.CalculateSize(base.NewTrace(sl.config.AppName, level, msg)),
			"truncatedSize": base.CalculateSize(*trace),
		})
	}

	if err := sl.buffer.Add(*trace, base.CalculateSize(*trace)); err != nil {
		sl.local(base.LevelError, "failed to buffer log for server", err)
		return
	}
	sl.metrics.acceptedTraces.Inc()
}

// SendAllLogsInstantly sends all queued requests and buffered batches at once, without waiting
//
// It's the best-effort flush on teardown. Each returned channel receives the result of one request.
func (sl *ServerLogger) SendAllLogsInstantly() []<-chan error {
	results := sl.uploader.SendAllNow()
	for _, item := range sl.buffer.TakeAll() {
		request := sl.newRequest(item.Traces)
		result := make(chan error, 1)
		results = append(results, result)
		go func() {
			result <- sl.uploader.SendNow(context.Background(), request, true)
		}()
	}
	return results
}

// Stop discards all buffered and queued logs and ignores further log calls until Start
func (sl *ServerLogger) Stop() {
	sl.mutex.Lock()
	sl.stopped = true
	sl.mutex.Unlock()

	// reset buffer first, so results of requests discarded from the queue are ignored
	sl.buffer.Reset()
	sl.uploader.ResetQueue()
	sl.logger.Infof("stopped")
}

// Start resumes accepting log calls after Stop
func (sl *ServerLogger) Start() {
	sl.mutex.Lock()
	defer sl.mutex.Unlock()
	if sl.stopped {
		sl.stopped = false
		sl.logger.Infof("started")
	}
}

// IsStopped checks whether log calls are being ignored
func (sl *ServerLogger) IsStopped() bool {
	sl.mutex.Lock()
	defer sl.mutex.Unlock()
	return sl.stopped
}

// SetAccessToken replaces the token used by batches flushed from now on
func (sl *ServerLogger) SetAccessToken(token string) {
	sl.mutex.Lock()
	defer sl.mutex.Unlock()
	sl.accessToken = token
}

// AccessToken returns the current token
func (sl *ServerLogger) AccessToken() string {
	sl.mutex.Lock()
	defer sl.mutex.Unlock()
	return sl.accessToken
}

// Uploader returns the uploader used by this logger
func (sl *ServerLogger) Uploader() *uploader.Uploader {
	return sl.uploader
}

// Buffer returns the batch buffer of this logger
func (sl *ServerLogger) Buffer() *logbuffer.LogBuffer {
	return sl.buffer
}

// Close flushes everything instantly, waits up to the given timeout for results and releases the store if owned
func (sl *ServerLogger) Close(timeout time.Duration) error {
	results := sl.SendAllLogsInstantly()
	deadline := time.After(timeout)
	failed := 0
waitLoop:
	for i, result := range results {
		select {
		case err := <-result:
			if err != nil {
				failed++
			}
		case <-deadline:
			sl.logger.Warnf("timeout flushing logs on close, unfinished=%d", len(results)-i)
			failed += len(results) - i
			break waitLoop
		}
	}
	if sl.ownStore != nil {
		if err := sl.ownStore.Close(); err != nil {
			return fmt.Errorf("failed to close store: %w", err)
		}
	}
	if failed > 0 {
		return fmt.Errorf("failed to deliver %d of %d requests on close", failed, len(results))
	}
	return nil
}

func (sl *ServerLogger) newRequest(traces []base.Trace) base.SendLogRequest {
	return base.LogRequest{
		App:    sl.appInfo,
		Traces: traces,
	}.WithToken(sl.AccessToken())
}

func (sl *ServerLogger) handleFatal(status int) {
	sl.logger.Errorf("halt delivery for status %d", status)
	sl.metrics.fatalStops.Inc()
	sl.Stop()
	if sl.onFatal != nil {
		sl.onFatal(status)
	}
}

func (sl *ServerLogger) logLocally(level base.LogLevel, message string, details interface{}) {
	switch level {
	case base.LevelError:
		sl.logger.Errorf("%s: %v", message, details)
	case base.LevelWarn:
		sl.logger.Warnf("%s: %v", message, details)
	default:
		sl.logger.Infof("%s: %v", message, details)
	}
}

func newStoreFromConfig(parentLogger logger.Logger, config *bconfig.LoggerConfig) (base.RequestStore, error) {
	if config.Storage.Value == nil {
		return smemory.NewMemoryStore(), nil
	}
	store, err := config.Storage.Value.NewStore(parentLogger)
	if err != nil {
		return nil, fmt.Errorf("failed to create store: %w", err)
	}
	return store, nil
}
