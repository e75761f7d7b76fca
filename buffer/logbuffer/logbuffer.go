// Package logbuffer provides the batch buffer which accumulates traces into size-bounded requests and flushes them
// after a debounce interval
package logbuffer

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/relex/client-logger/base"
	"github.com/relex/client-logger/defs"
	"github.com/relex/client-logger/util/clock"
	"github.com/relex/gotils/logger"
)

// ErrTraceTooLarge is returned by Add for a trace which alone exceeds the max batch size
var ErrTraceTooLarge = errors.New("trace exceeds the max size of a batch")

// Sender accepts flushed batches for delivery
//
// Enqueue must fix the delivery order before returning; the returned channel receives exactly one result
type Sender interface {
	Enqueue(request base.SendLogRequest) <-chan error
}

// Args contains the collaborators and settings of a LogBuffer
type Args struct {
	Sender        Sender
	NewRequest    func(traces []base.Trace) base.SendLogRequest // builds the request of a flushed batch
	Clock         clock.Clock
	Debounce      time.Duration
	MaxSize       int
	MetricFactory *base.MetricFactory
	OnError       func(err error)  // called for every failed batch, optional
	OnFatal       func(status int) // called for 401, 403 and 404, optional
}

// LogBuffer is an ordered list of batches awaiting flush
//
// Batches are handed to the Sender strictly in FIFO order, and traces within a batch keep the order they were added.
type LogBuffer struct {
	logger     logger.Logger
	args       Args
	mutex      sync.Mutex
	items      []*base.LogBufferItem
	timer      *clock.Timer
	timerSeq   uint64
	generation uint64 // bumped by Reset to ignore results of batches flushed before
	metrics    bufferMetrics
}

type bufferMetrics struct {
	addedTraces     prometheus.Counter
	flushedBatches  prometheus.Counter
	flushedTraces   prometheus.Counter
	failedBatches   prometheus.Counter
	discardedTraces prometheus.Counter
	pendingBatches  prometheus.Gauge
}

// NewLogBuffer creates a LogBuffer
func NewLogBuffer(parentLogger logger.Logger, args Args) *LogBuffer {
	if args.Clock == nil {
		args.Clock = clock.Real()
	}
	if args.Debounce <= 0 {
		args.Debounce = defs.DefaultUploadDebounce
	}
	if args.MaxSize <= 0 {
		args.MaxSize = defs.MaxLogSize
	}
	if args.MetricFactory == nil {
		args.MetricFactory = base.NewMetricFactory("clientlogger_", nil, nil, nil)
	}
	mfactory := args.MetricFactory.NewSubFactory("buffer_", nil, nil)
	return &LogBuffer{
		logger: parentLogger.WithField(defs.LabelComponent, "LogBuffer"),
		args:   args,
		metrics: bufferMetrics{
			addedTraces:     mfactory.AddOrGetCounter("added_traces_total", "Numbers of traces added to buffer", nil, nil),
			flushedBatches:  mfactory.AddOrGetCounter("flushed_batches_total", "Numbers of batches handed over for delivery", nil, nil),
			flushedTraces:   mfactory.AddOrGetCounter("flushed_traces_total", "Numbers of traces handed over for delivery", nil, nil),
			failedBatches:   mfactory.AddOrGetCounter("failed_batches_total", "Numbers of batches failed to deliver", nil, nil),
			discardedTraces: mfactory.AddOrGetCounter("discarded_traces_total", "Numbers of buffered traces discarded by reset", nil, nil),
			pendingBatches:  mfactory.AddOrGetGauge("pending_batches", "Numbers of batches in buffer", nil, nil),
		},
	}
}

// Add appends the trace to the last batch, or to a new batch if it doesn't fit
//
// A new batch created because the last one is full triggers an immediate flush; otherwise the debounce timer is
// armed if it isn't already.
func (buf *LogBuffer) Add(trace base.Trace, size int) error {
	if size > buf.args.MaxSize {
		return fmt.Errorf("%w: %d > %d", ErrTraceTooLarge, size, buf.args.MaxSize)
	}
	buf.metrics.addedTraces.Inc()

	buf.mutex.Lock()
	defer buf.mutex.Unlock()

	count := len(buf.items)
	if count > 0 && buf.items[count-1].CanAppend(size, buf.args.MaxSize) {
		buf.items[count-1].Append(trace, size)
		buf.flushLocked(false)
		return nil
	}

	buf.items = append(buf.items, base.NewLogBufferItem(trace, size))
	buf.metrics.pendingBatches.Inc()
	buf.flushLocked(count > 0)
	return nil
}

// Flush sends the oldest batch now if immediate, otherwise arms the debounce timer
func (buf *LogBuffer) Flush(immediate bool) {
	buf.mutex.Lock()
	defer buf.mutex.Unlock()
	buf.flushLocked(immediate)
}

// TakeAll removes and returns all batches without sending them, for a final flush by other means
func (buf *LogBuffer) TakeAll() []*base.LogBufferItem {
	buf.mutex.Lock()
	defer buf.mutex.Unlock()

	items := buf.items
	buf.items = nil
	buf.stopTimerLocked()
	buf.metrics.pendingBatches.Sub(float64(len(items)))
	return items
}

// Reset discards all batches and ignores the results of batches already handed over
func (buf *LogBuffer) Reset() {
	buf.mutex.Lock()
	defer buf.mutex.Unlock()

	discarded := 0
	for _, item := range buf.items {
		discarded += len(item.Traces)
	}
	if discarded > 0 {
		buf.logger.Infof("discard %d batches with %d traces", len(buf.items), discarded)
	}
	buf.metrics.discardedTraces.Add(float64(discarded))
	buf.metrics.pendingBatches.Sub(float64(len(buf.items)))
	buf.items = nil
	buf.generation++
	buf.stopTimerLocked()
}

// Len returns the numbers of batches in buffer
func (buf *LogBuffer) Len() int {
	buf.mutex.Lock()
	defer buf.mutex.Unlock()
	return len(buf.items)
}

// Items returns a copy of all batches in buffer
func (buf *LogBuffer) Items() []base.LogBufferItem {
	buf.mutex.Lock()
	defer buf.mutex.Unlock()

	items := make([]base.LogBufferItem, len(buf.items))
	for i, item := range buf.items {
		items[i] = base.LogBufferItem{
			Size:   item.Size,
			Traces: append([]base.Trace(nil), item.Traces...),
		}
	}
	return items
}

// IsTimerArmed checks whether a debounce flush is scheduled
func (buf *LogBuffer) IsTimerArmed() bool {
	buf.mutex.Lock()
	defer buf.mutex.Unlock()
	return buf.timer != nil
}

func (buf *LogBuffer) flushLocked(immediate bool) {
	if len(buf.items) == 0 {
		buf.stopTimerLocked()
		return
	}

	if !immediate {
		if buf.timer == nil {
			buf.timerSeq++
			seq := buf.timerSeq
			buf.timer = buf.args.Clock.AfterFunc(buf.args.Debounce, func() { buf.onTimer(seq) })
		}
		return
	}

	buf.stopTimerLocked()
	head := buf.items[0]
	buf.items[0] = nil
	buf.items = buf.items[1:]
	buf.metrics.pendingBatches.Dec()
	buf.metrics.flushedBatches.Inc()
	buf.metrics.flushedTraces.Add(float64(len(head.Traces)))

	buf.logger.Debugf("flush batch: %s", head)
	result := buf.args.Sender.Enqueue(buf.args.NewRequest(head.Traces))
	go buf.awaitResult(buf.generation, head, result)
}

func (buf *LogBuffer) onTimer(seq uint64) {
	buf.mutex.Lock()
	defer buf.mutex.Unlock()

	if buf.timer == nil || seq != buf.timerSeq {
		return
	}
	buf.timer = nil
	buf.flushLocked(true)
}

func (buf *LogBuffer) stopTimerLocked() {
	if buf.timer != nil {
		buf.timer.Stop()
		buf.timer = nil
	}
}

func (buf *LogBuffer) awaitResult(generation uint64, item *base.LogBufferItem, result <-chan error) {
	err := <-result
	if buf.isStale(generation) {
		buf.logger.Debugf("ignore result of batch flushed before reset (%s): %v", item, err)
		return
	}

	if err != nil {
		buf.metrics.failedBatches.Inc()
		buf.logger.Warnf("error sending batch (%s): %s", item, err.Error())
		if buf.args.OnError != nil {
			buf.args.OnError(err)
		}
		if status := base.StatusOf(err); base.IsFatalStatus(status) {
			if buf.args.OnFatal != nil {
				buf.args.OnFatal(status)
			}
			return
		}
	}

	buf.mutex.Lock()
	defer buf.mutex.Unlock()
	if generation != buf.generation {
		return
	}
	buf.flushLocked(false)
}

func (buf *LogBuffer) isStale(generation uint64) bool {
	buf.mutex.Lock()
	defer buf.mutex.Unlock()
	return generation != buf.generation
}
