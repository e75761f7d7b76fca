// Package uploader provides the delivery queue which sends requests to one endpoint, one at a time, with retries and
// persistence of requests which cannot be delivered now
package uploader

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/relex/client-logger/base"
	"github.com/relex/client-logger/defs"
	"github.com/relex/client-logger/util/clock"
	"github.com/relex/gotils/logger"
)

var (
	// ErrOffline is returned by SendNow when the runtime is offline and the request has been saved instead
	ErrOffline = errors.New("offline, request saved for later delivery")

	// ErrQueueReset completes queued requests discarded by ResetQueue
	ErrQueueReset = errors.New("queue reset before delivery")
)

// Args contains the collaborators and settings of an Uploader
type Args struct {
	URL           string
	Transport     Transport
	Saved         *SavedRequests
	Clock         clock.Clock
	Online        func() bool // optional, always online by default
	Policy        RetryPolicy
	MetricFactory *base.MetricFactory
	Debug         bool // log every attempt at info level
}

type queueItem struct {
	request base.SendLogRequest
	result  chan error
}

// Uploader is a FIFO queue of requests to one URL with at most one request in flight
//
// Each queued request is attempted with backoff while the error is transient. A Retry-After from the server delays
// all further attempts queue-wide. After every successful delivery, saved requests are queued again.
type Uploader struct {
	logger     logger.Logger
	url        string
	transport  Transport
	saved      *SavedRequests
	clock      clock.Clock
	online     func() bool
	policy     RetryPolicy
	debug      bool
	metrics    uploaderMetrics
	mutex      sync.Mutex
	queue      []*queueItem
	inFlight   bool
	retryAfter time.Time // zero if none
}

// NewUploader creates an Uploader
func NewUploader(parentLogger logger.Logger, args Args) *Uploader {
	if args.Clock == nil {
		args.Clock = clock.Real()
	}
	if args.Online == nil {
		args.Online = func() bool { return true }
	}
	if args.Policy.MaxAttempts <= 0 {
		args.Policy = DefaultRetryPolicy()
	}
	if args.MetricFactory == nil {
		args.MetricFactory = base.NewMetricFactory("clientlogger_", nil, nil, nil)
	}
	return &Uploader{
		logger:    parentLogger.WithFields(logger.Fields{defs.LabelComponent: "Uploader", defs.LabelURL: args.URL}),
		url:       args.URL,
		transport: args.Transport,
		saved:     args.Saved,
		clock:     args.Clock,
		online:    args.Online,
		policy:    args.Policy,
		debug:     args.Debug,
		metrics:   newUploaderMetrics(args.MetricFactory, args.URL),
	}
}

// URL returns the destination
func (u *Uploader) URL() string {
	return u.url
}

// Enqueue appends the request to the queue and starts draining
//
// The returned channel receives nil once the request is delivered, or the final error after all attempts
func (u *Uploader) Enqueue(request base.SendLogRequest) <-chan error {
	item := &queueItem{
		request: request,
		result:  make(chan error, 1),
	}

	u.mutex.Lock()
	defer u.mutex.Unlock()

	u.queue = append(u.queue, item)
	u.metrics.queuedRequests.Inc()
	u.logger.Debugf("enqueue request: %s, queue=%d inFlight=%t", request, len(u.queue), u.inFlight)
	u.drainLocked()
	return item.result
}

// SendNow sends the request once, bypassing the queue, Retry-After and backoff
//
// If offline, the request is saved and ErrOffline is returned without sending. If saveOnFailure is set, a failed
// request is saved in the same cases a queued request would be.
func (u *Uploader) SendNow(ctx context.Context, request base.SendLogRequest, saveOnFailure bool) error {
	if !u.online() {
		u.persist(request.LogRequest)
		return ErrOffline
	}
	err := u.attempt(ctx, request)
	if err != nil {
		u.logger.Warnf("error sending request instantly: %s", err.Error())
		if saveOnFailure && ShouldPersist(err) {
			u.persist(request.LogRequest)
		}
		return err
	}
	u.metrics.OnDelivered(request)
	return nil
}

// SendAllNow takes all queued requests and sends each of them instantly on its own goroutine
//
// It returns without waiting. Each returned channel receives the result of one request, which is also passed to the
// original Enqueue caller.
func (u *Uploader) SendAllNow() []<-chan error {
	u.mutex.Lock()
	items := u.queue
	u.queue = nil
	u.metrics.queuedRequests.Sub(float64(len(items)))
	u.mutex.Unlock()

	u.logger.Infof("send all %d queued requests instantly", len(items))
	results := make([]<-chan error, 0, len(items))
	for _, item := range items {
		result := make(chan error, 1)
		results = append(results, result)
		go func(item *queueItem) {
			err := u.SendNow(context.Background(), item.request, true)
			item.result <- err
			result <- err
		}(item)
	}
	return results
}

// ResetQueue discards all queued requests; the one in flight, if any, is not affected
func (u *Uploader) ResetQueue() {
	u.mutex.Lock()
	items := u.queue
	u.queue = nil
	u.metrics.queuedRequests.Sub(float64(len(items)))
	u.mutex.Unlock()

	if len(items) > 0 {
		u.logger.Infof("reset queue, discard %d requests", len(items))
	}
	u.metrics.discardedTotal.Add(float64(len(items)))
	for _, item := range items {
		item.result <- ErrQueueReset
	}
}

// ReplaySaved takes all saved requests and queues them with the given token, returning how many were queued
func (u *Uploader) ReplaySaved(accessToken string) int {
	if u.saved == nil {
		return 0
	}
	requests := u.saved.TakeAll()
	if len(requests) == 0 {
		return 0
	}
	u.logger.Infof("replay %d saved requests", len(requests))
	u.metrics.replayedTotal.Add(float64(len(requests)))
	for _, request := range requests {
		u.Enqueue(request.WithToken(accessToken))
	}
	return len(requests)
}

// QueueLength returns the numbers of queued requests, excluding the one in flight
func (u *Uploader) QueueLength() int {
	u.mutex.Lock()
	defer u.mutex.Unlock()
	return len(u.queue)
}

// IsInFlight checks whether a queued request is being delivered
func (u *Uploader) IsInFlight() bool {
	u.mutex.Lock()
	defer u.mutex.Unlock()
	return u.inFlight
}

// RetryAfter returns the time before which no queued request will be sent, or zero
func (u *Uploader) RetryAfter() time.Time {
	u.mutex.Lock()
	defer u.mutex.Unlock()
	return u.retryAfter
}

func (u *Uploader) drainLocked() {
	if u.inFlight || len(u.queue) == 0 {
		return
	}
	u.inFlight = true
	go u.deliverNext()
}

func (u *Uploader) deliverNext() {
	u.waitRetryAfter()

	u.mutex.Lock()
	if len(u.queue) == 0 { // reset or sent by SendAllNow while waiting
		u.inFlight = false
		u.mutex.Unlock()
		return
	}
	item := u.queue[0]
	u.queue[0] = nil
	u.queue = u.queue[1:]
	u.metrics.queuedRequests.Dec()
	u.mutex.Unlock()

	err := u.sendWithRetry(item.request)
	if err == nil {
		u.metrics.OnDelivered(item.request)
		u.ReplaySaved(item.request.AccessToken)
	} else {
		u.metrics.failedTotal.Inc()
		u.logger.Warnf("error sending request: %s: %s", item.request, err.Error())
		if ShouldPersist(err) {
			u.persist(item.request.LogRequest)
		}
	}
	item.result <- err

	u.mutex.Lock()
	defer u.mutex.Unlock()
	u.inFlight = false
	u.drainLocked()
}

func (u *Uploader) sendWithRetry(request base.SendLogRequest) error {
	var err error
	for attempt := 1; attempt <= u.policy.MaxAttempts; attempt++ {
		if attempt > 1 {
			delay := u.policy.Delay(attempt)
			u.logger.Debugf("retry attempt %d after %s: %s", attempt, delay, err.Error())
			<-u.clock.After(delay)
			u.waitRetryAfter()
		}
		err = u.attempt(context.Background(), request)
		if err == nil {
			return nil
		}
		if !u.policy.ShouldRetry(err, u.online()) {
			return err
		}
	}
	return err
}

func (u *Uploader) attempt(ctx context.Context, request base.SendLogRequest) error {
	u.metrics.attemptsTotal.Inc()
	if u.debug {
		u.logger.Infof("sending request: %s", request)
	}
	header, err := u.transport.Post(ctx, request)
	u.observeRetryAfter(header)
	if err != nil {
		u.metrics.OnAttemptError(err)
	}
	return err
}

func (u *Uploader) observeRetryAfter(header http.Header) {
	now := u.clock.Now()
	delay, ok := base.ParseRetryAfter(header, now)
	if !ok {
		return
	}
	u.mutex.Lock()
	u.retryAfter = now.Add(delay)
	u.mutex.Unlock()
	u.logger.Infof("server asked to retry after %s", delay)
}

// waitRetryAfter blocks until the current Retry-After deadline passes, re-checking at least every poll interval
func (u *Uploader) waitRetryAfter() {
	for {
		u.mutex.Lock()
		deadline := u.retryAfter
		u.mutex.Unlock()

		wait := deadline.Sub(u.clock.Now())
		if deadline.IsZero() || wait <= 0 {
			return
		}
		if wait > defs.UploaderRetryAfterPollInterval {
			wait = defs.UploaderRetryAfterPollInterval
		}
		<-u.clock.After(wait)
	}
}

func (u *Uploader) persist(request base.LogRequest) {
	if u.saved == nil {
		return
	}
	if err := u.saved.Append(request); err != nil {
		u.logger.Errorf("error saving request for later delivery: %s", err.Error())
		return
	}
	u.metrics.persistedTotal.Inc()
	u.logger.Infof("saved request for later delivery: traces=%d", len(request.Traces))
}
