// Package clock provides an injectable source of time, so that debounce, backoff and Retry-After waits can be driven
// by virtual time in tests
package clock

import (
	"time"
)

// Clock abstracts the parts of the time package used by flushing and delivery
type Clock interface {
	// Now returns the current time
	Now() time.Time

	// After returns a channel receiving the current time once d has elapsed. It receives immediately if d <= 0
	After(d time.Duration) <-chan time.Time

	// AfterFunc calls f once d has elapsed, returning a Timer that can cancel the call
	AfterFunc(d time.Duration, f func()) *Timer
}

// Timer is a scheduled callback created by Clock.AfterFunc
type Timer struct {
	stopFunc func() bool
}

// Stop cancels the callback. Returns false if it has already fired or been stopped
func (t *Timer) Stop() bool {
	return t.stopFunc()
}

// Real returns a Clock backed by the time package
func Real() Clock {
	return realClock{}
}

type realClock struct{}

func (realClock) Now() time.Time {
	return time.Now()
}

func (realClock) After(d time.Duration) <-chan time.Time {
	return time.After(d)
}

func (realClock) AfterFunc(d time.Duration, f func()) *Timer {
	t := time.AfterFunc(d, f)
	return &Timer{stopFunc: t.Stop}
}
