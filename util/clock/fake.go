package clock

import (
	"sort"
	"sync"
	"time"
)

// FakeClock is a Clock for tests. Time stands still until Advance is called.
//
// AfterFunc callbacks run synchronously inside Advance, in deadline order. A callback may schedule new timers but must
// not call Advance itself.
type FakeClock struct {
	mutex         sync.Mutex
	current       time.Time
	waiters       []*fakeWaiter
	waitersChange *sync.Cond
}

type fakeWaiter struct {
	deadline time.Time
	channel  chan time.Time // for After
	callback func()         // for AfterFunc
	stopped  bool
	fired    bool
}

// NewFake creates a FakeClock starting at the given time
func NewFake(initial time.Time) *FakeClock {
	c := &FakeClock{current: initial}
	c.waitersChange = sync.NewCond(&c.mutex)
	return c
}

// Now returns the fake current time
func (c *FakeClock) Now() time.Time {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	return c.current
}

// After registers a one-shot waiter. If d <= 0 the returned channel is ready immediately and nothing is registered
func (c *FakeClock) After(d time.Duration) <-chan time.Time {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	channel := make(chan time.Time, 1)
	if d <= 0 {
		channel <- c.current
		return channel
	}
	c.addLocked(&fakeWaiter{deadline: c.current.Add(d), channel: channel})
	return channel
}

// AfterFunc registers a callback. If d <= 0, f is called before AfterFunc returns
func (c *FakeClock) AfterFunc(d time.Duration, f func()) *Timer {
	if d <= 0 {
		f()
		return &Timer{stopFunc: func() bool { return false }}
	}

	c.mutex.Lock()
	defer c.mutex.Unlock()

	waiter := &fakeWaiter{deadline: c.current.Add(d), callback: f}
	c.addLocked(waiter)
	return &Timer{stopFunc: func() bool {
		c.mutex.Lock()
		defer c.mutex.Unlock()
		if waiter.stopped || waiter.fired {
			return false
		}
		waiter.stopped = true
		c.waitersChange.Broadcast()
		return true
	}}
}

// Advance moves the clock forward by d and fires every waiter whose deadline has been reached
func (c *FakeClock) Advance(d time.Duration) {
	c.mutex.Lock()
	c.current = c.current.Add(d)
	target := c.current
	c.mutex.Unlock()

	for {
		expired := c.collectExpired(target)
		if len(expired) == 0 {
			return
		}
		for _, w := range expired {
			if w.callback != nil {
				w.callback()
			} else {
				w.channel <- target
			}
		}
	}
}

// WaitForTimers blocks until at least n waiters are pending, i.e. registered but neither fired nor stopped
//
// It closes the race between a goroutine arming a timer and the test advancing the clock
func (c *FakeClock) WaitForTimers(n int) {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	for c.pendingLocked() < n {
		c.waitersChange.Wait()
	}
}

// PendingTimers returns the numbers of pending waiters
func (c *FakeClock) PendingTimers() int {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	return c.pendingLocked()
}

func (c *FakeClock) addLocked(w *fakeWaiter) {
	c.waiters = append(c.waiters, w)
	c.waitersChange.Broadcast()
}

func (c *FakeClock) pendingLocked() int {
	count := 0
	for _, w := range c.waiters {
		if !w.stopped && !w.fired {
			count++
		}
	}
	return count
}

func (c *FakeClock) collectExpired(target time.Time) []*fakeWaiter {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	var expired []*fakeWaiter
	remaining := c.waiters[:0]
	for _, w := range c.waiters {
		switch {
		case w.stopped:
		case w.deadline.After(target):
			remaining = append(remaining, w)
		default:
			w.fired = true
			expired = append(expired, w)
		}
	}
	for i := len(remaining); i < len(c.waiters); i++ {
		c.waiters[i] = nil
	}
	c.waiters = remaining

	sort.SliceStable(expired, func(i, j int) bool {
		return expired[i].deadline.Before(expired[j].deadline)
	})
	if len(expired) > 0 {
		c.waitersChange.Broadcast()
	}
	return expired
}
