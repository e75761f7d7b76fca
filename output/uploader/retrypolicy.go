package uploader

import (
	"net/http"
	"time"

	"github.com/relex/client-logger/base"
	"github.com/relex/client-logger/defs"
	"github.com/relex/client-logger/util"
)

// RetryPolicy decides whether and when a failed request is attempted again
type RetryPolicy struct {
	MaxAttempts   int           // including the first attempt
	StartingDelay time.Duration // before the 2nd attempt
	MaxDelay      time.Duration
}

// DefaultRetryPolicy returns the policy from defs, which may be shortened by test mode
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{
		MaxAttempts:   defs.UploaderMaxAttempts,
		StartingDelay: defs.UploaderStartingBackoff,
		MaxDelay:      defs.UploaderMaxBackoff,
	}
}

// Delay returns the wait before the given attempt (1-based), zero for the first attempt
func (policy RetryPolicy) Delay(attempt int) time.Duration {
	if attempt <= 1 {
		return 0
	}
	delay := policy.StartingDelay
	for i := 2; i < attempt; i++ {
		delay *= 2
		if delay >= policy.MaxDelay {
			return policy.MaxDelay
		}
	}
	if delay > policy.MaxDelay {
		return policy.MaxDelay
	}
	return delay
}

// ShouldRetry checks whether the error from an attempt is transient, only while online
func (policy RetryPolicy) ShouldRetry(err error, online bool) bool {
	if err == nil || !online {
		return false
	}
	if status := base.StatusOf(err); status != 0 {
		return base.IsRetriableStatus(status)
	}
	return util.IsNetworkError(err)
}

// ShouldPersist checks whether a request which finally failed with the error should be saved for later delivery
//
// Transient statuses, 401 (token may be renewed) and network errors are saved; anything else is dropped
func ShouldPersist(err error) bool {
	if err == nil {
		return false
	}
	if status := base.StatusOf(err); status != 0 {
		return base.IsRetriableStatus(status) || status == http.StatusUnauthorized
	}
	return util.IsNetworkError(err)
}
