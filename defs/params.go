package defs

import (
	"time"
)

var (
	// MaxLogSize defines the max serialized size in bytes of a single trace and of a whole batch (one request)
	//
	// The value is kept conservatively below the payload limit of the telemetry endpoint
	MaxLogSize = 14500

	// DefaultUploadDebounce is how long to wait after a log call before flushing the current batch
	//
	// Rapid successive log calls within the interval are coalesced into the same request
	DefaultUploadDebounce = 4000 * time.Millisecond
)

var (
	// UploaderMaxAttempts is the max numbers of attempts to deliver one request, including the first
	UploaderMaxAttempts = 10

	// UploaderStartingBackoff is the delay before the 2nd attempt, doubled for every further attempt
	UploaderStartingBackoff = 200 * time.Millisecond

	// UploaderMaxBackoff is the ceiling of the delay between two attempts
	UploaderMaxBackoff = 15 * time.Second

	// UploaderRetryAfterPollInterval is the granularity to re-check an active Retry-After deadline
	UploaderRetryAfterPollInterval = 30 * time.Second

	// UploaderHTTPTimeout is the timeout of a single POST request
	UploaderHTTPTimeout = 30 * time.Second

	// TeardownFlushTimeout is how long to wait for the final best-effort flush on shutdown
	TeardownFlushTimeout = 5 * time.Second
)

// EnableTestMode turns on test mode with very short timeout and minimal retry delay
func EnableTestMode() {
	DefaultUploadDebounce = 10 * time.Millisecond
	UploaderStartingBackoff = 1 * time.Millisecond
	UploaderMaxBackoff = 10 * time.Millisecond
	UploaderRetryAfterPollInterval = 10 * time.Millisecond
	UploaderHTTPTimeout = 1 * time.Second
	TeardownFlushTimeout = 1 * time.Second
}
