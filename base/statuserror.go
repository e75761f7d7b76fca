package base

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"
)

// StatusError is returned for a completed HTTP exchange with a non-2xx status
type StatusError struct {
	StatusCode int
	Header     http.Header
	Body       string
}

func (err *StatusError) Error() string {
	if err.Body == "" {
		return fmt.Sprintf("got a status %d", err.StatusCode)
	}
	return fmt.Sprintf("got a status %d with body %s", err.StatusCode, err.Body)
}

// StatusOf returns the HTTP status carried by the error chain, or 0 if there is none
func StatusOf(err error) int {
	var statusErr *StatusError
	if errors.As(err, &statusErr) {
		return statusErr.StatusCode
	}
	return 0
}

// IsFatalStatus checks if the status means the endpoint will never accept our logs (401, 403, 404)
func IsFatalStatus(status int) bool {
	switch status {
	case http.StatusUnauthorized, http.StatusForbidden, http.StatusNotFound:
		return true
	default:
		return false
	}
}

// IsRetriableStatus checks if the status is transient (408, 429, 500, 503, 504)
func IsRetriableStatus(status int) bool {
	switch status {
	case http.StatusRequestTimeout, http.StatusTooManyRequests, http.StatusInternalServerError,
		http.StatusServiceUnavailable, http.StatusGatewayTimeout:
		return true
	default:
		return false
	}
}

// ParseRetryAfter reads the Retry-After header as delay seconds or as HTTP date
//
// Returns false if the header is absent or invalid
func ParseRetryAfter(header http.Header, now time.Time) (time.Duration, bool) {
	if header == nil {
		return 0, false
	}
	value := strings.TrimSpace(header.Get("Retry-After"))
	if value == "" {
		return 0, false
	}
	if seconds, err := strconv.ParseFloat(value, 64); err == nil {
		if seconds < 0 {
			return 0, false
		}
		return time.Duration(seconds * float64(time.Second)), true
	}
	if at, err := http.ParseTime(value); err == nil {
		delay := at.Sub(now)
		if delay < 0 {
			delay = 0
		}
		return delay, true
	}
	return 0, false
}
