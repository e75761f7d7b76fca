// Package ttruncate provides the truncation cascade for traces exceeding the max request size
package ttruncate

import (
	"github.com/relex/client-logger/base"
	"github.com/relex/client-logger/defs"
	"github.com/relex/client-logger/util"
)

// Stage tells how far a trace had to be degraded to fit
type Stage int

// Truncation stages in the order they are tried
const (
	Untouched Stage = iota
	DetailsTruncated
	MessageTruncated
	Undeliverable
)

func (stage Stage) String() string {
	switch stage {
	case Untouched:
		return "untouched"
	case DetailsTruncated:
		return "details truncated"
	case MessageTruncated:
		return "details and message truncated"
	case Undeliverable:
		return "undeliverable"
	default:
		return "unknown"
	}
}

// Truncator degrades oversized log messages until their traces fit in maxSize
type Truncator struct {
	topic   string
	maxSize int
}

// NewTruncator creates a Truncator for traces of the given topic
func NewTruncator(topic string, maxSize int) *Truncator {
	return &Truncator{
		topic:   topic,
		maxSize: maxSize,
	}
}

// MaxSize returns the max trace size in bytes
func (tr *Truncator) MaxSize() int {
	return tr.maxSize
}

// Truncate builds the trace of msg, replacing details and then clipping message if it's still too large
//
// The given msg is not modified. Returns nil and Undeliverable if the trace cannot fit even after clipping.
func (tr *Truncator) Truncate(level base.LogLevel, msg base.LogMessage) (*base.Trace, Stage) {
	trace := base.NewTrace(tr.topic, level, msg)
	if base.CalculateSize(trace) <= tr.maxSize {
		return &trace, Untouched
	}

	degraded := msg
	degraded.Details = defs.TruncatedText
	trace = base.NewTrace(tr.topic, level, degraded)
	if base.CalculateSize(trace) <= tr.maxSize {
		return &trace, DetailsTruncated
	}

	degraded.Message = util.ClipString(degraded.Message, defs.TruncatedMessageLength) + "... " + defs.TruncatedText
	trace = base.NewTrace(tr.topic, level, degraded)
	if base.CalculateSize(trace) <= tr.maxSize {
		return &trace, MessageTruncated
	}

	return nil, Undeliverable
}
