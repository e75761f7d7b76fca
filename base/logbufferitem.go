package base

import (
	"fmt"
)

// LogBufferItem is a batch of traces awaiting upload as one request
//
// Size is always the sum of CalculateSize of all traces, in insertion order
type LogBufferItem struct {
	Size   int
	Traces []Trace
}

// NewLogBufferItem creates a batch holding only the given trace
func NewLogBufferItem(trace Trace, size int) *LogBufferItem {
	return &LogBufferItem{
		Size:   size,
		Traces: []Trace{trace},
	}
}

// CanAppend checks if a trace of the given size still fits into the batch
func (item *LogBufferItem) CanAppend(size int, maxSize int) bool {
	return item.Size+size <= maxSize
}

// Append adds the trace at the end
func (item *LogBufferItem) Append(trace Trace, size int) {
	item.Traces = append(item.Traces, trace)
	item.Size += size
}

func (item *LogBufferItem) String() string {
	return fmt.Sprintf("traces=%d size=%d", len(item.Traces), item.Size)
}
