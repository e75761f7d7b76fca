package base

import (
	"github.com/relex/client-logger/util"
)

// CalculateSize returns the number of bytes the value takes on the wire as JSON
//
// Multi-byte UTF-8 characters count with their full encoded length, not as one character. Values that can't be
// serialized count as zero.
func CalculateSize(value interface{}) int {
	data, err := util.MarshalJSON(value)
	if err != nil {
		return 0
	}
	return len(data)
}

// CalculateBufferSize sums up the sizes of all traces
func CalculateBufferSize(traces []Trace) int {
	size := 0
	for i := range traces {
		size += CalculateSize(traces[i])
	}
	return size
}
