package ttruncate

import (
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/relex/client-logger/base"
	"github.com/relex/client-logger/defs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testTime = time.Date(2022, 7, 1, 0, 0, 0, 0, time.UTC)

func decodeMessage(t *testing.T, trace *base.Trace) base.LogMessage {
	var msg base.LogMessage
	require.NoError(t, json.Unmarshal([]byte(trace.Message), &msg))
	return msg
}

func TestTruncateSmallMessage(t *testing.T) {
	tr := NewTruncator("t", defs.MaxLogSize)
	msg := base.NewLogMessage(testTime, "cid", base.OriginApp{}, "hello", map[string]string{"k": "v"})

	trace, stage := tr.Truncate(base.LevelInfo, msg)
	require.NotNil(t, trace)
	assert.Equal(t, Untouched, stage)
	assert.Equal(t, base.NewTrace("t", base.LevelInfo, msg), *trace)
}

func TestTruncateDetails(t *testing.T) {
	tr := NewTruncator("t", defs.MaxLogSize)
	details := map[string]string{"blob": strings.Repeat("x", 14600)}
	msg := base.NewLogMessage(testTime, "cid", base.OriginApp{}, "hello", details)
	original := base.NewTrace("t", base.LevelWarn, msg)
	require.Greater(t, base.CalculateSize(original), 14600)

	trace, stage := tr.Truncate(base.LevelWarn, msg)
	require.NotNil(t, trace)
	assert.Equal(t, DetailsTruncated, stage)
	assert.LessOrEqual(t, base.CalculateSize(*trace), defs.MaxLogSize)
	assert.LessOrEqual(t, base.CalculateSize(*trace), base.CalculateSize(original))
	assert.Equal(t, "WARN", trace.Level)

	decoded := decodeMessage(t, trace)
	assert.Equal(t, "hello", decoded.Message)
	assert.Equal(t, defs.TruncatedText, decoded.Details)

	// input untouched
	assert.Equal(t, details, msg.Details)
	assert.Len(t, details["blob"], 14600)
}

func TestTruncateMessage(t *testing.T) {
	tr := NewTruncator("t", defs.MaxLogSize)
	longMessage := strings.Repeat("é", 10000)
	msg := base.NewLogMessage(testTime, "cid", base.OriginApp{}, longMessage, nil)
	original := base.NewTrace("t", base.LevelError, msg)

	trace, stage := tr.Truncate(base.LevelError, msg)
	require.NotNil(t, trace)
	assert.Equal(t, MessageTruncated, stage)
	assert.LessOrEqual(t, base.CalculateSize(*trace), base.CalculateSize(original))

	decoded := decodeMessage(t, trace)
	assert.Equal(t, strings.Repeat("é", 150)+"... [[TRUNCATED]]", decoded.Message)
	assert.Equal(t, defs.TruncatedText, decoded.Details)
	assert.Equal(t, longMessage, msg.Message)
}

func TestTruncateUndeliverable(t *testing.T) {
	tr := NewTruncator("t", 100)
	msg := base.NewLogMessage(testTime, "cid", base.OriginApp{}, strings.Repeat("a", 500), nil)

	trace, stage := tr.Truncate(base.LevelLog, msg)
	assert.Nil(t, trace)
	assert.Equal(t, Undeliverable, stage)
	assert.Equal(t, "undeliverable", stage.String())
}

func TestTruncateIdempotent(t *testing.T) {
	tr := NewTruncator("t", defs.MaxLogSize)
	msg := base.NewLogMessage(testTime, "cid", base.OriginApp{}, "hello", strings.Repeat("y", 20000))

	first, _ := tr.Truncate(base.LevelInfo, msg)
	second, _ := tr.Truncate(base.LevelInfo, msg)
	assert.Equal(t, first, second)
}
