package base

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

var testClientTime = time.Date(2022, 7, 1, 8, 30, 0, 123000000, time.FixedZone("EEST", 3*3600))

func TestNewTrace(t *testing.T) {
	msg := NewLogMessage(testClientTime, "cid", OriginApp{}, "hello", nil)
	trace := NewTrace("t", LevelLog, msg)

	assert.Equal(t, "t", trace.Topic)
	assert.Equal(t, "LOG", trace.Level)
	assert.Equal(t, `{"clientTime":"2022-07-01T05:30:00.123Z","clientId":"cid","message":"hello"}`, trace.Message)
}

func TestNewTraceWithOriginAndDetails(t *testing.T) {
	origin := OriginApp{Name: "parent", Version: "2.0", ID: "pid"}
	msg := NewLogMessage(testClientTime, "cid", origin, "<b>", map[string]int{"n": 1})
	trace := NewTrace("t", LevelWarn, msg)

	var decoded map[string]interface{}
	if !assert.NoError(t, json.Unmarshal([]byte(trace.Message), &decoded)) {
		return
	}
	assert.Equal(t, "WARN", trace.Level)
	assert.Equal(t, "parent", decoded["originAppName"])
	assert.Equal(t, "2.0", decoded["originAppVersion"])
	assert.Equal(t, "pid", decoded["originAppId"])
	assert.Equal(t, map[string]interface{}{"n": 1.0}, decoded["details"])
	assert.True(t, strings.Contains(trace.Message, `"message":"<b>"`))
}

func TestNewTraceUnserializableDetails(t *testing.T) {
	msg := NewLogMessage(testClientTime, "cid", OriginApp{}, "chan", map[string]interface{}{"c": make(chan int)})
	trace := NewTrace("t", LevelError, msg)

	var decoded map[string]interface{}
	assert.NoError(t, json.Unmarshal([]byte(trace.Message), &decoded))
	assert.IsType(t, "", decoded["details"])
}

func TestNewLogMessageErrorDetails(t *testing.T) {
	msg := NewLogMessage(testClientTime, "cid", OriginApp{}, "failed", errors.New("boom"))
	assert.Equal(t, "boom", msg.Details)
}

func TestParseLogLevel(t *testing.T) {
	level, err := ParseLogLevel(" WARN ")
	assert.NoError(t, err)
	assert.Equal(t, LevelWarn, level)
	assert.Greater(t, LevelError.Rank(), LevelWarn.Rank())
	assert.Greater(t, LevelDebug.Rank(), LevelLog.Rank())

	_, err = ParseLogLevel("fatal")
	assert.Error(t, err)
	assert.False(t, LogLevel("trace").IsValid())
}
