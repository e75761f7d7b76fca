package clientlog

import (
	"errors"
	"testing"

	"github.com/relex/client-logger/base"
	"github.com/relex/gotils/logger"
	"github.com/stretchr/testify/assert"
)

func TestDefaultSecondaryLoggerDetails(t *testing.T) {
	plain := &defaultSecondaryLogger{logger: logger.Root()}
	assert.Equal(t, map[string]int{"a": 1}, plain.formatDetails(map[string]int{"a": 1}))
	assert.Equal(t, "boom", plain.formatDetails(errors.New("boom")))

	stringified := &defaultSecondaryLogger{logger: logger.Root(), stringify: true}
	assert.Equal(t, `{"a":"<b>"}`, stringified.formatDetails(map[string]string{"a": "<b>"}))
	unserializable := make(chan int)
	assert.Equal(t, unserializable, stringified.formatDetails(unserializable))
}

func TestDefaultSecondaryLoggerLevels(t *testing.T) {
	sl := NewDefaultSecondaryLogger(logger.Root(), false)
	for _, level := range []base.LogLevel{base.LevelLog, base.LevelDebug, base.LevelInfo, base.LevelWarn, base.LevelError} {
		assert.NotPanics(t, func() { sl.Log(level, "message", nil) })
	}
}
