package uploader

import (
	"testing"

	"github.com/relex/client-logger/defs"
	"github.com/relex/client-logger/storage/smemory"
	"github.com/relex/gotils/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSavedRequests(t *testing.T) {
	store := smemory.NewMemoryStore()
	saved := NewSavedRequests(logger.Root(), store)
	assert.Empty(t, saved.Load())
	assert.Empty(t, saved.TakeAll())

	require.NoError(t, saved.Append(testRequest("secret", "a").LogRequest))
	require.NoError(t, saved.Append(testRequest("secret", "b").LogRequest))

	value, found, _ := store.Get(defs.SavedRequestsKey)
	assert.True(t, found)
	assert.NotContains(t, value, "secret")
	assert.Equal(t, `[{"app":{"appId":"t","appVersion":"1"},"traces":[{"topic":"t","level":"LOG","message":"a"}]},`+
		`{"app":{"appId":"t","appVersion":"1"},"traces":[{"topic":"t","level":"LOG","message":"b"}]}]`, value)

	requests := saved.TakeAll()
	require.Len(t, requests, 2)
	assert.Equal(t, "a", requests[0].Traces[0].Message)
	assert.Equal(t, "b", requests[1].Traces[0].Message)

	_, found, _ = store.Get(defs.SavedRequestsKey)
	assert.False(t, found)
}

func TestSavedRequestsMalformed(t *testing.T) {
	store := smemory.NewMemoryStore()
	require.NoError(t, store.Set(defs.SavedRequestsKey, `[{"app":`))
	saved := NewSavedRequests(logger.Root(), store)

	assert.Empty(t, saved.Load())
	assert.Empty(t, saved.TakeAll())

	// malformed content is replaced on the next save
	require.NoError(t, saved.Append(testRequest("secret", "a").LogRequest))
	assert.Len(t, saved.Load(), 1)
}
