package smemory

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMemoryStore(t *testing.T) {
	store := NewMemoryStore()

	_, found, err := store.Get("k")
	assert.NoError(t, err)
	assert.False(t, found)

	assert.NoError(t, store.Set("k", "v1"))
	assert.NoError(t, store.Set("k", "v2"))
	value, found, err := store.Get("k")
	assert.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, "v2", value)

	assert.NoError(t, store.Remove("k"))
	assert.NoError(t, store.Remove("k"))
	_, found, _ = store.Get("k")
	assert.False(t, found)
	assert.NoError(t, store.Close())
}
