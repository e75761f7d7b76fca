package sredis

import (
	"testing"
	"time"

	"github.com/relex/client-logger/base/bconfig"
	"github.com/relex/client-logger/util"
	"github.com/relex/gotils/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRedisStoreConfig(t *testing.T) {
	cfg := &Config{}
	require.NoError(t, util.UnmarshalYamlString(`
type: redis
address: localhost:6379
db: 2
keyPrefix: "myapp:"
timeout: 300ms
`, cfg))
	assert.Equal(t, bconfig.Header{Type: "redis"}, cfg.Header)
	assert.Equal(t, 300*time.Millisecond, cfg.Timeout)
	assert.Equal(t, "myapp:", cfg.KeyPrefix)
	assert.NoError(t, cfg.VerifyConfig())

	assert.Error(t, (&Config{}).VerifyConfig())
	assert.Error(t, (&Config{Address: "localhost:6379", DB: -1}).VerifyConfig())
}

func TestRedisStoreUnreachable(t *testing.T) {
	cfg := &Config{Address: "127.0.0.1:1", Timeout: 200 * time.Millisecond}
	store, err := cfg.NewStore(logger.Root())
	require.NoError(t, err)
	defer store.Close()

	_, found, err := store.Get("k")
	assert.Error(t, err)
	assert.False(t, found)
	assert.True(t, util.IsNetworkError(err))
	assert.Error(t, store.Set("k", "v"))
	assert.Error(t, store.Remove("k"))
}
