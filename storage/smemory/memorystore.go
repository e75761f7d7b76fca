// Package smemory provides a RequestStore in process memory, lost on exit
package smemory

import (
	"sync"

	"github.com/relex/client-logger/base"
	"github.com/relex/client-logger/base/bconfig"
	"github.com/relex/gotils/logger"
)

// Config for MemoryStore
type Config struct {
	bconfig.Header `yaml:",inline"`
}

// NewStore creates a MemoryStore
func (cfg *Config) NewStore(parentLogger logger.Logger) (base.RequestStore, error) {
	return NewMemoryStore(), nil
}

// VerifyConfig verifies MemoryStore config
func (cfg *Config) VerifyConfig() error {
	return nil
}

// MemoryStore keeps values in a map
type MemoryStore struct {
	mutex  sync.Mutex
	values map[string]string
}

// NewMemoryStore creates an empty MemoryStore
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		values: make(map[string]string),
	}
}

func (store *MemoryStore) Get(key string) (string, bool, error) {
	store.mutex.Lock()
	defer store.mutex.Unlock()
	value, ok := store.values[key]
	return value, ok, nil
}

func (store *MemoryStore) Set(key string, value string) error {
	store.mutex.Lock()
	defer store.mutex.Unlock()
	store.values[key] = value
	return nil
}

func (store *MemoryStore) Remove(key string) error {
	store.mutex.Lock()
	defer store.mutex.Unlock()
	delete(store.values, key)
	return nil
}

func (store *MemoryStore) Close() error {
	return nil
}
