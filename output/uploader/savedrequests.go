package uploader

import (
	"encoding/json"
	"fmt"
	"sync"

	"github.com/relex/client-logger/base"
	"github.com/relex/client-logger/defs"
	"github.com/relex/client-logger/util"
	"github.com/relex/gotils/logger"
)

// SavedRequests is the list of requests saved for later delivery, persisted as a JSON array under one key
//
// Access tokens are never saved. Within one process all access is serialized; other processes sharing the same store
// may still race on read-modify-write.
type SavedRequests struct {
	logger logger.Logger
	store  base.RequestStore
	key    string
	mutex  sync.Mutex
}

// NewSavedRequests creates SavedRequests on the store under defs.SavedRequestsKey
func NewSavedRequests(parentLogger logger.Logger, store base.RequestStore) *SavedRequests {
	return &SavedRequests{
		logger: parentLogger.WithField(defs.LabelComponent, "SavedRequests"),
		store:  store,
		key:    defs.SavedRequestsKey,
	}
}

// Append adds the request at the end of the saved list
func (saved *SavedRequests) Append(request base.LogRequest) error {
	saved.mutex.Lock()
	defer saved.mutex.Unlock()

	requests := saved.loadLocked()
	requests = append(requests, request)
	data, err := util.MarshalJSON(requests)
	if err != nil {
		return fmt.Errorf("failed to serialize saved requests: %w", err)
	}
	if err := saved.store.Set(saved.key, string(data)); err != nil {
		return fmt.Errorf("failed to save requests: %w", err)
	}
	return nil
}

// Load returns all saved requests without removing them
func (saved *SavedRequests) Load() []base.LogRequest {
	saved.mutex.Lock()
	defer saved.mutex.Unlock()
	return saved.loadLocked()
}

// TakeAll returns and removes all saved requests
func (saved *SavedRequests) TakeAll() []base.LogRequest {
	saved.mutex.Lock()
	defer saved.mutex.Unlock()

	requests := saved.loadLocked()
	if len(requests) == 0 {
		return nil
	}
	if err := saved.store.Remove(saved.key); err != nil {
		saved.logger.Errorf("error removing saved requests, skip replaying: %s", err.Error())
		return nil
	}
	return requests
}

// loadLocked reads the saved list, treating a missing, unreadable or malformed value as empty
func (saved *SavedRequests) loadLocked() []base.LogRequest {
	value, found, err := saved.store.Get(saved.key)
	if err != nil {
		saved.logger.Errorf("error reading saved requests: %s", err.Error())
		return nil
	}
	if !found || value == "" {
		return nil
	}
	var requests []base.LogRequest
	if err := json.Unmarshal([]byte(value), &requests); err != nil {
		saved.logger.Warnf("ignore malformed saved requests: %s", err.Error())
		return nil
	}
	return requests
}
