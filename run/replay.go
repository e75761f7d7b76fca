package run

import (
	"context"
	"fmt"

	"github.com/relex/client-logger/base"
	"github.com/relex/client-logger/defs"
	"github.com/relex/client-logger/output/uploader"
	"github.com/relex/client-logger/serverlog"
	"github.com/relex/client-logger/storage/smemory"
	"github.com/relex/client-logger/util/clock"
	"github.com/relex/gotils/logger"
)

// Replay sends all requests saved in the configured storage now, with the access token of the config
//
// Requests failing again are saved back if eligible. Returns the numbers of requests delivered and failed.
func Replay(config *Config, metricFactory *base.MetricFactory) (int, int, error) {
	replayLogger := logger.WithField(defs.LabelComponent, "Replayer")

	var store base.RequestStore = smemory.NewMemoryStore()
	if config.Logger.Storage.Value != nil {
		var err error
		if store, err = config.Logger.Storage.Value.NewStore(replayLogger); err != nil {
			return 0, 0, fmt.Errorf("logger.storage: %w", err)
		}
	}
	defer store.Close()

	registry := serverlog.NewRegistry(replayLogger, &config.Logger, store, clock.Real(), nil, metricFactory)
	u := registry.GetOrCreate(config.Logger.URL)
	saved := uploader.NewSavedRequests(replayLogger, store)

	requests := saved.TakeAll()
	replayLogger.Infof("found %d saved requests", len(requests))

	delivered, failed := 0, 0
	for _, request := range requests {
		if err := u.SendNow(context.Background(), request.WithToken(config.Logger.AccessToken), true); err != nil {
			replayLogger.Warnf("error replaying request: traces=%d: %s", len(request.Traces), err.Error())
			failed++
			continue
		}
		delivered++
	}
	return delivered, failed, nil
}
