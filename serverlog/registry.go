package serverlog

import (
	"github.com/relex/client-logger/base"
	"github.com/relex/client-logger/base/bconfig"
	"github.com/relex/client-logger/output/uploader"
	"github.com/relex/client-logger/util/clock"
	"github.com/relex/gotils/logger"
)

// NewRegistry creates an uploader registry whose uploaders use the transport settings of the given config
//
// Uploaders shared through the registry keep the settings of the registry, not of the individual loggers using them
func NewRegistry(parentLogger logger.Logger, config *bconfig.LoggerConfig, store base.RequestStore, clk clock.Clock,
	online func() bool, metricFactory *base.MetricFactory) *uploader.Registry {

	saved := uploader.NewSavedRequests(parentLogger, store)
	return uploader.NewRegistry(parentLogger, func(url string) *uploader.Uploader {
		transport := uploader.NewHTTPTransport(parentLogger, uploader.HTTPTransportConfig{
			URL:           url,
			CustomHeaders: config.CustomHeaders,
			Compress:      config.Compress,
		})
		return uploader.NewUploader(parentLogger, uploader.Args{
			URL:           url,
			Transport:     transport,
			Saved:         saved,
			Clock:         clk,
			Online:        online,
			Policy:        uploader.DefaultRetryPolicy(),
			MetricFactory: metricFactory,
			Debug:         config.DebugMode,
		})
	})
}
