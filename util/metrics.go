package util

import (
	"errors"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/relex/client-logger/defs"
	"github.com/relex/gotils/logger"
)

// LaunchMetricsListener starts a HTTP server exposing the metrics of the given gatherer at /metrics
func LaunchMetricsListener(address string, gatherer prometheus.Gatherer) *http.Server {
	mlogger := logger.WithField(defs.LabelComponent, "MetricsListener")

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))

	server := &http.Server{}
	server.Addr = address
	server.Handler = mux
	go func() {
		mlogger.Infof("listening on %s for metrics...", server.Addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			mlogger.Error("Prometheus listener error: ", err)
		}
	}()
	return server
}
