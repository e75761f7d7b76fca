package main

import (
	"runtime"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/relex/client-logger/cmd"
	"github.com/relex/gotils/logger"
)

var version string

func main() {
	logger.Infof("version: %s", version)
	logger.Infof("GOMAXPROCS: %d", runtime.GOMAXPROCS(0))

	registerInfoMetric()

	cmd.Execute()
}

func registerInfoMetric() {
	opts := prometheus.GaugeOpts{}
	opts.Name = "clientlogger_info"
	opts.Help = "client-logger application information"
	gauge := prometheus.NewGaugeVec(opts, []string{"version"})
	gauge.WithLabelValues(version).Set(1)
	prometheus.MustRegister(gauge)
}
