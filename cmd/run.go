package cmd

import (
	"context"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/relex/client-logger/base"
	"github.com/relex/client-logger/defs"
	"github.com/relex/client-logger/run"
	"github.com/relex/client-logger/util"
	"github.com/relex/gotils/logger"
)

type runCommandState struct {
	Config      string `help:"Configuration file path"`
	MetricsAddr string `help:"The listener address to expose Prometheus metrics, empty to disable"`
	TestMode    bool   `help:"Use test mode config: fast retry and short debounce"`
}

var runCmd runCommandState = runCommandState{
	Config:      "config.yml",
	MetricsAddr: ":9336",
	TestMode:    false,
}

func (cmd *runCommandState) run(args []string) {
	if cmd.TestMode {
		defs.EnableTestMode()
	}

	if cmd.MetricsAddr != "" {
		msrv := util.LaunchMetricsListener(cmd.MetricsAddr, prometheus.DefaultGatherer)
		defer func() {
			if err := msrv.Shutdown(context.Background()); err != nil {
				logger.Errorf("error shutting down metrics listener: %v", err)
			}
		}()
	}

	run.Run(cmd.Config, base.NewMetricFactory("clientlogger_", nil, nil, prometheus.DefaultRegisterer))
}
