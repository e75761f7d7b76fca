package cmd

import (
	"github.com/relex/client-logger/base"
	"github.com/relex/client-logger/run"
	"github.com/relex/gotils/logger"
)

type replayCommandState struct {
	Config string `help:"Configuration file path"`
}

var replayCmd = replayCommandState{
	Config: "config.yml",
}

func (cmd *replayCommandState) replay(args []string) {
	config, err := run.LoadConfigFile(cmd.Config)
	if err != nil {
		logger.Fatal(err)
	}
	delivered, failed, err := run.Replay(config, base.NewMetricFactory("clientlogger_", nil, nil, nil))
	if err != nil {
		logger.Fatal(err)
	}
	logger.Infof("replayed saved requests: delivered=%d failed=%d", delivered, failed)
	if failed > 0 {
		logger.Fatalf("%d requests failed again and are kept for later delivery", failed)
	}
}
