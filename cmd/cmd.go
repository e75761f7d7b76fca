// Package cmd provides list of commands to ship and replay logs
package cmd

import (
	"github.com/relex/gotils/config"
)

func init() {
	config.AddParentCmdWithArgs("", "client-logger ships logs to the telemetry server in batches", &rootCmd, rootCmd.preRun, rootCmd.postRun)
	config.AddCmdWithArgs("run ...", "Ship stdin lines as logs until EOF or signal", &runCmd, runCmd.run)
	config.AddCmdWithArgs("replay ...", "Send requests saved for later delivery now", &replayCmd, replayCmd.replay)
}

// Execute parses the command line and runs the specified command
func Execute() {
	// trigger init

	config.Execute()
}
