// Package run runs the client-logger CLI commands
package run

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/relex/client-logger/base"
	"github.com/relex/client-logger/clientlog"
	"github.com/relex/client-logger/defs"
	"github.com/relex/gotils/channels"
	"github.com/relex/gotils/logger"
)

const maxLineLength = 1024 * 1024

// Run ships lines from stdin as logs until EOF or stopped by signals
func Run(configFile string, metricFactory *base.MetricFactory) {
	config, err := LoadConfigFile(configFile)
	if err != nil {
		logger.Fatal(err)
	}

	runLogger := logger.WithField(defs.LabelComponent, "Launcher")
	stopRequest := channels.NewSignalAwaitable()

	// wait for shutdown signal
	go func() {
		sigChan := make(chan os.Signal, 10)
		signal.Notify(sigChan, syscall.SIGINT)
		signal.Notify(sigChan, syscall.SIGTERM)
		s := <-sigChan
		runLogger.Infof("received %s, shutting down", s)
		stopRequest.Signal()
	}()

	if err := Ship(config, os.Stdin, metricFactory, stopRequest); err != nil {
		runLogger.Errorf("error on exit: %s", err.Error())
		return
	}
	runLogger.Info("clean exit")
}

// Ship sends each non-empty line from the input as a log until EOF or stop request, then flushes all pending logs
//
// Returns error if the logger cannot be created or the final flush doesn't complete
func Ship(config *Config, input io.Reader, metricFactory *base.MetricFactory, stopRequest channels.Awaitable) error {
	level, err := config.ParseLineLevel()
	if err != nil {
		return fmt.Errorf("lineLevel: %w", err)
	}
	shipLogger := logger.WithField(defs.LabelComponent, "Shipper")
	metrics := newShipperMetrics(metricFactory)

	cl, err := clientlog.New(logger.Root(), &config.Logger, clientlog.Options{
		MetricFactory: metricFactory,
	})
	if err != nil {
		return fmt.Errorf("failed to create logger: %w", err)
	}
	cl.OnStop(func(reason clientlog.StopReason) {
		shipLogger.Warnf("server logging stopped: %s", reason)
	})

	inputEnded := channels.NewSignalAwaitable()
	go func() {
		defer inputEnded.Signal()
		scanner := bufio.NewScanner(input)
		scanner.Buffer(make([]byte, 0, 64*1024), maxLineLength)
		for scanner.Scan() {
			if stopRequest.Peek() {
				return
			}
			line := scanner.Text()
			if line == "" {
				metrics.linesSkipped.Inc()
				continue
			}
			cl.LogAt(level, line, nil, clientlog.SkipSecondaryLogger())
			metrics.linesShipped.Inc()
		}
		if err := scanner.Err(); err != nil {
			shipLogger.Errorf("error reading input: %s", err.Error())
		} else {
			shipLogger.Info("end of input")
		}
	}()

	channels.AnyAwaitables(stopRequest, inputEnded).WaitForever()
	return cl.Close(defs.TeardownFlushTimeout)
}
