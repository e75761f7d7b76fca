package run

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/relex/client-logger/base"
)

type shipperMetrics struct {
	linesShipped prometheus.Counter
	linesSkipped prometheus.Counter // empty lines
}

func newShipperMetrics(factory *base.MetricFactory) shipperMetrics {
	vec := factory.AddOrGetCounterVec("shipper_lines_total", "Numbers of input lines by status", []string{"status"}, nil)
	return shipperMetrics{
		linesShipped: vec.WithLabelValues("shipped"),
		linesSkipped: vec.WithLabelValues("skipped"),
	}
}
