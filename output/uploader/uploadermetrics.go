package uploader

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/relex/client-logger/base"
	"github.com/relex/client-logger/defs"
	"github.com/relex/client-logger/util"
)

// uploaderMetrics defines metrics of one uploader
type uploaderMetrics struct {
	queuedRequests        prometheus.Gauge // Current numbers of requests in queue, excluding the in-flight one
	attemptsTotal         prometheus.Counter
	deliveredTotal        prometheus.Counter
	deliveredTracesTotal  prometheus.Counter
	failedTotal           prometheus.Counter
	timeoutErrorsTotal    prometheus.Counter
	networkErrorsTotal    prometheus.Counter
	nonNetworkErrorsTotal prometheus.Counter
	persistedTotal        prometheus.Counter
	replayedTotal         prometheus.Counter
	discardedTotal        prometheus.Counter
}

func newUploaderMetrics(metricFactory *base.MetricFactory, url string) uploaderMetrics {
	uploaderFactory := metricFactory.NewSubFactory("uploader_", []string{defs.LabelURL}, []string{url})
	errorsVec := uploaderFactory.AddOrGetCounterVec("errors_total", "Numbers of errors from delivery attempts", []string{"type"}, nil)

	return uploaderMetrics{
		queuedRequests:        uploaderFactory.AddOrGetGauge("queued_requests", "Numbers of currently queued requests", nil, nil),
		attemptsTotal:         uploaderFactory.AddOrGetCounter("attempts_total", "Numbers of delivery attempts", nil, nil),
		deliveredTotal:        uploaderFactory.AddOrGetCounter("delivered_requests_total", "Numbers of delivered requests", nil, nil),
		deliveredTracesTotal:  uploaderFactory.AddOrGetCounter("delivered_traces_total", "Numbers of delivered traces", nil, nil),
		failedTotal:           uploaderFactory.AddOrGetCounter("failed_requests_total", "Numbers of requests failed after all attempts", nil, nil),
		timeoutErrorsTotal:    errorsVec.WithLabelValues("timeout"),
		networkErrorsTotal:    errorsVec.WithLabelValues("network"),
		nonNetworkErrorsTotal: errorsVec.WithLabelValues("status"),
		persistedTotal:        uploaderFactory.AddOrGetCounter("persisted_requests_total", "Numbers of requests saved for later delivery", nil, nil),
		replayedTotal:         uploaderFactory.AddOrGetCounter("replayed_requests_total", "Numbers of saved requests queued again", nil, nil),
		discardedTotal:        uploaderFactory.AddOrGetCounter("discarded_requests_total", "Numbers of queued requests discarded by reset", nil, nil),
	}
}

func (metrics *uploaderMetrics) OnAttemptError(err error) {
	switch {
	case util.IsNetworkTimeout(err):
		metrics.timeoutErrorsTotal.Inc()
	case util.IsNetworkError(err):
		metrics.networkErrorsTotal.Inc()
	default:
		metrics.nonNetworkErrorsTotal.Inc()
	}
}

func (metrics *uploaderMetrics) OnDelivered(request base.SendLogRequest) {
	metrics.deliveredTotal.Inc()
	metrics.deliveredTracesTotal.Add(float64(len(request.Traces)))
}
