//
// Copyright 2025 Cristian Maglie. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.
//

package fetcher

import (
	"errors"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Outcome labels used by the Collector.
const (
	OutcomeSuccess               = "success"
	OutcomeTooManyBytes          = "too_many_bytes"
	OutcomeSinkWriteFailure      = "sink_write_failure"
	OutcomeUnexpectedContentType = "unexpected_content_type"
	OutcomeTransportFailure      = "transport_failure"
)

// Collector records Prometheus metrics about transfers. A single Collector
// may be shared by many Fetchers.
type Collector struct {
	fetchesTotal    *prometheus.CounterVec
	bytesReceived   prometheus.Histogram
	durationSeconds prometheus.Histogram
	inProgress      prometheus.Gauge
}

// NewCollector creates the fetcher metrics and registers them with reg.
// If reg is nil the default registerer is used. It panics if a metric is
// already registered, like prometheus.MustRegister.
//
// Metrics:
//   - fetcher_fetches_total{outcome}
//   - fetcher_received_bytes
//   - fetcher_duration_seconds
//   - fetcher_in_progress
func NewCollector(reg prometheus.Registerer) *Collector {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	c := &Collector{
		fetchesTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "fetcher_fetches_total",
				Help: "Completed transfers by outcome",
			},
			[]string{"outcome"},
		),
		bytesReceived: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name: "fetcher_received_bytes",
			Help: "Body bytes written to the sink per transfer",
			// 1KB to 1GB
			Buckets: prometheus.ExponentialBuckets(1024, 10, 7),
		}),
		durationSeconds: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "fetcher_duration_seconds",
			Help:    "Duration of transfers",
			Buckets: prometheus.DefBuckets,
		}),
		inProgress: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "fetcher_in_progress",
			Help: "Transfers currently running",
		}),
	}
	reg.MustRegister(c.fetchesTotal, c.bytesReceived, c.durationSeconds, c.inProgress)
	return c
}

func (c *Collector) start() {
	if c == nil {
		return
	}
	c.inProgress.Inc()
}

func (c *Collector) finish(err error, written int64, elapsed time.Duration) {
	if c == nil {
		return
	}
	c.inProgress.Dec()
	c.fetchesTotal.WithLabelValues(Outcome(err)).Inc()
	c.bytesReceived.Observe(float64(written))
	c.durationSeconds.Observe(elapsed.Seconds())
}

// Outcome classifies the error returned by Fetch into one of the
// Outcome labels.
func Outcome(err error) string {
	var sinkErr *SinkWriteError
	switch {
	case err == nil:
		return OutcomeSuccess
	case errors.Is(err, ErrTooManyBytes):
		return OutcomeTooManyBytes
	case errors.Is(err, ErrUnexpectedContentType):
		return OutcomeUnexpectedContentType
	case errors.As(err, &sinkErr):
		return OutcomeSinkWriteFailure
	default:
		return OutcomeTransportFailure
	}
}
