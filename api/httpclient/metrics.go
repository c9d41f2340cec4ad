// Copyright 2025 Canonical Ltd.
// Licensed under the AGPLv3, see LICENCE file for details.

package httpclient

import (
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const metricsNamespace = "linode_api"

// Collector is a prometheus.Collector that collects metrics about the
// requests made to the API. It is also the request recorder handed to
// the underlying HTTP client.
type Collector struct {
	requests *prometheus.CounterVec
	failures *prometheus.CounterVec
	duration *prometheus.HistogramVec
}

// NewMetricsCollector returns a new Collector.
func NewMetricsCollector() *Collector {
	return &Collector{
		requests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: metricsNamespace,
				Name:      "requests_total",
				Help:      "The number of API requests that got a response, by method and status code.",
			}, []string{"method", "code"},
		),
		failures: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: metricsNamespace,
				Name:      "request_errors_total",
				Help:      "The number of API requests that failed without a response.",
			}, []string{"method"},
		),
		duration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: metricsNamespace,
				Name:      "request_duration_seconds",
				Help:      "The round trip time of API requests.",
				Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2, 5, 10, 30},
			}, []string{"method"},
		),
	}
}

// Describe is part of the prometheus.Collector interface.
func (c *Collector) Describe(ch chan<- *prometheus.Desc) {
	c.requests.Describe(ch)
	c.failures.Describe(ch)
	c.duration.Describe(ch)
}

// Collect is part of the prometheus.Collector interface.
func (c *Collector) Collect(ch chan<- prometheus.Metric) {
	c.requests.Collect(ch)
	c.failures.Collect(ch)
	c.duration.Collect(ch)
}

// Record an outgoing request which produced an http.Response.
func (c *Collector) Record(method string, _ *url.URL, res *http.Response, rtt time.Duration) {
	c.requests.WithLabelValues(method, strconv.Itoa(res.StatusCode)).Inc()
	c.duration.WithLabelValues(method).Observe(rtt.Seconds())
}

// Record an outgoing request which returned back an error.
func (c *Collector) RecordError(method string, _ *url.URL, _ error) {
	c.failures.WithLabelValues(method).Inc()
}
