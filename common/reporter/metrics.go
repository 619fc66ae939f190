// SPDX-FileCopyrightText: 2025 The Quarry Authors
// SPDX-License-Identifier: AGPL-3.0-only

// Metrics façade for reporter.
//
// This is a wrapper around the Prometheus Go client. Metric names get
// an automatic prefix derived from the caller module and duplicate
// registrations return the previously registered collector.

package reporter

import (
	"fmt"
	"net/http"
	"runtime"
	"strings"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Register some aliases to avoid importing the prometheus package.

type (
	// CounterOpts defines options for counters
	CounterOpts = prometheus.CounterOpts
	// GaugeOpts defines options for gauges
	GaugeOpts = prometheus.GaugeOpts
	// HistogramOpts defines options for histograms
	HistogramOpts = prometheus.HistogramOpts

	// Counter defines counters
	Counter = prometheus.Counter
	// CounterVec defines counter vectors
	CounterVec = prometheus.CounterVec
	// Gauge defines gauges
	Gauge = prometheus.Gauge
	// GaugeVec defines gauge vectors
	GaugeVec = prometheus.GaugeVec
	// Histogram defines histograms
	Histogram = prometheus.Histogram
	// HistogramVec defines histogram vectors
	HistogramVec = prometheus.HistogramVec
)

// metricPrefix builds the metric prefix from the caller module.
func metricPrefix() string {
	pc := make([]uintptr, 10)
	n := runtime.Callers(3, pc)
	frames := runtime.CallersFrames(pc[:n])
	for {
		frame, more := frames.Next()
		fn := frame.Function
		if idx := strings.Index(fn, moduleName+"/"); idx >= 0 {
			module := strings.SplitN(fn[idx:], ".", 2)[0]
			module = strings.ReplaceAll(module, "/", "_")
			return fmt.Sprintf("%s_", module)
		}
		if !more {
			break
		}
	}
	return fmt.Sprintf("%s_", moduleName)
}

const moduleName = "quarry"

// register registers a collector, tolerating duplicates.
func (r *Reporter) register(name string, collector prometheus.Collector) prometheus.Collector {
	r.metricsLock.Lock()
	defer r.metricsLock.Unlock()
	if existing, ok := r.metrics[name]; ok {
		return existing
	}
	r.registry.MustRegister(collector)
	r.metrics[name] = collector
	return collector
}

// Counter mimics NewCounter from the promauto package.
func (r *Reporter) Counter(opts CounterOpts) Counter {
	opts.Name = metricPrefix() + opts.Name
	return r.register(opts.Name, prometheus.NewCounter(opts)).(Counter)
}

// CounterVec mimics NewCounterVec from the promauto package.
func (r *Reporter) CounterVec(opts CounterOpts, labelNames []string) *CounterVec {
	opts.Name = metricPrefix() + opts.Name
	return r.register(opts.Name, prometheus.NewCounterVec(opts, labelNames)).(*CounterVec)
}

// Gauge mimics NewGauge from the promauto package.
func (r *Reporter) Gauge(opts GaugeOpts) Gauge {
	opts.Name = metricPrefix() + opts.Name
	return r.register(opts.Name, prometheus.NewGauge(opts)).(Gauge)
}

// GaugeVec mimics NewGaugeVec from the promauto package.
func (r *Reporter) GaugeVec(opts GaugeOpts, labelNames []string) *GaugeVec {
	opts.Name = metricPrefix() + opts.Name
	return r.register(opts.Name, prometheus.NewGaugeVec(opts, labelNames)).(*GaugeVec)
}

// Histogram mimics NewHistogram from the promauto package.
func (r *Reporter) Histogram(opts HistogramOpts) Histogram {
	opts.Name = metricPrefix() + opts.Name
	return r.register(opts.Name, prometheus.NewHistogram(opts)).(Histogram)
}

// HistogramVec mimics NewHistogramVec from the promauto package.
func (r *Reporter) HistogramVec(opts HistogramOpts, labelNames []string) *HistogramVec {
	opts.Name = metricPrefix() + opts.Name
	return r.register(opts.Name, prometheus.NewHistogramVec(opts, labelNames)).(*HistogramVec)
}

// MetricsHTTPHandler returns the HTTP handler to get metrics.
func (r *Reporter) MetricsHTTPHandler() http.Handler {
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{})
}
