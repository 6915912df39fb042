// Package metrics holds the Prometheus collectors of the resolution pipeline.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const (
	Namespace = "scanvoca"
	Component = "resolver"

	SourceLabel  = "source"
	OutcomeLabel = "outcome"

	OutcomeSuccess = "success"
	OutcomeFailure = "failure"
)

// ResolvedWordsTotal counts resolved words by the tier that answered them.
// [source].
var ResolvedWordsTotal = MustRegisterCounterVec(
	Namespace,
	Component,
	"resolved_words_total",
	"Number of words resolved, by resolution source.",
	SourceLabel,
)

// GenerationDuration observes the latency of one word generation including retries.
// [outcome].
var GenerationDuration = MustRegisterHistogramVec(
	Namespace,
	Component,
	"generation_duration_seconds",
	"Duration of word definition generation.",
	prometheus.ExponentialBuckets(0.25, 2, 8),
	OutcomeLabel,
)

// BatchSize observes the number of distinct words per resolution batch.
var BatchSize = MustRegisterHistogram(
	Namespace,
	Component,
	"batch_size",
	"Number of distinct words per resolution batch.",
	prometheus.ExponentialBuckets(1, 2, 8),
)

// MustRegisterCounterVec creates and registers a counter vector.
// Intended for package-level var initialization; registering the same name twice panics.
func MustRegisterCounterVec(namespace, component, name, help string, labelNames ...string) *prometheus.CounterVec {
	m := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: component,
		Name:      name,
		Help:      help,
	}, labelNames)
	prometheus.MustRegister(m)
	return m
}

// MustRegisterHistogram creates and registers a histogram.
// Intended for package-level var initialization; registering the same name twice panics.
func MustRegisterHistogram(namespace, component, name, help string, buckets []float64) prometheus.Histogram {
	m := prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: namespace,
		Subsystem: component,
		Name:      name,
		Help:      help,
		Buckets:   buckets,
	})
	prometheus.MustRegister(m)
	return m
}

// MustRegisterHistogramVec creates and registers a histogram vector.
// Intended for package-level var initialization; registering the same name twice panics.
func MustRegisterHistogramVec(namespace, component, name, help string, buckets []float64, labelNames ...string) *prometheus.HistogramVec {
	m := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Subsystem: component,
		Name:      name,
		Help:      help,
		Buckets:   buckets,
	}, labelNames)
	prometheus.MustRegister(m)
	return m
}

// SetDurationObserver sets an observed value for the duration since the given start time
// in seconds.
func SetDurationObserver(o prometheus.Observer, startTime time.Time) {
	o.Observe(time.Since(startTime).Seconds())
}
