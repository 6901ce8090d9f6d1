// Package metrics provides Prometheus instrumentation for PhishGuard.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	// ScansTotal counts completed scans by verdict and origin.
	ScansTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "phishguard",
			Name:      "scans_total",
			Help:      "Total scans scored, by risk level and origin.",
		},
		[]string{"level", "origin"},
	)

	// HistoryAppendsTotal counts history appends by outcome.
	HistoryAppendsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "phishguard",
			Name:      "history_appends_total",
			Help:      "History appends by result (stored, duplicate, error).",
		},
		[]string{"result"},
	)

	// HistorySize tracks the number of reports currently held.
	HistorySize = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "phishguard",
			Name:      "history_size",
			Help:      "Reports currently held in history.",
		},
	)

	// LookupDuration observes external lookup latency.
	LookupDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "phishguard",
			Name:      "lookup_duration_seconds",
			Help:      "External lookup latency by provider and kind.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"provider", "kind"},
	)

	// LookupFailuresTotal counts lookups that fell back to neutral values.
	LookupFailuresTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "phishguard",
			Name:      "lookup_failures_total",
			Help:      "Lookups that failed and were replaced by neutral values.",
		},
		[]string{"provider", "kind"},
	)
)

func init() {
	prometheus.MustRegister(
		ScansTotal,
		HistoryAppendsTotal,
		HistorySize,
		LookupDuration,
		LookupFailuresTotal,
	)
}
