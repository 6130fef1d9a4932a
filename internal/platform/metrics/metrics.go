// Package metrics exposes Prometheus instruments for the outlier pipeline.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	namespace = "courtpulse"
	subsystem = "outliers"
)

var (
	// RecordsProcessed counts stat lines handed to the runner.
	RecordsProcessed = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: subsystem,
		Name:      "records_processed_total",
		Help:      "Stat lines processed by the outlier runner.",
	})

	// OutliersDetected counts outliers per detector.
	OutliersDetected = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: subsystem,
		Name:      "detected_total",
		Help:      "Outliers detected, labeled by detector.",
	}, []string{"detector"})

	// DetectorErrors counts detector-level failures absorbed by the runner.
	DetectorErrors = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: subsystem,
		Name:      "detector_errors_total",
		Help:      "Detector failures recorded by the runner.",
	}, []string{"detector"})

	// RunDuration observes wall-clock time of detect/backfill invocations.
	RunDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Subsystem: subsystem,
		Name:      "run_duration_seconds",
		Help:      "Duration of runner invocations.",
		Buckets:   []float64{0.1, 0.5, 1, 5, 15, 60, 300, 1800},
	}, []string{"mode"})
)
