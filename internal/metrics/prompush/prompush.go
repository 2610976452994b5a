// Package prompush implements a Prometheus Pushgateway backend for the
// metrics package.
//
// It adapts the generic metrics.Backend interface to Prometheus by mapping
// the pipeline's file- and row-level metrics onto CounterVec and SummaryVec
// collectors and pushing the registry to a Pushgateway at batch end instead
// of exposing a scrape endpoint. Batch runs are short-lived processes, so
// push is the only delivery mode that works.
//
// All Prometheus-specific dependencies stay in this package; the rest of the
// program only sees metrics.Backend.
package prompush

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/push"

	"ballstats/internal/metrics"
)

// Backend is a Prometheus Pushgateway metrics backend.
type Backend struct {
	gatewayURL string
	jobName    string
	reg        *prometheus.Registry

	fileCounter  *prometheus.CounterVec // ballstats_files_total
	fileDuration *prometheus.SummaryVec // ballstats_file_duration_seconds
	rowCounter   *prometheus.CounterVec // ballstats_rows_total
}

// NewBackend constructs a Pushgateway backend. jobName doubles as the
// Pushgateway "job" grouping key; gatewayURL is the server base URL.
func NewBackend(jobName, gatewayURL string) (*Backend, error) {
	if gatewayURL == "" {
		return nil, fmt.Errorf("prompush: gateway URL is required")
	}
	if jobName == "" {
		jobName = "ballstats"
	}

	reg := prometheus.NewRegistry()

	fileCounter := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ballstats_files_total",
			Help: "Files reaching a terminal import state, partitioned by status.",
		},
		[]string{"status"},
	)
	fileDuration := prometheus.NewSummaryVec(
		prometheus.SummaryOpts{
			Name:       "ballstats_file_duration_seconds",
			Help:       "Per-file pipeline duration in seconds, partitioned by status.",
			Objectives: map[float64]float64{0.5: 0.05, 0.9: 0.01, 0.99: 0.001},
		},
		[]string{"status"},
	)
	rowCounter := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ballstats_rows_total",
			Help: "Row-level counts per kind (validated, rejected, dropped, duplicates, inserted).",
		},
		[]string{"kind"},
	)

	if err := reg.Register(fileCounter); err != nil {
		return nil, fmt.Errorf("prompush: register file counter: %w", err)
	}
	if err := reg.Register(fileDuration); err != nil {
		return nil, fmt.Errorf("prompush: register file summary: %w", err)
	}
	if err := reg.Register(rowCounter); err != nil {
		return nil, fmt.Errorf("prompush: register row counter: %w", err)
	}

	return &Backend{
		gatewayURL:   gatewayURL,
		jobName:      jobName,
		reg:          reg,
		fileCounter:  fileCounter,
		fileDuration: fileDuration,
		rowCounter:   rowCounter,
	}, nil
}

func (b *Backend) IncCounter(name string, delta float64, labels metrics.Labels) {
	switch name {
	case "ballstats_files_total":
		b.fileCounter.WithLabelValues(labels["status"]).Add(delta)
	case "ballstats_rows_total":
		b.rowCounter.WithLabelValues(labels["kind"]).Add(delta)
	default:
		// unknown metric name: ignore
	}
}

func (b *Backend) ObserveHistogram(name string, value float64, labels metrics.Labels) {
	if name != "ballstats_file_duration_seconds" {
		return
	}
	b.fileDuration.WithLabelValues(labels["status"]).Observe(value)
}

// Flush pushes the current registry to the Pushgateway.
func (b *Backend) Flush() error {
	return push.New(b.gatewayURL, b.jobName).
		Gatherer(b.reg).
		Push()
}
