// Package metrics exposes prometheus instruments for the generation pipeline.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// ProviderRequests counts provider calls by adapter kind, model and outcome.
	ProviderRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "alttext",
		Subsystem: "provider",
		Name:      "requests_total",
		Help:      "Provider calls by kind, model and outcome.",
	}, []string{"kind", "model", "outcome"})

	// ProviderRetries counts retry attempts after transient provider errors.
	ProviderRetries = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "alttext",
		Subsystem: "provider",
		Name:      "retries_total",
		Help:      "Retry attempts by adapter kind.",
	}, []string{"kind"})

	// StageResults counts stage executions by stage and result status.
	StageResults = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "alttext",
		Subsystem: "pipeline",
		Name:      "stage_results_total",
		Help:      "Stage executions by stage name and result status.",
	}, []string{"stage", "status"})

	// StageDuration observes wall-clock stage latency.
	StageDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "alttext",
		Subsystem: "pipeline",
		Name:      "stage_duration_seconds",
		Help:      "Stage latency distribution.",
		Buckets:   prometheus.ExponentialBuckets(0.1, 2, 10),
	}, []string{"stage"})

	// BatchImages counts processed images by terminal outcome.
	BatchImages = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "alttext",
		Subsystem: "batch",
		Name:      "images_total",
		Help:      "Processed images by outcome.",
	}, []string{"outcome"})
)

const (
	OutcomeOK    = "ok"
	OutcomeError = "error"
)
