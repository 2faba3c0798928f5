// SPDX-License-Identifier: MIT

// Package metrics defines the Prometheus instrumentation of the daemon.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// ModelsStored tracks the number of Boolean networks in the store.
	ModelsStored = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "biodivine_models_stored",
		Help: "Number of Boolean network models currently stored",
	})

	// ModelImports counts watcher-driven model imports by outcome.
	ModelImports = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "biodivine_model_imports_total",
		Help: "Total model imports from the watched directory by outcome",
	}, []string{"outcome"})

	// JobsSubmitted counts analysis jobs accepted by the runner.
	JobsSubmitted = promauto.NewCounter(prometheus.CounterOpts{
		Name: "biodivine_jobs_submitted_total",
		Help: "Total analysis jobs submitted",
	})

	// JobsCompleted counts finished analysis jobs by final status.
	JobsCompleted = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "biodivine_jobs_completed_total",
		Help: "Total analysis jobs finished by status",
	}, []string{"status"})

	// JobDuration observes wall-clock runtime of analysis jobs.
	JobDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "biodivine_job_duration_seconds",
		Help:    "Wall-clock duration of analysis jobs",
		Buckets: []float64{0.01, 0.05, 0.25, 1, 5, 30, 120, 600},
	})

	// ReachableStates observes how many states an analysis reached.
	ReachableStates = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "biodivine_reachable_states",
		Help:    "Number of states reached per analysis",
		Buckets: prometheus.ExponentialBuckets(1, 4, 12),
	})

	// CacheRequests counts analysis cache lookups by result.
	CacheRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "biodivine_cache_requests_total",
		Help: "Total analysis cache lookups by result (hit, miss)",
	}, []string{"result"})

	// HTTPRequests counts API requests by route and status class.
	HTTPRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "biodivine_http_requests_total",
		Help: "Total HTTP requests by route and status class",
	}, []string{"route", "status"})

	// AuthFailures counts rejected API requests.
	AuthFailures = promauto.NewCounter(prometheus.CounterOpts{
		Name: "biodivine_auth_failures_total",
		Help: "Total requests rejected by token authentication",
	})
)
