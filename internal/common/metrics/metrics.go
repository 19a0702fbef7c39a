// internal/common/metrics/metrics.go
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	SearchesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "engine_searches_total",
			Help: "Total number of analysis calls by backend",
		},
		[]string{"backend"},
	)

	SearchErrorsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "engine_search_errors_total",
			Help: "Total number of failed analysis calls by backend and error kind",
		},
		[]string{"backend", "kind"},
	)

	SearchDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name: "engine_search_duration_seconds",
			Help: "Duration of the backend retrieval phase in seconds",
		},
		[]string{"backend"},
	)

	RerankDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name: "engine_rerank_duration_seconds",
			Help: "Duration of the rerank phase in seconds",
		},
	)

	CandidatesScored = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "engine_candidates_scored_total",
			Help: "Total number of candidates scored by the reranker",
		},
	)
)
