// Package metrics holds the Prometheus collectors rankmatch reports to.
// All collectors are registered with the default registry at init.
package metrics

import "github.com/prometheus/client_golang/prometheus"

// ReasoningBuckets covers single-prompt LLM latencies from 250ms to 60s.
var ReasoningBuckets = []float64{0.25, 0.5, 1, 2, 5, 10, 30, 60}

// Outcome and bucket label values.
const (
	OutcomeSuccess = "success"
	OutcomeFailure = "failure"
	OutcomeSkipped = "skipped"

	BucketVerified  = "verified"
	BucketUncertain = "uncertain"
	BucketDropped   = "dropped"
)

var (
	// EmbeddingAttemptsTotal counts embedding calls per model by outcome.
	EmbeddingAttemptsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "rankmatch_embedding_attempts_total",
			Help: "Embedding attempts",
		},
		[]string{"model", "outcome"},
	)

	// FilesIndexedTotal counts indexed, skipped and failed documents per rank.
	FilesIndexedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "rankmatch_files_indexed_total",
			Help: "Documents processed by the indexer",
		},
		[]string{"rank", "outcome"},
	)

	// CandidatesTotal counts reasoned candidates by routing bucket.
	CandidatesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "rankmatch_candidates_total",
			Help: "Candidates reasoned over",
		},
		[]string{"bucket"},
	)

	// ReasoningDuration records reasoning call latency in seconds.
	ReasoningDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "rankmatch_reasoning_duration_seconds",
			Help:    "Reasoning latency",
			Buckets: ReasoningBuckets,
		},
	)

	// FallbackRetrievalsTotal counts keyword fallback retrievals.
	FallbackRetrievalsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "rankmatch_fallback_retrievals_total",
			Help: "Keyword fallback retrievals",
		},
	)
)

func init() {
	prometheus.MustRegister(
		EmbeddingAttemptsTotal,
		FilesIndexedTotal,
		CandidatesTotal,
		ReasoningDuration,
		FallbackRetrievalsTotal,
	)
}
