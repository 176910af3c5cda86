package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	NormalizerRecordsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "wrapped",
		Subsystem: "normalizer",
		Name:      "records_total",
		Help:      "Raw records seen by the normalizer, by envelope shape",
	}, []string{"envelope"})

	NormalizerMalformedRecords = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "wrapped",
		Subsystem: "normalizer",
		Name:      "malformed_records_total",
		Help:      "Records kept with a default value after a field failed to parse",
	}, []string{"field"})

	ProviderRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "wrapped",
		Subsystem: "provider",
		Name:      "requests_total",
		Help:      "Upstream provider requests by outcome",
	}, []string{"provider", "kind", "outcome"})

	ProviderFallbacks = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "wrapped",
		Subsystem: "provider",
		Name:      "fallbacks_total",
		Help:      "Times a provider returned nothing usable and the next one was tried",
	}, []string{"kind"})

	CacheLookups = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "wrapped",
		Subsystem: "cache",
		Name:      "lookups_total",
		Help:      "Cache lookups by cache name and result",
	}, []string{"cache", "result"})

	PipelineLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "wrapped",
		Subsystem: "pipeline",
		Name:      "run_duration_seconds",
		Help:      "End-to-end duration of a stats or wrapped computation including fetch",
		Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
	}, []string{"kind"})

	StaleResultsDiscarded = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "wrapped",
		Subsystem: "pipeline",
		Name:      "stale_results_discarded_total",
		Help:      "Results dropped because a newer request superseded them",
	})
)
