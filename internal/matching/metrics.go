package matching

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	generationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "matching_generations_total",
			Help: "Match generation runs by outcome",
		},
		[]string{"outcome"},
	)

	generationDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "matching_generation_duration_seconds",
			Help:    "Wall time of successful match generation runs",
			Buckets: prometheus.ExponentialBuckets(0.05, 2, 12),
		},
	)

	pairsScored = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "matching_pairs_scored_total",
			Help: "Pairs scored across all generation runs",
		},
	)

	compatibilityScores = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "matching_compatibility_scores",
			Help:    "Distribution of compatibility scores written by generation",
			Buckets: prometheus.LinearBuckets(0, 10, 11),
		},
	)

	revealsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "matching_reveals_total",
			Help: "Matches revealed by participants",
		},
	)
)

// RecordGeneration records the outcome label of one run.
func RecordGeneration(outcome string) {
	generationsTotal.WithLabelValues(outcome).Inc()
}

func recordScores(matches []*Match) {
	pairsScored.Add(float64(len(matches)))
	for _, m := range matches {
		compatibilityScores.Observe(m.CompatibilityScore)
	}
}
