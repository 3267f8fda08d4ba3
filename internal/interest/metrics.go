package interest

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	mutualDeclared = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "interest_mutual_declared_total",
			Help: "Pairs flipped to mutual interest, by source",
		},
		[]string{"source"},
	)

	swipesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "interest_swipes_total",
			Help: "Swipes recorded, by kind",
		},
		[]string{"kind"},
	)
)
