package campaign

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	gateDecisions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "campaign_gate_decisions_total",
			Help: "Phase gate decisions by action and outcome",
		},
		[]string{"action", "phase", "allowed"},
	)
)

func recordDecision(d Decision) {
	allowed := "false"
	if d.Allowed {
		allowed = "true"
	}
	gateDecisions.WithLabelValues(string(d.Action), string(d.Phase), allowed).Inc()
}
