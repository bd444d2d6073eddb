package engine

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// #region metrics

var (
	// decisionsTotal counts chosen actions.
	// Labels: action (action kind)
	decisionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "cognition",
		Subsystem: "decision",
		Name:      "selections_total",
		Help:      "Chosen actions by kind",
	}, []string{"action"})

	// decisionEvents counts exceptional decision paths.
	// Labels: event (fallback, filter_bypass, forced)
	decisionEvents = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "cognition",
		Subsystem: "decision",
		Name:      "events_total",
		Help:      "Fallback, filter bypass and forced decisions",
	}, []string{"event"})

	agentLatency = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: "cognition",
		Subsystem: "decision",
		Name:      "agent_latency_seconds",
		Help:      "Pipeline plus decision latency per agent",
		Buckets:   []float64{0.0001, 0.0005, 0.001, 0.0025, 0.005, 0.01, 0.025, 0.05, 0.1},
	})

	tickLatency = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: "cognition",
		Subsystem: "tick",
		Name:      "latency_seconds",
		Help:      "Whole tick latency",
		Buckets:   []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
	})

	// nodeState tracks mass network node states.
	// Labels: node
	nodeState = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: "cognition",
		Subsystem: "mass",
		Name:      "node_state",
		Help:      "Latent state per mass network node",
	}, []string{"node"})

	riskAlert = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "cognition",
		Subsystem: "mass",
		Name:      "risk_alert",
		Help:      "1 when the latest risk report raised an alert",
	})
)

// #endregion metrics

// #region record

func recordAgent(r AgentResult, seconds float64) {
	agentLatency.Observe(seconds)
	d := r.Decision
	if !d.Empty() {
		decisionsTotal.WithLabelValues(d.Best.Candidate.Kind).Inc()
	}
	if r.Fallback() {
		decisionEvents.WithLabelValues("fallback").Inc()
	}
	if d.FilterBypassed {
		decisionEvents.WithLabelValues("filter_bypass").Inc()
	}
	if d.Forced {
		decisionEvents.WithLabelValues("forced").Inc()
	}
}

func recordTick(r TickResult, seconds float64) {
	tickLatency.Observe(seconds)
	if r.Network != nil {
		for _, n := range r.Network.Nodes {
			nodeState.WithLabelValues(n.ID).Set(n.X)
		}
	}
	if r.Risk != nil {
		v := 0.0
		if r.Risk.Alert {
			v = 1
		}
		riskAlert.Set(v)
	}
}

// #endregion record
