package mass

import (
	"fmt"
	"math"
)

// #region risk-config
// RiskConfig holds alert thresholds for network analytics.
type RiskConfig struct {
	MaxNodeState float64 `json:"max_node_state" yaml:"max_node_state" validate:"gt=0"` // fail if any node exceeds this
	MaxMeanState float64 `json:"max_mean_state" yaml:"max_mean_state" validate:"gt=0"` // fail if the mean exceeds this
	MaxSpread    float64 `json:"max_spread" yaml:"max_spread" validate:"gt=0"`         // informational: max - min
}

// DefaultRiskConfig returns sensible defaults.
func DefaultRiskConfig() RiskConfig {
	return RiskConfig{
		MaxNodeState: 0.8,
		MaxMeanState: 0.6,
		MaxSpread:    0.5,
	}
}

// #endregion risk-config

// #region risk-report
// RiskMetric is a single analytics check.
type RiskMetric struct {
	Name  string  `json:"name"`
	Value float64 `json:"value"`
	Pass  bool    `json:"pass"`
}

// RiskReport summarizes one network version.
type RiskReport struct {
	VersionID string       `json:"version_id"`
	Tick      int64        `json:"tick"`
	Mean      float64      `json:"mean"`
	Max       float64      `json:"max"`
	MaxNode   string       `json:"max_node"`
	Metrics   []RiskMetric `json:"metrics"`
	Alert     bool         `json:"alert"`
	Reason    string       `json:"reason"`
}

// #endregion risk-report

// #region analyze
// Analyze computes system-level risk over the node states.
func Analyze(net Network, cfg RiskConfig) RiskReport {
	rep := RiskReport{VersionID: net.VersionID, Tick: net.Tick}
	if len(net.Nodes) == 0 {
		rep.Reason = "empty network"
		return rep
	}

	var sum float64
	lo := math.Inf(1)
	rep.Max = math.Inf(-1)
	var fails []string
	for _, nd := range net.Nodes {
		sum += nd.X
		if nd.X > rep.Max {
			rep.Max = nd.X
			rep.MaxNode = nd.ID
		}
		lo = math.Min(lo, nd.X)
		pass := nd.X <= cfg.MaxNodeState
		rep.Metrics = append(rep.Metrics, RiskMetric{Name: "node_" + nd.ID, Value: nd.X, Pass: pass})
		if !pass {
			fails = append(fails, fmt.Sprintf("node %s state %.4f exceeds %.4f", nd.ID, nd.X, cfg.MaxNodeState))
		}
	}
	rep.Mean = sum / float64(len(net.Nodes))

	meanPass := rep.Mean <= cfg.MaxMeanState
	rep.Metrics = append(rep.Metrics, RiskMetric{Name: "mean_state", Value: rep.Mean, Pass: meanPass})
	if !meanPass {
		fails = append(fails, fmt.Sprintf("mean state %.4f exceeds %.4f", rep.Mean, cfg.MaxMeanState))
	}

	// Spread is informational and never raises the alert.
	spread := rep.Max - lo
	rep.Metrics = append(rep.Metrics, RiskMetric{Name: "spread", Value: spread, Pass: spread <= cfg.MaxSpread})

	rep.Alert = len(fails) > 0
	switch len(fails) {
	case 0:
		rep.Reason = "all checks passed"
	case 1:
		rep.Reason = "alert: " + fails[0]
	default:
		rep.Reason = fmt.Sprintf("alert: %d checks: %s", len(fails), fails[0])
	}
	return rep
}

// #endregion analyze
