package mass

import "github.com/danielpatrickdp/agent-cognition/go-engine/internal/atom"

// #region aggregation

// AggregationConfig weights character signals into node input.
type AggregationConfig struct {
	StressWeight   float64 `json:"stress_weight" yaml:"stress_weight" validate:"gte=0"`
	DarkWeight     float64 `json:"dark_weight" yaml:"dark_weight" validate:"gte=0"`
	RiskWeight     float64 `json:"risk_weight" yaml:"risk_weight" validate:"gte=0"`
	BaseNoiseScale float64 `json:"base_noise_scale" yaml:"base_noise_scale" validate:"gte=0"`
}

// DefaultAggregationConfig returns sensible defaults.
func DefaultAggregationConfig() AggregationConfig {
	return AggregationConfig{
		StressWeight:   0.4,
		DarkWeight:     0.3,
		RiskWeight:     0.3,
		BaseNoiseScale: 0.1,
	}
}

// CharacterSignal is one character's contribution for a tick.
type CharacterSignal struct {
	ID     string  `json:"id"`
	Stress float64 `json:"stress"`
	Dark   float64 `json:"dark"`
	Risk   float64 `json:"risk"`
}

// Assignment maps character id to node id.
type Assignment map[string]string

// Inputs are the exogenous drive per node, aligned with Network.NodeOrder.
type Inputs struct {
	Values         []float64 `json:"values"`
	Counts         []int     `json:"counts"`
	BaseNoiseScale float64   `json:"base_noise_scale"`
	Skipped        []string  `json:"skipped,omitempty"` // characters with non-finite or unassigned signals
}

// Aggregate computes each node's input as the mean weighted signal of the
// characters assigned to it. Characters with a non-finite signal, no
// assignment, or an assignment to an unknown node are skipped.
func Aggregate(net Network, assign Assignment, signals []CharacterSignal, cfg AggregationConfig) Inputs {
	n := len(net.Nodes)
	in := Inputs{
		Values:         make([]float64, n),
		Counts:         make([]int, n),
		BaseNoiseScale: cfg.BaseNoiseScale,
	}
	sums := make([]float64, n)
	for _, s := range signals {
		nodeID, ok := assign[s.ID]
		if !ok {
			in.Skipped = append(in.Skipped, s.ID)
			continue
		}
		i, ok := net.Index(nodeID)
		if !ok {
			in.Skipped = append(in.Skipped, s.ID)
			continue
		}
		v := cfg.StressWeight*s.Stress + cfg.DarkWeight*s.Dark + cfg.RiskWeight*s.Risk
		if !atom.Finite(v) {
			in.Skipped = append(in.Skipped, s.ID)
			continue
		}
		sums[i] += v
		in.Counts[i]++
	}
	for i := range sums {
		if in.Counts[i] > 0 {
			in.Values[i] = sums[i] / float64(in.Counts[i])
		}
	}
	return in
}

// #endregion aggregation
