package gate

import (
	"fmt"
	"math"
	"slices"

	"github.com/danielpatrickdp/agent-cognition/go-engine/internal/mass"
)

// #region gate
// Gate decides whether a stepped mass network may be committed as the next
// version of the active one.
type Gate struct {
	config Config
}

// New creates a gate with the given configuration.
func New(config Config) *Gate {
	return &Gate{config: config}
}

// Evaluate checks hard vetoes first, then scores soft signals. report may be
// nil when no risk analysis ran.
func (g *Gate) Evaluate(old, proposed mass.Network, report *mass.RiskReport) Decision {
	var vetoes []VetoSignal

	if proposed.ParentID != old.VersionID {
		vetoes = append(vetoes, VetoSignal{
			Type:   VetoLineage,
			Reason: fmt.Sprintf("parent %q is not the active version %q", proposed.ParentID, old.VersionID),
		})
	}

	shapeOK := slices.Equal(old.NodeOrder, proposed.NodeOrder) && len(old.Nodes) == len(proposed.Nodes)
	if !shapeOK {
		vetoes = append(vetoes, VetoSignal{
			Type:   VetoShape,
			Reason: fmt.Sprintf("node order %v does not match %v", proposed.NodeOrder, old.NodeOrder),
		})
	}

	for _, nd := range proposed.Nodes {
		if math.IsNaN(nd.X) || math.IsInf(nd.X, 0) {
			vetoes = append(vetoes, VetoSignal{
				Type:   VetoNonFinite,
				Reason: fmt.Sprintf("node %s state is %v", nd.ID, nd.X),
			})
		}
	}

	var delta float64
	if shapeOK {
		delta = deltaNorm(old, proposed)
		if delta > g.config.MaxDeltaNorm {
			vetoes = append(vetoes, VetoSignal{
				Type:   VetoDelta,
				Reason: fmt.Sprintf("delta norm %.4f exceeds cap %.4f", delta, g.config.MaxDeltaNorm),
			})
		}
	}

	if len(vetoes) > 0 {
		return Decision{
			Action:      Reject,
			Reason:      fmt.Sprintf("hard veto: %s", vetoes[0].Reason),
			Vetoed:      true,
			VetoSignals: vetoes,
			DeltaNorm:   delta,
		}
	}

	soft := g.softScore(delta, report)
	return Decision{
		Action:    Commit,
		Reason:    fmt.Sprintf("passed gate: soft_score=%.4f", soft),
		SoftScore: soft,
		DeltaNorm: delta,
	}
}

// #endregion gate

// #region helpers
// deltaNorm is the L2 norm of proposed minus old node states. Shapes must match.
func deltaNorm(old, proposed mass.Network) float64 {
	var sum float64
	for i := range proposed.Nodes {
		d := proposed.Nodes[i].X - old.Nodes[i].X
		sum += d * d
	}
	return math.Sqrt(sum)
}

// softScore blends step stability with how calm the network is.
func (g *Gate) softScore(delta float64, report *mass.RiskReport) float64 {
	stability := 1.0
	if g.config.MaxDeltaNorm > 0 {
		stability = 1 - delta/g.config.MaxDeltaNorm
	}
	if report == nil {
		return clamp01(stability)
	}
	calm := 1 - report.Mean
	if report.Alert {
		calm = 0
	}
	w := g.config.RiskWeight
	return clamp01((1-w)*stability + w*calm)
}

func clamp01(v float64) float64 {
	return math.Max(0, math.Min(1, v))
}

// #endregion helpers
