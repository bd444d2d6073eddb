package engine

import (
	"github.com/danielpatrickdp/agent-cognition/go-engine/internal/decision"
	"github.com/danielpatrickdp/agent-cognition/go-engine/internal/mass"
	"github.com/danielpatrickdp/agent-cognition/go-engine/internal/pipeline"
	"github.com/danielpatrickdp/agent-cognition/go-engine/internal/possibility"
	"github.com/danielpatrickdp/agent-cognition/go-engine/internal/world"
)

// #region options

// Options configures the engine.
type Options struct {
	Seed        uint64
	Workers     int // concurrent agent decisions per tick; <= 0 means one per agent
	Temperature float64

	Model         decision.ConfidenceModel
	PenaltyFactor float64
	MinConfidence float64
	MomentumBonus float64

	Pipeline    pipeline.Config
	Gates       possibility.GateConfig
	Aggregation mass.AggregationConfig
	Risk        mass.RiskConfig
	Dt          float64 // mass network step size
}

// DefaultOptions returns sensible defaults.
func DefaultOptions() Options {
	return Options{
		Seed:          1,
		Workers:       4,
		Temperature:   0.2,
		Model:         decision.Multiplicative,
		PenaltyFactor: decision.DefaultPenaltyFactor,
		MinConfidence: 0.3,
		MomentumBonus: 0.05,
		Pipeline:      pipeline.DefaultConfig(),
		Gates:         possibility.DefaultGateConfig(),
		Aggregation:   mass.DefaultAggregationConfig(),
		Risk:          mass.DefaultRiskConfig(),
		Dt:            0.1,
	}
}

// #endregion options

// #region memory

// Memory is what an agent carries from one tick into the next.
type Memory struct {
	PrevFinal    map[string]float64 `json:"prev_final,omitempty"`
	PrevActionID string             `json:"prev_action_id,omitempty"`
}

// #endregion memory

// #region agent-result

// AgentResult is one agent's decision for a tick.
type AgentResult struct {
	AgentID       string                    `json:"agent_id"`
	Trace         pipeline.Trace            `json:"trace"`
	Possibilities []possibility.Possibility `json:"possibilities"`
	Decision      decision.Snapshot         `json:"decision"`
}

// Memory extracts what the next tick needs from r.
func (r AgentResult) Memory() Memory {
	m := Memory{PrevActionID: r.Decision.Best.Candidate.ID, PrevFinal: make(map[string]float64)}
	for _, a := range r.Trace.Stage(pipeline.StageCtxFinal) {
		m.PrevFinal[a.ID] = a.Magnitude
	}
	return m
}

// Fallback reports whether the agent only had the fallback wait.
func (r AgentResult) Fallback() bool {
	for _, p := range r.Possibilities {
		if p.Meta.Fallback {
			return true
		}
	}
	return false
}

// #endregion agent-result

// #region tick

// TickRequest is the input of one world tick.
type TickRequest struct {
	Snapshot  *world.Snapshot
	Overrides []decision.Override
	Memory    map[string]Memory

	// Network is optional. When set it is stepped once with inputs aggregated
	// from Assignment.
	Network    *mass.Network
	Assignment mass.Assignment
}

// TickResult is the output of one world tick.
type TickResult struct {
	RunID   string           `json:"run_id"`
	Tick    int              `json:"tick"`
	Agents  []AgentResult    `json:"agents"` // ordered by agent id
	Network *mass.Network    `json:"network,omitempty"`
	Inputs  *mass.Inputs     `json:"inputs,omitempty"`
	Risk    *mass.RiskReport `json:"risk,omitempty"`
}

// Memory returns the per-agent memory to feed the next tick.
func (r TickResult) Memory() map[string]Memory {
	out := make(map[string]Memory, len(r.Agents))
	for _, a := range r.Agents {
		out[a.AgentID] = a.Memory()
	}
	return out
}

// Agent looks up one agent's result.
func (r TickResult) Agent(id string) (AgentResult, bool) {
	for _, a := range r.Agents {
		if a.AgentID == id {
			return a, true
		}
	}
	return AgentResult{}, false
}

// #endregion tick
