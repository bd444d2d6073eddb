package decision

import "github.com/danielpatrickdp/agent-cognition/go-engine/internal/atom"

// Snapshot is the outcome of one Decide call.
type Snapshot struct {
	Best     Scored   `json:"best"`
	Ranked   []Scored `json:"ranked"`
	Excluded []Scored `json:"excluded,omitempty"`
	// Atoms holds one action atom per candidate, plus action:forced:<agent>
	// when a force_action override applied.
	Atoms          []atom.Atom        `json:"atoms"`
	Probabilities  map[string]float64 `json:"probabilities,omitempty"`
	FilterBypassed bool               `json:"filter_bypassed"`
	Forced         bool               `json:"forced"`
	Notes          []string           `json:"notes,omitempty"`
}

// Empty reports whether the snapshot holds no decision.
func (s Snapshot) Empty() bool { return s.Best.Candidate.ID == "" }
