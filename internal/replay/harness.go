package replay

import (
	"context"
	"fmt"

	"github.com/danielpatrickdp/agent-cognition/go-engine/internal/engine"
	"github.com/danielpatrickdp/agent-cognition/go-engine/internal/mass"
)

// #region types

// AgentOutcome is one agent's decision in a replayed tick.
type AgentOutcome struct {
	AgentID     string
	CandidateID string
	Kind        string
	Expected    string // empty when the fixture has no expectation
	Fallback    bool
	Forced      bool
}

// Match reports whether the outcome meets the expectation, if any.
func (o AgentOutcome) Match() bool {
	return o.Expected == "" || o.Expected == o.Kind
}

// TickOutcome captures one replayed tick.
type TickOutcome struct {
	Tick      int
	Agents    []AgentOutcome
	VersionID string // mass network version after the tick, if any
	Alert     bool
	Result    engine.TickResult
}

// Summary provides aggregate stats from a replay run.
type Summary struct {
	TotalTicks   int
	Decisions    int
	Checked      int
	Mismatches   int
	Fallbacks    int
	Forced       int
	Alerts       int
	FinalNetwork *mass.Network
}

// #endregion types

// #region replay

// Replay runs every fixture tick through eng in order. Agent memory and the
// mass network carry from one tick to the next. Operates entirely in memory.
func Replay(ctx context.Context, eng *engine.Engine, f *Fixture) ([]TickOutcome, error) {
	var net *mass.Network
	var assign mass.Assignment
	if f.Network != nil {
		n, err := f.Network.Build()
		if err != nil {
			return nil, fmt.Errorf("replay: %w", err)
		}
		net, assign = &n, f.Network.Assignment
	}

	var memory map[string]engine.Memory
	out := make([]TickOutcome, 0, len(f.Ticks))
	for i := range f.Ticks {
		ft := &f.Ticks[i]
		res, err := eng.Tick(ctx, engine.TickRequest{
			Snapshot:   ft.Snapshot(),
			Overrides:  ft.Overrides,
			Memory:     memory,
			Network:    net,
			Assignment: assign,
		})
		if err != nil {
			return out, fmt.Errorf("replay tick %d: %w", i, err)
		}
		memory = res.Memory()
		if res.Network != nil {
			net = res.Network
		}

		to := TickOutcome{Tick: res.Tick, Result: res}
		if res.Network != nil {
			to.VersionID = res.Network.VersionID
		}
		if res.Risk != nil {
			to.Alert = res.Risk.Alert
		}
		for _, a := range res.Agents {
			to.Agents = append(to.Agents, AgentOutcome{
				AgentID:     a.AgentID,
				CandidateID: a.Decision.Best.Candidate.ID,
				Kind:        a.Decision.Best.Candidate.Kind,
				Expected:    ft.Expected[a.AgentID],
				Fallback:    a.Fallback(),
				Forced:      a.Decision.Forced,
			})
		}
		out = append(out, to)
	}
	return out, nil
}

// Summarize computes aggregate stats from replay results.
func Summarize(results []TickOutcome) Summary {
	s := Summary{TotalTicks: len(results)}
	for _, r := range results {
		if r.Alert {
			s.Alerts++
		}
		if r.Result.Network != nil {
			s.FinalNetwork = r.Result.Network
		}
		for _, a := range r.Agents {
			s.Decisions++
			if a.Expected != "" {
				s.Checked++
				if !a.Match() {
					s.Mismatches++
				}
			}
			if a.Fallback {
				s.Fallbacks++
			}
			if a.Forced {
				s.Forced++
			}
		}
	}
	return s
}

// #endregion replay
