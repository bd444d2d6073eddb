package pipeline

import (
	"errors"
	"fmt"

	"github.com/danielpatrickdp/agent-cognition/go-engine/internal/atom"
)

var (
	// ErrNamespaceViolation is returned when a stage emits outside its write namespace.
	ErrNamespaceViolation = errors.New("namespace violation")
	// ErrStageOrder is returned when stages are registered out of order.
	ErrStageOrder = errors.New("stage order")
)

// #region trace

// StageTrace is the atoms one stage emitted for one agent.
type StageTrace struct {
	ID    StageID     `json:"id"`
	Atoms []atom.Atom `json:"atoms"`
}

// Trace indexes emitted atoms by stage.
type Trace struct {
	AgentID string       `json:"agent_id"`
	Stages  []StageTrace `json:"stages"`
}

// Stage returns the atoms emitted by id.
func (t Trace) Stage(id StageID) []atom.Atom {
	for _, s := range t.Stages {
		if s.ID == id {
			return s.Atoms
		}
	}
	return nil
}

// #endregion trace

// #region result

// Result is the running atom set plus the trace that produced it.
type Result struct {
	Atoms atom.Set
	Trace Trace
}

// View returns the atoms visible to stage id under the transition table.
func (r Result) View(id StageID) atom.View {
	return r.Atoms.View(Transitions[id].Reads...)
}

// Append validates atoms against stage id's write namespace and returns a new
// result that includes them. The receiver is unchanged.
func (r Result) Append(id StageID, atoms []atom.Atom) (Result, error) {
	tr, ok := Transitions[id]
	if !ok {
		return r, fmt.Errorf("stage %s: no transition", id)
	}
	for _, a := range atoms {
		ns, ok := atom.ParseNamespace(a.ID)
		if !ok || ns != tr.Writes || a.NS != tr.Writes {
			return r, fmt.Errorf("%w: stage %s emitted %s, may only write %s", ErrNamespaceViolation, id, a.ID, tr.Writes)
		}
	}
	next, err := r.Atoms.With(atoms...)
	if err != nil {
		return r, fmt.Errorf("stage %s: %w", id, err)
	}
	stages := make([]StageTrace, len(r.Trace.Stages), len(r.Trace.Stages)+1)
	copy(stages, r.Trace.Stages)
	stages = append(stages, StageTrace{ID: id, Atoms: append([]atom.Atom(nil), atoms...)})
	return Result{Atoms: next, Trace: Trace{AgentID: r.Trace.AgentID, Stages: stages}}, nil
}

// #endregion result

// #region runner

// Runner executes stages in order, handing each a view restricted to its
// legal reads.
type Runner struct {
	stages []Stage
}

// NewRunner validates and wraps stages. Stages must appear in Order.
func NewRunner(stages ...Stage) (*Runner, error) {
	pos := make(map[StageID]int, len(Order))
	for i, id := range Order {
		pos[id] = i
	}
	last := -1
	for _, s := range stages {
		p, ok := pos[s.ID()]
		if !ok {
			return nil, fmt.Errorf("%w: unknown stage %s", ErrStageOrder, s.ID())
		}
		if p <= last {
			return nil, fmt.Errorf("%w: %s registered after a later stage", ErrStageOrder, s.ID())
		}
		last = p
	}
	return &Runner{stages: stages}, nil
}

// DefaultRunner returns a runner over DefaultStages.
func DefaultRunner() *Runner {
	r, err := NewRunner(DefaultStages()...)
	if err != nil {
		panic(err)
	}
	return r
}

// Run executes every stage for agentID.
func (r *Runner) Run(agentID string, slice *Slice) (Result, error) {
	res := Result{Trace: Trace{AgentID: agentID}}
	for _, s := range r.stages {
		out := s.Run(res.View(s.ID()), agentID, slice)
		next, err := res.Append(s.ID(), out)
		if err != nil {
			return res, err
		}
		res = next
	}
	return res, nil
}

// #endregion runner
