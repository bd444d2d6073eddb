package pipeline

import (
	"github.com/danielpatrickdp/agent-cognition/go-engine/internal/atom"
	"github.com/danielpatrickdp/agent-cognition/go-engine/internal/catalog"
	"github.com/danielpatrickdp/agent-cognition/go-engine/internal/traits"
)

// #region goal-stage

// goalStage computes goal energy from ctx:final and drv atoms only:
//
//	logit  = bias + Σ weight·input, then trait Goal:<id> modifiers
//	energy = value · sigmoid(logit)
//
// A goal whose inputs are all absent emits nothing.
type goalStage struct{}

func (goalStage) ID() StageID { return StageGoal }

func (goalStage) Run(in atom.View, agentID string, slice *Slice) []atom.Atom {
	if slice.Tables == nil {
		return nil
	}
	self, _ := slice.Snapshot.Agent(agentID)

	var out []atom.Atom
	for _, g := range slice.Tables.Goals {
		logit := g.Bias
		var used, notes []string
		for _, input := range g.Inputs {
			ns := atom.NSDrv
			if input.Source == catalog.SourceCtxFinal {
				ns = atom.NSCtxFinal
			}
			v, id, ok := in.Magnitude(ns, input.Axis, agentID, "")
			if !ok {
				notes = append(notes, note("missing %s", atom.ID(ns, input.Axis, agentID, "")))
				continue
			}
			logit += input.Weight * v
			used = append(used, id)
		}
		if len(used) == 0 {
			continue
		}

		res := slice.Tables.Traits.Resolve(self.Traits, traits.GoalKey(g.ID))
		if !res.Identity() {
			logit = res.Apply(logit)
			for _, b := range res.Breakdown {
				notes = append(notes, note("trait %s x%.3f %+.3f", b.TraitID, b.Multiplier, b.Bonus))
			}
		}
		energy := g.Value * sigmoid(logit)
		notes = append(notes, note("logit=%.4f value=%.2f", logit, g.Value))

		out = append(out, atom.New(atom.Spec{
			NS: atom.NSGoal, Kind: atom.KindGoal, Key: g.ID, Subject: agentID,
			Magnitude: energy, Origin: string(StageGoal), Used: used, Notes: notes,
		}))
	}
	return out
}

// #endregion goal-stage
