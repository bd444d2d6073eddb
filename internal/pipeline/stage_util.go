package pipeline

import (
	"github.com/danielpatrickdp/agent-cognition/go-engine/internal/atom"
)

// #region util-stage

// utilStage re-exposes goal energy as util:* projections. The action layer
// reads these and never goal:* directly.
type utilStage struct{}

func (utilStage) ID() StageID { return StageUtil }

func (utilStage) Run(in atom.View, agentID string, _ *Slice) []atom.Atom {
	goals := in.Select(atom.NSGoal, "", agentID)
	if len(goals) == 0 {
		return nil
	}
	out := make([]atom.Atom, 0, len(goals)+1)
	var urgency float64
	var all []string
	for _, g := range goals {
		if g.Key == UtilUrgency {
			continue
		}
		out = append(out, atom.New(atom.Spec{
			NS: atom.NSUtil, Kind: atom.KindProjection, Key: g.Key, Subject: agentID,
			Magnitude: g.Magnitude, Origin: string(StageUtil), Used: []string{g.ID},
		}))
		all = append(all, g.ID)
		if g.Magnitude > urgency {
			urgency = g.Magnitude
		}
	}
	out = append(out, atom.New(atom.Spec{
		NS: atom.NSUtil, Kind: atom.KindProjection, Key: UtilUrgency, Subject: agentID,
		Magnitude: urgency, Origin: string(StageUtil), Used: all,
	}))
	return out
}

// #endregion util-stage

// GoalEnergy reads util:* projections for agentID into a goal → energy map and
// a goal → util atom id map. The urgency projection is not a goal and is skipped.
func GoalEnergy(in atom.View, agentID string) (energy map[string]float64, ids map[string]string) {
	energy = make(map[string]float64)
	ids = make(map[string]string)
	for _, a := range in.Select(atom.NSUtil, "", agentID) {
		if a.Key == UtilUrgency || a.Target != "" {
			continue
		}
		energy[a.Key] = a.Magnitude
		ids[a.Key] = a.ID
	}
	return energy, ids
}
