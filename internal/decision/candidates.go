package decision

import (
	"sort"

	"github.com/danielpatrickdp/agent-cognition/go-engine/internal/atom"
	"github.com/danielpatrickdp/agent-cognition/go-engine/internal/catalog"
	"github.com/danielpatrickdp/agent-cognition/go-engine/internal/possibility"
)

// BuildCandidates turns enabled possibilities into candidates using the action
// catalog. A gate magnitude scales catalog confidence into [0.5c, c].
// Possibilities whose action is not in the catalog are skipped, except the
// fallback wait, which becomes a neutral candidate with full confidence.
func BuildCandidates(ps []possibility.Possibility, tables *catalog.Tables, utilIDs map[string]string) []Candidate {
	var out []Candidate
	for _, p := range ps {
		if !p.Enabled {
			continue
		}
		def, ok := tables.Action(p.ActionID)
		if !ok {
			if !p.Meta.Fallback {
				continue
			}
			def = catalog.ActionDef{ID: p.ActionID, Label: p.Label, Confidence: 1}
		}
		conf := def.Confidence
		if p.Magnitude != nil {
			conf *= 0.5 + 0.5*atom.Clamp01(*p.Magnitude)
		}
		deltas := make(map[string]float64, len(def.DeltaGoals))
		var goals []string
		for g, d := range def.DeltaGoals {
			deltas[g] = d
			goals = append(goals, g)
		}
		sort.Strings(goals)
		support := append([]string(nil), p.SupportAtoms...)
		for _, g := range goals {
			if id, ok := utilIDs[g]; ok {
				support = append(support, id)
			}
		}
		out = append(out, Candidate{
			ID:           p.ID,
			Kind:         p.ActionID,
			ActorID:      p.ActorID,
			TargetID:     p.TargetID,
			DeltaGoals:   deltas,
			Cost:         def.Cost,
			Confidence:   atom.Clamp01(conf),
			SupportAtoms: support,
		})
	}
	return out
}
