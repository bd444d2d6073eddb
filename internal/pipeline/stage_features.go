package pipeline

import (
	"github.com/danielpatrickdp/agent-cognition/go-engine/internal/atom"
)

// #region feature-stage

// featureStage lifts the feature sets of the agent, its location and the
// scene into world:feat.* atoms, one per feature, keyed by entity id.
type featureStage struct{}

func (featureStage) ID() StageID { return StageFeatures }

func (featureStage) Run(_ atom.View, agentID string, slice *Slice) []atom.Atom {
	var entities []string
	entities = append(entities, agentID)
	if self, ok := slice.Snapshot.Agent(agentID); ok && self.LocationID != "" {
		entities = append(entities, self.LocationID)
	}
	if slice.Snapshot.Scene != nil {
		entities = append(entities, slice.Snapshot.Scene.ID)
	}

	seen := make(map[string]bool, len(entities))
	var out []atom.Atom
	for _, id := range entities {
		fs, ok := slice.Features[id]
		if !ok || seen[id] {
			continue
		}
		seen[id] = true
		for _, key := range fs.Keys() {
			f := fs.Values[key]
			notes := append([]string{"source=" + f.Source}, f.Notes...)
			out = append(out, atom.New(atom.Spec{
				NS: atom.NSWorld, Kind: atom.KindFeature, Key: "feat." + key, Subject: id,
				Magnitude: f.Value, Origin: string(StageFeatures), Notes: notes,
			}))
		}
	}
	return out
}

// #endregion feature-stage

// featureID returns the world atom id of a feature of entity.
func featureID(key, entity string) string {
	return atom.ID(atom.NSWorld, "feat."+key, entity, "")
}
