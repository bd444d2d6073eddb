package engine

import (
	"math"

	"github.com/danielpatrickdp/agent-cognition/go-engine/internal/features"
	"github.com/danielpatrickdp/agent-cognition/go-engine/internal/mass"
	"github.com/danielpatrickdp/agent-cognition/go-engine/internal/world"
)

// CharacterSignals reads each agent's stress, dark exposure and situational
// risk from the feature index. Risk is max(loc.danger, scene.tension) for
// scene participants and loc.danger otherwise; a scene without listed
// participants covers everyone. Unknown values count as 0.
func CharacterSignals(snap *world.Snapshot, idx features.Index) []mass.CharacterSignal {
	var tension float64
	participants := make(map[string]bool)
	if snap.Scene != nil {
		if fs, ok := idx[snap.Scene.ID]; ok {
			tension = value(fs, features.SceneTension)
		}
		for _, id := range snap.Scene.Participants {
			participants[id] = true
		}
	}

	ids := snap.AgentIDs()
	out := make([]mass.CharacterSignal, 0, len(ids))
	for _, id := range ids {
		a, _ := snap.Agent(id)
		s := mass.CharacterSignal{ID: id}
		if fs, ok := idx[id]; ok {
			s.Stress = value(fs, features.AffectStress)
			s.Dark = value(fs, features.ExposureDark)
		}
		if fs, ok := idx[a.LocationID]; ok {
			s.Risk = value(fs, features.LocDanger)
		}
		if snap.Scene != nil && (len(participants) == 0 || participants[id]) {
			s.Risk = math.Max(s.Risk, tension)
		}
		out = append(out, s)
	}
	return out
}

func value(fs features.FeatureSet, key string) float64 {
	f, ok := fs.Get(key)
	if !ok {
		return 0
	}
	return f.Value
}
