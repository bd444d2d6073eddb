package pipeline

import (
	"github.com/danielpatrickdp/agent-cognition/go-engine/internal/atom"
	"github.com/danielpatrickdp/agent-cognition/go-engine/internal/features"
	"github.com/danielpatrickdp/agent-cognition/go-engine/internal/traits"
)

// #region ctx-stage

// ctxStage derives 0..1 context axes from world facts and features. It never
// emits ctx:final ids; aggregation belongs to S3.
type ctxStage struct{}

func (ctxStage) ID() StageID { return StageCtx }

func (ctxStage) Run(in atom.View, agentID string, slice *Slice) []atom.Atom {
	self, ok := slice.Snapshot.Agent(agentID)
	if !ok {
		return nil
	}
	loc := self.LocationID
	scene := ""
	if slice.Snapshot.Scene != nil {
		scene = slice.Snapshot.Scene.ID
	}
	var matrix traits.Matrix
	if slice.Tables != nil {
		matrix = slice.Tables.Traits
	}

	var out []atom.Atom
	emit := func(axis string, value float64, used []string, notes ...string) {
		res := matrix.Resolve(self.Traits, traits.InputKey(axis))
		if !res.Identity() {
			value = res.Apply(value)
			for _, b := range res.Breakdown {
				notes = append(notes, note("trait %s x%.3f %+.3f", b.TraitID, b.Multiplier, b.Bonus))
			}
		}
		out = append(out, atom.New(atom.Spec{
			NS: atom.NSCtx, Kind: atom.KindAxis, Key: axis, Subject: agentID,
			Magnitude: atom.Clamp01(value), Origin: string(StageCtx), Used: used, Notes: notes,
		}))
	}
	axis := func(name string, terms ...term) {
		if v, used, ok := weightedMean(in, terms); ok {
			emit(name, v, used)
		}
	}

	hostility, hostIDs, _ := maxDyadic(in, atom.NSWorld, "hostility", agentID)
	dangerTerms := []term{
		{featureID(features.LocDanger, loc), 0.5},
		{featureID(features.SceneTension, scene), 0.3},
	}
	if v, used, ok := weightedMean(in, dangerTerms); ok {
		notes := []string(nil)
		if len(hostIDs) > 0 {
			v = atom.Clamp01((v*0.8 + hostility*0.2))
			used = append(used, hostIDs...)
			notes = append(notes, note("hostility=%.3f", hostility))
		}
		emit(AxisDanger, v, used, notes...)
	}

	axis(AxisNormPressure,
		term{featureID(features.LocNormStrictness, loc), 0.6},
		term{featureID(features.SceneFormality, scene), 0.4})
	axis(AxisPublicness,
		term{featureID(features.LocPublicness, loc), 0.7},
		term{featureID(features.LocCrowding, loc), 0.3})
	axis(AxisProcedural,
		term{featureID(features.SceneProcedural, scene), 1.0})
	axis(AxisAnger, term{featureID(features.AffectAnger, agentID), 1})
	axis(AxisFear, term{featureID(features.AffectFear, agentID), 1})
	axis(AxisStress, term{featureID(features.AffectStress, agentID), 1})
	axis(AxisHunger, term{featureID(features.BodyHunger, agentID), 1})
	axis(AxisWeaponAccess, term{featureID(features.AccessWeapon, agentID), 1})

	// Fatigue rises as health drops.
	if f, ok := in.Get(featureID(features.BodyFatigue, agentID)); ok {
		v := f.Magnitude
		used := []string{f.ID}
		if h, ok := in.Get(featureID(features.BodyHealth, agentID)); ok {
			v = 0.7*v + 0.3*(1-h.Magnitude)
			used = append(used, h.ID)
		}
		emit(AxisFatigue, v, used)
	}
	if r, ok := in.Get(featureID(features.LocResources, loc)); ok {
		emit(AxisScarcity, 1-r.Magnitude, []string{r.ID})
	}

	fs, ok := slice.Features[agentID]
	if !ok {
		fs = features.FeatureSet{EntityID: agentID}
	}
	neutral(in, fs, emit, AxisSocialTrust, features.SocialTrust)
	neutral(in, fs, emit, AxisValence, features.EmotionValence)

	// Dyadic axes pass through per other agent.
	for _, other := range others(in, atom.NSWorld, agentID, "harm.recent", "proximity", "hostility") {
		for _, d := range []struct{ src, axis string }{
			{"harm.recent", AxisHarm},
			{"proximity", AxisProximity},
			{"hostility", AxisHostility},
		} {
			a, ok := in.Find(atom.NSWorld, d.src, agentID, other)
			if !ok {
				continue
			}
			out = append(out, atom.New(atom.Spec{
				NS: atom.NSCtx, Kind: atom.KindAxis, Key: d.axis, Subject: agentID, Target: other,
				Magnitude: atom.Clamp01(a.Magnitude), Origin: string(StageCtx), Used: []string{a.ID},
			}))
		}
	}
	return out
}

// neutral emits axis from the agent's feature atom for key. When the atom is
// absent the value comes from features.Resolve, which owns the neutral default
// and its note. Keys without a default emit nothing.
func neutral(in atom.View, fs features.FeatureSet, emit func(string, float64, []string, ...string), axis, key string) {
	id := featureID(key, fs.EntityID)
	if a, ok := in.Get(id); ok {
		emit(axis, a.Magnitude, []string{a.ID})
		return
	}
	r := features.Resolve(fs, key)
	if !r.Known {
		return
	}
	if r.Defaulted {
		emit(axis, r.Value, nil, r.Note)
		return
	}
	emit(axis, r.Value, nil, note("%s read from feature set; atom %s absent", key, id))
}

// #endregion ctx-stage
