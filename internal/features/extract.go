package features

import (
	"math"
	"sort"

	"github.com/danielpatrickdp/agent-cognition/go-engine/internal/world"
)

// #region config

// ExtractorConfig holds normalization knobs for raw records.
type ExtractorConfig struct {
	HealthScale float64  // raw health at full condition
	WeaponItems []string // inventory items that grant weapon access
}

// DefaultExtractorConfig returns sensible defaults.
func DefaultExtractorConfig() ExtractorConfig {
	return ExtractorConfig{
		HealthScale: 100,
		WeaponItems: []string{"weapon", "knife", "sword", "pistol", "club"},
	}
}

// #endregion config

// #region extractor

// Extractor turns raw world records into normalized feature sets.
type Extractor struct {
	config ExtractorConfig
}

// NewExtractor creates an Extractor.
func NewExtractor(config ExtractorConfig) *Extractor {
	if config.HealthScale <= 0 {
		config.HealthScale = 100
	}
	return &Extractor{config: config}
}

// ExtractAll extracts every agent, location and the scene of snap, applying
// the snapshot's mods store when present.
func (e *Extractor) ExtractAll(snap *world.Snapshot) Index {
	idx := make(Index, len(snap.Agents)+len(snap.Locations)+1)
	for _, a := range snap.Agents {
		idx[a.ID] = e.withMods(snap, e.Character(a))
	}
	for _, l := range snap.Locations {
		idx[l.ID] = e.withMods(snap, e.Location(l))
	}
	if snap.Scene != nil {
		idx[snap.Scene.ID] = e.withMods(snap, e.Scene(*snap.Scene))
	}
	return idx
}

func (e *Extractor) withMods(snap *world.Snapshot, fs FeatureSet) FeatureSet {
	mods, ok := snap.Mods.Get(fs.EntityID)
	if !ok || mods.Empty() {
		return fs
	}
	return ApplyMods(fs, mods)
}

// Character extracts the features of an agent.
func (e *Extractor) Character(a world.Agent) FeatureSet {
	fs := newSet(a.ID, KindCharacter)
	fs.put(BodyHealth, a.Health/e.config.HealthScale, "agent.health")
	fs.put(BodyFatigue, a.Fatigue, "agent.fatigue")
	fs.put(BodyHunger, a.Hunger, "agent.hunger")
	fs.put(AffectStress, a.Stress, "agent.stress")
	fs.put(AffectAnger, a.Anger, "agent.anger")
	fs.put(AffectFear, a.Fear, "agent.fear")
	fs.put(ExposureDark, a.DarkExposure, "agent.dark_exposure")
	fs.put(RoleAuthority, a.Authority, "agent.authority")
	if a.Valence != nil {
		fs.put(EmotionValence, *a.Valence, "agent.valence")
	}
	if trust, ok := meanTrust(a.Relations); ok {
		fs.put(SocialTrust, trust, "agent.relations")
	}
	weapon := 0.0
	for _, item := range e.config.WeaponItems {
		if a.Has(item) {
			weapon = 1
			break
		}
	}
	fs.put(AccessWeapon, weapon, "agent.inventory")
	putAttrs(fs, a.Attrs, "agent.attrs")
	return fs
}

// Location extracts the features of a location.
func (e *Extractor) Location(l world.Location) FeatureSet {
	fs := newSet(l.ID, KindLocation)
	fs.put(LocDanger, l.Danger, "location.danger")
	fs.put(LocPublicness, l.Publicness, "location.publicness")
	fs.put(LocNormStrictness, l.NormStrictness, "location.norm_strictness")
	fs.put(LocCrowding, l.Crowding, "location.crowding")
	fs.put(LocResources, l.Resources, "location.resources")
	putAttrs(fs, l.Attrs, "location.attrs")
	return fs
}

// Scene extracts the features of a scene.
func (e *Extractor) Scene(s world.Scene) FeatureSet {
	fs := newSet(s.ID, KindScene)
	fs.put(SceneTension, s.Tension, "scene.tension")
	fs.put(SceneFormality, s.Formality, "scene.formality")
	fs.put(SceneProcedural, s.ProceduralStrictness, "scene.procedural_strictness")
	putAttrs(fs, s.Attrs, "scene.attrs")
	return fs
}

// #endregion extractor

// #region helpers

func putAttrs(fs FeatureSet, attrs map[string]float64, source string) {
	keys := make([]string, 0, len(attrs))
	for k := range attrs {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		v := attrs[k]
		if math.IsNaN(v) || math.IsInf(v, 0) {
			continue
		}
		fs.put("attr."+k, v, source)
	}
}

// meanTrust averages relation trust. Returns false when there are no relations.
func meanTrust(rel map[string]world.Relation) (float64, bool) {
	if len(rel) == 0 {
		return 0, false
	}
	ids := make([]string, 0, len(rel))
	for id := range rel {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	var sum float64
	for _, id := range ids {
		sum += clamp(rel[id].Trust)
	}
	return sum / float64(len(rel)), true
}

// clamp restricts v to [0, 1].
func clamp(v float64) float64 {
	if math.IsNaN(v) || v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

// #endregion helpers
