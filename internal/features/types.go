package features

import "sort"

// #region keys

// Character feature keys.
const (
	BodyHealth     = "body.health"
	BodyFatigue    = "body.fatigue"
	BodyHunger     = "body.hunger"
	AffectStress   = "affect.stress"
	AffectAnger    = "affect.anger"
	AffectFear     = "affect.fear"
	EmotionValence = "emotion.valence"
	SocialTrust    = "social.trust"
	AccessWeapon   = "access.weapon"
	ExposureDark   = "exposure.dark"
	RoleAuthority  = "role.authority"
)

// Location feature keys.
const (
	LocDanger         = "loc.danger"
	LocPublicness     = "loc.publicness"
	LocNormStrictness = "loc.normStrictness"
	LocCrowding       = "loc.crowding"
	LocResources      = "loc.resources"
)

// Scene feature keys.
const (
	SceneTension    = "scene.tension"
	SceneFormality  = "scene.formality"
	SceneProcedural = "scene.proceduralStrictness"
)

// NeutralDefault is the documented fallback for unknown social and emotional features.
const NeutralDefault = 0.5

// neutralKeys lists the features that fall back to NeutralDefault when absent.
var neutralKeys = map[string]bool{
	SocialTrust:    true,
	EmotionValence: true,
}

// #endregion keys

// #region types

// EntityKind distinguishes the record a feature set was extracted from.
type EntityKind string

const (
	KindCharacter EntityKind = "character"
	KindLocation  EntityKind = "location"
	KindScene     EntityKind = "scene"
)

// Feature is one normalized value with its provenance.
type Feature struct {
	Value  float64  `json:"value"`
	Source string   `json:"source"`
	Notes  []string `json:"notes,omitempty"`
}

// FeatureSet maps dotted feature keys to normalized values for one entity.
type FeatureSet struct {
	EntityID   string             `json:"entity_id"`
	EntityKind EntityKind         `json:"entity_kind"`
	Values     map[string]Feature `json:"values"`
}

func newSet(id string, kind EntityKind) FeatureSet {
	return FeatureSet{EntityID: id, EntityKind: kind, Values: make(map[string]Feature)}
}

func (fs FeatureSet) put(key string, value float64, source string) {
	fs.Values[key] = Feature{Value: clamp(value), Source: source}
}

// Get returns the feature for key.
func (fs FeatureSet) Get(key string) (Feature, bool) {
	f, ok := fs.Values[key]
	return f, ok
}

// Keys returns the feature keys in sorted order.
func (fs FeatureSet) Keys() []string {
	keys := make([]string, 0, len(fs.Values))
	for k := range fs.Values {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Index holds every extracted feature set of a tick, keyed by entity id.
type Index map[string]FeatureSet

// #endregion types
