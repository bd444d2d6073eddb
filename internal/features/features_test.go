package features

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/danielpatrickdp/agent-cognition/go-engine/internal/world"
	"github.com/danielpatrickdp/agent-cognition/go-engine/internal/world/worldtest"
)

func value(t *testing.T, fs FeatureSet, key string) float64 {
	t.Helper()
	f, ok := fs.Get(key)
	require.True(t, ok, "missing %s", key)
	return f.Value
}

func TestCharacterExtraction(t *testing.T) {
	e := NewExtractor(DefaultExtractorConfig())
	idx := e.ExtractAll(worldtest.Tavern())

	bram := idx["bram"]
	assert.Equal(t, KindCharacter, bram.EntityKind)
	assert.InDelta(t, 0.7, value(t, bram, BodyHealth), 1e-12)
	assert.Equal(t, 1.0, value(t, bram, AccessWeapon))
	assert.InDelta(t, 0.1, value(t, bram, SocialTrust), 1e-12)
	_, ok := bram.Get(EmotionValence)
	assert.False(t, ok, "valence is absent when not recorded")

	dena := idx["dena"]
	assert.Equal(t, 0.0, value(t, dena, AccessWeapon))
	_, ok = dena.Get(SocialTrust)
	assert.False(t, ok, "no relations means no trust feature")

	assert.Equal(t, KindLocation, idx["tavern"].EntityKind)
	assert.InDelta(t, 0.1, value(t, idx["brawl"], SceneProcedural), 1e-12)
}

func TestExtractionClampsAndSkipsNonFinite(t *testing.T) {
	e := NewExtractor(ExtractorConfig{})
	fs := e.Character(world.Agent{
		ID: "x", Health: 250, Anger: -3, Fear: math.NaN(),
		Attrs: map[string]float64{"luck": 0.4, "bad": math.Inf(1)},
	})
	assert.Equal(t, 1.0, value(t, fs, BodyHealth))
	assert.Equal(t, 0.0, value(t, fs, AffectAnger))
	assert.Equal(t, 0.0, value(t, fs, AffectFear))
	assert.InDelta(t, 0.4, value(t, fs, "attr.luck"), 1e-12)
	_, ok := fs.Get("attr.bad")
	assert.False(t, ok)
}

func TestApplyModsOrder(t *testing.T) {
	fs := newSet("bram", KindCharacter)
	fs.put(AffectAnger, 0.4, "agent.anger")
	fs.put(AffectFear, 0.2, "agent.fear")

	out := ApplyMods(fs, world.Mods{
		Overrides:   map[string]float64{AffectAnger: 0.6, SocialTrust: 0.3},
		Deltas:      map[string]float64{AffectAnger: 0.1, AffectFear: math.NaN(), "missing": 0.2},
		Multipliers: map[string]float64{AffectAnger: 2, AffectFear: 3},
	})

	// (0.6 + 0.1) * 2 clamps to 1
	assert.Equal(t, 1.0, value(t, out, AffectAnger))
	assert.InDelta(t, 0.6, value(t, out, AffectFear), 1e-12)
	assert.InDelta(t, 0.3, value(t, out, SocialTrust), 1e-12)
	_, ok := out.Get("missing")
	assert.False(t, ok, "deltas never create features")

	anger, _ := out.Get(AffectAnger)
	assert.Equal(t, "mods.override", anger.Source)
	assert.Len(t, anger.Notes, 3)

	assert.InDelta(t, 0.4, value(t, fs, AffectAnger), 1e-12, "input is not modified")
}

func TestExtractAllAppliesStoreMods(t *testing.T) {
	snap := worldtest.Tavern()
	snap.Mods.SetOverride("cole", AffectFear, 0.95)
	idx := NewExtractor(DefaultExtractorConfig()).ExtractAll(snap)
	assert.InDelta(t, 0.95, value(t, idx["cole"], AffectFear), 1e-12)
	assert.InDelta(t, 0.2, value(t, idx["bram"], AffectFear), 1e-12)
}

func TestResolveNeutralDefault(t *testing.T) {
	fs := newSet("dena", KindCharacter)
	fs.put(AffectFear, 0.1, "agent.fear")

	r := Resolve(fs, AffectFear)
	assert.True(t, r.Known)
	assert.False(t, r.Defaulted)

	r = Resolve(fs, SocialTrust)
	assert.True(t, r.Known)
	assert.True(t, r.Defaulted)
	assert.Equal(t, NeutralDefault, r.Value)
	assert.Contains(t, r.Note, "dena")

	r = Resolve(fs, AccessWeapon)
	assert.False(t, r.Known)
	assert.False(t, HasNeutralDefault(AccessWeapon))
}

func TestKeysSorted(t *testing.T) {
	fs := newSet("x", KindScene)
	fs.put(SceneTension, 0.1, "")
	fs.put(SceneFormality, 0.1, "")
	assert.Equal(t, []string{SceneFormality, SceneTension}, fs.Keys())
}

func TestMeanTrustIsBitStable(t *testing.T) {
	rel := map[string]world.Relation{}
	for i, tr := range []float64{0.1, 0.7, 0.33, 0.013, 0.9, 0.41, 0.123, 0.57} {
		rel[string(rune('a'+i))] = world.Relation{Trust: tr}
	}
	first, ok := meanTrust(rel)
	require.True(t, ok)
	for i := 0; i < 200; i++ {
		got, _ := meanTrust(rel)
		require.Equal(t, math.Float64bits(first), math.Float64bits(got), "call %d", i)
	}
}
