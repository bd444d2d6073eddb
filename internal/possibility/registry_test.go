package possibility

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/danielpatrickdp/agent-cognition/go-engine/internal/atom"
	"github.com/danielpatrickdp/agent-cognition/go-engine/internal/pipeline"
)

// #region helpers

type scene struct {
	threat, anger, harm, weapon, proximity, procedural float64
}

func final(key, self, other string, m float64) atom.Atom {
	return atom.New(atom.Spec{NS: atom.NSCtxFinal, Kind: atom.KindAggregate, Key: key, Subject: self, Target: other, Magnitude: m})
}

func buildView(t *testing.T, s scene) atom.View {
	t.Helper()
	set, err := atom.NewSet(
		atom.New(atom.Spec{NS: atom.NSThreat, Kind: atom.KindComposite, Key: pipeline.ThreatComposite, Subject: "a", Magnitude: s.threat}),
		final(pipeline.AxisAnger, "a", "", s.anger),
		final(pipeline.AxisWeaponAccess, "a", "", s.weapon),
		final(pipeline.AxisProcedural, "a", "", s.procedural),
		final(pipeline.AxisHarm, "a", "b", s.harm),
		final(pipeline.AxisProximity, "a", "b", s.proximity),
	)
	require.NoError(t, err)
	return set.View(atom.NSCtxFinal, atom.NSThreat, atom.NSDrv)
}

func find(ps []Possibility, id string) (Possibility, bool) {
	for _, p := range ps {
		if p.ID == id {
			return p, true
		}
	}
	return Possibility{}, false
}

func hasVeto(p Possibility, vt VetoType) bool {
	for _, v := range p.Vetoes {
		if v.Type == vt {
			return true
		}
	}
	return false
}

// #endregion helpers

func TestAttackDisabledWhenUnprovoked(t *testing.T) {
	v := buildView(t, scene{threat: 0.1, anger: 0.1, harm: 0.1, weapon: 1, proximity: 1, procedural: 0.1})
	ps := DefaultRegistry().Derive(v, "a")

	p, ok := find(ps, "attack:a:b")
	require.True(t, ok, "attack possibility missing")
	assert.False(t, p.Enabled)
	assert.Nil(t, p.Magnitude)
	assert.True(t, hasVeto(p, VetoProvocation))
	assert.False(t, hasVeto(p, VetoAccess))
}

func TestAttackEnabledWhenHarmedAndArmed(t *testing.T) {
	v := buildView(t, scene{threat: 0.3, anger: 0.9, harm: 0.9, weapon: 1, proximity: 1, procedural: 0.2})
	ps := DefaultRegistry().Derive(v, "a")

	p, ok := find(ps, "attack:a:b")
	require.True(t, ok)
	require.True(t, p.Enabled, "vetoes: %v", p.Vetoes)
	require.NotNil(t, p.Magnitude)
	assert.InDelta(t, 0.9*0.8, *p.Magnitude, 1e-9)
	assert.Equal(t, "b", p.TargetID)
	assert.Contains(t, p.SupportAtoms, atom.ID(atom.NSCtxFinal, pipeline.AxisHarm, "a", "b"))
}

func TestAttackDisabledUnderStrictProcedure(t *testing.T) {
	v := buildView(t, scene{threat: 0.3, anger: 0.95, harm: 0.95, weapon: 1, proximity: 1, procedural: 0.95})
	ps := DefaultRegistry().Derive(v, "a")

	p, ok := find(ps, "attack:a:b")
	require.True(t, ok)
	assert.False(t, p.Enabled)
	assert.True(t, hasVeto(p, VetoProcedural))
	assert.False(t, hasVeto(p, VetoProvocation))
}

func TestAttackNeedsWeapon(t *testing.T) {
	v := buildView(t, scene{threat: 0.3, anger: 0.9, harm: 0.9, weapon: 0, proximity: 1, procedural: 0.2})
	p, ok := find(DefaultRegistry().Derive(v, "a"), "attack:a:b")
	require.True(t, ok)
	assert.False(t, p.Enabled)
	assert.True(t, hasVeto(p, VetoAccess))
}

func TestFallbackWaitWhenNothingEnabled(t *testing.T) {
	set, err := atom.NewSet()
	require.NoError(t, err)
	ps := DefaultRegistry().Derive(set.View(atom.NSCtxFinal, atom.NSThreat, atom.NSDrv), "a")

	en := Enabled(ps)
	require.Len(t, en, 1)
	assert.Equal(t, ActionWait, en[0].ActionID)
	assert.True(t, en[0].Meta.Fallback)
	assert.NotEmpty(t, en[0].Notes)

	// disabled defs are kept for explanation
	assert.Greater(t, len(ps), 1)
	for _, p := range ps {
		if !p.Meta.Fallback {
			assert.NotEmpty(t, p.Vetoes, p.ID)
		}
	}
}

func TestNoFallbackWhenSomethingEnabled(t *testing.T) {
	v := buildView(t, scene{threat: 0.8, weapon: 0, proximity: 0.5})
	ps := DefaultRegistry().Derive(v, "a")
	p, ok := find(ps, "flee:a")
	require.True(t, ok)
	assert.True(t, p.Enabled)
	for _, p := range ps {
		assert.False(t, p.Meta.Fallback)
	}
}

func TestProvocation(t *testing.T) {
	in := Inputs{
		Threat: Signal{Value: 0.2, Known: true},
		Anger:  Signal{Value: 0.6, Known: true},
	}
	// harm unknown contributes nothing
	assert.InDelta(t, 0.3, Provocation(in), 1e-9)
	in.Harm = Signal{Value: 0.8, Known: true}
	assert.InDelta(t, 0.7, Provocation(in), 1e-9)
}
