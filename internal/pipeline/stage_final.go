package pipeline

import (
	"github.com/danielpatrickdp/agent-cognition/go-engine/internal/atom"
)

// #region final-specs

// weighted is one contributing base axis of a ctx:final axis.
type weighted struct {
	axis   string
	weight float64
}

// finalSpec aggregates base ctx axes into one ctx:final axis. The first term
// is the primary axis and must be present.
type finalSpec struct {
	axis  string
	terms []weighted
}

// finalSpecs lists how each ctx:final axis combines base axes.
var finalSpecs = []finalSpec{
	{AxisDanger, []weighted{{AxisDanger, 1.0}, {AxisFear, 0.25}}},
	{AxisNormPressure, []weighted{{AxisNormPressure, 1.0}, {AxisPublicness, 0.3}}},
	{AxisPublicness, []weighted{{AxisPublicness, 1.0}}},
	{AxisProcedural, []weighted{{AxisProcedural, 1.0}}},
	{AxisAnger, []weighted{{AxisAnger, 1.0}, {AxisStress, 0.2}}},
	{AxisFear, []weighted{{AxisFear, 1.0}, {AxisDanger, 0.3}}},
	{AxisStress, []weighted{{AxisStress, 1.0}}},
	{AxisFatigue, []weighted{{AxisFatigue, 1.0}}},
	{AxisHunger, []weighted{{AxisHunger, 1.0}, {AxisScarcity, 0.2}}},
	{AxisScarcity, []weighted{{AxisScarcity, 1.0}}},
	{AxisSocialTrust, []weighted{{AxisSocialTrust, 1.0}}},
	{AxisValence, []weighted{{AxisValence, 1.0}}},
	{AxisWeaponAccess, []weighted{{AxisWeaponAccess, 1.0}}},
}

// #endregion final-specs

// #region final-stage

// finalStage aggregates ctx axes into ctx:final axes, citing every
// contributing atom, and smooths them against the previous tick when a prior
// value is available.
type finalStage struct{}

func (finalStage) ID() StageID { return StageCtxFinal }

func (finalStage) Run(in atom.View, agentID string, slice *Slice) []atom.Atom {
	var out []atom.Atom
	emit := func(axis, other string, value float64, used []string) {
		id := atom.ID(atom.NSCtxFinal, axis, agentID, other)
		var notes []string
		if prev, ok := slice.PrevFinal[id]; ok && atom.Finite(prev) {
			alpha := slice.Config.SmoothingAlpha
			if alpha > 0 && alpha < 1 {
				value = alpha*value + (1-alpha)*prev
				notes = append(notes, note("smoothed alpha=%.2f prev=%.4f", alpha, prev))
			}
		}
		out = append(out, atom.New(atom.Spec{
			NS: atom.NSCtxFinal, Kind: atom.KindAggregate, Key: axis, Subject: agentID, Target: other,
			Magnitude: atom.Clamp01(value), Origin: string(StageCtxFinal), Used: used, Notes: notes,
		}))
	}

	for _, s := range finalSpecs {
		terms := make([]term, len(s.terms))
		for i, t := range s.terms {
			terms[i] = term{atom.ID(atom.NSCtx, t.axis, agentID, ""), t.weight}
		}
		if _, ok := in.Get(terms[0].id); !ok {
			continue
		}
		if v, used, ok := weightedMean(in, terms); ok {
			emit(s.axis, "", v, used)
		}
	}

	for _, other := range others(in, atom.NSCtx, agentID, AxisHarm, AxisProximity, AxisHostility) {
		for _, axis := range []string{AxisHarm, AxisProximity, AxisHostility} {
			a, ok := in.Find(atom.NSCtx, axis, agentID, other)
			if !ok {
				continue
			}
			emit(axis, other, a.Magnitude, []string{a.ID})
		}
	}
	return out
}

// #endregion final-stage
