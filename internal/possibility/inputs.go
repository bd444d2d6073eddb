package possibility

import (
	"sort"

	"github.com/danielpatrickdp/agent-cognition/go-engine/internal/atom"
	"github.com/danielpatrickdp/agent-cognition/go-engine/internal/pipeline"
)

// #region signal

// Signal is one gating value read from an atom. Known is false when the atom
// was absent; gates decide explicitly how to treat unknowns.
type Signal struct {
	Value float64
	ID    string
	Known bool
}

// Or returns the value, or def when unknown.
func (s Signal) Or(def float64) float64 {
	if !s.Known {
		return def
	}
	return s.Value
}

// #endregion signal

// #region inputs

// Inputs are the gating atoms for one agent and, for targeted gates, one target.
type Inputs struct {
	AgentID  string
	TargetID string

	Threat       Signal // threat:composite
	Anger        Signal
	Fear         Signal
	Procedural   Signal
	NormPressure Signal
	Publicness   Signal
	WeaponAccess Signal
	Trust        Signal
	Hunger       Signal
	Fatigue      Signal

	// Dyadic, zero-valued when TargetID is empty.
	Harm       Signal
	Proximity  Signal
	Hostility  Signal
	ThreatFrom Signal
}

// ReadInputs collects self gating atoms from a view over ctx:final, threat and drv.
func ReadInputs(in atom.View, agentID string) Inputs {
	final := func(axis string) Signal { return read(in, atom.NSCtxFinal, axis, agentID, "") }
	return Inputs{
		AgentID:      agentID,
		Threat:       read(in, atom.NSThreat, pipeline.ThreatComposite, agentID, ""),
		Anger:        final(pipeline.AxisAnger),
		Fear:         final(pipeline.AxisFear),
		Procedural:   final(pipeline.AxisProcedural),
		NormPressure: final(pipeline.AxisNormPressure),
		Publicness:   final(pipeline.AxisPublicness),
		WeaponAccess: final(pipeline.AxisWeaponAccess),
		Trust:        final(pipeline.AxisSocialTrust),
		Hunger:       final(pipeline.AxisHunger),
		Fatigue:      final(pipeline.AxisFatigue),
	}
}

// ForTarget returns a copy of in with the dyadic signals toward target.
func (in Inputs) ForTarget(v atom.View, target string) Inputs {
	in.TargetID = target
	in.Harm = read(v, atom.NSCtxFinal, pipeline.AxisHarm, in.AgentID, target)
	in.Proximity = read(v, atom.NSCtxFinal, pipeline.AxisProximity, in.AgentID, target)
	in.Hostility = read(v, atom.NSCtxFinal, pipeline.AxisHostility, in.AgentID, target)
	in.ThreatFrom = read(v, atom.NSThreat, pipeline.ThreatFrom, in.AgentID, target)
	return in
}

// Support returns the ids of every known signal.
func (in Inputs) Support() []string {
	var ids []string
	for _, s := range []Signal{
		in.Threat, in.Anger, in.Fear, in.Procedural, in.NormPressure, in.Publicness,
		in.WeaponAccess, in.Trust, in.Hunger, in.Fatigue,
		in.Harm, in.Proximity, in.Hostility, in.ThreatFrom,
	} {
		if s.Known {
			ids = append(ids, s.ID)
		}
	}
	return ids
}

func read(v atom.View, ns atom.Namespace, key, self, other string) Signal {
	m, id, ok := v.Magnitude(ns, key, self, other)
	if !ok {
		return Signal{}
	}
	return Signal{Value: m, ID: id, Known: true}
}

// #endregion inputs

// targets lists the other agents this agent has dyadic final atoms about.
func targets(v atom.View, agentID string) []string {
	seen := make(map[string]bool)
	var out []string
	for _, key := range []string{pipeline.AxisProximity, pipeline.AxisHarm, pipeline.AxisHostility} {
		for _, a := range v.Select(atom.NSCtxFinal, key, agentID) {
			if a.Target != "" && !seen[a.Target] {
				seen[a.Target] = true
				out = append(out, a.Target)
			}
		}
	}
	sort.Strings(out)
	return out
}
