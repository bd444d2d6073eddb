package pipeline

import (
	"github.com/danielpatrickdp/agent-cognition/go-engine/internal/atom"
)

// #region threat-stage

// threatStage combines final danger signals into a composite threat and a
// per-other threat.
type threatStage struct{}

func (threatStage) ID() StageID { return StageThreat }

func (threatStage) Run(in atom.View, agentID string, _ *Slice) []atom.Atom {
	var out []atom.Atom
	var ps []float64
	var used []string

	if v, id, ok := in.Magnitude(atom.NSCtxFinal, AxisDanger, agentID, ""); ok {
		ps = append(ps, 0.9*v)
		used = append(used, id)
	}
	if v, id, ok := in.Magnitude(atom.NSCtxFinal, AxisFear, agentID, ""); ok {
		ps = append(ps, 0.6*v)
		used = append(used, id)
	}
	if v, ids, ok := maxDyadic(in, atom.NSCtxFinal, AxisHarm, agentID); ok {
		ps = append(ps, 0.8*v)
		used = append(used, ids...)
	}

	for _, other := range others(in, atom.NSCtxFinal, agentID, AxisHarm, AxisHostility) {
		harm, harmID, hasHarm := in.Magnitude(atom.NSCtxFinal, AxisHarm, agentID, other)
		host, hostID, hasHost := in.Magnitude(atom.NSCtxFinal, AxisHostility, agentID, other)
		var ids []string
		if hasHarm {
			ids = append(ids, harmID)
		}
		if hasHost {
			ids = append(ids, hostID)
		}
		v := 0.6*harm + 0.4*host
		reach := 0.5
		if prox, proxID, ok := in.Magnitude(atom.NSCtxFinal, AxisProximity, agentID, other); ok {
			reach = 0.5 + 0.5*prox
			ids = append(ids, proxID)
		}
		v = atom.Clamp01(v * reach)
		out = append(out, atom.New(atom.Spec{
			NS: atom.NSThreat, Kind: atom.KindComposite, Key: ThreatFrom, Subject: agentID, Target: other,
			Magnitude: v, Origin: string(StageThreat), Used: ids,
		}))
		if hasHost {
			ps = append(ps, 0.5*host*reach)
			used = append(used, hostID)
		}
	}

	if len(ps) == 0 {
		return out
	}
	composite := atom.New(atom.Spec{
		NS: atom.NSThreat, Kind: atom.KindComposite, Key: ThreatComposite, Subject: agentID,
		Magnitude: noisyOR(ps...), Origin: string(StageThreat), Used: used,
		Notes: []string{note("noisy-or over %d terms", len(ps))},
	})
	return append([]atom.Atom{composite}, out...)
}

// #endregion threat-stage
