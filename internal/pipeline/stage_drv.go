package pipeline

import (
	"math"

	"github.com/danielpatrickdp/agent-cognition/go-engine/internal/atom"
)

// #region drv-stage

// drvStage derives helper drivers consumed by goals and cited by actions.
type drvStage struct{}

func (drvStage) ID() StageID { return StageDrv }

func (drvStage) Run(in atom.View, agentID string, _ *Slice) []atom.Atom {
	final := func(axis string) (float64, string, bool) {
		return in.Magnitude(atom.NSCtxFinal, axis, agentID, "")
	}
	var out []atom.Atom
	emit := func(key string, v float64, used ...string) {
		out = append(out, atom.New(atom.Spec{
			NS: atom.NSDrv, Kind: atom.KindDriver, Key: key, Subject: agentID,
			Magnitude: atom.Clamp01(v), Origin: string(StageDrv), Used: used,
		}))
	}

	threat, threatID, hasThreat := in.Magnitude(atom.NSThreat, ThreatComposite, agentID, "")
	fear, fearID, hasFear := final(AxisFear)
	switch {
	case hasThreat && hasFear:
		emit(DrvSafetyNeed, math.Max(threat, fear), threatID, fearID)
	case hasThreat:
		emit(DrvSafetyNeed, threat, threatID)
	case hasFear:
		emit(DrvSafetyNeed, fear, fearID)
	}

	if v, id, ok := final(AxisFatigue); ok {
		emit(DrvRestNeed, v, id)
	}

	if hunger, hid, ok := final(AxisHunger); ok {
		if scarcity, sid, ok := final(AxisScarcity); ok {
			emit(DrvFoodNeed, hunger*(0.5+0.5*scarcity), hid, sid)
		} else {
			emit(DrvFoodNeed, hunger, hid)
		}
	}

	if trust, tid, ok := final(AxisSocialTrust); ok {
		used := []string{tid}
		v := trust
		if hasThreat {
			v *= 1 - threat
			used = append(used, threatID)
		}
		emit(DrvSocialNeed, v, used...)
	}

	if norm, nid, ok := final(AxisNormPressure); ok {
		v := norm
		used := []string{nid}
		if pub, pid, ok := final(AxisPublicness); ok {
			v = norm * (0.5 + 0.5*pub)
			used = append(used, pid)
		}
		if proc, prid, ok := final(AxisProcedural); ok {
			v = math.Max(v, proc)
			used = append(used, prid)
		}
		emit(DrvConformity, v, used...)
	}

	if anger, aid, ok := final(AxisAnger); ok {
		used := []string{aid}
		harm, harmIDs, hasHarm := maxDyadic(in, atom.NSCtxFinal, AxisHarm, agentID)
		var v float64
		if hasHarm {
			v = 0.5*anger + 0.5*harm
			used = append(used, harmIDs...)
		} else {
			v = 0.5 * anger
		}
		if proc, pid, ok := final(AxisProcedural); ok {
			v *= 1 - 0.5*proc
			used = append(used, pid)
		}
		emit(DrvAggression, v, used...)
	}
	return out
}

// #endregion drv-stage
