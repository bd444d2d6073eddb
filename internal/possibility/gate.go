package possibility

import (
	"fmt"
	"math"
)

// #region gate-check

// check accumulates AND-gated conditions. Every failed condition adds a veto;
// the possibility is enabled only when none failed, whatever the strength of
// the conditions that passed.
type check struct {
	vetoes []VetoSignal
	params map[string]float64
}

func newCheck() *check {
	return &check{params: make(map[string]float64)}
}

// atLeast requires v >= min.
func (c *check) atLeast(name string, v, min float64, t VetoType) {
	c.params[name] = v
	if !(v >= min) {
		c.vetoes = append(c.vetoes, VetoSignal{
			Type:   t,
			Reason: fmt.Sprintf("%s %.3f below %.3f", name, v, min),
		})
	}
}

// below requires v < max.
func (c *check) below(name string, v, max float64, t VetoType) {
	c.params[name] = v
	if !(v < max) {
		c.vetoes = append(c.vetoes, VetoSignal{
			Type:   t,
			Reason: fmt.Sprintf("%s %.3f at or above %.3f", name, v, max),
		})
	}
}

// known requires s to be present.
func (c *check) known(name string, s Signal, t VetoType) bool {
	if !s.Known {
		c.vetoes = append(c.vetoes, VetoSignal{Type: t, Reason: name + " unknown"})
		return false
	}
	return true
}

func (c *check) decide(magnitude float64) GateDecision {
	if len(c.vetoes) > 0 {
		return GateDecision{Enabled: false, Vetoes: c.vetoes, Params: c.params}
	}
	return GateDecision{Enabled: true, Magnitude: clamp01(magnitude), Params: c.params}
}

// #endregion gate-check

// #region gates

// Provocation is max(threat, (anger+harm)/2). Absent anger or harm contribute
// nothing, so missing evidence never provokes.
func Provocation(in Inputs) float64 {
	return math.Max(in.Threat.Or(0), (in.Anger.Or(0)+in.Harm.Or(0))/2)
}

// GateAttack enables attack only when weapon access, proximity and provocation
// are all high enough and procedural strictness is below the cap. Unknown
// procedural strictness counts as unconstrained.
func GateAttack(in Inputs, cfg GateConfig) GateDecision {
	c := newCheck()
	if c.known("weapon access", in.WeaponAccess, VetoAccess) {
		c.atLeast("weapon", in.WeaponAccess.Value, cfg.AttackMinWeapon, VetoAccess)
	}
	if c.known("proximity", in.Proximity, VetoProximity) {
		c.atLeast("proximity", in.Proximity.Value, cfg.AttackMinProximity, VetoProximity)
	}
	prov := Provocation(in)
	c.atLeast("provocation", prov, cfg.ProvocationThreshold, VetoProvocation)
	proc := in.Procedural.Or(0)
	c.below("procedural", proc, cfg.AttackMaxProcedural, VetoProcedural)
	return c.decide(prov * (1 - proc))
}

// GateConfront enables a verbal confrontation toward a nearby provoker.
func GateConfront(in Inputs, cfg GateConfig) GateDecision {
	c := newCheck()
	if c.known("proximity", in.Proximity, VetoProximity) {
		c.atLeast("proximity", in.Proximity.Value, cfg.SocialMinProximity, VetoProximity)
	}
	prov := math.Max(in.Anger.Or(0), math.Max(in.Harm.Or(0), in.Hostility.Or(0)))
	c.atLeast("grievance", prov, cfg.ConfrontThreshold, VetoProvocation)
	proc := in.Procedural.Or(0)
	c.below("procedural", proc, cfg.ConfrontMaxProcedural, VetoProcedural)
	return c.decide(prov * (1 - 0.5*proc))
}

// GateTalk enables conversation with a nearby agent that is not threatening.
func GateTalk(in Inputs, cfg GateConfig) GateDecision {
	c := newCheck()
	if c.known("proximity", in.Proximity, VetoProximity) {
		c.atLeast("proximity", in.Proximity.Value, cfg.SocialMinProximity, VetoProximity)
	}
	tf := in.ThreatFrom.Or(0)
	c.below("threat from target", tf, cfg.TalkMaxThreat, VetoThreat)
	return c.decide((1 - tf) * (0.5 + 0.5*in.Trust.Or(0.5)))
}

// GateHelp enables helping a nearby, trusted, non-hostile agent.
func GateHelp(in Inputs, cfg GateConfig) GateDecision {
	c := newCheck()
	if c.known("proximity", in.Proximity, VetoProximity) {
		c.atLeast("proximity", in.Proximity.Value, cfg.SocialMinProximity, VetoProximity)
	}
	if c.known("trust", in.Trust, VetoSocial) {
		c.atLeast("trust", in.Trust.Value, cfg.HelpMinTrust, VetoSocial)
	}
	c.below("hostility", in.Hostility.Or(0), cfg.HelpMaxHostility, VetoSocial)
	return c.decide(in.Trust.Or(0))
}

// GateFlee enables fleeing under high threat.
func GateFlee(in Inputs, cfg GateConfig) GateDecision {
	c := newCheck()
	if c.known("threat", in.Threat, VetoThreat) {
		c.atLeast("threat", in.Threat.Value, cfg.FleeMinThreat, VetoThreat)
	}
	return c.decide(in.Threat.Or(0))
}

// GateHide enables hiding under threat in a place that is not too public.
func GateHide(in Inputs, cfg GateConfig) GateDecision {
	c := newCheck()
	if c.known("threat", in.Threat, VetoThreat) {
		c.atLeast("threat", in.Threat.Value, cfg.HideMinThreat, VetoThreat)
	}
	if c.known("publicness", in.Publicness, VetoExposure) {
		c.below("publicness", in.Publicness.Value, cfg.HideMaxPublicness, VetoExposure)
	}
	return c.decide(in.Threat.Or(0) * (1 - in.Publicness.Or(1)))
}

// GateRest enables resting when tired and safe enough.
func GateRest(in Inputs, cfg GateConfig) GateDecision {
	c := newCheck()
	if c.known("fatigue", in.Fatigue, VetoNeed) {
		c.atLeast("fatigue", in.Fatigue.Value, cfg.RestMinFatigue, VetoNeed)
	}
	c.below("threat", in.Threat.Or(0), cfg.RestMaxThreat, VetoThreat)
	return c.decide(in.Fatigue.Or(0))
}

// GateForage enables foraging when hungry and safe enough.
func GateForage(in Inputs, cfg GateConfig) GateDecision {
	c := newCheck()
	if c.known("hunger", in.Hunger, VetoNeed) {
		c.atLeast("hunger", in.Hunger.Value, cfg.ForageMinHunger, VetoNeed)
	}
	c.below("threat", in.Threat.Or(0), cfg.ForageMaxThreat, VetoThreat)
	return c.decide(in.Hunger.Or(0))
}

// GateComply enables complying with local norms or procedure.
func GateComply(in Inputs, cfg GateConfig) GateDecision {
	c := newCheck()
	pressure := math.Max(in.NormPressure.Or(0), in.Procedural.Or(0))
	c.atLeast("pressure", pressure, cfg.ComplyMinPressure, VetoNeed)
	return c.decide(pressure)
}

// #endregion gates

func clamp01(v float64) float64 {
	if math.IsNaN(v) || v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
