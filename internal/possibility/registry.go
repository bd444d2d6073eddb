package possibility

import (
	"github.com/danielpatrickdp/agent-cognition/go-engine/internal/atom"
)

// ActionWait is the id of the fallback possibility.
const ActionWait = "wait"

// #region def

// GateFunc decides one possibility from its inputs.
type GateFunc func(in Inputs, cfg GateConfig) GateDecision

// Def describes one affordance. Targeted defs are evaluated once per other
// agent the actor has dyadic context about.
type Def struct {
	ActionID string
	Label    string
	PlanTags []string
	Targeted bool
	Gate     GateFunc
}

// DefaultDefs returns the built-in affordances.
func DefaultDefs() []Def {
	return []Def{
		{ActionID: "attack", Label: "Attack", PlanTags: []string{"violent", "physical"}, Targeted: true, Gate: GateAttack},
		{ActionID: "confront", Label: "Confront", PlanTags: []string{"verbal", "hostile"}, Targeted: true, Gate: GateConfront},
		{ActionID: "talk", Label: "Talk", PlanTags: []string{"verbal", "social"}, Targeted: true, Gate: GateTalk},
		{ActionID: "help", Label: "Help", PlanTags: []string{"social", "prosocial"}, Targeted: true, Gate: GateHelp},
		{ActionID: "flee", Label: "Flee", PlanTags: []string{"movement", "avoidant"}, Gate: GateFlee},
		{ActionID: "hide", Label: "Hide", PlanTags: []string{"avoidant"}, Gate: GateHide},
		{ActionID: "rest", Label: "Rest", PlanTags: []string{"recovery"}, Gate: GateRest},
		{ActionID: "forage", Label: "Forage", PlanTags: []string{"resource"}, Gate: GateForage},
		{ActionID: "comply", Label: "Comply", PlanTags: []string{"normative"}, Gate: GateComply},
	}
}

// #endregion def

// #region registry

// Registry holds affordance definitions and their gate thresholds.
type Registry struct {
	cfg  GateConfig
	defs []Def
}

// NewRegistry builds a registry. With no defs it uses DefaultDefs.
func NewRegistry(cfg GateConfig, defs ...Def) *Registry {
	if len(defs) == 0 {
		defs = DefaultDefs()
	}
	return &Registry{cfg: cfg, defs: defs}
}

// DefaultRegistry uses DefaultGateConfig and DefaultDefs.
func DefaultRegistry() *Registry {
	return NewRegistry(DefaultGateConfig())
}

// Config returns the gate thresholds.
func (r *Registry) Config() GateConfig { return r.cfg }

// Derive enumerates every affordance for agentID. The view must cover
// ctx:final, threat and drv. Disabled possibilities are kept with their
// vetoes. When nothing is enabled a fallback wait is appended, so the result
// always has at least one enabled entry.
func (r *Registry) Derive(v atom.View, agentID string) []Possibility {
	self := ReadInputs(v, agentID)
	others := targets(v, agentID)

	var out []Possibility
	enabled := 0
	for _, d := range r.defs {
		if !d.Targeted {
			p := build(d, self, d.Gate(self, r.cfg))
			if p.Enabled {
				enabled++
			}
			out = append(out, p)
			continue
		}
		for _, t := range others {
			in := self.ForTarget(v, t)
			p := build(d, in, d.Gate(in, r.cfg))
			if p.Enabled {
				enabled++
			}
			out = append(out, p)
		}
	}
	if enabled == 0 {
		out = append(out, fallback(self, len(out)))
	}
	return out
}

// #endregion registry

func build(d Def, in Inputs, g GateDecision) Possibility {
	p := Possibility{
		ID:           possibilityID(d.ActionID, in.AgentID, in.TargetID),
		ActionID:     d.ActionID,
		Label:        d.Label,
		ActorID:      in.AgentID,
		TargetID:     in.TargetID,
		PlanTags:     d.PlanTags,
		Params:       g.Params,
		Enabled:      g.Enabled,
		SupportAtoms: in.Support(),
		Vetoes:       g.Vetoes,
	}
	if g.Enabled {
		m := g.Magnitude
		p.Magnitude = &m
	}
	return p
}

func fallback(self Inputs, blocked int) Possibility {
	note := "no affordance enabled; fallback wait"
	if blocked == 0 {
		note = "no affordance defined; fallback wait"
	}
	return Possibility{
		ID:           possibilityID(ActionWait, self.AgentID, ""),
		ActionID:     ActionWait,
		Label:        "Wait",
		ActorID:      self.AgentID,
		PlanTags:     []string{"idle"},
		Enabled:      true,
		SupportAtoms: self.Support(),
		Meta:         Meta{Fallback: true},
		Notes:        []string{note},
	}
}

// Fallback builds the fallback wait for agentID with reason as its note. The
// decision layer uses it when no enabled possibility maps to a catalog action.
func Fallback(v atom.View, agentID, reason string) Possibility {
	p := fallback(ReadInputs(v, agentID), 1)
	p.Notes = []string{reason}
	return p
}

func possibilityID(actionID, agentID, targetID string) string {
	id := actionID + ":" + agentID
	if targetID != "" {
		id += ":" + targetID
	}
	return id
}

// Enabled filters ps down to enabled possibilities.
func Enabled(ps []Possibility) []Possibility {
	var out []Possibility
	for _, p := range ps {
		if p.Enabled {
			out = append(out, p)
		}
	}
	return out
}
