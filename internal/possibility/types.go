package possibility

// #region veto-type
// VetoType enumerates the reasons a possibility can be blocked.
type VetoType string

const (
	VetoAccess      VetoType = "access"
	VetoProximity   VetoType = "proximity"
	VetoProvocation VetoType = "provocation"
	VetoProcedural  VetoType = "procedural"
	VetoThreat      VetoType = "threat"
	VetoSocial      VetoType = "social"
	VetoNeed        VetoType = "need"
	VetoExposure    VetoType = "exposure"
)

// #endregion veto-type

// #region veto-signal
// VetoSignal is one failed gate.
type VetoSignal struct {
	Type   VetoType `json:"type"`
	Reason string   `json:"reason"`
}

// #endregion veto-signal

// #region gate-config
// GateConfig holds thresholds for possibility gates.
type GateConfig struct {
	AttackMinWeapon       float64 `yaml:"attack_min_weapon" validate:"gte=0,lte=1"`     // weapon access required to attack
	AttackMinProximity    float64 `yaml:"attack_min_proximity" validate:"gte=0,lte=1"`  // proximity required to attack
	ProvocationThreshold  float64 `yaml:"provocation_threshold" validate:"gte=0,lte=1"` // max(threat, (anger+harm)/2) required to attack
	AttackMaxProcedural   float64 `yaml:"attack_max_procedural" validate:"gte=0,lte=1"` // attack is blocked at or above this procedural strictness
	ConfrontThreshold     float64 `yaml:"confront_threshold" validate:"gte=0,lte=1"`    // max(anger, harm, hostility) required to confront
	ConfrontMaxProcedural float64 `yaml:"confront_max_procedural" validate:"gte=0,lte=1"`
	SocialMinProximity    float64 `yaml:"social_min_proximity" validate:"gte=0,lte=1"` // proximity required for talk/help/confront
	TalkMaxThreat         float64 `yaml:"talk_max_threat" validate:"gte=0,lte=1"`
	HelpMinTrust          float64 `yaml:"help_min_trust" validate:"gte=0,lte=1"`
	HelpMaxHostility      float64 `yaml:"help_max_hostility" validate:"gte=0,lte=1"`
	FleeMinThreat         float64 `yaml:"flee_min_threat" validate:"gte=0,lte=1"`
	HideMinThreat         float64 `yaml:"hide_min_threat" validate:"gte=0,lte=1"`
	HideMaxPublicness     float64 `yaml:"hide_max_publicness" validate:"gte=0,lte=1"`
	RestMaxThreat         float64 `yaml:"rest_max_threat" validate:"gte=0,lte=1"`
	RestMinFatigue        float64 `yaml:"rest_min_fatigue" validate:"gte=0,lte=1"`
	ForageMinHunger       float64 `yaml:"forage_min_hunger" validate:"gte=0,lte=1"`
	ForageMaxThreat       float64 `yaml:"forage_max_threat" validate:"gte=0,lte=1"`
	ComplyMinPressure     float64 `yaml:"comply_min_pressure" validate:"gte=0,lte=1"`
}

// DefaultGateConfig returns sensible defaults.
func DefaultGateConfig() GateConfig {
	return GateConfig{
		AttackMinWeapon:       0.5,
		AttackMinProximity:    0.3,
		ProvocationThreshold:  0.45,
		AttackMaxProcedural:   0.9,
		ConfrontThreshold:     0.35,
		ConfrontMaxProcedural: 0.98,
		SocialMinProximity:    0.2,
		TalkMaxThreat:         0.6,
		HelpMinTrust:          0.4,
		HelpMaxHostility:      0.5,
		FleeMinThreat:         0.5,
		HideMinThreat:         0.4,
		HideMaxPublicness:     0.6,
		RestMaxThreat:         0.3,
		RestMinFatigue:        0.3,
		ForageMinHunger:       0.3,
		ForageMaxThreat:       0.6,
		ComplyMinPressure:     0.5,
	}
}

// #endregion gate-config

// #region gate-decision
// GateDecision is the output of one possibility gate.
type GateDecision struct {
	Enabled   bool
	Magnitude float64
	Vetoes    []VetoSignal // non-empty if disabled
	Params    map[string]float64
}

// #endregion gate-decision

// #region possibility
// Meta carries flags about how a possibility was produced.
type Meta struct {
	Fallback bool `json:"fallback,omitempty"`
}

// Possibility is a candidate affordance for one agent in one tick.
type Possibility struct {
	ID           string             `json:"id"`
	ActionID     string             `json:"action_id"`
	Label        string             `json:"label"`
	ActorID      string             `json:"actor_id"`
	TargetID     string             `json:"target_id,omitempty"`
	PlanTags     []string           `json:"plan_tags,omitempty"`
	Params       map[string]float64 `json:"params,omitempty"`
	Enabled      bool               `json:"enabled"`
	Magnitude    *float64           `json:"magnitude,omitempty"`
	SupportAtoms []string           `json:"support_atoms,omitempty"`
	Vetoes       []VetoSignal       `json:"vetoes,omitempty"`
	Meta         Meta               `json:"meta"`
	Notes        []string           `json:"notes,omitempty"`
}

// #endregion possibility
