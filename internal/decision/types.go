package decision

// #region candidate

// Candidate is one scored option for an actor.
type Candidate struct {
	ID           string             `json:"id"`
	Kind         string             `json:"kind"`
	ActorID      string             `json:"actor_id"`
	TargetID     string             `json:"target_id,omitempty"`
	DeltaGoals   map[string]float64 `json:"delta_goals"`
	Cost         float64            `json:"cost"`
	Confidence   float64            `json:"confidence"`
	SupportAtoms []string           `json:"support_atoms,omitempty"`
}

// #endregion candidate

// #region options

// ConfidenceModel selects how confidence discounts a candidate's score.
// One model applies to every candidate in a call.
type ConfidenceModel int

const (
	// Multiplicative scores q = (rawQ - cost) * confidence.
	Multiplicative ConfidenceModel = iota
	// AdditivePenalty scores q = rawQ - cost - (1 - confidence) * max(rawQ - cost, 0) * penalty.
	AdditivePenalty
)

func (m ConfidenceModel) String() string {
	if m == AdditivePenalty {
		return "additive"
	}
	return "multiplicative"
}

// DefaultPenaltyFactor is used by AdditivePenalty when Options.PenaltyFactor is zero.
const DefaultPenaltyFactor = 0.4

// OverrideForceAction is the only override type understood by Decide.
const OverrideForceAction = "force_action"

// Override is an external control event.
type Override struct {
	Type     string `json:"type"`
	AgentID  string `json:"agent_id"`
	ActionID string `json:"action_id"`
}

// Options tunes one Decide call. The zero value scores multiplicatively with
// no filter, no momentum and no overrides.
type Options struct {
	Model         ConfidenceModel
	PenaltyFactor float64 // 0 means DefaultPenaltyFactor
	MinConfidence float64

	PrevActionID  string
	MomentumBonus float64

	// SamplingOverride is added to the sampling logit of the named candidate.
	// It never changes q or the ranked order.
	SamplingOverride map[string]float64

	Overrides []Override
	AgentID   string

	// UtilIDs maps goal id to the util atom id carrying its energy.
	UtilIDs map[string]string
	// UrgencyID is cited by action atoms that would otherwise cite no util atom.
	UrgencyID string
}

// #endregion options

// #region snapshot

// Scored is a candidate with its scores.
type Scored struct {
	Candidate Candidate `json:"candidate"`
	RawQ      float64   `json:"raw_q"`
	Q         float64   `json:"q"`
	Logit     float64   `json:"logit"`
}

// Rand is the random source used for sampling.
type Rand interface {
	Float64() float64
}

// #endregion snapshot
