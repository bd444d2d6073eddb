package gate

// #region veto-type
// VetoType enumerates hard veto categories.
type VetoType string

const (
	VetoLineage   VetoType = "lineage"
	VetoShape     VetoType = "shape_change"
	VetoNonFinite VetoType = "non_finite"
	VetoDelta     VetoType = "delta_cap"
)

// #endregion veto-type

// #region veto-signal
// VetoSignal represents a detected hard veto condition.
type VetoSignal struct {
	Type   VetoType `json:"type"`
	Reason string   `json:"reason"`
}

// #endregion veto-signal

// #region gate-config
// Config holds thresholds for commit decisions.
type Config struct {
	MaxDeltaNorm float64 `yaml:"max_delta_norm" validate:"gt=0"`     // max L2 norm of the state change per step
	RiskWeight   float64 `yaml:"risk_weight" validate:"gte=0,lte=1"` // share of the soft score taken by the risk mean
}

// DefaultConfig returns sensible defaults.
func DefaultConfig() Config {
	return Config{
		MaxDeltaNorm: 1.0,
		RiskWeight:   0.3,
	}
}

// #endregion gate-config

// #region gate-decision
// Action is the gate outcome.
type Action string

const (
	Commit Action = "commit"
	Reject Action = "reject"
)

// Decision is the output of the gate evaluation.
type Decision struct {
	Action      Action       `json:"action"`
	Reason      string       `json:"reason"`
	Vetoed      bool         `json:"vetoed"`
	VetoSignals []VetoSignal `json:"veto_signals,omitempty"`
	SoftScore   float64      `json:"soft_score"` // 0-1, logged only
	DeltaNorm   float64      `json:"delta_norm"`
}

// #endregion gate-decision
