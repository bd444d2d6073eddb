package catalog

import "github.com/danielpatrickdp/agent-cognition/go-engine/internal/traits"

// #region goal-def

// Input sources a goal can read.
const (
	SourceCtxFinal = "ctx:final"
	SourceDrv      = "drv"
)

// ReservedGoalID is the util key of an agent's overall urgency, so no goal
// may use it.
const ReservedGoalID = "urgency"

// GoalInput is one weighted term of a goal logit.
type GoalInput struct {
	Source string  `json:"source" yaml:"source" validate:"oneof=ctx:final drv"`
	Axis   string  `json:"axis" yaml:"axis" validate:"required"`
	Weight float64 `json:"weight" yaml:"weight"`
}

// GoalDef is the static metadata of a goal domain.
type GoalDef struct {
	ID       string      `json:"id" yaml:"id" validate:"required"`
	Label    string      `json:"label" yaml:"label"`
	Value    float64     `json:"value" yaml:"value" validate:"gte=0"`
	Tags     []string    `json:"tags,omitempty" yaml:"tags,omitempty"`
	Deadline int         `json:"deadline,omitempty" yaml:"deadline,omitempty" validate:"gte=0"`
	Bias     float64     `json:"bias" yaml:"bias"`
	Inputs   []GoalInput `json:"inputs" yaml:"inputs" validate:"required,min=1,dive"`
}

// #endregion goal-def

// #region action-def

// ActionDef is the static effect profile of an action kind.
type ActionDef struct {
	ID         string             `json:"id" yaml:"id" validate:"required"`
	Label      string             `json:"label" yaml:"label"`
	Tags       []string           `json:"tags,omitempty" yaml:"tags,omitempty"`
	DeltaGoals map[string]float64 `json:"delta_goals" yaml:"delta_goals"`
	Cost       float64            `json:"cost" yaml:"cost" validate:"gte=0"`
	Confidence float64            `json:"confidence" yaml:"confidence" validate:"gte=0,lte=1"`
}

// #endregion action-def

// #region tables

// Tables bundles the read-only data the engine consumes.
type Tables struct {
	Goals   []GoalDef            `json:"goals" yaml:"goals" validate:"required,min=1,dive"`
	Actions map[string]ActionDef `json:"actions" yaml:"actions" validate:"required,dive"`
	Traits  traits.Matrix        `json:"-" yaml:"-"`
}

// Goal looks up a goal by id.
func (t *Tables) Goal(id string) (GoalDef, bool) {
	for _, g := range t.Goals {
		if g.ID == id {
			return g, true
		}
	}
	return GoalDef{}, false
}

// Action looks up an action by id.
func (t *Tables) Action(id string) (ActionDef, bool) {
	a, ok := t.Actions[id]
	return a, ok
}

// GoalIDs returns goal ids in table order.
func (t *Tables) GoalIDs() []string {
	ids := make([]string, len(t.Goals))
	for i, g := range t.Goals {
		ids[i] = g.ID
	}
	return ids
}

// #endregion tables
