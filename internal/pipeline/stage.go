package pipeline

import (
	"fmt"

	"github.com/danielpatrickdp/agent-cognition/go-engine/internal/atom"
	"github.com/danielpatrickdp/agent-cognition/go-engine/internal/catalog"
	"github.com/danielpatrickdp/agent-cognition/go-engine/internal/features"
	"github.com/danielpatrickdp/agent-cognition/go-engine/internal/world"
)

// #region stage-ids

// StageID names a pipeline stage. Stages run in the order of the constants.
type StageID string

const (
	StageWorld       StageID = "S0_world"
	StageFeatures    StageID = "S1_features"
	StageCtx         StageID = "S2_ctx"
	StageCtxFinal    StageID = "S3_ctx_final"
	StageThreat      StageID = "S4_threat"
	StageDrv         StageID = "S5_drv"
	StageGoal        StageID = "S6_goal"
	StageUtil        StageID = "S7_util"
	StagePossibility StageID = "S8_possibility"
	StageAction      StageID = "S9_action"
)

// Order lists every stage in execution order.
var Order = []StageID{
	StageWorld, StageFeatures, StageCtx, StageCtxFinal, StageThreat,
	StageDrv, StageGoal, StageUtil, StagePossibility, StageAction,
}

// #endregion stage-ids

// #region transitions

// Transition declares which namespaces a stage may read and the one it writes.
type Transition struct {
	Reads  []atom.Namespace
	Writes atom.Namespace
}

// Transitions is the table of legal namespace transitions. Every read must rank
// strictly below the write; ValidateTransitions enforces this at init.
var Transitions = map[StageID]Transition{
	StageWorld:       {Reads: nil, Writes: atom.NSWorld},
	StageFeatures:    {Reads: nil, Writes: atom.NSWorld},
	StageCtx:         {Reads: []atom.Namespace{atom.NSWorld}, Writes: atom.NSCtx},
	StageCtxFinal:    {Reads: []atom.Namespace{atom.NSCtx}, Writes: atom.NSCtxFinal},
	StageThreat:      {Reads: []atom.Namespace{atom.NSCtxFinal}, Writes: atom.NSThreat},
	StageDrv:         {Reads: []atom.Namespace{atom.NSCtxFinal, atom.NSThreat}, Writes: atom.NSDrv},
	StageGoal:        {Reads: []atom.Namespace{atom.NSCtxFinal, atom.NSDrv}, Writes: atom.NSGoal},
	StageUtil:        {Reads: []atom.Namespace{atom.NSGoal, atom.NSDrv}, Writes: atom.NSUtil},
	StagePossibility: {Reads: []atom.Namespace{atom.NSCtxFinal, atom.NSThreat, atom.NSDrv}, Writes: atom.NSAction},
	StageAction:      {Reads: []atom.Namespace{atom.NSUtil, atom.NSDrv}, Writes: atom.NSAction},
}

// ValidateTransitions checks that every stage in Order has a transition and
// that no stage reads its own or a later namespace.
func ValidateTransitions(table map[StageID]Transition) error {
	for _, id := range Order {
		tr, ok := table[id]
		if !ok {
			return fmt.Errorf("stage %s: no transition", id)
		}
		if !tr.Writes.Valid() {
			return fmt.Errorf("stage %s: invalid write namespace", id)
		}
		for _, ns := range tr.Reads {
			if !ns.Before(tr.Writes) {
				return fmt.Errorf("stage %s: reads %s which does not rank below %s", id, ns, tr.Writes)
			}
		}
	}
	return nil
}

func init() {
	if err := ValidateTransitions(Transitions); err != nil {
		panic(err)
	}
}

// #endregion transitions

// #region stage

// Config holds stage tuning knobs.
type Config struct {
	SmoothingAlpha float64 `yaml:"smoothing_alpha" validate:"gt=0,lte=1"` // weight of the current tick in ctx:final smoothing; 1 disables smoothing
	HarmHorizon    int     `yaml:"harm_horizon" validate:"gte=1"`         // ticks after which a logged harm no longer counts
	ProximityRange float64 `yaml:"proximity_range" validate:"gt=0"`       // distance at which proximity reaches 0
}

// DefaultConfig returns sensible defaults.
func DefaultConfig() Config {
	return Config{
		SmoothingAlpha: 0.6,
		HarmHorizon:    5,
		ProximityRange: 10,
	}
}

// Slice is the read-only world data available to stages for one agent.
type Slice struct {
	Snapshot *world.Snapshot
	Features features.Index
	Tables   *catalog.Tables
	// PrevFinal holds the previous tick's ctx:final magnitudes keyed by atom id.
	PrevFinal map[string]float64
	Config    Config
}

// Stage is one pure transformation of the pipeline.
type Stage interface {
	ID() StageID
	Run(in atom.View, agentID string, slice *Slice) []atom.Atom
}

// StageFunc adapts a function to the Stage interface.
type StageFunc struct {
	StageID StageID
	Fn      func(in atom.View, agentID string, slice *Slice) []atom.Atom
}

// ID returns the stage id.
func (s StageFunc) ID() StageID { return s.StageID }

// Run calls the wrapped function.
func (s StageFunc) Run(in atom.View, agentID string, slice *Slice) []atom.Atom {
	return s.Fn(in, agentID, slice)
}

// DefaultStages returns S0 through S7.
func DefaultStages() []Stage {
	return []Stage{
		worldStage{},
		featureStage{},
		ctxStage{},
		finalStage{},
		threatStage{},
		drvStage{},
		goalStage{},
		utilStage{},
	}
}

// #endregion stage
