package catalog

import "github.com/danielpatrickdp/agent-cognition/go-engine/internal/traits"

// #region default-tables

// Default returns the built-in tables.
func Default() *Tables {
	return &Tables{
		Goals:   defaultGoals(),
		Actions: defaultActions(),
		Traits:  defaultTraits(),
	}
}

func defaultGoals() []GoalDef {
	return []GoalDef{
		{ID: "safety", Label: "Stay safe", Value: 1.0, Tags: []string{"survival"}, Bias: -2.0, Inputs: []GoalInput{
			{Source: SourceDrv, Axis: "safetyNeed", Weight: 4.0},
			{Source: SourceCtxFinal, Axis: "danger", Weight: 1.0},
		}},
		{ID: "rest", Label: "Recover", Value: 0.6, Tags: []string{"body"}, Bias: -2.5, Inputs: []GoalInput{
			{Source: SourceDrv, Axis: "restNeed", Weight: 4.0},
		}},
		{ID: "sustenance", Label: "Find food", Value: 0.8, Tags: []string{"body", "survival"}, Bias: -2.5, Inputs: []GoalInput{
			{Source: SourceDrv, Axis: "foodNeed", Weight: 4.0},
		}},
		{ID: "affiliation", Label: "Keep company", Value: 0.5, Tags: []string{"social"}, Bias: -1.5, Inputs: []GoalInput{
			{Source: SourceDrv, Axis: "socialNeed", Weight: 2.5},
			{Source: SourceCtxFinal, Axis: "socialTrust", Weight: 1.0},
		}},
		{ID: "status", Label: "Save face", Value: 0.5, Tags: []string{"social"}, Bias: -1.5, Inputs: []GoalInput{
			{Source: SourceCtxFinal, Axis: "publicness", Weight: 1.5},
			{Source: SourceCtxFinal, Axis: "anger", Weight: 1.0},
		}},
		{ID: "order", Label: "Follow the rules", Value: 0.5, Tags: []string{"norm"}, Bias: -2.0, Inputs: []GoalInput{
			{Source: SourceDrv, Axis: "conformity", Weight: 4.0},
		}},
		{ID: "retribution", Label: "Answer harm", Value: 0.4, Tags: []string{"conflict"}, Bias: -3.0, Inputs: []GoalInput{
			{Source: SourceDrv, Axis: "aggression", Weight: 5.0},
			{Source: SourceCtxFinal, Axis: "anger", Weight: 1.0},
		}},
	}
}

func defaultActions() map[string]ActionDef {
	defs := []ActionDef{
		{ID: "attack", Label: "Attack", Tags: []string{"violent"}, Cost: 0.25, Confidence: 0.7,
			DeltaGoals: map[string]float64{"retribution": 0.9, "status": 0.3, "safety": -0.2, "order": -0.6}},
		{ID: "confront", Label: "Confront", Tags: []string{"verbal"}, Cost: 0.1, Confidence: 0.8,
			DeltaGoals: map[string]float64{"retribution": 0.4, "status": 0.3, "order": -0.2}},
		{ID: "talk", Label: "Talk", Tags: []string{"verbal", "social"}, Cost: 0.05, Confidence: 0.9,
			DeltaGoals: map[string]float64{"affiliation": 0.5, "order": 0.1}},
		{ID: "help", Label: "Help", Tags: []string{"social"}, Cost: 0.15, Confidence: 0.85,
			DeltaGoals: map[string]float64{"affiliation": 0.6, "status": 0.2, "rest": -0.1}},
		{ID: "flee", Label: "Flee", Tags: []string{"movement"}, Cost: 0.1, Confidence: 0.9,
			DeltaGoals: map[string]float64{"safety": 0.8, "status": -0.2}},
		{ID: "hide", Label: "Hide", Tags: []string{"stealth"}, Cost: 0.05, Confidence: 0.8,
			DeltaGoals: map[string]float64{"safety": 0.6}},
		{ID: "rest", Label: "Rest", Tags: []string{"body"}, Cost: 0.02, Confidence: 0.95,
			DeltaGoals: map[string]float64{"rest": 0.8, "safety": -0.05}},
		{ID: "forage", Label: "Forage", Tags: []string{"body"}, Cost: 0.1, Confidence: 0.8,
			DeltaGoals: map[string]float64{"sustenance": 0.8, "rest": -0.2}},
		{ID: "comply", Label: "Comply", Tags: []string{"norm"}, Cost: 0.05, Confidence: 0.95,
			DeltaGoals: map[string]float64{"order": 0.7, "status": 0.1, "retribution": -0.2}},
		{ID: "wait", Label: "Wait", Tags: []string{"idle"}, Cost: 0, Confidence: 1,
			DeltaGoals: map[string]float64{"rest": 0.05}},
	}
	out := make(map[string]ActionDef, len(defs))
	for _, d := range defs {
		out[d.ID] = d
	}
	return out
}

func defaultTraits() traits.Matrix {
	return traits.Matrix{
		"aggressive": {
			traits.GoalKey("retribution"): {Multiplier: 1.6, Bonus: 0.3},
			traits.InputKey("anger"):      {Multiplier: 1.3, Bonus: 0.05},
		},
		"anxious": {
			traits.GoalKey("safety"):  {Multiplier: 1.4, Bonus: 0.2},
			traits.InputKey("danger"): {Multiplier: 1.25, Bonus: 0.05},
			traits.InputKey("fear"):   {Multiplier: 1.3, Bonus: 0},
		},
		"sociable": {
			traits.GoalKey("affiliation"): {Multiplier: 1.5, Bonus: 0.2},
		},
		"disciplined": {
			traits.GoalKey("order"):       {Multiplier: 1.4, Bonus: 0.2},
			traits.GoalKey("retribution"): {Multiplier: 0.6, Bonus: 0},
			traits.InputKey("anger"):      {Multiplier: 0.7, Bonus: 0},
		},
		"proud": {
			traits.GoalKey("status"): {Multiplier: 1.5, Bonus: 0.2},
		},
		"resilient": {
			traits.InputKey("stress"):  {Multiplier: 0.7, Bonus: 0},
			traits.InputKey("fatigue"): {Multiplier: 0.8, Bonus: 0},
		},
	}
}

// #endregion default-tables
