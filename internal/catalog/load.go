package catalog

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/danielpatrickdp/agent-cognition/go-engine/internal/traits"
)

// ErrInvalidTables is returned when static tables fail validation.
var ErrInvalidTables = errors.New("invalid tables")

// tablesValidate is the validator instance for table structs.
var tablesValidate = validator.New()

// #region file-format

type fileEffect struct {
	Multiplier *float64 `yaml:"multiplier"`
	Bonus      float64  `yaml:"bonus"`
}

type fileTables struct {
	Goals   []GoalDef                        `yaml:"goals"`
	Actions []ActionDef                      `yaml:"actions"`
	Traits  map[string]map[string]fileEffect `yaml:"traits"`
}

// #endregion file-format

// #region load

// Load reads tables from a YAML file. An empty path returns Default().
func Load(path string) (*Tables, error) {
	if path == "" {
		return Default(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read tables %s: %w", path, err)
	}
	return Parse(data)
}

// Parse decodes and validates YAML table data.
func Parse(data []byte) (*Tables, error) {
	var raw fileTables
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parse tables: %w", err)
	}

	t := &Tables{
		Goals:   raw.Goals,
		Actions: make(map[string]ActionDef, len(raw.Actions)),
		Traits:  make(traits.Matrix, len(raw.Traits)),
	}
	for _, a := range raw.Actions {
		if _, dup := t.Actions[a.ID]; dup {
			return nil, fmt.Errorf("%w: duplicate action %q", ErrInvalidTables, a.ID)
		}
		t.Actions[a.ID] = a
	}
	for traitID, row := range raw.Traits {
		effects := make(map[traits.ModifierKey]traits.Effect, len(row))
		for key, eff := range row {
			if !strings.HasPrefix(key, "Goal:") && !strings.HasPrefix(key, "Input:") {
				return nil, fmt.Errorf("%w: trait %q key %q must start with Goal: or Input:", ErrInvalidTables, traitID, key)
			}
			mult := 1.0
			if eff.Multiplier != nil {
				mult = *eff.Multiplier
			}
			effects[traits.ModifierKey(key)] = traits.Effect{Multiplier: mult, Bonus: eff.Bonus}
		}
		t.Traits[traitID] = effects
	}

	if err := t.Validate(); err != nil {
		return nil, err
	}
	return t, nil
}

// #endregion load

// #region validate

// Validate checks field constraints and cross references between tables.
func (t *Tables) Validate() error {
	if err := tablesValidate.Struct(t); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidTables, err)
	}
	seen := make(map[string]bool, len(t.Goals))
	for _, g := range t.Goals {
		if g.ID == ReservedGoalID {
			return fmt.Errorf("%w: goal id %q is reserved", ErrInvalidTables, g.ID)
		}
		if strings.Contains(g.ID, ":") {
			return fmt.Errorf("%w: goal id %q contains ':'", ErrInvalidTables, g.ID)
		}
		for _, in := range g.Inputs {
			if strings.Contains(in.Axis, ":") {
				return fmt.Errorf("%w: goal %q input axis %q contains ':'", ErrInvalidTables, g.ID, in.Axis)
			}
		}
		if seen[g.ID] {
			return fmt.Errorf("%w: duplicate goal %q", ErrInvalidTables, g.ID)
		}
		seen[g.ID] = true
	}
	if _, ok := t.Actions["wait"]; !ok {
		return fmt.Errorf("%w: action table must define wait", ErrInvalidTables)
	}
	for id, a := range t.Actions {
		if id != a.ID {
			return fmt.Errorf("%w: action key %q does not match id %q", ErrInvalidTables, id, a.ID)
		}
		if strings.Contains(id, ":") {
			return fmt.Errorf("%w: action id %q contains ':'", ErrInvalidTables, id)
		}
		for goal := range a.DeltaGoals {
			if !seen[goal] {
				return fmt.Errorf("%w: action %q references unknown goal %q", ErrInvalidTables, id, goal)
			}
		}
	}
	return nil
}

// #endregion validate
