package replay

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/danielpatrickdp/agent-cognition/go-engine/internal/decision"
	"github.com/danielpatrickdp/agent-cognition/go-engine/internal/engine"
	"github.com/danielpatrickdp/agent-cognition/go-engine/internal/mass"
	"github.com/danielpatrickdp/agent-cognition/go-engine/internal/world"
)

// #region fixture-types

// Fixture is the top-level JSON structure for a replay fixture.
type Fixture struct {
	Description string          `json:"description"`
	Config      FixtureConfig   `json:"config"`
	Network     *FixtureNetwork `json:"network,omitempty"`
	Ticks       []FixtureTick   `json:"ticks"`
}

// FixtureConfig overrides engine defaults. Nil fields keep the default.
type FixtureConfig struct {
	Seed          *uint64  `json:"seed,omitempty"`
	Temperature   *float64 `json:"temperature,omitempty"`
	MinConfidence *float64 `json:"min_confidence,omitempty"`
	MomentumBonus *float64 `json:"momentum_bonus,omitempty"`
	Model         string   `json:"model,omitempty"` // "multiplicative" | "additive"
}

// FixtureNetwork is the starting mass network and character assignment.
type FixtureNetwork struct {
	Nodes      []mass.Node     `json:"nodes"`
	Weights    [][]float64     `json:"weights,omitempty"`
	Assignment mass.Assignment `json:"assignment"`
}

// FixtureTick is one recorded world tick.
type FixtureTick struct {
	World     world.Snapshot        `json:"world"`
	Mods      map[string]world.Mods `json:"mods,omitempty"`
	Overrides []decision.Override   `json:"overrides,omitempty"`
	// Expected maps agent id to the action kind it should choose.
	Expected map[string]string `json:"expected,omitempty"`
}

// #endregion fixture-types

// #region fixture-loader

// LoadFixture reads and parses a JSON fixture file.
func LoadFixture(path string) (*Fixture, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read fixture %s: %w", path, err)
	}
	return ParseFixture(data)
}

// ParseFixture parses fixture JSON.
func ParseFixture(data []byte) (*Fixture, error) {
	var f Fixture
	if err := json.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse fixture: %w", err)
	}
	if len(f.Ticks) == 0 {
		return nil, fmt.Errorf("parse fixture: no ticks")
	}
	return &f, nil
}

// Options applies the fixture config on top of base.
func (fc FixtureConfig) Options(base engine.Options) (engine.Options, error) {
	if fc.Seed != nil {
		base.Seed = *fc.Seed
	}
	if fc.Temperature != nil {
		base.Temperature = *fc.Temperature
	}
	if fc.MinConfidence != nil {
		base.MinConfidence = *fc.MinConfidence
	}
	if fc.MomentumBonus != nil {
		base.MomentumBonus = *fc.MomentumBonus
	}
	switch fc.Model {
	case "":
	case decision.Multiplicative.String():
		base.Model = decision.Multiplicative
	case decision.AdditivePenalty.String():
		base.Model = decision.AdditivePenalty
	default:
		return base, fmt.Errorf("fixture config: unknown model %q", fc.Model)
	}
	return base, nil
}

// Snapshot returns the tick's world with its mods store populated.
func (ft *FixtureTick) Snapshot() *world.Snapshot {
	snap := ft.World
	snap.Mods = world.NewModsStore()
	snap.Mods.Load(ft.Mods)
	return &snap
}

// Build constructs the starting network.
func (fn *FixtureNetwork) Build() (mass.Network, error) {
	return mass.NewNetwork(fn.Nodes, fn.Weights)
}

// #endregion fixture-loader
