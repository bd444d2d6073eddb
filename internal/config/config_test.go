package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/danielpatrickdp/agent-cognition/go-engine/internal/decision"
)

func TestDefaultConfigValid(t *testing.T) {
	require.NoError(t, DefaultConfig().Validate())
}

func TestLoadMissingFileYieldsDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig().Seed, cfg.Seed)
	assert.Equal(t, "core", cfg.Mass.DefaultNode)
}

func TestLoadYAMLOverDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "engine.yaml")
	data := []byte(`
seed: 99
temperature: 0
decision:
  model: additive
  penalty_factor: 0.5
  min_confidence: 0.4
gates:
  attack_max_procedural: 0.8
mass:
  dt: 0.05
  nodes:
    - id: a
      params: {tau: 1, gain: 1}
    - id: b
      params: {tau: 1, gain: 1}
  weights: [[0, 1], [1, 0]]
  assignment: {bram: b}
  default_node: a
commit_gate:
  max_delta_norm: 0.25
`)
	require.NoError(t, os.WriteFile(path, data, 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, uint64(99), cfg.Seed)
	assert.InDelta(t, 0.8, cfg.Gates.AttackMaxProcedural, 1e-12)
	// untouched keys keep their defaults
	assert.InDelta(t, DefaultConfig().Gates.AttackMinWeapon, cfg.Gates.AttackMinWeapon, 1e-12)
	assert.InDelta(t, 0.25, cfg.Commit.MaxDeltaNorm, 1e-12)
	assert.InDelta(t, DefaultConfig().Commit.RiskWeight, cfg.Commit.RiskWeight, 1e-12)

	opts := cfg.EngineOptions()
	assert.Equal(t, decision.AdditivePenalty, opts.Model)
	assert.InDelta(t, 0.5, opts.PenaltyFactor, 1e-12)
	assert.InDelta(t, 0.05, opts.Dt, 1e-12)

	net, err := cfg.Network()
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, net.NodeOrder)

	assign := cfg.AssignmentFor([]string{"bram", "cole"})
	assert.Equal(t, "b", assign["bram"])
	assert.Equal(t, "a", assign["cole"])
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("COGNITION_DB", "/tmp/x.db")
	t.Setenv("COGNITION_SEED", "7")
	t.Setenv("COGNITION_LOG_LEVEL", "debug")
	t.Setenv("COGNITION_GRPC_ADDR", "127.0.0.1:1")
	t.Setenv("COGNITION_METRICS_ADDR", "")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "/tmp/x.db", cfg.Database)
	assert.Equal(t, uint64(7), cfg.Seed)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "127.0.0.1:1", cfg.Server.GRPCAddr)
	assert.Empty(t, cfg.Server.MetricsAddr)
}

func TestInvalidSeedEnv(t *testing.T) {
	t.Setenv("COGNITION_SEED", "many")
	_, err := Load("")
	assert.ErrorIs(t, err, ErrInvalid)
}

func TestValidateRejects(t *testing.T) {
	cases := map[string]func(c *Config){
		"model":        func(c *Config) { c.Decision.Model = "mixed" },
		"log level":    func(c *Config) { c.Log.Level = "loud" },
		"no nodes":     func(c *Config) { c.Mass.Nodes = nil },
		"bad weights":  func(c *Config) { c.Mass.Weights = [][]float64{{0}} },
		"unknown node": func(c *Config) { c.Mass.Assignment = map[string]string{"x": "nowhere"} },
		"alpha":        func(c *Config) { c.Pipeline.SmoothingAlpha = 0 },
		"gate range":   func(c *Config) { c.Gates.FleeMinThreat = 2 },
		"commit cap":   func(c *Config) { c.Commit.MaxDeltaNorm = 0 },
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			c := DefaultConfig()
			mutate(c)
			assert.ErrorIs(t, c.Validate(), ErrInvalid)
		})
	}
}

func TestSaveRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "engine.yaml")
	c := DefaultConfig()
	c.Seed = 1234
	require.NoError(t, c.Save(path))

	got, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, c, got)
}
