package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/danielpatrickdp/agent-cognition/go-engine/internal/decision"
	"github.com/danielpatrickdp/agent-cognition/go-engine/internal/engine"
	"github.com/danielpatrickdp/agent-cognition/go-engine/internal/gate"
	"github.com/danielpatrickdp/agent-cognition/go-engine/internal/mass"
	"github.com/danielpatrickdp/agent-cognition/go-engine/internal/pipeline"
	"github.com/danielpatrickdp/agent-cognition/go-engine/internal/possibility"
)

// ErrInvalid is returned when a configuration fails validation.
var ErrInvalid = errors.New("invalid config")

var validate = validator.New()

// #region config

// Config is the full engine configuration.
type Config struct {
	Seed        uint64  `yaml:"seed"`
	Workers     int     `yaml:"workers" validate:"gte=0"`
	Temperature float64 `yaml:"temperature" validate:"gte=0"`
	Tables      string  `yaml:"tables,omitempty"` // static tables file; empty uses the built-in tables
	Database    string  `yaml:"database" validate:"required"`

	Decision DecisionConfig         `yaml:"decision"`
	Pipeline pipeline.Config        `yaml:"pipeline"`
	Gates    possibility.GateConfig `yaml:"gates"`
	Mass     MassConfig             `yaml:"mass"`
	Commit   gate.Config            `yaml:"commit_gate"`
	Log      LogConfig              `yaml:"log"`
	Server   ServerConfig           `yaml:"server"`
}

// DecisionConfig tunes candidate scoring.
type DecisionConfig struct {
	Model         string  `yaml:"model" validate:"oneof=multiplicative additive"`
	PenaltyFactor float64 `yaml:"penalty_factor" validate:"gte=0"`
	MinConfidence float64 `yaml:"min_confidence" validate:"gte=0,lte=1"`
	MomentumBonus float64 `yaml:"momentum_bonus"`
}

// MassConfig describes the mass network and how characters feed it.
type MassConfig struct {
	Dt          float64                `yaml:"dt" validate:"gt=0"`
	Nodes       []mass.Node            `yaml:"nodes" validate:"required,min=1,dive"`
	Weights     [][]float64            `yaml:"weights,omitempty"`
	Assignment  map[string]string      `yaml:"assignment,omitempty"`
	DefaultNode string                 `yaml:"default_node,omitempty"` // node for agents missing from Assignment
	Aggregation mass.AggregationConfig `yaml:"aggregation"`
	Risk        mass.RiskConfig        `yaml:"risk"`
}

// LogConfig selects the zap logger.
type LogConfig struct {
	Level  string `yaml:"level" validate:"oneof=debug info warn error"`
	Format string `yaml:"format" validate:"oneof=json console"`
}

// ServerConfig holds listen addresses.
type ServerConfig struct {
	GRPCAddr    string `yaml:"grpc_addr" validate:"required"`
	MetricsAddr string `yaml:"metrics_addr"` // empty disables /metrics
}

// #endregion config

// #region defaults

// DefaultConfig returns sensible defaults.
func DefaultConfig() *Config {
	opts := engine.DefaultOptions()
	return &Config{
		Seed:        opts.Seed,
		Workers:     opts.Workers,
		Temperature: opts.Temperature,
		Database:    "cognition.db",
		Decision: DecisionConfig{
			Model:         decision.Multiplicative.String(),
			PenaltyFactor: opts.PenaltyFactor,
			MinConfidence: opts.MinConfidence,
			MomentumBonus: opts.MomentumBonus,
		},
		Pipeline: opts.Pipeline,
		Gates:    opts.Gates,
		Mass: MassConfig{
			Dt: opts.Dt,
			Nodes: []mass.Node{
				{ID: "core", X: 0.1, Params: mass.Params{Tau: 2, Bias: -1, Gain: 2}},
				{ID: "fringe", X: 0.1, Params: mass.Params{Tau: 3, Bias: -1.5, Gain: 1.5}},
			},
			Weights:     [][]float64{{0, 0.4}, {0.6, 0}},
			DefaultNode: "core",
			Aggregation: opts.Aggregation,
			Risk:        opts.Risk,
		},
		Commit: gate.DefaultConfig(),
		Log:    LogConfig{Level: "info", Format: "json"},
		Server: ServerConfig{GRPCAddr: ":50071", MetricsAddr: ":9471"},
	}
}

// #endregion defaults

// #region load-save

// Load reads a YAML config over the defaults. A missing file yields the
// defaults. Environment overrides apply last, then the result is validated.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()
	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case errors.Is(err, os.ErrNotExist):
		case err != nil:
			return nil, fmt.Errorf("read config: %w", err)
		default:
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("parse config: %w", err)
			}
		}
	}
	if err := cfg.applyEnvOverrides(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Save writes the config as YAML, creating the directory if needed.
func (c *Config) Save(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}

// applyEnvOverrides applies COGNITION_* environment variables.
func (c *Config) applyEnvOverrides() error {
	if v := os.Getenv("COGNITION_DB"); v != "" {
		c.Database = v
	}
	if v := os.Getenv("COGNITION_SEED"); v != "" {
		seed, err := strconv.ParseUint(v, 10, 64)
		if err != nil {
			return fmt.Errorf("%w: COGNITION_SEED: %v", ErrInvalid, err)
		}
		c.Seed = seed
	}
	if v := os.Getenv("COGNITION_LOG_LEVEL"); v != "" {
		c.Log.Level = v
	}
	if v := os.Getenv("COGNITION_GRPC_ADDR"); v != "" {
		c.Server.GRPCAddr = v
	}
	if v, ok := os.LookupEnv("COGNITION_METRICS_ADDR"); ok {
		c.Server.MetricsAddr = v
	}
	return nil
}

// #endregion load-save

// #region validate

// Validate checks field constraints and that the mass network is well formed.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalid, err)
	}
	net, err := c.Network()
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalid, err)
	}
	for agent, node := range c.Mass.Assignment {
		if _, ok := net.Index(node); !ok {
			return fmt.Errorf("%w: agent %q assigned to unknown node %q", ErrInvalid, agent, node)
		}
	}
	if c.Mass.DefaultNode != "" {
		if _, ok := net.Index(c.Mass.DefaultNode); !ok {
			return fmt.Errorf("%w: unknown default node %q", ErrInvalid, c.Mass.DefaultNode)
		}
	}
	return nil
}

// #endregion validate

// #region derived

// EngineOptions converts the config into engine options.
func (c *Config) EngineOptions() engine.Options {
	model := decision.Multiplicative
	if c.Decision.Model == decision.AdditivePenalty.String() {
		model = decision.AdditivePenalty
	}
	return engine.Options{
		Seed:          c.Seed,
		Workers:       c.Workers,
		Temperature:   c.Temperature,
		Model:         model,
		PenaltyFactor: c.Decision.PenaltyFactor,
		MinConfidence: c.Decision.MinConfidence,
		MomentumBonus: c.Decision.MomentumBonus,
		Pipeline:      c.Pipeline,
		Gates:         c.Gates,
		Aggregation:   c.Mass.Aggregation,
		Risk:          c.Mass.Risk,
		Dt:            c.Mass.Dt,
	}
}

// Network builds the initial mass network.
func (c *Config) Network() (mass.Network, error) {
	return mass.NewNetwork(c.Mass.Nodes, c.Mass.Weights)
}

// AssignmentFor maps every agent to its configured node, falling back to
// DefaultNode. Agents with neither are left out.
func (c *Config) AssignmentFor(agentIDs []string) mass.Assignment {
	out := make(mass.Assignment, len(agentIDs))
	for _, id := range agentIDs {
		if node, ok := c.Mass.Assignment[id]; ok {
			out[id] = node
		} else if c.Mass.DefaultNode != "" {
			out[id] = c.Mass.DefaultNode
		}
	}
	return out
}

// #endregion derived
