package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/danielpatrickdp/agent-cognition/go-engine/internal/catalog"
	"github.com/danielpatrickdp/agent-cognition/go-engine/internal/config"
	"github.com/danielpatrickdp/agent-cognition/go-engine/internal/engine"
	"github.com/danielpatrickdp/agent-cognition/go-engine/internal/replay"
	"github.com/danielpatrickdp/agent-cognition/go-engine/internal/world"
)

var (
	configPath string
	outPath    string
	ticks      int
	noNetwork  bool
)

// #region main

var rootCmd = &cobra.Command{
	Use:   "fixture-export <scenario>",
	Short: "Record a scenario as a replay fixture",
	Long: `fixture-export runs a scenario file for a number of ticks with the
configured engine and writes a replay fixture whose expected actions are the
ones chosen in this run. Replaying the fixture later detects behaviour drift.`,
	Args:         cobra.ExactArgs(1),
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		return run(cmd.Context(), args[0])
	},
}

func init() {
	rootCmd.Flags().StringVarP(&configPath, "config", "c", "", "engine config (defaults when empty)")
	rootCmd.Flags().StringVarP(&outPath, "out", "o", "", "output fixture JSON path")
	rootCmd.Flags().IntVarP(&ticks, "ticks", "n", 3, "number of ticks to record")
	rootCmd.Flags().BoolVar(&noNetwork, "no-network", false, "record without a mass network")
	_ = rootCmd.MarkFlagRequired("out")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// #endregion main

// #region record

func run(ctx context.Context, scenarioPath string) error {
	if ticks < 1 {
		return fmt.Errorf("ticks must be positive, got %d", ticks)
	}
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	snap, err := world.LoadScenario(scenarioPath)
	if err != nil {
		return err
	}

	f := &replay.Fixture{
		Description: fmt.Sprintf("recorded from %s", scenarioPath),
		Config:      replay.FixtureConfig{Seed: &cfg.Seed, Temperature: &cfg.Temperature, Model: cfg.Decision.Model},
	}
	if !noNetwork {
		f.Network = &replay.FixtureNetwork{
			Nodes:      cfg.Mass.Nodes,
			Weights:    cfg.Mass.Weights,
			Assignment: cfg.AssignmentFor(snap.AgentIDs()),
		}
	}
	mods := modsOf(snap.Mods)
	for i := 0; i < ticks; i++ {
		w := *snap
		w.Mods = nil
		w.Tick = snap.Tick + i
		f.Ticks = append(f.Ticks, replay.FixtureTick{World: w, Mods: mods})
	}

	opts, err := f.Config.Options(cfg.EngineOptions())
	if err != nil {
		return err
	}
	tables := catalog.Default()
	if cfg.Tables != "" {
		if tables, err = catalog.Load(cfg.Tables); err != nil {
			return err
		}
	}
	results, err := replay.Replay(ctx, engine.New(opts, tables, nil), f)
	if err != nil {
		return err
	}
	for i, r := range results {
		f.Ticks[i].Expected = make(map[string]string, len(r.Agents))
		for _, a := range r.Agents {
			f.Ticks[i].Expected[a.AgentID] = a.Kind
		}
	}

	fmt.Printf("Recorded %d ticks, %d agents\n", len(results), len(snap.Agents))
	return writeFixture(f, outPath)
}

func modsOf(store *world.ModsStore) map[string]world.Mods {
	ids := store.Entities()
	if len(ids) == 0 {
		return nil
	}
	out := make(map[string]world.Mods, len(ids))
	for _, id := range ids {
		if m, ok := store.Get(id); ok && !m.Empty() {
			out[id] = m
		}
	}
	return out
}

// #endregion record

// #region output

func writeFixture(f *replay.Fixture, path string) error {
	data, err := json.MarshalIndent(f, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal fixture: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("write fixture: %w", err)
	}
	fmt.Printf("Wrote fixture to %s\n", path)
	return nil
}

// #endregion output
