package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/danielpatrickdp/agent-cognition/go-engine/internal/catalog"
	"github.com/danielpatrickdp/agent-cognition/go-engine/internal/engine"
	"github.com/danielpatrickdp/agent-cognition/go-engine/internal/logging"
	"github.com/danielpatrickdp/agent-cognition/go-engine/internal/replay"
)

var (
	tablesPath string
	jsonOut    bool
	verbose    bool
)

// errMismatch makes the process exit 1 after the report is printed.
var errMismatch = errors.New("replay mismatches")

// #region main

var rootCmd = &cobra.Command{
	Use:   "replay <fixture.json>...",
	Short: "Replay fixtures through the engine and compare chosen actions",
	Long: `replay runs each fixture tick by tick, carrying agent memory and the
mass network forward, and compares every chosen action kind with the
fixture's expectation. Exit status is 1 on any mismatch, 2 on errors.`,
	Args:          cobra.MinimumNArgs(1),
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE:          run,
}

func init() {
	rootCmd.Flags().StringVar(&tablesPath, "tables", "", "static tables file (built-in tables when empty)")
	rootCmd.Flags().BoolVar(&jsonOut, "json", false, "output as JSON instead of table")
	rootCmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "log engine decisions")
}

func main() {
	err := rootCmd.Execute()
	switch {
	case err == nil:
	case errors.Is(err, errMismatch):
		os.Exit(1)
	default:
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(2)
	}
}

// #endregion main

// #region run

type report struct {
	Fixture string               `json:"fixture"`
	Ticks   []replay.TickOutcome `json:"-"`
	Summary replay.Summary       `json:"summary"`
}

func run(cmd *cobra.Command, args []string) error {
	level := "warn"
	if verbose {
		level = "debug"
	}
	log, err := logging.New(level, "console")
	if err != nil {
		return err
	}
	defer log.Sync()

	tables := catalog.Default()
	if tablesPath != "" {
		if tables, err = catalog.Load(tablesPath); err != nil {
			return err
		}
	}

	var reports []report
	mismatches := 0
	for _, path := range args {
		f, err := replay.LoadFixture(path)
		if err != nil {
			return err
		}
		opts, err := f.Config.Options(engine.DefaultOptions())
		if err != nil {
			return fmt.Errorf("%s: %w", path, err)
		}
		eng := engine.New(opts, tables, log.With(zap.String("fixture", path)))
		results, err := replay.Replay(cmd.Context(), eng, f)
		if err != nil {
			return fmt.Errorf("%s: %w", path, err)
		}
		r := report{Fixture: path, Ticks: results, Summary: replay.Summarize(results)}
		mismatches += r.Summary.Mismatches
		reports = append(reports, r)
	}

	if jsonOut {
		if err := printJSON(reports); err != nil {
			return err
		}
	} else {
		for _, r := range reports {
			printTable(r)
		}
	}
	if mismatches > 0 {
		return errMismatch
	}
	return nil
}

// #endregion run

// #region output

func printTable(r report) {
	fmt.Printf("== %s\n", r.Fixture)
	fmt.Printf("%-6s  %-10s  %-24s  %-10s  %-10s  %s\n", "Tick", "Agent", "Chosen", "Kind", "Expected", "Match")
	fmt.Printf("%-6s+-%-10s+-%-24s+-%-10s+-%-10s+-%s\n", "------", "----------", "------------------------", "----------", "----------", "-----")
	for _, t := range r.Ticks {
		for _, a := range t.Agents {
			expected, match := "-", "-"
			if a.Expected != "" {
				expected = a.Expected
				match = "ok"
				if !a.Match() {
					match = "MISMATCH"
				}
			}
			flags := ""
			if a.Forced {
				flags += " (forced)"
			}
			if a.Fallback {
				flags += " (fallback)"
			}
			fmt.Printf("%-6d  %-10s  %-24s  %-10s  %-10s  %s%s\n", t.Tick, a.AgentID, a.CandidateID, a.Kind, expected, match, flags)
		}
	}
	s := r.Summary
	fmt.Printf("\nTicks: %d | Decisions: %d | Checked: %d | Mismatches: %d | Fallbacks: %d | Forced: %d | Alerts: %d\n",
		s.TotalTicks, s.Decisions, s.Checked, s.Mismatches, s.Fallbacks, s.Forced, s.Alerts)
	if s.FinalNetwork != nil {
		fmt.Printf("Final network: %s (tick %d)\n", s.FinalNetwork.VersionID, s.FinalNetwork.Tick)
	}
	fmt.Println()
}

func printJSON(v interface{}) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal json: %w", err)
	}
	fmt.Println(string(data))
	return nil
}

// #endregion output
