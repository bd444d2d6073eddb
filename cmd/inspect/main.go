package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/danielpatrickdp/agent-cognition/go-engine/internal/journal"
	"github.com/danielpatrickdp/agent-cognition/go-engine/internal/logging"
)

var (
	dbPath  string
	last    int
	jsonOut bool
	agentID string
	store   *journal.Store
)

// #region main

var rootCmd = &cobra.Command{
	Use:          "inspect",
	Short:        "Inspect a cognition journal database",
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if dbPath == "" {
			return fmt.Errorf("--db is required")
		}
		var err error
		store, err = journal.NewStore(dbPath)
		if err != nil {
			return fmt.Errorf("open db: %w", err)
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if store != nil {
			store.Close()
		}
	},
}

var versionsCmd = &cobra.Command{
	Use:   "versions",
	Short: "List the most recent mass network versions",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runListMode(last)
	},
}

var versionCmd = &cobra.Command{
	Use:   "version <id>",
	Short: "Show one network version and its lineage",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runDetailMode(args[0])
	},
}

var decisionsCmd = &cobra.Command{
	Use:   "decisions",
	Short: "List the most recent agent decisions",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runDecisions(agentID, last)
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&dbPath, "db", "", "path to the journal database")
	rootCmd.PersistentFlags().IntVar(&last, "last", 20, "show N most recent rows")
	rootCmd.PersistentFlags().BoolVar(&jsonOut, "json", false, "output as JSON instead of table")
	decisionsCmd.Flags().StringVar(&agentID, "agent", "", "only this agent")
	rootCmd.AddCommand(versionsCmd, versionCmd, decisionsCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// #endregion main

// #region list-mode

type listRow struct {
	VersionID string             `json:"version_id"`
	ParentID  string             `json:"parent_id,omitempty"`
	Tick      int64              `json:"tick"`
	Mean      *float64           `json:"mean,omitempty"`
	Alert     bool               `json:"alert"`
	Reason    string             `json:"reason,omitempty"`
	CreatedAt string             `json:"created_at"`
	States    map[string]float64 `json:"states"`
}

func toRow(v journal.Version) listRow {
	r := listRow{
		VersionID: v.VersionID(),
		ParentID:  v.ParentID(),
		Tick:      v.Network.Tick,
		CreatedAt: v.CreatedAt.Format("2006-01-02T15:04:05Z"),
		States:    v.Network.States(),
	}
	if v.Risk != nil {
		mean := v.Risk.Mean
		r.Mean, r.Alert, r.Reason = &mean, v.Risk.Alert, v.Risk.Reason
	}
	return r
}

func runListMode(last int) error {
	versions, err := store.ListVersions(last)
	if err != nil {
		return err
	}
	if len(versions) == 0 {
		fmt.Fprintln(os.Stderr, "no versions found")
		return nil
	}

	// store returns newest first, reverse for chronological
	rows := make([]listRow, len(versions))
	for i, v := range versions {
		rows[len(versions)-1-i] = toRow(v)
	}
	if jsonOut {
		return printJSON(rows)
	}

	fmt.Printf("%-12s  %-12s  %6s  %8s  %-5s  %s\n", "Version", "Parent", "Tick", "Mean", "Alert", "Time")
	fmt.Printf("%-12s+-%-12s+-%6s+-%8s+-%-5s+-%s\n", "------------", "------------", "------", "--------", "-----", "--------------------")
	for _, r := range rows {
		mean := "-"
		if r.Mean != nil {
			mean = fmt.Sprintf("%.4f", *r.Mean)
		}
		parent := shortID(r.ParentID)
		if parent == "" {
			parent = "-"
		}
		fmt.Printf("%-12s  %-12s  %6d  %8s  %-5v  %s\n", shortID(r.VersionID), parent, r.Tick, mean, r.Alert, r.CreatedAt)
	}

	latest := versions[0]
	fmt.Printf("\nNode states (latest):\n")
	for _, nd := range latest.Network.Nodes {
		fmt.Printf("  %-12s %.4f\n", nd.ID, nd.X)
	}
	return nil
}

// #endregion list-mode

// #region detail-mode

type detailOutput struct {
	listRow
	Lineage []string `json:"lineage"`
}

func runDetailMode(versionID string) error {
	v, err := store.GetVersion(versionID)
	if err != nil {
		return err
	}
	lineage, err := store.Lineage(versionID)
	if err != nil {
		return err
	}
	out := detailOutput{listRow: toRow(v)}
	for _, l := range lineage {
		out.Lineage = append(out.Lineage, l.VersionID())
	}
	if jsonOut {
		return printJSON(out)
	}

	fmt.Printf("Version:  %s\n", out.VersionID)
	fmt.Printf("Parent:   %s\n", out.ParentID)
	fmt.Printf("Tick:     %d\n", out.Tick)
	fmt.Printf("Created:  %s\n", out.CreatedAt)
	fmt.Printf("Lineage:  %d versions to root\n", len(out.Lineage))

	fmt.Printf("\nNode states:\n")
	for _, nd := range v.Network.Nodes {
		fmt.Printf("  %-12s %.4f  (tau %.2f, bias %.2f, gain %.2f)\n", nd.ID, nd.X, nd.Params.Tau, nd.Params.Bias, nd.Params.Gain)
	}

	if v.Risk != nil {
		fmt.Printf("\nRisk Report:\n")
		for _, m := range v.Risk.Metrics {
			fmt.Printf("  %-14s %.4f  pass=%v\n", m.Name, m.Value, m.Pass)
		}
		fmt.Printf("  %s\n", v.Risk.Reason)
	}
	return nil
}

// #endregion detail-mode

// #region decisions

func runDecisions(agentID string, last int) error {
	entries, err := logging.ListDecisions(store.DB(), agentID, last)
	if err != nil {
		return err
	}
	if jsonOut {
		return printJSON(entries)
	}
	if len(entries) == 0 {
		fmt.Fprintln(os.Stderr, "no decisions found")
		return nil
	}

	fmt.Printf("%6s  %-10s  %-24s  %8s  %-16s  %s\n", "Tick", "Agent", "Action", "Q", "Flags", "Version")
	fmt.Printf("%6s+-%-10s+-%-24s+-%8s+-%-16s+-%s\n", "------", "----------", "------------------------", "--------", "----------------", "------------")
	for _, e := range entries {
		var flags []string
		if e.Fallback {
			flags = append(flags, "fallback")
		}
		if e.FilterBypassed {
			flags = append(flags, "bypass")
		}
		if e.Forced {
			flags = append(flags, "forced")
		}
		fmt.Printf("%6d  %-10s  %-24s  %8.4f  %-16s  %s\n", e.Tick, e.AgentID, e.ActionID, e.Q, strings.Join(flags, ","), shortID(e.VersionID))
	}
	return nil
}

// #endregion decisions

// #region output

func printJSON(v interface{}) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal json: %w", err)
	}
	fmt.Println(string(data))
	return nil
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

// #endregion output
