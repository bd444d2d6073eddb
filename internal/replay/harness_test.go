package replay

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/danielpatrickdp/agent-cognition/go-engine/internal/engine"
)

func runFixture(t *testing.T, f *Fixture) []TickOutcome {
	t.Helper()
	opts, err := f.Config.Options(engine.DefaultOptions())
	if err != nil {
		t.Fatalf("Options: %v", err)
	}
	results, err := Replay(context.Background(), engine.New(opts, nil, nil), f)
	if err != nil {
		t.Fatalf("Replay: %v", err)
	}
	return results
}

func standoff(t *testing.T) *Fixture {
	t.Helper()
	f, err := LoadFixture(filepath.Join("testdata", "standoff.json"))
	if err != nil {
		t.Fatalf("LoadFixture: %v", err)
	}
	return f
}

// 1. Forced override honoured and expectation checked.
func TestReplay_ForcedWait(t *testing.T) {
	results := runFixture(t, standoff(t))
	if len(results) != 2 {
		t.Fatalf("expected 2 results, got %d", len(results))
	}
	var ivo *AgentOutcome
	for i := range results[1].Agents {
		if results[1].Agents[i].AgentID == "ivo" {
			ivo = &results[1].Agents[i]
		}
	}
	if ivo == nil {
		t.Fatal("ivo missing from tick 2")
	}
	if !ivo.Forced || ivo.Kind != "wait" || !ivo.Match() {
		t.Errorf("unexpected outcome %+v", *ivo)
	}
}

// 2. Network advances one version per tick along a single lineage.
func TestReplay_NetworkCarriesOver(t *testing.T) {
	results := runFixture(t, standoff(t))
	first, second := results[0].Result.Network, results[1].Result.Network
	if first == nil || second == nil {
		t.Fatal("expected a network on every tick")
	}
	if second.ParentID != first.VersionID {
		t.Errorf("tick 2 parent %s, want %s", second.ParentID, first.VersionID)
	}
	if second.Tick != 2 {
		t.Errorf("expected network tick 2, got %d", second.Tick)
	}
	if results[1].VersionID != second.VersionID {
		t.Errorf("outcome version %s, want %s", results[1].VersionID, second.VersionID)
	}
}

// 3. Same fixture and seed give the same choices.
func TestReplay_Deterministic(t *testing.T) {
	a := runFixture(t, standoff(t))
	b := runFixture(t, standoff(t))
	for i := range a {
		for j := range a[i].Agents {
			if a[i].Agents[j].CandidateID != b[i].Agents[j].CandidateID {
				t.Errorf("tick %d agent %s: %s vs %s", i, a[i].Agents[j].AgentID,
					a[i].Agents[j].CandidateID, b[i].Agents[j].CandidateID)
			}
		}
		na, nb := a[i].Result.Network, b[i].Result.Network
		for k := range na.Nodes {
			if na.Nodes[k].X != nb.Nodes[k].X {
				t.Errorf("tick %d node %s: %v vs %v", i, na.Nodes[k].ID, na.Nodes[k].X, nb.Nodes[k].X)
			}
		}
	}
}

// 4. A wrong expectation is reported as a mismatch.
func TestReplay_Mismatch(t *testing.T) {
	f := standoff(t)
	f.Ticks[0].Expected = map[string]string{"lark": "sing"}
	s := Summarize(runFixture(t, f))
	if s.Checked != 2 || s.Mismatches != 1 {
		t.Errorf("expected 2 checked / 1 mismatch, got %d / %d", s.Checked, s.Mismatches)
	}
}

// 5. Bad network shape aborts before any tick runs.
func TestReplay_BadNetwork(t *testing.T) {
	f := standoff(t)
	f.Network.Weights = [][]float64{{0}}
	results, err := Replay(context.Background(), engine.New(engine.DefaultOptions(), nil, nil), f)
	if err == nil {
		t.Fatal("expected error for bad weights")
	}
	if len(results) != 0 {
		t.Errorf("expected no results, got %d", len(results))
	}
}

func TestSummarize(t *testing.T) {
	results := []TickOutcome{
		{Tick: 1, Alert: true, Agents: []AgentOutcome{
			{AgentID: "a", Kind: "flee", Expected: "flee"},
			{AgentID: "b", Kind: "wait", Fallback: true},
		}},
		{Tick: 2, Agents: []AgentOutcome{
			{AgentID: "a", Kind: "wait", Expected: "attack", Forced: true},
		}},
	}
	s := Summarize(results)
	if s.TotalTicks != 2 || s.Decisions != 3 || s.Checked != 2 || s.Mismatches != 1 {
		t.Errorf("counts: %+v", s)
	}
	if s.Fallbacks != 1 || s.Forced != 1 || s.Alerts != 1 {
		t.Errorf("flags: %+v", s)
	}
	if s.FinalNetwork != nil {
		t.Errorf("expected no final network")
	}
}
