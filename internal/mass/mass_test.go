package mass

import (
	"errors"
	"math"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/danielpatrickdp/agent-cognition/go-engine/internal/rng"
)

func threeNodes(t *testing.T) Network {
	t.Helper()
	nodes := []Node{
		{ID: "north", X: 0.2, Params: Params{Tau: 2, Bias: -1, Gain: 2, NoiseScale: 0.3}},
		{ID: "south", X: 0.5, Params: Params{Tau: 1, Bias: 0, Gain: 1}},
		{ID: "east", X: 0.1, Params: Params{Tau: 0, Bias: 0.5, Gain: 1.5, NoiseScale: 0.2}},
	}
	w := [][]float64{
		{0.9, 0.4, -0.2},
		{0.1, 0, 0.3},
		{0.5, -0.5, 7},
	}
	net, err := NewNetwork(nodes, w)
	if err != nil {
		t.Fatalf("NewNetwork: %v", err)
	}
	return net
}

func trajectory(t *testing.T, net Network, seed uint64, steps int) [][]float64 {
	t.Helper()
	src := rng.New(seed, 3)
	in := Inputs{Values: []float64{0.3, 0.1, 0.6}, Counts: []int{4, 0, 1}, BaseNoiseScale: 0.1}
	var out [][]float64
	for i := 0; i < steps; i++ {
		next, err := Step(net, in, 0.1, src)
		if err != nil {
			t.Fatalf("step %d: %v", i, err)
		}
		row := make([]float64, len(next.Nodes))
		for k, nd := range next.Nodes {
			row[k] = nd.X
		}
		out = append(out, row)
		net = next
	}
	return out
}

func TestStepDeterministicForSeed(t *testing.T) {
	net := threeNodes(t)
	a := trajectory(t, net, 11, 25)
	b := trajectory(t, net, 11, 25)
	if diff := cmp.Diff(a, b); diff != "" {
		t.Fatalf("trajectories differ (-a +b):\n%s", diff)
	}
	c := trajectory(t, net, 12, 25)
	if cmp.Equal(a, c) {
		t.Fatal("expected different trajectories for different seeds")
	}
}

func TestStepMatchesFormula(t *testing.T) {
	net := threeNodes(t)
	in := Inputs{Values: []float64{0.3, 0.1, 0.6}, Counts: []int{4, 0, 1}}
	next, err := Step(net, in, 0.1, nil)
	if err != nil {
		t.Fatalf("Step: %v", err)
	}

	// north: h = 0.4*0.5 + -0.2*0.1, self weight ignored
	h := 0.4*0.5 - 0.2*0.1
	want := 0.2 + 0.1*(-0.2+sigmoid(-1+2*(h+0.3)))/2
	if math.Abs(next.Nodes[0].X-want) > 1e-12 {
		t.Fatalf("north: got %v, want %v", next.Nodes[0].X, want)
	}

	// east: tau 0 treated as 1
	h = 0.5*0.2 - 0.5*0.5
	want = 0.1 + 0.1*(-0.1+sigmoid(0.5+1.5*(h+0.6)))
	if math.Abs(next.Nodes[2].X-want) > 1e-12 {
		t.Fatalf("east: got %v, want %v", next.Nodes[2].X, want)
	}
}

func TestStepReturnsNewVersion(t *testing.T) {
	net := threeNodes(t)
	before := net.Clone()
	next, err := Step(net, Inputs{}, 0.5, rng.New(1, 1))
	if err != nil {
		t.Fatalf("Step: %v", err)
	}
	if next.ParentID != net.VersionID {
		t.Fatalf("ParentID = %q, want %q", next.ParentID, net.VersionID)
	}
	if next.VersionID == net.VersionID || next.VersionID == "" {
		t.Fatalf("expected fresh version id, got %q", next.VersionID)
	}
	if next.Tick != net.Tick+1 {
		t.Fatalf("Tick = %d", next.Tick)
	}
	if diff := cmp.Diff(before, net); diff != "" {
		t.Fatalf("input network mutated:\n%s", diff)
	}
	if !cmp.Equal(next.NodeOrder, net.NodeOrder) {
		t.Fatal("node order changed")
	}
}

func TestNoiseDampedByPopulation(t *testing.T) {
	nodes := []Node{{ID: "n", X: 0, Params: Params{Tau: 1, NoiseScale: 1}}}
	net, err := NewNetwork(nodes, nil)
	if err != nil {
		t.Fatalf("NewNetwork: %v", err)
	}
	spread := func(count int) float64 {
		src := rng.New(5, 5)
		var sum float64
		for i := 0; i < 200; i++ {
			next, err := Step(net, Inputs{Values: []float64{0}, Counts: []int{count}}, 1, src)
			if err != nil {
				t.Fatalf("Step: %v", err)
			}
			d := next.Nodes[0].X - 0.5
			sum += d * d
		}
		return sum
	}
	if few, many := spread(1), spread(100); many >= few {
		t.Fatalf("expected smaller spread for larger population: 1→%v 100→%v", few, many)
	}
}

func TestStepRejectsBadShape(t *testing.T) {
	net := threeNodes(t)
	if _, err := Step(net, Inputs{Values: []float64{1}}, 0.1, nil); !errors.Is(err, ErrShape) {
		t.Fatalf("expected ErrShape, got %v", err)
	}
	if _, err := Step(net, Inputs{}, math.NaN(), nil); !errors.Is(err, ErrTimeStep) {
		t.Fatalf("expected ErrTimeStep, got %v", err)
	}
}

func TestNewNetworkValidation(t *testing.T) {
	cases := []struct {
		name  string
		nodes []Node
		w     [][]float64
	}{
		{"empty", nil, nil},
		{"duplicate", []Node{{ID: "a"}, {ID: "a"}}, nil},
		{"rows", []Node{{ID: "a"}, {ID: "b"}}, [][]float64{{0, 0}}},
		{"cols", []Node{{ID: "a"}, {ID: "b"}}, [][]float64{{0, 0}, {0}}},
		{"nan", []Node{{ID: "a"}}, [][]float64{{math.NaN()}}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := NewNetwork(tc.nodes, tc.w); !errors.Is(err, ErrShape) {
				t.Fatalf("expected ErrShape, got %v", err)
			}
		})
	}
}

func TestAggregateMeanNotSum(t *testing.T) {
	net := threeNodes(t)
	assign := Assignment{"c1": "north", "c2": "north", "c3": "east", "c4": "nowhere"}
	cfg := AggregationConfig{StressWeight: 1, DarkWeight: 0.5, RiskWeight: 0.25, BaseNoiseScale: 0.2}
	signals := []CharacterSignal{
		{ID: "c1", Stress: 0.4, Dark: 0.2, Risk: 0.4},
		{ID: "c2", Stress: 0.8, Dark: 0, Risk: 0},
		{ID: "c3", Stress: math.NaN()},
		{ID: "c4", Stress: 1},
		{ID: "c5", Stress: 1},
	}
	in := Aggregate(net, assign, signals, cfg)

	want := Inputs{
		Values:         []float64{(0.6 + 0.8) / 2, 0, 0},
		Counts:         []int{2, 0, 0},
		BaseNoiseScale: 0.2,
		Skipped:        []string{"c3", "c4", "c5"},
	}
	if diff := cmp.Diff(want, in, cmp.Comparer(func(a, b float64) bool { return math.Abs(a-b) < 1e-12 })); diff != "" {
		t.Fatalf("Aggregate mismatch (-want +got):\n%s", diff)
	}
}

func TestAnalyze(t *testing.T) {
	net := threeNodes(t)
	rep := Analyze(net, DefaultRiskConfig())
	if rep.Alert {
		t.Fatalf("unexpected alert: %s", rep.Reason)
	}
	if rep.MaxNode != "south" {
		t.Fatalf("MaxNode = %q", rep.MaxNode)
	}
	if math.Abs(rep.Mean-0.8/3) > 1e-12 {
		t.Fatalf("Mean = %v", rep.Mean)
	}

	net.Nodes[1].X = 0.95
	rep = Analyze(net, DefaultRiskConfig())
	if !rep.Alert {
		t.Fatal("expected alert for hot node")
	}
	for _, m := range rep.Metrics {
		if m.Name == "node_south" && m.Pass {
			t.Fatal("node_south should fail")
		}
	}
}
