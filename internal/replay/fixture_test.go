package replay

import (
	"path/filepath"
	"testing"

	"github.com/danielpatrickdp/agent-cognition/go-engine/internal/decision"
	"github.com/danielpatrickdp/agent-cognition/go-engine/internal/engine"
)

func TestLoadFixture(t *testing.T) {
	f, err := LoadFixture(filepath.Join("testdata", "standoff.json"))
	if err != nil {
		t.Fatalf("LoadFixture: %v", err)
	}
	if len(f.Ticks) != 2 {
		t.Fatalf("expected 2 ticks, got %d", len(f.Ticks))
	}
	if f.Network == nil || len(f.Network.Nodes) != 2 || f.Network.Assignment["ivo"] != "street" {
		t.Fatalf("unexpected network %+v", f.Network)
	}
	if f.Ticks[1].Expected["ivo"] != "wait" {
		t.Errorf("expected ivo to wait on tick 2, got %q", f.Ticks[1].Expected["ivo"])
	}

	snap := f.Ticks[1].Snapshot()
	if snap.Mods == nil {
		t.Fatal("expected mods store")
	}
	m, ok := snap.Mods.Get("lark")
	if !ok || m.Overrides["affect.fear"] != 0.9 {
		t.Errorf("mods not loaded: %+v", m)
	}
}

func TestLoadFixtureMissing(t *testing.T) {
	if _, err := LoadFixture(filepath.Join("testdata", "nope.json")); err == nil {
		t.Fatal("expected error for missing file")
	}
}

func TestParseFixtureRejects(t *testing.T) {
	for name, data := range map[string]string{
		"malformed": `{"ticks": [`,
		"no ticks":  `{"description": "empty"}`,
	} {
		if _, err := ParseFixture([]byte(data)); err == nil {
			t.Errorf("%s: expected error", name)
		}
	}
}

func TestFixtureConfigOptions(t *testing.T) {
	seed, temp := uint64(99), 0.0
	fc := FixtureConfig{Seed: &seed, Temperature: &temp, Model: "additive"}
	opts, err := fc.Options(engine.DefaultOptions())
	if err != nil {
		t.Fatalf("Options: %v", err)
	}
	if opts.Seed != 99 || opts.Temperature != 0 || opts.Model != decision.AdditivePenalty {
		t.Errorf("unexpected options %+v", opts)
	}
	if opts.MinConfidence != engine.DefaultOptions().MinConfidence {
		t.Errorf("unset field changed: %v", opts.MinConfidence)
	}

	if _, err := (FixtureConfig{Model: "linear"}).Options(engine.DefaultOptions()); err == nil {
		t.Fatal("expected error for unknown model")
	}
}
