package features

import (
	"fmt"
	"math"
	"sort"

	"github.com/danielpatrickdp/agent-cognition/go-engine/internal/world"
)

// #region apply-mods

// ApplyMods folds mods into fs and returns a new set. Overrides are applied
// first, then deltas, then multipliers; the result is clamped to [0, 1].
// Non-finite adjustments are skipped. fs is not modified.
func ApplyMods(fs FeatureSet, mods world.Mods) FeatureSet {
	out := FeatureSet{EntityID: fs.EntityID, EntityKind: fs.EntityKind, Values: make(map[string]Feature, len(fs.Values))}
	for k, f := range fs.Values {
		f.Notes = append([]string(nil), f.Notes...)
		out.Values[k] = f
	}

	for _, k := range sortedKeys(mods.Overrides) {
		v := mods.Overrides[k]
		if !finite(v) {
			continue
		}
		f := out.Values[k]
		f.Value = v
		f.Source = "mods.override"
		f.Notes = append(f.Notes, fmt.Sprintf("override=%.4f", v))
		out.Values[k] = f
	}
	for _, k := range sortedKeys(mods.Deltas) {
		d := mods.Deltas[k]
		f, ok := out.Values[k]
		if !ok || !finite(d) {
			continue
		}
		f.Value += d
		f.Notes = append(f.Notes, fmt.Sprintf("delta=%+.4f", d))
		out.Values[k] = f
	}
	for _, k := range sortedKeys(mods.Multipliers) {
		m := mods.Multipliers[k]
		f, ok := out.Values[k]
		if !ok || !finite(m) {
			continue
		}
		f.Value *= m
		f.Notes = append(f.Notes, fmt.Sprintf("multiplier=%.4f", m))
		out.Values[k] = f
	}
	for k, f := range out.Values {
		f.Value = clamp(f.Value)
		out.Values[k] = f
	}
	return out
}

// #endregion apply-mods

// #region helpers

func sortedKeys(m map[string]float64) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

// #endregion helpers
