package traits

import (
	"math"
	"sort"
)

// #region keys

// ModifierKey addresses one row entry of the trait matrix.
type ModifierKey string

// GoalKey returns the modifier key for a goal logit.
func GoalKey(goalID string) ModifierKey { return ModifierKey("Goal:" + goalID) }

// InputKey returns the modifier key for an input axis.
func InputKey(axis string) ModifierKey { return ModifierKey("Input:" + axis) }

// #endregion keys

// #region matrix

// Effect is the full-strength modification a trait applies to one key.
type Effect struct {
	Multiplier float64 `json:"multiplier" yaml:"multiplier"`
	Bonus      float64 `json:"bonus" yaml:"bonus"`
}

// Matrix maps trait id to its effects by modifier key.
type Matrix map[string]map[ModifierKey]Effect

// BreakdownEntry records one trait's contribution for audit.
type BreakdownEntry struct {
	TraitID    string      `json:"trait_id"`
	Key        ModifierKey `json:"key"`
	Strength   float64     `json:"strength"`
	Multiplier float64     `json:"multiplier"`
	Bonus      float64     `json:"bonus"`
}

// Resolution is the accumulated modification for one lookup.
type Resolution struct {
	Multiplier float64
	Bonus      float64
	Breakdown  []BreakdownEntry
	// Unmatched lists traits the agent has that matched none of the keys.
	Unmatched []string
}

// Apply returns v*Multiplier + Bonus.
func (r Resolution) Apply(v float64) float64 {
	return v*r.Multiplier + r.Bonus
}

// Identity reports whether r leaves values unchanged.
func (r Resolution) Identity() bool {
	return r.Multiplier == 1 && r.Bonus == 0
}

// Resolve accumulates the effects of an agent's traits for an ordered list of
// keys. For each trait, the first key present in its row is applied once,
// interpolated by the trait strength s in [0, 1]:
//
//	multiplier' = 1 + (multiplier-1)*s
//	bonus'      = bonus*s
//
// Multipliers compose by product and bonuses by sum. Traits are visited in id
// order so the breakdown is deterministic. Non-finite strengths and effects are
// skipped.
func (m Matrix) Resolve(strengths map[string]float64, keys ...ModifierKey) Resolution {
	res := Resolution{Multiplier: 1}
	ids := make([]string, 0, len(strengths))
	for id := range strengths {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	for _, id := range ids {
		s := strengths[id]
		if !finite(s) {
			continue
		}
		s = clamp01(s)
		row, ok := m[id]
		if !ok {
			res.Unmatched = append(res.Unmatched, id)
			continue
		}
		matched := false
		for _, k := range keys {
			eff, ok := row[k]
			if !ok {
				continue
			}
			matched = true
			if !finite(eff.Multiplier) || !finite(eff.Bonus) {
				break
			}
			mult := 1 + (eff.Multiplier-1)*s
			bonus := eff.Bonus * s
			res.Multiplier *= mult
			res.Bonus += bonus
			res.Breakdown = append(res.Breakdown, BreakdownEntry{
				TraitID:    id,
				Key:        k,
				Strength:   s,
				Multiplier: mult,
				Bonus:      bonus,
			})
			break
		}
		if !matched {
			res.Unmatched = append(res.Unmatched, id)
		}
	}
	return res
}

// #endregion matrix

// #region helpers

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

// #endregion helpers
