package pipeline

import (
	"fmt"
	"math"
	"sort"

	"github.com/danielpatrickdp/agent-cognition/go-engine/internal/atom"
	"github.com/danielpatrickdp/agent-cognition/go-engine/internal/catalog"
)

// #region axes

// Self axes derived in S2 and aggregated in S3.
const (
	AxisDanger       = "danger"
	AxisNormPressure = "normPressure"
	AxisPublicness   = "publicness"
	AxisProcedural   = "procedural"
	AxisAnger        = "anger"
	AxisFear         = "fear"
	AxisStress       = "stress"
	AxisFatigue      = "fatigue"
	AxisHunger       = "hunger"
	AxisScarcity     = "scarcity"
	AxisSocialTrust  = "socialTrust"
	AxisValence      = "valence"
	AxisWeaponAccess = "weaponAccess"
)

// Dyadic axes keyed by self and other.
const (
	AxisHarm      = "harm"
	AxisProximity = "proximity"
	AxisHostility = "hostility"
)

// Threat and driver keys.
const (
	ThreatComposite = "composite"
	ThreatFrom      = "from"

	DrvSafetyNeed = "safetyNeed"
	DrvRestNeed   = "restNeed"
	DrvFoodNeed   = "foodNeed"
	DrvSocialNeed = "socialNeed"
	DrvConformity = "conformity"
	DrvAggression = "aggression"

	UtilUrgency = catalog.ReservedGoalID
)

// #endregion axes

// #region helpers

// term is one weighted contributor to an aggregate.
type term struct {
	id     string
	weight float64
}

// weightedMean averages the terms present in v, renormalizing the weights of
// the ones found. ok is false when no term is present.
func weightedMean(v atom.View, terms []term) (value float64, used []string, ok bool) {
	var sum, wsum float64
	for _, t := range terms {
		a, found := v.Get(t.id)
		if !found || !atom.Finite(a.Magnitude) {
			continue
		}
		sum += t.weight * a.Magnitude
		wsum += t.weight
		used = append(used, a.ID)
	}
	if wsum == 0 {
		return 0, nil, false
	}
	return atom.Clamp01(sum / wsum), used, true
}

// noisyOR combines independent probabilities: 1 - Π(1 - p).
func noisyOR(ps ...float64) float64 {
	q := 1.0
	for _, p := range ps {
		q *= 1 - atom.Clamp01(p)
	}
	return atom.Clamp01(1 - q)
}

// maxDyadic returns the largest magnitude among the dyadic atoms of key for
// self, with the ids seen.
func maxDyadic(v atom.View, ns atom.Namespace, key, self string) (float64, []string, bool) {
	var best float64
	var used []string
	for _, a := range v.Select(ns, key, self) {
		if a.Target == "" {
			continue
		}
		used = append(used, a.ID)
		if a.Magnitude > best {
			best = a.Magnitude
		}
	}
	return best, used, len(used) > 0
}

// others returns the sorted distinct targets of dyadic atoms for self.
func others(v atom.View, ns atom.Namespace, self string, keys ...string) []string {
	seen := make(map[string]bool)
	for _, k := range keys {
		for _, a := range v.Select(ns, k, self) {
			if a.Target != "" {
				seen[a.Target] = true
			}
		}
	}
	out := make([]string, 0, len(seen))
	for id := range seen {
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}

func sigmoid(x float64) float64 {
	return 1 / (1 + math.Exp(-x))
}

func note(format string, args ...any) string {
	return fmt.Sprintf(format, args...)
}

// #endregion helpers
