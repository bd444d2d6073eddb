package traits

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func matrix() Matrix {
	return Matrix{
		"aggressive": {
			GoalKey("dominate"): {Multiplier: 2, Bonus: 0.2},
			InputKey("anger"):   {Multiplier: 1.5},
		},
		"timid": {
			GoalKey("survive"): {Multiplier: 1.5, Bonus: 0.1},
		},
	}
}

func TestResolveInterpolatesByStrength(t *testing.T) {
	res := matrix().Resolve(map[string]float64{"aggressive": 0.5}, GoalKey("dominate"))
	assert.InDelta(t, 1.5, res.Multiplier, 1e-12)
	assert.InDelta(t, 0.1, res.Bonus, 1e-12)
	require.Len(t, res.Breakdown, 1)
	assert.Equal(t, "aggressive", res.Breakdown[0].TraitID)
	assert.InDelta(t, 1.5*0.4+0.1, res.Apply(0.4), 1e-12)
}

func TestResolveFirstKeyWins(t *testing.T) {
	res := matrix().Resolve(map[string]float64{"aggressive": 1}, InputKey("anger"), GoalKey("dominate"))
	require.Len(t, res.Breakdown, 1)
	assert.Equal(t, InputKey("anger"), res.Breakdown[0].Key)
	assert.InDelta(t, 1.5, res.Multiplier, 1e-12)
	assert.Zero(t, res.Bonus)
}

func TestResolveComposesAndReportsUnmatched(t *testing.T) {
	res := matrix().Resolve(map[string]float64{
		"aggressive": 1,
		"timid":      1,
		"curious":    0.7,
		"broken":     math.NaN(),
	}, GoalKey("dominate"), GoalKey("survive"))

	assert.InDelta(t, 3, res.Multiplier, 1e-12)
	assert.InDelta(t, 0.3, res.Bonus, 1e-12)
	assert.Equal(t, []string{"curious"}, res.Unmatched)
	require.Len(t, res.Breakdown, 2)
	assert.Equal(t, "aggressive", res.Breakdown[0].TraitID)
	assert.Equal(t, "timid", res.Breakdown[1].TraitID)
}

func TestResolveIdentity(t *testing.T) {
	res := matrix().Resolve(nil, GoalKey("dominate"))
	assert.True(t, res.Identity())
	assert.Equal(t, 0.7, res.Apply(0.7))

	res = matrix().Resolve(map[string]float64{"timid": 1}, GoalKey("dominate"))
	assert.True(t, res.Identity())
	assert.Equal(t, []string{"timid"}, res.Unmatched)
}

func TestResolveClampsStrength(t *testing.T) {
	res := matrix().Resolve(map[string]float64{"aggressive": 5}, GoalKey("dominate"))
	assert.InDelta(t, 2, res.Multiplier, 1e-12)
	assert.Equal(t, 1.0, res.Breakdown[0].Strength)
}
