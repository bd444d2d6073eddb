package pipeline

import (
	"errors"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/danielpatrickdp/agent-cognition/go-engine/internal/atom"
	"github.com/danielpatrickdp/agent-cognition/go-engine/internal/catalog"
	"github.com/danielpatrickdp/agent-cognition/go-engine/internal/features"
	"github.com/danielpatrickdp/agent-cognition/go-engine/internal/world"
	"github.com/danielpatrickdp/agent-cognition/go-engine/internal/world/worldtest"
)

func slice(snap *world.Snapshot) *Slice {
	return &Slice{
		Snapshot: snap,
		Features: features.NewExtractor(features.DefaultExtractorConfig()).ExtractAll(snap),
		Tables:   catalog.Default(),
		Config:   DefaultConfig(),
	}
}

func run(t *testing.T, snap *world.Snapshot, agentID string) Result {
	t.Helper()
	res, err := DefaultRunner().Run(agentID, slice(snap))
	require.NoError(t, err)
	return res
}

func TestWorldStageEmitsOnlyWorldAtoms(t *testing.T) {
	res := run(t, worldtest.Tavern(), "bram")
	for _, id := range []StageID{StageWorld, StageFeatures} {
		for _, a := range res.Trace.Stage(id) {
			assert.Equal(t, atom.NSWorld, a.NS, a.ID)
			assert.False(t, strings.HasPrefix(a.ID, "ctx:"), a.ID)
		}
	}
	assert.NotEmpty(t, res.Trace.Stage(StageWorld))
}

func TestCtxAtomsAreNotFinal(t *testing.T) {
	res := run(t, worldtest.Tavern(), "bram")
	ctx := res.Trace.Stage(StageCtx)
	require.NotEmpty(t, ctx)
	for _, a := range ctx {
		assert.False(t, strings.Contains(a.ID, ":final:"), a.ID)
		assert.Equal(t, atom.NSCtx, a.NS)
	}
}

func TestFinalAtomsCiteTheirBases(t *testing.T) {
	res := run(t, worldtest.Tavern(), "bram")
	final := res.Trace.Stage(StageCtxFinal)
	require.NotEmpty(t, final)
	for _, a := range final {
		require.NotEmpty(t, a.Trace.UsedAtomIDs, a.ID)
		for _, u := range a.Trace.UsedAtomIDs {
			ns, ok := atom.ParseNamespace(u)
			require.True(t, ok, u)
			assert.Equal(t, atom.NSCtx, ns, "%s cites %s", a.ID, u)
			_, present := res.Atoms.Get(u)
			assert.True(t, present, "%s cites missing %s", a.ID, u)
		}
	}
}

func TestGoalsNeverCiteBaseCtx(t *testing.T) {
	res := run(t, worldtest.Tavern(), "bram")
	goals := res.Trace.Stage(StageGoal)
	require.NotEmpty(t, goals)
	for _, a := range goals {
		for _, u := range a.Trace.UsedAtomIDs {
			ns, _ := atom.ParseNamespace(u)
			assert.Contains(t, []atom.Namespace{atom.NSCtxFinal, atom.NSDrv}, ns, "%s cites %s", a.ID, u)
		}
	}
	for _, a := range res.Trace.Stage(StageUtil) {
		for _, u := range a.Trace.UsedAtomIDs {
			ns, _ := atom.ParseNamespace(u)
			assert.Contains(t, []atom.Namespace{atom.NSGoal, atom.NSDrv}, ns, "%s cites %s", a.ID, u)
		}
	}
}

func TestRunIsDeterministic(t *testing.T) {
	a := run(t, worldtest.Tavern(), "bram")
	b := run(t, worldtest.Tavern(), "bram")
	if diff := cmp.Diff(a.Trace, b.Trace); diff != "" {
		t.Errorf("trace differs (-a +b):\n%s", diff)
	}
}

func TestSmoothingBlendsPreviousTick(t *testing.T) {
	snap := worldtest.Tavern()
	first := run(t, snap, "bram")
	id := atom.ID(atom.NSCtxFinal, AxisAnger, "bram", "")
	cur, ok := first.Atoms.Get(id)
	require.True(t, ok)

	s := slice(worldtest.Tavern())
	s.PrevFinal = map[string]float64{id: 0}
	second, err := DefaultRunner().Run("bram", s)
	require.NoError(t, err)
	got, ok := second.Atoms.Get(id)
	require.True(t, ok)
	assert.InDelta(t, s.Config.SmoothingAlpha*cur.Magnitude, got.Magnitude, 1e-12)
	assert.NotEmpty(t, got.Trace.Notes)
}

func TestHarmDecaysOverHorizon(t *testing.T) {
	res := run(t, worldtest.Tavern(), "bram")
	a, ok := res.Atoms.Get(atom.ID(atom.NSWorld, "harm.recent", "bram", "cole"))
	require.True(t, ok)
	assert.Equal(t, 1.0, a.Magnitude)

	late := worldtest.Tavern()
	late.Tick = 20
	res = run(t, late, "bram")
	_, ok = res.Atoms.Get(atom.ID(atom.NSWorld, "harm.recent", "bram", "cole"))
	assert.False(t, ok)
}

func TestAppendRejectsForeignNamespace(t *testing.T) {
	var r Result
	bad := atom.New(atom.Spec{NS: atom.NSCtx, Key: "anger", Subject: "bram"})
	_, err := r.Append(StageWorld, []atom.Atom{bad})
	assert.True(t, errors.Is(err, ErrNamespaceViolation))

	ok := atom.New(atom.Spec{NS: atom.NSWorld, Key: "location", Subject: "bram", Target: "tavern"})
	r, err = r.Append(StageWorld, []atom.Atom{ok})
	require.NoError(t, err)
	_, err = r.Append(StageFeatures, []atom.Atom{ok})
	assert.True(t, errors.Is(err, atom.ErrDuplicateAtom))
	assert.Len(t, r.Trace.Stages, 1)
}

func TestViewHidesUnreadableNamespaces(t *testing.T) {
	res := run(t, worldtest.Tavern(), "bram")
	v := res.View(StageGoal)
	assert.False(t, v.Allows(atom.NSCtx))
	assert.False(t, v.Allows(atom.NSWorld))
	assert.True(t, v.Allows(atom.NSCtxFinal))
	_, ok := v.Get(atom.ID(atom.NSCtx, AxisAnger, "bram", ""))
	assert.False(t, ok)
}

func TestNewRunnerOrder(t *testing.T) {
	_, err := NewRunner(ctxStage{}, worldStage{})
	assert.True(t, errors.Is(err, ErrStageOrder))

	_, err = NewRunner(StageFunc{StageID: "S99_bogus"})
	assert.True(t, errors.Is(err, ErrStageOrder))

	_, err = NewRunner(worldStage{}, ctxStage{})
	assert.NoError(t, err)
}

func TestValidateTransitions(t *testing.T) {
	require.NoError(t, ValidateTransitions(Transitions))

	bad := make(map[StageID]Transition, len(Transitions))
	for k, v := range Transitions {
		bad[k] = v
	}
	bad[StageGoal] = Transition{Reads: []atom.Namespace{atom.NSUtil}, Writes: atom.NSGoal}
	assert.Error(t, ValidateTransitions(bad))

	delete(bad, StageGoal)
	assert.Error(t, ValidateTransitions(bad))
}

func TestUnknownAgentEmitsNothing(t *testing.T) {
	res := run(t, worldtest.Tavern(), "ghost")
	assert.Empty(t, res.Trace.Stage(StageWorld))
	assert.Empty(t, res.Trace.Stage(StageGoal))
}

func TestUrgencyGoalDoesNotCollideWithUtilUrgency(t *testing.T) {
	s := slice(worldtest.Tavern())
	tables := catalog.Default()
	tables.Goals = append(tables.Goals, catalog.GoalDef{
		ID: UtilUrgency, Value: 1,
		Inputs: []catalog.GoalInput{{Source: catalog.SourceDrv, Axis: DrvSafetyNeed, Weight: 1}},
	})
	require.Error(t, tables.Validate())
	s.Tables = tables

	res, err := DefaultRunner().Run("bram", s)
	require.NoError(t, err)
	u, ok := res.Atoms.Get(atom.ID(atom.NSUtil, UtilUrgency, "bram", ""))
	require.True(t, ok)
	for _, id := range u.Trace.UsedAtomIDs {
		ns, _ := atom.ParseNamespace(id)
		assert.Equal(t, atom.NSGoal, ns)
	}
}

func TestNeutralDefaultsComeFromFeatureResolve(t *testing.T) {
	snap := worldtest.Tavern()
	s := slice(snap)
	res, err := DefaultRunner().Run("dena", s)
	require.NoError(t, err)

	want := features.Resolve(s.Features["dena"], features.SocialTrust)
	require.True(t, want.Defaulted)

	a, ok := res.Atoms.Get(atom.ID(atom.NSCtx, AxisSocialTrust, "dena", ""))
	require.True(t, ok)
	assert.Equal(t, features.NeutralDefault, a.Magnitude)
	assert.Equal(t, []string{want.Note}, a.Trace.Notes)
	assert.Empty(t, a.Trace.UsedAtomIDs)

	// bram has a relation, so trust is read from its feature atom
	res, err = DefaultRunner().Run("bram", s)
	require.NoError(t, err)
	a, ok = res.Atoms.Get(atom.ID(atom.NSCtx, AxisSocialTrust, "bram", ""))
	require.True(t, ok)
	assert.Equal(t, []string{featureID(features.SocialTrust, "bram")}, a.Trace.UsedAtomIDs)
}
