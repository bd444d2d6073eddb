package world

import (
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestModsStoreAccumulates(t *testing.T) {
	s := NewModsStore()
	s.SetOverride("bram", "affect.anger", 0.2)
	s.AddDelta("bram", "affect.fear", 0.1)
	s.AddDelta("bram", "affect.fear", 0.15)
	s.SetMultiplier("bram", "body.hunger", 2)
	s.Touch("cole")

	m, ok := s.Get("bram")
	require.True(t, ok)
	assert.Equal(t, 0.2, m.Overrides["affect.anger"])
	assert.InDelta(t, 0.25, m.Deltas["affect.fear"], 1e-12)
	assert.Equal(t, 2.0, m.Multipliers["body.hunger"])

	c, ok := s.Get("cole")
	require.True(t, ok)
	assert.True(t, c.Empty())
	assert.Equal(t, []string{"bram", "cole"}, s.Entities())

	s.ClearKey("bram", "affect.fear")
	m, _ = s.Get("bram")
	_, ok = m.Deltas["affect.fear"]
	assert.False(t, ok)
}

func TestModsStoreGetReturnsCopy(t *testing.T) {
	s := NewModsStore()
	s.SetOverride("bram", "affect.anger", 0.2)
	m, _ := s.Get("bram")
	m.Overrides["affect.anger"] = 0.9
	again, _ := s.Get("bram")
	assert.Equal(t, 0.2, again.Overrides["affect.anger"])

	var nilStore *ModsStore
	_, ok := nilStore.Get("bram")
	assert.False(t, ok)
}

func TestModsStoreConcurrentWrites(t *testing.T) {
	s := NewModsStore()
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			s.AddDelta("bram", "affect.stress", 0.01)
		}()
	}
	wg.Wait()
	m, _ := s.Get("bram")
	assert.InDelta(t, 0.5, m.Deltas["affect.stress"], 1e-9)
}

func TestSnapshotLookups(t *testing.T) {
	snap := &Snapshot{
		Agents: []Agent{
			{ID: "a", LocationID: "hall", Inventory: []string{"knife"}},
			{ID: "b", LocationID: "hall"},
			{ID: "c", LocationID: "yard"},
		},
		Locations: []Location{{ID: "hall"}, {ID: "yard"}},
	}
	a, ok := snap.Agent("a")
	require.True(t, ok)
	assert.True(t, a.Has("knife"))
	assert.False(t, a.Has("sword"))

	_, ok = snap.Location("cellar")
	assert.False(t, ok)

	co := snap.CoLocated("a")
	require.Len(t, co, 1)
	assert.Equal(t, "b", co[0].ID)
	assert.ElementsMatch(t, []string{"a", "b", "c"}, snap.AgentIDs())
}

func TestLoadScenarioYAMLAndJSON(t *testing.T) {
	dir := t.TempDir()
	yamlPath := filepath.Join(dir, "s.yaml")
	require.NoError(t, os.WriteFile(yamlPath, []byte(`
description: two in a hall
world:
  tick: 3
  agents:
    - id: a
      name: A
      location_id: hall
      anger: 0.4
  locations:
    - id: hall
      name: Hall
      danger: 0.2
mods:
  a:
    overrides:
      affect.anger: 0.9
`), 0o644))

	snap, err := LoadScenario(yamlPath)
	require.NoError(t, err)
	assert.Equal(t, 3, snap.Tick)
	require.Len(t, snap.Agents, 1)
	assert.Equal(t, 0.4, snap.Agents[0].Anger)
	m, ok := snap.Mods.Get("a")
	require.True(t, ok)
	assert.Equal(t, 0.9, m.Overrides["affect.anger"])

	jsonPath := filepath.Join(dir, "s.json")
	require.NoError(t, os.WriteFile(jsonPath, []byte(`{"world": {"tick": 5, "agents": [{"id": "b", "location_id": "yard"}], "locations": [{"id": "yard"}]}}`), 0o644))
	snap, err = LoadScenario(jsonPath)
	require.NoError(t, err)
	assert.Equal(t, 5, snap.Tick)
	assert.NotNil(t, snap.Mods)

	_, err = LoadScenario(filepath.Join(dir, "missing.yaml"))
	assert.Error(t, err)
}
