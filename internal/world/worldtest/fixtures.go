// Package worldtest builds world snapshots shared by package tests.
package worldtest

import "github.com/danielpatrickdp/agent-cognition/go-engine/internal/world"

// Tavern returns a tick where "bram" has just been struck by "cole" and
// carries a knife, while "dena" sits apart, tired and hungry.
func Tavern() *world.Snapshot {
	return &world.Snapshot{
		Tick: 10,
		Agents: []world.Agent{
			{
				ID: "bram", Name: "Bram", LocationID: "tavern", Pos: world.Vec2{X: 0, Y: 0},
				Health: 70, Stress: 0.7, Anger: 0.9, Fear: 0.2, Fatigue: 0.2, Hunger: 0.1,
				Inventory: []string{"knife"},
				Traits:    map[string]float64{"aggressive": 0.8},
				Relations: map[string]world.Relation{"cole": {Trust: 0.1, Hostility: 0.8}},
			},
			{
				ID: "cole", Name: "Cole", LocationID: "tavern", Pos: world.Vec2{X: 1, Y: 0},
				Health: 90, Stress: 0.3, Anger: 0.4, Fear: 0.1, Fatigue: 0.1, Hunger: 0.2,
				Relations: map[string]world.Relation{"bram": {Trust: 0.2, Hostility: 0.5}},
			},
			{
				ID: "dena", Name: "Dena", LocationID: "cellar", Pos: world.Vec2{X: 20, Y: 5},
				Health: 40, Stress: 0.2, Anger: 0.0, Fear: 0.1, Fatigue: 0.9, Hunger: 0.8,
				DarkExposure: 0.6,
			},
		},
		Locations: []world.Location{
			{ID: "tavern", Name: "Tavern", Danger: 0.3, Publicness: 0.8, NormStrictness: 0.3, Crowding: 0.6, Resources: 0.7},
			{ID: "cellar", Name: "Cellar", Danger: 0.1, Publicness: 0.1, NormStrictness: 0.1, Crowding: 0.0, Resources: 0.2},
		},
		Scene: &world.Scene{ID: "brawl", Kind: "brawl", Tension: 0.7, Formality: 0.1, ProceduralStrictness: 0.1,
			Participants: []string{"bram", "cole"}},
		Events: []world.Event{
			{Tick: 10, Kind: world.EventHarm, ActorID: "cole", TargetID: "bram", Magnitude: 0.9},
			{Tick: 8, Kind: world.EventInsult, ActorID: "cole", TargetID: "bram", Magnitude: 0.5},
		},
		Mods: world.NewModsStore(),
	}
}

// Courtroom returns Tavern with the scene replaced by a strictly procedural one.
func Courtroom() *world.Snapshot {
	s := Tavern()
	s.Scene = &world.Scene{ID: "hearing", Kind: "court", Tension: 0.5, Formality: 1, ProceduralStrictness: 0.97}
	return s
}
