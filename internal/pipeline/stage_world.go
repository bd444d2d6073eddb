package pipeline

import (
	"math"
	"sort"

	"github.com/danielpatrickdp/agent-cognition/go-engine/internal/atom"
	"github.com/danielpatrickdp/agent-cognition/go-engine/internal/world"
)

// #region world-stage

// worldStage emits raw facts about the agent's surroundings. It reads no
// atoms and emits only world:* ids.
type worldStage struct{}

func (worldStage) ID() StageID { return StageWorld }

func (worldStage) Run(_ atom.View, agentID string, slice *Slice) []atom.Atom {
	snap := slice.Snapshot
	self, ok := snap.Agent(agentID)
	if !ok {
		return nil
	}
	var out []atom.Atom
	fact := func(key, other string, mag float64, notes ...string) {
		out = append(out, atom.New(atom.Spec{
			NS: atom.NSWorld, Kind: atom.KindFact, Key: key, Subject: agentID, Target: other,
			Magnitude: mag, Origin: string(StageWorld), Notes: notes,
		}))
	}

	if self.LocationID != "" {
		fact("location", self.LocationID, 1)
	}
	if snap.Scene != nil && snap.Scene.Kind != "" {
		fact("scene.kind."+snap.Scene.Kind, "", 1)
	}

	rng := slice.Config.ProximityRange
	for _, other := range snap.CoLocated(agentID) {
		fact("present", other.ID, 1)
		if rng > 0 {
			d := math.Hypot(other.Pos.X-self.Pos.X, other.Pos.Y-self.Pos.Y)
			fact("proximity", other.ID, atom.Clamp01(1-d/rng))
		}
	}

	relIDs := make([]string, 0, len(self.Relations))
	for id := range self.Relations {
		relIDs = append(relIDs, id)
	}
	sort.Strings(relIDs)
	for _, id := range relIDs {
		r := self.Relations[id]
		fact("trust", id, atom.Clamp01(r.Trust))
		if r.Hostility > 0 {
			fact("hostility", id, atom.Clamp01(r.Hostility))
		}
	}

	harm, help := recentByActor(snap.Events, agentID, snap.Tick, slice.Config.HarmHorizon)
	for _, id := range sortedIDs(harm) {
		fact("harm.recent", id, atom.Clamp01(harm[id]), note("horizon=%d", slice.Config.HarmHorizon))
	}
	for _, id := range sortedIDs(help) {
		fact("help.recent", id, atom.Clamp01(help[id]), note("horizon=%d", slice.Config.HarmHorizon))
	}
	return out
}

// #endregion world-stage

// #region event-decay

// eventWeight scales how strongly each event kind reads as harm.
var eventWeight = map[world.EventKind]float64{
	world.EventHarm:   1.0,
	world.EventThreat: 0.7,
	world.EventInsult: 0.5,
}

// recentByActor sums harm-like and help events aimed at target, decayed
// linearly over horizon ticks. Future-dated events are ignored.
func recentByActor(events []world.Event, target string, now, horizon int) (harm, help map[string]float64) {
	harm = make(map[string]float64)
	help = make(map[string]float64)
	if horizon <= 0 {
		horizon = 1
	}
	for _, ev := range events {
		if ev.TargetID != target || ev.ActorID == "" || ev.ActorID == target {
			continue
		}
		age := now - ev.Tick
		if age < 0 || age >= horizon || !atom.Finite(ev.Magnitude) {
			continue
		}
		decay := 1 - float64(age)/float64(horizon)
		if ev.Kind == world.EventHelp {
			help[ev.ActorID] += ev.Magnitude * decay
			continue
		}
		if w, ok := eventWeight[ev.Kind]; ok {
			harm[ev.ActorID] += w * ev.Magnitude * decay
		}
	}
	return harm, help
}

func sortedIDs(m map[string]float64) []string {
	ids := make([]string, 0, len(m))
	for id, v := range m {
		if v > 0 {
			ids = append(ids, id)
		}
	}
	sort.Strings(ids)
	return ids
}

// #endregion event-decay
