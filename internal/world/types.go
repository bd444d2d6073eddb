package world

// #region entities

// Vec2 is a planar position.
type Vec2 struct {
	X float64 `json:"x" yaml:"x"`
	Y float64 `json:"y" yaml:"y"`
}

// Relation is one agent's standing toward another.
type Relation struct {
	Trust     float64 `json:"trust" yaml:"trust"`
	Hostility float64 `json:"hostility" yaml:"hostility"`
}

// Agent is the raw per-tick record of a character.
type Agent struct {
	ID           string              `json:"id" yaml:"id"`
	Name         string              `json:"name" yaml:"name"`
	Group        string              `json:"group,omitempty" yaml:"group,omitempty"`
	Role         string              `json:"role,omitempty" yaml:"role,omitempty"`
	LocationID   string              `json:"location_id" yaml:"location_id"`
	Pos          Vec2                `json:"pos" yaml:"pos"`
	Health       float64             `json:"health" yaml:"health"` // 0..100
	Stress       float64             `json:"stress" yaml:"stress"`
	Anger        float64             `json:"anger" yaml:"anger"`
	Fear         float64             `json:"fear" yaml:"fear"`
	Fatigue      float64             `json:"fatigue" yaml:"fatigue"`
	Hunger       float64             `json:"hunger" yaml:"hunger"`
	DarkExposure float64             `json:"dark_exposure" yaml:"dark_exposure"`
	Authority    float64             `json:"authority" yaml:"authority"`
	Valence      *float64            `json:"valence,omitempty" yaml:"valence,omitempty"`
	Inventory    []string            `json:"inventory,omitempty" yaml:"inventory,omitempty"`
	Traits       map[string]float64  `json:"traits,omitempty" yaml:"traits,omitempty"`
	Relations    map[string]Relation `json:"relations,omitempty" yaml:"relations,omitempty"`
	Attrs        map[string]float64  `json:"attrs,omitempty" yaml:"attrs,omitempty"`
}

// Has reports whether the agent carries item.
func (a Agent) Has(item string) bool {
	for _, it := range a.Inventory {
		if it == item {
			return true
		}
	}
	return false
}

// Location is the raw record of a place.
type Location struct {
	ID             string             `json:"id" yaml:"id"`
	Name           string             `json:"name" yaml:"name"`
	Tags           []string           `json:"tags,omitempty" yaml:"tags,omitempty"`
	Danger         float64            `json:"danger" yaml:"danger"`
	Publicness     float64            `json:"publicness" yaml:"publicness"`
	NormStrictness float64            `json:"norm_strictness" yaml:"norm_strictness"`
	Crowding       float64            `json:"crowding" yaml:"crowding"`
	Resources      float64            `json:"resources" yaml:"resources"`
	Attrs          map[string]float64 `json:"attrs,omitempty" yaml:"attrs,omitempty"`
}

// Scene is the raw record of the situation the agents share.
type Scene struct {
	ID                   string             `json:"id" yaml:"id"`
	Kind                 string             `json:"kind" yaml:"kind"`
	Tension              float64            `json:"tension" yaml:"tension"`
	Formality            float64            `json:"formality" yaml:"formality"`
	ProceduralStrictness float64            `json:"procedural_strictness" yaml:"procedural_strictness"`
	Participants         []string           `json:"participants,omitempty" yaml:"participants,omitempty"`
	Attrs                map[string]float64 `json:"attrs,omitempty" yaml:"attrs,omitempty"`
}

// #endregion entities

// #region events

// EventKind names a logged interaction.
type EventKind string

const (
	EventHarm   EventKind = "harm"
	EventHelp   EventKind = "help"
	EventInsult EventKind = "insult"
	EventThreat EventKind = "threat"
)

// Event is one entry of the world event log.
type Event struct {
	Tick      int       `json:"tick" yaml:"tick"`
	Kind      EventKind `json:"kind" yaml:"kind"`
	ActorID   string    `json:"actor_id" yaml:"actor_id"`
	TargetID  string    `json:"target_id" yaml:"target_id"`
	Magnitude float64   `json:"magnitude" yaml:"magnitude"`
}

// #endregion events

// #region snapshot

// Snapshot is the read-only world state for one tick.
type Snapshot struct {
	Tick      int        `json:"tick" yaml:"tick"`
	Agents    []Agent    `json:"agents" yaml:"agents"`
	Locations []Location `json:"locations" yaml:"locations"`
	Scene     *Scene     `json:"scene,omitempty" yaml:"scene,omitempty"`
	Events    []Event    `json:"events,omitempty" yaml:"events,omitempty"`
	Mods      *ModsStore `json:"-" yaml:"-"`
}

// Agent looks up an agent by id.
func (s *Snapshot) Agent(id string) (Agent, bool) {
	for _, a := range s.Agents {
		if a.ID == id {
			return a, true
		}
	}
	return Agent{}, false
}

// Location looks up a location by id.
func (s *Snapshot) Location(id string) (Location, bool) {
	for _, l := range s.Locations {
		if l.ID == id {
			return l, true
		}
	}
	return Location{}, false
}

// CoLocated returns the agents sharing agentID's location, excluding agentID.
func (s *Snapshot) CoLocated(agentID string) []Agent {
	self, ok := s.Agent(agentID)
	if !ok || self.LocationID == "" {
		return nil
	}
	var out []Agent
	for _, a := range s.Agents {
		if a.ID != agentID && a.LocationID == self.LocationID {
			out = append(out, a)
		}
	}
	return out
}

// AgentIDs returns every agent id in snapshot order.
func (s *Snapshot) AgentIDs() []string {
	ids := make([]string, len(s.Agents))
	for i, a := range s.Agents {
		ids[i] = a.ID
	}
	return ids
}

// #endregion snapshot
