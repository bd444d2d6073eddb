package world

import (
	"sort"
	"sync"
)

// #region mods

// Mods holds editor adjustments for one entity, keyed by feature key.
// Overrides replace, Deltas add and Multipliers scale, in that order.
type Mods struct {
	Overrides   map[string]float64 `json:"overrides,omitempty" yaml:"overrides,omitempty"`
	Deltas      map[string]float64 `json:"deltas,omitempty" yaml:"deltas,omitempty"`
	Multipliers map[string]float64 `json:"multipliers,omitempty" yaml:"multipliers,omitempty"`
}

// Empty reports whether m carries no adjustments.
func (m Mods) Empty() bool {
	return len(m.Overrides) == 0 && len(m.Deltas) == 0 && len(m.Multipliers) == 0
}

func (m Mods) clone() Mods {
	return Mods{
		Overrides:   cloneMap(m.Overrides),
		Deltas:      cloneMap(m.Deltas),
		Multipliers: cloneMap(m.Multipliers),
	}
}

func cloneMap(in map[string]float64) map[string]float64 {
	if len(in) == 0 {
		return nil
	}
	out := make(map[string]float64, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}

// #endregion mods

// #region store

// ModsStore owns the mods of every entity in a world. Entries are created on
// first access and live as long as the store; nothing resets them implicitly.
type ModsStore struct {
	mu       sync.RWMutex
	byEntity map[string]*Mods
}

// NewModsStore returns an empty store.
func NewModsStore() *ModsStore {
	return &ModsStore{byEntity: make(map[string]*Mods)}
}

func (s *ModsStore) entry(entityID string) *Mods {
	m, ok := s.byEntity[entityID]
	if !ok {
		m = &Mods{}
		s.byEntity[entityID] = m
	}
	return m
}

// Touch creates the entry for entityID if it does not exist yet.
func (s *ModsStore) Touch(entityID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entry(entityID)
}

// SetOverride pins key to value for entityID.
func (s *ModsStore) SetOverride(entityID, key string, value float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	m := s.entry(entityID)
	if m.Overrides == nil {
		m.Overrides = make(map[string]float64)
	}
	m.Overrides[key] = value
}

// AddDelta accumulates an additive adjustment for key.
func (s *ModsStore) AddDelta(entityID, key string, delta float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	m := s.entry(entityID)
	if m.Deltas == nil {
		m.Deltas = make(map[string]float64)
	}
	m.Deltas[key] += delta
}

// SetMultiplier sets the multiplicative scalar for key.
func (s *ModsStore) SetMultiplier(entityID, key string, factor float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	m := s.entry(entityID)
	if m.Multipliers == nil {
		m.Multipliers = make(map[string]float64)
	}
	m.Multipliers[key] = factor
}

// ClearKey removes every adjustment of key for entityID.
func (s *ModsStore) ClearKey(entityID, key string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	m, ok := s.byEntity[entityID]
	if !ok {
		return
	}
	delete(m.Overrides, key)
	delete(m.Deltas, key)
	delete(m.Multipliers, key)
}

// Get returns a copy of the mods for entityID.
func (s *ModsStore) Get(entityID string) (Mods, bool) {
	if s == nil {
		return Mods{}, false
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	m, ok := s.byEntity[entityID]
	if !ok {
		return Mods{}, false
	}
	return m.clone(), true
}

// Entities returns the ids with an entry, sorted.
func (s *ModsStore) Entities() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	ids := make([]string, 0, len(s.byEntity))
	for id := range s.byEntity {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Load merges mods into the store, creating entries as needed.
func (s *ModsStore) Load(mods map[string]Mods) {
	for id, m := range mods {
		for k, v := range m.Overrides {
			s.SetOverride(id, k, v)
		}
		for k, v := range m.Deltas {
			s.AddDelta(id, k, v)
		}
		for k, v := range m.Multipliers {
			s.SetMultiplier(id, k, v)
		}
	}
}

// #endregion store
