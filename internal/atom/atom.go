package atom

import (
	"math"
	"strings"
)

// #region kind

// Kind classifies what an atom represents within its namespace.
type Kind string

const (
	KindFact       Kind = "fact"
	KindFeature    Kind = "feature"
	KindAxis       Kind = "axis"
	KindAggregate  Kind = "aggregate"
	KindComposite  Kind = "composite"
	KindDriver     Kind = "driver"
	KindGoal       Kind = "goal"
	KindProjection Kind = "projection"
	KindScore      Kind = "score"
	KindForced     Kind = "forced"
)

// #endregion kind

// #region atom

// Trace is the provenance of an atom.
type Trace struct {
	UsedAtomIDs []string `json:"used_atom_ids,omitempty"`
	Notes       []string `json:"notes,omitempty"`
}

// Atom is an immutable namespaced scalar fact.
type Atom struct {
	ID         string    `json:"id"`
	NS         Namespace `json:"ns"`
	Kind       Kind      `json:"kind"`
	Key        string    `json:"key"`
	Subject    string    `json:"subject"`
	Target     string    `json:"target,omitempty"`
	Magnitude  float64   `json:"magnitude"`
	Confidence float64   `json:"confidence"`
	Origin     string    `json:"origin"`
	Trace      Trace     `json:"trace"`
}

// Spec describes an atom to be built by New.
type Spec struct {
	NS        Namespace
	Kind      Kind
	Key       string
	Subject   string
	Target    string
	Magnitude float64
	Origin    string
	Used      []string
	Notes     []string
}

// New builds an atom from s with full confidence. Used ids are copied.
func New(s Spec) Atom {
	var used []string
	if len(s.Used) > 0 {
		used = append([]string(nil), s.Used...)
	}
	var notes []string
	if len(s.Notes) > 0 {
		notes = append([]string(nil), s.Notes...)
	}
	return Atom{
		ID:         ID(s.NS, s.Key, s.Subject, s.Target),
		NS:         s.NS,
		Kind:       s.Kind,
		Key:        s.Key,
		Subject:    s.Subject,
		Target:     s.Target,
		Magnitude:  s.Magnitude,
		Confidence: 1,
		Origin:     s.Origin,
		Trace:      Trace{UsedAtomIDs: used, Notes: notes},
	}
}

// WithConfidence returns a copy of a with the confidence set, clamped to [0, 1].
func (a Atom) WithConfidence(c float64) Atom {
	a.Confidence = Clamp01(c)
	return a
}

// Cites reports whether a lists id among its used atoms.
func (a Atom) Cites(id string) bool {
	for _, u := range a.Trace.UsedAtomIDs {
		if u == id {
			return true
		}
	}
	return false
}

// #endregion atom

// #region id

// ID formats an atom id as ns:key:self[:other].
func ID(ns Namespace, key, self, other string) string {
	var b strings.Builder
	b.WriteString(ns.String())
	b.WriteByte(':')
	b.WriteString(key)
	b.WriteByte(':')
	b.WriteString(self)
	if other != "" {
		b.WriteByte(':')
		b.WriteString(other)
	}
	return b.String()
}

// #endregion id

// #region helpers

// Clamp01 restricts v to [0, 1]. NaN maps to 0.
func Clamp01(v float64) float64 {
	if math.IsNaN(v) || v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

// Finite reports whether v is neither NaN nor infinite.
func Finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

// #endregion helpers
