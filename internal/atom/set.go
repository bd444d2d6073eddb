package atom

import (
	"errors"
	"fmt"
	"sort"
)

// ErrDuplicateAtom is returned when an id is emitted twice within a tick.
var ErrDuplicateAtom = errors.New("duplicate atom id")

// #region set

// Set is an append-only collection of atoms. With returns a new Set and never
// modifies the receiver, so a Set can be shared freely across goroutines.
type Set struct {
	atoms []Atom
	index map[string]int
}

// NewSet builds a set from atoms.
func NewSet(atoms ...Atom) (Set, error) {
	return Set{}.With(atoms...)
}

// With returns a new set holding the receiver's atoms followed by atoms.
func (s Set) With(atoms ...Atom) (Set, error) {
	next := Set{
		atoms: make([]Atom, len(s.atoms), len(s.atoms)+len(atoms)),
		index: make(map[string]int, len(s.atoms)+len(atoms)),
	}
	copy(next.atoms, s.atoms)
	for id, i := range s.index {
		next.index[id] = i
	}
	for _, a := range atoms {
		if _, ok := next.index[a.ID]; ok {
			return s, fmt.Errorf("%w: %s", ErrDuplicateAtom, a.ID)
		}
		next.index[a.ID] = len(next.atoms)
		next.atoms = append(next.atoms, a)
	}
	return next, nil
}

// Len returns the number of atoms.
func (s Set) Len() int { return len(s.atoms) }

// All returns a copy of every atom in emission order.
func (s Set) All() []Atom {
	return append([]Atom(nil), s.atoms...)
}

// Get looks up an atom by id.
func (s Set) Get(id string) (Atom, bool) {
	i, ok := s.index[id]
	if !ok {
		return Atom{}, false
	}
	return s.atoms[i], true
}

// ByNamespace returns the atoms in ns in emission order.
func (s Set) ByNamespace(ns Namespace) []Atom {
	var out []Atom
	for _, a := range s.atoms {
		if a.NS == ns {
			out = append(out, a)
		}
	}
	return out
}

// View restricts the set to the given namespaces.
func (s Set) View(nss ...Namespace) View {
	allowed := make(map[Namespace]bool, len(nss))
	for _, ns := range nss {
		allowed[ns] = true
	}
	return View{set: s, allowed: allowed}
}

// #endregion set

// #region view

// View is a read-only window over a Set limited to a fixed list of namespaces.
// Atoms outside the window are indistinguishable from absent ones.
type View struct {
	set     Set
	allowed map[Namespace]bool
}

// Allows reports whether ns is visible through v.
func (v View) Allows(ns Namespace) bool { return v.allowed[ns] }

// Get looks up an atom by id if its namespace is visible.
func (v View) Get(id string) (Atom, bool) {
	a, ok := v.set.Get(id)
	if !ok || !v.allowed[a.NS] {
		return Atom{}, false
	}
	return a, true
}

// Find looks up the atom with the given coordinates.
func (v View) Find(ns Namespace, key, self, other string) (Atom, bool) {
	return v.Get(ID(ns, key, self, other))
}

// Magnitude returns the magnitude of the atom with the given coordinates.
func (v View) Magnitude(ns Namespace, key, self, other string) (float64, string, bool) {
	a, ok := v.Find(ns, key, self, other)
	if !ok {
		return 0, "", false
	}
	return a.Magnitude, a.ID, true
}

// Select returns the visible atoms in ns matching key and subject. An empty key
// or subject matches any value. Results are ordered by id.
func (v View) Select(ns Namespace, key, subject string) []Atom {
	if !v.allowed[ns] {
		return nil
	}
	var out []Atom
	for _, a := range v.set.atoms {
		if a.NS != ns {
			continue
		}
		if key != "" && a.Key != key {
			continue
		}
		if subject != "" && a.Subject != subject {
			continue
		}
		out = append(out, a)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// #endregion view
