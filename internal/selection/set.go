// Package selection holds a picker session's state: the loaded records, the
// chosen ids, the current search matches and the group field, plus the pure
// derivation that turns them into the grouped selected/unselected display.
package selection

import "slices"

// Set is an ordered collection of record ids without duplicates. Order is
// insertion order. Sets are values: every operation returns a new Set and
// leaves the receiver untouched.
type Set struct {
	ids []string
}

// NewSet builds a set from ids, dropping repeats.
func NewSet(ids ...string) Set {
	return Set{}.AddAll(ids)
}

// Add appends id unless it is already present.
func (s Set) Add(id string) Set {
	if s.Contains(id) {
		return s
	}
	return Set{ids: append(slices.Clip(s.ids), id)}
}

// AddAll appends every id not already present, in argument order.
func (s Set) AddAll(ids []string) Set {
	out := s
	for _, id := range ids {
		out = out.Add(id)
	}
	return out
}

// Remove drops the first occurrence of id. Removing an absent id returns the
// set unchanged.
func (s Set) Remove(id string) Set {
	i := slices.Index(s.ids, id)
	if i < 0 {
		return s
	}
	return Set{ids: slices.Delete(slices.Clone(s.ids), i, i+1)}
}

// RemoveAll drops every occurrence of every id in ids.
func (s Set) RemoveAll(ids []string) Set {
	if len(ids) == 0 {
		return s
	}
	drop := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		drop[id] = struct{}{}
	}
	kept := make([]string, 0, len(s.ids))
	for _, id := range s.ids {
		if _, ok := drop[id]; !ok {
			kept = append(kept, id)
		}
	}
	return Set{ids: kept}
}

// Contains reports whether id is in the set.
func (s Set) Contains(id string) bool {
	return slices.Contains(s.ids, id)
}

// Len returns the number of ids.
func (s Set) Len() int {
	return len(s.ids)
}

// IDs returns the ids in insertion order. The result is never nil.
func (s Set) IDs() []string {
	out := make([]string, len(s.ids))
	copy(out, s.ids)
	return out
}

// Equal reports whether both sets hold the same ids in the same order.
func (s Set) Equal(o Set) bool {
	return slices.Equal(s.ids, o.ids)
}

func (s Set) index() map[string]struct{} {
	m := make(map[string]struct{}, len(s.ids))
	for _, id := range s.ids {
		m[id] = struct{}{}
	}
	return m
}
