package core

import "sort"

// IDSet is a read-only set of canonical tenant ids.
// The zero value is an empty set.
type IDSet struct {
	m map[string]struct{}
}

// NewIDSet builds a set from ids.
func NewIDSet(ids ...string) IDSet {
	m := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		m[id] = struct{}{}
	}
	return IDSet{m: m}
}

// Has reports membership.
func (s IDSet) Has(id string) bool {
	_, ok := s.m[id]
	return ok
}

// Len returns the number of ids.
func (s IDSet) Len() int {
	return len(s.m)
}

// Sorted returns the ids in lexicographic order.
func (s IDSet) Sorted() []string {
	out := make([]string, 0, len(s.m))
	for id := range s.m {
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}

// Union returns a new set holding the ids of all given sets.
func Union(sets ...IDSet) IDSet {
	n := 0
	for _, s := range sets {
		n += s.Len()
	}
	m := make(map[string]struct{}, n)
	for _, s := range sets {
		for id := range s.m {
			m[id] = struct{}{}
		}
	}
	return IDSet{m: m}
}

// IDSetBuilder accumulates ids and freezes them into an IDSet.
type IDSetBuilder struct {
	m map[string]struct{}
}

// Add inserts an id.
func (b *IDSetBuilder) Add(id string) {
	if b.m == nil {
		b.m = make(map[string]struct{})
	}
	b.m[id] = struct{}{}
}

// Build returns the accumulated set. The builder must not be used afterwards.
func (b *IDSetBuilder) Build() IDSet {
	if b.m == nil {
		return IDSet{m: map[string]struct{}{}}
	}
	s := IDSet{m: b.m}
	b.m = nil
	return s
}
