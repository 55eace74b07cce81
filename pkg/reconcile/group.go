// Package reconcile groups records by canonical tenant id and computes the
// membership and validity sets that describe how two sources disagree.
package reconcile

import "github.com/leapstack-labs/trialrecon/pkg/core"

// DefaultTruthy is the validity value that marks a record as valid.
const DefaultTruthy = "1"

// Groups maps canonical tenant ids to the records sharing that id.
// Keys keep first-seen order and every group holds at least one record.
type Groups struct {
	keys []string
	m    map[string][]*core.Record
}

// KeyFunc derives a grouping key from a record.
type KeyFunc func(*core.Record) string

// GroupBy partitions records by key, keeping input order inside each group.
// Records with an empty key are grouped under "" like any other key.
func GroupBy(records []*core.Record, key KeyFunc) *Groups {
	g := &Groups{m: make(map[string][]*core.Record)}
	for _, rec := range records {
		k := key(rec)
		if _, ok := g.m[k]; !ok {
			g.keys = append(g.keys, k)
		}
		g.m[k] = append(g.m[k], rec)
	}
	return g
}

// GroupByField groups records by the raw value of one column.
func GroupByField(records []*core.Record, field string) *Groups {
	return GroupBy(records, func(r *core.Record) string { return r.Value(field) })
}

// Get returns the records for an id, or nil.
func (g *Groups) Get(id string) []*core.Record {
	if g == nil {
		return nil
	}
	return g.m[id]
}

// Has reports whether the id has a group.
func (g *Groups) Has(id string) bool {
	if g == nil {
		return false
	}
	_, ok := g.m[id]
	return ok
}

// Keys returns the ids in first-seen order.
func (g *Groups) Keys() []string {
	if g == nil {
		return nil
	}
	out := make([]string, len(g.keys))
	copy(out, g.keys)
	return out
}

// Len returns the number of groups.
func (g *Groups) Len() int {
	if g == nil {
		return 0
	}
	return len(g.keys)
}

// Without returns a copy of the groups with the given key removed.
func (g *Groups) Without(id string) *Groups {
	out := &Groups{m: make(map[string][]*core.Record, len(g.m))}
	for _, k := range g.keys {
		if k == id {
			continue
		}
		out.keys = append(out.keys, k)
		out.m[k] = g.m[k]
	}
	return out
}

// IsValid reports whether a group is valid: it is non-empty and every record's
// validity field equals truthy. Missing or malformed values make it invalid.
func IsValid(group []*core.Record, field, truthy string) bool {
	if len(group) == 0 {
		return false
	}
	for _, rec := range group {
		v, ok := rec.Get(field)
		if !ok || v != truthy {
			return false
		}
	}
	return true
}
