package reconcile

import "github.com/leapstack-labs/trialrecon/pkg/core"

// Multiple is the collapsed value of an attribute whose records disagree.
const Multiple = "(Multiple)"

// Values collects a field's value from every record whose header has the field.
func Values(group []*core.Record, field string) []string {
	var out []string
	for _, rec := range group {
		if v, ok := rec.Get(field); ok {
			out = append(out, v)
		}
	}
	return out
}

// Collapse reduces values to one: the shared value when all agree, Multiple
// when they differ. It reports false when there are no values.
func Collapse(values []string) (string, bool) {
	if len(values) == 0 {
		return "", false
	}
	first := values[0]
	for _, v := range values[1:] {
		if v != first {
			return Multiple, true
		}
	}
	return first, true
}

// Attribute collapses a field across a group.
func Attribute(group []*core.Record, field string) (string, bool) {
	return Collapse(Values(group, field))
}

// MappedAttribute collapses a field across a group and maps the result with
// fn. Multiple is never mapped.
func MappedAttribute(group []*core.Record, field string, fn func(string) string) (string, bool) {
	v, ok := Attribute(group, field)
	if !ok || v == Multiple || fn == nil {
		return v, ok
	}
	return fn(v), true
}
