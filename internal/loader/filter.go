package loader

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/leapstack-labs/trialrecon/pkg/core"
)

// ErrUnsupportedOperator is returned for filter operators outside the known set.
var ErrUnsupportedOperator = errors.New("unsupported filter operator")

// Filter operators.
const (
	OpEquals     = "="
	OpStartsWith = "startsWith"
	OpEndsWith   = "endsWith"
	OpBefore     = "<"
	OpAfter      = ">"
	OpOnOrBefore = "<="
	OpOnOrAfter  = ">="
)

// Date variables substituted into filter values.
const (
	VarStartDate = "$START_DATE"
	VarEndDate   = "$END_DATE"
)

var operators = map[string]bool{
	OpEquals:     true,
	OpStartsWith: true,
	OpEndsWith:   true,
	OpBefore:     true,
	OpAfter:      true,
	OpOnOrBefore: true,
	OpOnOrAfter:  true,
}

// FilterRule is one [column, operator, value] condition.
type FilterRule struct {
	Column   string `koanf:"column" yaml:"column" json:"column"`
	Operator string `koanf:"operator" yaml:"operator" json:"operator"`
	Value    string `koanf:"value" yaml:"value" json:"value"`
}

// String renders the rule as it appears in configuration.
func (f FilterRule) String() string {
	return fmt.Sprintf("[%s %s %s]", f.Column, f.Operator, f.Value)
}

// ValidateOperator reports ErrUnsupportedOperator for unknown operators.
func ValidateOperator(op string) error {
	if !operators[op] {
		return fmt.Errorf("%w: %q", ErrUnsupportedOperator, op)
	}
	return nil
}

// Match evaluates the rule against a record. A missing column reads as "".
// Comparison operators parse both sides as dates and fail to match when
// either side does not parse.
func (f FilterRule) Match(rec *core.Record, dr core.DateRange) (bool, error) {
	actual := rec.Value(f.Column)
	switch f.Operator {
	case OpEquals:
		return actual == f.Value, nil
	case OpStartsWith:
		return strings.HasPrefix(actual, f.Value), nil
	case OpEndsWith:
		return strings.HasSuffix(actual, f.Value), nil
	case OpBefore, OpAfter, OpOnOrBefore, OpOnOrAfter:
		a, err := core.ParseDate(actual)
		if err != nil {
			return false, nil
		}
		e, err := f.expectedDate(dr)
		if err != nil {
			return false, nil
		}
		return compareDates(f.Operator, core.Day(a), core.Day(e)), nil
	default:
		return false, fmt.Errorf("%w: %q", ErrUnsupportedOperator, f.Operator)
	}
}

func (f FilterRule) expectedDate(dr core.DateRange) (time.Time, error) {
	switch f.Value {
	case VarStartDate:
		return dr.Start, nil
	case VarEndDate:
		return dr.End, nil
	default:
		return core.ParseDate(f.Value)
	}
}

func compareDates(op string, a, e time.Time) bool {
	switch op {
	case OpBefore:
		return a.Before(e)
	case OpAfter:
		return a.After(e)
	case OpOnOrBefore:
		return !a.After(e)
	default:
		return !a.Before(e)
	}
}

// Selection is the column subset and row filters applied to one source.
type Selection struct {
	// Columns to keep, in output order. Empty keeps every column.
	Columns []string
	// Include keeps records matching every rule.
	Include []FilterRule
	// Exclude drops records matching any rule.
	Exclude []FilterRule
}

// Apply filters rows then projects columns. Filters see the full record so
// they may reference columns outside the selection.
func Apply(t *core.Table, sel Selection, dr core.DateRange) (*core.Table, error) {
	var kept []*core.Record
	for _, rec := range t.Records {
		ok, err := keep(rec, sel, dr)
		if err != nil {
			return nil, err
		}
		if ok {
			kept = append(kept, rec)
		}
	}
	return project(&core.Table{Header: t.Header, Records: kept}, sel.Columns)
}

func keep(rec *core.Record, sel Selection, dr core.DateRange) (bool, error) {
	for _, f := range sel.Include {
		ok, err := f.Match(rec, dr)
		if err != nil {
			return false, err
		}
		if !ok {
			return false, nil
		}
	}
	for _, f := range sel.Exclude {
		ok, err := f.Match(rec, dr)
		if err != nil {
			return false, err
		}
		if ok {
			return false, nil
		}
	}
	return true, nil
}

// project keeps the listed columns that exist in the table, in list order.
func project(t *core.Table, columns []string) (*core.Table, error) {
	if len(columns) == 0 {
		return t, nil
	}

	var names []string
	var idx []int
	for _, c := range columns {
		if i, ok := t.Header.Index(c); ok {
			names = append(names, c)
			idx = append(idx, i)
		}
	}
	h, err := core.NewHeader(names)
	if err != nil {
		return nil, err
	}

	rows := make([][]string, len(t.Records))
	for r, rec := range t.Records {
		fields := rec.Fields()
		row := make([]string, len(idx))
		for j, i := range idx {
			row[j] = fields[i]
		}
		rows[r] = row
	}
	return core.NewTable(h, rows)
}
