package report

import (
	"fmt"
	"strings"

	"github.com/leapstack-labs/trialrecon/pkg/core"
	"github.com/leapstack-labs/trialrecon/pkg/reconcile"
)

// Stat is one line of the summary.
type Stat struct {
	Label   string   `json:"label"`
	Count   int      `json:"count"`
	Percent string   `json:"percent"`
	IDs     []string `json:"ids,omitempty"`
}

// Section groups related stats under a title.
type Section struct {
	Title string `json:"title"`
	Stats []Stat `json:"stats"`
}

// Summary describes one product's reconciliation in two sections: trial
// counts by membership, and trial validity.
type Summary struct {
	Product  string    `json:"product"`
	Sections []Section `json:"sections"`
}

// Summary labels that callers look up by name.
const (
	LabelTotal       = "Total"
	LabelInBoth      = "In Both"
	LabelTotalValid  = "Total Valid"
	LabelBothValid   = "Both"
	LabelNeither     = "Neither"
	LabelMismatch    = "Mismatch"
	LabelDifferences = "Differences"
)

// BuildSummary computes the summary of a reconciliation. Percentages are
// relative to the number of distinct tenant ids.
func BuildSummary(product string, s *reconcile.Sets, n Names) *Summary {
	total := s.Both.Len() + s.OnlyA.Len() + s.OnlyB.Len()
	totalValid := s.BothValid.Len() + s.NeitherValid.Len() + s.OnlyAValid.Len() + s.OnlyBValid.Len()
	diff := total - s.BothValid.Len() - s.NeitherValid.Len()

	stat := func(label string, count int) Stat {
		return Stat{Label: label, Count: count, Percent: Percentage(count, total)}
	}
	withIDs := func(label string, set core.IDSet) Stat {
		st := stat(label, set.Len())
		st.IDs = set.Sorted()
		return st
	}

	return &Summary{
		Product: product,
		Sections: []Section{
			{
				Title: product + " Trial Count",
				Stats: []Stat{
					{Label: LabelTotal, Count: total, Percent: "100%"},
					stat(LabelInBoth, s.Both.Len()),
					stat("In "+n.A+" Only", s.OnlyA.Len()),
					stat("In "+n.B+" Only", s.OnlyB.Len()),
					withIDs("Dupes in "+n.B, s.DuplicatesInB),
				},
			},
			{
				Title: product + " Trial Validity",
				Stats: []Stat{
					{Label: LabelTotal, Count: total, Percent: "100%"},
					stat(LabelTotalValid, totalValid),
					stat(LabelBothValid, s.BothValid.Len()),
					stat(LabelNeither, s.NeitherValid.Len()),
					withIDs(n.A+" Only", s.OnlyAValid),
					withIDs(n.B+" Only", s.OnlyBValid),
					withIDs(LabelMismatch, s.MismatchValidity),
					stat(LabelDifferences, diff),
				},
			},
		},
	}
}

// Get returns the first stat with label in the section at index section.
func (s *Summary) Get(section int, label string) (Stat, bool) {
	if section < 0 || section >= len(s.Sections) {
		return Stat{}, false
	}
	for _, st := range s.Sections[section].Stats {
		if st.Label == label {
			return st, true
		}
	}
	return Stat{}, false
}

// Percentage formats n/d as a percentage with one decimal. A zero
// denominator yields "0.0%".
func Percentage(n, d int) string {
	if d == 0 {
		return "0.0%"
	}
	return fmt.Sprintf("%.1f%%", float64(n)/float64(d)*100)
}

// QuotedList renders ids as "('a', 'b')" in sorted order, or "" when empty.
func QuotedList(ids []string) string {
	if len(ids) == 0 {
		return ""
	}
	quoted := make([]string, len(ids))
	for i, id := range ids {
		quoted[i] = "'" + id + "'"
	}
	return "(" + strings.Join(quoted, ", ") + ")"
}
