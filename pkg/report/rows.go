// Package report turns reconciliation sets into the artifacts people read:
// per-tenant detail rows, a summary of counts and percentages, and SQL filter
// clauses for follow-up queries against source A.
package report

import (
	"github.com/leapstack-labs/trialrecon/pkg/core"
	"github.com/leapstack-labs/trialrecon/pkg/reconcile"
	"github.com/leapstack-labs/trialrecon/pkg/tenant"
)

// Names are the display names of the two sources.
type Names struct {
	A string
	B string
}

// DefaultNames returns the standard source names.
func DefaultNames() Names {
	return Names{A: "Amarillo", B: "SFDC"}
}

// Headers returns the detail column titles in order.
func (n Names) Headers() []string {
	return []string{
		"Tenant ID",
		"Lead ID",
		"In Both",
		"In " + n.A + " Only",
		"In " + n.B + " Only",
		"Both Valid",
		"Neither Valid",
		"Valid " + n.A + " Only",
		"Valid " + n.B + " Only",
		"Mismatch",
		"Dupe in " + n.B,
		"Reason",
		"Details",
		"Notes",
	}
}

// Row is one discrepant tenant in the detail report.
type Row struct {
	TenantID     string      `json:"tenant_id"`
	LeadID       string      `json:"lead_id"`
	InBoth       bool        `json:"in_both"`
	InAOnly      bool        `json:"in_a_only"`
	InBOnly      bool        `json:"in_b_only"`
	BothValid    bool        `json:"both_valid"`
	NeitherValid bool        `json:"neither_valid"`
	ValidAOnly   bool        `json:"valid_a_only"`
	ValidBOnly   bool        `json:"valid_b_only"`
	Mismatch     bool        `json:"mismatch"`
	DupeInB      bool        `json:"dupe_in_b"`
	Reason       core.Reason `json:"reason"`
	Notes        string      `json:"notes,omitempty"`
}

// Values returns the row's cells in Headers order. Flags render as 1 or 0.
func (r Row) Values() []any {
	return []any{
		r.TenantID, r.LeadID,
		flag(r.InBoth), flag(r.InAOnly), flag(r.InBOnly),
		flag(r.BothValid), flag(r.NeitherValid), flag(r.ValidAOnly), flag(r.ValidBOnly),
		flag(r.Mismatch), flag(r.DupeInB),
		r.Reason.Category, r.Reason.Detail, r.Notes,
	}
}

func flag(b bool) int {
	if b {
		return 1
	}
	return 0
}

// ReasonFunc explains one discrepant id.
type ReasonFunc func(id string, m reconcile.Membership) core.Reason

// BuildDetailRows emits one row per id of Combined in sorted order, skipping
// ids that agree (BothValid or NeitherValid). The lead id is the canonical id
// in source A's format for product.
func BuildDetailRows(s *reconcile.Sets, product string, explain ReasonFunc) []Row {
	var rows []Row
	for _, id := range s.Combined.Sorted() {
		if s.BothValid.Has(id) || s.NeitherValid.Has(id) {
			continue
		}
		m := s.MembershipOf(id)
		row := Row{
			TenantID:   id,
			LeadID:     tenant.GenerateAmarilloID(id, product),
			InBoth:     m.InBoth,
			InAOnly:    m.InAOnly,
			InBOnly:    m.InBOnly,
			ValidAOnly: s.OnlyAValid.Has(id),
			ValidBOnly: s.OnlyBValid.Has(id),
			Mismatch:   s.MismatchValidity.Has(id),
			DupeInB:    s.DuplicatesInB.Has(id),
		}
		if explain != nil {
			row.Reason = explain(id, m)
		}
		rows = append(rows, row)
	}
	return rows
}
