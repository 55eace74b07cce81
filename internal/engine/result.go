package engine

import (
	"context"

	"github.com/leapstack-labs/trialrecon/internal/config"
	"github.com/leapstack-labs/trialrecon/internal/state"
	"github.com/leapstack-labs/trialrecon/pkg/core"
	"github.com/leapstack-labs/trialrecon/pkg/reconcile"
	"github.com/leapstack-labs/trialrecon/pkg/report"
)

// Sink receives a finished run and returns where it was written.
type Sink interface {
	Write(ctx context.Context, res *Result) (string, error)
}

// ProductResult is the reconciliation of one product.
type ProductResult struct {
	Product    string            `json:"product"`
	Comparison config.Comparison `json:"-"`
	Sets       *reconcile.Sets   `json:"-"`
	Summary    *report.Summary   `json:"summary"`
	Rows       []report.Row      `json:"rows"`
	Clause     string            `json:"clause"`

	// FilteredA and FilteredB are the inputs after filtering and column
	// selection.
	FilteredA *core.Table `json:"-"`
	FilteredB *core.Table `json:"-"`
}

// Result is the outcome of a run.
type Result struct {
	RunID     string           `json:"run_id,omitempty"`
	StartDate string           `json:"start_date"`
	EndDate   string           `json:"end_date"`
	Range     core.DateRange   `json:"-"`
	Names     report.Names     `json:"names"`
	Files     Files            `json:"files"`
	Inputs    *Inputs          `json:"-"`
	Products  []*ProductResult `json:"products"`
	Workbook  string           `json:"workbook,omitempty"`
}

// Product returns the result of one product, or nil.
func (r *Result) Product(code string) *ProductResult {
	for _, p := range r.Products {
		if p.Product == code {
			return p
		}
	}
	return nil
}

// Clauses returns the filter clause of every product in order.
func (r *Result) Clauses() []report.ProductClause {
	out := make([]report.ProductClause, len(r.Products))
	for i, p := range r.Products {
		out[i] = report.ProductClause{Product: p.Product, Clause: p.Clause}
	}
	return out
}

// SQL renders the commented filter clauses of all products.
func (r *Result) SQL() string {
	return report.CommentedSQL(r.Clauses()...)
}

// record converts a product result to its stored form.
func (p *ProductResult) record(runID string) (*state.ProductResult, []state.Discrepancy) {
	s := p.Sets
	res := &state.ProductResult{
		RunID:        runID,
		Product:      p.Product,
		Total:        s.Combined.Len(),
		InBoth:       s.Both.Len(),
		OnlyA:        s.OnlyA.Len(),
		OnlyB:        s.OnlyB.Len(),
		DupesB:       s.DuplicatesInB.Len(),
		BothValid:    s.BothValid.Len(),
		NeitherValid: s.NeitherValid.Len(),
		OnlyAValid:   s.OnlyAValid.Len(),
		OnlyBValid:   s.OnlyBValid.Len(),
		Mismatch:     s.MismatchValidity.Len(),
		Differences:  s.Combined.Len() - s.BothValid.Len() - s.NeitherValid.Len(),
		SQLClause:    p.Clause,
	}

	rows := make([]state.Discrepancy, len(p.Rows))
	for i, r := range p.Rows {
		rows[i] = state.Discrepancy{
			TenantID:   r.TenantID,
			LeadID:     r.LeadID,
			Membership: membership(r),
			ValidA:     s.ValidInA.Has(r.TenantID),
			ValidB:     s.ValidInB.Has(r.TenantID),
			Mismatch:   r.Mismatch,
			DupeInB:    r.DupeInB,
			Category:   r.Reason.Category,
			Detail:     r.Reason.Detail,
		}
	}
	return res, rows
}

func membership(r report.Row) string {
	switch {
	case r.InBoth:
		return state.MembershipBoth
	case r.InAOnly:
		return state.MembershipAOnly
	default:
		return state.MembershipBOnly
	}
}
