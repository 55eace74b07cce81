package report

import (
	"strings"

	"github.com/leapstack-labs/trialrecon/pkg/core"
	"github.com/leapstack-labs/trialrecon/pkg/normalize"
	"github.com/leapstack-labs/trialrecon/pkg/reconcile"
	"github.com/leapstack-labs/trialrecon/pkg/tenant"
)

// Filter clause prefixes by product family.
const (
	mailClausePrefix = "and tenant_id.value in "
	leadClausePrefix = "and l.lead_id in "
)

// FilterClause renders an SQL fragment selecting the given ids in source A.
// Ids are de-duplicated, sorted, converted to A's identifier format and
// quoted. An empty union leaves the list empty after the prefix.
func FilterClause(product string, sets ...core.IDSet) string {
	prefix := leadClausePrefix
	if normalize.IsMail(product) {
		prefix = mailClausePrefix
	}

	ids := core.Union(sets...).Sorted()
	for i, id := range ids {
		ids[i] = tenant.GenerateAmarilloID(id, product)
	}
	return prefix + QuotedList(ids)
}

// DiscrepancyClause is FilterClause over every set that needs follow-up:
// A-only, B-only, duplicates in B, one-sided validity and mismatches.
func DiscrepancyClause(product string, s *reconcile.Sets) string {
	return FilterClause(product,
		s.OnlyA, s.OnlyB, s.DuplicatesInB,
		s.OnlyAValid, s.OnlyBValid, s.MismatchValidity,
	)
}

// ProductClause pairs a product with its filter clause.
type ProductClause struct {
	Product string `json:"product"`
	Clause  string `json:"clause"`
}

// CommentedSQL renders one "-- <product> <clause>" line per product.
func CommentedSQL(clauses ...ProductClause) string {
	var b strings.Builder
	for _, c := range clauses {
		b.WriteString("-- ")
		b.WriteString(c.Product)
		b.WriteString(" ")
		b.WriteString(c.Clause)
		b.WriteString("\n")
	}
	return b.String()
}
