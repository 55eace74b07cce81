package rules

import (
	"github.com/leapstack-labs/trialrecon/pkg/core"
	"github.com/leapstack-labs/trialrecon/pkg/normalize"
	"github.com/leapstack-labs/trialrecon/pkg/reason"
	"github.com/leapstack-labs/trialrecon/pkg/reconcile"
)

func init() {
	reason.Register(ProductChange)
}

// ProductChange flags tenants whose normalized product differs between sources.
var ProductChange = reason.RuleDef{
	ID:          "RC02",
	Name:        "product.change",
	Category:    CategoryProductChange,
	Priority:    20,
	Description: "Product differs between A, B or the feed.",
	Check:       checkProductChange,
}

func checkProductChange(in *reason.Input) (core.Reason, bool) {
	f := in.Fields
	m := in.Membership

	a, _ := reconcile.MappedAttribute(in.A, f.ProductA, normalize.Product)
	s, _ := reconcile.MappedAttribute(in.B, f.ProductB, normalize.Product)
	fd, _ := reconcile.MappedAttribute(in.Feed, f.ProductFeed, normalize.Product)

	switch {
	case m.InBoth && !blank(a) && a != s:
		return product(changeDetail(1, a, f.NameA, s, f.NameB)), true
	case m.InAOnly && !blank(s) && !blank(a) && a != s:
		return product(changeDetail(2, a, f.NameA, s, f.NameB)), true
	case m.InAOnly && !blank(fd) && !blank(a) && a != fd:
		return product(changeDetail(3, a, f.NameA, fd, f.NameFeed)), true
	case m.InBOnly && !blank(s) && !blank(a) && s != a:
		return product(changeDetail(4, a, f.NameA, s, f.NameB)), true
	}
	return core.NoReason, false
}

func product(detail string) core.Reason {
	return core.Reason{Category: CategoryProductChange, Detail: detail}
}
