package rules

import (
	"github.com/leapstack-labs/trialrecon/pkg/core"
	"github.com/leapstack-labs/trialrecon/pkg/normalize"
	"github.com/leapstack-labs/trialrecon/pkg/reason"
	"github.com/leapstack-labs/trialrecon/pkg/reconcile"
)

func init() {
	reason.Register(TerritoryChange)
}

// TerritoryChange flags tenants whose normalized region differs between sources.
var TerritoryChange = reason.RuleDef{
	ID:          "RC01",
	Name:        "territory.change",
	Category:    CategoryTerritoryChange,
	Priority:    10,
	Description: "Region differs between A, B or the feed.",
	Check:       checkTerritoryChange,
}

func checkTerritoryChange(in *reason.Input) (core.Reason, bool) {
	f := in.Fields
	m := in.Membership

	a, aok := reconcile.MappedAttribute(in.A, f.RegionA, normalize.Region)
	s, sok := reconcile.MappedAttribute(in.B, f.RegionB, normalize.Region)
	fd, fok := reconcile.MappedAttribute(in.Feed, f.RegionFeed, normalize.Region)

	switch {
	case m.InBoth && sok && !blank(a) && a != s:
		return territory(changeDetail(1, a, f.NameA, s, f.NameB)), true
	case m.InAOnly && sok && aok && a != s:
		return territory(changeDetail(2, a, f.NameA, s, f.NameB)), true
	case m.InAOnly && fok && aok && a != fd:
		return territory(changeDetail(3, a, f.NameA, fd, f.NameFeed)), true
	case m.InBOnly && sok && aok && a != s:
		return territory(changeDetail(4, a, f.NameA, s, f.NameB)), true
	}
	return core.NoReason, false
}

func territory(detail string) core.Reason {
	return core.Reason{Category: CategoryTerritoryChange, Detail: detail}
}
