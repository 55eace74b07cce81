package rules

import (
	"github.com/leapstack-labs/trialrecon/pkg/core"
	"github.com/leapstack-labs/trialrecon/pkg/reason"
	"github.com/leapstack-labs/trialrecon/pkg/reconcile"
)

func init() {
	reason.Register(ReusedTenant)
}

// ReusedTenant explains A-only tenants the feed never reported, typically
// tenant ids that were recycled in A.
var ReusedTenant = reason.RuleDef{
	ID:          "RC03",
	Name:        "tenant.reused",
	Category:    CategoryNotInFeed,
	Priority:    30,
	Description: "Tenant is only in A and the feed has no tenant id for it.",
	Check:       checkReusedTenant,
}

func checkReusedTenant(in *reason.Input) (core.Reason, bool) {
	if !in.Membership.InAOnly {
		return core.NoReason, false
	}
	if len(reconcile.Values(in.Feed, in.Fields.TenantFeed)) > 0 {
		return core.NoReason, false
	}
	return core.Reason{Category: CategoryNotInFeed, Detail: "Validity not read from " + in.Fields.NameB}, true
}
