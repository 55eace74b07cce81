package rules

import (
	"github.com/leapstack-labs/trialrecon/pkg/core"
	"github.com/leapstack-labs/trialrecon/pkg/reason"
	"github.com/leapstack-labs/trialrecon/pkg/reconcile"
)

func init() {
	reason.Register(CustomerTrial)
}

// CustomerTrial explains trials the feed sources from existing customers.
var CustomerTrial = reason.RuleDef{
	ID:          "RC07",
	Name:        "exclusion.customer_trial",
	Category:    CategoryExcluded,
	Priority:    70,
	Description: "Feed source marks the trial as a customer trial.",
	Check:       checkCustomerTrial,
}

func checkCustomerTrial(in *reason.Input) (core.Reason, bool) {
	v, ok := reconcile.Attribute(in.Feed, in.Fields.SourceFeed)
	if !ok || v != in.Fields.CustomerTrial {
		return core.NoReason, false
	}
	return core.Reason{Category: CategoryExcluded, Detail: "Source is " + v}, true
}
