package rules

import (
	"strings"

	"github.com/leapstack-labs/trialrecon/pkg/core"
	"github.com/leapstack-labs/trialrecon/pkg/reason"
	"github.com/leapstack-labs/trialrecon/pkg/reconcile"
)

func init() {
	reason.Register(OpportunityType)
}

// excludedOpportunityTypes are matched case-insensitively as substrings.
var excludedOpportunityTypes = []string{"renewal", "migration", "customer"}

// OpportunityType explains trials attached to renewal, migration or existing
// customer opportunities.
var OpportunityType = reason.RuleDef{
	ID:          "RC08",
	Name:        "exclusion.opportunity_type",
	Category:    CategoryExcluded,
	Priority:    80,
	Description: "Feed opportunity type is excluded from trial reporting.",
	Check:       checkOpportunityType,
}

func checkOpportunityType(in *reason.Input) (core.Reason, bool) {
	v, ok := reconcile.Attribute(in.Feed, in.Fields.OpportunityTypeFeed)
	if !ok {
		return core.NoReason, false
	}
	lower := strings.ToLower(v)
	for _, word := range excludedOpportunityTypes {
		if strings.Contains(lower, word) {
			return core.Reason{Category: CategoryExcluded, Detail: "Type " + v}, true
		}
	}
	return core.NoReason, false
}
