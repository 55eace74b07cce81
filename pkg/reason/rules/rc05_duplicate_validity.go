package rules

import (
	"github.com/leapstack-labs/trialrecon/pkg/core"
	"github.com/leapstack-labs/trialrecon/pkg/reason"
	"github.com/leapstack-labs/trialrecon/pkg/reconcile"
)

func init() {
	reason.Register(DuplicateValidity)
}

// DuplicateValidity explains tenants B lists more than once with
// disagreeing validity.
var DuplicateValidity = reason.RuleDef{
	ID:          "RC05",
	Name:        "duplicates.validity",
	Category:    CategoryMultipleEntry,
	Priority:    50,
	Description: "B holds duplicate rows for the tenant with different validity.",
	Check:       checkDuplicateValidity,
}

func checkDuplicateValidity(in *reason.Input) (core.Reason, bool) {
	if !in.DuplicateInB {
		return core.NoReason, false
	}
	if v, _ := reconcile.Attribute(in.B, in.Fields.ValidityB); v != reconcile.Multiple {
		return core.NoReason, false
	}
	return core.Reason{Category: CategoryMultipleEntry, Detail: "Different validity values"}, true
}
