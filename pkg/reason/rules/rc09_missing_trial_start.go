package rules

import (
	"github.com/leapstack-labs/trialrecon/pkg/core"
	"github.com/leapstack-labs/trialrecon/pkg/reason"
	"github.com/leapstack-labs/trialrecon/pkg/reconcile"
)

func init() {
	reason.Register(MissingTrialStart)
}

// MissingTrialStart explains tenants with no trial start date anywhere in B.
var MissingTrialStart = reason.RuleDef{
	ID:          "RC09",
	Name:        "timing.missing_trial_start",
	Category:    CategoryNoTrialStartDate,
	Priority:    90,
	Description: "Neither B nor the feed carries a trial start date.",
	Check:       checkMissingTrialStart,
}

func checkMissingTrialStart(in *reason.Input) (core.Reason, bool) {
	if len(reconcile.Values(in.B, in.Fields.TrialStartB)) > 0 {
		return core.NoReason, false
	}
	if v, _ := reconcile.Attribute(in.Feed, in.Fields.TrialStartFeed); !blank(v) {
		return core.NoReason, false
	}
	return core.Reason{Category: CategoryNoTrialStartDate}, true
}
