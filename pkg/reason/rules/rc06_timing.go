package rules

import (
	"github.com/leapstack-labs/trialrecon/pkg/core"
	"github.com/leapstack-labs/trialrecon/pkg/reason"
	"github.com/leapstack-labs/trialrecon/pkg/reconcile"
)

func init() {
	reason.Register(TimingIssue)
}

// TimingIssue explains trials whose feed start date lies outside the run range.
var TimingIssue = reason.RuleDef{
	ID:          "RC06",
	Name:        "timing.trial_start",
	Category:    CategoryTimingIssue,
	Priority:    60,
	Description: "Feed trial start date is outside the reporting range.",
	Check:       checkTimingIssue,
}

func checkTimingIssue(in *reason.Input) (core.Reason, bool) {
	v, ok := reconcile.Attribute(in.Feed, in.Fields.TrialStartFeed)
	if !ok || v == reconcile.Multiple {
		return core.NoReason, false
	}
	start, err := core.ParseDate(v)
	if err != nil {
		return core.NoReason, false
	}
	if in.Range.Contains(start) {
		return core.NoReason, false
	}
	return core.Reason{Category: CategoryTimingIssue, Detail: "Trial Start out of Range in " + in.Fields.NameB}, true
}
