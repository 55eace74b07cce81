package rules

import (
	"github.com/leapstack-labs/trialrecon/pkg/core"
	"github.com/leapstack-labs/trialrecon/pkg/reason"
	"github.com/leapstack-labs/trialrecon/pkg/reconcile"
)

func init() {
	reason.Register(EmployeeTesting)
}

// EmployeeTesting explains trials A attributes to internal testing.
var EmployeeTesting = reason.RuleDef{
	ID:          "RC04",
	Name:        "attribution.employee_testing",
	Category:    CategoryEmployeeTesting,
	Priority:    40,
	Description: "A attributes the trial to employee testing.",
	Check:       checkEmployeeTesting,
}

func checkEmployeeTesting(in *reason.Input) (core.Reason, bool) {
	v, ok := reconcile.Attribute(in.A, in.Fields.AttributionA)
	if !ok || v != in.Fields.EmployeeTesting {
		return core.NoReason, false
	}
	return core.Reason{Category: CategoryEmployeeTesting, Detail: in.Fields.NameA + " identifies as Test Trial"}, true
}
