// Package reason explains reconciliation discrepancies with an ordered chain
// of rules.
//
// Rules are plain values registered from init functions in the rules
// subpackage. The chain evaluates them by ascending Priority and returns the
// first reason produced, so the evaluation order can be inspected and
// reordered without touching rule code.
package reason

import (
	"github.com/leapstack-labs/trialrecon/pkg/core"
	"github.com/leapstack-labs/trialrecon/pkg/reconcile"
)

// Fields names the columns and sentinel values rules read from the
// auxiliary sources, plus the display names used in reason details.
type Fields struct {
	NameA    string `koanf:"name_a" yaml:"name_a"`
	NameB    string `koanf:"name_b" yaml:"name_b"`
	NameFeed string `koanf:"name_feed" yaml:"name_feed"`

	RegionA    string `koanf:"region_a" yaml:"region_a"`
	RegionB    string `koanf:"region_b" yaml:"region_b"`
	RegionFeed string `koanf:"region_feed" yaml:"region_feed"`

	ProductA    string `koanf:"product_a" yaml:"product_a"`
	ProductB    string `koanf:"product_b" yaml:"product_b"`
	ProductFeed string `koanf:"product_feed" yaml:"product_feed"`

	TenantFeed string `koanf:"tenant_feed" yaml:"tenant_feed"`

	AttributionA    string `koanf:"attribution_a" yaml:"attribution_a"`
	EmployeeTesting string `koanf:"employee_testing" yaml:"employee_testing"`

	ValidityB string `koanf:"validity_b" yaml:"validity_b"`

	TrialStartB    string `koanf:"trial_start_b" yaml:"trial_start_b"`
	TrialStartFeed string `koanf:"trial_start_feed" yaml:"trial_start_feed"`

	SourceFeed          string `koanf:"source_feed" yaml:"source_feed"`
	CustomerTrial       string `koanf:"customer_trial" yaml:"customer_trial"`
	OpportunityTypeFeed string `koanf:"opportunity_type_feed" yaml:"opportunity_type_feed"`
}

// DefaultFields returns the column names used by the standard exports.
func DefaultFields() Fields {
	return Fields{
		NameA:               "Amarillo",
		NameB:               "SFDC",
		NameFeed:            "SFDC Feed",
		RegionA:             "Marketing Territory",
		RegionB:             "Group",
		RegionFeed:          "Sub-Region",
		ProductA:            "Fixed Product",
		ProductB:            "Core Product",
		ProductFeed:         "Product",
		TenantFeed:          "TenantID",
		AttributionA:        "LN Attribution Group",
		EmployeeTesting:     "Employee Testing",
		ValidityB:           "Is Valid",
		TrialStartB:         "Trial Start",
		TrialStartFeed:      "Trial_Start",
		SourceFeed:          "Source",
		CustomerTrial:       "Customer Trial",
		OpportunityTypeFeed: "OpportunityType",
	}
}

// Input is everything a rule may consult about one discrepant tenant id.
type Input struct {
	TenantID   string
	Membership reconcile.Membership

	// All-records groups for the id; any may be empty.
	A    []*core.Record
	B    []*core.Record
	Feed []*core.Record

	DuplicateInB bool
	Range        core.DateRange
	Fields       Fields
}

// Empty reports whether no auxiliary source has records for the id.
func (in *Input) Empty() bool {
	return len(in.A) == 0 && len(in.B) == 0 && len(in.Feed) == 0
}

// CheckFunc inspects an input and returns a reason when the rule applies.
type CheckFunc func(in *Input) (core.Reason, bool)

// RuleDef describes one rule of the chain.
type RuleDef struct {
	ID          string
	Name        string
	Category    string
	Priority    int
	Description string
	Check       CheckFunc
}
