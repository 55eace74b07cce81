package rules

import (
	"fmt"
	"strings"
)

// Reason categories produced by the built-in rules.
const (
	CategoryTerritoryChange  = "Territory Change"
	CategoryProductChange    = "Product Change"
	CategoryNotInFeed        = "Not in SFDC Feed"
	CategoryEmployeeTesting  = "Employee Testing"
	CategoryMultipleEntry    = "Multiple entry in SFDC"
	CategoryTimingIssue      = "Timing Issue"
	CategoryExcluded         = "Excluded from SFDC"
	CategoryNoTrialStartDate = "No Trial Start Date"
)

func blank(s string) bool {
	return strings.TrimSpace(s) == ""
}

// changeDetail renders "<n>:<a> in <nameA>, <other> in <nameOther>".
func changeDetail(n int, a, nameA, other, nameOther string) string {
	return fmt.Sprintf("%d:%s in %s, %s in %s", n, a, nameA, other, nameOther)
}
