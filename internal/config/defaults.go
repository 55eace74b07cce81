package config

import "github.com/leapstack-labs/trialrecon/pkg/reconcile"

// Default configuration values.
const (
	DefaultDataDir   = "target/data"
	DefaultOutputDir = "target/output"

	DefaultNameA    = "Amarillo"
	DefaultNameB    = "SFDC"
	DefaultNameFeed = "SFDC Feed"

	DefaultPatternA    = "amarillo_*.csv"
	DefaultPatternB    = "sfdc_*.csv"
	DefaultPatternFeed = "feed_*.csv"

	// DefaultBProductColumn holds the product label used to pick the key
	// column of B's unfiltered export.
	DefaultBProductColumn = "Core Product"
)

// DefaultSources returns the source settings used when none are configured.
func DefaultSources() Sources {
	return Sources{
		A:    Source{Name: DefaultNameA, Pattern: DefaultPatternA},
		B:    Source{Name: DefaultNameB, Pattern: DefaultPatternB},
		Feed: Source{Name: DefaultNameFeed, Pattern: DefaultPatternFeed, FixQuotes: true},
	}
}

// DefaultBTenantColumns maps B's product labels to the column holding the
// tenant id for that product.
func DefaultBTenantColumns() map[string]string {
	return map[string]string{
		"1 - RM":                  "Tenant MAXRM",
		"3 - Backup":              "Tenant MAXBU",
		"4 - MAX Mail":            "Tenant MAXML",
		"5 - MAX Mail IT":         "Tenant MAXML",
		"6 - ControlNow / MAX IT": "Tenant MAXRM",
		"LN - MAX Backup IT":      "Tenant MAXBU",
		"LN - MAXRI":              "Tenant MAXRI",
	}
}

// ApplyDefaults fills unset fields of a comparison.
func ApplyDefaults(c *Comparison) {
	if c == nil {
		return
	}
	if c.Product == "" {
		c.Product = c.Left.ShortProduct
	}
	if c.Left.ValidValue == "" {
		c.Left.ValidValue = reconcile.DefaultTruthy
	}
	if c.Right.ValidValue == "" {
		c.Right.ValidValue = reconcile.DefaultTruthy
	}
}

// ApplySourceDefaults fills unset source names and patterns.
func ApplySourceDefaults(s *Sources) {
	if s == nil {
		return
	}
	d := DefaultSources()
	fill := func(dst *Source, def Source) {
		if dst.Name == "" {
			dst.Name = def.Name
		}
		if dst.Pattern == "" && dst.File == "" {
			dst.Pattern = def.Pattern
		}
	}
	fill(&s.A, d.A)
	fill(&s.B, d.B)
	fill(&s.Feed, d.Feed)
}
