// Package config provides the comparison configuration shared by the engine
// and the CLI. A comparison pairs the A-side and B-side settings for one
// product: key columns, validity column, column selection and row filters.
package config

import (
	"github.com/leapstack-labs/trialrecon/internal/loader"
)

// Filters holds the include and exclude rules of one side.
type Filters struct {
	Include []loader.FilterRule `koanf:"include" yaml:"include,omitempty" json:"include,omitempty"`
	Exclude []loader.FilterRule `koanf:"exclude" yaml:"exclude,omitempty" json:"exclude,omitempty"`
}

// Side describes how one source is read for a comparison.
type Side struct {
	ID     string `koanf:"id" yaml:"id" json:"id"`             // record identifier column
	Tenant string `koanf:"tenant" yaml:"tenant" json:"tenant"` // tenant id column
	// Product is the column holding the product label.
	Product string `koanf:"product" yaml:"product,omitempty" json:"product,omitempty"`
	// ShortProduct is the canonical product code (RM, BU, MM, ...).
	ShortProduct string `koanf:"shortProduct" yaml:"shortProduct,omitempty" json:"shortProduct,omitempty"`
	Valid        string `koanf:"valid" yaml:"valid" json:"valid"` // validity flag column
	// ValidValue is the truthy sentinel for Valid. Defaults to "1".
	ValidValue string `koanf:"valid_value" yaml:"valid_value,omitempty" json:"valid_value,omitempty"`

	Cols     []string          `koanf:"cols" yaml:"cols,omitempty" json:"cols,omitempty"`
	ColTypes map[string]string `koanf:"coltypes" yaml:"coltypes,omitempty" json:"coltypes,omitempty"`
	Filters  Filters           `koanf:"filters" yaml:"filters,omitempty" json:"filters,omitempty"`
}

// RowFilter returns the include and exclude rules of this side. Filtering
// keeps every column so key and validity columns stay readable.
func (s *Side) RowFilter() loader.Selection {
	return loader.Selection{
		Include: s.Filters.Include,
		Exclude: s.Filters.Exclude,
	}
}

// Projection returns the columns shown for this side's filtered records.
func (s *Side) Projection() loader.Selection {
	return loader.Selection{Columns: s.Cols}
}

// Comparison is the configuration of one product's reconciliation.
type Comparison struct {
	// Product code. Falls back to Left.ShortProduct when empty.
	Product string `koanf:"product" yaml:"product,omitempty" json:"product,omitempty"`
	Left    Side   `koanf:"left" yaml:"left" json:"left"`
	Right   Side   `koanf:"right" yaml:"right" json:"right"`
}

// Source locates the export of one data source.
type Source struct {
	Name    string `koanf:"name" yaml:"name"`
	File    string `koanf:"file" yaml:"file,omitempty"`
	Pattern string `koanf:"pattern" yaml:"pattern,omitempty"`
	// FixQuotes rewrites backslash-escaped quotes before parsing.
	FixQuotes bool `koanf:"fix_quotes" yaml:"fix_quotes,omitempty"`
}

// Sources groups the three inputs of a run.
type Sources struct {
	A    Source `koanf:"a" yaml:"a"`
	B    Source `koanf:"b" yaml:"b"`
	Feed Source `koanf:"feed" yaml:"feed"`
}

// Column types understood by the filtered sheet writer.
const (
	ColTypeInteger = "integer"
	ColTypeStrip   = "strip"
)
