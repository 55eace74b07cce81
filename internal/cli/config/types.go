// Package config provides configuration management for the trialrecon CLI.
//
// This package layers CLI concerns (flags, env vars, config file discovery)
// on top of the shared comparison types in internal/config. The shared types
// are re-exported here via type aliases for convenience.
package config

import (
	sharedcfg "github.com/leapstack-labs/trialrecon/internal/config"
	"github.com/leapstack-labs/trialrecon/pkg/reason"
)

// Comparison is an alias for the shared comparison configuration.
type Comparison = sharedcfg.Comparison

// Sources is an alias for the shared source settings.
type Sources = sharedcfg.Sources

// Source is an alias for the settings of one source.
type Source = sharedcfg.Source

// Config holds all CLI configuration options.
type Config struct {
	DataDir      string `koanf:"data_dir" yaml:"data_dir"`
	OutputDir    string `koanf:"output_dir" yaml:"output_dir"`
	StatePath    string `koanf:"state_path" yaml:"state_path"`
	StartDate    string `koanf:"start_date" yaml:"start_date,omitempty"` // 2006-01-02; defaults to the month start
	EndDate      string `koanf:"end_date" yaml:"end_date,omitempty"`     // 2006-01-02; defaults to yesterday
	Verbose      bool   `koanf:"verbose" yaml:"verbose"`
	OutputFormat string `koanf:"output" yaml:"output"`

	// DropEmptyKeys removes records with a blank tenant id before grouping.
	DropEmptyKeys bool `koanf:"drop_empty_keys" yaml:"drop_empty_keys"`
	// IncludeFilteredSheets adds hidden sheets with the filtered inputs to
	// the workbook.
	IncludeFilteredSheets bool `koanf:"include_filtered_sheets" yaml:"include_filtered_sheets"`

	Sources Sources       `koanf:"sources" yaml:"sources"`
	Reasons reason.Fields `koanf:"reasons" yaml:"reasons"`

	// BTenantColumns maps B's product labels to the column holding the tenant
	// id, for B's unfiltered export.
	BTenantColumns map[string]string `koanf:"b_tenant_columns" yaml:"b_tenant_columns"`
	// BProductColumn is the column BTenantColumns is keyed on.
	BProductColumn string `koanf:"b_product_column" yaml:"b_product_column"`

	Comparisons     []Comparison `koanf:"comparisons" yaml:"comparisons"`
	ComparisonFiles []string     `koanf:"comparison_files" yaml:"comparison_files,omitempty"`

	// ProjectRoot is the directory relative paths resolve against.
	ProjectRoot string `koanf:"-" yaml:"-"`
}

// Default configuration values - uses shared defaults from internal/config
const (
	DefaultDataDir   = sharedcfg.DefaultDataDir
	DefaultOutputDir = sharedcfg.DefaultOutputDir
	DefaultStateFile = ".trialrecon/state.db"
	DefaultOutput    = "auto" // Auto-detect: TTY=text, non-TTY=markdown
)

// Products returns the product codes of the configured comparisons in order.
func (c *Config) Products() []string {
	out := make([]string, 0, len(c.Comparisons))
	for _, cmp := range c.Comparisons {
		out = append(out, cmp.Product)
	}
	return out
}
