package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/leapstack-labs/trialrecon/pkg/core"
)

// ErrNoComparisons is returned when no product comparison is configured.
var ErrNoComparisons = errors.New("no comparisons configured")

var validOutputs = map[string]bool{"": true, "auto": true, "text": true, "markdown": true, "json": true}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if c.DataDir == "" {
		return fmt.Errorf("data_dir is required")
	}
	if !validOutputs[c.OutputFormat] {
		return fmt.Errorf("invalid output format %q (expected auto, text, markdown or json)", c.OutputFormat)
	}
	if _, err := c.DateRange(); err != nil {
		return err
	}
	if len(c.Comparisons) == 0 {
		return fmt.Errorf("%w\nHint: add a comparisons list or comparison_files to trialrecon.yaml", ErrNoComparisons)
	}

	seen := make(map[string]bool, len(c.Comparisons))
	for i := range c.Comparisons {
		cmp := &c.Comparisons[i]
		if err := cmp.Validate(); err != nil {
			return fmt.Errorf("comparison %d: %w", i+1, err)
		}
		if seen[cmp.Product] {
			return fmt.Errorf("duplicate comparison for product %s", cmp.Product)
		}
		seen[cmp.Product] = true
	}
	return nil
}

// DateRange returns the configured reporting range. Unset bounds default to
// the first of yesterday's month and yesterday.
func (c *Config) DateRange() (core.DateRange, error) {
	def := core.DefaultDateRange(time.Now())
	start, end := def.StartString(), def.EndString()
	if c.StartDate != "" {
		start = c.StartDate
	}
	if c.EndDate != "" {
		end = c.EndDate
	}
	dr, err := core.NewDateRange(start, end)
	if err != nil {
		return core.DateRange{}, fmt.Errorf("invalid date range: %w", err)
	}
	return dr, nil
}

// ValidateDirectories checks if required directories exist.
func (c *Config) ValidateDirectories() error {
	if _, err := os.Stat(c.DataDir); os.IsNotExist(err) {
		return fmt.Errorf("data directory does not exist: %s\nHint: Create the directory or use --data-dir to specify a different path", c.DataDir)
	}
	return nil
}
