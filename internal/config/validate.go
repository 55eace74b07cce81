package config

import (
	"errors"
	"fmt"

	"github.com/leapstack-labs/trialrecon/internal/loader"
)

// ErrMissingField is returned when a required configuration field is empty.
var ErrMissingField = errors.New("missing required field")

// Validate checks that the comparison names every required column and uses
// only known filter operators.
func (c *Comparison) Validate() error {
	if c.Product == "" && c.Left.ShortProduct == "" {
		return fmt.Errorf("%w: product", ErrMissingField)
	}
	if err := c.Left.validate("left"); err != nil {
		return err
	}
	return c.Right.validate("right")
}

func (s *Side) validate(name string) error {
	required := []struct{ key, value string }{
		{"id", s.ID},
		{"tenant", s.Tenant},
		{"product", s.Product},
		{"valid", s.Valid},
	}
	for _, f := range required {
		if f.value == "" {
			return fmt.Errorf("%w: %s.%s", ErrMissingField, name, f.key)
		}
	}
	for _, rules := range [][]loader.FilterRule{s.Filters.Include, s.Filters.Exclude} {
		for _, f := range rules {
			if f.Column == "" {
				return fmt.Errorf("%w: %s filter column in %s", ErrMissingField, name, f)
			}
			if err := loader.ValidateOperator(f.Operator); err != nil {
				return fmt.Errorf("%s filter %s: %w", name, f, err)
			}
		}
	}
	for col, typ := range s.ColTypes {
		if typ != ColTypeInteger && typ != ColTypeStrip {
			return fmt.Errorf("%s coltypes: unknown type %q for column %q", name, typ, col)
		}
	}
	return nil
}
