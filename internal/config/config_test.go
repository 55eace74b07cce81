package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leapstack-labs/trialrecon/internal/loader"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

const jsonComparison = `{
  "left": {
    "id": "Identifier",
    "tenant": "Tenant",
    "product": "Product",
    "shortProduct": "RM",
    "valid": "Is Valid",
    "cols": ["Identifier", "Tenant", "Is Valid"],
    "coltypes": {"Identifier": "strip", "Is Valid": "integer"},
    "filters": {
      "include": [["Product", "startsWith", "RM"], ["Created", ">=", "$START_DATE"]],
      "exclude": [["Tenant", "=", "test"]]
    }
  },
  "right": {
    "id": "Lead ID",
    "tenant": "Tenant MAXRM",
    "product": "Core Product",
    "valid": "Is Valid",
    "valid_value": "true"
  }
}`

func TestLoadComparisonFile_JSON(t *testing.T) {
	c, err := LoadComparisonFile(writeFile(t, "config_RM.json", jsonComparison))
	require.NoError(t, err)

	assert.Equal(t, "RM", c.Product)
	assert.Equal(t, "Tenant", c.Left.Tenant)
	assert.Equal(t, []string{"Identifier", "Tenant", "Is Valid"}, c.Left.Cols)
	assert.Equal(t, map[string]string{"Identifier": "strip", "Is Valid": "integer"}, c.Left.ColTypes)
	assert.Equal(t, []loader.FilterRule{
		{Column: "Product", Operator: "startsWith", Value: "RM"},
		{Column: "Created", Operator: ">=", Value: "$START_DATE"},
	}, c.Left.Filters.Include)
	assert.Equal(t, []loader.FilterRule{{Column: "Tenant", Operator: "=", Value: "test"}}, c.Left.Filters.Exclude)

	assert.Equal(t, "1", c.Left.ValidValue)
	assert.Equal(t, "true", c.Right.ValidValue)
	assert.Empty(t, c.Right.Filters.Include)

	filter := c.Left.RowFilter()
	assert.Empty(t, filter.Columns)
	assert.Len(t, filter.Include, 2)
	assert.Len(t, filter.Exclude, 1)
	assert.Equal(t, c.Left.Cols, c.Left.Projection().Columns)
	assert.Empty(t, c.Left.Projection().Include)
}

func TestLoadComparisonFile_YAMLObjectFilters(t *testing.T) {
	path := writeFile(t, "bu.yaml", `
product: BU
left:
  id: Identifier
  tenant: Tenant
  product: Product
  valid: Valid
  filters:
    include:
      - column: Product
        operator: "="
        value: Backup
right:
  id: Lead ID
  tenant: Tenant MAXBU
  product: Core Product
  valid: Is Valid
`)
	c, err := LoadComparisonFile(path)
	require.NoError(t, err)
	assert.Equal(t, "BU", c.Product)
	assert.Equal(t, []loader.FilterRule{{Column: "Product", Operator: "=", Value: "Backup"}}, c.Left.Filters.Include)
}

func TestLoadComparisonFile_Errors(t *testing.T) {
	tests := []struct {
		name    string
		content string
		errIs   error
		substr  string
	}{
		{
			name:    "missing product",
			content: `{"left": {"id": "i", "tenant": "t", "product": "p", "valid": "v"}, "right": {"id": "i", "tenant": "t", "product": "p", "valid": "v"}}`,
			errIs:   ErrMissingField,
			substr:  "product",
		},
		{
			name:    "missing left id",
			content: `{"left": {"shortProduct": "RM", "tenant": "t", "product": "p", "valid": "v"}, "right": {"id": "i", "tenant": "t", "product": "p", "valid": "v"}}`,
			errIs:   ErrMissingField,
			substr:  "left.id",
		},
		{
			name:    "missing left product",
			content: `{"left": {"shortProduct": "RM", "id": "i", "tenant": "t", "valid": "v"}, "right": {"id": "i", "tenant": "t", "product": "p", "valid": "v"}}`,
			errIs:   ErrMissingField,
			substr:  "left.product",
		},
		{
			name:    "missing right id",
			content: `{"left": {"shortProduct": "RM", "id": "i", "tenant": "t", "product": "p", "valid": "v"}, "right": {"tenant": "t", "product": "p", "valid": "v"}}`,
			errIs:   ErrMissingField,
			substr:  "right.id",
		},
		{
			name:    "missing right product",
			content: `{"left": {"shortProduct": "RM", "id": "i", "tenant": "t", "product": "p", "valid": "v"}, "right": {"id": "i", "tenant": "t", "valid": "v"}}`,
			errIs:   ErrMissingField,
			substr:  "right.product",
		},
		{
			name:    "missing right tenant",
			content: `{"left": {"shortProduct": "RM", "id": "i", "tenant": "t", "product": "p", "valid": "v"}, "right": {"id": "i", "product": "p", "valid": "v"}}`,
			errIs:   ErrMissingField,
			substr:  "right.tenant",
		},
		{
			name:    "bad operator",
			content: `{"left": {"shortProduct": "RM", "id": "i", "tenant": "t", "product": "p", "valid": "v", "filters": {"include": [["a", "~", "b"]]}}, "right": {"id": "i", "tenant": "t", "product": "p", "valid": "v"}}`,
			errIs:   loader.ErrUnsupportedOperator,
		},
		{
			name:    "short filter tuple",
			content: `{"left": {"shortProduct": "RM", "id": "i", "tenant": "t", "product": "p", "valid": "v", "filters": {"include": [["a", "="]]}}, "right": {"id": "i", "tenant": "t", "product": "p", "valid": "v"}}`,
			substr:  "3 elements",
		},
		{
			name:    "unknown column type",
			content: `{"left": {"shortProduct": "RM", "id": "i", "tenant": "t", "product": "p", "valid": "v", "coltypes": {"a": "date"}}, "right": {"id": "i", "tenant": "t", "product": "p", "valid": "v"}}`,
			substr:  "unknown type",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadComparisonFile(writeFile(t, "c.json", tt.content))
			require.Error(t, err)
			if tt.errIs != nil {
				assert.ErrorIs(t, err, tt.errIs)
			}
			if tt.substr != "" {
				assert.Contains(t, err.Error(), tt.substr)
			}
		})
	}

	_, err := LoadComparisonFile(filepath.Join(t.TempDir(), "missing.json"))
	assert.Error(t, err)
}

func TestComparison_ValidateRequiresKeyColumns(t *testing.T) {
	full := func() Comparison {
		return Comparison{
			Product: "RM",
			Left:    Side{ID: "Identifier", Tenant: "Tenant", Product: "Fixed Product", Valid: "Is Valid"},
			Right:   Side{ID: "Lead ID", Tenant: "Tenant MAXRM", Product: "Core Product", Valid: "Is Valid"},
		}
	}
	c := full()
	require.NoError(t, c.Validate())

	tests := []struct {
		name   string
		mutate func(*Comparison)
		want   string
	}{
		{"left id", func(c *Comparison) { c.Left.ID = "" }, "left.id"},
		{"left tenant", func(c *Comparison) { c.Left.Tenant = "" }, "left.tenant"},
		{"left product", func(c *Comparison) { c.Left.Product = "" }, "left.product"},
		{"left valid", func(c *Comparison) { c.Left.Valid = "" }, "left.valid"},
		{"right id", func(c *Comparison) { c.Right.ID = "" }, "right.id"},
		{"right product", func(c *Comparison) { c.Right.Product = "" }, "right.product"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := full()
			tt.mutate(&c)
			err := c.Validate()
			require.ErrorIs(t, err, ErrMissingField)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestApplySourceDefaults(t *testing.T) {
	s := Sources{A: Source{Name: "Portal"}, B: Source{File: "b.csv"}}
	ApplySourceDefaults(&s)

	assert.Equal(t, "Portal", s.A.Name)
	assert.Equal(t, DefaultPatternA, s.A.Pattern)
	assert.Equal(t, DefaultNameB, s.B.Name)
	assert.Empty(t, s.B.Pattern, "explicit file needs no pattern")
	assert.Equal(t, DefaultNameFeed, s.Feed.Name)
	assert.Equal(t, DefaultPatternFeed, s.Feed.Pattern)

	ApplySourceDefaults(nil)
}

func TestDefaultBTenantColumns(t *testing.T) {
	cols := DefaultBTenantColumns()
	assert.Equal(t, "Tenant MAXRM", cols["1 - RM"])
	assert.Equal(t, "Tenant MAXML", cols["5 - MAX Mail IT"])
	assert.Len(t, cols, 7)
}
