// Package testutil provides test utilities for CLI testing.
package testutil

import (
	"bytes"
	"path/filepath"
	"regexp"
	"strings"
	"testing"

	"github.com/leapstack-labs/trialrecon/internal/cli/config"
	"github.com/leapstack-labs/trialrecon/internal/cli/output"
	fixtures "github.com/leapstack-labs/trialrecon/internal/testutil"
)

// ProjectConfig is the trialrecon.yaml written by SetupTestProject. Its
// comparisons match internal/testutil.SampleComparisons.
const ProjectConfig = `data_dir: data
output_dir: out
state_path: .trialrecon/state.db
start_date: "2016-05-01"
end_date: "2016-05-31"

comparisons:
  - product: RM
    left:
      id: Lead ID
      tenant: Tenant ID
      product: Fixed Product
      valid: Is Valid
      cols: [Lead ID, Generated Tenant, Is Valid]
      filters:
        include:
          - [Fixed Product, "=", "1 - RM"]
        exclude:
          - [Created, "<", $START_DATE]
    right:
      id: Lead ID
      tenant: Tenant MAXRM
      product: Core Product
      valid: Is Valid
      cols: [Lead ID, Tenant MAXRM, Is Valid]
      coltypes:
        Is Valid: integer
      filters:
        include:
          - [Core Product, "=", "1 - RM"]
  - product: BU
    left:
      id: Lead ID
      tenant: Tenant ID
      product: Fixed Product
      valid: Is Valid
      cols: [Lead ID, Generated Tenant, Is Valid]
      filters:
        include:
          - [Fixed Product, "=", "3 - Backup"]
        exclude:
          - [Created, "<", $START_DATE]
    right:
      id: Lead ID
      tenant: Tenant MAXBU
      product: Core Product
      valid: Is Valid
      cols: [Lead ID, Tenant MAXBU, Is Valid]
      coltypes:
        Is Valid: integer
      filters:
        include:
          - [Core Product, "=", "3 - Backup"]
`

// SetupTestProject creates a temporary project: the sample exports under
// data/ and a trialrecon.yaml next to it. Returns the project directory.
func SetupTestProject(t *testing.T) string {
	t.Helper()

	tmpDir := t.TempDir()
	fixtures.WriteSampleExports(t, filepath.Join(tmpDir, "data"))
	fixtures.WriteFile(t, tmpDir, "trialrecon.yaml", ProjectConfig)

	return tmpDir
}

// LoadProjectConfig loads the config of a project created by
// SetupTestProject and makes it the current config.
func LoadProjectConfig(t *testing.T, dir string) *config.Config {
	t.Helper()

	config.ResetConfig()
	t.Cleanup(config.ResetConfig)

	cfg, err := config.LoadConfig(filepath.Join(dir, "trialrecon.yaml"), nil)
	if err != nil {
		t.Fatalf("failed to load project config: %v", err)
	}
	return cfg
}

// TestRenderer wraps a Renderer for testing with captured output buffers.
type TestRenderer struct {
	*output.Renderer
	Out    *bytes.Buffer
	ErrOut *bytes.Buffer
}

// NewTestRenderer creates a new test renderer with the specified mode and TTY state.
// Output is captured in buffers for inspection.
func NewTestRenderer(mode output.OutputMode, isTTY bool) *TestRenderer {
	out := &bytes.Buffer{}
	errOut := &bytes.Buffer{}
	return &TestRenderer{
		Renderer: output.NewRendererWithTTY(out, errOut, isTTY, mode),
		Out:      out,
		ErrOut:   errOut,
	}
}

// NewTestRendererAuto creates a new test renderer with auto mode detection.
// In tests, non-TTY defaults to markdown output.
func NewTestRendererAuto() *TestRenderer {
	return NewTestRenderer(output.ModeAuto, false)
}

// NewTestRendererText creates a new test renderer in text mode (simulated TTY).
func NewTestRendererText() *TestRenderer {
	return NewTestRenderer(output.ModeText, true)
}

// NewTestRendererMarkdown creates a new test renderer in markdown mode.
func NewTestRendererMarkdown() *TestRenderer {
	return NewTestRenderer(output.ModeMarkdown, false)
}

// NewTestRendererJSON creates a new test renderer in JSON mode.
func NewTestRendererJSON() *TestRenderer {
	return NewTestRenderer(output.ModeJSON, false)
}

// Output returns the combined stdout output as a string.
func (tr *TestRenderer) Output() string {
	return tr.Out.String()
}

// ErrorOutput returns the stderr output as a string.
func (tr *TestRenderer) ErrorOutput() string {
	return tr.ErrOut.String()
}

// Reset clears both output buffers.
func (tr *TestRenderer) Reset() {
	tr.Out.Reset()
	tr.ErrOut.Reset()
}

// ansiPattern matches ANSI escape codes.
var ansiPattern = regexp.MustCompile(`\x1b\[[0-9;]*[a-zA-Z]`)

// AssertNoANSI checks that a string contains no ANSI escape codes.
func AssertNoANSI(t *testing.T, s string) {
	t.Helper()
	if ansiPattern.MatchString(s) {
		t.Errorf("string contains ANSI escape codes: %q", s)
	}
}

// AssertContains checks that the string contains the expected substring.
func AssertContains(t *testing.T, s, expected string) {
	t.Helper()
	if !strings.Contains(s, expected) {
		t.Errorf("string %q does not contain expected %q", s, expected)
	}
}

// AssertNotContains checks that the string does not contain the substring.
func AssertNotContains(t *testing.T, s, unexpected string) {
	t.Helper()
	if strings.Contains(s, unexpected) {
		t.Errorf("string %q unexpectedly contains %q", s, unexpected)
	}
}

// AssertValidMarkdown performs basic markdown validation.
// It checks for unclosed code fences and basic structure.
func AssertValidMarkdown(t *testing.T, md string) {
	t.Helper()

	// Check for balanced code fences
	fenceCount := strings.Count(md, "```")
	if fenceCount%2 != 0 {
		t.Errorf("unbalanced code fences in markdown: found %d occurrences", fenceCount)
	}

	// Check that headers have content
	lines := strings.Split(md, "\n")
	for i, line := range lines {
		trimmed := strings.TrimSpace(line)
		if strings.HasPrefix(trimmed, "#") && strings.TrimLeft(trimmed, "# ") == "" {
			t.Errorf("empty header at line %d: %q", i+1, line)
		}
	}
}

// AssertOutputMode checks that the renderer output matches expected mode characteristics.
func AssertOutputMode(t *testing.T, tr *TestRenderer, expectedMode output.OutputMode) {
	t.Helper()

	combinedOutput := tr.Output() + tr.ErrorOutput()

	switch expectedMode {
	case output.ModeMarkdown:
		AssertNoANSI(t, combinedOutput)
		// Markdown mode should not contain ANSI codes
	case output.ModeText:
		// Text mode may contain ANSI codes if TTY
		// No specific assertion needed
	case output.ModeJSON:
		AssertNoANSI(t, combinedOutput)
		// JSON mode should not contain ANSI codes
	}
}
