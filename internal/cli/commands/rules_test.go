package commands

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leapstack-labs/trialrecon/pkg/reason"
)

func TestNewRulesCommand(t *testing.T) {
	cmd := NewRulesCommand()

	assert.Equal(t, "rules [rule-id]", cmd.Use)
	assert.NotEmpty(t, cmd.Short, "Short should not be empty")
	assert.NotEmpty(t, cmd.Example, "Example should not be empty")

	flags := []string{"category", "verbose", "format"}
	for _, flag := range flags {
		assert.NotNil(t, cmd.Flags().Lookup(flag), "flag %q should exist", flag)
	}
}

func executeRules(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := NewRulesCommand()
	buf := new(bytes.Buffer)
	cmd.SetOut(buf)
	cmd.SetErr(buf)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return buf.String(), err
}

func TestRulesCommand_ListAll(t *testing.T) {
	out, err := executeRules(t, "--format", "text")
	require.NoError(t, err)

	assert.Contains(t, out, "Reason Rules (9)")
	assert.Contains(t, out, "territory.change")
	assert.Contains(t, out, "timing.missing_trial_start")
	assert.Less(t, bytes.Index([]byte(out), []byte("RC01")), bytes.Index([]byte(out), []byte("RC09")),
		"rules are listed in chain order")
}

func TestRulesCommand_FilterByCategory(t *testing.T) {
	out, err := executeRules(t, "--format", "json", "--category", "excluded from sfdc")
	require.NoError(t, err)

	var result RulesJSONOutput
	require.NoError(t, json.Unmarshal([]byte(out), &result))
	require.Equal(t, 2, result.Count)
	assert.Equal(t, "RC07", result.Rules[0].ID)
	assert.Equal(t, "RC08", result.Rules[1].ID)
}

func TestRulesCommand_ShowSpecificRule(t *testing.T) {
	tests := []struct {
		name   string
		args   []string
		wantIn []string
	}{
		{name: "text", args: []string{"RC04", "--format", "text"}, wantIn: []string{"RC04", "Employee Testing", "Priority"}},
		{name: "markdown", args: []string{"rc04", "--format", "markdown"}, wantIn: []string{"# RC04", "**Category:** Employee Testing"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := executeRules(t, tt.args...)
			require.NoError(t, err)
			for _, want := range tt.wantIn {
				assert.Contains(t, out, want)
			}
		})
	}
}

func TestRulesCommand_ShowJSON(t *testing.T) {
	out, err := executeRules(t, "RC06", "--format", "json")
	require.NoError(t, err)

	var info RuleInfo
	require.NoError(t, json.Unmarshal([]byte(out), &info))
	assert.Equal(t, "timing.trial_start", info.Name)
	assert.Equal(t, "Timing Issue", info.Category)
}

func TestRulesCommand_NotFound(t *testing.T) {
	_, err := executeRules(t, "RC99")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not found")
}

func TestRulesCommand_Markdown(t *testing.T) {
	out, err := executeRules(t, "--format", "markdown", "--verbose")
	require.NoError(t, err)

	assert.Contains(t, out, "# Reason Rules")
	assert.Contains(t, out, "| ID")
	assert.Contains(t, out, "Description")
}

func TestFilterRules(t *testing.T) {
	rules := []reason.RuleDef{
		{ID: "RC01", Category: "Territory Change"},
		{ID: "RC07", Category: "Excluded from SFDC"},
		{ID: "RC08", Category: "Excluded from SFDC"},
	}

	tests := []struct {
		category string
		want     []string
	}{
		{"", []string{"RC01", "RC07", "RC08"}},
		{"Excluded from SFDC", []string{"RC07", "RC08"}},
		{"territory change", []string{"RC01"}},
		{"Unknown", nil},
	}

	for _, tt := range tests {
		t.Run(tt.category, func(t *testing.T) {
			var ids []string
			for _, r := range filterRules(rules, tt.category) {
				ids = append(ids, r.ID)
			}
			assert.Equal(t, tt.want, ids)
		})
	}
}
