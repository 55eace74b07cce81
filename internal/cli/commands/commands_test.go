package commands

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leapstack-labs/trialrecon/internal/cli/config"
	clitestutil "github.com/leapstack-labs/trialrecon/internal/cli/testutil"
)

const rmClause = "-- RM and l.lead_id in ('rm:acme:t2', 't3', 't4', 't5')"

func TestNewCompareCommand(t *testing.T) {
	cmd := NewCompareCommand()

	assert.Equal(t, "compare", cmd.Use)
	assert.NotEmpty(t, cmd.Short, "Short should not be empty")
	assert.NotEmpty(t, cmd.Example, "Example should not be empty")

	flags := []string{"start", "end", "product", "no-excel"}
	for _, flag := range flags {
		assert.NotNil(t, cmd.Flags().Lookup(flag), "flag %q should exist", flag)
	}
}

func TestNewWatchCommand(t *testing.T) {
	cmd := NewWatchCommand()

	assert.Equal(t, "watch", cmd.Use)
	assert.NotEmpty(t, cmd.Short, "Short should not be empty")

	flags := []string{"start", "end", "product", "no-excel", "debounce", "initial"}
	for _, flag := range flags {
		assert.NotNil(t, cmd.Flags().Lookup(flag), "flag %q should exist", flag)
	}
}

func TestNewRunsCommand(t *testing.T) {
	cmd := NewRunsCommand()

	assert.Equal(t, "runs", cmd.Use)
	var names []string
	for _, c := range cmd.Commands() {
		names = append(names, c.Name())
	}
	assert.ElementsMatch(t, []string{"list", "show"}, names)
}

// execute runs cmd with args, capturing stdout and stderr.
func execute(t *testing.T, cmd *cobra.Command, args ...string) (string, error) {
	t.Helper()
	buf := new(bytes.Buffer)
	cmd.SetOut(buf)
	cmd.SetErr(buf)
	if args == nil {
		args = []string{} // keep cobra off os.Args
	}
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return buf.String(), err
}

func setupProject(t *testing.T) (string, *config.Config) {
	t.Helper()
	dir := clitestutil.SetupTestProject(t)
	return dir, clitestutil.LoadProjectConfig(t, dir)
}

func TestCompareCommand_Markdown(t *testing.T) {
	dir, _ := setupProject(t)

	out, err := execute(t, NewCompareCommand())
	require.NoError(t, err)

	clitestutil.AssertNoANSI(t, out)
	clitestutil.AssertValidMarkdown(t, out)
	assert.Contains(t, out, "# Comparison 2016-05-01 to 2016-05-31")
	assert.Contains(t, out, "## RM Trial Count")
	assert.Contains(t, out, "## RM Discrepancies")
	assert.Contains(t, out, "Timing Issue")
	assert.Contains(t, out, "```sql\n"+rmClause+"\n-- BU and l.lead_id in \n```")
	assert.Contains(t, out, "Workbook written to")

	books, err := filepath.Glob(filepath.Join(dir, "out", "*", "analysis_2016-05-01_2016-05-31.xlsx"))
	require.NoError(t, err)
	assert.Len(t, books, 1)
}

func TestCompareCommand_JSON(t *testing.T) {
	_, cfg := setupProject(t)
	cfg.OutputFormat = "json"

	out, err := execute(t, NewCompareCommand(), "--no-excel", "--product", "RM")
	require.NoError(t, err)

	var res struct {
		RunID    string `json:"run_id"`
		Workbook string `json:"workbook"`
		Products []struct {
			Product string `json:"product"`
			Clause  string `json:"clause"`
			Rows    []struct {
				TenantID string `json:"tenant_id"`
			} `json:"rows"`
		} `json:"products"`
		SQL string `json:"sql"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &res))

	assert.NotEmpty(t, res.RunID)
	assert.Empty(t, res.Workbook)
	require.Len(t, res.Products, 1)
	assert.Equal(t, "RM", res.Products[0].Product)
	assert.Len(t, res.Products[0].Rows, 4)
	assert.Equal(t, rmClause+"\n", res.SQL)
}

func TestCompareCommand_Errors(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*config.Config)
		args    []string
		wantErr string
	}{
		{name: "unknown product", args: []string{"--product", "RI", "--no-excel"}, wantErr: "unknown product"},
		{name: "bad start date", args: []string{"--start", "05/01/2016x"}, wantErr: "invalid date range"},
		{
			name:    "missing validity column",
			mutate:  func(c *config.Config) { c.Comparisons[0].Right.Valid = "" },
			wantErr: "right.valid",
		},
		{
			name:    "missing export",
			mutate:  func(c *config.Config) { c.Sources.B.File = "nope.csv" },
			args:    []string{"--no-excel"},
			wantErr: "SFDC export",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, cfg := setupProject(t)
			if tt.mutate != nil {
				tt.mutate(cfg)
			}
			_, err := execute(t, NewCompareCommand(), tt.args...)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestDateRange(t *testing.T) {
	cfg := &config.Config{StartDate: "2016-05-01", EndDate: "2016-05-31"}

	dr, err := dateRange(cfg, "", "2016-05-15")
	require.NoError(t, err)
	assert.Equal(t, "2016-05-01", dr.StartString())
	assert.Equal(t, "2016-05-15", dr.EndString())
	assert.Equal(t, "2016-05-31", cfg.EndDate, "config is left untouched")
}

func TestSQLCommand(t *testing.T) {
	_, cfg := setupProject(t)

	out, err := execute(t, NewSQLCommand())
	require.NoError(t, err)
	assert.Equal(t, "```sql\n"+rmClause+"\n-- BU and l.lead_id in \n```\n\n", out)

	cfg.OutputFormat = "json"
	out, err = execute(t, NewSQLCommand(), "-p", "BU")
	require.NoError(t, err)

	var res SQLJSONOutput
	require.NoError(t, json.Unmarshal([]byte(out), &res))
	require.Len(t, res.Clauses, 1)
	assert.Equal(t, "BU", res.Clauses[0].Product)
	assert.Equal(t, "-- BU and l.lead_id in \n", res.SQL)
}

func TestRunsCommands(t *testing.T) {
	_, cfg := setupProject(t)

	_, err := execute(t, NewCompareCommand(), "--no-excel")
	require.NoError(t, err)

	cfg.OutputFormat = "json"
	out, err := execute(t, NewRunsCommand(), "list")
	require.NoError(t, err)

	var list struct {
		Runs []struct {
			ID     string `json:"id"`
			Status string `json:"status"`
		} `json:"runs"`
		Count int `json:"count"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &list))
	require.Equal(t, 1, list.Count)
	assert.Equal(t, "completed", list.Runs[0].Status)
	id := list.Runs[0].ID

	t.Run("show", func(t *testing.T) {
		out, err := execute(t, NewRunsCommand(), "show", id[:8], "--product", "RM")
		require.NoError(t, err)

		var show RunJSONOutput
		require.NoError(t, json.Unmarshal([]byte(out), &show))
		assert.Equal(t, id, show.Run.ID)
		require.Len(t, show.Products, 2)
		assert.Equal(t, "BU", show.Products[0].Product)
		assert.Equal(t, 4, show.Products[1].Differences)
		require.Len(t, show.Discrepancies, 4)
		assert.Equal(t, "acme_t2", show.Discrepancies[0].TenantID)
	})

	t.Run("show markdown", func(t *testing.T) {
		cfg.OutputFormat = "markdown"
		out, err := execute(t, NewRunsCommand(), "show", id)
		require.NoError(t, err)
		assert.Contains(t, out, "# Run "+id)
		assert.Contains(t, out, "- success: completed 2016-05-01 to 2016-05-31")
		assert.NotContains(t, out, "Discrepancies")
	})

	t.Run("show unknown product", func(t *testing.T) {
		_, err := execute(t, NewRunsCommand(), "show", id, "--product", "MM")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "no results for product MM")
	})

	t.Run("sql from run", func(t *testing.T) {
		cfg.OutputFormat = "markdown"
		out, err := execute(t, NewSQLCommand(), "--run", id)
		require.NoError(t, err)
		assert.Contains(t, out, "-- BU and l.lead_id in \n"+rmClause)
	})

	t.Run("list markdown", func(t *testing.T) {
		cfg.OutputFormat = "markdown"
		out, err := execute(t, NewRunsCommand(), "list", "--limit", "5")
		require.NoError(t, err)
		assert.Contains(t, out, id[:8])
		assert.Contains(t, out, "completed")
	})
}

func TestConfigCommands(t *testing.T) {
	_, cfg := setupProject(t)

	t.Run("show", func(t *testing.T) {
		out, err := execute(t, NewConfigCommand(), "show")
		require.NoError(t, err)
		clitestutil.AssertValidMarkdown(t, out)
		assert.Contains(t, out, "```yaml")
		assert.Contains(t, out, "tenant: Tenant MAXRM")
		assert.Contains(t, out, "name_b: SFDC")
	})

	t.Run("validate", func(t *testing.T) {
		out, err := execute(t, NewConfigCommand(), "validate")
		require.NoError(t, err)
		assert.Contains(t, out, "- success: RM")
		assert.Contains(t, out, "Configuration is valid (2 comparisons)")
	})

	t.Run("validate missing data dir", func(t *testing.T) {
		require.NoError(t, os.RemoveAll(cfg.DataDir))
		_, err := execute(t, NewConfigCommand(), "validate")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "data directory does not exist")
	})
}

func TestWatchPatterns(t *testing.T) {
	got := watchPatterns(config.Sources{
		A:    config.Source{Pattern: "amarillo_*.csv"},
		B:    config.Source{File: "exports/sfdc.csv", Pattern: "sfdc_*.csv"},
		Feed: config.Source{},
	})
	assert.Equal(t, []string{"amarillo_*.csv", "sfdc.csv"}, got)
}
