package commands

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/leapstack-labs/trialrecon/internal/cli/config"
	"github.com/leapstack-labs/trialrecon/internal/cli/output"
	"github.com/leapstack-labs/trialrecon/internal/engine"
	"github.com/leapstack-labs/trialrecon/internal/excel"
	"github.com/leapstack-labs/trialrecon/pkg/core"
	"github.com/leapstack-labs/trialrecon/pkg/report"
)

// CompareOptions holds options for the compare command.
type CompareOptions struct {
	Start    string   // First day of the range, 2006-01-02
	End      string   // Last day of the range, 2006-01-02
	Products []string // Product codes to reconcile; empty means all
	NoExcel  bool     // Skip the workbook
}

// NewCompareCommand creates the compare command.
func NewCompareCommand() *cobra.Command {
	opts := &CompareOptions{}
	cmd := &cobra.Command{
		Use:   "compare",
		Short: "Reconcile the source exports",
		Long: `Reconcile the A and B exports for every configured product.

The newest export matching each source pattern in the data directory is used
unless a file is configured. Results are written to a workbook under the
output directory, recorded in the run history, and summarized on stdout
together with the SQL filter clause of each product.

The range defaults to the first day of the month through yesterday.`,
		Example: `  # Reconcile all products for the default range
  trialrecon compare

  # Reconcile May 2016 only
  trialrecon compare --start 2016-05-01 --end 2016-05-31

  # Reconcile RM and BU without writing a workbook
  trialrecon compare -p RM -p BU --no-excel

  # Machine-readable output
  trialrecon compare -o json`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runCompare(cmd, opts)
		},
	}

	cmd.Flags().StringVar(&opts.Start, "start", "", "First day of the range (YYYY-MM-DD)")
	cmd.Flags().StringVar(&opts.End, "end", "", "Last day of the range (YYYY-MM-DD)")
	cmd.Flags().StringSliceVarP(&opts.Products, "product", "p", nil, "Product to reconcile (repeatable)")
	cmd.Flags().BoolVar(&opts.NoExcel, "no-excel", false, "Skip writing the workbook")

	_ = cmd.RegisterFlagCompletionFunc("product", func(_ *cobra.Command, _ []string, _ string) ([]string, cobra.ShellCompDirective) {
		return getConfig().Products(), cobra.ShellCompDirectiveNoFileComp
	})

	return cmd
}

func runCompare(cmd *cobra.Command, opts *CompareOptions) error {
	cmdCtx, cleanup, err := NewCommandContext(cmd)
	if err != nil {
		return err
	}
	defer cleanup()

	dr, err := dateRange(cmdCtx.Cfg, opts.Start, opts.End)
	if err != nil {
		return err
	}

	res, err := compare(cmd, cmdCtx, dr, opts)
	if err != nil {
		return err
	}
	return renderCompare(cmdCtx.Renderer, res)
}

// compare runs the engine once with the workbook sink unless disabled.
func compare(cmd *cobra.Command, cmdCtx *CommandContext, dr core.DateRange, opts *CompareOptions) (*engine.Result, error) {
	runOpts := engine.RunOptions{Range: dr, Products: opts.Products}
	if !opts.NoExcel {
		runOpts.Sink = excel.NewWriter(cmdCtx.Cfg.OutputDir, cmdCtx.Cfg.IncludeFilteredSheets, cmdCtx.Logger)
	}
	return cmdCtx.Engine.Run(cmd.Context(), runOpts)
}

// dateRange resolves the run range: flags win over the configured dates.
func dateRange(cfg *config.Config, start, end string) (core.DateRange, error) {
	c := *cfg
	if start != "" {
		c.StartDate = start
	}
	if end != "" {
		c.EndDate = end
	}
	return c.DateRange()
}

// CompareJSONOutput is the JSON output structure of a comparison.
type CompareJSONOutput struct {
	*engine.Result
	SQL string `json:"sql"`
}

func renderCompare(r *output.Renderer, res *engine.Result) error {
	if r.EffectiveMode() == output.ModeJSON {
		return r.JSON(CompareJSONOutput{Result: res, SQL: res.SQL()})
	}

	r.Header(1, fmt.Sprintf("Comparison %s to %s", res.StartDate, res.EndDate))
	r.Muted(fmt.Sprintf("%s: %s", res.Names.A, res.Files.A))
	r.Muted(fmt.Sprintf("%s: %s", res.Names.B, res.Files.B))
	r.Muted(fmt.Sprintf("%s Feed: %s", res.Names.B, res.Files.Feed))
	r.Println()

	for _, p := range res.Products {
		renderProduct(r, p)
	}

	r.Header(2, "SQL")
	renderSQL(r, res.SQL())

	if res.Workbook != "" {
		r.Success("Workbook written to " + res.Workbook)
	}
	if res.RunID != "" {
		r.Muted("Run " + res.RunID)
	}
	return nil
}

// renderProduct writes the summary sections and discrepancies of a product.
func renderProduct(r *output.Renderer, p *engine.ProductResult) {
	for _, sec := range p.Summary.Sections {
		r.Header(2, sec.Title)
		rows := make([][]any, 0, len(sec.Stats))
		for _, st := range sec.Stats {
			ids := ""
			if st.IDs != nil {
				ids = report.QuotedList(st.IDs)
			}
			rows = append(rows, []any{st.Label, st.Count, st.Percent, ids})
		}
		r.Table([]string{"Stat", "Count", "Percent", "Tenants"}, rows)
	}

	if len(p.Rows) == 0 {
		r.Muted("No discrepancies")
		r.Println()
		return
	}
	rows := make([][]any, 0, len(p.Rows))
	for _, row := range p.Rows {
		rows = append(rows, []any{row.TenantID, row.LeadID, row.Reason.Category, row.Reason.Detail})
	}
	r.Header(2, p.Product+" Discrepancies")
	r.Table([]string{"Tenant ID", "Lead ID", "Reason", "Details"}, rows)
}

func renderSQL(r *output.Renderer, sql string) {
	if r.EffectiveMode() == output.ModeText {
		r.Println(strings.TrimRight(sql, "\n"))
		r.Println()
		return
	}
	r.Println(output.FormatCodeBlock("sql", sql))
	r.Println()
}
