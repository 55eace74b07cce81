package commands

import (
	"github.com/spf13/cobra"

	"github.com/leapstack-labs/trialrecon/internal/cli/output"
	"github.com/leapstack-labs/trialrecon/pkg/report"
)

// SQLOptions holds options for the sql command.
type SQLOptions struct {
	CompareOptions
	RunID string // Print the clauses recorded by a past run
}

// NewSQLCommand creates the sql command.
func NewSQLCommand() *cobra.Command {
	opts := &SQLOptions{}
	cmd := &cobra.Command{
		Use:   "sql",
		Short: "Print the SQL filter clause of each product",
		Long: `Print one commented SQL filter clause per product, selecting the
discrepant trials of that product.

Without --run the exports are reconciled again (no workbook is written).
With --run the clauses recorded by that run are printed.`,
		Example: `  # Reconcile and print the clauses
  trialrecon sql --start 2016-05-01 --end 2016-05-31

  # Clauses of a past run (a unique id prefix is enough)
  trialrecon sql --run 3f2a`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if opts.RunID != "" {
				return sqlFromRun(cmd, opts.RunID)
			}
			return sqlFromCompare(cmd, opts)
		},
	}

	cmd.Flags().StringVar(&opts.Start, "start", "", "First day of the range (YYYY-MM-DD)")
	cmd.Flags().StringVar(&opts.End, "end", "", "Last day of the range (YYYY-MM-DD)")
	cmd.Flags().StringSliceVarP(&opts.Products, "product", "p", nil, "Product to reconcile (repeatable)")
	cmd.Flags().StringVar(&opts.RunID, "run", "", "Print the clauses of a recorded run")

	return cmd
}

func sqlFromCompare(cmd *cobra.Command, opts *SQLOptions) error {
	cmdCtx, cleanup, err := NewCommandContext(cmd)
	if err != nil {
		return err
	}
	defer cleanup()

	dr, err := dateRange(cmdCtx.Cfg, opts.Start, opts.End)
	if err != nil {
		return err
	}

	compareOpts := opts.CompareOptions
	compareOpts.NoExcel = true
	res, err := compare(cmd, cmdCtx, dr, &compareOpts)
	if err != nil {
		return err
	}
	return printSQL(cmdCtx.Renderer, res.Clauses())
}

func sqlFromRun(cmd *cobra.Command, id string) error {
	cmdCtx, cleanup, err := NewCommandContextWithStore(cmd)
	if err != nil {
		return err
	}
	defer cleanup()

	run, err := cmdCtx.Store.GetRun(id)
	if err != nil {
		return err
	}
	results, err := cmdCtx.Store.GetProductResults(run.ID)
	if err != nil {
		return err
	}

	clauses := make([]report.ProductClause, len(results))
	for i, res := range results {
		clauses[i] = report.ProductClause{Product: res.Product, Clause: res.SQLClause}
	}
	return printSQL(cmdCtx.Renderer, clauses)
}

// SQLJSONOutput is the JSON output structure of the sql command.
type SQLJSONOutput struct {
	Clauses []report.ProductClause `json:"clauses"`
	SQL     string                 `json:"sql"`
}

func printSQL(r *output.Renderer, clauses []report.ProductClause) error {
	sql := report.CommentedSQL(clauses...)
	if r.EffectiveMode() == output.ModeJSON {
		return r.JSON(SQLJSONOutput{Clauses: clauses, SQL: sql})
	}
	renderSQL(r, sql)
	return nil
}
