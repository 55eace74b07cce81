package commands

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/leapstack-labs/trialrecon/internal/cli/output"
	"github.com/leapstack-labs/trialrecon/internal/state"
)

// NewRunsCommand creates the runs command.
func NewRunsCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "runs",
		Short: "Inspect the run history",
		Long: `Inspect past comparisons recorded in the state database.

Every compare records the range, the source files, the workbook, and the
summary and discrepancies of each product.`,
	}

	cmd.AddCommand(newRunsListCommand())
	cmd.AddCommand(newRunsShowCommand())
	return cmd
}

func newRunsListCommand() *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List recent runs",
		Example: `  # Ten most recent runs
  trialrecon runs list

  trialrecon runs list --limit 50 -o json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cmdCtx, cleanup, err := NewCommandContextWithStore(cmd)
			if err != nil {
				return err
			}
			defer cleanup()

			runs, err := cmdCtx.Store.ListRuns(limit)
			if err != nil {
				return err
			}
			return renderRuns(cmdCtx.Renderer, runs)
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "n", 10, "Number of runs to list")
	return cmd
}

func newRunsShowCommand() *cobra.Command {
	var product string
	cmd := &cobra.Command{
		Use:   "show <run-id>",
		Short: "Show the results of a run",
		Long: `Show the product summaries of a run and, with --product, the recorded
discrepancies of that product. A unique prefix of the run id is enough.`,
		Example: `  trialrecon runs show 3f2a
  trialrecon runs show 3f2a --product RM`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cmdCtx, cleanup, err := NewCommandContextWithStore(cmd)
			if err != nil {
				return err
			}
			defer cleanup()

			return showRun(cmdCtx, args[0], product)
		},
	}
	cmd.Flags().StringVarP(&product, "product", "p", "", "Show the discrepancies of one product")
	return cmd
}

// RunJSONOutput is the JSON output structure of runs show.
type RunJSONOutput struct {
	Run           *state.Run             `json:"run"`
	Products      []*state.ProductResult `json:"products"`
	Discrepancies []*state.Discrepancy   `json:"discrepancies,omitempty"`
}

func showRun(cmdCtx *CommandContext, id, product string) error {
	store := cmdCtx.Store
	run, err := store.GetRun(id)
	if err != nil {
		return err
	}
	results, err := store.GetProductResults(run.ID)
	if err != nil {
		return err
	}

	var rows []*state.Discrepancy
	if product != "" {
		found := false
		for _, res := range results {
			if res.Product == product {
				found = true
			}
		}
		if !found {
			return fmt.Errorf("run %s has no results for product %s", run.ID, product)
		}
		rows, err = store.GetDiscrepancies(run.ID, product)
		if err != nil {
			return err
		}
	}

	r := cmdCtx.Renderer
	if r.EffectiveMode() == output.ModeJSON {
		return r.JSON(RunJSONOutput{Run: run, Products: results, Discrepancies: rows})
	}

	r.Header(1, "Run "+run.ID)
	r.StatusLine(string(run.Status), statusOf(run.Status), run.StartDate+" to "+run.EndDate)
	if run.Workbook != "" {
		r.Muted("Workbook: " + run.Workbook)
	}
	if run.Error != "" {
		r.Error(run.Error)
	}
	r.Println()

	summary := make([][]any, 0, len(results))
	for _, res := range results {
		summary = append(summary, []any{
			res.Product, res.Total, res.InBoth, res.OnlyA, res.OnlyB, res.DupesB,
			res.BothValid, res.Mismatch, res.Differences,
		})
	}
	r.Table([]string{"Product", "Total", "In Both", "Only A", "Only B", "Dupes B", "Both Valid", "Mismatch", "Differences"}, summary)

	if product == "" {
		return nil
	}
	r.Header(2, product+" Discrepancies")
	if len(rows) == 0 {
		r.Muted("No discrepancies")
		return nil
	}
	table := make([][]any, 0, len(rows))
	for _, d := range rows {
		table = append(table, []any{d.TenantID, d.LeadID, d.Membership, d.Category, d.Detail})
	}
	r.Table([]string{"Tenant ID", "Lead ID", "Membership", "Reason", "Details"}, table)
	return nil
}

func renderRuns(r *output.Renderer, runs []*state.Run) error {
	if r.EffectiveMode() == output.ModeJSON {
		return r.JSON(map[string]any{"runs": runs, "count": len(runs)})
	}
	if len(runs) == 0 {
		r.Muted("No runs recorded")
		return nil
	}

	rows := make([][]any, 0, len(runs))
	for _, run := range runs {
		rows = append(rows, []any{
			shortID(run.ID), run.Status, run.StartDate + " to " + run.EndDate,
			run.StartedAt.Local().Format(time.DateTime), run.Workbook,
		})
	}
	r.Table([]string{"Run", "Status", "Range", "Started", "Workbook"}, rows)
	return nil
}

// statusOf maps a run status onto the renderer's status line states.
func statusOf(s state.RunStatus) string {
	switch s {
	case state.RunStatusCompleted:
		return "success"
	case state.RunStatusFailed:
		return "failed"
	default:
		return "skipped"
	}
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
