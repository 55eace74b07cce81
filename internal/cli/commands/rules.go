package commands

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/leapstack-labs/trialrecon/internal/cli/output"
	"github.com/leapstack-labs/trialrecon/pkg/reason"
	_ "github.com/leapstack-labs/trialrecon/pkg/reason/rules" // register reason rules
)

// RulesOptions holds options for the rules command.
type RulesOptions struct {
	Category string // Filter by reason category
	Verbose  bool   // Show descriptions
	Format   string // Output format
}

// NewRulesCommand creates the rules command.
func NewRulesCommand() *cobra.Command {
	opts := &RulesOptions{}
	cmd := &cobra.Command{
		Use:   "rules [rule-id]",
		Short: "List the reason rules",
		Long: `List the rules that explain discrepancies, in the order they are tried.

The first rule that applies to a discrepant trial gives its reason; trials no
rule explains are reported as "Unknown".

Output adapts to environment:
  - Terminal: Styled output with colors
  - Piped/Scripted: Markdown format
  - JSON: Machine-readable format`,
		Example: `  # List all rules
  trialrecon rules

  # Show details for a specific rule
  trialrecon rules RC03

  # Rules giving the "Timing Issue" reason
  trialrecon rules --category "Timing Issue"

  # Output as JSON
  trialrecon rules --format json`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) > 0 {
				return showRule(cmd, args[0], opts)
			}
			return listRules(cmd, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.Category, "category", "c", "", "Filter by reason category")
	cmd.Flags().BoolVarP(&opts.Verbose, "verbose", "V", false, "Show rule descriptions")
	cmd.Flags().StringVarP(&opts.Format, "format", "f", "", "Output format: text, json, markdown")

	return cmd
}

func rulesRenderer(cmd *cobra.Command, format string) *output.Renderer {
	if format != "" {
		return output.NewRenderer(cmd.OutOrStdout(), cmd.ErrOrStderr(), output.Mode(format))
	}
	return NewCommandContextWithoutEngine(cmd).Renderer
}

func listRules(cmd *cobra.Command, opts *RulesOptions) error {
	r := rulesRenderer(cmd, opts.Format)

	// The registry returns rules in chain order.
	rules := filterRules(reason.GetAll(), opts.Category)

	switch r.EffectiveMode() {
	case output.ModeJSON:
		return listRulesJSON(r, rules)
	case output.ModeMarkdown:
		return listRulesMarkdown(r, rules, opts.Verbose)
	default:
		return listRulesText(r, rules, opts.Verbose)
	}
}

func filterRules(rules []reason.RuleDef, category string) []reason.RuleDef {
	if category == "" {
		return rules
	}
	var filtered []reason.RuleDef
	for _, r := range rules {
		if strings.EqualFold(r.Category, category) {
			filtered = append(filtered, r)
		}
	}
	return filtered
}

func showRule(cmd *cobra.Command, ruleID string, opts *RulesOptions) error {
	r := rulesRenderer(cmd, opts.Format)

	rule, ok := reason.GetByID(strings.ToUpper(ruleID))
	if !ok {
		return fmt.Errorf("rule %q not found", ruleID)
	}

	switch r.EffectiveMode() {
	case output.ModeJSON:
		return r.JSON(ruleInfo(rule))
	case output.ModeMarkdown:
		r.Printf("# %s - %s\n\n", rule.ID, rule.Name)
		r.Printf("**Priority:** %d | **Category:** %s\n\n", rule.Priority, rule.Category)
		r.Println(rule.Description)
		return nil
	default:
		styles := r.Styles()
		r.Println("")
		r.Println(styles.Header1.Render(fmt.Sprintf("%s - %s", rule.ID, rule.Name)))
		r.Println("")
		r.Printf("  %s: %d\n", styles.Bold.Render("Priority"), rule.Priority)
		r.Printf("  %s: %s\n", styles.Bold.Render("Category"), rule.Category)
		r.Println("")
		r.Println(styles.Bold.Render("Description"))
		r.Println("  " + rule.Description)
		r.Println("")
		return nil
	}
}

// listRulesText outputs rules in styled text format.
func listRulesText(r *output.Renderer, rules []reason.RuleDef, verbose bool) error {
	styles := r.Styles()

	r.Println("")
	r.Println(styles.Header1.Render(fmt.Sprintf("Reason Rules (%d)", len(rules))))
	r.Println("")

	for _, rule := range rules {
		r.Printf("  %s  %s - %s\n",
			styles.Muted.Render(rule.ID),
			rule.Name,
			styles.Info.Render(rule.Category),
		)
		if verbose {
			r.Println(styles.Muted.Render("        " + rule.Description))
			r.Println("")
		}
	}

	r.Println("")
	r.Println(styles.Muted.Render("Use 'trialrecon rules <rule-id>' for details"))
	r.Println("")
	return nil
}

// listRulesMarkdown outputs rules in markdown format.
func listRulesMarkdown(r *output.Renderer, rules []reason.RuleDef, verbose bool) error {
	r.Println("# Reason Rules")
	r.Println("")

	headers := []string{"ID", "Priority", "Name", "Category"}
	if verbose {
		headers = append(headers, "Description")
	}
	rows := make([][]any, 0, len(rules))
	for _, rule := range rules {
		row := []any{rule.ID, rule.Priority, rule.Name, rule.Category}
		if verbose {
			row = append(row, rule.Description)
		}
		rows = append(rows, row)
	}
	r.Table(headers, rows)
	return nil
}

// RuleInfo is the JSON form of a rule.
type RuleInfo struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Category    string `json:"category"`
	Priority    int    `json:"priority"`
	Description string `json:"description"`
}

func ruleInfo(rule reason.RuleDef) RuleInfo {
	return RuleInfo{
		ID:          rule.ID,
		Name:        rule.Name,
		Category:    rule.Category,
		Priority:    rule.Priority,
		Description: rule.Description,
	}
}

// RulesJSONOutput is the JSON output structure for rules listing.
type RulesJSONOutput struct {
	Rules []RuleInfo `json:"rules"`
	Count int        `json:"count"`
}

// listRulesJSON outputs rules in JSON format.
func listRulesJSON(r *output.Renderer, rules []reason.RuleDef) error {
	out := RulesJSONOutput{Rules: make([]RuleInfo, 0, len(rules)), Count: len(rules)}
	for _, rule := range rules {
		out.Rules = append(out.Rules, ruleInfo(rule))
	}
	return r.JSON(out)
}
