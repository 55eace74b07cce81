package commands

import (
	"fmt"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/leapstack-labs/trialrecon/internal/cli/config"
	"github.com/leapstack-labs/trialrecon/internal/cli/output"
)

// NewConfigCommand creates the config command.
func NewConfigCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Inspect the effective configuration",
		Long: `Inspect the configuration after defaults, trialrecon.yaml, TRIALRECON_
environment variables and flags have been merged.`,
	}
	cmd.AddCommand(newConfigShowCommand())
	cmd.AddCommand(newConfigValidateCommand())
	return cmd
}

func newConfigShowCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Print the effective configuration",
		Example: `  trialrecon config show
  trialrecon config show -o json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cmdCtx := NewCommandContextWithoutEngine(cmd)
			r := cmdCtx.Renderer
			if r.EffectiveMode() == output.ModeJSON {
				return r.JSON(cmdCtx.Cfg)
			}

			raw, err := yaml.Marshal(cmdCtx.Cfg)
			if err != nil {
				return fmt.Errorf("failed to encode config: %w", err)
			}
			if file := config.GetConfigFileUsed(); file != "" {
				r.Muted("# " + file)
			}
			if r.EffectiveMode() == output.ModeText {
				r.Printf("%s", raw)
				return nil
			}
			r.Println(output.FormatCodeBlock("yaml", string(raw)))
			return nil
		},
	}
}

func newConfigValidateCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "validate",
		Short: "Check the configuration",
		Long: `Check the configuration: required comparison columns, filter operators,
the date range and the data directory.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cmdCtx := NewCommandContextWithoutEngine(cmd)
			cfg := cmdCtx.Cfg
			if err := cfg.Validate(); err != nil {
				return err
			}
			if err := cfg.ValidateDirectories(); err != nil {
				return err
			}

			r := cmdCtx.Renderer
			if r.EffectiveMode() == output.ModeJSON {
				return r.JSON(map[string]any{"valid": true, "products": cfg.Products()})
			}
			for _, p := range cfg.Products() {
				r.StatusLine(p, "success", "")
			}
			r.Success(fmt.Sprintf("Configuration is valid (%d comparisons)", len(cfg.Comparisons)))
			return nil
		},
	}
}
