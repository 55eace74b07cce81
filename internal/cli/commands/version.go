package commands

import (
	"runtime"

	"github.com/spf13/cobra"

	"github.com/leapstack-labs/trialrecon/internal/cli/output"
)

// BuildInfo describes the running binary.
type BuildInfo struct {
	Version   string `json:"version"`
	GitCommit string `json:"commit"`
	BuildDate string `json:"build_date"`
	GoVersion string `json:"go"`
}

// NewVersionCommand creates the version command.
func NewVersionCommand(info BuildInfo) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the trialrecon build",
		Long:  `Print the release, commit and build date of this trialrecon binary.`,
		Example: `  trialrecon version
  trialrecon version -o json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if info.GoVersion == "" {
				info.GoVersion = runtime.Version()
			}
			r := NewCommandContextWithoutEngine(cmd).Renderer
			if r.EffectiveMode() == output.ModeJSON {
				return r.JSON(info)
			}
			r.Printf("trialrecon %s\n", info.Version)
			r.Muted("commit " + info.GitCommit + ", built " + info.BuildDate + ", " + info.GoVersion)
			return nil
		},
	}
}
