package commands

import (
	"context"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/leapstack-labs/trialrecon/internal/acquire"
	"github.com/leapstack-labs/trialrecon/internal/cli/config"
)

// WatchOptions holds options for the watch command.
type WatchOptions struct {
	CompareOptions
	Debounce time.Duration // Quiet period before a run starts
	Initial  bool          // Run once before waiting for changes
}

// NewWatchCommand creates the watch command.
func NewWatchCommand() *cobra.Command {
	opts := &WatchOptions{}
	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Re-run the comparison when exports change",
		Long: `Watch the data directory and run the comparison whenever a file matching
one of the source patterns is created or rewritten.

Writes arriving in quick succession are coalesced into a single run. Stop
with Ctrl-C.`,
		Example: `  trialrecon watch
  trialrecon watch --initial --debounce 2s`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return runWatch(ctx, cmd, opts)
		},
	}

	cmd.Flags().StringVar(&opts.Start, "start", "", "First day of the range (YYYY-MM-DD)")
	cmd.Flags().StringVar(&opts.End, "end", "", "Last day of the range (YYYY-MM-DD)")
	cmd.Flags().StringSliceVarP(&opts.Products, "product", "p", nil, "Product to reconcile (repeatable)")
	cmd.Flags().BoolVar(&opts.NoExcel, "no-excel", false, "Skip writing the workbook")
	cmd.Flags().DurationVar(&opts.Debounce, "debounce", time.Second, "Quiet period before a run starts")
	cmd.Flags().BoolVar(&opts.Initial, "initial", false, "Run once before waiting for changes")

	return cmd
}

func runWatch(ctx context.Context, cmd *cobra.Command, opts *WatchOptions) error {
	cmdCtx, cleanup, err := NewCommandContext(cmd)
	if err != nil {
		return err
	}
	defer cleanup()

	if err := cmdCtx.Cfg.ValidateDirectories(); err != nil {
		return err
	}

	r := cmdCtx.Renderer
	once := func(ctx context.Context) {
		// The default range moves with the clock, so resolve it per run.
		dr, err := dateRange(cmdCtx.Cfg, opts.Start, opts.End)
		if err != nil {
			r.Error(err.Error())
			return
		}
		cmd.SetContext(ctx)
		res, err := compare(cmd, cmdCtx, dr, &opts.CompareOptions)
		if err != nil {
			r.Error(err.Error())
			return
		}
		if err := renderCompare(r, res); err != nil {
			r.Error(err.Error())
		}
	}

	w := &acquire.Watcher{
		Dir:      cmdCtx.Cfg.DataDir,
		Patterns: watchPatterns(cmdCtx.Cfg.Sources),
		Debounce: opts.Debounce,
		Logger:   cmdCtx.Logger,
		OnChange: func(ctx context.Context, changed []string) {
			cmdCtx.Logger.Info("exports changed", "files", changed)
			r.Muted("Changed: " + strings.Join(changed, ", "))
			once(ctx)
		},
	}

	if opts.Initial {
		once(ctx)
	}
	r.Muted("Watching " + w.Dir + " for " + strings.Join(w.Patterns, ", "))
	return w.Run(ctx)
}

// watchPatterns returns the file name patterns of the three sources. A
// configured file is watched by its base name.
func watchPatterns(src config.Sources) []string {
	var out []string
	for _, s := range []config.Source{src.A, src.B, src.Feed} {
		switch {
		case s.File != "":
			out = append(out, filepath.Base(s.File))
		case s.Pattern != "":
			out = append(out, s.Pattern)
		}
	}
	return out
}
