package commands

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/leapstack-labs/trialrecon/internal/cli/config"
	"github.com/leapstack-labs/trialrecon/internal/cli/output"
	"github.com/leapstack-labs/trialrecon/internal/engine"
	"github.com/leapstack-labs/trialrecon/internal/state"
)

// CommandContext holds common dependencies for CLI commands.
type CommandContext struct {
	Cfg      *config.Config
	Logger   *slog.Logger
	Engine   *engine.Engine
	Store    *state.SQLiteStore
	Renderer *output.Renderer
}

// NewCommandContext creates a CommandContext with engine, run history store
// and renderer. Returns the context and a cleanup function that must be
// called (typically via defer).
func NewCommandContext(cmd *cobra.Command) (*CommandContext, func(), error) {
	cfg := getConfig()
	logger := config.GetLogger(cmd.Context())

	if err := cfg.Validate(); err != nil {
		return nil, nil, err
	}

	store, err := openStore(cfg, logger)
	if err != nil {
		return nil, nil, err
	}

	eng, err := createEngine(cfg, store, logger)
	if err != nil {
		_ = store.Close()
		return nil, nil, err
	}

	mode := output.Mode(cfg.OutputFormat)
	r := output.NewRenderer(cmd.OutOrStdout(), cmd.ErrOrStderr(), mode)

	cleanup := func() {
		_ = store.Close()
	}

	return &CommandContext{
		Cfg:      cfg,
		Logger:   logger,
		Engine:   eng,
		Store:    store,
		Renderer: r,
	}, cleanup, nil
}

// NewCommandContextWithStore creates a CommandContext with the run history
// store but no engine. Useful for commands that only read past runs.
func NewCommandContextWithStore(cmd *cobra.Command) (*CommandContext, func(), error) {
	cmdCtx := NewCommandContextWithoutEngine(cmd)
	store, err := openStore(cmdCtx.Cfg, cmdCtx.Logger)
	if err != nil {
		return nil, nil, err
	}
	cmdCtx.Store = store
	return cmdCtx, func() { _ = store.Close() }, nil
}

// NewCommandContextWithoutEngine creates a CommandContext without an engine.
// Useful for commands that don't need the source exports.
func NewCommandContextWithoutEngine(cmd *cobra.Command) *CommandContext {
	cfg := getConfig()
	logger := config.GetLogger(cmd.Context())
	mode := output.Mode(cfg.OutputFormat)
	r := output.NewRenderer(cmd.OutOrStdout(), cmd.ErrOrStderr(), mode)

	return &CommandContext{
		Cfg:      cfg,
		Logger:   logger,
		Renderer: r,
	}
}

// Helper functions shared across commands

// getConfig returns the current configuration.
// It uses config.GetCurrentConfig() if available, otherwise falls back to environment variables.
func getConfig() *config.Config {
	if cfg := config.GetCurrentConfig(); cfg != nil {
		return cfg
	}

	// Fallback: read from environment with defaults
	return &config.Config{
		DataDir:      getEnvOrDefault("TRIALRECON_DATA_DIR", config.DefaultDataDir),
		OutputDir:    getEnvOrDefault("TRIALRECON_OUTPUT_DIR", config.DefaultOutputDir),
		StatePath:    getEnvOrDefault("TRIALRECON_STATE_PATH", config.DefaultStateFile),
		StartDate:    os.Getenv("TRIALRECON_START_DATE"),
		EndDate:      os.Getenv("TRIALRECON_END_DATE"),
		Verbose:      os.Getenv("TRIALRECON_VERBOSE") == "true",
		OutputFormat: os.Getenv("TRIALRECON_OUTPUT"),
	}
}

func getEnvOrDefault(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

func openStore(cfg *config.Config, logger *slog.Logger) (*state.SQLiteStore, error) {
	// Ensure state directory exists
	stateDir := filepath.Dir(cfg.StatePath)
	if stateDir != "." && stateDir != "" {
		if err := os.MkdirAll(stateDir, 0750); err != nil {
			return nil, fmt.Errorf("failed to create state directory: %w", err)
		}
	}

	store := state.NewSQLiteStore(logger)
	if err := store.Open(cfg.StatePath); err != nil {
		return nil, err
	}
	if err := store.InitSchema(); err != nil {
		_ = store.Close()
		return nil, err
	}
	return store, nil
}

func createEngine(cfg *config.Config, store state.Store, logger *slog.Logger) (*engine.Engine, error) {
	return engine.New(engine.Config{
		DataDir:        cfg.DataDir,
		Sources:        cfg.Sources,
		Comparisons:    cfg.Comparisons,
		Reasons:        cfg.Reasons,
		BTenantColumns: cfg.BTenantColumns,
		BProductColumn: cfg.BProductColumn,
		DropEmptyKeys:  cfg.DropEmptyKeys,
		Store:          store,
		Logger:         logger,
	})
}
