// Package engine runs the comparison: it loads the three source exports,
// reconciles every configured product and explains each discrepancy with the
// reason chain. Results can be handed to a Sink and recorded in the state
// store.
package engine

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/leapstack-labs/trialrecon/internal/config"
	"github.com/leapstack-labs/trialrecon/internal/state"
	"github.com/leapstack-labs/trialrecon/pkg/reason"
	_ "github.com/leapstack-labs/trialrecon/pkg/reason/rules" // registers the built-in rules
	"github.com/leapstack-labs/trialrecon/pkg/report"
)

// GeneratedTenantColumn is appended to A's export with the canonical tenant
// id of each record.
const GeneratedTenantColumn = "Generated Tenant"

// ErrUnknownProduct is returned when a run selects a product with no
// configured comparison.
var ErrUnknownProduct = errors.New("unknown product")

// Engine reconciles source exports.
type Engine struct {
	logger *slog.Logger
	store  state.Store
	chain  *reason.Chain

	dataDir        string
	sources        config.Sources
	comparisons    []config.Comparison
	fields         reason.Fields
	bTenantColumns map[string]string
	bProductColumn string
	dropEmptyKeys  bool
}

// Config holds engine configuration.
type Config struct {
	// DataDir is where source exports are looked up.
	DataDir string
	// Sources locates the A, B and feed exports.
	Sources config.Sources
	// Comparisons lists one entry per product, in report order.
	Comparisons []config.Comparison
	// Reasons names the columns the reason rules read. Zero means
	// reason.DefaultFields.
	Reasons reason.Fields
	// BTenantColumns maps B's product labels to their tenant column.
	BTenantColumns map[string]string
	// BProductColumn holds the label BTenantColumns is keyed on.
	BProductColumn string
	// DropEmptyKeys ignores records whose tenant id resolves to "".
	DropEmptyKeys bool
	// Chain overrides the reason chain (optional).
	Chain *reason.Chain
	// Store records run history (optional).
	Store state.Store
	// Logger is the structured logger (optional, uses discard if nil)
	Logger *slog.Logger
}

// New creates an engine.
func New(cfg Config) (*Engine, error) {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	if len(cfg.Comparisons) == 0 {
		return nil, errors.New("no comparisons configured")
	}

	seen := make(map[string]bool, len(cfg.Comparisons))
	comparisons := make([]config.Comparison, len(cfg.Comparisons))
	for i, c := range cfg.Comparisons {
		config.ApplyDefaults(&c)
		if err := c.Validate(); err != nil {
			return nil, fmt.Errorf("comparison %d: %w", i+1, err)
		}
		if seen[c.Product] {
			return nil, fmt.Errorf("duplicate comparison for product %s", c.Product)
		}
		seen[c.Product] = true
		comparisons[i] = c
	}

	sources := cfg.Sources
	config.ApplySourceDefaults(&sources)

	fields := cfg.Reasons
	if fields == (reason.Fields{}) {
		fields = reason.DefaultFields()
	}

	bTenantColumns := cfg.BTenantColumns
	if len(bTenantColumns) == 0 {
		bTenantColumns = config.DefaultBTenantColumns()
	}
	bProductColumn := cfg.BProductColumn
	if bProductColumn == "" {
		bProductColumn = config.DefaultBProductColumn
	}

	chain := cfg.Chain
	if chain == nil {
		chain = reason.DefaultChain()
	}

	logger.Debug("initializing engine", "data_dir", cfg.DataDir, "products", len(comparisons), "rules", len(chain.Rules()))

	return &Engine{
		logger:         logger,
		store:          cfg.Store,
		chain:          chain,
		dataDir:        cfg.DataDir,
		sources:        sources,
		comparisons:    comparisons,
		fields:         fields,
		bTenantColumns: bTenantColumns,
		bProductColumn: bProductColumn,
		dropEmptyKeys:  cfg.DropEmptyKeys,
	}, nil
}

// Comparisons returns the configured comparisons with defaults applied.
func (e *Engine) Comparisons() []config.Comparison {
	out := make([]config.Comparison, len(e.comparisons))
	copy(out, e.comparisons)
	return out
}

// Sources returns the source settings with defaults applied.
func (e *Engine) Sources() config.Sources {
	return e.sources
}

// Names returns the display names used in report headers.
func (e *Engine) Names() report.Names {
	return report.Names{A: e.sources.A.Name, B: e.sources.B.Name}
}

// Chain returns the reason chain in evaluation order.
func (e *Engine) Chain() *reason.Chain {
	return e.chain
}

func (e *Engine) comparison(product string) (config.Comparison, bool) {
	for _, c := range e.comparisons {
		if c.Product == product {
			return c, true
		}
	}
	return config.Comparison{}, false
}
