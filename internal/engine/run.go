package engine

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"

	"golang.org/x/sync/errgroup"

	"github.com/leapstack-labs/trialrecon/internal/config"
	"github.com/leapstack-labs/trialrecon/internal/loader"
	"github.com/leapstack-labs/trialrecon/internal/state"
	"github.com/leapstack-labs/trialrecon/pkg/core"
	"github.com/leapstack-labs/trialrecon/pkg/reason"
	"github.com/leapstack-labs/trialrecon/pkg/reconcile"
	"github.com/leapstack-labs/trialrecon/pkg/report"
)

// RunOptions select what a run covers.
type RunOptions struct {
	// Range is the reporting period used by date filters and timing checks.
	Range core.DateRange
	// Products limits the run to these product codes. Empty runs all.
	Products []string
	// Sink receives the result when every product succeeded (optional).
	Sink Sink
}

// Run reconciles the selected products and, when a store is configured,
// records the run with its per-product results.
func (e *Engine) Run(ctx context.Context, opts RunOptions) (*Result, error) {
	selected, err := e.selectComparisons(opts.Products)
	if err != nil {
		return nil, err
	}

	e.logger.Info("starting run", "start", opts.Range.StartString(), "end", opts.Range.EndString(), "products", len(selected))

	files, err := e.Locate()
	if err != nil {
		return nil, err
	}

	res := &Result{
		StartDate: opts.Range.StartString(),
		EndDate:   opts.Range.EndString(),
		Range:     opts.Range,
		Names:     e.Names(),
		Files:     files,
	}

	if e.store != nil {
		run, err := e.store.CreateRun(state.NewRun{
			StartDate:  res.StartDate,
			EndDate:    res.EndDate,
			SourceA:    filepath.Base(files.A),
			SourceB:    filepath.Base(files.B),
			SourceFeed: filepath.Base(files.Feed),
		})
		if err != nil {
			return nil, fmt.Errorf("failed to create run: %w", err)
		}
		res.RunID = run.ID
		e.logger.Debug("created run", "run_id", run.ID)
	}

	runErr := e.execute(ctx, res, selected, opts)
	e.completeRun(res, runErr)
	if runErr != nil {
		return res, runErr
	}
	return res, nil
}

func (e *Engine) execute(ctx context.Context, res *Result, selected []config.Comparison, opts RunOptions) error {
	in, err := e.loadFiles(ctx, res.Files)
	if err != nil {
		return err
	}
	res.Inputs = in

	aux := e.buildAuxiliary(in)
	res.Products = make([]*ProductResult, len(selected))

	g, gctx := errgroup.WithContext(ctx)
	for i, c := range selected {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			p, err := e.reconcileProduct(in, aux, c, opts.Range)
			if err != nil {
				return fmt.Errorf("product %s: %w", c.Product, err)
			}
			res.Products[i] = p
			e.logger.Debug("reconciled product", "product", c.Product,
				"tenants", p.Sets.Combined.Len(), "discrepancies", len(p.Rows))
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	if e.store != nil {
		for _, p := range res.Products {
			summary, rows := p.record(res.RunID)
			if err := e.store.SaveProductResult(summary, rows); err != nil {
				return err
			}
		}
	}

	if opts.Sink != nil {
		path, err := opts.Sink.Write(ctx, res)
		if err != nil {
			return fmt.Errorf("failed to write report: %w", err)
		}
		res.Workbook = path
	}
	return nil
}

func (e *Engine) completeRun(res *Result, runErr error) {
	if runErr != nil {
		e.logger.Info("run failed", "run_id", res.RunID, "error", runErr.Error())
	} else {
		e.logger.Info("run completed", "run_id", res.RunID, "workbook", res.Workbook)
	}
	if e.store == nil {
		return
	}

	status, msg := state.RunStatusCompleted, ""
	if runErr != nil {
		status, msg = state.RunStatusFailed, runErr.Error()
	}
	if err := e.store.CompleteRun(res.RunID, status, res.Workbook, msg); err != nil {
		e.logger.Warn("failed to complete run", "run_id", res.RunID, "error", err.Error())
	}
}

// selectComparisons returns the comparisons for the given products in
// configuration order.
func (e *Engine) selectComparisons(products []string) ([]config.Comparison, error) {
	if len(products) == 0 {
		return e.Comparisons(), nil
	}

	want := make(map[string]bool, len(products))
	var errs []error
	for _, p := range products {
		if _, ok := e.comparison(p); !ok {
			errs = append(errs, fmt.Errorf("%w: %s", ErrUnknownProduct, p))
		}
		want[p] = true
	}
	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}

	var out []config.Comparison
	for _, c := range e.comparisons {
		if want[c.Product] {
			out = append(out, c)
		}
	}
	return out, nil
}

// Reconcile runs one product against already loaded inputs.
func (e *Engine) Reconcile(in *Inputs, product string, dr core.DateRange) (*ProductResult, error) {
	c, ok := e.comparison(product)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownProduct, product)
	}
	return e.reconcileProduct(in, e.buildAuxiliary(in), c, dr)
}

func (e *Engine) reconcileProduct(in *Inputs, aux auxiliary, c config.Comparison, dr core.DateRange) (*ProductResult, error) {
	aTable, err := withGeneratedTenant(in.A, c.Left)
	if err != nil {
		return nil, err
	}
	byTenant := func(r *core.Record) string { return r.Value(GeneratedTenantColumn) }
	aAll := e.group(aTable.Records, byTenant)

	aFiltered, err := loader.Apply(aTable, c.Left.RowFilter(), dr)
	if err != nil {
		return nil, fmt.Errorf("%s filters: %w", e.sources.A.Name, err)
	}
	bFiltered, err := loader.Apply(in.B, c.Right.RowFilter(), dr)
	if err != nil {
		return nil, fmt.Errorf("%s filters: %w", e.sources.B.Name, err)
	}

	sets := reconcile.Reconcile(
		reconcile.Side{
			Groups:        e.group(aFiltered.Records, byTenant),
			ValidityField: c.Left.Valid,
			Truthy:        c.Left.ValidValue,
		},
		reconcile.Side{
			Groups:        e.group(bFiltered.Records, func(r *core.Record) string { return r.Value(c.Right.Tenant) }),
			ValidityField: c.Right.Valid,
			Truthy:        c.Right.ValidValue,
		},
	)

	explain := func(id string, m reconcile.Membership) core.Reason {
		return e.chain.Infer(&reason.Input{
			TenantID:     id,
			Membership:   m,
			A:            aAll.Get(id),
			B:            aux.b.Get(id),
			Feed:         aux.feed.Get(id),
			DuplicateInB: sets.DuplicatesInB.Has(id),
			Range:        dr,
			Fields:       e.fields,
		})
	}

	viewA, err := loader.Apply(aFiltered, c.Left.Projection(), dr)
	if err != nil {
		return nil, err
	}
	viewB, err := loader.Apply(bFiltered, c.Right.Projection(), dr)
	if err != nil {
		return nil, err
	}

	return &ProductResult{
		Product:    c.Product,
		Comparison: c,
		Sets:       sets,
		Summary:    report.BuildSummary(c.Product, sets, e.Names()),
		Rows:       report.BuildDetailRows(sets, c.Product, explain),
		Clause:     report.DiscrepancyClause(c.Product, sets),
		FilteredA:  viewA,
		FilteredB:  viewB,
	}, nil
}
