package engine

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/leapstack-labs/trialrecon/internal/acquire"
	"github.com/leapstack-labs/trialrecon/internal/config"
	"github.com/leapstack-labs/trialrecon/internal/loader"
	"github.com/leapstack-labs/trialrecon/pkg/core"
	"github.com/leapstack-labs/trialrecon/pkg/reconcile"
	"github.com/leapstack-labs/trialrecon/pkg/tenant"
)

// Files are the resolved paths of the source exports.
type Files struct {
	A    string `json:"a"`
	B    string `json:"b"`
	Feed string `json:"feed"`
}

// Inputs are the loaded exports. Tables are shared read-only between
// products.
type Inputs struct {
	Files Files
	A     *core.Table
	B     *core.Table
	Feed  *core.Table
}

// Locate resolves the export paths without reading them.
func (e *Engine) Locate() (Files, error) {
	var files Files
	var err error
	if files.A, err = acquire.Resolve(e.dataDir, e.sources.A); err != nil {
		return Files{}, err
	}
	if files.B, err = acquire.Resolve(e.dataDir, e.sources.B); err != nil {
		return Files{}, err
	}
	if files.Feed, err = acquire.Resolve(e.dataDir, e.sources.Feed); err != nil {
		return Files{}, err
	}
	return files, nil
}

// Load locates and reads the three exports concurrently.
func (e *Engine) Load(ctx context.Context) (*Inputs, error) {
	files, err := e.Locate()
	if err != nil {
		return nil, err
	}
	return e.loadFiles(ctx, files)
}

func (e *Engine) loadFiles(ctx context.Context, files Files) (*Inputs, error) {
	in := &Inputs{Files: files}
	g, ctx := errgroup.WithContext(ctx)
	load := func(dst **core.Table, path string, src config.Source) {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			e.logger.Debug("loading export", "source", src.Name, "path", path)
			t, err := loader.LoadFile(path, loader.Options{FixQuotes: src.FixQuotes})
			if err != nil {
				return fmt.Errorf("%s export: %w", src.Name, err)
			}
			e.logger.Debug("loaded export", "source", src.Name, "rows", t.Len())
			*dst = t
			return nil
		})
	}
	load(&in.A, files.A, e.sources.A)
	load(&in.B, files.B, e.sources.B)
	load(&in.Feed, files.Feed, e.sources.Feed)

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return in, nil
}

// auxiliary holds the all-records groups the reason rules consult. The B and
// feed groups are shared by every product.
type auxiliary struct {
	b    *reconcile.Groups
	feed *reconcile.Groups
}

func (e *Engine) buildAuxiliary(in *Inputs) auxiliary {
	resolver := tenant.ColumnResolver{ProductField: e.bProductColumn, Columns: e.bTenantColumns}
	return auxiliary{
		b:    e.group(in.B.Records, resolver.Resolve),
		feed: e.group(in.Feed.Records, func(r *core.Record) string { return r.Value(e.fields.TenantFeed) }),
	}
}

// group keys records and drops the empty key when configured to.
func (e *Engine) group(records []*core.Record, key reconcile.KeyFunc) *reconcile.Groups {
	g := reconcile.GroupBy(records, key)
	if e.dropEmptyKeys {
		g = g.Without("")
	}
	return g
}

// withGeneratedTenant appends the canonical tenant id of each A record,
// derived with the comparison's left-side columns.
func withGeneratedTenant(t *core.Table, side config.Side) (*core.Table, error) {
	f := tenant.Fields{ID: side.ID, Tenant: side.Tenant, Product: side.Product}
	return t.WithColumn(GeneratedTenantColumn, func(r *core.Record) string {
		return tenant.ResolveCanonicalID(r, f)
	})
}
