// Package excel writes run results to an xlsx workbook: an info sheet and a
// detail sheet per product, the raw exports, and optionally hidden sheets
// with each product's filtered inputs.
package excel

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/leapstack-labs/trialrecon/internal/engine"
	"github.com/leapstack-labs/trialrecon/pkg/core"
)

// DirLayout names the per-run output directory.
const DirLayout = "2006-01-02_15-04-05"

// Writer saves results as workbooks under OutputDir. It implements
// engine.Sink.
type Writer struct {
	OutputDir string
	// IncludeFilteredSheets adds hidden sheets with each product's filtered
	// inputs.
	IncludeFilteredSheets bool
	// Now stamps the output directory. Defaults to time.Now.
	Now    func() time.Time
	Logger *slog.Logger
}

var _ engine.Sink = (*Writer)(nil)

// NewWriter creates a writer.
func NewWriter(outputDir string, includeFiltered bool, logger *slog.Logger) *Writer {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Writer{OutputDir: outputDir, IncludeFilteredSheets: includeFiltered, Now: time.Now, Logger: logger}
}

// Path returns the workbook path for a run started at now.
func Path(outputDir string, now time.Time, r core.DateRange) string {
	name := fmt.Sprintf("analysis_%s_%s.xlsx", r.StartString(), r.EndString())
	return filepath.Join(outputDir, now.Format(DirLayout), name)
}

// Write builds the workbook for res and saves it.
func (w *Writer) Write(ctx context.Context, res *engine.Result) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	now := time.Now
	if w.Now != nil {
		now = w.Now
	}
	path := Path(w.OutputDir, now(), res.Range)

	f, err := Build(res, w.IncludeFilteredSheets)
	if err != nil {
		return "", err
	}
	defer func() { _ = f.Close() }()

	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return "", fmt.Errorf("failed to create output directory: %w", err)
	}
	if err := f.SaveAs(path); err != nil {
		return "", fmt.Errorf("failed to save workbook %s: %w", path, err)
	}

	if w.Logger != nil {
		w.Logger.Info("wrote workbook", "path", path, "sheets", len(f.GetSheetList()))
	}
	return path, nil
}

// Build lays out the workbook of a run.
func Build(res *engine.Result, includeFiltered bool) (*excelize.File, error) {
	if len(res.Products) == 0 {
		return nil, fmt.Errorf("no products to write")
	}
	if res.Inputs == nil {
		return nil, fmt.Errorf("result has no inputs")
	}

	f := excelize.NewFile()
	b, err := newBook(f)
	if err != nil {
		_ = f.Close()
		return nil, err
	}

	for i, p := range res.Products {
		name := p.Product + " Info"
		if i == 0 {
			b.rename("Sheet1", name)
		} else {
			b.sheet(name)
		}
		b.info(name, res, p)
	}
	for _, p := range res.Products {
		b.sheet(p.Product)
		b.detail(p.Product, res.Names, p)
	}

	b.raw(res.Names.A+" All", res.Inputs.A, nil)
	b.raw(res.Names.B+" All", res.Inputs.B, nil)
	b.raw(feedSheetName(res), res.Inputs.Feed, nil)

	if includeFiltered {
		for _, p := range res.Products {
			a := res.Names.A + " " + p.Product
			s := res.Names.B + " " + p.Product
			b.raw(a, p.FilteredA, p.Comparison.Left.ColTypes)
			b.raw(s, p.FilteredB, p.Comparison.Right.ColTypes)
			b.hide(a)
			b.hide(s)
		}
	}

	if b.err != nil {
		_ = f.Close()
		return nil, b.err
	}
	return f, nil
}

func feedSheetName(res *engine.Result) string {
	return res.Names.B + " Feed"
}
