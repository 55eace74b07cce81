package excel

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/leapstack-labs/trialrecon/internal/config"
	"github.com/leapstack-labs/trialrecon/internal/engine"
	"github.com/leapstack-labs/trialrecon/pkg/core"
	"github.com/leapstack-labs/trialrecon/pkg/report"
)

// Column widths, in characters.
const (
	infoLabelWidth  = 20
	idWidth         = 22
	reasonWidth     = 26
	detailsWidth    = 40
	rawDefaultWidth = 16
)

// book wraps a workbook and keeps the first error, so sheet layout code can
// run straight through.
type book struct {
	f      *excelize.File
	bold   int
	header int
	err    error
}

func newBook(f *excelize.File) (*book, error) {
	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return nil, fmt.Errorf("failed to create style: %w", err)
	}
	header, err := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#E2E8F0"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center"},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create style: %w", err)
	}
	return &book{f: f, bold: bold, header: header}, nil
}

func (b *book) check(err error, what string) {
	if err != nil && b.err == nil {
		b.err = fmt.Errorf("%s: %w", what, err)
	}
}

func (b *book) rename(from, to string) {
	if b.err != nil {
		return
	}
	b.check(b.f.SetSheetName(from, to), "rename sheet "+to)
}

func (b *book) sheet(name string) {
	if b.err != nil {
		return
	}
	_, err := b.f.NewSheet(name)
	b.check(err, "create sheet "+name)
}

func (b *book) hide(name string) {
	if b.err != nil {
		return
	}
	b.check(b.f.SetSheetVisible(name, false), "hide sheet "+name)
}

// row writes values starting at column A of the given 1-based row.
func (b *book) row(sheet string, row int, values []any) {
	if b.err != nil {
		return
	}
	cell, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		b.check(err, sheet)
		return
	}
	b.check(b.f.SetSheetRow(sheet, cell, &values), sheet)
}

func (b *book) style(sheet string, row, style int) {
	if b.err != nil {
		return
	}
	b.check(b.f.SetRowStyle(sheet, row, row, style), sheet)
}

func (b *book) width(sheet, from, to string, w float64) {
	if b.err != nil {
		return
	}
	b.check(b.f.SetColWidth(sheet, from, to, w), sheet)
}

// filter turns the header row into an auto filter over cols columns and
// rows data rows.
func (b *book) filter(sheet string, cols, rows int) {
	if b.err != nil || cols == 0 {
		return
	}
	last, err := excelize.CoordinatesToCellName(cols, rows+1)
	if err != nil {
		b.check(err, sheet)
		return
	}
	b.check(b.f.AutoFilter(sheet, "A1:"+last, nil), sheet)
}

// info writes the summary, SQL clause and configuration of a product.
func (b *book) info(sheet string, res *engine.Result, p *engine.ProductResult) {
	r := 1
	for i, sec := range p.Summary.Sections {
		if i > 0 {
			r++
		}
		b.row(sheet, r, []any{sec.Title})
		b.style(sheet, r, b.bold)
		r++
		for _, st := range sec.Stats {
			values := []any{st.Label, st.Count, st.Percent}
			if st.IDs != nil {
				values = append(values, report.QuotedList(st.IDs))
			}
			b.row(sheet, r, values)
			r++
		}
	}

	r++
	b.row(sheet, r, []any{"SQL", p.Clause})
	r += 2
	b.row(sheet, r, []any{"Config " + res.Names.A, DescribeSide(p.Comparison.Left)})
	r++
	b.row(sheet, r, []any{"Config " + res.Names.B, DescribeSide(p.Comparison.Right)})

	b.width(sheet, "A", "A", infoLabelWidth)
}

// detail writes one row per discrepant tenant.
func (b *book) detail(sheet string, names report.Names, p *engine.ProductResult) {
	headers := names.Headers()
	b.row(sheet, 1, toAny(headers))
	b.style(sheet, 1, b.header)
	for i, row := range p.Rows {
		b.row(sheet, i+2, row.Values())
	}

	b.width(sheet, "A", "B", idWidth)
	b.width(sheet, "L", "L", reasonWidth)
	b.width(sheet, "M", "N", detailsWidth)
	b.filter(sheet, len(headers), len(p.Rows))
}

// raw writes a table as is, converting the columns listed in colTypes.
func (b *book) raw(sheet string, t *core.Table, colTypes map[string]string) {
	if t == nil {
		return
	}
	b.sheet(sheet)

	names := t.Header.Names()
	b.row(sheet, 1, toAny(names))
	b.style(sheet, 1, b.header)
	for i, rec := range t.Records {
		fields := rec.Fields()
		values := make([]any, len(fields))
		for j, v := range fields {
			values[j] = ConvertCell(v, colTypes[names[j]])
		}
		b.row(sheet, i+2, values)
	}

	if len(names) > 0 {
		last, err := excelize.ColumnNumberToName(len(names))
		b.check(err, sheet)
		if err == nil {
			b.width(sheet, "A", last, rawDefaultWidth)
		}
	}
	b.filter(sheet, len(names), t.Len())
}

// ConvertCell applies a column type to a raw value. Integer columns become
// numbers, truncating decimals; blank or unparseable values stay text. Strip
// columns lose the ="..." wrapper spreadsheet exports put around ids.
func ConvertCell(v, colType string) any {
	switch colType {
	case config.ColTypeInteger:
		if v == "" {
			return v
		}
		if strings.Contains(v, ".") {
			f, err := strconv.ParseFloat(v, 64)
			if err != nil {
				return v
			}
			return int64(f)
		}
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return v
		}
		return n
	case config.ColTypeStrip:
		v = strings.TrimPrefix(v, `="`)
		return strings.TrimSuffix(v, `"`)
	default:
		return v
	}
}

// DescribeSide renders a comparison side on one line.
func DescribeSide(s config.Side) string {
	parts := []string{
		"id=" + s.ID,
		"tenant=" + s.Tenant,
		"product=" + s.Product,
		"valid=" + s.Valid,
	}
	if s.ValidValue != "" {
		parts = append(parts, "valid_value="+s.ValidValue)
	}
	if len(s.Cols) > 0 {
		parts = append(parts, "cols=["+strings.Join(s.Cols, ", ")+"]")
	}
	for _, f := range s.Filters.Include {
		parts = append(parts, "include="+f.String())
	}
	for _, f := range s.Filters.Exclude {
		parts = append(parts, "exclude="+f.String())
	}
	return strings.Join(parts, ", ")
}

func toAny(s []string) []any {
	out := make([]any, len(s))
	for i, v := range s {
		out[i] = v
	}
	return out
}
