// Package loader reads source exports into tables and applies the per-side
// column selection and row filters of a comparison.
package loader

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"

	"github.com/leapstack-labs/trialrecon/pkg/core"
)

// ErrEmptyFile is returned when an input has no header row.
var ErrEmptyFile = errors.New("file has no header row")

// Options control how a CSV export is read.
type Options struct {
	// FixQuotes replaces backslash-escaped quotes with plain quotes before
	// parsing. Some feed exports escape quotes that way.
	FixQuotes bool
	// Comma is the field delimiter. Zero means ','.
	Comma rune
}

// LoadFile reads a CSV file into a table.
func LoadFile(path string, opts Options) (*core.Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer f.Close()

	t, err := Load(f, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to load %s: %w", path, err)
	}
	return t, nil
}

// Load reads CSV data into a table. A leading byte order mark is dropped and
// reading stops at the first empty row, so trailing report footers are
// ignored.
func Load(r io.Reader, opts Options) (*core.Table, error) {
	// BOMOverride strips a UTF-8 BOM and transcodes UTF-16 exports.
	data, err := io.ReadAll(transform.NewReader(r, unicode.BOMOverride(unicode.UTF8.NewDecoder())))
	if err != nil {
		return nil, fmt.Errorf("failed to read input: %w", err)
	}
	text := string(data)
	if opts.FixQuotes {
		text = FixCSVAnomalies(text)
	}

	cr := csv.NewReader(strings.NewReader(truncateAtBlankLine(text)))
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true
	if opts.Comma != 0 {
		cr.Comma = opts.Comma
	}

	names, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return nil, ErrEmptyFile
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read header: %w", err)
	}
	for i := range names {
		names[i] = strings.TrimSpace(names[i])
	}
	h, err := core.NewHeader(names)
	if err != nil {
		return nil, err
	}

	var rows [][]string
	for {
		row, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read row %d: %w", len(rows)+2, err)
		}
		if isEmptyRow(row) {
			break
		}
		rows = append(rows, fitRow(row, h.Len()))
	}

	return core.NewTable(h, rows)
}

// FixCSVAnomalies rewrites backslash-escaped quotes as plain quotes.
func FixCSVAnomalies(s string) string {
	return strings.ReplaceAll(s, `\"`, `"`)
}

// truncateAtBlankLine cuts s at the first empty line outside a quoted field.
// encoding/csv skips blank lines, so the cut has to happen before parsing.
func truncateAtBlankLine(s string) string {
	inQuotes := false
	lineStart := true
	for i := 0; i < len(s); i++ {
		c := s[i]
		if lineStart && !inQuotes {
			if c == '\n' || (c == '\r' && i+1 < len(s) && s[i+1] == '\n') {
				return s[:i]
			}
		}
		switch c {
		case '"':
			inQuotes = !inQuotes
			lineStart = false
		case '\n':
			lineStart = true
		case '\r':
		default:
			lineStart = false
		}
	}
	return s
}

func isEmptyRow(row []string) bool {
	for _, v := range row {
		if v != "" {
			return false
		}
	}
	return true
}

// fitRow pads short rows and truncates long ones to the header width.
func fitRow(row []string, n int) []string {
	if len(row) == n {
		return row
	}
	out := make([]string, n)
	copy(out, row)
	return out
}
