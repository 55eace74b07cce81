package core

import (
	"errors"
	"fmt"
)

var (
	// ErrDuplicateColumn is returned when a header names the same column twice.
	ErrDuplicateColumn = errors.New("duplicate column")

	// ErrFieldCount is returned when a record's field count differs from its header.
	ErrFieldCount = errors.New("field count does not match header")
)

// Header is an ordered list of unique column names with an index for O(1) lookup.
type Header struct {
	names []string
	index map[string]int
}

// NewHeader builds a header from column names.
func NewHeader(names []string) (*Header, error) {
	h := &Header{
		names: make([]string, len(names)),
		index: make(map[string]int, len(names)),
	}
	for i, n := range names {
		if _, ok := h.index[n]; ok {
			return nil, fmt.Errorf("%w: %q", ErrDuplicateColumn, n)
		}
		h.names[i] = n
		h.index[n] = i
	}
	return h, nil
}

// MustHeader is like NewHeader but panics on error. Intended for tests and literals.
func MustHeader(names ...string) *Header {
	h, err := NewHeader(names)
	if err != nil {
		panic(err)
	}
	return h
}

// Names returns a copy of the column names in order.
func (h *Header) Names() []string {
	out := make([]string, len(h.names))
	copy(out, h.names)
	return out
}

// Len returns the number of columns.
func (h *Header) Len() int {
	return len(h.names)
}

// Index returns the position of a column.
func (h *Header) Index(name string) (int, bool) {
	i, ok := h.index[name]
	return i, ok
}

// Has reports whether the header contains the column.
func (h *Header) Has(name string) bool {
	_, ok := h.index[name]
	return ok
}

// Record is one row of a table. It borrows the header of its table.
type Record struct {
	header *Header
	fields []string
}

// NewRecord creates a record, enforcing that the field count matches the header.
func NewRecord(h *Header, fields []string) (*Record, error) {
	if len(fields) != h.Len() {
		return nil, fmt.Errorf("%w: got %d fields, header has %d", ErrFieldCount, len(fields), h.Len())
	}
	return &Record{header: h, fields: fields}, nil
}

// Header returns the record's header.
func (r *Record) Header() *Header {
	return r.header
}

// Get returns the value of a named field and whether the column exists.
func (r *Record) Get(name string) (string, bool) {
	i, ok := r.header.index[name]
	if !ok {
		return "", false
	}
	return r.fields[i], true
}

// Value returns the value of a named field, or "" when the column is absent.
func (r *Record) Value(name string) string {
	v, _ := r.Get(name)
	return v
}

// Fields returns a copy of the positional values.
func (r *Record) Fields() []string {
	out := make([]string, len(r.fields))
	copy(out, r.fields)
	return out
}

// Table is a header plus its records in source order.
type Table struct {
	Header  *Header
	Records []*Record
}

// NewTable builds a table from a header and raw rows.
func NewTable(h *Header, rows [][]string) (*Table, error) {
	t := &Table{Header: h, Records: make([]*Record, 0, len(rows))}
	for i, row := range rows {
		rec, err := NewRecord(h, row)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i+1, err)
		}
		t.Records = append(t.Records, rec)
	}
	return t, nil
}

// Len returns the number of records.
func (t *Table) Len() int {
	return len(t.Records)
}

// Rows returns the raw values of every record.
func (t *Table) Rows() [][]string {
	rows := make([][]string, len(t.Records))
	for i, r := range t.Records {
		rows[i] = r.fields
	}
	return rows
}

// WithColumn returns a new table with one computed column appended.
// The receiver is left untouched.
func (t *Table) WithColumn(name string, fn func(*Record) string) (*Table, error) {
	names := append(t.Header.Names(), name)
	h, err := NewHeader(names)
	if err != nil {
		return nil, err
	}
	out := &Table{Header: h, Records: make([]*Record, len(t.Records))}
	for i, r := range t.Records {
		fields := make([]string, 0, h.Len())
		fields = append(fields, r.fields...)
		fields = append(fields, fn(r))
		out.Records[i] = &Record{header: h, fields: fields}
	}
	return out, nil
}
