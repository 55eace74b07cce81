// Package tenant derives canonical tenant ids from source records and converts
// canonical ids back into the identifier format used by source A.
package tenant

import (
	"strings"

	"github.com/leapstack-labs/trialrecon/pkg/core"
	"github.com/leapstack-labs/trialrecon/pkg/normalize"
)

const (
	salesforcePrefix = "salesforce"
	salesforceNS     = "salesforce:"
	rmNS             = "rm:"
	backupNS         = "backup:"
)

// Fields names the columns a resolver reads.
type Fields struct {
	ID      string
	Tenant  string
	Product string
}

// ResolveCanonicalID returns the canonical tenant id of a record.
//
// A non-empty tenant field wins. Otherwise the id is derived from the
// identifier field according to the record's normalized product. The
// identifier is expected to be present when the tenant field is empty.
func ResolveCanonicalID(rec *core.Record, f Fields) string {
	if t := rec.Value(f.Tenant); t != "" {
		return t
	}
	return FromIdentifier(rec.Value(f.ID), rec.Value(f.Product))
}

// FromIdentifier derives a canonical id from a source A identifier.
func FromIdentifier(id, product string) string {
	switch p := normalize.Product(product); {
	case normalize.IsRM(p):
		if strings.HasPrefix(id, salesforcePrefix) {
			return strings.ReplaceAll(id, salesforceNS, "")
		}
		return strings.ReplaceAll(strings.TrimPrefix(id, rmNS), ":", "_")
	case p == normalize.ProductBU:
		return strings.TrimPrefix(id, backupNS)
	default:
		return id
	}
}

// GenerateAmarilloID converts a canonical id into source A's identifier format.
// For every product, FromIdentifier(GenerateAmarilloID(id, p), p) == id.
func GenerateAmarilloID(canonical, product string) string {
	switch p := normalize.Product(product); {
	case normalize.IsRM(p):
		id := strings.ReplaceAll(canonical, "_", ":")
		if strings.Contains(id, ":") {
			return rmNS + id
		}
		return id
	case p == normalize.ProductBU:
		return backupNS + canonical
	default:
		return canonical
	}
}

// ColumnResolver picks the key column of a record from its product label.
// It is used for views that carry one tenant column per product line.
type ColumnResolver struct {
	// ProductField is the column holding the raw product label.
	ProductField string
	// Columns maps a raw product label to the column holding the tenant id.
	Columns map[string]string
}

// Resolve returns the tenant id of a record, or "" when its product has no
// configured column.
func (c ColumnResolver) Resolve(rec *core.Record) string {
	col, ok := c.Columns[rec.Value(c.ProductField)]
	if !ok {
		return ""
	}
	return rec.Value(col)
}
