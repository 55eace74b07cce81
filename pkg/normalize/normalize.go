// Package normalize maps raw categorical labels from the source systems onto
// canonical product and region codes.
//
// Lookups are exact-match tables. Regions additionally run an ordered list of
// fallback rules. Values that no table or rule recognizes pass through
// unchanged, so every function is idempotent on canonical codes.
package normalize

import "strings"

// Canonical product codes.
const (
	ProductRM   = "RM"
	ProductRMIT = "RM(IT)"
	ProductBU   = "BU"
	ProductMM   = "MM"
	ProductMMIT = "MM(IT)"
)

// Canonical region codes.
const (
	RegionNAM   = "NAM"
	RegionLATAM = "LATAM"
)

var products = map[string]string{
	ProductRM:                 ProductRM,
	ProductRMIT:               ProductRMIT,
	ProductBU:                 ProductBU,
	ProductMM:                 ProductMM,
	ProductMMIT:               ProductMMIT,
	"1 - RM":                  ProductRM,
	"3 - Backup":              ProductBU,
	"6 - ControlNow / MAX IT": ProductRMIT,
	"4 - MAX Mail":            ProductMM,
	"5 - MAX Mail IT":         ProductMMIT,
	"LN - MAX RM":             ProductRM,
	"LN - MAX Backup":         ProductBU,
	"LN - ControlNow":         ProductRMIT,
	"LN - MAXIT":              ProductRMIT,
	"LN - MAX Mail":           ProductMM,
	"LN - MAX Mail IT":        ProductMMIT,
}

var regions = map[string]string{
	RegionNAM:            RegionNAM,
	RegionLATAM:          RegionLATAM,
	"1 - North America":  RegionNAM,
	"01 - North America": RegionNAM,
	"2 - LATAM":          RegionLATAM,
	"02 - LATAM":         RegionLATAM,
}

// FallbackRule maps a raw value that missed the lookup table.
type FallbackRule struct {
	Name  string
	Match func(raw string) bool
	Code  string
}

// RegionFallbacks are evaluated in order after the region table misses.
var RegionFallbacks = []FallbackRule{
	{Name: "contains LATAM", Match: func(s string) bool { return strings.Contains(s, RegionLATAM) }, Code: RegionLATAM},
	{Name: "US prefix", Match: func(s string) bool { return strings.HasPrefix(s, "US") }, Code: RegionNAM},
}

// Product returns the canonical product code for a raw label.
func Product(raw string) string {
	if code, ok := products[raw]; ok {
		return code
	}
	return raw
}

// Region returns the canonical region code for a raw label.
func Region(raw string) string {
	if code, ok := regions[raw]; ok {
		return code
	}
	for _, rule := range RegionFallbacks {
		if rule.Match(raw) {
			return rule.Code
		}
	}
	return raw
}

// IsRM reports whether a canonical product is one of the RM family.
func IsRM(product string) bool {
	return product == ProductRM || product == ProductRMIT
}

// IsMail reports whether a canonical product is one of the mail family.
func IsMail(product string) bool {
	return product == ProductMM || product == ProductMMIT
}
