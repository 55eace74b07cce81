package core

// Reason is a categorical explanation for a discrepancy plus free-text detail.
type Reason struct {
	Category string `json:"category"`
	Detail   string `json:"detail"`
}

// NoReason is returned when no rule explains a discrepancy.
var NoReason = Reason{}

// Found reports whether the reason carries a category.
func (r Reason) Found() bool {
	return r.Category != ""
}
