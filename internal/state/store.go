// Package state persists run history in SQLite: one row per run, per-product
// summary counts, and the discrepancy rows of each product.
package state

import (
	"time"
)

// RunStatus is the lifecycle state of a run.
type RunStatus string

// Run statuses.
const (
	RunStatusRunning   RunStatus = "running"
	RunStatusCompleted RunStatus = "completed"
	RunStatusFailed    RunStatus = "failed"
)

// Run is one execution of the comparison.
type Run struct {
	ID          string     `json:"id"`
	Status      RunStatus  `json:"status"`
	StartDate   string     `json:"start_date"`
	EndDate     string     `json:"end_date"`
	SourceA     string     `json:"source_a,omitempty"`
	SourceB     string     `json:"source_b,omitempty"`
	SourceFeed  string     `json:"source_feed,omitempty"`
	Workbook    string     `json:"workbook,omitempty"`
	StartedAt   time.Time  `json:"started_at"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
	Error       string     `json:"error,omitempty"`
}

// NewRun holds the fields known when a run starts.
type NewRun struct {
	StartDate  string
	EndDate    string
	SourceA    string
	SourceB    string
	SourceFeed string
}

// ProductResult is the summary of one product within a run.
type ProductResult struct {
	RunID        string `json:"run_id"`
	Product      string `json:"product"`
	Total        int    `json:"total"`
	InBoth       int    `json:"in_both"`
	OnlyA        int    `json:"only_a"`
	OnlyB        int    `json:"only_b"`
	DupesB       int    `json:"dupes_b"`
	BothValid    int    `json:"both_valid"`
	NeitherValid int    `json:"neither_valid"`
	OnlyAValid   int    `json:"only_a_valid"`
	OnlyBValid   int    `json:"only_b_valid"`
	Mismatch     int    `json:"mismatch"`
	Differences  int    `json:"differences"`
	SQLClause    string `json:"sql_clause,omitempty"`
}

// Membership values stored with discrepancies.
const (
	MembershipBoth  = "both"
	MembershipAOnly = "a_only"
	MembershipBOnly = "b_only"
)

// Discrepancy is one reported tenant of a product.
type Discrepancy struct {
	TenantID   string `json:"tenant_id"`
	LeadID     string `json:"lead_id"`
	Membership string `json:"membership"`
	ValidA     bool   `json:"valid_a"`
	ValidB     bool   `json:"valid_b"`
	Mismatch   bool   `json:"mismatch"`
	DupeInB    bool   `json:"dupe_in_b"`
	Category   string `json:"category,omitempty"`
	Detail     string `json:"detail,omitempty"`
}

// Store records run history.
type Store interface {
	Open(path string) error
	Close() error
	InitSchema() error

	CreateRun(in NewRun) (*Run, error)
	CompleteRun(id string, status RunStatus, workbook, errMsg string) error
	GetRun(id string) (*Run, error)
	GetLatestRun() (*Run, error)
	ListRuns(limit int) ([]*Run, error)

	SaveProductResult(res *ProductResult, rows []Discrepancy) error
	GetProductResults(runID string) ([]*ProductResult, error)
	GetDiscrepancies(runID, product string) ([]*Discrepancy, error)
}
