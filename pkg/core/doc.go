// Package core defines the shared types used by trialrecon's reconciliation
// pipeline: tabular records with named columns, canonical tenant id sets,
// the reason value attached to discrepancies, and date handling for run
// ranges.
//
// Records are positional. A Header is built once per loaded table and shared
// by every Record of that table, so name lookups are a single map access.
package core
