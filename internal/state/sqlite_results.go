package state

import (
	"fmt"
	"log/slog"
)

// SaveProductResult stores a product summary and its discrepancies in one
// transaction, replacing any earlier result for the same run and product.
func (s *SQLiteStore) SaveProductResult(res *ProductResult, rows []Discrepancy) error {
	if s.db == nil {
		return ErrNotOpen
	}

	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.Exec(`DELETE FROM discrepancies WHERE run_id = ? AND product = ?`, res.RunID, res.Product); err != nil {
		return fmt.Errorf("failed to clear discrepancies: %w", err)
	}
	if _, err := tx.Exec(`DELETE FROM product_results WHERE run_id = ? AND product = ?`, res.RunID, res.Product); err != nil {
		return fmt.Errorf("failed to clear product result: %w", err)
	}

	_, err = tx.Exec(
		`INSERT INTO product_results (run_id, product, total, in_both, only_a, only_b, dupes_b,
		 both_valid, neither_valid, only_a_valid, only_b_valid, mismatch, differences, sql_clause)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		res.RunID, res.Product, res.Total, res.InBoth, res.OnlyA, res.OnlyB, res.DupesB,
		res.BothValid, res.NeitherValid, res.OnlyAValid, res.OnlyBValid, res.Mismatch,
		res.Differences, res.SQLClause,
	)
	if err != nil {
		return fmt.Errorf("failed to save product result: %w", err)
	}

	stmt, err := tx.Prepare(
		`INSERT INTO discrepancies (run_id, product, tenant_id, lead_id, membership,
		 valid_a, valid_b, mismatch, dupe_in_b, category, detail)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
	)
	if err != nil {
		return fmt.Errorf("failed to prepare discrepancy insert: %w", err)
	}
	defer func() { _ = stmt.Close() }()

	for _, d := range rows {
		if _, err := stmt.Exec(
			res.RunID, res.Product, d.TenantID, d.LeadID, d.Membership,
			boolInt(d.ValidA), boolInt(d.ValidB), boolInt(d.Mismatch), boolInt(d.DupeInB),
			d.Category, d.Detail,
		); err != nil {
			return fmt.Errorf("failed to save discrepancy %s: %w", d.TenantID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit product result: %w", err)
	}

	s.logger.Debug("saved product result",
		slog.String("run", res.RunID), slog.String("product", res.Product), slog.Int("discrepancies", len(rows)))
	return nil
}

// GetProductResults returns the product summaries of a run in product order.
func (s *SQLiteStore) GetProductResults(runID string) ([]*ProductResult, error) {
	if s.db == nil {
		return nil, ErrNotOpen
	}

	rows, err := s.db.Query(
		`SELECT run_id, product, total, in_both, only_a, only_b, dupes_b, both_valid, neither_valid,
		 only_a_valid, only_b_valid, mismatch, differences, sql_clause
		 FROM product_results WHERE run_id = ? ORDER BY product`,
		runID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to get product results: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var out []*ProductResult
	for rows.Next() {
		r := &ProductResult{}
		if err := rows.Scan(
			&r.RunID, &r.Product, &r.Total, &r.InBoth, &r.OnlyA, &r.OnlyB, &r.DupesB,
			&r.BothValid, &r.NeitherValid, &r.OnlyAValid, &r.OnlyBValid, &r.Mismatch,
			&r.Differences, &r.SQLClause,
		); err != nil {
			return nil, fmt.Errorf("failed to scan product result: %w", err)
		}
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to get product results: %w", err)
	}
	return out, nil
}

// GetDiscrepancies returns the discrepancies of one product in a run, ordered
// by tenant id.
func (s *SQLiteStore) GetDiscrepancies(runID, product string) ([]*Discrepancy, error) {
	if s.db == nil {
		return nil, ErrNotOpen
	}

	rows, err := s.db.Query(
		`SELECT tenant_id, lead_id, membership, valid_a, valid_b, mismatch, dupe_in_b, category, detail
		 FROM discrepancies WHERE run_id = ? AND product = ? ORDER BY tenant_id`,
		runID, product,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to get discrepancies: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var out []*Discrepancy
	for rows.Next() {
		d := &Discrepancy{}
		if err := rows.Scan(
			&d.TenantID, &d.LeadID, &d.Membership,
			&d.ValidA, &d.ValidB, &d.Mismatch, &d.DupeInB,
			&d.Category, &d.Detail,
		); err != nil {
			return nil, fmt.Errorf("failed to scan discrepancy: %w", err)
		}
		out = append(out, d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to get discrepancies: %w", err)
	}
	return out, nil
}
