package state

import (
	"database/sql"
	"fmt"
	"log/slog"
	"time"
)

const runColumns = `id, status, start_date, end_date, source_a, source_b, source_feed, workbook, started_at, completed_at, error`

// CreateRun records the start of a run.
func (s *SQLiteStore) CreateRun(in NewRun) (*Run, error) {
	if s.db == nil {
		return nil, ErrNotOpen
	}

	run := &Run{
		ID:         generateID(),
		Status:     RunStatusRunning,
		StartDate:  in.StartDate,
		EndDate:    in.EndDate,
		SourceA:    in.SourceA,
		SourceB:    in.SourceB,
		SourceFeed: in.SourceFeed,
		StartedAt:  time.Now().UTC(),
	}

	s.logger.Debug("creating run", slog.String("id", run.ID),
		slog.String("start", run.StartDate), slog.String("end", run.EndDate))

	_, err := s.db.Exec(
		`INSERT INTO runs (id, status, start_date, end_date, source_a, source_b, source_feed, started_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		run.ID, string(run.Status), run.StartDate, run.EndDate,
		run.SourceA, run.SourceB, run.SourceFeed, run.StartedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create run: %w", err)
	}
	return run, nil
}

// CompleteRun marks a run finished with the given status.
func (s *SQLiteStore) CompleteRun(id string, status RunStatus, workbook, errMsg string) error {
	if s.db == nil {
		return ErrNotOpen
	}

	var errorPtr *string
	if errMsg != "" {
		errorPtr = &errMsg
	}

	result, err := s.db.Exec(
		`UPDATE runs SET status = ?, workbook = ?, completed_at = ?, error = ? WHERE id = ?`,
		string(status), workbook, time.Now().UTC(), errorPtr, id,
	)
	if err != nil {
		return fmt.Errorf("failed to complete run: %w", err)
	}

	rowsAffected, _ := result.RowsAffected()
	if rowsAffected == 0 {
		return fmt.Errorf("%w: %s", ErrRunNotFound, id)
	}
	return nil
}

// GetRun retrieves a run by id or by a unique id prefix.
func (s *SQLiteStore) GetRun(id string) (*Run, error) {
	if s.db == nil {
		return nil, ErrNotOpen
	}

	rows, err := s.db.Query(
		`SELECT `+runColumns+` FROM runs WHERE id = ? OR id LIKE ? ORDER BY id = ? DESC LIMIT 2`,
		id, id+"%", id,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to get run: %w", err)
	}
	runs, err := scanRuns(rows)
	if err != nil {
		return nil, fmt.Errorf("failed to get run: %w", err)
	}

	switch {
	case len(runs) == 0:
		return nil, fmt.Errorf("%w: %s", ErrRunNotFound, id)
	case runs[0].ID == id || len(runs) == 1:
		return runs[0], nil
	default:
		return nil, fmt.Errorf("run id prefix %q is ambiguous", id)
	}
}

// GetLatestRun retrieves the most recent run, or nil when there is none.
func (s *SQLiteStore) GetLatestRun() (*Run, error) {
	runs, err := s.ListRuns(1)
	if err != nil {
		return nil, err
	}
	if len(runs) == 0 {
		return nil, nil
	}
	return runs[0], nil
}

// ListRuns retrieves the most recent runs up to the given limit.
func (s *SQLiteStore) ListRuns(limit int) ([]*Run, error) {
	if s.db == nil {
		return nil, ErrNotOpen
	}

	rows, err := s.db.Query(
		`SELECT `+runColumns+` FROM runs ORDER BY started_at DESC, id DESC LIMIT ?`,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list runs: %w", err)
	}
	runs, err := scanRuns(rows)
	if err != nil {
		return nil, fmt.Errorf("failed to list runs: %w", err)
	}
	return runs, nil
}

func scanRuns(rows *sql.Rows) ([]*Run, error) {
	defer func() { _ = rows.Close() }()

	var runs []*Run
	for rows.Next() {
		run := &Run{}
		var status string
		var completedAt sql.NullTime
		var errMsg sql.NullString
		if err := rows.Scan(
			&run.ID, &status, &run.StartDate, &run.EndDate,
			&run.SourceA, &run.SourceB, &run.SourceFeed, &run.Workbook,
			&run.StartedAt, &completedAt, &errMsg,
		); err != nil {
			return nil, err
		}
		run.Status = RunStatus(status)
		if completedAt.Valid {
			t := completedAt.Time
			run.CompletedAt = &t
		}
		if errMsg.Valid {
			run.Error = errMsg.String
		}
		runs = append(runs, run)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return runs, nil
}
