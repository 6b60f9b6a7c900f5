package db

import (
	"database/sql"
	"fmt"
)

// Run represents a row in the runs table.
type Run struct {
	ID           int
	RunID        string
	Reference    string
	Repo         string
	Branch       string
	Status       string
	FailedStage  string
	Detail       string
	Score        int
	Verdict      string
	FilesScanned int
	Fixes        int
	Timestamp    string
}

// StageEvent represents a row in the stage_events table.
type StageEvent struct {
	ID         int
	RunID      string
	Stage      string
	Status     string
	Detail     string
	DurationMs int
	Timestamp  string
}

// InsertRun records a finished run.
func (d *DB) InsertRun(r Run) error {
	_, err := d.conn.Exec(
		`INSERT INTO runs (run_id, reference, repo, branch, status, failed_stage, detail, score, verdict, files_scanned, fixes)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		r.RunID, r.Reference, r.Repo, r.Branch, r.Status, r.FailedStage, r.Detail,
		r.Score, r.Verdict, r.FilesScanned, r.Fixes,
	)
	if err != nil {
		return fmt.Errorf("insert run: %w", err)
	}
	return nil
}

// LogStageEvent records the outcome of one executed stage.
func (d *DB) LogStageEvent(runID, stage, status, detail string, durationMs int) error {
	_, err := d.conn.Exec(
		`INSERT INTO stage_events (run_id, stage, status, detail, duration_ms) VALUES (?, ?, ?, ?, ?)`,
		runID, stage, status, detail, durationMs,
	)
	if err != nil {
		return fmt.Errorf("log stage event: %w", err)
	}
	return nil
}

// ListRuns returns the most recent runs, newest first.
func (d *DB) ListRuns(limit int) ([]Run, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := d.conn.Query(
		`SELECT id, run_id, reference, COALESCE(repo,''), COALESCE(branch,''), status,
		        COALESCE(failed_stage,''), COALESCE(detail,''), COALESCE(score,0),
		        COALESCE(verdict,''), COALESCE(files_scanned,0), COALESCE(fixes,0), timestamp
		 FROM runs ORDER BY id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		var r Run
		if err := rows.Scan(&r.ID, &r.RunID, &r.Reference, &r.Repo, &r.Branch, &r.Status,
			&r.FailedStage, &r.Detail, &r.Score, &r.Verdict, &r.FilesScanned, &r.Fixes, &r.Timestamp); err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		runs = append(runs, r)
	}
	return runs, rows.Err()
}

// GetRun fetches a single run by its run_id.
func (d *DB) GetRun(runID string) (*Run, error) {
	row := d.conn.QueryRow(
		`SELECT id, run_id, reference, COALESCE(repo,''), COALESCE(branch,''), status,
		        COALESCE(failed_stage,''), COALESCE(detail,''), COALESCE(score,0),
		        COALESCE(verdict,''), COALESCE(files_scanned,0), COALESCE(fixes,0), timestamp
		 FROM runs WHERE run_id = ?`, runID)

	var r Run
	err := row.Scan(&r.ID, &r.RunID, &r.Reference, &r.Repo, &r.Branch, &r.Status,
		&r.FailedStage, &r.Detail, &r.Score, &r.Verdict, &r.FilesScanned, &r.Fixes, &r.Timestamp)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get run %s: %w", runID, err)
	}
	return &r, nil
}

// StageEvents returns the stage events of a run in execution order.
func (d *DB) StageEvents(runID string) ([]StageEvent, error) {
	rows, err := d.conn.Query(
		`SELECT id, run_id, stage, status, COALESCE(detail,''), duration_ms, timestamp
		 FROM stage_events WHERE run_id = ? ORDER BY id`, runID)
	if err != nil {
		return nil, fmt.Errorf("stage events: %w", err)
	}
	defer rows.Close()

	var events []StageEvent
	for rows.Next() {
		var e StageEvent
		if err := rows.Scan(&e.ID, &e.RunID, &e.Stage, &e.Status, &e.Detail, &e.DurationMs, &e.Timestamp); err != nil {
			return nil, fmt.Errorf("scan stage event: %w", err)
		}
		events = append(events, e)
	}
	return events, rows.Err()
}
