package journal

import (
	"database/sql"
	"fmt"
	"time"

	"gdrive-backup/internal/model"

	_ "github.com/mattn/go-sqlite3"
)

// Journal persists run history in a local SQLite database.
type Journal struct {
	conn *sql.DB
}

// Run is one recorded backup run.
type Run struct {
	ID        int64
	Started   time.Time
	Finished  time.Time
	DryRun    bool
	Mappings  int
	Succeeded int
	Degraded  int
	Failed    int
}

// ResultRow is one recorded mapping outcome within a run.
type ResultRow struct {
	ID             int64
	RunID          int64
	Source         string
	Destination    string
	State          model.MappingState
	FilesUploaded  int
	FoldersCreated int
	ItemsDeleted   int
	ItemsSkipped   int
	ItemErrors     int
	Error          string
	Started        time.Time
	Finished       time.Time
}

// Open opens the journal database at path, creating it and its schema
// when missing.
func Open(path string) (*Journal, error) {
	conn, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, err
	}

	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, err
	}

	j := &Journal{conn: conn}
	if err := j.initialize(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to initialize journal schema: %w", err)
	}
	return j, nil
}

// Close closes the database connection.
func (j *Journal) Close() error {
	if j.conn != nil {
		return j.conn.Close()
	}
	return nil
}

func (j *Journal) initialize() error {
	schema := `
	CREATE TABLE IF NOT EXISTS runs (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		started INTEGER NOT NULL,
		finished INTEGER NOT NULL,
		dry_run INTEGER NOT NULL,
		mappings INTEGER NOT NULL,
		succeeded INTEGER NOT NULL,
		degraded INTEGER NOT NULL,
		failed INTEGER NOT NULL
	);

	CREATE TABLE IF NOT EXISTS mapping_results (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		run_id INTEGER NOT NULL,
		source TEXT NOT NULL,
		destination TEXT NOT NULL,
		state TEXT NOT NULL,
		files_uploaded INTEGER NOT NULL,
		folders_created INTEGER NOT NULL,
		items_deleted INTEGER NOT NULL,
		items_skipped INTEGER NOT NULL,
		item_errors INTEGER NOT NULL,
		error TEXT,
		started INTEGER NOT NULL,
		finished INTEGER NOT NULL,
		FOREIGN KEY(run_id) REFERENCES runs(id) ON DELETE CASCADE
	);

	CREATE INDEX IF NOT EXISTS idx_mapping_results_run_id ON mapping_results(run_id);
	`

	_, err := j.conn.Exec(schema)
	return err
}

// RecordRun stores a run summary and its per-mapping results in a single
// transaction and returns the new run ID.
func (j *Journal) RecordRun(summary *model.RunSummary, dryRun bool) (int64, error) {
	tx, err := j.conn.Begin()
	if err != nil {
		return 0, err
	}
	defer tx.Rollback()

	runQuery := `
	INSERT INTO runs (
		started, finished, dry_run, mappings, succeeded, degraded, failed
	) VALUES (?, ?, ?, ?, ?, ?, ?)
	`
	res, err := tx.Exec(runQuery,
		summary.Started.Unix(), summary.Finished.Unix(), boolToInt(dryRun),
		len(summary.Results),
		summary.Count(model.StateSucceeded),
		summary.Count(model.StateDegraded),
		summary.Count(model.StateFailed),
	)
	if err != nil {
		return 0, fmt.Errorf("failed to insert run: %w", err)
	}

	runID, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to get run ID: %w", err)
	}

	stmt, err := tx.Prepare(`
	INSERT INTO mapping_results (
		run_id, source, destination, state,
		files_uploaded, folders_created, items_deleted, items_skipped, item_errors,
		error, started, finished
	) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return 0, err
	}
	defer stmt.Close()

	for _, r := range summary.Results {
		errText := ""
		if r.Err != nil {
			errText = r.Err.Error()
		}
		_, err := stmt.Exec(
			runID, r.Mapping.Source, r.Mapping.Destination, string(r.State),
			r.FilesUploaded, r.FoldersCreated, r.ItemsDeleted, r.ItemsSkipped, r.ItemErrors,
			errText, r.Started.Unix(), r.Finished.Unix(),
		)
		if err != nil {
			return 0, fmt.Errorf("failed to insert mapping result: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, err
	}
	return runID, nil
}

// RecentRuns returns the most recent runs, newest first.
func (j *Journal) RecentRuns(limit int) ([]Run, error) {
	query := `
	SELECT id, started, finished, dry_run, mappings, succeeded, degraded, failed
	FROM runs
	ORDER BY id DESC
	LIMIT ?
	`

	rows, err := j.conn.Query(query, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		var r Run
		var started, finished int64
		var dryRun int
		err := rows.Scan(&r.ID, &started, &finished, &dryRun,
			&r.Mappings, &r.Succeeded, &r.Degraded, &r.Failed)
		if err != nil {
			return nil, err
		}
		r.Started = time.Unix(started, 0)
		r.Finished = time.Unix(finished, 0)
		r.DryRun = dryRun != 0
		runs = append(runs, r)
	}
	return runs, rows.Err()
}

// RunResults returns the mapping outcomes recorded for a run, in the
// order they were processed.
func (j *Journal) RunResults(runID int64) ([]ResultRow, error) {
	query := `
	SELECT id, run_id, source, destination, state,
		   files_uploaded, folders_created, items_deleted, items_skipped, item_errors,
		   error, started, finished
	FROM mapping_results
	WHERE run_id = ?
	ORDER BY id ASC
	`

	rows, err := j.conn.Query(query, runID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var results []ResultRow
	for rows.Next() {
		var r ResultRow
		var state string
		var started, finished int64
		err := rows.Scan(&r.ID, &r.RunID, &r.Source, &r.Destination, &state,
			&r.FilesUploaded, &r.FoldersCreated, &r.ItemsDeleted, &r.ItemsSkipped, &r.ItemErrors,
			&r.Error, &started, &finished)
		if err != nil {
			return nil, err
		}
		r.State = model.MappingState(state)
		r.Started = time.Unix(started, 0)
		r.Finished = time.Unix(finished, 0)
		results = append(results, r)
	}
	return results, rows.Err()
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
