package store

import (
	"database/sql"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"github.com/relayops/modbalance/core/balancer"
)

// SQLiteStore persists optimization runs so past suggestions can be
// re-exported and compared.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore opens or creates the database and ensures the schema.
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	schema := `
	CREATE TABLE IF NOT EXISTS runs (
		run_id TEXT PRIMARY KEY,
		started INTEGER,
		status TEXT,
		objective REAL,
		gap REAL,
		moved INTEGER,
		total_slack REAL,
		type_slack REAL
	);
	CREATE TABLE IF NOT EXISTS suggestions (
		run_id TEXT,
		instance_id TEXT,
		original_week INTEGER,
		new_week INTEGER,
		moved INTEGER,
		PRIMARY KEY(run_id, instance_id)
	);
	CREATE TABLE IF NOT EXISTS week_loads (
		run_id TEXT,
		week_index INTEGER,
		total_before REAL,
		total_after REAL,
		type_before REAL,
		type_after REAL,
		PRIMARY KEY(run_id, week_index)
	);`
	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, err
	}
	return &SQLiteStore{db: db}, nil
}

// SaveRun inserts the run with its suggestion and comparison rows.
func (s *SQLiteStore) SaveRun(res *balancer.Result, started time.Time) error {
	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.Exec(`INSERT INTO runs (run_id, started, status, objective, gap, moved, total_slack, type_slack)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		res.RunID, started.Unix(), res.Status.String(), res.Objective, res.Gap,
		res.MovedCount, res.TotalSlackHours, res.TypeSlackHours); err != nil {
		return err
	}
	for _, m := range res.Schedule {
		if _, err := tx.Exec(`INSERT INTO suggestions (run_id, instance_id, original_week, new_week, moved)
			VALUES (?, ?, ?, ?, ?)`,
			res.RunID, m.InstanceID, m.OriginalWeek, m.NewWeek, boolToInt(m.Moved)); err != nil {
			return err
		}
	}
	for _, w := range res.Weeks {
		if _, err := tx.Exec(`INSERT INTO week_loads (run_id, week_index, total_before, total_after, type_before, type_after)
			VALUES (?, ?, ?, ?, ?, ?)`,
			res.RunID, w.WeekIndex, w.TotalHoursBefore, w.TotalHoursAfter,
			w.TypeHoursBefore, w.TypeHoursAfter); err != nil {
			return err
		}
	}
	return tx.Commit()
}

// LoadRun reads back the schedule and comparison tables of a stored run.
// An empty runID loads the most recent run.
func (s *SQLiteStore) LoadRun(runID string) ([]balancer.SuggestedMove, []balancer.WeekComparison, error) {
	if runID == "" {
		row := s.db.QueryRow(`SELECT run_id FROM runs ORDER BY started DESC LIMIT 1`)
		if err := row.Scan(&runID); err != nil {
			if err == sql.ErrNoRows {
				return nil, nil, fmt.Errorf("no stored runs")
			}
			return nil, nil, err
		}
	}

	rows, err := s.db.Query(`SELECT instance_id, original_week, new_week, moved
		FROM suggestions WHERE run_id = ? ORDER BY instance_id`, runID)
	if err != nil {
		return nil, nil, err
	}
	defer func() { _ = rows.Close() }()
	var schedule []balancer.SuggestedMove
	for rows.Next() {
		var m balancer.SuggestedMove
		var moved int
		if err := rows.Scan(&m.InstanceID, &m.OriginalWeek, &m.NewWeek, &moved); err != nil {
			return nil, nil, err
		}
		m.Moved = moved != 0
		schedule = append(schedule, m)
	}
	if err := rows.Err(); err != nil {
		return nil, nil, err
	}
	if schedule == nil {
		return nil, nil, fmt.Errorf("run %s not found", runID)
	}

	wrows, err := s.db.Query(`SELECT week_index, total_before, total_after, type_before, type_after
		FROM week_loads WHERE run_id = ? ORDER BY week_index`, runID)
	if err != nil {
		return nil, nil, err
	}
	defer func() { _ = wrows.Close() }()
	var weeks []balancer.WeekComparison
	for wrows.Next() {
		var w balancer.WeekComparison
		if err := wrows.Scan(&w.WeekIndex, &w.TotalHoursBefore, &w.TotalHoursAfter,
			&w.TypeHoursBefore, &w.TypeHoursAfter); err != nil {
			return nil, nil, err
		}
		weeks = append(weeks, w)
	}
	if err := wrows.Err(); err != nil {
		return nil, nil, err
	}
	return schedule, weeks, nil
}

// Close closes the underlying database.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
