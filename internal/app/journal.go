package app

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

// RunSummary groups the journaled moves of one sort run
type RunSummary struct {
	RunID     string
	Moves     int
	StartedAt time.Time
}

// SQLiteJournal keeps a copy of the history log in a SQLite database so the
// moves can still be undone after a restart.
type SQLiteJournal struct {
	db     *sql.DB
	logger *Logger
}

func OpenJournal(dbPath string, logger *Logger) (*SQLiteJournal, error) {
	// Ensure the directory exists
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create journal directory: %w", err)
	}

	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open journal: %w", err)
	}

	schema := `
	CREATE TABLE IF NOT EXISTS move_history (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		run_id TEXT NOT NULL,
		from_path TEXT NOT NULL,
		to_path TEXT NOT NULL,
		category TEXT NOT NULL,
		moved_at INTEGER NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_move_history_run ON move_history(run_id);
	`

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create schema: %w", err)
	}

	logger.Info("Move journal opened at %s", dbPath)
	return &SQLiteJournal{db: db, logger: logger}, nil
}

func (j *SQLiteJournal) Close() error {
	if j.db != nil {
		return j.db.Close()
	}
	return nil
}

func (j *SQLiteJournal) Append(rec MoveRecord) error {
	_, err := j.db.Exec(`
		INSERT INTO move_history (run_id, from_path, to_path, category, moved_at)
		VALUES (?, ?, ?, ?, ?)
	`, rec.RunID, rec.From, rec.To, rec.Category, rec.MovedAt.UnixMilli())
	return err
}

// Load returns the journaled moves in the order they were made.
func (j *SQLiteJournal) Load() ([]MoveRecord, error) {
	rows, err := j.db.Query(`
		SELECT run_id, from_path, to_path, category, moved_at
		FROM move_history ORDER BY id
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []MoveRecord
	for rows.Next() {
		var rec MoveRecord
		var movedAt int64
		if err := rows.Scan(&rec.RunID, &rec.From, &rec.To, &rec.Category, &movedAt); err != nil {
			return nil, err
		}
		rec.MovedAt = time.UnixMilli(movedAt)
		records = append(records, rec)
	}
	return records, rows.Err()
}

func (j *SQLiteJournal) Clear() error {
	result, err := j.db.Exec("DELETE FROM move_history")
	if err != nil {
		return err
	}
	if n, err := result.RowsAffected(); err == nil {
		j.logger.Debug("Cleared %d journal entries", n)
	}
	return nil
}

// Runs summarizes the journaled moves per sort run, oldest run first.
func (j *SQLiteJournal) Runs() ([]RunSummary, error) {
	rows, err := j.db.Query(`
		SELECT run_id, COUNT(*), MIN(moved_at)
		FROM move_history
		GROUP BY run_id
		ORDER BY MIN(id)
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var runs []RunSummary
	for rows.Next() {
		var run RunSummary
		var startedAt int64
		if err := rows.Scan(&run.RunID, &run.Moves, &startedAt); err != nil {
			return nil, err
		}
		run.StartedAt = time.UnixMilli(startedAt)
		runs = append(runs, run)
	}
	return runs, rows.Err()
}
