package decisions

import (
	"context"
	"database/sql"
	"fmt"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"dupefinder/internal/config"
)

// Journal persists decision records to SQLite for post-run audit.
type Journal struct {
	db   *sql.DB
	path string
}

// Open initializes or connects to the decisions database.
func Open(cfg *config.Config) (*Journal, error) {
	if err := cfg.EnsureDirectories(); err != nil {
		return nil, fmt.Errorf("ensure directories: %w", err)
	}
	return OpenPath(filepath.Join(cfg.Runtime.LogDir, "decisions.db"))
}

// OpenPath connects to the decisions database at an explicit location.
func OpenPath(dbPath string) (*Journal, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA foreign_keys = ON",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, execErr := db.Exec(pragma); execErr != nil {
			_ = db.Close()
			return nil, fmt.Errorf("apply pragma %q: %w", pragma, execErr)
		}
	}

	journal := &Journal{db: db, path: dbPath}
	if err := journal.initSchema(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}
	return journal, nil
}

// Close closes the underlying database connection.
func (j *Journal) Close() error {
	if j == nil || j.db == nil {
		return nil
	}
	return j.db.Close()
}

// Path returns the on-disk location of the journal.
func (j *Journal) Path() string {
	return j.path
}

// BeginRun records the start of a scan run.
func (j *Journal) BeginRun(ctx context.Context, runID string, dryRun bool) error {
	_, err := j.db.ExecContext(ctx,
		`INSERT INTO runs (id, started_at, dry_run) VALUES (?, ?, ?)`,
		runID, time.Now().UTC().Format(time.RFC3339Nano), boolToInt(dryRun))
	if err != nil {
		return fmt.Errorf("insert run: %w", err)
	}
	return nil
}

// FinishRun stamps the run with its final totals.
func (j *Journal) FinishRun(ctx context.Context, runID string, deletedFiles int, deletedBytes int64) error {
	_, err := j.db.ExecContext(ctx,
		`UPDATE runs SET finished_at = ?, deleted_files = ?, deleted_bytes = ? WHERE id = ?`,
		time.Now().UTC().Format(time.RFC3339Nano), deletedFiles, deletedBytes, runID)
	if err != nil {
		return fmt.Errorf("update run: %w", err)
	}
	return nil
}

// Record appends one keep/remove decision to the journal.
func (j *Journal) Record(ctx context.Context, runID string, d Decision) error {
	_, err := j.db.ExecContext(ctx,
		`INSERT INTO decisions (
            run_id, recorded_at, title, action, media_id, score, scored, file, size_bytes
        ) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		runID,
		time.Now().UTC().Format(time.RFC3339Nano),
		d.Title,
		string(d.Action),
		d.MediaID,
		d.Score,
		boolToInt(d.Scored),
		d.File,
		d.SizeBytes,
	)
	if err != nil {
		return fmt.Errorf("insert decision: %w", err)
	}
	return nil
}

// Recent returns the newest decisions, most recent first.
func (j *Journal) Recent(ctx context.Context, limit int) ([]Decision, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := j.db.QueryContext(ctx,
		`SELECT run_id, recorded_at, title, action, media_id, score, scored, file, size_bytes
           FROM decisions ORDER BY id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("query decisions: %w", err)
	}
	defer rows.Close()

	var out []Decision
	for rows.Next() {
		var (
			d        Decision
			action   string
			recorded string
			scored   int
		)
		if err := rows.Scan(&d.RunID, &recorded, &d.Title, &action, &d.MediaID, &d.Score, &scored, &d.File, &d.SizeBytes); err != nil {
			return nil, fmt.Errorf("scan decision: %w", err)
		}
		d.Action = Action(action)
		d.Scored = scored != 0
		if ts, parseErr := time.Parse(time.RFC3339Nano, recorded); parseErr == nil {
			d.RecordedAt = ts
		}
		out = append(out, d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate decisions: %w", err)
	}
	return out, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
