// package repositories persists sync-run history in the local SQLite
// database kept alongside the snapshots in the data directory.
package repositories

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/the-judge/playlist-sync/internal/models"
)

const historySchema = `
CREATE TABLE IF NOT EXISTS sync_runs (
    id          TEXT PRIMARY KEY,
    mode        TEXT NOT NULL,
    started_at  TIMESTAMP NOT NULL,
    finished_at TIMESTAMP NOT NULL,
    tracks      INTEGER NOT NULL DEFAULT 0,
    artists     INTEGER NOT NULL DEFAULT 0,
    albums      INTEGER NOT NULL DEFAULT 0,
    playlists   INTEGER NOT NULL DEFAULT 0,
    error       TEXT NOT NULL DEFAULT ''
);
CREATE INDEX IF NOT EXISTS idx_sync_runs_started_at ON sync_runs(started_at);
`

// SyncRunRepository records what each invocation did.
type SyncRunRepository struct {
	db *sql.DB
}

// NewSyncRunRepository prepares the repository, creating the schema when the
// database is fresh.
func NewSyncRunRepository(db *sql.DB) (*SyncRunRepository, error) {
	if _, err := db.Exec(historySchema); err != nil {
		return nil, fmt.Errorf("failed to create history schema: %w", err)
	}
	return &SyncRunRepository{db: db}, nil
}

// Create inserts a finished run. An empty ID is assigned a fresh UUID, which
// is written back to the passed run.
func (r *SyncRunRepository) Create(run *models.SyncRun) error {
	if run.ID == "" {
		run.ID = uuid.New().String()
	}

	_, err := r.db.Exec(
		`INSERT INTO sync_runs (id, mode, started_at, finished_at, tracks, artists, albums, playlists, error)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		run.ID, run.Mode, run.StartedAt.UTC(), run.FinishedAt.UTC(),
		run.Tracks, run.Artists, run.Albums, run.Playlists, run.Error,
	)
	if err != nil {
		return fmt.Errorf("failed to record sync run: %w", err)
	}

	return nil
}

// List returns the most recent runs, newest first.
func (r *SyncRunRepository) List(limit int) ([]models.SyncRun, error) {
	if limit <= 0 {
		limit = 10
	}

	rows, err := r.db.Query(
		`SELECT id, mode, started_at, finished_at, tracks, artists, albums, playlists, error
		 FROM sync_runs ORDER BY started_at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query sync runs: %w", err)
	}
	defer rows.Close()

	var runs []models.SyncRun
	for rows.Next() {
		var run models.SyncRun
		var started, finished time.Time
		if err := rows.Scan(&run.ID, &run.Mode, &started, &finished,
			&run.Tracks, &run.Artists, &run.Albums, &run.Playlists, &run.Error); err != nil {
			return nil, fmt.Errorf("failed to scan sync run: %w", err)
		}
		run.StartedAt = started
		run.FinishedAt = finished
		runs = append(runs, run)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate sync runs: %w", err)
	}

	return runs, nil
}
