package repositories

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/desertthunder/immich-screens/internal/shared"
)

// Run status values.
const (
	RunStatusSucceeded = "succeeded"
	RunStatusFailed    = "failed"
	RunStatusAborted   = "aborted"
)

// Run records one organizer invocation.
type Run struct {
	ID             string
	Sequence       int
	AlbumName      string
	Status         string
	AssetsFound    int
	AssetsMatched  int
	AlbumsCreated  int
	AssetsAdded    int
	AssetsArchived int
	ErrorMessage   string
	StartedAt      time.Time
	FinishedAt     time.Time
}

// RunRepository persists run history rows in SQLite.
type RunRepository struct {
	db *sql.DB
}

// NewRunRepository creates a new RunRepository with the given database connection
func NewRunRepository(db *sql.DB) *RunRepository {
	return &RunRepository{db: db}
}

// Create inserts a run into the database, generating its ID and sequence when unset.
func (r *RunRepository) Create(run *Run) error {
	sequence, err := NextSequence(r.db, "runs")
	if err != nil {
		return fmt.Errorf("failed to generate sequence: %w", err)
	}
	run.Sequence = sequence

	if run.ID == "" {
		run.ID = shared.GenerateID()
	}
	if run.AlbumName == "" {
		return fmt.Errorf("%w: run requires an album name", shared.ErrInvalidConfig)
	}

	query := `
		INSERT INTO runs (
			id, sequence, album_name, status, assets_found, assets_matched,
			albums_created, assets_added, assets_archived, error_message,
			started_at, finished_at
		)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	var errorMessage any = run.ErrorMessage
	if errorMessage == "" {
		errorMessage = nil
	}

	var finishedAt any = run.FinishedAt
	if run.FinishedAt.IsZero() {
		finishedAt = nil
	}

	_, err = r.db.Exec(query,
		run.ID,
		run.Sequence,
		run.AlbumName,
		run.Status,
		run.AssetsFound,
		run.AssetsMatched,
		run.AlbumsCreated,
		run.AssetsAdded,
		run.AssetsArchived,
		errorMessage,
		run.StartedAt,
		finishedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert run: %w", err)
	}

	return nil
}

// Recent returns the most recent runs, newest first.
func (r *RunRepository) Recent(limit int) ([]Run, error) {
	if limit <= 0 {
		limit = 20
	}

	query := `
		SELECT id, sequence, album_name, status, assets_found, assets_matched,
		       albums_created, assets_added, assets_archived, error_message,
		       started_at, finished_at
		FROM runs
		ORDER BY started_at DESC, sequence DESC
		LIMIT ?
	`

	rows, err := r.db.Query(query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		var run Run
		var errorMessage sql.NullString
		var finishedAt sql.NullTime

		err := rows.Scan(
			&run.ID,
			&run.Sequence,
			&run.AlbumName,
			&run.Status,
			&run.AssetsFound,
			&run.AssetsMatched,
			&run.AlbumsCreated,
			&run.AssetsAdded,
			&run.AssetsArchived,
			&errorMessage,
			&run.StartedAt,
			&finishedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}

		run.ErrorMessage = errorMessage.String
		if finishedAt.Valid {
			run.FinishedAt = finishedAt.Time
		}

		runs = append(runs, run)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate runs: %w", err)
	}

	return runs, nil
}
