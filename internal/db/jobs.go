package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/tanmayb/cinerender/internal/models"
)

// ErrJobNotFound reports a lookup of an unknown job ID.
var ErrJobNotFound = errors.New("render job not found")

func (db *DB) CreateRenderJob(ctx context.Context, job *models.RenderJob) error {
	query := `
		INSERT INTO render_jobs (
			id, request_id, type, status, attempts
		) VALUES ($1, $2, $3, $4, $5)
		RETURNING created_at
	`

	return db.QueryRowContext(
		ctx, query,
		job.ID, job.RequestID, job.Type, job.Status, job.Attempts,
	).Scan(&job.CreatedAt)
}

func (db *DB) GetRenderJob(ctx context.Context, id uuid.UUID) (*models.RenderJob, error) {
	query := `
		SELECT
			id, request_id, type, status, attempts,
			response, error_message, started_at, finished_at, created_at
		FROM render_jobs
		WHERE id = $1
	`

	job := &models.RenderJob{}
	err := db.QueryRowContext(ctx, query, id).Scan(
		&job.ID, &job.RequestID, &job.Type, &job.Status, &job.Attempts,
		&job.Response, &job.ErrorMessage, &job.StartedAt, &job.FinishedAt,
		&job.CreatedAt,
	)

	if err == sql.ErrNoRows {
		return nil, ErrJobNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get render job: %w", err)
	}

	return job, nil
}

func (db *DB) UpdateRenderJobStatus(ctx context.Context, id uuid.UUID, status models.RenderStatus) error {
	now := time.Now()
	query := `UPDATE render_jobs SET status = $1, started_at = $2 WHERE id = $3`

	if status == models.RenderStatusSucceeded || status == models.RenderStatusFailed {
		query = `UPDATE render_jobs SET status = $1, finished_at = $2 WHERE id = $3`
	}

	_, err := db.ExecContext(ctx, query, status, now, id)
	return err
}

func (db *DB) UpdateRenderJobError(ctx context.Context, id uuid.UUID, errorMessage string) error {
	query := `
		UPDATE render_jobs
		SET status = $1, error_message = $2, finished_at = $3, attempts = attempts + 1
		WHERE id = $4
	`
	_, err := db.ExecContext(ctx, query, models.RenderStatusFailed, errorMessage, time.Now(), id)
	return err
}

// SetRenderJobResponse stores the completed render response alongside the
// terminal status.
func (db *DB) SetRenderJobResponse(ctx context.Context, id uuid.UUID, response models.JSONB) error {
	query := `
		UPDATE render_jobs
		SET status = $1, response = $2, finished_at = $3
		WHERE id = $4
	`
	_, err := db.ExecContext(ctx, query, models.RenderStatusSucceeded, response, time.Now(), id)
	return err
}
