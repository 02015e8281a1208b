// Package worker consumes render and generate jobs from redis and drives
// the pipeline, recording progress and results in postgres.
package worker

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/tanmayb/cinerender/internal/assets"
	"github.com/tanmayb/cinerender/internal/db"
	"github.com/tanmayb/cinerender/internal/models"
	"github.com/tanmayb/cinerender/internal/pipeline"
	"github.com/tanmayb/cinerender/internal/queue"
)

type Worker struct {
	db       *db.DB
	queue    *queue.Queue
	pipeline *pipeline.Pipeline
	builder  *assets.Builder
}

func New(database *db.DB, q *queue.Queue, p *pipeline.Pipeline, builder *assets.Builder) *Worker {
	return &Worker{
		db:       database,
		queue:    q,
		pipeline: p,
		builder:  builder,
	}
}

// Start begins processing jobs from both queues and blocks until the
// context is cancelled.
func (w *Worker) Start(ctx context.Context, concurrency int) {
	log.Printf("Worker started with concurrency: %d", concurrency)

	for i := 0; i < concurrency; i++ {
		go w.processQueue(ctx, queue.QueueRender, w.handleRender)
		go w.processQueue(ctx, queue.QueueGenerate, w.handleGenerate)
	}

	<-ctx.Done()
	log.Println("Worker shutting down...")
}

func (w *Worker) processQueue(ctx context.Context, queueName string, handler func(context.Context, *queue.Job) error) {
	for {
		select {
		case <-ctx.Done():
			return
		default:
			job, err := w.queue.Dequeue(ctx, queueName, 5*time.Second)
			if err != nil {
				if ctx.Err() != nil {
					return
				}
				log.Printf("Error dequeuing from %s: %v", queueName, err)
				continue
			}

			if job == nil {
				continue // No job available, retry
			}

			log.Printf("Processing job %s (type: %s)", job.ID, job.Type)

			if err := w.db.UpdateRenderJobStatus(ctx, job.ID, models.RenderStatusRunning); err != nil {
				log.Printf("Failed to update job status: %v", err)
			}

			if err := handler(ctx, job); err != nil {
				log.Printf("Job %s failed: %v", job.ID, err)
				if dbErr := w.db.UpdateRenderJobError(ctx, job.ID, err.Error()); dbErr != nil {
					log.Printf("Failed to record job error: %v", dbErr)
				}
			} else {
				log.Printf("Job %s completed successfully", job.ID)
			}
		}
	}
}

// handleRender decodes the full render contract from the job payload and
// runs the pipeline.
func (w *Worker) handleRender(ctx context.Context, job *queue.Job) error {
	var req models.RenderRequest
	if err := json.Unmarshal(job.Payload, &req); err != nil {
		return fmt.Errorf("decode render payload: %w", err)
	}
	return w.render(ctx, job, &req)
}

// handleGenerate builds placeholder assets for a topic, then renders the
// assembled request.
func (w *Worker) handleGenerate(ctx context.Context, job *queue.Job) error {
	if w.builder == nil {
		return fmt.Errorf("generation is not configured")
	}

	var payload models.GeneratePayload
	if err := json.Unmarshal(job.Payload, &payload); err != nil {
		return fmt.Errorf("decode generate payload: %w", err)
	}

	req, err := w.builder.Build(ctx, payload)
	if err != nil {
		return fmt.Errorf("build placeholder assets: %w", err)
	}
	return w.render(ctx, job, req)
}

func (w *Worker) render(ctx context.Context, job *queue.Job, req *models.RenderRequest) error {
	resp, err := w.pipeline.Render(ctx, req)
	if err != nil {
		return err
	}

	stored, err := responseJSONB(resp)
	if err != nil {
		return err
	}
	if err := w.db.SetRenderJobResponse(ctx, job.ID, stored); err != nil {
		return fmt.Errorf("store render response: %w", err)
	}
	return nil
}

// responseJSONB round-trips the response through JSON so the stored shape
// matches the wire contract exactly.
func responseJSONB(resp *models.RenderResponse) (models.JSONB, error) {
	data, err := json.Marshal(resp)
	if err != nil {
		return nil, fmt.Errorf("encode render response: %w", err)
	}
	var out models.JSONB
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, fmt.Errorf("decode render response: %w", err)
	}
	return out, nil
}
