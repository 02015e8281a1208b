package api

import (
	"encoding/json"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/tanmayb/cinerender/internal/db"
	"github.com/tanmayb/cinerender/internal/models"
	"github.com/tanmayb/cinerender/internal/queue"
	"github.com/tanmayb/cinerender/internal/storage"
)

type Handler struct {
	db      *db.DB
	queue   *queue.Queue
	storage *storage.Store
}

func NewHandler(database *db.DB, q *queue.Queue, store *storage.Store) *Handler {
	return &Handler{
		db:      database,
		queue:   q,
		storage: store,
	}
}

// CreateRender handles POST /v1/renders. The request body is the full render
// contract (legacy flat payloads are upgraded during decode). Schema
// validation happens here so the caller gets a 400 immediately; filesystem
// and limit checks run in the worker with the same error category.
func (h *Handler) CreateRender(w http.ResponseWriter, r *http.Request) {
	var req models.RenderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	req.Normalize()
	if err := req.Validate(); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	payload, err := json.Marshal(&req)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "Failed to encode request")
		return
	}

	jobID := uuid.New()
	job := &models.RenderJob{
		ID:        jobID,
		RequestID: req.RequestID,
		Type:      "render",
		Status:    models.RenderStatusQueued,
	}

	if err := h.db.CreateRenderJob(r.Context(), job); err != nil {
		respondError(w, http.StatusInternalServerError, "Failed to create job")
		return
	}

	if err := h.queue.EnqueueRender(r.Context(), jobID, payload); err != nil {
		respondError(w, http.StatusInternalServerError, "Failed to enqueue job")
		return
	}

	respondJSON(w, http.StatusAccepted, models.CreateRenderResponse{
		JobID:     jobID,
		RequestID: req.RequestID,
		Status:    models.RenderStatusQueued,
	})
}

// Generate handles POST /v1/generate: placeholder assets are built from a
// topic and the result is rendered like any other request.
func (h *Handler) Generate(w http.ResponseWriter, r *http.Request) {
	var payload models.GeneratePayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	payload.Normalize()

	data, err := json.Marshal(&payload)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "Failed to encode request")
		return
	}

	jobID := uuid.New()
	job := &models.RenderJob{
		ID:        jobID,
		RequestID: "pending",
		Type:      "generate",
		Status:    models.RenderStatusQueued,
	}

	if err := h.db.CreateRenderJob(r.Context(), job); err != nil {
		respondError(w, http.StatusInternalServerError, "Failed to create job")
		return
	}

	if err := h.queue.EnqueueGenerate(r.Context(), jobID, data); err != nil {
		respondError(w, http.StatusInternalServerError, "Failed to enqueue job")
		return
	}

	respondJSON(w, http.StatusAccepted, models.CreateRenderResponse{
		JobID:  jobID,
		Status: models.RenderStatusQueued,
	})
}

// GetRender handles GET /v1/renders/{id}. The stored response (if the job
// finished) is embedded verbatim.
func (h *Handler) GetRender(w http.ResponseWriter, r *http.Request) {
	jobID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, http.StatusBadRequest, "Invalid job ID")
		return
	}

	job, err := h.db.GetRenderJob(r.Context(), jobID)
	if err == db.ErrJobNotFound {
		respondError(w, http.StatusNotFound, "Render job not found")
		return
	}
	if err != nil {
		respondError(w, http.StatusInternalServerError, "Failed to load job")
		return
	}

	respondJSON(w, http.StatusOK, job)
}

// DownloadRender handles GET /v1/renders/{id}/download: streams the
// published artifact for a completed job.
func (h *Handler) DownloadRender(w http.ResponseWriter, r *http.Request) {
	jobID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, http.StatusBadRequest, "Invalid job ID")
		return
	}

	job, err := h.db.GetRenderJob(r.Context(), jobID)
	if err == db.ErrJobNotFound {
		respondError(w, http.StatusNotFound, "Render job not found")
		return
	}
	if err != nil {
		respondError(w, http.StatusInternalServerError, "Failed to load job")
		return
	}
	if job.Status != models.RenderStatusSucceeded {
		respondError(w, http.StatusConflict, "Render is not finished")
		return
	}

	outputPath := outputPathFromResponse(job.Response)
	if outputPath == "" {
		respondError(w, http.StatusNotFound, "Render has no output")
		return
	}

	// The stored path must resolve under the output root; anything else is
	// stale bookkeeping, not a file we serve.
	if filepath.Dir(outputPath) != h.storage.OutputRoot() {
		respondError(w, http.StatusNotFound, "Output is no longer available")
		return
	}
	if _, err := os.Stat(outputPath); err != nil {
		respondError(w, http.StatusNotFound, "Output is no longer available")
		return
	}

	w.Header().Set("Content-Disposition", "attachment; filename="+filepath.Base(outputPath))
	http.ServeFile(w, r, outputPath)
}

func outputPathFromResponse(response models.JSONB) string {
	if response == nil {
		return ""
	}
	raw, ok := response["output_video_path"]
	if !ok {
		return ""
	}
	path, ok := raw.(string)
	if !ok {
		return ""
	}
	return strings.TrimSpace(path)
}

func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{"error": message})
}

// Health check
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
