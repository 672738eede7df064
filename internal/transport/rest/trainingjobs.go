package rest

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/google/uuid"

	"github.com/heartmarshall/langtutor-backend/internal/domain"
	"github.com/heartmarshall/langtutor-backend/internal/service/training"
)

// JobService is the fine-tuning API the handlers call into.
type JobService interface {
	CreateJob(in training.CreateJobInput) (*domain.TrainingJob, error)
	ListJobs() []domain.TrainingJob
	GetJob(id uuid.UUID) (*domain.TrainingJob, error)
	StartJob(id uuid.UUID) error
	CancelJob(id uuid.UUID) error
	DeleteJob(id uuid.UUID) error
	ListTrainedModels() ([]domain.TrainedModel, error)
	BaseModels() []domain.BaseModel
}

type TrainingJobHandler struct {
	jobs JobService
	log  *slog.Logger
}

func NewTrainingJobHandler(svc JobService, logger *slog.Logger) *TrainingJobHandler {
	return &TrainingJobHandler{jobs: svc, log: logger.With("handler", "trainingjobs")}
}

// ListJobs handles GET /api/training/jobs.
func (h *TrainingJobHandler) ListJobs(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"jobs": h.jobs.ListJobs()})
}

type createJobRequest struct {
	// raw so that a partial config keeps defaults for omitted fields
	Config    json.RawMessage `json:"config"`
	DatasetID *uuid.UUID      `json:"dataset_id"`
}

// CreateJob handles POST /api/training/jobs.
func (h *TrainingJobHandler) CreateJob(w http.ResponseWriter, r *http.Request) {
	var req createJobRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	cfg := domain.DefaultTrainingConfig()
	if len(req.Config) > 0 {
		if err := json.Unmarshal(req.Config, &cfg); err != nil {
			writeError(w, http.StatusBadRequest, "invalid training config")
			return
		}
	}

	job, err := h.jobs.CreateJob(training.CreateJobInput{
		Config:    &cfg,
		DatasetID: req.DatasetID,
	})
	if err != nil {
		handleError(w, r, h.log, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{
		"id":     job.ID,
		"status": job.Status,
		"config": job.Config,
	})
}

// GetJob handles GET /api/training/jobs/{jobID}.
func (h *TrainingJobHandler) GetJob(w http.ResponseWriter, r *http.Request) {
	id, ok := pathUUID(r, "jobID")
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid job id")
		return
	}
	job, err := h.jobs.GetJob(id)
	if err != nil {
		handleError(w, r, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, job)
}

// StartJob handles POST /api/training/jobs/{jobID}/start.
func (h *TrainingJobHandler) StartJob(w http.ResponseWriter, r *http.Request) {
	id, ok := pathUUID(r, "jobID")
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid job id")
		return
	}
	if err := h.jobs.StartJob(id); err != nil {
		if errors.Is(err, domain.ErrConflict) {
			writeError(w, http.StatusConflict, "cannot start job")
			return
		}
		handleError(w, r, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "message": "Job started"})
}

// CancelJob handles POST /api/training/jobs/{jobID}/cancel.
func (h *TrainingJobHandler) CancelJob(w http.ResponseWriter, r *http.Request) {
	id, ok := pathUUID(r, "jobID")
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid job id")
		return
	}
	if err := h.jobs.CancelJob(id); err != nil {
		if errors.Is(err, domain.ErrConflict) {
			writeError(w, http.StatusConflict, "cannot cancel job")
			return
		}
		handleError(w, r, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "message": "Job cancelled"})
}

// DeleteJob handles DELETE /api/training/jobs/{jobID}.
func (h *TrainingJobHandler) DeleteJob(w http.ResponseWriter, r *http.Request) {
	id, ok := pathUUID(r, "jobID")
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid job id")
		return
	}
	if err := h.jobs.DeleteJob(id); err != nil {
		if errors.Is(err, domain.ErrConflict) {
			writeError(w, http.StatusConflict, "cannot delete a running job")
			return
		}
		handleError(w, r, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, successResponse{Success: true})
}

// ListModels handles GET /api/training/models.
func (h *TrainingJobHandler) ListModels(w http.ResponseWriter, r *http.Request) {
	models, err := h.jobs.ListTrainedModels()
	if err != nil {
		handleError(w, r, h.log, err)
		return
	}
	if models == nil {
		models = []domain.TrainedModel{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"models": models})
}

// ListBaseModels handles GET /api/training/base-models.
func (h *TrainingJobHandler) ListBaseModels(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"models": h.jobs.BaseModels()})
}
