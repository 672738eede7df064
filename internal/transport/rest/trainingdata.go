package rest

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/google/uuid"

	"github.com/heartmarshall/langtutor-backend/internal/domain"
	"github.com/heartmarshall/langtutor-backend/internal/service/trainingdata"
)

// DataService is the training data API the handlers call into.
type DataService interface {
	ListDatasets() []trainingdata.DatasetSummary
	GetDataset(id uuid.UUID) (*domain.TrainingDataset, error)
	CreateDataset(name, description string) (*domain.TrainingDataset, error)
	DeleteDataset(id uuid.UUID) error
	AddExample(in trainingdata.AddExampleInput) (*domain.TrainingExample, error)
	UpdateExample(datasetID, exampleID uuid.UUID, in trainingdata.UpdateExampleInput) (*domain.TrainingExample, error)
	DeleteExample(datasetID, exampleID uuid.UUID) error
	ApproveExample(datasetID, exampleID uuid.UUID, approved bool) error
	RateExample(datasetID, exampleID uuid.UUID, rating int) (int, error)
	Export(in trainingdata.ExportInput) (string, error)
}

type TrainingDataHandler struct {
	data DataService
	log  *slog.Logger
}

func NewTrainingDataHandler(svc DataService, logger *slog.Logger) *TrainingDataHandler {
	return &TrainingDataHandler{data: svc, log: logger.With("handler", "trainingdata")}
}

// pathUUID parses one path parameter as a UUID.
func pathUUID(r *http.Request, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(r.PathValue(name))
	return id, err == nil
}

type successResponse struct {
	Success bool `json:"success"`
}

// ListDatasets handles GET /api/training/datasets.
func (h *TrainingDataHandler) ListDatasets(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"datasets": h.data.ListDatasets()})
}

type createDatasetRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

// CreateDataset handles POST /api/training/datasets.
func (h *TrainingDataHandler) CreateDataset(w http.ResponseWriter, r *http.Request) {
	var req createDatasetRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	ds, err := h.data.CreateDataset(req.Name, req.Description)
	if err != nil {
		handleError(w, r, h.log, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{
		"id":          ds.ID,
		"name":        ds.Name,
		"description": ds.Description,
	})
}

// GetDataset handles GET /api/training/datasets/{datasetID}.
func (h *TrainingDataHandler) GetDataset(w http.ResponseWriter, r *http.Request) {
	id, ok := pathUUID(r, "datasetID")
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid dataset id")
		return
	}

	ds, err := h.data.GetDataset(id)
	if err != nil {
		handleError(w, r, h.log, err)
		return
	}
	examples := ds.Examples
	if examples == nil {
		examples = []domain.TrainingExample{}
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"id":             ds.ID,
		"name":           ds.Name,
		"description":    ds.Description,
		"example_count":  ds.ExampleCount(),
		"approved_count": ds.ApprovedCount(),
		"examples":       examples,
	})
}

// DeleteDataset handles DELETE /api/training/datasets/{datasetID}.
func (h *TrainingDataHandler) DeleteDataset(w http.ResponseWriter, r *http.Request) {
	id, ok := pathUUID(r, "datasetID")
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid dataset id")
		return
	}
	if err := h.data.DeleteDataset(id); err != nil {
		handleError(w, r, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, successResponse{Success: true})
}

type addExampleRequest struct {
	UserInput       string `json:"user_input"`
	AssistantOutput string `json:"assistant_output"`
	SystemPrompt    string `json:"system_prompt"`
	Category        string `json:"category"`
	Language        string `json:"language"`
	IsApproved      bool   `json:"is_approved"`
}

// AddExample handles POST /api/training/datasets/{datasetID}/examples.
func (h *TrainingDataHandler) AddExample(w http.ResponseWriter, r *http.Request) {
	id, ok := pathUUID(r, "datasetID")
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid dataset id")
		return
	}
	var req addExampleRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	example, err := h.data.AddExample(trainingdata.AddExampleInput{
		DatasetID:       id,
		SystemPrompt:    req.SystemPrompt,
		UserInput:       req.UserInput,
		AssistantOutput: req.AssistantOutput,
		Category:        req.Category,
		Language:        req.Language,
		IsApproved:      req.IsApproved,
	})
	if err != nil {
		handleError(w, r, h.log, err)
		return
	}
	writeJSON(w, http.StatusCreated, example)
}

type updateExampleRequest struct {
	UserInput       *string `json:"user_input"`
	AssistantOutput *string `json:"assistant_output"`
	SystemPrompt    *string `json:"system_prompt"`
	Category        *string `json:"category"`
	IsApproved      *bool   `json:"is_approved"`
	QualityRating   *int    `json:"quality_rating"`
}

// UpdateExample handles PUT /api/training/datasets/{datasetID}/examples/{exampleID}.
func (h *TrainingDataHandler) UpdateExample(w http.ResponseWriter, r *http.Request) {
	datasetID, ok := pathUUID(r, "datasetID")
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid dataset id")
		return
	}
	exampleID, ok := pathUUID(r, "exampleID")
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid example id")
		return
	}
	var req updateExampleRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	example, err := h.data.UpdateExample(datasetID, exampleID, trainingdata.UpdateExampleInput{
		UserInput:       req.UserInput,
		AssistantOutput: req.AssistantOutput,
		SystemPrompt:    req.SystemPrompt,
		Category:        req.Category,
		IsApproved:      req.IsApproved,
		QualityRating:   req.QualityRating,
	})
	if err != nil {
		handleError(w, r, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, example)
}

// DeleteExample handles DELETE /api/training/datasets/{datasetID}/examples/{exampleID}.
func (h *TrainingDataHandler) DeleteExample(w http.ResponseWriter, r *http.Request) {
	datasetID, ok := pathUUID(r, "datasetID")
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid dataset id")
		return
	}
	exampleID, ok := pathUUID(r, "exampleID")
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid example id")
		return
	}
	if err := h.data.DeleteExample(datasetID, exampleID); err != nil {
		handleError(w, r, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, successResponse{Success: true})
}

// ApproveExample handles POST .../examples/{exampleID}/approve. The approved
// query parameter defaults to true; approved=false revokes.
func (h *TrainingDataHandler) ApproveExample(w http.ResponseWriter, r *http.Request) {
	datasetID, ok := pathUUID(r, "datasetID")
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid dataset id")
		return
	}
	exampleID, ok := pathUUID(r, "exampleID")
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid example id")
		return
	}

	approved := true
	if raw := r.URL.Query().Get("approved"); raw != "" {
		parsed, err := strconv.ParseBool(raw)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid approved value")
			return
		}
		approved = parsed
	}

	if err := h.data.ApproveExample(datasetID, exampleID, approved); err != nil {
		handleError(w, r, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "approved": approved})
}

// RateExample handles POST .../examples/{exampleID}/rate?rating=N.
func (h *TrainingDataHandler) RateExample(w http.ResponseWriter, r *http.Request) {
	datasetID, ok := pathUUID(r, "datasetID")
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid dataset id")
		return
	}
	exampleID, ok := pathUUID(r, "exampleID")
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid example id")
		return
	}
	rating, err := strconv.Atoi(r.URL.Query().Get("rating"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "rating must be an integer between 1 and 5")
		return
	}

	stored, err := h.data.RateExample(datasetID, exampleID, rating)
	if err != nil {
		handleError(w, r, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "rating": stored})
}

// Export handles POST /api/training/datasets/export.
func (h *TrainingDataHandler) Export(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	in := trainingdata.ExportInput{
		Format:       domain.ExportFormat(q.Get("format")),
		OnlyApproved: true,
	}
	if raw := q.Get("only_approved"); raw != "" {
		parsed, err := strconv.ParseBool(raw)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid only_approved value")
			return
		}
		in.OnlyApproved = parsed
	}
	if raw := q.Get("dataset_id"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid dataset id")
			return
		}
		in.DatasetID = &id
	}

	path, err := h.data.Export(in)
	if err != nil {
		handleError(w, r, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "file_path": path})
}
