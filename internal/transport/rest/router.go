package rest

import "net/http"

// Handlers bundles everything the router mounts.
type Handlers struct {
	Chat       *ChatHandler
	Correction *CorrectionHandler
	Exercises  *ExerciseHandler
	Data       *TrainingDataHandler
	Jobs       *TrainingJobHandler
	Health     *HealthHandler
}

// NewRouter builds the route table. Middleware is applied by the caller.
func NewRouter(h Handlers) *http.ServeMux {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /{$}", apiInfo)

	mux.HandleFunc("POST /api/chat/{$}", h.Chat.Chat)
	mux.HandleFunc("POST /api/chat/stream", h.Chat.ChatStream)
	mux.HandleFunc("POST /api/chat/explain", h.Chat.Explain)

	mux.HandleFunc("POST /api/correct/{$}", h.Correction.Correct)

	mux.HandleFunc("GET /api/exercises/topics", h.Exercises.Topics)
	mux.HandleFunc("POST /api/exercises/generate", h.Exercises.Generate)
	mux.HandleFunc("POST /api/exercises/check", h.Exercises.Check)
	mux.HandleFunc("GET /api/exercises/types", h.Exercises.Types)
	mux.HandleFunc("GET /api/exercises/levels", h.Exercises.Levels)

	mux.HandleFunc("GET /api/training/datasets", h.Data.ListDatasets)
	mux.HandleFunc("POST /api/training/datasets", h.Data.CreateDataset)
	mux.HandleFunc("POST /api/training/datasets/export", h.Data.Export)
	mux.HandleFunc("GET /api/training/datasets/{datasetID}", h.Data.GetDataset)
	mux.HandleFunc("DELETE /api/training/datasets/{datasetID}", h.Data.DeleteDataset)
	mux.HandleFunc("POST /api/training/datasets/{datasetID}/examples", h.Data.AddExample)
	mux.HandleFunc("PUT /api/training/datasets/{datasetID}/examples/{exampleID}", h.Data.UpdateExample)
	mux.HandleFunc("DELETE /api/training/datasets/{datasetID}/examples/{exampleID}", h.Data.DeleteExample)
	mux.HandleFunc("POST /api/training/datasets/{datasetID}/examples/{exampleID}/approve", h.Data.ApproveExample)
	mux.HandleFunc("POST /api/training/datasets/{datasetID}/examples/{exampleID}/rate", h.Data.RateExample)

	mux.HandleFunc("GET /api/training/jobs", h.Jobs.ListJobs)
	mux.HandleFunc("POST /api/training/jobs", h.Jobs.CreateJob)
	mux.HandleFunc("GET /api/training/jobs/{jobID}", h.Jobs.GetJob)
	mux.HandleFunc("DELETE /api/training/jobs/{jobID}", h.Jobs.DeleteJob)
	mux.HandleFunc("POST /api/training/jobs/{jobID}/start", h.Jobs.StartJob)
	mux.HandleFunc("POST /api/training/jobs/{jobID}/cancel", h.Jobs.CancelJob)
	mux.HandleFunc("GET /api/training/models", h.Jobs.ListModels)
	mux.HandleFunc("GET /api/training/base-models", h.Jobs.ListBaseModels)

	mux.HandleFunc("GET /api/health", h.Health.Health)

	return mux
}

func apiInfo(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"name":    "Foreign Language Tutor API",
		"version": "1.0.0",
		"health":  "/api/health",
	})
}
