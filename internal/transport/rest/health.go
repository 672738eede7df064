package rest

import (
	"context"
	"net/http"
)

// HealthChecker answers whether a dependency is usable right now.
type HealthChecker interface {
	HealthCheck(ctx context.Context) bool
}

type HealthHandler struct {
	providerName string
	llm          HealthChecker
	rag          HealthChecker
}

func NewHealthHandler(providerName string, llm, rag HealthChecker) *HealthHandler {
	return &HealthHandler{providerName: providerName, llm: llm, rag: rag}
}

type healthResponse struct {
	Status      string `json:"status"`
	LLMProvider string `json:"llm_provider"`
	LLMStatus   string `json:"llm_status"`
	RAGStatus   string `json:"rag_status"`
}

// Health handles GET /api/health. The endpoint itself always answers 200;
// per-dependency states are in the body.
func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	resp := healthResponse{
		Status:      "ok",
		LLMProvider: h.providerName,
		LLMStatus:   checkStatus(r.Context(), h.llm),
		RAGStatus:   checkStatus(r.Context(), h.rag),
	}
	writeJSON(w, http.StatusOK, resp)
}

func checkStatus(ctx context.Context, c HealthChecker) string {
	if c == nil {
		return "unknown"
	}
	if c.HealthCheck(ctx) {
		return "healthy"
	}
	return "unhealthy"
}
