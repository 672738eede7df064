package rest

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"github.com/heartmarshall/langtutor-backend/internal/domain"
	"github.com/heartmarshall/langtutor-backend/internal/service/tutor"
)

type CorrectionService interface {
	CorrectText(ctx context.Context, in tutor.CorrectionInput) (*domain.CorrectionResult, error)
}

type CorrectionHandler struct {
	tutor CorrectionService
	log   *slog.Logger
}

func NewCorrectionHandler(svc CorrectionService, logger *slog.Logger) *CorrectionHandler {
	return &CorrectionHandler{tutor: svc, log: logger.With("handler", "correction")}
}

type correctionRequest struct {
	Text           string `json:"text"`
	TargetLanguage string `json:"target_language"`
}

type correctionResponse struct {
	OriginalText  string                   `json:"original_text"`
	CorrectedText string                   `json:"corrected_text"`
	Errors        []domain.CorrectionError `json:"errors"`
	HasErrors     bool                     `json:"has_errors"`
}

// Correct handles POST /api/correct/. Blank input short-circuits to an
// empty result without waking the model.
func (h *CorrectionHandler) Correct(w http.ResponseWriter, r *http.Request) {
	var req correctionRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if strings.TrimSpace(req.Text) == "" {
		writeJSON(w, http.StatusOK, correctionResponse{
			OriginalText:  req.Text,
			CorrectedText: req.Text,
			Errors:        []domain.CorrectionError{},
		})
		return
	}

	result, err := h.tutor.CorrectText(r.Context(), tutor.CorrectionInput{
		Text:           req.Text,
		TargetLanguage: req.TargetLanguage,
	})
	if err != nil {
		handleError(w, r, h.log, err)
		return
	}

	errs := result.Errors
	if errs == nil {
		errs = []domain.CorrectionError{}
	}
	writeJSON(w, http.StatusOK, correctionResponse{
		OriginalText:  result.OriginalText,
		CorrectedText: result.CorrectedText,
		Errors:        errs,
		HasErrors:     result.HasErrors(),
	})
}
