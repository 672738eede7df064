package tutor

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/heartmarshall/langtutor-backend/internal/domain"
	"github.com/heartmarshall/langtutor-backend/internal/provider"
)

const (
	correctionTemperature = 0.3
	correctionMaxTokens   = 2048
)

// CorrectText proofreads the text and reports every error found. A
// response the model fails to format as JSON degrades to "no errors
// found" rather than failing the request.
func (s *Service) CorrectText(ctx context.Context, in CorrectionInput) (*domain.CorrectionResult, error) {
	in.normalize()

	messages := []domain.Message{
		{
			Role:    domain.RoleSystem,
			Content: renderPrompt(correctionSystemPrompt, map[string]string{"language": in.TargetLanguage}),
		},
		{
			Role:    domain.RoleUser,
			Content: fmt.Sprintf("Please check and correct this %s text:\n\n%s", in.TargetLanguage, in.Text),
		},
	}

	response, err := s.llm.Generate(ctx, provider.GenerationRequest{
		Messages:    messages,
		Temperature: correctionTemperature,
		MaxTokens:   correctionMaxTokens,
		JSONMode:    true,
	})
	if err != nil {
		return nil, fmt.Errorf("correct text: %w", err)
	}

	var parsed struct {
		CorrectedText string `json:"corrected_text"`
		Errors        []struct {
			Original    string `json:"original"`
			Corrected   string `json:"corrected"`
			ErrorType   string `json:"error_type"`
			Explanation string `json:"explanation"`
			Position    *int   `json:"position"`
		} `json:"errors"`
	}
	if err := json.Unmarshal([]byte(extractJSON(response)), &parsed); err != nil {
		s.log.ErrorContext(ctx, "correction response is not valid JSON", slog.String("error", err.Error()))
		return &domain.CorrectionResult{
			OriginalText:  in.Text,
			CorrectedText: in.Text,
		}, nil
	}

	result := &domain.CorrectionResult{
		OriginalText:  in.Text,
		CorrectedText: parsed.CorrectedText,
	}
	if result.CorrectedText == "" {
		result.CorrectedText = in.Text
	}
	for _, e := range parsed.Errors {
		errorType := e.ErrorType
		if errorType == "" {
			errorType = "grammar"
		}
		result.Errors = append(result.Errors, domain.CorrectionError{
			Original:    e.Original,
			Corrected:   e.Corrected,
			ErrorType:   errorType,
			Explanation: e.Explanation,
			Position:    e.Position,
		})
	}
	return result, nil
}
