package tutor

import (
	"context"
	"fmt"
	"strings"

	"github.com/heartmarshall/langtutor-backend/internal/domain"
	"github.com/heartmarshall/langtutor-backend/internal/provider"
)

const (
	feedbackTemperature = 0.7
	feedbackMaxTokens   = 200
)

const correctFeedback = "¡Excelente! That's correct! 🎉"

// CheckAnswer compares the learner's answer with the expected one,
// ignoring case and surrounding whitespace. Wrong answers get model
// -generated feedback explaining the correct answer.
func (s *Service) CheckAnswer(ctx context.Context, userAnswer, correctAnswer, targetLanguage string) (bool, string, error) {
	if targetLanguage == "" {
		targetLanguage = defaultLanguage
	}

	normalize := func(v string) string { return strings.ToLower(strings.TrimSpace(v)) }
	if normalize(userAnswer) == normalize(correctAnswer) {
		return true, correctFeedback, nil
	}

	messages := []domain.Message{
		{
			Role: domain.RoleSystem,
			Content: fmt.Sprintf("You are a helpful %s tutor. Give brief, encouraging feedback when a student gives an incorrect answer. Be positive and explain the correct answer.",
				targetLanguage),
		},
		{
			Role: domain.RoleUser,
			Content: fmt.Sprintf("I answered '%s' but the correct answer was '%s'. Can you explain why?",
				userAnswer, correctAnswer),
		},
	}

	feedback, err := s.llm.Generate(ctx, provider.GenerationRequest{
		Messages:    messages,
		Temperature: feedbackTemperature,
		MaxTokens:   feedbackMaxTokens,
	})
	if err != nil {
		return false, "", fmt.Errorf("answer feedback: %w", err)
	}
	return false, feedback, nil
}
