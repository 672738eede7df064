package tutor

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/heartmarshall/langtutor-backend/internal/domain"
	"github.com/heartmarshall/langtutor-backend/internal/provider"
)

const (
	explainTemperature = 0.7
	explainMaxTokens   = 1500
	explainContextN    = 3
)

// ExplainGrammar produces a level-appropriate explanation of a grammar
// topic, grounded in the knowledge base where possible.
func (s *Service) ExplainGrammar(ctx context.Context, in ExplainInput) (string, error) {
	if err := in.Validate(); err != nil {
		return "", err
	}
	in.normalize()

	var contextStr string
	items, err := s.retriever.SearchGrammar(ctx, in.Topic, in.TargetLanguage, explainContextN)
	if err != nil {
		s.log.WarnContext(ctx, "grammar retrieval failed", slog.String("error", err.Error()))
	} else {
		contents := make([]string, len(items))
		for i, item := range items {
			contents[i] = item.Content
		}
		contextStr = strings.Join(contents, "\n")
	}

	systemPrompt := fmt.Sprintf(`You are an expert %s grammar teacher.
Explain grammar concepts clearly for %s learners.
Use examples and keep explanations appropriate for the level.

Reference information:
%s`, in.TargetLanguage, in.LearnerLevel, contextStr)

	messages := []domain.Message{
		{Role: domain.RoleSystem, Content: systemPrompt},
		{Role: domain.RoleUser, Content: "Please explain: " + in.Topic},
	}

	explanation, err := s.llm.Generate(ctx, provider.GenerationRequest{
		Messages:    messages,
		Temperature: explainTemperature,
		MaxTokens:   explainMaxTokens,
	})
	if err != nil {
		return "", fmt.Errorf("explain grammar: %w", err)
	}
	return explanation, nil
}
