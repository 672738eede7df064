package trainingdata

import (
	"context"
	"log/slog"

	"github.com/google/uuid"
)

// CollectChat stores a chat exchange as an unapproved example in the oldest
// dataset. Collection is best-effort: a failure is logged, never surfaced,
// so it can run inline on the chat path.
func (s *Service) CollectChat(ctx context.Context, userMessage, assistantResponse, systemPrompt, language string) {
	_, err := s.AddExample(AddExampleInput{
		DatasetID:       uuid.Nil,
		SystemPrompt:    systemPrompt,
		UserInput:       userMessage,
		AssistantOutput: assistantResponse,
		Category:        "chat",
		Language:        language,
		IsApproved:      false,
	})
	if err != nil {
		s.log.WarnContext(ctx, "chat collection failed", slog.String("error", err.Error()))
	}
}
