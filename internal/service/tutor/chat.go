package tutor

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/heartmarshall/langtutor-backend/internal/domain"
	"github.com/heartmarshall/langtutor-backend/internal/provider"
)

const (
	chatTemperature = 0.7
	chatMaxTokens   = 1024
	chatContextN    = 3
)

// ChatResult is a completed chat turn.
type ChatResult struct {
	Response    string
	ContextUsed []string
}

// StreamResult is a chat turn being streamed. ContextUsed is known before
// the first chunk arrives.
type StreamResult struct {
	Chunks      <-chan provider.Chunk
	ContextUsed []string
}

// Chat generates a full tutor response for one learner message.
func (s *Service) Chat(ctx context.Context, in ChatInput) (*ChatResult, error) {
	messages, contextUsed, err := s.buildChatMessages(ctx, &in)
	if err != nil {
		return nil, err
	}

	response, err := s.llm.Generate(ctx, provider.GenerationRequest{
		Messages:    messages,
		Temperature: chatTemperature,
		MaxTokens:   chatMaxTokens,
	})
	if err != nil {
		return nil, fmt.Errorf("chat: %w", err)
	}

	if s.collector != nil {
		s.collector.CollectChat(ctx, in.Message, response, messages[0].Content, in.TargetLanguage)
	}

	return &ChatResult{Response: response, ContextUsed: contextUsed}, nil
}

// ChatStream generates a streaming tutor response. Prompt assembly is
// shared with Chat, so both paths see identical context.
func (s *Service) ChatStream(ctx context.Context, in ChatInput) (*StreamResult, error) {
	messages, contextUsed, err := s.buildChatMessages(ctx, &in)
	if err != nil {
		return nil, err
	}

	chunks, err := s.llm.GenerateStream(ctx, provider.GenerationRequest{
		Messages:    messages,
		Temperature: chatTemperature,
		MaxTokens:   chatMaxTokens,
	})
	if err != nil {
		return nil, fmt.Errorf("chat stream: %w", err)
	}

	return &StreamResult{Chunks: chunks, ContextUsed: contextUsed}, nil
}

// buildChatMessages validates the input and assembles the prompt:
// system prompt with retrieved context, trimmed history, new message.
func (s *Service) buildChatMessages(ctx context.Context, in *ChatInput) ([]domain.Message, []string, error) {
	if err := in.Validate(); err != nil {
		return nil, nil, err
	}
	in.normalize()

	var contextUsed []string
	if in.UseRAG {
		items, err := s.retriever.SearchAll(ctx, in.Message, in.TargetLanguage, chatContextN)
		if err != nil {
			// chat must keep working without the knowledge base
			s.log.WarnContext(ctx, "context retrieval failed", slog.String("error", err.Error()))
		} else {
			contextUsed = items
		}
	}

	systemPrompt := buildTutorSystemPrompt(in.TargetLanguage, in.LearnerLevel, contextUsed)

	history := trimHistory(in.History, historyTokenBudget)
	messages := make([]domain.Message, 0, len(history)+2)
	messages = append(messages, domain.Message{Role: domain.RoleSystem, Content: systemPrompt})
	messages = append(messages, history...)
	messages = append(messages, domain.Message{Role: domain.RoleUser, Content: in.Message})

	return messages, contextUsed, nil
}
