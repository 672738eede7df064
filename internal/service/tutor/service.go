// Package tutor orchestrates the language-tutoring conversations: chat,
// grammar correction, exercise generation, and grammar explanations.
package tutor

import (
	"context"
	"log/slog"

	"github.com/heartmarshall/langtutor-backend/internal/domain"
	"github.com/heartmarshall/langtutor-backend/internal/provider"
)

// LLMProvider generates model responses; implemented by the configured
// provider adapter.
type LLMProvider interface {
	Generate(ctx context.Context, req provider.GenerationRequest) (string, error)
	GenerateStream(ctx context.Context, req provider.GenerationRequest) (<-chan provider.Chunk, error)
}

// Retriever supplies knowledge-base context for prompts.
type Retriever interface {
	SearchAll(ctx context.Context, query, language string, n int) ([]string, error)
	SearchGrammar(ctx context.Context, query, language string, n int) ([]domain.RetrievedItem, error)
}

// Collector receives finished chat exchanges for the training corpus.
// A nil collector disables collection.
type Collector interface {
	CollectChat(ctx context.Context, userMessage, assistantReply, systemPrompt, language string)
}

// Service implements the tutoring operations.
type Service struct {
	llm       LLMProvider
	retriever Retriever
	collector Collector
	log       *slog.Logger
}

func NewService(llm LLMProvider, retriever Retriever, collector Collector, logger *slog.Logger) *Service {
	return &Service{
		llm:       llm,
		retriever: retriever,
		collector: collector,
		log:       logger.With("service", "tutor"),
	}
}
