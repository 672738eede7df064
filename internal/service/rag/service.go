// Package rag retrieves grammar rules and example sentences that ground
// tutor responses in curated knowledge.
package rag

import (
	"context"
	"log/slog"

	"github.com/heartmarshall/langtutor-backend/internal/domain"
)

// Embedder computes dense vectors for texts.
type Embedder interface {
	Embed(ctx context.Context, texts []string) ([][]float32, error)
}

// DocumentStore indexes and searches embedded documents.
type DocumentStore interface {
	Add(ctx context.Context, collection domain.Collection, docs []domain.Document, embeddings [][]float32) error
	Search(ctx context.Context, collection domain.Collection, query []float32, languages []string, n int) ([]domain.RetrievedItem, error)
	Count(ctx context.Context, collection domain.Collection) (int, error)
	Ping(ctx context.Context) error
}

// Service wires the embedder and document store into the retrieval
// operations the tutor uses.
type Service struct {
	store DocumentStore
	embed Embedder
	log   *slog.Logger
}

func NewService(store DocumentStore, embed Embedder, logger *slog.Logger) *Service {
	return &Service{
		store: store,
		embed: embed,
		log:   logger.With("service", "rag"),
	}
}

// AddGrammarRule indexes a single grammar rule.
func (s *Service) AddGrammarRule(ctx context.Context, id, content, language string) error {
	vectors, err := s.embed.Embed(ctx, []string{content})
	if err != nil {
		return err
	}
	err = s.store.Add(ctx, domain.CollectionGrammar,
		[]domain.Document{{ID: id, Content: content, Language: language}}, vectors)
	if err != nil {
		return err
	}
	s.log.InfoContext(ctx, "grammar rule added", slog.String("id", id), slog.String("language", language))
	return nil
}

// HealthCheck reports whether the store and the embedding backend both
// answer. It never returns an error; degraded state is simply false.
func (s *Service) HealthCheck(ctx context.Context) bool {
	if err := s.store.Ping(ctx); err != nil {
		s.log.WarnContext(ctx, "store ping failed", slog.String("error", err.Error()))
		return false
	}
	vectors, err := s.embed.Embed(ctx, []string{"test"})
	if err != nil {
		s.log.WarnContext(ctx, "embedding check failed", slog.String("error", err.Error()))
		return false
	}
	return len(vectors) > 0 && len(vectors[0]) > 0
}
