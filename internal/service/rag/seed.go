package rag

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/sourcegraph/conc"

	"github.com/heartmarshall/langtutor-backend/internal/domain"
)

// Seed populates the knowledge base with the starter grammar rules and
// example sentences. Seeding is skipped when grammar documents already
// exist, so restarts do not re-embed the corpus.
func (s *Service) Seed(ctx context.Context) error {
	n, err := s.store.Count(ctx, domain.CollectionGrammar)
	if err != nil {
		return fmt.Errorf("seed: count grammar: %w", err)
	}
	if n > 0 {
		s.log.DebugContext(ctx, "knowledge base already seeded", slog.Int("grammar_docs", n))
		return nil
	}

	var (
		wg          conc.WaitGroup
		grammarErr  error
		examplesErr error
	)
	wg.Go(func() {
		grammarErr = s.indexDocuments(ctx, domain.CollectionGrammar, seedGrammarRules)
	})
	wg.Go(func() {
		examplesErr = s.indexDocuments(ctx, domain.CollectionExamples, seedExamples)
	})
	wg.Wait()

	if grammarErr != nil {
		return fmt.Errorf("seed: grammar: %w", grammarErr)
	}
	if examplesErr != nil {
		return fmt.Errorf("seed: examples: %w", examplesErr)
	}

	s.log.InfoContext(ctx, "knowledge base seeded",
		slog.Int("grammar_rules", len(seedGrammarRules)),
		slog.Int("examples", len(seedExamples)))
	return nil
}

func (s *Service) indexDocuments(ctx context.Context, collection domain.Collection, docs []domain.Document) error {
	texts := make([]string, len(docs))
	for i, d := range docs {
		texts[i] = d.Content
	}
	vectors, err := s.embed.Embed(ctx, texts)
	if err != nil {
		return err
	}
	return s.store.Add(ctx, collection, docs, vectors)
}
