package rag

import (
	"context"
	"fmt"

	"github.com/heartmarshall/langtutor-backend/internal/domain"
)

// SearchGrammar finds grammar rules relevant to the query. When language
// is set, results are restricted to that language plus language-agnostic
// rules.
func (s *Service) SearchGrammar(ctx context.Context, query, language string, n int) ([]domain.RetrievedItem, error) {
	var languages []string
	if language != "" {
		languages = []string{language, domain.LanguageGeneral}
	}
	return s.search(ctx, domain.CollectionGrammar, query, languages, n)
}

// SearchExamples finds example sentences relevant to the query. When
// language is set, only that exact language matches.
func (s *Service) SearchExamples(ctx context.Context, query, language string, n int) ([]domain.RetrievedItem, error) {
	var languages []string
	if language != "" {
		languages = []string{language}
	}
	return s.search(ctx, domain.CollectionExamples, query, languages, n)
}

// SearchAll queries grammar and examples and returns labeled context
// strings ready to inject into a prompt. Examples are fetched at half the
// requested depth, with a floor of one.
func (s *Service) SearchAll(ctx context.Context, query, language string, n int) ([]string, error) {
	grammar, err := s.SearchGrammar(ctx, query, language, n)
	if err != nil {
		return nil, err
	}

	half := n / 2
	if half < 1 {
		half = 1
	}
	examples, err := s.SearchExamples(ctx, query, language, half)
	if err != nil {
		return nil, err
	}

	out := make([]string, 0, len(grammar)+len(examples))
	for _, g := range grammar {
		out = append(out, "Grammar: "+g.Content)
	}
	for _, e := range examples {
		out = append(out, "Example: "+e.Content)
	}
	return out, nil
}

func (s *Service) search(ctx context.Context, collection domain.Collection, query string, languages []string, n int) ([]domain.RetrievedItem, error) {
	vectors, err := s.embed.Embed(ctx, []string{query})
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}
	if len(vectors) == 0 {
		return nil, fmt.Errorf("embed query: no vector returned")
	}
	items, err := s.store.Search(ctx, collection, vectors[0], languages, n)
	if err != nil {
		return nil, fmt.Errorf("search %s: %w", collection, err)
	}
	return items, nil
}
