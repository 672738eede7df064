// Package provider defines the language-model provider abstraction used by
// the tutoring services and the factory that constructs configured providers.
package provider

import (
	"context"
	"fmt"

	"github.com/heartmarshall/langtutor-backend/internal/domain"
)

// GenerationRequest carries one completion request to a provider.
type GenerationRequest struct {
	Messages    []domain.Message
	Temperature float32
	MaxTokens   int
	// JSONMode asks the model to emit a single JSON object.
	JSONMode bool
}

// Chunk is one increment of a streaming response. A Chunk carries either
// content or a terminal error, never both.
type Chunk struct {
	Content string
	Err     error
}

// Provider generates tutor responses from a language model.
//
// GenerateStream returns a channel that is closed after the final chunk.
// A mid-stream failure is delivered as a Chunk with Err set, followed by
// channel close. HealthCheck must not panic and reports degraded state
// as false rather than an error.
type Provider interface {
	Generate(ctx context.Context, req GenerationRequest) (string, error)
	GenerateStream(ctx context.Context, req GenerationRequest) (<-chan Chunk, error)
	HealthCheck(ctx context.Context) bool
	Name() string
}

// Error wraps a provider failure with the provider's name so callers can
// log and report which backend failed.
type Error struct {
	Provider string
	Err      error
}

func (e *Error) Error() string {
	return fmt.Sprintf("provider %s: %v", e.Provider, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }
