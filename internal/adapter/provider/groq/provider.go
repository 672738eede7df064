// Package groq implements the language-model provider backed by Groq's
// OpenAI-compatible chat completion API.
package groq

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"

	openai "github.com/sashabaranov/go-openai"

	"github.com/heartmarshall/langtutor-backend/internal/config"
	"github.com/heartmarshall/langtutor-backend/internal/domain"
	"github.com/heartmarshall/langtutor-backend/internal/provider"
)

const providerName = "groq"

// Provider calls a hosted OpenAI-compatible chat completion endpoint.
type Provider struct {
	client *openai.Client
	model  string
	log    *slog.Logger
}

// New creates a Provider from configuration. The base URL may point at any
// OpenAI-compatible endpoint; Groq is the default.
func New(cfg config.GroqConfig, logger *slog.Logger) *Provider {
	clientCfg := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientCfg.BaseURL = cfg.BaseURL
	}
	if cfg.Timeout > 0 {
		clientCfg.HTTPClient = &http.Client{Timeout: cfg.Timeout}
	}
	return &Provider{
		client: openai.NewClientWithConfig(clientCfg),
		model:  cfg.Model,
		log:    logger.With("adapter", providerName),
	}
}

func (p *Provider) Name() string { return providerName }

// Generate performs a blocking completion and returns the full response text.
func (p *Provider) Generate(ctx context.Context, req provider.GenerationRequest) (string, error) {
	resp, err := p.client.CreateChatCompletion(ctx, p.buildRequest(req, false))
	if err != nil {
		p.log.ErrorContext(ctx, "completion failed", slog.String("error", err.Error()))
		return "", &provider.Error{Provider: providerName, Err: err}
	}
	if len(resp.Choices) == 0 {
		return "", &provider.Error{Provider: providerName, Err: errors.New("empty choices in response")}
	}
	return resp.Choices[0].Message.Content, nil
}

// GenerateStream starts a streaming completion. Chunks are delivered on the
// returned channel; the channel is closed after the final chunk or after a
// chunk carrying a mid-stream error.
func (p *Provider) GenerateStream(ctx context.Context, req provider.GenerationRequest) (<-chan provider.Chunk, error) {
	stream, err := p.client.CreateChatCompletionStream(ctx, p.buildRequest(req, true))
	if err != nil {
		p.log.ErrorContext(ctx, "stream open failed", slog.String("error", err.Error()))
		return nil, &provider.Error{Provider: providerName, Err: err}
	}

	out := make(chan provider.Chunk)
	go func() {
		defer close(out)
		defer stream.Close()

		for {
			resp, err := stream.Recv()
			if errors.Is(err, io.EOF) {
				return
			}
			if err != nil {
				select {
				case out <- provider.Chunk{Err: &provider.Error{Provider: providerName, Err: err}}:
				case <-ctx.Done():
				}
				return
			}
			if len(resp.Choices) == 0 {
				continue
			}
			delta := resp.Choices[0].Delta.Content
			if delta == "" {
				continue
			}
			select {
			case out <- provider.Chunk{Content: delta}:
			case <-ctx.Done():
				return
			}
		}
	}()
	return out, nil
}

// HealthCheck issues a minimal completion to verify the endpoint is
// reachable and the key is valid.
func (p *Provider) HealthCheck(ctx context.Context) bool {
	resp, err := p.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:     p.model,
		Messages:  []openai.ChatCompletionMessage{{Role: openai.ChatMessageRoleUser, Content: "Hi"}},
		MaxTokens: 5,
	})
	if err != nil {
		p.log.WarnContext(ctx, "health check failed", slog.String("error", err.Error()))
		return false
	}
	return len(resp.Choices) > 0
}

func (p *Provider) buildRequest(req provider.GenerationRequest, stream bool) openai.ChatCompletionRequest {
	messages := make([]openai.ChatCompletionMessage, 0, len(req.Messages))
	for _, m := range req.Messages {
		messages = append(messages, openai.ChatCompletionMessage{
			Role:    roleFor(m.Role),
			Content: m.Content,
		})
	}

	out := openai.ChatCompletionRequest{
		Model:       p.model,
		Messages:    messages,
		Temperature: req.Temperature,
		MaxTokens:   req.MaxTokens,
		Stream:      stream,
	}
	if req.JSONMode {
		out.ResponseFormat = &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		}
	}
	return out
}

func roleFor(r domain.Role) string {
	switch r {
	case domain.RoleSystem:
		return openai.ChatMessageRoleSystem
	case domain.RoleAssistant:
		return openai.ChatMessageRoleAssistant
	default:
		return openai.ChatMessageRoleUser
	}
}
