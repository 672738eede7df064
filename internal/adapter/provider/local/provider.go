// Package local implements the language-model provider backed by a GGUF
// model served through a local llama.cpp runtime.
package local

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/heartmarshall/langtutor-backend/internal/config"
	"github.com/heartmarshall/langtutor-backend/internal/domain"
	"github.com/heartmarshall/langtutor-backend/internal/provider"
)

const providerName = "local"

var chatStopTokens = []string{"<|im_end|>", "<|im_start|>"}

// Provider serves completions from a local GGUF model. The model is
// loaded lazily on first use and all inference is serialized through a
// single lock, so only one generation runs at a time.
type Provider struct {
	modelPath     string
	modelName     string
	contextLength int
	gpuLayers     int

	engine *engineClient
	log    *slog.Logger

	mu     sync.Mutex
	loaded bool
}

// New creates a Provider from configuration. The model file is not
// touched until the first generation or health check.
func New(cfg config.LocalConfig, logger *slog.Logger) *Provider {
	base := filepath.Base(cfg.ModelPath)
	name := strings.TrimSuffix(base, filepath.Ext(base))
	return &Provider{
		modelPath:     cfg.ModelPath,
		modelName:     name,
		contextLength: cfg.ContextLength,
		gpuLayers:     cfg.GPULayers,
		engine:        newEngineClient(cfg.EngineURL),
		log:           logger.With("adapter", providerName),
	}
}

func (p *Provider) Name() string { return providerName }

// Generate performs a blocking completion. Requests are serialized; a
// caller blocks until earlier generations finish.
func (p *Provider) Generate(ctx context.Context, req provider.GenerationRequest) (string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if err := p.ensureLoaded(ctx); err != nil {
		return "", &provider.Error{Provider: providerName, Err: err}
	}

	out, err := p.engine.Generate(ctx, p.buildRequest(req))
	if err != nil {
		p.log.ErrorContext(ctx, "generation failed", slog.String("error", err.Error()))
		return "", &provider.Error{Provider: providerName, Err: err}
	}
	return strings.TrimSpace(out), nil
}

// GenerateStream starts a streaming completion. The inference lock is
// held until the stream finishes, keeping generations serialized.
func (p *Provider) GenerateStream(ctx context.Context, req provider.GenerationRequest) (<-chan provider.Chunk, error) {
	p.mu.Lock()

	if err := p.ensureLoaded(ctx); err != nil {
		p.mu.Unlock()
		return nil, &provider.Error{Provider: providerName, Err: err}
	}

	out := make(chan provider.Chunk)
	go func() {
		defer p.mu.Unlock()
		defer close(out)

		err := p.engine.GenerateStream(ctx, p.buildRequest(req), func(token string) error {
			select {
			case out <- provider.Chunk{Content: token}:
				return nil
			case <-ctx.Done():
				return ctx.Err()
			}
		})
		if err != nil && ctx.Err() == nil {
			p.log.ErrorContext(ctx, "stream failed", slog.String("error", err.Error()))
			select {
			case out <- provider.Chunk{Err: &provider.Error{Provider: providerName, Err: err}}:
			case <-ctx.Done():
			}
		}
	}()
	return out, nil
}

// HealthCheck verifies the model file exists and the runtime can serve it.
func (p *Provider) HealthCheck(ctx context.Context) bool {
	if _, err := os.Stat(p.modelPath); err != nil {
		p.log.WarnContext(ctx, "model file missing", slog.String("path", p.modelPath))
		return false
	}
	if err := p.engine.Ping(ctx); err != nil {
		p.log.WarnContext(ctx, "runtime unreachable", slog.String("error", err.Error()))
		return false
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if err := p.ensureLoaded(ctx); err != nil {
		p.log.WarnContext(ctx, "health check failed", slog.String("error", err.Error()))
		return false
	}
	return true
}

// ensureLoaded registers the model with the runtime once. Callers must
// hold p.mu.
func (p *Provider) ensureLoaded(ctx context.Context) error {
	if p.loaded {
		return nil
	}

	if _, err := os.Stat(p.modelPath); err != nil {
		return fmt.Errorf("model file %s: %w", p.modelPath, err)
	}

	p.log.InfoContext(ctx, "loading model", slog.String("path", p.modelPath))
	if err := p.engine.CreateModel(ctx, p.modelName, p.modelPath); err != nil {
		return err
	}
	p.loaded = true
	p.log.InfoContext(ctx, "model loaded", slog.String("model", p.modelName))
	return nil
}

func (p *Provider) buildRequest(req provider.GenerationRequest) generateRequest {
	return generateRequest{
		Model:  p.modelName,
		Prompt: formatChatML(req.Messages, req.JSONMode),
		Raw:    true,
		Options: generateOptions{
			Temperature: req.Temperature,
			NumPredict:  req.MaxTokens,
			NumCtx:      p.contextLength,
			NumGPU:      p.gpuLayers,
			Stop:        chatStopTokens,
		},
	}
}

// formatChatML flattens a conversation into the ChatML prompt format the
// model was instruction-tuned on, ending with an assistant cue.
func formatChatML(messages []domain.Message, jsonMode bool) string {
	var b strings.Builder
	if jsonMode && (len(messages) == 0 || messages[0].Role != domain.RoleSystem) {
		b.WriteString("<|im_start|>system\nRespond ONLY with a valid JSON object.<|im_end|>\n")
	}
	for i, m := range messages {
		content := m.Content
		if jsonMode && i == 0 && m.Role == domain.RoleSystem {
			content += "\nRespond ONLY with a valid JSON object."
		}
		b.WriteString("<|im_start|>")
		b.WriteString(string(m.Role))
		b.WriteString("\n")
		b.WriteString(content)
		b.WriteString("<|im_end|>\n")
	}
	b.WriteString("<|im_start|>assistant\n")
	return b.String()
}
