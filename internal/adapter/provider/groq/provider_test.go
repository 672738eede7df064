package groq

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/heartmarshall/langtutor-backend/internal/config"
	"github.com/heartmarshall/langtutor-backend/internal/domain"
	"github.com/heartmarshall/langtutor-backend/internal/provider"
)

func newTestProvider(t *testing.T, handler http.HandlerFunc) *Provider {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	return New(config.GroqConfig{
		APIKey:  "test-key",
		BaseURL: srv.URL + "/v1",
		Model:   "llama-3.3-70b-versatile",
	}, slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func completionResponse(content string) string {
	body, _ := json.Marshal(map[string]any{
		"id":      "chatcmpl-1",
		"object":  "chat.completion",
		"created": time.Now().Unix(),
		"model":   "llama-3.3-70b-versatile",
		"choices": []map[string]any{
			{
				"index":         0,
				"message":       map[string]string{"role": "assistant", "content": content},
				"finish_reason": "stop",
			},
		},
	})
	return string(body)
}

func TestGenerate(t *testing.T) {
	t.Parallel()

	var gotReq struct {
		Model          string `json:"model"`
		Temperature    float32
		ResponseFormat *struct {
			Type string `json:"type"`
		} `json:"response_format"`
		Messages []struct {
			Role    string `json:"role"`
			Content string `json:"content"`
		} `json:"messages"`
	}

	p := newTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/v1/chat/completions", r.URL.Path)
		require.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotReq))
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, completionResponse("¡Hola! Let's practice."))
	})

	got, err := p.Generate(context.Background(), provider.GenerationRequest{
		Messages: []domain.Message{
			{Role: domain.RoleSystem, Content: "You are a tutor."},
			{Role: domain.RoleUser, Content: "Hello"},
		},
		Temperature: 0.7,
		MaxTokens:   1024,
	})

	require.NoError(t, err)
	assert.Equal(t, "¡Hola! Let's practice.", got)
	require.Len(t, gotReq.Messages, 2)
	assert.Equal(t, "system", gotReq.Messages[0].Role)
	assert.Equal(t, "user", gotReq.Messages[1].Role)
	assert.Nil(t, gotReq.ResponseFormat)
}

func TestGenerate_JSONMode(t *testing.T) {
	t.Parallel()

	p := newTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			ResponseFormat *struct {
				Type string `json:"type"`
			} `json:"response_format"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		require.NotNil(t, req.ResponseFormat)
		assert.Equal(t, "json_object", req.ResponseFormat.Type)
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, completionResponse(`{"ok":true}`))
	})

	got, err := p.Generate(context.Background(), provider.GenerationRequest{
		Messages: []domain.Message{{Role: domain.RoleUser, Content: "check"}},
		JSONMode: true,
	})

	require.NoError(t, err)
	assert.Equal(t, `{"ok":true}`, got)
}

func TestGenerate_TimeoutEnforced(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(500 * time.Millisecond)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(completionResponse("too late")))
	}))
	t.Cleanup(srv.Close)

	p := New(config.GroqConfig{
		APIKey:  "test-key",
		BaseURL: srv.URL + "/v1",
		Model:   "llama-3.3-70b-versatile",
		Timeout: 50 * time.Millisecond,
	}, slog.New(slog.NewTextHandler(io.Discard, nil)))

	_, err := p.Generate(context.Background(), provider.GenerationRequest{
		Messages: []domain.Message{{Role: domain.RoleUser, Content: "hi"}},
	})
	require.Error(t, err)
}

func TestGenerate_ServerError(t *testing.T) {
	t.Parallel()

	p := newTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":{"message":"overloaded"}}`, http.StatusServiceUnavailable)
	})

	_, err := p.Generate(context.Background(), provider.GenerationRequest{
		Messages: []domain.Message{{Role: domain.RoleUser, Content: "hi"}},
	})

	require.Error(t, err)
	var perr *provider.Error
	require.ErrorAs(t, err, &perr)
	assert.Equal(t, "groq", perr.Provider)
}

func TestGenerateStream(t *testing.T) {
	t.Parallel()

	p := newTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/event-stream")
		for _, token := range []string{"Hel", "lo", "!"} {
			chunk, _ := json.Marshal(map[string]any{
				"id":      "chatcmpl-1",
				"object":  "chat.completion.chunk",
				"model":   "llama-3.3-70b-versatile",
				"choices": []map[string]any{{"index": 0, "delta": map[string]string{"content": token}}},
			})
			fmt.Fprintf(w, "data: %s\n\n", chunk)
		}
		fmt.Fprint(w, "data: [DONE]\n\n")
	})

	ch, err := p.GenerateStream(context.Background(), provider.GenerationRequest{
		Messages: []domain.Message{{Role: domain.RoleUser, Content: "hi"}},
	})
	require.NoError(t, err)

	var got string
	for chunk := range ch {
		require.NoError(t, chunk.Err)
		got += chunk.Content
	}
	assert.Equal(t, "Hello!", got)
}

func TestGenerateStream_OpenError(t *testing.T) {
	t.Parallel()

	p := newTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":{"message":"bad key"}}`, http.StatusUnauthorized)
	})

	_, err := p.GenerateStream(context.Background(), provider.GenerationRequest{
		Messages: []domain.Message{{Role: domain.RoleUser, Content: "hi"}},
	})
	require.Error(t, err)
}

func TestHealthCheck(t *testing.T) {
	t.Parallel()

	healthy := newTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, completionResponse("Hi"))
	})
	assert.True(t, healthy.HealthCheck(context.Background()))

	down := newTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusBadGateway)
	})
	assert.False(t, down.HealthCheck(context.Background()))
}

func TestName(t *testing.T) {
	t.Parallel()

	p := newTestProvider(t, func(w http.ResponseWriter, r *http.Request) {})
	assert.Equal(t, "groq", p.Name())
}
