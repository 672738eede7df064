package rest

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/heartmarshall/langtutor-backend/internal/domain"
	"github.com/heartmarshall/langtutor-backend/internal/service/tutor"
)

// ChatService is the part of the tutor the chat endpoints need.
type ChatService interface {
	Chat(ctx context.Context, in tutor.ChatInput) (*tutor.ChatResult, error)
	ChatStream(ctx context.Context, in tutor.ChatInput) (*tutor.StreamResult, error)
	ExplainGrammar(ctx context.Context, in tutor.ExplainInput) (string, error)
}

type ChatHandler struct {
	tutor ChatService
	log   *slog.Logger
}

func NewChatHandler(svc ChatService, logger *slog.Logger) *ChatHandler {
	return &ChatHandler{tutor: svc, log: logger.With("handler", "chat")}
}

type chatRequest struct {
	Message        string              `json:"message"`
	History        []domain.Message    `json:"history"`
	TargetLanguage string              `json:"target_language"`
	LearnerLevel   domain.LearnerLevel `json:"learner_level"`
}

func (req chatRequest) toInput() tutor.ChatInput {
	return tutor.ChatInput{
		Message:        req.Message,
		History:        req.History,
		TargetLanguage: req.TargetLanguage,
		LearnerLevel:   req.LearnerLevel,
		UseRAG:         true,
	}
}

type chatResponse struct {
	Response    string   `json:"response"`
	ContextUsed []string `json:"context_used,omitempty"`
}

// Chat handles POST /api/chat/.
func (h *ChatHandler) Chat(w http.ResponseWriter, r *http.Request) {
	var req chatRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	result, err := h.tutor.Chat(r.Context(), req.toInput())
	if err != nil {
		handleError(w, r, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, chatResponse{
		Response:    result.Response,
		ContextUsed: result.ContextUsed,
	})
}

// ChatStream handles POST /api/chat/stream with Server-Sent Events. Each
// model chunk arrives as a message event; the stream ends with done.
func (h *ChatHandler) ChatStream(w http.ResponseWriter, r *http.Request) {
	var req chatRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	flusher, ok := w.(http.Flusher)
	if !ok {
		writeError(w, http.StatusInternalServerError, "streaming not supported")
		return
	}

	result, err := h.tutor.ChatStream(r.Context(), req.toInput())
	if err != nil {
		handleError(w, r, h.log, err)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	for chunk := range result.Chunks {
		if chunk.Err != nil {
			writeSSE(w, "error", chunk.Err.Error())
			flusher.Flush()
			return
		}
		writeSSE(w, "message", chunk.Content)
		flusher.Flush()
	}

	writeSSE(w, "done", "[DONE]")
	flusher.Flush()
}

// writeSSE emits one event. Multi-line payloads become multiple data lines,
// as the SSE framing requires.
func writeSSE(w http.ResponseWriter, event, data string) {
	fmt.Fprintf(w, "event: %s\n", event)
	for _, line := range strings.Split(data, "\n") {
		fmt.Fprintf(w, "data: %s\n", line)
	}
	fmt.Fprint(w, "\n")
}

type explainResponse struct {
	Explanation string `json:"explanation"`
}

// Explain handles POST /api/chat/explain. Parameters arrive in the query
// string.
func (h *ChatHandler) Explain(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	in := tutor.ExplainInput{
		Topic:          q.Get("topic"),
		TargetLanguage: q.Get("target_language"),
		LearnerLevel:   domain.LearnerLevel(q.Get("learner_level")),
	}
	if in.TargetLanguage == "" {
		in.TargetLanguage = "Spanish"
	}

	explanation, err := h.tutor.ExplainGrammar(r.Context(), in)
	if err != nil {
		handleError(w, r, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, explainResponse{Explanation: explanation})
}
