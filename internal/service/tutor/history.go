package tutor

import (
	"sync"
	"unicode/utf8"

	"github.com/pkoukk/tiktoken-go"

	"github.com/heartmarshall/langtutor-backend/internal/domain"
)

// historyTokenBudget bounds how much conversation history goes into a
// prompt, leaving room for the system prompt and the response.
const historyTokenBudget = 3000

var (
	encodingOnce sync.Once
	encoding     *tiktoken.Tiktoken
)

// tokenCount measures text with the cl100k_base encoding. If the encoding
// tables are unavailable it falls back to a chars/4 estimate.
func tokenCount(text string) int {
	encodingOnce.Do(func() {
		enc, err := tiktoken.GetEncoding("cl100k_base")
		if err == nil {
			encoding = enc
		}
	})
	if encoding == nil {
		return utf8.RuneCountInString(text)/4 + 1
	}
	return len(encoding.Encode(text, nil, nil))
}

// trimHistory drops the oldest turns until the remaining history fits the
// token budget. The most recent turns always survive.
func trimHistory(history []domain.Message, budget int) []domain.Message {
	total := 0
	for i := len(history) - 1; i >= 0; i-- {
		total += tokenCount(history[i].Content)
		if total > budget {
			return history[i+1:]
		}
	}
	return history
}
