package rest

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"github.com/heartmarshall/langtutor-backend/internal/domain"
	"github.com/heartmarshall/langtutor-backend/internal/service/tutor"
)

type ExerciseService interface {
	GenerateExercises(ctx context.Context, in tutor.ExerciseInput) ([]domain.Exercise, error)
	CheckAnswer(ctx context.Context, userAnswer, correctAnswer, targetLanguage string) (bool, string, error)
}

type ExerciseHandler struct {
	tutor ExerciseService
	log   *slog.Logger
}

func NewExerciseHandler(svc ExerciseService, logger *slog.Logger) *ExerciseHandler {
	return &ExerciseHandler{tutor: svc, log: logger.With("handler", "exercises")}
}

// exerciseTopics is the curated topic catalog per language. Languages not
// listed fall back to the English topics.
var exerciseTopics = map[string][]string{
	"English": {
		"Common Idioms and Expressions",
		"Phrasal Verbs",
		"Confusing Word Pairs (affect/effect, their/there)",
		"Irregular Verbs",
		"Tenses and Verb Forms",
		"Prepositions",
		"Articles (a, an, the)",
		"Conditionals (if clauses)",
		"Passive Voice",
		"Reported Speech",
		"Collocations",
		"Academic Vocabulary",
	},
	"Chinese": {
		"Basic Greetings (你好, 谢谢)",
		"Numbers and Counting",
		"Measure Words (个, 只, 本)",
		"Basic Sentence Structure (SVO)",
		"Question Words (什么, 哪里, 为什么)",
		"Time Expressions",
		"Common Verbs (是, 有, 去, 来)",
		"Adjectives and Descriptions",
		"Family Members",
		"Food and Ordering",
		"Directions and Locations",
		"HSK Vocabulary Levels",
	},
	"Russian": {
		"Cyrillic Alphabet Basics",
		"Basic Greetings (Привет, Спасибо)",
		"Noun Gender (masculine/feminine/neuter)",
		"Case System Introduction",
		"Nominative and Accusative Cases",
		"Common Verbs (быть, иметь, идти)",
		"Verb Conjugation Patterns",
		"Numbers and Counting",
		"Question Formation",
		"Adjective Agreement",
		"Time and Date Expressions",
		"Verb Aspects (perfective/imperfective)",
	},
	"Japanese": {
		"Hiragana Reading Practice",
		"Katakana Reading Practice",
		"Basic Greetings (こんにちは, ありがとう)",
		"Sentence Particles (は, が, を, に)",
		"Verb Forms (masu form, te form)",
		"Adjective Types (i-adjectives, na-adjectives)",
		"Counting and Numbers",
		"Time Expressions",
		"Common Kanji (JLPT N5)",
		"Keigo (Polite Language) Basics",
		"Question Words (何, どこ, いつ)",
		"Giving and Receiving Verbs",
	},
}

// Topics handles GET /api/exercises/topics.
func (h *ExerciseHandler) Topics(w http.ResponseWriter, r *http.Request) {
	language := r.URL.Query().Get("target_language")
	if language == "" {
		language = "English"
	}
	topics, ok := exerciseTopics[language]
	if !ok {
		topics = exerciseTopics["English"]
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"language": language,
		"topics":   topics,
	})
}

type exerciseRequest struct {
	Topic          string              `json:"topic"`
	TargetLanguage string              `json:"target_language"`
	ExerciseType   domain.ExerciseType `json:"exercise_type"`
	LearnerLevel   domain.LearnerLevel `json:"learner_level"`
	Count          int                 `json:"count"`
}

// Generate handles POST /api/exercises/generate.
func (h *ExerciseHandler) Generate(w http.ResponseWriter, r *http.Request) {
	var req exerciseRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	exercises, err := h.tutor.GenerateExercises(r.Context(), tutor.ExerciseInput{
		Topic:          req.Topic,
		TargetLanguage: req.TargetLanguage,
		Type:           req.ExerciseType,
		LearnerLevel:   req.LearnerLevel,
		Count:          req.Count,
	})
	if err != nil {
		handleError(w, r, h.log, err)
		return
	}
	if len(exercises) == 0 {
		writeError(w, http.StatusInternalServerError, "Failed to generate exercises. Please try again.")
		return
	}
	writeJSON(w, http.StatusOK, exercises)
}

type checkRequest struct {
	ExerciseID    string `json:"exercise_id"`
	UserAnswer    string `json:"user_answer"`
	CorrectAnswer string `json:"correct_answer"`
}

type checkResponse struct {
	IsCorrect     bool   `json:"is_correct"`
	CorrectAnswer string `json:"correct_answer"`
	Explanation   string `json:"explanation"`
	Feedback      string `json:"feedback"`
}

// Check handles POST /api/exercises/check.
func (h *ExerciseHandler) Check(w http.ResponseWriter, r *http.Request) {
	var req checkRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	language := r.URL.Query().Get("target_language")
	if language == "" {
		language = "English"
	}

	correct, feedback, err := h.tutor.CheckAnswer(r.Context(), req.UserAnswer, req.CorrectAnswer, language)
	if err != nil {
		handleError(w, r, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, checkResponse{
		IsCorrect:     correct,
		CorrectAnswer: req.CorrectAnswer,
		Feedback:      feedback,
	})
}

// Types handles GET /api/exercises/types.
func (h *ExerciseHandler) Types(w http.ResponseWriter, _ *http.Request) {
	types := []domain.ExerciseType{
		domain.ExerciseTypeMultipleChoice,
		domain.ExerciseTypeFillInBlank,
		domain.ExerciseTypeTranslation,
	}
	out := make([]map[string]string, 0, len(types))
	for _, t := range types {
		out = append(out, map[string]string{
			"value": t.String(),
			"label": titleCase(strings.ReplaceAll(t.String(), "_", " ")),
		})
	}
	writeJSON(w, http.StatusOK, map[string]any{"types": out})
}

// Levels handles GET /api/exercises/levels.
func (h *ExerciseHandler) Levels(w http.ResponseWriter, _ *http.Request) {
	levels := []domain.LearnerLevel{
		domain.LearnerLevelBeginner,
		domain.LearnerLevelIntermediate,
		domain.LearnerLevelAdvanced,
	}
	out := make([]map[string]string, 0, len(levels))
	for _, l := range levels {
		out = append(out, map[string]string{
			"value": l.String(),
			"label": titleCase(l.String()),
		})
	}
	writeJSON(w, http.StatusOK, map[string]any{"levels": out})
}

// titleCase uppercases the first letter of each space-separated word. The
// labels here are plain ASCII.
func titleCase(s string) string {
	words := strings.Fields(s)
	for i, word := range words {
		words[i] = strings.ToUpper(word[:1]) + word[1:]
	}
	return strings.Join(words, " ")
}
