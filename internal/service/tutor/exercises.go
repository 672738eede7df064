package tutor

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strconv"

	"github.com/google/uuid"

	"github.com/heartmarshall/langtutor-backend/internal/domain"
	"github.com/heartmarshall/langtutor-backend/internal/provider"
)

const (
	exerciseTemperature = 0.7
	exerciseMaxTokens   = 3000
)

// GenerateExercises produces practice exercises for a topic. A response
// the model fails to format as JSON yields an empty list, not an error.
func (s *Service) GenerateExercises(ctx context.Context, in ExerciseInput) ([]domain.Exercise, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}
	in.normalize()

	systemPrompt := renderPrompt(exerciseSystemPrompt, map[string]string{
		"language":      in.TargetLanguage,
		"level":         in.LearnerLevel.String(),
		"topic":         in.Topic,
		"exercise_type": in.Type.String(),
		"count":         strconv.Itoa(in.Count),
	})

	messages := []domain.Message{
		{Role: domain.RoleSystem, Content: systemPrompt},
		{
			Role: domain.RoleUser,
			Content: fmt.Sprintf("Generate %d %s exercises about '%s' for %s learners at the %s level.",
				in.Count, in.Type, in.Topic, in.TargetLanguage, in.LearnerLevel),
		},
	}

	response, err := s.llm.Generate(ctx, provider.GenerationRequest{
		Messages:    messages,
		Temperature: exerciseTemperature,
		MaxTokens:   exerciseMaxTokens,
		JSONMode:    true,
	})
	if err != nil {
		return nil, fmt.Errorf("generate exercises: %w", err)
	}

	var parsed struct {
		Exercises []struct {
			Question      string   `json:"question"`
			Options       []string `json:"options"`
			CorrectAnswer string   `json:"correct_answer"`
			Hint          string   `json:"hint"`
			Explanation   string   `json:"explanation"`
		} `json:"exercises"`
	}
	if err := json.Unmarshal([]byte(extractJSON(response)), &parsed); err != nil {
		s.log.ErrorContext(ctx, "exercise response is not valid JSON", slog.String("error", err.Error()))
		return []domain.Exercise{}, nil
	}

	exercises := make([]domain.Exercise, 0, len(parsed.Exercises))
	for _, ex := range parsed.Exercises {
		options := ex.Options
		if in.Type == domain.ExerciseTypeTranslation {
			options = nil
		}
		exercises = append(exercises, domain.Exercise{
			ID:            uuid.NewString(),
			Type:          in.Type,
			Question:      ex.Question,
			Options:       options,
			CorrectAnswer: ex.CorrectAnswer,
			Hint:          ex.Hint,
			Explanation:   ex.Explanation,
		})
	}
	return exercises, nil
}
