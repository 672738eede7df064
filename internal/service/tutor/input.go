package tutor

import (
	"strings"

	"github.com/heartmarshall/langtutor-backend/internal/domain"
)

const (
	defaultLanguage = "English"
	maxExerciseN    = 10
)

// ChatInput carries one chat turn from the learner.
type ChatInput struct {
	Message        string
	History        []domain.Message
	TargetLanguage string
	LearnerLevel   domain.LearnerLevel
	UseRAG         bool
}

func (in *ChatInput) normalize() {
	if in.TargetLanguage == "" {
		in.TargetLanguage = defaultLanguage
	}
	if in.LearnerLevel == "" {
		in.LearnerLevel = domain.LearnerLevelBeginner
	}
}

func (in ChatInput) Validate() error {
	var errs []domain.FieldError
	if strings.TrimSpace(in.Message) == "" {
		errs = append(errs, domain.FieldError{Field: "message", Message: "required"})
	}
	if in.LearnerLevel != "" && !in.LearnerLevel.IsValid() {
		errs = append(errs, domain.FieldError{Field: "learner_level", Message: "must be beginner, intermediate or advanced"})
	}
	for _, m := range in.History {
		if !m.Role.IsValid() {
			errs = append(errs, domain.FieldError{Field: "history", Message: "invalid role " + string(m.Role)})
			break
		}
	}
	if len(errs) > 0 {
		return domain.NewValidationErrors(errs)
	}
	return nil
}

// CorrectionInput carries text to proofread.
type CorrectionInput struct {
	Text           string
	TargetLanguage string
}

func (in *CorrectionInput) normalize() {
	if in.TargetLanguage == "" {
		in.TargetLanguage = defaultLanguage
	}
}

// ExerciseInput describes the exercises to generate.
type ExerciseInput struct {
	Topic          string
	TargetLanguage string
	Type           domain.ExerciseType
	LearnerLevel   domain.LearnerLevel
	Count          int
}

func (in *ExerciseInput) normalize() {
	if in.TargetLanguage == "" {
		in.TargetLanguage = defaultLanguage
	}
	if in.Type == "" {
		in.Type = domain.ExerciseTypeMultipleChoice
	}
	if in.LearnerLevel == "" {
		in.LearnerLevel = domain.LearnerLevelBeginner
	}
	if in.Count == 0 {
		in.Count = 5
	}
}

func (in ExerciseInput) Validate() error {
	var errs []domain.FieldError
	if strings.TrimSpace(in.Topic) == "" {
		errs = append(errs, domain.FieldError{Field: "topic", Message: "required"})
	}
	if in.Type != "" && !in.Type.IsValid() {
		errs = append(errs, domain.FieldError{Field: "exercise_type", Message: "must be multiple_choice, fill_in_blank or translation"})
	}
	if in.LearnerLevel != "" && !in.LearnerLevel.IsValid() {
		errs = append(errs, domain.FieldError{Field: "learner_level", Message: "must be beginner, intermediate or advanced"})
	}
	if in.Count < 0 || in.Count > maxExerciseN {
		errs = append(errs, domain.FieldError{Field: "count", Message: "must be between 1 and 10"})
	}
	if len(errs) > 0 {
		return domain.NewValidationErrors(errs)
	}
	return nil
}

// ExplainInput names a grammar topic to explain.
type ExplainInput struct {
	Topic          string
	TargetLanguage string
	LearnerLevel   domain.LearnerLevel
}

func (in *ExplainInput) normalize() {
	if in.TargetLanguage == "" {
		in.TargetLanguage = defaultLanguage
	}
	if in.LearnerLevel == "" {
		in.LearnerLevel = domain.LearnerLevelBeginner
	}
}

func (in ExplainInput) Validate() error {
	if strings.TrimSpace(in.Topic) == "" {
		return domain.NewValidationError("topic", "required")
	}
	return nil
}
