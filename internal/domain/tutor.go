package domain

// LearnerLevel describes the learner's proficiency in the target language.
type LearnerLevel string

const (
	LearnerLevelBeginner     LearnerLevel = "beginner"
	LearnerLevelIntermediate LearnerLevel = "intermediate"
	LearnerLevelAdvanced     LearnerLevel = "advanced"
)

func (l LearnerLevel) String() string { return string(l) }

func (l LearnerLevel) IsValid() bool {
	switch l {
	case LearnerLevelBeginner, LearnerLevelIntermediate, LearnerLevelAdvanced:
		return true
	}
	return false
}

// ExerciseType is the kind of practice exercise to generate.
type ExerciseType string

const (
	ExerciseTypeMultipleChoice ExerciseType = "multiple_choice"
	ExerciseTypeFillInBlank    ExerciseType = "fill_in_blank"
	ExerciseTypeTranslation    ExerciseType = "translation"
)

func (t ExerciseType) String() string { return string(t) }

func (t ExerciseType) IsValid() bool {
	switch t {
	case ExerciseTypeMultipleChoice, ExerciseTypeFillInBlank, ExerciseTypeTranslation:
		return true
	}
	return false
}

// Exercise is a single generated practice exercise.
type Exercise struct {
	ID            string       `json:"id"`
	Type          ExerciseType `json:"type"`
	Question      string       `json:"question"`
	Options       []string     `json:"options,omitempty"`
	CorrectAnswer string       `json:"correct_answer"`
	Hint          string       `json:"hint,omitempty"`
	Explanation   string       `json:"explanation,omitempty"`
}

// CorrectionError is one error found in a corrected text.
type CorrectionError struct {
	Original    string `json:"original"`
	Corrected   string `json:"corrected"`
	ErrorType   string `json:"error_type"`
	Explanation string `json:"explanation"`
	Position    *int   `json:"position,omitempty"`
}

// CorrectionResult is the outcome of a grammar correction pass.
type CorrectionResult struct {
	OriginalText  string            `json:"original_text"`
	CorrectedText string            `json:"corrected_text"`
	Errors        []CorrectionError `json:"errors"`
}

// HasErrors reports whether the correction found anything to fix.
func (r CorrectionResult) HasErrors() bool { return len(r.Errors) > 0 }
