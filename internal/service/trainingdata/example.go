package trainingdata

import (
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/heartmarshall/langtutor-backend/internal/domain"
)

const defaultCategory = "general"

// AddExampleInput describes a new training example.
type AddExampleInput struct {
	DatasetID       uuid.UUID
	SystemPrompt    string
	UserInput       string
	AssistantOutput string
	Category        string
	Language        string
	IsApproved      bool
}

func (in *AddExampleInput) normalize() {
	if in.Category == "" {
		in.Category = defaultCategory
	}
	if in.Language == "" {
		in.Language = "English"
	}
}

func (in AddExampleInput) Validate() error {
	var errs []domain.FieldError
	if strings.TrimSpace(in.UserInput) == "" {
		errs = append(errs, domain.FieldError{Field: "user_input", Message: "required"})
	}
	if strings.TrimSpace(in.AssistantOutput) == "" {
		errs = append(errs, domain.FieldError{Field: "assistant_output", Message: "required"})
	}
	if len(errs) > 0 {
		return domain.NewValidationErrors(errs)
	}
	return nil
}

// AddExample appends an example to a dataset. An unknown dataset id falls
// back to the oldest dataset so collected data is never dropped.
func (s *Service) AddExample(in AddExampleInput) (*domain.TrainingExample, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}
	in.normalize()

	s.mu.Lock()
	defer s.mu.Unlock()

	ds, ok := s.datasets[in.DatasetID]
	if !ok {
		if len(s.order) == 0 {
			return nil, domain.ErrNotFound
		}
		ds = s.datasets[s.order[0]]
		if in.DatasetID != uuid.Nil {
			s.log.Warn("unknown dataset, using fallback",
				slog.String("requested", in.DatasetID.String()),
				slog.String("fallback", ds.ID.String()))
		}
	}

	example := domain.TrainingExample{
		ID:              uuid.New(),
		CreatedAt:       time.Now().UTC(),
		SystemPrompt:    in.SystemPrompt,
		UserInput:       in.UserInput,
		AssistantOutput: in.AssistantOutput,
		Category:        in.Category,
		Language:        in.Language,
		IsApproved:      in.IsApproved,
	}
	ds.Examples = append(ds.Examples, example)
	touch(ds)

	if err := s.persistLocked(); err != nil {
		ds.Examples = ds.Examples[:len(ds.Examples)-1]
		return nil, err
	}
	return &example, nil
}

// UpdateExampleInput carries partial updates; nil fields are left untouched.
type UpdateExampleInput struct {
	SystemPrompt    *string
	UserInput       *string
	AssistantOutput *string
	Category        *string
	Language        *string
	QualityRating   *int
	IsApproved      *bool
}

// UpdateExample applies the non-nil fields of in to one example.
func (s *Service) UpdateExample(datasetID, exampleID uuid.UUID, in UpdateExampleInput) (*domain.TrainingExample, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	ds, ok := s.datasets[datasetID]
	if !ok {
		return nil, domain.ErrNotFound
	}

	for i := range ds.Examples {
		ex := &ds.Examples[i]
		if ex.ID != exampleID {
			continue
		}
		if in.SystemPrompt != nil {
			ex.SystemPrompt = *in.SystemPrompt
		}
		if in.UserInput != nil {
			ex.UserInput = *in.UserInput
		}
		if in.AssistantOutput != nil {
			ex.AssistantOutput = *in.AssistantOutput
		}
		if in.Category != nil {
			ex.Category = *in.Category
		}
		if in.Language != nil {
			ex.Language = *in.Language
		}
		if in.QualityRating != nil {
			rating := *in.QualityRating
			ex.QualityRating = &rating
		}
		if in.IsApproved != nil {
			ex.IsApproved = *in.IsApproved
		}
		touch(ds)

		if err := s.persistLocked(); err != nil {
			return nil, err
		}
		copied := *ex
		return &copied, nil
	}
	return nil, domain.ErrNotFound
}

// DeleteExample removes one example from a dataset.
func (s *Service) DeleteExample(datasetID, exampleID uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	ds, ok := s.datasets[datasetID]
	if !ok {
		return domain.ErrNotFound
	}

	for i := range ds.Examples {
		if ds.Examples[i].ID != exampleID {
			continue
		}
		ds.Examples = append(ds.Examples[:i], ds.Examples[i+1:]...)
		touch(ds)
		return s.persistLocked()
	}
	return domain.ErrNotFound
}

// ApproveExample marks an example as reviewed and usable for training,
// or takes the approval back.
func (s *Service) ApproveExample(datasetID, exampleID uuid.UUID, approved bool) error {
	_, err := s.UpdateExample(datasetID, exampleID, UpdateExampleInput{IsApproved: &approved})
	return err
}

// RateExample stores a 1-5 quality rating; out-of-range values are clamped.
// It returns the rating actually stored.
func (s *Service) RateExample(datasetID, exampleID uuid.UUID, rating int) (int, error) {
	if rating < 1 {
		rating = 1
	}
	if rating > 5 {
		rating = 5
	}
	_, err := s.UpdateExample(datasetID, exampleID, UpdateExampleInput{QualityRating: &rating})
	return rating, err
}
