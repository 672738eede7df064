package trainingdata

import (
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/heartmarshall/langtutor-backend/internal/domain"
)

// DatasetSummary is a dataset without its examples, for listings.
type DatasetSummary struct {
	ID            uuid.UUID `json:"id"`
	Name          string    `json:"name"`
	Description   string    `json:"description"`
	ExampleCount  int       `json:"example_count"`
	ApprovedCount int       `json:"approved_count"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// ListDatasets returns summaries of all datasets in creation order.
func (s *Service) ListDatasets() []DatasetSummary {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]DatasetSummary, 0, len(s.order))
	for _, id := range s.order {
		ds := s.datasets[id]
		out = append(out, DatasetSummary{
			ID:            ds.ID,
			Name:          ds.Name,
			Description:   ds.Description,
			ExampleCount:  ds.ExampleCount(),
			ApprovedCount: ds.ApprovedCount(),
			CreatedAt:     ds.CreatedAt,
			UpdatedAt:     ds.UpdatedAt,
		})
	}
	return out
}

// GetDataset returns a dataset with all its examples.
func (s *Service) GetDataset(id uuid.UUID) (*domain.TrainingDataset, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ds, ok := s.datasets[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	copied := *ds
	copied.Examples = append([]domain.TrainingExample(nil), ds.Examples...)
	return &copied, nil
}

// CreateDataset creates an empty named dataset.
func (s *Service) CreateDataset(name, description string) (*domain.TrainingDataset, error) {
	if strings.TrimSpace(name) == "" {
		return nil, domain.NewValidationError("name", "required")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now().UTC()
	ds := &domain.TrainingDataset{
		ID:          uuid.New(),
		Name:        name,
		Description: description,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	s.datasets[ds.ID] = ds
	s.order = append(s.order, ds.ID)

	if err := s.persistLocked(); err != nil {
		delete(s.datasets, ds.ID)
		s.order = s.order[:len(s.order)-1]
		return nil, err
	}

	s.log.Info("dataset created", slog.String("id", ds.ID.String()), slog.String("name", name))
	copied := *ds
	return &copied, nil
}

// DeleteDataset removes a dataset and all its examples.
func (s *Service) DeleteDataset(id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.datasets[id]; !ok {
		return domain.ErrNotFound
	}
	delete(s.datasets, id)
	for i, oid := range s.order {
		if oid == id {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}

	if err := s.persistLocked(); err != nil {
		return err
	}
	s.log.Info("dataset deleted", slog.String("id", id.String()))
	return nil
}
