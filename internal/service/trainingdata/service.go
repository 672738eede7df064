// Package trainingdata manages datasets of prompt/response pairs collected
// for fine-tuning: CRUD over datasets and examples, review workflow
// (approve, rate), and export into trainer-ready file formats.
package trainingdata

import (
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/heartmarshall/langtutor-backend/internal/domain"
)

// DatasetStore persists the full set of datasets.
type DatasetStore interface {
	Load() ([]domain.TrainingDataset, error)
	Save(datasets []domain.TrainingDataset) error
}

// Service keeps all datasets in memory and writes through to the store on
// every mutation. Reads never touch the store after startup.
type Service struct {
	store     DatasetStore
	exportDir string
	log       *slog.Logger

	mu       sync.RWMutex
	datasets map[uuid.UUID]*domain.TrainingDataset
	order    []uuid.UUID
}

func NewService(store DatasetStore, exportDir string, logger *slog.Logger) (*Service, error) {
	s := &Service{
		store:     store,
		exportDir: exportDir,
		log:       logger.With("service", "trainingdata"),
		datasets:  make(map[uuid.UUID]*domain.TrainingDataset),
	}

	loaded, err := store.Load()
	if err != nil {
		return nil, fmt.Errorf("trainingdata: load: %w", err)
	}
	for i := range loaded {
		ds := loaded[i]
		s.datasets[ds.ID] = &ds
		s.order = append(s.order, ds.ID)
	}

	// A fresh install still needs somewhere to collect examples into.
	if len(s.order) == 0 {
		now := time.Now().UTC()
		ds := &domain.TrainingDataset{
			ID:          uuid.New(),
			Name:        "Default Training Data",
			Description: "Auto-collected training examples from user interactions",
			CreatedAt:   now,
			UpdatedAt:   now,
		}
		s.datasets[ds.ID] = ds
		s.order = append(s.order, ds.ID)
		if err := s.persistLocked(); err != nil {
			return nil, err
		}
		s.log.Info("created default dataset", slog.String("id", ds.ID.String()))
	}

	s.log.Info("training data loaded", slog.Int("datasets", len(s.order)))
	return s, nil
}

// persistLocked writes all datasets through to the store. Callers must hold
// at least a read lock.
func (s *Service) persistLocked() error {
	out := make([]domain.TrainingDataset, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, *s.datasets[id])
	}
	if err := s.store.Save(out); err != nil {
		return fmt.Errorf("trainingdata: save: %w", err)
	}
	return nil
}

// touch bumps the dataset's update time.
func touch(ds *domain.TrainingDataset) {
	ds.UpdatedAt = time.Now().UTC()
}
