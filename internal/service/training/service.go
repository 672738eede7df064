// Package training orchestrates fine-tuning jobs: lifecycle management,
// a single active training slot, progress tracking and the on-disk model
// catalog.
package training

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/google/uuid"

	"github.com/heartmarshall/langtutor-backend/internal/domain"
)

// JobStore persists the full set of jobs.
type JobStore interface {
	Load() ([]domain.TrainingJob, error)
	Save(jobs []domain.TrainingJob) error
}

// Exporter produces the training data file a job trains on.
type Exporter interface {
	ExportForTraining(datasetID *uuid.UUID) (string, error)
}

// Trainer runs one fine-tuning pass and reports progress along the way.
type Trainer interface {
	Name() string
	Available(ctx context.Context) bool
	Train(ctx context.Context, cfg domain.TrainingConfig, dataFile string, report func(domain.TrainingProgress)) (outputPath string, err error)
}

// Service manages training jobs. At most one job trains at a time; the rest
// queue as pending until started explicitly.
type Service struct {
	jobStore  JobStore
	exporter  Exporter
	trainers  []Trainer
	modelsDir string
	log       *slog.Logger

	mu         sync.RWMutex
	jobs       map[uuid.UUID]*domain.TrainingJob
	order      []uuid.UUID
	activeJob  uuid.UUID
	cancelFunc context.CancelFunc
}

// NewService loads persisted jobs. Trainers are tried in order; the first
// available one runs the job.
func NewService(jobStore JobStore, exporter Exporter, trainers []Trainer, modelsDir string, logger *slog.Logger) (*Service, error) {
	s := &Service{
		jobStore:  jobStore,
		exporter:  exporter,
		trainers:  trainers,
		modelsDir: modelsDir,
		log:       logger.With("service", "training"),
		jobs:      make(map[uuid.UUID]*domain.TrainingJob),
	}

	loaded, err := jobStore.Load()
	if err != nil {
		return nil, fmt.Errorf("training: load jobs: %w", err)
	}
	for i := range loaded {
		job := loaded[i]
		// a job that was mid-flight when the process died can never resume
		if !job.Status.IsTerminal() && job.Status != domain.JobStatusPending {
			job.Status = domain.JobStatusFailed
			job.ErrorMessage = "interrupted by restart"
		}
		s.jobs[job.ID] = &job
		s.order = append(s.order, job.ID)
	}

	s.log.Info("training jobs loaded", slog.Int("jobs", len(s.order)))
	return s, nil
}

// persistLocked writes all jobs through to the store. Callers must hold the
// lock.
func (s *Service) persistLocked() {
	out := make([]domain.TrainingJob, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, *s.jobs[id])
	}
	if err := s.jobStore.Save(out); err != nil {
		s.log.Error("persist jobs failed", slog.String("error", err.Error()))
	}
}
