package training

import (
	"context"
	"log/slog"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/heartmarshall/langtutor-backend/internal/domain"
)

// CreateJobInput describes a new job. A nil config uses the defaults.
type CreateJobInput struct {
	Config    *domain.TrainingConfig
	DatasetID *uuid.UUID
}

// CreateJob registers a new pending job. Nothing runs until StartJob.
func (s *Service) CreateJob(in CreateJobInput) (*domain.TrainingJob, error) {
	cfg := domain.DefaultTrainingConfig()
	if in.Config != nil {
		cfg = *in.Config
	}
	if cfg.OutputName == "" {
		return nil, domain.NewValidationError("output_name", "required")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	job := &domain.TrainingJob{
		ID:        uuid.New(),
		Status:    domain.JobStatusPending,
		CreatedAt: time.Now().UTC(),
		Config:    cfg,
		DatasetID: in.DatasetID,
	}
	s.jobs[job.ID] = job
	s.order = append(s.order, job.ID)
	s.persistLocked()

	s.log.Info("job created", slog.String("id", job.ID.String()))
	copied := *job
	return &copied, nil
}

// ListJobs returns all jobs, newest first.
func (s *Service) ListJobs() []domain.TrainingJob {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]domain.TrainingJob, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, *s.jobs[id])
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out
}

// GetJob returns one job by id.
func (s *Service) GetJob(id uuid.UUID) (*domain.TrainingJob, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	job, ok := s.jobs[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	copied := *job
	return &copied, nil
}

// StartJob begins training a pending or previously failed job. Only one job
// may train at a time.
func (s *Service) StartJob(id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	job, ok := s.jobs[id]
	if !ok {
		return domain.ErrNotFound
	}
	if s.activeJob != uuid.Nil {
		return domain.ErrConflict
	}
	if !job.Status.CanStart() {
		return domain.ErrConflict
	}

	ctx, cancel := context.WithCancel(context.Background())
	s.activeJob = id
	s.cancelFunc = cancel
	job.ErrorMessage = ""
	job.Progress = 0
	job.CurrentStep = 0

	go s.runJob(ctx, id)

	s.log.Info("job started", slog.String("id", id.String()))
	return nil
}

// CancelJob stops the running job. Only a job that is currently training
// can be cancelled.
func (s *Service) CancelJob(id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	job, ok := s.jobs[id]
	if !ok {
		return domain.ErrNotFound
	}
	if job.Status != domain.JobStatusTraining && job.Status != domain.JobStatusPreparing {
		return domain.ErrConflict
	}

	job.Status = domain.JobStatusCancelled
	now := time.Now().UTC()
	job.CompletedAt = &now
	if s.cancelFunc != nil {
		s.cancelFunc()
		s.cancelFunc = nil
	}
	s.activeJob = uuid.Nil
	s.persistLocked()

	s.log.Info("job cancelled", slog.String("id", id.String()))
	return nil
}

// DeleteJob removes a job. The active job cannot be deleted.
func (s *Service) DeleteJob(id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.jobs[id]; !ok {
		return domain.ErrNotFound
	}
	if s.activeJob == id {
		return domain.ErrConflict
	}

	delete(s.jobs, id)
	for i, oid := range s.order {
		if oid == id {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
	s.persistLocked()
	return nil
}
