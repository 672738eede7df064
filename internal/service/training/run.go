package training

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/heartmarshall/langtutor-backend/internal/domain"
)

// runJob drives one job through preparing, training and a terminal state.
// Runs on its own goroutine; all job mutation goes through the lock.
func (s *Service) runJob(ctx context.Context, id uuid.UUID) {
	defer func() {
		if r := recover(); r != nil {
			s.log.Error("training panicked", slog.String("id", id.String()), slog.Any("panic", r))
			s.finishJob(id, "", fmt.Errorf("training panicked: %v", r))
		}
	}()

	s.setPreparing(id)

	dataFile, err := s.exportData(id)
	if err != nil {
		s.finishJob(id, "", err)
		return
	}

	trainer := s.pickTrainer(ctx)
	if trainer == nil {
		s.finishJob(id, "", fmt.Errorf("no trainer available"))
		return
	}
	s.log.Info("trainer selected",
		slog.String("id", id.String()),
		slog.String("trainer", trainer.Name()))

	cfg, ok := s.setTraining(id)
	if !ok {
		// cancelled while preparing; the terminal state is already recorded
		return
	}

	outputPath, err := trainer.Train(ctx, cfg, dataFile, func(p domain.TrainingProgress) {
		s.reportProgress(id, p)
	})
	s.finishJob(id, outputPath, err)
}

func (s *Service) setPreparing(id uuid.UUID) {
	s.mu.Lock()
	defer s.mu.Unlock()

	job := s.jobs[id]
	job.Status = domain.JobStatusPreparing
	now := time.Now().UTC()
	job.StartedAt = &now
	s.persistLocked()
}

func (s *Service) exportData(id uuid.UUID) (string, error) {
	s.mu.RLock()
	datasetID := s.jobs[id].DatasetID
	s.mu.RUnlock()

	dataFile, err := s.exporter.ExportForTraining(datasetID)
	if err != nil {
		return "", fmt.Errorf("no approved training data available: %w", err)
	}
	return dataFile, nil
}

// pickTrainer returns the first trainer that answers, in registration order.
func (s *Service) pickTrainer(ctx context.Context) Trainer {
	for _, t := range s.trainers {
		if t.Available(ctx) {
			return t
		}
	}
	return nil
}

// setTraining moves a preparing job into training. A job cancelled while
// preparing stays cancelled; the caller must stop the run.
func (s *Service) setTraining(id uuid.UUID) (domain.TrainingConfig, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	job := s.jobs[id]
	if job.Status != domain.JobStatusPreparing {
		return domain.TrainingConfig{}, false
	}
	job.Status = domain.JobStatusTraining
	s.persistLocked()
	return job.Config, true
}

// reportProgress records one trainer update. Progress never moves backwards;
// out-of-order reports from retried steps are ignored.
func (s *Service) reportProgress(id uuid.UUID, p domain.TrainingProgress) {
	s.mu.Lock()
	defer s.mu.Unlock()

	job := s.jobs[id]
	if job.Status != domain.JobStatusTraining {
		return
	}
	if p.Step < job.CurrentStep {
		return
	}

	job.CurrentStep = p.Step
	if p.TotalSteps > 0 {
		job.TotalSteps = p.TotalSteps
		job.Progress = float64(p.Step) / float64(p.TotalSteps) * 100
	}
	if len(p.Metrics) > 0 {
		if job.Metrics == nil {
			job.Metrics = make(map[string]float64, len(p.Metrics))
		}
		for k, v := range p.Metrics {
			job.Metrics[k] = v
		}
	}
	s.persistLocked()
}

// finishJob records the terminal state. A job already cancelled keeps its
// cancelled state even when the trainer goroutine unwinds afterwards.
func (s *Service) finishJob(id uuid.UUID, outputPath string, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	job := s.jobs[id]
	if s.activeJob == id {
		s.activeJob = uuid.Nil
		s.cancelFunc = nil
	}
	if job.Status.IsTerminal() {
		return
	}

	now := time.Now().UTC()
	job.CompletedAt = &now

	if err != nil {
		job.Status = domain.JobStatusFailed
		job.ErrorMessage = err.Error()
		s.persistLocked()
		s.log.Error("job failed", slog.String("id", id.String()), slog.String("error", err.Error()))
		return
	}

	job.Status = domain.JobStatusCompleted
	job.Progress = 100
	job.OutputPath = outputPath
	s.persistLocked()
	s.log.Info("job completed", slog.String("id", id.String()), slog.String("output", outputPath))
}
