package training

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/heartmarshall/langtutor-backend/internal/domain"
)

type jobStoreMock struct {
	LoadFunc func() ([]domain.TrainingJob, error)

	mu    sync.Mutex
	saves int
}

func (m *jobStoreMock) Load() ([]domain.TrainingJob, error) {
	if m.LoadFunc != nil {
		return m.LoadFunc()
	}
	return nil, nil
}

func (m *jobStoreMock) Save([]domain.TrainingJob) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.saves++
	return nil
}

type exporterMock struct {
	ExportFunc func(datasetID *uuid.UUID) (string, error)
}

func (m *exporterMock) ExportForTraining(datasetID *uuid.UUID) (string, error) {
	if m.ExportFunc != nil {
		return m.ExportFunc(datasetID)
	}
	return "/tmp/training.jsonl", nil
}

// trainerMock blocks in Train until released, so tests control when a job
// reaches its terminal state.
type trainerMock struct {
	name          string
	available     bool
	TrainFunc     func(ctx context.Context, cfg domain.TrainingConfig, dataFile string, report func(domain.TrainingProgress)) (string, error)
	started       chan struct{}
	startedOnce   sync.Once
	release       chan struct{}
	releaseResult string
	releaseErr    error
}

func newTrainerMock(name string) *trainerMock {
	return &trainerMock{
		name:      name,
		available: true,
		started:   make(chan struct{}),
		release:   make(chan struct{}),
	}
}

func (m *trainerMock) Name() string                   { return m.name }
func (m *trainerMock) Available(context.Context) bool { return m.available }

func (m *trainerMock) Train(ctx context.Context, cfg domain.TrainingConfig, dataFile string, report func(domain.TrainingProgress)) (string, error) {
	if m.TrainFunc != nil {
		return m.TrainFunc(ctx, cfg, dataFile, report)
	}
	m.startedOnce.Do(func() { close(m.started) })
	select {
	case <-m.release:
		return m.releaseResult, m.releaseErr
	case <-ctx.Done():
		return "", ctx.Err()
	}
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestService(t *testing.T, trainers ...Trainer) *Service {
	t.Helper()
	svc, err := NewService(&jobStoreMock{}, &exporterMock{}, trainers, t.TempDir(), testLogger())
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}
	return svc
}

// waitForStatus polls until the job reaches the wanted status.
func waitForStatus(t *testing.T, svc *Service, id uuid.UUID, want domain.JobStatus) *domain.TrainingJob {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		job, err := svc.GetJob(id)
		if err != nil {
			t.Fatalf("GetJob: %v", err)
		}
		if job.Status == want {
			return job
		}
		time.Sleep(5 * time.Millisecond)
	}
	job, _ := svc.GetJob(id)
	t.Fatalf("job never reached %s, stuck at %s", want, job.Status)
	return nil
}

func TestCreateJob_Defaults(t *testing.T) {
	t.Parallel()

	svc := newTestService(t)

	job, err := svc.CreateJob(CreateJobInput{})
	if err != nil {
		t.Fatalf("CreateJob: %v", err)
	}
	if job.Status != domain.JobStatusPending {
		t.Errorf("status = %s", job.Status)
	}
	if job.Config.BaseModel != "unsloth/Qwen2.5-3B-Instruct" {
		t.Errorf("base model = %q", job.Config.BaseModel)
	}
	if job.Config.LoraRank != 16 {
		t.Errorf("lora rank = %d", job.Config.LoraRank)
	}
}

func TestStartJob_RunsToCompletion(t *testing.T) {
	t.Parallel()

	trainer := newTrainerMock("fast")
	trainer.releaseResult = "/models/out"
	svc := newTestService(t, trainer)

	job, _ := svc.CreateJob(CreateJobInput{})
	if err := svc.StartJob(job.ID); err != nil {
		t.Fatalf("StartJob: %v", err)
	}

	<-trainer.started
	waitForStatus(t, svc, job.ID, domain.JobStatusTraining)
	close(trainer.release)

	done := waitForStatus(t, svc, job.ID, domain.JobStatusCompleted)
	if done.Progress != 100 {
		t.Errorf("progress = %v", done.Progress)
	}
	if done.OutputPath != "/models/out" {
		t.Errorf("output = %q", done.OutputPath)
	}
	if done.StartedAt == nil || done.CompletedAt == nil {
		t.Error("timestamps not set")
	}
}

func TestStartJob_SingleActiveSlot(t *testing.T) {
	t.Parallel()

	trainer := newTrainerMock("fast")
	svc := newTestService(t, trainer)

	first, _ := svc.CreateJob(CreateJobInput{})
	second, _ := svc.CreateJob(CreateJobInput{})

	if err := svc.StartJob(first.ID); err != nil {
		t.Fatalf("StartJob: %v", err)
	}
	<-trainer.started

	if err := svc.StartJob(second.ID); !errors.Is(err, domain.ErrConflict) {
		t.Errorf("second start = %v, want ErrConflict", err)
	}

	close(trainer.release)
	waitForStatus(t, svc, first.ID, domain.JobStatusCompleted)
}

func TestStartJob_OnlyPendingOrFailed(t *testing.T) {
	t.Parallel()

	trainer := newTrainerMock("fast")
	svc := newTestService(t, trainer)

	job, _ := svc.CreateJob(CreateJobInput{})
	if err := svc.StartJob(job.ID); err != nil {
		t.Fatalf("StartJob: %v", err)
	}
	<-trainer.started
	close(trainer.release)
	waitForStatus(t, svc, job.ID, domain.JobStatusCompleted)

	if err := svc.StartJob(job.ID); !errors.Is(err, domain.ErrConflict) {
		t.Errorf("restart of completed job = %v, want ErrConflict", err)
	}
	if err := svc.StartJob(uuid.New()); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("unknown job = %v, want ErrNotFound", err)
	}
}

func TestStartJob_RestartAfterFailure(t *testing.T) {
	t.Parallel()

	attempts := 0
	trainer := newTrainerMock("flaky")
	trainer.TrainFunc = func(context.Context, domain.TrainingConfig, string, func(domain.TrainingProgress)) (string, error) {
		attempts++
		if attempts == 1 {
			return "", errors.New("out of memory")
		}
		return "/models/out", nil
	}
	svc := newTestService(t, trainer)

	job, _ := svc.CreateJob(CreateJobInput{})
	if err := svc.StartJob(job.ID); err != nil {
		t.Fatalf("StartJob: %v", err)
	}
	failed := waitForStatus(t, svc, job.ID, domain.JobStatusFailed)
	if failed.ErrorMessage == "" || failed.CompletedAt == nil {
		t.Errorf("failed job = %+v", failed)
	}

	if err := svc.StartJob(job.ID); err != nil {
		t.Fatalf("restart: %v", err)
	}
	waitForStatus(t, svc, job.ID, domain.JobStatusCompleted)
}

func TestStartJob_NoApprovedData(t *testing.T) {
	t.Parallel()

	trainer := newTrainerMock("fast")
	svc, err := NewService(
		&jobStoreMock{},
		&exporterMock{ExportFunc: func(*uuid.UUID) (string, error) { return "", domain.ErrNoExamples }},
		[]Trainer{trainer},
		t.TempDir(),
		testLogger(),
	)
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}

	job, _ := svc.CreateJob(CreateJobInput{})
	if err := svc.StartJob(job.ID); err != nil {
		t.Fatalf("StartJob: %v", err)
	}

	failed := waitForStatus(t, svc, job.ID, domain.JobStatusFailed)
	if failed.ErrorMessage == "" {
		t.Error("expected error message")
	}
}

func TestStartJob_NoTrainerAvailable(t *testing.T) {
	t.Parallel()

	trainer := newTrainerMock("offline")
	trainer.available = false
	svc := newTestService(t, trainer)

	job, _ := svc.CreateJob(CreateJobInput{})
	if err := svc.StartJob(job.ID); err != nil {
		t.Fatalf("StartJob: %v", err)
	}
	waitForStatus(t, svc, job.ID, domain.JobStatusFailed)
}

func TestStartJob_PrefersFirstAvailableTrainer(t *testing.T) {
	t.Parallel()

	offline := newTrainerMock("offline")
	offline.available = false
	online := newTrainerMock("online")
	svc := newTestService(t, offline, online)

	job, _ := svc.CreateJob(CreateJobInput{})
	if err := svc.StartJob(job.ID); err != nil {
		t.Fatalf("StartJob: %v", err)
	}
	<-online.started
	close(online.release)
	waitForStatus(t, svc, job.ID, domain.JobStatusCompleted)
}

func TestCancelJob(t *testing.T) {
	t.Parallel()

	trainer := newTrainerMock("slow")
	svc := newTestService(t, trainer)

	job, _ := svc.CreateJob(CreateJobInput{})
	if err := svc.StartJob(job.ID); err != nil {
		t.Fatalf("StartJob: %v", err)
	}
	<-trainer.started
	waitForStatus(t, svc, job.ID, domain.JobStatusTraining)

	if err := svc.CancelJob(job.ID); err != nil {
		t.Fatalf("CancelJob: %v", err)
	}

	got, _ := svc.GetJob(job.ID)
	if got.Status != domain.JobStatusCancelled {
		t.Errorf("status = %s", got.Status)
	}
	if got.CompletedAt == nil {
		t.Error("cancelled jobs still get a completion time")
	}

	// the trainer goroutine unwinding must not overwrite the cancellation
	time.Sleep(50 * time.Millisecond)
	got, _ = svc.GetJob(job.ID)
	if got.Status != domain.JobStatusCancelled {
		t.Errorf("status after unwind = %s", got.Status)
	}

	// slot is free again
	next, _ := svc.CreateJob(CreateJobInput{})
	if err := svc.StartJob(next.ID); err != nil {
		t.Errorf("start after cancel = %v", err)
	}
}

func TestCancelJob_WhilePreparing(t *testing.T) {
	t.Parallel()

	// hold the run inside the export phase so the job stays preparing
	gate := make(chan struct{})
	exporter := &exporterMock{
		ExportFunc: func(*uuid.UUID) (string, error) {
			<-gate
			return "/tmp/training.jsonl", nil
		},
	}
	trainer := newTrainerMock("slow")
	svc, err := NewService(&jobStoreMock{}, exporter, []Trainer{trainer}, t.TempDir(), testLogger())
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}

	first, _ := svc.CreateJob(CreateJobInput{})
	if err := svc.StartJob(first.ID); err != nil {
		t.Fatalf("StartJob: %v", err)
	}
	waitForStatus(t, svc, first.ID, domain.JobStatusPreparing)

	if err := svc.CancelJob(first.ID); err != nil {
		t.Fatalf("CancelJob: %v", err)
	}

	// the freed slot must accept the next job
	second, _ := svc.CreateJob(CreateJobInput{})
	if err := svc.StartJob(second.ID); err != nil {
		t.Fatalf("start after cancel = %v", err)
	}

	close(gate)
	<-trainer.started
	waitForStatus(t, svc, second.ID, domain.JobStatusTraining)

	// the first run goroutine unwinding must not drag the job back through
	// training or into failed
	got, _ := svc.GetJob(first.ID)
	if got.Status != domain.JobStatusCancelled {
		t.Fatalf("first job status = %s, want cancelled", got.Status)
	}
	if got.ErrorMessage != "" {
		t.Errorf("first job error = %q, want none", got.ErrorMessage)
	}

	close(trainer.release)
	waitForStatus(t, svc, second.ID, domain.JobStatusCompleted)

	got, _ = svc.GetJob(first.ID)
	if got.Status != domain.JobStatusCancelled {
		t.Errorf("first job status after unwind = %s, want cancelled", got.Status)
	}
}

func TestCancelJob_OnlyRunningJobs(t *testing.T) {
	t.Parallel()

	svc := newTestService(t, newTrainerMock("fast"))

	job, _ := svc.CreateJob(CreateJobInput{})
	if err := svc.CancelJob(job.ID); !errors.Is(err, domain.ErrConflict) {
		t.Errorf("cancel pending = %v, want ErrConflict", err)
	}
	if err := svc.CancelJob(uuid.New()); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("cancel unknown = %v, want ErrNotFound", err)
	}
}

func TestDeleteJob(t *testing.T) {
	t.Parallel()

	trainer := newTrainerMock("slow")
	svc := newTestService(t, trainer)

	job, _ := svc.CreateJob(CreateJobInput{})
	if err := svc.StartJob(job.ID); err != nil {
		t.Fatalf("StartJob: %v", err)
	}
	<-trainer.started

	if err := svc.DeleteJob(job.ID); !errors.Is(err, domain.ErrConflict) {
		t.Errorf("delete active = %v, want ErrConflict", err)
	}

	close(trainer.release)
	waitForStatus(t, svc, job.ID, domain.JobStatusCompleted)

	if err := svc.DeleteJob(job.ID); err != nil {
		t.Fatalf("DeleteJob: %v", err)
	}
	if _, err := svc.GetJob(job.ID); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("deleted job = %v", err)
	}
}

func TestProgressReporting(t *testing.T) {
	t.Parallel()

	trainer := newTrainerMock("steps")
	trainer.TrainFunc = func(_ context.Context, _ domain.TrainingConfig, _ string, report func(domain.TrainingProgress)) (string, error) {
		report(domain.TrainingProgress{Step: 5, TotalSteps: 10, Metrics: map[string]float64{"loss": 1.2}})
		report(domain.TrainingProgress{Step: 3, TotalSteps: 10}) // stale, ignored
		report(domain.TrainingProgress{Step: 8, TotalSteps: 10, Metrics: map[string]float64{"loss": 0.7}})
		return "/models/out", nil
	}
	svc := newTestService(t, trainer)

	job, _ := svc.CreateJob(CreateJobInput{})
	if err := svc.StartJob(job.ID); err != nil {
		t.Fatalf("StartJob: %v", err)
	}
	done := waitForStatus(t, svc, job.ID, domain.JobStatusCompleted)

	if done.CurrentStep != 8 || done.TotalSteps != 10 {
		t.Errorf("steps = %d/%d", done.CurrentStep, done.TotalSteps)
	}
	if done.Metrics["loss"] != 0.7 {
		t.Errorf("loss = %v", done.Metrics["loss"])
	}
}

func TestListJobs_NewestFirst(t *testing.T) {
	t.Parallel()

	store := &jobStoreMock{
		LoadFunc: func() ([]domain.TrainingJob, error) {
			return []domain.TrainingJob{
				{ID: uuid.New(), Status: domain.JobStatusCompleted, CreatedAt: time.Now().Add(-2 * time.Hour)},
				{ID: uuid.New(), Status: domain.JobStatusPending, CreatedAt: time.Now().Add(-1 * time.Hour)},
			}, nil
		},
	}
	svc, err := NewService(store, &exporterMock{}, nil, t.TempDir(), testLogger())
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}

	jobs := svc.ListJobs()
	if len(jobs) != 2 {
		t.Fatalf("jobs = %d", len(jobs))
	}
	if !jobs[0].CreatedAt.After(jobs[1].CreatedAt) {
		t.Error("jobs must be newest first")
	}
}

func TestNewService_FailsInterruptedJobs(t *testing.T) {
	t.Parallel()

	store := &jobStoreMock{
		LoadFunc: func() ([]domain.TrainingJob, error) {
			return []domain.TrainingJob{
				{ID: uuid.New(), Status: domain.JobStatusTraining},
				{ID: uuid.New(), Status: domain.JobStatusPending},
			}, nil
		},
	}
	svc, err := NewService(store, &exporterMock{}, nil, t.TempDir(), testLogger())
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}

	var failed, pending int
	for _, job := range svc.ListJobs() {
		switch job.Status {
		case domain.JobStatusFailed:
			failed++
		case domain.JobStatusPending:
			pending++
		}
	}
	if failed != 1 || pending != 1 {
		t.Errorf("failed = %d, pending = %d", failed, pending)
	}
}

func TestListTrainedModels(t *testing.T) {
	t.Parallel()

	modelsDir := t.TempDir()

	loraDir := filepath.Join(modelsDir, "tutor-lora")
	if err := os.MkdirAll(loraDir, 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(loraDir, "adapter_config.json"), []byte("{}"), 0o644); err != nil {
		t.Fatal(err)
	}
	// directory without adapter config is not a model
	if err := os.MkdirAll(filepath.Join(modelsDir, "scratch"), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(modelsDir, "tutor.gguf"), make([]byte, 2*1024*1024), 0o644); err != nil {
		t.Fatal(err)
	}

	svc, err := NewService(&jobStoreMock{}, &exporterMock{}, nil, modelsDir, testLogger())
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}

	models, err := svc.ListTrainedModels()
	if err != nil {
		t.Fatalf("ListTrainedModels: %v", err)
	}
	if len(models) != 2 {
		t.Fatalf("models = %+v", models)
	}

	byName := make(map[string]domain.TrainedModel)
	for _, m := range models {
		byName[m.Name] = m
	}
	if byName["tutor-lora"].Type != domain.ModelTypeLoRA {
		t.Errorf("lora model = %+v", byName["tutor-lora"])
	}
	gguf := byName["tutor.gguf"]
	if gguf.Type != domain.ModelTypeGGUF || gguf.SizeMB != 2 {
		t.Errorf("gguf model = %+v", gguf)
	}
}

func TestListTrainedModels_MissingDir(t *testing.T) {
	t.Parallel()

	svc, err := NewService(&jobStoreMock{}, &exporterMock{}, nil, filepath.Join(t.TempDir(), "nope"), testLogger())
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}
	models, err := svc.ListTrainedModels()
	if err != nil || models != nil {
		t.Errorf("models = %v, err = %v", models, err)
	}
}

func TestBaseModels(t *testing.T) {
	t.Parallel()

	svc := newTestService(t)
	models := svc.BaseModels()
	if len(models) == 0 {
		t.Fatal("catalog is empty")
	}
	for _, m := range models {
		if m.ID == "" || m.Name == "" || m.VRAMRequired == "" {
			t.Errorf("incomplete entry: %+v", m)
		}
	}
}
