package domain

import (
	"time"

	"github.com/google/uuid"
)

// JobStatus is the lifecycle state of a training job.
type JobStatus string

const (
	JobStatusPending   JobStatus = "pending"
	JobStatusPreparing JobStatus = "preparing"
	JobStatusTraining  JobStatus = "training"
	JobStatusCompleted JobStatus = "completed"
	JobStatusFailed    JobStatus = "failed"
	JobStatusCancelled JobStatus = "cancelled"
)

func (s JobStatus) String() string { return string(s) }

func (s JobStatus) IsValid() bool {
	switch s {
	case JobStatusPending, JobStatusPreparing, JobStatusTraining,
		JobStatusCompleted, JobStatusFailed, JobStatusCancelled:
		return true
	}
	return false
}

// IsTerminal reports whether the job can make no further progress.
func (s JobStatus) IsTerminal() bool {
	switch s {
	case JobStatusCompleted, JobStatusFailed, JobStatusCancelled:
		return true
	}
	return false
}

// CanStart reports whether a job in this state may be (re)started.
func (s JobStatus) CanStart() bool {
	return s == JobStatusPending || s == JobStatusFailed
}

// ExportFormat selects the serialization layout for exported training data.
type ExportFormat string

const (
	ExportFormatJSONL    ExportFormat = "jsonl"
	ExportFormatAlpaca   ExportFormat = "alpaca"
	ExportFormatShareGPT ExportFormat = "sharegpt"
)

func (f ExportFormat) String() string { return string(f) }

func (f ExportFormat) IsValid() bool {
	switch f {
	case ExportFormatJSONL, ExportFormatAlpaca, ExportFormatShareGPT:
		return true
	}
	return false
}

// ModelType distinguishes the artifact layout of a trained model.
type ModelType string

const (
	ModelTypeLoRA ModelType = "lora"
	ModelTypeGGUF ModelType = "gguf"
)

func (t ModelType) String() string { return string(t) }

// TrainingExample is a single prompt/response pair collected for fine-tuning.
type TrainingExample struct {
	ID              uuid.UUID `json:"id"`
	CreatedAt       time.Time `json:"created_at"`
	SystemPrompt    string    `json:"system_prompt"`
	UserInput       string    `json:"user_input"`
	AssistantOutput string    `json:"assistant_output"`
	Category        string    `json:"category"`
	Language        string    `json:"language"`
	QualityRating   *int      `json:"quality_rating,omitempty"`
	IsApproved      bool      `json:"is_approved"`
}

// TrainingDataset is a named collection of training examples.
type TrainingDataset struct {
	ID          uuid.UUID         `json:"id"`
	Name        string            `json:"name"`
	Description string            `json:"description"`
	CreatedAt   time.Time         `json:"created_at"`
	UpdatedAt   time.Time         `json:"updated_at"`
	Examples    []TrainingExample `json:"examples"`
}

// ExampleCount is the number of examples in the dataset.
func (d *TrainingDataset) ExampleCount() int { return len(d.Examples) }

// ApprovedCount is the number of examples marked approved.
func (d *TrainingDataset) ApprovedCount() int {
	n := 0
	for _, e := range d.Examples {
		if e.IsApproved {
			n++
		}
	}
	return n
}

// TrainingConfig holds the hyperparameters for one fine-tuning run.
type TrainingConfig struct {
	BaseModel         string  `json:"base_model"`
	LoraRank          int     `json:"lora_r"`
	LoraAlpha         int     `json:"lora_alpha"`
	LoraDropout       float64 `json:"lora_dropout"`
	Epochs            int     `json:"num_epochs"`
	BatchSize         int     `json:"batch_size"`
	GradAccumSteps    int     `json:"gradient_accumulation_steps"`
	LearningRate      float64 `json:"learning_rate"`
	WarmupSteps       int     `json:"warmup_steps"`
	MaxSequenceLength int     `json:"max_seq_length"`
	OutputName        string  `json:"output_name"`
}

// DefaultTrainingConfig returns the hyperparameters used when a job is
// created without an explicit configuration.
func DefaultTrainingConfig() TrainingConfig {
	return TrainingConfig{
		BaseModel:         "unsloth/Qwen2.5-3B-Instruct",
		LoraRank:          16,
		LoraAlpha:         16,
		LoraDropout:       0.05,
		Epochs:            3,
		BatchSize:         2,
		GradAccumSteps:    4,
		LearningRate:      2e-4,
		WarmupSteps:       5,
		MaxSequenceLength: 2048,
		OutputName:        "language-tutor-lora",
	}
}

// TrainingJob tracks one fine-tuning run from creation to a terminal state.
type TrainingJob struct {
	ID           uuid.UUID          `json:"id"`
	Status       JobStatus          `json:"status"`
	Progress     float64            `json:"progress"`
	CurrentStep  int                `json:"current_step"`
	TotalSteps   int                `json:"total_steps"`
	CreatedAt    time.Time          `json:"created_at"`
	StartedAt    *time.Time         `json:"started_at,omitempty"`
	CompletedAt  *time.Time         `json:"completed_at,omitempty"`
	Config       TrainingConfig     `json:"config"`
	DatasetID    *uuid.UUID         `json:"dataset_id,omitempty"`
	OutputPath   string             `json:"output_path,omitempty"`
	ErrorMessage string             `json:"error_message,omitempty"`
	Metrics      map[string]float64 `json:"metrics,omitempty"`
}

// TrainingProgress is one progress report from a running trainer.
type TrainingProgress struct {
	Step       int
	TotalSteps int
	Metrics    map[string]float64
}

// TrainedModel describes a fine-tuned artifact found on disk.
type TrainedModel struct {
	Name      string    `json:"name"`
	Path      string    `json:"path"`
	Type      ModelType `json:"type"`
	SizeMB    float64   `json:"size_mb"`
	CreatedAt time.Time `json:"created_at"`
}

// BaseModel is an entry in the catalog of recommended fine-tuning bases.
type BaseModel struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	Size         string `json:"size"`
	Description  string `json:"description"`
	VRAMRequired string `json:"vram_required"`
}
