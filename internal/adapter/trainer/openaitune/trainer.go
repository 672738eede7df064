// Package openaitune runs LoRA fine-tuning through an OpenAI-compatible
// fine-tuning API. Progress is read from the job's event stream.
package openaitune

import (
	"context"
	"fmt"
	"log/slog"
	"regexp"
	"strconv"
	"time"

	openai "github.com/sashabaranov/go-openai"

	"github.com/heartmarshall/langtutor-backend/internal/domain"
)

const trainerName = "openai"

type Trainer struct {
	api          *openai.Client
	pollInterval time.Duration
	log          *slog.Logger
}

func New(apiKey, baseURL string, pollInterval time.Duration, logger *slog.Logger) *Trainer {
	cfg := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		cfg.BaseURL = baseURL
	}
	return &Trainer{
		api:          openai.NewClientWithConfig(cfg),
		pollInterval: pollInterval,
		log:          logger.With("adapter", "openaitune"),
	}
}

func (t *Trainer) Name() string { return trainerName }

// Available reports whether the API answers at all.
func (t *Trainer) Available(ctx context.Context) bool {
	_, err := t.api.ListModels(ctx)
	return err == nil
}

// Train uploads the JSONL data file, starts a fine-tuning job and polls it
// to completion. The returned path is the fine-tuned model identifier.
func (t *Trainer) Train(ctx context.Context, cfg domain.TrainingConfig, dataFile string, report func(domain.TrainingProgress)) (string, error) {
	file, err := t.api.CreateFile(ctx, openai.FileRequest{
		FileName: "training.jsonl",
		FilePath: dataFile,
		Purpose:  "fine-tune",
	})
	if err != nil {
		return "", fmt.Errorf("openaitune: upload training file: %w", err)
	}

	job, err := t.api.CreateFineTuningJob(ctx, openai.FineTuningJobRequest{
		TrainingFile: file.ID,
		Model:        cfg.BaseModel,
		Suffix:       cfg.OutputName,
		Hyperparameters: &openai.Hyperparameters{
			Epochs: cfg.Epochs,
		},
	})
	if err != nil {
		return "", fmt.Errorf("openaitune: create job: %w", err)
	}
	t.log.InfoContext(ctx, "fine-tuning job started", slog.String("job_id", job.ID))

	return t.poll(ctx, job.ID, report)
}

func (t *Trainer) poll(ctx context.Context, jobID string, report func(domain.TrainingProgress)) (string, error) {
	ticker := time.NewTicker(t.pollInterval)
	defer ticker.Stop()

	lastEvent := ""
	for {
		select {
		case <-ctx.Done():
			// best effort; ctx is already done so use a fresh one
			cancelCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			if _, err := t.api.CancelFineTuningJob(cancelCtx, jobID); err != nil {
				t.log.Warn("cancel after context done failed", slog.String("error", err.Error()))
			}
			cancel()
			return "", ctx.Err()
		case <-ticker.C:
		}

		job, err := t.api.RetrieveFineTuningJob(ctx, jobID)
		if err != nil {
			return "", fmt.Errorf("openaitune: retrieve job: %w", err)
		}

		events, err := t.api.ListFineTuningJobEvents(ctx, jobID,
			openai.ListFineTuningJobEventsWithLimit(20))
		if err == nil {
			lastEvent = reportEvents(events.Data, lastEvent, report)
		}

		switch job.Status {
		case "succeeded":
			return job.FineTunedModel, nil
		case "failed":
			return "", fmt.Errorf("openaitune: job failed: %s", jobID)
		case "cancelled":
			return "", fmt.Errorf("openaitune: job cancelled: %s", jobID)
		}
	}
}

// stepPattern matches progress messages like "Step 120/300: training loss=1.42".
var stepPattern = regexp.MustCompile(`Step (\d+)/(\d+)(?:.*loss[=:]\s*([0-9.]+))?`)

// reportEvents forwards progress from any events newer than lastSeen and
// returns the newest message seen. Events arrive newest-first.
func reportEvents(events []openai.FineTuneEvent, lastSeen string, report func(domain.TrainingProgress)) string {
	if len(events) == 0 {
		return lastSeen
	}
	cut := len(events)
	if lastSeen != "" {
		for i, ev := range events {
			if ev.Message == lastSeen {
				cut = i
				break
			}
		}
	}
	for i := cut - 1; i >= 0; i-- {
		if p, ok := parseProgress(events[i].Message); ok {
			report(p)
		}
	}
	return events[0].Message
}

func parseProgress(message string) (domain.TrainingProgress, bool) {
	m := stepPattern.FindStringSubmatch(message)
	if m == nil {
		return domain.TrainingProgress{}, false
	}
	step, _ := strconv.Atoi(m[1])
	total, _ := strconv.Atoi(m[2])
	p := domain.TrainingProgress{Step: step, TotalSteps: total}
	if m[3] != "" {
		if loss, err := strconv.ParseFloat(m[3], 64); err == nil {
			p.Metrics = map[string]float64{"loss": loss}
		}
	}
	return p, true
}
