// Package localexec runs LoRA fine-tuning as a local subprocess. The
// command receives the hyperparameters as JSON on stdin and is expected to
// print one JSON progress line per logging step on stdout.
package localexec

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/heartmarshall/langtutor-backend/internal/domain"
)

const trainerName = "local"

type Trainer struct {
	command   string
	modelsDir string
	log       *slog.Logger
}

func New(command, modelsDir string, logger *slog.Logger) *Trainer {
	return &Trainer{
		command:   command,
		modelsDir: modelsDir,
		log:       logger.With("adapter", "localexec"),
	}
}

func (t *Trainer) Name() string { return trainerName }

// Available reports whether the training command exists on PATH.
func (t *Trainer) Available(context.Context) bool {
	if t.command == "" {
		return false
	}
	_, err := exec.LookPath(strings.Fields(t.command)[0])
	return err == nil
}

// progressLine is one stdout line from the training process.
type progressLine struct {
	Step       int                `json:"step"`
	TotalSteps int                `json:"total_steps"`
	Metrics    map[string]float64 `json:"metrics"`
	Error      string             `json:"error"`
}

// Train runs the training command to completion, forwarding progress lines
// through report. The adapter is written next to the data under modelsDir.
func (t *Trainer) Train(ctx context.Context, cfg domain.TrainingConfig, dataFile string, report func(domain.TrainingProgress)) (string, error) {
	outputDir := filepath.Join(t.modelsDir, cfg.OutputName)

	parts := strings.Fields(t.command)
	if len(parts) == 0 {
		return "", fmt.Errorf("localexec: no training command configured")
	}
	args := append(parts[1:], "--data", dataFile, "--output", outputDir)
	cmd := exec.CommandContext(ctx, parts[0], args...)

	configJSON, err := json.Marshal(cfg)
	if err != nil {
		return "", fmt.Errorf("localexec: marshal config: %w", err)
	}
	cmd.Stdin = bytes.NewReader(configJSON)

	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return "", fmt.Errorf("localexec: stdout pipe: %w", err)
	}
	if err := cmd.Start(); err != nil {
		return "", fmt.Errorf("localexec: start %q: %w", parts[0], err)
	}
	t.log.InfoContext(ctx, "training process started",
		slog.String("command", parts[0]),
		slog.String("output", outputDir))

	var procErr string
	scanner := bufio.NewScanner(stdout)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		var p progressLine
		if err := json.Unmarshal([]byte(line), &p); err != nil {
			// trainers also print free-form logs; keep them for debugging
			t.log.Debug("trainer output", slog.String("line", line))
			continue
		}
		if p.Error != "" {
			procErr = p.Error
			continue
		}
		report(domain.TrainingProgress{
			Step:       p.Step,
			TotalSteps: p.TotalSteps,
			Metrics:    p.Metrics,
		})
	}

	if err := cmd.Wait(); err != nil {
		if ctx.Err() != nil {
			return "", ctx.Err()
		}
		detail := procErr
		if detail == "" {
			detail = strings.TrimSpace(stderr.String())
		}
		if detail != "" {
			return "", fmt.Errorf("localexec: training failed: %s: %w", detail, err)
		}
		return "", fmt.Errorf("localexec: training failed: %w", err)
	}
	if procErr != "" {
		return "", fmt.Errorf("localexec: training failed: %s", procErr)
	}

	return outputDir, nil
}
