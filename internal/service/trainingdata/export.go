package trainingdata

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"github.com/heartmarshall/langtutor-backend/internal/domain"
)

// ExportInput selects what to export and in which layout.
type ExportInput struct {
	DatasetID    *uuid.UUID
	Format       domain.ExportFormat
	OnlyApproved bool
}

func (in *ExportInput) normalize() {
	if in.Format == "" {
		in.Format = domain.ExportFormatJSONL
	}
}

func (in ExportInput) Validate() error {
	if in.Format != "" && !in.Format.IsValid() {
		return domain.NewValidationError("format", "must be jsonl, alpaca or sharegpt")
	}
	return nil
}

// Export writes the selected examples into a trainer-ready file and returns
// its path. Selecting zero examples is ErrNoExamples.
func (s *Service) Export(in ExportInput) (string, error) {
	if err := in.Validate(); err != nil {
		return "", err
	}
	in.normalize()

	examples, err := s.selectExamples(in.DatasetID, in.OnlyApproved)
	if err != nil {
		return "", err
	}
	if len(examples) == 0 {
		return "", domain.ErrNoExamples
	}

	if err := os.MkdirAll(s.exportDir, 0o755); err != nil {
		return "", fmt.Errorf("trainingdata: create export dir: %w", err)
	}

	timestamp := time.Now().Format("20060102_150405")

	var path string
	switch in.Format {
	case domain.ExportFormatJSONL:
		path = filepath.Join(s.exportDir, fmt.Sprintf("training_%s.jsonl", timestamp))
		err = writeJSONL(path, examples)
	case domain.ExportFormatAlpaca:
		path = filepath.Join(s.exportDir, fmt.Sprintf("training_%s_alpaca.json", timestamp))
		err = writeAlpaca(path, examples)
	case domain.ExportFormatShareGPT:
		path = filepath.Join(s.exportDir, fmt.Sprintf("training_%s_sharegpt.json", timestamp))
		err = writeShareGPT(path, examples)
	}
	if err != nil {
		return "", fmt.Errorf("trainingdata: export: %w", err)
	}

	s.log.Info("exported training data",
		slog.Int("examples", len(examples)),
		slog.String("format", in.Format.String()),
		slog.String("path", path))
	return path, nil
}

// ExportForTraining exports the approved examples as chat JSONL, the layout
// trainers consume.
func (s *Service) ExportForTraining(datasetID *uuid.UUID) (string, error) {
	return s.Export(ExportInput{
		DatasetID:    datasetID,
		Format:       domain.ExportFormatJSONL,
		OnlyApproved: true,
	})
}

// ApprovedExamples returns every approved example, from one dataset or all.
func (s *Service) ApprovedExamples(datasetID *uuid.UUID) ([]domain.TrainingExample, error) {
	return s.selectExamples(datasetID, true)
}

func (s *Service) selectExamples(datasetID *uuid.UUID, onlyApproved bool) ([]domain.TrainingExample, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var sources []*domain.TrainingDataset
	if datasetID != nil {
		ds, ok := s.datasets[*datasetID]
		if !ok {
			return nil, domain.ErrNotFound
		}
		sources = []*domain.TrainingDataset{ds}
	} else {
		for _, id := range s.order {
			sources = append(sources, s.datasets[id])
		}
	}

	var out []domain.TrainingExample
	for _, ds := range sources {
		for _, ex := range ds.Examples {
			if onlyApproved && !ex.IsApproved {
				continue
			}
			out = append(out, ex)
		}
	}
	return out, nil
}

// writeJSONL emits one chat-completions record per line, the layout the
// OpenAI fine-tuning API and most trainers consume directly.
func writeJSONL(path string, examples []domain.TrainingExample) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	enc := json.NewEncoder(f)
	for _, ex := range examples {
		var messages []domain.Message
		if ex.SystemPrompt != "" {
			messages = append(messages, domain.Message{Role: domain.RoleSystem, Content: ex.SystemPrompt})
		}
		messages = append(messages,
			domain.Message{Role: domain.RoleUser, Content: ex.UserInput},
			domain.Message{Role: domain.RoleAssistant, Content: ex.AssistantOutput},
		)
		if err := enc.Encode(map[string][]domain.Message{"messages": messages}); err != nil {
			return err
		}
	}
	return f.Sync()
}

func writeAlpaca(path string, examples []domain.TrainingExample) error {
	type record struct {
		Instruction string `json:"instruction"`
		Input       string `json:"input"`
		Output      string `json:"output"`
	}

	records := make([]record, 0, len(examples))
	for _, ex := range examples {
		instruction := ex.SystemPrompt
		if instruction == "" {
			instruction = "You are a helpful language tutor."
		}
		records = append(records, record{
			Instruction: instruction,
			Input:       ex.UserInput,
			Output:      ex.AssistantOutput,
		})
	}
	return writeIndentedJSON(path, records)
}

func writeShareGPT(path string, examples []domain.TrainingExample) error {
	type turn struct {
		From  string `json:"from"`
		Value string `json:"value"`
	}
	type record struct {
		Conversations []turn `json:"conversations"`
	}

	records := make([]record, 0, len(examples))
	for _, ex := range examples {
		var conv []turn
		if ex.SystemPrompt != "" {
			conv = append(conv, turn{From: "system", Value: ex.SystemPrompt})
		}
		conv = append(conv,
			turn{From: "human", Value: ex.UserInput},
			turn{From: "gpt", Value: ex.AssistantOutput},
		)
		records = append(records, record{Conversations: conv})
	}
	return writeIndentedJSON(path, records)
}

func writeIndentedJSON(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}
