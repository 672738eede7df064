package training

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/heartmarshall/langtutor-backend/internal/domain"
)

// ListTrainedModels scans the models directory for fine-tuned artifacts:
// directories holding a LoRA adapter and standalone GGUF files.
func (s *Service) ListTrainedModels() ([]domain.TrainedModel, error) {
	entries, err := os.ReadDir(s.modelsDir)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("training: read models dir: %w", err)
	}

	var models []domain.TrainedModel
	for _, entry := range entries {
		path := filepath.Join(s.modelsDir, entry.Name())
		info, err := entry.Info()
		if err != nil {
			continue
		}

		switch {
		case entry.IsDir():
			if _, err := os.Stat(filepath.Join(path, "adapter_config.json")); err != nil {
				continue
			}
			models = append(models, domain.TrainedModel{
				Name:      entry.Name(),
				Path:      path,
				Type:      domain.ModelTypeLoRA,
				CreatedAt: info.ModTime(),
			})
		case strings.HasSuffix(entry.Name(), ".gguf"):
			models = append(models, domain.TrainedModel{
				Name:      entry.Name(),
				Path:      path,
				Type:      domain.ModelTypeGGUF,
				SizeMB:    float64(info.Size()) / (1024 * 1024),
				CreatedAt: info.ModTime(),
			})
		}
	}
	return models, nil
}

// BaseModels is the catalog of recommended fine-tuning bases.
func (s *Service) BaseModels() []domain.BaseModel {
	return []domain.BaseModel{
		{
			ID:           "unsloth/Llama-3.2-1B-Instruct",
			Name:         "Llama 3.2 1B Instruct",
			Description:  "Small, fast model for quick training. Good for testing.",
			Size:         "1B",
			VRAMRequired: "6GB",
		},
		{
			ID:           "unsloth/Llama-3.2-3B-Instruct",
			Name:         "Llama 3.2 3B Instruct",
			Description:  "Medium model with good performance/speed balance.",
			Size:         "3B",
			VRAMRequired: "8GB",
		},
		{
			ID:           "unsloth/Qwen2.5-3B-Instruct",
			Name:         "Qwen 2.5 3B Instruct",
			Description:  "Compact model with strong multilingual support.",
			Size:         "3B",
			VRAMRequired: "8GB",
		},
		{
			ID:           "unsloth/Meta-Llama-3.1-8B-Instruct",
			Name:         "Llama 3.1 8B Instruct",
			Description:  "Larger model with better language understanding.",
			Size:         "8B",
			VRAMRequired: "16GB",
		},
		{
			ID:           "unsloth/Qwen2.5-7B-Instruct",
			Name:         "Qwen 2.5 7B Instruct",
			Description:  "Excellent multilingual support.",
			Size:         "7B",
			VRAMRequired: "16GB",
		},
		{
			ID:           "unsloth/Mistral-7B-Instruct-v0.3",
			Name:         "Mistral 7B Instruct v0.3",
			Description:  "Strong reasoning and instruction following.",
			Size:         "7B",
			VRAMRequired: "16GB",
		},
	}
}
