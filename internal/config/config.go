package config

import (
	"encoding/json"
	"strings"
	"time"
)

// Config is the root application configuration.
type Config struct {
	Server      ServerConfig      `yaml:"server"`
	Log         LogConfig         `yaml:"log"`
	LLM         LLMConfig         `yaml:"llm"`
	Embedding   EmbeddingConfig   `yaml:"embedding"`
	VectorStore VectorStoreConfig `yaml:"vector_store"`
	Training    TrainingConfig    `yaml:"training"`
	CORS        CORSConfig        `yaml:"cors"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Host            string        `yaml:"host"             env:"SERVER_HOST"             env-default:"0.0.0.0"`
	Port            int           `yaml:"port"             env:"SERVER_PORT"             env-default:"8000"`
	ReadTimeout     time.Duration `yaml:"read_timeout"     env:"SERVER_READ_TIMEOUT"     env-default:"30s"`
	WriteTimeout    time.Duration `yaml:"write_timeout"    env:"SERVER_WRITE_TIMEOUT"    env-default:"5m"`
	IdleTimeout     time.Duration `yaml:"idle_timeout"     env:"SERVER_IDLE_TIMEOUT"     env-default:"60s"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" env:"SERVER_SHUTDOWN_TIMEOUT" env-default:"10s"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level  string `yaml:"level"  env:"LOG_LEVEL"  env-default:"info"`
	Format string `yaml:"format" env:"LOG_FORMAT" env-default:"json"`
}

// LLMConfig selects and configures the language-model provider.
type LLMConfig struct {
	Provider string      `yaml:"provider" env:"LLM_PROVIDER" env-default:"groq"`
	Groq     GroqConfig  `yaml:"groq"`
	Local    LocalConfig `yaml:"local"`
}

// GroqConfig holds settings for the remote OpenAI-compatible provider.
type GroqConfig struct {
	APIKey  string        `yaml:"api_key"  env:"GROQ_API_KEY"`
	BaseURL string        `yaml:"base_url" env:"GROQ_BASE_URL" env-default:"https://api.groq.com/openai/v1"`
	Model   string        `yaml:"model"    env:"GROQ_MODEL"    env-default:"llama-3.3-70b-versatile"`
	Timeout time.Duration `yaml:"timeout"  env:"GROQ_TIMEOUT"  env-default:"2m"`
}

// LocalConfig holds settings for the local GGUF provider.
type LocalConfig struct {
	ModelPath     string `yaml:"model_path"     env:"LOCAL_MODEL_PATH"     env-default:"./models/qwen2.5-3b-instruct-q4_k_m.gguf"`
	EngineURL     string `yaml:"engine_url"     env:"LOCAL_ENGINE_URL"     env-default:"http://localhost:11434"`
	ContextLength int    `yaml:"context_length" env:"LOCAL_CONTEXT_LENGTH" env-default:"4096"`
	GPULayers     int    `yaml:"gpu_layers"     env:"LOCAL_GPU_LAYERS"     env-default:"-1"`
}

// EmbeddingConfig holds settings for the embedding endpoint used by retrieval.
type EmbeddingConfig struct {
	APIKey  string `yaml:"api_key"  env:"EMBEDDING_API_KEY"`
	BaseURL string `yaml:"base_url" env:"EMBEDDING_BASE_URL" env-default:"https://api.openai.com/v1"`
	Model   string `yaml:"model"    env:"EMBEDDING_MODEL"    env-default:"text-embedding-3-small"`
}

// VectorStoreConfig holds settings for the on-disk vector index.
type VectorStoreConfig struct {
	Dir string `yaml:"dir" env:"VECTOR_STORE_DIR" env-default:"./data/vectors"`
}

// TrainingConfig holds settings for training data and fine-tuning jobs.
type TrainingConfig struct {
	DataDir         string        `yaml:"data_dir"           env:"TRAINING_DATA_DIR"          env-default:"./data/training"`
	ExportDir       string        `yaml:"export_dir"         env:"TRAINING_EXPORT_DIR"        env-default:"./data/training/exports"`
	ModelsDir       string        `yaml:"models_dir"         env:"TRAINING_MODELS_DIR"        env-default:"./models"`
	AutoCollect     bool          `yaml:"auto_collect"       env:"TRAINING_AUTO_COLLECT"      env-default:"true"`
	FineTuneAPIKey  string        `yaml:"finetune_api_key"   env:"TRAINING_FINETUNE_API_KEY"`
	FineTuneBaseURL string        `yaml:"finetune_base_url"  env:"TRAINING_FINETUNE_BASE_URL" env-default:"https://api.openai.com/v1"`
	PollInterval    time.Duration `yaml:"poll_interval"      env:"TRAINING_POLL_INTERVAL"     env-default:"10s"`
	TrainerCommand  string        `yaml:"trainer_command"    env:"TRAINING_TRAINER_COMMAND"`
}

// CORSConfig holds CORS settings.
type CORSConfig struct {
	AllowedOrigins   string `yaml:"allowed_origins"   env:"CORS_ALLOWED_ORIGINS"   env-default:"*"`
	AllowedMethods   string `yaml:"allowed_methods"   env:"CORS_ALLOWED_METHODS"   env-default:"GET,POST,PUT,DELETE,OPTIONS"`
	AllowedHeaders   string `yaml:"allowed_headers"   env:"CORS_ALLOWED_HEADERS"   env-default:"Content-Type"`
	AllowCredentials bool   `yaml:"allow_credentials" env:"CORS_ALLOW_CREDENTIALS" env-default:"true"`
	MaxAge           int    `yaml:"max_age"           env:"CORS_MAX_AGE"           env-default:"86400"`
}

// Origins parses AllowedOrigins, which may be a JSON array
// (`["http://a","http://b"]`) or a comma-separated list.
func (c CORSConfig) Origins() []string {
	raw := strings.TrimSpace(c.AllowedOrigins)
	if raw == "" {
		return nil
	}
	if strings.HasPrefix(raw, "[") {
		var origins []string
		if err := json.Unmarshal([]byte(raw), &origins); err == nil {
			return origins
		}
	}
	parts := strings.Split(raw, ",")
	origins := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			origins = append(origins, p)
		}
	}
	return origins
}
