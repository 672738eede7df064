package config

import (
	"fmt"
)

// Validate performs business-rule validation on the loaded configuration.
// It must be called after loading; Load calls it automatically.
func (c *Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port must be in (0, 65535] (got %d)", c.Server.Port)
	}

	switch c.LLM.Provider {
	case "groq":
		if c.LLM.Groq.APIKey == "" {
			return fmt.Errorf("llm.groq.api_key is required when llm.provider is %q", c.LLM.Provider)
		}
	case "local":
		if c.LLM.Local.ModelPath == "" {
			return fmt.Errorf("llm.local.model_path is required when llm.provider is %q", c.LLM.Provider)
		}
		if c.LLM.Local.ContextLength <= 0 {
			return fmt.Errorf("llm.local.context_length must be > 0 (got %d)", c.LLM.Local.ContextLength)
		}
	default:
		return fmt.Errorf("llm.provider must be one of: groq, local (got %q)", c.LLM.Provider)
	}

	if c.Training.PollInterval <= 0 {
		return fmt.Errorf("training.poll_interval must be > 0 (got %v)", c.Training.PollInterval)
	}

	return nil
}
