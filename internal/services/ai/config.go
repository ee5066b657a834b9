// File: internal/services/ai/config.go
package ai

import (
	"fmt"
	"time"
)

type Config struct {
	Provider string // "gemini" or "openai"
	APIKey   string
	BaseURL  string // optional override for OpenAI-compatible endpoints
	Model    string

	Timeout    time.Duration // per attempt
	MaxRetries int
	RetryDelay time.Duration // multiplied by the attempt number

	Temperature float32
	TopP        float32
}

func (c *Config) Validate() error {
	if c.Provider != "gemini" && c.Provider != "openai" {
		return fmt.Errorf("unknown completion provider %q", c.Provider)
	}
	if c.APIKey == "" {
		return fmt.Errorf("%s api key is required", c.Provider)
	}
	if c.Model == "" {
		return fmt.Errorf("model is required")
	}
	if c.Timeout <= 0 {
		return fmt.Errorf("timeout must be positive")
	}
	if c.MaxRetries < 1 {
		return fmt.Errorf("max retries must be at least 1")
	}
	return nil
}

func DefaultConfig() *Config {
	return &Config{
		Provider:    "gemini",
		Model:       "gemini-1.5-flash",
		Timeout:     60 * time.Second,
		MaxRetries:  2,
		RetryDelay:  time.Second,
		Temperature: 0.7,
		TopP:        0.95,
	}
}
