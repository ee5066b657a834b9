package config

import "github.com/iyunix/go-assistant/internal/services/ai"

// Completion builds the completion backend settings for the selected provider.
func (c *Config) Completion() *ai.Config {
	out := ai.DefaultConfig()
	out.Provider = c.AIProvider
	out.Timeout = c.AITimeout
	out.MaxRetries = c.AIMaxRetries
	switch c.AIProvider {
	case ProviderOpenAI:
		out.APIKey = c.OpenAIAPIKey
		out.BaseURL = c.OpenAIBaseURL
		out.Model = c.OpenAIModel
	default:
		out.APIKey = c.GeminiAPIKey
		out.Model = c.GeminiModel
	}
	return out
}
