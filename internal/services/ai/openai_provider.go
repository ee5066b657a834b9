// File: internal/services/ai/openai_provider.go
package ai

import (
	"context"
	"errors"
	"net/http"

	openai "github.com/sashabaranov/go-openai"

	"github.com/iyunix/go-assistant/internal/domain"
)

// OpenAIProvider talks to any OpenAI-compatible chat endpoint. It also
// exposes Whisper transcription for voice input.
type OpenAIProvider struct {
	config *Config
	client *openai.Client
}

func NewOpenAIProvider(config *Config) (*OpenAIProvider, error) {
	if config.APIKey == "" {
		return nil, NewConfigError("openai api key required")
	}
	clientConfig := openai.DefaultConfig(config.APIKey)
	if config.BaseURL != "" {
		clientConfig.BaseURL = config.BaseURL
	}
	return &OpenAIProvider{
		config: config,
		client: openai.NewClientWithConfig(clientConfig),
	}, nil
}

func (p *OpenAIProvider) Name() string { return "openai" }

func (p *OpenAIProvider) Complete(ctx context.Context, history []domain.Message) (string, error) {
	if len(history) == 0 {
		return "", NewValidationError("completion", "history is empty")
	}

	messages := make([]openai.ChatCompletionMessage, 0, len(history))
	for _, msg := range history {
		role := openai.ChatMessageRoleAssistant
		if msg.Role == domain.RoleUser {
			role = openai.ChatMessageRoleUser
		}
		messages = append(messages, openai.ChatCompletionMessage{Role: role, Content: msg.Content})
	}

	resp, err := p.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       p.config.Model,
		Messages:    messages,
		Temperature: p.config.Temperature,
		TopP:        p.config.TopP,
	})
	if err != nil {
		return "", p.wrapError("completion", "failed to create completion", err)
	}

	if len(resp.Choices) == 0 || resp.Choices[0].Message.Content == "" {
		return "", &AIError{
			Type:      ErrTypeProvider,
			Provider:  p.Name(),
			Operation: "completion",
			Message:   "empty completion response",
		}
	}
	return resp.Choices[0].Message.Content, nil
}

// Transcribe sends an audio file to Whisper and returns the recognized text.
func (p *OpenAIProvider) Transcribe(ctx context.Context, audioPath string) (string, error) {
	resp, err := p.client.CreateTranscription(ctx, openai.AudioRequest{
		Model:    openai.Whisper1,
		FilePath: audioPath,
	})
	if err != nil {
		return "", p.wrapError("transcription", "failed to transcribe audio", err)
	}
	return resp.Text, nil
}

func (p *OpenAIProvider) wrapError(operation, msg string, err error) *AIError {
	aiErr := &AIError{Type: ErrTypeProvider, Provider: p.Name(), Operation: operation, Message: msg, Cause: err}

	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		aiErr.Code = apiErr.HTTPStatusCode
		if apiErr.HTTPStatusCode == http.StatusTooManyRequests {
			aiErr.Type = ErrTypeRateLimit
		}
		return aiErr
	}
	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		aiErr.Code = reqErr.HTTPStatusCode
		return aiErr
	}
	aiErr.Type = ErrTypeNetwork
	return aiErr
}
