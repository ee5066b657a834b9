// File: internal/services/ai/service.go
package ai

import (
	"context"
	"errors"
	"time"

	"github.com/iyunix/go-assistant/internal/domain"
)

// FallbackText is the apology stored in place of a reply when the backend fails
// and failures are masked.
const FallbackText = "I'm sorry, I'm having trouble connecting to my AI services. Please try again later."

// Reply is the tagged outcome of a completion request. Exactly one of Text or
// Err is meaningful: a failed call never pretends to be a real reply.
type Reply struct {
	Text string
	Err  *AIError
}

// OK reports whether the backend produced a reply.
func (r Reply) OK() bool {
	return r.Err == nil
}

// TextOrFallback returns the reply text, or FallbackText on failure.
func (r Reply) TextOrFallback() string {
	if r.Err != nil {
		return FallbackText
	}
	return r.Text
}

// Service wraps a CompletionProvider with per-attempt timeouts and retries.
type Service struct {
	provider CompletionProvider
	config   *Config
	logger   Logger
	sleep    func(time.Duration)
}

func NewService(provider CompletionProvider, config *Config, logger Logger) *Service {
	if config == nil {
		config = DefaultConfig()
	}
	return &Service{
		provider: provider,
		config:   config,
		logger:   logger,
		sleep:    time.Sleep,
	}
}

// NewProvider builds the provider named in config.Provider.
func NewProvider(config *Config) (CompletionProvider, error) {
	switch config.Provider {
	case "gemini":
		return NewGeminiProvider(config)
	case "openai":
		return NewOpenAIProvider(config)
	default:
		return nil, NewConfigError("unknown completion provider " + config.Provider)
	}
}

// Complete asks the provider for the next assistant reply over history.
func (s *Service) Complete(ctx context.Context, history []domain.Message) Reply {
	if len(history) == 0 {
		return Reply{Err: NewValidationError("completion", "history is empty")}
	}

	var text string
	err := s.retryWithTimeout(ctx, func(ctx context.Context) error {
		reply, err := s.provider.Complete(ctx, history)
		if err != nil {
			return err
		}
		text = reply
		return nil
	})
	if err != nil {
		s.logger.Error("completion failed",
			"provider", s.provider.Name(),
			"history_len", len(history),
			"error", err)
		return Reply{Err: asAIError(err, s.provider.Name())}
	}

	s.logger.Debug("completion succeeded", "provider", s.provider.Name(), "reply_len", len(text))
	return Reply{Text: text}
}

func (s *Service) retryWithTimeout(parent context.Context, call func(ctx context.Context) error) error {
	attempts := s.config.MaxRetries
	if attempts < 1 {
		attempts = 1
	}

	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		ctx, cancel := context.WithTimeout(parent, s.config.Timeout)
		err := call(ctx)
		cancel()
		if err == nil {
			return nil
		}
		lastErr = err
		if !retryable(err) || parent.Err() != nil {
			break
		}
		s.logger.Warn("completion attempt failed", "attempt", attempt, "max", attempts, "error", err)
		if attempt < attempts {
			s.sleep(time.Duration(attempt) * s.config.RetryDelay)
		}
	}
	return lastErr
}

// retryable is false for errors that will not change on a second attempt.
func retryable(err error) bool {
	var aiErr *AIError
	if errors.As(err, &aiErr) {
		switch aiErr.Type {
		case ErrTypeConfig, ErrTypeValidation:
			return false
		}
		if aiErr.Code >= 400 && aiErr.Code < 500 && aiErr.Code != 408 && aiErr.Code != 429 {
			return false
		}
	}
	return true
}

func asAIError(err error, provider string) *AIError {
	var aiErr *AIError
	if errors.As(err, &aiErr) {
		return aiErr
	}
	return &AIError{Type: ErrTypeNetwork, Provider: provider, Operation: "completion", Message: "request failed", Cause: err}
}
