// File: internal/services/ai/interface.go
package ai

import (
	"context"

	"github.com/iyunix/go-assistant/internal/domain"
)

// CompletionProvider turns an ordered history into the next assistant reply.
// The last message of history is the live turn.
type CompletionProvider interface {
	Complete(ctx context.Context, history []domain.Message) (string, error)
	Name() string
}

// Transcriber converts recorded audio into text.
type Transcriber interface {
	Transcribe(ctx context.Context, audioPath string) (string, error)
}

// Logger defines the logging interface used across AI services
type Logger interface {
	Info(msg string, keysAndValues ...interface{})
	Error(msg string, keysAndValues ...interface{})
	Debug(msg string, keysAndValues ...interface{})
	Warn(msg string, keysAndValues ...interface{})
}

// UnavailableProvider stands in when no backend is configured. Every call
// fails with a config error, so callers see a normal completion failure.
type UnavailableProvider struct {
	Reason string
}

func (p UnavailableProvider) Name() string { return "unavailable" }

func (p UnavailableProvider) Complete(context.Context, []domain.Message) (string, error) {
	return "", NewConfigError(p.Reason)
}
