// File: internal/services/chat/service.go
package chat

import (
	"context"
	"strings"

	"github.com/iyunix/go-assistant/internal/domain"
)

// Service runs the send path: persist the user turn, ask the completion
// backend, persist the reply.
type Service struct {
	store     *Store
	completer Completer
	config    *Config
	logger    Logger
}

func NewService(store *Store, completer Completer, config *Config, logger Logger) (*Service, error) {
	if config == nil {
		config = DefaultConfig()
	}
	if err := config.Validate(); err != nil {
		return nil, err
	}
	return &Service{store: store, completer: completer, config: config, logger: logger}, nil
}

// Store exposes the underlying conversation store for read and delete paths.
func (s *Service) Store() *Store {
	return s.store
}

// Send processes one user turn. The user message is durably stored before
// the completion request is made, so it survives a backend failure.
func (s *Service) Send(ctx context.Context, in SendInput) (*SendResult, error) {
	if strings.TrimSpace(in.OwnerID) == "" {
		return nil, domain.NewNotAuthenticatedError("send")
	}
	// Persistence must finish even if the client goes away mid-request.
	ctx = context.WithoutCancel(ctx)

	chat, err := s.persistUserTurn(ctx, in)
	if err != nil {
		return nil, err
	}

	reply := s.completer.Complete(ctx, chat.History())
	if !reply.OK() && s.config.FailurePolicy == PolicySurface {
		s.logger.Warn("completion failed, leaving user turn unanswered",
			"chat_id", chat.ID, "error", reply.Err)
		return nil, upstreamError(reply.Err)
	}

	text := reply.TextOrFallback()
	chat, err = s.store.AppendMessage(ctx, chat.ID, in.OwnerID, domain.AssistantMessage(text), chat.Version)
	if err != nil {
		return nil, err
	}

	s.logger.Info("assistant reply stored",
		"chat_id", chat.ID,
		"messages", len(chat.Messages),
		"fallback", !reply.OK())
	return &SendResult{Message: text, ChatID: chat.ID, Chat: chat, Fallback: !reply.OK()}, nil
}

func (s *Service) persistUserTurn(ctx context.Context, in SendInput) (*domain.Chat, error) {
	if in.IsNewChat {
		return s.store.Create(ctx, in.OwnerID, in.Message)
	}

	if strings.TrimSpace(in.ChatID) == "" {
		return nil, domain.NewValidationError("send", "chatId is required when isNewChat is false")
	}

	chat, err := s.store.Load(ctx, in.ChatID, in.OwnerID)
	if err != nil {
		return nil, err
	}
	expected := in.ExpectedVersion
	if expected == 0 {
		expected = chat.Version
	}

	userMsg := domain.UserMessage(in.Message)
	if in.ReplaceHistory {
		// Truncated history plus the edited message land in one write.
		msgs := make([]domain.Message, 0, len(in.CustomMessages)+1)
		msgs = append(msgs, in.CustomMessages...)
		msgs = append(msgs, userMsg)
		return s.store.ReplaceMessages(ctx, chat.ID, in.OwnerID, msgs, expected)
	}
	return s.store.AppendMessage(ctx, chat.ID, in.OwnerID, userMsg, expected)
}

func (s *Service) Get(ctx context.Context, chatID, ownerID string) (*domain.Chat, error) {
	return s.store.Load(ctx, chatID, ownerID)
}

func (s *Service) List(ctx context.Context, ownerID string) ([]domain.ChatSummary, error) {
	return s.store.ListByOwner(ctx, ownerID)
}

func (s *Service) Delete(ctx context.Context, chatID, ownerID string) (bool, error) {
	return s.store.Delete(ctx, chatID, ownerID)
}
