// File: internal/services/chat/store.go
package chat

import (
	"context"
	"strings"

	"github.com/samber/lo"

	"github.com/iyunix/go-assistant/internal/domain"
	chatrepo "github.com/iyunix/go-assistant/internal/repository/chat"
)

// Store is the owner-scoped conversation store. A chat that exists but
// belongs to someone else is reported exactly like a chat that does not exist.
type Store struct {
	repo        chatrepo.ChatRepository
	titleLength int
	logger      Logger
}

func NewStore(repo chatrepo.ChatRepository, titleLength int, logger Logger) *Store {
	if titleLength <= 0 {
		titleLength = DefaultConfig().TitleLength
	}
	return &Store{repo: repo, titleLength: titleLength, logger: logger}
}

// Create opens a new chat whose only message is the first user message.
func (s *Store) Create(ctx context.Context, ownerID, firstUserMessage string) (*domain.Chat, error) {
	if strings.TrimSpace(ownerID) == "" {
		return nil, domain.NewNotAuthenticatedError("create")
	}

	chat := &domain.Chat{
		UserID:   ownerID,
		Title:    DeriveTitle(firstUserMessage, s.titleLength),
		Messages: []domain.Message{domain.UserMessage(firstUserMessage)},
	}
	created, err := s.repo.Create(ctx, chat)
	if err != nil {
		s.logger.Error("failed to create chat", "user_id", ownerID, "error", err)
		return nil, translateRepoError("create", err)
	}

	s.logger.Info("chat created", "chat_id", created.ID, "user_id", ownerID)
	return created, nil
}

func (s *Store) Load(ctx context.Context, chatID, ownerID string) (*domain.Chat, error) {
	if strings.TrimSpace(ownerID) == "" {
		return nil, domain.NewNotAuthenticatedError("load")
	}
	chat, err := s.repo.FindByIDAndOwner(ctx, chatID, ownerID)
	if err != nil {
		return nil, translateRepoError("load", err)
	}
	return chat, nil
}

func (s *Store) AppendMessage(ctx context.Context, chatID, ownerID string, msg domain.Message, expectedVersion int64) (*domain.Chat, error) {
	if strings.TrimSpace(ownerID) == "" {
		return nil, domain.NewNotAuthenticatedError("append")
	}
	chat, err := s.repo.AppendMessage(ctx, chatID, ownerID, msg, expectedVersion)
	if err != nil {
		s.logger.Warn("append failed", "chat_id", chatID, "role", msg.Role, "error", err)
		return nil, translateRepoError("append", err)
	}
	return chat, nil
}

// ReplaceMessages overwrites the whole history. Only edit-and-resubmit uses it.
func (s *Store) ReplaceMessages(ctx context.Context, chatID, ownerID string, msgs []domain.Message, expectedVersion int64) (*domain.Chat, error) {
	if strings.TrimSpace(ownerID) == "" {
		return nil, domain.NewNotAuthenticatedError("replace")
	}
	if err := ValidateMessages(msgs); err != nil {
		return nil, err
	}
	chat, err := s.repo.ReplaceMessages(ctx, chatID, ownerID, msgs, expectedVersion)
	if err != nil {
		s.logger.Warn("replace failed", "chat_id", chatID, "count", len(msgs), "error", err)
		return nil, translateRepoError("replace", err)
	}
	s.logger.Info("chat history replaced", "chat_id", chatID, "count", len(msgs))
	return chat, nil
}

// Delete reports whether a chat was removed. Not found is not an error.
func (s *Store) Delete(ctx context.Context, chatID, ownerID string) (bool, error) {
	if strings.TrimSpace(ownerID) == "" {
		return false, domain.NewNotAuthenticatedError("delete")
	}
	deleted, err := s.repo.Delete(ctx, chatID, ownerID)
	if err != nil {
		return false, translateRepoError("delete", err)
	}
	if deleted {
		s.logger.Info("chat deleted", "chat_id", chatID, "user_id", ownerID)
	}
	return deleted, nil
}

// ListByOwner returns summaries, most recently updated first.
func (s *Store) ListByOwner(ctx context.Context, ownerID string) ([]domain.ChatSummary, error) {
	if strings.TrimSpace(ownerID) == "" {
		return nil, domain.NewNotAuthenticatedError("list")
	}
	chats, err := s.repo.ListByOwner(ctx, ownerID)
	if err != nil {
		return nil, translateRepoError("list", err)
	}
	return lo.Map(chats, func(c domain.Chat, _ int) domain.ChatSummary {
		return c.Summary()
	}), nil
}

// ValidateMessages rejects client-supplied histories with unknown roles.
func ValidateMessages(msgs []domain.Message) error {
	invalid, found := lo.Find(msgs, func(m domain.Message) bool {
		return !m.Role.Valid()
	})
	if found {
		return domain.NewValidationError("validate", "invalid message role: "+string(invalid.Role))
	}
	return nil
}
