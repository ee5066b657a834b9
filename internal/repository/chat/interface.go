package chat

import (
	"context"

	"github.com/iyunix/go-assistant/internal/domain"
)

// ChatRepository handles chat document operations. Every read and write is
// addressed by the pair (chatID, userID).
type ChatRepository interface {
	Create(ctx context.Context, chat *domain.Chat) (*domain.Chat, error)
	FindByIDAndOwner(ctx context.Context, chatID, userID string) (*domain.Chat, error)
	AppendMessage(ctx context.Context, chatID, userID string, msg domain.Message, expectedVersion int64) (*domain.Chat, error)
	ReplaceMessages(ctx context.Context, chatID, userID string, msgs []domain.Message, expectedVersion int64) (*domain.Chat, error)
	Delete(ctx context.Context, chatID, userID string) (bool, error)
	ListByOwner(ctx context.Context, userID string) ([]domain.Chat, error)
}
