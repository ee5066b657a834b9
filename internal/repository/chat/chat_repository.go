// File: internal/repository/chat/chat_repository.go
package chat

import (
	"context"
	"errors"
	"log"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/iyunix/go-assistant/internal/domain"
)

var (
	ErrChatNotFound    = errors.New("chat not found")
	ErrVersionConflict = errors.New("chat version conflict")
)

type gormChatRepository struct {
	db  *gorm.DB
	now func() time.Time
}

// Option customises the repository.
type Option func(*gormChatRepository)

// WithClock overrides the time source used for timestamps.
func WithClock(now func() time.Time) Option {
	return func(r *gormChatRepository) {
		r.now = now
	}
}

func NewChatRepository(db *gorm.DB, opts ...Option) ChatRepository {
	r := &gormChatRepository{db: db, now: time.Now}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Create inserts a new chat at version 1.
func (r *gormChatRepository) Create(ctx context.Context, chat *domain.Chat) (*domain.Chat, error) {
	if chat == nil || chat.UserID == "" {
		return nil, errors.New("chat with owner is required")
	}
	if chat.ID == "" {
		chat.ID = uuid.NewString()
	}
	if chat.Messages == nil {
		chat.Messages = datatypes.JSONSlice[domain.Message]{}
	}
	now := r.now().UTC()
	chat.Version = 1
	chat.CreatedAt = now
	chat.UpdatedAt = now

	if err := r.db.WithContext(ctx).Create(chat).Error; err != nil {
		log.Printf("[ChatRepository] Database error during chat creation for user %s: %v", chat.UserID, err)
		return nil, errors.New("database error creating chat")
	}

	log.Printf("[ChatRepository] Chat created with ID: %s for user: %s", chat.ID, chat.UserID)
	return chat, nil
}

// FindByIDAndOwner returns ErrChatNotFound for both missing and foreign chats.
func (r *gormChatRepository) FindByIDAndOwner(ctx context.Context, chatID, userID string) (*domain.Chat, error) {
	if chatID == "" || userID == "" {
		return nil, ErrChatNotFound
	}

	var chat domain.Chat
	err := r.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", chatID, userID).
		First(&chat).Error
	return r.handleFindError(err, &chat, "FindByIDAndOwner")
}

func (r *gormChatRepository) AppendMessage(ctx context.Context, chatID, userID string, msg domain.Message, expectedVersion int64) (*domain.Chat, error) {
	chat, err := r.FindByIDAndOwner(ctx, chatID, userID)
	if err != nil {
		return nil, err
	}
	if chat.Version != expectedVersion {
		return nil, ErrVersionConflict
	}

	msgs := make([]domain.Message, 0, len(chat.Messages)+1)
	msgs = append(msgs, chat.Messages...)
	msgs = append(msgs, msg)
	return r.writeMessages(ctx, chat, msgs, expectedVersion, "AppendMessage")
}

// ReplaceMessages overwrites the whole message list.
func (r *gormChatRepository) ReplaceMessages(ctx context.Context, chatID, userID string, msgs []domain.Message, expectedVersion int64) (*domain.Chat, error) {
	chat, err := r.FindByIDAndOwner(ctx, chatID, userID)
	if err != nil {
		return nil, err
	}
	if chat.Version != expectedVersion {
		return nil, ErrVersionConflict
	}

	replacement := make([]domain.Message, len(msgs))
	copy(replacement, msgs)
	return r.writeMessages(ctx, chat, replacement, expectedVersion, "ReplaceMessages")
}

// writeMessages stores msgs only if the row is still at expectedVersion.
func (r *gormChatRepository) writeMessages(ctx context.Context, chat *domain.Chat, msgs []domain.Message, expectedVersion int64, operation string) (*domain.Chat, error) {
	now := r.now().UTC()
	payload := datatypes.JSONSlice[domain.Message](msgs)

	result := r.db.WithContext(ctx).
		Model(&domain.Chat{}).
		Where("id = ? AND user_id = ? AND version = ?", chat.ID, chat.UserID, expectedVersion).
		Updates(map[string]interface{}{
			"messages":   payload,
			"version":    gorm.Expr("version + 1"),
			"updated_at": now,
		})
	if result.Error != nil {
		log.Printf("[ChatRepository] %s database error for chat %s: %v", operation, chat.ID, result.Error)
		return nil, errors.New("database error updating chat messages")
	}

	if result.RowsAffected == 0 {
		// Either deleted or advanced by another writer since the read.
		if _, err := r.FindByIDAndOwner(ctx, chat.ID, chat.UserID); err != nil {
			return nil, err
		}
		log.Printf("[ChatRepository] %s version conflict for chat %s (expected %d)", operation, chat.ID, expectedVersion)
		return nil, ErrVersionConflict
	}

	chat.Messages = payload
	chat.Version = expectedVersion + 1
	chat.UpdatedAt = now
	return chat, nil
}

// Delete reports whether a chat owned by userID was removed.
func (r *gormChatRepository) Delete(ctx context.Context, chatID, userID string) (bool, error) {
	if chatID == "" || userID == "" {
		return false, nil
	}

	result := r.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", chatID, userID).
		Delete(&domain.Chat{})
	if result.Error != nil {
		log.Printf("[ChatRepository] Database error deleting chat %s for user %s: %v", chatID, userID, result.Error)
		return false, errors.New("database error deleting chat")
	}

	if result.RowsAffected == 0 {
		return false, nil
	}
	log.Printf("[ChatRepository] Chat deleted: %s for user %s", chatID, userID)
	return true, nil
}

// ListByOwner returns the owner's chats, most recently updated first.
func (r *gormChatRepository) ListByOwner(ctx context.Context, userID string) ([]domain.Chat, error) {
	if userID == "" {
		return []domain.Chat{}, nil
	}

	chats := []domain.Chat{}
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("updated_at DESC, id DESC").
		Find(&chats).Error
	if err != nil {
		log.Printf("[ChatRepository] Database error finding chats for user %s: %v", userID, err)
		return nil, errors.New("database error fetching chats")
	}
	return chats, nil
}

func (r *gormChatRepository) handleFindError(err error, chat *domain.Chat, operation string) (*domain.Chat, error) {
	if err == nil {
		if chat.Messages == nil {
			chat.Messages = datatypes.JSONSlice[domain.Message]{}
		}
		return chat, nil
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrChatNotFound
	}

	log.Printf("[ChatRepository] %s database error: %v", operation, err)
	return nil, errors.New("database query failed")
}
