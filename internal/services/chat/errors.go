// File: internal/services/chat/errors.go
package chat

import (
	"errors"

	"github.com/iyunix/go-assistant/internal/domain"
	chatrepo "github.com/iyunix/go-assistant/internal/repository/chat"
	"github.com/iyunix/go-assistant/internal/services/ai"
)

const chatNotFoundMessage = "Chat not found"

// translateRepoError maps repository sentinels onto the service error taxonomy.
func translateRepoError(operation string, err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, chatrepo.ErrChatNotFound):
		return domain.NewNotFoundError(operation, chatNotFoundMessage)
	case errors.Is(err, chatrepo.ErrVersionConflict):
		return domain.NewConflictError(operation, "Chat was modified by another request; reload and try again", err)
	default:
		return domain.NewUnknownError(operation, err)
	}
}

func upstreamError(aiErr *ai.AIError) error {
	return domain.NewUpstreamError("completion", "The AI service is unavailable. Please try again later.", aiErr)
}
