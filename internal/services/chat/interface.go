// File: internal/services/chat/interface.go
package chat

import (
	"context"

	"github.com/iyunix/go-assistant/internal/domain"
	"github.com/iyunix/go-assistant/internal/services/ai"
)

// Completer produces the next assistant reply for a history.
type Completer interface {
	Complete(ctx context.Context, history []domain.Message) ai.Reply
}

// SendInput is one user turn, either opening a chat or continuing one.
type SendInput struct {
	OwnerID   string
	ChatID    string
	Message   string
	IsNewChat bool

	// ReplaceHistory swaps the stored messages for CustomMessages before the
	// new user message is appended. Used by edit-and-resubmit.
	ReplaceHistory bool
	CustomMessages []domain.Message

	// ExpectedVersion guards against concurrent writers. Zero means "whatever
	// version is loaded now".
	ExpectedVersion int64
}

// SendResult is what the caller gets back after a turn.
type SendResult struct {
	Message  string
	ChatID   string
	Chat     *domain.Chat
	Fallback bool // Message is the fixed apology, not a model reply
}
