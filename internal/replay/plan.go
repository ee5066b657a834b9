// Package replay holds the client half of edit-and-resubmit: working out
// which messages an edit discards, and the per-session state controller that
// drives the chat API.
package replay

import (
	"errors"

	"github.com/iyunix/go-assistant/internal/domain"
)

var ErrInvalidEditIndex = errors.New("edit index must point at a user message")

// DiscardCount returns how many messages starting at editedIndex an edit
// removes: the edited message, plus the assistant reply directly after it.
func DiscardCount(messages []domain.Message, editedIndex int) int {
	if editedIndex == len(messages)-1 {
		return 1
	}
	if messages[editedIndex+1].Role == domain.RoleAssistant {
		return 2
	}
	return 1
}

// Plan returns the history to resubmit when messages[editedIndex] is edited.
// Messages after the discarded run are kept. The input is not modified.
func Plan(messages []domain.Message, editedIndex int) ([]domain.Message, error) {
	if editedIndex < 0 || editedIndex >= len(messages) {
		return nil, ErrInvalidEditIndex
	}
	if messages[editedIndex].Role != domain.RoleUser {
		return nil, ErrInvalidEditIndex
	}

	discarded := DiscardCount(messages, editedIndex)
	out := make([]domain.Message, 0, len(messages)-discarded)
	out = append(out, messages[:editedIndex]...)
	out = append(out, messages[editedIndex+discarded:]...)
	return out, nil
}
