// File: internal/domain/chat.go
package domain

import (
	"time"

	"gorm.io/datatypes"
)

// Chat represents a single conversation thread. The whole message list is
// stored as one JSON document next to the chat row.
type Chat struct {
	ID        string                      `json:"id" gorm:"primaryKey;type:varchar(36)"`
	UserID    string                      `json:"userId" gorm:"type:varchar(36);not null;index"` // owner, never changes
	Title     string                      `json:"title" gorm:"not null"`
	Messages  datatypes.JSONSlice[Message] `json:"messages" gorm:"not null"`
	Version   int64                       `json:"version" gorm:"not null;default:1"`
	CreatedAt time.Time                   `json:"createdAt"`
	UpdatedAt time.Time                   `json:"updatedAt" gorm:"autoUpdateTime:false;index"`
}

// History returns a copy of the chat's messages as a plain slice.
func (c *Chat) History() []Message {
	out := make([]Message, len(c.Messages))
	copy(out, c.Messages)
	return out
}

// LastMessage returns the final message, if any.
func (c *Chat) LastMessage() (Message, bool) {
	if len(c.Messages) == 0 {
		return Message{}, false
	}
	return c.Messages[len(c.Messages)-1], true
}

// ChatSummary is the list-view projection of a chat.
type ChatSummary struct {
	ID           string    `json:"id"`
	Title        string    `json:"title"`
	MessageCount int       `json:"messageCount"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// Summary projects the chat into its list-view form.
func (c *Chat) Summary() ChatSummary {
	return ChatSummary{
		ID:           c.ID,
		Title:        c.Title,
		MessageCount: len(c.Messages),
		CreatedAt:    c.CreatedAt,
		UpdatedAt:    c.UpdatedAt,
	}
}
