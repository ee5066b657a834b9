// File: internal/dtos/chat.go
package dtos

import (
	"time"

	"github.com/iyunix/go-assistant/internal/domain"
)

// SendMessageRequest is the POST /chats payload.
type SendMessageRequest struct {
	ChatID    string `json:"chatId,omitempty"`
	Message   string `json:"message"`
	IsNewChat bool   `json:"isNewChat"`

	// CustomMessages, when present (even as []), replaces the stored history
	// before Message is appended. Nil means "append to what is stored".
	CustomMessages *[]domain.Message `json:"customMessages,omitempty"`

	ExpectedVersion int64 `json:"expectedVersion,omitempty"`
}

// SendMessageResponse carries the assistant reply and the chat it landed in.
type SendMessageResponse struct {
	Message string `json:"message"`
	ChatID  string `json:"chatId"`
}

type ChatListResponse struct {
	Chats []domain.ChatSummary `json:"chats"`
}

// MessageView is a message as returned by GET /chats/{id}. HTML is filled
// only when rendering was requested.
type MessageView struct {
	Role    domain.Role `json:"role"`
	Content string      `json:"content"`
	HTML    string      `json:"html,omitempty"`
}

type ChatView struct {
	ID        string        `json:"id"`
	UserID    string        `json:"userId"`
	Title     string        `json:"title"`
	Messages  []MessageView `json:"messages"`
	Version   int64         `json:"version"`
	CreatedAt time.Time     `json:"createdAt"`
	UpdatedAt time.Time     `json:"updatedAt"`
}

type ChatResponse struct {
	Chat ChatView `json:"chat"`
}

type DeleteResponse struct {
	Success bool `json:"success"`
}

type ErrorResponse struct {
	Error string `json:"error"`
}

// FromChat maps a domain chat into its response view.
func FromChat(c *domain.Chat) ChatView {
	view := ChatView{
		ID:        c.ID,
		UserID:    c.UserID,
		Title:     c.Title,
		Messages:  make([]MessageView, len(c.Messages)),
		Version:   c.Version,
		CreatedAt: c.CreatedAt,
		UpdatedAt: c.UpdatedAt,
	}
	for i, m := range c.Messages {
		view.Messages[i] = MessageView{Role: m.Role, Content: m.Content}
	}
	return view
}

// ToDomain turns a fetched view back into a domain chat, dropping rendered HTML.
func (v ChatView) ToDomain() *domain.Chat {
	msgs := make([]domain.Message, len(v.Messages))
	for i, m := range v.Messages {
		msgs[i] = domain.Message{Role: m.Role, Content: m.Content}
	}
	return &domain.Chat{
		ID:        v.ID,
		UserID:    v.UserID,
		Title:     v.Title,
		Messages:  msgs,
		Version:   v.Version,
		CreatedAt: v.CreatedAt,
		UpdatedAt: v.UpdatedAt,
	}
}
