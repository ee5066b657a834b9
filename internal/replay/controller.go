package replay

import (
	"context"
	"errors"
	"strings"
	"sync"

	"github.com/iyunix/go-assistant/internal/domain"
	"github.com/iyunix/go-assistant/internal/dtos"
)

var (
	ErrNotEditing = errors.New("no message is being edited")
	ErrNoChatOpen = errors.New("no chat is open")
)

// Backend is the chat API as seen from a client session.
type Backend interface {
	ListChats(ctx context.Context) ([]domain.ChatSummary, error)
	GetChat(ctx context.Context, chatID string) (*domain.Chat, error)
	Send(ctx context.Context, req dtos.SendMessageRequest) (*dtos.SendMessageResponse, error)
	DeleteChat(ctx context.Context, chatID string) error
}

// EditState is the in-progress edit of one message of the current chat.
type EditState struct {
	Index int
	Draft string
}

// Controller holds one session's view of its chats: the sidebar list, the
// open chat, whether a reply is pending, and any edit in progress. All
// mutations go through the Backend and then re-read server state.
type Controller struct {
	backend Backend
	speech  SpeechInput

	mu        sync.Mutex
	chats     []domain.ChatSummary
	current   *domain.Chat
	thinking  bool
	editing   *EditState
	listening bool
}

// ControllerOption customises a Controller.
type ControllerOption func(*Controller)

// WithSpeech injects a dictation source. The default has none.
func WithSpeech(s SpeechInput) ControllerOption {
	return func(c *Controller) {
		c.speech = s
	}
}

func NewController(backend Backend, opts ...ControllerOption) *Controller {
	c := &Controller{backend: backend, speech: NoSpeech{}, chats: []domain.ChatSummary{}}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Chats returns the last fetched chat list.
func (c *Controller) Chats() []domain.ChatSummary {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]domain.ChatSummary, len(c.chats))
	copy(out, c.chats)
	return out
}

// CurrentChat returns a copy of the open chat, or nil when composing a new one.
func (c *Controller) CurrentChat() *domain.Chat {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.current == nil {
		return nil
	}
	cp := *c.current
	cp.Messages = append([]domain.Message{}, c.current.Messages...)
	return &cp
}

// Thinking reports whether a send is waiting for its reply.
func (c *Controller) Thinking() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.thinking
}

func (c *Controller) Editing() (EditState, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.editing == nil {
		return EditState{}, false
	}
	return *c.editing, true
}

// Refresh reloads the chat list.
func (c *Controller) Refresh(ctx context.Context) error {
	chats, err := c.backend.ListChats(ctx)
	if err != nil {
		return err
	}
	c.mu.Lock()
	c.chats = chats
	c.mu.Unlock()
	return nil
}

// Open fetches a chat and makes it current.
func (c *Controller) Open(ctx context.Context, chatID string) error {
	chat, err := c.backend.GetChat(ctx, chatID)
	if err != nil {
		return err
	}
	c.mu.Lock()
	c.current = chat
	c.editing = nil
	c.mu.Unlock()
	return nil
}

// NewChat clears the current chat so the next Send opens a new one.
func (c *Controller) NewChat() {
	c.mu.Lock()
	c.current = nil
	c.editing = nil
	c.mu.Unlock()
}

// Send submits text to the current chat, or opens a new chat when none is
// current. Blank text is ignored and nil, nil is returned.
func (c *Controller) Send(ctx context.Context, text string) (*dtos.SendMessageResponse, error) {
	if strings.TrimSpace(text) == "" {
		return nil, nil
	}

	c.mu.Lock()
	req := dtos.SendMessageRequest{Message: text, IsNewChat: c.current == nil}
	if c.current != nil {
		req.ChatID = c.current.ID
	}
	c.mu.Unlock()

	return c.submit(ctx, req)
}

// BeginEdit starts editing the user message at index in the current chat.
func (c *Controller) BeginEdit(index int) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.current == nil {
		return ErrNoChatOpen
	}
	if index < 0 || index >= len(c.current.Messages) || c.current.Messages[index].Role != domain.RoleUser {
		return ErrInvalidEditIndex
	}
	c.editing = &EditState{Index: index, Draft: c.current.Messages[index].Content}
	return nil
}

func (c *Controller) CancelEdit() {
	c.mu.Lock()
	c.editing = nil
	c.mu.Unlock()
}

// ApplyEdit replaces the message being edited with newContent and asks for a
// fresh reply. The edited message and its reply are dropped from the history
// and the new text is appended at the end. Blank content just closes the edit.
func (c *Controller) ApplyEdit(ctx context.Context, newContent string) (*dtos.SendMessageResponse, error) {
	c.mu.Lock()
	if c.editing == nil || c.current == nil {
		c.mu.Unlock()
		return nil, ErrNotEditing
	}
	index := c.editing.Index
	c.editing = nil
	if strings.TrimSpace(newContent) == "" {
		c.mu.Unlock()
		return nil, nil
	}

	truncated, err := Plan(c.current.Messages, index)
	if err != nil {
		c.mu.Unlock()
		return nil, err
	}
	req := dtos.SendMessageRequest{
		ChatID:          c.current.ID,
		Message:         newContent,
		CustomMessages:  &truncated,
		ExpectedVersion: c.current.Version,
	}
	c.mu.Unlock()

	return c.submit(ctx, req)
}

func (c *Controller) submit(ctx context.Context, req dtos.SendMessageRequest) (*dtos.SendMessageResponse, error) {
	c.setThinking(true)
	defer c.setThinking(false)

	resp, err := c.backend.Send(ctx, req)
	if err != nil {
		// The server may have stored the user turn before failing; resync.
		if req.ChatID != "" {
			_ = c.Open(ctx, req.ChatID)
		}
		return nil, err
	}

	if err := c.Refresh(ctx); err != nil {
		return resp, err
	}
	if err := c.Open(ctx, resp.ChatID); err != nil {
		return resp, err
	}
	return resp, nil
}

func (c *Controller) setThinking(v bool) {
	c.mu.Lock()
	c.thinking = v
	c.mu.Unlock()
}

// Delete removes a chat and drops it from local state.
func (c *Controller) Delete(ctx context.Context, chatID string) error {
	if err := c.backend.DeleteChat(ctx, chatID); err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	kept := c.chats[:0]
	for _, s := range c.chats {
		if s.ID != chatID {
			kept = append(kept, s)
		}
	}
	c.chats = kept
	if c.current != nil && c.current.ID == chatID {
		c.current = nil
		c.editing = nil
	}
	return nil
}

// SpeechAvailable reports whether dictation can be used.
func (c *Controller) SpeechAvailable() bool {
	return c.speech.Available()
}

func (c *Controller) StartListening(ctx context.Context) error {
	if !c.speech.Available() {
		return ErrSpeechUnavailable
	}
	if err := c.speech.Start(ctx); err != nil {
		return err
	}
	c.mu.Lock()
	c.listening = true
	c.mu.Unlock()
	return nil
}

// StopListening ends dictation and returns the transcript for the caller to
// edit or send.
func (c *Controller) StopListening(ctx context.Context) (string, error) {
	c.mu.Lock()
	if !c.listening {
		c.mu.Unlock()
		return "", ErrNotListening
	}
	c.listening = false
	c.mu.Unlock()
	return c.speech.Stop(ctx)
}
