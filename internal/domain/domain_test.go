package domain

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRoleValid(t *testing.T) {
	assert.True(t, RoleUser.Valid())
	assert.True(t, RoleAssistant.Valid())
	assert.False(t, Role("system").Valid())
	assert.False(t, Role("").Valid())
}

func TestErrorTypeOfWrapped(t *testing.T) {
	base := NewNotFoundError("load", "Chat not found")
	wrapped := fmt.Errorf("send: %w", base)

	assert.Equal(t, ErrTypeNotFound, ErrorTypeOf(wrapped))
	assert.Equal(t, ErrTypeUnknown, ErrorTypeOf(errors.New("boom")))
	assert.Equal(t, ErrTypeUnknown, ErrorTypeOf(nil))
}

func TestAppErrorUnwrap(t *testing.T) {
	cause := errors.New("version moved")
	err := NewConflictError("append", "chat was modified concurrently", cause)

	assert.ErrorIs(t, err, cause)
	assert.Contains(t, err.Error(), "CONFLICT")
	assert.Contains(t, err.Error(), "version moved")
}

func TestUserPasswordRoundTrip(t *testing.T) {
	u := &User{}
	require.NoError(t, u.HashPassword("s3cret-pass"))
	assert.NotEqual(t, "s3cret-pass", u.Password)
	assert.NoError(t, u.ValidatePassword("s3cret-pass"))
	assert.Error(t, u.ValidatePassword("wrong"))
	assert.Error(t, u.HashPassword(""))
}

func TestChatSummaryAndHistory(t *testing.T) {
	c := &Chat{
		ID:       "c1",
		Title:    "hello",
		Messages: []Message{UserMessage("hi"), AssistantMessage("hello!")},
	}

	s := c.Summary()
	assert.Equal(t, "c1", s.ID)
	assert.Equal(t, 2, s.MessageCount)

	h := c.History()
	h[0].Content = "changed"
	assert.Equal(t, "hi", c.Messages[0].Content)

	last, ok := c.LastMessage()
	require.True(t, ok)
	assert.Equal(t, RoleAssistant, last.Role)

	_, ok = (&Chat{}).LastMessage()
	assert.False(t, ok)
}
