package replay

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iyunix/go-assistant/internal/domain"
	"github.com/iyunix/go-assistant/internal/dtos"
)

// fakeBackend mimics the server: it stores the user turn, then appends a reply
// unless failNext is set.
type fakeBackend struct {
	mu       sync.Mutex
	chats    map[string]*domain.Chat
	order    []string
	seq      int
	failNext bool
	sent     []dtos.SendMessageRequest
}

func newFakeBackend() *fakeBackend {
	return &fakeBackend{chats: map[string]*domain.Chat{}}
}

func (f *fakeBackend) ListChats(ctx context.Context) ([]domain.ChatSummary, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := []domain.ChatSummary{}
	for i := len(f.order) - 1; i >= 0; i-- {
		out = append(out, f.chats[f.order[i]].Summary())
	}
	return out, nil
}

func (f *fakeBackend) GetChat(ctx context.Context, chatID string) (*domain.Chat, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	c, ok := f.chats[chatID]
	if !ok {
		return nil, errors.New("chat not found")
	}
	cp := *c
	cp.Messages = append([]domain.Message{}, c.Messages...)
	return &cp, nil
}

func (f *fakeBackend) Send(ctx context.Context, req dtos.SendMessageRequest) (*dtos.SendMessageResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = append(f.sent, req)

	var chat *domain.Chat
	if req.IsNewChat {
		f.seq++
		chat = &domain.Chat{ID: fmt.Sprintf("chat-%d", f.seq), Title: req.Message, Version: 1}
		f.chats[chat.ID] = chat
	} else {
		var ok bool
		if chat, ok = f.chats[req.ChatID]; !ok {
			return nil, errors.New("chat not found")
		}
		if req.CustomMessages != nil {
			chat.Messages = append([]domain.Message{}, (*req.CustomMessages)...)
		}
	}
	chat.Messages = append(chat.Messages, domain.UserMessage(req.Message))
	chat.Version++
	f.touch(chat.ID)

	if f.failNext {
		f.failNext = false
		return nil, errors.New("upstream failed")
	}
	reply := "re: " + req.Message
	chat.Messages = append(chat.Messages, domain.AssistantMessage(reply))
	chat.Version++
	return &dtos.SendMessageResponse{Message: reply, ChatID: chat.ID}, nil
}

func (f *fakeBackend) touch(id string) {
	kept := f.order[:0]
	for _, o := range f.order {
		if o != id {
			kept = append(kept, o)
		}
	}
	f.order = append(kept, id)
}

func (f *fakeBackend) DeleteChat(ctx context.Context, chatID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.chats[chatID]; !ok {
		return errors.New("chat not found")
	}
	delete(f.chats, chatID)
	kept := f.order[:0]
	for _, o := range f.order {
		if o != chatID {
			kept = append(kept, o)
		}
	}
	f.order = kept
	return nil
}

func TestControllerSendCreatesChat(t *testing.T) {
	backend := newFakeBackend()
	c := NewController(backend)
	ctx := context.Background()

	assert.Nil(t, c.CurrentChat())

	resp, err := c.Send(ctx, "hello")
	require.NoError(t, err)
	assert.Equal(t, "re: hello", resp.Message)
	require.Len(t, backend.sent, 1)
	assert.True(t, backend.sent[0].IsNewChat)

	current := c.CurrentChat()
	require.NotNil(t, current)
	assert.Equal(t, resp.ChatID, current.ID)
	assert.Equal(t, []domain.Message{u("hello"), a("re: hello")}, current.History())
	assert.Len(t, c.Chats(), 1)
	assert.False(t, c.Thinking())

	_, err = c.Send(ctx, "again")
	require.NoError(t, err)
	assert.False(t, backend.sent[1].IsNewChat)
	assert.Equal(t, resp.ChatID, backend.sent[1].ChatID)
	assert.Len(t, c.CurrentChat().Messages, 4)
}

func TestControllerSendBlankIsNoop(t *testing.T) {
	backend := newFakeBackend()
	c := NewController(backend)

	resp, err := c.Send(context.Background(), "   ")
	assert.NoError(t, err)
	assert.Nil(t, resp)
	assert.Empty(t, backend.sent)
}

func TestControllerNewChat(t *testing.T) {
	backend := newFakeBackend()
	c := NewController(backend)
	ctx := context.Background()

	_, err := c.Send(ctx, "first")
	require.NoError(t, err)
	c.NewChat()
	assert.Nil(t, c.CurrentChat())

	_, err = c.Send(ctx, "second")
	require.NoError(t, err)
	assert.True(t, backend.sent[1].IsNewChat)
	chats := c.Chats()
	require.Len(t, chats, 2)
	assert.Equal(t, c.CurrentChat().ID, chats[0].ID)
}

func TestControllerApplyEdit(t *testing.T) {
	backend := newFakeBackend()
	c := NewController(backend)
	ctx := context.Background()

	_, err := c.Send(ctx, "q1")
	require.NoError(t, err)
	_, err = c.Send(ctx, "q2")
	require.NoError(t, err)
	version := c.CurrentChat().Version

	require.NoError(t, c.BeginEdit(0))
	state, ok := c.Editing()
	require.True(t, ok)
	assert.Equal(t, EditState{Index: 0, Draft: "q1"}, state)

	_, err = c.ApplyEdit(ctx, "q1 edited")
	require.NoError(t, err)

	last := backend.sent[len(backend.sent)-1]
	require.NotNil(t, last.CustomMessages)
	assert.Equal(t, []domain.Message{u("q2"), a("re: q2")}, *last.CustomMessages)
	assert.Equal(t, version, last.ExpectedVersion)

	assert.Equal(t, []domain.Message{
		u("q2"), a("re: q2"), u("q1 edited"), a("re: q1 edited"),
	}, c.CurrentChat().History())
	_, ok = c.Editing()
	assert.False(t, ok)
}

func TestControllerApplyEditBlankClosesEditing(t *testing.T) {
	backend := newFakeBackend()
	c := NewController(backend)
	ctx := context.Background()

	_, err := c.Send(ctx, "q1")
	require.NoError(t, err)
	require.NoError(t, c.BeginEdit(0))

	resp, err := c.ApplyEdit(ctx, " \n")
	assert.NoError(t, err)
	assert.Nil(t, resp)
	assert.Len(t, backend.sent, 1)
	_, ok := c.Editing()
	assert.False(t, ok)
}

func TestControllerApplyEditFailureLeavesTrailingUserMessage(t *testing.T) {
	backend := newFakeBackend()
	c := NewController(backend)
	ctx := context.Background()

	_, err := c.Send(ctx, "q1")
	require.NoError(t, err)
	require.NoError(t, c.BeginEdit(0))

	backend.failNext = true
	_, err = c.ApplyEdit(ctx, "q1 v2")
	require.Error(t, err)

	assert.Equal(t, []domain.Message{u("q1 v2")}, c.CurrentChat().History())
	assert.False(t, c.Thinking())
}

func TestControllerEditErrors(t *testing.T) {
	backend := newFakeBackend()
	c := NewController(backend)
	ctx := context.Background()

	assert.ErrorIs(t, c.BeginEdit(0), ErrNoChatOpen)
	_, err := c.ApplyEdit(ctx, "x")
	assert.ErrorIs(t, err, ErrNotEditing)

	_, err = c.Send(ctx, "q1")
	require.NoError(t, err)
	assert.ErrorIs(t, c.BeginEdit(1), ErrInvalidEditIndex)
	assert.ErrorIs(t, c.BeginEdit(5), ErrInvalidEditIndex)

	require.NoError(t, c.BeginEdit(0))
	c.CancelEdit()
	_, ok := c.Editing()
	assert.False(t, ok)
}

func TestControllerDelete(t *testing.T) {
	backend := newFakeBackend()
	c := NewController(backend)
	ctx := context.Background()

	_, err := c.Send(ctx, "keep")
	require.NoError(t, err)
	keepID := c.CurrentChat().ID
	c.NewChat()
	_, err = c.Send(ctx, "drop")
	require.NoError(t, err)
	dropID := c.CurrentChat().ID

	require.NoError(t, c.Delete(ctx, dropID))
	assert.Nil(t, c.CurrentChat())
	chats := c.Chats()
	require.Len(t, chats, 1)
	assert.Equal(t, keepID, chats[0].ID)

	assert.Error(t, c.Delete(ctx, "missing"))
	assert.Len(t, c.Chats(), 1)
}

func TestControllerOpen(t *testing.T) {
	backend := newFakeBackend()
	c := NewController(backend)
	ctx := context.Background()

	_, err := c.Send(ctx, "one")
	require.NoError(t, err)
	id := c.CurrentChat().ID
	c.NewChat()

	require.NoError(t, c.Open(ctx, id))
	assert.Equal(t, id, c.CurrentChat().ID)

	assert.Error(t, c.Open(ctx, "nope"))
	assert.Equal(t, id, c.CurrentChat().ID)
}

type stubTranscriber struct {
	text string
	path string
}

func (s *stubTranscriber) Transcribe(ctx context.Context, audioPath string) (string, error) {
	s.path = audioPath
	return s.text, nil
}

func TestControllerSpeech(t *testing.T) {
	ctx := context.Background()

	c := NewController(newFakeBackend())
	assert.False(t, c.SpeechAvailable())
	assert.ErrorIs(t, c.StartListening(ctx), ErrSpeechUnavailable)
	_, err := c.StopListening(ctx)
	assert.ErrorIs(t, err, ErrNotListening)

	audio := filepath.Join(t.TempDir(), "clip.wav")
	require.NoError(t, os.WriteFile(audio, []byte("RIFF"), 0o600))

	tr := &stubTranscriber{text: "dictated text"}
	speech := NewFileSpeech(tr)
	c = NewController(newFakeBackend(), WithSpeech(speech))
	assert.True(t, c.SpeechAvailable())

	assert.Error(t, c.StartListening(ctx), "no source selected")

	speech.SetSource(audio)
	require.NoError(t, c.StartListening(ctx))
	text, err := c.StopListening(ctx)
	require.NoError(t, err)
	assert.Equal(t, "dictated text", text)
	assert.Equal(t, audio, tr.path)
}

func TestFileSpeechMissingSource(t *testing.T) {
	speech := NewFileSpeech(&stubTranscriber{})
	speech.SetSource(filepath.Join(t.TempDir(), "missing.wav"))
	assert.Error(t, speech.Start(context.Background()))

	_, err := speech.Stop(context.Background())
	assert.ErrorIs(t, err, ErrNotListening)
}

func TestControllerThinkingDuringSend(t *testing.T) {
	backend := &blockingBackend{fakeBackend: newFakeBackend(), release: make(chan struct{}), entered: make(chan struct{})}
	c := NewController(backend)

	done := make(chan error, 1)
	go func() {
		_, err := c.Send(context.Background(), "slow")
		done <- err
	}()

	<-backend.entered
	assert.True(t, c.Thinking())
	close(backend.release)

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("send did not finish")
	}
	assert.False(t, c.Thinking())
}

type blockingBackend struct {
	*fakeBackend
	entered chan struct{}
	release chan struct{}
}

func (b *blockingBackend) Send(ctx context.Context, req dtos.SendMessageRequest) (*dtos.SendMessageResponse, error) {
	close(b.entered)
	<-b.release
	return b.fakeBackend.Send(ctx, req)
}
