package ai

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/iyunix/go-assistant/internal/domain"
)

type MockProvider struct {
	mock.Mock
}

func (m *MockProvider) Complete(ctx context.Context, history []domain.Message) (string, error) {
	args := m.Called(ctx, history)
	return args.String(0), args.Error(1)
}

func (m *MockProvider) Name() string { return "mock" }

type nopLogger struct{}

func (nopLogger) Info(string, ...interface{})  {}
func (nopLogger) Error(string, ...interface{}) {}
func (nopLogger) Debug(string, ...interface{}) {}
func (nopLogger) Warn(string, ...interface{})  {}

func newTestService(p CompletionProvider, retries int) *Service {
	cfg := DefaultConfig()
	cfg.MaxRetries = retries
	cfg.Timeout = time.Second
	s := NewService(p, cfg, nopLogger{})
	s.sleep = func(time.Duration) {}
	return s
}

func TestServiceCompleteSuccess(t *testing.T) {
	p := new(MockProvider)
	history := []domain.Message{domain.UserMessage("hi")}
	p.On("Complete", mock.Anything, history).Return("hello", nil).Once()

	reply := newTestService(p, 3).Complete(context.Background(), history)

	assert.True(t, reply.OK())
	assert.Equal(t, "hello", reply.Text)
	assert.Equal(t, "hello", reply.TextOrFallback())
	p.AssertExpectations(t)
}

func TestServiceRetriesTransientFailures(t *testing.T) {
	p := new(MockProvider)
	history := []domain.Message{domain.UserMessage("hi")}
	p.On("Complete", mock.Anything, history).Return("", errors.New("connection reset")).Once()
	p.On("Complete", mock.Anything, history).Return("second time lucky", nil).Once()

	reply := newTestService(p, 3).Complete(context.Background(), history)

	assert.True(t, reply.OK())
	assert.Equal(t, "second time lucky", reply.Text)
	p.AssertNumberOfCalls(t, "Complete", 2)
}

func TestServiceReturnsTaggedFailure(t *testing.T) {
	p := new(MockProvider)
	history := []domain.Message{domain.UserMessage("hi")}
	p.On("Complete", mock.Anything, history).Return("", errors.New("down"))

	reply := newTestService(p, 2).Complete(context.Background(), history)

	assert.False(t, reply.OK())
	assert.Empty(t, reply.Text)
	assert.Equal(t, FallbackText, reply.TextOrFallback())
	assert.Equal(t, ErrTypeNetwork, reply.Err.Type)
	p.AssertNumberOfCalls(t, "Complete", 2)
}

func TestServiceDoesNotRetryClientErrors(t *testing.T) {
	p := new(MockProvider)
	history := []domain.Message{domain.UserMessage("hi")}
	p.On("Complete", mock.Anything, history).
		Return("", &AIError{Type: ErrTypeProvider, Code: 400, Message: "bad request"})

	reply := newTestService(p, 3).Complete(context.Background(), history)

	assert.False(t, reply.OK())
	assert.Equal(t, 400, reply.Err.Code)
	p.AssertNumberOfCalls(t, "Complete", 1)
}

func TestServiceRejectsEmptyHistory(t *testing.T) {
	p := new(MockProvider)
	reply := newTestService(p, 1).Complete(context.Background(), nil)

	assert.False(t, reply.OK())
	assert.Equal(t, ErrTypeValidation, reply.Err.Type)
	p.AssertNotCalled(t, "Complete", mock.Anything, mock.Anything)
}

func TestNewProviderSelectsBackend(t *testing.T) {
	cfg := DefaultConfig()
	cfg.APIKey = "k"

	p, err := NewProvider(cfg)
	assert.NoError(t, err)
	assert.Equal(t, "gemini", p.Name())

	cfg.Provider = "openai"
	p, err = NewProvider(cfg)
	assert.NoError(t, err)
	assert.Equal(t, "openai", p.Name())

	cfg.Provider = "other"
	_, err = NewProvider(cfg)
	assert.Error(t, err)
}

func TestUnavailableProviderFailsWithoutRetry(t *testing.T) {
	calls := 0
	s := newTestService(UnavailableProvider{Reason: "no api key"}, 3)
	s.sleep = func(time.Duration) { calls++ }

	reply := s.Complete(context.Background(), []domain.Message{domain.UserMessage("hi")})
	assert.False(t, reply.OK())
	assert.Equal(t, ErrTypeConfig, reply.Err.Type)
	assert.Equal(t, FallbackText, reply.TextOrFallback())
	assert.Zero(t, calls)
}
