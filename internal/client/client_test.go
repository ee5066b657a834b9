package client

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iyunix/go-assistant/internal/domain"
	"github.com/iyunix/go-assistant/internal/dtos"
	"github.com/iyunix/go-assistant/internal/replay"
)

var _ replay.Backend = (*Client)(nil)

func TestClientLoginAndSend(t *testing.T) {
	var gotAuth string
	var gotSend dtos.SendMessageRequest

	mux := http.NewServeMux()
	mux.HandleFunc("/login", func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(dtos.LoginResponseDTO{
			User:  dtos.UserResponseDTO{ID: "u1", Email: "a@b.c"},
			Token: "tok-123",
		})
	})
	mux.HandleFunc("/chats", func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		assert.Equal(t, http.MethodPost, r.Method)
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&gotSend))
		_ = json.NewEncoder(w).Encode(dtos.SendMessageResponse{Message: "hi there", ChatID: "c1"})
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	c := New(srv.URL + "/")
	ctx := context.Background()

	login, err := c.Login(ctx, "a@b.c", "pw")
	require.NoError(t, err)
	assert.Equal(t, "u1", login.User.ID)
	assert.Equal(t, "tok-123", c.Token())

	empty := []domain.Message{}
	resp, err := c.Send(ctx, dtos.SendMessageRequest{ChatID: "c1", Message: "hello", CustomMessages: &empty})
	require.NoError(t, err)
	assert.Equal(t, "hi there", resp.Message)
	assert.Equal(t, "c1", resp.ChatID)
	assert.Equal(t, "Bearer tok-123", gotAuth)
	require.NotNil(t, gotSend.CustomMessages, "empty customMessages must still be sent")
	assert.Empty(t, *gotSend.CustomMessages)
}

func TestClientGetChat(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/chats/c 1", r.URL.Path)
		_ = json.NewEncoder(w).Encode(dtos.ChatResponse{Chat: dtos.ChatView{
			ID:      "c 1",
			Title:   "T",
			Version: 4,
			Messages: []dtos.MessageView{
				{Role: domain.RoleUser, Content: "q"},
				{Role: domain.RoleAssistant, Content: "**a**", HTML: "<p><strong>a</strong></p>"},
			},
		}})
	}))
	defer srv.Close()

	chat, err := New(srv.URL).GetChat(context.Background(), "c 1")
	require.NoError(t, err)
	assert.Equal(t, int64(4), chat.Version)
	assert.Equal(t, []domain.Message{domain.UserMessage("q"), domain.AssistantMessage("**a**")}, chat.History())
}

func TestClientErrors(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/chats":
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = w.Write([]byte(`{"error":"Not authenticated"}`))
		default:
			http.Error(w, "boom", http.StatusInternalServerError)
		}
	}))
	defer srv.Close()

	c := New(srv.URL)
	_, err := c.ListChats(context.Background())
	require.Error(t, err)
	assert.True(t, IsStatus(err, http.StatusUnauthorized))
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, "Not authenticated", apiErr.Message)

	err = c.DeleteChat(context.Background(), "x")
	assert.True(t, IsStatus(err, http.StatusInternalServerError))
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, "boom", apiErr.Message)
}

func TestClientListChatsEmpty(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"chats":null}`))
	}))
	defer srv.Close()

	chats, err := New(srv.URL).ListChats(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, chats)
	assert.Empty(t, chats)
}
