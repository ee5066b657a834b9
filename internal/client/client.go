// Package client is a typed HTTP client for the chat API. It satisfies
// replay.Backend so a Controller can drive a remote server.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/iyunix/go-assistant/internal/domain"
	"github.com/iyunix/go-assistant/internal/dtos"
)

// APIError is a non-2xx answer from the server.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("%d: %s", e.Status, e.Message)
}

// IsStatus reports whether err is an APIError with the given status.
func IsStatus(err error, status int) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.Status == status
}

type Client struct {
	baseURL    string
	httpClient *http.Client

	mu    sync.RWMutex
	token string
}

func New(baseURL string) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: 90 * time.Second},
	}
}

// SetToken sets the bearer token sent with every request.
func (c *Client) SetToken(token string) {
	c.mu.Lock()
	c.token = token
	c.mu.Unlock()
}

func (c *Client) Token() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.token
}

func (c *Client) Register(ctx context.Context, req dtos.RegisterRequestDTO) (*dtos.UserResponseDTO, error) {
	var out dtos.UserResponseDTO
	if err := c.do(ctx, http.MethodPost, "/register", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Login authenticates and keeps the returned token for later calls.
func (c *Client) Login(ctx context.Context, email, password string) (*dtos.LoginResponseDTO, error) {
	var out dtos.LoginResponseDTO
	req := dtos.LoginRequestDTO{Email: email, Password: password}
	if err := c.do(ctx, http.MethodPost, "/login", req, &out); err != nil {
		return nil, err
	}
	c.SetToken(out.Token)
	return &out, nil
}

func (c *Client) Logout(ctx context.Context) error {
	err := c.do(ctx, http.MethodPost, "/logout", nil, nil)
	c.SetToken("")
	return err
}

func (c *Client) ListChats(ctx context.Context) ([]domain.ChatSummary, error) {
	var out dtos.ChatListResponse
	if err := c.do(ctx, http.MethodGet, "/chats", nil, &out); err != nil {
		return nil, err
	}
	if out.Chats == nil {
		out.Chats = []domain.ChatSummary{}
	}
	return out.Chats, nil
}

func (c *Client) GetChat(ctx context.Context, chatID string) (*domain.Chat, error) {
	var out dtos.ChatResponse
	if err := c.do(ctx, http.MethodGet, "/chats/"+url.PathEscape(chatID), nil, &out); err != nil {
		return nil, err
	}
	return out.Chat.ToDomain(), nil
}

// RenderedChat fetches a chat with each message's HTML filled in.
func (c *Client) RenderedChat(ctx context.Context, chatID string) (*dtos.ChatView, error) {
	var out dtos.ChatResponse
	if err := c.do(ctx, http.MethodGet, "/chats/"+url.PathEscape(chatID)+"?render=html", nil, &out); err != nil {
		return nil, err
	}
	return &out.Chat, nil
}

func (c *Client) Send(ctx context.Context, req dtos.SendMessageRequest) (*dtos.SendMessageResponse, error) {
	var out dtos.SendMessageResponse
	if err := c.do(ctx, http.MethodPost, "/chats", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) DeleteChat(ctx context.Context, chatID string) error {
	var out dtos.DeleteResponse
	return c.do(ctx, http.MethodDelete, "/chats/"+url.PathEscape(chatID), nil, &out)
}

func (c *Client) do(ctx context.Context, method, path string, body, out interface{}) error {
	var reader io.Reader
	if body != nil {
		buf, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		reader = bytes.NewReader(buf)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token := c.Token(); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		var errBody dtos.ErrorResponse
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
		if json.Unmarshal(raw, &errBody) != nil || errBody.Error == "" {
			errBody.Error = strings.TrimSpace(string(raw))
			if errBody.Error == "" {
				errBody.Error = http.StatusText(resp.StatusCode)
			}
		}
		return &APIError{Status: resp.StatusCode, Message: errBody.Error}
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
