// File: internal/handlers/chat_handler.go
package handlers

import (
	"net/http"
	"strings"

	"github.com/gorilla/mux"

	"github.com/iyunix/go-assistant/internal/domain"
	"github.com/iyunix/go-assistant/internal/dtos"
	"github.com/iyunix/go-assistant/internal/middleware"
	"github.com/iyunix/go-assistant/internal/render"
	"github.com/iyunix/go-assistant/internal/services/chat"
)

type ChatHandler struct {
	ChatService *chat.Service
	Markdown    *render.Markdown
}

func NewChatHandler(cs *chat.Service, md *render.Markdown) *ChatHandler {
	if md == nil {
		md = render.NewMarkdown()
	}
	return &ChatHandler{ChatService: cs, Markdown: md}
}

// SendMessage handles POST /chats: open a chat, continue one, or resubmit an
// edited turn when customMessages is present.
func (h *ChatHandler) SendMessage(w http.ResponseWriter, r *http.Request) {
	userID := middleware.UserIDFromContext(r.Context())

	var req dtos.SendMessageRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if strings.TrimSpace(req.Message) == "" {
		writeError(w, "Message is required", http.StatusBadRequest)
		return
	}

	in := chat.SendInput{
		OwnerID:         userID,
		ChatID:          req.ChatID,
		Message:         req.Message,
		IsNewChat:       req.IsNewChat,
		ExpectedVersion: req.ExpectedVersion,
	}
	if req.CustomMessages != nil && !req.IsNewChat {
		in.ReplaceHistory = true
		in.CustomMessages = *req.CustomMessages
	}

	res, err := h.ChatService.Send(r.Context(), in)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, dtos.SendMessageResponse{Message: res.Message, ChatID: res.ChatID})
}

// GetUserChats handles GET /chats, newest first.
func (h *ChatHandler) GetUserChats(w http.ResponseWriter, r *http.Request) {
	userID := middleware.UserIDFromContext(r.Context())

	chats, err := h.ChatService.List(r.Context(), userID)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, dtos.ChatListResponse{Chats: chats})
}

// GetChat handles GET /chats/{id}. With ?render=html each assistant message
// also carries its rendered HTML.
func (h *ChatHandler) GetChat(w http.ResponseWriter, r *http.Request) {
	userID := middleware.UserIDFromContext(r.Context())
	chatID := mux.Vars(r)["id"]

	c, err := h.ChatService.Get(r.Context(), chatID, userID)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	view := dtos.FromChat(c)
	if r.URL.Query().Get("render") == "html" {
		for i := range view.Messages {
			if view.Messages[i].Role != domain.RoleAssistant {
				continue
			}
			html, err := h.Markdown.ToHTML(view.Messages[i].Content)
			if err != nil {
				middleware.LoggerFromContext(r.Context()).Warn("markdown render failed", "chat_id", chatID, "error", err)
				continue
			}
			view.Messages[i].HTML = html
		}
	}
	writeJSON(w, http.StatusOK, dtos.ChatResponse{Chat: view})
}

// DeleteChat handles DELETE /chats/{id}. Missing and foreign chats are 404.
func (h *ChatHandler) DeleteChat(w http.ResponseWriter, r *http.Request) {
	userID := middleware.UserIDFromContext(r.Context())
	chatID := mux.Vars(r)["id"]

	deleted, err := h.ChatService.Delete(r.Context(), chatID, userID)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	if !deleted {
		writeError(w, "Chat not found", http.StatusNotFound)
		return
	}
	writeJSON(w, http.StatusOK, dtos.DeleteResponse{Success: true})
}
