// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/lifescan/aila/internal/domain/model"
	"github.com/lifescan/aila/pkg/logger"
)

// ChatHandler handles the assistant chat endpoints.
type ChatHandler struct {
	deps Dependencies
}

// NewChatHandler creates a new chat handler.
func NewChatHandler(deps Dependencies) *ChatHandler {
	return &ChatHandler{deps: deps}
}

type chatSendRequest struct {
	Message        string `json:"message"`
	ConversationID string `json:"conversation_id"`
}

type chatSendResponse struct {
	Success        bool   `json:"success"`
	Response       string `json:"response"`
	ConversationID string `json:"conversation_id"`
	Timestamp      string `json:"timestamp"`
	FromModel      bool   `json:"from_model"`
	MessageCount   int    `json:"message_count"`
}

// HandleSend handles POST /api/v1/chat/send requests.
func (h *ChatHandler) HandleSend(w http.ResponseWriter, r *http.Request) {
	const op = "api.chat_send"
	if r.Method != http.MethodPost {
		http.NotFound(w, r)
		return
	}

	var req chatSendRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}
	req.Message = strings.TrimSpace(req.Message)
	if req.Message == "" {
		writeError(w, http.StatusBadRequest, "bad_request", NewKind(op, ErrBadRequest))
		return
	}
	if req.ConversationID == "" {
		req.ConversationID = "default"
	}

	reply, err := h.deps.Chat(r.Context(), req.ConversationID, req.Message)
	if err != nil {
		logger.Named("api").Error(r.Context(), "chat dispatch failed",
			logger.String("op", op), logger.Error(err))
		writeError(w, http.StatusInternalServerError, "internal_error", nil)
		return
	}

	writeJSON(w, http.StatusOK, chatSendResponse{
		Success:        true,
		Response:       reply.Response,
		ConversationID: reply.ConversationID,
		Timestamp:      time.Now().UTC().Format(time.RFC3339),
		FromModel:      reply.FromModel,
		MessageCount:   reply.MessageCount,
	})
}

type chatHistoryResponse struct {
	Success        bool            `json:"success"`
	ConversationID string          `json:"conversation_id"`
	Messages       []model.Message `json:"messages"`
	TotalMessages  int             `json:"total_messages"`
}

// HandleHistory handles GET /api/v1/chat/history requests.
func (h *ChatHandler) HandleHistory(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}

	conversationID := r.URL.Query().Get("conversation_id")
	if conversationID == "" {
		conversationID = "default"
	}

	messages, total := h.deps.ChatHistory(conversationID)
	if messages == nil {
		messages = []model.Message{}
	}

	writeJSON(w, http.StatusOK, chatHistoryResponse{
		Success:        true,
		ConversationID: conversationID,
		Messages:       messages,
		TotalMessages:  total,
	})
}

type chatNewRequest struct {
	UserID string `json:"user_id"`
}

type chatNewResponse struct {
	Success        bool   `json:"success"`
	ConversationID string `json:"conversation_id"`
	Timestamp      string `json:"timestamp"`
}

// HandleNew handles POST /api/v1/chat/new requests.
func (h *ChatHandler) HandleNew(w http.ResponseWriter, r *http.Request) {
	const op = "api.chat_new"
	if r.Method != http.MethodPost {
		http.NotFound(w, r)
		return
	}

	var req chatNewRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}

	writeJSON(w, http.StatusOK, chatNewResponse{
		Success:        true,
		ConversationID: h.deps.NewConversation(req.UserID),
		Timestamp:      time.Now().UTC().Format(time.RFC3339),
	})
}

type chatStatusResponse struct {
	Status              string `json:"status"`
	ModelAvailable      bool   `json:"model_available"`
	Model               string `json:"model"`
	ActiveConversations int    `json:"active_conversations"`
	TotalMessages       int    `json:"total_messages"`
}

// HandleStatus handles GET /api/v1/chat/status requests.
func (h *ChatHandler) HandleStatus(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}

	status := h.deps.ChatStatus()
	writeJSON(w, http.StatusOK, chatStatusResponse{
		Status:              "online",
		ModelAvailable:      status.ModelAvailable,
		Model:               status.Model,
		ActiveConversations: status.ActiveConversations,
		TotalMessages:       status.TotalMessages,
	})
}
