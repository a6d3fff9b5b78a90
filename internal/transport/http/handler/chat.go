package handler

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"heysera/internal/app"
	"heysera/internal/store"
	"heysera/internal/transport/http/response"
)

type ChatHandler struct {
	chatService *app.ChatService
}

type ChatRequest struct {
	Message string `json:"message" binding:"required"`
	ChatID  string `json:"chatId"`
}

type ChatResponse struct {
	Response  string    `json:"response"`
	ChatID    string    `json:"chatId"`
	Timestamp time.Time `json:"timestamp"`
}

func NewChatHandler(chatService *app.ChatService) *ChatHandler {
	return &ChatHandler{chatService: chatService}
}

// SendMessage handles POST /api/chat.
func (h *ChatHandler) SendMessage(c *gin.Context) {
	var req ChatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, response.CodeBadRequest, "invalid request payload")
		return
	}

	result, err := h.chatService.SendMessage(c.Request.Context(), app.SendMessageInput{
		SessionID: req.ChatID,
		Content:   req.Message,
	})
	if err != nil {
		switch {
		case errors.Is(err, app.ErrMessageEmpty), errors.Is(err, app.ErrInvalidInput):
			response.Error(c, http.StatusBadRequest, response.CodeBadRequest, err.Error())
		case errors.Is(err, store.ErrSessionNotFound):
			response.Error(c, http.StatusNotFound, response.CodeSessionNotFound, err.Error())
		default:
			response.Error(c, http.StatusInternalServerError, response.CodeInternalServer, "send message failed")
		}
		return
	}

	response.OK(c, ChatResponse{
		Response:  result.Reply,
		ChatID:    result.SessionID,
		Timestamp: result.Timestamp,
	})
}

// GetHistory handles GET /api/chat/:id/history.
func (h *ChatHandler) GetHistory(c *gin.Context) {
	sessionID := c.Param("id")
	session, err := h.chatService.History(c.Request.Context(), sessionID)
	if err != nil {
		if errors.Is(err, store.ErrSessionNotFound) {
			response.Error(c, http.StatusNotFound, response.CodeSessionNotFound, err.Error())
			return
		}
		response.Error(c, http.StatusInternalServerError, response.CodeInternalServer, "get history failed")
		return
	}
	response.OK(c, session)
}

// GetDocuments handles GET /api/chat/:id/documents; metadata only.
func (h *ChatHandler) GetDocuments(c *gin.Context) {
	sessionID := c.Param("id")
	metas, err := h.chatService.SessionDocuments(c.Request.Context(), sessionID)
	if err != nil {
		if errors.Is(err, store.ErrSessionNotFound) {
			response.Error(c, http.StatusNotFound, response.CodeSessionNotFound, err.Error())
			return
		}
		response.Error(c, http.StatusInternalServerError, response.CodeInternalServer, "list documents failed")
		return
	}
	response.OK(c, metas)
}

// ListChats handles GET /api/chats.
func (h *ChatHandler) ListChats(c *gin.Context) {
	summaries, err := h.chatService.ListSessions(c.Request.Context())
	if err != nil {
		response.Error(c, http.StatusInternalServerError, response.CodeInternalServer, "list chats failed")
		return
	}
	response.OK(c, summaries)
}

// DeleteChat handles DELETE /api/chat/:id; referenced documents cascade.
func (h *ChatHandler) DeleteChat(c *gin.Context) {
	sessionID := c.Param("id")
	if err := h.chatService.DeleteSession(c.Request.Context(), sessionID); err != nil {
		if errors.Is(err, store.ErrSessionNotFound) {
			response.Error(c, http.StatusNotFound, response.CodeSessionNotFound, err.Error())
			return
		}
		response.Error(c, http.StatusInternalServerError, response.CodeInternalServer, "delete chat failed")
		return
	}
	response.OK(c, gin.H{"deletedChatId": sessionID})
}
