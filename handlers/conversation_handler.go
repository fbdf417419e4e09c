package handlers

import (
	"context"
	"errors"
	"io"
	"net/http"

	"safevoice-backend/models"
	"safevoice-backend/service"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// Assistant is the chat behaviour the conversation endpoints need
type Assistant interface {
	StartConversation(ctx context.Context, userID *uuid.UUID) (*models.Conversation, error)
	GetConversation(ctx context.Context, id uuid.UUID) (*models.Conversation, error)
	ResetConversation(ctx context.Context, id uuid.UUID) (*models.Conversation, error)
	SendMessage(ctx context.Context, id uuid.UUID, text string) (*service.SendMessageResult, error)
}

// ConversationHandler handles HTTP requests for the legal assistant chat
type ConversationHandler struct {
	assistant Assistant
}

// NewConversationHandler creates a new conversation handler
func NewConversationHandler(assistant Assistant) *ConversationHandler {
	return &ConversationHandler{assistant: assistant}
}

// CreateConversation handles POST /api/conversations
func (h *ConversationHandler) CreateConversation(c *gin.Context) {
	var reqBody struct {
		UserID *string `json:"user_id"`
	}
	if err := c.ShouldBindJSON(&reqBody); err != nil && !errors.Is(err, io.EOF) {
		respondError(c, http.StatusBadRequest, "INVALID_REQUEST", err.Error())
		return
	}

	var userID *uuid.UUID
	if reqBody.UserID != nil && *reqBody.UserID != "" {
		id, err := uuid.Parse(*reqBody.UserID)
		if err != nil {
			respondError(c, http.StatusBadRequest, "INVALID_USER_ID", "Invalid user_id format")
			return
		}
		userID = &id
	}

	conv, err := h.assistant.StartConversation(c.Request.Context(), userID)
	if err != nil {
		respondError(c, http.StatusInternalServerError, "CREATION_FAILED", err.Error())
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"data":    conv,
	})
}

// GetConversation handles GET /api/conversations/:id
func (h *ConversationHandler) GetConversation(c *gin.Context) {
	id, ok := parseID(c, "conversation")
	if !ok {
		return
	}

	conv, err := h.assistant.GetConversation(c.Request.Context(), id)
	if err != nil {
		h.conversationError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    conv,
	})
}

// SendMessage handles POST /api/conversations/:id/messages
func (h *ConversationHandler) SendMessage(c *gin.Context) {
	id, ok := parseID(c, "conversation")
	if !ok {
		return
	}

	var reqBody struct {
		Text string `json:"text"`
	}
	if err := c.ShouldBindJSON(&reqBody); err != nil {
		respondError(c, http.StatusBadRequest, "INVALID_REQUEST", err.Error())
		return
	}

	result, err := h.assistant.SendMessage(c.Request.Context(), id, reqBody.Text)
	if err != nil {
		if errors.Is(err, service.ErrEmptyMessage) {
			respondError(c, http.StatusBadRequest, "EMPTY_MESSAGE", "Message text is required")
			return
		}
		h.conversationError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data": gin.H{
			"user_turn":      result.UserTurn,
			"assistant_turn": result.AssistantTurn,
			"searched":       result.Searched,
			"query":          result.Query,
			"fallback":       result.Fallback,
		},
	})
}

// ResetConversation handles POST /api/conversations/:id/reset
func (h *ConversationHandler) ResetConversation(c *gin.Context) {
	id, ok := parseID(c, "conversation")
	if !ok {
		return
	}

	conv, err := h.assistant.ResetConversation(c.Request.Context(), id)
	if err != nil {
		h.conversationError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    conv,
	})
}

func (h *ConversationHandler) conversationError(c *gin.Context, err error) {
	if errors.Is(err, service.ErrConversationNotFound) {
		respondError(c, http.StatusNotFound, "NOT_FOUND", "Conversation not found")
		return
	}
	respondError(c, http.StatusInternalServerError, "INTERNAL_ERROR", err.Error())
}
