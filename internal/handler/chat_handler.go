package handler

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/unisphere/unisphere-api/internal/service"
	appErrors "github.com/unisphere/unisphere-api/pkg/errors"
	"github.com/unisphere/unisphere-api/pkg/response"
)

// socketServer upgrades and runs a chat connection for an authenticated user.
type socketServer interface {
	ServeWS(w http.ResponseWriter, r *http.Request, userID string) error
}

// ChatHandler exposes the messenger over REST and WebSocket.
type ChatHandler struct {
	service *service.ChatService
	hub     socketServer
	logger  *zap.Logger
}

// NewChatHandler constructs the handler.
func NewChatHandler(svc *service.ChatService, hub socketServer, logger *zap.Logger) *ChatHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ChatHandler{service: svc, hub: hub, logger: logger}
}

// Users godoc
// @Summary Chat directory with presence
// @Tags Chat
// @Produce json
// @Success 200 {object} response.Envelope
// @Security BearerAuth
// @Router /chat/users [get]
func (h *ChatHandler) Users(c *gin.Context) {
	claims := requireClaims(c)
	if claims == nil {
		return
	}
	users, err := h.service.Users(c.Request.Context(), claims.UserID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, users, nil)
}

// StartConversation godoc
// @Summary Open or fetch a 1:1 conversation
// @Tags Chat
// @Accept json
// @Produce json
// @Param payload body service.StartConversationRequest true "Peer"
// @Success 200 {object} response.Envelope
// @Security BearerAuth
// @Router /chat/conversations [post]
func (h *ChatHandler) StartConversation(c *gin.Context) {
	claims := requireClaims(c)
	if claims == nil {
		return
	}
	var req service.StartConversationRequest
	if !bindJSON(c, &req) {
		return
	}
	conv, err := h.service.StartConversation(c.Request.Context(), claims.UserID, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, conv, nil)
}

// Conversations godoc
// @Summary List the caller's conversations
// @Tags Chat
// @Produce json
// @Success 200 {object} response.Envelope
// @Security BearerAuth
// @Router /chat/conversations [get]
func (h *ChatHandler) Conversations(c *gin.Context) {
	claims := requireClaims(c)
	if claims == nil {
		return
	}
	convs, err := h.service.Conversations(c.Request.Context(), claims.UserID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, convs, nil)
}

// Messages godoc
// @Summary Message history
// @Tags Chat
// @Produce json
// @Param id path string true "Conversation ID"
// @Param before query string false "RFC3339 timestamp; return messages older than this"
// @Param limit query int false "Page size (default 50, max 200)"
// @Success 200 {object} response.Envelope
// @Security BearerAuth
// @Router /chat/conversations/{id}/messages [get]
func (h *ChatHandler) Messages(c *gin.Context) {
	claims := requireClaims(c)
	if claims == nil {
		return
	}
	var before *time.Time
	if raw := c.Query("before"); raw != "" {
		ts, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			response.Error(c, appErrors.Validation(err, "invalid before timestamp", map[string]string{"before": "must be RFC3339"}))
			return
		}
		before = &ts
	}
	limit, _ := strconv.Atoi(c.Query("limit"))

	messages, err := h.service.Messages(c.Request.Context(), claims.UserID, c.Param("id"), before, limit)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, messages, nil)
}

// Send godoc
// @Summary Send a message
// @Tags Chat
// @Accept json
// @Produce json
// @Param id path string true "Conversation ID"
// @Param payload body service.SendMessageRequest true "Message"
// @Success 201 {object} response.Envelope
// @Security BearerAuth
// @Router /chat/conversations/{id}/messages [post]
func (h *ChatHandler) Send(c *gin.Context) {
	claims := requireClaims(c)
	if claims == nil {
		return
	}
	var req service.SendMessageRequest
	if !bindJSON(c, &req) {
		return
	}
	msg, err := h.service.Send(c.Request.Context(), claims.UserID, c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, msg)
}

// Socket godoc
// @Summary Realtime chat socket
// @Description Upgrades to WebSocket. Pass the access token as ?token=.
// @Tags Chat
// @Param token query string true "Access token"
// @Success 101
// @Router /chat/ws [get]
func (h *ChatHandler) Socket(c *gin.Context) {
	claims := requireClaims(c)
	if claims == nil {
		return
	}
	// the upgrader has already written an HTTP error when this fails
	if err := h.hub.ServeWS(c.Writer, c.Request, claims.UserID); err != nil {
		h.logger.Warn("websocket upgrade failed", zap.String("user_id", claims.UserID), zap.Error(err))
	}
}
