package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/ubet123/OrgFlow-sub000/internal/chat"
)

// MessageHandlers provides the REST send/fetch endpoints.
type MessageHandlers struct {
	service *chat.Service
	log     *zerolog.Logger
}

// NewMessageHandlers creates a new message handlers instance.
func NewMessageHandlers(service *chat.Service, logger *zerolog.Logger) *MessageHandlers {
	return &MessageHandlers{
		service: service,
		log:     logger,
	}
}

// SendRequest represents the send request body.
type SendRequest struct {
	Message string `json:"message" binding:"required"`
}

// SendResponse wraps the created message.
type SendResponse struct {
	Data MessageData `json:"data"`
}

// GetResponse wraps a conversation history.
type GetResponse struct {
	Messages []MessageData `json:"messages"`
}

// ErrorResponse represents an error response body.
type ErrorResponse struct {
	Error string `json:"error"`
}

// Send handles message creation and delivery.
// POST /message/send/:counterpartId
func (h *MessageHandlers) Send(c *gin.Context) {
	senderID := c.GetString(ContextKeyUserID)
	receiverID := c.Param("counterpartId")

	var req SendRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.log.Debug().Err(err).Msg("invalid send request")
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return
	}

	msg, err := h.service.Send(c.Request.Context(), senderID, receiverID, req.Message)
	if err != nil {
		if chat.IsValidationError(err) {
			c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
			return
		}
		h.log.Error().Err(err).Str("sender_id", senderID).Str("receiver_id", receiverID).Msg("failed to send message")
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal server error"})
		return
	}

	c.JSON(http.StatusCreated, SendResponse{Data: messageData(msg)})
}

// Get handles history fetch.
// GET /message/get/:counterpartId
func (h *MessageHandlers) Get(c *gin.Context) {
	userID := c.GetString(ContextKeyUserID)
	counterpartID := c.Param("counterpartId")

	messages, err := h.service.Fetch(c.Request.Context(), userID, counterpartID)
	if err != nil {
		if chat.IsValidationError(err) {
			c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
			return
		}
		h.log.Error().Err(err).Str("user_id", userID).Str("counterpart_id", counterpartID).Msg("failed to fetch messages")
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal server error"})
		return
	}

	c.JSON(http.StatusOK, GetResponse{Messages: messageDataList(messages)})
}
