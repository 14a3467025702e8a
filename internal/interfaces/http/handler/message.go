package handler

import (
	commsapp "github.com/agriconnect/backend/internal/application/comms"
	"github.com/agriconnect/backend/internal/domain/shared"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// MessageHandler handles outbound SMS message endpoints.
type MessageHandler struct {
	BaseHandler
	messageService *commsapp.MessageService
}

// NewMessageHandler creates a new MessageHandler
func NewMessageHandler(messageService *commsapp.MessageService) *MessageHandler {
	return &MessageHandler{messageService: messageService}
}

// Send renders a template and dispatches it to a recipient.
// POST /api/v1/comms/messages
func (h *MessageHandler) Send(c *gin.Context) {
	var req commsapp.SendTemplatedRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	msg, err := h.messageService.SendTemplated(c.Request.Context(), req)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Created(c, msg)
}

// SendBulk dispatches one templated message to many recipients.
// POST /api/v1/comms/messages/bulk
func (h *MessageHandler) SendBulk(c *gin.Context) {
	var req commsapp.BulkSendRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	result, err := h.messageService.SendBulk(c.Request.Context(), req)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, result)
}

// Get returns a single message with its delivery status.
// GET /api/v1/comms/messages/:id
func (h *MessageHandler) Get(c *gin.Context) {
	messageID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid message ID")
		return
	}

	msg, err := h.messageService.GetByID(c.Request.Context(), messageID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, msg)
}

// ListByRecipient returns the message history for a phone number.
// GET /api/v1/comms/messages
func (h *MessageHandler) ListByRecipient(c *gin.Context) {
	recipient := c.Query("recipient")
	if recipient == "" {
		h.BadRequest(c, "recipient query parameter is required")
		return
	}

	filter := shared.DefaultFilter()
	page, pageSize := parsePagination(c)
	filter.Page = page
	filter.PageSize = pageSize

	messages, err := h.messageService.ListByRecipient(c.Request.Context(), recipient, filter)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, messages)
}
