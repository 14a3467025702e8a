package handler

import (
	aiapp "github.com/agriconnect/backend/internal/application/ai"
	"github.com/gin-gonic/gin"
)

// AIHandler handles assistant content endpoints.
type AIHandler struct {
	BaseHandler
	assistantService *aiapp.AssistantService
}

// NewAIHandler creates a new AIHandler
func NewAIHandler(assistantService *aiapp.AssistantService) *AIHandler {
	return &AIHandler{assistantService: assistantService}
}

// GenerateMessage produces notification copy for a message type,
// falling back to stored templates when the model is unavailable.
// POST /api/v1/ai/messages
func (h *AIHandler) GenerateMessage(c *gin.Context) {
	var req aiapp.GenerateMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	resp, err := h.assistantService.GenerateMessage(c.Request.Context(), req)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, resp)
}

// Translate renders text into another supported language.
// POST /api/v1/ai/translate
func (h *AIHandler) Translate(c *gin.Context) {
	var req aiapp.TranslateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	resp, err := h.assistantService.Translate(c.Request.Context(), req)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, resp)
}

// DetectIntent classifies a free-form farmer query.
// POST /api/v1/ai/intent
func (h *AIHandler) DetectIntent(c *gin.Context) {
	var req aiapp.DetectIntentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	resp, err := h.assistantService.DetectIntent(c.Request.Context(), req)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, resp)
}
