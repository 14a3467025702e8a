package handler

import (
	commsapp "github.com/agriconnect/backend/internal/application/comms"
	"github.com/agriconnect/backend/internal/domain/shared"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// SMSTemplateHandler handles SMS template administration.
type SMSTemplateHandler struct {
	BaseHandler
	templateService *commsapp.TemplateService
}

// NewSMSTemplateHandler creates a new SMSTemplateHandler
func NewSMSTemplateHandler(templateService *commsapp.TemplateService) *SMSTemplateHandler {
	return &SMSTemplateHandler{templateService: templateService}
}

// Create registers a message template.
// POST /api/v1/comms/templates
func (h *SMSTemplateHandler) Create(c *gin.Context) {
	var req commsapp.CreateTemplateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	tmpl, err := h.templateService.Create(c.Request.Context(), req)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Created(c, tmpl)
}

// Update replaces a template's content.
// PUT /api/v1/comms/templates/:id
func (h *SMSTemplateHandler) Update(c *gin.Context) {
	templateID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid template ID")
		return
	}

	var req commsapp.UpdateTemplateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	tmpl, err := h.templateService.Update(c.Request.Context(), templateID, req)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, tmpl)
}

// Get returns a template by ID.
// GET /api/v1/comms/templates/:id
func (h *SMSTemplateHandler) Get(c *gin.Context) {
	templateID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid template ID")
		return
	}

	tmpl, err := h.templateService.GetByID(c.Request.Context(), templateID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, tmpl)
}

// List returns templates.
// GET /api/v1/comms/templates
func (h *SMSTemplateHandler) List(c *gin.Context) {
	filter := shared.DefaultFilter()
	page, pageSize := parsePagination(c)
	filter.Page = page
	filter.PageSize = pageSize

	templates, err := h.templateService.List(c.Request.Context(), filter)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, templates)
}

// Delete removes a template.
// DELETE /api/v1/comms/templates/:id
func (h *SMSTemplateHandler) Delete(c *gin.Context) {
	templateID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid template ID")
		return
	}

	if err := h.templateService.Delete(c.Request.Context(), templateID); err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.NoContent(c)
}
