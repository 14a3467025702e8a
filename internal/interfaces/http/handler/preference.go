package handler

import (
	commsapp "github.com/agriconnect/backend/internal/application/comms"
	"github.com/agriconnect/backend/internal/domain/shared"
	"github.com/gin-gonic/gin"
)

// PreferenceHandler handles communication preference endpoints.
type PreferenceHandler struct {
	BaseHandler
	preferenceService *commsapp.PreferenceService
}

// NewPreferenceHandler creates a new PreferenceHandler
func NewPreferenceHandler(preferenceService *commsapp.PreferenceService) *PreferenceHandler {
	return &PreferenceHandler{preferenceService: preferenceService}
}

// Get returns the current user's communication preferences.
// GET /api/v1/comms/preferences
func (h *PreferenceHandler) Get(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		h.Unauthorized(c, "Not authenticated")
		return
	}

	prefs, err := h.preferenceService.Get(c.Request.Context(), userID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, prefs)
}

// Update changes the current user's communication preferences.
// PUT /api/v1/comms/preferences
func (h *PreferenceHandler) Update(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		h.Unauthorized(c, "Not authenticated")
		return
	}

	var req commsapp.UpdatePreferencesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	prefs, err := h.preferenceService.Update(c.Request.Context(), userID, req)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, prefs)
}

// ListLogs returns the current user's outbound communication history.
// GET /api/v1/comms/logs
func (h *PreferenceHandler) ListLogs(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		h.Unauthorized(c, "Not authenticated")
		return
	}

	filter := shared.DefaultFilter()
	page, pageSize := parsePagination(c)
	filter.Page = page
	filter.PageSize = pageSize

	logs, err := h.preferenceService.ListLogs(c.Request.Context(), userID, filter)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, logs)
}
