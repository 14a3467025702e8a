package handler

import (
	catalogapp "github.com/agriconnect/backend/internal/application/catalog"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// MediaHandler handles product photo and video upload endpoints.
// Uploads go directly to object storage with presigned URLs, the API
// only brokers the handshake.
type MediaHandler struct {
	BaseHandler
	mediaService *catalogapp.MediaService
}

// NewMediaHandler creates a new MediaHandler
func NewMediaHandler(mediaService *catalogapp.MediaService) *MediaHandler {
	return &MediaHandler{mediaService: mediaService}
}

// InitiateUpload reserves a media slot and returns a presigned URL.
// POST /api/v1/catalog/media
func (h *MediaHandler) InitiateUpload(c *gin.Context) {
	sellerID, err := getUserID(c)
	if err != nil {
		h.Unauthorized(c, "Not authenticated")
		return
	}

	var req catalogapp.InitiateUploadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	result, err := h.mediaService.InitiateUpload(c.Request.Context(), sellerID, req)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Created(c, result)
}

// ConfirmUpload marks a pending upload as completed.
// POST /api/v1/catalog/media/:id/confirm
func (h *MediaHandler) ConfirmUpload(c *gin.Context) {
	mediaID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid media ID format")
		return
	}

	media, err := h.mediaService.ConfirmUpload(c.Request.Context(), mediaID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, media)
}

// ListByProduct returns the media attached to a product.
// GET /api/v1/catalog/products/:id/media
func (h *MediaHandler) ListByProduct(c *gin.Context) {
	productID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid product ID format")
		return
	}

	media, err := h.mediaService.ListByProduct(c.Request.Context(), productID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, media)
}

// Delete removes media owned by the caller.
// DELETE /api/v1/catalog/media/:id
func (h *MediaHandler) Delete(c *gin.Context) {
	sellerID, err := getUserID(c)
	if err != nil {
		h.Unauthorized(c, "Not authenticated")
		return
	}

	mediaID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid media ID format")
		return
	}

	if err := h.mediaService.Delete(c.Request.Context(), sellerID, mediaID); err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.NoContent(c)
}
