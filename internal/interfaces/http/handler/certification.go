package handler

import (
	catalogapp "github.com/agriconnect/backend/internal/application/catalog"
	"github.com/agriconnect/backend/internal/domain/shared"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// CertificationHandler handles product certification endpoints.
type CertificationHandler struct {
	BaseHandler
	certService *catalogapp.CertificationService
}

// NewCertificationHandler creates a new CertificationHandler
func NewCertificationHandler(certService *catalogapp.CertificationService) *CertificationHandler {
	return &CertificationHandler{certService: certService}
}

// Add submits a certification claim for one of the seller's products.
// POST /api/v1/catalog/certifications
func (h *CertificationHandler) Add(c *gin.Context) {
	sellerID, err := getUserID(c)
	if err != nil {
		h.Unauthorized(c, "Not authenticated")
		return
	}

	var req catalogapp.AddCertificationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	cert, err := h.certService.Add(c.Request.Context(), sellerID, req)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Created(c, cert)
}

// Review approves or rejects a pending certification (admin).
// POST /api/v1/catalog/certifications/:id/review
func (h *CertificationHandler) Review(c *gin.Context) {
	certID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid certification ID format")
		return
	}

	var req catalogapp.ReviewCertificationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	cert, err := h.certService.Review(c.Request.Context(), certID, req)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, cert)
}

// ListByProduct returns a product's certifications.
// GET /api/v1/catalog/products/:id/certifications
func (h *CertificationHandler) ListByProduct(c *gin.Context) {
	productID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid product ID format")
		return
	}

	certs, err := h.certService.ListByProduct(c.Request.Context(), productID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, certs)
}

// ListPending returns certifications awaiting review (admin).
// GET /api/v1/catalog/certifications/pending
func (h *CertificationHandler) ListPending(c *gin.Context) {
	var listReq struct {
		Page     int `form:"page"`
		PageSize int `form:"page_size"`
	}
	if err := c.ShouldBindQuery(&listReq); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	filter := shared.DefaultFilter()
	if listReq.Page > 0 {
		filter.Page = listReq.Page
	}
	if listReq.PageSize > 0 {
		filter.PageSize = listReq.PageSize
	}

	certs, err := h.certService.ListPending(c.Request.Context(), filter)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, certs)
}
