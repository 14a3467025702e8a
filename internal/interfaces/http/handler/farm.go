package handler

import (
	traceabilityapp "github.com/agriconnect/backend/internal/application/traceability"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// FarmHandler handles farm registry endpoints.
type FarmHandler struct {
	BaseHandler
	farmService *traceabilityapp.FarmService
}

// NewFarmHandler creates a new FarmHandler
func NewFarmHandler(farmService *traceabilityapp.FarmService) *FarmHandler {
	return &FarmHandler{farmService: farmService}
}

// Register records a farm owned by the caller.
// POST /api/v1/traceability/farms
func (h *FarmHandler) Register(c *gin.Context) {
	farmerID, err := getUserID(c)
	if err != nil {
		h.Unauthorized(c, "Not authenticated")
		return
	}

	var req traceabilityapp.RegisterFarmRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	farm, err := h.farmService.Register(c.Request.Context(), farmerID, req)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Created(c, farm)
}

// Get returns one of the caller's farms.
// GET /api/v1/traceability/farms/:id
func (h *FarmHandler) Get(c *gin.Context) {
	farmerID, err := getUserID(c)
	if err != nil {
		h.Unauthorized(c, "Not authenticated")
		return
	}

	farmID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid farm ID")
		return
	}

	farm, err := h.farmService.Get(c.Request.Context(), farmerID, farmID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, farm)
}

// ListMine returns the caller's farms.
// GET /api/v1/traceability/farms
func (h *FarmHandler) ListMine(c *gin.Context) {
	farmerID, err := getUserID(c)
	if err != nil {
		h.Unauthorized(c, "Not authenticated")
		return
	}

	farms, err := h.farmService.ListByFarmer(c.Request.Context(), farmerID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, farms)
}

// SetCoordinates pins a farm to GPS coordinates.
// PUT /api/v1/traceability/farms/:id/coordinates
func (h *FarmHandler) SetCoordinates(c *gin.Context) {
	farmerID, err := getUserID(c)
	if err != nil {
		h.Unauthorized(c, "Not authenticated")
		return
	}

	farmID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid farm ID")
		return
	}

	var req traceabilityapp.SetCoordinatesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	farm, err := h.farmService.SetCoordinates(c.Request.Context(), farmerID, farmID, req)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, farm)
}

// CertifyOrganic grants a farm organic certification.
// POST /api/v1/traceability/farms/:id/certify-organic
func (h *FarmHandler) CertifyOrganic(c *gin.Context) {
	farmID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid farm ID")
		return
	}

	farm, err := h.farmService.CertifyOrganic(c.Request.Context(), farmID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, farm)
}

// RevokeOrganic withdraws a farm's organic certification.
// POST /api/v1/traceability/farms/:id/revoke-organic
func (h *FarmHandler) RevokeOrganic(c *gin.Context) {
	farmID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid farm ID")
		return
	}

	farm, err := h.farmService.RevokeOrganic(c.Request.Context(), farmID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, farm)
}
