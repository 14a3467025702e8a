package handler

import (
	"context"

	warehouseapp "github.com/agriconnect/backend/internal/application/warehouse"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// WarehouseHandler handles warehouse facility endpoints.
type WarehouseHandler struct {
	BaseHandler
	warehouseService *warehouseapp.WarehouseService
}

// NewWarehouseHandler creates a new WarehouseHandler
func NewWarehouseHandler(warehouseService *warehouseapp.WarehouseService) *WarehouseHandler {
	return &WarehouseHandler{warehouseService: warehouseService}
}

// Create registers a new warehouse facility.
// POST /api/v1/warehouses
func (h *WarehouseHandler) Create(c *gin.Context) {
	var req warehouseapp.CreateWarehouseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	wh, err := h.warehouseService.Create(c.Request.Context(), req)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Created(c, wh)
}

// AddZone adds a storage zone to a warehouse.
// POST /api/v1/warehouses/:id/zones
func (h *WarehouseHandler) AddZone(c *gin.Context) {
	warehouseID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid warehouse ID")
		return
	}

	var req warehouseapp.AddZoneRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	wh, err := h.warehouseService.AddZone(c.Request.Context(), warehouseID, req)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Created(c, wh)
}

// SetManagerRequest assigns a managing user to a warehouse.
type SetManagerRequest struct {
	ManagerID uuid.UUID `json:"manager_id" binding:"required"`
}

// SetManager assigns the warehouse manager.
// PUT /api/v1/warehouses/:id/manager
func (h *WarehouseHandler) SetManager(c *gin.Context) {
	warehouseID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid warehouse ID")
		return
	}

	var req SetManagerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	wh, err := h.warehouseService.SetManager(c.Request.Context(), warehouseID, req.ManagerID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, wh)
}

// SetControls configures temperature and humidity monitoring.
// PUT /api/v1/warehouses/:id/controls
func (h *WarehouseHandler) SetControls(c *gin.Context) {
	warehouseID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid warehouse ID")
		return
	}

	var req warehouseapp.SetControlsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	wh, err := h.warehouseService.SetControls(c.Request.Context(), warehouseID, req)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, wh)
}

// CertifyOrganic marks a warehouse as certified for organic storage.
// POST /api/v1/warehouses/:id/certify-organic
func (h *WarehouseHandler) CertifyOrganic(c *gin.Context) {
	h.lifecycle(c, h.warehouseService.CertifyOrganic)
}

// EnterMaintenance takes a warehouse offline for maintenance.
// POST /api/v1/warehouses/:id/maintenance
func (h *WarehouseHandler) EnterMaintenance(c *gin.Context) {
	h.lifecycle(c, h.warehouseService.EnterMaintenance)
}

// Reopen brings a warehouse back into service.
// POST /api/v1/warehouses/:id/reopen
func (h *WarehouseHandler) Reopen(c *gin.Context) {
	h.lifecycle(c, h.warehouseService.Reopen)
}

// Close permanently closes a warehouse.
// POST /api/v1/warehouses/:id/close
func (h *WarehouseHandler) Close(c *gin.Context) {
	h.lifecycle(c, h.warehouseService.Close)
}

func (h *WarehouseHandler) lifecycle(c *gin.Context, fn func(ctx context.Context, warehouseID uuid.UUID) (*warehouseapp.WarehouseResponse, error)) {
	warehouseID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid warehouse ID")
		return
	}

	wh, err := fn(c.Request.Context(), warehouseID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, wh)
}

// Get returns a warehouse with its zones.
// GET /api/v1/warehouses/:id
func (h *WarehouseHandler) Get(c *gin.Context) {
	warehouseID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid warehouse ID")
		return
	}

	wh, err := h.warehouseService.Get(c.Request.Context(), warehouseID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, wh)
}

// List returns warehouses matching the filter.
// GET /api/v1/warehouses
func (h *WarehouseHandler) List(c *gin.Context) {
	var filter warehouseapp.WarehouseListFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		h.BadRequest(c, err.Error())
		return
	}
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.PageSize < 1 || filter.PageSize > 100 {
		filter.PageSize = 20
	}

	warehouses, total, err := h.warehouseService.List(c.Request.Context(), filter)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.SuccessWithMeta(c, warehouses, total, filter.Page, filter.PageSize)
}
