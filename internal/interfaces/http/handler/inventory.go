package handler

import (
	"strconv"
	"time"

	warehouseapp "github.com/agriconnect/backend/internal/application/warehouse"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// InventoryHandler handles warehouse stock endpoints.
type InventoryHandler struct {
	BaseHandler
	inventoryService *warehouseapp.InventoryService
}

// NewInventoryHandler creates a new InventoryHandler
func NewInventoryHandler(inventoryService *warehouseapp.InventoryService) *InventoryHandler {
	return &InventoryHandler{inventoryService: inventoryService}
}

// Receive books incoming stock into a warehouse zone.
// POST /api/v1/inventory/receive
func (h *InventoryHandler) Receive(c *gin.Context) {
	operatorID, err := getUserID(c)
	if err != nil {
		h.Unauthorized(c, "Not authenticated")
		return
	}

	var req warehouseapp.ReceiveStockRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	item, err := h.inventoryService.Receive(c.Request.Context(), operatorID, req)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Created(c, item)
}

// Adjust corrects an item's on-hand quantity after a physical count.
// POST /api/v1/inventory/items/:id/adjust
func (h *InventoryHandler) Adjust(c *gin.Context) {
	operatorID, err := getUserID(c)
	if err != nil {
		h.Unauthorized(c, "Not authenticated")
		return
	}

	itemID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid inventory item ID")
		return
	}

	var req warehouseapp.AdjustStockRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	item, err := h.inventoryService.Adjust(c.Request.Context(), itemID, operatorID, req)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, item)
}

// Transfer moves stock between zones of the same warehouse.
// POST /api/v1/inventory/transfer
func (h *InventoryHandler) Transfer(c *gin.Context) {
	operatorID, err := getUserID(c)
	if err != nil {
		h.Unauthorized(c, "Not authenticated")
		return
	}

	var req warehouseapp.TransferStockRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	if err := h.inventoryService.Transfer(c.Request.Context(), operatorID, req); err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, gin.H{"message": "Stock transferred"})
}

// SetQuality reclassifies an item's quality status.
// PUT /api/v1/inventory/items/:id/quality
func (h *InventoryHandler) SetQuality(c *gin.Context) {
	itemID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid inventory item ID")
		return
	}

	var req warehouseapp.SetQualityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	item, err := h.inventoryService.SetQuality(c.Request.Context(), itemID, req)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, item)
}

// SetMinQuantity sets the low-stock alert threshold for an item.
// PUT /api/v1/inventory/items/:id/min-quantity
func (h *InventoryHandler) SetMinQuantity(c *gin.Context) {
	itemID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid inventory item ID")
		return
	}

	var req warehouseapp.SetMinQuantityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	item, err := h.inventoryService.SetMinQuantity(c.Request.Context(), itemID, req)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, item)
}

// ListByWarehouse returns stock held at a warehouse.
// GET /api/v1/warehouses/:id/inventory
func (h *InventoryHandler) ListByWarehouse(c *gin.Context) {
	warehouseID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid warehouse ID")
		return
	}

	page, pageSize := parsePagination(c)
	items, err := h.inventoryService.ListByWarehouse(c.Request.Context(), warehouseID, page, pageSize)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, items)
}

// ListByProduct returns stock of one product across warehouses.
// GET /api/v1/inventory/products/:id
func (h *InventoryHandler) ListByProduct(c *gin.Context) {
	productID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid product ID")
		return
	}

	items, err := h.inventoryService.ListByProduct(c.Request.Context(), productID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, items)
}

// ListMovements returns the stock movement ledger for a product.
// GET /api/v1/inventory/products/:id/movements
func (h *InventoryHandler) ListMovements(c *gin.Context) {
	productID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid product ID")
		return
	}

	page, pageSize := parsePagination(c)
	movements, err := h.inventoryService.ListMovements(c.Request.Context(), productID, page, pageSize)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, movements)
}

// ListExpiring returns good stock expiring within the given window.
// GET /api/v1/inventory/expiring
func (h *InventoryHandler) ListExpiring(c *gin.Context) {
	days, err := strconv.Atoi(c.DefaultQuery("days", "7"))
	if err != nil || days < 1 || days > 365 {
		h.BadRequest(c, "days must be between 1 and 365")
		return
	}

	items, err := h.inventoryService.ListExpiring(c.Request.Context(), time.Duration(days)*24*time.Hour)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, items)
}

// ListLowStock returns items under their minimum quantity threshold.
// GET /api/v1/inventory/low-stock
func (h *InventoryHandler) ListLowStock(c *gin.Context) {
	items, err := h.inventoryService.ListLowStock(c.Request.Context())
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, items)
}

// parsePagination reads page and page_size query parameters with sane bounds.
func parsePagination(c *gin.Context) (int, int) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))
	if page < 1 {
		page = 1
	}
	if pageSize < 1 || pageSize > 100 {
		pageSize = 20
	}
	return page, pageSize
}
