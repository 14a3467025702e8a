package handler

import (
	traceabilityapp "github.com/agriconnect/backend/internal/application/traceability"
	"github.com/agriconnect/backend/internal/interfaces/http/middleware"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// TraceHandler handles farm-to-fork trace endpoints.
type TraceHandler struct {
	BaseHandler
	traceService *traceabilityapp.TraceService
}

// NewTraceHandler creates a new TraceHandler
func NewTraceHandler(traceService *traceabilityapp.TraceService) *TraceHandler {
	return &TraceHandler{traceService: traceService}
}

// Create opens a trace for a harvest batch.
// POST /api/v1/traceability/traces
func (h *TraceHandler) Create(c *gin.Context) {
	farmerID, err := getUserID(c)
	if err != nil {
		h.Unauthorized(c, "Not authenticated")
		return
	}

	var req traceabilityapp.CreateTraceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	trace, err := h.traceService.Create(c.Request.Context(), farmerID, req)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Created(c, trace)
}

// AppendEvent records a supply chain stage on a trace.
// POST /api/v1/traceability/traces/:id/events
func (h *TraceHandler) AppendEvent(c *gin.Context) {
	actorID, err := getUserID(c)
	if err != nil {
		h.Unauthorized(c, "Not authenticated")
		return
	}

	traceID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid trace ID")
		return
	}

	var req traceabilityapp.AppendEventRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	actorName := middleware.GetJWTPhone(c)
	trace, err := h.traceService.AppendEvent(c.Request.Context(), actorID, actorName, traceID, req)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, trace)
}

// Get returns a trace with its full event chain.
// GET /api/v1/traceability/traces/:id
func (h *TraceHandler) Get(c *gin.Context) {
	traceID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid trace ID")
		return
	}

	trace, err := h.traceService.Get(c.Request.Context(), traceID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, trace)
}

// ListByProduct returns traces recorded for a product.
// GET /api/v1/traceability/products/:id/traces
func (h *TraceHandler) ListByProduct(c *gin.Context) {
	productID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid product ID")
		return
	}

	traces, err := h.traceService.ListByProduct(c.Request.Context(), productID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, traces)
}

// Verify checks a trace's hash chain for tampering.
// GET /api/v1/traceability/traces/:id/verify
func (h *TraceHandler) Verify(c *gin.Context) {
	traceID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid trace ID")
		return
	}

	result, err := h.traceService.Verify(c.Request.Context(), traceID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, result)
}

// Scan resolves a batch number from a QR code to its public trace.
// Unauthenticated so consumers can scan labels without an account.
// GET /api/v1/traceability/scan/:batch
func (h *TraceHandler) Scan(c *gin.Context) {
	batchNumber := c.Param("batch")
	if batchNumber == "" {
		h.BadRequest(c, "Batch number is required")
		return
	}

	location := c.Query("location")
	if location == "" {
		location = c.ClientIP()
	}

	trace, err := h.traceService.Scan(c.Request.Context(), batchNumber, location, c.Request.UserAgent())
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, trace)
}
