package handler

import (
	"time"

	warehouseapp "github.com/agriconnect/backend/internal/application/warehouse"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// TemperatureHandler handles cold-chain monitoring endpoints.
type TemperatureHandler struct {
	BaseHandler
	temperatureService *warehouseapp.TemperatureService
}

// NewTemperatureHandler creates a new TemperatureHandler
func NewTemperatureHandler(temperatureService *warehouseapp.TemperatureService) *TemperatureHandler {
	return &TemperatureHandler{temperatureService: temperatureService}
}

// Record stores a temperature reading for a warehouse zone.
// POST /api/v1/warehouses/:id/temperature
func (h *TemperatureHandler) Record(c *gin.Context) {
	warehouseID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid warehouse ID")
		return
	}

	var req warehouseapp.RecordTemperatureRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	log, err := h.temperatureService.Record(c.Request.Context(), warehouseID, req)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Created(c, log)
}

// History returns readings for a zone within a time window.
// GET /api/v1/warehouses/zones/:id/temperature
func (h *TemperatureHandler) History(c *gin.Context) {
	zoneID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid zone ID")
		return
	}

	from, to, err := parseTimeRange(c)
	if err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	logs, err := h.temperatureService.History(c.Request.Context(), zoneID, from, to)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, logs)
}

// Alerts returns out-of-range readings since the given time.
// GET /api/v1/warehouses/temperature/alerts
func (h *TemperatureHandler) Alerts(c *gin.Context) {
	since := time.Now().Add(-24 * time.Hour)
	if raw := c.Query("since"); raw != "" {
		parsed, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			h.BadRequest(c, "Invalid since timestamp, expected RFC3339")
			return
		}
		since = parsed
	}

	logs, err := h.temperatureService.Alerts(c.Request.Context(), since)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, logs)
}

// parseTimeRange reads optional from/to RFC3339 query parameters,
// defaulting to the last 7 days.
func parseTimeRange(c *gin.Context) (time.Time, time.Time, error) {
	now := time.Now()
	from := now.AddDate(0, 0, -7)
	to := now

	if raw := c.Query("from"); raw != "" {
		parsed, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			return from, to, err
		}
		from = parsed
	}
	if raw := c.Query("to"); raw != "" {
		parsed, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			return from, to, err
		}
		to = parsed
	}
	return from, to, nil
}
