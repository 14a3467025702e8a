package warehouse

import (
	"time"

	"github.com/agriconnect/backend/internal/domain/warehouse"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CreateWarehouseRequest registers a new storage facility
type CreateWarehouseRequest struct {
	Code       string          `json:"code" binding:"required,max=20"`
	Name       string          `json:"name" binding:"required,max=200"`
	Type       string          `json:"type" binding:"required,oneof=dry cold organic processing"`
	Country    string          `json:"country" binding:"required,len=2"`
	Region     string          `json:"region"`
	City       string          `json:"city"`
	CapacityM3 decimal.Decimal `json:"capacity_m3" binding:"required"`
}

// AddZoneRequest adds a storage zone to a warehouse
type AddZoneRequest struct {
	Code     string          `json:"code" binding:"required,max=20"`
	Type     string          `json:"type" binding:"required,oneof=storage cold_storage quarantine loading organic"`
	Capacity decimal.Decimal `json:"capacity" binding:"required"`
}

// SetControlsRequest toggles environmental controls
type SetControlsRequest struct {
	Temperature bool `json:"temperature"`
	Humidity    bool `json:"humidity"`
}

// WarehouseListFilter narrows down warehouse listings
type WarehouseListFilter struct {
	Page     int    `form:"page"`
	PageSize int    `form:"page_size"`
	Country  string `form:"country"`
	Search   string `form:"search"`
}

// ZoneResponse is the outward representation of a zone
type ZoneResponse struct {
	ID           uuid.UUID       `json:"id"`
	Code         string          `json:"code"`
	Type         string          `json:"type"`
	Capacity     decimal.Decimal `json:"capacity"`
	CurrentStock decimal.Decimal `json:"current_stock"`
	FreeCapacity decimal.Decimal `json:"free_capacity"`
}

// WarehouseResponse is the outward representation of a warehouse
type WarehouseResponse struct {
	ID                 uuid.UUID       `json:"id"`
	Code               string          `json:"code"`
	Name               string          `json:"name"`
	Type               string          `json:"type"`
	Country            string          `json:"country"`
	Region             string          `json:"region,omitempty"`
	City               string          `json:"city,omitempty"`
	CapacityM3         decimal.Decimal `json:"capacity_m3"`
	Utilization        decimal.Decimal `json:"utilization"`
	TemperatureControl bool            `json:"temperature_control"`
	HumidityControl    bool            `json:"humidity_control"`
	OrganicCertified   bool            `json:"organic_certified"`
	ManagerID          *uuid.UUID      `json:"manager_id,omitempty"`
	Status             string          `json:"status"`
	Zones              []ZoneResponse  `json:"zones,omitempty"`
	CreatedAt          time.Time       `json:"created_at"`
	UpdatedAt          time.Time       `json:"updated_at"`
}

// ToZoneResponse converts a domain zone
func ToZoneResponse(z *warehouse.Zone) ZoneResponse {
	return ZoneResponse{
		ID:           z.ID,
		Code:         z.Code,
		Type:         string(z.Type),
		Capacity:     z.Capacity,
		CurrentStock: z.CurrentStock,
		FreeCapacity: z.FreeCapacity(),
	}
}

// ToWarehouseResponse converts a domain warehouse with its zones
func ToWarehouseResponse(w *warehouse.Warehouse) WarehouseResponse {
	zones := make([]ZoneResponse, len(w.Zones))
	for i := range w.Zones {
		zones[i] = ToZoneResponse(&w.Zones[i])
	}
	return WarehouseResponse{
		ID:                 w.ID,
		Code:               w.Code,
		Name:               w.Name,
		Type:               string(w.Type),
		Country:            w.Country,
		Region:             w.Region,
		City:               w.City,
		CapacityM3:         w.CapacityM3,
		Utilization:        w.Utilization(),
		TemperatureControl: w.TemperatureControl,
		HumidityControl:    w.HumidityControl,
		OrganicCertified:   w.OrganicCertified,
		ManagerID:          w.ManagerID,
		Status:             string(w.Status),
		Zones:              zones,
		CreatedAt:          w.CreatedAt,
		UpdatedAt:          w.UpdatedAt,
	}
}

// ReceiveStockRequest books inbound stock into a zone
type ReceiveStockRequest struct {
	WarehouseID uuid.UUID       `json:"warehouse_id" binding:"required"`
	ZoneID      uuid.UUID       `json:"zone_id" binding:"required"`
	ProductID   uuid.UUID       `json:"product_id" binding:"required"`
	Quantity    decimal.Decimal `json:"quantity" binding:"required"`
	BatchNumber string          `json:"batch_number"`
	LotNumber   string          `json:"lot_number"`
	HarvestDate *time.Time      `json:"harvest_date"`
	ExpiryDate  *time.Time      `json:"expiry_date"`
}

// AdjustStockRequest corrects stock after a count
type AdjustStockRequest struct {
	ActualQuantity decimal.Decimal `json:"actual_quantity" binding:"required"`
	Reason         string          `json:"reason" binding:"required"`
}

// TransferStockRequest moves stock between zones of a warehouse
type TransferStockRequest struct {
	WarehouseID uuid.UUID       `json:"warehouse_id" binding:"required"`
	FromZoneID  uuid.UUID       `json:"from_zone_id" binding:"required"`
	ToZoneID    uuid.UUID       `json:"to_zone_id" binding:"required"`
	ProductID   uuid.UUID       `json:"product_id" binding:"required"`
	Quantity    decimal.Decimal `json:"quantity" binding:"required"`
}

// SetQualityRequest changes the inspection state of stock
type SetQualityRequest struct {
	Quality string `json:"quality" binding:"required,oneof=good quarantined damaged expired"`
}

// SetMinQuantityRequest sets the low-stock alert threshold
type SetMinQuantityRequest struct {
	MinQuantity decimal.Decimal `json:"min_quantity" binding:"required"`
}

// InventoryItemResponse is the outward representation of a stock record
type InventoryItemResponse struct {
	ID          uuid.UUID       `json:"id"`
	WarehouseID uuid.UUID       `json:"warehouse_id"`
	ZoneID      uuid.UUID       `json:"zone_id"`
	ProductID   uuid.UUID       `json:"product_id"`
	Quantity    decimal.Decimal `json:"quantity"`
	Reserved    decimal.Decimal `json:"reserved"`
	Available   decimal.Decimal `json:"available"`
	BatchNumber string          `json:"batch_number,omitempty"`
	LotNumber   string          `json:"lot_number,omitempty"`
	HarvestDate *time.Time      `json:"harvest_date,omitempty"`
	ExpiryDate  *time.Time      `json:"expiry_date,omitempty"`
	Quality     string          `json:"quality"`
	MinQuantity decimal.Decimal `json:"min_quantity"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

// ToInventoryItemResponse converts a domain inventory item
func ToInventoryItemResponse(i *warehouse.InventoryItem) InventoryItemResponse {
	return InventoryItemResponse{
		ID:          i.ID,
		WarehouseID: i.WarehouseID,
		ZoneID:      i.ZoneID,
		ProductID:   i.ProductID,
		Quantity:    i.Quantity,
		Reserved:    i.Reserved,
		Available:   i.Available(),
		BatchNumber: i.BatchNumber,
		LotNumber:   i.LotNumber,
		HarvestDate: i.HarvestDate,
		ExpiryDate:  i.ExpiryDate,
		Quality:     string(i.Quality),
		MinQuantity: i.MinQuantity,
		UpdatedAt:   i.UpdatedAt,
	}
}

// ToInventoryItemResponses converts a slice of inventory items
func ToInventoryItemResponses(items []warehouse.InventoryItem) []InventoryItemResponse {
	responses := make([]InventoryItemResponse, len(items))
	for i := range items {
		responses[i] = ToInventoryItemResponse(&items[i])
	}
	return responses
}

// MovementResponse is the outward representation of a stock movement
type MovementResponse struct {
	ID              uuid.UUID       `json:"id"`
	ReferenceNumber string          `json:"reference_number"`
	Type            string          `json:"type"`
	WarehouseID     uuid.UUID       `json:"warehouse_id"`
	ProductID       uuid.UUID       `json:"product_id"`
	FromZoneID      *uuid.UUID      `json:"from_zone_id,omitempty"`
	ToZoneID        *uuid.UUID      `json:"to_zone_id,omitempty"`
	Quantity        decimal.Decimal `json:"quantity"`
	OrderID         *uuid.UUID      `json:"order_id,omitempty"`
	Reason          string          `json:"reason,omitempty"`
	PerformedBy     *uuid.UUID      `json:"performed_by,omitempty"`
	CreatedAt       time.Time       `json:"created_at"`
}

// ToMovementResponse converts a domain stock movement
func ToMovementResponse(m *warehouse.StockMovement) MovementResponse {
	return MovementResponse{
		ID:              m.ID,
		ReferenceNumber: m.ReferenceNumber,
		Type:            string(m.Type),
		WarehouseID:     m.WarehouseID,
		ProductID:       m.ProductID,
		FromZoneID:      m.FromZoneID,
		ToZoneID:        m.ToZoneID,
		Quantity:        m.Quantity,
		OrderID:         m.OrderID,
		Reason:          m.Reason,
		PerformedBy:     m.PerformedBy,
		CreatedAt:       m.CreatedAt,
	}
}

// RecordTemperatureRequest records a sensor reading for a zone
type RecordTemperatureRequest struct {
	ZoneID     uuid.UUID  `json:"zone_id" binding:"required"`
	Celsius    float64    `json:"celsius" binding:"required"`
	Humidity   *float64   `json:"humidity"`
	RecordedAt *time.Time `json:"recorded_at"`
}

// TemperatureLogResponse is the outward representation of a reading
type TemperatureLogResponse struct {
	ID          uuid.UUID `json:"id"`
	WarehouseID uuid.UUID `json:"warehouse_id"`
	ZoneID      uuid.UUID `json:"zone_id"`
	Celsius     float64   `json:"celsius"`
	Humidity    *float64  `json:"humidity,omitempty"`
	InRange     bool      `json:"in_range"`
	RecordedAt  time.Time `json:"recorded_at"`
}

// ToTemperatureLogResponse converts a domain temperature log
func ToTemperatureLogResponse(l *warehouse.TemperatureLog) TemperatureLogResponse {
	return TemperatureLogResponse{
		ID:          l.ID,
		WarehouseID: l.WarehouseID,
		ZoneID:      l.ZoneID,
		Celsius:     l.Celsius,
		Humidity:    l.Humidity,
		InRange:     l.InRange,
		RecordedAt:  l.RecordedAt,
	}
}
