package warehouse

import (
	"fmt"
	"time"

	"github.com/agriconnect/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// MovementType classifies a stock movement
type MovementType string

const (
	MovementTypeInbound    MovementType = "inbound"
	MovementTypeOutbound   MovementType = "outbound"
	MovementTypeTransfer   MovementType = "transfer"
	MovementTypeAdjustment MovementType = "adjustment"
)

// IsValid checks if the movement type is valid
func (t MovementType) IsValid() bool {
	switch t {
	case MovementTypeInbound, MovementTypeOutbound, MovementTypeTransfer, MovementTypeAdjustment:
		return true
	}
	return false
}

// StockMovement is an immutable record of a stock change.
// Every mutation of an InventoryItem writes exactly one movement.
type StockMovement struct {
	shared.BaseEntity
	ReferenceNumber string          `gorm:"type:varchar(30);not null;uniqueIndex"`
	Type            MovementType    `gorm:"type:varchar(20);not null;index"`
	WarehouseID     uuid.UUID       `gorm:"type:uuid;not null;index"`
	ProductID       uuid.UUID       `gorm:"type:uuid;not null;index"`
	FromZoneID      *uuid.UUID      `gorm:"type:uuid"`
	ToZoneID        *uuid.UUID      `gorm:"type:uuid"`
	Quantity        decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	OrderID         *uuid.UUID      `gorm:"type:uuid;index"`
	Reason          string          `gorm:"type:varchar(255)"`
	PerformedBy     *uuid.UUID      `gorm:"type:uuid"`
}

// TableName returns the table name for GORM
func (StockMovement) TableName() string {
	return "stock_movements"
}

// NewStockMovement creates a movement record. Quantity is always positive;
// the type carries the direction.
func NewStockMovement(movementType MovementType, warehouseID, productID uuid.UUID, quantity decimal.Decimal) (*StockMovement, error) {
	if !movementType.IsValid() {
		return nil, shared.NewDomainError("INVALID_MOVEMENT_TYPE", "Unknown movement type")
	}
	if warehouseID == uuid.Nil || productID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_INPUT", "Warehouse and product IDs are required")
	}
	if quantity.LessThanOrEqual(decimal.Zero) {
		return nil, shared.NewDomainError("INVALID_QUANTITY", "Movement quantity must be positive")
	}

	m := &StockMovement{
		BaseEntity:  shared.NewBaseEntity(),
		Type:        movementType,
		WarehouseID: warehouseID,
		ProductID:   productID,
		Quantity:    quantity,
	}
	m.ReferenceNumber = newMovementReference(movementType, m.CreatedAt)
	return m, nil
}

// newMovementReference builds a human-readable reference like "MV-IN-20260826-1a2b3c"
func newMovementReference(t MovementType, at time.Time) string {
	short := map[MovementType]string{
		MovementTypeInbound:    "IN",
		MovementTypeOutbound:   "OUT",
		MovementTypeTransfer:   "TRF",
		MovementTypeAdjustment: "ADJ",
	}[t]
	id := uuid.New().String()
	return fmt.Sprintf("MV-%s-%s-%s", short, at.Format("20060102"), id[:6])
}

// WithZones records the source and destination zones
func (m *StockMovement) WithZones(from, to *uuid.UUID) *StockMovement {
	m.FromZoneID = from
	m.ToZoneID = to
	return m
}

// WithOrder links the movement to an order
func (m *StockMovement) WithOrder(orderID uuid.UUID) *StockMovement {
	m.OrderID = &orderID
	return m
}

// WithReason records why the movement happened
func (m *StockMovement) WithReason(reason string) *StockMovement {
	m.Reason = reason
	return m
}

// WithOperator records who performed the movement
func (m *StockMovement) WithOperator(userID uuid.UUID) *StockMovement {
	m.PerformedBy = &userID
	return m
}
