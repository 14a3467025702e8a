package warehouse

import (
	"time"

	"github.com/agriconnect/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// QualityStatus tracks the inspection state of stored produce
type QualityStatus string

const (
	QualityStatusGood        QualityStatus = "good"
	QualityStatusQuarantined QualityStatus = "quarantined"
	QualityStatusDamaged     QualityStatus = "damaged"
	QualityStatusExpired     QualityStatus = "expired"
)

// InventoryItem tracks a product's stock in a warehouse zone.
// It is the aggregate root for stock operations. The invariant
// available = quantity - reserved >= 0 holds at all times.
type InventoryItem struct {
	shared.BaseAggregateRoot
	WarehouseID uuid.UUID       `gorm:"type:uuid;not null;uniqueIndex:idx_inventory_wh_zone_product,priority:1"`
	ZoneID      uuid.UUID       `gorm:"type:uuid;not null;uniqueIndex:idx_inventory_wh_zone_product,priority:2"`
	ProductID   uuid.UUID       `gorm:"type:uuid;not null;uniqueIndex:idx_inventory_wh_zone_product,priority:3"`
	Quantity    decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	Reserved    decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	BatchNumber string          `gorm:"type:varchar(50);index"`
	LotNumber   string          `gorm:"type:varchar(50)"`
	HarvestDate *time.Time      `gorm:"type:date"`
	ExpiryDate  *time.Time      `gorm:"type:date;index"`
	Quality     QualityStatus   `gorm:"type:varchar(20);not null;default:'good'"`
	MinQuantity decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"` // low-stock alert threshold
}

// TableName returns the table name for GORM
func (InventoryItem) TableName() string {
	return "inventory_items"
}

// NewInventoryItem creates an empty stock record for a product in a zone
func NewInventoryItem(warehouseID, zoneID, productID uuid.UUID) (*InventoryItem, error) {
	if warehouseID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_WAREHOUSE", "Warehouse ID cannot be empty")
	}
	if zoneID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_ZONE", "Zone ID cannot be empty")
	}
	if productID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_PRODUCT", "Product ID cannot be empty")
	}

	return &InventoryItem{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		WarehouseID:       warehouseID,
		ZoneID:            zoneID,
		ProductID:         productID,
		Quantity:          decimal.Zero,
		Reserved:          decimal.Zero,
		Quality:           QualityStatusGood,
		MinQuantity:       decimal.Zero,
	}, nil
}

// Available returns the quantity not held by reservations
func (i *InventoryItem) Available() decimal.Decimal {
	return i.Quantity.Sub(i.Reserved)
}

// Receive adds inbound stock, optionally tagging batch and dates
func (i *InventoryItem) Receive(quantity decimal.Decimal, batchNumber, lotNumber string, harvestDate, expiryDate *time.Time) error {
	if quantity.LessThanOrEqual(decimal.Zero) {
		return shared.NewDomainError("INVALID_QUANTITY", "Quantity must be positive")
	}

	i.Quantity = i.Quantity.Add(quantity)
	if batchNumber != "" {
		i.BatchNumber = batchNumber
	}
	if lotNumber != "" {
		i.LotNumber = lotNumber
	}
	if harvestDate != nil {
		i.HarvestDate = harvestDate
	}
	if expiryDate != nil {
		i.ExpiryDate = expiryDate
	}
	i.UpdatedAt = time.Now()
	i.IncrementVersion()

	i.AddDomainEvent(NewStockReceivedEvent(i, quantity))

	return nil
}

// Reserve holds stock for a pending order. Fails when available < quantity.
func (i *InventoryItem) Reserve(quantity decimal.Decimal) error {
	if quantity.LessThanOrEqual(decimal.Zero) {
		return shared.NewDomainError("INVALID_QUANTITY", "Quantity must be positive")
	}
	if i.Quality != QualityStatusGood {
		return shared.NewDomainError("BAD_QUALITY", "Stock under quality hold cannot be reserved")
	}
	if i.Available().LessThan(quantity) {
		return shared.ErrInsufficientStock
	}

	i.Reserved = i.Reserved.Add(quantity)
	i.UpdatedAt = time.Now()
	i.IncrementVersion()

	return nil
}

// Release returns reserved stock to the available pool
func (i *InventoryItem) Release(quantity decimal.Decimal) error {
	if quantity.LessThanOrEqual(decimal.Zero) {
		return shared.NewDomainError("INVALID_QUANTITY", "Quantity must be positive")
	}
	if quantity.GreaterThan(i.Reserved) {
		return shared.NewDomainError("INVALID_QUANTITY", "Cannot release more than is reserved")
	}

	i.Reserved = i.Reserved.Sub(quantity)
	i.UpdatedAt = time.Now()
	i.IncrementVersion()

	return nil
}

// Deduct removes previously reserved stock, e.g. at shipment
func (i *InventoryItem) Deduct(quantity decimal.Decimal) error {
	if quantity.LessThanOrEqual(decimal.Zero) {
		return shared.NewDomainError("INVALID_QUANTITY", "Quantity must be positive")
	}
	if quantity.GreaterThan(i.Reserved) {
		return shared.NewDomainError("INVALID_QUANTITY", "Cannot deduct more than is reserved")
	}

	i.Reserved = i.Reserved.Sub(quantity)
	i.Quantity = i.Quantity.Sub(quantity)
	i.UpdatedAt = time.Now()
	i.IncrementVersion()

	i.AddDomainEvent(NewStockDeductedEvent(i, quantity))

	if i.IsBelowMinimum() {
		i.AddDomainEvent(NewLowStockEvent(i))
	}

	return nil
}

// AdjustTo corrects the on-hand quantity after a stock count.
// The new quantity must still cover existing reservations.
func (i *InventoryItem) AdjustTo(actual decimal.Decimal, reason string) (decimal.Decimal, error) {
	if actual.IsNegative() {
		return decimal.Zero, shared.NewDomainError("INVALID_QUANTITY", "Actual quantity cannot be negative")
	}
	if reason == "" {
		return decimal.Zero, shared.NewDomainError("INVALID_REASON", "Adjustment reason is required")
	}
	if actual.LessThan(i.Reserved) {
		return decimal.Zero, shared.NewDomainError("INVALID_QUANTITY", "Adjusted quantity cannot undercut reservations")
	}

	delta := actual.Sub(i.Quantity)
	i.Quantity = actual
	i.UpdatedAt = time.Now()
	i.IncrementVersion()

	if i.IsBelowMinimum() {
		i.AddDomainEvent(NewLowStockEvent(i))
	}

	return delta, nil
}

// SetQuality changes the inspection state of the stock
func (i *InventoryItem) SetQuality(status QualityStatus) {
	i.Quality = status
	i.UpdatedAt = time.Now()
	i.IncrementVersion()
}

// SetMinQuantity sets the low-stock alert threshold
func (i *InventoryItem) SetMinQuantity(quantity decimal.Decimal) error {
	if quantity.IsNegative() {
		return shared.NewDomainError("INVALID_QUANTITY", "Minimum quantity cannot be negative")
	}
	i.MinQuantity = quantity
	i.UpdatedAt = time.Now()
	i.IncrementVersion()
	return nil
}

// IsBelowMinimum reports whether stock has fallen under the alert threshold
func (i *InventoryItem) IsBelowMinimum() bool {
	return i.MinQuantity.IsPositive() && i.Quantity.LessThan(i.MinQuantity)
}

// IsExpiredAt reports whether the stock is past its expiry date at t
func (i *InventoryItem) IsExpiredAt(t time.Time) bool {
	return i.ExpiryDate != nil && t.After(*i.ExpiryDate)
}
