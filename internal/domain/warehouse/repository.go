package warehouse

import (
	"context"
	"time"

	"github.com/agriconnect/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// WarehouseRepository defines the interface for warehouse persistence
type WarehouseRepository interface {
	// FindByID finds a warehouse by ID, including its zones
	FindByID(ctx context.Context, id uuid.UUID) (*Warehouse, error)

	// FindByCode finds a warehouse by its code
	FindByCode(ctx context.Context, code string) (*Warehouse, error)

	// FindAll finds all warehouses matching the filter
	FindAll(ctx context.Context, filter shared.Filter) ([]Warehouse, error)

	// FindByCountry finds warehouses in a country
	FindByCountry(ctx context.Context, country string, filter shared.Filter) ([]Warehouse, error)

	// Save creates or updates a warehouse with its zones
	Save(ctx context.Context, wh *Warehouse) error

	// Delete deletes a warehouse
	Delete(ctx context.Context, id uuid.UUID) error

	// Count counts warehouses matching the filter
	Count(ctx context.Context, filter shared.Filter) (int64, error)

	// ExistsByCode checks if a warehouse with the given code exists
	ExistsByCode(ctx context.Context, code string) (bool, error)
}

// InventoryRepository defines the interface for inventory persistence
type InventoryRepository interface {
	// FindByID finds an inventory item by ID
	FindByID(ctx context.Context, id uuid.UUID) (*InventoryItem, error)

	// FindByLocation finds the item for a product in a specific zone
	FindByLocation(ctx context.Context, warehouseID, zoneID, productID uuid.UUID) (*InventoryItem, error)

	// FindByProduct finds all stock records for a product across warehouses
	FindByProduct(ctx context.Context, productID uuid.UUID) ([]InventoryItem, error)

	// FindByWarehouse finds all stock records in a warehouse
	FindByWarehouse(ctx context.Context, warehouseID uuid.UUID, filter shared.Filter) ([]InventoryItem, error)

	// FindExpiring finds good-quality stock expiring before the cutoff
	FindExpiring(ctx context.Context, cutoff time.Time) ([]InventoryItem, error)

	// FindBelowMinimum finds stock under its low-stock threshold
	FindBelowMinimum(ctx context.Context) ([]InventoryItem, error)

	// Save creates or updates an inventory item
	Save(ctx context.Context, item *InventoryItem) error

	// Delete deletes an inventory item
	Delete(ctx context.Context, id uuid.UUID) error
}

// MovementRepository defines the interface for stock movement persistence
type MovementRepository interface {
	// FindByID finds a movement by ID
	FindByID(ctx context.Context, id uuid.UUID) (*StockMovement, error)

	// FindByProduct finds movements for a product
	FindByProduct(ctx context.Context, productID uuid.UUID, filter shared.Filter) ([]StockMovement, error)

	// FindByWarehouse finds movements in a warehouse
	FindByWarehouse(ctx context.Context, warehouseID uuid.UUID, filter shared.Filter) ([]StockMovement, error)

	// FindByOrder finds movements linked to an order
	FindByOrder(ctx context.Context, orderID uuid.UUID) ([]StockMovement, error)

	// Save persists a movement record
	Save(ctx context.Context, movement *StockMovement) error
}

// TemperatureLogRepository defines the interface for temperature log persistence
type TemperatureLogRepository interface {
	// FindByZone finds readings for a zone within a time window
	FindByZone(ctx context.Context, zoneID uuid.UUID, from, to time.Time) ([]TemperatureLog, error)

	// FindOutOfRange finds out-of-band readings since the cutoff
	FindOutOfRange(ctx context.Context, since time.Time) ([]TemperatureLog, error)

	// Save persists a reading
	Save(ctx context.Context, log *TemperatureLog) error
}
