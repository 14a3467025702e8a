package persistence

import (
	"context"
	"errors"
	"time"

	"github.com/agriconnect/backend/internal/domain/shared"
	"github.com/agriconnect/backend/internal/domain/warehouse"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormInventoryRepository implements warehouse.InventoryRepository using GORM
type GormInventoryRepository struct {
	db *gorm.DB
}

// NewGormInventoryRepository creates a new GORM inventory repository
func NewGormInventoryRepository(db *gorm.DB) *GormInventoryRepository {
	return &GormInventoryRepository{db: db}
}

// FindByID finds an inventory item by ID
func (r *GormInventoryRepository) FindByID(ctx context.Context, id uuid.UUID) (*warehouse.InventoryItem, error) {
	var item warehouse.InventoryItem
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&item).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &item, nil
}

// FindByLocation finds the item for a product in a specific zone
func (r *GormInventoryRepository) FindByLocation(ctx context.Context, warehouseID, zoneID, productID uuid.UUID) (*warehouse.InventoryItem, error) {
	var item warehouse.InventoryItem
	err := r.db.WithContext(ctx).
		Where("warehouse_id = ? AND zone_id = ? AND product_id = ?", warehouseID, zoneID, productID).
		First(&item).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &item, nil
}

// FindByProduct finds all stock records for a product across warehouses
func (r *GormInventoryRepository) FindByProduct(ctx context.Context, productID uuid.UUID) ([]warehouse.InventoryItem, error) {
	var items []warehouse.InventoryItem
	err := r.db.WithContext(ctx).
		Where("product_id = ?", productID).
		Find(&items).Error
	if err != nil {
		return nil, err
	}
	return items, nil
}

// FindByWarehouse finds all stock records in a warehouse
func (r *GormInventoryRepository) FindByWarehouse(ctx context.Context, warehouseID uuid.UUID, filter shared.Filter) ([]warehouse.InventoryItem, error) {
	var items []warehouse.InventoryItem
	query := r.db.WithContext(ctx).Model(&warehouse.InventoryItem{}).
		Where("warehouse_id = ?", warehouseID)

	for key, value := range filter.Filters {
		switch key {
		case "zone_id":
			query = query.Where("zone_id = ?", value)
		case "quality":
			query = query.Where("quality = ?", value)
		case "batch_number":
			query = query.Where("batch_number = ?", value)
		}
	}

	if filter.Page > 0 && filter.PageSize > 0 {
		offset := (filter.Page - 1) * filter.PageSize
		query = query.Offset(offset).Limit(filter.PageSize)
	}
	query = query.Order("created_at DESC")

	if err := query.Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

// FindExpiring finds good-quality stock expiring before the cutoff
func (r *GormInventoryRepository) FindExpiring(ctx context.Context, cutoff time.Time) ([]warehouse.InventoryItem, error) {
	var items []warehouse.InventoryItem
	err := r.db.WithContext(ctx).
		Where("quality = ? AND expiry_date IS NOT NULL AND expiry_date < ? AND quantity > 0",
			warehouse.QualityStatusGood, cutoff).
		Order("expiry_date ASC").
		Find(&items).Error
	if err != nil {
		return nil, err
	}
	return items, nil
}

// FindBelowMinimum finds stock under its low-stock threshold
func (r *GormInventoryRepository) FindBelowMinimum(ctx context.Context) ([]warehouse.InventoryItem, error) {
	var items []warehouse.InventoryItem
	err := r.db.WithContext(ctx).
		Where("min_quantity > 0 AND quantity - reserved < min_quantity").
		Find(&items).Error
	if err != nil {
		return nil, err
	}
	return items, nil
}

// Save creates or updates an inventory item
func (r *GormInventoryRepository) Save(ctx context.Context, item *warehouse.InventoryItem) error {
	return r.db.WithContext(ctx).Save(item).Error
}

// Delete deletes an inventory item by ID
func (r *GormInventoryRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Where("id = ?", id).Delete(&warehouse.InventoryItem{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// Ensure GormInventoryRepository implements warehouse.InventoryRepository
var _ warehouse.InventoryRepository = (*GormInventoryRepository)(nil)

// GormMovementRepository implements warehouse.MovementRepository using GORM
type GormMovementRepository struct {
	db *gorm.DB
}

// NewGormMovementRepository creates a new GORM stock movement repository
func NewGormMovementRepository(db *gorm.DB) *GormMovementRepository {
	return &GormMovementRepository{db: db}
}

// FindByID finds a movement by ID
func (r *GormMovementRepository) FindByID(ctx context.Context, id uuid.UUID) (*warehouse.StockMovement, error) {
	var movement warehouse.StockMovement
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&movement).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &movement, nil
}

// FindByProduct finds movements for a product
func (r *GormMovementRepository) FindByProduct(ctx context.Context, productID uuid.UUID, filter shared.Filter) ([]warehouse.StockMovement, error) {
	return r.findPaged(ctx, r.db.WithContext(ctx).Model(&warehouse.StockMovement{}).
		Where("product_id = ?", productID), filter)
}

// FindByWarehouse finds movements in a warehouse
func (r *GormMovementRepository) FindByWarehouse(ctx context.Context, warehouseID uuid.UUID, filter shared.Filter) ([]warehouse.StockMovement, error) {
	return r.findPaged(ctx, r.db.WithContext(ctx).Model(&warehouse.StockMovement{}).
		Where("warehouse_id = ?", warehouseID), filter)
}

// FindByOrder finds movements linked to an order
func (r *GormMovementRepository) FindByOrder(ctx context.Context, orderID uuid.UUID) ([]warehouse.StockMovement, error) {
	var movements []warehouse.StockMovement
	err := r.db.WithContext(ctx).
		Where("order_id = ?", orderID).
		Order("created_at ASC").
		Find(&movements).Error
	if err != nil {
		return nil, err
	}
	return movements, nil
}

// Save persists a movement record
func (r *GormMovementRepository) Save(ctx context.Context, movement *warehouse.StockMovement) error {
	return r.db.WithContext(ctx).Save(movement).Error
}

func (r *GormMovementRepository) findPaged(ctx context.Context, query *gorm.DB, filter shared.Filter) ([]warehouse.StockMovement, error) {
	for key, value := range filter.Filters {
		switch key {
		case "type":
			query = query.Where("type = ?", value)
		case "from":
			query = query.Where("created_at >= ?", value)
		case "to":
			query = query.Where("created_at <= ?", value)
		}
	}

	if filter.Page > 0 && filter.PageSize > 0 {
		offset := (filter.Page - 1) * filter.PageSize
		query = query.Offset(offset).Limit(filter.PageSize)
	}
	query = query.Order("created_at DESC")

	var movements []warehouse.StockMovement
	if err := query.Find(&movements).Error; err != nil {
		return nil, err
	}
	return movements, nil
}

// Ensure GormMovementRepository implements warehouse.MovementRepository
var _ warehouse.MovementRepository = (*GormMovementRepository)(nil)

// GormTemperatureLogRepository implements warehouse.TemperatureLogRepository using GORM
type GormTemperatureLogRepository struct {
	db *gorm.DB
}

// NewGormTemperatureLogRepository creates a new GORM temperature log repository
func NewGormTemperatureLogRepository(db *gorm.DB) *GormTemperatureLogRepository {
	return &GormTemperatureLogRepository{db: db}
}

// FindByZone finds readings for a zone within a time window
func (r *GormTemperatureLogRepository) FindByZone(ctx context.Context, zoneID uuid.UUID, from, to time.Time) ([]warehouse.TemperatureLog, error) {
	var logs []warehouse.TemperatureLog
	err := r.db.WithContext(ctx).
		Where("zone_id = ? AND recorded_at >= ? AND recorded_at <= ?", zoneID, from, to).
		Order("recorded_at ASC").
		Find(&logs).Error
	if err != nil {
		return nil, err
	}
	return logs, nil
}

// FindOutOfRange finds out-of-band readings since the cutoff
func (r *GormTemperatureLogRepository) FindOutOfRange(ctx context.Context, since time.Time) ([]warehouse.TemperatureLog, error) {
	var logs []warehouse.TemperatureLog
	err := r.db.WithContext(ctx).
		Where("in_range = ? AND recorded_at >= ?", false, since).
		Order("recorded_at DESC").
		Find(&logs).Error
	if err != nil {
		return nil, err
	}
	return logs, nil
}

// Save persists a reading
func (r *GormTemperatureLogRepository) Save(ctx context.Context, log *warehouse.TemperatureLog) error {
	return r.db.WithContext(ctx).Save(log).Error
}

// Ensure GormTemperatureLogRepository implements warehouse.TemperatureLogRepository
var _ warehouse.TemperatureLogRepository = (*GormTemperatureLogRepository)(nil)
