// Package telemetry provides OpenTelemetry integration for metrics collection.
package telemetry

import (
	"context"

	"gorm.io/gorm"
)

// GormStockMetricsProvider implements StockMetricsProvider using GORM.
// It queries the inventory_items table directly for aggregated metrics.
type GormStockMetricsProvider struct {
	db *gorm.DB
}

// NewGormStockMetricsProvider creates a new GormStockMetricsProvider.
func NewGormStockMetricsProvider(db *gorm.DB) *GormStockMetricsProvider {
	return &GormStockMetricsProvider{db: db}
}

// ReservedQuantityByWarehouse returns total reserved quantity per warehouse.
func (p *GormStockMetricsProvider) ReservedQuantityByWarehouse(ctx context.Context) (map[string]float64, error) {
	type result struct {
		WarehouseID string  `gorm:"column:warehouse_id"`
		Reserved    float64 `gorm:"column:reserved"`
	}

	var results []result
	err := p.db.WithContext(ctx).
		Table("inventory_items").
		Select("warehouse_id, COALESCE(SUM(reserved), 0) as reserved").
		Group("warehouse_id").
		Having("SUM(reserved) > 0").
		Find(&results).Error

	if err != nil {
		return nil, err
	}

	m := make(map[string]float64, len(results))
	for _, r := range results {
		m[r.WarehouseID] = r.Reserved
	}

	return m, nil
}

// LowStockCount returns count of stock records below their alert threshold.
func (p *GormStockMetricsProvider) LowStockCount(ctx context.Context) (int64, error) {
	var count int64
	err := p.db.WithContext(ctx).
		Table("inventory_items").
		Where("min_quantity > 0 AND (quantity - reserved) < min_quantity").
		Count(&count).Error

	return count, err
}
