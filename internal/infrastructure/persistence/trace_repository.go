package persistence

import (
	"context"
	"errors"

	"github.com/agriconnect/backend/internal/domain/shared"
	"github.com/agriconnect/backend/internal/domain/traceability"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormTraceRepository implements traceability.TraceRepository using GORM
type GormTraceRepository struct {
	db *gorm.DB
}

// NewGormTraceRepository creates a new GORM product trace repository
func NewGormTraceRepository(db *gorm.DB) *GormTraceRepository {
	return &GormTraceRepository{db: db}
}

// FindByID finds a trace by ID with its event chain in order.
// Event order matters: verification recomputes the hash chain.
func (r *GormTraceRepository) FindByID(ctx context.Context, id uuid.UUID) (*traceability.ProductTrace, error) {
	var trace traceability.ProductTrace
	err := r.db.WithContext(ctx).
		Preload("Events", func(db *gorm.DB) *gorm.DB {
			return db.Order("sequence ASC")
		}).
		Where("id = ?", id).First(&trace).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &trace, nil
}

// FindByBatchNumber finds a trace by its public batch number
func (r *GormTraceRepository) FindByBatchNumber(ctx context.Context, batchNumber string) (*traceability.ProductTrace, error) {
	var trace traceability.ProductTrace
	err := r.db.WithContext(ctx).
		Preload("Events", func(db *gorm.DB) *gorm.DB {
			return db.Order("sequence ASC")
		}).
		Where("batch_number = ?", batchNumber).First(&trace).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &trace, nil
}

// FindByProduct finds all traces opened for a product
func (r *GormTraceRepository) FindByProduct(ctx context.Context, productID uuid.UUID) ([]traceability.ProductTrace, error) {
	var traces []traceability.ProductTrace
	err := r.db.WithContext(ctx).
		Preload("Events", func(db *gorm.DB) *gorm.DB {
			return db.Order("sequence ASC")
		}).
		Where("product_id = ?", productID).
		Order("created_at DESC").
		Find(&traces).Error
	if err != nil {
		return nil, err
	}
	return traces, nil
}

// Save creates or updates a trace with its event chain
func (r *GormTraceRepository) Save(ctx context.Context, trace *traceability.ProductTrace) error {
	return r.db.WithContext(ctx).
		Session(&gorm.Session{FullSaveAssociations: true}).
		Save(trace).Error
}

// SaveScan persists a consumer scan record
func (r *GormTraceRepository) SaveScan(ctx context.Context, scan *traceability.ConsumerScan) error {
	return r.db.WithContext(ctx).Save(scan).Error
}

// Ensure GormTraceRepository implements traceability.TraceRepository
var _ traceability.TraceRepository = (*GormTraceRepository)(nil)
