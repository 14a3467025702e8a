package persistence

import (
	"context"
	"errors"

	"github.com/agriconnect/backend/internal/domain/payment"
	"github.com/agriconnect/backend/internal/domain/shared"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormTransactionRepository implements payment.TransactionRepository using GORM
type GormTransactionRepository struct {
	db *gorm.DB
}

// NewGormTransactionRepository creates a new GORM transaction repository
func NewGormTransactionRepository(db *gorm.DB) *GormTransactionRepository {
	return &GormTransactionRepository{db: db}
}

// FindByID finds a transaction by ID
func (r *GormTransactionRepository) FindByID(ctx context.Context, id uuid.UUID) (*payment.Transaction, error) {
	var tx payment.Transaction
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&tx).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &tx, nil
}

// FindByReference finds a transaction by its internal reference
func (r *GormTransactionRepository) FindByReference(ctx context.Context, reference string) (*payment.Transaction, error) {
	var tx payment.Transaction
	err := r.db.WithContext(ctx).Where("reference = ?", reference).First(&tx).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &tx, nil
}

// FindByGatewayReference finds a transaction by the gateway-assigned reference
func (r *GormTransactionRepository) FindByGatewayReference(ctx context.Context, gatewayReference string) (*payment.Transaction, error) {
	var tx payment.Transaction
	err := r.db.WithContext(ctx).
		Where("gateway_reference = ?", gatewayReference).First(&tx).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &tx, nil
}

// FindByOrder finds all transactions for an order
func (r *GormTransactionRepository) FindByOrder(ctx context.Context, orderID uuid.UUID) ([]payment.Transaction, error) {
	var txs []payment.Transaction
	err := r.db.WithContext(ctx).
		Where("order_id = ?", orderID).
		Order("created_at DESC").
		Find(&txs).Error
	if err != nil {
		return nil, err
	}
	return txs, nil
}

// FindByUser finds transactions initiated by a user
func (r *GormTransactionRepository) FindByUser(ctx context.Context, userID uuid.UUID, filter shared.Filter) ([]payment.Transaction, error) {
	var txs []payment.Transaction
	query := r.applyFilter(
		r.db.WithContext(ctx).Model(&payment.Transaction{}).Where("user_id = ?", userID),
		filter,
	)

	if err := query.Find(&txs).Error; err != nil {
		return nil, err
	}
	return txs, nil
}

// FindByStatus finds transactions in a status
func (r *GormTransactionRepository) FindByStatus(ctx context.Context, status payment.TransactionStatus, filter shared.Filter) ([]payment.Transaction, error) {
	var txs []payment.Transaction
	query := r.applyFilter(
		r.db.WithContext(ctx).Model(&payment.Transaction{}).Where("status = ?", status),
		filter,
	)

	if err := query.Find(&txs).Error; err != nil {
		return nil, err
	}
	return txs, nil
}

// Save creates or updates a transaction
func (r *GormTransactionRepository) Save(ctx context.Context, tx *payment.Transaction) error {
	return r.db.WithContext(ctx).Save(tx).Error
}

// Count counts transactions matching the filter
func (r *GormTransactionRepository) Count(ctx context.Context, filter shared.Filter) (int64, error) {
	var count int64
	query := r.applyFilterWithoutPagination(r.db.WithContext(ctx).Model(&payment.Transaction{}), filter)

	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// applyFilter applies filter options including pagination to the query
func (r *GormTransactionRepository) applyFilter(query *gorm.DB, filter shared.Filter) *gorm.DB {
	query = r.applyFilterWithoutPagination(query, filter)

	if filter.Page > 0 && filter.PageSize > 0 {
		offset := (filter.Page - 1) * filter.PageSize
		query = query.Offset(offset).Limit(filter.PageSize)
	}

	if filter.OrderBy != "" {
		orderBy := ValidateSortField(filter.OrderBy, TransactionSortFields, "created_at")
		query = query.Order(orderBy + " " + ValidateSortOrder(filter.OrderDir))
	} else {
		query = query.Order("created_at DESC")
	}

	return query
}

// applyFilterWithoutPagination applies filter options without pagination
func (r *GormTransactionRepository) applyFilterWithoutPagination(query *gorm.DB, filter shared.Filter) *gorm.DB {
	if filter.Search != "" {
		searchPattern := "%" + filter.Search + "%"
		query = query.Where("reference ILIKE ? OR gateway_reference ILIKE ?", searchPattern, searchPattern)
	}

	for key, value := range filter.Filters {
		switch key {
		case "status":
			query = query.Where("status = ?", value)
		case "gateway_code":
			query = query.Where("gateway_code = ?", value)
		case "type":
			query = query.Where("type = ?", value)
		case "method":
			query = query.Where("method = ?", value)
		case "from":
			query = query.Where("created_at >= ?", value)
		case "to":
			query = query.Where("created_at <= ?", value)
		}
	}

	return query
}

// Ensure GormTransactionRepository implements payment.TransactionRepository
var _ payment.TransactionRepository = (*GormTransactionRepository)(nil)
