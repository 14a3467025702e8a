package persistence

import (
	"context"
	"errors"
	"time"

	"github.com/agriconnect/backend/internal/domain/shared"
	"github.com/agriconnect/backend/internal/domain/subscription"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormInvoiceRepository implements subscription.InvoiceRepository using GORM
type GormInvoiceRepository struct {
	db *gorm.DB
}

// NewGormInvoiceRepository creates a new GORM subscription invoice repository
func NewGormInvoiceRepository(db *gorm.DB) *GormInvoiceRepository {
	return &GormInvoiceRepository{db: db}
}

// FindByID finds an invoice by ID
func (r *GormInvoiceRepository) FindByID(ctx context.Context, id uuid.UUID) (*subscription.SubscriptionInvoice, error) {
	var invoice subscription.SubscriptionInvoice
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&invoice).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &invoice, nil
}

// FindByNumber finds an invoice by its public number
func (r *GormInvoiceRepository) FindByNumber(ctx context.Context, number string) (*subscription.SubscriptionInvoice, error) {
	var invoice subscription.SubscriptionInvoice
	err := r.db.WithContext(ctx).Where("invoice_number = ?", number).First(&invoice).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &invoice, nil
}

// FindBySubscription finds all invoices for a subscription
func (r *GormInvoiceRepository) FindBySubscription(ctx context.Context, subscriptionID uuid.UUID) ([]subscription.SubscriptionInvoice, error) {
	var invoices []subscription.SubscriptionInvoice
	err := r.db.WithContext(ctx).
		Where("subscription_id = ?", subscriptionID).
		Order("created_at DESC").
		Find(&invoices).Error
	if err != nil {
		return nil, err
	}
	return invoices, nil
}

// FindOverdue finds pending invoices past their due date
func (r *GormInvoiceRepository) FindOverdue(ctx context.Context, now time.Time, limit int) ([]subscription.SubscriptionInvoice, error) {
	var invoices []subscription.SubscriptionInvoice
	err := r.db.WithContext(ctx).
		Where("status = ? AND due_at < ?", subscription.InvoiceStatusPending, now).
		Order("due_at ASC").
		Limit(limit).
		Find(&invoices).Error
	if err != nil {
		return nil, err
	}
	return invoices, nil
}

// NextSequence returns the next value of the invoice number sequence.
// The sequence lives in the database so numbers stay unique across nodes.
func (r *GormInvoiceRepository) NextSequence(ctx context.Context) (int64, error) {
	var seq int64
	err := r.db.WithContext(ctx).
		Raw("SELECT nextval('invoice_number_seq')").
		Scan(&seq).Error
	if err != nil {
		return 0, err
	}
	return seq, nil
}

// Save creates or updates an invoice
func (r *GormInvoiceRepository) Save(ctx context.Context, invoice *subscription.SubscriptionInvoice) error {
	return r.db.WithContext(ctx).Save(invoice).Error
}

// Ensure GormInvoiceRepository implements subscription.InvoiceRepository
var _ subscription.InvoiceRepository = (*GormInvoiceRepository)(nil)
