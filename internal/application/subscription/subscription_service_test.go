package subscription

import (
	"context"
	"testing"
	"time"

	"github.com/agriconnect/backend/internal/domain/shared"
	"github.com/agriconnect/backend/internal/domain/shared/valueobject"
	"github.com/agriconnect/backend/internal/domain/subscription"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// MockSubscriptionRepository is a mock implementation of subscription.SubscriptionRepository
type MockSubscriptionRepository struct {
	mock.Mock
}

func (m *MockSubscriptionRepository) FindByID(ctx context.Context, id uuid.UUID) (*subscription.UserSubscription, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*subscription.UserSubscription), args.Error(1)
}

func (m *MockSubscriptionRepository) FindActiveByUser(ctx context.Context, userID uuid.UUID) (*subscription.UserSubscription, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*subscription.UserSubscription), args.Error(1)
}

func (m *MockSubscriptionRepository) FindByUser(ctx context.Context, userID uuid.UUID, filter shared.Filter) ([]subscription.UserSubscription, error) {
	args := m.Called(ctx, userID, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]subscription.UserSubscription), args.Error(1)
}

func (m *MockSubscriptionRepository) FindLapsed(ctx context.Context, now time.Time, limit int) ([]subscription.UserSubscription, error) {
	args := m.Called(ctx, now, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]subscription.UserSubscription), args.Error(1)
}

func (m *MockSubscriptionRepository) FindDueForRenewal(ctx context.Context, before time.Time, limit int) ([]subscription.UserSubscription, error) {
	args := m.Called(ctx, before, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]subscription.UserSubscription), args.Error(1)
}

func (m *MockSubscriptionRepository) Save(ctx context.Context, sub *subscription.UserSubscription) error {
	args := m.Called(ctx, sub)
	return args.Error(0)
}

// MockPlanRepository is a mock implementation of subscription.PlanRepository
type MockPlanRepository struct {
	mock.Mock
}

func (m *MockPlanRepository) FindByID(ctx context.Context, id uuid.UUID) (*subscription.SubscriptionPlan, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*subscription.SubscriptionPlan), args.Error(1)
}

func (m *MockPlanRepository) FindActive(ctx context.Context, audience subscription.PlanAudience) ([]subscription.SubscriptionPlan, error) {
	args := m.Called(ctx, audience)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]subscription.SubscriptionPlan), args.Error(1)
}

func (m *MockPlanRepository) FindAll(ctx context.Context, filter shared.Filter) ([]subscription.SubscriptionPlan, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]subscription.SubscriptionPlan), args.Error(1)
}

func (m *MockPlanRepository) Save(ctx context.Context, plan *subscription.SubscriptionPlan) error {
	args := m.Called(ctx, plan)
	return args.Error(0)
}

func (m *MockPlanRepository) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// MockInvoiceRepository is a mock implementation of subscription.InvoiceRepository
type MockInvoiceRepository struct {
	mock.Mock
}

func (m *MockInvoiceRepository) FindByID(ctx context.Context, id uuid.UUID) (*subscription.SubscriptionInvoice, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*subscription.SubscriptionInvoice), args.Error(1)
}

func (m *MockInvoiceRepository) FindByNumber(ctx context.Context, number string) (*subscription.SubscriptionInvoice, error) {
	args := m.Called(ctx, number)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*subscription.SubscriptionInvoice), args.Error(1)
}

func (m *MockInvoiceRepository) FindBySubscription(ctx context.Context, subscriptionID uuid.UUID) ([]subscription.SubscriptionInvoice, error) {
	args := m.Called(ctx, subscriptionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]subscription.SubscriptionInvoice), args.Error(1)
}

func (m *MockInvoiceRepository) FindOverdue(ctx context.Context, now time.Time, limit int) ([]subscription.SubscriptionInvoice, error) {
	args := m.Called(ctx, now, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]subscription.SubscriptionInvoice), args.Error(1)
}

func (m *MockInvoiceRepository) NextSequence(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockInvoiceRepository) Save(ctx context.Context, invoice *subscription.SubscriptionInvoice) error {
	args := m.Called(ctx, invoice)
	return args.Error(0)
}

func newPaidPlan(t *testing.T) *subscription.SubscriptionPlan {
	t.Helper()

	plan, err := subscription.NewSubscriptionPlan(
		"Farmer Premium",
		subscription.TierPremium,
		subscription.AudienceFarmer,
		valueobject.NewMoneyGHSFromFloat(50),
		subscription.PeriodMonthly,
		subscription.PlanLimits{ProductListings: 20, SMSCredits: 100},
	)
	require.NoError(t, err)
	return plan
}

func newFreePlan(t *testing.T) *subscription.SubscriptionPlan {
	t.Helper()

	plan, err := subscription.NewSubscriptionPlan(
		"Farmer Starter",
		subscription.TierFree,
		subscription.AudienceFarmer,
		valueobject.NewMoneyGHSFromFloat(0),
		subscription.PeriodMonthly,
		subscription.PlanLimits{ProductListings: 3, SMSCredits: 10},
	)
	require.NoError(t, err)
	return plan
}

func newActiveSubscription(t *testing.T, userID uuid.UUID, plan *subscription.SubscriptionPlan) *subscription.UserSubscription {
	t.Helper()

	sub, err := subscription.NewUserSubscription(userID, plan, time.Now())
	require.NoError(t, err)
	sub.ClearDomainEvents()
	return sub
}

func TestSubscriptionService_Subscribe_PaidPlanIssuesInvoice(t *testing.T) {
	subRepo := new(MockSubscriptionRepository)
	planRepo := new(MockPlanRepository)
	invoiceRepo := new(MockInvoiceRepository)
	service := NewSubscriptionService(subRepo, planRepo, invoiceRepo, zap.NewNop())

	userID := uuid.New()
	plan := newPaidPlan(t)

	subRepo.On("FindActiveByUser", mock.Anything, userID).Return(nil, shared.ErrNotFound)
	planRepo.On("FindByID", mock.Anything, plan.ID).Return(plan, nil)
	subRepo.On("Save", mock.Anything, mock.AnythingOfType("*subscription.UserSubscription")).Return(nil)
	invoiceRepo.On("NextSequence", mock.Anything).Return(int64(7), nil)
	invoiceRepo.On("Save", mock.Anything, mock.MatchedBy(func(inv *subscription.SubscriptionInvoice) bool {
		return inv.Status == subscription.InvoiceStatusPending &&
			inv.UserID == userID &&
			inv.Amount.Equal(decimal.NewFromInt(50))
	})).Return(nil)

	resp, err := service.Subscribe(context.Background(), userID, SubscribeRequest{PlanID: plan.ID})

	require.NoError(t, err)
	assert.Equal(t, "active", resp.Status)
	assert.Equal(t, 20, resp.RemainingListings)
	invoiceRepo.AssertExpectations(t)
}

func TestSubscriptionService_Subscribe_FreePlanOwesNothing(t *testing.T) {
	subRepo := new(MockSubscriptionRepository)
	planRepo := new(MockPlanRepository)
	invoiceRepo := new(MockInvoiceRepository)
	service := NewSubscriptionService(subRepo, planRepo, invoiceRepo, zap.NewNop())

	userID := uuid.New()
	plan := newFreePlan(t)

	subRepo.On("FindActiveByUser", mock.Anything, userID).Return(nil, shared.ErrNotFound)
	planRepo.On("FindByID", mock.Anything, plan.ID).Return(plan, nil)
	subRepo.On("Save", mock.Anything, mock.AnythingOfType("*subscription.UserSubscription")).Return(nil)

	_, err := service.Subscribe(context.Background(), userID, SubscribeRequest{PlanID: plan.ID})

	require.NoError(t, err)
	invoiceRepo.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
}

func TestSubscriptionService_Subscribe_RejectsSecondActive(t *testing.T) {
	subRepo := new(MockSubscriptionRepository)
	planRepo := new(MockPlanRepository)
	service := NewSubscriptionService(subRepo, planRepo, new(MockInvoiceRepository), zap.NewNop())

	userID := uuid.New()
	existing := newActiveSubscription(t, userID, newFreePlan(t))

	subRepo.On("FindActiveByUser", mock.Anything, userID).Return(existing, nil)

	_, err := service.Subscribe(context.Background(), userID, SubscribeRequest{PlanID: uuid.New()})

	var domainErr *shared.DomainError
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, "ALREADY_SUBSCRIBED", domainErr.Code)
	subRepo.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
}

func TestSubscriptionService_Cancel_KeepsAccessUntilPeriodEnd(t *testing.T) {
	subRepo := new(MockSubscriptionRepository)
	service := NewSubscriptionService(subRepo, new(MockPlanRepository), new(MockInvoiceRepository), zap.NewNop())

	userID := uuid.New()
	sub := newActiveSubscription(t, userID, newPaidPlan(t))

	subRepo.On("FindActiveByUser", mock.Anything, userID).Return(sub, nil)
	subRepo.On("Save", mock.Anything, sub).Return(nil)

	resp, err := service.Cancel(context.Background(), userID, CancelSubscriptionRequest{Reason: "Season over"})

	require.NoError(t, err)
	assert.Equal(t, "cancelled", resp.Status)
	assert.False(t, resp.AutoRenew)
	assert.NotNil(t, resp.CancelledAt)
}

func TestSubscriptionService_RenewDue_PaidPlanGoesPastDue(t *testing.T) {
	subRepo := new(MockSubscriptionRepository)
	invoiceRepo := new(MockInvoiceRepository)
	service := NewSubscriptionService(subRepo, new(MockPlanRepository), invoiceRepo, zap.NewNop())

	sub := newActiveSubscription(t, uuid.New(), newPaidPlan(t))

	subRepo.On("FindDueForRenewal", mock.Anything, mock.AnythingOfType("time.Time"), 50).
		Return([]subscription.UserSubscription{*sub}, nil)
	invoiceRepo.On("NextSequence", mock.Anything).Return(int64(8), nil)
	invoiceRepo.On("Save", mock.Anything, mock.AnythingOfType("*subscription.SubscriptionInvoice")).Return(nil)
	subRepo.On("Save", mock.Anything, mock.MatchedBy(func(s *subscription.UserSubscription) bool {
		return s.Status == subscription.SubscriptionStatusPastDue
	})).Return(nil)

	processed, err := service.RenewDue(context.Background(), 50)

	require.NoError(t, err)
	assert.Equal(t, 1, processed)
	invoiceRepo.AssertExpectations(t)
}

func TestSubscriptionService_RenewDue_FreePlanRollsOver(t *testing.T) {
	subRepo := new(MockSubscriptionRepository)
	invoiceRepo := new(MockInvoiceRepository)
	service := NewSubscriptionService(subRepo, new(MockPlanRepository), invoiceRepo, zap.NewNop())

	sub := newActiveSubscription(t, uuid.New(), newFreePlan(t))
	require.NoError(t, sub.Consume(subscription.UsageProductListings, 2))
	previousEnd := sub.PeriodEnd

	subRepo.On("FindDueForRenewal", mock.Anything, mock.AnythingOfType("time.Time"), 50).
		Return([]subscription.UserSubscription{*sub}, nil)
	subRepo.On("Save", mock.Anything, mock.MatchedBy(func(s *subscription.UserSubscription) bool {
		return s.Status == subscription.SubscriptionStatusActive &&
			s.PeriodEnd.After(previousEnd) &&
			s.ListingsUsed == 0
	})).Return(nil)

	processed, err := service.RenewDue(context.Background(), 50)

	require.NoError(t, err)
	assert.Equal(t, 1, processed)
	invoiceRepo.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
}

func TestSubscriptionService_MarkInvoicePaid_RenewsPastDue(t *testing.T) {
	subRepo := new(MockSubscriptionRepository)
	invoiceRepo := new(MockInvoiceRepository)
	service := NewSubscriptionService(subRepo, new(MockPlanRepository), invoiceRepo, zap.NewNop())

	sub := newActiveSubscription(t, uuid.New(), newPaidPlan(t))
	invoice, err := subscription.NewSubscriptionInvoice("INV-202608-000009", sub, sub.Plan.PriceMoney(), time.Now().AddDate(0, 0, 7))
	require.NoError(t, err)
	require.NoError(t, sub.MarkPastDue())

	txID := uuid.New()

	invoiceRepo.On("FindByID", mock.Anything, invoice.ID).Return(invoice, nil)
	invoiceRepo.On("Save", mock.Anything, invoice).Return(nil)
	subRepo.On("FindByID", mock.Anything, sub.ID).Return(sub, nil)
	subRepo.On("Save", mock.Anything, mock.MatchedBy(func(s *subscription.UserSubscription) bool {
		return s.Status == subscription.SubscriptionStatusActive
	})).Return(nil)

	resp, err := service.MarkInvoicePaid(context.Background(), invoice.ID, txID)

	require.NoError(t, err)
	assert.Equal(t, "paid", resp.Status)
	assert.NotNil(t, resp.PaidAt)
	subRepo.AssertExpectations(t)
}

func TestSubscriptionService_ExpireLapsed(t *testing.T) {
	subRepo := new(MockSubscriptionRepository)
	service := NewSubscriptionService(subRepo, new(MockPlanRepository), new(MockInvoiceRepository), zap.NewNop())

	sub := newActiveSubscription(t, uuid.New(), newFreePlan(t))
	sub.PeriodEnd = time.Now().AddDate(0, 0, -1)

	subRepo.On("FindLapsed", mock.Anything, mock.AnythingOfType("time.Time"), 100).
		Return([]subscription.UserSubscription{*sub}, nil)
	subRepo.On("Save", mock.Anything, mock.MatchedBy(func(s *subscription.UserSubscription) bool {
		return s.Status == subscription.SubscriptionStatusExpired
	})).Return(nil)

	expired, err := service.ExpireLapsed(context.Background(), 100)

	require.NoError(t, err)
	assert.Equal(t, 1, expired)
}

func TestUsageService_ConsumeListing_EnforcesPlanLimit(t *testing.T) {
	subRepo := new(MockSubscriptionRepository)
	service := NewUsageService(subRepo, zap.NewNop())

	sellerID := uuid.New()
	sub := newActiveSubscription(t, sellerID, newFreePlan(t))
	require.NoError(t, sub.Consume(subscription.UsageProductListings, 3))

	subRepo.On("FindActiveByUser", mock.Anything, sellerID).Return(sub, nil)

	err := service.ConsumeListing(context.Background(), sellerID)

	assert.ErrorIs(t, err, shared.ErrQuotaExceeded)
	subRepo.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
}

func TestUsageService_ConsumeListing_ChargesActivePlan(t *testing.T) {
	subRepo := new(MockSubscriptionRepository)
	service := NewUsageService(subRepo, zap.NewNop())

	sellerID := uuid.New()
	sub := newActiveSubscription(t, sellerID, newFreePlan(t))

	subRepo.On("FindActiveByUser", mock.Anything, sellerID).Return(sub, nil)
	subRepo.On("Save", mock.Anything, sub).Return(nil)

	err := service.ConsumeListing(context.Background(), sellerID)

	require.NoError(t, err)
	assert.Equal(t, 1, sub.ListingsUsed)
}

func TestUsageService_ConsumeListing_NoSubscription(t *testing.T) {
	subRepo := new(MockSubscriptionRepository)
	service := NewUsageService(subRepo, zap.NewNop())

	sellerID := uuid.New()
	subRepo.On("FindActiveByUser", mock.Anything, sellerID).Return(nil, shared.ErrNotFound)

	err := service.ConsumeListing(context.Background(), sellerID)

	assert.ErrorIs(t, err, shared.ErrQuotaExceeded)
}

func TestUsageService_ReleaseListing_NoSubscriptionIsNoop(t *testing.T) {
	subRepo := new(MockSubscriptionRepository)
	service := NewUsageService(subRepo, zap.NewNop())

	sellerID := uuid.New()
	subRepo.On("FindActiveByUser", mock.Anything, sellerID).Return(nil, shared.ErrNotFound)

	err := service.ReleaseListing(context.Background(), sellerID)

	require.NoError(t, err)
	subRepo.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
}
