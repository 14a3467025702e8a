package subscription

import (
	"testing"
	"time"

	"github.com/agriconnect/backend/internal/domain/shared"
	"github.com/agriconnect/backend/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newBasicPlan(t *testing.T) *SubscriptionPlan {
	t.Helper()
	plan, err := NewSubscriptionPlan("Farmer Basic", TierBasic, AudienceFarmer,
		valueobject.NewMoneyGHSFromFloat(50), PeriodMonthly,
		PlanLimits{ProductListings: 10, SMSCredits: 100})
	require.NoError(t, err)
	return plan
}

func TestNewSubscriptionPlanValidation(t *testing.T) {
	_, err := NewSubscriptionPlan("Free", TierFree, AudienceFarmer,
		valueobject.NewMoneyGHSFromFloat(5), PeriodMonthly, PlanLimits{})
	assert.Error(t, err, "free plans must cost nothing")

	zero, _ := valueobject.NewMoney(decimal.Zero, valueobject.GHS)
	_, err = NewSubscriptionPlan("Premium", TierPremium, AudienceBuyer, zero, PeriodYearly, PlanLimits{})
	assert.Error(t, err, "paid plans need a positive price")

	_, err = NewSubscriptionPlan("Basic", TierBasic, AudienceFarmer,
		valueobject.NewMoneyGHSFromFloat(50), PeriodMonthly, PlanLimits{ProductListings: -2})
	assert.Error(t, err)

	free, err := NewSubscriptionPlan("Starter", TierFree, AudienceFarmer, zero, PeriodMonthly,
		PlanLimits{ProductListings: 3, SMSCredits: 10})
	require.NoError(t, err)
	assert.True(t, free.Active)
}

func TestSubscriptionPeriod(t *testing.T) {
	plan := newBasicPlan(t)
	start := time.Date(2026, 3, 15, 0, 0, 0, 0, time.UTC)

	sub, err := NewUserSubscription(uuid.New(), plan, start)
	require.NoError(t, err)

	assert.Equal(t, SubscriptionStatusActive, sub.Status)
	assert.Equal(t, start.AddDate(0, 1, 0), sub.PeriodEnd)
	assert.True(t, sub.IsActive(start.AddDate(0, 0, 20)))
	assert.False(t, sub.IsActive(start.AddDate(0, 2, 0)))
}

func TestSubscriptionRejectsInactivePlan(t *testing.T) {
	plan := newBasicPlan(t)
	plan.Deactivate()

	_, err := NewUserSubscription(uuid.New(), plan, time.Now())
	assert.Error(t, err)
}

func TestConsumeUsageEnforcesLimits(t *testing.T) {
	plan := newBasicPlan(t)
	sub, err := NewUserSubscription(uuid.New(), plan, time.Now())
	require.NoError(t, err)

	require.NoError(t, sub.Consume(UsageSMSCredits, 90))
	assert.Equal(t, 10, sub.Remaining(UsageSMSCredits))

	err = sub.Consume(UsageSMSCredits, 11)
	assert.ErrorIs(t, err, shared.ErrQuotaExceeded)

	require.NoError(t, sub.Consume(UsageSMSCredits, 10))
	assert.Equal(t, 0, sub.Remaining(UsageSMSCredits))
}

func TestUnlimitedUsage(t *testing.T) {
	plan, err := NewSubscriptionPlan("Enterprise", TierEnterprise, AudienceInstitution,
		valueobject.NewMoneyGHSFromFloat(1000), PeriodYearly,
		PlanLimits{ProductListings: -1, SMSCredits: -1, WarehouseAccess: true})
	require.NoError(t, err)

	sub, err := NewUserSubscription(uuid.New(), plan, time.Now())
	require.NoError(t, err)

	require.NoError(t, sub.Consume(UsageProductListings, 5000))
	assert.Equal(t, -1, sub.Remaining(UsageProductListings))
}

func TestReleaseUsage(t *testing.T) {
	plan := newBasicPlan(t)
	sub, _ := NewUserSubscription(uuid.New(), plan, time.Now())

	require.NoError(t, sub.Consume(UsageProductListings, 5))
	require.NoError(t, sub.ReleaseUsage(UsageProductListings, 2))
	assert.Equal(t, 7, sub.Remaining(UsageProductListings))

	require.NoError(t, sub.ReleaseUsage(UsageProductListings, 100))
	assert.Equal(t, 0, sub.ListingsUsed)
}

func TestRenewExtendsFromPeriodEnd(t *testing.T) {
	plan := newBasicPlan(t)
	start := time.Date(2026, 1, 10, 0, 0, 0, 0, time.UTC)
	sub, _ := NewUserSubscription(uuid.New(), plan, start)

	require.NoError(t, sub.Consume(UsageSMSCredits, 40))

	oldEnd := sub.PeriodEnd
	require.NoError(t, sub.Renew())

	assert.Equal(t, oldEnd, sub.PeriodStart)
	assert.Equal(t, oldEnd.AddDate(0, 1, 0), sub.PeriodEnd)
	assert.Equal(t, 0, sub.SMSCreditsUsed, "renewal resets usage")
}

func TestCancelAndExpire(t *testing.T) {
	plan := newBasicPlan(t)
	sub, _ := NewUserSubscription(uuid.New(), plan, time.Now())

	require.NoError(t, sub.Cancel("too expensive"))
	assert.Equal(t, SubscriptionStatusCancelled, sub.Status)
	assert.False(t, sub.AutoRenew)
	assert.Error(t, sub.Renew())
	assert.Error(t, sub.Cancel("again"))

	other, _ := NewUserSubscription(uuid.New(), plan, time.Now().AddDate(0, -2, 0))
	require.NoError(t, other.Expire(time.Now()))
	assert.Equal(t, SubscriptionStatusExpired, other.Status)

	fresh, _ := NewUserSubscription(uuid.New(), plan, time.Now())
	assert.Error(t, fresh.Expire(time.Now()))
}

func TestInvoiceLifecycle(t *testing.T) {
	plan := newBasicPlan(t)
	sub, _ := NewUserSubscription(uuid.New(), plan, time.Now())

	number := NewInvoiceNumber(time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC), 42)
	assert.Equal(t, "INV-202603-000042", number)

	invoice, err := NewSubscriptionInvoice(number, sub, plan.PriceMoney(), time.Now().AddDate(0, 0, 7))
	require.NoError(t, err)
	assert.Equal(t, InvoiceStatusPending, invoice.Status)
	assert.False(t, invoice.IsOverdue(time.Now()))
	assert.True(t, invoice.IsOverdue(time.Now().AddDate(0, 0, 8)))

	require.NoError(t, invoice.MarkPaid(uuid.New()))
	assert.Error(t, invoice.MarkPaid(uuid.New()))
	assert.Error(t, invoice.Void())
}
