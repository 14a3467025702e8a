package advert

import (
	"testing"
	"time"

	"github.com/agriconnect/backend/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newDraftAd(t *testing.T, model CostModel, rate float64) *Advertisement {
	t.Helper()
	ad, err := NewAdvertisement(uuid.New(), uuid.New(), "Fresh Tomatoes Promo",
		valueobject.NewMoneyGHSFromFloat(100), model, decimal.NewFromFloat(rate),
		time.Now().Add(-time.Hour), time.Now().AddDate(0, 1, 0))
	require.NoError(t, err)
	require.NoError(t, ad.SetCreative("Buy farm-fresh tomatoes", "https://cdn.example.com/tomato.jpg", "https://agriconnect.example/p/1"))
	return ad
}

func activateAd(t *testing.T, ad *Advertisement) {
	t.Helper()
	require.NoError(t, ad.SubmitForReview())
	require.NoError(t, ad.Approve())
}

func TestAdReviewFlow(t *testing.T) {
	ad := newDraftAd(t, CostModelCPC, 0.5)

	assert.Error(t, ad.Approve(), "drafts cannot be approved directly")

	require.NoError(t, ad.SubmitForReview())
	require.NoError(t, ad.Reject("misleading claims"))
	assert.Equal(t, AdStatusRejected, ad.Status)

	require.NoError(t, ad.SetCreative("Buy fresh tomatoes", "", "https://agriconnect.example/p/1"))
	require.NoError(t, ad.SubmitForReview())
	require.NoError(t, ad.Approve())
	assert.Equal(t, AdStatusActive, ad.Status)
	assert.Empty(t, ad.RejectedReason)
}

func TestSubmitRequiresCreative(t *testing.T) {
	ad, err := NewAdvertisement(uuid.New(), uuid.New(), "Empty Ad",
		valueobject.NewMoneyGHSFromFloat(50), CostModelCPM, decimal.NewFromInt(2),
		time.Now(), time.Now().AddDate(0, 0, 14))
	require.NoError(t, err)

	assert.Error(t, ad.SubmitForReview())
}

func TestCPCSpendAndAutoPause(t *testing.T) {
	ad := newDraftAd(t, CostModelCPC, 50) // budget 100 covers 2 clicks
	activateAd(t, ad)

	require.NoError(t, ad.RecordClick())
	assert.Equal(t, AdStatusActive, ad.Status)

	require.NoError(t, ad.RecordClick())
	assert.Equal(t, AdStatusPaused, ad.Status, "budget exhaustion auto-pauses")
	assert.True(t, ad.BudgetRemaining().IsZero())

	assert.Error(t, ad.RecordClick())
	assert.Error(t, ad.Resume(), "cannot resume with no budget left")
}

func TestCPMSpend(t *testing.T) {
	ad := newDraftAd(t, CostModelCPM, 10) // 10 GHS per 1000 impressions
	activateAd(t, ad)

	for i := 0; i < 100; i++ {
		require.NoError(t, ad.RecordImpression())
	}

	assert.True(t, ad.AmountSpent.Equal(decimal.NewFromInt(1)), "100 impressions at 10/1000 cost 1")
	assert.Equal(t, int64(100), ad.Impressions)
}

func TestCTR(t *testing.T) {
	ad := newDraftAd(t, CostModelCPM, 1)
	activateAd(t, ad)

	assert.True(t, ad.CTR().IsZero())

	for i := 0; i < 50; i++ {
		require.NoError(t, ad.RecordImpression())
	}
	require.NoError(t, ad.RecordClick())

	assert.True(t, ad.CTR().Equal(decimal.NewFromFloat(0.02)))
}

func TestServable(t *testing.T) {
	ad := newDraftAd(t, CostModelCPC, 1)
	activateAd(t, ad)
	ad.SetTargeting("farmer", []string{"Ashanti", "Volta"})

	now := time.Now()
	assert.True(t, ad.Servable(now, "Ashanti"))
	assert.True(t, ad.Servable(now, "volta"), "region match is case-insensitive")
	assert.False(t, ad.Servable(now, "Greater Accra"))
	assert.True(t, ad.Servable(now, ""), "no region known serves everywhere")
	assert.False(t, ad.Servable(now.AddDate(0, 2, 0), "Ashanti"), "outside schedule")

	require.NoError(t, ad.Pause())
	assert.False(t, ad.Servable(now, "Ashanti"))
	require.NoError(t, ad.Resume())
	assert.True(t, ad.Servable(now, "Ashanti"))
}

func TestPlacementValidation(t *testing.T) {
	p, err := NewAdPlacement(PlacementHomeBanner, "Home hero banner", 1200, 300, 3)
	require.NoError(t, err)
	assert.True(t, p.Active)

	_, err = NewAdPlacement(PlacementLocation("footer"), "Footer", 100, 100, 1)
	assert.Error(t, err)

	_, err = NewAdPlacement(PlacementDashboard, "Dash", 0, 100, 1)
	assert.Error(t, err)
}

func TestPerformanceLog(t *testing.T) {
	log, err := NewAdPerformanceLog(uuid.New(), time.Date(2026, 8, 25, 15, 30, 0, 0, time.UTC),
		2000, 40, decimal.NewFromFloat(20))
	require.NoError(t, err)

	assert.Equal(t, time.Date(2026, 8, 25, 0, 0, 0, 0, time.UTC), log.Date)
	assert.True(t, log.CTR().Equal(decimal.NewFromFloat(0.02)))

	_, err = NewAdPerformanceLog(uuid.New(), time.Now(), 10, 20, decimal.Zero)
	assert.Error(t, err, "clicks cannot exceed impressions")
}
