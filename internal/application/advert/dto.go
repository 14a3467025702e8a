package advert

import (
	"time"

	"github.com/agriconnect/backend/internal/domain/advert"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CreateCampaignRequest opens a draft advertising campaign
type CreateCampaignRequest struct {
	PlacementID uuid.UUID       `json:"placement_id" binding:"required"`
	Title       string          `json:"title" binding:"required,max=200"`
	Budget      decimal.Decimal `json:"budget" binding:"required"`
	CostModel   string          `json:"cost_model" binding:"required,oneof=cpm cpc"`
	Rate        decimal.Decimal `json:"rate" binding:"required"`
	StartAt     time.Time       `json:"start_at" binding:"required"`
	EndAt       time.Time       `json:"end_at" binding:"required"`
}

// SetCreativeRequest fills in the campaign's ad content
type SetCreativeRequest struct {
	Content   string `json:"content" binding:"max=2000"`
	MediaURL  string `json:"media_url" binding:"omitempty,url,max=500"`
	TargetURL string `json:"target_url" binding:"omitempty,url,max=500"`
}

// SetTargetingRequest restricts who sees the campaign
type SetTargetingRequest struct {
	Audience string   `json:"audience" binding:"omitempty,oneof=farmer buyer institution"`
	Regions  []string `json:"regions"`
}

// RejectCampaignRequest declines a campaign in review
type RejectCampaignRequest struct {
	Reason string `json:"reason" binding:"required,max=255"`
}

// CreatePlacementRequest defines a sellable ad slot (admin)
type CreatePlacementRequest struct {
	Location string `json:"location" binding:"required,oneof=home_banner search_results product_page dashboard"`
	Name     string `json:"name" binding:"required,max=100"`
	Width    int    `json:"width" binding:"required,gt=0"`
	Height   int    `json:"height" binding:"required,gt=0"`
	MaxSlots int    `json:"max_slots" binding:"required,gt=0"`
}

// CampaignResponse is the advertiser's view of a campaign
type CampaignResponse struct {
	ID              uuid.UUID       `json:"id"`
	AdvertiserID    uuid.UUID       `json:"advertiser_id"`
	PlacementID     uuid.UUID       `json:"placement_id"`
	Title           string          `json:"title"`
	Content         string          `json:"content,omitempty"`
	MediaURL        string          `json:"media_url,omitempty"`
	TargetURL       string          `json:"target_url,omitempty"`
	TargetAudience  string          `json:"target_audience,omitempty"`
	TargetRegions   string          `json:"target_regions,omitempty"`
	Budget          decimal.Decimal `json:"budget"`
	AmountSpent     decimal.Decimal `json:"amount_spent"`
	BudgetRemaining decimal.Decimal `json:"budget_remaining"`
	Currency        string          `json:"currency"`
	CostModel       string          `json:"cost_model"`
	Rate            decimal.Decimal `json:"rate"`
	StartAt         time.Time       `json:"start_at"`
	EndAt           time.Time       `json:"end_at"`
	Status          string          `json:"status"`
	Impressions     int64           `json:"impressions"`
	Clicks          int64           `json:"clicks"`
	CTR             decimal.Decimal `json:"ctr"`
	RejectedReason  string          `json:"rejected_reason,omitempty"`
	CreatedAt       time.Time       `json:"created_at"`
}

// ToCampaignResponse converts a domain advertisement
func ToCampaignResponse(a *advert.Advertisement) CampaignResponse {
	return CampaignResponse{
		ID:              a.ID,
		AdvertiserID:    a.AdvertiserID,
		PlacementID:     a.PlacementID,
		Title:           a.Title,
		Content:         a.Content,
		MediaURL:        a.MediaURL,
		TargetURL:       a.TargetURL,
		TargetAudience:  a.TargetAudience,
		TargetRegions:   a.TargetRegions,
		Budget:          a.Budget,
		AmountSpent:     a.AmountSpent,
		BudgetRemaining: a.BudgetRemaining(),
		Currency:        string(a.Currency),
		CostModel:       string(a.CostModel),
		Rate:            a.Rate,
		StartAt:         a.StartAt,
		EndAt:           a.EndAt,
		Status:          string(a.Status),
		Impressions:     a.Impressions,
		Clicks:          a.Clicks,
		CTR:             a.CTR(),
		RejectedReason:  a.RejectedReason,
		CreatedAt:       a.CreatedAt,
	}
}

// ToCampaignResponses converts a slice of advertisements
func ToCampaignResponses(ads []advert.Advertisement) []CampaignResponse {
	responses := make([]CampaignResponse, len(ads))
	for i := range ads {
		responses[i] = ToCampaignResponse(&ads[i])
	}
	return responses
}

// ServedAdResponse is the public shape of an ad delivered to a viewer.
// It deliberately omits budget and delivery figures.
type ServedAdResponse struct {
	ID        uuid.UUID `json:"id"`
	Title     string    `json:"title"`
	Content   string    `json:"content,omitempty"`
	MediaURL  string    `json:"media_url,omitempty"`
	TargetURL string    `json:"target_url,omitempty"`
}

// ToServedAdResponse converts an advertisement for public delivery
func ToServedAdResponse(a *advert.Advertisement) ServedAdResponse {
	return ServedAdResponse{
		ID:        a.ID,
		Title:     a.Title,
		Content:   a.Content,
		MediaURL:  a.MediaURL,
		TargetURL: a.TargetURL,
	}
}

// PlacementResponse is the outward representation of a placement
type PlacementResponse struct {
	ID       uuid.UUID `json:"id"`
	Location string    `json:"location"`
	Name     string    `json:"name"`
	Width    int       `json:"width"`
	Height   int       `json:"height"`
	MaxSlots int       `json:"max_slots"`
	Active   bool      `json:"active"`
}

// ToPlacementResponse converts a domain placement
func ToPlacementResponse(p *advert.AdPlacement) PlacementResponse {
	return PlacementResponse{
		ID:       p.ID,
		Location: string(p.Location),
		Name:     p.Name,
		Width:    p.Width,
		Height:   p.Height,
		MaxSlots: p.MaxSlots,
		Active:   p.Active,
	}
}

// PerformanceResponse is one day's delivery rollup
type PerformanceResponse struct {
	Date        time.Time       `json:"date"`
	Impressions int64           `json:"impressions"`
	Clicks      int64           `json:"clicks"`
	Spend       decimal.Decimal `json:"spend"`
	CTR         decimal.Decimal `json:"ctr"`
}

// ToPerformanceResponses converts a slice of performance logs
func ToPerformanceResponses(logs []advert.AdPerformanceLog) []PerformanceResponse {
	responses := make([]PerformanceResponse, len(logs))
	for i := range logs {
		responses[i] = PerformanceResponse{
			Date:        logs[i].Date,
			Impressions: logs[i].Impressions,
			Clicks:      logs[i].Clicks,
			Spend:       logs[i].Spend,
			CTR:         logs[i].CTR(),
		}
	}
	return responses
}
