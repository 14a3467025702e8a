package advert

import (
	"context"
	"time"

	"github.com/agriconnect/backend/internal/domain/advert"
	"github.com/agriconnect/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// ServingService picks ads for placements and records delivery
type ServingService struct {
	adRepo         advert.AdvertisementRepository
	placementRepo  advert.PlacementRepository
	perfRepo       advert.PerformanceRepository
	eventPublisher shared.EventPublisher
	logger         *zap.Logger
}

// NewServingService creates a new serving service
func NewServingService(
	adRepo advert.AdvertisementRepository,
	placementRepo advert.PlacementRepository,
	perfRepo advert.PerformanceRepository,
	logger *zap.Logger,
) *ServingService {
	return &ServingService{
		adRepo:        adRepo,
		placementRepo: placementRepo,
		perfRepo:      perfRepo,
		logger:        logger,
	}
}

// SetEventPublisher sets the event publisher for delivery events
func (s *ServingService) SetEventPublisher(publisher shared.EventPublisher) {
	s.eventPublisher = publisher
}

// Serve returns the ads to show in a placement for a viewer's region.
// An inactive placement or one with no eligible campaigns serves nothing.
func (s *ServingService) Serve(ctx context.Context, location advert.PlacementLocation, region string) ([]ServedAdResponse, error) {
	placement, err := s.placementRepo.FindByLocation(ctx, location)
	if err != nil {
		return nil, err
	}
	if !placement.Active {
		return []ServedAdResponse{}, nil
	}

	now := time.Now()
	candidates, err := s.adRepo.FindServable(ctx, placement.ID, now, placement.MaxSlots*3)
	if err != nil {
		return nil, err
	}

	served := make([]ServedAdResponse, 0, placement.MaxSlots)
	for i := range candidates {
		if len(served) >= placement.MaxSlots {
			break
		}
		if !candidates[i].Servable(now, region) {
			continue
		}
		served = append(served, ToServedAdResponse(&candidates[i]))
	}
	return served, nil
}

// RecordImpression counts one view against a campaign
func (s *ServingService) RecordImpression(ctx context.Context, adID uuid.UUID) error {
	ad, err := s.adRepo.FindByID(ctx, adID)
	if err != nil {
		return err
	}

	before := ad.AmountSpent
	if err := ad.RecordImpression(); err != nil {
		return err
	}

	return s.settleDelivery(ctx, ad, 1, 0, ad.AmountSpent.Sub(before))
}

// RecordClick counts one click against a campaign
func (s *ServingService) RecordClick(ctx context.Context, adID uuid.UUID) error {
	ad, err := s.adRepo.FindByID(ctx, adID)
	if err != nil {
		return err
	}

	before := ad.AmountSpent
	if err := ad.RecordClick(); err != nil {
		return err
	}

	return s.settleDelivery(ctx, ad, 0, 1, ad.AmountSpent.Sub(before))
}

// settleDelivery persists the updated campaign and rolls the delta
// into today's performance log. A rollup failure is logged but does
// not undo the delivery.
func (s *ServingService) settleDelivery(ctx context.Context, ad *advert.Advertisement, impressions, clicks int64, spend decimal.Decimal) error {
	if err := s.adRepo.Save(ctx, ad); err != nil {
		s.logger.Error("Failed to save advertisement counters",
			zap.String("ad_id", ad.ID.String()),
			zap.Error(err))
		return shared.NewDomainError("INTERNAL_ERROR", "Failed to record delivery")
	}

	s.publishEvents(ctx, ad)

	delta, err := advert.NewAdPerformanceLog(ad.ID, time.Now(), impressions, clicks, spend)
	if err != nil {
		return err
	}
	if err := s.perfRepo.Upsert(ctx, delta); err != nil {
		s.logger.Error("Failed to roll up ad performance",
			zap.String("ad_id", ad.ID.String()),
			zap.Error(err))
	}
	return nil
}

func (s *ServingService) publishEvents(ctx context.Context, ad *advert.Advertisement) {
	if s.eventPublisher == nil {
		ad.ClearDomainEvents()
		return
	}
	for _, event := range ad.GetDomainEvents() {
		if err := s.eventPublisher.Publish(ctx, event); err != nil {
			s.logger.Error("Failed to publish delivery event",
				zap.String("event_type", event.EventType()),
				zap.Error(err))
		}
	}
	ad.ClearDomainEvents()
}
