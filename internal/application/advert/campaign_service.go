package advert

import (
	"context"
	"time"

	"github.com/agriconnect/backend/internal/domain/advert"
	"github.com/agriconnect/backend/internal/domain/shared"
	"github.com/agriconnect/backend/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// CampaignService handles the advertiser and moderation side of campaigns
type CampaignService struct {
	adRepo         advert.AdvertisementRepository
	placementRepo  advert.PlacementRepository
	perfRepo       advert.PerformanceRepository
	eventPublisher shared.EventPublisher
	logger         *zap.Logger
}

// NewCampaignService creates a new campaign service
func NewCampaignService(
	adRepo advert.AdvertisementRepository,
	placementRepo advert.PlacementRepository,
	perfRepo advert.PerformanceRepository,
	logger *zap.Logger,
) *CampaignService {
	return &CampaignService{
		adRepo:        adRepo,
		placementRepo: placementRepo,
		perfRepo:      perfRepo,
		logger:        logger,
	}
}

// SetEventPublisher sets the event publisher for campaign events
func (s *CampaignService) SetEventPublisher(publisher shared.EventPublisher) {
	s.eventPublisher = publisher
}

// Create opens a draft campaign against a placement
func (s *CampaignService) Create(ctx context.Context, advertiserID uuid.UUID, req CreateCampaignRequest) (*CampaignResponse, error) {
	placement, err := s.placementRepo.FindByID(ctx, req.PlacementID)
	if err != nil {
		return nil, err
	}
	if !placement.Active {
		return nil, shared.NewDomainError("PLACEMENT_INACTIVE", "Placement is not selling slots")
	}

	budget, err := valueobject.NewMoney(req.Budget, valueobject.DefaultCurrency)
	if err != nil {
		return nil, err
	}

	ad, err := advert.NewAdvertisement(
		advertiserID,
		placement.ID,
		req.Title,
		budget,
		advert.CostModel(req.CostModel),
		req.Rate,
		req.StartAt,
		req.EndAt,
	)
	if err != nil {
		return nil, err
	}

	if err := s.adRepo.Save(ctx, ad); err != nil {
		s.logger.Error("Failed to save advertisement", zap.Error(err))
		return nil, shared.NewDomainError("INTERNAL_ERROR", "Failed to create campaign")
	}

	s.logger.Info("Campaign created",
		zap.String("advertiser_id", advertiserID.String()),
		zap.String("title", req.Title))

	response := ToCampaignResponse(ad)
	return &response, nil
}

// SetCreative fills in the ad content while the campaign is a draft
func (s *CampaignService) SetCreative(ctx context.Context, advertiserID, adID uuid.UUID, req SetCreativeRequest) (*CampaignResponse, error) {
	ad, err := s.findForAdvertiser(ctx, advertiserID, adID)
	if err != nil {
		return nil, err
	}
	if err := ad.SetCreative(req.Content, req.MediaURL, req.TargetURL); err != nil {
		return nil, err
	}
	return s.saveAndRespond(ctx, ad)
}

// SetTargeting restricts the audience and regions the campaign serves to
func (s *CampaignService) SetTargeting(ctx context.Context, advertiserID, adID uuid.UUID, req SetTargetingRequest) (*CampaignResponse, error) {
	ad, err := s.findForAdvertiser(ctx, advertiserID, adID)
	if err != nil {
		return nil, err
	}
	ad.SetTargeting(req.Audience, req.Regions)
	return s.saveAndRespond(ctx, ad)
}

// SubmitForReview sends a draft to moderation
func (s *CampaignService) SubmitForReview(ctx context.Context, advertiserID, adID uuid.UUID) (*CampaignResponse, error) {
	ad, err := s.findForAdvertiser(ctx, advertiserID, adID)
	if err != nil {
		return nil, err
	}
	if err := ad.SubmitForReview(); err != nil {
		return nil, err
	}
	return s.saveAndRespond(ctx, ad)
}

// Approve activates a reviewed campaign (moderator)
func (s *CampaignService) Approve(ctx context.Context, adID uuid.UUID) (*CampaignResponse, error) {
	ad, err := s.adRepo.FindByID(ctx, adID)
	if err != nil {
		return nil, err
	}
	if err := ad.Approve(); err != nil {
		return nil, err
	}
	resp, err := s.saveAndRespond(ctx, ad)
	if err != nil {
		return nil, err
	}
	s.publishEvents(ctx, ad)
	return resp, nil
}

// Reject declines a reviewed campaign with a reason (moderator)
func (s *CampaignService) Reject(ctx context.Context, adID uuid.UUID, req RejectCampaignRequest) (*CampaignResponse, error) {
	ad, err := s.adRepo.FindByID(ctx, adID)
	if err != nil {
		return nil, err
	}
	if err := ad.Reject(req.Reason); err != nil {
		return nil, err
	}
	return s.saveAndRespond(ctx, ad)
}

// Pause stops delivery at the advertiser's request
func (s *CampaignService) Pause(ctx context.Context, advertiserID, adID uuid.UUID) (*CampaignResponse, error) {
	ad, err := s.findForAdvertiser(ctx, advertiserID, adID)
	if err != nil {
		return nil, err
	}
	if err := ad.Pause(); err != nil {
		return nil, err
	}
	return s.saveAndRespond(ctx, ad)
}

// Resume restarts a paused campaign with budget left
func (s *CampaignService) Resume(ctx context.Context, advertiserID, adID uuid.UUID) (*CampaignResponse, error) {
	ad, err := s.findForAdvertiser(ctx, advertiserID, adID)
	if err != nil {
		return nil, err
	}
	if err := ad.Resume(); err != nil {
		return nil, err
	}
	return s.saveAndRespond(ctx, ad)
}

// Get retrieves one campaign for its advertiser
func (s *CampaignService) Get(ctx context.Context, advertiserID, adID uuid.UUID) (*CampaignResponse, error) {
	ad, err := s.findForAdvertiser(ctx, advertiserID, adID)
	if err != nil {
		return nil, err
	}
	response := ToCampaignResponse(ad)
	return &response, nil
}

// List lists an advertiser's campaigns
func (s *CampaignService) List(ctx context.Context, advertiserID uuid.UUID, filter shared.Filter) ([]CampaignResponse, error) {
	if filter.Page <= 0 {
		filter.Page = 1
	}
	if filter.PageSize <= 0 || filter.PageSize > 100 {
		filter.PageSize = 20
	}
	filter.OrderBy = "created_at"
	filter.OrderDir = "desc"

	ads, err := s.adRepo.FindByAdvertiser(ctx, advertiserID, filter)
	if err != nil {
		return nil, err
	}
	return ToCampaignResponses(ads), nil
}

// Performance returns the daily delivery rollups for a campaign
func (s *CampaignService) Performance(ctx context.Context, advertiserID, adID uuid.UUID, from, to time.Time) ([]PerformanceResponse, error) {
	if _, err := s.findForAdvertiser(ctx, advertiserID, adID); err != nil {
		return nil, err
	}
	if to.IsZero() {
		to = time.Now()
	}
	if from.IsZero() {
		from = to.AddDate(0, 0, -30)
	}
	logs, err := s.perfRepo.FindByAd(ctx, adID, from, to)
	if err != nil {
		return nil, err
	}
	return ToPerformanceResponses(logs), nil
}

// CompleteEnded closes campaigns whose schedule has run out.
// Intended to run on a schedule.
func (s *CampaignService) CompleteEnded(ctx context.Context, limit int) (int, error) {
	ended, err := s.adRepo.FindEnded(ctx, time.Now(), limit)
	if err != nil {
		return 0, err
	}

	completed := 0
	for i := range ended {
		ad := &ended[i]
		if err := ad.Complete(); err != nil {
			continue
		}
		if err := s.adRepo.Save(ctx, ad); err != nil {
			s.logger.Error("Failed to save completed campaign",
				zap.String("ad_id", ad.ID.String()),
				zap.Error(err))
			continue
		}
		completed++
	}

	if completed > 0 {
		s.logger.Info("Ended campaigns completed", zap.Int("count", completed))
	}
	return completed, nil
}

func (s *CampaignService) findForAdvertiser(ctx context.Context, advertiserID, adID uuid.UUID) (*advert.Advertisement, error) {
	ad, err := s.adRepo.FindByID(ctx, adID)
	if err != nil {
		return nil, err
	}
	if ad.AdvertiserID != advertiserID {
		return nil, shared.ErrForbidden
	}
	return ad, nil
}

func (s *CampaignService) saveAndRespond(ctx context.Context, ad *advert.Advertisement) (*CampaignResponse, error) {
	if err := s.adRepo.Save(ctx, ad); err != nil {
		s.logger.Error("Failed to save advertisement", zap.Error(err))
		return nil, shared.NewDomainError("INTERNAL_ERROR", "Failed to update campaign")
	}
	response := ToCampaignResponse(ad)
	return &response, nil
}

func (s *CampaignService) publishEvents(ctx context.Context, ad *advert.Advertisement) {
	if s.eventPublisher == nil {
		ad.ClearDomainEvents()
		return
	}
	for _, event := range ad.GetDomainEvents() {
		if err := s.eventPublisher.Publish(ctx, event); err != nil {
			s.logger.Error("Failed to publish campaign event",
				zap.String("event_type", event.EventType()),
				zap.Error(err))
		}
	}
	ad.ClearDomainEvents()
}
