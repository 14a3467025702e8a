package advert

import (
	"context"

	"github.com/agriconnect/backend/internal/domain/advert"
	"github.com/agriconnect/backend/internal/domain/shared"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// PlacementService manages the sellable ad slots (admin)
type PlacementService struct {
	placementRepo advert.PlacementRepository
	logger        *zap.Logger
}

// NewPlacementService creates a new placement service
func NewPlacementService(placementRepo advert.PlacementRepository, logger *zap.Logger) *PlacementService {
	return &PlacementService{
		placementRepo: placementRepo,
		logger:        logger,
	}
}

// Create defines a new ad slot
func (s *PlacementService) Create(ctx context.Context, req CreatePlacementRequest) (*PlacementResponse, error) {
	location := advert.PlacementLocation(req.Location)
	if existing, err := s.placementRepo.FindByLocation(ctx, location); err == nil && existing != nil {
		return nil, shared.NewDomainError("DUPLICATE_PLACEMENT", "A placement already exists at this location")
	}

	placement, err := advert.NewAdPlacement(location, req.Name, req.Width, req.Height, req.MaxSlots)
	if err != nil {
		return nil, err
	}

	return s.saveAndRespond(ctx, placement)
}

// List returns all placements
func (s *PlacementService) List(ctx context.Context) ([]PlacementResponse, error) {
	placements, err := s.placementRepo.FindAll(ctx)
	if err != nil {
		return nil, err
	}

	responses := make([]PlacementResponse, len(placements))
	for i := range placements {
		responses[i] = ToPlacementResponse(&placements[i])
	}
	return responses, nil
}

// SetActive opens or closes a slot for new campaigns
func (s *PlacementService) SetActive(ctx context.Context, placementID uuid.UUID, active bool) (*PlacementResponse, error) {
	placement, err := s.placementRepo.FindByID(ctx, placementID)
	if err != nil {
		return nil, err
	}
	placement.SetActive(active)
	return s.saveAndRespond(ctx, placement)
}

func (s *PlacementService) saveAndRespond(ctx context.Context, placement *advert.AdPlacement) (*PlacementResponse, error) {
	if err := s.placementRepo.Save(ctx, placement); err != nil {
		s.logger.Error("Failed to save placement", zap.Error(err))
		return nil, shared.NewDomainError("INTERNAL_ERROR", "Failed to save placement")
	}
	response := ToPlacementResponse(placement)
	return &response, nil
}
