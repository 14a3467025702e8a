package traceability

import (
	"context"
	"errors"

	"github.com/agriconnect/backend/internal/domain/shared"
	"github.com/agriconnect/backend/internal/domain/traceability"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// FarmService manages registered production sites
type FarmService struct {
	farmRepo traceability.FarmRepository
	logger   *zap.Logger
}

// NewFarmService creates a new farm service
func NewFarmService(farmRepo traceability.FarmRepository, logger *zap.Logger) *FarmService {
	return &FarmService{
		farmRepo: farmRepo,
		logger:   logger,
	}
}

// Register registers a farm for a farmer
func (s *FarmService) Register(ctx context.Context, farmerID uuid.UUID, req RegisterFarmRequest) (*FarmResponse, error) {
	if req.RegistrationNumber != "" {
		existing, err := s.farmRepo.FindByRegistration(ctx, req.RegistrationNumber)
		if err != nil && !errors.Is(err, shared.ErrNotFound) {
			return nil, err
		}
		if existing != nil {
			return nil, shared.NewDomainError("DUPLICATE_REGISTRATION", "A farm with this registration number already exists")
		}
	}

	farm, err := traceability.NewFarm(farmerID, req.Name, req.Country, req.Region, req.SizeHectares)
	if err != nil {
		return nil, err
	}
	farm.Location = req.Location
	if req.RegistrationNumber != "" {
		farm.SetRegistration(req.RegistrationNumber)
	}
	if req.Latitude != nil && req.Longitude != nil {
		if err := farm.SetCoordinates(*req.Latitude, *req.Longitude); err != nil {
			return nil, err
		}
	}

	if err := s.farmRepo.Save(ctx, farm); err != nil {
		s.logger.Error("Failed to save farm", zap.Error(err))
		return nil, shared.NewDomainError("INTERNAL_ERROR", "Failed to register farm")
	}

	s.logger.Info("Farm registered",
		zap.String("farmer_id", farmerID.String()),
		zap.String("name", farm.Name))

	response := ToFarmResponse(farm)
	return &response, nil
}

// Get retrieves one of the farmer's farms
func (s *FarmService) Get(ctx context.Context, farmerID, farmID uuid.UUID) (*FarmResponse, error) {
	farm, err := s.findForFarmer(ctx, farmerID, farmID)
	if err != nil {
		return nil, err
	}
	response := ToFarmResponse(farm)
	return &response, nil
}

// ListByFarmer lists all farms a farmer has registered
func (s *FarmService) ListByFarmer(ctx context.Context, farmerID uuid.UUID) ([]FarmResponse, error) {
	farms, err := s.farmRepo.FindByFarmer(ctx, farmerID)
	if err != nil {
		return nil, err
	}

	responses := make([]FarmResponse, len(farms))
	for i := range farms {
		responses[i] = ToFarmResponse(&farms[i])
	}
	return responses, nil
}

// SetCoordinates records a farm's GPS position
func (s *FarmService) SetCoordinates(ctx context.Context, farmerID, farmID uuid.UUID, req SetCoordinatesRequest) (*FarmResponse, error) {
	farm, err := s.findForFarmer(ctx, farmerID, farmID)
	if err != nil {
		return nil, err
	}
	if err := farm.SetCoordinates(req.Latitude, req.Longitude); err != nil {
		return nil, err
	}
	return s.saveAndRespond(ctx, farm)
}

// CertifyOrganic flags a farm as organic certified (admin)
func (s *FarmService) CertifyOrganic(ctx context.Context, farmID uuid.UUID) (*FarmResponse, error) {
	farm, err := s.farmRepo.FindByID(ctx, farmID)
	if err != nil {
		return nil, err
	}
	farm.CertifyOrganic()
	return s.saveAndRespond(ctx, farm)
}

// RevokeOrganic removes a farm's organic certification (admin)
func (s *FarmService) RevokeOrganic(ctx context.Context, farmID uuid.UUID) (*FarmResponse, error) {
	farm, err := s.farmRepo.FindByID(ctx, farmID)
	if err != nil {
		return nil, err
	}
	farm.RevokeOrganic()
	return s.saveAndRespond(ctx, farm)
}

func (s *FarmService) findForFarmer(ctx context.Context, farmerID, farmID uuid.UUID) (*traceability.Farm, error) {
	farm, err := s.farmRepo.FindByID(ctx, farmID)
	if err != nil {
		return nil, err
	}
	if farm.FarmerID != farmerID {
		return nil, shared.ErrForbidden
	}
	return farm, nil
}

func (s *FarmService) saveAndRespond(ctx context.Context, farm *traceability.Farm) (*FarmResponse, error) {
	if err := s.farmRepo.Save(ctx, farm); err != nil {
		s.logger.Error("Failed to save farm", zap.Error(err))
		return nil, shared.NewDomainError("INTERNAL_ERROR", "Failed to save farm")
	}
	response := ToFarmResponse(farm)
	return &response, nil
}
