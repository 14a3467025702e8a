package trade

import (
	"context"

	"github.com/agriconnect/backend/internal/domain/trade"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ShippingService manages delivery options offered at checkout
type ShippingService struct {
	shippingRepo trade.ShippingMethodRepository
	logger       *zap.Logger
}

// NewShippingService creates a new shipping service
func NewShippingService(shippingRepo trade.ShippingMethodRepository, logger *zap.Logger) *ShippingService {
	return &ShippingService{
		shippingRepo: shippingRepo,
		logger:       logger,
	}
}

// Create adds a new shipping method (admin only)
func (s *ShippingService) Create(ctx context.Context, req CreateShippingMethodRequest) (*ShippingMethodResponse, error) {
	method, err := trade.NewShippingMethod(req.Name, req.Carrier, req.BaseCost, req.CostPerKg, req.MinDays, req.MaxDays)
	if err != nil {
		return nil, err
	}

	if err := s.shippingRepo.Save(ctx, method); err != nil {
		s.logger.Error("Failed to save shipping method", zap.Error(err))
		return nil, err
	}

	s.logger.Info("Shipping method created",
		zap.String("method_id", method.ID.String()),
		zap.String("name", method.Name))

	response := ToShippingMethodResponse(method)
	return &response, nil
}

// ListActive lists methods available at checkout
func (s *ShippingService) ListActive(ctx context.Context) ([]ShippingMethodResponse, error) {
	methods, err := s.shippingRepo.FindActive(ctx)
	if err != nil {
		return nil, err
	}

	responses := make([]ShippingMethodResponse, len(methods))
	for i := range methods {
		responses[i] = ToShippingMethodResponse(&methods[i])
	}
	return responses, nil
}

// SetActive enables or disables a shipping method (admin only)
func (s *ShippingService) SetActive(ctx context.Context, methodID uuid.UUID, active bool) (*ShippingMethodResponse, error) {
	method, err := s.shippingRepo.FindByID(ctx, methodID)
	if err != nil {
		return nil, err
	}

	if active {
		method.Activate()
	} else {
		method.Deactivate()
	}

	if err := s.shippingRepo.Save(ctx, method); err != nil {
		return nil, err
	}

	response := ToShippingMethodResponse(method)
	return &response, nil
}

// Delete removes a shipping method (admin only)
func (s *ShippingService) Delete(ctx context.Context, methodID uuid.UUID) error {
	if _, err := s.shippingRepo.FindByID(ctx, methodID); err != nil {
		return err
	}
	return s.shippingRepo.Delete(ctx, methodID)
}
