package payment

import (
	"context"

	"github.com/agriconnect/backend/internal/domain/payment"
	"github.com/agriconnect/backend/internal/domain/shared"
	"github.com/agriconnect/backend/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// GatewayService manages the gateway configurations offered at checkout
type GatewayService struct {
	gatewayRepo payment.GatewayRepository
	logger      *zap.Logger
}

// NewGatewayService creates a new gateway service
func NewGatewayService(gatewayRepo payment.GatewayRepository, logger *zap.Logger) *GatewayService {
	return &GatewayService{gatewayRepo: gatewayRepo, logger: logger}
}

// Create registers a new gateway configuration
func (s *GatewayService) Create(ctx context.Context, req CreateGatewayRequest) (*GatewayResponse, error) {
	code := payment.GatewayCode(req.Code)

	existing, err := s.gatewayRepo.FindByCode(ctx, code)
	if err == nil && existing != nil {
		return nil, shared.NewDomainError("DUPLICATE_GATEWAY", "Gateway code is already registered")
	}

	currencies := make([]valueobject.Currency, len(req.Currencies))
	for i, c := range req.Currencies {
		currencies[i] = valueobject.Currency(c)
	}
	methods := make([]payment.PaymentMethod, len(req.Methods))
	for i, m := range req.Methods {
		methods[i] = payment.PaymentMethod(m)
	}

	gateway, err := payment.NewPaymentGateway(code, req.Name, currencies, methods)
	if err != nil {
		return nil, err
	}

	if err := s.gatewayRepo.Save(ctx, gateway); err != nil {
		s.logger.Error("Failed to save gateway", zap.Error(err))
		return nil, shared.NewDomainError("INTERNAL_ERROR", "Failed to create gateway")
	}

	s.logger.Info("Payment gateway registered", zap.String("code", req.Code))

	response := toGatewayResponse(gateway)
	return &response, nil
}

// ListActive lists gateways available at checkout
func (s *GatewayService) ListActive(ctx context.Context) ([]GatewayResponse, error) {
	gateways, err := s.gatewayRepo.FindActive(ctx)
	if err != nil {
		return nil, err
	}
	responses := make([]GatewayResponse, len(gateways))
	for i := range gateways {
		responses[i] = toGatewayResponse(&gateways[i])
	}
	return responses, nil
}

// SetFee updates the gateway fee percentage
func (s *GatewayService) SetFee(ctx context.Context, gatewayID uuid.UUID, feePercent decimal.Decimal) (*GatewayResponse, error) {
	gateway, err := s.gatewayRepo.FindByID(ctx, gatewayID)
	if err != nil {
		return nil, err
	}
	if err := gateway.SetFee(feePercent); err != nil {
		return nil, err
	}
	return s.saveAndRespond(ctx, gateway)
}

// SetActive toggles gateway availability at checkout
func (s *GatewayService) SetActive(ctx context.Context, gatewayID uuid.UUID, active bool) (*GatewayResponse, error) {
	gateway, err := s.gatewayRepo.FindByID(ctx, gatewayID)
	if err != nil {
		return nil, err
	}
	if active {
		gateway.Activate()
	} else {
		gateway.Deactivate()
	}
	return s.saveAndRespond(ctx, gateway)
}

// Delete removes a gateway configuration
func (s *GatewayService) Delete(ctx context.Context, gatewayID uuid.UUID) error {
	if _, err := s.gatewayRepo.FindByID(ctx, gatewayID); err != nil {
		return err
	}
	return s.gatewayRepo.Delete(ctx, gatewayID)
}

func (s *GatewayService) saveAndRespond(ctx context.Context, gateway *payment.PaymentGateway) (*GatewayResponse, error) {
	if err := s.gatewayRepo.Save(ctx, gateway); err != nil {
		s.logger.Error("Failed to save gateway", zap.Error(err))
		return nil, shared.NewDomainError("INTERNAL_ERROR", "Failed to update gateway")
	}
	response := toGatewayResponse(gateway)
	return &response, nil
}

func toGatewayResponse(g *payment.PaymentGateway) GatewayResponse {
	return GatewayResponse{
		ID:         g.ID,
		Code:       string(g.Code),
		Name:       g.Name,
		FeePercent: g.FeePercentage,
		Active:     g.Active,
	}
}
