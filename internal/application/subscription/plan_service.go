package subscription

import (
	"context"

	"github.com/agriconnect/backend/internal/domain/shared"
	"github.com/agriconnect/backend/internal/domain/shared/valueobject"
	"github.com/agriconnect/backend/internal/domain/subscription"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// PlanService manages the purchasable subscription plans
type PlanService struct {
	planRepo subscription.PlanRepository
	logger   *zap.Logger
}

// NewPlanService creates a new plan service
func NewPlanService(planRepo subscription.PlanRepository, logger *zap.Logger) *PlanService {
	return &PlanService{planRepo: planRepo, logger: logger}
}

// Create registers a new plan
func (s *PlanService) Create(ctx context.Context, req CreatePlanRequest) (*PlanResponse, error) {
	price, err := valueobject.NewMoney(req.Price, valueobject.DefaultCurrency)
	if err != nil {
		return nil, err
	}

	plan, err := subscription.NewSubscriptionPlan(
		req.Name,
		subscription.PlanTier(req.Tier),
		subscription.PlanAudience(req.Audience),
		price,
		subscription.BillingPeriod(req.Period),
		subscription.PlanLimits{
			ProductListings: req.Limits.ProductListings,
			SMSCredits:      req.Limits.SMSCredits,
			WarehouseAccess: req.Limits.WarehouseAccess,
		},
	)
	if err != nil {
		return nil, err
	}
	plan.Description = req.Description

	if err := s.planRepo.Save(ctx, plan); err != nil {
		s.logger.Error("Failed to save plan", zap.Error(err))
		return nil, shared.NewDomainError("INTERNAL_ERROR", "Failed to create plan")
	}

	s.logger.Info("Subscription plan created",
		zap.String("name", req.Name),
		zap.String("tier", req.Tier))

	response := ToPlanResponse(plan)
	return &response, nil
}

// ListActive lists plans open for purchase by an audience
func (s *PlanService) ListActive(ctx context.Context, audience string) ([]PlanResponse, error) {
	plans, err := s.planRepo.FindActive(ctx, subscription.PlanAudience(audience))
	if err != nil {
		return nil, err
	}
	return ToPlanResponses(plans), nil
}

// List lists all plans for administration
func (s *PlanService) List(ctx context.Context, filter shared.Filter) ([]PlanResponse, error) {
	if filter.Page <= 0 {
		filter.Page = 1
	}
	if filter.PageSize <= 0 || filter.PageSize > 100 {
		filter.PageSize = 20
	}
	plans, err := s.planRepo.FindAll(ctx, filter)
	if err != nil {
		return nil, err
	}
	return ToPlanResponses(plans), nil
}

// Get retrieves a single plan
func (s *PlanService) Get(ctx context.Context, planID uuid.UUID) (*PlanResponse, error) {
	plan, err := s.planRepo.FindByID(ctx, planID)
	if err != nil {
		return nil, err
	}
	response := ToPlanResponse(plan)
	return &response, nil
}

// UpdatePricing changes a plan's price for future billing periods
func (s *PlanService) UpdatePricing(ctx context.Context, planID uuid.UUID, req UpdatePlanPricingRequest) (*PlanResponse, error) {
	plan, err := s.planRepo.FindByID(ctx, planID)
	if err != nil {
		return nil, err
	}
	price, err := valueobject.NewMoney(req.Price, plan.Currency)
	if err != nil {
		return nil, err
	}
	if err := plan.UpdatePricing(price); err != nil {
		return nil, err
	}
	return s.saveAndRespond(ctx, plan)
}

// UpdateLimits changes a plan's consumption caps
func (s *PlanService) UpdateLimits(ctx context.Context, planID uuid.UUID, req PlanLimitsRequest) (*PlanResponse, error) {
	plan, err := s.planRepo.FindByID(ctx, planID)
	if err != nil {
		return nil, err
	}
	if err := plan.UpdateLimits(subscription.PlanLimits{
		ProductListings: req.ProductListings,
		SMSCredits:      req.SMSCredits,
		WarehouseAccess: req.WarehouseAccess,
	}); err != nil {
		return nil, err
	}
	return s.saveAndRespond(ctx, plan)
}

// SetActive toggles whether a plan is open to new subscribers
func (s *PlanService) SetActive(ctx context.Context, planID uuid.UUID, active bool) (*PlanResponse, error) {
	plan, err := s.planRepo.FindByID(ctx, planID)
	if err != nil {
		return nil, err
	}
	if active {
		plan.Activate()
	} else {
		plan.Deactivate()
	}
	return s.saveAndRespond(ctx, plan)
}

// Delete removes a plan that never gained subscribers
func (s *PlanService) Delete(ctx context.Context, planID uuid.UUID) error {
	if _, err := s.planRepo.FindByID(ctx, planID); err != nil {
		return err
	}
	return s.planRepo.Delete(ctx, planID)
}

func (s *PlanService) saveAndRespond(ctx context.Context, plan *subscription.SubscriptionPlan) (*PlanResponse, error) {
	if err := s.planRepo.Save(ctx, plan); err != nil {
		s.logger.Error("Failed to save plan", zap.Error(err))
		return nil, shared.NewDomainError("INTERNAL_ERROR", "Failed to update plan")
	}
	response := ToPlanResponse(plan)
	return &response, nil
}
