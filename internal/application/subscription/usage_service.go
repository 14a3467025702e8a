package subscription

import (
	"context"
	"errors"
	"time"

	"github.com/agriconnect/backend/internal/domain/shared"
	"github.com/agriconnect/backend/internal/domain/subscription"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// UsageService meters plan resources against the user's active
// subscription. It satisfies the listing quota port of the catalog
// service and the SMS credit check of the messaging pipeline.
type UsageService struct {
	subRepo subscription.SubscriptionRepository
	logger  *zap.Logger
}

// NewUsageService creates a new usage service
func NewUsageService(subRepo subscription.SubscriptionRepository, logger *zap.Logger) *UsageService {
	return &UsageService{subRepo: subRepo, logger: logger}
}

// ConsumeListing charges one product listing slot
func (s *UsageService) ConsumeListing(ctx context.Context, sellerID uuid.UUID) error {
	return s.consume(ctx, sellerID, subscription.UsageProductListings, 1)
}

// ReleaseListing gives back a listing slot, for example after a
// listing is discontinued. Sellers without a subscription owe nothing.
func (s *UsageService) ReleaseListing(ctx context.Context, sellerID uuid.UUID) error {
	return s.release(ctx, sellerID, subscription.UsageProductListings, 1)
}

// ConsumeSMSCredits charges outbound SMS against the plan allowance
func (s *UsageService) ConsumeSMSCredits(ctx context.Context, userID uuid.UUID, amount int) error {
	return s.consume(ctx, userID, subscription.UsageSMSCredits, amount)
}

// Remaining reports what is left of a metered resource, -1 for unlimited
func (s *UsageService) Remaining(ctx context.Context, userID uuid.UUID, kind subscription.UsageKind) (int, error) {
	sub, err := s.subRepo.FindActiveByUser(ctx, userID)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return 0, nil
		}
		return 0, err
	}
	return sub.Remaining(kind), nil
}

func (s *UsageService) consume(ctx context.Context, userID uuid.UUID, kind subscription.UsageKind, amount int) error {
	sub, err := s.subRepo.FindActiveByUser(ctx, userID)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return shared.ErrQuotaExceeded
		}
		return err
	}
	if !sub.IsActive(time.Now()) {
		return shared.ErrQuotaExceeded
	}

	if err := sub.Consume(kind, amount); err != nil {
		return err
	}
	if err := s.subRepo.Save(ctx, sub); err != nil {
		s.logger.Error("Failed to save subscription usage",
			zap.String("user_id", userID.String()),
			zap.String("kind", string(kind)),
			zap.Error(err))
		return shared.NewDomainError("INTERNAL_ERROR", "Failed to record usage")
	}
	return nil
}

func (s *UsageService) release(ctx context.Context, userID uuid.UUID, kind subscription.UsageKind, amount int) error {
	sub, err := s.subRepo.FindActiveByUser(ctx, userID)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil
		}
		return err
	}
	if err := sub.ReleaseUsage(kind, amount); err != nil {
		return err
	}
	return s.subRepo.Save(ctx, sub)
}
