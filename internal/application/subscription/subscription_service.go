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

// InvoiceDueDays is how long a subscriber has to settle a renewal invoice
const InvoiceDueDays = 7

// RenewalNoticeDays is how far ahead of period end renewal invoices are issued
const RenewalNoticeDays = 3

// SubscriptionService handles the subscriber side: starting plans,
// metering usage, billing renewals and closing lapsed subscriptions.
type SubscriptionService struct {
	subRepo        subscription.SubscriptionRepository
	planRepo       subscription.PlanRepository
	invoiceRepo    subscription.InvoiceRepository
	eventPublisher shared.EventPublisher
	logger         *zap.Logger
}

// NewSubscriptionService creates a new subscription service
func NewSubscriptionService(
	subRepo subscription.SubscriptionRepository,
	planRepo subscription.PlanRepository,
	invoiceRepo subscription.InvoiceRepository,
	logger *zap.Logger,
) *SubscriptionService {
	return &SubscriptionService{
		subRepo:     subRepo,
		planRepo:    planRepo,
		invoiceRepo: invoiceRepo,
		logger:      logger,
	}
}

// SetEventPublisher sets the event publisher for subscription events
func (s *SubscriptionService) SetEventPublisher(publisher shared.EventPublisher) {
	s.eventPublisher = publisher
}

// Subscribe starts a subscription on a plan. Paid plans get a pending
// invoice for the first period; free plans start with nothing owed.
func (s *SubscriptionService) Subscribe(ctx context.Context, userID uuid.UUID, req SubscribeRequest) (*SubscriptionResponse, error) {
	existing, err := s.subRepo.FindActiveByUser(ctx, userID)
	if err != nil && !errors.Is(err, shared.ErrNotFound) {
		return nil, err
	}
	if existing != nil && existing.IsActive(time.Now()) {
		return nil, shared.NewDomainError("ALREADY_SUBSCRIBED", "User already has an active subscription")
	}

	plan, err := s.planRepo.FindByID(ctx, req.PlanID)
	if err != nil {
		return nil, err
	}

	sub, err := subscription.NewUserSubscription(userID, plan, time.Now())
	if err != nil {
		return nil, err
	}

	if err := s.subRepo.Save(ctx, sub); err != nil {
		s.logger.Error("Failed to save subscription", zap.Error(err))
		return nil, shared.NewDomainError("INTERNAL_ERROR", "Failed to start subscription")
	}

	if plan.Price.IsPositive() {
		if err := s.issueInvoice(ctx, sub, plan); err != nil {
			s.logger.Error("Failed to issue first invoice",
				zap.String("subscription_id", sub.ID.String()),
				zap.Error(err))
		}
	}

	s.publishEvents(ctx, sub)

	s.logger.Info("Subscription started",
		zap.String("user_id", userID.String()),
		zap.String("plan", plan.Name))

	response := ToSubscriptionResponse(sub)
	return &response, nil
}

// Cancel turns off auto-renew, access continues until period end
func (s *SubscriptionService) Cancel(ctx context.Context, userID uuid.UUID, req CancelSubscriptionRequest) (*SubscriptionResponse, error) {
	sub, err := s.subRepo.FindActiveByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	if err := sub.Cancel(req.Reason); err != nil {
		return nil, err
	}
	if err := s.subRepo.Save(ctx, sub); err != nil {
		s.logger.Error("Failed to save cancelled subscription", zap.Error(err))
		return nil, shared.NewDomainError("INTERNAL_ERROR", "Failed to cancel subscription")
	}

	s.publishEvents(ctx, sub)

	response := ToSubscriptionResponse(sub)
	return &response, nil
}

// Current returns the user's active subscription
func (s *SubscriptionService) Current(ctx context.Context, userID uuid.UUID) (*SubscriptionResponse, error) {
	sub, err := s.subRepo.FindActiveByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	response := ToSubscriptionResponse(sub)
	return &response, nil
}

// History lists a user's past and present subscriptions
func (s *SubscriptionService) History(ctx context.Context, userID uuid.UUID, filter shared.Filter) ([]SubscriptionResponse, error) {
	if filter.Page <= 0 {
		filter.Page = 1
	}
	if filter.PageSize <= 0 || filter.PageSize > 100 {
		filter.PageSize = 20
	}
	filter.OrderBy = "created_at"
	filter.OrderDir = "desc"

	subs, err := s.subRepo.FindByUser(ctx, userID, filter)
	if err != nil {
		return nil, err
	}
	responses := make([]SubscriptionResponse, len(subs))
	for i := range subs {
		responses[i] = ToSubscriptionResponse(&subs[i])
	}
	return responses, nil
}

// ListInvoices lists the invoices of the user's subscription
func (s *SubscriptionService) ListInvoices(ctx context.Context, userID, subscriptionID uuid.UUID) ([]InvoiceResponse, error) {
	sub, err := s.subRepo.FindByID(ctx, subscriptionID)
	if err != nil {
		return nil, err
	}
	if sub.UserID != userID {
		return nil, shared.ErrForbidden
	}
	invoices, err := s.invoiceRepo.FindBySubscription(ctx, subscriptionID)
	if err != nil {
		return nil, err
	}
	return ToInvoiceResponses(invoices), nil
}

// MarkInvoicePaid settles an invoice with the transaction that paid it.
// A past-due subscription renews once its invoice settles.
func (s *SubscriptionService) MarkInvoicePaid(ctx context.Context, invoiceID, transactionID uuid.UUID) (*InvoiceResponse, error) {
	invoice, err := s.invoiceRepo.FindByID(ctx, invoiceID)
	if err != nil {
		return nil, err
	}
	if err := invoice.MarkPaid(transactionID); err != nil {
		return nil, err
	}
	if err := s.invoiceRepo.Save(ctx, invoice); err != nil {
		s.logger.Error("Failed to save paid invoice", zap.Error(err))
		return nil, shared.NewDomainError("INTERNAL_ERROR", "Failed to settle invoice")
	}

	sub, err := s.subRepo.FindByID(ctx, invoice.SubscriptionID)
	if err == nil && sub.Status == subscription.SubscriptionStatusPastDue {
		if err := sub.Renew(); err != nil {
			s.logger.Warn("Failed to renew past-due subscription",
				zap.String("subscription_id", sub.ID.String()),
				zap.Error(err))
		} else if err := s.subRepo.Save(ctx, sub); err != nil {
			s.logger.Error("Failed to save renewed subscription", zap.Error(err))
		} else {
			s.publishEvents(ctx, sub)
		}
	}

	response := ToInvoiceResponse(invoice)
	return &response, nil
}

// RenewDue advances subscriptions approaching their period end. Free
// plans roll over immediately; paid plans get a renewal invoice and go
// past due until it settles. Intended to run on a schedule.
func (s *SubscriptionService) RenewDue(ctx context.Context, limit int) (int, error) {
	due, err := s.subRepo.FindDueForRenewal(ctx, time.Now().AddDate(0, 0, RenewalNoticeDays), limit)
	if err != nil {
		return 0, err
	}

	processed := 0
	for i := range due {
		sub := &due[i]
		if !sub.AutoRenew || sub.Status != subscription.SubscriptionStatusActive {
			continue
		}
		if sub.Plan == nil {
			plan, err := s.planRepo.FindByID(ctx, sub.PlanID)
			if err != nil {
				s.logger.Warn("Renewal skipped, plan not found",
					zap.String("subscription_id", sub.ID.String()))
				continue
			}
			sub.Plan = plan
		}

		if sub.Plan.Price.IsPositive() {
			if err := s.issueInvoice(ctx, sub, sub.Plan); err != nil {
				s.logger.Error("Failed to issue renewal invoice",
					zap.String("subscription_id", sub.ID.String()),
					zap.Error(err))
				continue
			}
			if err := sub.MarkPastDue(); err != nil {
				continue
			}
		} else {
			if err := sub.Renew(); err != nil {
				continue
			}
		}

		if err := s.subRepo.Save(ctx, sub); err != nil {
			s.logger.Error("Failed to save renewing subscription", zap.Error(err))
			continue
		}
		s.publishEvents(ctx, sub)
		processed++
	}

	if processed > 0 {
		s.logger.Info("Subscriptions processed for renewal", zap.Int("count", processed))
	}
	return processed, nil
}

// ExpireLapsed closes subscriptions whose period ended without renewal.
// Intended to run on a schedule.
func (s *SubscriptionService) ExpireLapsed(ctx context.Context, limit int) (int, error) {
	lapsed, err := s.subRepo.FindLapsed(ctx, time.Now(), limit)
	if err != nil {
		return 0, err
	}

	expired := 0
	for i := range lapsed {
		sub := &lapsed[i]
		if err := sub.Expire(time.Now()); err != nil {
			continue
		}
		if err := s.subRepo.Save(ctx, sub); err != nil {
			s.logger.Error("Failed to save expired subscription", zap.Error(err))
			continue
		}
		s.publishEvents(ctx, sub)
		expired++
	}

	if expired > 0 {
		s.logger.Info("Lapsed subscriptions expired", zap.Int("count", expired))
	}
	return expired, nil
}

// issueInvoice bills one period of the subscription at the plan price
func (s *SubscriptionService) issueInvoice(ctx context.Context, sub *subscription.UserSubscription, plan *subscription.SubscriptionPlan) error {
	seq, err := s.invoiceRepo.NextSequence(ctx)
	if err != nil {
		return err
	}
	now := time.Now()
	invoice, err := subscription.NewSubscriptionInvoice(
		subscription.NewInvoiceNumber(now, seq),
		sub,
		plan.PriceMoney(),
		now.AddDate(0, 0, InvoiceDueDays),
	)
	if err != nil {
		return err
	}
	return s.invoiceRepo.Save(ctx, invoice)
}

func (s *SubscriptionService) publishEvents(ctx context.Context, sub *subscription.UserSubscription) {
	if s.eventPublisher == nil {
		sub.ClearDomainEvents()
		return
	}
	for _, event := range sub.GetDomainEvents() {
		if err := s.eventPublisher.Publish(ctx, event); err != nil {
			s.logger.Error("Failed to publish subscription event",
				zap.String("event_type", event.EventType()),
				zap.Error(err))
		}
	}
	sub.ClearDomainEvents()
}
