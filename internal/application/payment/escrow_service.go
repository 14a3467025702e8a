package payment

import (
	"context"
	"errors"
	"time"

	"github.com/agriconnect/backend/internal/domain/payment"
	"github.com/agriconnect/backend/internal/domain/shared"
	"github.com/agriconnect/backend/internal/domain/shared/valueobject"
	"github.com/agriconnect/backend/internal/domain/trade"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// EscrowService holds buyer funds per order and releases them in
// milestone stages as fulfilment progresses
type EscrowService struct {
	escrowRepo     payment.EscrowRepository
	txRepo         payment.TransactionRepository
	orderRepo      trade.OrderRepository
	refGen         ReferenceGenerator
	eventPublisher shared.EventPublisher
	logger         *zap.Logger
}

// NewEscrowService creates a new escrow service
func NewEscrowService(
	escrowRepo payment.EscrowRepository,
	txRepo payment.TransactionRepository,
	orderRepo trade.OrderRepository,
	refGen ReferenceGenerator,
	logger *zap.Logger,
) *EscrowService {
	return &EscrowService{
		escrowRepo: escrowRepo,
		txRepo:     txRepo,
		orderRepo:  orderRepo,
		refGen:     refGen,
		logger:     logger,
	}
}

// SetEventPublisher sets the event publisher for escrow events
func (s *EscrowService) SetEventPublisher(publisher shared.EventPublisher) {
	s.eventPublisher = publisher
}

// OpenForOrder creates and funds the escrow account for a paid order.
// Calling it twice for the same order returns the existing account.
func (s *EscrowService) OpenForOrder(ctx context.Context, orderID uuid.UUID) (*EscrowResponse, error) {
	existing, err := s.escrowRepo.FindByOrder(ctx, orderID)
	if err != nil && !errors.Is(err, shared.ErrNotFound) {
		return nil, err
	}
	if existing != nil {
		response := ToEscrowResponse(existing)
		return &response, nil
	}

	order, err := s.orderRepo.FindByID(ctx, orderID)
	if err != nil {
		return nil, err
	}

	account, err := payment.NewEscrowAccount(order.ID, order.BuyerID, order.SellerID, order.GetTotalMoney(), nil)
	if err != nil {
		return nil, err
	}
	if err := account.Fund(); err != nil {
		return nil, err
	}

	if err := s.escrowRepo.Save(ctx, account); err != nil {
		s.logger.Error("Failed to save escrow account", zap.Error(err))
		return nil, shared.NewDomainError("INTERNAL_ERROR", "Failed to open escrow")
	}

	s.publishEvents(ctx, account)

	s.logger.Info("Escrow funded",
		zap.String("order_id", orderID.String()),
		zap.String("amount", account.TotalAmount.String()),
		zap.String("currency", string(account.Currency)))

	response := ToEscrowResponse(account)
	return &response, nil
}

// GetByOrder retrieves the escrow account for an order
func (s *EscrowService) GetByOrder(ctx context.Context, orderID, actorID uuid.UUID) (*EscrowResponse, error) {
	account, err := s.escrowRepo.FindByOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if account.BuyerID != actorID && account.SellerID != actorID {
		return nil, shared.ErrForbidden
	}
	response := ToEscrowResponse(account)
	return &response, nil
}

// ReleaseMilestone pays out one milestone's share to the seller
func (s *EscrowService) ReleaseMilestone(ctx context.Context, orderID uuid.UUID, milestone payment.MilestoneType) (*EscrowResponse, error) {
	account, err := s.escrowRepo.FindByOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}

	released, err := account.ReleaseMilestone(milestone)
	if err != nil {
		return nil, err
	}

	if err := s.escrowRepo.Save(ctx, account); err != nil {
		s.logger.Error("Failed to save escrow release", zap.Error(err))
		return nil, shared.NewDomainError("INTERNAL_ERROR", "Failed to release escrow")
	}

	s.recordPayout(ctx, account, released)
	s.publishEvents(ctx, account)

	s.logger.Info("Escrow milestone released",
		zap.String("order_id", orderID.String()),
		zap.String("milestone", string(milestone)),
		zap.String("amount", released.Amount().String()))

	response := ToEscrowResponse(account)
	return &response, nil
}

// MarkDelivered starts the auto-release clock for the order's escrow
func (s *EscrowService) MarkDelivered(ctx context.Context, orderID uuid.UUID, at time.Time) error {
	account, err := s.escrowRepo.FindByOrder(ctx, orderID)
	if err != nil {
		return err
	}
	if err := account.MarkDelivered(at); err != nil {
		return err
	}
	return s.escrowRepo.Save(ctx, account)
}

// ReleaseAll releases every outstanding milestone at once, e.g. when
// the buyer confirms quality early
func (s *EscrowService) ReleaseAll(ctx context.Context, orderID uuid.UUID) (*EscrowResponse, error) {
	account, err := s.escrowRepo.FindByOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}

	released, err := account.ReleaseAll()
	if err != nil {
		return nil, err
	}

	if err := s.escrowRepo.Save(ctx, account); err != nil {
		return nil, shared.NewDomainError("INTERNAL_ERROR", "Failed to release escrow")
	}

	s.recordPayout(ctx, account, released)
	s.publishEvents(ctx, account)

	response := ToEscrowResponse(account)
	return &response, nil
}

// AutoRelease settles escrow accounts whose delivery confirmation
// window has lapsed without a dispute. Intended to run on a schedule.
func (s *EscrowService) AutoRelease(ctx context.Context, limit int) (int, error) {
	due, err := s.escrowRepo.FindDueForAutoRelease(ctx, time.Now(), limit)
	if err != nil {
		return 0, err
	}

	released := 0
	for i := range due {
		account := &due[i]
		if !account.DueForAutoRelease(time.Now()) {
			continue
		}
		amount, err := account.ReleaseAll()
		if err != nil {
			s.logger.Warn("Auto-release failed",
				zap.String("order_id", account.OrderID.String()),
				zap.Error(err))
			continue
		}
		if err := s.escrowRepo.Save(ctx, account); err != nil {
			s.logger.Error("Failed to save auto-released escrow",
				zap.String("order_id", account.OrderID.String()),
				zap.Error(err))
			continue
		}
		s.recordPayout(ctx, account, amount)
		s.publishEvents(ctx, account)
		released++
	}

	if released > 0 {
		s.logger.Info("Escrow accounts auto-released", zap.Int("count", released))
	}
	return released, nil
}

// recordPayout writes the escrow-release transaction toward the seller.
// The gateway is inherited from the original payment transaction. A
// missing payout record is logged but never blocks the release itself.
func (s *EscrowService) recordPayout(ctx context.Context, account *payment.EscrowAccount, released valueobject.Money) {
	original := s.findPaymentTransaction(ctx, account.OrderID)
	if original == nil {
		s.logger.Warn("No payment transaction found for escrow payout",
			zap.String("order_id", account.OrderID.String()))
		return
	}

	payout, err := payment.NewTransaction(s.refGen.Next(), payment.TransactionTypeEscrowRelease, account.SellerID, original.GatewayCode, released)
	if err != nil {
		s.logger.Error("Failed to build escrow payout transaction", zap.Error(err))
		return
	}
	payout.WithOrder(account.OrderID)

	if err := payout.MarkProcessing(original.GatewayReference); err == nil {
		_ = payout.MarkSuccess("")
	}

	if err := s.txRepo.Save(ctx, payout); err != nil {
		s.logger.Error("Failed to save escrow payout transaction",
			zap.String("order_id", account.OrderID.String()),
			zap.Error(err))
	}
}

// findPaymentTransaction finds the successful inbound payment for an order
func (s *EscrowService) findPaymentTransaction(ctx context.Context, orderID uuid.UUID) *payment.Transaction {
	txs, err := s.txRepo.FindByOrder(ctx, orderID)
	if err != nil {
		return nil
	}
	for i := range txs {
		if txs[i].Type == payment.TransactionTypePayment && txs[i].Status == payment.TransactionStatusSuccess {
			return &txs[i]
		}
	}
	return nil
}

func (s *EscrowService) publishEvents(ctx context.Context, account *payment.EscrowAccount) {
	if s.eventPublisher == nil {
		account.ClearDomainEvents()
		return
	}
	for _, event := range account.GetDomainEvents() {
		if err := s.eventPublisher.Publish(ctx, event); err != nil {
			s.logger.Error("Failed to publish escrow event",
				zap.String("event_type", event.EventType()),
				zap.Error(err))
		}
	}
	account.ClearDomainEvents()
}
