package payment

import (
	"context"

	"github.com/agriconnect/backend/internal/domain/payment"
	"github.com/agriconnect/backend/internal/domain/shared"
	"github.com/agriconnect/backend/internal/domain/shared/valueobject"
	"github.com/agriconnect/backend/internal/domain/trade"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// DisputeService handles buyer claims against escrowed orders. Raising
// a dispute freezes escrow releases until a moderator settles it.
type DisputeService struct {
	disputeRepo    payment.DisputeRepository
	escrowRepo     payment.EscrowRepository
	txRepo         payment.TransactionRepository
	orderRepo      trade.OrderRepository
	refGen         ReferenceGenerator
	eventPublisher shared.EventPublisher
	logger         *zap.Logger
}

// NewDisputeService creates a new dispute service
func NewDisputeService(
	disputeRepo payment.DisputeRepository,
	escrowRepo payment.EscrowRepository,
	txRepo payment.TransactionRepository,
	orderRepo trade.OrderRepository,
	refGen ReferenceGenerator,
	logger *zap.Logger,
) *DisputeService {
	return &DisputeService{
		disputeRepo: disputeRepo,
		escrowRepo:  escrowRepo,
		txRepo:      txRepo,
		orderRepo:   orderRepo,
		refGen:      refGen,
		logger:      logger,
	}
}

// SetEventPublisher sets the event publisher for dispute events
func (s *DisputeService) SetEventPublisher(publisher shared.EventPublisher) {
	s.eventPublisher = publisher
}

// Raise opens a dispute on the order's escrow account. Only the buyer
// can raise one, and only while funds are still held.
func (s *DisputeService) Raise(ctx context.Context, buyerID, orderID uuid.UUID, req RaiseDisputeRequest) (*DisputeResponse, error) {
	account, err := s.escrowRepo.FindByOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if account.BuyerID != buyerID {
		return nil, shared.ErrForbidden
	}

	if err := account.Dispute(); err != nil {
		return nil, err
	}

	dispute, err := payment.NewDispute(account.ID, orderID, buyerID, payment.DisputeReason(req.Reason), req.Description)
	if err != nil {
		return nil, err
	}

	if err := s.escrowRepo.Save(ctx, account); err != nil {
		s.logger.Error("Failed to freeze escrow for dispute", zap.Error(err))
		return nil, shared.NewDomainError("INTERNAL_ERROR", "Failed to raise dispute")
	}
	if err := s.disputeRepo.Save(ctx, dispute); err != nil {
		s.logger.Error("Failed to save dispute", zap.Error(err))
		return nil, shared.NewDomainError("INTERNAL_ERROR", "Failed to raise dispute")
	}

	s.markOrderDisputed(ctx, orderID)
	s.publishEvents(ctx, dispute)
	s.publishEvents(ctx, account)

	s.logger.Info("Dispute raised",
		zap.String("order_id", orderID.String()),
		zap.String("reason", req.Reason))

	response := ToDisputeResponse(dispute)
	return &response, nil
}

// StartReview moves an open dispute to moderator review
func (s *DisputeService) StartReview(ctx context.Context, disputeID uuid.UUID) (*DisputeResponse, error) {
	dispute, err := s.disputeRepo.FindByID(ctx, disputeID)
	if err != nil {
		return nil, err
	}
	if err := dispute.StartReview(); err != nil {
		return nil, err
	}
	if err := s.disputeRepo.Save(ctx, dispute); err != nil {
		return nil, shared.NewDomainError("INTERNAL_ERROR", "Failed to update dispute")
	}
	response := ToDisputeResponse(dispute)
	return &response, nil
}

// Resolve settles a dispute. In the buyer's favor the held funds are
// refunded up to the requested amount; in the seller's favor the
// escrow account is unfrozen and releases continue.
func (s *DisputeService) Resolve(ctx context.Context, moderatorID, disputeID uuid.UUID, req ResolveDisputeRequest) (*DisputeResponse, error) {
	dispute, err := s.disputeRepo.FindByID(ctx, disputeID)
	if err != nil {
		return nil, err
	}
	account, err := s.escrowRepo.FindByID(ctx, dispute.EscrowAccountID)
	if err != nil {
		return nil, err
	}

	if req.InFavorOfBuyer {
		refund := req.RefundAmount
		if refund.IsZero() {
			refund = account.HeldAmount()
		}
		if err := dispute.ResolveForBuyer(moderatorID, refund, req.Resolution); err != nil {
			return nil, err
		}
		if err := account.Refund(refund); err != nil {
			return nil, err
		}
		s.recordRefund(ctx, account, refund)
		s.refundOrder(ctx, dispute.OrderID, req.Resolution, moderatorID)
	} else {
		if err := dispute.ResolveForSeller(moderatorID, req.Resolution); err != nil {
			return nil, err
		}
		if err := account.ResolveDispute(); err != nil {
			return nil, err
		}
	}

	if err := s.escrowRepo.Save(ctx, account); err != nil {
		s.logger.Error("Failed to save escrow after dispute resolution", zap.Error(err))
		return nil, shared.NewDomainError("INTERNAL_ERROR", "Failed to resolve dispute")
	}
	if err := s.disputeRepo.Save(ctx, dispute); err != nil {
		s.logger.Error("Failed to save resolved dispute", zap.Error(err))
		return nil, shared.NewDomainError("INTERNAL_ERROR", "Failed to resolve dispute")
	}

	s.publishEvents(ctx, account)

	s.logger.Info("Dispute resolved",
		zap.String("dispute_id", disputeID.String()),
		zap.Bool("in_favor_of_buyer", req.InFavorOfBuyer))

	response := ToDisputeResponse(dispute)
	return &response, nil
}

// Close marks a resolved dispute fully settled
func (s *DisputeService) Close(ctx context.Context, disputeID uuid.UUID) (*DisputeResponse, error) {
	dispute, err := s.disputeRepo.FindByID(ctx, disputeID)
	if err != nil {
		return nil, err
	}
	if err := dispute.Close(); err != nil {
		return nil, err
	}
	if err := s.disputeRepo.Save(ctx, dispute); err != nil {
		return nil, shared.NewDomainError("INTERNAL_ERROR", "Failed to close dispute")
	}
	response := ToDisputeResponse(dispute)
	return &response, nil
}

// Get retrieves a single dispute
func (s *DisputeService) Get(ctx context.Context, disputeID uuid.UUID) (*DisputeResponse, error) {
	dispute, err := s.disputeRepo.FindByID(ctx, disputeID)
	if err != nil {
		return nil, err
	}
	response := ToDisputeResponse(dispute)
	return &response, nil
}

// ListByStatus lists disputes in a given state for the moderation queue
func (s *DisputeService) ListByStatus(ctx context.Context, status string, filter shared.Filter) ([]DisputeResponse, error) {
	disputes, err := s.disputeRepo.FindByStatus(ctx, payment.DisputeStatus(status), filter)
	if err != nil {
		return nil, err
	}
	responses := make([]DisputeResponse, len(disputes))
	for i := range disputes {
		responses[i] = ToDisputeResponse(&disputes[i])
	}
	return responses, nil
}

// markOrderDisputed flags the order's payment status, best effort
func (s *DisputeService) markOrderDisputed(ctx context.Context, orderID uuid.UUID) {
	order, err := s.orderRepo.FindByID(ctx, orderID)
	if err != nil {
		s.logger.Warn("Failed to load order for dispute flag", zap.Error(err))
		return
	}
	if err := order.MarkDisputed(); err != nil {
		s.logger.Warn("Failed to flag order as disputed", zap.Error(err))
		return
	}
	if err := s.orderRepo.Save(ctx, order); err != nil {
		s.logger.Warn("Failed to save disputed order", zap.Error(err))
	}
}

// refundOrder records the refund on the order itself, best effort
func (s *DisputeService) refundOrder(ctx context.Context, orderID uuid.UUID, reason string, moderatorID uuid.UUID) {
	order, err := s.orderRepo.FindByID(ctx, orderID)
	if err != nil {
		s.logger.Warn("Failed to load order for refund", zap.Error(err))
		return
	}
	if err := order.Refund(reason, &moderatorID); err != nil {
		s.logger.Warn("Failed to refund order", zap.Error(err))
		return
	}
	if err := s.orderRepo.Save(ctx, order); err != nil {
		s.logger.Warn("Failed to save refunded order", zap.Error(err))
	}
}

// recordRefund writes the refund transaction toward the buyer
func (s *DisputeService) recordRefund(ctx context.Context, account *payment.EscrowAccount, amount decimal.Decimal) {
	original := s.findPaymentTransaction(ctx, account.OrderID)
	if original == nil {
		s.logger.Warn("No payment transaction found for refund",
			zap.String("order_id", account.OrderID.String()))
		return
	}

	money, err := valueobject.NewMoney(amount, account.Currency)
	if err != nil {
		return
	}

	refund, err := payment.NewTransaction(s.refGen.Next(), payment.TransactionTypeRefund, account.BuyerID, original.GatewayCode, money)
	if err != nil {
		s.logger.Error("Failed to build refund transaction", zap.Error(err))
		return
	}
	refund.WithOrder(account.OrderID)

	if err := refund.MarkProcessing(original.GatewayReference); err == nil {
		_ = refund.MarkSuccess("")
	}

	if err := s.txRepo.Save(ctx, refund); err != nil {
		s.logger.Error("Failed to save refund transaction",
			zap.String("order_id", account.OrderID.String()),
			zap.Error(err))
	}
}

func (s *DisputeService) findPaymentTransaction(ctx context.Context, orderID uuid.UUID) *payment.Transaction {
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

func (s *DisputeService) publishEvents(ctx context.Context, aggregate interface {
	GetDomainEvents() []shared.DomainEvent
	ClearDomainEvents()
}) {
	if s.eventPublisher == nil {
		aggregate.ClearDomainEvents()
		return
	}
	for _, event := range aggregate.GetDomainEvents() {
		if err := s.eventPublisher.Publish(ctx, event); err != nil {
			s.logger.Error("Failed to publish dispute event",
				zap.String("event_type", event.EventType()),
				zap.Error(err))
		}
	}
	aggregate.ClearDomainEvents()
}
