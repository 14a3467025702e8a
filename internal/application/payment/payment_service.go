package payment

import (
	"context"
	"encoding/json"
	"errors"

	tradeapp "github.com/agriconnect/backend/internal/application/trade"
	"github.com/agriconnect/backend/internal/domain/payment"
	"github.com/agriconnect/backend/internal/domain/shared"
	"github.com/agriconnect/backend/internal/domain/trade"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ReferenceGenerator issues platform-wide unique transaction references
type ReferenceGenerator interface {
	Next() string
}

// CheckoutIntent is the gateway's handoff for a hosted checkout
type CheckoutIntent struct {
	GatewayReference string
	CheckoutURL      string
}

// GatewayClient talks to one payment gateway
type GatewayClient interface {
	// Initiate registers the transaction with the gateway and returns
	// the checkout handoff
	Initiate(ctx context.Context, tx *payment.Transaction, callbackURL string) (CheckoutIntent, error)
	// VerifySignature checks a webhook's authenticity
	VerifySignature(payload []byte, signature string) error
}

// OrderPaymentMarker flips order payment state after gateway confirmation
type OrderPaymentMarker interface {
	MarkPaid(ctx context.Context, orderID uuid.UUID, escrowed bool) (*tradeapp.OrderResponse, error)
}

// EscrowOpener creates and funds the escrow account for a paid order
type EscrowOpener interface {
	OpenForOrder(ctx context.Context, orderID uuid.UUID) (*EscrowResponse, error)
}

// webhookEvent is the common shape gateways post for payment outcomes
type webhookEvent struct {
	Reference        string `json:"reference"`
	GatewayReference string `json:"gateway_reference"`
	Reason           string `json:"reason"`
}

// PaymentService coordinates gateway checkouts and webhook settlement
type PaymentService struct {
	txRepo         payment.TransactionRepository
	gatewayRepo    payment.GatewayRepository
	webhookRepo    payment.WebhookRepository
	orderRepo      trade.OrderRepository
	clients        map[payment.GatewayCode]GatewayClient
	refGen         ReferenceGenerator
	orderMarker    OrderPaymentMarker
	escrowOpener   EscrowOpener
	eventPublisher shared.EventPublisher
	logger         *zap.Logger
}

// NewPaymentService creates a new payment service
func NewPaymentService(
	txRepo payment.TransactionRepository,
	gatewayRepo payment.GatewayRepository,
	webhookRepo payment.WebhookRepository,
	orderRepo trade.OrderRepository,
	clients map[payment.GatewayCode]GatewayClient,
	refGen ReferenceGenerator,
	orderMarker OrderPaymentMarker,
	escrowOpener EscrowOpener,
	logger *zap.Logger,
) *PaymentService {
	return &PaymentService{
		txRepo:       txRepo,
		gatewayRepo:  gatewayRepo,
		webhookRepo:  webhookRepo,
		orderRepo:    orderRepo,
		clients:      clients,
		refGen:       refGen,
		orderMarker:  orderMarker,
		escrowOpener: escrowOpener,
		logger:       logger,
	}
}

// SetEventPublisher sets the event publisher for transaction events
func (s *PaymentService) SetEventPublisher(publisher shared.EventPublisher) {
	s.eventPublisher = publisher
}

// Initiate starts a gateway checkout for a confirmed, unpaid order
func (s *PaymentService) Initiate(ctx context.Context, buyerID uuid.UUID, req InitiatePaymentRequest) (*InitiatePaymentResponse, error) {
	order, err := s.orderRepo.FindByID(ctx, req.OrderID)
	if err != nil {
		return nil, err
	}
	if order.BuyerID != buyerID {
		return nil, shared.ErrForbidden
	}
	if order.Status != trade.OrderStatusConfirmed {
		return nil, shared.NewDomainError("ORDER_NOT_PAYABLE", "Only confirmed orders can be paid")
	}
	if order.PaymentStatus != trade.PaymentStatusPending {
		return nil, shared.NewDomainError("ALREADY_PAID", "Order payment has already been made")
	}

	gatewayCode := payment.GatewayCode(req.GatewayCode)
	gateway, err := s.gatewayRepo.FindByCode(ctx, gatewayCode)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, shared.NewDomainError("GATEWAY_NOT_FOUND", "Payment gateway is not configured")
		}
		return nil, err
	}
	if !gateway.Active {
		return nil, shared.NewDomainError("GATEWAY_INACTIVE", "Payment gateway is not available")
	}
	if !gateway.SupportsCurrency(order.Currency) {
		return nil, shared.NewDomainError("CURRENCY_UNSUPPORTED", "Gateway does not settle in the order currency")
	}
	method := payment.PaymentMethod(req.Method)
	if !gateway.SupportsMethod(method) {
		return nil, shared.NewDomainError("METHOD_UNSUPPORTED", "Gateway does not support this payment method")
	}

	client, ok := s.clients[gatewayCode]
	if !ok {
		return nil, shared.NewDomainError("GATEWAY_NOT_FOUND", "Payment gateway is not configured")
	}

	tx, err := payment.NewTransaction(s.refGen.Next(), payment.TransactionTypePayment, buyerID, gatewayCode, order.GetTotalMoney())
	if err != nil {
		return nil, err
	}
	tx.WithOrder(order.ID).WithMethod(method)
	if err := tx.SetFee(gateway.FeeFor(order.GetTotalMoney()).Amount()); err != nil {
		return nil, err
	}

	intent, err := client.Initiate(ctx, tx, req.CallbackURL)
	if err != nil {
		s.logger.Error("Gateway initiation failed",
			zap.String("gateway", req.GatewayCode),
			zap.String("reference", tx.Reference),
			zap.Error(err))
		return nil, shared.NewDomainError("GATEWAY_ERROR", "Payment could not be initiated")
	}
	if err := tx.MarkProcessing(intent.GatewayReference); err != nil {
		return nil, err
	}

	if err := s.txRepo.Save(ctx, tx); err != nil {
		s.logger.Error("Failed to save transaction", zap.Error(err))
		return nil, shared.NewDomainError("INTERNAL_ERROR", "Payment could not be initiated")
	}

	s.publishEvents(ctx, tx)

	s.logger.Info("Payment initiated",
		zap.String("reference", tx.Reference),
		zap.String("order_id", order.ID.String()),
		zap.String("gateway", req.GatewayCode))

	return &InitiatePaymentResponse{
		Transaction: ToTransactionResponse(tx),
		CheckoutURL: intent.CheckoutURL,
	}, nil
}

// HandleWebhook processes a gateway callback exactly once. Repeat
// deliveries of the same gateway event are acknowledged without
// reprocessing.
func (s *PaymentService) HandleWebhook(ctx context.Context, gatewayCode payment.GatewayCode, eventID, eventType string, payload []byte, signature string) error {
	client, ok := s.clients[gatewayCode]
	if !ok {
		return shared.NewDomainError("GATEWAY_NOT_FOUND", "Payment gateway is not configured")
	}
	if err := client.VerifySignature(payload, signature); err != nil {
		s.logger.Warn("Webhook signature rejected",
			zap.String("gateway", string(gatewayCode)),
			zap.String("event_id", eventID))
		return shared.NewDomainError("INVALID_SIGNATURE", "Webhook signature verification failed")
	}

	existing, err := s.webhookRepo.FindByEventID(ctx, gatewayCode, eventID)
	if err != nil && !errors.Is(err, shared.ErrNotFound) {
		return err
	}
	if existing != nil && existing.Status != payment.WebhookStatusFailed {
		s.logger.Debug("Webhook already handled",
			zap.String("gateway", string(gatewayCode)),
			zap.String("event_id", eventID))
		return nil
	}

	webhook := existing
	if webhook == nil {
		webhook, err = payment.NewPaymentWebhook(gatewayCode, eventID, eventType, string(payload))
		if err != nil {
			return err
		}
		if err := s.webhookRepo.Save(ctx, webhook); err != nil {
			return err
		}
	}

	if err := s.process(ctx, webhook); err != nil {
		webhook.MarkFailed(err.Error())
		if saveErr := s.webhookRepo.Save(ctx, webhook); saveErr != nil {
			s.logger.Error("Failed to record webhook failure", zap.Error(saveErr))
		}
		return err
	}

	return s.webhookRepo.Save(ctx, webhook)
}

// RetryFailedWebhooks reprocesses webhooks whose handlers errored.
// Intended to run on a schedule.
func (s *PaymentService) RetryFailedWebhooks(ctx context.Context, limit int) (int, error) {
	failed, err := s.webhookRepo.FindFailed(ctx, limit)
	if err != nil {
		return 0, err
	}

	recovered := 0
	for i := range failed {
		webhook := &failed[i]
		if err := s.process(ctx, webhook); err != nil {
			webhook.MarkFailed(err.Error())
			_ = s.webhookRepo.Save(ctx, webhook)
			continue
		}
		if err := s.webhookRepo.Save(ctx, webhook); err != nil {
			s.logger.Error("Failed to save retried webhook", zap.Error(err))
			continue
		}
		recovered++
	}

	if recovered > 0 {
		s.logger.Info("Recovered failed webhooks", zap.Int("count", recovered))
	}
	return recovered, nil
}

// GetTransaction retrieves one transaction visible to its owner
func (s *PaymentService) GetTransaction(ctx context.Context, txID, userID uuid.UUID) (*TransactionResponse, error) {
	tx, err := s.txRepo.FindByID(ctx, txID)
	if err != nil {
		return nil, err
	}
	if tx.UserID != userID {
		return nil, shared.ErrForbidden
	}
	response := ToTransactionResponse(tx)
	return &response, nil
}

// ListByUser lists a user's transactions
func (s *PaymentService) ListByUser(ctx context.Context, userID uuid.UUID, page, pageSize int) ([]TransactionResponse, error) {
	f := shared.Filter{Page: page, PageSize: pageSize, OrderBy: "created_at", OrderDir: "desc"}
	if f.Page <= 0 {
		f.Page = 1
	}
	if f.PageSize <= 0 || f.PageSize > 100 {
		f.PageSize = 20
	}
	txs, err := s.txRepo.FindByUser(ctx, userID, f)
	if err != nil {
		return nil, err
	}
	return ToTransactionResponses(txs), nil
}

// process settles the transaction named by the webhook payload
func (s *PaymentService) process(ctx context.Context, webhook *payment.PaymentWebhook) error {
	var event webhookEvent
	if err := json.Unmarshal([]byte(webhook.Payload), &event); err != nil {
		return shared.NewDomainError("INVALID_PAYLOAD", "Webhook payload could not be parsed")
	}
	if event.Reference == "" {
		return shared.NewDomainError("INVALID_PAYLOAD", "Webhook payload is missing the transaction reference")
	}

	tx, err := s.txRepo.FindByReference(ctx, event.Reference)
	if err != nil {
		return err
	}
	if tx.Status.IsFinal() {
		return webhook.MarkProcessed()
	}

	switch webhook.EventType {
	case "payment.success":
		if err := tx.MarkSuccess(webhook.Payload); err != nil {
			return err
		}
		if err := s.txRepo.Save(ctx, tx); err != nil {
			return err
		}
		s.publishEvents(ctx, tx)
		s.settleOrder(ctx, tx)

	case "payment.failed":
		if err := tx.MarkFailed(event.Reason, webhook.Payload); err != nil {
			return err
		}
		if err := s.txRepo.Save(ctx, tx); err != nil {
			return err
		}
		s.publishEvents(ctx, tx)

	default:
		webhook.MarkIgnored()
		return nil
	}

	return webhook.MarkProcessed()
}

// settleOrder opens escrow and flips order payment state after a
// successful payment transaction
func (s *PaymentService) settleOrder(ctx context.Context, tx *payment.Transaction) {
	if tx.Type != payment.TransactionTypePayment || tx.OrderID == nil {
		return
	}

	escrowed := false
	if _, err := s.escrowOpener.OpenForOrder(ctx, *tx.OrderID); err != nil {
		s.logger.Error("Failed to open escrow for paid order",
			zap.String("order_id", tx.OrderID.String()),
			zap.Error(err))
	} else {
		escrowed = true
	}

	if _, err := s.orderMarker.MarkPaid(ctx, *tx.OrderID, escrowed); err != nil {
		s.logger.Error("Failed to mark order paid",
			zap.String("order_id", tx.OrderID.String()),
			zap.String("reference", tx.Reference),
			zap.Error(err))
	}
}

func (s *PaymentService) publishEvents(ctx context.Context, tx *payment.Transaction) {
	if s.eventPublisher == nil {
		tx.ClearDomainEvents()
		return
	}
	for _, event := range tx.GetDomainEvents() {
		if err := s.eventPublisher.Publish(ctx, event); err != nil {
			s.logger.Error("Failed to publish transaction event",
				zap.String("event_type", event.EventType()),
				zap.Error(err))
		}
	}
	tx.ClearDomainEvents()
}
