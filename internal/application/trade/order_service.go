package trade

import (
	"context"
	"errors"
	"time"

	"github.com/agriconnect/backend/internal/domain/catalog"
	"github.com/agriconnect/backend/internal/domain/shared"
	"github.com/agriconnect/backend/internal/domain/shared/valueobject"
	"github.com/agriconnect/backend/internal/domain/trade"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// StalePendingOrderMaxAge is how long an unpaid pending order survives
// before the expiry job cancels it.
const StalePendingOrderMaxAge = 72 * time.Hour

// OrderService coordinates the order lifecycle between buyers and sellers
type OrderService struct {
	orderRepo      trade.OrderRepository
	productRepo    catalog.ProductRepository
	shippingRepo   trade.ShippingMethodRepository
	eventPublisher shared.EventPublisher
	logger         *zap.Logger
}

// NewOrderService creates a new order service
func NewOrderService(
	orderRepo trade.OrderRepository,
	productRepo catalog.ProductRepository,
	shippingRepo trade.ShippingMethodRepository,
	logger *zap.Logger,
) *OrderService {
	return &OrderService{
		orderRepo:    orderRepo,
		productRepo:  productRepo,
		shippingRepo: shippingRepo,
		logger:       logger,
	}
}

// SetEventPublisher sets the event publisher for domain events
func (s *OrderService) SetEventPublisher(publisher shared.EventPublisher) {
	s.eventPublisher = publisher
}

// Create places a new order. All items must belong to the same seller,
// prices and names are snapshotted from the listings at order time.
func (s *OrderService) Create(ctx context.Context, buyerID uuid.UUID, req CreateOrderRequest) (*OrderResponse, error) {
	orderType := trade.OrderTypeRegular
	if req.OrderType != "" {
		orderType = trade.OrderType(req.OrderType)
	}

	productIDs := make([]uuid.UUID, len(req.Items))
	for i, item := range req.Items {
		productIDs[i] = item.ProductID
	}

	products, err := s.productRepo.FindByIDs(ctx, productIDs)
	if err != nil {
		s.logger.Error("Failed to load products for order", zap.Error(err))
		return nil, shared.NewDomainError("INTERNAL_ERROR", "Failed to create order")
	}
	productsByID := make(map[uuid.UUID]*catalog.Product, len(products))
	for i := range products {
		productsByID[products[i].ID] = &products[i]
	}

	var sellerID uuid.UUID
	for _, item := range req.Items {
		product, ok := productsByID[item.ProductID]
		if !ok {
			return nil, shared.NewDomainError("PRODUCT_NOT_FOUND", "One or more products do not exist")
		}
		if sellerID == uuid.Nil {
			sellerID = product.SellerID
		} else if sellerID != product.SellerID {
			return nil, shared.NewDomainError("MULTIPLE_SELLERS", "All items in an order must belong to the same seller")
		}
		if err := product.CanFulfill(item.Quantity); err != nil {
			return nil, err
		}
	}

	order, err := trade.NewOrder(orderType, buyerID, sellerID, valueobject.DefaultCurrency)
	if err != nil {
		return nil, err
	}

	for _, item := range req.Items {
		product := productsByID[item.ProductID]
		if _, err := order.AddItem(product.ID, product.Name, string(product.Unit), item.Quantity, product.GetPriceMoney()); err != nil {
			return nil, err
		}
	}

	shippingCost := decimal.Zero
	if req.ShippingMethodID != nil {
		method, err := s.shippingRepo.FindByID(ctx, *req.ShippingMethodID)
		if err != nil {
			if errors.Is(err, shared.ErrNotFound) {
				return nil, shared.NewDomainError("SHIPPING_METHOD_NOT_FOUND", "Shipping method does not exist")
			}
			s.logger.Error("Failed to load shipping method", zap.Error(err))
			return nil, shared.NewDomainError("INTERNAL_ERROR", "Failed to create order")
		}
		if !method.Active {
			return nil, shared.NewDomainError("SHIPPING_METHOD_INACTIVE", "Shipping method is not available")
		}
		quote, err := method.QuoteCost(order.TotalWeightKg())
		if err != nil {
			return nil, err
		}
		shippingCost = quote.Amount()
		order.SetExpectedDelivery(time.Now().AddDate(0, 0, method.MaxDays))
	}

	if err := order.SetCharges(decimal.Zero, shippingCost, decimal.Zero); err != nil {
		return nil, err
	}

	addr, err := valueobject.NewAddress(req.DeliveryCountry, req.DeliveryRegion, req.DeliveryCity, req.DeliveryStreet)
	if err != nil {
		return nil, err
	}
	if err := order.SetDeliveryAddress(addr); err != nil {
		return nil, err
	}
	if req.Notes != "" {
		order.SetNotes(req.Notes)
	}

	if err := s.orderRepo.Save(ctx, order); err != nil {
		s.logger.Error("Failed to save order", zap.Error(err))
		return nil, shared.NewDomainError("INTERNAL_ERROR", "Failed to create order")
	}

	for _, product := range productsByID {
		product.RecordOrder()
		if err := s.productRepo.Save(ctx, product); err != nil {
			s.logger.Warn("Failed to record order on product",
				zap.String("product_id", product.ID.String()),
				zap.Error(err))
		}
	}

	s.publishEvents(ctx, order)

	s.logger.Info("Order created",
		zap.String("order_id", order.ID.String()),
		zap.String("order_number", order.OrderNumber),
		zap.String("buyer_id", buyerID.String()),
		zap.String("seller_id", sellerID.String()))

	response := ToOrderResponse(order)
	return &response, nil
}

// Confirm lets the seller accept a pending order
func (s *OrderService) Confirm(ctx context.Context, orderID, sellerID uuid.UUID) (*OrderResponse, error) {
	order, err := s.findForSeller(ctx, orderID, sellerID)
	if err != nil {
		return nil, err
	}

	if err := order.Confirm(&sellerID); err != nil {
		return nil, err
	}

	return s.saveAndRespond(ctx, order, "Order confirmed")
}

// MarkPaid records a successful payment against the order. Called from
// the payment flow, not directly by users.
func (s *OrderService) MarkPaid(ctx context.Context, orderID uuid.UUID, escrowed bool) (*OrderResponse, error) {
	order, err := s.orderRepo.FindByID(ctx, orderID)
	if err != nil {
		return nil, err
	}

	if err := order.MarkPaid(escrowed, nil); err != nil {
		return nil, err
	}

	return s.saveAndRespond(ctx, order, "Order marked paid")
}

// StartProcessing moves a confirmed, paid order into preparation
func (s *OrderService) StartProcessing(ctx context.Context, orderID, sellerID uuid.UUID) (*OrderResponse, error) {
	order, err := s.findForSeller(ctx, orderID, sellerID)
	if err != nil {
		return nil, err
	}

	if err := order.StartProcessing(&sellerID); err != nil {
		return nil, err
	}

	return s.saveAndRespond(ctx, order, "Order processing started")
}

// Ship marks the order shipped with a tracking number
func (s *OrderService) Ship(ctx context.Context, orderID, sellerID uuid.UUID, req ShipOrderRequest) (*OrderResponse, error) {
	order, err := s.findForSeller(ctx, orderID, sellerID)
	if err != nil {
		return nil, err
	}

	if err := order.Ship(req.TrackingNumber, &sellerID); err != nil {
		return nil, err
	}

	return s.saveAndRespond(ctx, order, "Order shipped")
}

// MarkDelivered records delivery of a shipped order
func (s *OrderService) MarkDelivered(ctx context.Context, orderID, actorID uuid.UUID) (*OrderResponse, error) {
	order, err := s.orderRepo.FindByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if order.BuyerID != actorID && order.SellerID != actorID {
		return nil, shared.ErrForbidden
	}

	if err := order.MarkDelivered(&actorID); err != nil {
		return nil, err
	}

	return s.saveAndRespond(ctx, order, "Order delivered")
}

// Complete lets the buyer accept a delivered order, releasing escrow
func (s *OrderService) Complete(ctx context.Context, orderID, buyerID uuid.UUID) (*OrderResponse, error) {
	order, err := s.findForBuyer(ctx, orderID, buyerID)
	if err != nil {
		return nil, err
	}

	if err := order.Complete(&buyerID); err != nil {
		return nil, err
	}
	if order.PaymentStatus == trade.PaymentStatusEscrow {
		if err := order.ReleaseEscrow(); err != nil {
			return nil, err
		}
	}

	return s.saveAndRespond(ctx, order, "Order completed")
}

// Cancel cancels an order before shipment. Buyer or seller may cancel.
func (s *OrderService) Cancel(ctx context.Context, orderID, actorID uuid.UUID, req CancelOrderRequest) (*OrderResponse, error) {
	order, err := s.orderRepo.FindByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if order.BuyerID != actorID && order.SellerID != actorID {
		return nil, shared.ErrForbidden
	}
	if !order.IsCancellable() {
		return nil, shared.NewDomainError("NOT_CANCELLABLE", "Order can no longer be cancelled")
	}

	if err := order.Cancel(req.Reason, &actorID); err != nil {
		return nil, err
	}

	return s.saveAndRespond(ctx, order, "Order cancelled")
}

// Refund refunds a paid order. Admin or dispute-resolution flow only.
func (s *OrderService) Refund(ctx context.Context, orderID uuid.UUID, actorID uuid.UUID, req RefundOrderRequest) (*OrderResponse, error) {
	order, err := s.orderRepo.FindByID(ctx, orderID)
	if err != nil {
		return nil, err
	}

	if err := order.Refund(req.Reason, &actorID); err != nil {
		return nil, err
	}

	return s.saveAndRespond(ctx, order, "Order refunded")
}

// MarkDisputed flags a paid order as under dispute, freezing escrow release
func (s *OrderService) MarkDisputed(ctx context.Context, orderID, buyerID uuid.UUID) (*OrderResponse, error) {
	order, err := s.findForBuyer(ctx, orderID, buyerID)
	if err != nil {
		return nil, err
	}

	if err := order.MarkDisputed(); err != nil {
		return nil, err
	}

	return s.saveAndRespond(ctx, order, "Order disputed")
}

// Get retrieves an order visible to the given actor
func (s *OrderService) Get(ctx context.Context, orderID, actorID uuid.UUID) (*OrderResponse, error) {
	order, err := s.orderRepo.FindByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if order.BuyerID != actorID && order.SellerID != actorID {
		return nil, shared.ErrForbidden
	}

	response := ToOrderResponse(order)
	return &response, nil
}

// GetByNumber retrieves an order by its public order number
func (s *OrderService) GetByNumber(ctx context.Context, orderNumber string, actorID uuid.UUID) (*OrderResponse, error) {
	order, err := s.orderRepo.FindByOrderNumber(ctx, orderNumber)
	if err != nil {
		return nil, err
	}
	if order.BuyerID != actorID && order.SellerID != actorID {
		return nil, shared.ErrForbidden
	}

	response := ToOrderResponse(order)
	return &response, nil
}

// ListByBuyer lists orders placed by a buyer
func (s *OrderService) ListByBuyer(ctx context.Context, buyerID uuid.UUID, filter OrderListFilter) ([]OrderResponse, int64, error) {
	f := buildOrderFilter(filter)
	orders, err := s.orderRepo.FindByBuyer(ctx, buyerID, f)
	if err != nil {
		return nil, 0, err
	}
	f.Filters["buyer_id"] = buyerID
	total, err := s.orderRepo.Count(ctx, f)
	if err != nil {
		return nil, 0, err
	}
	return ToOrderResponses(orders), total, nil
}

// ListBySeller lists orders received by a seller
func (s *OrderService) ListBySeller(ctx context.Context, sellerID uuid.UUID, filter OrderListFilter) ([]OrderResponse, int64, error) {
	f := buildOrderFilter(filter)
	orders, err := s.orderRepo.FindBySeller(ctx, sellerID, f)
	if err != nil {
		return nil, 0, err
	}
	f.Filters["seller_id"] = sellerID
	total, err := s.orderRepo.Count(ctx, f)
	if err != nil {
		return nil, 0, err
	}
	return ToOrderResponses(orders), total, nil
}

// ExpireStalePending cancels pending orders older than the cutoff.
// Intended to run on a schedule.
func (s *OrderService) ExpireStalePending(ctx context.Context) (int, error) {
	cutoff := time.Now().Add(-StalePendingOrderMaxAge)
	stale, err := s.orderRepo.FindStalePending(ctx, cutoff)
	if err != nil {
		return 0, err
	}

	expired := 0
	for i := range stale {
		order := &stale[i]
		if err := order.Cancel("Order expired, no payment received", nil); err != nil {
			s.logger.Warn("Failed to expire pending order",
				zap.String("order_id", order.ID.String()),
				zap.Error(err))
			continue
		}
		if err := s.orderRepo.Save(ctx, order); err != nil {
			s.logger.Error("Failed to save expired order",
				zap.String("order_id", order.ID.String()),
				zap.Error(err))
			continue
		}
		s.publishEvents(ctx, order)
		expired++
	}

	if expired > 0 {
		s.logger.Info("Expired stale pending orders", zap.Int("count", expired))
	}
	return expired, nil
}

func (s *OrderService) findForSeller(ctx context.Context, orderID, sellerID uuid.UUID) (*trade.Order, error) {
	order, err := s.orderRepo.FindByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if order.SellerID != sellerID {
		return nil, shared.ErrForbidden
	}
	return order, nil
}

func (s *OrderService) findForBuyer(ctx context.Context, orderID, buyerID uuid.UUID) (*trade.Order, error) {
	order, err := s.orderRepo.FindByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if order.BuyerID != buyerID {
		return nil, shared.ErrForbidden
	}
	return order, nil
}

func (s *OrderService) saveAndRespond(ctx context.Context, order *trade.Order, logMsg string) (*OrderResponse, error) {
	if err := s.orderRepo.Save(ctx, order); err != nil {
		s.logger.Error("Failed to save order",
			zap.String("order_id", order.ID.String()),
			zap.Error(err))
		return nil, shared.NewDomainError("INTERNAL_ERROR", "Failed to update order")
	}

	s.publishEvents(ctx, order)

	s.logger.Info(logMsg,
		zap.String("order_id", order.ID.String()),
		zap.String("order_number", order.OrderNumber),
		zap.String("status", string(order.Status)))

	response := ToOrderResponse(order)
	return &response, nil
}

func (s *OrderService) publishEvents(ctx context.Context, order *trade.Order) {
	if s.eventPublisher == nil {
		order.ClearDomainEvents()
		return
	}
	for _, event := range order.GetDomainEvents() {
		if err := s.eventPublisher.Publish(ctx, event); err != nil {
			s.logger.Error("Failed to publish order event",
				zap.String("event_type", event.EventType()),
				zap.String("order_id", order.ID.String()),
				zap.Error(err))
		}
	}
	order.ClearDomainEvents()
}

func buildOrderFilter(filter OrderListFilter) shared.Filter {
	f := shared.Filter{
		Page:     filter.Page,
		PageSize: filter.PageSize,
		OrderBy:  filter.OrderBy,
		OrderDir: filter.OrderDir,
		Filters:  map[string]interface{}{},
	}
	if f.Page <= 0 {
		f.Page = 1
	}
	if f.PageSize <= 0 || f.PageSize > 100 {
		f.PageSize = 20
	}
	if f.OrderBy == "" {
		f.OrderBy = "created_at"
		f.OrderDir = "desc"
	}
	if filter.Status != "" {
		f.Filters["status"] = filter.Status
	}
	return f
}
