package trade

import (
	"github.com/agriconnect/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Aggregate type constant
const AggregateTypeOrder = "Order"

// Event type constants
const (
	EventTypeOrderCreated   = "OrderCreated"
	EventTypeOrderConfirmed = "OrderConfirmed"
	EventTypeOrderPaid      = "OrderPaid"
	EventTypeOrderShipped   = "OrderShipped"
	EventTypeOrderDelivered = "OrderDelivered"
	EventTypeOrderCompleted = "OrderCompleted"
	EventTypeOrderCancelled = "OrderCancelled"
	EventTypeOrderRefunded  = "OrderRefunded"
)

// orderEventItem is a line-item snapshot carried in order events
type orderEventItem struct {
	ProductID uuid.UUID       `json:"product_id"`
	Name      string          `json:"name"`
	Unit      string          `json:"unit"`
	Quantity  decimal.Decimal `json:"quantity"`
}

func eventItems(o *Order) []orderEventItem {
	items := make([]orderEventItem, 0, len(o.Items))
	for _, it := range o.Items {
		items = append(items, orderEventItem{
			ProductID: it.ProductID,
			Name:      it.ProductName,
			Unit:      it.Unit,
			Quantity:  it.Quantity,
		})
	}
	return items
}

// OrderCreatedEvent is published when a new order is placed
type OrderCreatedEvent struct {
	shared.BaseDomainEvent
	OrderID     uuid.UUID `json:"order_id"`
	OrderNumber string    `json:"order_number"`
	BuyerID     uuid.UUID `json:"buyer_id"`
	SellerID    uuid.UUID `json:"seller_id"`
	OrderType   OrderType `json:"order_type"`
}

// NewOrderCreatedEvent creates a new OrderCreatedEvent
func NewOrderCreatedEvent(order *Order) *OrderCreatedEvent {
	return &OrderCreatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeOrderCreated, AggregateTypeOrder, order.ID),
		OrderID:         order.ID,
		OrderNumber:     order.OrderNumber,
		BuyerID:         order.BuyerID,
		SellerID:        order.SellerID,
		OrderType:       order.OrderType,
	}
}

// OrderConfirmedEvent is published when the seller accepts the order.
// Warehouse stock is reserved off this event.
type OrderConfirmedEvent struct {
	shared.BaseDomainEvent
	OrderID     uuid.UUID        `json:"order_id"`
	OrderNumber string           `json:"order_number"`
	BuyerID     uuid.UUID        `json:"buyer_id"`
	SellerID    uuid.UUID        `json:"seller_id"`
	Total       decimal.Decimal  `json:"total"`
	Currency    string           `json:"currency"`
	Items       []orderEventItem `json:"items"`
}

// NewOrderConfirmedEvent creates a new OrderConfirmedEvent
func NewOrderConfirmedEvent(order *Order) *OrderConfirmedEvent {
	return &OrderConfirmedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeOrderConfirmed, AggregateTypeOrder, order.ID),
		OrderID:         order.ID,
		OrderNumber:     order.OrderNumber,
		BuyerID:         order.BuyerID,
		SellerID:        order.SellerID,
		Total:           order.TotalAmount,
		Currency:        string(order.Currency),
		Items:           eventItems(order),
	}
}

// OrderPaidEvent is published when payment lands.
// Payment-notification SMS to both parties hangs off this event.
type OrderPaidEvent struct {
	shared.BaseDomainEvent
	OrderID       uuid.UUID       `json:"order_id"`
	OrderNumber   string          `json:"order_number"`
	BuyerID       uuid.UUID       `json:"buyer_id"`
	SellerID      uuid.UUID       `json:"seller_id"`
	OrderType     OrderType       `json:"order_type"`
	Total         decimal.Decimal `json:"total"`
	Currency      string          `json:"currency"`
	PaymentStatus PaymentStatus   `json:"payment_status"`
}

// NewOrderPaidEvent creates a new OrderPaidEvent
func NewOrderPaidEvent(order *Order) *OrderPaidEvent {
	return &OrderPaidEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeOrderPaid, AggregateTypeOrder, order.ID),
		OrderID:         order.ID,
		OrderNumber:     order.OrderNumber,
		BuyerID:         order.BuyerID,
		SellerID:        order.SellerID,
		OrderType:       order.OrderType,
		Total:           order.TotalAmount,
		Currency:        string(order.Currency),
		PaymentStatus:   order.PaymentStatus,
	}
}

// OrderShippedEvent is published when the order leaves the warehouse.
// Reserved stock is deducted and a delivery-update SMS goes out.
type OrderShippedEvent struct {
	shared.BaseDomainEvent
	OrderID        uuid.UUID        `json:"order_id"`
	OrderNumber    string           `json:"order_number"`
	BuyerID        uuid.UUID        `json:"buyer_id"`
	TrackingNumber string           `json:"tracking_number"`
	Items          []orderEventItem `json:"items"`
}

// NewOrderShippedEvent creates a new OrderShippedEvent
func NewOrderShippedEvent(order *Order) *OrderShippedEvent {
	return &OrderShippedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeOrderShipped, AggregateTypeOrder, order.ID),
		OrderID:         order.ID,
		OrderNumber:     order.OrderNumber,
		BuyerID:         order.BuyerID,
		TrackingNumber:  order.TrackingNumber,
		Items:           eventItems(order),
	}
}

// OrderDeliveredEvent is published when delivery is recorded
type OrderDeliveredEvent struct {
	shared.BaseDomainEvent
	OrderID     uuid.UUID `json:"order_id"`
	OrderNumber string    `json:"order_number"`
	BuyerID     uuid.UUID `json:"buyer_id"`
	SellerID    uuid.UUID `json:"seller_id"`
}

// NewOrderDeliveredEvent creates a new OrderDeliveredEvent
func NewOrderDeliveredEvent(order *Order) *OrderDeliveredEvent {
	return &OrderDeliveredEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeOrderDelivered, AggregateTypeOrder, order.ID),
		OrderID:         order.ID,
		OrderNumber:     order.OrderNumber,
		BuyerID:         order.BuyerID,
		SellerID:        order.SellerID,
	}
}

// OrderCompletedEvent is published when the buyer accepts delivery.
// Escrow milestone completion hangs off this event.
type OrderCompletedEvent struct {
	shared.BaseDomainEvent
	OrderID     uuid.UUID `json:"order_id"`
	OrderNumber string    `json:"order_number"`
	BuyerID     uuid.UUID `json:"buyer_id"`
	SellerID    uuid.UUID `json:"seller_id"`
}

// NewOrderCompletedEvent creates a new OrderCompletedEvent
func NewOrderCompletedEvent(order *Order) *OrderCompletedEvent {
	return &OrderCompletedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeOrderCompleted, AggregateTypeOrder, order.ID),
		OrderID:         order.ID,
		OrderNumber:     order.OrderNumber,
		BuyerID:         order.BuyerID,
		SellerID:        order.SellerID,
	}
}

// OrderCancelledEvent is published when an order is cancelled.
// Stock reservations are released off this event.
type OrderCancelledEvent struct {
	shared.BaseDomainEvent
	OrderID     uuid.UUID        `json:"order_id"`
	OrderNumber string           `json:"order_number"`
	BuyerID     uuid.UUID        `json:"buyer_id"`
	SellerID    uuid.UUID        `json:"seller_id"`
	Reason      string           `json:"reason"`
	Items       []orderEventItem `json:"items"`
}

// NewOrderCancelledEvent creates a new OrderCancelledEvent
func NewOrderCancelledEvent(order *Order) *OrderCancelledEvent {
	return &OrderCancelledEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeOrderCancelled, AggregateTypeOrder, order.ID),
		OrderID:         order.ID,
		OrderNumber:     order.OrderNumber,
		BuyerID:         order.BuyerID,
		SellerID:        order.SellerID,
		Reason:          order.CancelReason,
		Items:           eventItems(order),
	}
}

// OrderRefundedEvent is published when an order is refunded
type OrderRefundedEvent struct {
	shared.BaseDomainEvent
	OrderID     uuid.UUID       `json:"order_id"`
	OrderNumber string          `json:"order_number"`
	BuyerID     uuid.UUID       `json:"buyer_id"`
	Total       decimal.Decimal `json:"total"`
	Currency    string          `json:"currency"`
}

// NewOrderRefundedEvent creates a new OrderRefundedEvent
func NewOrderRefundedEvent(order *Order) *OrderRefundedEvent {
	return &OrderRefundedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeOrderRefunded, AggregateTypeOrder, order.ID),
		OrderID:         order.ID,
		OrderNumber:     order.OrderNumber,
		BuyerID:         order.BuyerID,
		Total:           order.TotalAmount,
		Currency:        string(order.Currency),
	}
}
