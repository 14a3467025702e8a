package trade

import (
	"time"

	"github.com/agriconnect/backend/internal/domain/trade"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// OrderItemRequest is one line of a new order
type OrderItemRequest struct {
	ProductID uuid.UUID       `json:"product_id" binding:"required"`
	Quantity  decimal.Decimal `json:"quantity" binding:"required"`
}

// CreateOrderRequest places an order against one seller's listings
type CreateOrderRequest struct {
	OrderType        string             `json:"order_type"`
	Items            []OrderItemRequest `json:"items" binding:"required,min=1"`
	ShippingMethodID *uuid.UUID         `json:"shipping_method_id"`
	DeliveryCountry  string             `json:"delivery_country" binding:"required"`
	DeliveryRegion   string             `json:"delivery_region"`
	DeliveryCity     string             `json:"delivery_city" binding:"required"`
	DeliveryStreet   string             `json:"delivery_street"`
	Notes            string             `json:"notes"`
}

// ShipOrderRequest marks an order shipped with a tracking number
type ShipOrderRequest struct {
	TrackingNumber string `json:"tracking_number" binding:"required"`
}

// CancelOrderRequest cancels an order with a reason
type CancelOrderRequest struct {
	Reason string `json:"reason" binding:"required"`
}

// RefundOrderRequest refunds a paid order
type RefundOrderRequest struct {
	Reason string `json:"reason" binding:"required"`
}

// OrderListFilter narrows down order listings
type OrderListFilter struct {
	Page     int    `form:"page"`
	PageSize int    `form:"page_size"`
	Status   string `form:"status"`
	OrderBy  string `form:"order_by"`
	OrderDir string `form:"order_dir"`
}

// OrderItemResponse is the outward representation of a line item
type OrderItemResponse struct {
	ID          uuid.UUID       `json:"id"`
	ProductID   uuid.UUID       `json:"product_id"`
	ProductName string          `json:"product_name"`
	Unit        string          `json:"unit"`
	Quantity    decimal.Decimal `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	TotalPrice  decimal.Decimal `json:"total_price"`
}

// StatusChangeResponse is one entry of the order's status history
type StatusChangeResponse struct {
	From      string     `json:"from"`
	To        string     `json:"to"`
	Note      string     `json:"note,omitempty"`
	ChangedBy *uuid.UUID `json:"changed_by,omitempty"`
	ChangedAt time.Time  `json:"changed_at"`
}

// OrderResponse is the outward representation of an order
type OrderResponse struct {
	ID               uuid.UUID              `json:"id"`
	OrderNumber      string                 `json:"order_number"`
	OrderType        string                 `json:"order_type"`
	BuyerID          uuid.UUID              `json:"buyer_id"`
	SellerID         uuid.UUID              `json:"seller_id"`
	Status           string                 `json:"status"`
	PaymentStatus    string                 `json:"payment_status"`
	Items            []OrderItemResponse    `json:"items"`
	StatusHistory    []StatusChangeResponse `json:"status_history,omitempty"`
	Subtotal         decimal.Decimal        `json:"subtotal"`
	TaxAmount        decimal.Decimal        `json:"tax_amount"`
	ShippingCost     decimal.Decimal        `json:"shipping_cost"`
	DiscountAmount   decimal.Decimal        `json:"discount_amount"`
	TotalAmount      decimal.Decimal        `json:"total_amount"`
	Currency         string                 `json:"currency"`
	DeliveryCountry  string                 `json:"delivery_country,omitempty"`
	DeliveryRegion   string                 `json:"delivery_region,omitempty"`
	DeliveryCity     string                 `json:"delivery_city,omitempty"`
	DeliveryStreet   string                 `json:"delivery_street,omitempty"`
	TrackingNumber   string                 `json:"tracking_number,omitempty"`
	ExpectedDelivery *time.Time             `json:"expected_delivery,omitempty"`
	DeliveredAt      *time.Time             `json:"delivered_at,omitempty"`
	Notes            string                 `json:"notes,omitempty"`
	CancelReason     string                 `json:"cancel_reason,omitempty"`
	CreatedAt        time.Time              `json:"created_at"`
	UpdatedAt        time.Time              `json:"updated_at"`
}

// ToOrderResponse converts a domain order to its response form
func ToOrderResponse(o *trade.Order) OrderResponse {
	items := make([]OrderItemResponse, len(o.Items))
	for i, item := range o.Items {
		items[i] = OrderItemResponse{
			ID:          item.ID,
			ProductID:   item.ProductID,
			ProductName: item.ProductName,
			Unit:        item.Unit,
			Quantity:    item.Quantity,
			UnitPrice:   item.UnitPrice,
			TotalPrice:  item.TotalPrice,
		}
	}

	history := make([]StatusChangeResponse, len(o.StatusHistory))
	for i, change := range o.StatusHistory {
		history[i] = StatusChangeResponse{
			From:      string(change.From),
			To:        string(change.To),
			Note:      change.Note,
			ChangedBy: change.ChangedBy,
			ChangedAt: change.ChangedAt,
		}
	}

	return OrderResponse{
		ID:               o.ID,
		OrderNumber:      o.OrderNumber,
		OrderType:        string(o.OrderType),
		BuyerID:          o.BuyerID,
		SellerID:         o.SellerID,
		Status:           string(o.Status),
		PaymentStatus:    string(o.PaymentStatus),
		Items:            items,
		StatusHistory:    history,
		Subtotal:         o.Subtotal,
		TaxAmount:        o.TaxAmount,
		ShippingCost:     o.ShippingCost,
		DiscountAmount:   o.DiscountAmount,
		TotalAmount:      o.TotalAmount,
		Currency:         string(o.Currency),
		DeliveryCountry:  o.DeliveryCountry,
		DeliveryRegion:   o.DeliveryRegion,
		DeliveryCity:     o.DeliveryCity,
		DeliveryStreet:   o.DeliveryStreet,
		TrackingNumber:   o.TrackingNumber,
		ExpectedDelivery: o.ExpectedDelivery,
		DeliveredAt:      o.DeliveredAt,
		Notes:            o.Notes,
		CancelReason:     o.CancelReason,
		CreatedAt:        o.CreatedAt,
		UpdatedAt:        o.UpdatedAt,
	}
}

// ToOrderResponses converts a slice of orders
func ToOrderResponses(orders []trade.Order) []OrderResponse {
	responses := make([]OrderResponse, len(orders))
	for i := range orders {
		responses[i] = ToOrderResponse(&orders[i])
	}
	return responses
}

// CreateShippingMethodRequest creates a delivery option
type CreateShippingMethodRequest struct {
	Name      string          `json:"name" binding:"required"`
	Carrier   string          `json:"carrier"`
	BaseCost  decimal.Decimal `json:"base_cost"`
	CostPerKg decimal.Decimal `json:"cost_per_kg"`
	MinDays   int             `json:"min_days"`
	MaxDays   int             `json:"max_days"`
}

// ShippingMethodResponse is the outward representation of a delivery option
type ShippingMethodResponse struct {
	ID        uuid.UUID       `json:"id"`
	Name      string          `json:"name"`
	Carrier   string          `json:"carrier,omitempty"`
	BaseCost  decimal.Decimal `json:"base_cost"`
	CostPerKg decimal.Decimal `json:"cost_per_kg"`
	Currency  string          `json:"currency"`
	MinDays   int             `json:"min_days"`
	MaxDays   int             `json:"max_days"`
	Active    bool            `json:"active"`
}

// ToShippingMethodResponse converts a domain shipping method
func ToShippingMethodResponse(m *trade.ShippingMethod) ShippingMethodResponse {
	return ShippingMethodResponse{
		ID:        m.ID,
		Name:      m.Name,
		Carrier:   m.Carrier,
		BaseCost:  m.BaseCost,
		CostPerKg: m.CostPerKg,
		Currency:  string(m.Currency),
		MinDays:   m.MinDays,
		MaxDays:   m.MaxDays,
		Active:    m.Active,
	}
}
