package trade

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/agriconnect/backend/internal/domain/shared"
	"github.com/agriconnect/backend/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// OrderType classifies how the order was placed
type OrderType string

const (
	OrderTypeRegular      OrderType = "regular"
	OrderTypeBulk         OrderType = "bulk"
	OrderTypeSubscription OrderType = "subscription"
	OrderTypeContract     OrderType = "contract"
)

// IsValid checks if the order type is valid
func (t OrderType) IsValid() bool {
	switch t {
	case OrderTypeRegular, OrderTypeBulk, OrderTypeSubscription, OrderTypeContract:
		return true
	}
	return false
}

// OrderStatus represents the fulfilment status of an order
type OrderStatus string

const (
	OrderStatusPending    OrderStatus = "pending"
	OrderStatusConfirmed  OrderStatus = "confirmed"
	OrderStatusPaid       OrderStatus = "paid"
	OrderStatusProcessing OrderStatus = "processing"
	OrderStatusShipped    OrderStatus = "shipped"
	OrderStatusDelivered  OrderStatus = "delivered"
	OrderStatusCompleted  OrderStatus = "completed"
	OrderStatusCancelled  OrderStatus = "cancelled"
	OrderStatusRefunded   OrderStatus = "refunded"
)

// String returns the string representation of OrderStatus
func (s OrderStatus) String() string {
	return string(s)
}

// CanTransitionTo checks if the status can transition to the target status.
// Cancellation is allowed any time before shipment; refunds any time after
// payment.
func (s OrderStatus) CanTransitionTo(target OrderStatus) bool {
	switch s {
	case OrderStatusPending:
		return target == OrderStatusConfirmed || target == OrderStatusCancelled
	case OrderStatusConfirmed:
		return target == OrderStatusPaid || target == OrderStatusCancelled
	case OrderStatusPaid:
		return target == OrderStatusProcessing || target == OrderStatusCancelled || target == OrderStatusRefunded
	case OrderStatusProcessing:
		return target == OrderStatusShipped || target == OrderStatusCancelled || target == OrderStatusRefunded
	case OrderStatusShipped:
		return target == OrderStatusDelivered || target == OrderStatusRefunded
	case OrderStatusDelivered:
		return target == OrderStatusCompleted || target == OrderStatusRefunded
	case OrderStatusCompleted:
		return target == OrderStatusRefunded
	case OrderStatusCancelled, OrderStatusRefunded:
		return false // terminal
	}
	return false
}

// PaymentStatus tracks the money side of an order independently of fulfilment
type PaymentStatus string

const (
	PaymentStatusPending  PaymentStatus = "pending"
	PaymentStatusPaid     PaymentStatus = "paid"
	PaymentStatusEscrow   PaymentStatus = "escrow"
	PaymentStatusReleased PaymentStatus = "released"
	PaymentStatusRefunded PaymentStatus = "refunded"
	PaymentStatusDisputed PaymentStatus = "disputed"
)

// OrderItem is a line item carrying a snapshot of the product at order time
type OrderItem struct {
	ID          uuid.UUID       `gorm:"type:uuid;primary_key"`
	OrderID     uuid.UUID       `gorm:"type:uuid;not null;index"`
	ProductID   uuid.UUID       `gorm:"type:uuid;not null;index"`
	ProductName string          `gorm:"type:varchar(200);not null"`
	Unit        string          `gorm:"type:varchar(20);not null"`
	Quantity    decimal.Decimal `gorm:"type:decimal(15,3);not null"`
	UnitPrice   decimal.Decimal `gorm:"type:decimal(15,2);not null"`
	TotalPrice  decimal.Decimal `gorm:"type:decimal(15,2);not null"` // Quantity * UnitPrice
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// TableName returns the table name for GORM
func (OrderItem) TableName() string {
	return "order_items"
}

// NewOrderItem creates a new order item with a product snapshot
func NewOrderItem(orderID, productID uuid.UUID, productName, unit string, quantity decimal.Decimal, unitPrice valueobject.Money) (*OrderItem, error) {
	if productID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_PRODUCT", "Product ID cannot be empty")
	}
	if productName == "" {
		return nil, shared.NewDomainError("INVALID_PRODUCT_NAME", "Product name cannot be empty")
	}
	if quantity.LessThanOrEqual(decimal.Zero) {
		return nil, shared.NewDomainError("INVALID_QUANTITY", "Quantity must be positive")
	}
	if unitPrice.Amount().IsNegative() {
		return nil, shared.NewDomainError("INVALID_PRICE", "Unit price cannot be negative")
	}
	if unit == "" {
		return nil, shared.NewDomainError("INVALID_UNIT", "Unit cannot be empty")
	}

	now := time.Now()
	return &OrderItem{
		ID:          uuid.New(),
		OrderID:     orderID,
		ProductID:   productID,
		ProductName: productName,
		Unit:        unit,
		Quantity:    quantity,
		UnitPrice:   unitPrice.Amount(),
		TotalPrice:  quantity.Mul(unitPrice.Amount()),
		CreatedAt:   now,
		UpdatedAt:   now,
	}, nil
}

// UpdateQuantity updates the item quantity and recalculates the line total
func (i *OrderItem) UpdateQuantity(quantity decimal.Decimal) error {
	if quantity.LessThanOrEqual(decimal.Zero) {
		return shared.NewDomainError("INVALID_QUANTITY", "Quantity must be positive")
	}

	i.Quantity = quantity
	i.TotalPrice = quantity.Mul(i.UnitPrice)
	i.UpdatedAt = time.Now()

	return nil
}

// OrderStatusChange is an append-only record of a status transition
type OrderStatusChange struct {
	ID        uuid.UUID   `gorm:"type:uuid;primary_key"`
	OrderID   uuid.UUID   `gorm:"type:uuid;not null;index"`
	From      OrderStatus `gorm:"type:varchar(20);not null"`
	To        OrderStatus `gorm:"type:varchar(20);not null"`
	Note      string      `gorm:"type:varchar(500)"`
	ChangedBy *uuid.UUID  `gorm:"type:uuid"`
	ChangedAt time.Time   `gorm:"not null"`
}

// TableName returns the table name for GORM
func (OrderStatusChange) TableName() string {
	return "order_status_changes"
}

// Order is the aggregate root for a marketplace purchase.
// Fulfilment status and payment status move independently; both feed
// the status history.
type Order struct {
	shared.BaseAggregateRoot
	OrderNumber      string               `gorm:"type:varchar(30);uniqueIndex;not null"`
	OrderType        OrderType            `gorm:"type:varchar(20);not null"`
	BuyerID          uuid.UUID            `gorm:"type:uuid;not null;index"`
	SellerID         uuid.UUID            `gorm:"type:uuid;not null;index"`
	Status           OrderStatus          `gorm:"type:varchar(20);not null;index"`
	PaymentStatus    PaymentStatus        `gorm:"type:varchar(20);not null"`
	Items            []OrderItem          `gorm:"foreignKey:OrderID"`
	StatusHistory    []OrderStatusChange  `gorm:"foreignKey:OrderID"`
	Subtotal         decimal.Decimal      `gorm:"type:decimal(15,2);not null"`
	TaxAmount        decimal.Decimal      `gorm:"type:decimal(15,2);not null"`
	ShippingCost     decimal.Decimal      `gorm:"type:decimal(15,2);not null"`
	DiscountAmount   decimal.Decimal      `gorm:"type:decimal(15,2);not null"`
	TotalAmount      decimal.Decimal      `gorm:"type:decimal(15,2);not null"`
	Currency         valueobject.Currency `gorm:"type:varchar(3);not null"`
	DeliveryCountry  string               `gorm:"type:varchar(2)"`
	DeliveryRegion   string               `gorm:"type:varchar(100)"`
	DeliveryCity     string               `gorm:"type:varchar(100)"`
	DeliveryStreet   string               `gorm:"type:varchar(255)"`
	TrackingNumber   string               `gorm:"type:varchar(100)"`
	ExpectedDelivery *time.Time
	DeliveredAt      *time.Time
	Notes            string `gorm:"type:varchar(1000)"`
	CancelReason     string `gorm:"type:varchar(255)"`
	ConfirmedAt      *time.Time
	PaidAt           *time.Time
	ShippedAt        *time.Time
	CompletedAt      *time.Time
	CancelledAt      *time.Time
}

// TableName returns the table name for GORM
func (Order) TableName() string {
	return "orders"
}

// NewOrderNumber generates an order number: "AG" + timestamp + 4 random hex chars
func NewOrderNumber(now time.Time) string {
	suffix := make([]byte, 2)
	_, _ = rand.Read(suffix)
	return fmt.Sprintf("AG%s%s", now.Format("20060102150405"), hex.EncodeToString(suffix))
}

// NewOrder creates a new order in pending status
func NewOrder(orderType OrderType, buyerID, sellerID uuid.UUID, currency valueobject.Currency) (*Order, error) {
	if !orderType.IsValid() {
		return nil, shared.NewDomainError("INVALID_ORDER_TYPE", "Unknown order type")
	}
	if buyerID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_BUYER", "Buyer ID cannot be empty")
	}
	if sellerID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_SELLER", "Seller ID cannot be empty")
	}
	if buyerID == sellerID {
		return nil, shared.NewDomainError("INVALID_PARTIES", "Buyer and seller cannot be the same user")
	}
	if !valueobject.IsSupportedCurrency(currency) {
		return nil, shared.NewDomainError("INVALID_CURRENCY", "Currency is not supported")
	}

	order := &Order{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		OrderNumber:       NewOrderNumber(time.Now()),
		OrderType:         orderType,
		BuyerID:           buyerID,
		SellerID:          sellerID,
		Status:            OrderStatusPending,
		PaymentStatus:     PaymentStatusPending,
		Items:             make([]OrderItem, 0),
		Subtotal:          decimal.Zero,
		TaxAmount:         decimal.Zero,
		ShippingCost:      decimal.Zero,
		DiscountAmount:    decimal.Zero,
		TotalAmount:       decimal.Zero,
		Currency:          currency,
	}

	order.AddDomainEvent(NewOrderCreatedEvent(order))

	return order, nil
}

// AddItem adds a line item. Only allowed while the order is pending.
func (o *Order) AddItem(productID uuid.UUID, productName, unit string, quantity decimal.Decimal, unitPrice valueobject.Money) (*OrderItem, error) {
	if o.Status != OrderStatusPending {
		return nil, shared.NewDomainError("INVALID_STATE", "Cannot add items to a non-pending order")
	}
	if unitPrice.Currency() != o.Currency {
		return nil, shared.NewDomainError("CURRENCY_MISMATCH", "Item currency does not match order currency")
	}

	for _, item := range o.Items {
		if item.ProductID == productID {
			return nil, shared.NewDomainError("DUPLICATE_PRODUCT", "Product already exists in order, update quantity instead")
		}
	}

	item, err := NewOrderItem(o.ID, productID, productName, unit, quantity, unitPrice)
	if err != nil {
		return nil, err
	}

	o.Items = append(o.Items, *item)
	o.recalculateTotals()
	o.UpdatedAt = time.Now()

	return item, nil
}

// UpdateItemQuantity updates the quantity of a line item while pending
func (o *Order) UpdateItemQuantity(itemID uuid.UUID, quantity decimal.Decimal) error {
	if o.Status != OrderStatusPending {
		return shared.NewDomainError("INVALID_STATE", "Cannot update items in a non-pending order")
	}

	for idx := range o.Items {
		if o.Items[idx].ID == itemID {
			if err := o.Items[idx].UpdateQuantity(quantity); err != nil {
				return err
			}
			o.recalculateTotals()
			o.UpdatedAt = time.Now()
			return nil
		}
	}

	return shared.NewDomainError("ITEM_NOT_FOUND", "Order item not found")
}

// RemoveItem removes a line item while pending
func (o *Order) RemoveItem(itemID uuid.UUID) error {
	if o.Status != OrderStatusPending {
		return shared.NewDomainError("INVALID_STATE", "Cannot remove items from a non-pending order")
	}

	for idx, item := range o.Items {
		if item.ID == itemID {
			o.Items = append(o.Items[:idx], o.Items[idx+1:]...)
			o.recalculateTotals()
			o.UpdatedAt = time.Now()
			return nil
		}
	}

	return shared.NewDomainError("ITEM_NOT_FOUND", "Order item not found")
}

// SetDeliveryAddress sets where the order ships to
func (o *Order) SetDeliveryAddress(addr valueobject.Address) error {
	if o.Status != OrderStatusPending && o.Status != OrderStatusConfirmed {
		return shared.NewDomainError("INVALID_STATE", "Cannot change delivery address after payment")
	}

	o.DeliveryCountry = addr.Country()
	o.DeliveryRegion = addr.Region()
	o.DeliveryCity = addr.City()
	o.DeliveryStreet = addr.Street()
	o.UpdatedAt = time.Now()

	return nil
}

// SetCharges sets tax, shipping, and discount, then recalculates the total
func (o *Order) SetCharges(tax, shipping, discount decimal.Decimal) error {
	if o.Status != OrderStatusPending {
		return shared.NewDomainError("INVALID_STATE", "Cannot change charges after confirmation")
	}
	if tax.IsNegative() || shipping.IsNegative() || discount.IsNegative() {
		return shared.NewDomainError("INVALID_CHARGES", "Charges cannot be negative")
	}
	if discount.GreaterThan(o.Subtotal.Add(tax).Add(shipping)) {
		return shared.NewDomainError("INVALID_DISCOUNT", "Discount cannot exceed the order total")
	}

	o.TaxAmount = tax
	o.ShippingCost = shipping
	o.DiscountAmount = discount
	o.recalculateTotals()
	o.UpdatedAt = time.Now()

	return nil
}

// SetExpectedDelivery sets the expected delivery date
func (o *Order) SetExpectedDelivery(date time.Time) {
	o.ExpectedDelivery = &date
	o.UpdatedAt = time.Now()
}

// SetNotes sets free-form notes on the order
func (o *Order) SetNotes(notes string) {
	o.Notes = notes
	o.UpdatedAt = time.Now()
}

// recalculateTotals recomputes subtotal and total:
// total = subtotal + tax + shipping - discount
func (o *Order) recalculateTotals() {
	subtotal := decimal.Zero
	for _, item := range o.Items {
		subtotal = subtotal.Add(item.TotalPrice)
	}
	o.Subtotal = subtotal
	o.TotalAmount = subtotal.Add(o.TaxAmount).Add(o.ShippingCost).Sub(o.DiscountAmount)
}

// transition moves the order to a new status and appends to the history
func (o *Order) transition(target OrderStatus, note string, changedBy *uuid.UUID) error {
	if !o.Status.CanTransitionTo(target) {
		return shared.NewDomainError("INVALID_STATE", fmt.Sprintf("Cannot move order from %s to %s", o.Status, target))
	}

	o.StatusHistory = append(o.StatusHistory, OrderStatusChange{
		ID:        uuid.New(),
		OrderID:   o.ID,
		From:      o.Status,
		To:        target,
		Note:      note,
		ChangedBy: changedBy,
		ChangedAt: time.Now(),
	})
	o.Status = target
	o.UpdatedAt = time.Now()
	o.IncrementVersion()

	return nil
}

// Confirm accepts the order on the seller side
func (o *Order) Confirm(changedBy *uuid.UUID) error {
	if len(o.Items) == 0 {
		return shared.NewDomainError("NO_ITEMS", "Cannot confirm an order without items")
	}
	if o.TotalAmount.LessThanOrEqual(decimal.Zero) {
		return shared.NewDomainError("INVALID_AMOUNT", "Order total must be positive")
	}

	if err := o.transition(OrderStatusConfirmed, "", changedBy); err != nil {
		return err
	}

	now := time.Now()
	o.ConfirmedAt = &now
	o.AddDomainEvent(NewOrderConfirmedEvent(o))

	return nil
}

// MarkPaid records a completed payment. escrowed indicates the funds are
// held in escrow rather than settled to the seller.
func (o *Order) MarkPaid(escrowed bool, changedBy *uuid.UUID) error {
	if err := o.transition(OrderStatusPaid, "", changedBy); err != nil {
		return err
	}

	now := time.Now()
	o.PaidAt = &now
	if escrowed {
		o.PaymentStatus = PaymentStatusEscrow
	} else {
		o.PaymentStatus = PaymentStatusPaid
	}
	o.AddDomainEvent(NewOrderPaidEvent(o))

	return nil
}

// StartProcessing moves a paid order into preparation
func (o *Order) StartProcessing(changedBy *uuid.UUID) error {
	return o.transition(OrderStatusProcessing, "", changedBy)
}

// Ship marks the order as shipped with a tracking number
func (o *Order) Ship(trackingNumber string, changedBy *uuid.UUID) error {
	if trackingNumber == "" {
		return shared.NewDomainError("INVALID_TRACKING", "Tracking number cannot be empty")
	}

	if err := o.transition(OrderStatusShipped, "", changedBy); err != nil {
		return err
	}

	now := time.Now()
	o.TrackingNumber = trackingNumber
	o.ShippedAt = &now
	o.AddDomainEvent(NewOrderShippedEvent(o))

	return nil
}

// MarkDelivered records physical delivery
func (o *Order) MarkDelivered(changedBy *uuid.UUID) error {
	if err := o.transition(OrderStatusDelivered, "", changedBy); err != nil {
		return err
	}

	now := time.Now()
	o.DeliveredAt = &now
	o.AddDomainEvent(NewOrderDeliveredEvent(o))

	return nil
}

// Complete closes the order after the buyer accepts delivery
func (o *Order) Complete(changedBy *uuid.UUID) error {
	if err := o.transition(OrderStatusCompleted, "", changedBy); err != nil {
		return err
	}

	now := time.Now()
	o.CompletedAt = &now
	o.AddDomainEvent(NewOrderCompletedEvent(o))

	return nil
}

// Cancel cancels the order. Only allowed before shipment.
func (o *Order) Cancel(reason string, changedBy *uuid.UUID) error {
	if reason == "" {
		return shared.NewDomainError("INVALID_REASON", "Cancel reason cannot be empty")
	}

	if err := o.transition(OrderStatusCancelled, reason, changedBy); err != nil {
		return err
	}

	now := time.Now()
	o.CancelReason = reason
	o.CancelledAt = &now
	o.AddDomainEvent(NewOrderCancelledEvent(o))

	return nil
}

// Refund marks a paid order as refunded
func (o *Order) Refund(reason string, changedBy *uuid.UUID) error {
	if o.PaymentStatus != PaymentStatusPaid && o.PaymentStatus != PaymentStatusEscrow && o.PaymentStatus != PaymentStatusDisputed {
		return shared.NewDomainError("INVALID_STATE", "Only paid orders can be refunded")
	}

	if err := o.transition(OrderStatusRefunded, reason, changedBy); err != nil {
		return err
	}

	o.PaymentStatus = PaymentStatusRefunded
	o.AddDomainEvent(NewOrderRefundedEvent(o))

	return nil
}

// MarkDisputed flags the order's payment as under dispute
func (o *Order) MarkDisputed() error {
	if o.PaymentStatus != PaymentStatusPaid && o.PaymentStatus != PaymentStatusEscrow {
		return shared.NewDomainError("INVALID_STATE", "Only paid orders can be disputed")
	}

	o.PaymentStatus = PaymentStatusDisputed
	o.UpdatedAt = time.Now()
	o.IncrementVersion()

	return nil
}

// ReleaseEscrow settles escrowed funds to the seller
func (o *Order) ReleaseEscrow() error {
	if o.PaymentStatus != PaymentStatusEscrow {
		return shared.NewDomainError("INVALID_STATE", "Order funds are not in escrow")
	}

	o.PaymentStatus = PaymentStatusReleased
	o.UpdatedAt = time.Now()
	o.IncrementVersion()

	return nil
}

// GetTotalMoney returns the order total as a Money value object
func (o *Order) GetTotalMoney() valueobject.Money {
	m, _ := valueobject.NewMoney(o.TotalAmount, o.Currency)
	return m
}

// TotalWeightKg sums the line items' mass in kilograms.
// Items in non-mass units contribute nothing.
func (o *Order) TotalWeightKg() decimal.Decimal {
	total := decimal.Zero
	for _, item := range o.Items {
		unit, err := valueobject.ParseUnit(item.Unit)
		if err != nil || !unit.IsMass() {
			continue
		}
		kg, err := unit.ToKilograms(item.Quantity)
		if err != nil {
			continue
		}
		total = total.Add(kg)
	}
	return total
}

// IsCancellable reports whether the order can still be cancelled
func (o *Order) IsCancellable() bool {
	return o.Status.CanTransitionTo(OrderStatusCancelled)
}
