package order

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/dropship/backend/internal/domain/shared"
)

// Status represents the customer-facing status of an order
type Status string

const (
	StatusReceived       Status = "RECEIVED"
	StatusProcessing     Status = "PROCESSING"
	StatusDispatched     Status = "DISPATCHED"
	StatusInTransit      Status = "IN_TRANSIT"
	StatusOutForDelivery Status = "OUT_FOR_DELIVERY"
	StatusDelivered      Status = "DELIVERED"
	StatusIssueDetected  Status = "ISSUE_DETECTED"
	StatusRefunded       Status = "REFUNDED"
)

// IsValid checks if the status is a valid order Status
func (s Status) IsValid() bool {
	switch s {
	case StatusReceived, StatusProcessing, StatusDispatched, StatusInTransit,
		StatusOutForDelivery, StatusDelivered, StatusIssueDetected, StatusRefunded:
		return true
	}
	return false
}

// String returns the string representation of Status
func (s Status) String() string {
	return string(s)
}

// PaymentStatus represents the payment state of an order
type PaymentStatus string

const (
	PaymentStatusPending  PaymentStatus = "PENDING"
	PaymentStatusPaid     PaymentStatus = "PAID"
	PaymentStatusFailed   PaymentStatus = "FAILED"
	PaymentStatusRefunded PaymentStatus = "REFUNDED"
)

// IsValid checks if the payment status is valid
func (s PaymentStatus) IsValid() bool {
	switch s {
	case PaymentStatusPending, PaymentStatusPaid, PaymentStatusFailed, PaymentStatusRefunded:
		return true
	}
	return false
}

// FulfillmentStatus represents the provider-side state of an order item
type FulfillmentStatus string

const (
	FulfillmentStatusPending  FulfillmentStatus = "PENDING"
	FulfillmentStatusAwaiting FulfillmentStatus = "AWAITING_FULFILLMENT"
	FulfillmentStatusRunning  FulfillmentStatus = "FULFILLING"
	FulfillmentStatusDone     FulfillmentStatus = "FULFILLED"
	FulfillmentStatusFailed   FulfillmentStatus = "FAILED"
)

// CanDispatch reports whether an item in this status may be sent to a provider.
// Dispatch is not idempotent at the provider level, so anything past
// AWAITING_FULFILLMENT must never be re-dispatched.
func (s FulfillmentStatus) CanDispatch() bool {
	return s == FulfillmentStatusPending || s == FulfillmentStatusAwaiting || s == FulfillmentStatusFailed
}

// Address is the consignee address captured at checkout
type Address struct {
	Name        string
	Phone       string
	Email       string
	CountryCode string
	Province    string
	City        string
	Street      string
	PostalCode  string
}

// Validate checks that the fields a fulfillment provider requires are present
func (a *Address) Validate() error {
	if a.Name == "" {
		return shared.NewDomainError("MISSING_CONSIGNEE", "Consignee name is required")
	}
	if a.CountryCode == "" {
		return shared.NewDomainError("MISSING_COUNTRY", "Shipping country is required")
	}
	if a.City == "" || a.Street == "" {
		return shared.NewDomainError("MISSING_ADDRESS", "Shipping address is incomplete")
	}
	return nil
}

// Item represents one purchased line in an order
type Item struct {
	ID                uuid.UUID
	OrderID           uuid.UUID
	VariantID         string
	ProductName       string
	ProviderCode      string
	Quantity          int
	UnitPrice         decimal.Decimal
	Amount            decimal.Decimal
	FulfillmentStatus FulfillmentStatus
	Shipments         []Shipment
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

// NewItem creates a new order item
func NewItem(orderID uuid.UUID, variantID, productName, providerCode string, quantity int, unitPrice decimal.Decimal) (*Item, error) {
	if variantID == "" {
		return nil, shared.NewDomainError("INVALID_VARIANT", "Variant ID cannot be empty")
	}
	if quantity <= 0 {
		return nil, shared.NewDomainError("INVALID_QUANTITY", "Quantity must be positive")
	}
	if unitPrice.IsNegative() {
		return nil, shared.NewDomainError("INVALID_PRICE", "Unit price cannot be negative")
	}

	now := time.Now()
	return &Item{
		ID:                uuid.New(),
		OrderID:           orderID,
		VariantID:         variantID,
		ProductName:       productName,
		ProviderCode:      providerCode,
		Quantity:          quantity,
		UnitPrice:         unitPrice,
		Amount:            unitPrice.Mul(decimal.NewFromInt(int64(quantity))),
		FulfillmentStatus: FulfillmentStatusPending,
		CreatedAt:         now,
		UpdatedAt:         now,
	}, nil
}

// SetFulfillmentStatus transitions the item's fulfillment status
func (i *Item) SetFulfillmentStatus(status FulfillmentStatus) {
	if i.FulfillmentStatus == status {
		return
	}
	i.FulfillmentStatus = status
	i.UpdatedAt = time.Now()
}

// Order represents a customer purchase aggregate root.
// Orders are never hard-deleted: a refund is a status transition, not a removal.
type Order struct {
	shared.BaseAggregateRoot
	OrderNumber   string
	CustomerID    *uuid.UUID // nil for guest orders
	CustomerEmail string
	Status        Status
	PaymentStatus PaymentStatus
	GrandTotal    decimal.Decimal
	Currency      string
	ShippingAddr  Address
	Items         []Item

	// Provider-side bookkeeping, populated after dispatch
	ProviderOrderID         string
	ProviderShipmentOrderID string
	ProviderOrderStatus     string
	ProviderAmountDue       decimal.Decimal
	ProviderPaymentPending  bool

	RefundedAmount decimal.Decimal
	RefundReason   string
	RefundedAt     *time.Time
	PaidAt         *time.Time
	PaymentRef     string
}

// New creates a new order in RECEIVED state
func New(orderNumber string, customerID *uuid.UUID, customerEmail, currency string, addr Address) (*Order, error) {
	if orderNumber == "" {
		return nil, shared.NewDomainError("INVALID_ORDER_NUMBER", "Order number cannot be empty")
	}
	if len(orderNumber) > 50 {
		return nil, shared.NewDomainError("INVALID_ORDER_NUMBER", "Order number cannot exceed 50 characters")
	}
	if currency == "" {
		return nil, shared.NewDomainError("INVALID_CURRENCY", "Currency cannot be empty")
	}
	if err := addr.Validate(); err != nil {
		return nil, err
	}

	o := &Order{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		OrderNumber:       orderNumber,
		CustomerID:        customerID,
		CustomerEmail:     customerEmail,
		Status:            StatusReceived,
		PaymentStatus:     PaymentStatusPending,
		GrandTotal:        decimal.Zero,
		Currency:          currency,
		ShippingAddr:      addr,
		Items:             make([]Item, 0),
		ProviderAmountDue: decimal.Zero,
		RefundedAmount:    decimal.Zero,
	}

	o.AddDomainEvent(NewCreatedEvent(o))

	return o, nil
}

// AddItem adds a purchased line and recalculates the grand total
func (o *Order) AddItem(variantID, productName, providerCode string, quantity int, unitPrice decimal.Decimal) (*Item, error) {
	if o.Status != StatusReceived {
		return nil, shared.NewDomainError("INVALID_STATE", "Cannot add items after processing has started")
	}

	item, err := NewItem(o.ID, variantID, productName, providerCode, quantity, unitPrice)
	if err != nil {
		return nil, err
	}

	o.Items = append(o.Items, *item)
	o.recalculateTotal()
	o.UpdatedAt = time.Now()

	return item, nil
}

// UpdateCustomerStatus transitions the customer-facing status.
// Calling it with the current status is a no-op: no event is emitted and
// UpdatedAt is untouched, so downstream notifications fire exactly once
// per actual change.
func (o *Order) UpdateCustomerStatus(status Status) error {
	if !status.IsValid() {
		return shared.NewDomainError("INVALID_STATUS", fmt.Sprintf("Unknown order status %q", status))
	}
	if o.Status == status {
		return nil
	}

	previous := o.Status
	o.Status = status
	o.UpdatedAt = time.Now()

	o.AddDomainEvent(NewStatusChangedEvent(o, previous))

	return nil
}

// MarkPaid records a successful payment. Repeated calls with the order
// already paid are no-ops so duplicate gateway deliveries cannot double-fire.
func (o *Order) MarkPaid(amount decimal.Decimal, reference string) error {
	if amount.IsNegative() {
		return shared.NewDomainError("INVALID_AMOUNT", "Payment amount cannot be negative")
	}
	if o.PaymentStatus == PaymentStatusPaid {
		return nil
	}

	now := time.Now()
	o.PaymentStatus = PaymentStatusPaid
	o.PaymentRef = reference
	o.PaidAt = &now
	o.UpdatedAt = now

	o.AddDomainEvent(NewPaidEvent(o, amount))

	return nil
}

// MarkPaymentFailed records a failed payment attempt
func (o *Order) MarkPaymentFailed() {
	if o.PaymentStatus == PaymentStatusPaid || o.PaymentStatus == PaymentStatusRefunded {
		return
	}
	o.PaymentStatus = PaymentStatusFailed
	o.UpdatedAt = time.Now()
}

// MarkRefunded transitions the order into the refunded state
func (o *Order) MarkRefunded(amount decimal.Decimal, reason string) error {
	if o.PaymentStatus != PaymentStatusPaid {
		return shared.NewDomainError("INVALID_STATE", "Only paid orders can be refunded")
	}
	if amount.LessThanOrEqual(decimal.Zero) {
		return shared.NewDomainError("INVALID_AMOUNT", "Refund amount must be positive")
	}
	if amount.GreaterThan(o.GrandTotal) {
		return shared.NewDomainError("INVALID_AMOUNT", "Refund amount cannot exceed grand total")
	}

	now := time.Now()
	o.PaymentStatus = PaymentStatusRefunded
	o.Status = StatusRefunded
	o.RefundedAmount = amount
	o.RefundReason = reason
	o.RefundedAt = &now
	o.UpdatedAt = now

	o.AddDomainEvent(NewRefundedEvent(o, amount, reason))

	return nil
}

// ApplyFulfillmentResult records provider ids after a successful dispatch and
// moves the order into PROCESSING with payment due to the provider.
func (o *Order) ApplyFulfillmentResult(providerOrderID, shipmentOrderID string, amountDue decimal.Decimal) error {
	if providerOrderID == "" {
		return shared.NewDomainError("INVALID_PROVIDER_ORDER", "Provider order ID cannot be empty")
	}

	o.ProviderOrderID = providerOrderID
	o.ProviderShipmentOrderID = shipmentOrderID
	o.ProviderOrderStatus = "CREATED"
	o.ProviderAmountDue = amountDue
	o.ProviderPaymentPending = true
	o.UpdatedAt = time.Now()

	return o.UpdateCustomerStatus(StatusProcessing)
}

// GetItem returns an item by its ID
func (o *Order) GetItem(itemID uuid.UUID) *Item {
	for idx := range o.Items {
		if o.Items[idx].ID == itemID {
			return &o.Items[idx]
		}
	}
	return nil
}

// IsGuest returns true when the order has no associated customer
func (o *Order) IsGuest() bool {
	return o.CustomerID == nil
}

// ItemCount returns the number of purchased lines
func (o *Order) ItemCount() int {
	return len(o.Items)
}

func (o *Order) recalculateTotal() {
	total := decimal.Zero
	for _, item := range o.Items {
		total = total.Add(item.Amount)
	}
	o.GrandTotal = total
}
