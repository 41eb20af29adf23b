package order

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/dropship/backend/internal/domain/shared"
)

// Aggregate type constant
const AggregateTypeOrder = "Order"

// Event type constants
const (
	EventTypeOrderCreated       = "OrderCreated"
	EventTypeOrderStatusChanged = "OrderStatusChanged"
	EventTypeOrderPaid          = "OrderPaid"
	EventTypeOrderRefunded      = "OrderRefunded"
)

// CreatedEvent is raised when a new order is created at checkout
type CreatedEvent struct {
	shared.BaseDomainEvent
	OrderID       uuid.UUID  `json:"order_id"`
	OrderNumber   string     `json:"order_number"`
	CustomerID    *uuid.UUID `json:"customer_id,omitempty"`
	CustomerEmail string     `json:"customer_email"`
	Currency      string     `json:"currency"`
}

// NewCreatedEvent creates a new CreatedEvent
func NewCreatedEvent(o *Order) *CreatedEvent {
	return &CreatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeOrderCreated, AggregateTypeOrder, o.ID),
		OrderID:         o.ID,
		OrderNumber:     o.OrderNumber,
		CustomerID:      o.CustomerID,
		CustomerEmail:   o.CustomerEmail,
		Currency:        o.Currency,
	}
}

// EventType returns the event type name
func (e *CreatedEvent) EventType() string {
	return EventTypeOrderCreated
}

// StatusChangedEvent is raised exactly once per actual customer-status change.
// It is the source for customer-facing shipping notifications.
type StatusChangedEvent struct {
	shared.BaseDomainEvent
	OrderID        uuid.UUID  `json:"order_id"`
	OrderNumber    string     `json:"order_number"`
	CustomerID     *uuid.UUID `json:"customer_id,omitempty"`
	CustomerEmail  string     `json:"customer_email"`
	PreviousStatus Status     `json:"previous_status"`
	NewStatus      Status     `json:"new_status"`
}

// NewStatusChangedEvent creates a new StatusChangedEvent
func NewStatusChangedEvent(o *Order, previous Status) *StatusChangedEvent {
	return &StatusChangedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeOrderStatusChanged, AggregateTypeOrder, o.ID),
		OrderID:         o.ID,
		OrderNumber:     o.OrderNumber,
		CustomerID:      o.CustomerID,
		CustomerEmail:   o.CustomerEmail,
		PreviousStatus:  previous,
		NewStatus:       o.Status,
	}
}

// EventType returns the event type name
func (e *StatusChangedEvent) EventType() string {
	return EventTypeOrderStatusChanged
}

// PaidEvent is raised when a payment is confirmed for the order
type PaidEvent struct {
	shared.BaseDomainEvent
	OrderID       uuid.UUID       `json:"order_id"`
	OrderNumber   string          `json:"order_number"`
	CustomerEmail string          `json:"customer_email"`
	Amount        decimal.Decimal `json:"amount"`
	Currency      string          `json:"currency"`
	PaymentRef    string          `json:"payment_ref"`
}

// NewPaidEvent creates a new PaidEvent
func NewPaidEvent(o *Order, amount decimal.Decimal) *PaidEvent {
	return &PaidEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeOrderPaid, AggregateTypeOrder, o.ID),
		OrderID:         o.ID,
		OrderNumber:     o.OrderNumber,
		CustomerEmail:   o.CustomerEmail,
		Amount:          amount,
		Currency:        o.Currency,
		PaymentRef:      o.PaymentRef,
	}
}

// EventType returns the event type name
func (e *PaidEvent) EventType() string {
	return EventTypeOrderPaid
}

// RefundedEvent is raised when an order is refunded
type RefundedEvent struct {
	shared.BaseDomainEvent
	OrderID       uuid.UUID       `json:"order_id"`
	OrderNumber   string          `json:"order_number"`
	CustomerEmail string          `json:"customer_email"`
	Amount        decimal.Decimal `json:"amount"`
	Currency      string          `json:"currency"`
	Reason        string          `json:"reason"`
}

// NewRefundedEvent creates a new RefundedEvent
func NewRefundedEvent(o *Order, amount decimal.Decimal, reason string) *RefundedEvent {
	return &RefundedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeOrderRefunded, AggregateTypeOrder, o.ID),
		OrderID:         o.ID,
		OrderNumber:     o.OrderNumber,
		CustomerEmail:   o.CustomerEmail,
		Amount:          amount,
		Currency:        o.Currency,
		Reason:          reason,
	}
}

// EventType returns the event type name
func (e *RefundedEvent) EventType() string {
	return EventTypeOrderRefunded
}
