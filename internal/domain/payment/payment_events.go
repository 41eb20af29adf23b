package payment

import (
	"github.com/shopspring/decimal"

	"github.com/dropship/backend/internal/domain/shared"
)

// AggregateTypePayment is the aggregate type name for payment events
const AggregateTypePayment = "Payment"

// Event type constants
const (
	EventTypePaymentRecorded = "PaymentRecorded"
)

// RecordedEvent is raised when a gateway payment is recorded
type RecordedEvent struct {
	shared.BaseDomainEvent
	Gateway     GatewayType     `json:"gateway"`
	Reference   string          `json:"reference"`
	OrderNumber string          `json:"order_number"`
	Amount      decimal.Decimal `json:"amount"`
	Currency    string          `json:"currency"`
	Status      Status          `json:"status"`
}

// NewRecordedEvent creates a new payment recorded event
func NewRecordedEvent(p *Payment) *RecordedEvent {
	return &RecordedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypePaymentRecorded, AggregateTypePayment, p.ID),
		Gateway:         p.Gateway,
		Reference:       p.Reference,
		OrderNumber:     p.OrderNumber,
		Amount:          p.Amount,
		Currency:        p.Currency,
		Status:          p.Status,
	}
}

// EventType returns the event type name
func (e *RecordedEvent) EventType() string {
	return EventTypePaymentRecorded
}
