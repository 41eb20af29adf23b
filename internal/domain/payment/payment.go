package payment

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/shopspring/decimal"

	"github.com/dropship/backend/internal/domain/shared"
)

var (
	ErrInvalidSignature = errors.New("payment: invalid webhook signature")
	ErrMalformedPayload = errors.New("payment: malformed webhook payload")
	ErrUnknownGateway   = errors.New("payment: unknown gateway")
)

// GatewayType identifies a payment gateway
type GatewayType string

const (
	GatewayKorapay GatewayType = "KORAPAY"
)

// Status is the lifecycle state of a payment record
type Status string

const (
	StatusPending Status = "PENDING"
	StatusSuccess Status = "SUCCESS"
	StatusFailed  Status = "FAILED"
)

// IsValid checks if the status is a known payment status
func (s Status) IsValid() bool {
	switch s {
	case StatusPending, StatusSuccess, StatusFailed:
		return true
	}
	return false
}

// Payment is one gateway transaction recorded from a webhook or charge
// initiation. Exactly one row exists per gateway event id: duplicate webhook
// deliveries must not create a second record.
type Payment struct {
	shared.BaseAggregateRoot
	Gateway        GatewayType
	Reference      string
	GatewayEventID string
	OrderNumber    string
	Amount         decimal.Decimal
	Currency       string
	Status         Status
	RawPayload     json.RawMessage
	ProcessedAt    *time.Time
}

// NewFromWebhook builds a payment record from a verified webhook event
func NewFromWebhook(gateway GatewayType, ev *WebhookEvent, rawPayload []byte) (*Payment, error) {
	if ev == nil {
		return nil, ErrMalformedPayload
	}
	if ev.EventID == "" || ev.Reference == "" {
		return nil, shared.NewDomainError("INVALID_WEBHOOK", "Webhook event id and reference are required")
	}
	if !ev.Status.IsValid() {
		return nil, shared.NewDomainError("INVALID_WEBHOOK", "Unknown webhook payment status")
	}

	now := time.Now()
	p := &Payment{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		Gateway:           gateway,
		Reference:         ev.Reference,
		GatewayEventID:    ev.EventID,
		OrderNumber:       ev.OrderNumber,
		Amount:            ev.Amount,
		Currency:          ev.Currency,
		Status:            ev.Status,
		RawPayload:        rawPayload,
		ProcessedAt:       &now,
	}

	p.AddDomainEvent(NewRecordedEvent(p))

	return p, nil
}

// IsSuccessful reports whether the gateway confirmed the charge
func (p *Payment) IsSuccessful() bool {
	return p.Status == StatusSuccess
}

// WebhookEvent is the normalized content of a verified gateway webhook
type WebhookEvent struct {
	EventID     string
	EventType   string
	Reference   string
	OrderNumber string
	Amount      decimal.Decimal
	Currency    string
	Status      Status
}

// Gateway is the port for external payment gateways. Concrete adapters
// (Korapay) live in the infrastructure layer.
type Gateway interface {
	// GatewayType returns the gateway this adapter handles
	GatewayType() GatewayType

	// InitCharge creates a charge and returns the checkout URL
	InitCharge(ctx context.Context, req *ChargeRequest) (*ChargeResponse, error)

	// VerifyWebhook checks the webhook signature and parses the payload.
	// Returns ErrInvalidSignature when the signature does not match.
	VerifyWebhook(ctx context.Context, payload []byte, signature string) (*WebhookEvent, error)
}

// ChargeRequest initiates a hosted checkout charge
type ChargeRequest struct {
	Reference     string
	OrderNumber   string
	Amount        decimal.Decimal
	Currency      string
	CustomerName  string
	CustomerEmail string
	RedirectURL   string
}

// Validate validates the charge request
func (r *ChargeRequest) Validate() error {
	if r.Reference == "" {
		return shared.NewDomainError("INVALID_CHARGE", "Charge reference is required")
	}
	if r.Amount.LessThanOrEqual(decimal.Zero) {
		return shared.NewDomainError("INVALID_CHARGE", "Charge amount must be positive")
	}
	if r.Currency == "" {
		return shared.NewDomainError("INVALID_CHARGE", "Charge currency is required")
	}
	if r.CustomerEmail == "" {
		return shared.NewDomainError("INVALID_CHARGE", "Customer email is required")
	}
	return nil
}

// ChargeResponse is the gateway's answer to a charge initiation
type ChargeResponse struct {
	Reference   string
	CheckoutURL string
}

// Repository defines persistence for payment records
type Repository interface {
	Save(ctx context.Context, payment *Payment) error
	FindByID(ctx context.Context, id string) (*Payment, error)
	FindByEventID(ctx context.Context, gatewayEventID string) (*Payment, error)
	FindByReference(ctx context.Context, reference string) (*Payment, error)
	FindByOrderNumber(ctx context.Context, orderNumber string) ([]*Payment, error)
}
