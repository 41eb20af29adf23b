package payment

import (
	"strings"

	"github.com/shopspring/decimal"

	"github.com/dropship/backend/internal/domain/payment"
)

// korapayWebhookPayload is the raw webhook body. The gateway sends one event
// per delivery; event_id is stable across redeliveries of the same event.
type korapayWebhookPayload struct {
	EventID string             `json:"event_id"`
	Event   string             `json:"event"`
	Data    korapayWebhookData `json:"data"`
}

type korapayWebhookData struct {
	ID        string          `json:"id"`
	Reference string          `json:"reference"`
	Amount    decimal.Decimal `json:"amount"`
	Currency  string          `json:"currency"`
	Status    string          `json:"status"`
	Metadata  korapayMetadata `json:"metadata"`
}

type korapayMetadata struct {
	OrderNumber string `json:"order_number"`
}

// eventID prefers the top-level event id and falls back to the transaction id
// for older payload shapes that omit it
func (p *korapayWebhookPayload) eventID() string {
	if p.EventID != "" {
		return p.EventID
	}
	return p.Data.ID
}

func (p *korapayWebhookPayload) toWebhookEvent() *payment.WebhookEvent {
	return &payment.WebhookEvent{
		EventID:     p.eventID(),
		EventType:   p.Event,
		Reference:   p.Data.Reference,
		OrderNumber: p.Data.Metadata.OrderNumber,
		Amount:      p.Data.Amount,
		Currency:    p.Data.Currency,
		Status:      toPaymentStatus(p.Data.Status),
	}
}

// toPaymentStatus maps the gateway's charge statuses onto the domain statuses
func toPaymentStatus(raw string) payment.Status {
	switch strings.ToLower(raw) {
	case "success", "paid":
		return payment.StatusSuccess
	case "failed", "expired", "cancelled":
		return payment.StatusFailed
	case "pending", "processing":
		return payment.StatusPending
	default:
		return payment.Status(strings.ToUpper(raw))
	}
}

// korapayChargeRequest initializes a hosted checkout charge
type korapayChargeRequest struct {
	Reference   string          `json:"reference"`
	Amount      decimal.Decimal `json:"amount"`
	Currency    string          `json:"currency"`
	RedirectURL string          `json:"redirect_url,omitempty"`
	Customer    korapayCustomer `json:"customer"`
	Metadata    korapayMetadata `json:"metadata"`
	Channels    []string        `json:"channels,omitempty"`
}

type korapayCustomer struct {
	Name  string `json:"name,omitempty"`
	Email string `json:"email"`
}

func newKorapayChargeRequest(req *payment.ChargeRequest, redirectURL string) *korapayChargeRequest {
	if req.RedirectURL != "" {
		redirectURL = req.RedirectURL
	}
	return &korapayChargeRequest{
		Reference:   req.Reference,
		Amount:      req.Amount,
		Currency:    req.Currency,
		RedirectURL: redirectURL,
		Customer: korapayCustomer{
			Name:  req.CustomerName,
			Email: req.CustomerEmail,
		},
		Metadata: korapayMetadata{OrderNumber: req.OrderNumber},
	}
}

// korapayEnvelope is the API response wrapper on merchant API calls
type korapayEnvelope struct {
	Status  bool          `json:"status"`
	Message string        `json:"message"`
	Data    korapayCharge `json:"data"`
}

type korapayCharge struct {
	Reference   string `json:"reference"`
	CheckoutURL string `json:"checkout_url"`
}
