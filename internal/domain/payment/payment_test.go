package payment

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testWebhookEvent() *WebhookEvent {
	return &WebhookEvent{
		EventID:     "evt_abc123",
		EventType:   "charge.success",
		Reference:   "krp_ref_1",
		OrderNumber: "DS-2026-0001",
		Amount:      decimal.NewFromInt(15000),
		Currency:    "NGN",
		Status:      StatusSuccess,
	}
}

func TestNewFromWebhook(t *testing.T) {
	raw := []byte(`{"event":"charge.success"}`)
	p, err := NewFromWebhook(GatewayKorapay, testWebhookEvent(), raw)
	require.NoError(t, err)

	assert.Equal(t, GatewayKorapay, p.Gateway)
	assert.Equal(t, "evt_abc123", p.GatewayEventID)
	assert.Equal(t, "DS-2026-0001", p.OrderNumber)
	assert.True(t, p.IsSuccessful())
	require.NotNil(t, p.ProcessedAt)
	assert.JSONEq(t, string(raw), string(p.RawPayload))

	events := p.GetDomainEvents()
	require.Len(t, events, 1)
	assert.Equal(t, EventTypePaymentRecorded, events[0].EventType())
}

func TestNewFromWebhook_Validation(t *testing.T) {
	_, err := NewFromWebhook(GatewayKorapay, nil, nil)
	assert.Error(t, err)

	ev := testWebhookEvent()
	ev.EventID = ""
	_, err = NewFromWebhook(GatewayKorapay, ev, nil)
	assert.Error(t, err)

	ev = testWebhookEvent()
	ev.Reference = ""
	_, err = NewFromWebhook(GatewayKorapay, ev, nil)
	assert.Error(t, err)

	ev = testWebhookEvent()
	ev.Status = Status("WEIRD")
	_, err = NewFromWebhook(GatewayKorapay, ev, nil)
	assert.Error(t, err)
}

func TestChargeRequest_Validate(t *testing.T) {
	valid := ChargeRequest{
		Reference:     "krp_ref_1",
		OrderNumber:   "DS-2026-0001",
		Amount:        decimal.NewFromInt(100),
		Currency:      "NGN",
		CustomerEmail: "ada@example.com",
	}
	require.NoError(t, valid.Validate())

	tests := []struct {
		name   string
		mutate func(*ChargeRequest)
	}{
		{"missing reference", func(r *ChargeRequest) { r.Reference = "" }},
		{"zero amount", func(r *ChargeRequest) { r.Amount = decimal.Zero }},
		{"missing currency", func(r *ChargeRequest) { r.Currency = "" }},
		{"missing email", func(r *ChargeRequest) { r.CustomerEmail = "" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := valid
			tt.mutate(&req)
			assert.Error(t, req.Validate())
		})
	}
}
