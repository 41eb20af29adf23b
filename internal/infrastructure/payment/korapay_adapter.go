package payment

import (
	"bytes"
	"context"
	"crypto/hmac"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"go.uber.org/zap"

	"github.com/dropship/backend/internal/domain/payment"
)

const korapayMaxResponseSize = 1 << 20 // 1MB

// KorapayAdapter implements the payment gateway port against Korapay's
// merchant API and webhook scheme.
type KorapayAdapter struct {
	config     *KorapayConfig
	httpClient *http.Client
	logger     *zap.Logger
}

// NewKorapayAdapter creates a Korapay gateway adapter
func NewKorapayAdapter(cfg *KorapayConfig, logger *zap.Logger) (*KorapayAdapter, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &KorapayAdapter{
		config: cfg,
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
		},
		logger: logger,
	}, nil
}

// GatewayType returns the gateway identifier
func (a *KorapayAdapter) GatewayType() payment.GatewayType {
	return payment.GatewayKorapay
}

// VerifyWebhook checks the x-korapay-signature header against an HMAC of the
// raw body and parses the event. Verification happens before any parsing so a
// forged body is never interpreted.
func (a *KorapayAdapter) VerifyWebhook(_ context.Context, payload []byte, signature string) (*payment.WebhookEvent, error) {
	expected := a.config.Sign(payload)
	if !hmac.Equal([]byte(expected), []byte(signature)) {
		a.logger.Warn("korapay webhook signature mismatch",
			zap.Int("payload_bytes", len(payload)),
		)
		return nil, payment.ErrInvalidSignature
	}

	var body korapayWebhookPayload
	if err := json.Unmarshal(payload, &body); err != nil {
		return nil, fmt.Errorf("%w: %v", payment.ErrMalformedPayload, err)
	}

	ev := body.toWebhookEvent()
	if ev.EventID == "" {
		return nil, fmt.Errorf("%w: missing event id", payment.ErrMalformedPayload)
	}
	if ev.Reference == "" {
		return nil, fmt.Errorf("%w: missing charge reference", payment.ErrMalformedPayload)
	}

	return ev, nil
}

// InitCharge creates a hosted checkout charge and returns the checkout URL
func (a *KorapayAdapter) InitCharge(ctx context.Context, req *payment.ChargeRequest) (*payment.ChargeResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	body, err := json.Marshal(newKorapayChargeRequest(req, a.config.RedirectURL))
	if err != nil {
		return nil, fmt.Errorf("korapay: marshal charge request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost,
		a.config.BaseURL+"/charges/initialize", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("korapay: build request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+a.config.SecretKey)

	resp, err := a.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("korapay: charge request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, korapayMaxResponseSize))
	if err != nil {
		return nil, fmt.Errorf("korapay: read response: %w", err)
	}

	var envelope korapayEnvelope
	if err := json.Unmarshal(respBody, &envelope); err != nil {
		return nil, fmt.Errorf("korapay: decode response (HTTP %d): %w", resp.StatusCode, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 || !envelope.Status {
		a.logger.Error("korapay charge initiation rejected",
			zap.Int("http_status", resp.StatusCode),
			zap.String("message", envelope.Message),
			zap.String("reference", req.Reference),
		)
		return nil, fmt.Errorf("korapay: charge initiation rejected (HTTP %d): %s",
			resp.StatusCode, envelope.Message)
	}

	return &payment.ChargeResponse{
		Reference:   envelope.Data.Reference,
		CheckoutURL: envelope.Data.CheckoutURL,
	}, nil
}

// Ensure KorapayAdapter implements the gateway port
var _ payment.Gateway = (*KorapayAdapter)(nil)
