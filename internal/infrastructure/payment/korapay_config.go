// Package payment contains the Korapay adapter for the payment gateway port.
package payment

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"time"

	"github.com/dropship/backend/internal/infrastructure/config"
)

// KorapayProductionAPIURL is the production merchant API endpoint
const KorapayProductionAPIURL = "https://api.korapay.com/merchant/api/v1"

// Errors for Korapay configuration
var (
	ErrKorapayConfigMissingSecretKey = errors.New("korapay: secret key is required")
	ErrKorapayConfigMissingPublicKey = errors.New("korapay: public key is required")
)

// KorapayConfig holds configuration for the Korapay merchant API
type KorapayConfig struct {
	// BaseURL is the merchant API base URL
	BaseURL string
	// PublicKey identifies the merchant on charge initiation
	PublicKey string
	// SecretKey authenticates API calls and verifies webhook signatures
	SecretKey string
	// RedirectURL is where the hosted checkout sends the customer afterwards
	RedirectURL string
	// Timeout is the per-request HTTP timeout
	Timeout time.Duration
}

// NewKorapayConfig creates a Korapay configuration with defaults
func NewKorapayConfig(publicKey, secretKey string) *KorapayConfig {
	return &KorapayConfig{
		BaseURL:   KorapayProductionAPIURL,
		PublicKey: publicKey,
		SecretKey: secretKey,
		Timeout:   15 * time.Second,
	}
}

// KorapayConfigFromApp builds an adapter configuration from the application config
func KorapayConfigFromApp(appCfg config.KorapayConfig) *KorapayConfig {
	cfg := NewKorapayConfig(appCfg.PublicKey, appCfg.SecretKey)
	if appCfg.BaseURL != "" {
		cfg.BaseURL = appCfg.BaseURL
	}
	if appCfg.RedirectURL != "" {
		cfg.RedirectURL = appCfg.RedirectURL
	}
	if appCfg.Timeout > 0 {
		cfg.Timeout = appCfg.Timeout
	}
	return cfg
}

// Validate validates the Korapay configuration, filling defaults for zero values
func (c *KorapayConfig) Validate() error {
	if c.SecretKey == "" {
		return ErrKorapayConfigMissingSecretKey
	}
	if c.PublicKey == "" {
		return ErrKorapayConfigMissingPublicKey
	}
	if c.BaseURL == "" {
		c.BaseURL = KorapayProductionAPIURL
	}
	if c.Timeout <= 0 {
		c.Timeout = 15 * time.Second
	}
	return nil
}

// Sign computes the webhook signature: lowercase hex HMAC-SHA256 over the
// raw request body with the secret key.
func (c *KorapayConfig) Sign(body []byte) string {
	h := hmac.New(sha256.New, []byte(c.SecretKey))
	h.Write(body)
	return hex.EncodeToString(h.Sum(nil))
}
