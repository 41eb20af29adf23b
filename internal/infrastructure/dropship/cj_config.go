// Package dropship contains the CJ Dropshipping adapter for the fulfillment
// provider port.
package dropship

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"time"

	"github.com/dropship/backend/internal/infrastructure/config"
)

// CJProductionAPIURL is the production API endpoint
const CJProductionAPIURL = "https://developers.cjdropshipping.com/api2.0/v1"

// Errors for CJ configuration
var (
	ErrCJConfigMissingAppID  = errors.New("cj: app id is required")
	ErrCJConfigMissingAPIKey = errors.New("cj: api key is required")
)

// CJConfig holds configuration for the CJ Dropshipping API
type CJConfig struct {
	// BaseURL is the API base URL including the version prefix
	BaseURL string
	// AppID identifies the application on the CJ open platform
	AppID string
	// APIKey authenticates requests; also the signing fallback
	APIKey string
	// APISecret signs requests when present
	APISecret string
	// TokenTTL is how long a fetched access token is cached
	TokenTTL time.Duration
	// Timeout is the per-request HTTP timeout
	Timeout time.Duration
	// Retries is the number of additional attempts on transport errors
	Retries int
	// RetryWait is the fixed pause between attempts
	RetryWait time.Duration
}

// NewCJConfig creates a CJ configuration with defaults
func NewCJConfig(appID, apiKey, apiSecret string) *CJConfig {
	return &CJConfig{
		BaseURL:   CJProductionAPIURL,
		AppID:     appID,
		APIKey:    apiKey,
		APISecret: apiSecret,
		TokenTTL:  3500 * time.Second,
		Timeout:   10 * time.Second,
		Retries:   2,
		RetryWait: 200 * time.Millisecond,
	}
}

// CJConfigFromApp builds an adapter configuration from the application config
func CJConfigFromApp(appCfg config.CJConfig) *CJConfig {
	cfg := NewCJConfig(appCfg.AppID, appCfg.APIKey, appCfg.APISecret)
	if appCfg.BaseURL != "" {
		cfg.BaseURL = appCfg.BaseURL
	}
	if appCfg.TokenTTL > 0 {
		cfg.TokenTTL = appCfg.TokenTTL
	}
	if appCfg.Timeout > 0 {
		cfg.Timeout = appCfg.Timeout
	}
	if appCfg.Retries > 0 {
		cfg.Retries = appCfg.Retries
	}
	if appCfg.RetryWait > 0 {
		cfg.RetryWait = appCfg.RetryWait
	}
	return cfg
}

// Validate validates the CJ configuration, filling defaults for zero values
func (c *CJConfig) Validate() error {
	if c.AppID == "" {
		return ErrCJConfigMissingAppID
	}
	if c.APIKey == "" {
		return ErrCJConfigMissingAPIKey
	}
	if c.BaseURL == "" {
		c.BaseURL = CJProductionAPIURL
	}
	if c.TokenTTL <= 0 {
		c.TokenTTL = 3500 * time.Second
	}
	if c.Timeout <= 0 {
		c.Timeout = 10 * time.Second
	}
	if c.Retries < 0 {
		c.Retries = 2
	}
	if c.RetryWait <= 0 {
		c.RetryWait = 200 * time.Millisecond
	}
	return nil
}

// SigningSecret returns the key used for request signatures. CJ accounts
// without a dedicated secret sign with the API key itself.
func (c *CJConfig) SigningSecret() string {
	if c.APISecret != "" {
		return c.APISecret
	}
	return c.APIKey
}

// Sign computes the request signature: lowercase hex HMAC-SHA256 over the
// timestamp concatenated with the raw JSON body.
func (c *CJConfig) Sign(timestamp string, body []byte) string {
	h := hmac.New(sha256.New, []byte(c.SigningSecret()))
	h.Write([]byte(timestamp))
	h.Write(body)
	return hex.EncodeToString(h.Sum(nil))
}
