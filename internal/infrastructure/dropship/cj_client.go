package dropship

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"go.uber.org/zap"

	"github.com/dropship/backend/internal/domain/dropship"
)

// maxResponseSize is the maximum allowed response size from the CJ API (10MB)
const maxResponseSize = 10 * 1024 * 1024

// accessTokenCacheKey is the TokenCache key for the shared access token
const accessTokenCacheKey = "cj:access_token"

// CJClient implements the fulfillment provider port against the CJ
// Dropshipping Shopping API.
type CJClient struct {
	config     *CJConfig
	httpClient *http.Client
	tokens     dropship.TokenCache
	alerts     dropship.AlertSink
	logger     *zap.Logger
}

// NewCJClient creates a new CJ client with the given configuration
func NewCJClient(cfg *CJConfig, tokens dropship.TokenCache, alerts dropship.AlertSink, logger *zap.Logger) (*CJClient, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &CJClient{
		config: cfg,
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
		},
		tokens: tokens,
		alerts: alerts,
		logger: logger,
	}, nil
}

// Name returns the provider identifier
func (c *CJClient) Name() string {
	return "cj"
}

// CreateOrder is the retired v1 order-creation endpoint. It fails
// unconditionally before any network call so nothing can silently depend on
// the retired contract.
func (c *CJClient) CreateOrder(ctx context.Context, req *dropship.DispatchRequest) (*dropship.DispatchResult, error) {
	return nil, fmt.Errorf("%w: shopping/order/createOrder (use createOrderV2 or createOrderV3)", dropship.ErrDeprecatedEndpoint)
}

// CreateOrderV2 creates an order on the v2 interface
func (c *CJClient) CreateOrderV2(ctx context.Context, req *dropship.DispatchRequest) (*dropship.DispatchResult, error) {
	return c.createOrder(ctx, "/shopping/order/createOrderV2", "v2", req)
}

// CreateOrderV3 creates an order on the v3 interface with the identical payload
func (c *CJClient) CreateOrderV3(ctx context.Context, req *dropship.DispatchRequest) (*dropship.DispatchResult, error) {
	return c.createOrder(ctx, "/shopping/order/createOrderV3", "v3", req)
}

func (c *CJClient) createOrder(ctx context.Context, endpoint, version string, req *dropship.DispatchRequest) (*dropship.DispatchResult, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	env, err := c.doRequest(ctx, http.MethodPost, endpoint, newCJCreateOrderRequest(req))
	if err != nil {
		return nil, err
	}

	var data cjCreateOrderData
	if err := json.Unmarshal(env.Data, &data); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", dropship.ErrProviderInvalidResponse, endpoint, err)
	}
	if data.OrderID == "" {
		return nil, fmt.Errorf("%w: %s returned no order id", dropship.ErrProviderInvalidResponse, endpoint)
	}

	return data.toDispatchResult(version), nil
}

// GetOrder retrieves a created order by the provider's order id
func (c *CJClient) GetOrder(ctx context.Context, providerOrderID string) (*dropship.ProviderOrderStatus, error) {
	env, err := c.doRequest(ctx, http.MethodGet, "/shopping/order/getOrderDetail?orderId="+providerOrderID, nil)
	if err != nil {
		return nil, err
	}

	var data cjOrderDetailData
	if err := json.Unmarshal(env.Data, &data); err != nil {
		return nil, fmt.Errorf("%w: getOrderDetail: %v", dropship.ErrProviderInvalidResponse, err)
	}

	return data.toProviderOrderStatus(env.Data)
}

// GetTracking retrieves tracking events for one tracking number
func (c *CJClient) GetTracking(ctx context.Context, trackingNumber string) (*dropship.TrackingInfo, error) {
	env, err := c.doRequest(ctx, http.MethodGet, "/logistics/track?trackNumber="+trackingNumber, nil)
	if err != nil {
		return nil, err
	}
	if len(env.Data) == 0 || string(env.Data) == "null" {
		return nil, fmt.Errorf("%w: %s", dropship.ErrTrackingNotFound, trackingNumber)
	}

	var data cjTrackData
	if err := json.Unmarshal(env.Data, &data); err != nil {
		return nil, fmt.Errorf("%w: logistics/track: %v", dropship.ErrProviderInvalidResponse, err)
	}

	return data.toTrackingInfo(), nil
}

// ListDisputes lists open disputes on the provider account
func (c *CJClient) ListDisputes(ctx context.Context, pageNum, pageSize int) ([]cjDispute, error) {
	path := fmt.Sprintf("/disputes/getDisputeList?pageNum=%d&pageSize=%d", pageNum, pageSize)
	env, err := c.doRequest(ctx, http.MethodGet, path, nil)
	if err != nil {
		return nil, err
	}

	var data cjDisputeListData
	if err := json.Unmarshal(env.Data, &data); err != nil {
		return nil, fmt.Errorf("%w: getDisputeList: %v", dropship.ErrProviderInvalidResponse, err)
	}
	return data.List, nil
}

// ConfirmDispute accepts the provider's resolution for a dispute
func (c *CJClient) ConfirmDispute(ctx context.Context, disputeID string) error {
	_, err := c.doRequest(ctx, http.MethodPost, "/disputes/confirmDispute", map[string]string{
		"disputeId": disputeID,
	})
	return err
}

// getAccessToken returns the cached access token, fetching a fresh one on a
// cache miss. Concurrent refreshes are tolerated: both fetches succeed and the
// second write wins.
func (c *CJClient) getAccessToken(ctx context.Context) (string, error) {
	if token, ok := c.tokens.Get(ctx, accessTokenCacheKey); ok {
		return token, nil
	}

	body, err := json.Marshal(map[string]string{
		"appId":  c.config.AppID,
		"apiKey": c.config.APIKey,
	})
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.config.BaseURL+"/authentication/getAccessToken", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("cj: failed to create token request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: %v", dropship.ErrProviderUnavailable, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return "", fmt.Errorf("cj: failed to read token response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return "", c.providerError("authentication/getAccessToken", resp.StatusCode, respBody)
	}

	var env cjEnvelope
	if err := json.Unmarshal(respBody, &env); err != nil {
		return "", fmt.Errorf("%w: getAccessToken: %v", dropship.ErrProviderInvalidResponse, err)
	}
	if !env.Result {
		return "", c.envelopeError("authentication/getAccessToken", resp.StatusCode, &env)
	}

	var data cjAccessTokenData
	if err := json.Unmarshal(env.Data, &data); err != nil || data.AccessToken == "" {
		return "", fmt.Errorf("%w: getAccessToken returned no token", dropship.ErrProviderAuthFailed)
	}

	c.tokens.Set(ctx, accessTokenCacheKey, data.AccessToken, c.config.TokenTTL)
	return data.AccessToken, nil
}

// doRequest performs a signed request against the CJ API and unwraps the
// response envelope. Transport failures are retried a fixed number of times
// with a fixed pause; HTTP and envelope errors are never retried.
func (c *CJClient) doRequest(ctx context.Context, method, endpoint string, payload any) (*cjEnvelope, error) {
	var body []byte
	if payload != nil {
		var err error
		body, err = json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("cj: failed to marshal request: %w", err)
		}
	}

	token, err := c.getAccessToken(ctx)
	if err != nil {
		return nil, err
	}

	timestamp := strconv.FormatInt(time.Now().UnixMilli(), 10)
	signature := c.config.Sign(timestamp, body)

	var resp *http.Response
	var lastErr error
	for attempt := 0; attempt <= c.config.Retries; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(c.config.RetryWait):
			}
		}

		req, err := http.NewRequestWithContext(ctx, method, c.config.BaseURL+endpoint, bytes.NewReader(body))
		if err != nil {
			return nil, fmt.Errorf("cj: failed to create request: %w", err)
		}
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("CJ-APPID", c.config.AppID)
		req.Header.Set("CJ-APIKEY", c.config.APIKey)
		req.Header.Set("CJ-TIMESTAMP", timestamp)
		req.Header.Set("CJ-SIGN", signature)
		req.Header.Set("CJ-Access-Token", token)

		resp, lastErr = c.httpClient.Do(req)
		if lastErr == nil {
			break
		}
		c.logger.Warn("cj request transport failure",
			zap.String("endpoint", endpoint),
			zap.Int("attempt", attempt+1),
			zap.Error(lastErr),
		)
	}
	if lastErr != nil {
		return nil, fmt.Errorf("%w: %s: %v", dropship.ErrProviderUnavailable, endpoint, lastErr)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return nil, fmt.Errorf("cj: failed to read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, c.providerError(endpoint, resp.StatusCode, respBody)
	}

	var env cjEnvelope
	if err := json.Unmarshal(respBody, &env); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", dropship.ErrProviderInvalidResponse, endpoint, err)
	}
	if !env.Result {
		return nil, c.envelopeError(endpoint, resp.StatusCode, &env)
	}

	return &env, nil
}

// providerError builds a ProviderError from a non-2xx response, notifying the
// alert sink for server-side failures and rate limits.
func (c *CJClient) providerError(endpoint string, httpStatus int, respBody []byte) error {
	var env cjEnvelope
	code := ""
	message := ""
	requestID := ""
	if err := json.Unmarshal(respBody, &env); err == nil {
		code = env.Code.String()
		message = env.Message
		requestID = env.RequestID
	}

	sentinel := dropship.ErrProviderRequestFailed
	switch {
	case httpStatus == http.StatusUnauthorized || httpStatus == http.StatusForbidden:
		sentinel = dropship.ErrProviderAuthFailed
	case httpStatus == http.StatusTooManyRequests:
		sentinel = dropship.ErrProviderRateLimited
	case httpStatus >= 500:
		sentinel = dropship.ErrProviderUnavailable
	}

	if httpStatus >= 500 || httpStatus == http.StatusTooManyRequests {
		if c.alerts != nil {
			c.alerts.NotifyProviderFailure(context.Background(), c.Name(), endpoint, httpStatus, message)
		}
	}

	perr := dropship.NewProviderError(endpoint, httpStatus, code, message, sentinel)
	perr.RequestID = requestID
	perr.Body = string(respBody)
	return perr
}

// envelopeError builds a ProviderError from a 2xx response whose envelope
// reports result=false.
func (c *CJClient) envelopeError(endpoint string, httpStatus int, env *cjEnvelope) error {
	perr := dropship.NewProviderError(endpoint, httpStatus, env.Code.String(), env.Message, dropship.ErrDispatchRejected)
	perr.RequestID = env.RequestID
	return perr
}

// Ensure CJClient implements the fulfillment provider port
var _ dropship.FulfillmentProvider = (*CJClient)(nil)
