package dropship

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// ---------------------------------------------------------------------------
// FulfillmentProvider Errors
// ---------------------------------------------------------------------------

var (
	// Provider errors
	ErrProviderNotConfigured   = errors.New("dropship: provider not configured")
	ErrProviderUnavailable     = errors.New("dropship: provider temporarily unavailable")
	ErrProviderRequestFailed   = errors.New("dropship: provider request failed")
	ErrProviderInvalidResponse = errors.New("dropship: invalid provider response")
	ErrProviderAuthFailed      = errors.New("dropship: provider authentication failed")
	ErrProviderRateLimited     = errors.New("dropship: provider rate limited")
	ErrDeprecatedEndpoint      = errors.New("dropship: endpoint is deprecated and must not be called")

	// Dispatch errors
	ErrDispatchInvalidRequest = errors.New("dropship: invalid dispatch request")
	ErrDispatchRejected       = errors.New("dropship: dispatch rejected by provider")

	// Tracking errors
	ErrTrackingNotFound = errors.New("dropship: tracking number not found")
)

// ProviderError carries the provider's own error code and message alongside
// the HTTP status the call returned. It wraps one of the sentinel errors so
// callers can branch with errors.Is while still logging the raw detail.
type ProviderError struct {
	Endpoint   string
	HTTPStatus int
	Code       string
	Message    string
	RequestID  string
	Body       string
	Sentinel   error
}

func (e *ProviderError) Error() string {
	return fmt.Sprintf("dropship: %s failed (http %d, code %s): %s", e.Endpoint, e.HTTPStatus, e.Code, e.Message)
}

func (e *ProviderError) Unwrap() error {
	return e.Sentinel
}

// NewProviderError builds a ProviderError wrapping the given sentinel
func NewProviderError(endpoint string, httpStatus int, code, message string, sentinel error) *ProviderError {
	if sentinel == nil {
		sentinel = ErrProviderRequestFailed
	}
	return &ProviderError{
		Endpoint:   endpoint,
		HTTPStatus: httpStatus,
		Code:       code,
		Message:    message,
		Sentinel:   sentinel,
	}
}

// ---------------------------------------------------------------------------
// Dispatch Types
// ---------------------------------------------------------------------------

// DispatchItem is one product line sent to the provider
type DispatchItem struct {
	// VariantID is the provider's variant identifier (vid)
	VariantID string
	// Quantity is the number of units
	Quantity int
	// UnitPrice is informational; the provider prices from its own catalog
	UnitPrice decimal.Decimal
}

// DispatchRequest is a provider-agnostic order creation request
type DispatchRequest struct {
	// OrderNumber is our order reference, used as the provider-side order name
	OrderNumber string
	// ShippingZip, ShippingCountryCode etc. describe the consignee
	ConsigneeName       string
	ConsigneePhone      string
	ShippingCountryCode string
	ShippingProvince    string
	ShippingCity        string
	ShippingAddress     string
	ShippingZip         string
	// LogisticName selects the provider's shipping product (optional)
	LogisticName string
	// FromCountryCode is the origin warehouse country
	FromCountryCode string
	// Items are the product lines to fulfill
	Items []DispatchItem
	// Remark is free text forwarded to the provider
	Remark string
}

// Validate validates the dispatch request
func (r *DispatchRequest) Validate() error {
	if r.OrderNumber == "" {
		return fmt.Errorf("%w: order number is required", ErrDispatchInvalidRequest)
	}
	if r.ConsigneeName == "" {
		return fmt.Errorf("%w: consignee name is required", ErrDispatchInvalidRequest)
	}
	if r.ShippingCountryCode == "" {
		return fmt.Errorf("%w: shipping country is required", ErrDispatchInvalidRequest)
	}
	if len(r.Items) == 0 {
		return fmt.Errorf("%w: at least one item is required", ErrDispatchInvalidRequest)
	}
	for _, item := range r.Items {
		if item.VariantID == "" {
			return fmt.Errorf("%w: item variant id is required", ErrDispatchInvalidRequest)
		}
		if item.Quantity <= 0 {
			return fmt.Errorf("%w: item quantity must be positive", ErrDispatchInvalidRequest)
		}
	}
	return nil
}

// DispatchResult is the provider's response to a successful order creation
type DispatchResult struct {
	// ProviderOrderID is the provider's id for the created order
	ProviderOrderID string
	// ShipmentOrderID is the provider's shipment reference, when returned
	ShipmentOrderID string
	// AmountDue is what the provider will charge for fulfillment
	AmountDue decimal.Decimal
	// PaymentPending is true while the provider still awaits wallet payment
	PaymentPending bool
	// InterfaceVersion records which API version produced this result
	InterfaceVersion string
}

// ---------------------------------------------------------------------------
// Tracking Types
// ---------------------------------------------------------------------------

// TrackPoint is one scan event from the provider's tracking feed
type TrackPoint struct {
	StatusCode  string
	Description string
	Location    string
	OccurredAt  time.Time
}

// TrackingInfo is the provider's view of one parcel
type TrackingInfo struct {
	TrackingNumber string
	Carrier        string
	DeliveryStatus string
	Points         []TrackPoint
}

// ProviderOrderStatus is the provider's view of a created order
type ProviderOrderStatus struct {
	ProviderOrderID string
	Status          string
	OrderAmount     decimal.Decimal
	PostageAmount   decimal.Decimal
	StorageID       string
	TrackingNumber  string
	// Raw is the full payload for snapshot storage
	Raw map[string]any
}

// ---------------------------------------------------------------------------
// FulfillmentProvider Port Interface
// ---------------------------------------------------------------------------

// FulfillmentProvider is the port for external dropshipping providers.
// It is defined in the domain layer; concrete adapters live in infrastructure.
type FulfillmentProvider interface {
	// Name returns the provider identifier, e.g. "CJ"
	Name() string

	// CreateOrderV2 creates an order on the legacy interface
	CreateOrderV2(ctx context.Context, req *DispatchRequest) (*DispatchResult, error)

	// CreateOrderV3 creates an order on the current interface
	CreateOrderV3(ctx context.Context, req *DispatchRequest) (*DispatchResult, error)

	// GetOrder retrieves a created order by the provider's order id
	GetOrder(ctx context.Context, providerOrderID string) (*ProviderOrderStatus, error)

	// GetTracking retrieves tracking events for one tracking number
	GetTracking(ctx context.Context, trackingNumber string) (*TrackingInfo, error)
}

// Dispatcher turns a dispatch request into a provider order, applying the
// version fallback policy. Implementations decide which interface versions
// to try and in what sequence.
type Dispatcher interface {
	Dispatch(ctx context.Context, req *DispatchRequest) (*DispatchResult, error)
}

// ---------------------------------------------------------------------------
// Supporting Ports
// ---------------------------------------------------------------------------

// AlertSink receives operator-facing notifications about provider failures.
// Delivery is best effort; implementations must not block the caller.
type AlertSink interface {
	NotifyProviderFailure(ctx context.Context, provider, endpoint string, httpStatus int, detail string)
}

// TokenCache stores short-lived provider access tokens
type TokenCache interface {
	Get(ctx context.Context, key string) (string, bool)
	Set(ctx context.Context, key, token string, ttl time.Duration)
	Delete(ctx context.Context, key string)
}
