package dropship

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/dropship/backend/internal/domain/dropship"
)

// FulfillmentError is raised when every interface version rejected a dispatch.
// It wraps the last provider error so callers can inspect the failure chain.
type FulfillmentError struct {
	OrderNumber string
	LastErr     error
}

func (e *FulfillmentError) Error() string {
	return fmt.Sprintf("dropship: fulfillment of %s failed on all interfaces: %v", e.OrderNumber, e.LastErr)
}

func (e *FulfillmentError) Unwrap() error {
	return e.LastErr
}

// FallbackStrategy dispatches orders via the provider's v2 interface and, on
// any v2 failure, retries exactly once on v3 with the identical payload.
// Attempts are strictly sequential and not idempotent at the provider level;
// callers guard against double dispatch.
type FallbackStrategy struct {
	provider dropship.FulfillmentProvider
	logger   *zap.Logger
}

// NewFallbackStrategy creates a dispatch strategy over the given provider
func NewFallbackStrategy(provider dropship.FulfillmentProvider, logger *zap.Logger) *FallbackStrategy {
	return &FallbackStrategy{
		provider: provider,
		logger:   logger,
	}
}

// Dispatch creates the order on the provider. A v2 success never touches v3;
// a v2 failure gets exactly one v3 attempt before the error propagates.
func (s *FallbackStrategy) Dispatch(ctx context.Context, req *dropship.DispatchRequest) (*dropship.DispatchResult, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	result, v2Err := s.provider.CreateOrderV2(ctx, req)
	if v2Err == nil {
		return result, nil
	}

	s.logger.Warn("v2 dispatch failed, falling back to v3",
		zap.String("order_number", req.OrderNumber),
		zap.String("provider", s.provider.Name()),
		zap.Error(v2Err),
	)

	result, v3Err := s.provider.CreateOrderV3(ctx, req)
	if v3Err == nil {
		return result, nil
	}

	s.logger.Error("dispatch failed on all interfaces",
		zap.String("order_number", req.OrderNumber),
		zap.String("provider", s.provider.Name()),
		zap.NamedError("v2_error", v2Err),
		zap.NamedError("v3_error", v3Err),
	)

	return nil, &FulfillmentError{
		OrderNumber: req.OrderNumber,
		LastErr:     v3Err,
	}
}

// Ensure FallbackStrategy implements the dispatcher port
var _ dropship.Dispatcher = (*FallbackStrategy)(nil)
