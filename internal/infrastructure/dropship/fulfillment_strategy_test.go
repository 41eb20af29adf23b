package dropship

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/dropship/backend/internal/domain/dropship"
)

// fakeProvider records which interface versions were invoked
type fakeProvider struct {
	v2Result *dropship.DispatchResult
	v2Err    error
	v3Result *dropship.DispatchResult
	v3Err    error

	v2Calls int
	v3Calls int
	v2Reqs  []*dropship.DispatchRequest
	v3Reqs  []*dropship.DispatchRequest
}

func (p *fakeProvider) Name() string { return "fake" }

func (p *fakeProvider) CreateOrderV2(_ context.Context, req *dropship.DispatchRequest) (*dropship.DispatchResult, error) {
	p.v2Calls++
	p.v2Reqs = append(p.v2Reqs, req)
	return p.v2Result, p.v2Err
}

func (p *fakeProvider) CreateOrderV3(_ context.Context, req *dropship.DispatchRequest) (*dropship.DispatchResult, error) {
	p.v3Calls++
	p.v3Reqs = append(p.v3Reqs, req)
	return p.v3Result, p.v3Err
}

func (p *fakeProvider) GetOrder(context.Context, string) (*dropship.ProviderOrderStatus, error) {
	return nil, errors.New("not implemented")
}

func (p *fakeProvider) GetTracking(context.Context, string) (*dropship.TrackingInfo, error) {
	return nil, errors.New("not implemented")
}

func TestFallbackStrategy_V2SuccessNeverTouchesV3(t *testing.T) {
	provider := &fakeProvider{
		v2Result: &dropship.DispatchResult{ProviderOrderID: "CJ-100", InterfaceVersion: "v2"},
	}
	strategy := NewFallbackStrategy(provider, zap.NewNop())

	result, err := strategy.Dispatch(context.Background(), validDispatchRequest())

	require.NoError(t, err)
	assert.Equal(t, "CJ-100", result.ProviderOrderID)
	assert.Equal(t, 1, provider.v2Calls)
	assert.Equal(t, 0, provider.v3Calls)
}

func TestFallbackStrategy_V2FailureTriesV3ExactlyOnce(t *testing.T) {
	provider := &fakeProvider{
		v2Err:    dropship.NewProviderError("createOrderV2", 500, "1500", "boom", dropship.ErrProviderUnavailable),
		v3Result: &dropship.DispatchResult{ProviderOrderID: "CJ-200", InterfaceVersion: "v3"},
	}
	strategy := NewFallbackStrategy(provider, zap.NewNop())

	req := validDispatchRequest()
	result, err := strategy.Dispatch(context.Background(), req)

	require.NoError(t, err)
	assert.Equal(t, "CJ-200", result.ProviderOrderID)
	assert.Equal(t, "v3", result.InterfaceVersion)
	assert.Equal(t, 1, provider.v2Calls)
	assert.Equal(t, 1, provider.v3Calls)

	// The v3 attempt uses the identical payload
	require.Len(t, provider.v3Reqs, 1)
	assert.Same(t, req, provider.v3Reqs[0])
}

func TestFallbackStrategy_BothFailWrapsLastError(t *testing.T) {
	v3Err := dropship.NewProviderError("createOrderV3", 400, "1600200", "rejected", dropship.ErrDispatchRejected)
	provider := &fakeProvider{
		v2Err: dropship.NewProviderError("createOrderV2", 500, "1500", "boom", dropship.ErrProviderUnavailable),
		v3Err: v3Err,
	}
	strategy := NewFallbackStrategy(provider, zap.NewNop())

	result, err := strategy.Dispatch(context.Background(), validDispatchRequest())

	assert.Nil(t, result)
	assert.Equal(t, 1, provider.v2Calls)
	assert.Equal(t, 1, provider.v3Calls)

	var ferr *FulfillmentError
	require.ErrorAs(t, err, &ferr)
	assert.Equal(t, "DS-2026-0001", ferr.OrderNumber)
	assert.ErrorIs(t, err, dropship.ErrDispatchRejected)

	var perr *dropship.ProviderError
	require.ErrorAs(t, err, &perr)
	assert.Equal(t, "1600200", perr.Code)
}

func TestFallbackStrategy_InvalidRequestFailsBeforeProvider(t *testing.T) {
	provider := &fakeProvider{}
	strategy := NewFallbackStrategy(provider, zap.NewNop())

	req := validDispatchRequest()
	req.ConsigneeName = ""

	_, err := strategy.Dispatch(context.Background(), req)

	assert.ErrorIs(t, err, dropship.ErrDispatchInvalidRequest)
	assert.Equal(t, 0, provider.v2Calls)
	assert.Equal(t, 0, provider.v3Calls)
}
