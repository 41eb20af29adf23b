package event

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/dropship/backend/internal/domain/shared"
	"github.com/dropship/backend/internal/infrastructure/cache"
)

func newIdempotentTestSetup(t *testing.T, inner *testHandler) (*IdempotentHandler, *cache.InMemoryIdempotencyStore) {
	store := cache.NewInMemoryIdempotencyStore()
	t.Cleanup(func() { store.Close() })
	return NewIdempotentHandler(inner, store, zap.NewNop()), store
}

func TestIdempotentHandler_ProcessesOnce(t *testing.T) {
	inner := &testHandler{eventTypes: []string{"OrderPaid"}}
	handler, _ := newIdempotentTestSetup(t, inner)

	ev := newTestEvent("OrderPaid")

	require.NoError(t, handler.Handle(context.Background(), ev))
	require.NoError(t, handler.Handle(context.Background(), ev))
	require.NoError(t, handler.Handle(context.Background(), ev))

	assert.Equal(t, 1, inner.handledCount())
}

func TestIdempotentHandler_DistinctEventsProcessed(t *testing.T) {
	inner := &testHandler{eventTypes: []string{"OrderPaid"}}
	handler, _ := newIdempotentTestSetup(t, inner)

	require.NoError(t, handler.Handle(context.Background(), newTestEvent("OrderPaid")))
	require.NoError(t, handler.Handle(context.Background(), newTestEvent("OrderPaid")))

	assert.Equal(t, 2, inner.handledCount())
}

func TestIdempotentHandler_FailureAllowsRetry(t *testing.T) {
	inner := &testHandler{eventTypes: []string{"OrderPaid"}, err: errors.New("downstream down")}
	handler, _ := newIdempotentTestSetup(t, inner)

	ev := newTestEvent("OrderPaid")

	require.Error(t, handler.Handle(context.Background(), ev))

	// The mark is released on failure, so redelivery reaches the handler
	inner.err = nil
	require.NoError(t, handler.Handle(context.Background(), ev))
	assert.Equal(t, 2, inner.handledCount())
}

func TestIdempotentHandler_Disabled(t *testing.T) {
	inner := &testHandler{eventTypes: []string{"OrderPaid"}}
	store := cache.NewInMemoryIdempotencyStore()
	defer store.Close()

	handler := NewIdempotentHandler(inner, store, zap.NewNop(),
		WithIdempotencyConfig(shared.IdempotencyConfig{Enabled: false}),
	)

	ev := newTestEvent("OrderPaid")
	require.NoError(t, handler.Handle(context.Background(), ev))
	require.NoError(t, handler.Handle(context.Background(), ev))

	assert.Equal(t, 2, inner.handledCount())
}

func TestIdempotentHandler_EventTypesDelegated(t *testing.T) {
	inner := &testHandler{eventTypes: []string{"OrderPaid", "OrderRefunded"}}
	handler, _ := newIdempotentTestSetup(t, inner)

	assert.Equal(t, []string{"OrderPaid", "OrderRefunded"}, handler.EventTypes())
	assert.Same(t, inner, handler.GetWrappedHandler().(*testHandler))
}

func TestWrapHandlersWithIdempotency(t *testing.T) {
	store := cache.NewInMemoryIdempotencyStore()
	defer store.Close()

	handlers := []shared.EventHandler{
		&testHandler{eventTypes: []string{"A"}},
		&testHandler{eventTypes: []string{"B"}},
	}

	wrapped := WrapHandlersWithIdempotency(handlers, store, zap.NewNop())
	require.Len(t, wrapped, 2)
	for _, h := range wrapped {
		assert.IsType(t, &IdempotentHandler{}, h)
	}
}
