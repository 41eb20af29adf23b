package event

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/dropship/backend/internal/domain/shared"
)

// testHandler is a configurable EventHandler for tests
type testHandler struct {
	mu         sync.Mutex
	eventTypes []string
	handled    []shared.DomainEvent
	err        error
	panics     bool
}

func (h *testHandler) Handle(ctx context.Context, event shared.DomainEvent) error {
	if h.panics {
		panic("handler exploded")
	}
	h.mu.Lock()
	h.handled = append(h.handled, event)
	h.mu.Unlock()
	return h.err
}

func (h *testHandler) EventTypes() []string {
	return h.eventTypes
}

func (h *testHandler) handledCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.handled)
}

func newTestEvent(eventType string) shared.DomainEvent {
	ev := shared.NewBaseDomainEvent(eventType, "TestAggregate", uuid.New())
	return &ev
}

func TestInMemoryEventBus_PublishToSubscriber(t *testing.T) {
	bus := NewInMemoryEventBus(zap.NewNop())
	handler := &testHandler{eventTypes: []string{"OrderPaid"}}
	bus.Subscribe(handler)

	err := bus.Publish(context.Background(), newTestEvent("OrderPaid"))
	require.NoError(t, err)
	assert.Equal(t, 1, handler.handledCount())

	// Events of other types are not delivered
	err = bus.Publish(context.Background(), newTestEvent("OrderCreated"))
	require.NoError(t, err)
	assert.Equal(t, 1, handler.handledCount())
}

func TestInMemoryEventBus_WildcardHandler(t *testing.T) {
	bus := NewInMemoryEventBus(zap.NewNop())
	handler := &testHandler{eventTypes: nil}
	bus.Subscribe(handler)

	require.NoError(t, bus.Publish(context.Background(),
		newTestEvent("OrderPaid"),
		newTestEvent("ShipmentDelayed"),
	))
	assert.Equal(t, 2, handler.handledCount())
}

func TestInMemoryEventBus_HandlerErrorDoesNotStopOthers(t *testing.T) {
	bus := NewInMemoryEventBus(zap.NewNop())
	failing := &testHandler{eventTypes: []string{"OrderPaid"}, err: errors.New("boom")}
	healthy := &testHandler{eventTypes: []string{"OrderPaid"}}
	bus.Subscribe(failing)
	bus.Subscribe(healthy)

	require.NoError(t, bus.Publish(context.Background(), newTestEvent("OrderPaid")))
	assert.Equal(t, 1, healthy.handledCount())
}

func TestInMemoryEventBus_HandlerPanicIsContained(t *testing.T) {
	bus := NewInMemoryEventBus(zap.NewNop())
	panicking := &testHandler{eventTypes: []string{"OrderPaid"}, panics: true}
	healthy := &testHandler{eventTypes: []string{"OrderPaid"}}
	bus.Subscribe(panicking)
	bus.Subscribe(healthy)

	require.NotPanics(t, func() {
		_ = bus.Publish(context.Background(), newTestEvent("OrderPaid"))
	})
	assert.Equal(t, 1, healthy.handledCount())
}

func TestInMemoryEventBus_Unsubscribe(t *testing.T) {
	bus := NewInMemoryEventBus(zap.NewNop())
	handler := &testHandler{eventTypes: []string{"OrderPaid"}}
	bus.Subscribe(handler)
	bus.Unsubscribe(handler)

	require.NoError(t, bus.Publish(context.Background(), newTestEvent("OrderPaid")))
	assert.Equal(t, 0, handler.handledCount())
}
