package payment

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/dropship/backend/internal/domain/order"
	"github.com/dropship/backend/internal/domain/payment"
	"github.com/dropship/backend/internal/domain/shared"
	"github.com/dropship/backend/internal/infrastructure/cache"
)

// MockGateway is a mock implementation of payment.Gateway
type MockGateway struct {
	mock.Mock
}

func (m *MockGateway) GatewayType() payment.GatewayType {
	return payment.GatewayKorapay
}

func (m *MockGateway) InitCharge(ctx context.Context, req *payment.ChargeRequest) (*payment.ChargeResponse, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*payment.ChargeResponse), args.Error(1)
}

func (m *MockGateway) VerifyWebhook(ctx context.Context, payload []byte, signature string) (*payment.WebhookEvent, error) {
	args := m.Called(ctx, payload, signature)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*payment.WebhookEvent), args.Error(1)
}

// MockPaymentRepository is a mock implementation of payment.Repository
type MockPaymentRepository struct {
	mock.Mock
}

func (m *MockPaymentRepository) Save(ctx context.Context, p *payment.Payment) error {
	args := m.Called(ctx, p)
	return args.Error(0)
}

func (m *MockPaymentRepository) FindByID(ctx context.Context, id string) (*payment.Payment, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*payment.Payment), args.Error(1)
}

func (m *MockPaymentRepository) FindByEventID(ctx context.Context, gatewayEventID string) (*payment.Payment, error) {
	args := m.Called(ctx, gatewayEventID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*payment.Payment), args.Error(1)
}

func (m *MockPaymentRepository) FindByReference(ctx context.Context, reference string) (*payment.Payment, error) {
	args := m.Called(ctx, reference)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*payment.Payment), args.Error(1)
}

func (m *MockPaymentRepository) FindByOrderNumber(ctx context.Context, orderNumber string) ([]*payment.Payment, error) {
	args := m.Called(ctx, orderNumber)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*payment.Payment), args.Error(1)
}

// MockOrderRepository is a mock implementation of order.Repository
type MockOrderRepository struct {
	mock.Mock
}

func (m *MockOrderRepository) Save(ctx context.Context, o *order.Order) error {
	args := m.Called(ctx, o)
	return args.Error(0)
}

func (m *MockOrderRepository) FindByID(ctx context.Context, id string) (*order.Order, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*order.Order), args.Error(1)
}

func (m *MockOrderRepository) FindByOrderNumber(ctx context.Context, orderNumber string) (*order.Order, error) {
	args := m.Called(ctx, orderNumber)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*order.Order), args.Error(1)
}

func (m *MockOrderRepository) FindByStatus(ctx context.Context, status order.Status, limit, offset int) ([]*order.Order, error) {
	args := m.Called(ctx, status, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*order.Order), args.Error(1)
}

func (m *MockOrderRepository) FindAwaitingFulfillment(ctx context.Context, limit int) ([]*order.Order, error) {
	args := m.Called(ctx, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*order.Order), args.Error(1)
}

func (m *MockOrderRepository) Update(ctx context.Context, o *order.Order) error {
	args := m.Called(ctx, o)
	return args.Error(0)
}

func (m *MockOrderRepository) Delete(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// ---------------------------------------------------------------------------
// Helpers
// ---------------------------------------------------------------------------

func successEvent() *payment.WebhookEvent {
	return &payment.WebhookEvent{
		EventID:     "evt_1",
		EventType:   "charge.success",
		Reference:   "ref_1",
		OrderNumber: "DS-1",
		Amount:      decimal.NewFromInt(100),
		Currency:    "USD",
		Status:      payment.StatusSuccess,
	}
}

func testOrder(t *testing.T) *order.Order {
	t.Helper()
	customerID := uuid.New()
	o, err := order.New("DS-1", &customerID, "ada@example.com", "USD", order.Address{
		Name:        "Ada Obi",
		CountryCode: "NG",
		City:        "Lagos",
		Street:      "12 Marina Rd",
	})
	require.NoError(t, err)
	o.ClearDomainEvents()
	return o
}

type webhookSetup struct {
	gateway     *MockGateway
	paymentRepo *MockPaymentRepository
	orderRepo   *MockOrderRepository
	service     *WebhookService
}

func newWebhookSetup(t *testing.T) *webhookSetup {
	t.Helper()
	gateway := new(MockGateway)
	paymentRepo := new(MockPaymentRepository)
	orderRepo := new(MockOrderRepository)
	store := cache.NewInMemoryIdempotencyStore()
	t.Cleanup(func() { _ = store.Close() })

	return &webhookSetup{
		gateway:     gateway,
		paymentRepo: paymentRepo,
		orderRepo:   orderRepo,
		service:     NewWebhookService(gateway, paymentRepo, orderRepo, store, zap.NewNop()),
	}
}

// ---------------------------------------------------------------------------
// Tests
// ---------------------------------------------------------------------------

func TestWebhookService_ProcessWebhook_RecordsPaymentAndMarksOrderPaid(t *testing.T) {
	s := newWebhookSetup(t)
	payload := []byte(`{"event_id":"evt_1"}`)
	o := testOrder(t)

	s.gateway.On("VerifyWebhook", mock.Anything, payload, "sig").Return(successEvent(), nil)
	s.paymentRepo.On("Save", mock.Anything, mock.AnythingOfType("*payment.Payment")).Return(nil)
	s.orderRepo.On("FindByOrderNumber", mock.Anything, "DS-1").Return(o, nil)
	s.orderRepo.On("Update", mock.Anything, o).Return(nil)

	result, err := s.service.ProcessWebhook(context.Background(), payload, "sig")

	require.NoError(t, err)
	assert.False(t, result.Duplicate)
	assert.Equal(t, "evt_1", result.EventID)
	assert.Equal(t, order.PaymentStatusPaid, o.PaymentStatus)
	assert.Equal(t, "ref_1", o.PaymentRef)
	s.paymentRepo.AssertNumberOfCalls(t, "Save", 1)
	s.orderRepo.AssertNumberOfCalls(t, "Update", 1)
}

func TestWebhookService_ProcessWebhook_DuplicateDeliveryCreatesNothing(t *testing.T) {
	s := newWebhookSetup(t)
	payload := []byte(`{"event_id":"evt_1"}`)
	o := testOrder(t)

	s.gateway.On("VerifyWebhook", mock.Anything, payload, "sig").Return(successEvent(), nil)
	s.paymentRepo.On("Save", mock.Anything, mock.AnythingOfType("*payment.Payment")).Return(nil)
	s.orderRepo.On("FindByOrderNumber", mock.Anything, "DS-1").Return(o, nil)
	s.orderRepo.On("Update", mock.Anything, o).Return(nil)

	first, err := s.service.ProcessWebhook(context.Background(), payload, "sig")
	require.NoError(t, err)
	assert.False(t, first.Duplicate)

	second, err := s.service.ProcessWebhook(context.Background(), payload, "sig")
	require.NoError(t, err)
	assert.True(t, second.Duplicate)

	// One Payment row, one order update
	s.paymentRepo.AssertNumberOfCalls(t, "Save", 1)
	s.orderRepo.AssertNumberOfCalls(t, "Update", 1)
	assert.Equal(t, order.PaymentStatusPaid, o.PaymentStatus)
}

func TestWebhookService_ProcessWebhook_InvalidSignatureTouchesNothing(t *testing.T) {
	s := newWebhookSetup(t)
	payload := []byte(`{}`)

	s.gateway.On("VerifyWebhook", mock.Anything, payload, "bad").Return(nil, payment.ErrInvalidSignature)

	result, err := s.service.ProcessWebhook(context.Background(), payload, "bad")

	assert.Nil(t, result)
	assert.ErrorIs(t, err, payment.ErrInvalidSignature)
	s.paymentRepo.AssertNotCalled(t, "Save")
	s.orderRepo.AssertNotCalled(t, "Update")
}

func TestWebhookService_ProcessWebhook_UniqueIndexBacksUpIdempotencyStore(t *testing.T) {
	// The store granted the mark but the row already exists, e.g. after a
	// store restart. The unique index violation reads as a duplicate.
	s := newWebhookSetup(t)
	payload := []byte(`{"event_id":"evt_1"}`)

	s.gateway.On("VerifyWebhook", mock.Anything, payload, "sig").Return(successEvent(), nil)
	s.paymentRepo.On("Save", mock.Anything, mock.AnythingOfType("*payment.Payment")).Return(shared.ErrAlreadyExists)

	result, err := s.service.ProcessWebhook(context.Background(), payload, "sig")

	require.NoError(t, err)
	assert.True(t, result.Duplicate)
	s.orderRepo.AssertNotCalled(t, "Update")
}

func TestWebhookService_ProcessWebhook_FailureAllowsGatewayRetry(t *testing.T) {
	s := newWebhookSetup(t)
	payload := []byte(`{"event_id":"evt_1"}`)
	o := testOrder(t)
	dbErr := errors.New("connection reset")

	s.gateway.On("VerifyWebhook", mock.Anything, payload, "sig").Return(successEvent(), nil)
	s.paymentRepo.On("Save", mock.Anything, mock.AnythingOfType("*payment.Payment")).Return(dbErr).Once()
	s.paymentRepo.On("Save", mock.Anything, mock.AnythingOfType("*payment.Payment")).Return(nil)
	s.orderRepo.On("FindByOrderNumber", mock.Anything, "DS-1").Return(o, nil)
	s.orderRepo.On("Update", mock.Anything, o).Return(nil)

	_, err := s.service.ProcessWebhook(context.Background(), payload, "sig")
	assert.ErrorIs(t, err, dbErr)

	// The idempotency mark was removed, so the gateway's redelivery goes
	// through instead of reading as a duplicate
	result, err := s.service.ProcessWebhook(context.Background(), payload, "sig")
	require.NoError(t, err)
	assert.False(t, result.Duplicate)
	assert.Equal(t, order.PaymentStatusPaid, o.PaymentStatus)
}

func TestWebhookService_ProcessWebhook_UnknownOrderStillRecordsPayment(t *testing.T) {
	s := newWebhookSetup(t)
	payload := []byte(`{"event_id":"evt_1"}`)

	s.gateway.On("VerifyWebhook", mock.Anything, payload, "sig").Return(successEvent(), nil)
	s.paymentRepo.On("Save", mock.Anything, mock.AnythingOfType("*payment.Payment")).Return(nil)
	s.orderRepo.On("FindByOrderNumber", mock.Anything, "DS-1").Return(nil, shared.ErrNotFound)

	result, err := s.service.ProcessWebhook(context.Background(), payload, "sig")

	require.NoError(t, err)
	assert.False(t, result.Duplicate)
	s.orderRepo.AssertNotCalled(t, "Update")
}
