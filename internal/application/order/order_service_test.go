package order

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/dropship/backend/internal/domain/order"
	"github.com/dropship/backend/internal/domain/shared"
)

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

// capturingPublisher records every event handed to it
type capturingPublisher struct {
	events []shared.DomainEvent
}

func (p *capturingPublisher) Publish(_ context.Context, events ...shared.DomainEvent) error {
	p.events = append(p.events, events...)
	return nil
}

func checkoutRequest() CheckoutRequest {
	customerID := uuid.New()
	return CheckoutRequest{
		CustomerID:    &customerID,
		CustomerEmail: "ada@example.com",
		Currency:      "USD",
		Address: CheckoutAddress{
			Name:        "Ada Obi",
			Phone:       "+2348012345678",
			CountryCode: "NG",
			City:        "Lagos",
			Street:      "12 Marina Rd",
		},
		Items: []CheckoutItemInput{
			{VariantID: "VAR-1", ProductName: "Desk Lamp", ProviderCode: "CJ-VAR-1", Quantity: 2, UnitPrice: decimal.NewFromInt(40)},
			{VariantID: "VAR-2", ProductName: "Phone Stand", Quantity: 1, UnitPrice: decimal.NewFromFloat(12.5)},
		},
	}
}

// ---------------------------------------------------------------------------
// Checkout
// ---------------------------------------------------------------------------

func TestService_Checkout_CreatesOrderWithItems(t *testing.T) {
	repo := new(MockOrderRepository)
	publisher := &capturingPublisher{}
	service := NewService(repo)
	service.SetEventPublisher(publisher)
	service.SetNumberGenerator(func() string { return "DS-2026-0042" })

	repo.On("Save", mock.Anything, mock.MatchedBy(func(o *order.Order) bool {
		return o.OrderNumber == "DS-2026-0042" && len(o.Items) == 2
	})).Return(nil)

	resp, err := service.Checkout(context.Background(), checkoutRequest())

	require.NoError(t, err)
	assert.Equal(t, "DS-2026-0042", resp.OrderNumber)
	assert.Equal(t, string(order.StatusReceived), resp.Status)
	assert.Equal(t, string(order.PaymentStatusPending), resp.PaymentStatus)
	assert.True(t, resp.GrandTotal.Equal(decimal.NewFromFloat(92.5)))
	require.Len(t, resp.Items, 2)
	assert.Equal(t, string(order.FulfillmentStatusPending), resp.Items[0].FulfillmentStatus)
	require.Len(t, publisher.events, 1)
	assert.Equal(t, order.EventTypeOrderCreated, publisher.events[0].EventType())
}

func TestService_Checkout_GuestAllowedWithEmail(t *testing.T) {
	repo := new(MockOrderRepository)
	service := NewService(repo)
	service.SetNumberGenerator(func() string { return "DS-2026-0043" })

	repo.On("Save", mock.Anything, mock.Anything).Return(nil)

	req := checkoutRequest()
	req.CustomerID = nil

	resp, err := service.Checkout(context.Background(), req)

	require.NoError(t, err)
	assert.Nil(t, resp.CustomerID)
	assert.Equal(t, "ada@example.com", resp.CustomerEmail)
}

func TestService_Checkout_MissingEmailRejected(t *testing.T) {
	repo := new(MockOrderRepository)
	service := NewService(repo)

	req := checkoutRequest()
	req.CustomerEmail = ""

	_, err := service.Checkout(context.Background(), req)

	require.Error(t, err)
	var domainErr *shared.DomainError
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, "MISSING_EMAIL", domainErr.Code)
	repo.AssertNotCalled(t, "Save")
}

func TestService_Checkout_DefaultGeneratorIssuesPrefixedNumbers(t *testing.T) {
	repo := new(MockOrderRepository)
	service := NewService(repo)

	var saved *order.Order
	repo.On("Save", mock.Anything, mock.Anything).Run(func(args mock.Arguments) {
		saved = args.Get(1).(*order.Order)
	}).Return(nil)

	_, err := service.Checkout(context.Background(), checkoutRequest())

	require.NoError(t, err)
	require.NotNil(t, saved)
	assert.Regexp(t, `^DS-\d+$`, saved.OrderNumber)
}

// ---------------------------------------------------------------------------
// Refund
// ---------------------------------------------------------------------------

func TestService_Refund_PaidOrder(t *testing.T) {
	repo := new(MockOrderRepository)
	publisher := &capturingPublisher{}
	service := NewService(repo)
	service.SetEventPublisher(publisher)

	customerID := uuid.New()
	o, err := order.New("DS-2026-0042", &customerID, "ada@example.com", "USD", order.Address{
		Name: "Ada Obi", CountryCode: "NG", City: "Lagos", Street: "12 Marina Rd",
	})
	require.NoError(t, err)
	_, err = o.AddItem("VAR-1", "Desk Lamp", "CJ-VAR-1", 1, decimal.NewFromInt(50))
	require.NoError(t, err)
	require.NoError(t, o.MarkPaid(decimal.NewFromInt(50), "ref_1"))
	o.ClearDomainEvents()

	repo.On("FindByID", mock.Anything, o.ID.String()).Return(o, nil)
	repo.On("Update", mock.Anything, o).Return(nil)

	resp, err := service.Refund(context.Background(), o.ID.String(), RefundRequest{
		Amount: decimal.NewFromInt(50),
		Reason: "damaged in transit",
	})

	require.NoError(t, err)
	assert.Equal(t, string(order.StatusRefunded), resp.Status)
	assert.Equal(t, string(order.PaymentStatusRefunded), resp.PaymentStatus)
	assert.NotNil(t, resp.RefundedAt)
	require.Len(t, publisher.events, 1)
	assert.Equal(t, order.EventTypeOrderRefunded, publisher.events[0].EventType())
}

func TestService_Refund_UnpaidOrderRejected(t *testing.T) {
	repo := new(MockOrderRepository)
	service := NewService(repo)

	customerID := uuid.New()
	o, err := order.New("DS-2026-0042", &customerID, "ada@example.com", "USD", order.Address{
		Name: "Ada Obi", CountryCode: "NG", City: "Lagos", Street: "12 Marina Rd",
	})
	require.NoError(t, err)

	repo.On("FindByID", mock.Anything, o.ID.String()).Return(o, nil)

	_, err = service.Refund(context.Background(), o.ID.String(), RefundRequest{
		Amount: decimal.NewFromInt(50),
		Reason: "changed my mind",
	})

	require.Error(t, err)
	repo.AssertNotCalled(t, "Update")
}

// ---------------------------------------------------------------------------
// Queries
// ---------------------------------------------------------------------------

func TestService_ListByStatus_DefaultsLimit(t *testing.T) {
	repo := new(MockOrderRepository)
	service := NewService(repo)

	repo.On("FindByStatus", mock.Anything, order.StatusReceived, 20, 0).
		Return([]*order.Order{}, nil)

	responses, err := service.ListByStatus(context.Background(), order.StatusReceived, 0, 0)

	require.NoError(t, err)
	assert.Empty(t, responses)
	repo.AssertExpectations(t)
}

func TestService_ListByStatus_UnknownStatusRejected(t *testing.T) {
	repo := new(MockOrderRepository)
	service := NewService(repo)

	_, err := service.ListByStatus(context.Background(), order.Status("BOGUS"), 10, 0)

	require.Error(t, err)
	repo.AssertNotCalled(t, "FindByStatus")
}
