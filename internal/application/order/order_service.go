// Package order contains the storefront order application service.
package order

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	"github.com/dropship/backend/internal/domain/order"
	"github.com/dropship/backend/internal/domain/shared"
)

// NumberGenerator produces unique customer-facing order numbers
type NumberGenerator func() string

// defaultNumberGenerator issues DS-prefixed numbers from the current time plus
// a random suffix. Uniqueness is ultimately enforced by the order_number
// unique index; a collision surfaces as ErrAlreadyExists on save.
func defaultNumberGenerator() string {
	return fmt.Sprintf("DS-%d%03d", time.Now().UnixMilli(), rand.Intn(1000))
}

// Service handles storefront order operations
type Service struct {
	orderRepo      order.Repository
	eventPublisher shared.EventPublisher
	generateNumber NumberGenerator
}

// NewService creates a new order service
func NewService(orderRepo order.Repository) *Service {
	return &Service{
		orderRepo:      orderRepo,
		generateNumber: defaultNumberGenerator,
	}
}

// SetEventPublisher sets the event publisher for cross-context integration
func (s *Service) SetEventPublisher(publisher shared.EventPublisher) {
	s.eventPublisher = publisher
}

// SetNumberGenerator overrides the order number generator
func (s *Service) SetNumberGenerator(gen NumberGenerator) {
	s.generateNumber = gen
}

// Checkout creates a new order with its items. Guest checkout is allowed:
// CustomerID may be nil as long as an email is present for notifications.
func (s *Service) Checkout(ctx context.Context, req CheckoutRequest) (*OrderResponse, error) {
	if req.CustomerEmail == "" {
		return nil, shared.NewDomainError("MISSING_EMAIL", "Customer email is required for checkout")
	}

	o, err := order.New(s.generateNumber(), req.CustomerID, req.CustomerEmail, req.Currency, req.Address.toDomainAddress())
	if err != nil {
		return nil, err
	}

	for _, item := range req.Items {
		if _, err := o.AddItem(item.VariantID, item.ProductName, item.ProviderCode, item.Quantity, item.UnitPrice); err != nil {
			return nil, err
		}
	}

	if err := s.orderRepo.Save(ctx, o); err != nil {
		return nil, err
	}

	s.publishEvents(ctx, o)

	response := ToOrderResponse(o)
	return &response, nil
}

// GetByID retrieves an order by ID
func (s *Service) GetByID(ctx context.Context, orderID string) (*OrderResponse, error) {
	o, err := s.orderRepo.FindByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	response := ToOrderResponse(o)
	return &response, nil
}

// GetByOrderNumber retrieves an order by its customer-facing number
func (s *Service) GetByOrderNumber(ctx context.Context, orderNumber string) (*OrderResponse, error) {
	o, err := s.orderRepo.FindByOrderNumber(ctx, orderNumber)
	if err != nil {
		return nil, err
	}
	response := ToOrderResponse(o)
	return &response, nil
}

// ListByStatus retrieves orders in the given customer-facing status
func (s *Service) ListByStatus(ctx context.Context, status order.Status, limit, offset int) ([]OrderResponse, error) {
	if !status.IsValid() {
		return nil, shared.NewDomainError("INVALID_STATUS", fmt.Sprintf("Unknown order status %q", status))
	}
	if limit <= 0 {
		limit = 20
	}

	orders, err := s.orderRepo.FindByStatus(ctx, status, limit, offset)
	if err != nil {
		return nil, err
	}

	responses := make([]OrderResponse, 0, len(orders))
	for _, o := range orders {
		responses = append(responses, ToOrderResponse(o))
	}
	return responses, nil
}

// Refund refunds a paid order. The order stays on record in REFUNDED state.
func (s *Service) Refund(ctx context.Context, orderID string, req RefundRequest) (*OrderResponse, error) {
	o, err := s.orderRepo.FindByID(ctx, orderID)
	if err != nil {
		return nil, err
	}

	if err := o.MarkRefunded(req.Amount, req.Reason); err != nil {
		return nil, err
	}

	if err := s.orderRepo.Update(ctx, o); err != nil {
		return nil, err
	}

	s.publishEvents(ctx, o)

	response := ToOrderResponse(o)
	return &response, nil
}

// UpdateStatus transitions the customer-facing status of an order
func (s *Service) UpdateStatus(ctx context.Context, orderID string, status order.Status) (*OrderResponse, error) {
	o, err := s.orderRepo.FindByID(ctx, orderID)
	if err != nil {
		return nil, err
	}

	if err := o.UpdateCustomerStatus(status); err != nil {
		return nil, err
	}

	if err := s.orderRepo.Update(ctx, o); err != nil {
		return nil, err
	}

	s.publishEvents(ctx, o)

	response := ToOrderResponse(o)
	return &response, nil
}

// publishEvents drains the aggregate's events into the bus. Publish failures
// are swallowed: the outbox processor redelivers from the persisted entries.
func (s *Service) publishEvents(ctx context.Context, o *order.Order) {
	if s.eventPublisher == nil {
		return
	}
	events := o.GetDomainEvents()
	if len(events) == 0 {
		return
	}
	_ = s.eventPublisher.Publish(ctx, events...)
	o.ClearDomainEvents()
}
