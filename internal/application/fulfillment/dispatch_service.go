// Package fulfillment contains the application services that move orders
// through the external dropshipping provider: dispatch and tracking.
package fulfillment

import (
	"context"

	"go.uber.org/zap"

	"github.com/dropship/backend/internal/domain/dropship"
	"github.com/dropship/backend/internal/domain/order"
	"github.com/dropship/backend/internal/domain/shared"
)

// Dispatch errors
var (
	ErrOrderNotPaid      = shared.NewDomainError("ORDER_NOT_PAID", "Order must be paid before dispatch")
	ErrNothingToDispatch = shared.NewDomainError("NOTHING_TO_DISPATCH", "No order item is in a dispatchable state")
)

// DispatchService sends paid orders to the fulfillment provider. Dispatch is
// not idempotent at the provider level, so the item status guard is the only
// thing standing between a retry and a duplicate provider order.
type DispatchService struct {
	orderRepo      order.Repository
	dispatcher     dropship.Dispatcher
	eventPublisher shared.EventPublisher
	logger         *zap.Logger
}

// NewDispatchService creates a new dispatch service
func NewDispatchService(orderRepo order.Repository, dispatcher dropship.Dispatcher, logger *zap.Logger) *DispatchService {
	return &DispatchService{
		orderRepo:  orderRepo,
		dispatcher: dispatcher,
		logger:     logger,
	}
}

// SetEventPublisher sets the event publisher for cross-context integration
func (s *DispatchService) SetEventPublisher(publisher shared.EventPublisher) {
	s.eventPublisher = publisher
}

// DispatchOrder sends one order to the provider. On success the provider ids
// land on the order and its items move to FULFILLING in a single update. On
// failure nothing provider-side is recorded and the items move to FAILED so
// an operator retry stays possible.
func (s *DispatchService) DispatchOrder(ctx context.Context, orderID string, opts DispatchOptions) (*DispatchResponse, error) {
	o, err := s.orderRepo.FindByID(ctx, orderID)
	if err != nil {
		return nil, err
	}

	if o.PaymentStatus != order.PaymentStatusPaid {
		return nil, ErrOrderNotPaid
	}
	if err := o.ShippingAddr.Validate(); err != nil {
		return nil, err
	}

	items := dispatchableItems(o)
	if len(items) == 0 {
		return nil, ErrNothingToDispatch
	}

	req := buildDispatchRequest(o, items, opts)

	result, err := s.dispatcher.Dispatch(ctx, req)
	if err != nil {
		s.markDispatchFailed(ctx, o, items)
		return nil, err
	}

	if err := o.ApplyFulfillmentResult(result.ProviderOrderID, result.ShipmentOrderID, result.AmountDue); err != nil {
		return nil, err
	}
	o.ProviderPaymentPending = result.PaymentPending
	for _, item := range items {
		item.SetFulfillmentStatus(order.FulfillmentStatusRunning)
	}

	if err := s.orderRepo.Update(ctx, o); err != nil {
		return nil, err
	}

	s.publishEvents(ctx, o)

	s.logger.Info("order dispatched",
		zap.String("order_number", o.OrderNumber),
		zap.String("provider_order_id", result.ProviderOrderID),
		zap.String("interface_version", result.InterfaceVersion),
	)

	return &DispatchResponse{
		OrderID:                 o.ID,
		OrderNumber:             o.OrderNumber,
		ProviderOrderID:         result.ProviderOrderID,
		ProviderShipmentOrderID: result.ShipmentOrderID,
		AmountDue:               result.AmountDue,
		PaymentPending:          result.PaymentPending,
		InterfaceVersion:        result.InterfaceVersion,
	}, nil
}

// DispatchAwaiting dispatches every order waiting on fulfillment, up to limit.
// Per-order failures are logged and do not stop the sweep.
func (s *DispatchService) DispatchAwaiting(ctx context.Context, limit int, opts DispatchOptions) (int, error) {
	if limit <= 0 {
		limit = 50
	}

	orders, err := s.orderRepo.FindAwaitingFulfillment(ctx, limit)
	if err != nil {
		return 0, err
	}

	dispatched := 0
	for _, o := range orders {
		if _, err := s.DispatchOrder(ctx, o.ID.String(), opts); err != nil {
			s.logger.Warn("dispatch sweep: order failed",
				zap.String("order_number", o.OrderNumber),
				zap.Error(err),
			)
			continue
		}
		dispatched++
	}
	return dispatched, nil
}

// markDispatchFailed records the failed attempt on the items. A best effort
// update: the dispatch error is what the caller needs to see, not a
// persistence error from the failure bookkeeping.
func (s *DispatchService) markDispatchFailed(ctx context.Context, o *order.Order, items []*order.Item) {
	for _, item := range items {
		item.SetFulfillmentStatus(order.FulfillmentStatusFailed)
	}
	if err := s.orderRepo.Update(ctx, o); err != nil {
		s.logger.Error("recording dispatch failure state",
			zap.String("order_number", o.OrderNumber),
			zap.Error(err),
		)
	}
}

func (s *DispatchService) publishEvents(ctx context.Context, o *order.Order) {
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

// dispatchableItems returns pointers into the order's item slice for every
// item that may still be sent to the provider
func dispatchableItems(o *order.Order) []*order.Item {
	items := make([]*order.Item, 0, len(o.Items))
	for idx := range o.Items {
		if o.Items[idx].FulfillmentStatus.CanDispatch() {
			items = append(items, &o.Items[idx])
		}
	}
	return items
}

func buildDispatchRequest(o *order.Order, items []*order.Item, opts DispatchOptions) *dropship.DispatchRequest {
	lines := make([]dropship.DispatchItem, 0, len(items))
	for _, item := range items {
		variantID := item.ProviderCode
		if variantID == "" {
			variantID = item.VariantID
		}
		lines = append(lines, dropship.DispatchItem{
			VariantID: variantID,
			Quantity:  item.Quantity,
			UnitPrice: item.UnitPrice,
		})
	}

	fromCountry := opts.FromCountryCode
	if fromCountry == "" {
		fromCountry = "CN"
	}

	return &dropship.DispatchRequest{
		OrderNumber:         o.OrderNumber,
		ConsigneeName:       o.ShippingAddr.Name,
		ConsigneePhone:      o.ShippingAddr.Phone,
		ShippingCountryCode: o.ShippingAddr.CountryCode,
		ShippingProvince:    o.ShippingAddr.Province,
		ShippingCity:        o.ShippingAddr.City,
		ShippingAddress:     o.ShippingAddr.Street,
		ShippingZip:         o.ShippingAddr.PostalCode,
		LogisticName:        opts.LogisticName,
		FromCountryCode:     fromCountry,
		Items:               lines,
		Remark:              opts.Remark,
	}
}
