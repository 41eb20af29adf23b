package fulfillment

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/dropship/backend/internal/domain/dropship"
	"github.com/dropship/backend/internal/domain/order"
	"github.com/dropship/backend/internal/domain/shared"
)

// ErrMalformedBatch rejects a tracking batch before any write happens
var ErrMalformedBatch = shared.NewDomainError("MALFORMED_BATCH", "Tracking batch JSON is malformed")

// TrackingService reconciles shipment tracking state from provider polls and
// manually ingested batches, rolling shipment movement up to the order's
// customer-facing status.
type TrackingService struct {
	orderRepo      order.Repository
	shipmentRepo   order.ShipmentRepository
	provider       dropship.FulfillmentProvider
	eventPublisher shared.EventPublisher
	logger         *zap.Logger
}

// NewTrackingService creates a new tracking service
func NewTrackingService(
	orderRepo order.Repository,
	shipmentRepo order.ShipmentRepository,
	provider dropship.FulfillmentProvider,
	logger *zap.Logger,
) *TrackingService {
	return &TrackingService{
		orderRepo:    orderRepo,
		shipmentRepo: shipmentRepo,
		provider:     provider,
		logger:       logger,
	}
}

// SetEventPublisher sets the event publisher for cross-context integration
func (s *TrackingService) SetEventPublisher(publisher shared.EventPublisher) {
	s.eventPublisher = publisher
}

// IngestBatch applies a JSON batch of tracking updates. The whole payload is
// parsed and validated before the first write, so a malformed batch touches
// nothing. Unknown tracking numbers are reported back, not treated as errors.
func (s *TrackingService) IngestBatch(ctx context.Context, raw []byte) (*IngestResult, error) {
	var batch TrackingBatch
	decoder := json.NewDecoder(bytes.NewReader(raw))
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&batch); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedBatch, err)
	}
	if len(batch.Updates) == 0 {
		return nil, fmt.Errorf("%w: empty update list", ErrMalformedBatch)
	}
	for _, update := range batch.Updates {
		if update.TrackingNumber == "" {
			return nil, fmt.Errorf("%w: update without tracking number", ErrMalformedBatch)
		}
		if code := order.ExceptionCode(update.ExceptionCode); !code.IsValid() {
			return nil, fmt.Errorf("%w: unknown exception code %q", ErrMalformedBatch, update.ExceptionCode)
		}
		for _, scan := range update.Events {
			if scan.StatusCode == "" {
				return nil, fmt.Errorf("%w: scan without status code on %s", ErrMalformedBatch, update.TrackingNumber)
			}
		}
	}

	result := &IngestResult{}
	for _, update := range batch.Updates {
		shipment, err := s.shipmentRepo.FindByTrackingNumber(ctx, update.TrackingNumber)
		if err != nil {
			if errors.Is(err, shared.ErrNotFound) {
				result.Unmatched = append(result.Unmatched, update.TrackingNumber)
				continue
			}
			return result, err
		}

		if err := s.applyUpdate(ctx, shipment, update); err != nil {
			return result, err
		}
		result.Processed++
	}

	return result, nil
}

// PollProvider refreshes tracking for active shipments from the provider.
// Per-shipment provider errors are logged and skipped; a shipment with no
// provider-side tracking yet is not an error.
func (s *TrackingService) PollProvider(ctx context.Context, limit int) (int, error) {
	if limit <= 0 {
		limit = 100
	}

	shipments, err := s.shipmentRepo.FindActive(ctx, limit)
	if err != nil {
		return 0, err
	}

	refreshed := 0
	for _, shipment := range shipments {
		info, err := s.provider.GetTracking(ctx, shipment.TrackingNumber)
		if err != nil {
			if errors.Is(err, dropship.ErrTrackingNotFound) {
				continue
			}
			s.logger.Warn("tracking poll: provider lookup failed",
				zap.String("tracking_number", shipment.TrackingNumber),
				zap.Error(err),
			)
			continue
		}

		update := TrackingUpdate{
			TrackingNumber: info.TrackingNumber,
			Carrier:        info.Carrier,
			DeliveryStatus: info.DeliveryStatus,
		}
		for _, point := range info.Points {
			update.Events = append(update.Events, TrackingScan{
				StatusCode:  point.StatusCode,
				Description: point.Description,
				Location:    point.Location,
				OccurredAt:  point.OccurredAt,
			})
		}

		if err := s.applyUpdate(ctx, shipment, update); err != nil {
			s.logger.Error("tracking poll: applying update failed",
				zap.String("tracking_number", shipment.TrackingNumber),
				zap.Error(err),
			)
			continue
		}
		refreshed++
	}

	return refreshed, nil
}

// GetShipment returns one shipment with its tracking log
func (s *TrackingService) GetShipment(ctx context.Context, trackingNumber string) (*ShipmentResponse, error) {
	shipment, err := s.shipmentRepo.FindByTrackingNumber(ctx, trackingNumber)
	if err != nil {
		return nil, err
	}
	response := ToShipmentResponse(shipment)
	return &response, nil
}

// SetException classifies a shipment problem by hand. Setting the code the
// shipment already carries changes nothing and emits no event.
func (s *TrackingService) SetException(ctx context.Context, trackingNumber string, code order.ExceptionCode) (*ShipmentResponse, error) {
	shipment, err := s.shipmentRepo.FindByTrackingNumber(ctx, trackingNumber)
	if err != nil {
		return nil, err
	}

	if err := shipment.SetExceptionCode(code); err != nil {
		return nil, err
	}

	if err := s.shipmentRepo.Update(ctx, shipment); err != nil {
		return nil, err
	}
	s.publishShipmentEvents(ctx, shipment)

	response := ToShipmentResponse(shipment)
	return &response, nil
}

// applyUpdate appends new scans, reconciles the exception code and rolls the
// movement up to the order status. Scans already present in the tracking log,
// matched by status code and occurrence time, are skipped so repeated polls
// stay idempotent.
func (s *TrackingService) applyUpdate(ctx context.Context, shipment *order.Shipment, update TrackingUpdate) error {
	seen := make(map[string]bool, len(shipment.TrackingEvents))
	for _, ev := range shipment.TrackingEvents {
		seen[scanKey(ev.StatusCode, ev.OccurredAt.Unix())] = true
	}

	changed := false
	for _, scan := range update.Events {
		if seen[scanKey(scan.StatusCode, scan.OccurredAt.Unix())] {
			continue
		}
		if _, err := shipment.AppendTrackingEvent(scan.StatusCode, scan.Description, scan.Location, scan.OccurredAt); err != nil {
			return err
		}
		changed = true
	}

	if update.Carrier != "" && shipment.Carrier == "" {
		shipment.Carrier = update.Carrier
		changed = true
	}

	if update.ExceptionCode != "" {
		if err := shipment.SetExceptionCode(order.ExceptionCode(update.ExceptionCode)); err != nil {
			return err
		}
	}

	events := shipment.DrainEvents()
	if changed || len(events) > 0 {
		if err := s.shipmentRepo.Update(ctx, shipment); err != nil {
			return err
		}
	}
	if len(events) > 0 && s.eventPublisher != nil {
		_ = s.eventPublisher.Publish(ctx, events...)
	}

	return s.rollUpOrderStatus(ctx, shipment, update.DeliveryStatus)
}

// rollUpOrderStatus maps the shipment's latest movement onto the order's
// customer-facing status. UpdateCustomerStatus no-ops on an unchanged value,
// so repeated polls never duplicate notifications.
func (s *TrackingService) rollUpOrderStatus(ctx context.Context, shipment *order.Shipment, deliveryStatus string) error {
	status, ok := customerStatusFor(shipment, deliveryStatus)
	if !ok {
		return nil
	}

	o, err := s.orderRepo.FindByID(ctx, shipment.OrderID.String())
	if err != nil {
		return err
	}

	if err := o.UpdateCustomerStatus(status); err != nil {
		return err
	}
	if len(o.GetDomainEvents()) == 0 {
		return nil
	}

	if status == order.StatusDelivered {
		if item := o.GetItem(shipment.OrderItemID); item != nil {
			item.SetFulfillmentStatus(order.FulfillmentStatusDone)
		}
	}

	if err := s.orderRepo.Update(ctx, o); err != nil {
		return err
	}
	s.publishOrderEvents(ctx, o)
	return nil
}

// customerStatusFor derives the order status from the shipment state
func customerStatusFor(shipment *order.Shipment, deliveryStatus string) (order.Status, bool) {
	if shipment.ExceptionCode != order.ExceptionNone {
		return order.StatusIssueDetected, true
	}

	switch normalizeStatus(deliveryStatus) {
	case "delivered":
		return order.StatusDelivered, true
	case "out_for_delivery", "outfordelivery":
		return order.StatusOutForDelivery, true
	case "in_transit", "intransit", "transit":
		return order.StatusInTransit, true
	}

	latest := shipment.LatestTrackingEvent()
	if latest == nil {
		return "", false
	}
	switch normalizeStatus(latest.StatusCode) {
	case "delivered":
		return order.StatusDelivered, true
	case "out_for_delivery", "outfordelivery":
		return order.StatusOutForDelivery, true
	case "in_transit", "intransit", "transit", "arrived", "departed":
		return order.StatusInTransit, true
	}
	return "", false
}

func normalizeStatus(raw string) string {
	return strings.ToLower(strings.TrimSpace(strings.ReplaceAll(raw, " ", "_")))
}

func scanKey(statusCode string, unix int64) string {
	return fmt.Sprintf("%s@%d", statusCode, unix)
}

func (s *TrackingService) publishShipmentEvents(ctx context.Context, shipment *order.Shipment) {
	if s.eventPublisher == nil {
		return
	}
	events := shipment.DrainEvents()
	if len(events) == 0 {
		return
	}
	_ = s.eventPublisher.Publish(ctx, events...)
}

func (s *TrackingService) publishOrderEvents(ctx context.Context, o *order.Order) {
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
