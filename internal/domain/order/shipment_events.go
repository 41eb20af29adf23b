package order

import (
	"github.com/google/uuid"

	"github.com/dropship/backend/internal/domain/shared"
)

// Aggregate type constant
const AggregateTypeShipment = "Shipment"

// Event type constants
const (
	EventTypeShipmentCustomsUpdated = "ShipmentCustomsUpdated"
	EventTypeShipmentDelayed        = "ShipmentDelayed"
)

// ShipmentCustomsUpdatedEvent is raised when a shipment enters a customs
// exception state. Fired exactly once per code change.
type ShipmentCustomsUpdatedEvent struct {
	shared.BaseDomainEvent
	ShipmentID     uuid.UUID     `json:"shipment_id"`
	OrderID        uuid.UUID     `json:"order_id"`
	TrackingNumber string        `json:"tracking_number"`
	PreviousCode   ExceptionCode `json:"previous_code"`
	NewCode        ExceptionCode `json:"new_code"`
}

// NewShipmentCustomsUpdatedEvent creates a new ShipmentCustomsUpdatedEvent
func NewShipmentCustomsUpdatedEvent(s *Shipment, previous ExceptionCode) *ShipmentCustomsUpdatedEvent {
	return &ShipmentCustomsUpdatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeShipmentCustomsUpdated, AggregateTypeShipment, s.ID),
		ShipmentID:      s.ID,
		OrderID:         s.OrderID,
		TrackingNumber:  s.TrackingNumber,
		PreviousCode:    previous,
		NewCode:         s.ExceptionCode,
	}
}

// EventType returns the event type name
func (e *ShipmentCustomsUpdatedEvent) EventType() string {
	return EventTypeShipmentCustomsUpdated
}

// ShipmentDelayedEvent is raised when a shipment enters a non-customs
// exception state (tracking stall, failed delivery, address problem).
type ShipmentDelayedEvent struct {
	shared.BaseDomainEvent
	ShipmentID     uuid.UUID     `json:"shipment_id"`
	OrderID        uuid.UUID     `json:"order_id"`
	TrackingNumber string        `json:"tracking_number"`
	PreviousCode   ExceptionCode `json:"previous_code"`
	NewCode        ExceptionCode `json:"new_code"`
}

// NewShipmentDelayedEvent creates a new ShipmentDelayedEvent
func NewShipmentDelayedEvent(s *Shipment, previous ExceptionCode) *ShipmentDelayedEvent {
	return &ShipmentDelayedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeShipmentDelayed, AggregateTypeShipment, s.ID),
		ShipmentID:      s.ID,
		OrderID:         s.OrderID,
		TrackingNumber:  s.TrackingNumber,
		PreviousCode:    previous,
		NewCode:         s.ExceptionCode,
	}
}

// EventType returns the event type name
func (e *ShipmentDelayedEvent) EventType() string {
	return EventTypeShipmentDelayed
}
