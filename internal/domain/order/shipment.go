package order

import (
	"time"

	"github.com/google/uuid"

	"github.com/dropship/backend/internal/domain/shared"
)

// ExceptionCode classifies a shipment problem
type ExceptionCode string

const (
	ExceptionNone              ExceptionCode = ""
	ExceptionCustomsHold       ExceptionCode = "CUSTOMS_HOLD"
	ExceptionCustomsInspection ExceptionCode = "CUSTOMS_INSPECTION"
	ExceptionTrackingStalled   ExceptionCode = "TRACKING_STALLED"
	ExceptionDeliveryFailed    ExceptionCode = "DELIVERY_FAILED"
	ExceptionAddressProblem    ExceptionCode = "ADDRESS_PROBLEM"
	ExceptionReturnedToSender  ExceptionCode = "RETURNED_TO_SENDER"
)

// IsValid checks if the code is a known exception code
func (c ExceptionCode) IsValid() bool {
	switch c {
	case ExceptionNone, ExceptionCustomsHold, ExceptionCustomsInspection,
		ExceptionTrackingStalled, ExceptionDeliveryFailed,
		ExceptionAddressProblem, ExceptionReturnedToSender:
		return true
	}
	return false
}

// IsCustoms reports whether the code is a customs-related problem
func (c ExceptionCode) IsCustoms() bool {
	return c == ExceptionCustomsHold || c == ExceptionCustomsInspection
}

// TrackingEvent is one append-only entry in a shipment's tracking log.
// Entries are never mutated after creation.
type TrackingEvent struct {
	ID          uuid.UUID
	ShipmentID  uuid.UUID
	StatusCode  string
	Description string
	Location    string
	OccurredAt  time.Time
	CreatedAt   time.Time
}

// NewTrackingEvent creates a new tracking log entry
func NewTrackingEvent(shipmentID uuid.UUID, statusCode, description, location string, occurredAt time.Time) (*TrackingEvent, error) {
	if statusCode == "" {
		return nil, shared.NewDomainError("INVALID_STATUS_CODE", "Tracking status code cannot be empty")
	}
	if occurredAt.IsZero() {
		occurredAt = time.Now()
	}
	return &TrackingEvent{
		ID:          uuid.New(),
		ShipmentID:  shipmentID,
		StatusCode:  statusCode,
		Description: description,
		Location:    location,
		OccurredAt:  occurredAt,
		CreatedAt:   time.Now(),
	}, nil
}

// Shipment is one physical parcel tied to an order item
type Shipment struct {
	ID             uuid.UUID
	OrderItemID    uuid.UUID
	OrderID        uuid.UUID
	TrackingNumber string
	Carrier        string
	ExceptionCode  ExceptionCode
	ResolvedAt     *time.Time
	TrackingEvents []TrackingEvent
	CreatedAt      time.Time
	UpdatedAt      time.Time

	// events raised by exception-code transitions; drained by the
	// application layer alongside the owning order's events
	pendingEvents []shared.DomainEvent
}

// NewShipment creates a new shipment for an order item
func NewShipment(orderID, orderItemID uuid.UUID, trackingNumber, carrier string) (*Shipment, error) {
	if trackingNumber == "" {
		return nil, shared.NewDomainError("INVALID_TRACKING_NUMBER", "Tracking number cannot be empty")
	}
	now := time.Now()
	return &Shipment{
		ID:             uuid.New(),
		OrderItemID:    orderItemID,
		OrderID:        orderID,
		TrackingNumber: trackingNumber,
		Carrier:        carrier,
		ExceptionCode:  ExceptionNone,
		TrackingEvents: make([]TrackingEvent, 0),
		CreatedAt:      now,
		UpdatedAt:      now,
	}, nil
}

// AppendTrackingEvent appends a new entry to the tracking log
func (s *Shipment) AppendTrackingEvent(statusCode, description, location string, occurredAt time.Time) (*TrackingEvent, error) {
	ev, err := NewTrackingEvent(s.ID, statusCode, description, location, occurredAt)
	if err != nil {
		return nil, err
	}
	s.TrackingEvents = append(s.TrackingEvents, *ev)
	s.UpdatedAt = time.Now()
	return ev, nil
}

// LatestTrackingEvent returns the most recent tracking entry by occurrence time
func (s *Shipment) LatestTrackingEvent() *TrackingEvent {
	if len(s.TrackingEvents) == 0 {
		return nil
	}
	latest := &s.TrackingEvents[0]
	for idx := range s.TrackingEvents {
		if s.TrackingEvents[idx].OccurredAt.After(latest.OccurredAt) {
			latest = &s.TrackingEvents[idx]
		}
	}
	return latest
}

// SetExceptionCode transitions the exception classification.
// Setting the same code again is a no-op: the corresponding domain event
// fires exactly once per actual change.
func (s *Shipment) SetExceptionCode(code ExceptionCode) error {
	if !code.IsValid() {
		return shared.NewDomainError("INVALID_EXCEPTION_CODE", "Unknown shipment exception code")
	}
	if s.ExceptionCode == code {
		return nil
	}

	previous := s.ExceptionCode
	s.ExceptionCode = code
	s.UpdatedAt = time.Now()

	if code == ExceptionNone {
		now := time.Now()
		s.ResolvedAt = &now
		return nil
	}

	s.ResolvedAt = nil
	if code.IsCustoms() {
		s.pendingEvents = append(s.pendingEvents, NewShipmentCustomsUpdatedEvent(s, previous))
	} else {
		s.pendingEvents = append(s.pendingEvents, NewShipmentDelayedEvent(s, previous))
	}

	return nil
}

// DrainEvents returns and clears the pending shipment events
func (s *Shipment) DrainEvents() []shared.DomainEvent {
	events := s.pendingEvents
	s.pendingEvents = nil
	return events
}
