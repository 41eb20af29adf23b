package fulfillment

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/dropship/backend/internal/domain/order"
)

// DispatchOptions tune how an order is sent to the provider
type DispatchOptions struct {
	// LogisticName selects the provider's shipping product (optional)
	LogisticName string `json:"logistic_name"`
	// FromCountryCode overrides the origin warehouse country
	FromCountryCode string `json:"from_country_code"`
	// Remark is free text forwarded to the provider
	Remark string `json:"remark"`
}

// DispatchResponse reports the provider-side result of a dispatch
type DispatchResponse struct {
	OrderID                 uuid.UUID       `json:"order_id"`
	OrderNumber             string          `json:"order_number"`
	ProviderOrderID         string          `json:"provider_order_id"`
	ProviderShipmentOrderID string          `json:"provider_shipment_order_id,omitempty"`
	AmountDue               decimal.Decimal `json:"amount_due"`
	PaymentPending          bool            `json:"payment_pending"`
	InterfaceVersion        string          `json:"interface_version"`
}

// TrackingBatch is a manual or webhook-delivered batch of tracking updates
type TrackingBatch struct {
	Updates []TrackingUpdate `json:"updates" binding:"required,min=1"`
}

// TrackingUpdate carries new scan events and state for one tracking number
type TrackingUpdate struct {
	TrackingNumber string         `json:"tracking_number" binding:"required"`
	Carrier        string         `json:"carrier"`
	DeliveryStatus string         `json:"delivery_status"`
	ExceptionCode  string         `json:"exception_code"`
	Events         []TrackingScan `json:"events"`
}

// TrackingScan is one scan entry in a tracking update
type TrackingScan struct {
	StatusCode  string    `json:"status_code" binding:"required"`
	Description string    `json:"description"`
	Location    string    `json:"location"`
	OccurredAt  time.Time `json:"occurred_at"`
}

// IngestResult summarizes one tracking batch ingestion
type IngestResult struct {
	Processed int      `json:"processed"`
	Unmatched []string `json:"unmatched,omitempty"`
}

// ShipmentResponse represents a shipment with its tracking log
type ShipmentResponse struct {
	ID             uuid.UUID               `json:"id"`
	OrderID        uuid.UUID               `json:"order_id"`
	TrackingNumber string                  `json:"tracking_number"`
	Carrier        string                  `json:"carrier"`
	ExceptionCode  string                  `json:"exception_code,omitempty"`
	ResolvedAt     *time.Time              `json:"resolved_at,omitempty"`
	Events         []TrackingEventResponse `json:"events"`
}

// TrackingEventResponse represents one tracking log entry
type TrackingEventResponse struct {
	StatusCode  string    `json:"status_code"`
	Description string    `json:"description"`
	Location    string    `json:"location"`
	OccurredAt  time.Time `json:"occurred_at"`
}

// ToShipmentResponse maps a domain shipment to its API representation
func ToShipmentResponse(s *order.Shipment) ShipmentResponse {
	events := make([]TrackingEventResponse, 0, len(s.TrackingEvents))
	for _, ev := range s.TrackingEvents {
		events = append(events, TrackingEventResponse{
			StatusCode:  ev.StatusCode,
			Description: ev.Description,
			Location:    ev.Location,
			OccurredAt:  ev.OccurredAt,
		})
	}
	return ShipmentResponse{
		ID:             s.ID,
		OrderID:        s.OrderID,
		TrackingNumber: s.TrackingNumber,
		Carrier:        s.Carrier,
		ExceptionCode:  string(s.ExceptionCode),
		ResolvedAt:     s.ResolvedAt,
		Events:         events,
	}
}
