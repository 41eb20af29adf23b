package order

import "context"

// Repository defines persistence for order aggregates
type Repository interface {
	Save(ctx context.Context, order *Order) error
	FindByID(ctx context.Context, id string) (*Order, error)
	FindByOrderNumber(ctx context.Context, orderNumber string) (*Order, error)
	FindByStatus(ctx context.Context, status Status, limit, offset int) ([]*Order, error)
	FindAwaitingFulfillment(ctx context.Context, limit int) ([]*Order, error)
	Update(ctx context.Context, order *Order) error
	Delete(ctx context.Context, id string) error
}

// ShipmentRepository defines persistence for shipments and their tracking events
type ShipmentRepository interface {
	Save(ctx context.Context, shipment *Shipment) error
	FindByID(ctx context.Context, id string) (*Shipment, error)
	FindByTrackingNumber(ctx context.Context, trackingNumber string) (*Shipment, error)
	FindByOrderID(ctx context.Context, orderID string) ([]*Shipment, error)
	FindActive(ctx context.Context, limit int) ([]*Shipment, error)
	Update(ctx context.Context, shipment *Shipment) error
}

// LinehaulRepository defines persistence for linehaul shipments
type LinehaulRepository interface {
	Save(ctx context.Context, linehaul *LinehaulShipment) error
	FindByID(ctx context.Context, id string) (*LinehaulShipment, error)
	FindByReference(ctx context.Context, reference string) (*LinehaulShipment, error)
	Update(ctx context.Context, linehaul *LinehaulShipment) error
}
