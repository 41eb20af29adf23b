package persistence

import (
	"context"
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/dropship/backend/internal/domain/order"
	"github.com/dropship/backend/internal/domain/shared"
	"github.com/dropship/backend/internal/infrastructure/persistence/models"
)

// GormOrderRepository implements order.Repository using GORM
type GormOrderRepository struct {
	db *gorm.DB
}

// NewGormOrderRepository creates a new GormOrderRepository
func NewGormOrderRepository(db *gorm.DB) *GormOrderRepository {
	return &GormOrderRepository{db: db}
}

// WithTx returns a new repository instance bound to the given transaction
func (r *GormOrderRepository) WithTx(tx *gorm.DB) *GormOrderRepository {
	return &GormOrderRepository{db: tx}
}

// Save persists a new order with its items
func (r *GormOrderRepository) Save(ctx context.Context, o *order.Order) error {
	model := models.OrderModelFromDomain(o)
	return r.db.WithContext(ctx).Create(model).Error
}

// FindByID finds an order by its ID, items included
func (r *GormOrderRepository) FindByID(ctx context.Context, id string) (*order.Order, error) {
	var model models.OrderModel
	if err := r.db.WithContext(ctx).
		Preload("Items").
		Preload("Items.Shipments").
		First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindByOrderNumber finds an order by its order number
func (r *GormOrderRepository) FindByOrderNumber(ctx context.Context, orderNumber string) (*order.Order, error) {
	var model models.OrderModel
	if err := r.db.WithContext(ctx).
		Preload("Items").
		Preload("Items.Shipments").
		Where("order_number = ?", orderNumber).
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindByStatus lists orders in the given customer-facing status
func (r *GormOrderRepository) FindByStatus(ctx context.Context, status order.Status, limit, offset int) ([]*order.Order, error) {
	var modelList []models.OrderModel
	if err := r.db.WithContext(ctx).
		Preload("Items").
		Where("status = ?", status).
		Order("created_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&modelList).Error; err != nil {
		return nil, err
	}
	return toDomainOrders(modelList), nil
}

// FindAwaitingFulfillment lists orders that have at least one item still
// waiting to be dispatched to a provider
func (r *GormOrderRepository) FindAwaitingFulfillment(ctx context.Context, limit int) ([]*order.Order, error) {
	var modelList []models.OrderModel
	if err := r.db.WithContext(ctx).
		Preload("Items").
		Where("payment_status = ?", order.PaymentStatusPaid).
		Where("id IN (?)", r.db.Model(&models.OrderItemModel{}).
			Select("order_id").
			Where("fulfillment_status IN ?", []order.FulfillmentStatus{
				order.FulfillmentStatusPending,
				order.FulfillmentStatusAwaiting,
			})).
		Order("created_at ASC").
		Limit(limit).
		Find(&modelList).Error; err != nil {
		return nil, err
	}
	return toDomainOrders(modelList), nil
}

// Update persists changes to an existing order and replaces its items
func (r *GormOrderRepository) Update(ctx context.Context, o *order.Order) error {
	model := models.OrderModelFromDomain(o)
	result := r.db.WithContext(ctx).
		Session(&gorm.Session{FullSaveAssociations: true}).
		Where("version = ?", o.Version).
		Save(model)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// Delete removes an order by ID. Orders are normally never hard-deleted;
// this exists for administrative cleanup of test and abandoned checkouts.
func (r *GormOrderRepository) Delete(ctx context.Context, id string) error {
	result := r.db.WithContext(ctx).Delete(&models.OrderModel{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

func toDomainOrders(modelList []models.OrderModel) []*order.Order {
	orders := make([]*order.Order, len(modelList))
	for i := range modelList {
		orders[i] = modelList[i].ToDomain()
	}
	return orders
}

var _ order.Repository = (*GormOrderRepository)(nil)

// GormShipmentRepository implements order.ShipmentRepository using GORM
type GormShipmentRepository struct {
	db *gorm.DB
}

// NewGormShipmentRepository creates a new GormShipmentRepository
func NewGormShipmentRepository(db *gorm.DB) *GormShipmentRepository {
	return &GormShipmentRepository{db: db}
}

// Save persists a new shipment with its tracking events
func (r *GormShipmentRepository) Save(ctx context.Context, s *order.Shipment) error {
	model := models.ShipmentModelFromDomain(s)
	return r.db.WithContext(ctx).Create(model).Error
}

// FindByID finds a shipment by its ID, tracking log included
func (r *GormShipmentRepository) FindByID(ctx context.Context, id string) (*order.Shipment, error) {
	var model models.ShipmentModel
	if err := r.db.WithContext(ctx).
		Preload("TrackingEvents").
		First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindByTrackingNumber finds a shipment by its carrier tracking number
func (r *GormShipmentRepository) FindByTrackingNumber(ctx context.Context, trackingNumber string) (*order.Shipment, error) {
	var model models.ShipmentModel
	if err := r.db.WithContext(ctx).
		Preload("TrackingEvents").
		Where("tracking_number = ?", trackingNumber).
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindByOrderID lists all shipments belonging to an order
func (r *GormShipmentRepository) FindByOrderID(ctx context.Context, orderID string) ([]*order.Shipment, error) {
	var modelList []models.ShipmentModel
	if err := r.db.WithContext(ctx).
		Preload("TrackingEvents").
		Where("order_id = ?", orderID).
		Order("created_at ASC").
		Find(&modelList).Error; err != nil {
		return nil, err
	}
	shipments := make([]*order.Shipment, len(modelList))
	for i := range modelList {
		shipments[i] = modelList[i].ToDomain()
	}
	return shipments, nil
}

// FindActive lists shipments with an unresolved exception or no terminal
// tracking entry yet, oldest first
func (r *GormShipmentRepository) FindActive(ctx context.Context, limit int) ([]*order.Shipment, error) {
	var modelList []models.ShipmentModel
	if err := r.db.WithContext(ctx).
		Preload("TrackingEvents").
		Where("resolved_at IS NULL").
		Order("updated_at ASC").
		Limit(limit).
		Find(&modelList).Error; err != nil {
		return nil, err
	}
	shipments := make([]*order.Shipment, len(modelList))
	for i := range modelList {
		shipments[i] = modelList[i].ToDomain()
	}
	return shipments, nil
}

// Update persists shipment changes. New tracking events are upserted rather
// than replaced so the log stays append-only.
func (r *GormShipmentRepository) Update(ctx context.Context, s *order.Shipment) error {
	model := models.ShipmentModelFromDomain(s)
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		events := model.TrackingEvents
		model.TrackingEvents = nil

		if err := tx.Save(model).Error; err != nil {
			return err
		}
		if len(events) == 0 {
			return nil
		}
		return tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&events).Error
	})
}

var _ order.ShipmentRepository = (*GormShipmentRepository)(nil)
