package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/dropship/backend/internal/domain/order"
)

// OrderModel is the persistence model for the Order aggregate root.
type OrderModel struct {
	AggregateModel
	OrderNumber   string              `gorm:"type:varchar(50);not null;uniqueIndex"`
	CustomerID    *uuid.UUID          `gorm:"type:uuid;index"`
	CustomerEmail string              `gorm:"type:varchar(255);not null;index"`
	Status        order.Status        `gorm:"type:varchar(20);not null;default:'RECEIVED';index"`
	PaymentStatus order.PaymentStatus `gorm:"type:varchar(20);not null;default:'PENDING'"`
	GrandTotal    decimal.Decimal     `gorm:"type:decimal(18,4);not null;default:0"`
	Currency      string              `gorm:"type:varchar(3);not null"`
	Items         []OrderItemModel    `gorm:"foreignKey:OrderID;references:ID"`

	ShipName        string `gorm:"type:varchar(200);not null"`
	ShipPhone       string `gorm:"type:varchar(50)"`
	ShipEmail       string `gorm:"type:varchar(255)"`
	ShipCountryCode string `gorm:"type:varchar(2);not null"`
	ShipProvince    string `gorm:"type:varchar(100)"`
	ShipCity        string `gorm:"type:varchar(100);not null"`
	ShipStreet      string `gorm:"type:varchar(500);not null"`
	ShipPostalCode  string `gorm:"type:varchar(20)"`

	ProviderOrderID         string          `gorm:"type:varchar(100);index"`
	ProviderShipmentOrderID string          `gorm:"type:varchar(100)"`
	ProviderOrderStatus     string          `gorm:"type:varchar(50)"`
	ProviderAmountDue       decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	ProviderPaymentPending  bool            `gorm:"not null;default:false"`

	RefundedAmount decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	RefundReason   string          `gorm:"type:varchar(500)"`
	RefundedAt     *time.Time
	PaidAt         *time.Time
	PaymentRef     string `gorm:"type:varchar(100)"`
}

// TableName returns the table name for GORM
func (OrderModel) TableName() string {
	return "orders"
}

// ToDomain converts the persistence model to a domain Order.
func (m *OrderModel) ToDomain() *order.Order {
	o := &order.Order{
		BaseAggregateRoot: m.ToDomainAggregateRoot(),
		OrderNumber:       m.OrderNumber,
		CustomerID:        m.CustomerID,
		CustomerEmail:     m.CustomerEmail,
		Status:            m.Status,
		PaymentStatus:     m.PaymentStatus,
		GrandTotal:        m.GrandTotal,
		Currency:          m.Currency,
		ShippingAddr: order.Address{
			Name:        m.ShipName,
			Phone:       m.ShipPhone,
			Email:       m.ShipEmail,
			CountryCode: m.ShipCountryCode,
			Province:    m.ShipProvince,
			City:        m.ShipCity,
			Street:      m.ShipStreet,
			PostalCode:  m.ShipPostalCode,
		},
		ProviderOrderID:         m.ProviderOrderID,
		ProviderShipmentOrderID: m.ProviderShipmentOrderID,
		ProviderOrderStatus:     m.ProviderOrderStatus,
		ProviderAmountDue:       m.ProviderAmountDue,
		ProviderPaymentPending:  m.ProviderPaymentPending,
		RefundedAmount:          m.RefundedAmount,
		RefundReason:            m.RefundReason,
		RefundedAt:              m.RefundedAt,
		PaidAt:                  m.PaidAt,
		PaymentRef:              m.PaymentRef,
		Items:                   make([]order.Item, len(m.Items)),
	}
	for i, item := range m.Items {
		o.Items[i] = *item.ToDomain()
	}
	return o
}

// FromDomain populates the persistence model from a domain Order.
func (m *OrderModel) FromDomain(o *order.Order) {
	m.FromDomainAggregateRoot(o.BaseAggregateRoot)
	m.OrderNumber = o.OrderNumber
	m.CustomerID = o.CustomerID
	m.CustomerEmail = o.CustomerEmail
	m.Status = o.Status
	m.PaymentStatus = o.PaymentStatus
	m.GrandTotal = o.GrandTotal
	m.Currency = o.Currency
	m.ShipName = o.ShippingAddr.Name
	m.ShipPhone = o.ShippingAddr.Phone
	m.ShipEmail = o.ShippingAddr.Email
	m.ShipCountryCode = o.ShippingAddr.CountryCode
	m.ShipProvince = o.ShippingAddr.Province
	m.ShipCity = o.ShippingAddr.City
	m.ShipStreet = o.ShippingAddr.Street
	m.ShipPostalCode = o.ShippingAddr.PostalCode
	m.ProviderOrderID = o.ProviderOrderID
	m.ProviderShipmentOrderID = o.ProviderShipmentOrderID
	m.ProviderOrderStatus = o.ProviderOrderStatus
	m.ProviderAmountDue = o.ProviderAmountDue
	m.ProviderPaymentPending = o.ProviderPaymentPending
	m.RefundedAmount = o.RefundedAmount
	m.RefundReason = o.RefundReason
	m.RefundedAt = o.RefundedAt
	m.PaidAt = o.PaidAt
	m.PaymentRef = o.PaymentRef
	m.Items = make([]OrderItemModel, len(o.Items))
	for i, item := range o.Items {
		m.Items[i] = *OrderItemModelFromDomain(&item)
	}
}

// OrderModelFromDomain creates a new persistence model from a domain Order.
func OrderModelFromDomain(o *order.Order) *OrderModel {
	m := &OrderModel{}
	m.FromDomain(o)
	return m
}

// OrderItemModel is the persistence model for a purchased order line.
type OrderItemModel struct {
	ID                uuid.UUID               `gorm:"type:uuid;primary_key"`
	OrderID           uuid.UUID               `gorm:"type:uuid;not null;index"`
	VariantID         string                  `gorm:"type:varchar(100);not null"`
	ProductName       string                  `gorm:"type:varchar(200);not null"`
	ProviderCode      string                  `gorm:"type:varchar(100)"`
	Quantity          int                     `gorm:"not null"`
	UnitPrice         decimal.Decimal         `gorm:"type:decimal(18,4);not null"`
	Amount            decimal.Decimal         `gorm:"type:decimal(18,4);not null"`
	FulfillmentStatus order.FulfillmentStatus `gorm:"type:varchar(30);not null;default:'PENDING';index"`
	Shipments         []ShipmentModel         `gorm:"foreignKey:OrderItemID;references:ID"`
	CreatedAt         time.Time               `gorm:"not null"`
	UpdatedAt         time.Time               `gorm:"not null"`
}

// TableName returns the table name for GORM
func (OrderItemModel) TableName() string {
	return "order_items"
}

// ToDomain converts the persistence model to a domain Item.
func (m *OrderItemModel) ToDomain() *order.Item {
	item := &order.Item{
		ID:                m.ID,
		OrderID:           m.OrderID,
		VariantID:         m.VariantID,
		ProductName:       m.ProductName,
		ProviderCode:      m.ProviderCode,
		Quantity:          m.Quantity,
		UnitPrice:         m.UnitPrice,
		Amount:            m.Amount,
		FulfillmentStatus: m.FulfillmentStatus,
		CreatedAt:         m.CreatedAt,
		UpdatedAt:         m.UpdatedAt,
		Shipments:         make([]order.Shipment, len(m.Shipments)),
	}
	for i, s := range m.Shipments {
		item.Shipments[i] = *s.ToDomain()
	}
	return item
}

// OrderItemModelFromDomain creates a new persistence model from a domain Item.
func OrderItemModelFromDomain(item *order.Item) *OrderItemModel {
	m := &OrderItemModel{
		ID:                item.ID,
		OrderID:           item.OrderID,
		VariantID:         item.VariantID,
		ProductName:       item.ProductName,
		ProviderCode:      item.ProviderCode,
		Quantity:          item.Quantity,
		UnitPrice:         item.UnitPrice,
		Amount:            item.Amount,
		FulfillmentStatus: item.FulfillmentStatus,
		CreatedAt:         item.CreatedAt,
		UpdatedAt:         item.UpdatedAt,
		Shipments:         make([]ShipmentModel, len(item.Shipments)),
	}
	for i, s := range item.Shipments {
		m.Shipments[i] = *ShipmentModelFromDomain(&s)
	}
	return m
}

// ShipmentModel is the persistence model for a parcel tied to an order item.
type ShipmentModel struct {
	ID             uuid.UUID            `gorm:"type:uuid;primary_key"`
	OrderItemID    uuid.UUID            `gorm:"type:uuid;not null;index"`
	OrderID        uuid.UUID            `gorm:"type:uuid;not null;index"`
	TrackingNumber string               `gorm:"type:varchar(100);not null;uniqueIndex"`
	Carrier        string               `gorm:"type:varchar(100)"`
	ExceptionCode  order.ExceptionCode  `gorm:"type:varchar(30);not null;default:'';index"`
	ResolvedAt     *time.Time
	TrackingEvents []TrackingEventModel `gorm:"foreignKey:ShipmentID;references:ID"`
	CreatedAt      time.Time            `gorm:"not null"`
	UpdatedAt      time.Time            `gorm:"not null"`
}

// TableName returns the table name for GORM
func (ShipmentModel) TableName() string {
	return "shipments"
}

// ToDomain converts the persistence model to a domain Shipment.
func (m *ShipmentModel) ToDomain() *order.Shipment {
	s := &order.Shipment{
		ID:             m.ID,
		OrderItemID:    m.OrderItemID,
		OrderID:        m.OrderID,
		TrackingNumber: m.TrackingNumber,
		Carrier:        m.Carrier,
		ExceptionCode:  m.ExceptionCode,
		ResolvedAt:     m.ResolvedAt,
		CreatedAt:      m.CreatedAt,
		UpdatedAt:      m.UpdatedAt,
		TrackingEvents: make([]order.TrackingEvent, len(m.TrackingEvents)),
	}
	for i, ev := range m.TrackingEvents {
		s.TrackingEvents[i] = *ev.ToDomain()
	}
	return s
}

// ShipmentModelFromDomain creates a new persistence model from a domain Shipment.
func ShipmentModelFromDomain(s *order.Shipment) *ShipmentModel {
	m := &ShipmentModel{
		ID:             s.ID,
		OrderItemID:    s.OrderItemID,
		OrderID:        s.OrderID,
		TrackingNumber: s.TrackingNumber,
		Carrier:        s.Carrier,
		ExceptionCode:  s.ExceptionCode,
		ResolvedAt:     s.ResolvedAt,
		CreatedAt:      s.CreatedAt,
		UpdatedAt:      s.UpdatedAt,
		TrackingEvents: make([]TrackingEventModel, len(s.TrackingEvents)),
	}
	for i, ev := range s.TrackingEvents {
		m.TrackingEvents[i] = *TrackingEventModelFromDomain(&ev)
	}
	return m
}

// TrackingEventModel is the persistence model for one append-only tracking entry.
type TrackingEventModel struct {
	ID          uuid.UUID `gorm:"type:uuid;primary_key"`
	ShipmentID  uuid.UUID `gorm:"type:uuid;not null;index"`
	StatusCode  string    `gorm:"type:varchar(50);not null"`
	Description string    `gorm:"type:varchar(500)"`
	Location    string    `gorm:"type:varchar(200)"`
	OccurredAt  time.Time `gorm:"not null;index"`
	CreatedAt   time.Time `gorm:"not null"`
}

// TableName returns the table name for GORM
func (TrackingEventModel) TableName() string {
	return "tracking_events"
}

// ToDomain converts the persistence model to a domain TrackingEvent.
func (m *TrackingEventModel) ToDomain() *order.TrackingEvent {
	return &order.TrackingEvent{
		ID:          m.ID,
		ShipmentID:  m.ShipmentID,
		StatusCode:  m.StatusCode,
		Description: m.Description,
		Location:    m.Location,
		OccurredAt:  m.OccurredAt,
		CreatedAt:   m.CreatedAt,
	}
}

// TrackingEventModelFromDomain creates a new persistence model from a domain TrackingEvent.
func TrackingEventModelFromDomain(ev *order.TrackingEvent) *TrackingEventModel {
	return &TrackingEventModel{
		ID:          ev.ID,
		ShipmentID:  ev.ShipmentID,
		StatusCode:  ev.StatusCode,
		Description: ev.Description,
		Location:    ev.Location,
		OccurredAt:  ev.OccurredAt,
		CreatedAt:   ev.CreatedAt,
	}
}
