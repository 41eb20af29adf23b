package models

import (
	"encoding/json"
	"time"

	"github.com/shopspring/decimal"

	"github.com/dropship/backend/internal/domain/order"
)

// LinehaulModel is the persistence model for the LinehaulShipment aggregate root.
// The full provider payload is kept as a jsonb snapshot next to the typed columns.
type LinehaulModel struct {
	AggregateModel
	Reference   string `gorm:"type:varchar(100);not null;uniqueIndex"`
	Origin      string `gorm:"type:varchar(100)"`
	Destination string `gorm:"type:varchar(100)"`

	BaseFee   decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	WeightKg  decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	PerKgRate decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	TotalFee  decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`

	ProviderOrderID  string          `gorm:"type:varchar(100);index"`
	OrderAmount      decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	PostageAmount    decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	StorageID        string          `gorm:"type:varchar(100)"`
	ProviderSnapshot json.RawMessage `gorm:"type:jsonb"`

	DispatchedAt *time.Time `gorm:"index"`
	ArrivedAt    *time.Time
}

// TableName returns the table name for GORM
func (LinehaulModel) TableName() string {
	return "linehaul_shipments"
}

// ToDomain converts the persistence model to a domain LinehaulShipment.
func (m *LinehaulModel) ToDomain() *order.LinehaulShipment {
	return &order.LinehaulShipment{
		BaseAggregateRoot: m.ToDomainAggregateRoot(),
		Reference:         m.Reference,
		Origin:            m.Origin,
		Destination:       m.Destination,
		BaseFee:           m.BaseFee,
		WeightKg:          m.WeightKg,
		PerKgRate:         m.PerKgRate,
		TotalFee:          m.TotalFee,
		ProviderOrderID:   m.ProviderOrderID,
		OrderAmount:       m.OrderAmount,
		PostageAmount:     m.PostageAmount,
		StorageID:         m.StorageID,
		ProviderSnapshot:  m.ProviderSnapshot,
		DispatchedAt:      m.DispatchedAt,
		ArrivedAt:         m.ArrivedAt,
	}
}

// FromDomain populates the persistence model from a domain LinehaulShipment.
func (m *LinehaulModel) FromDomain(l *order.LinehaulShipment) {
	m.FromDomainAggregateRoot(l.BaseAggregateRoot)
	m.Reference = l.Reference
	m.Origin = l.Origin
	m.Destination = l.Destination
	m.BaseFee = l.BaseFee
	m.WeightKg = l.WeightKg
	m.PerKgRate = l.PerKgRate
	m.TotalFee = l.TotalFee
	m.ProviderOrderID = l.ProviderOrderID
	m.OrderAmount = l.OrderAmount
	m.PostageAmount = l.PostageAmount
	m.StorageID = l.StorageID
	m.ProviderSnapshot = l.ProviderSnapshot
	m.DispatchedAt = l.DispatchedAt
	m.ArrivedAt = l.ArrivedAt
}

// LinehaulModelFromDomain creates a new persistence model from a domain LinehaulShipment.
func LinehaulModelFromDomain(l *order.LinehaulShipment) *LinehaulModel {
	m := &LinehaulModel{}
	m.FromDomain(l)
	return m
}
