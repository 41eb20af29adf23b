package models

import (
	"encoding/json"
	"time"

	"github.com/shopspring/decimal"

	"github.com/dropship/backend/internal/domain/payment"
)

// PaymentModel is the persistence model for the Payment aggregate root.
// The unique index on gateway_event_id is the hard deduplication boundary
// for webhook redeliveries.
type PaymentModel struct {
	AggregateModel
	Gateway        payment.GatewayType `gorm:"type:varchar(20);not null"`
	Reference      string              `gorm:"type:varchar(100);not null;index"`
	GatewayEventID string              `gorm:"type:varchar(100);not null;uniqueIndex"`
	OrderNumber    string              `gorm:"type:varchar(50);not null;index"`
	Amount         decimal.Decimal     `gorm:"type:decimal(18,4);not null"`
	Currency       string              `gorm:"type:varchar(3);not null"`
	Status         payment.Status      `gorm:"type:varchar(20);not null"`
	RawPayload     json.RawMessage     `gorm:"type:jsonb"`
	ProcessedAt    *time.Time
}

// TableName returns the table name for GORM
func (PaymentModel) TableName() string {
	return "payments"
}

// ToDomain converts the persistence model to a domain Payment.
func (m *PaymentModel) ToDomain() *payment.Payment {
	return &payment.Payment{
		BaseAggregateRoot: m.ToDomainAggregateRoot(),
		Gateway:           m.Gateway,
		Reference:         m.Reference,
		GatewayEventID:    m.GatewayEventID,
		OrderNumber:       m.OrderNumber,
		Amount:            m.Amount,
		Currency:          m.Currency,
		Status:            m.Status,
		RawPayload:        m.RawPayload,
		ProcessedAt:       m.ProcessedAt,
	}
}

// FromDomain populates the persistence model from a domain Payment.
func (m *PaymentModel) FromDomain(p *payment.Payment) {
	m.FromDomainAggregateRoot(p.BaseAggregateRoot)
	m.Gateway = p.Gateway
	m.Reference = p.Reference
	m.GatewayEventID = p.GatewayEventID
	m.OrderNumber = p.OrderNumber
	m.Amount = p.Amount
	m.Currency = p.Currency
	m.Status = p.Status
	m.RawPayload = p.RawPayload
	m.ProcessedAt = p.ProcessedAt
}

// PaymentModelFromDomain creates a new persistence model from a domain Payment.
func PaymentModelFromDomain(p *payment.Payment) *PaymentModel {
	m := &PaymentModel{}
	m.FromDomain(p)
	return m
}
