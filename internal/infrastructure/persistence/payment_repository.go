package persistence

import (
	"context"
	"errors"
	"strings"

	"gorm.io/gorm"

	"github.com/dropship/backend/internal/domain/payment"
	"github.com/dropship/backend/internal/domain/shared"
	"github.com/dropship/backend/internal/infrastructure/persistence/models"
)

// GormPaymentRepository implements payment.Repository using GORM
type GormPaymentRepository struct {
	db *gorm.DB
}

// NewGormPaymentRepository creates a new GormPaymentRepository
func NewGormPaymentRepository(db *gorm.DB) *GormPaymentRepository {
	return &GormPaymentRepository{db: db}
}

// WithTx returns a new repository instance bound to the given transaction
func (r *GormPaymentRepository) WithTx(tx *gorm.DB) *GormPaymentRepository {
	return &GormPaymentRepository{db: tx}
}

// Save persists a new payment. The unique constraint on gateway_event_id is
// surfaced as ErrAlreadyExists so concurrent webhook deliveries for the same
// event collapse into a single row.
func (r *GormPaymentRepository) Save(ctx context.Context, p *payment.Payment) error {
	model := models.PaymentModelFromDomain(p)
	if err := r.db.WithContext(ctx).Create(model).Error; err != nil {
		if isUniqueViolation(err) {
			return shared.ErrAlreadyExists
		}
		return err
	}
	return nil
}

// FindByID finds a payment by its ID
func (r *GormPaymentRepository) FindByID(ctx context.Context, id string) (*payment.Payment, error) {
	var model models.PaymentModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindByEventID finds a payment by the gateway's event ID
func (r *GormPaymentRepository) FindByEventID(ctx context.Context, gatewayEventID string) (*payment.Payment, error) {
	var model models.PaymentModel
	if err := r.db.WithContext(ctx).
		Where("gateway_event_id = ?", gatewayEventID).
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindByReference finds a payment by the gateway transaction reference
func (r *GormPaymentRepository) FindByReference(ctx context.Context, reference string) (*payment.Payment, error) {
	var model models.PaymentModel
	if err := r.db.WithContext(ctx).
		Where("reference = ?", reference).
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindByOrderNumber lists all payments recorded against an order
func (r *GormPaymentRepository) FindByOrderNumber(ctx context.Context, orderNumber string) ([]*payment.Payment, error) {
	var modelList []models.PaymentModel
	if err := r.db.WithContext(ctx).
		Where("order_number = ?", orderNumber).
		Order("created_at ASC").
		Find(&modelList).Error; err != nil {
		return nil, err
	}
	payments := make([]*payment.Payment, len(modelList))
	for i := range modelList {
		payments[i] = modelList[i].ToDomain()
	}
	return payments, nil
}

// isUniqueViolation reports whether the error is a unique constraint failure.
// Matches both the postgres SQLSTATE and the driver message so it works under
// sqlmock in tests.
func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	return strings.Contains(msg, "23505") ||
		strings.Contains(msg, "duplicate key") ||
		strings.Contains(msg, "UNIQUE constraint failed")
}

var _ payment.Repository = (*GormPaymentRepository)(nil)
