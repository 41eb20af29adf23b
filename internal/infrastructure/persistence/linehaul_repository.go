package persistence

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/dropship/backend/internal/domain/order"
	"github.com/dropship/backend/internal/domain/shared"
	"github.com/dropship/backend/internal/infrastructure/persistence/models"
)

// GormLinehaulRepository implements order.LinehaulRepository using GORM
type GormLinehaulRepository struct {
	db *gorm.DB
}

// NewGormLinehaulRepository creates a new GormLinehaulRepository
func NewGormLinehaulRepository(db *gorm.DB) *GormLinehaulRepository {
	return &GormLinehaulRepository{db: db}
}

// Save persists a new linehaul shipment
func (r *GormLinehaulRepository) Save(ctx context.Context, l *order.LinehaulShipment) error {
	model := models.LinehaulModelFromDomain(l)
	return r.db.WithContext(ctx).Create(model).Error
}

// FindByID finds a linehaul shipment by its ID
func (r *GormLinehaulRepository) FindByID(ctx context.Context, id string) (*order.LinehaulShipment, error) {
	var model models.LinehaulModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindByReference finds a linehaul shipment by its internal reference
func (r *GormLinehaulRepository) FindByReference(ctx context.Context, reference string) (*order.LinehaulShipment, error) {
	var model models.LinehaulModel
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

// Update persists changes to an existing linehaul shipment
func (r *GormLinehaulRepository) Update(ctx context.Context, l *order.LinehaulShipment) error {
	model := models.LinehaulModelFromDomain(l)
	result := r.db.WithContext(ctx).
		Where("version = ?", l.Version).
		Save(model)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

var _ order.LinehaulRepository = (*GormLinehaulRepository)(nil)
