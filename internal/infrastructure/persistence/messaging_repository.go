package persistence

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/dropship/backend/internal/domain/messaging"
	"github.com/dropship/backend/internal/domain/shared"
	"github.com/dropship/backend/internal/infrastructure/persistence/models"
)

// GormTemplateRepository implements messaging.TemplateRepository using GORM
type GormTemplateRepository struct {
	db *gorm.DB
}

// NewGormTemplateRepository creates a new GormTemplateRepository
func NewGormTemplateRepository(db *gorm.DB) *GormTemplateRepository {
	return &GormTemplateRepository{db: db}
}

// Save persists a new message template
func (r *GormTemplateRepository) Save(ctx context.Context, t *messaging.Template) error {
	model := models.TemplateModelFromDomain(t)
	if err := r.db.WithContext(ctx).Create(model).Error; err != nil {
		if isUniqueViolation(err) {
			return shared.ErrAlreadyExists
		}
		return err
	}
	return nil
}

// FindByID finds a template by its ID
func (r *GormTemplateRepository) FindByID(ctx context.Context, id string) (*messaging.Template, error) {
	var model models.TemplateModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindActiveByEventType lists active templates registered for an event type
func (r *GormTemplateRepository) FindActiveByEventType(ctx context.Context, eventType string) ([]*messaging.Template, error) {
	var modelList []models.TemplateModel
	if err := r.db.WithContext(ctx).
		Where("event_type = ? AND active = ?", eventType, true).
		Order("name ASC").
		Find(&modelList).Error; err != nil {
		return nil, err
	}
	templates := make([]*messaging.Template, len(modelList))
	for i := range modelList {
		templates[i] = modelList[i].ToDomain()
	}
	return templates, nil
}

// FindAll lists every template
func (r *GormTemplateRepository) FindAll(ctx context.Context) ([]*messaging.Template, error) {
	var modelList []models.TemplateModel
	if err := r.db.WithContext(ctx).
		Order("name ASC").
		Find(&modelList).Error; err != nil {
		return nil, err
	}
	templates := make([]*messaging.Template, len(modelList))
	for i := range modelList {
		templates[i] = modelList[i].ToDomain()
	}
	return templates, nil
}

// Update persists changes to an existing template
func (r *GormTemplateRepository) Update(ctx context.Context, t *messaging.Template) error {
	model := models.TemplateModelFromDomain(t)
	result := r.db.WithContext(ctx).
		Where("version = ?", t.Version).
		Save(model)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// Delete removes a template by ID
func (r *GormTemplateRepository) Delete(ctx context.Context, id string) error {
	result := r.db.WithContext(ctx).Delete(&models.TemplateModel{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

var _ messaging.TemplateRepository = (*GormTemplateRepository)(nil)

// GormMessageLogRepository implements messaging.LogRepository using GORM
type GormMessageLogRepository struct {
	db *gorm.DB
}

// NewGormMessageLogRepository creates a new GormMessageLogRepository
func NewGormMessageLogRepository(db *gorm.DB) *GormMessageLogRepository {
	return &GormMessageLogRepository{db: db}
}

// Save persists a new message log entry
func (r *GormMessageLogRepository) Save(ctx context.Context, l *messaging.Log) error {
	model := models.MessageLogModelFromDomain(l)
	return r.db.WithContext(ctx).Create(model).Error
}

// FindByID finds a log entry by its ID
func (r *GormMessageLogRepository) FindByID(ctx context.Context, id string) (*messaging.Log, error) {
	var model models.MessageLogModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindByRecipient lists log entries for a recipient, newest first
func (r *GormMessageLogRepository) FindByRecipient(ctx context.Context, recipient string, limit, offset int) ([]*messaging.Log, error) {
	var modelList []models.MessageLogModel
	if err := r.db.WithContext(ctx).
		Where("recipient = ?", recipient).
		Order("created_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&modelList).Error; err != nil {
		return nil, err
	}
	logs := make([]*messaging.Log, len(modelList))
	for i := range modelList {
		logs[i] = modelList[i].ToDomain()
	}
	return logs, nil
}

// Update persists changes to an existing log entry
func (r *GormMessageLogRepository) Update(ctx context.Context, l *messaging.Log) error {
	model := models.MessageLogModelFromDomain(l)
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

var _ messaging.LogRepository = (*GormMessageLogRepository)(nil)

// GormTriggerHistoryRepository implements messaging.TriggerHistoryRepository using GORM
type GormTriggerHistoryRepository struct {
	db *gorm.DB
}

// NewGormTriggerHistoryRepository creates a new GormTriggerHistoryRepository
func NewGormTriggerHistoryRepository(db *gorm.DB) *GormTriggerHistoryRepository {
	return &GormTriggerHistoryRepository{db: db}
}

// Save persists a new trigger history entry
func (r *GormTriggerHistoryRepository) Save(ctx context.Context, h *messaging.TriggerHistory) error {
	model, err := models.TriggerHistoryModelFromDomain(h)
	if err != nil {
		return err
	}
	return r.db.WithContext(ctx).Create(model).Error
}

// FindByID finds a trigger history entry by its ID
func (r *GormTriggerHistoryRepository) FindByID(ctx context.Context, id string) (*messaging.TriggerHistory, error) {
	var model models.TriggerHistoryModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain()
}

// FindDue lists scheduled entries whose send time has arrived, oldest first
func (r *GormTriggerHistoryRepository) FindDue(ctx context.Context, now time.Time, limit int) ([]*messaging.TriggerHistory, error) {
	var modelList []models.TriggerHistoryModel
	if err := r.db.WithContext(ctx).
		Where("status = ? AND scheduled_for <= ?", messaging.TriggerStatusScheduled, now).
		Order("scheduled_for ASC").
		Limit(limit).
		Find(&modelList).Error; err != nil {
		return nil, err
	}
	histories := make([]*messaging.TriggerHistory, 0, len(modelList))
	for i := range modelList {
		h, err := modelList[i].ToDomain()
		if err != nil {
			return nil, err
		}
		histories = append(histories, h)
	}
	return histories, nil
}

// Update persists changes to an existing trigger history entry
func (r *GormTriggerHistoryRepository) Update(ctx context.Context, h *messaging.TriggerHistory) error {
	model, err := models.TriggerHistoryModelFromDomain(h)
	if err != nil {
		return err
	}
	result := r.db.WithContext(ctx).
		Where("version = ?", h.Version).
		Save(model)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

var _ messaging.TriggerHistoryRepository = (*GormTriggerHistoryRepository)(nil)
