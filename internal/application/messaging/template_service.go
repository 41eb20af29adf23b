package messaging

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/dropship/backend/internal/domain/messaging"
)

// CreateTemplateRequest represents a new message template
type CreateTemplateRequest struct {
	Name             string `json:"name" binding:"required,min=1,max=100"`
	EventType        string `json:"event_type" binding:"required"`
	Channel          string `json:"channel" binding:"required,oneof=EMAIL SMS WHATSAPP"`
	Subject          string `json:"subject"`
	Body             string `json:"body" binding:"required"`
	SendDelaySeconds int64  `json:"send_delay_seconds" binding:"min=0"`
}

// TemplateResponse represents a template in API responses
type TemplateResponse struct {
	ID               uuid.UUID `json:"id"`
	Name             string    `json:"name"`
	EventType        string    `json:"event_type"`
	Channel          string    `json:"channel"`
	Subject          string    `json:"subject"`
	Body             string    `json:"body"`
	SendDelaySeconds int64     `json:"send_delay_seconds"`
	Active           bool      `json:"active"`
	CreatedAt        time.Time `json:"created_at"`
}

// ToTemplateResponse maps a domain template to its API representation
func ToTemplateResponse(t *messaging.Template) TemplateResponse {
	return TemplateResponse{
		ID:               t.ID,
		Name:             t.Name,
		EventType:        t.EventType,
		Channel:          string(t.Channel),
		Subject:          t.Subject,
		Body:             t.Body,
		SendDelaySeconds: int64(t.SendDelay / time.Second),
		Active:           t.Active,
		CreatedAt:        t.CreatedAt,
	}
}

// TemplateService manages message templates
type TemplateService struct {
	templateRepo messaging.TemplateRepository
}

// NewTemplateService creates a new template service
func NewTemplateService(templateRepo messaging.TemplateRepository) *TemplateService {
	return &TemplateService{templateRepo: templateRepo}
}

// Create creates a new active template
func (s *TemplateService) Create(ctx context.Context, req CreateTemplateRequest) (*TemplateResponse, error) {
	template, err := messaging.NewTemplate(
		req.Name,
		req.EventType,
		messaging.ChannelType(req.Channel),
		req.Subject,
		req.Body,
		time.Duration(req.SendDelaySeconds)*time.Second,
	)
	if err != nil {
		return nil, err
	}

	if err := s.templateRepo.Save(ctx, template); err != nil {
		return nil, err
	}

	response := ToTemplateResponse(template)
	return &response, nil
}

// GetByID retrieves a template by ID
func (s *TemplateService) GetByID(ctx context.Context, id string) (*TemplateResponse, error) {
	template, err := s.templateRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	response := ToTemplateResponse(template)
	return &response, nil
}

// List retrieves all templates
func (s *TemplateService) List(ctx context.Context) ([]TemplateResponse, error) {
	templates, err := s.templateRepo.FindAll(ctx)
	if err != nil {
		return nil, err
	}

	responses := make([]TemplateResponse, 0, len(templates))
	for _, t := range templates {
		responses = append(responses, ToTemplateResponse(t))
	}
	return responses, nil
}

// SetActive activates or deactivates a template
func (s *TemplateService) SetActive(ctx context.Context, id string, active bool) (*TemplateResponse, error) {
	template, err := s.templateRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if active {
		template.Activate()
	} else {
		template.Deactivate()
	}

	if err := s.templateRepo.Update(ctx, template); err != nil {
		return nil, err
	}

	response := ToTemplateResponse(template)
	return &response, nil
}

// Delete removes a template. Existing logs and histories keep their rows.
func (s *TemplateService) Delete(ctx context.Context, id string) error {
	return s.templateRepo.Delete(ctx, id)
}
