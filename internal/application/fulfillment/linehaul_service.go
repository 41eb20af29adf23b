package fulfillment

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/dropship/backend/internal/domain/dropship"
	"github.com/dropship/backend/internal/domain/order"
	"github.com/dropship/backend/internal/domain/shared"
)

// CreateLinehaulRequest represents a new consolidated freight record
type CreateLinehaulRequest struct {
	Reference   string          `json:"reference" binding:"required,min=1,max=100"`
	Origin      string          `json:"origin"`
	Destination string          `json:"destination"`
	BaseFee     decimal.Decimal `json:"base_fee"`
	WeightKg    decimal.Decimal `json:"weight_kg"`
	PerKgRate   decimal.Decimal `json:"per_kg_rate"`
}

// UpdateLinehaulWeightRequest updates the chargeable weight
type UpdateLinehaulWeightRequest struct {
	WeightKg decimal.Decimal `json:"weight_kg" binding:"required"`
}

// LinehaulResponse represents a linehaul shipment in API responses
type LinehaulResponse struct {
	ID              uuid.UUID       `json:"id"`
	Reference       string          `json:"reference"`
	Origin          string          `json:"origin"`
	Destination     string          `json:"destination"`
	BaseFee         decimal.Decimal `json:"base_fee"`
	WeightKg        decimal.Decimal `json:"weight_kg"`
	PerKgRate       decimal.Decimal `json:"per_kg_rate"`
	TotalFee        decimal.Decimal `json:"total_fee"`
	ProviderOrderID string          `json:"provider_order_id,omitempty"`
	OrderAmount     decimal.Decimal `json:"order_amount"`
	PostageAmount   decimal.Decimal `json:"postage_amount"`
	StorageID       string          `json:"storage_id,omitempty"`
	DispatchedAt    *time.Time      `json:"dispatched_at,omitempty"`
	ArrivedAt       *time.Time      `json:"arrived_at,omitempty"`
}

// ToLinehaulResponse maps a domain linehaul shipment to its API representation
func ToLinehaulResponse(l *order.LinehaulShipment) LinehaulResponse {
	return LinehaulResponse{
		ID:              l.ID,
		Reference:       l.Reference,
		Origin:          l.Origin,
		Destination:     l.Destination,
		BaseFee:         l.BaseFee,
		WeightKg:        l.WeightKg,
		PerKgRate:       l.PerKgRate,
		TotalFee:        l.TotalFee,
		ProviderOrderID: l.ProviderOrderID,
		OrderAmount:     l.OrderAmount,
		PostageAmount:   l.PostageAmount,
		StorageID:       l.StorageID,
		DispatchedAt:    l.DispatchedAt,
		ArrivedAt:       l.ArrivedAt,
	}
}

// LinehaulService manages consolidated freight records and reconciles them
// against the provider's order state.
type LinehaulService struct {
	linehaulRepo order.LinehaulRepository
	provider     dropship.FulfillmentProvider
	logger       *zap.Logger
}

// NewLinehaulService creates a new linehaul service
func NewLinehaulService(linehaulRepo order.LinehaulRepository, provider dropship.FulfillmentProvider, logger *zap.Logger) *LinehaulService {
	return &LinehaulService{
		linehaulRepo: linehaulRepo,
		provider:     provider,
		logger:       logger,
	}
}

// Create creates a new linehaul shipment record
func (s *LinehaulService) Create(ctx context.Context, req CreateLinehaulRequest) (*LinehaulResponse, error) {
	l, err := order.NewLinehaulShipment(req.Reference, req.Origin, req.Destination, req.BaseFee, req.WeightKg, req.PerKgRate)
	if err != nil {
		return nil, err
	}

	if err := s.linehaulRepo.Save(ctx, l); err != nil {
		return nil, err
	}

	response := ToLinehaulResponse(l)
	return &response, nil
}

// GetByReference retrieves a linehaul shipment by its reference
func (s *LinehaulService) GetByReference(ctx context.Context, reference string) (*LinehaulResponse, error) {
	l, err := s.linehaulRepo.FindByReference(ctx, reference)
	if err != nil {
		return nil, err
	}
	response := ToLinehaulResponse(l)
	return &response, nil
}

// UpdateWeight updates the chargeable weight and recomputes the fee
func (s *LinehaulService) UpdateWeight(ctx context.Context, id string, req UpdateLinehaulWeightRequest) (*LinehaulResponse, error) {
	l, err := s.linehaulRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := l.UpdateWeight(req.WeightKg); err != nil {
		return nil, err
	}

	if err := s.linehaulRepo.Update(ctx, l); err != nil {
		return nil, err
	}

	response := ToLinehaulResponse(l)
	return &response, nil
}

// SyncFromProvider pulls the provider's order state and merges it into the
// typed columns plus the raw snapshot. Dispatched and arrived timestamps are
// first-write-wins inside the aggregate.
func (s *LinehaulService) SyncFromProvider(ctx context.Context, id string) (*LinehaulResponse, error) {
	l, err := s.linehaulRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if l.ProviderOrderID == "" {
		return nil, shared.NewDomainError("NOT_DISPATCHED", "Linehaul has no provider order to sync from")
	}

	status, err := s.provider.GetOrder(ctx, l.ProviderOrderID)
	if err != nil {
		return nil, err
	}

	if err := l.ApplyProviderOrder(status.Raw); err != nil {
		return nil, err
	}

	if err := s.linehaulRepo.Update(ctx, l); err != nil {
		return nil, err
	}

	s.logger.Info("linehaul synced from provider",
		zap.String("reference", l.Reference),
		zap.String("provider_order_id", l.ProviderOrderID),
	)

	response := ToLinehaulResponse(l)
	return &response, nil
}

// ApplyProviderPayload merges a manually supplied provider payload
func (s *LinehaulService) ApplyProviderPayload(ctx context.Context, id string, payload map[string]any) (*LinehaulResponse, error) {
	l, err := s.linehaulRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := l.ApplyProviderOrder(payload); err != nil {
		return nil, err
	}

	if err := s.linehaulRepo.Update(ctx, l); err != nil {
		return nil, err
	}

	response := ToLinehaulResponse(l)
	return &response, nil
}
