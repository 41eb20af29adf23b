// Package payment contains the webhook ingestion and charge initiation
// application services for payment gateways.
package payment

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/dropship/backend/internal/domain/order"
	"github.com/dropship/backend/internal/domain/payment"
	"github.com/dropship/backend/internal/domain/shared"
)

// WebhookResult reports the outcome of one webhook delivery
type WebhookResult struct {
	EventID     string `json:"event_id"`
	OrderNumber string `json:"order_number,omitempty"`
	Status      string `json:"status"`
	// Duplicate is true when the same event id was already processed.
	// The gateway gets a 200 either way so it stops redelivering.
	Duplicate bool `json:"duplicate"`
}

// WebhookService processes gateway webhook deliveries. Gateways redeliver
// until acknowledged, so the same event id can arrive any number of times;
// exactly one Payment row and one order update may come out of it.
type WebhookService struct {
	gateway        payment.Gateway
	paymentRepo    payment.Repository
	orderRepo      order.Repository
	idempotency    shared.IdempotencyStore
	idemConfig     shared.IdempotencyConfig
	eventPublisher shared.EventPublisher
	logger         *zap.Logger
}

// NewWebhookService creates a new webhook service
func NewWebhookService(
	gateway payment.Gateway,
	paymentRepo payment.Repository,
	orderRepo order.Repository,
	idempotency shared.IdempotencyStore,
	logger *zap.Logger,
) *WebhookService {
	return &WebhookService{
		gateway:     gateway,
		paymentRepo: paymentRepo,
		orderRepo:   orderRepo,
		idempotency: idempotency,
		idemConfig:  shared.DefaultIdempotencyConfig(),
		logger:      logger,
	}
}

// SetEventPublisher sets the event publisher for cross-context integration
func (s *WebhookService) SetEventPublisher(publisher shared.EventPublisher) {
	s.eventPublisher = publisher
}

// ProcessWebhook verifies and applies one webhook delivery. A duplicate
// delivery of an already processed event id creates nothing and reports
// Duplicate. A failure after the idempotency mark removes the mark so the
// gateway's retry gets a clean attempt.
func (s *WebhookService) ProcessWebhook(ctx context.Context, payload []byte, signature string) (*WebhookResult, error) {
	ev, err := s.gateway.VerifyWebhook(ctx, payload, signature)
	if err != nil {
		return nil, err
	}

	markKey := idempotencyKey(s.gateway.GatewayType(), ev.EventID)
	marked, err := s.idempotency.MarkProcessed(ctx, markKey, s.idemConfig.TTL)
	if err != nil {
		return nil, fmt.Errorf("payment: idempotency check: %w", err)
	}
	if !marked {
		s.logger.Info("duplicate webhook delivery skipped",
			zap.String("gateway", string(s.gateway.GatewayType())),
			zap.String("event_id", ev.EventID),
		)
		return s.duplicateResult(ev), nil
	}

	result, err := s.apply(ctx, ev, payload)
	if err != nil {
		if unmarkErr := s.idempotency.Unmark(ctx, markKey); unmarkErr != nil {
			s.logger.Error("removing idempotency mark after failure",
				zap.String("event_id", ev.EventID),
				zap.Error(unmarkErr),
			)
		}
		return nil, err
	}
	return result, nil
}

// apply records the payment and updates the order. The unique index on the
// gateway event id is the hard dedup boundary: even if the idempotency store
// lost its mark, a second insert surfaces as ErrAlreadyExists and is treated
// as a duplicate, not a failure.
func (s *WebhookService) apply(ctx context.Context, ev *payment.WebhookEvent, payload []byte) (*WebhookResult, error) {
	p, err := payment.NewFromWebhook(s.gateway.GatewayType(), ev, payload)
	if err != nil {
		return nil, err
	}

	if err := s.paymentRepo.Save(ctx, p); err != nil {
		if errors.Is(err, shared.ErrAlreadyExists) {
			return s.duplicateResult(ev), nil
		}
		return nil, err
	}

	if ev.Status == payment.StatusSuccess && ev.OrderNumber != "" {
		if err := s.markOrderPaid(ctx, ev); err != nil {
			return nil, err
		}
	}

	s.publishEvents(ctx, p)

	s.logger.Info("webhook payment recorded",
		zap.String("gateway", string(s.gateway.GatewayType())),
		zap.String("event_id", ev.EventID),
		zap.String("order_number", ev.OrderNumber),
		zap.String("status", string(ev.Status)),
	)

	return &WebhookResult{
		EventID:     ev.EventID,
		OrderNumber: ev.OrderNumber,
		Status:      string(ev.Status),
	}, nil
}

func (s *WebhookService) markOrderPaid(ctx context.Context, ev *payment.WebhookEvent) error {
	o, err := s.orderRepo.FindByOrderNumber(ctx, ev.OrderNumber)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			// Record the payment anyway; an operator reconciles orphans
			s.logger.Warn("webhook references unknown order",
				zap.String("order_number", ev.OrderNumber),
				zap.String("event_id", ev.EventID),
			)
			return nil
		}
		return err
	}

	if err := o.MarkPaid(ev.Amount, ev.Reference); err != nil {
		return err
	}
	if len(o.GetDomainEvents()) == 0 {
		return nil
	}

	if err := s.orderRepo.Update(ctx, o); err != nil {
		return err
	}

	if s.eventPublisher != nil {
		_ = s.eventPublisher.Publish(ctx, o.GetDomainEvents()...)
		o.ClearDomainEvents()
	}
	return nil
}

func (s *WebhookService) publishEvents(ctx context.Context, p *payment.Payment) {
	if s.eventPublisher == nil {
		return
	}
	events := p.GetDomainEvents()
	if len(events) == 0 {
		return
	}
	_ = s.eventPublisher.Publish(ctx, events...)
	p.ClearDomainEvents()
}

func (s *WebhookService) duplicateResult(ev *payment.WebhookEvent) *WebhookResult {
	return &WebhookResult{
		EventID:     ev.EventID,
		OrderNumber: ev.OrderNumber,
		Status:      string(ev.Status),
		Duplicate:   true,
	}
}

func idempotencyKey(gateway payment.GatewayType, eventID string) string {
	return fmt.Sprintf("webhook:%s:%s", gateway, eventID)
}
