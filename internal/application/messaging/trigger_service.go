// Package messaging contains the event-driven customer notification services:
// template triggers, delivery, and the scheduler for delayed sends.
package messaging

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/dropship/backend/internal/domain/messaging"
	"github.com/dropship/backend/internal/domain/order"
	"github.com/dropship/backend/internal/domain/shared"
)

// TriggerService listens for domain events and fires matching message
// templates. Immediate templates render and send inline; delayed templates
// are written as scheduled trigger history rows for the scheduler.
type TriggerService struct {
	templateRepo messaging.TemplateRepository
	logRepo      messaging.LogRepository
	historyRepo  messaging.TriggerHistoryRepository
	channels     messaging.ChannelRegistry
	orderRepo    order.Repository
	logger       *zap.Logger
}

// NewTriggerService creates a new trigger service. The order repository
// resolves recipients for shipment events, which do not carry one.
func NewTriggerService(
	templateRepo messaging.TemplateRepository,
	logRepo messaging.LogRepository,
	historyRepo messaging.TriggerHistoryRepository,
	channels messaging.ChannelRegistry,
	orderRepo order.Repository,
	logger *zap.Logger,
) *TriggerService {
	return &TriggerService{
		templateRepo: templateRepo,
		logRepo:      logRepo,
		historyRepo:  historyRepo,
		channels:     channels,
		orderRepo:    orderRepo,
		logger:       logger,
	}
}

// EventTypes returns the domain events that can fire message templates
func (s *TriggerService) EventTypes() []string {
	return []string{
		order.EventTypeOrderCreated,
		order.EventTypeOrderStatusChanged,
		order.EventTypeOrderPaid,
		order.EventTypeOrderRefunded,
		order.EventTypeShipmentCustomsUpdated,
		order.EventTypeShipmentDelayed,
	}
}

// Handle fires the active templates registered for the event's type.
// Per-template failures are logged and do not fail the event delivery:
// a notification is best effort, the business state change already happened.
func (s *TriggerService) Handle(ctx context.Context, event shared.DomainEvent) error {
	recipient, lookupOrderID, vars := extractEventContext(event)
	if recipient == "" && lookupOrderID != "" {
		o, err := s.orderRepo.FindByID(ctx, lookupOrderID)
		if err != nil {
			return fmt.Errorf("messaging: resolving recipient for %s: %w", event.EventType(), err)
		}
		recipient = o.CustomerEmail
		vars["order_number"] = o.OrderNumber
	}
	if recipient == "" {
		s.logger.Debug("event carries no reachable recipient",
			zap.String("event_type", event.EventType()),
		)
		return nil
	}

	templates, err := s.templateRepo.FindActiveByEventType(ctx, event.EventType())
	if err != nil {
		return fmt.Errorf("messaging: loading templates for %s: %w", event.EventType(), err)
	}

	for _, template := range templates {
		if !template.MatchesConditions(vars) {
			continue
		}

		if template.SendDelay > 0 {
			if err := s.schedule(ctx, template, event, recipient, vars); err != nil {
				s.logger.Error("scheduling delayed message",
					zap.String("template", template.Name),
					zap.String("event_type", event.EventType()),
					zap.Error(err),
				)
			}
			continue
		}

		s.deliver(ctx, template, recipient, vars)
	}

	return nil
}

// schedule writes a trigger history row carrying the render variables, so the
// delayed send does not depend on re-reading the aggregate later
func (s *TriggerService) schedule(ctx context.Context, template *messaging.Template, event shared.DomainEvent, recipient string, vars map[string]string) error {
	history, err := messaging.NewTriggerHistory(
		template.ID,
		event.EventType(),
		event.AggregateID(),
		recipient,
		template.ScheduledFor(time.Now()),
		vars,
	)
	if err != nil {
		return err
	}
	return s.historyRepo.Save(ctx, history)
}

// deliver renders and sends one template now, recording the outcome on a
// message log. A channel error marks the log failed and moves on.
func (s *TriggerService) deliver(ctx context.Context, template *messaging.Template, recipient string, vars map[string]string) {
	subject, body := messaging.RenderTemplate(template, vars)

	log, err := messaging.NewLog(template.ID, template.Channel, recipient, subject, body)
	if err != nil {
		s.logger.Error("building message log",
			zap.String("template", template.Name),
			zap.Error(err),
		)
		return
	}

	channel, err := s.channels.GetChannel(template.Channel)
	if err != nil {
		_ = log.MarkFailed(err.Error())
		s.saveLog(ctx, log)
		return
	}

	if sendErr := channel.Send(ctx, &messaging.OutboundMessage{
		Recipient: recipient,
		Subject:   subject,
		Body:      body,
	}); sendErr != nil {
		s.logger.Warn("message delivery failed",
			zap.String("template", template.Name),
			zap.String("channel", string(template.Channel)),
			zap.String("recipient", recipient),
			zap.Error(sendErr),
		)
		_ = log.MarkFailed(sendErr.Error())
	} else {
		_ = log.MarkSent()
	}

	s.saveLog(ctx, log)
}

func (s *TriggerService) saveLog(ctx context.Context, log *messaging.Log) {
	if err := s.logRepo.Save(ctx, log); err != nil {
		s.logger.Error("persisting message log",
			zap.String("recipient", log.Recipient),
			zap.Error(err),
		)
	}
}

// extractEventContext pulls the recipient and render variables out of the
// concrete event types. Shipment events carry no recipient; they return the
// owning order's id for lookup instead.
func extractEventContext(event shared.DomainEvent) (recipient, lookupOrderID string, vars map[string]string) {
	switch ev := event.(type) {
	case *order.CreatedEvent:
		return ev.CustomerEmail, "", map[string]string{
			"order_number":   ev.OrderNumber,
			"customer_email": ev.CustomerEmail,
			"currency":       ev.Currency,
		}
	case *order.StatusChangedEvent:
		return ev.CustomerEmail, "", map[string]string{
			"order_number":    ev.OrderNumber,
			"customer_email":  ev.CustomerEmail,
			"previous_status": string(ev.PreviousStatus),
			"new_status":      string(ev.NewStatus),
		}
	case *order.PaidEvent:
		return ev.CustomerEmail, "", map[string]string{
			"order_number":   ev.OrderNumber,
			"customer_email": ev.CustomerEmail,
			"amount":         ev.Amount.String(),
			"currency":       ev.Currency,
			"payment_ref":    ev.PaymentRef,
		}
	case *order.RefundedEvent:
		return ev.CustomerEmail, "", map[string]string{
			"order_number":   ev.OrderNumber,
			"customer_email": ev.CustomerEmail,
			"amount":         ev.Amount.String(),
			"currency":       ev.Currency,
			"reason":         ev.Reason,
		}
	case *order.ShipmentCustomsUpdatedEvent:
		return "", ev.OrderID.String(), map[string]string{
			"tracking_number": ev.TrackingNumber,
			"exception_code":  string(ev.NewCode),
		}
	case *order.ShipmentDelayedEvent:
		return "", ev.OrderID.String(), map[string]string{
			"tracking_number": ev.TrackingNumber,
			"exception_code":  string(ev.NewCode),
		}
	}
	return "", "", nil
}
