package messaging

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/dropship/backend/internal/domain/messaging"
)

// SchedulerConfig holds configuration for the trigger scheduler
type SchedulerConfig struct {
	BatchSize    int
	PollInterval time.Duration
}

// DefaultSchedulerConfig returns default configuration
func DefaultSchedulerConfig() SchedulerConfig {
	return SchedulerConfig{
		BatchSize:    50,
		PollInterval: 30 * time.Second,
	}
}

// TriggerScheduler delivers due scheduled trigger firings in the background
type TriggerScheduler struct {
	templateRepo messaging.TemplateRepository
	logRepo      messaging.LogRepository
	historyRepo  messaging.TriggerHistoryRepository
	channels     messaging.ChannelRegistry
	config       SchedulerConfig
	logger       *zap.Logger

	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewTriggerScheduler creates a new trigger scheduler
func NewTriggerScheduler(
	templateRepo messaging.TemplateRepository,
	logRepo messaging.LogRepository,
	historyRepo messaging.TriggerHistoryRepository,
	channels messaging.ChannelRegistry,
	config SchedulerConfig,
	logger *zap.Logger,
) *TriggerScheduler {
	return &TriggerScheduler{
		templateRepo: templateRepo,
		logRepo:      logRepo,
		historyRepo:  historyRepo,
		channels:     channels,
		config:       config,
		logger:       logger,
	}
}

// Start starts the background delivery loop
func (s *TriggerScheduler) Start(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	s.cancel = cancel

	s.wg.Add(1)
	go s.deliverLoop(ctx)

	s.logger.Info("trigger scheduler started",
		zap.Int("batch_size", s.config.BatchSize),
		zap.Duration("poll_interval", s.config.PollInterval),
	)
	return nil
}

// Stop gracefully stops the scheduler
func (s *TriggerScheduler) Stop(ctx context.Context) error {
	if s.cancel != nil {
		s.cancel()
	}

	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		s.logger.Info("trigger scheduler stopped")
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (s *TriggerScheduler) deliverLoop(ctx context.Context) {
	defer s.wg.Done()

	ticker := time.NewTicker(s.config.PollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if _, err := s.DeliverDue(ctx); err != nil {
				s.logger.Error("delivering due triggers", zap.Error(err))
			}
		}
	}
}

// DeliverDue delivers every scheduled trigger whose time has come, up to the
// batch size. Each trigger transitions to SENT or FAILED; a delivery failure
// on one trigger does not stop the rest of the batch.
func (s *TriggerScheduler) DeliverDue(ctx context.Context) (int, error) {
	due, err := s.historyRepo.FindDue(ctx, time.Now(), s.config.BatchSize)
	if err != nil {
		return 0, err
	}

	delivered := 0
	for _, history := range due {
		if err := s.deliverOne(ctx, history); err != nil {
			s.logger.Warn("scheduled trigger delivery failed",
				zap.String("trigger_id", history.ID.String()),
				zap.String("event_type", history.EventType),
				zap.Error(err),
			)
			continue
		}
		delivered++
	}
	return delivered, nil
}

func (s *TriggerScheduler) deliverOne(ctx context.Context, history *messaging.TriggerHistory) error {
	template, err := s.templateRepo.FindByID(ctx, history.TemplateID.String())
	if err != nil {
		if markErr := history.MarkFailed("template no longer exists: " + err.Error()); markErr == nil {
			_ = s.historyRepo.Update(ctx, history)
		}
		return err
	}

	subject, body := messaging.RenderTemplate(template, history.Vars)

	log, err := messaging.NewLog(template.ID, template.Channel, history.Recipient, subject, body)
	if err != nil {
		return err
	}

	channel, chErr := s.channels.GetChannel(template.Channel)
	var sendErr error
	if chErr != nil {
		sendErr = chErr
	} else {
		sendErr = channel.Send(ctx, &messaging.OutboundMessage{
			Recipient: history.Recipient,
			Subject:   subject,
			Body:      body,
		})
	}

	if sendErr != nil {
		_ = log.MarkFailed(sendErr.Error())
		_ = history.MarkFailed(sendErr.Error())
	} else {
		_ = log.MarkSent()
		_ = history.MarkSent()
	}

	if err := s.logRepo.Save(ctx, log); err != nil {
		s.logger.Error("persisting message log",
			zap.String("recipient", log.Recipient),
			zap.Error(err),
		)
	}
	if err := s.historyRepo.Update(ctx, history); err != nil {
		return err
	}
	return sendErr
}
