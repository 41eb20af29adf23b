package messaging

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/dropship/backend/internal/domain/messaging"
	"github.com/dropship/backend/internal/domain/order"
	"github.com/dropship/backend/internal/domain/shared"
)

type schedulerSetup struct {
	templateRepo *MockTemplateRepository
	logRepo      *MockLogRepository
	historyRepo  *MockTriggerHistoryRepository
	email        *fakeChannel
	scheduler    *TriggerScheduler
}

func newSchedulerSetup(t *testing.T) *schedulerSetup {
	t.Helper()
	templateRepo := new(MockTemplateRepository)
	logRepo := new(MockLogRepository)
	historyRepo := new(MockTriggerHistoryRepository)
	email := &fakeChannel{channelType: messaging.ChannelEmail}
	registry := &fakeRegistry{channels: map[messaging.ChannelType]messaging.Channel{
		messaging.ChannelEmail: email,
	}}
	return &schedulerSetup{
		templateRepo: templateRepo,
		logRepo:      logRepo,
		historyRepo:  historyRepo,
		email:        email,
		scheduler: NewTriggerScheduler(
			templateRepo, logRepo, historyRepo, registry,
			DefaultSchedulerConfig(), zap.NewNop(),
		),
	}
}

func dueHistory(t *testing.T, template *messaging.Template) *messaging.TriggerHistory {
	t.Helper()
	history, err := messaging.NewTriggerHistory(
		template.ID,
		template.EventType,
		template.ID,
		"ada@example.com",
		time.Now().Add(-time.Minute),
		map[string]string{"order_number": "DS-2026-0042", "amount": "50", "currency": "USD"},
	)
	require.NoError(t, err)
	return history
}

func TestTriggerScheduler_DeliverDue_SendsAndMarksSent(t *testing.T) {
	s := newSchedulerSetup(t)
	template := emailTemplate(t, order.EventTypeOrderPaid, time.Hour)
	history := dueHistory(t, template)

	s.historyRepo.On("FindDue", mock.Anything, mock.Anything, 50).
		Return([]*messaging.TriggerHistory{history}, nil)
	s.templateRepo.On("FindByID", mock.Anything, template.ID.String()).Return(template, nil)
	s.logRepo.On("Save", mock.Anything, mock.MatchedBy(func(log *messaging.Log) bool {
		return log.Status == messaging.LogStatusSent
	})).Return(nil)
	s.historyRepo.On("Update", mock.Anything, history).Return(nil)

	delivered, err := s.scheduler.DeliverDue(context.Background())

	require.NoError(t, err)
	assert.Equal(t, 1, delivered)
	assert.Equal(t, messaging.TriggerStatusSent, history.Status)
	require.NotNil(t, history.FiredAt)
	require.Len(t, s.email.sent, 1)
	assert.Equal(t, "Order DS-2026-0042 paid", s.email.sent[0].Subject)
	assert.Contains(t, s.email.sent[0].Body, "50 USD")
}

func TestTriggerScheduler_DeliverDue_ChannelFailureMarksFailed(t *testing.T) {
	s := newSchedulerSetup(t)
	template := emailTemplate(t, order.EventTypeOrderPaid, time.Hour)
	history := dueHistory(t, template)
	s.email.err = errors.New("smtp: connection refused")

	s.historyRepo.On("FindDue", mock.Anything, mock.Anything, 50).
		Return([]*messaging.TriggerHistory{history}, nil)
	s.templateRepo.On("FindByID", mock.Anything, template.ID.String()).Return(template, nil)
	s.logRepo.On("Save", mock.Anything, mock.MatchedBy(func(log *messaging.Log) bool {
		return log.Status == messaging.LogStatusFailed
	})).Return(nil)
	s.historyRepo.On("Update", mock.Anything, history).Return(nil)

	delivered, err := s.scheduler.DeliverDue(context.Background())

	require.NoError(t, err)
	assert.Equal(t, 0, delivered)
	assert.Equal(t, messaging.TriggerStatusFailed, history.Status)
	assert.Equal(t, "smtp: connection refused", history.Error)
}

func TestTriggerScheduler_DeliverDue_MissingTemplateFailsThatTriggerOnly(t *testing.T) {
	s := newSchedulerSetup(t)
	template := emailTemplate(t, order.EventTypeOrderPaid, time.Hour)
	orphan := dueHistory(t, template)
	healthy := dueHistory(t, template)

	s.historyRepo.On("FindDue", mock.Anything, mock.Anything, 50).
		Return([]*messaging.TriggerHistory{orphan, healthy}, nil)
	s.templateRepo.On("FindByID", mock.Anything, template.ID.String()).
		Return(nil, shared.ErrNotFound).Once()
	s.templateRepo.On("FindByID", mock.Anything, template.ID.String()).
		Return(template, nil).Once()
	s.logRepo.On("Save", mock.Anything, mock.Anything).Return(nil)
	s.historyRepo.On("Update", mock.Anything, mock.Anything).Return(nil)

	delivered, err := s.scheduler.DeliverDue(context.Background())

	require.NoError(t, err)
	assert.Equal(t, 1, delivered)
	assert.Equal(t, messaging.TriggerStatusFailed, orphan.Status)
	assert.Equal(t, messaging.TriggerStatusSent, healthy.Status)
	require.Len(t, s.email.sent, 1)
}

func TestTriggerScheduler_DeliverDue_EmptyBatch(t *testing.T) {
	s := newSchedulerSetup(t)

	s.historyRepo.On("FindDue", mock.Anything, mock.Anything, 50).
		Return([]*messaging.TriggerHistory{}, nil)

	delivered, err := s.scheduler.DeliverDue(context.Background())

	require.NoError(t, err)
	assert.Equal(t, 0, delivered)
	s.templateRepo.AssertNotCalled(t, "FindByID")
}
