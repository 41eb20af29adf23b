package notification

import (
	"context"
	"fmt"

	"go.uber.org/zap"
	"gopkg.in/gomail.v2"

	"github.com/dropship/backend/internal/domain/dropship"
	"github.com/dropship/backend/internal/infrastructure/config"
)

// EmailAlertSink mails provider failure alerts to the operations address.
// Delivery runs in a goroutine so provider calls are never held up by SMTP.
type EmailAlertSink struct {
	sender      mailSender
	fromAddress string
	fromName    string
	toAddress   string
	logger      *zap.Logger
}

// NewEmailAlertSink creates an alert sink mailing to the given address
func NewEmailAlertSink(cfg config.MessagingConfig, toAddress string, logger *zap.Logger) *EmailAlertSink {
	dialer := gomail.NewDialer(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUser, cfg.SMTPPassword)
	return &EmailAlertSink{
		sender:      dialer,
		fromAddress: cfg.FromAddress,
		fromName:    cfg.FromName,
		toAddress:   toAddress,
		logger:      logger,
	}
}

// NotifyProviderFailure mails the failure details without blocking the caller
func (s *EmailAlertSink) NotifyProviderFailure(_ context.Context, provider, endpoint string, httpStatus int, detail string) {
	m := gomail.NewMessage()
	m.SetAddressHeader("From", s.fromAddress, s.fromName)
	m.SetHeader("To", s.toAddress)
	m.SetHeader("Subject", fmt.Sprintf("[%s] provider failure HTTP %d", provider, httpStatus))
	m.SetBody("text/plain", fmt.Sprintf("Provider: %s\nEndpoint: %s\nHTTP status: %d\n\n%s",
		provider, endpoint, httpStatus, detail))

	go func() {
		if err := s.sender.DialAndSend(m); err != nil {
			s.logger.Error("provider failure alert mail not delivered",
				zap.String("provider", provider),
				zap.String("endpoint", endpoint),
				zap.Int("http_status", httpStatus),
				zap.Error(err),
			)
		}
	}()
}

// LogAlertSink writes provider failure alerts to the structured log. Used when
// no operations mail address is configured.
type LogAlertSink struct {
	logger *zap.Logger
}

// NewLogAlertSink creates a log-only alert sink
func NewLogAlertSink(logger *zap.Logger) *LogAlertSink {
	return &LogAlertSink{logger: logger}
}

// NotifyProviderFailure logs the failure at error level
func (s *LogAlertSink) NotifyProviderFailure(_ context.Context, provider, endpoint string, httpStatus int, detail string) {
	s.logger.Error("provider failure alert",
		zap.String("provider", provider),
		zap.String("endpoint", endpoint),
		zap.Int("http_status", httpStatus),
		zap.String("detail", detail),
	)
}

var (
	_ dropship.AlertSink = (*EmailAlertSink)(nil)
	_ dropship.AlertSink = (*LogAlertSink)(nil)
)
