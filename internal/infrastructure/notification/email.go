// Package notification contains delivery channel adapters for outbound
// messaging: SMTP email plus provider-backed SMS and WhatsApp.
package notification

import (
	"context"
	"fmt"

	"go.uber.org/zap"
	"gopkg.in/gomail.v2"

	"github.com/dropship/backend/internal/domain/messaging"
	"github.com/dropship/backend/internal/infrastructure/config"
)

// mailSender abstracts gomail's dialer so tests can capture messages
type mailSender interface {
	DialAndSend(m ...*gomail.Message) error
}

// EmailChannel delivers messages over SMTP
type EmailChannel struct {
	sender      mailSender
	fromAddress string
	fromName    string
	logger      *zap.Logger
}

// NewEmailChannel creates an SMTP email channel from the messaging config
func NewEmailChannel(cfg config.MessagingConfig, logger *zap.Logger) *EmailChannel {
	dialer := gomail.NewDialer(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUser, cfg.SMTPPassword)
	return &EmailChannel{
		sender:      dialer,
		fromAddress: cfg.FromAddress,
		fromName:    cfg.FromName,
		logger:      logger,
	}
}

// ChannelType returns the channel identifier
func (c *EmailChannel) ChannelType() messaging.ChannelType {
	return messaging.ChannelEmail
}

// Send delivers one rendered message to the recipient address
func (c *EmailChannel) Send(_ context.Context, msg *messaging.OutboundMessage) error {
	m := gomail.NewMessage()
	m.SetAddressHeader("From", c.fromAddress, c.fromName)
	m.SetHeader("To", msg.Recipient)
	m.SetHeader("Subject", msg.Subject)
	m.SetBody("text/html", msg.Body)

	if err := c.sender.DialAndSend(m); err != nil {
		c.logger.Error("email delivery failed",
			zap.String("recipient", msg.Recipient),
			zap.Error(err),
		)
		return fmt.Errorf("notification: send email to %s: %w", msg.Recipient, err)
	}

	c.logger.Debug("email delivered",
		zap.String("recipient", msg.Recipient),
		zap.String("subject", msg.Subject),
	)
	return nil
}

var _ messaging.Channel = (*EmailChannel)(nil)
