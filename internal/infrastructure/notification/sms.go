package notification

import (
	"context"

	"go.uber.org/zap"

	"github.com/dropship/backend/internal/domain/messaging"
)

// SMSChannel logs outbound SMS messages. The SMS provider integration is not
// wired yet; deliveries succeed so logs and triggers advance normally.
//
// TODO: integrate the Termii SMS API once the account is provisioned.
type SMSChannel struct {
	logger *zap.Logger
}

// NewSMSChannel creates the SMS channel
func NewSMSChannel(logger *zap.Logger) *SMSChannel {
	return &SMSChannel{logger: logger}
}

// ChannelType returns the channel identifier
func (c *SMSChannel) ChannelType() messaging.ChannelType {
	return messaging.ChannelSMS
}

// Send records the message as delivered
func (c *SMSChannel) Send(_ context.Context, msg *messaging.OutboundMessage) error {
	c.logger.Info("sms delivery (provider not configured)",
		zap.String("recipient", msg.Recipient),
		zap.Int("body_length", len(msg.Body)),
	)
	return nil
}

var _ messaging.Channel = (*SMSChannel)(nil)
