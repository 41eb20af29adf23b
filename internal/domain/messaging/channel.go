package messaging

import "context"

// OutboundMessage is a rendered message ready for delivery
type OutboundMessage struct {
	Recipient string
	Subject   string
	Body      string
}

// Channel is the port for message delivery transports. Concrete adapters
// (SMTP email, SMS, WhatsApp) live in the infrastructure layer.
type Channel interface {
	// ChannelType returns the channel this adapter delivers on
	ChannelType() ChannelType

	// Send delivers one message. A non-nil error marks the log FAILED.
	Send(ctx context.Context, msg *OutboundMessage) error
}

// ChannelRegistry resolves the adapter for a channel type
type ChannelRegistry interface {
	GetChannel(channelType ChannelType) (Channel, error)
	ListChannels() []Channel
}
