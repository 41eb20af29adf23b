package notification

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gopkg.in/gomail.v2"

	"github.com/dropship/backend/internal/domain/messaging"
)

func TestRegistry_GetChannel(t *testing.T) {
	registry := NewRegistry(
		NewSMSChannel(zap.NewNop()),
		NewWhatsAppChannel(zap.NewNop()),
	)

	ch, err := registry.GetChannel(messaging.ChannelSMS)
	require.NoError(t, err)
	assert.Equal(t, messaging.ChannelSMS, ch.ChannelType())

	_, err = registry.GetChannel(messaging.ChannelEmail)
	assert.Error(t, err)
}

func TestRegistry_ListChannelsStableOrder(t *testing.T) {
	registry := NewRegistry(
		NewWhatsAppChannel(zap.NewNop()),
		NewSMSChannel(zap.NewNop()),
	)

	channels := registry.ListChannels()
	require.Len(t, channels, 2)
	assert.Equal(t, messaging.ChannelSMS, channels[0].ChannelType())
	assert.Equal(t, messaging.ChannelWhatsApp, channels[1].ChannelType())
}

// ---------------------------------------------------------------------------
// Email channel
// ---------------------------------------------------------------------------

type fakeSender struct {
	sent []*gomail.Message
	err  error
}

func (s *fakeSender) DialAndSend(m ...*gomail.Message) error {
	if s.err != nil {
		return s.err
	}
	s.sent = append(s.sent, m...)
	return nil
}

func TestEmailChannel_Send(t *testing.T) {
	sender := &fakeSender{}
	channel := &EmailChannel{
		sender:      sender,
		fromAddress: "noreply@shop.example.com",
		fromName:    "Shop",
		logger:      zap.NewNop(),
	}

	err := channel.Send(context.Background(), &messaging.OutboundMessage{
		Recipient: "ada@example.com",
		Subject:   "Your order shipped",
		Body:      "<p>Tracking: TRK-1</p>",
	})

	require.NoError(t, err)
	require.Len(t, sender.sent, 1)
	msg := sender.sent[0]
	assert.Equal(t, []string{"ada@example.com"}, msg.GetHeader("To"))
	assert.Equal(t, []string{"Your order shipped"}, msg.GetHeader("Subject"))
}

func TestEmailChannel_SendFailure(t *testing.T) {
	sender := &fakeSender{err: errors.New("dial tcp: connection refused")}
	channel := &EmailChannel{
		sender:      sender,
		fromAddress: "noreply@shop.example.com",
		logger:      zap.NewNop(),
	}

	err := channel.Send(context.Background(), &messaging.OutboundMessage{
		Recipient: "ada@example.com",
		Subject:   "s",
		Body:      "b",
	})

	assert.ErrorContains(t, err, "ada@example.com")
}

func TestSMSAndWhatsAppChannelsAlwaysSucceed(t *testing.T) {
	msg := &messaging.OutboundMessage{Recipient: "+2348012345678", Body: "hi"}

	assert.NoError(t, NewSMSChannel(zap.NewNop()).Send(context.Background(), msg))
	assert.NoError(t, NewWhatsAppChannel(zap.NewNop()).Send(context.Background(), msg))
}
