package notification

import (
	"fmt"
	"sort"

	"github.com/dropship/backend/internal/domain/messaging"
)

// Registry resolves channel adapters by type. Registration happens once at
// startup; lookups afterwards are read-only, so no locking is needed.
type Registry struct {
	channels map[messaging.ChannelType]messaging.Channel
}

// NewRegistry creates a registry over the given channels
func NewRegistry(channels ...messaging.Channel) *Registry {
	r := &Registry{
		channels: make(map[messaging.ChannelType]messaging.Channel, len(channels)),
	}
	for _, ch := range channels {
		r.channels[ch.ChannelType()] = ch
	}
	return r
}

// GetChannel returns the adapter for the channel type
func (r *Registry) GetChannel(channelType messaging.ChannelType) (messaging.Channel, error) {
	ch, ok := r.channels[channelType]
	if !ok {
		return nil, fmt.Errorf("notification: no channel registered for %s", channelType)
	}
	return ch, nil
}

// ListChannels returns all registered adapters in stable order
func (r *Registry) ListChannels() []messaging.Channel {
	types := make([]string, 0, len(r.channels))
	for t := range r.channels {
		types = append(types, string(t))
	}
	sort.Strings(types)

	channels := make([]messaging.Channel, 0, len(types))
	for _, t := range types {
		channels = append(channels, r.channels[messaging.ChannelType(t)])
	}
	return channels
}

var _ messaging.ChannelRegistry = (*Registry)(nil)
