package bus

import (
	"fmt"

	"github.com/openfleet/harrier/internal/domain"
)

// New creates an event bus based on configuration. Single-process
// deployments use the channel bus; NATS connects multiple processes to
// the same event stream.
func New(cfg domain.EventBusConfig) (domain.EventBus, error) {
	switch cfg.Type {
	case "channel":
		return NewChannelBus(cfg.ChannelBufferSize), nil

	case "nats":
		return NewNATSBus(cfg)

	default:
		return nil, fmt.Errorf("unsupported event bus type: %s", cfg.Type)
	}
}
