package bus

import "github.com/cvrdincake/m0-alerts/internal/alert"

// TopicAlerts carries every canonical alert from ingestion (or the manual
// test trigger) to the broadcast hub.
const TopicAlerts = "alerts"

// Handler is a callback invoked for each alert received on a subscription.
type Handler func(a alert.Alert)

// Broker decouples alert producers from the broadcast hub. Implementations
// include MemoryBroker (single node) and KafkaBroker (distributed setups).
type Broker interface {
	// Publish sends an alert to the given topic. Subscribers registered for
	// that topic receive it asynchronously.
	Publish(topic string, a alert.Alert) error

	// Subscribe registers a handler called for every alert published to the
	// topic. Returns a subscription ID for tracking purposes.
	Subscribe(topic string, handler Handler) (string, error)

	// Close shuts down the broker, releasing connections, goroutines and
	// channels. Publish and Subscribe must not be called afterwards.
	Close() error
}
