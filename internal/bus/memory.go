package bus

import (
	"fmt"
	"sync"

	"github.com/google/uuid"

	"github.com/cvrdincake/m0-alerts/internal/alert"
)

type subscription struct {
	id      string
	handler Handler
}

// MemoryBroker is a simple, single-process Broker backed by Go channels. It is
// suitable for development and single-node deployments.
type MemoryBroker struct {
	mu      sync.RWMutex
	subs    map[string][]subscription // topic -> subscriptions
	closed  bool
	eventCh chan topicAlert
	done    chan struct{}
}

type topicAlert struct {
	topic string
	a     alert.Alert
}

// NewMemoryBroker creates and starts a MemoryBroker. The broker starts a
// background goroutine to dispatch alerts; call Close() to stop it.
func NewMemoryBroker() *MemoryBroker {
	b := &MemoryBroker{
		subs:    make(map[string][]subscription),
		eventCh: make(chan topicAlert, 1024),
		done:    make(chan struct{}),
	}
	go b.dispatch()
	return b
}

// Publish enqueues an alert for asynchronous delivery to all subscribers of
// the given topic.
func (b *MemoryBroker) Publish(topic string, a alert.Alert) error {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if b.closed {
		return fmt.Errorf("broker is closed")
	}

	b.eventCh <- topicAlert{topic: topic, a: a}
	return nil
}

// Subscribe registers a handler for the given topic and returns a
// subscription ID.
func (b *MemoryBroker) Subscribe(topic string, handler Handler) (string, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return "", fmt.Errorf("broker is closed")
	}

	id := uuid.New().String()
	b.subs[topic] = append(b.subs[topic], subscription{id: id, handler: handler})
	return id, nil
}

// Close stops the dispatch goroutine and prevents further Publish/Subscribe
// calls. It returns once every already-buffered alert has been delivered.
func (b *MemoryBroker) Close() error {
	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return nil
	}
	b.closed = true
	close(b.eventCh)
	b.mu.Unlock()

	// The mutex must not be held here: dispatch takes the read lock for each
	// remaining buffered alert before it can exit and signal done.
	<-b.done
	return nil
}

// dispatch runs in a goroutine and fans out published alerts to the matching
// subscribers.
func (b *MemoryBroker) dispatch() {
	defer close(b.done)

	for ta := range b.eventCh {
		b.mu.RLock()
		subs := b.subs[ta.topic]
		// Copy the slice so we can release the lock before calling handlers.
		handlers := make([]Handler, len(subs))
		for i, s := range subs {
			handlers[i] = s.handler
		}
		b.mu.RUnlock()

		for _, h := range handlers {
			h(ta.a)
		}
	}
}
