package webhook

import (
	"sync"
	"time"
)

// replayWindow matches the window within which EventSub may redeliver a
// message with the same ID.
const replayWindow = 10 * time.Minute

// dedupCache remembers recently seen message IDs so redeliveries are
// acknowledged without producing a second alert.
type dedupCache struct {
	mu   sync.Mutex
	seen map[string]time.Time
	now  func() time.Time
}

func newDedupCache() *dedupCache {
	return &dedupCache{seen: make(map[string]time.Time), now: time.Now}
}

// Seen records the message ID and reports whether it was already present
// within the replay window. Stale entries are swept lazily on each call.
func (c *dedupCache) Seen(messageID string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	for id, at := range c.seen {
		if now.Sub(at) > replayWindow {
			delete(c.seen, id)
		}
	}

	if _, ok := c.seen[messageID]; ok {
		return true
	}
	c.seen[messageID] = now
	return false
}
