package ws

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/cvrdincake/m0-alerts/internal/alert"
)

func TestNewHub(t *testing.T) {
	h := NewHub()
	if h == nil {
		t.Fatal("expected non-nil Hub")
	}
	if h.clients == nil {
		t.Fatal("expected clients map to be initialised")
	}
}

func TestHub_AttachDetach(t *testing.T) {
	h := NewHub()
	go h.Run()

	c := &Client{
		ID:   "test-client",
		send: make(chan []byte, 4),
		hub:  h,
	}

	h.Attach(c)
	time.Sleep(50 * time.Millisecond)

	if h.ClientCount() != 1 {
		t.Fatal("client should be attached to hub")
	}

	h.Detach(c)
	time.Sleep(50 * time.Millisecond)

	if h.ClientCount() != 0 {
		t.Fatal("client should have been removed from hub")
	}

	// Detach is idempotent.
	h.Detach(c)
	time.Sleep(50 * time.Millisecond)
	if h.ClientCount() != 0 {
		t.Fatal("repeated detach should be a no-op")
	}
}

func TestHub_PublishReachesAllClients(t *testing.T) {
	h := NewHub()
	go h.Run()

	clients := make([]*Client, 3)
	h.mu.Lock()
	for i := range clients {
		c := &Client{
			ID:   "client-" + string(rune('a'+i)),
			send: make(chan []byte, 4),
			hub:  h,
		}
		clients[i] = c
		h.clients[c.ID] = c
	}
	h.mu.Unlock()

	a := alert.New(alert.CategoryFollow, map[string]any{"username": "Ada"})
	h.Publish(a)

	for _, c := range clients {
		select {
		case msg := <-c.send:
			var frame Frame
			if err := json.Unmarshal(msg, &frame); err != nil {
				t.Fatalf("failed to unmarshal broadcast frame: %v", err)
			}
			if frame.Type != alert.CategoryFollow {
				t.Errorf("expected type follow, got %q", frame.Type)
			}
			if frame.Data["username"] != "Ada" {
				t.Errorf("expected payload to pass through, got %v", frame.Data)
			}
			if frame.Timestamp == 0 {
				t.Error("expected a non-zero epoch-ms timestamp")
			}
		case <-time.After(500 * time.Millisecond):
			t.Fatalf("client %s timed out waiting for broadcast", c.ID)
		}
	}
}

func TestHub_SlowClientIsDetached(t *testing.T) {
	h := NewHub()
	go h.Run()

	// A client with a zero-capacity buffer can never accept a frame.
	stuck := &Client{
		ID:   "stuck",
		send: make(chan []byte),
		hub:  h,
	}
	healthy := &Client{
		ID:   "healthy",
		send: make(chan []byte, 4),
		hub:  h,
	}

	h.mu.Lock()
	h.clients[stuck.ID] = stuck
	h.clients[healthy.ID] = healthy
	h.mu.Unlock()

	h.Publish(alert.New(alert.CategoryRaid, map[string]any{"viewers": 50}))

	select {
	case <-healthy.send:
	case <-time.After(500 * time.Millisecond):
		t.Fatal("healthy client should still receive the broadcast")
	}

	time.Sleep(50 * time.Millisecond)
	if h.ClientCount() != 1 {
		t.Errorf("stuck client should have been detached, count=%d", h.ClientCount())
	}

	// The stuck client's channel was closed by the hub.
	if _, ok := <-stuck.send; ok {
		t.Error("expected the stuck client's send channel to be closed")
	}
}

func TestFrameShape(t *testing.T) {
	a := alert.New(alert.CategoryDonation, map[string]any{"amount": "25.00"})
	raw, err := json.Marshal(frameFor(a))
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	var decoded map[string]any
	if err := json.Unmarshal(raw, &decoded); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	for _, key := range []string{"type", "data", "timestamp"} {
		if _, ok := decoded[key]; !ok {
			t.Errorf("frame missing %q field", key)
		}
	}
}
