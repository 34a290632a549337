package overlay

import (
	"encoding/json"
	"log"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/cvrdincake/m0-alerts/internal/alert"
)

// Status describes the transport connection state reported to the display
// surface.
type Status string

const (
	StatusDisconnected Status = "disconnected"
	StatusConnecting   Status = "connecting"
	StatusConnected    Status = "connected"
)

// Backoff is the reconnect delay policy: start at Initial, multiply by Factor
// after each failed attempt, never exceed Max, reset to Initial on success.
type Backoff struct {
	Initial time.Duration
	Max     time.Duration
	Factor  float64
}

// DefaultBackoff matches the overlay's production policy.
var DefaultBackoff = Backoff{Initial: 2 * time.Second, Max: 15 * time.Second, Factor: 1.5}

// Config configures a Client.
type Config struct {
	URL      string
	OnAlert  func(a alert.Alert) // called for every parsed frame
	OnStatus func(s Status)      // called on every status transition
	Backoff  Backoff             // zero value = DefaultBackoff
	Dialer   *websocket.Dialer   // nil = websocket.DefaultDialer
}

// Client keeps a display surface attached to the broadcast stream across
// network interruptions. It guarantees at most one live socket at a time and
// stops reconnecting once closed.
type Client struct {
	url      string
	dialer   *websocket.Dialer
	onAlert  func(alert.Alert)
	onStatus func(Status)
	backoff  Backoff

	mu         sync.Mutex
	conn       *websocket.Conn
	retryTimer *time.Timer
	delay      time.Duration
	status     Status
	closed     bool
}

// New creates a Client. Call Start to begin connecting.
func New(cfg Config) *Client {
	b := cfg.Backoff
	if b.Initial == 0 {
		b = DefaultBackoff
	}
	d := cfg.Dialer
	if d == nil {
		d = websocket.DefaultDialer
	}
	onAlert := cfg.OnAlert
	if onAlert == nil {
		onAlert = func(alert.Alert) {}
	}
	onStatus := cfg.OnStatus
	if onStatus == nil {
		onStatus = func(Status) {}
	}
	return &Client{
		url:      cfg.URL,
		dialer:   d,
		onAlert:  onAlert,
		onStatus: onStatus,
		backoff:  b,
		delay:    b.Initial,
		status:   StatusDisconnected,
	}
}

// Start begins the connect loop. It returns immediately; connection progress
// is reported through the status callback.
func (c *Client) Start() {
	c.setStatus(StatusConnecting)
	go c.connect()
}

// Status returns the last reported connection status.
func (c *Client) Status() Status {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.status
}

// Close tears down the client: any pending reconnect is cancelled, any open
// socket is closed, and no further attempts are scheduled.
func (c *Client) Close() {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.closed = true
	if c.retryTimer != nil {
		c.retryTimer.Stop()
		c.retryTimer = nil
	}
	conn := c.conn
	c.conn = nil
	c.mu.Unlock()

	if conn != nil {
		conn.Close()
	}
	c.setStatus(StatusDisconnected)
}

// connect makes one connection attempt, first tearing down any existing
// socket and cancelling any pending scheduled reconnect.
func (c *Client) connect() {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	if c.retryTimer != nil {
		c.retryTimer.Stop()
		c.retryTimer = nil
	}
	old := c.conn
	c.conn = nil
	c.mu.Unlock()

	if old != nil {
		old.Close()
	}

	conn, resp, err := c.dialer.Dial(c.url, nil)
	if resp != nil && resp.Body != nil {
		resp.Body.Close()
	}
	if err != nil {
		log.Printf("overlay: connection to %s failed: %v", c.url, err)
		c.setStatus(StatusDisconnected)
		c.scheduleReconnect()
		return
	}

	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		conn.Close()
		return
	}
	c.conn = conn
	c.delay = c.backoff.Initial // success resets the backoff
	c.mu.Unlock()

	c.setStatus(StatusConnected)
	go c.readLoop(conn)
}

// readLoop forwards every parsed frame to the alert handler until the
// connection drops, then schedules a reconnect. Malformed frames are dropped
// and logged; they never terminate the connection.
func (c *Client) readLoop(conn *websocket.Conn) {
	for {
		_, msg, err := conn.ReadMessage()
		if err != nil {
			break
		}

		var frame struct {
			Type      alert.Category `json:"type"`
			Data      map[string]any `json:"data"`
			Timestamp int64          `json:"timestamp"`
		}
		if err := json.Unmarshal(msg, &frame); err != nil {
			log.Printf("overlay: dropped malformed frame: %v", err)
			continue
		}
		if frame.Type == "" {
			log.Printf("overlay: dropped frame with no type")
			continue
		}

		a := alert.New(frame.Type, frame.Data)
		if frame.Timestamp > 0 {
			a.ReceivedAt = time.UnixMilli(frame.Timestamp).UTC()
		}
		c.onAlert(a)
	}

	c.mu.Lock()
	// A stale read loop (socket already replaced or client closed) must not
	// report status or schedule anything.
	if c.closed || c.conn != conn {
		c.mu.Unlock()
		return
	}
	c.conn = nil
	c.mu.Unlock()

	c.setStatus(StatusDisconnected)
	c.scheduleReconnect()
}

// scheduleReconnect arms the retry timer with the current backoff delay and
// grows the delay for the next failure.
func (c *Client) scheduleReconnect() {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	if c.retryTimer != nil {
		c.retryTimer.Stop()
	}

	wait := c.delay
	next := time.Duration(float64(c.delay) * c.backoff.Factor)
	if next > c.backoff.Max {
		next = c.backoff.Max
	}
	c.delay = next
	c.mu.Unlock()

	c.setStatus(StatusConnecting)

	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.retryTimer = time.AfterFunc(wait, c.connect)
	c.mu.Unlock()
}

func (c *Client) setStatus(s Status) {
	c.mu.Lock()
	if c.status == s {
		c.mu.Unlock()
		return
	}
	c.status = s
	c.mu.Unlock()
	c.onStatus(s)
}
