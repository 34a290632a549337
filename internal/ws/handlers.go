package ws

import (
	"log"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"

	"github.com/cvrdincake/m0-alerts/internal/session"
)

// WSHandler upgrades HTTP connections to WebSocket and spawns the read/write
// pumps for the new client.
type WSHandler struct {
	hub      *Hub
	sessions *session.Store
	upgrader websocket.Upgrader
}

// NewWSHandler creates the upgrade handler. allowedOrigins is the
// comma-separated browser origin allow-list from configuration.
func NewWSHandler(hub *Hub, sessions *session.Store, allowedOrigins string) *WSHandler {
	origins := newOriginChecker(allowedOrigins)
	return &WSHandler{
		hub:      hub,
		sessions: sessions,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     origins.Check,
		},
	}
}

// RegisterRoutes wires the WebSocket endpoint.
func (h *WSHandler) RegisterRoutes(r *mux.Router) {
	r.HandleFunc("/ws", h.ServeWS).Methods(http.MethodGet)
}

// ServeWS upgrades an HTTP GET /ws request to a WebSocket connection and
// attaches it to the hub. Any client holding a session may attach; a session
// is minted for clients that lack one.
func (h *WSHandler) ServeWS(w http.ResponseWriter, r *http.Request) {
	var credential string
	if c, err := r.Cookie(session.CookieName); err == nil {
		credential = c.Value
	}
	sess, err := h.sessions.CreateOrResume(credential)
	if err != nil {
		http.Error(w, "failed to establish session", http.StatusInternalServerError)
		return
	}

	// The upgrade hijacks the connection, so the session cookie has to ride
	// on the handshake response headers.
	cookie := http.Cookie{
		Name:     session.CookieName,
		Value:    sess.ID,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	}
	header := http.Header{}
	header.Add("Set-Cookie", cookie.String())

	conn, err := h.upgrader.Upgrade(w, r, header)
	if err != nil {
		// upgrader already wrote the error response.
		log.Printf("ws: upgrade failed: %v", err)
		return
	}

	client := NewClient(h.hub, conn)
	h.hub.Attach(client)

	go client.WritePump()
	go client.ReadPump()
}
