package api

import (
	"encoding/json"
	"log"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/cvrdincake/m0-alerts/internal/alert"
	"github.com/cvrdincake/m0-alerts/internal/bus"
	"github.com/cvrdincake/m0-alerts/internal/httputil"
	"github.com/cvrdincake/m0-alerts/internal/oauth"
	"github.com/cvrdincake/m0-alerts/internal/ws"
)

// Handlers exposes the operator-facing control endpoints: alert injection for
// overlay testing and a status summary.
type Handlers struct {
	broker      bus.Broker
	hub         *ws.Hub
	connections *oauth.Connections
}

// NewHandlers creates the control surface.
func NewHandlers(broker bus.Broker, hub *ws.Hub, connections *oauth.Connections) *Handlers {
	return &Handlers{broker: broker, hub: hub, connections: connections}
}

// RegisterRoutes wires the control endpoints.
func (h *Handlers) RegisterRoutes(r *mux.Router) {
	r.HandleFunc("/api/test-alert", h.HandleTestAlert).Methods("POST")
	r.HandleFunc("/api/status", h.HandleStatus).Methods("GET")
}

type testAlertRequest struct {
	Type   alert.Category `json:"type"`
	Data   map[string]any `json:"data"`
	Random bool           `json:"random"`
}

// HandleTestAlert injects a synthetic alert into the pipeline. It travels the
// same path as a real notification: bus first, then every attached client.
func (h *Handlers) HandleTestAlert(w http.ResponseWriter, r *http.Request) {
	var req testAlertRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteJSON(w, http.StatusBadRequest, map[string]any{
			"success": false,
			"error":   "Invalid request body",
		})
		return
	}

	if req.Type == "" {
		httputil.WriteJSON(w, http.StatusBadRequest, map[string]any{
			"success": false,
			"error":   "Missing alert type",
		})
		return
	}
	if !alert.KnownCategory(req.Type) {
		httputil.WriteJSON(w, http.StatusBadRequest, map[string]any{
			"success": false,
			"error":   "Unknown alert type: " + string(req.Type),
		})
		return
	}

	payload := req.Data
	if req.Random {
		payload = alert.RandomPayload(req.Type)
	} else if payload == nil {
		payload = alert.TestPayloads[req.Type]
	}

	a := alert.New(req.Type, payload)
	if err := h.broker.Publish(bus.TopicAlerts, a); err != nil {
		log.Printf("api: failed to publish test alert: %v", err)
		httputil.WriteJSON(w, http.StatusInternalServerError, map[string]any{
			"success": false,
			"error":   "Failed to publish alert",
		})
		return
	}

	httputil.WriteJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"id":      a.ID,
	})
}

// HandleStatus reports provider connectivity and the number of attached
// display clients.
func (h *Handlers) HandleStatus(w http.ResponseWriter, r *http.Request) {
	httputil.WriteJSON(w, http.StatusOK, map[string]any{
		"connected": h.connections.Snapshot(),
		"clients":   h.hub.ClientCount(),
	})
}
