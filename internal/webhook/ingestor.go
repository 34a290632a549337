package webhook

import (
	"encoding/json"
	"errors"
	"io"
	"log"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/cvrdincake/m0-alerts/internal/bus"
	"github.com/cvrdincake/m0-alerts/internal/httputil"
)

// Message type header values.
const (
	messageTypeVerification = "webhook_callback_verification"
	messageTypeNotification = "notification"
	messageTypeRevocation   = "revocation"
)

// maxBodyBytes bounds the raw notification body.
const maxBodyBytes = 1 << 20

// Ingestor verifies inbound EventSub notifications, de-duplicates them and
// publishes canonical alerts to the bus.
type Ingestor struct {
	secret string
	broker bus.Broker
	dedup  *dedupCache
}

// NewIngestor creates an Ingestor that verifies messages with the given
// shared secret and publishes alerts to the broker.
func NewIngestor(secret string, broker bus.Broker) *Ingestor {
	return &Ingestor{
		secret: secret,
		broker: broker,
		dedup:  newDedupCache(),
	}
}

// RegisterRoutes wires the webhook endpoint. The router is expected to be a
// subrouter under the /webhooks prefix.
func (i *Ingestor) RegisterRoutes(r *mux.Router) {
	r.HandleFunc("/twitch", i.HandleNotification).Methods("POST")
}

// verificationRequest is the body of a webhook_callback_verification message.
type verificationRequest struct {
	Challenge string `json:"challenge"`
}

// notificationRequest is the body of a notification message. The event object
// is decoded loosely; its fields are passed through to the alert payload.
type notificationRequest struct {
	Subscription struct {
		Type string `json:"type"`
	} `json:"subscription"`
	Event map[string]any `json:"event"`
}

// HandleNotification processes one inbound EventSub POST. The signature is
// checked over the raw body bytes before any JSON decoding happens.
func (i *Ingestor) HandleNotification(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes))
	if err != nil {
		httputil.WriteError(w, http.StatusBadRequest, "failed to read body")
		return
	}

	messageID := r.Header.Get(HeaderMessageID)
	timestamp := r.Header.Get(HeaderMessageTimestamp)
	signature := r.Header.Get(HeaderMessageSignature)

	if !VerifySignature(i.secret, messageID, timestamp, body, signature) {
		log.Printf("webhook: signature mismatch for message %s", messageID)
		httputil.WriteErrorCode(w, http.StatusForbidden, "invalid_signature",
			"Message signature does not match.")
		return
	}

	switch r.Header.Get(HeaderMessageType) {
	case messageTypeVerification:
		var req verificationRequest
		if err := json.Unmarshal(body, &req); err != nil || req.Challenge == "" {
			httputil.WriteError(w, http.StatusBadRequest, "missing challenge")
			return
		}
		w.Header().Set("Content-Type", "text/plain")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(req.Challenge)) //nolint:errcheck

	case messageTypeNotification:
		if i.dedup.Seen(messageID) {
			log.Printf("webhook: duplicate message %s dropped", messageID)
			i.ack(w)
			return
		}

		var req notificationRequest
		if err := json.Unmarshal(body, &req); err != nil {
			httputil.WriteError(w, http.StatusBadRequest, "invalid notification body")
			return
		}

		a, err := MapNotification(req.Subscription.Type, req.Event)
		if err != nil {
			if errors.Is(err, ErrUnknownCategory) {
				log.Printf("webhook: dropped %q: %v", req.Subscription.Type, err)
				i.ack(w)
				return
			}
			httputil.WriteError(w, http.StatusBadRequest, "invalid notification")
			return
		}

		if err := i.broker.Publish(bus.TopicAlerts, a); err != nil {
			log.Printf("webhook: failed to publish alert %s: %v", a.ID, err)
		}
		i.ack(w)

	case messageTypeRevocation:
		log.Printf("webhook: subscription revoked (message %s)", messageID)
		i.ack(w)

	default:
		httputil.WriteError(w, http.StatusBadRequest, "unknown message type")
	}
}

func (i *Ingestor) ack(w http.ResponseWriter) {
	httputil.WriteJSON(w, http.StatusOK, map[string]bool{"received": true})
}
