package webhook

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
)

// EventSub message headers. The signature covers the message ID, the
// timestamp and the exact raw body bytes, in that order.
const (
	HeaderMessageID        = "Twitch-Eventsub-Message-Id"
	HeaderMessageTimestamp = "Twitch-Eventsub-Message-Timestamp"
	HeaderMessageSignature = "Twitch-Eventsub-Message-Signature"
	HeaderMessageType      = "Twitch-Eventsub-Message-Type"
)

const signaturePrefix = "sha256="

// ComputeSignature returns the expected signature header value for a message:
// "sha256=" followed by the hex HMAC-SHA256 of id+timestamp+body under secret.
// The body must be the raw request bytes; re-serialising the JSON would change
// the byte sequence and invalidate the signature.
func ComputeSignature(secret, messageID, timestamp string, body []byte) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(messageID))
	mac.Write([]byte(timestamp))
	mac.Write(body)
	return signaturePrefix + hex.EncodeToString(mac.Sum(nil))
}

// VerifySignature reports whether the supplied signature header matches the
// expected HMAC for the message. The comparison is constant time.
func VerifySignature(secret, messageID, timestamp string, body []byte, supplied string) bool {
	expected := ComputeSignature(secret, messageID, timestamp, body)
	return hmac.Equal([]byte(expected), []byte(supplied))
}
