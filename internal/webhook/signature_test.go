package webhook

import (
	"strings"
	"testing"
)

func TestSignatureRoundTrip(t *testing.T) {
	body := []byte(`{"subscription":{"type":"channel.follow"},"event":{"user_name":"Ada"}}`)
	sig := ComputeSignature("s3cret", "msg-1", "2026-08-27T10:00:00Z", body)

	if !strings.HasPrefix(sig, "sha256=") {
		t.Fatalf("signature missing sha256= prefix: %q", sig)
	}
	if !VerifySignature("s3cret", "msg-1", "2026-08-27T10:00:00Z", body, sig) {
		t.Error("freshly computed signature did not verify")
	}
}

func TestSignatureRejectsTampering(t *testing.T) {
	body := []byte(`{"event":{"user_name":"Ada"}}`)
	sig := ComputeSignature("s3cret", "msg-1", "2026-08-27T10:00:00Z", body)

	// Flip one byte of the body.
	tampered := append([]byte(nil), body...)
	tampered[len(tampered)/2] ^= 0x01
	if VerifySignature("s3cret", "msg-1", "2026-08-27T10:00:00Z", tampered, sig) {
		t.Error("tampered body must not verify")
	}

	if VerifySignature("s3cret", "msg-2", "2026-08-27T10:00:00Z", body, sig) {
		t.Error("different message ID must not verify")
	}
	if VerifySignature("s3cret", "msg-1", "2026-08-27T10:00:01Z", body, sig) {
		t.Error("different timestamp must not verify")
	}
	if VerifySignature("other", "msg-1", "2026-08-27T10:00:00Z", body, sig) {
		t.Error("different secret must not verify")
	}
	if VerifySignature("s3cret", "msg-1", "2026-08-27T10:00:00Z", body, "") {
		t.Error("empty signature must not verify")
	}
}

func TestSignatureCoversExactBytes(t *testing.T) {
	// Multi-byte characters: the HMAC runs over raw bytes, so any
	// re-serialisation that changes the byte sequence must fail.
	body := []byte(`{"event":{"user_name":"Héloïse 🎉"}}`)
	sig := ComputeSignature("s3cret", "msg-1", "2026-08-27T10:00:00Z", body)

	if !VerifySignature("s3cret", "msg-1", "2026-08-27T10:00:00Z", body, sig) {
		t.Error("multi-byte body did not verify against its own signature")
	}

	reserialised := []byte(`{"event": {"user_name": "Héloïse 🎉"}}`)
	if VerifySignature("s3cret", "msg-1", "2026-08-27T10:00:00Z", reserialised, sig) {
		t.Error("re-serialised body must not verify")
	}
}
