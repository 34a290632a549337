package ws

import (
	"net/http"
	"strings"
)

// originChecker validates the Origin header of upgrade requests against a
// fixed allow-list. The list is threaded in from configuration; the checker
// never reads ambient state.
type originChecker struct {
	allowed []string
}

// newOriginChecker parses a comma-separated origin list.
func newOriginChecker(allowedOrigins string) *originChecker {
	var allowed []string
	for _, o := range strings.Split(allowedOrigins, ",") {
		o = strings.TrimSpace(o)
		if o != "" {
			allowed = append(allowed, o)
		}
	}
	return &originChecker{allowed: allowed}
}

// Check reports whether the request's Origin header is on the allow-list. It
// is intended to be used as the CheckOrigin field of a
// gorilla/websocket.Upgrader.
func (c *originChecker) Check(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	if origin == "" {
		// No Origin header — same-origin request or non-browser client.
		return true
	}
	for _, allowed := range c.allowed {
		if strings.EqualFold(origin, allowed) {
			return true
		}
	}
	return false
}
