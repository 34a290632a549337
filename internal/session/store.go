package session

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/hex"
	"net/http"
	"sync"
)

// CookieName is the session credential cookie carried by browsers.
const CookieName = "sid"

// Session holds per-browser state. The pending OAuth states are single-use
// anti-forgery tokens, at most one per provider at a time.
type Session struct {
	ID          string
	oauthStates map[string]string
}

// Store is a process-lifetime registry of sessions keyed by an opaque
// credential. It is safe for concurrent use.
type Store struct {
	mu       sync.Mutex
	sessions map[string]*Session
}

// NewStore allocates an empty session store.
func NewStore() *Store {
	return &Store{sessions: make(map[string]*Session)}
}

// CreateOrResume returns the session for the given credential, minting a new
// session with a fresh credential when the supplied one is absent or unknown.
func (s *Store) CreateOrResume(credential string) (*Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if credential != "" {
		if sess, ok := s.sessions[credential]; ok {
			return sess, nil
		}
	}

	id, err := randomHex(18)
	if err != nil {
		return nil, err
	}
	sess := &Session{ID: id, oauthStates: make(map[string]string)}
	s.sessions[id] = sess
	return sess, nil
}

// BeginHandshake generates a random anti-forgery state for the given provider
// and records it as the session's sole pending state for that provider,
// replacing any previous one.
func (s *Store) BeginHandshake(sess *Session, provider string) (string, error) {
	state, err := randomHex(16)
	if err != nil {
		return "", err
	}

	s.mu.Lock()
	sess.oauthStates[provider] = state
	s.mu.Unlock()
	return state, nil
}

// placeholderState stands in for the expected value when no state is pending,
// so the comparison below runs on every call. It is the length of a real
// state and can never be issued by BeginHandshake (states are hex).
const placeholderState = "--------------------------------"

// CompleteHandshake consumes the pending state for the given provider and
// reports whether the supplied value matched it. The pending state is deleted
// on every outcome so a state value can never be used twice, and every failure
// cause (missing state, wrong provider, mismatched value) takes the same
// constant-time comparison path.
func (s *Store) CompleteHandshake(sess *Session, provider, supplied string) bool {
	s.mu.Lock()
	expected, ok := sess.oauthStates[provider]
	delete(sess.oauthStates, provider)
	s.mu.Unlock()

	if !ok {
		expected = placeholderState
	}
	match := subtle.ConstantTimeCompare([]byte(expected), []byte(supplied)) == 1
	return ok && match
}

// Resume loads the session referenced by the request's credential cookie,
// minting one if needed, and re-issues the cookie on the response.
func (s *Store) Resume(w http.ResponseWriter, r *http.Request) (*Session, error) {
	var credential string
	if c, err := r.Cookie(CookieName); err == nil {
		credential = c.Value
	}

	sess, err := s.CreateOrResume(credential)
	if err != nil {
		return nil, err
	}

	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    sess.ID,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	return sess, nil
}

func randomHex(n int) (string, error) {
	b := make([]byte, n)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}
