package oauth

import (
	"log"
	"net/http"

	"github.com/gorilla/mux"
	"golang.org/x/oauth2"

	"github.com/cvrdincake/m0-alerts/internal/config"
	"github.com/cvrdincake/m0-alerts/internal/httputil"
	"github.com/cvrdincake/m0-alerts/internal/session"
)

// Service handles the provider authorization handshakes. The session store
// owns the anti-forgery state; this surface only drives it and performs the
// code exchange.
type Service struct {
	configs     map[string]*oauth2.Config
	sessions    *session.Store
	connections *Connections
}

// NewService creates the OAuth surface for all configured providers.
func NewService(cfg *config.Config, sessions *session.Store, connections *Connections) *Service {
	return &Service{
		configs:     buildConfigs(cfg),
		sessions:    sessions,
		connections: connections,
	}
}

// RegisterRoutes wires the start and callback endpoints (no auth middleware).
func (s *Service) RegisterRoutes(r *mux.Router) {
	r.HandleFunc("/auth/{provider}", s.HandleStart).Methods("GET")
	r.HandleFunc("/auth/{provider}/callback", s.HandleCallback).Methods("GET")
}

// HandleStart issues the session cookie and redirects to the provider's
// authorize endpoint with a fresh single-use state.
func (s *Service) HandleStart(w http.ResponseWriter, r *http.Request) {
	provider := mux.Vars(r)["provider"]
	cfg, ok := s.configs[provider]
	if !ok {
		httputil.WriteError(w, http.StatusNotFound, "unknown provider")
		return
	}

	sess, err := s.sessions.Resume(w, r)
	if err != nil {
		httputil.WriteError(w, http.StatusInternalServerError, "failed to establish session")
		return
	}

	state, err := s.sessions.BeginHandshake(sess, provider)
	if err != nil {
		httputil.WriteError(w, http.StatusInternalServerError, "failed to generate state")
		return
	}

	http.Redirect(w, r, cfg.AuthCodeURL(state), http.StatusFound)
}

// HandleCallback validates the returned state against the caller's session
// before anything else; the token exchange is never attempted on a state
// mismatch.
func (s *Service) HandleCallback(w http.ResponseWriter, r *http.Request) {
	provider := mux.Vars(r)["provider"]
	cfg, ok := s.configs[provider]
	if !ok {
		httputil.WriteError(w, http.StatusNotFound, "unknown provider")
		return
	}

	sess, err := s.sessions.Resume(w, r)
	if err != nil {
		httputil.WriteError(w, http.StatusInternalServerError, "failed to establish session")
		return
	}

	state := r.URL.Query().Get("state")
	if !s.sessions.CompleteHandshake(sess, provider, state) {
		httputil.WriteErrorCode(w, http.StatusBadRequest, "invalid_oauth_state",
			"OAuth state parameter missing or does not match.")
		return
	}

	code := r.URL.Query().Get("code")
	if code == "" {
		httputil.WriteErrorCode(w, http.StatusBadRequest, "missing_code",
			"Authorization code missing.")
		return
	}

	token, err := cfg.Exchange(r.Context(), code)
	if err != nil {
		log.Printf("oauth: %s token exchange failed: %v", provider, err)
		httputil.WriteErrorCode(w, http.StatusBadGateway, "exchange_failed",
			"Token exchange with the provider failed.")
		return
	}

	s.connections.MarkConnected(provider)
	log.Printf("oauth: %s connected (token expires %v)", provider, token.Expiry)

	httputil.WriteJSON(w, http.StatusOK, map[string]any{
		"provider":  provider,
		"connected": true,
	})
}
