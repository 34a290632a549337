package oauth

import (
	"strings"
	"sync"

	"golang.org/x/oauth2"

	"github.com/cvrdincake/m0-alerts/internal/config"
)

// Provider names recognised by the auth surface.
const (
	ProviderTwitch     = "twitch"
	ProviderYouTube    = "youtube"
	ProviderStreamlabs = "streamlabs"
)

// Providers lists every supported upstream provider.
var Providers = []string{ProviderTwitch, ProviderYouTube, ProviderStreamlabs}

// buildConfigs assembles the per-provider oauth2 configuration from the
// process configuration.
func buildConfigs(cfg *config.Config) map[string]*oauth2.Config {
	return map[string]*oauth2.Config{
		ProviderTwitch: {
			ClientID:     cfg.TwitchClientID,
			ClientSecret: cfg.TwitchClientSecret,
			RedirectURL:  cfg.TwitchRedirectURL,
			Scopes:       strings.Fields(cfg.TwitchScope),
			Endpoint: oauth2.Endpoint{
				AuthURL:  "https://id.twitch.tv/oauth2/authorize",
				TokenURL: "https://id.twitch.tv/oauth2/token",
			},
		},
		ProviderYouTube: {
			ClientID:     cfg.YouTubeClientID,
			ClientSecret: cfg.YouTubeClientSecret,
			RedirectURL:  cfg.YouTubeRedirectURL,
			Scopes:       strings.Fields(cfg.YouTubeScope),
			Endpoint: oauth2.Endpoint{
				AuthURL:  "https://accounts.google.com/o/oauth2/v2/auth",
				TokenURL: "https://oauth2.googleapis.com/token",
			},
		},
		ProviderStreamlabs: {
			ClientID:     cfg.StreamlabsClientID,
			ClientSecret: cfg.StreamlabsClientSecret,
			RedirectURL:  cfg.StreamlabsRedirectURL,
			Scopes:       strings.Fields(cfg.StreamlabsScope),
			Endpoint: oauth2.Endpoint{
				AuthURL:  "https://streamlabs.com/api/v2.0/authorize",
				TokenURL: "https://streamlabs.com/api/v2.0/token",
			},
		},
	}
}

// Connections tracks which providers have completed an authorization exchange
// during this process lifetime. It feeds the status endpoint.
type Connections struct {
	mu        sync.RWMutex
	connected map[string]bool
}

// NewConnections allocates a registry with every provider disconnected.
func NewConnections() *Connections {
	return &Connections{connected: make(map[string]bool)}
}

// MarkConnected records a completed exchange for the provider.
func (c *Connections) MarkConnected(provider string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.connected[provider] = true
}

// Snapshot returns the connectivity flag for every known provider.
func (c *Connections) Snapshot() map[string]bool {
	c.mu.RLock()
	defer c.mu.RUnlock()

	out := make(map[string]bool, len(Providers))
	for _, p := range Providers {
		out[p] = c.connected[p]
	}
	return out
}
