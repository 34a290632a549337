package config

import "os"

type Config struct {
	Port           string
	AllowedOrigins string

	// Twitch EventSub webhook verification.
	TwitchWebhookSecret string

	// OAuth provider credentials.
	TwitchClientID         string
	TwitchClientSecret     string
	TwitchRedirectURL      string
	TwitchScope            string
	YouTubeClientID        string
	YouTubeClientSecret    string
	YouTubeRedirectURL     string
	YouTubeScope           string
	StreamlabsClientID     string
	StreamlabsClientSecret string
	StreamlabsRedirectURL  string
	StreamlabsScope        string

	// Kafka alert bus (empty = in-memory bus)
	KafkaBrokers       string
	KafkaConsumerGroup string
}

func Load() *Config {
	return &Config{
		Port:           getEnv("PORT", "8080"),
		AllowedOrigins: getEnv("ALLOWED_ORIGINS", "http://localhost:3000"),

		TwitchWebhookSecret: getEnv("TWITCH_WEBHOOK_SECRET", "dev-webhook-secret"),

		TwitchClientID:         getEnv("TWITCH_CLIENT_ID", "twitch-client-id"),
		TwitchClientSecret:     getEnv("TWITCH_CLIENT_SECRET", "twitch-client-secret"),
		TwitchRedirectURL:      getEnv("TWITCH_REDIRECT_URI", "http://localhost:3000/auth/twitch/callback"),
		TwitchScope:            getEnv("TWITCH_SCOPE", "user:read:email"),
		YouTubeClientID:        getEnv("YOUTUBE_CLIENT_ID", "youtube-client-id"),
		YouTubeClientSecret:    getEnv("YOUTUBE_CLIENT_SECRET", "youtube-client-secret"),
		YouTubeRedirectURL:     getEnv("YOUTUBE_REDIRECT_URI", "http://localhost:3000/auth/youtube/callback"),
		YouTubeScope:           getEnv("YOUTUBE_SCOPE", "https://www.googleapis.com/auth/youtube.readonly"),
		StreamlabsClientID:     getEnv("STREAMLABS_CLIENT_ID", "streamlabs-client-id"),
		StreamlabsClientSecret: getEnv("STREAMLABS_CLIENT_SECRET", "streamlabs-client-secret"),
		StreamlabsRedirectURL:  getEnv("STREAMLABS_REDIRECT_URI", "http://localhost:3000/auth/streamlabs/callback"),
		StreamlabsScope:        getEnv("STREAMLABS_SCOPE", "read donations"),

		KafkaBrokers:       getEnv("KAFKA_BROKERS", ""),
		KafkaConsumerGroup: getEnv("KAFKA_CONSUMER_GROUP", "m0-alerts"),
	}
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
