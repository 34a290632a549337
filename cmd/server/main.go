package main

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gorilla/mux"

	"github.com/cvrdincake/m0-alerts/internal/api"
	"github.com/cvrdincake/m0-alerts/internal/bus"
	"github.com/cvrdincake/m0-alerts/internal/config"
	mw "github.com/cvrdincake/m0-alerts/internal/middleware"
	"github.com/cvrdincake/m0-alerts/internal/oauth"
	"github.com/cvrdincake/m0-alerts/internal/session"
	"github.com/cvrdincake/m0-alerts/internal/webhook"
	"github.com/cvrdincake/m0-alerts/internal/ws"
)

func main() {
	cfg := config.Load()

	// Alert bus: Kafka when brokers are configured, in-memory otherwise.
	var brokers []string
	if cfg.KafkaBrokers != "" {
		brokers = strings.Split(cfg.KafkaBrokers, ",")
	}
	broker, err := bus.New(brokers, cfg.KafkaConsumerGroup)
	if err != nil {
		log.Fatalf("alert bus setup failed: %v", err)
	}
	defer broker.Close() //nolint:errcheck // best-effort cleanup on shutdown

	// WebSocket hub
	hub := ws.NewHub()
	go hub.Run()

	// Every alert on the bus fans out to all attached display clients.
	if _, err := broker.Subscribe(bus.TopicAlerts, hub.Publish); err != nil {
		log.Fatalf("alert consumer setup failed: %v", err)
	}

	// Sessions & OAuth
	sessions := session.NewStore()
	connections := oauth.NewConnections()
	oauthService := oauth.NewService(cfg, sessions, connections)

	// Webhook ingestion
	ingestor := webhook.NewIngestor(cfg.TwitchWebhookSecret, broker)

	// Control API
	apiHandlers := api.NewHandlers(broker, hub, connections)

	// WebSocket attach endpoint
	wsHandler := ws.NewWSHandler(hub, sessions, cfg.AllowedOrigins)

	// Router
	r := mux.NewRouter()

	// Rate limiting: 100 req/s per IP with burst of 200
	r.Use(mw.RateLimitMiddleware(100, 200))

	// Health check
	r.HandleFunc("/healthz", healthzHandler).Methods("GET")

	// Webhook ingestion gets its own tighter limiter; EventSub retries on
	// 429 so shedding under a flood is safe.
	hooks := r.PathPrefix("/webhooks").Subrouter()
	hooks.Use(mw.StrictRateLimitMiddleware(25, 50))
	ingestor.RegisterRoutes(hooks)

	oauthService.RegisterRoutes(r)
	apiHandlers.RegisterRoutes(r)
	wsHandler.RegisterRoutes(r)

	// HTTP Server — CORS wraps the entire router so OPTIONS preflight
	// requests are handled before mux routing (which would 404 on OPTIONS).
	srv := &http.Server{
		Addr:           ":" + cfg.Port,
		Handler:        corsMiddleware(cfg.AllowedOrigins, r),
		ReadTimeout:    15 * time.Second,
		WriteTimeout:   15 * time.Second,
		IdleTimeout:    60 * time.Second,
		MaxHeaderBytes: 1 << 20, // 1 MB
	}

	// Graceful shutdown
	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh

		log.Println("Shutting down server...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Fatalf("Server shutdown failed: %v", err)
		}
	}()

	log.Printf("Starting server on :%s", cfg.Port)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatalf("Server failed to start: %v", err)
	}

	log.Println("Server stopped")
}

func healthzHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(map[string]string{"status": "ok"}) //nolint:errcheck
}

func corsMiddleware(allowedOrigins string, next http.Handler) http.Handler {
	origins := make(map[string]bool)
	for _, o := range strings.Split(allowedOrigins, ",") {
		origins[strings.TrimSpace(o)] = true
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		origin := r.Header.Get("Origin")
		if origins[origin] {
			w.Header().Set("Access-Control-Allow-Origin", origin)
		} else if len(origins) == 1 {
			// Single origin mode: always set it (for dev convenience)
			for o := range origins {
				w.Header().Set("Access-Control-Allow-Origin", o)
			}
		}
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
		w.Header().Set("Access-Control-Allow-Credentials", "true")
		w.Header().Set("Access-Control-Max-Age", "86400")

		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}
