package main

import (
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/cvrdincake/m0-alerts/internal/alert"
	"github.com/cvrdincake/m0-alerts/internal/overlay"
	"github.com/cvrdincake/m0-alerts/internal/scheduler"
)

func main() {
	url := flag.String("url", "ws://localhost:8080/ws", "alert stream websocket URL")
	flag.Parse()

	// Display queue: one alert at a time, FIFO, per-category durations.
	queue := scheduler.New(nil, func(current *alert.Alert) {
		if current == nil {
			log.Println("overlay: idle")
			return
		}
		log.Printf("overlay: showing %s alert %s for %v",
			current.Type, current.ID, alert.DisplayDuration(current.Type))
	})
	defer queue.Close()

	client := overlay.New(overlay.Config{
		URL:     *url,
		OnAlert: queue.Enqueue,
		OnStatus: func(s overlay.Status) {
			log.Printf("overlay: connection %s", s)
		},
	})
	client.Start()
	defer client.Close()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	log.Println("overlay: shutting down")
}
