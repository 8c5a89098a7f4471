package main

import (
	"context"
	"encoding/json"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/handle-registry/backend/internal/config"
	"github.com/handle-registry/backend/internal/db"
	"github.com/handle-registry/backend/internal/events"
	"go.uber.org/zap"
)

// Notify bridge — small service that subscribes to registry events and
// forwards them to an external webhook (bot, mailer, whatever is configured).

func main() {
	log, _ := zap.NewProduction()
	defer log.Sync()

	cfg := config.Load()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if cfg.NotifyWebhookURL == "" {
		log.Fatal("NOTIFY_WEBHOOK_URL is required")
	}

	rdb, err := db.NewRedisClient(ctx, cfg.RedisURL, log)
	if err != nil {
		log.Fatal("failed to connect to redis", zap.Error(err))
	}
	defer rdb.Close()

	subscriber := events.NewRedisSubscriber(rdb, log)

	log.Info("notify-bridge started", zap.String("webhook", cfg.NotifyWebhookURL))

	err = subscriber.Subscribe(ctx, events.StreamRegistry, func(event events.Event) {
		log.Info("forwarding event", zap.String("type", event.Type))
		forward(cfg.NotifyWebhookURL, event, log)
	})
	if err != nil {
		log.Fatal("failed to subscribe to registry events", zap.Error(err))
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	log.Info("shutting down notify-bridge")
	cancel()
}

func forward(url string, event events.Event, log *zap.Logger) {
	body, err := json.Marshal(event)
	if err != nil {
		return
	}

	resp, err := http.Post(url, "application/json", strings.NewReader(string(body)))
	if err != nil {
		log.Warn("failed to forward event", zap.Error(err))
		return
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		log.Warn("webhook returned non-2xx", zap.Int("status", resp.StatusCode))
	}
}
