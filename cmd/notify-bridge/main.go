package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/greenloop/backend/internal/config"
	"github.com/greenloop/backend/internal/db"
	"github.com/greenloop/backend/internal/events"
	"github.com/greenloop/backend/internal/services"
)

// Notify bridge: subscribes to marketplace and donation events and
// forwards them to the configured webhook endpoint.

func main() {
	log, _ := zap.NewProduction()
	defer log.Sync()

	cfg := config.Load()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if cfg.NotifyWebhookURL == "" {
		log.Warn("NOTIFY_WEBHOOK_URL is not set, notifications will be dropped")
	}

	rdb, err := db.NewRedisClient(ctx, cfg.RedisURL, log)
	if err != nil {
		log.Fatal("failed to connect to redis", zap.Error(err))
	}
	defer rdb.Close()

	subscriber := events.NewRedisSubscriber(rdb, log)
	webhook := services.NewWebhookClient(cfg.NotifyWebhookURL, log)

	log.Info("notify-bridge started")

	forward := func(event events.Event) {
		recipient := recipientFor(event)
		log.Info("forwarding event",
			zap.String("type", event.Type),
			zap.String("recipient", recipient),
		)
		_ = webhook.Send(ctx, services.Notification{
			Kind:      event.Type,
			Recipient: recipient,
			Payload:   event.Payload,
		})
	}

	_ = subscriber.Subscribe(ctx, events.StreamMarketplace, forward)
	_ = subscriber.Subscribe(ctx, events.StreamDonations, forward)
	_ = subscriber.Subscribe(ctx, events.StreamNotify, forward)

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	log.Info("shutting down notify-bridge")
	cancel()
}

// recipientFor picks the wallet that should be told about an event.
// Escrow changes go to the counterparty of whoever acted, which the
// payload carries explicitly; everything else is a broadcast.
func recipientFor(event events.Event) string {
	for _, key := range []string{"recipient", "buyer", "donor", "offerer"} {
		if v, ok := event.Payload[key].(string); ok && v != "" {
			return v
		}
	}
	return ""
}
