package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/eaglebank/ledger-service/internal/config"
	"github.com/eaglebank/ledger-service/internal/events"
	"github.com/eaglebank/ledger-service/internal/logger"
	redisClient "github.com/eaglebank/ledger-service/internal/redis"
)

// ledger-events tails the transaction event stream and writes each event to
// the log.
func main() {
	cfg := config.Load()
	log := logger.New(logger.Options{Level: cfg.LogLevel, Format: cfg.LogFormat})

	if !cfg.EventsEnabled() {
		log.Fatal().Msg("REDIS_ADDR must be set to consume transaction events")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	redis, err := redisClient.Dial(ctx, redisClient.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to Redis")
	}
	defer redis.Close()

	subscriber := events.NewSubscriber(redis, events.SubscriberConfig{
		Group:    cfg.EventsGroup,
		Consumer: cfg.EventsConsumer,
		Stream:   events.TransactionEventsStream,
		Logger:   log,
		Handler: func(ctx context.Context, event events.Event) error {
			log.Info().
				Str("type", event.Type).
				Time("timestamp", event.Timestamp).
				Interface("data", event.Data).
				Msg("Transaction event")
			return nil
		},
	})

	if err := subscriber.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
		log.Fatal().Err(err).Msg("Subscriber stopped")
	}
}
