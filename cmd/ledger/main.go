package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/eaglebank/ledger-service/internal/auth"
	txcmd "github.com/eaglebank/ledger-service/internal/command"
	"github.com/eaglebank/ledger-service/internal/config"
	"github.com/eaglebank/ledger-service/internal/events"
	"github.com/eaglebank/ledger-service/internal/handler"
	"github.com/eaglebank/ledger-service/internal/logger"
	txqry "github.com/eaglebank/ledger-service/internal/query"
	redisClient "github.com/eaglebank/ledger-service/internal/redis"
	"github.com/eaglebank/ledger-service/internal/repository"
	"github.com/eaglebank/ledger-service/internal/view"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
)

func main() {
	cfg := config.Load()
	log := logger.New(logger.Options{Level: cfg.LogLevel, Format: cfg.LogFormat})

	if err := cfg.Validate(); err != nil {
		log.Fatal().Err(err).Msg("Invalid configuration")
	}
	gin.SetMode(cfg.GinMode)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, err := openStore(ctx, cfg)
	if err != nil {
		log.Fatal().Err(err).Str("backend", cfg.StoreBackend).Msg("Failed to open transaction store")
	}
	defer closeStore(store, cfg.ShutdownTimeout, log)

	// Events are optional; without Redis the writes are simply not announced.
	var publisher txcmd.EventPublisher = events.NopPublisher{}
	if cfg.EventsEnabled() {
		redis, err := redisClient.Dial(ctx, redisClient.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to connect to Redis")
		}
		defer redis.Close()
		publisher = events.NewPublisher(redis)
	}

	templates, err := view.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load templates")
	}

	tokens := auth.NewTokenIssuer(cfg.JWTSecret, cfg.SessionTTL)

	// Command + Query services
	commandSvc := txcmd.NewTransactionCommandService(store, publisher, log)
	querySvc := txqry.NewTransactionQueryService(store)
	authSvc := txqry.NewAuthQueryService(cfg.LedgerUsername, cfg.LedgerPasswordHash, tokens)

	router := handler.NewRouter(handler.RouterConfig{
		Logger:        log,
		Templates:     templates,
		Authenticator: tokens,
		Transactions:  handler.NewTransactionHandler(commandSvc, querySvc),
		Auth:          handler.NewAuthHandler(authSvc, cfg.SessionTTL, cfg.CookieSecure),
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info().
			Str("port", cfg.Port).
			Str("backend", cfg.StoreBackend).
			Bool("events", cfg.EventsEnabled()).
			Msg("Ledger service starting")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		log.Info().Msg("Shutting down")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		log.Error().Err(err).Msg("Ledger service stopped with error")
	}
}

func openStore(ctx context.Context, cfg *config.Config) (repository.TransactionStore, error) {
	switch cfg.StoreBackend {
	case config.BackendMongo:
		return repository.ConnectMongo(ctx, cfg.MongoURI, cfg.MongoDatabase)
	case config.BackendPostgres:
		return repository.OpenPostgres(ctx, cfg.DatabaseURL)
	case config.BackendMemory:
		return repository.NewMemoryStore(), nil
	default:
		return nil, fmt.Errorf("unknown store backend %q", cfg.StoreBackend)
	}
}

func closeStore(store repository.TransactionStore, timeout time.Duration, log zerolog.Logger) {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	if err := store.Close(ctx); err != nil {
		log.Error().Err(err).Msg("Failed to close transaction store")
	}
}
