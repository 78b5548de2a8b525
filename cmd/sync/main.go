package main

import (
	"context"
	"expvar"
	"log"
	"runtime"

	"github.com/RishitTandon7/CineVerse/internal/domain"
	"github.com/RishitTandon7/CineVerse/internal/infrastructure/configs"
	"github.com/RishitTandon7/CineVerse/internal/infrastructure/events"
	"github.com/RishitTandon7/CineVerse/internal/infrastructure/logging"
	"github.com/RishitTandon7/CineVerse/internal/infrastructure/messaging"
	"github.com/RishitTandon7/CineVerse/internal/infrastructure/metrics"
	"github.com/RishitTandon7/CineVerse/internal/infrastructure/ratelimiter"
	"github.com/RishitTandon7/CineVerse/internal/infrastructure/tracing"
	"github.com/RishitTandon7/CineVerse/internal/persistence/db"
	"github.com/RishitTandon7/CineVerse/internal/persistence/repository"
	"github.com/RishitTandon7/CineVerse/internal/presentation/api"
	"github.com/RishitTandon7/CineVerse/internal/presentation/handler/health"
	"github.com/RishitTandon7/CineVerse/internal/presentation/handler/rooms"
	"github.com/RishitTandon7/CineVerse/internal/session"
	"go.mongodb.org/mongo-driver/mongo"
)

const (
	serviceName = "cineverse-sync"
)

func main() {
	tracerCfg := tracing.NewDefaultConfig(serviceName)

	sh, err := tracing.InitTracer(tracerCfg)
	if err != nil {
		log.Fatalf("Failed to initialize the tracer: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	defer sh(ctx)

	logger := logging.NewLogger(logging.NewDefaultConfig())

	configPath := configs.DetermineConfigPath()
	cfg, err := configs.Load(configPath)
	if err != nil {
		log.Fatal(err)
	}

	m := metrics.NewDefault()

	var auditRepo domain.RoomAuditRepository
	if cfg.Mongo.Enabled {
		client := setupMongo(ctx, cfg, logger)
		defer db.DisconnectMongo(context.Background(), client)

		auditRepo = repository.NewRoomAuditLogRepository(db.GetDatabase(client, &db.MongoConfig{
			URI:      cfg.Mongo.URI,
			Database: cfg.Mongo.Database,
		}))
		if err := auditRepo.EnsureIndexes(ctx); err != nil {
			logger.Warn(logging.Mongo, logging.Startup, "failed to ensure audit log indexes",
				map[logging.ExtraKey]any{logging.ErrorMessage: err.Error()})
		}
	}

	var publisher session.LifecyclePublisher
	if cfg.RabbitMQ.Enabled {
		rabbitmq, err := messaging.NewRabbitMQ(cfg.RabbitMQ.URI)
		if err != nil {
			log.Fatal(err)
		}
		defer rabbitmq.Close()

		logger.Info(logging.RabbitMQ, logging.Startup, "rabbitmq connection established", nil)

		publisher = events.NewRoomPublisher(rabbitmq)

		roomConsumer := events.NewRoomConsumer(rabbitmq, auditRepo)
		go func() {
			if err := roomConsumer.Listen(); err != nil {
				logger.Error(logging.RabbitMQ, logging.ExternalService, "room consumer stopped",
					map[logging.ExtraKey]any{logging.ErrorMessage: err.Error()})
			}
		}()
	}

	registry := session.NewRegistry()
	store := session.NewStore()
	broadcaster := session.NewBroadcaster(store, registry, logger, m)
	coordinator := session.NewCoordinator(registry, store, broadcaster, publisher, logger, m)

	go coordinator.RunSweeper(ctx, cfg.Session.SweepInterval, cfg.Session.ConnectionTTL)

	roomsHandler := rooms.NewHandler(coordinator, cfg.Session.ClientBuffer)
	healthHandler := health.NewHandler()

	rl := ratelimiter.New(ratelimiter.Options{
		MaxRatePerSecond: cfg.RateLimiter.MaxRatePerSecond,
		MaxBurst:         cfg.RateLimiter.MaxBurst,
		CacheTTL:         cfg.RateLimiter.CacheTTL,
		SourceHeaderKey:  cfg.RateLimiter.SourceHeaderKey,
	})

	app := api.NewApplication(*cfg, *roomsHandler, *healthHandler, logger, rl)

	expvar.Publish("goroutines", expvar.Func(func() any {
		return runtime.NumGoroutine()
	}))

	mux := app.Mount()
	if err := app.Run(mux); err != nil {
		log.Fatal(err)
	}
}

func setupMongo(ctx context.Context, cfg *configs.Config, logger logging.Logger) *mongo.Client {
	mongoCfg := &db.MongoConfig{
		URI:      cfg.Mongo.URI,
		Database: cfg.Mongo.Database,
	}

	client, err := db.NewMongoClient(ctx, mongoCfg)
	if err != nil {
		log.Fatal(err)
	}

	logger.Info(logging.Mongo, logging.Startup, "mongodb connection established", nil)

	return client
}
