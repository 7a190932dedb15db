package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/coupleshub/backend/api/controllers"
	"github.com/coupleshub/backend/api/routes"
	"github.com/coupleshub/backend/internal/auth"
	"github.com/coupleshub/backend/internal/bills"
	"github.com/coupleshub/backend/internal/couples"
	"github.com/coupleshub/backend/internal/events"
	"github.com/coupleshub/backend/internal/groceries"
	syncstream "github.com/coupleshub/backend/internal/sync"
	"github.com/coupleshub/backend/internal/todos"
	"github.com/coupleshub/backend/internal/users"
	"github.com/coupleshub/backend/pkg/auth/session"
	"github.com/coupleshub/backend/pkg/config"
	"github.com/coupleshub/backend/pkg/db"
	"github.com/coupleshub/backend/pkg/instance"
	"github.com/coupleshub/backend/pkg/logger"
	"github.com/coupleshub/backend/pkg/metrics"
	"github.com/coupleshub/backend/pkg/migrate"
	"github.com/coupleshub/backend/pkg/outbox"
	"github.com/coupleshub/backend/pkg/pubsub"
	"github.com/coupleshub/backend/pkg/redis"
)

const shutdownGrace = 10 * time.Second

func main() {
	ctx := context.Background()
	logg := logger.New(logger.Options{ServiceName: "api"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(ctx, ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	requireResource(ctx, logg, "config", err)

	logg = logger.New(logger.Options{
		ServiceName: "api",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	dbClient, err := db.New(ctx, cfg.DB, logg)
	requireResource(ctx, logg, "database", err)
	defer func() {
		if err := dbClient.Close(); err != nil {
			logg.Error(ctx, "error closing database", err)
		}
	}()

	if err := migrate.MaybeRunDev(ctx, cfg, logg, dbClient); err != nil {
		logg.Error(ctx, "failed to run dev migrations", err)
		os.Exit(1)
	}

	redisClient, err := redis.New(ctx, cfg.Redis, logg)
	requireResource(ctx, logg, "redis", err)
	defer func() {
		if err := redisClient.Close(); err != nil {
			logg.Error(ctx, "error closing redis", err)
		}
	}()

	pubsubClient, err := pubsub.NewClient(ctx, cfg.GCP, cfg.PubSub, logg)
	requireResource(ctx, logg, "pubsub", err)
	defer func() {
		if err := pubsubClient.Close(); err != nil {
			logg.Error(ctx, "error closing pubsub client", err)
		}
	}()

	sessionManager, err := session.NewManager(redisClient, cfg.JWT)
	requireResource(ctx, logg, "session manager", err)

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	httpMetrics := metrics.NewHTTPMetrics(registry)
	realtimeMetrics := metrics.NewRealtimeMetrics(registry)

	outboxService := outbox.NewService(outbox.NewRepository(dbClient.DB()), logg)

	authService, err := auth.NewService(auth.ServiceParams{
		UserRepo:       users.NewRepository(dbClient.DB()),
		CoupleRepo:     couples.NewRepository(dbClient.DB()),
		SessionManager: sessionManager,
		JWTConfig:      cfg.JWT,
	})
	requireResource(ctx, logg, "auth service", err)

	registerService, err := auth.NewRegisterService(auth.RegisterServiceParams{
		TxRunner:          dbClient,
		UserRepoFactory:   auth.DefaultUserRepoFactory(dbClient.DB()),
		CoupleRepoFactory: auth.DefaultCoupleRepoFactory(dbClient.DB()),
		PasswordConfig:    cfg.Password,
	})
	requireResource(ctx, logg, "register service", err)

	couplesService, err := couples.NewService(couples.ServiceParams{
		TxRunner:             dbClient,
		RelationshipsFactory: couples.DefaultRelationshipsFactory(dbClient.DB()),
		UsersFactory:         couples.DefaultUsersFactory(dbClient.DB()),
		Outbox:               outboxService,
		Invites:              cfg.Invites,
		Password:             cfg.Password,
	})
	requireResource(ctx, logg, "couples service", err)

	eventsService, err := events.NewService(events.ServiceParams{
		TxRunner:    dbClient,
		RepoFactory: events.DefaultRepoFactory(dbClient.DB()),
		Outbox:      outboxService,
	})
	requireResource(ctx, logg, "events service", err)

	todosService, err := todos.NewService(todos.ServiceParams{
		TxRunner:    dbClient,
		RepoFactory: todos.DefaultRepoFactory(dbClient.DB()),
		Outbox:      outboxService,
	})
	requireResource(ctx, logg, "todos service", err)

	groceriesService, err := groceries.NewService(groceries.ServiceParams{
		TxRunner:    dbClient,
		RepoFactory: groceries.DefaultRepoFactory(dbClient.DB()),
		Outbox:      outboxService,
	})
	requireResource(ctx, logg, "groceries service", err)

	billsService, err := bills.NewService(bills.ServiceParams{
		TxRunner:    dbClient,
		RepoFactory: bills.DefaultRepoFactory(dbClient.DB()),
		Outbox:      outboxService,
	})
	requireResource(ctx, logg, "bills service", err)

	hub := syncstream.NewHub(realtimeMetrics)
	consumer, err := syncstream.NewConsumer(hub, pubsubClient.DomainSubscription(), logg)
	requireResource(ctx, logg, "realtime consumer", err)

	runCtx, stop := signal.NotifyContext(ctx, os.Interrupt)
	defer stop()

	go func() {
		if err := consumer.Run(runCtx); err != nil && !errors.Is(err, context.Canceled) {
			logg.Error(runCtx, "realtime consumer stopped unexpectedly", err)
		}
	}()

	router := routes.NewRouter(routes.RouterParams{
		Config:      cfg,
		Logger:      logg,
		HTTPMetrics: httpMetrics,
		Gatherer:    registry,
		Redis:       redisClient,
		Session:     sessionManager,
		Health: map[string]controllers.Pinger{
			"database": dbClient,
			"redis":    redisClient,
			"pubsub":   pubsubClient,
		},
		AuthService:      authService,
		RegisterService:  registerService,
		CouplesService:   couplesService,
		EventsService:    eventsService,
		TodosService:     todosService,
		GroceriesService: groceriesService,
		BillsService:     billsService,
		Hub:              hub,
	})

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port
	serveCtx := logg.WithFields(runCtx, map[string]any{
		"env":      cfg.App.Env,
		"addr":     addr,
		"instance": instance.GetID(),
	})
	logg.Info(serveCtx, "starting api server")

	server := &http.Server{
		Addr:    addr,
		Handler: router,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logg.Error(serveCtx, "api server stopped unexpectedly", err)
			os.Exit(1)
		}
	case <-runCtx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownGrace)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logg.Error(serveCtx, "api server shutdown failed", err)
		}
	}

	logg.Info(serveCtx, "api server shut down gracefully")
}

func requireResource(ctx context.Context, logg *logger.Logger, resource string, err error) {
	if err == nil {
		return
	}
	logg.Error(ctx, "resource not working: "+resource, err)
	os.Exit(1)
}
