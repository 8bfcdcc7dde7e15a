// Command api serves the H2EAUX gestion HTTP API.
//
// @title                       H2EAUX Gestion API
// @version                     1.0
// @description                 Client management and access control for H2EAUX plumbing and HVAC teams.
// @BasePath                    /api
// @securityDefinitions.apikey  BearerAuth
// @in                          header
// @name                        Authorization
// @description                 Type "Bearer" followed by a space and the access token.
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/h2eaux/gestion-api/internal/api"
	"github.com/h2eaux/gestion-api/internal/core/ports"
	"github.com/h2eaux/gestion-api/internal/core/service"
	mongostore "github.com/h2eaux/gestion-api/internal/infrastructure/db/mongo"
	redisstore "github.com/h2eaux/gestion-api/internal/infrastructure/db/redis"
	"github.com/h2eaux/gestion-api/internal/infrastructure/http/handlers"
	"github.com/h2eaux/gestion-api/internal/infrastructure/telemetry"
	"github.com/h2eaux/gestion-api/internal/pkg/config"
	"github.com/h2eaux/gestion-api/pkg/logger"
)

const serviceName = "h2eaux-gestion-api"

func main() {
	ctx := context.Background()

	cfg, err := config.Load(ctx)
	if err != nil {
		bootLog := logger.Init(logger.Options{Service: serviceName})
		bootLog.Fatal().Err(err).Msg("load config")
	}

	log := logger.Init(logger.Options{
		Level:   cfg.LogLevel,
		Pretty:  cfg.IsDevelopment(),
		Service: serviceName,
	})

	if err := run(ctx, cfg, log); err != nil {
		log.Fatal().Err(err).Msg("api stopped")
	}
}

func run(ctx context.Context, cfg *config.Config, log zerolog.Logger) error {
	shutdownTelemetry, err := telemetry.Setup(ctx, telemetry.Config{
		ServiceName: serviceName,
		Endpoint:    cfg.Telemetry.OTLPEndpoint,
		Insecure:    cfg.Telemetry.OTLPInsecure,
	})
	if err != nil {
		log.Warn().Err(err).Msg("tracing disabled")
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = shutdownTelemetry(ctx)
	}()

	mongoClient, db, err := mongostore.Connect(ctx, mongostore.Config{
		URI:      cfg.Mongo.URI,
		Database: cfg.Mongo.Database,
	})
	if err != nil {
		return err
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = mongoClient.Disconnect(ctx)
	}()

	users := mongostore.NewUserRepository(db)
	clients := mongostore.NewClientRepository(db)
	audit := mongostore.NewAuditRepository(db)
	if err := mongostore.EnsureIndexes(ctx, users, clients); err != nil {
		return err
	}

	rdb, err := redisstore.Connect(ctx, redisstore.Config{Addr: cfg.Redis.Addr, DB: cfg.Redis.DB})
	if err != nil {
		return err
	}
	var idempotency ports.IdempotencyStore
	if rdb != nil {
		defer rdb.Close()
		idempotency = redisstore.NewIdempotencyStore(rdb)
	} else {
		log.Info().Msg("REDIS_ADDR not set, idempotent client creation disabled")
	}

	// Seed identities must exist before the first request is served.
	if err := service.NewBootstrapper(users, log).EnsureSeedIdentities(ctx, service.DefaultSeeds()); err != nil {
		return err
	}

	authService, err := service.NewAuthService(users, audit, cfg.JWTSecret, cfg.TokenTTL, log)
	if err != nil {
		return err
	}

	router := api.NewRouter(api.Dependencies{
		AuthService:   authService,
		ClientService: service.NewClientService(clients, idempotency, log),
		Audit:         audit,
		Readiness:     handlers.NewHealthDependenciesHandler(db, rdb).Readiness,
		Registry:      prometheus.NewRegistry(),
		Logger:        log,
	})

	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      otelhttp.NewHandler(router, serviceName),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	serverErr := make(chan error, 1)
	go func() {
		log.Info().Str("addr", server.Addr).Str("env", cfg.Env).Msg("api listening")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
		close(serverErr)
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-serverErr:
		return err
	case sig := <-stop:
		log.Info().Str("signal", sig.String()).Msg("shutting down")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}
