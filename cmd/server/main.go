package main

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/newrelic/go-agent/v3/newrelic"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"parking/internal/app"
	"parking/internal/config"
	"parking/internal/domain"
	"parking/internal/handler"
	internalRedis "parking/internal/redis"
	"parking/internal/repository/postgres"
	"parking/internal/service"
)

func main() {
	// Load configuration.
	cfg := config.Load()
	log := app.NewLogger(cfg.Log)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	// Initialize New Relic FIRST (before database so we can instrument DB).
	var nrApp *newrelic.Application
	var err error
	if cfg.NewRelic.Enabled && cfg.NewRelic.LicenseKey != "" {
		nrApp, err = newrelic.NewApplication(
			newrelic.ConfigAppName(cfg.NewRelic.AppName),
			newrelic.ConfigLicense(cfg.NewRelic.LicenseKey),
			newrelic.ConfigDistributedTracerEnabled(true),
			newrelic.ConfigAppLogForwardingEnabled(true),
		)
		if err != nil {
			log.WithError(err).Warn("failed to initialize New Relic")
		} else {
			log.WithField("app", cfg.NewRelic.AppName).Info("New Relic enabled (with DB instrumentation)")
		}
	}

	// Initialize database with New Relic instrumentation.
	db, err := app.NewDatabase(ctx, cfg.Database, nrApp)
	if err != nil {
		log.WithError(err).Fatal("failed to connect to database")
	}
	defer db.Close()
	log.Info("Connected to PostgreSQL")

	if cfg.Database.Migrate {
		if err := postgres.Migrate(ctx, db); err != nil {
			log.WithError(err).Fatal("failed to apply migrations")
		}
	}

	// Initialize Redis with New Relic instrumentation.
	redisClient, err := app.NewRedisClient(ctx, cfg.Redis, nrApp)
	if err != nil {
		log.WithError(err).Fatal("failed to connect to redis")
	}
	defer redisClient.Close()
	log.Info("Connected to Redis")

	// Wire dependencies.
	server := wireServer(db, redisClient, nrApp, log, cfg)

	// Start server in goroutine.
	go func() {
		log.WithField("port", cfg.Server.Port).Info("Starting server")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.WithError(err).Fatal("server error")
		}
	}()

	// Graceful shutdown.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutting down server...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.WithError(err).Fatal("server forced to shutdown")
	}
	if nrApp != nil {
		nrApp.Shutdown(5 * time.Second)
	}

	log.Info("Server exited")
}

// wireServer wires all dependencies and returns the HTTP server.
func wireServer(db *sql.DB, redisClient *redis.Client, nrApp *newrelic.Application, log *logrus.Logger, cfg *config.Config) *http.Server {
	// Initialize Redis stores.
	lockStore := internalRedis.NewLockStore(redisClient)
	cacheStore := internalRedis.NewCacheStore(redisClient, cfg.Parking.DayCacheTTL)
	idempotencyStore := internalRedis.NewIdempotencyStore(redisClient, internalRedis.DefaultIdempotencyTTL)

	// Initialize repositories.
	sessionRepo := postgres.NewSessionRepository(db)
	dayProfitRepo := postgres.NewDayProfitRepository(db)

	baseCurrency, err := service.ParseCurrency(cfg.Parking.BaseCurrency, domain.BaseCurrency)
	if err != nil {
		log.WithError(err).Warn("unsupported base currency, using default")
		baseCurrency = domain.BaseCurrency
	}

	lockOptions := service.DefaultLockOptions()
	lockOptions.TTL = cfg.Parking.LockTTL
	lockOptions.Wait = cfg.Parking.LockWait

	// Initialize services.
	fees := service.NewFeeCalculator()
	dayProfitService := service.NewDayProfitService(dayProfitRepo, sessionRepo, cacheStore, lockStore, log,
		service.DayProfitConfig{
			BaseCurrency: baseCurrency,
			Lock:         lockOptions,
		})
	sessionService := service.NewSessionService(sessionRepo, dayProfitService, fees, lockStore, log,
		service.SessionConfig{
			BaseCurrency: baseCurrency,
			Location:     cfg.Parking.Location(),
			Lock:         lockOptions,
		})

	// Initialize handlers.
	sessionHandler := handler.NewSessionHandler(sessionService, cfg.Parking.StrictPlates)
	dayProfitHandler := handler.NewDayProfitHandler(dayProfitService)
	tariffHandler := handler.NewTariffHandler(fees)

	// Create router.
	router := app.NewRouter(app.RouterDeps{
		SessionHandler:   sessionHandler,
		DayProfitHandler: dayProfitHandler,
		TariffHandler:    tariffHandler,
		Idempotency:      idempotencyStore,
		NewRelicApp:      nrApp,
		Logger:           log,
	})

	// Create HTTP server.
	return &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}
}
