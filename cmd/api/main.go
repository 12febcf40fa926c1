package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/jason-slatt/cameroon-voice-ai/internal/api"
	"github.com/jason-slatt/cameroon-voice-ai/internal/api/handlers"
	"github.com/jason-slatt/cameroon-voice-ai/internal/config"
	"github.com/jason-slatt/cameroon-voice-ai/internal/domain/services/audit"
	"github.com/jason-slatt/cameroon-voice-ai/internal/domain/services/banking"
	"github.com/jason-slatt/cameroon-voice-ai/internal/domain/services/conversation"
	"github.com/jason-slatt/cameroon-voice-ai/internal/domain/services/flow"
	"github.com/jason-slatt/cameroon-voice-ai/internal/domain/services/i18n"
	"github.com/jason-slatt/cameroon-voice-ai/internal/domain/services/nlu"
	"github.com/jason-slatt/cameroon-voice-ai/internal/domain/services/storage"
	"github.com/jason-slatt/cameroon-voice-ai/internal/infrastructure/cache"
	"github.com/jason-slatt/cameroon-voice-ai/internal/infrastructure/database"
	"github.com/jason-slatt/cameroon-voice-ai/pkg/logger"
)

func main() {
	// Load configuration
	cfg, err := config.LoadDefault()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	var log *logger.Logger
	if cfg.App.Environment == "production" {
		log = logger.NewProduction()
	} else {
		log = logger.NewDevelopment()
	}

	log.Info().
		Str("app", cfg.App.Name).
		Str("env", cfg.App.Environment).
		Str("version", cfg.App.Version).
		Msg("starting voice banking assistant")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Initialize infrastructure
	db, redisCache, err := initInfrastructure(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize infrastructure")
	}
	defer func() {
		if db != nil {
			db.Close()
		}
		if redisCache != nil {
			redisCache.Close()
		}
	}()

	// Message catalog, validated at startup so a missing translation fails
	// fast instead of surfacing mid-conversation.
	catalog, err := i18n.NewCatalog()
	if err != nil {
		log.Fatal().Err(err).Msg("invalid message catalog")
	}

	// NLU
	classifier := nlu.NewClassifier(cfg.NLU.AcceptThreshold, log)
	extractor := nlu.NewExtractor(cfg.NLU.DefaultCurrency, log)

	// Conversation state store
	store := storage.NewRedisStore(redisCache, cfg.Dialog.ConversationTTL, log)

	// Audit trail: Postgres when available, in-memory otherwise
	var auditLog audit.Logger
	if db != nil {
		auditLog = audit.NewPostgresLogger(db, redisCache, cfg.Fraud.AlertExpiry, log)
		log.Info().Msg("audit trail backed by PostgreSQL")
	} else {
		auditLog = audit.NewMemoryLogger()
		log.Warn().Msg("running without database, audit trail is in-memory only")
	}

	// Account API: real backend when configured, seeded mock otherwise
	var accounts banking.AccountAPI
	if cfg.Account.BaseURL != "" {
		accounts = banking.NewClient(cfg.Account, log)
		log.Info().Str("base_url", cfg.Account.BaseURL).Msg("using external account API")
	} else {
		accounts = banking.NewMockAccountAPI()
		log.Warn().Msg("no account API configured, using the seeded mock")
	}

	// Risk, step-up and command pipeline
	fraud := banking.NewFraudDetector(redisCache, cfg.Fraud, log)
	otp := banking.NewOTPService(redisCache, cfg.OTP, log)
	orchestrator := banking.NewOrchestrator(
		accounts, fraud, otp, redisCache, auditLog, catalog,
		cfg.Banking, cfg.OTP.Length, cfg.NLU.DefaultCurrency, log,
	)

	// Dialog flows
	registry := flow.NewRegistry(flow.Deps{
		Catalog:  catalog,
		Executor: orchestrator,
		Accounts: accounts,
		Banking:  cfg.Banking,
		Currency: cfg.NLU.DefaultCurrency,
		Logger:   log,
	})

	manager := conversation.NewManager(
		store, classifier, extractor, registry,
		orchestrator, accounts, catalog, auditLog, cfg.Dialog, log,
	)

	// HTTP layer
	h := handlers.NewHandlers(handlers.Dependencies{
		Manager: manager,
		Audit:   auditLog,
		Cache:   redisCache,
		DB:      db,
		Version: cfg.App.Version,
		Logger:  log,
	})
	router := api.NewRouter(*cfg, h, log)

	httpServer := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.HTTPPort),
		Handler:      router.Setup(),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	go func() {
		log.Info().
			Str("addr", httpServer.Addr).
			Msg("starting HTTP server")
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("HTTP server failed")
		}
	}()

	// Wait for shutdown signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down...")
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer shutdownCancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("HTTP server shutdown error")
	}

	log.Info().Msg("shutdown complete")
}

// initInfrastructure initializes database and cache connections
func initInfrastructure(ctx context.Context, cfg *config.Config, log *logger.Logger) (*database.PostgresDB, *cache.RedisCache, error) {
	// Connect to PostgreSQL
	db, err := database.NewPostgres(ctx, cfg.Database, log)
	if err != nil {
		log.Warn().Err(err).Msg("failed to connect to PostgreSQL, continuing without database")
		db = nil
	}

	// Connect to Redis
	redisCache, err := cache.NewRedis(ctx, cfg.Redis, log)
	if err != nil {
		return db, nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return db, redisCache, nil
}
