package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/AnshRaj112/journal-backend/internal/ai"
	"github.com/AnshRaj112/journal-backend/internal/database"
	"github.com/AnshRaj112/journal-backend/internal/handlers"
	"github.com/AnshRaj112/journal-backend/internal/logger"
	"github.com/AnshRaj112/journal-backend/internal/middleware"
	"github.com/AnshRaj112/journal-backend/internal/routes"
	"github.com/AnshRaj112/journal-backend/internal/services"
	"github.com/AnshRaj112/journal-backend/internal/store"
)

func runServe(ctx context.Context) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	log := logger.Log

	if err := cfg.Validate(); err != nil {
		return err
	}

	log.Info("Connecting to PostgreSQL...")
	if err := database.ConnectPostgres(cfg.PostgresURI); err != nil {
		return fmt.Errorf("connect postgres: %w", err)
	}
	defer database.DisconnectPostgres()

	log.Info("Connecting to Redis...")
	if err := database.ConnectRedis(cfg.RedisURI); err != nil {
		return fmt.Errorf("connect redis: %w", err)
	}
	defer database.DisconnectRedis()

	enricherOpts := []ai.EnricherOption{ai.WithTimeout(cfg.AITimeout), ai.WithLogger(log)}
	if cfg.MongoURI != "" {
		if err := database.ConnectMongo(cfg.MongoURI); err != nil {
			log.Warnw("MongoDB unavailable, AI audit log disabled", "error", err)
		} else {
			defer database.DisconnectMongo()
			audit := services.NewMongoAIAudit(database.MongoDB, log)
			defer audit.Close()
			if err := audit.EnsureIndexes(ctx); err != nil {
				log.Warnw("failed to ensure ai_requests indexes", "error", err)
			}
			enricherOpts = append(enricherOpts, ai.WithRecorder(audit))
			log.Info("✅ AI audit log enabled")
		}
	}

	prompts, err := ai.DefaultPrompts()
	if err != nil {
		return err
	}
	gen, err := ai.NewOllamaGenerator(cfg.OllamaBaseURL(), cfg.OllamaModel)
	if err != nil {
		return fmt.Errorf("ollama client: %w", err)
	}

	loginLimiter := middleware.NewLoginLimiter(middleware.LoginMaxAttempts, middleware.LoginWindow)
	defer loginLimiter.Close()

	sessions := services.NewSessionManager(database.RedisClient, cfg.JWTSecret)
	oauthProviders := services.OAuthProviders(cfg)
	for _, p := range oauthProviders {
		log.Infow("OAuth provider enabled", "provider", p.Name)
	}

	h := handlers.New(handlers.Deps{
		Journals:      store.NewPostgresJournals(database.PostgresDB),
		Users:         store.NewPostgresUsers(database.PostgresDB),
		Sessions:      sessions,
		Enricher:      ai.NewEnricher(gen, prompts, enricherOpts...),
		Summaries:     services.NewSummaryCache(database.RedisClient),
		LoginLimiter:  loginLimiter,
		OAuth:         services.NewOAuthService(database.RedisClient, oauthProviders...),
		Log:           log,
		FrontendURL:   cfg.FrontendURL,
		SecureCookies: cfg.IsProduction(),
	})

	opts := routes.Options{
		Handler:        h,
		Sessions:       sessions,
		Log:            log,
		AllowedOrigins: cfg.AllowedOrigins,
		TrustProxy:     cfg.TrustProxy,
		Production:     cfg.IsProduction(),
		AILimiter:      middleware.NewAILimiter(database.RedisClient, cfg.AIRateLimit, log),
		HealthChecks: map[string]handlers.Pinger{
			"postgres": handlers.PingFunc(database.PostgresDB.PingContext),
			"redis": handlers.PingFunc(func(ctx context.Context) error {
				return database.RedisClient.Ping(ctx).Err()
			}),
		},
	}
	if cfg.IsProduction() {
		opts.GlobalLimiter = middleware.NewGlobalRateLimiter()
		defer opts.GlobalLimiter.Close()
		if !strings.Contains(cfg.Host, "localhost") {
			opts.AllowedHost = cfg.APIHostname()
		}
		log.Info("✅ Production security enabled (security headers, host check, per-IP rate limiting)")
	}

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           routes.New(opts),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		// Enrichment waits on the model
		WriteTimeout: cfg.AITimeout + 30*time.Second,
		IdleTimeout:  120 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Infof("🚀 Journal backend running on :%s", cfg.Port)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	log.Info("Shutting down...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

func runMigrate(ctx context.Context) error {
	if err := database.ConnectPostgres(cfg.PostgresURI); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}
	defer database.DisconnectPostgres()
	logger.Log.Info("✅ Database schema is up to date")
	return nil
}
