package main

import (
	"context"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/mfairley/apiguard/internal/auth"
	"github.com/mfairley/apiguard/internal/config"
	"github.com/mfairley/apiguard/internal/handler"
	"github.com/mfairley/apiguard/internal/logging"
	"github.com/mfairley/apiguard/internal/metrics"
	"github.com/mfairley/apiguard/internal/ratelimit"
	"github.com/mfairley/apiguard/internal/server"
	"github.com/mfairley/apiguard/internal/telemetry"
)

func main() {
	// Load .env file if it exists
	_ = godotenv.Load()

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	configPath := os.Getenv("APIGUARD_CONFIG")
	if configPath == "" {
		configPath = "config.yaml"
	}
	cfg, err := config.Load(configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	shutdownTracer, err := telemetry.InitTracer("apiguard", logger)
	if err != nil {
		log.Fatalf("Failed to initialize tracer: %v", err)
	}
	defer func() {
		if err := shutdownTracer(context.Background()); err != nil {
			logger.Error("tracer shutdown", slog.String("error", err.Error()))
		}
	}()

	accessLog, err := logging.NewDailyWriter(cfg.Log.Dir, "access")
	if err != nil {
		log.Fatalf("Failed to open access log: %v", err)
	}
	defer accessLog.Close()

	errorLog, err := logging.NewDailyWriter(cfg.Log.Dir, "error")
	if err != nil {
		log.Fatalf("Failed to open error log: %v", err)
	}
	defer errorLog.Close()

	reqLogger := logging.New(logging.Options{
		Logger:        logger,
		Access:        accessLog,
		Errors:        errorLog,
		SlowThreshold: config.Duration(cfg.Log.SlowThreshold),
	})

	principals, err := seedPrincipals(cfg, logger)
	if err != nil {
		log.Fatalf("Failed to seed principals: %v", err)
	}
	sessions := auth.NewSessionStore(config.Duration(cfg.Auth.SessionTTL))
	authenticator := auth.New(principals, sessions)

	registry := metrics.NewRegistry()
	limiter := ratelimit.New(ratelimit.Config{
		Window:      config.Duration(cfg.RateLimit.Window),
		MaxRequests: cfg.RateLimit.MaxRequests,
		Message:     cfg.RateLimit.Message,
	})

	srv := server.New(server.Options{
		Port:           cfg.Server.Port,
		RequestTimeout: config.Duration(cfg.Server.RequestTimeout),
		Logger:         logger,
		RequestLogger:  reqLogger,
		Metrics:        registry,
		Limiter:        limiter,
	})

	h := handler.New(authenticator, registry)
	requireAuth := server.RequireAuth(authenticator)

	srv.Router.With(server.ValidateMiddleware(handler.LoginSchema())).
		Post("/auth/login", h.Login)
	srv.Router.Post("/auth/logout", h.Logout)
	srv.Router.With(requireAuth).Get("/auth/me", h.Me)
	srv.Router.With(requireAuth, server.RequireRole(authenticator, "admin")).
		Get("/admin/dashboard", h.Dashboard)
	srv.Router.Get("/status", h.Status)

	errCh := make(chan error, 1)
	go func() { errCh <- srv.Start() }()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-errCh:
		if err != nil {
			log.Fatalf("Server failed: %v", err)
		}
	case sig := <-sigCh:
		logger.Info("shutdown signal received", slog.String("signal", sig.String()))
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("shutdown error", slog.String("error", err.Error()))
		os.Exit(1)
	}
}

// seedPrincipals loads principals from config, falling back to the built-in
// demo accounts when none are configured. Demo credentials are hashed at
// startup and announced loudly; never run the fallback outside development.
func seedPrincipals(cfg *config.Config, logger *slog.Logger) ([]auth.Principal, error) {
	if len(cfg.Users) > 0 {
		principals := make([]auth.Principal, len(cfg.Users))
		for i, u := range cfg.Users {
			principals[i] = auth.Principal{
				ID:           u.ID,
				Username:     u.Username,
				PasswordHash: u.PasswordHash,
				Role:         u.Role,
			}
		}
		return principals, nil
	}

	logger.Warn("no users configured; seeding demo accounts admin/admin123 and somchai/user1234")

	demo := []struct{ id, username, password, role string }{
		{"1", "admin", "admin123", "admin"},
		{"2", "somchai", "user1234", "user"},
	}
	principals := make([]auth.Principal, len(demo))
	for i, d := range demo {
		hash, err := auth.HashPassword(d.password)
		if err != nil {
			return nil, err
		}
		principals[i] = auth.Principal{ID: d.id, Username: d.username, PasswordHash: hash, Role: d.role}
	}
	return principals, nil
}
