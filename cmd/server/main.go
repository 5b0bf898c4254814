package main

import (
	"context"
	"errors"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jonboulle/clockwork"
	goredis "github.com/redis/go-redis/v9"

	"github.com/salvadorquinn/studynet/internal/adapter/httpserver"
	"github.com/salvadorquinn/studynet/internal/adapter/mailer"
	"github.com/salvadorquinn/studynet/internal/adapter/postgres"
	"github.com/salvadorquinn/studynet/internal/adapter/redis"
	"github.com/salvadorquinn/studynet/internal/app"
	"github.com/salvadorquinn/studynet/internal/auth"
	"github.com/salvadorquinn/studynet/internal/domain"
	"github.com/salvadorquinn/studynet/internal/platform/config"
	"github.com/salvadorquinn/studynet/internal/platform/logging"
	"github.com/salvadorquinn/studynet/internal/platform/version"
	"github.com/salvadorquinn/studynet/internal/session"
)

func setupConfig() *config.Config {
	cfg, err := config.Load()
	if err != nil {
		// Use log before slog is initialized
		log.Fatalf("Failed to load config: %v", err)
	}
	return cfg
}

func setupDB(cfg *config.Config) *pgxpool.Pool {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	pool, err := postgres.Connect(ctx, cfg.DatabaseURL)
	if err != nil {
		slog.Error("Failed to connect to database", "error", err)
		os.Exit(1)
	}

	if err := postgres.RunMigrationsWithLock(ctx, pool); err != nil {
		slog.Error("Failed to run migrations", "error", err)
		os.Exit(1)
	}

	return pool
}

func setupRedis(ctx context.Context, cfg *config.Config) *goredis.Client {
	client, err := redis.NewClient(ctx, cfg.RedisURL)
	if err != nil {
		slog.Error("Failed to connect to Redis", "error", err)
		os.Exit(1)
	}
	return client
}

func setupMailer(cfg *config.Config) domain.EmailSender {
	if cfg.SMTPAddr == "" {
		slog.Info("SMTP_ADDR not set, outgoing mail will be logged only")
		return mailer.LogSender{}
	}
	return mailer.NewSMTPSender(cfg.SMTPAddr, cfg.SMTPFrom)
}

func runGracefulShutdown(srv *httpserver.Server, appSvc *app.Service) <-chan struct{} {
	done := make(chan struct{})
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	go func() {
		<-sigChan
		slog.Info("Shutdown signal received, cleaning up...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			slog.Error("Server shutdown error", "error", err)
		}

		appSvc.Stop()

		close(done)
	}()

	return done
}

func main() {
	clock := clockwork.NewRealClock()

	cfg := setupConfig()

	logging.Init(cfg.LogLevel, cfg.LogFormat)
	slog.Info("Application starting", "env", cfg.AppEnv, "port", cfg.Port, "build", version.Get())

	pool := setupDB(cfg)
	defer pool.Close()

	redisClient := setupRedis(context.Background(), cfg)
	defer func() { _ = redisClient.Close() }()

	userRepo := postgres.NewUserRepo(pool)
	eventRepo := postgres.NewEventRepo(pool)
	leadRepo := postgres.NewLeadRepo(pool)
	templateRepo := postgres.NewTemplateRepo(pool)

	sessionStore := redis.NewSessionStore(redisClient, clock)
	authSvc := auth.NewService(userRepo, sessionStore, clock, cfg.SessionMaxAge)

	appSvc := app.NewService(userRepo, eventRepo, leadRepo, templateRepo, setupMailer(cfg), clock)

	registry := session.NewRegistry(authSvc, userRepo, clock, cfg.IdleTimeout)

	healthChecks := []httpserver.HealthCheck{
		{Name: "postgres", Check: pool.Ping},
		{Name: "redis", Check: func(ctx context.Context) error {
			return redisClient.Ping(ctx).Err()
		}},
	}

	srv := httpserver.NewServer(cfg, appSvc, authSvc, registry, clock, healthChecks)

	done := runGracefulShutdown(srv, appSvc)

	if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		slog.Error("Server error", "error", err)
		os.Exit(1)
	}

	<-done
}
