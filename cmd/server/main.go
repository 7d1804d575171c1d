package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/marloe/showbill/internal/app/migrate"
	"github.com/marloe/showbill/internal/discover"
	"github.com/marloe/showbill/internal/repository/postgres"
	"github.com/marloe/showbill/internal/service/auth"
	"github.com/marloe/showbill/internal/session"
	"github.com/marloe/showbill/internal/web"
	"github.com/marloe/showbill/pkg/config"
	"github.com/marloe/showbill/pkg/logger"
)

func main() {
	cfg := config.LoadServerConfig()
	log := logger.New("web", slog.LevelInfo)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}

	runner, err := migrate.New(pool, cfg.DatabaseURL, cfg.MigrationsDir, log)
	if err != nil {
		log.Error("failed to configure migrations", "error", err)
		os.Exit(1)
	}
	defer runner.Close()
	if err := runner.Ping(ctx); err != nil {
		log.Error("database ping failed", "error", err)
		os.Exit(1)
	}
	if err := runner.Ensure(ctx); err != nil {
		log.Error("migrations failed", "error", err)
		os.Exit(1)
	}

	repo := postgres.New(pool)

	var sessions session.Store = session.NewMemoryStore(cfg.SessionTTL)
	if addr := strings.TrimSpace(cfg.SessionRedisAddr); addr != "" {
		redisStore, err := session.NewRedisStore(addr, cfg.SessionRedisPass, cfg.SessionRedisDB, cfg.SessionTTL)
		if err != nil {
			log.Warn("redis session store unavailable, using memory store", "error", err)
		} else {
			sessions.Close()
			sessions = redisStore
		}
	}
	defer sessions.Close()

	eventsClient, err := discover.NewClient(cfg.EventsAPIURL, cfg.EventsAPIKey)
	if err != nil {
		log.Error("failed to configure events client", "error", err)
		os.Exit(1)
	}

	authSvc := auth.New(repo, sessions, log)
	eventsSvc := discover.New(eventsClient, log, cfg.EventsKeyword, cfg.EventsPageSize)

	cookies, err := web.NewCookieCodec(cfg.SessionSecret, cfg.CookieName, cfg.CookieSecure)
	if err != nil {
		log.Error("invalid session configuration", "error", err)
		os.Exit(1)
	}
	router, err := web.NewRouter(log, authSvc, eventsSvc, cookies, cfg.SessionTTL)
	if err != nil {
		log.Error("failed to assemble router", "error", err)
		os.Exit(1)
	}

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errorCh := make(chan error, 1)
	go func() {
		log.Info("web server starting", "addr", cfg.Addr)
		errorCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Error("graceful shutdown failed", "error", err)
		}
		log.Info("web server stopped")
	case err := <-errorCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("server error", "error", err)
			os.Exit(1)
		}
	}
}
