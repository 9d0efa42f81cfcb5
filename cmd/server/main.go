package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"

	"gymfront/internal/adapters/backend"
	"gymfront/internal/adapters/email"
	web "gymfront/internal/adapters/http"
	"gymfront/internal/adapters/metrics"
	"gymfront/internal/adapters/storage"
	sessionStore "gymfront/internal/adapters/storage/session"
	"gymfront/internal/config"
)

// version is set at build time via -ldflags "-X main.version=..."
var version = "dev"

func main() {
	if err := run(); err != nil {
		slog.Error("startup_failed", "error", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: cfg.LogLevel})))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	collector := metrics.NewCollector()
	api := backend.NewAPI(backend.New(backend.Options{
		BaseURL:   cfg.APIURL,
		Timeout:   cfg.APITimeout,
		LoginPath: cfg.APILoginPath,
		Metrics:   collector,
	}))

	sessions, check, closeStore, err := openSessions(ctx, cfg, collector)
	if err != nil {
		return err
	}
	defer closeStore()

	sender := email.NewSender(cfg.ResendKey, cfg.ResendFrom)
	if cfg.ResendKey == "" && cfg.Production() {
		slog.Warn("email_disabled", "hint", "set GYM_RESEND_KEY for reservation receipts")
	}

	var checks []web.HealthCheck
	if check != nil {
		checks = append(checks, web.HealthCheck{Name: "sessions", Ping: check})
	}
	srv, err := web.NewServer(web.Options{
		API:      api,
		Sessions: sessions,
		Metrics:  collector,
		Sender:   sender,
		Config:   cfg,
		Checks:   checks,
	})
	if err != nil {
		return err
	}
	defer srv.Close()

	httpServer := &http.Server{
		Addr:              cfg.Addr,
		Handler:           srv.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      cfg.APITimeout + 30*time.Second,
		IdleTimeout:       2 * time.Minute,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("server_starting", "version", version, "addr", cfg.Addr, "env", cfg.Env, "api", cfg.APIURL, "sessions", cfg.SessionBackend)
		errCh <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	slog.Info("server_stopping")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}

// openSessions builds the configured session store. check is nil for the memory store.
func openSessions(ctx context.Context, cfg config.Config, collector *metrics.Collector) (sessionStore.Store, func(context.Context) error, func(), error) {
	switch cfg.SessionBackend {
	case config.SessionSQLite:
		db, err := storage.Open(cfg.SessionDB)
		if err != nil {
			return nil, nil, nil, err
		}
		if err := db.PingContext(ctx); err != nil {
			db.Close()
			return nil, nil, nil, fmt.Errorf("session database unreachable: %w", err)
		}
		if err := storage.InitDB(db); err != nil {
			db.Close()
			return nil, nil, nil, err
		}
		timed := storage.NewTimedDB(db, collector, storage.DefaultSlowQuery)
		store := sessionStore.NewSQLiteStore(timed)
		go purgeSessions(ctx, store, 10*time.Minute)
		slog.Info("session_store_ready", "backend", cfg.SessionBackend, "path", cfg.SessionDB)
		return store, timed.PingContext, func() { timed.Close() }, nil

	case config.SessionRedis:
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		store := sessionStore.NewRedisStore(client)
		if err := store.Ping(ctx); err != nil {
			client.Close()
			return nil, nil, nil, fmt.Errorf("redis unreachable at %s: %w", cfg.RedisAddr, err)
		}
		slog.Info("session_store_ready", "backend", cfg.SessionBackend, "addr", cfg.RedisAddr)
		return store, store.Ping, func() { client.Close() }, nil

	default:
		if cfg.Production() {
			slog.Warn("session_store_memory", "hint", "sessions are lost on restart")
		}
		return sessionStore.NewMemoryStore(), nil, func() {}, nil
	}
}

// purgeSessions removes expired SQLite sessions until ctx is done.
func purgeSessions(ctx context.Context, store *sessionStore.SQLiteStore, every time.Duration) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			n, err := store.PurgeExpired(ctx)
			if err != nil {
				slog.Error("session_purge_failed", "error", err)
				continue
			}
			if n > 0 {
				slog.Info("session_purged", "count", n)
			}
		}
	}
}
