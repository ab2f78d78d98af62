package main

import (
	"context"
	"errors"
	"flag"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/pribylovaa/go-todo-list/internal/cache"
	"github.com/pribylovaa/go-todo-list/internal/config"
	"github.com/pribylovaa/go-todo-list/internal/mail"
	"github.com/pribylovaa/go-todo-list/internal/service"
	"github.com/pribylovaa/go-todo-list/internal/storage/postgres"
	transport "github.com/pribylovaa/go-todo-list/internal/transport/http"
)

// Константы для определения окружения.
const (
	envLocal = "local"
	envDev   = "dev"
	envProd  = "prod"
)

func main() {
	var configPath string
	flag.StringVar(&configPath, "config", "", "path to config file")
	flag.Parse()

	cfg := config.MustLoad(configPath)

	log := setupLogger(cfg.Env)
	slog.SetDefault(log)
	log.Info("starting application", "env", cfg.Env)

	// Корневой контекст по сигналам.
	rootCtx, rootCancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)

	// Подключение к БД c таймаутом.
	dbCtx, dbCancel := context.WithTimeout(rootCtx, 10*time.Second)
	str, err := postgres.New(dbCtx, cfg.DB.DatabaseURL)
	dbCancel()
	if err != nil {
		log.Error("postgres_connect_failed", slog.String("err", err.Error()))
		rootCancel()
		os.Exit(1)
	}
	log.Info("postgres_connected")

	// Подключение к Redis c таймаутом.
	cacheCtx, cacheCancel := context.WithTimeout(rootCtx, 10*time.Second)
	tokenCache, err := cache.New(cacheCtx, cfg.Redis.RedisURL)
	cacheCancel()
	if err != nil {
		log.Error("redis_connect_failed", slog.String("err", err.Error()))
		rootCancel()
		str.Close()
		os.Exit(1)
	}
	log.Info("redis_connected")

	// Почта: без SMTP-хоста письма не отправляются (local/dev).
	var mailer mail.Mailer = mail.NoopMailer{}
	if cfg.SMTP.Host != "" {
		mailer = mail.NewSMTP(cfg.SMTP.Addr(), cfg.SMTP.Host, cfg.SMTP.User, cfg.SMTP.Pass, cfg.SMTP.From)
	}

	// Сервис.
	srvc := service.New(str, tokenCache, tokenCache, mailer, cfg.Auth)
	log.Info("service_initialized")

	var ready int32 // 0 — not ready; 1 — ready

	router := transport.NewRouter(srvc, cfg.Auth, transport.Options{
		Logger:   log,
		Timeout:  cfg.Timeouts.Service,
		BasePath: "/api",
	})

	mux := http.NewServeMux()
	mux.HandleFunc("/livez", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		if atomic.LoadInt32(&ready) == 1 {
			w.WriteHeader(http.StatusOK)
			_, _ = w.Write([]byte("ok"))
			return
		}
		http.Error(w, "not ready", http.StatusServiceUnavailable)
	})

	mux.Handle("/metrics", promhttp.Handler())
	mux.Handle("/", router)

	addr := cfg.HTTP.Addr()
	httpSrv := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	serveErrCh := make(chan error, 1)
	go func() {
		log.Info("http_listen_start", slog.String("addr", addr))
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErrCh <- err
		}
		close(serveErrCh)
	}()

	atomic.StoreInt32(&ready, 1)

	// Ожидание сигнала завершения или фатальной ошибки сервера.
	select {
	case <-rootCtx.Done():
		log.Info("shutdown_requested")
	case err := <-serveErrCh:
		if err != nil {
			log.Error("http_serve_failed", slog.String("err", err.Error()))
		}
	}

	atomic.StoreInt32(&ready, 0)

	// Graceful stop с таймаутом.
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	if err := httpSrv.Shutdown(shutdownCtx); err != nil {
		log.Warn("http_force_stop", slog.String("err", err.Error()))
		_ = httpSrv.Close()
	}

	// Явная очистка перед выходом.
	shutdownCancel()
	rootCancel()
	_ = tokenCache.Close()
	str.Close()

	log.Info("service_stopped")
	os.Exit(0)
}

// setupLogger настраивает slog по окружению.
func setupLogger(env string) *slog.Logger {
	var log *slog.Logger

	switch env {
	case envLocal:
		log = slog.New(
			slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}),
		)
	case envDev:
		log = slog.New(
			slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}),
		)
	case envProd:
		log = slog.New(
			slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}),
		)
	default:
		log = slog.New(
			slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}),
		)
	}

	return log
}
