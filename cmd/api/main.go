package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"ivr-gateway/internal/audit"
	"ivr-gateway/internal/auth"
	"ivr-gateway/internal/calllog"
	"ivr-gateway/internal/config"
	"ivr-gateway/internal/flow"
	"ivr-gateway/internal/hours"
	"ivr-gateway/internal/httpapi"
	"ivr-gateway/internal/ignored"
	"ivr-gateway/internal/messages"
	"ivr-gateway/internal/notify"
	"ivr-gateway/internal/registry"
	"ivr-gateway/internal/reporting"
	"ivr-gateway/internal/schema"
	"ivr-gateway/internal/settings"
	"ivr-gateway/internal/telephony"
	"ivr-gateway/pkg/logger"
	"ivr-gateway/pkg/utils"

	"github.com/gin-gonic/gin"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/joho/godotenv"
)

func main() {
	// Root context that cancels on shutdown
	rootCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Optional .env for local development; real deployments set env directly.
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("config load failed", "err", err)
		os.Exit(1)
	}

	log := logger.New(cfg.App.Env)
	slog.SetDefault(log)

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	authManager, err := auth.NewManager(cfg.Auth)
	if err != nil {
		log.Error("auth init failed", "err", err)
		os.Exit(1)
	}

	db, err := utils.OpenPostgres(rootCtx, "pgx", cfg.PostgresDSN(), utils.PostgresPoolConfig{})
	if err != nil {
		log.Error("postgres init failed", "err", err)
		os.Exit(1)
	}
	defer db.Close()

	if err := schema.Apply(rootCtx, db); err != nil {
		log.Error("schema apply failed", "err", err)
		os.Exit(1)
	}

	// Redis is optional; without it audio is served straight from Postgres.
	var audioCache *messages.AudioCache
	if cfg.RedisEnabled() {
		rdb, err := utils.OpenRedis(rootCtx, utils.RedisConfig{Addr: cfg.RedisAddr()})
		if err != nil {
			log.Error("redis init failed", "err", err)
			os.Exit(1)
		}
		defer rdb.Close()
		audioCache = messages.NewAudioCache(rdb, time.Hour)
	}

	settingsStore := settings.NewPostgresStore(db)
	messageSvc := messages.NewService(messages.NewPostgresRepo(db), audioCache)
	callRepo := calllog.NewPostgresRepo(db)
	hoursRepo := hours.NewPostgresRepo(db)
	registryRepo := registry.NewPostgresRepo(db)

	engine := &flow.Engine{
		Messages: messageSvc,
		Hours:    hours.NewGate(hoursRepo, cfg.BusinessZone()),
		Registry: registryRepo,
		Calls:    callRepo,
		Settings: settingsStore,
		Notifier: notify.NewHTTPNotifier(settingsStore),
		Paths:    flow.DefaultPaths(),
	}

	webhooks := &telephony.WebhookHandlers{Engine: engine, Audio: messageSvc}
	admin := httpapi.Handlers{
		Auth:     authManager,
		Messages: messageSvc,
		Hours:    hoursRepo,
		Ignored:  ignored.NewPostgresRepo(db),
		Registry: registryRepo,
		Settings: settingsStore,
		Reports:  reporting.NewService(callRepo),
		Audit:    audit.NewService(audit.NewPostgresRepo(db)),
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(logger.Middleware(log))

	registerRoutes(r, webhooks, admin, auth.RequireAccessToken(authManager), db)

	srv := &http.Server{
		Addr:              cfg.HTTPAddr(),
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		log.Info("api listening", "addr", srv.Addr, "env", cfg.App.Env)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("http server failed", "err", err)
			stop()
		}
	}()

	<-rootCtx.Done()
	log.Info("shutdown initiated")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 20*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("http shutdown failed", "err", err)
	}
}
