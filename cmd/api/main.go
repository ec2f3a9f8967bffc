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

	"voiceagent-platform/internal/accounts"
	"voiceagent-platform/internal/agents"
	"voiceagent-platform/internal/audit"
	"voiceagent-platform/internal/auth"
	"voiceagent-platform/internal/billing"
	"voiceagent-platform/internal/config"
	"voiceagent-platform/internal/credit"
	"voiceagent-platform/internal/forward"
	"voiceagent-platform/internal/httpapi"
	"voiceagent-platform/internal/ingest"
	"voiceagent-platform/internal/ledger"
	"voiceagent-platform/internal/metrics"
	"voiceagent-platform/internal/migrations"
	"voiceagent-platform/internal/rates"
	"voiceagent-platform/internal/reporting"
	"voiceagent-platform/internal/upstream"
	"voiceagent-platform/pkg/logger"
	"voiceagent-platform/pkg/utils"

	"github.com/gin-gonic/gin"
	_ "github.com/jackc/pgx/v5/stdlib"
)

func main() {
	// Root context that cancels on shutdown
	rootCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("config load failed", "err", err)
		os.Exit(1)
	}

	log := logger.New(cfg.App.Env)
	slog.SetDefault(log)

	if cfg.App.Env == "production" {
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

	if err := migrations.Run(db); err != nil {
		log.Error("migrations failed", "err", err)
		os.Exit(1)
	}

	rdb, err := utils.OpenRedis(rootCtx, utils.RedisConfig{Addr: cfg.RedisAddr()})
	if err != nil {
		log.Error("redis init failed", "err", err)
		os.Exit(1)
	}
	defer rdb.Close()

	m := metrics.New()

	accountDir := accounts.NewPostgresDirectory(db)
	agentDir := agents.NewPostgresDirectory(db)
	ledgerStore := ledger.NewPostgresStore(db)
	creditStore := credit.NewPostgresStore(db)
	auditSvc := audit.NewService(audit.NewPostgresRepo(db))

	rateSvc := rates.NewService(rates.NewPostgresRepo(db))
	if err := rateSvc.EnsureSeeded(rootCtx); err != nil {
		log.Error("rate seed failed", "err", err)
		os.Exit(1)
	}

	callLock, err := utils.NewKeyedLock(rdb, "billing:call:", 30*time.Second)
	if err != nil {
		log.Error("lock init failed", "err", err)
		os.Exit(1)
	}

	reconciler := billing.NewReconciler(agentDir, accountDir, rateSvc, ledgerStore, creditStore, m).
		WithDistributedLock(callLock)

	upstreamClient := upstream.NewClient(cfg.Upstream, m)
	poller := ingest.NewPoller(upstreamClient, reconciler, m, cfg.Upstream.PollBatchSize)
	forwarder := forward.New(agentDir)
	webhook := ingest.NewWebhook(cfg.Upstream.WebhookSecret, reconciler, forwarder, m)

	handlers := httpapi.Handlers{
		Auth:     authManager,
		Accounts: accountDir,
		Rates:    rateSvc,
		Ledger:   ledgerStore,
		Credits:  creditStore,
		Poller:   poller,
		Reports:  reporting.NewService(ledgerStore),
		Audit:    auditSvc,
	}

	// Gin router
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(logger.Middleware(log))

	registerRoutes(r, handlers, webhook, m, auth.RequireAccessToken(authManager))

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

	_ = logger.ShutdownFlush(shutdownCtx, 2*time.Second)
}
