package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/sony/gobreaker"

	"github.com/josh-kwaku/rentchain-audit/api"
	"github.com/josh-kwaku/rentchain-audit/internal/chain"
	"github.com/josh-kwaku/rentchain-audit/internal/config"
	"github.com/josh-kwaku/rentchain-audit/internal/domain"
	"github.com/josh-kwaku/rentchain-audit/internal/eventsource"
	"github.com/josh-kwaku/rentchain-audit/internal/handler"
	"github.com/josh-kwaku/rentchain-audit/internal/lock"
	"github.com/josh-kwaku/rentchain-audit/internal/logging"
	"github.com/josh-kwaku/rentchain-audit/internal/metrics"
	"github.com/josh-kwaku/rentchain-audit/internal/middleware"
	"github.com/josh-kwaku/rentchain-audit/internal/repository"
	"github.com/josh-kwaku/rentchain-audit/internal/service"
)

type headStore interface {
	Append(ctx context.Context, snap *domain.ChainHeadSnapshot) (*domain.ChainHeadSnapshot, error)
	Latest(ctx context.Context) (*domain.ChainHeadSnapshot, error)
	LatestForTenant(ctx context.Context, tenantID string) (*domain.ChainHeadSnapshot, error)
	ListByTenant(ctx context.Context, tenantID string, limit int) ([]domain.ChainHeadSnapshot, error)
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := logging.Init("rentchain-api", cfg.LogLevel, cfg.AppEnv)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := connectDB(ctx, cfg)
	if err != nil {
		slog.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	reg := metrics.New()
	checks := map[string]handler.HealthCheck{
		"database": db.PingContext,
	}

	heads, closeHeads, err := openHeadStore(db, cfg)
	if err != nil {
		slog.Error("failed to open chain head store", "error", err)
		os.Exit(1)
	}
	defer closeHeads()

	ledgerRepo := repository.NewLedgerEventRepository(db, cfg.StoreTimeout)

	var source eventsource.Source = ledgerRepo
	if cfg.EventSourceURL != "" {
		source = eventsource.NewHTTPSource(cfg.EventSourceURL, cfg.EventSourceTimeout)
		slog.Info("using remote event source", "url", cfg.EventSourceURL)
	}
	source = eventsource.NewBreaker(source, eventsource.BreakerConfig{
		Name:        "event-source",
		MaxFailures: cfg.SourceBreakerFailures,
		OpenTimeout: cfg.SourceBreakerTimeout,
		OnStateChange: func(name string, _, to gobreaker.State) {
			reg.SetBreakerState(name, int(to))
		},
	})

	locker, rdb, err := lock.Open(lock.Options{RedisURL: cfg.RedisURL, TTL: cfg.LockTTL, Retry: cfg.LockRetry})
	if err != nil {
		slog.Error("failed to set up tenant locks", "error", err)
		os.Exit(1)
	}
	if rdb != nil {
		defer rdb.Close()
		checks["redis"] = func(ctx context.Context) error { return rdb.Ping(ctx).Err() }
		slog.Info("using redis tenant locks")
	}

	builder := chain.NewBuilder()
	checkpointSvc := service.NewCheckpointService(source, heads, locker, builder, reg)
	verifySvc := service.NewVerificationService(source, heads, builder, reg)
	explorerSvc := service.NewExplorerService(source, heads, builder, reg)

	chainHandler := handler.NewChainHandler(explorerSvc, verifySvc, checkpointSvc)
	healthHandler := handler.NewHealthHandler(checks)
	verifyLimit := middleware.NewRateLimiter(cfg.VerifyRateRPS, cfg.VerifyRateBurst)

	mux := http.NewServeMux()
	mux.HandleFunc("GET /health", healthHandler.Liveness)
	mux.HandleFunc("GET /health/ready", healthHandler.Readiness)
	mux.Handle("GET /metrics", reg.Handler())
	mux.HandleFunc("GET /docs", handler.ServeDocs())
	mux.HandleFunc("GET /docs/openapi.yaml", handler.ServeSpec(api.Spec))

	mux.HandleFunc("GET /blockchain", chainHandler.GetBlockchain)
	mux.Handle("GET /blockchain/verify", verifyLimit.Middleware(http.HandlerFunc(chainHandler.VerifyBlockchain)))
	mux.HandleFunc("GET /tenants/{tenantID}/chain", chainHandler.GetTenantChain)
	mux.Handle("GET /tenants/{tenantID}/verify", verifyLimit.Middleware(http.HandlerFunc(chainHandler.VerifyTenant)))
	mux.HandleFunc("POST /tenants/{tenantID}/checkpoint", chainHandler.Checkpoint)
	mux.HandleFunc("GET /tenants/{tenantID}/chain-heads", chainHandler.ListChainHeads)

	// Events can only be recorded into the ledger this process owns.
	if cfg.EventSourceURL == "" {
		idemRepo := repository.NewIdempotencyRepository(db, cfg.StoreTimeout)
		ledgerHandler := handler.NewLedgerHandler(service.NewLedgerService(ledgerRepo, checkpointSvc))
		idempotent := middleware.Idempotency(idemRepo)
		mux.Handle("POST /tenants/{tenantID}/events", idempotent(http.HandlerFunc(ledgerHandler.RecordEvent)))

		sweeper := service.NewIdempotencySweeper(idemRepo, logger, cfg.IdempotencySweepInterval)
		go sweeper.Start(ctx)
	}

	addr := fmt.Sprintf(":%d", cfg.Port)
	srv := &http.Server{
		Addr:              addr,
		Handler:           middleware.Recovery(middleware.Tracing(middleware.Logging(mux))),
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		slog.Info("server started", "addr", addr, "head_store", cfg.HeadStore)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	<-ctx.Done()

	slog.Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("server forced to shutdown", "error", err)
		os.Exit(1)
	}
	slog.Info("server stopped")
}

func openHeadStore(db *sqlx.DB, cfg *config.Config) (headStore, func(), error) {
	if cfg.HeadStore == config.HeadStoreFile {
		store, err := repository.OpenFileChainHeadStore(cfg.HeadStoreDir)
		if err != nil {
			return nil, nil, err
		}
		return store, func() {
			if err := store.Close(); err != nil {
				slog.Error("failed to close chain head file", "error", err)
			}
		}, nil
	}
	return repository.NewChainHeadRepository(db, cfg.StoreTimeout), func() {}, nil
}

func connectDB(ctx context.Context, cfg *config.Config) (*sqlx.DB, error) {
	pool := repository.PoolConfig{
		MaxOpenConns:     cfg.DBMaxOpenConns,
		MaxIdleConns:     cfg.DBMaxIdleConns,
		ConnMaxLifetimeS: cfg.DBConnMaxLifetimeS,
		ConnMaxIdleTimeS: cfg.DBConnMaxIdleTimeS,
	}

	var err error
	for i := range 30 {
		var db *sqlx.DB
		if db, err = repository.NewPostgresDB(ctx, cfg.DatabaseURL, pool); err == nil {
			return db, nil
		}
		slog.Info("waiting for database", "attempt", i+1)
		select {
		case <-ctx.Done():
			return nil, fmt.Errorf("connectDB: %w", ctx.Err())
		case <-time.After(time.Second):
		}
	}
	return nil, fmt.Errorf("connectDB: gave up after 30 attempts: %w", err)
}
