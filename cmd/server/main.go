// Command server runs the anchored-verification HTTP service. main wires
// configuration, storage, the chain client, and the verification workflow,
// then owns the server lifecycle; business logic lives in the internal
// packages.
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

	"github.com/jackc/pgx/v5/pgxpool"

	"anchorid/internal/anchor"
	"anchorid/internal/audit"
	"anchorid/internal/chain"
	chaincache "anchorid/internal/chain/cache"
	"anchorid/internal/platform/config"
	"anchorid/internal/platform/httpserver"
	"anchorid/internal/platform/logger"
	"anchorid/internal/platform/middleware"
	platformredis "anchorid/internal/platform/redis"
	"anchorid/internal/sequencer"
	httptransport "anchorid/internal/transport/http"
	"anchorid/internal/verification"
	"anchorid/internal/verification/handler"
	"anchorid/internal/verification/metrics"
	"anchorid/internal/verification/store"
	"anchorid/internal/verification/verifier"
)

func main() {
	cfg := config.FromEnv()
	log := logger.New(cfg.LogLevel)

	if err := run(cfg, log); err != nil {
		log.Error("server exited", "error", err)
		os.Exit(1)
	}
}

func run(cfg config.Server, log *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	redisClient, err := platformredis.New(config.RedisFromEnv(cfg.RedisURL))
	if err != nil {
		return fmt.Errorf("redis: %w", err)
	}
	if redisClient != nil {
		defer redisClient.Close()
	}

	// TODO: swap the in-process node for the gRPC node adapter once the node
	// API is stable. Everything downstream depends only on chain.Client.
	var node chain.Client = chain.NewMemoryNode()
	node = chaincache.New(node, redisClient, config.ChainCacheTTL, log)

	signerAccount := chain.AccountAddress(cfg.SignerAccount)
	seq, err := sequencer.NewFromChain(ctx, node, signerAccount)
	if err != nil {
		return fmt.Errorf("read initial sequence number: %w", err)
	}

	verificationStore, cleanupStore, err := buildStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer cleanupStore()

	publisher, err := buildAuditPublisher(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer publisher.Close()

	codec, err := anchor.NewCodec(config.AnchorMaxBytes)
	if err != nil {
		return fmt.Errorf("anchor codec: %w", err)
	}

	service, err := verification.NewService(
		node,
		verifier.NewStructural(codec),
		codec,
		seq,
		verificationStore,
		publisher,
		metrics.New(),
		log,
		cfg.SignerAccount,
	)
	if err != nil {
		return fmt.Errorf("verification service: %w", err)
	}

	var auth middleware.TokenValidator
	if v := middleware.NewHMACValidator(cfg.JWTSigningKey); v != nil {
		auth = v
	}

	router := httptransport.NewRouter(httptransport.Dependencies{
		Verification: handler.New(service, log),
		Auth:         auth,
		Health: func(r *http.Request) error {
			if redisClient == nil {
				return nil
			}
			return redisClient.Health(r.Context())
		},
		Logger: log,
	})

	srv := httpserver.New(cfg.Addr, router)

	errCh := make(chan error, 1)
	go func() {
		log.Info("server listening", "addr", cfg.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("graceful shutdown: %w", err)
	}
	return nil
}

// buildStore picks Postgres when a DSN is configured and falls back to the
// in-memory store for local runs.
func buildStore(ctx context.Context, cfg config.Server) (verification.Store, func(), error) {
	if cfg.PostgresDSN == "" {
		return store.NewMemory(), func() {}, nil
	}
	pool, err := pgxpool.New(ctx, cfg.PostgresDSN)
	if err != nil {
		return nil, nil, fmt.Errorf("postgres pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, nil, fmt.Errorf("postgres ping: %w", err)
	}
	return store.NewPostgres(pool), pool.Close, nil
}

// buildAuditPublisher wires Kafka when brokers are configured, buffered so a
// slow broker stays off the request path. Without brokers events stay
// in-process.
func buildAuditPublisher(ctx context.Context, cfg config.Server, log *slog.Logger) (*audit.Publisher, error) {
	if cfg.KafkaBrokers == "" {
		return audit.NewPublisher(audit.NewMemorySink(), log), nil
	}
	sink, err := audit.NewKafkaSink(ctx, cfg.KafkaBrokers, cfg.AuditTopic)
	if err != nil {
		return nil, fmt.Errorf("kafka audit sink: %w", err)
	}
	return audit.NewPublisher(sink, log, audit.WithAsyncBuffer(256)), nil
}
