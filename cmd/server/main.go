package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"steeple/internal/apikey"
	arbopenai "steeple/internal/arbiter/openai"
	"steeple/internal/audit"
	"steeple/internal/embedding"
	embopenai "steeple/internal/embedding/openai"
	steeplehttp "steeple/internal/http"
	"steeple/internal/platform/config"
	"steeple/internal/platform/httpserver"
	"steeple/internal/platform/logger"
	"steeple/internal/platform/postgres"
	"steeple/internal/platform/redis"
	"steeple/internal/ratelimit/checker"
	"steeple/internal/resolve"
	resolvehandler "steeple/internal/resolve/handler"
	resolvemetrics "steeple/internal/resolve/metrics"
	"steeple/internal/search"
)

// main wires dependencies and owns the server lifecycle. Business logic
// lives in the internal services.
func main() {
	cfg := config.FromEnv()
	log := logger.New()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	pool, err := postgres.New(ctx, cfg.Postgres)
	if err != nil {
		log.Error("postgres connection failed", "error", err)
		os.Exit(1)
	}
	defer pool.Close()

	redisClient, err := redis.New(cfg.Redis)
	if err != nil {
		log.Error("redis connection failed", "error", err)
		os.Exit(1)
	}
	if redisClient != nil {
		defer redisClient.Close()
	}

	var keys apikey.Store = apikey.NewPostgres(pool)
	if redisClient != nil {
		keys = apikey.NewCached(keys, redisClient, cfg.Redis.KeyCacheTTL, log)
	}

	ledger := audit.NewPostgres(pool)

	admission, err := checker.New(ledger, log,
		checker.WithWindow(cfg.Resolution.RateLimitWindow),
		checker.WithTimeout(cfg.Resolution.RateLimitTimeout),
	)
	if err != nil {
		log.Error("rate limit checker init failed", "error", err)
		os.Exit(1)
	}

	embedder, err := embopenai.New(cfg.AI, log)
	if err != nil {
		log.Error("embedder init failed", "error", err)
		os.Exit(1)
	}
	orchestrator, err := embedding.NewOrchestrator(embedder, log)
	if err != nil {
		log.Error("embedding orchestrator init failed", "error", err)
		os.Exit(1)
	}

	arb, err := arbopenai.New(cfg.AI, log)
	if err != nil {
		log.Error("arbiter init failed", "error", err)
		os.Exit(1)
	}

	opts := []resolve.Option{
		resolve.WithMetrics(resolvemetrics.New()),
		resolve.WithThreshold(cfg.Resolution.SimilarityThreshold),
		resolve.WithCandidateLimit(cfg.Resolution.CandidateLimit),
	}
	publisher, err := audit.NewKafkaPublisher(cfg.Kafka, log)
	if err != nil {
		log.Error("kafka publisher init failed", "error", err)
		os.Exit(1)
	}
	if publisher != nil {
		defer publisher.Close()
		opts = append(opts, resolve.WithPublisher(publisher))
	}

	service, err := resolve.New(admission, orchestrator, search.NewPostgres(pool), arb, ledger, log, opts...)
	if err != nil {
		log.Error("resolve service init failed", "error", err)
		os.Exit(1)
	}

	router := steeplehttp.NewRouter(steeplehttp.Deps{
		Resolve: resolvehandler.New(service, log),
		Keys:    keys,
		Health:  pool,
		Logger:  log,
	})
	srv := httpserver.New(cfg.Server.Addr, router)

	go func() {
		log.Info("starting steeple", "addr", cfg.Server.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("server error", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	log.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("graceful shutdown failed", "error", err)
		os.Exit(1)
	}
}
