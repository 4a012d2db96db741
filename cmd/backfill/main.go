// Command backfill generates embedding rows for registry organizations that
// are missing one or whose row changed since it was embedded.
package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"

	"steeple/internal/embedding/backfill"
	embopenai "steeple/internal/embedding/openai"
	embstore "steeple/internal/embedding/store"
	"steeple/internal/platform/config"
	"steeple/internal/platform/logger"
	"steeple/internal/platform/postgres"
	"steeple/internal/registry/store"
)

func main() {
	batchSize := flag.Int("batch-size", 50, "organizations embedded per batch")
	flag.Parse()

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

	embedder, err := embopenai.New(cfg.AI, log)
	if err != nil {
		log.Error("embedder init failed", "error", err)
		os.Exit(1)
	}

	worker, err := backfill.NewWorker(
		store.NewPostgres(pool),
		embedder,
		embstore.NewPostgres(pool),
		log,
		backfill.WithBatchSize(*batchSize),
	)
	if err != nil {
		log.Error("backfill worker init failed", "error", err)
		os.Exit(1)
	}

	stats, err := worker.Run(ctx)
	if err != nil {
		log.Error("backfill failed", "embedded", stats.Embedded, "failed", stats.Failed, "error", err)
		os.Exit(1)
	}
	log.Info("backfill complete", "embedded", stats.Embedded, "failed", stats.Failed)
}
