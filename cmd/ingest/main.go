// Command ingest loads an IRS Exempt Organizations extract CSV into the
// registry, keeping only rows classified as churches.
package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"

	"steeple/internal/platform/config"
	"steeple/internal/platform/logger"
	"steeple/internal/platform/postgres"
	"steeple/internal/registry/ingest"
	"steeple/internal/registry/store"
)

func main() {
	var (
		path      = flag.String("file", "", "path to the extract CSV (required)")
		batchSize = flag.Int("batch-size", 100, "rows per insert batch")
	)
	flag.Parse()

	cfg := config.FromEnv()
	log := logger.New()

	if *path == "" {
		log.Error("missing required -file flag")
		os.Exit(2)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	f, err := os.Open(*path)
	if err != nil {
		log.Error("open extract file", "path", *path, "error", err)
		os.Exit(1)
	}
	defer f.Close()

	pool, err := postgres.New(ctx, cfg.Postgres)
	if err != nil {
		log.Error("postgres connection failed", "error", err)
		os.Exit(1)
	}
	defer pool.Close()

	ingester, err := ingest.New(store.NewPostgres(pool), log, ingest.WithBatchSize(*batchSize))
	if err != nil {
		log.Error("ingester init failed", "error", err)
		os.Exit(1)
	}

	stats, err := ingester.Run(ctx, f)
	if err != nil {
		log.Error("ingest failed", "error", err)
		os.Exit(1)
	}
	log.Info("ingest complete",
		"parsed", stats.Parsed,
		"skipped", stats.Skipped,
		"classified", stats.Classified,
		"inserted", stats.Inserted,
	)
}
