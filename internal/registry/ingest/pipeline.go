package ingest

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/cenkalti/backoff/v4"

	"steeple/internal/registry/store"
)

const defaultBatchSize = 100

// Stats summarizes one ingestion run.
type Stats struct {
	Parsed     int
	Skipped    int
	Classified int
	Inserted   int
}

// Ingester filters extract rows to candidate churches and upserts them in
// batches. Each batch retries with capped exponential backoff before the run
// fails.
type Ingester struct {
	store      store.Store
	batchSize  int
	maxElapsed time.Duration
	logger     *slog.Logger
}

type Option func(*Ingester)

func WithBatchSize(n int) Option {
	return func(i *Ingester) {
		if n > 0 {
			i.batchSize = n
		}
	}
}

func WithMaxElapsed(d time.Duration) Option {
	return func(i *Ingester) {
		i.maxElapsed = d
	}
}

func New(s store.Store, logger *slog.Logger, opts ...Option) (*Ingester, error) {
	if s == nil {
		return nil, fmt.Errorf("registry store is required")
	}
	ing := &Ingester{
		store:      s,
		batchSize:  defaultBatchSize,
		maxElapsed: 2 * time.Minute,
		logger:     logger,
	}
	for _, opt := range opts {
		opt(ing)
	}
	return ing, nil
}

// Run parses the extract, classifies candidate churches and loads them.
func (i *Ingester) Run(ctx context.Context, r io.Reader) (Stats, error) {
	rows, skipped, err := ParseExtract(r)
	if err != nil {
		return Stats{}, err
	}

	stats := Stats{Parsed: len(rows), Skipped: skipped}

	churches := rows[:0]
	for _, row := range rows {
		if IsLikelyChurch(row) {
			churches = append(churches, row)
		}
	}
	stats.Classified = len(churches)

	batches := (len(churches) + i.batchSize - 1) / i.batchSize
	for b := 0; b < len(churches); b += i.batchSize {
		end := min(b+i.batchSize, len(churches))
		batch := churches[b:end]

		policy := backoff.WithContext(newBatchBackoff(i.maxElapsed), ctx)
		inserted := 0
		err := backoff.Retry(func() error {
			n, err := i.store.UpsertBatch(ctx, batch)
			if err != nil {
				i.logger.WarnContext(ctx, "batch upsert failed, retrying", "batch", b/i.batchSize+1, "error", err)
				return err
			}
			inserted = n
			return nil
		}, policy)
		if err != nil {
			return stats, fmt.Errorf("upsert batch %d/%d: %w", b/i.batchSize+1, batches, err)
		}

		stats.Inserted += inserted
		i.logger.InfoContext(ctx, "batch ingested",
			"batch", b/i.batchSize+1,
			"batches", batches,
			"rows", len(batch),
			"inserted", inserted,
		)
	}
	return stats, nil
}

func newBatchBackoff(maxElapsed time.Duration) backoff.BackOff {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = time.Second
	b.MaxInterval = 30 * time.Second
	b.MaxElapsedTime = maxElapsed
	return b
}
