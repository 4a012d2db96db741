// Package backfill generates embedding rows for registry organizations that
// do not have one yet, or whose organization row changed after the embedding
// was produced.
package backfill

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"steeple/internal/embedding"
	"steeple/internal/embedding/store"
	"steeple/internal/registry/models"
)

const defaultBatchSize = 50

// Source lists organizations whose embeddings are missing or stale.
type Source interface {
	ListNeedingEmbedding(ctx context.Context, limit int) ([]models.Church, error)
}

// Stats summarizes one backfill run.
type Stats struct {
	Embedded int
	Failed   int
}

// Worker walks the registry in batches and writes one embedding row per
// organization: a combined vector plus per-field vectors for the fields
// the organization has.
type Worker struct {
	source    Source
	embedder  embedding.Embedder
	store     store.Store
	batchSize int
	logger    *slog.Logger
}

type Option func(*Worker)

func WithBatchSize(n int) Option {
	return func(w *Worker) {
		if n > 0 {
			w.batchSize = n
		}
	}
}

func NewWorker(source Source, embedder embedding.Embedder, st store.Store, logger *slog.Logger, opts ...Option) (*Worker, error) {
	if source == nil {
		return nil, fmt.Errorf("source is required")
	}
	if embedder == nil {
		return nil, fmt.Errorf("embedder is required")
	}
	if st == nil {
		return nil, fmt.Errorf("store is required")
	}

	w := &Worker{
		source:    source,
		embedder:  embedder,
		store:     st,
		batchSize: defaultBatchSize,
		logger:    logger,
	}
	for _, opt := range opts {
		opt(w)
	}
	return w, nil
}

// Run drains the backlog. A single organization failing to embed is logged
// and counted, not fatal; a batch that makes no progress at all ends the run
// so a dead provider cannot spin the worker forever.
func (w *Worker) Run(ctx context.Context) (Stats, error) {
	var stats Stats

	for {
		if err := ctx.Err(); err != nil {
			return stats, err
		}

		churches, err := w.source.ListNeedingEmbedding(ctx, w.batchSize)
		if err != nil {
			return stats, fmt.Errorf("list organizations needing embedding: %w", err)
		}
		if len(churches) == 0 {
			return stats, nil
		}

		progressed := 0
		for _, church := range churches {
			if err := w.embedOne(ctx, church); err != nil {
				stats.Failed++
				w.logger.ErrorContext(ctx, "backfill failed for organization",
					"church_id", church.ID.String(),
					"ein", church.EIN,
					"error", err,
				)
				continue
			}
			stats.Embedded++
			progressed++
		}

		if progressed == 0 {
			return stats, fmt.Errorf("no progress in batch of %d, stopping", len(churches))
		}
	}
}

func (w *Worker) embedOne(ctx context.Context, church models.Church) error {
	texts := []string{church.CombinedText()}
	fields := make([]embedding.Field, 0, len(embedding.Fields))
	for _, f := range embedding.Fields {
		text := fieldText(church, f)
		if text == "" {
			continue
		}
		fields = append(fields, f)
		texts = append(texts, text)
	}

	vectors, err := w.embedder.EmbedTexts(ctx, texts)
	if err != nil {
		return fmt.Errorf("embed texts: %w", err)
	}
	if len(vectors) != len(texts) {
		return fmt.Errorf("embedding provider returned %d vectors for %d texts", len(vectors), len(texts))
	}

	set := embedding.Set{
		Combined: vectors[0],
		Fields:   make(map[embedding.Field][]float32, len(fields)),
	}
	for i, f := range fields {
		set.Fields[f] = vectors[i+1]
	}

	return w.store.Upsert(ctx, store.Record{
		ChurchID:  church.ID,
		Set:       set,
		UpdatedAt: time.Now().UTC(),
	})
}

func fieldText(c models.Church, f embedding.Field) string {
	switch f {
	case embedding.FieldName:
		return c.Name
	case embedding.FieldStreet:
		return c.Street
	case embedding.FieldCity:
		return c.City
	case embedding.FieldWebsite:
		return c.Website
	}
	return ""
}
