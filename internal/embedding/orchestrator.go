package embedding

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"golang.org/x/sync/errgroup"

	dErrors "steeple/pkg/domain-errors"
)

// Input carries the normalized query fields to embed.
type Input struct {
	Name    string
	Street  string
	City    string
	State   string
	Zip     string
	Website string
}

// CombinedText joins the present fields in a fixed order. This must stay
// aligned with the registry side so query and stored combined vectors live
// in the same text distribution.
func (in Input) CombinedText() string {
	parts := make([]string, 0, 6)
	for _, p := range []string{in.Name, in.Street, in.City, in.State, in.Zip, in.Website} {
		if p != "" {
			parts = append(parts, p)
		}
	}
	return strings.Join(parts, " ")
}

func (in Input) fieldText(f Field) string {
	switch f {
	case FieldName:
		return in.Name
	case FieldStreet:
		return in.Street
	case FieldCity:
		return in.City
	case FieldWebsite:
		return in.Website
	}
	return ""
}

// Orchestrator fans embedding calls out concurrently: one for the combined
// text plus one per present optional field. Results are tagged by field, not
// by completion order.
type Orchestrator struct {
	embedder Embedder
	logger   *slog.Logger
}

func NewOrchestrator(embedder Embedder, logger *slog.Logger) (*Orchestrator, error) {
	if embedder == nil {
		return nil, fmt.Errorf("embedder is required")
	}
	return &Orchestrator{embedder: embedder, logger: logger}, nil
}

// BuildQuerySet embeds the query. The combined vector is mandatory: its
// failure fails the build. A per-field failure only drops that field's
// vector, which forces its weight to zero downstream.
func (o *Orchestrator) BuildQuerySet(ctx context.Context, in Input) (Set, error) {
	set := Set{Fields: make(map[Field][]float32, len(Fields))}

	var (
		mu          sync.Mutex
		combinedErr error
	)

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		vec, err := o.embedder.EmbedText(gctx, in.CombinedText())
		if err != nil {
			// Cancel the group: without the combined vector nothing
			// downstream can score.
			combinedErr = err
			return err
		}
		mu.Lock()
		set.Combined = vec
		mu.Unlock()
		return nil
	})

	for _, f := range Fields {
		text := in.fieldText(f)
		if text == "" {
			continue
		}
		g.Go(func() error {
			vec, err := o.embedder.EmbedText(gctx, text)
			if err != nil {
				o.logger.WarnContext(ctx, "field embedding failed, degrading to combined-only for this field",
					"field", string(f),
					"error", err,
				)
				return nil
			}
			mu.Lock()
			set.Fields[f] = vec
			mu.Unlock()
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return Set{}, dErrors.Wrap(combinedErr, dErrors.CodeEmbeddingFailed, "combined embedding could not be produced")
	}
	return set, nil
}
