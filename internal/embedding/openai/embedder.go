// Package openai implements embedding.Embedder against OpenAI-compatible
// embedding APIs.
package openai

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/tmc/langchaingo/embeddings"
	"github.com/tmc/langchaingo/llms/openai"

	"steeple/internal/embedding"
	"steeple/internal/platform/config"
)

// Embedder wraps a langchaingo embedder with bounded retry and a per-call
// timeout. Retry lives here, in the adapter, so the orchestrator stays free
// of backoff logic.
type Embedder struct {
	embedder    embeddings.Embedder
	callTimeout time.Duration
	logger      *slog.Logger
}

// New creates an embedder from the AI configuration.
func New(cfg config.AI, logger *slog.Logger) (*Embedder, error) {
	opts := []openai.Option{
		openai.WithToken(cfg.Token),
		openai.WithEmbeddingModel(cfg.EmbeddingModel),
	}
	if cfg.BaseURL != "" {
		opts = append(opts, openai.WithBaseURL(cfg.BaseURL))
	}

	client, err := openai.New(opts...)
	if err != nil {
		return nil, fmt.Errorf("create openai client: %w", err)
	}

	embedder, err := embeddings.NewEmbedder(client, embeddings.WithStripNewLines(true))
	if err != nil {
		return nil, fmt.Errorf("create embedder: %w", err)
	}

	return &Embedder{
		embedder:    embedder,
		callTimeout: cfg.CallTimeout,
		logger:      logger.With("component", "openai-embedder"),
	}, nil
}

var _ embedding.Embedder = (*Embedder)(nil)

func (e *Embedder) EmbedText(ctx context.Context, text string) ([]float32, error) {
	vectors, err := e.embed(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	if len(vectors) == 0 {
		return nil, fmt.Errorf("embedding provider returned no vector")
	}
	return vectors[0], nil
}

func (e *Embedder) EmbedTexts(ctx context.Context, texts []string) ([][]float32, error) {
	return e.embed(ctx, texts)
}

func (e *Embedder) embed(ctx context.Context, texts []string) ([][]float32, error) {
	var vectors [][]float32

	policy := backoff.WithContext(newCallBackoff(), ctx)
	err := backoff.Retry(func() error {
		callCtx, cancel := context.WithTimeout(ctx, e.callTimeout)
		defer cancel()

		out, err := e.embedder.EmbedDocuments(callCtx, texts)
		if err != nil {
			e.logger.Warn("embedding call failed", "texts", len(texts), "error", err)
			return err
		}
		vectors = out
		return nil
	}, policy)
	if err != nil {
		return nil, fmt.Errorf("embed %d texts: %w", len(texts), err)
	}
	return vectors, nil
}

// newCallBackoff caps retry at three quick attempts; the resolution pipeline
// would rather degrade a field than stall a request.
func newCallBackoff() backoff.BackOff {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = 200 * time.Millisecond
	b.MaxInterval = 2 * time.Second
	return backoff.WithMaxRetries(b, 2)
}
