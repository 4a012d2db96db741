package audit

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/twmb/franz-go/pkg/kgo"

	"steeple/internal/platform/config"
)

// Publisher fans resolution events out to an external sink. The postgres
// ledger remains the source of truth; publish failures are logged, never
// surfaced to the caller.
type Publisher interface {
	Publish(ctx context.Context, entry Entry) error
	Close()
}

// KafkaPublisher produces one record per ledger entry to a Kafka topic.
type KafkaPublisher struct {
	client *kgo.Client
	topic  string
	logger *slog.Logger
}

// NewKafkaPublisher creates a publisher, or (nil, nil) when no brokers are
// configured.
func NewKafkaPublisher(cfg config.Kafka, logger *slog.Logger) (*KafkaPublisher, error) {
	if len(cfg.Brokers) == 0 {
		return nil, nil
	}

	client, err := kgo.NewClient(
		kgo.SeedBrokers(cfg.Brokers...),
		kgo.DefaultProduceTopic(cfg.Topic),
	)
	if err != nil {
		return nil, fmt.Errorf("create kafka client: %w", err)
	}

	return &KafkaPublisher{client: client, topic: cfg.Topic, logger: logger}, nil
}

type resolutionEvent struct {
	RequestID string   `json:"request_id"`
	APIKeyID  string   `json:"api_key_id"`
	Query     Query    `json:"query"`
	Decision  Decision `json:"decision"`
	CreatedAt string   `json:"created_at"`
}

// Publish produces the entry asynchronously; delivery errors are logged.
func (p *KafkaPublisher) Publish(ctx context.Context, entry Entry) error {
	payload, err := json.Marshal(resolutionEvent{
		RequestID: entry.ID.String(),
		APIKeyID:  entry.APIKeyID.String(),
		Query:     entry.Query,
		Decision:  entry.Decision,
		CreatedAt: entry.CreatedAt.UTC().Format(time.RFC3339Nano),
	})
	if err != nil {
		return fmt.Errorf("marshal resolution event: %w", err)
	}

	record := &kgo.Record{
		Topic: p.topic,
		Key:   []byte(entry.APIKeyID.String()),
		Value: payload,
	}
	p.client.Produce(ctx, record, func(_ *kgo.Record, err error) {
		if err != nil {
			p.logger.Warn("failed to publish resolution event", "request_id", entry.ID, "error", err)
		}
	})
	return nil
}

// Close flushes and releases the Kafka client.
func (p *KafkaPublisher) Close() {
	p.client.Close()
}
