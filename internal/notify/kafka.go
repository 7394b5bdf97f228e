package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/twmb/franz-go/pkg/kgo"
)

// KafkaPublisher produces registry events to a Kafka topic for external
// consumers. Events are keyed by credential ID (or institution for
// authorization events) so per-subject ordering is preserved across
// partitions.
type KafkaPublisher struct {
	client *kgo.Client
	topic  string
	logger *slog.Logger
}

func NewKafkaPublisher(brokers []string, topic string, logger *slog.Logger) (*KafkaPublisher, error) {
	client, err := kgo.NewClient(
		kgo.SeedBrokers(brokers...),
		kgo.DefaultProduceTopic(topic),
		kgo.ProducerBatchCompression(kgo.SnappyCompression()),
	)
	if err != nil {
		return nil, fmt.Errorf("create kafka client: %w", err)
	}
	return &KafkaPublisher{client: client, topic: topic, logger: logger}, nil
}

func (p *KafkaPublisher) Emit(ctx context.Context, event Event) error {
	stamp(&event)
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}

	key := event.CredentialID.String()
	if key == "" {
		key = event.Institution.String()
	}

	record := &kgo.Record{
		Topic: p.topic,
		Key:   []byte(key),
		Value: payload,
	}
	if err := p.client.ProduceSync(ctx, record).FirstErr(); err != nil {
		p.logger.ErrorContext(ctx, "failed to publish registry event",
			"action", event.Action,
			"event_id", event.ID,
			"error", err,
		)
		return fmt.Errorf("produce event: %w", err)
	}
	return nil
}

// Close flushes pending records and releases the client.
func (p *KafkaPublisher) Close() {
	p.client.Close()
}
