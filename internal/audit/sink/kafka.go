// Package sink forwards live audit entries to external systems. Sinks attach
// as ordinary subscribers: they share the bounded-backlog contract, so a
// stalled broker disconnects the sink instead of blocking request handling.
package sink

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strconv"

	"github.com/twmb/franz-go/pkg/kgo"

	"kbgate/internal/audit"
)

// Kafka forwards audit entries to a Kafka topic for SIEM and long-term
// retention pipelines.
type Kafka struct {
	client *kgo.Client
	topic  string
	logger *slog.Logger
}

// NewKafka creates a Kafka sink producing to topic on the given brokers.
func NewKafka(brokers []string, topic string, logger *slog.Logger) (*Kafka, error) {
	client, err := kgo.NewClient(
		kgo.SeedBrokers(brokers...),
		kgo.ProducerBatchCompression(kgo.Lz4Compression()),
	)
	if err != nil {
		return nil, fmt.Errorf("create kafka client: %w", err)
	}
	return &Kafka{client: client, topic: topic, logger: logger}, nil
}

// Run consumes the subscription until it ends or ctx is cancelled. Entries
// are produced keyed by trace id so one request's entries stay in partition
// order. Returns the subscription's terminal error, if any.
func (k *Kafka) Run(ctx context.Context, sub *audit.Subscription) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case entry, ok := <-sub.C:
			if !ok {
				return sub.Err()
			}
			k.produce(ctx, entry)
		}
	}
}

func (k *Kafka) produce(ctx context.Context, entry audit.Entry) {
	payload, err := json.Marshal(entry)
	if err != nil {
		k.logger.ErrorContext(ctx, "kafka sink: marshal entry failed",
			"entry_id", entry.ID, "error", err)
		return
	}
	record := &kgo.Record{
		Topic: k.topic,
		Key:   []byte(entry.TraceID),
		Value: payload,
		Headers: []kgo.RecordHeader{
			{Key: "entry_id", Value: []byte(strconv.FormatUint(entry.ID, 10))},
		},
	}
	k.client.Produce(ctx, record, func(_ *kgo.Record, err error) {
		if err != nil {
			k.logger.ErrorContext(ctx, "kafka sink: produce failed",
				"entry_id", entry.ID, "error", err)
		}
	})
}

// Close flushes pending records and releases the client.
func (k *Kafka) Close() {
	_ = k.client.Flush(context.Background())
	k.client.Close()
}
