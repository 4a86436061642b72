package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/couchcryptid/cat-map/internal/config"
	"github.com/couchcryptid/cat-map/internal/domain"
	kafkago "github.com/segmentio/kafka-go"
)

// Writer produces viewport events to a Kafka topic.
// It implements activity.BatchLoader.
type Writer struct {
	writer *kafkago.Writer
	logger *slog.Logger
}

// NewWriter creates a Kafka producer for the configured viewport topic.
func NewWriter(cfg *config.Config, logger *slog.Logger) *Writer {
	w := &kafkago.Writer{
		Addr:                   kafkago.TCP(cfg.KafkaBrokers...),
		Topic:                  cfg.KafkaViewportTopic,
		Balancer:               &kafkago.Hash{},
		RequiredAcks:           kafkago.RequireOne,
		AllowAutoTopicCreation: true,
	}
	return &Writer{writer: w, logger: logger}
}

// LoadBatch serializes and publishes viewport events in a single
// WriteMessages call. Events are keyed by session so one viewer's settles
// stay ordered within a partition.
func (w *Writer) LoadBatch(ctx context.Context, events []domain.ViewportEvent) error {
	if len(events) == 0 {
		return nil
	}
	msgs := make([]kafkago.Message, len(events))
	for i := range events {
		msg, err := serializeToMessage(events[i])
		if err != nil {
			return err
		}
		msgs[i] = msg
	}
	if err := w.writer.WriteMessages(ctx, msgs...); err != nil {
		return fmt.Errorf("write viewport events: %w", err)
	}
	w.logger.Debug("published viewport events", "count", len(msgs))
	return nil
}

func (w *Writer) Close() error {
	return w.writer.Close()
}

// serializeToMessage marshals a ViewportEvent into a Kafka message.
func serializeToMessage(event domain.ViewportEvent) (kafkago.Message, error) {
	data, err := json.Marshal(event)
	if err != nil {
		return kafkago.Message{}, fmt.Errorf("serialize viewport event: %w", err)
	}
	return kafkago.Message{
		Key:   []byte(event.Session),
		Value: data,
		Headers: []kafkago.Header{
			{Key: "kind", Value: []byte(event.Kind)},
			{Key: "settled_at", Value: []byte(event.At.Format(time.RFC3339))},
		},
	}, nil
}
