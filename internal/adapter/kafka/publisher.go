// Package kafka publishes served predictions to a Kafka topic.
package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/couchcryptid/fire-weather-api/internal/domain"
	"github.com/couchcryptid/fire-weather-api/internal/observability"
	kafkago "github.com/segmentio/kafka-go"
)

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafkago.Message) error
	Close() error
}

// Publisher implements predict.Recorder by producing one message per prediction.
type Publisher struct {
	writer  messageWriter
	metrics *observability.Metrics
	logger  *slog.Logger
}

// NewPublisher creates an asynchronous Kafka producer for topic. Delivery
// results are reported through metrics and logs, never to the caller.
func NewPublisher(brokers []string, topic string, metrics *observability.Metrics, logger *slog.Logger) *Publisher {
	p := &Publisher{metrics: metrics, logger: logger}
	p.writer = &kafkago.Writer{
		Addr:                   kafkago.TCP(brokers...),
		Topic:                  topic,
		Balancer:               &kafkago.Hash{},
		RequiredAcks:           kafkago.RequireAll,
		Async:                  true,
		BatchTimeout:           50 * time.Millisecond,
		AllowAutoTopicCreation: true,
		Completion:             p.onCompletion,
	}
	return p
}

// Record serializes p and queues it for delivery.
func (p *Publisher) Record(ctx context.Context, pred domain.Prediction) error {
	msg, err := serializeToMessage(pred)
	if err != nil {
		return err
	}
	return p.writer.WriteMessages(ctx, msg)
}

// Close flushes queued messages and closes the producer.
func (p *Publisher) Close() error {
	return p.writer.Close()
}

func (p *Publisher) onCompletion(msgs []kafkago.Message, err error) {
	if err != nil {
		p.metrics.RecorderFailures.WithLabelValues("events").Add(float64(len(msgs)))
		p.logger.Error("publish prediction events failed", "count", len(msgs), "error", err)
		return
	}
	p.metrics.EventsPublished.Add(float64(len(msgs)))
}

// serializeToMessage marshals a Prediction into a Kafka message keyed by its ID.
func serializeToMessage(pred domain.Prediction) (kafkago.Message, error) {
	data, err := json.Marshal(pred)
	if err != nil {
		return kafkago.Message{}, fmt.Errorf("serialize prediction: %w", err)
	}
	return kafkago.Message{
		Key:   []byte(pred.ID),
		Value: data,
		Headers: []kafkago.Header{
			{Key: "region", Value: []byte(domain.RegionName(pred.Input.Region))},
			{Key: "predicted_at", Value: []byte(pred.Timestamp.Format(time.RFC3339))},
		},
	}, nil
}
