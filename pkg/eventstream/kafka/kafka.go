// Package kafka publishes memo lifecycle events to a Kafka topic.
// Events are keyed by memo id so all transitions of one memo land on the
// same partition, in order.
package kafka

import (
	"context"
	"encoding/json"
	"fmt"

	kafkago "github.com/segmentio/kafka-go"

	"github.com/memoflow/memoflow/pkg/eventstream"
)

// DefaultTopic is the topic used when none is configured.
const DefaultTopic = "memoflow.memo-events"

// Publisher implements eventstream.Publisher on a Kafka topic.
type Publisher struct {
	writer *kafkago.Writer
}

// Config holds configuration for the Kafka publisher.
type Config struct {
	// Brokers is the list of bootstrap broker addresses. Required.
	Brokers []string

	// Topic is the destination topic. Defaults to DefaultTopic.
	Topic string
}

// NewPublisher creates a Kafka-backed eventstream publisher.
func NewPublisher(cfg Config) (*Publisher, error) {
	if len(cfg.Brokers) == 0 {
		return nil, fmt.Errorf("at least one broker address is required")
	}

	topic := cfg.Topic
	if topic == "" {
		topic = DefaultTopic
	}

	return &Publisher{
		writer: &kafkago.Writer{
			Addr:     kafkago.TCP(cfg.Brokers...),
			Topic:    topic,
			Balancer: &kafkago.Hash{},
		},
	}, nil
}

// PublishMemoEvent writes the event as a JSON message keyed by memo id.
func (p *Publisher) PublishMemoEvent(ctx context.Context, event *eventstream.MemoEvent) error {
	if event == nil {
		return eventstream.ErrNilMemoEvent
	}

	value, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshaling memo event: %w", err)
	}

	err = p.writer.WriteMessages(ctx, kafkago.Message{
		Key:   []byte(event.MemoID),
		Value: value,
	})
	if err != nil {
		return fmt.Errorf("writing memo event: %w", err)
	}

	return nil
}

// Close flushes pending messages and closes the writer.
func (p *Publisher) Close() error {
	return p.writer.Close()
}
