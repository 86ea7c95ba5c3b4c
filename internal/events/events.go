// Package events publishes alert transitions to Kafka.
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/segmentio/kafka-go"

	"github.com/DeafMist/legal-radar/internal/alerts"
)

// MessageWriter is the part of kafka.Writer the publisher uses.
type MessageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
}

// Publisher writes one message per transition, keyed by alert id so that all
// transitions of an alert land on the same partition.
type Publisher struct {
	writer MessageWriter
}

// NewPublisher wraps an existing writer.
func NewPublisher(w MessageWriter) *Publisher {
	return &Publisher{writer: w}
}

// NewKafkaWriter builds the writer for the transitions topic.
func NewKafkaWriter(brokers []string, topic string) *kafka.Writer {
	return kafka.NewWriter(kafka.WriterConfig{
		Brokers:      brokers,
		Topic:        topic,
		Balancer:     &kafka.Hash{},
		MaxAttempts:  3,
		WriteTimeout: 5 * time.Second,
	})
}

// PublishTransition implements alerts.Publisher.
func (p *Publisher) PublishTransition(ctx context.Context, t alerts.Transition) error {
	payload, err := json.Marshal(t)
	if err != nil {
		return fmt.Errorf("marshal transition: %w", err)
	}
	msg := kafka.Message{
		Key:   []byte(t.AlertID),
		Value: payload,
		Headers: []kafka.Header{
			{Key: "action", Value: []byte(t.Action)},
		},
	}
	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("write transition: %w", err)
	}
	return nil
}
