// Package events publishes news change notifications for downstream
// consumers.
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/segmentio/kafka-go"

	"github.com/bilgisen/sevennews/internal/models"
)

// Change types.
const (
	Created = "created"
	Updated = "updated"
	Deleted = "deleted"
)

// Change is the message body published for every successful mutation.
type Change struct {
	Type string           `json:"type"`
	ID   string           `json:"id"`
	Item *models.NewsItem `json:"item,omitempty"`
	At   int64            `json:"at"`
}

// Publisher sends change notifications.
type Publisher interface {
	Publish(ctx context.Context, c Change) error
	Close() error
}

// Nop drops every change.
type Nop struct{}

func (Nop) Publish(context.Context, Change) error { return nil }
func (Nop) Close() error                          { return nil }

// messageWriter is the part of *kafka.Writer the producer uses.
type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// Kafka publishes changes to a topic, keyed by news id so every change to
// one item lands on the same partition.
type Kafka struct {
	writer messageWriter
}

func NewKafka(brokers []string, topic string) *Kafka {
	return &Kafka{writer: &kafka.Writer{
		Addr:         kafka.TCP(brokers...),
		Topic:        topic,
		Balancer:     &kafka.Hash{},
		RequiredAcks: kafka.RequireOne,
		WriteTimeout: 5 * time.Second,
	}}
}

func (k *Kafka) Publish(ctx context.Context, c Change) error {
	if c.At == 0 {
		c.At = models.NowMillis()
	}
	value, err := json.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal change: %w", err)
	}

	msg := kafka.Message{
		Key:   []byte(c.ID),
		Value: value,
		Time:  time.UnixMilli(c.At),
	}
	if err := k.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("failed to write message to Kafka: %w", err)
	}
	return nil
}

func (k *Kafka) Close() error {
	return k.writer.Close()
}
