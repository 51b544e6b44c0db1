// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package search

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/segmentio/kafka-go"
)

// MessageWriter is the subset of *kafka.Writer used by [KafkaBackend].
type MessageWriter interface {
	WriteMessages(ctx context.Context, messages ...kafka.Message) error
	Close() error
}

// KafkaBackend publishes a "comic published" event for downstream indexers.
// Messages are keyed by comic id so updates for one comic stay ordered.
type KafkaBackend struct {
	writer MessageWriter
	topic  string
}

// NewKafkaBackend builds a backend writing to topic on brokers.
func NewKafkaBackend(brokers []string, topic string) *KafkaBackend {
	writer := &kafka.Writer{
		Addr:                   kafka.TCP(brokers...),
		Topic:                  topic,
		Balancer:               &kafka.Hash{},
		RequiredAcks:           kafka.RequireOne,
		AllowAutoTopicCreation: true,
	}
	return &KafkaBackend{writer: writer, topic: topic}
}

// NewKafkaBackendWithWriter wraps an existing writer.
func NewKafkaBackendWithWriter(writer MessageWriter, topic string) *KafkaBackend {
	return &KafkaBackend{writer: writer, topic: topic}
}

func (b *KafkaBackend) Name() string { return "kafka" }

func (b *KafkaBackend) Index(ctx context.Context, doc Document) error {
	value, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("encode event: %w", err)
	}

	return b.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(doc.ID),
		Value: value,
		Headers: []kafka.Header{
			{Key: "event", Value: []byte("comic.published")},
		},
	})
}

// Close flushes and closes the underlying writer.
func (b *KafkaBackend) Close() error {
	return b.writer.Close()
}
