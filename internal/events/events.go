// Package events publishes watch lifecycle events.
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/segmentio/kafka-go"

	"watchflip/internal/domain"
)

type Publisher interface {
	Publish(ctx context.Context, e domain.WatchEvent) error
	Close() error
}

// Nop drops every event. Used when no brokers are configured.
type Nop struct{}

func (Nop) Publish(context.Context, domain.WatchEvent) error { return nil }
func (Nop) Close() error                                     { return nil }

type kafkaPublisher struct {
	writer *kafka.Writer
}

// NewKafka returns a publisher writing JSON events keyed by watch id.
func NewKafka(brokers []string, topic string) Publisher {
	writer := &kafka.Writer{
		Addr:                   kafka.TCP(brokers...),
		Topic:                  topic,
		Balancer:               &kafka.Hash{},
		BatchSize:              100,
		BatchTimeout:           10 * time.Millisecond,
		RequiredAcks:           kafka.RequireOne,
		Compression:            kafka.Snappy,
		AllowAutoTopicCreation: true,
	}
	return &kafkaPublisher{writer: writer}
}

func (p *kafkaPublisher) Publish(ctx context.Context, e domain.WatchEvent) error {
	payload, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("marshal watch event: %w", err)
	}
	msg := kafka.Message{
		Key:   []byte(e.WatchID),
		Value: payload,
		Time:  e.Timestamp,
		Headers: []kafka.Header{
			{Key: "event-type", Value: []byte(e.Type)},
		},
	}

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("write watch event to kafka: %w", err)
	}
	return nil
}

func (p *kafkaPublisher) Close() error {
	return p.writer.Close()
}

// Recorder keeps events in memory; tests use it to assert what was published.
type Recorder struct {
	mu     sync.Mutex
	events []domain.WatchEvent
}

func (r *Recorder) Publish(_ context.Context, e domain.WatchEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, e)
	return nil
}

// Events returns a copy of what has been published so far.
func (r *Recorder) Events() []domain.WatchEvent {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]domain.WatchEvent(nil), r.events...)
}

func (r *Recorder) Close() error { return nil }
