// Package notify fans out order-status changes to Kafka, one message per
// changed order, keyed by order id.
package notify

import (
	"context"
	"encoding/json"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/segmentio/kafka-go"

	"brokkr/internal/common"
)

// Producer publishes final order snapshots. It satisfies engine.Notifier.
type Producer struct {
	writer *kafka.Writer
}

// NewProducer creates a producer for the given brokers and topic.
func NewProducer(brokers []string, topic string) *Producer {
	return &Producer{
		writer: &kafka.Writer{
			Addr:         kafka.TCP(brokers...),
			Topic:        topic,
			RequiredAcks: kafka.RequireAll,
			Async:        false,
			BatchTimeout: 10 * time.Millisecond,
		},
	}
}

// OrderUpdated publishes the order snapshot. Delivery failures are logged;
// notification is independent of the commit step and never blocks it.
func (p *Producer) OrderUpdated(ctx context.Context, o common.Order) {
	val, err := json.Marshal(o)
	if err != nil {
		log.Error().Err(err).Stringer("order", o.ID).Msg("could not encode notification")
		return
	}
	err = p.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(o.ID.String()),
		Value: val,
	})
	if err != nil {
		log.Error().Err(err).Stringer("order", o.ID).Msg("could not publish notification")
	}
}

// Close flushes and closes the underlying writer.
func (p *Producer) Close() error {
	return p.writer.Close()
}
