package eventsink

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/segmentio/kafka-go"

	"github.com/chainx-org/ChainX-sub003/internal/events"
	"github.com/chainx-org/ChainX-sub003/libs/log"
)

// messageWriter is the part of kafka.Writer the sink uses.
type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// KafkaSink produces one message per event to a topic. Messages are keyed
// by event type and carry the height in a header.
type KafkaSink struct {
	writer messageWriter
	logger log.Logger
}

// NewKafkaSink returns a sink writing synchronously to topic on brokers.
func NewKafkaSink(brokers []string, topic string, logger log.Logger) *KafkaSink {
	return newKafkaSink(&kafka.Writer{
		Addr:         kafka.TCP(brokers...),
		Topic:        topic,
		Balancer:     &kafka.Hash{},
		RequiredAcks: kafka.RequireAll,
		Async:        false,
		BatchTimeout: 10 * time.Millisecond,
	}, logger)
}

func newKafkaSink(w messageWriter, logger log.Logger) *KafkaSink {
	return &KafkaSink{writer: w, logger: logger.With("module", "eventsink")}
}

func (s *KafkaSink) Publish(ctx context.Context, height int64, evs []events.Envelope) error {
	if len(evs) == 0 {
		return nil
	}
	msgs := make([]kafka.Message, 0, len(evs))
	for _, ev := range evs {
		value, err := json.Marshal(ev)
		if err != nil {
			return fmt.Errorf("encoding %s event of block %d: %w", ev.Type, height, err)
		}
		msgs = append(msgs, kafka.Message{
			Key:   []byte(ev.Type),
			Value: value,
			Headers: []kafka.Header{
				{Key: "height", Value: []byte(strconv.FormatInt(height, 10))},
			},
		})
	}
	if err := s.writer.WriteMessages(ctx, msgs...); err != nil {
		return fmt.Errorf("publishing events of block %d: %w", height, err)
	}
	s.logger.Debug("published events", "height", height, "count", len(msgs))
	return nil
}

func (s *KafkaSink) Type() Type { return KAFKA }

func (s *KafkaSink) Stop() error {
	return s.writer.Close()
}
