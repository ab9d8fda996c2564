// Package eventsink publishes the events of committed blocks.
package eventsink

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/chainx-org/ChainX-sub003/config"
	"github.com/chainx-org/ChainX-sub003/internal/events"
	"github.com/chainx-org/ChainX-sub003/libs/log"
)

type Type string

const (
	NULL  Type = "null"
	LOG   Type = "log"
	KAFKA Type = "kafka"
)

// EventSink receives the encoded events of every committed block, in block
// order.
type EventSink interface {
	// Publish delivers the events of one block. It is called once per block
	// even when the block emitted nothing.
	Publish(ctx context.Context, height int64, evs []events.Envelope) error

	// Type returns the sink type.
	Type() Type

	// Stop flushes and releases the sink's resources.
	Stop() error
}

// FromConfig constructs the EventSink selected by cfg.
func FromConfig(cfg *config.EventsConfig, logger log.Logger) (EventSink, error) {
	switch Type(strings.ToLower(cfg.Sink)) {
	case "", NULL, "none":
		return NewNullSink(), nil

	case LOG:
		return NewLogSink(logger), nil

	case KAFKA:
		if len(cfg.KafkaBrokers) == 0 {
			return nil, errors.New("the kafka sink needs at least one broker")
		}
		if cfg.KafkaTopic == "" {
			return nil, errors.New("the kafka sink needs a topic")
		}
		return NewKafkaSink(cfg.KafkaBrokers, cfg.KafkaTopic, logger), nil

	default:
		return nil, fmt.Errorf("unsupported event sink type %q", cfg.Sink)
	}
}

type nullSink struct{}

// NewNullSink returns a sink that drops everything.
func NewNullSink() EventSink { return nullSink{} }

func (nullSink) Publish(context.Context, int64, []events.Envelope) error { return nil }
func (nullSink) Type() Type                                             { return NULL }
func (nullSink) Stop() error                                            { return nil }

// LogSink writes every event to a logger.
type LogSink struct {
	logger log.Logger
}

// NewLogSink returns a sink logging events at info level.
func NewLogSink(logger log.Logger) *LogSink {
	return &LogSink{logger: logger.With("module", "eventsink")}
}

func (s *LogSink) Publish(_ context.Context, height int64, evs []events.Envelope) error {
	for _, ev := range evs {
		s.logger.Info("event", "height", height, "index", ev.Index, "type", ev.Type, "data", string(ev.Data))
	}
	return nil
}

func (s *LogSink) Type() Type { return LOG }

func (s *LogSink) Stop() error { return nil }
