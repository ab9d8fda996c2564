// Package events defines the events modules emit while executing a block
// and the buffer that collects them until the block is committed.
package events

import (
	"encoding/json"
	"fmt"
)

// Event is an observable side effect of executing a block.
type Event interface {
	// EventType is the stable name of the event, e.g. "AddBid".
	EventType() string
}

// Emitter receives events as they happen.
type Emitter interface {
	Emit(Event)
}

// Envelope is the serialized form of an event handed to sinks.
type Envelope struct {
	Type   string          `json:"type"`
	Height int64           `json:"height"`
	Index  int             `json:"index"`
	Data   json.RawMessage `json:"data"`
}

// Encode wraps ev, the index-th event of the block at height, into an
// Envelope.
func Encode(height int64, index int, ev Event) (Envelope, error) {
	data, err := json.Marshal(ev)
	if err != nil {
		return Envelope{}, fmt.Errorf("encoding %s event: %w", ev.EventType(), err)
	}
	return Envelope{Type: ev.EventType(), Height: height, Index: index, Data: data}, nil
}

// EncodeAll encodes every event of a block in order.
func EncodeAll(height int64, evs []Event) ([]Envelope, error) {
	out := make([]Envelope, 0, len(evs))
	for i, ev := range evs {
		env, err := Encode(height, i, ev)
		if err != nil {
			return nil, err
		}
		out = append(out, env)
	}
	return out, nil
}

type nopEmitter struct{}

// NopEmitter returns an Emitter that drops every event.
func NopEmitter() Emitter { return nopEmitter{} }

func (nopEmitter) Emit(Event) {}
