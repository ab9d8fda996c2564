package events

// Interface assertion
var _ Emitter = (*Buffer)(nil)

// Buffer is an Emitter which keeps events in a slice until they are
// flushed. Events emitted while executing a block stay in the buffer so
// they can be dropped if the block is discarded.
type Buffer struct {
	capacity int
	events   []Event
}

// NewBuffer returns an empty buffer with the given initial capacity.
func NewBuffer(capacity int) *Buffer {
	return &Buffer{
		capacity: capacity,
		events:   make([]Event, 0, capacity),
	}
}

// Len returns the number of events buffered.
func (b *Buffer) Len() int {
	return len(b.events)
}

// Emit buffers an event.
func (b *Buffer) Emit(ev Event) {
	b.events = append(b.events, ev)
}

// Events returns the buffered events in emission order.
func (b *Buffer) Events() []Event {
	return b.events
}

// Mark returns a position that Rollback can return the buffer to.
func (b *Buffer) Mark() int {
	return len(b.events)
}

// Rollback drops every event emitted after mark.
func (b *Buffer) Rollback(mark int) {
	if mark < len(b.events) {
		b.events = b.events[:mark]
	}
}

// Flush emits every buffered event to next in order and clears the buffer.
func (b *Buffer) Flush(next Emitter) {
	for _, ev := range b.events {
		next.Emit(ev)
	}
	b.Reset()
}

// Reset clears the buffer.
func (b *Buffer) Reset() {
	b.events = make([]Event, 0, b.capacity)
}
