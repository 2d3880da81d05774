package raxis

import (
	"github.com/rotisserie/eris"

	"github.com/Jonster5/raxis/events"
	"github.com/Jonster5/raxis/types"
)

// EventReader reads events of type T from the point in the stream where the
// reader was created. Records expire a fixed number of frames after they
// were written, whether or not they were read.
type EventReader[T types.Event] struct {
	reader *events.Reader
}

// Available reports whether unread, unexpired events are pending.
func (r *EventReader[T]) Available() bool {
	return r.reader.Available()
}

// Get returns every pending event in write order and advances the reader
// past them. Payloads are copies; mutating them does not affect other
// readers.
func (r *EventReader[T]) Get() ([]T, error) {
	raw, err := r.reader.Get()
	if err != nil {
		return nil, err
	}
	out := make([]T, 0, len(raw))
	for _, ev := range raw {
		if ev == nil {
			// Payload-free Notify record.
			var zero T
			out = append(out, zero)
			continue
		}
		value, ok := ev.(T)
		if !ok {
			return nil, eris.Errorf("event %q has unexpected concrete type %T", ev.Name(), ev)
		}
		out = append(out, value)
	}
	return out, nil
}

// Clear advances the reader past everything currently pending without
// returning it.
func (r *EventReader[T]) Clear() {
	r.reader.Clear()
}

// EventWriter appends events of type T to the stream.
type EventWriter[T types.Event] struct {
	writer *events.Writer
}

// Send appends an event. It becomes visible to readers immediately, within
// the same frame.
func (w *EventWriter[T]) Send(ev T) {
	w.writer.Send(ev)
}

// Notify appends a payload-free record, for events that only signal that
// something happened.
func (w *EventWriter[T]) Notify() {
	w.writer.Notify()
}

// GetEventReader returns the calling scope's reader for event type T. The
// first call creates the reader, starting at the current point in the
// stream; later calls from the same scope return the same reader so the
// cursor persists across frames.
func GetEventReader[T types.Event](wCtx WorldContext) (*EventReader[T], error) {
	w := wCtx.world()
	var t T
	sc := wCtx.scope()
	reader, ok := sc.readers[t.Name()]
	if !ok {
		bus, err := w.eventManager.GetBus(t.Name())
		if err != nil {
			return nil, err
		}
		reader = bus.NewReader()
		sc.readers[t.Name()] = reader
	}
	return &EventReader[T]{reader: reader}, nil
}

// GetEventWriter returns the calling scope's writer for event type T.
func GetEventWriter[T types.Event](wCtx WorldContext) (*EventWriter[T], error) {
	w := wCtx.world()
	var t T
	sc := wCtx.scope()
	writer, ok := sc.writers[t.Name()]
	if !ok {
		var err error
		writer, err = w.eventManager.NewWriter(t.Name(), w.frame.Load)
		if err != nil {
			return nil, err
		}
		sc.writers[t.Name()] = writer
	}
	return &EventWriter[T]{writer: writer}, nil
}
