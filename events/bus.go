package events

import (
	"github.com/rs/zerolog"

	"github.com/Jonster5/raxis/types"
)

// VisibilityWindow is the number of frames a written event record stays
// visible before the frame-boundary prune drops it, regardless of read
// activity. The window is a tunable carried over from the engine's original
// behavior; nothing in the bus depends on it being exactly two.
const VisibilityWindow = 2

// record is one pending event. Records are ordered by generation; the global
// per-type generation counter is what reader cursors advance over.
type record struct {
	payload     types.Event
	generation  uint64
	expiryFrame uint64
}

// Bus holds the pending records for one event type. Records are append-only
// and lazily pruned once their expiry frame has passed.
type Bus struct {
	meta       types.EventMetadata
	generation uint64
	records    []record
	// readers are tracked so pruning can force-advance cursors past dropped
	// records; a reader that never drains still cannot see stale data.
	readers []*Reader
	logger  *zerolog.Logger
}

func newBus(meta types.EventMetadata, logger *zerolog.Logger) *Bus {
	return &Bus{
		meta:    meta,
		records: make([]record, 0),
		readers: make([]*Reader, 0),
		logger:  logger,
	}
}

// Name returns the event type name this bus carries.
func (b *Bus) Name() string {
	return b.meta.Name()
}

// Generation returns the bus's current generation.
func (b *Bus) Generation() uint64 {
	return b.generation
}

// Write appends a record stamped with the next generation and an expiry of
// the current frame plus the visibility window. A nil payload is a pure
// signal.
func (b *Bus) Write(payload types.Event, currentFrame uint64) {
	b.generation++
	b.records = append(b.records, record{
		payload:     payload,
		generation:  b.generation,
		expiryFrame: currentFrame + VisibilityWindow,
	})
}

// Prune drops every record whose expiry frame has passed. Readers whose
// cursor is behind a dropped record are advanced to it, so unread records
// never linger past their window.
func (b *Bus) Prune(currentFrame uint64) {
	kept := b.records[:0]
	for _, rec := range b.records {
		if rec.expiryFrame > currentFrame {
			kept = append(kept, rec)
			continue
		}
		for _, r := range b.readers {
			if r.cursor < rec.generation {
				r.cursor = rec.generation
			}
		}
	}
	b.records = kept
}

// NewReader creates a cursor that has observed nothing yet, so any record
// still within its visibility window is delivered on the first read. A
// consumer that obtains its reader in the same frame a producer wrote still
// sees that write; pruning keeps older backlog out.
func (b *Bus) NewReader() *Reader {
	r := &Reader{bus: b}
	b.readers = append(b.readers, r)
	return r
}

// Reader is a generation cursor over one bus. Readers are scoped to the
// system context that created them and must not be shared across systems.
type Reader struct {
	bus    *Bus
	cursor uint64
}

// Available reports whether at least one unconsumed record remains.
func (r *Reader) Available() bool {
	if r.cursor >= r.bus.generation {
		return false
	}
	for _, rec := range r.bus.records {
		if rec.generation > r.cursor {
			return true
		}
	}
	return false
}

// Get returns every record past the cursor, payloads cloned, and advances the
// cursor to the bus's current generation. Returns an empty slice when nothing
// is pending.
func (r *Reader) Get() ([]types.Event, error) {
	out := make([]types.Event, 0)
	for _, rec := range r.bus.records {
		if rec.generation <= r.cursor {
			continue
		}
		if rec.payload == nil {
			out = append(out, nil)
			continue
		}
		cloned, err := r.bus.meta.Clone(rec.payload)
		if err != nil {
			return nil, err
		}
		out = append(out, cloned)
	}
	r.cursor = r.bus.generation
	return out, nil
}

// Clear advances the cursor without returning records, discarding anything
// unread.
func (r *Reader) Clear() {
	r.cursor = r.bus.generation
}

// Writer appends records to one bus. The frame source is injected so the bus
// does not need to know about the frame driver.
type Writer struct {
	bus   *Bus
	frame func() uint64
}

// Send writes a payload to the bus.
func (w *Writer) Send(payload types.Event) {
	w.bus.Write(payload, w.frame())
}

// Notify writes a payload-less record; readers see the event occurred but
// carry no data.
func (w *Writer) Notify() {
	w.bus.Write(nil, w.frame())
}
