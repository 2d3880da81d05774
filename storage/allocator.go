package storage

import (
	"github.com/rotisserie/eris"

	"github.com/Jonster5/raxis/types"
)

// ErrAllocatorExhausted is returned when the entity ID space is fully
// allocated. It is a return value, not a panic, so callers stay in control.
var ErrAllocatorExhausted = eris.New("entity id space exhausted")

// Allocator issues and recycles entity IDs from a bounded range. Freed IDs are
// reused before the allocation frontier grows, so long-lived worlds with heavy
// entity churn do not run an unbounded ID counter.
type Allocator struct {
	next  types.EntityID
	limit types.EntityID
	// free is a LIFO of recycled IDs. LIFO keeps recently freed slots hot.
	free []types.EntityID
}

// NewAllocator creates an allocator over [0, limit].
func NewAllocator(limit types.EntityID) *Allocator {
	return &Allocator{
		next:  0,
		limit: limit,
		free:  make([]types.EntityID, 0),
	}
}

// Allocate returns an ID that is not currently outstanding.
func (a *Allocator) Allocate() (types.EntityID, error) {
	if n := len(a.free); n > 0 {
		id := a.free[n-1]
		a.free = a.free[:n-1]
		return id, nil
	}
	if a.next > a.limit {
		return types.BadID, ErrAllocatorExhausted
	}
	id := a.next
	a.next++
	return id, nil
}

// Free returns an ID to the pool. The caller must guarantee the ID was live;
// double-freeing would violate the uniqueness invariant for live IDs.
func (a *Allocator) Free(id types.EntityID) {
	a.free = append(a.free, id)
}

// Outstanding returns the number of IDs currently allocated and not freed.
func (a *Allocator) Outstanding() int {
	return int(a.next) - len(a.free)
}
