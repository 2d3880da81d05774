package types

import "math"

// EntityID is an opaque identifier for an entity. It carries no data itself;
// it is a key into component storage.
type EntityID uint64

// MaxEntityID bounds the allocatable ID space. IDs are recycled on destroy, so
// the bound is only reachable if this many entities are live at once.
const MaxEntityID = EntityID(math.MaxUint32)

// BadID is returned alongside errors from operations that produce an EntityID.
const BadID = EntityID(math.MaxUint64)

// ComponentID identifies a registered component type. It is assigned at
// registration time and stable for the lifetime of the world.
type ComponentID int

// EventID identifies a registered event type.
type EventID int
