package storage

import (
	"fmt"

	"github.com/kamstrup/intmap"
	"github.com/rotisserie/eris"
	"github.com/rs/zerolog"

	"github.com/Jonster5/raxis/types"
)

var (
	ErrTableNotRegistered       = eris.New("component table not registered")
	ErrTableAlreadyRegistered   = eris.New("component table already registered")
	ErrComponentAlreadyOnEntity = eris.New("component already on entity")
	ErrComponentNotOnEntity     = eris.New("component not on entity")
	ErrEntityDoesNotExist       = eris.New("entity does not exist")
)

// Listener receives store mutation notifications. The query cache implements
// this to keep its matching sets incremental instead of rescanning entities.
type Listener interface {
	// OnComponentChanged fires after an insert or delete of the given
	// component type on the given entity. Presence may have toggled.
	OnComponentChanged(id types.EntityID, comp types.ComponentID)
	// OnComponentReplaced fires after a replace. Presence did not toggle;
	// only cached references need refreshing.
	OnComponentReplaced(id types.EntityID, comp types.ComponentID)
	// OnEntityDestroyed fires after an entity is fully destroyed.
	OnEntityDestroyed(id types.EntityID)
}

// noopListener is installed until the world wires the query cache in.
type noopListener struct{}

func (noopListener) OnComponentChanged(types.EntityID, types.ComponentID)  {}
func (noopListener) OnComponentReplaced(types.EntityID, types.ComponentID) {}
func (noopListener) OnEntityDestroyed(types.EntityID)                      {}

// table is the per-component-type sparse array. Slot i is populated iff
// entity i carries an instance of the type.
type table struct {
	comps []types.Component
}

func (t *table) get(id types.EntityID) types.Component {
	if id >= types.EntityID(len(t.comps)) {
		return nil
	}
	return t.comps[id]
}

func (t *table) set(id types.EntityID, c types.Component) {
	if id >= types.EntityID(len(t.comps)) {
		grown := make([]types.Component, id+1)
		copy(grown, t.comps)
		t.comps = grown
	}
	t.comps[id] = c
}

func (t *table) clear(id types.EntityID) {
	if id < types.EntityID(len(t.comps)) {
		t.comps[id] = nil
	}
}

// Store is the substrate every other module reads and writes: a mapping from
// component type to a sparse array of instances indexed by entity ID, plus the
// per-entity hierarchy node. All mutation is serialized by the world's frame
// driver, so the store itself holds no locks.
type Store struct {
	allocator *Allocator
	tables    map[types.ComponentID]*table
	nodes     *intmap.Map[types.EntityID, *node]
	// live holds all live entity IDs in spawn order; node.livePos indexes
	// into it so removal is O(1) via swap-remove.
	live     []types.EntityID
	listener Listener
	logger   *zerolog.Logger
}

var _ types.EntityMutator = (*Store)(nil)

// NewStore creates an empty store backed by the given allocator.
func NewStore(allocator *Allocator, logger *zerolog.Logger) *Store {
	return &Store{
		allocator: allocator,
		tables:    make(map[types.ComponentID]*table),
		nodes:     intmap.New[types.EntityID, *node](256),
		live:      make([]types.EntityID, 0),
		listener:  noopListener{},
		logger:    logger,
	}
}

// SetListener installs the mutation listener. There is exactly one; the query
// manager fans notifications out to its handlers.
func (s *Store) SetListener(l Listener) {
	s.listener = l
}

// RegisterTable creates the empty sparse array for a newly registered
// component type.
func (s *Store) RegisterTable(comp types.ComponentID) error {
	if _, ok := s.tables[comp]; ok {
		return eris.Wrap(ErrTableAlreadyRegistered, fmt.Sprintf("component id %d", comp))
	}
	s.tables[comp] = &table{}
	return nil
}

// Create allocates a fresh entity with an empty hierarchy node.
func (s *Store) Create() (types.EntityID, error) {
	id, err := s.allocator.Allocate()
	if err != nil {
		return types.BadID, err
	}
	n := &node{
		children: nil,
		livePos:  len(s.live),
	}
	s.nodes.Put(id, n)
	s.live = append(s.live, id)
	s.logger.Debug().Uint64("entity_id", uint64(id)).Msg("entity created")
	return id, nil
}

// IsLive reports whether the given ID currently names a live entity.
func (s *Store) IsLive(id types.EntityID) bool {
	_, ok := s.nodes.Get(id)
	return ok
}

// LiveCount returns the number of live entities.
func (s *Store) LiveCount() int {
	return len(s.live)
}

// EachLive calls fn for every live entity in spawn order until fn returns
// false. fn must not mutate the store.
func (s *Store) EachLive(fn func(id types.EntityID) bool) {
	for _, id := range s.live {
		if !fn(id) {
			return
		}
	}
}

// Insert stores a component instance on an entity. The entity must not
// already hold an instance of the type.
func (s *Store) Insert(id types.EntityID, comp types.ComponentID, c types.Component) error {
	t, ok := s.tables[comp]
	if !ok {
		return eris.Wrap(ErrTableNotRegistered, fmt.Sprintf("component id %d", comp))
	}
	if !s.IsLive(id) {
		return eris.Wrap(ErrEntityDoesNotExist, fmt.Sprintf("entity %d", id))
	}
	if t.get(id) != nil {
		return eris.Wrap(ErrComponentAlreadyOnEntity,
			fmt.Sprintf("component %q on entity %d", c.Name(), id))
	}
	t.set(id, c)
	s.listener.OnComponentChanged(id, comp)
	return nil
}

// Replace overwrites the slot unconditionally. The entity need not previously
// hold an instance. Replace never changes query membership; handlers only
// refresh their cached reference.
func (s *Store) Replace(id types.EntityID, comp types.ComponentID, c types.Component) error {
	t, ok := s.tables[comp]
	if !ok {
		return eris.Wrap(ErrTableNotRegistered, fmt.Sprintf("component id %d", comp))
	}
	if !s.IsLive(id) {
		return eris.Wrap(ErrEntityDoesNotExist, fmt.Sprintf("entity %d", id))
	}
	t.set(id, c)
	s.listener.OnComponentReplaced(id, comp)
	return nil
}

// Remove deletes a component from an entity, invoking its destroy hook first.
func (s *Store) Remove(id types.EntityID, comp types.ComponentID) error {
	t, ok := s.tables[comp]
	if !ok {
		return eris.Wrap(ErrTableNotRegistered, fmt.Sprintf("component id %d", comp))
	}
	c := t.get(id)
	if c == nil {
		return eris.Wrap(ErrComponentNotOnEntity,
			fmt.Sprintf("component id %d on entity %d", comp, id))
	}
	if d, ok := c.(types.Destroyable); ok {
		d.OnDestroy(s, id)
	}
	t.clear(id)
	s.listener.OnComponentChanged(id, comp)
	return nil
}

// Get returns the component instance of the given type on the entity, or nil
// if the entity does not hold one.
func (s *Store) Get(id types.EntityID, comp types.ComponentID) (types.Component, error) {
	t, ok := s.tables[comp]
	if !ok {
		return nil, eris.Wrap(ErrTableNotRegistered, fmt.Sprintf("component id %d", comp))
	}
	return t.get(id), nil
}

// Has reports whether the entity currently holds an instance of the type.
func (s *Store) Has(id types.EntityID, comp types.ComponentID) bool {
	t, ok := s.tables[comp]
	if !ok {
		return false
	}
	return t.get(id) != nil
}

// ComponentIDsOf returns the IDs of every component type the entity holds.
// The order is not deterministic.
func (s *Store) ComponentIDsOf(id types.EntityID) []types.ComponentID {
	var out []types.ComponentID
	for compID, t := range s.tables {
		if t.get(id) != nil {
			out = append(out, compID)
		}
	}
	return out
}

// Destroy tears an entity down: children first (depth-first), then every
// present component's destroy hook, then the hierarchy node itself. The ID is
// freed for reuse only after teardown completes. Destroying a non-live entity
// is a no-op unless force is set.
func (s *Store) Destroy(id types.EntityID, force bool) error {
	n, ok := s.nodes.Get(id)
	if !ok {
		if !force {
			s.logger.Debug().Uint64("entity_id", uint64(id)).Msg("destroy of unknown entity skipped")
			return nil
		}
		// Forced destroy of a non-live entity still scrubs it from any
		// handler state so cleanup is idempotent.
		s.listener.OnEntityDestroyed(id)
		return nil
	}

	// Remove the node up front so a re-entrant destroy of this entity from a
	// component hook resolves as non-live instead of recursing.
	s.nodes.Del(id)
	s.removeLive(n.livePos)

	children := append([]types.EntityID(nil), n.children...)
	for _, child := range children {
		if err := s.Destroy(child, true); err != nil {
			return err
		}
	}

	for _, t := range s.tables {
		c := t.get(id)
		if c == nil {
			continue
		}
		if d, ok := c.(types.Destroyable); ok {
			d.OnDestroy(s, id)
		}
		t.clear(id)
	}

	if n.hasParent {
		s.detachChild(n.parent, id)
	}

	s.allocator.Free(id)
	s.listener.OnEntityDestroyed(id)
	s.logger.Debug().Uint64("entity_id", uint64(id)).Msg("entity destroyed")
	return nil
}

// DestroyEntity implements types.EntityMutator for component destroy hooks.
func (s *Store) DestroyEntity(id types.EntityID) error {
	return s.Destroy(id, false)
}

// RemoveComponent implements types.EntityMutator for component destroy hooks.
func (s *Store) RemoveComponent(id types.EntityID, comp types.ComponentID) error {
	return s.Remove(id, comp)
}

func (s *Store) removeLive(pos int) {
	last := len(s.live) - 1
	if pos != last {
		moved := s.live[last]
		s.live[pos] = moved
		if mn, ok := s.nodes.Get(moved); ok {
			mn.livePos = pos
		}
	}
	s.live = s.live[:last]
}
