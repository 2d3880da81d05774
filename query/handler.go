package query

import (
	"github.com/kamstrup/intmap"
	"github.com/rotisserie/eris"

	"github.com/Jonster5/raxis/filter"
	"github.com/Jonster5/raxis/storage"
	"github.com/Jonster5/raxis/types"
)

// ErrCompositeFilter is returned when a cached query definition carries a
// composite filter. Only With/Without predicates can be maintained
// incrementally; composite trees are for ad-hoc searches.
var ErrCompositeFilter = eris.New("cached queries accept only With/Without filters")

type entry struct {
	id types.EntityID
	// comps holds the entity's required components, aligned with the
	// definition's component list, so result retrieval never touches the
	// sparse tables.
	comps []types.Component
}

// Handler owns the authoritative match state for one query definition. It is
// shared by every system that requests an equivalent definition; incremental
// revalidation on store mutations is what turns query evaluation from
// O(entities x queries) per read into O(1) amortized per mutation.
type Handler struct {
	def Definition
	key string

	requiredIDs []types.ComponentID
	withIDs     []types.ComponentID
	withoutIDs  []types.ComponentID
	affected    map[types.ComponentID]struct{}

	// entries is the matching set in insertion order; index maps entity ID to
	// its position. Removal swap-deletes, so order is not stable across
	// revalidations.
	entries []entry
	index   *intmap.Map[types.EntityID, int32]

	store *storage.Store
}

type componentResolver func(name string) (types.ComponentMetadata, error)

func newHandler(def Definition, store *storage.Store, resolve componentResolver) (*Handler, error) {
	h := &Handler{
		def:      def,
		key:      def.Key(),
		affected: make(map[types.ComponentID]struct{}),
		entries:  make([]entry, 0),
		index:    intmap.New[types.EntityID, int32](64),
		store:    store,
	}

	for _, meta := range def.Components {
		h.requiredIDs = append(h.requiredIDs, meta.ID())
		h.affected[meta.ID()] = struct{}{}
	}
	for _, f := range def.Filters {
		term, ok := filter.Term(f)
		if !ok {
			return nil, eris.Wrap(ErrCompositeFilter, f.String())
		}
		meta, err := resolve(term.Name())
		if err != nil {
			return nil, err
		}
		if filter.IsExclusion(f) {
			h.withoutIDs = append(h.withoutIDs, meta.ID())
		} else {
			h.withIDs = append(h.withIDs, meta.ID())
		}
		h.affected[meta.ID()] = struct{}{}
	}

	return h, nil
}

// Definition returns the definition this handler maintains.
func (h *Handler) Definition() Definition {
	return h.def
}

// Key returns the handler's structural identity.
func (h *Handler) Key() string {
	return h.key
}

// AffectedBy reports whether a mutation of the given component type can
// change this handler's state. The store consults it so only relevant
// handlers revalidate on each mutation.
func (h *Handler) AffectedBy(comp types.ComponentID) bool {
	_, ok := h.affected[comp]
	return ok
}

// Contains reports whether the entity is currently in the matching set.
func (h *Handler) Contains(id types.EntityID) bool {
	_, ok := h.index.Get(id)
	return ok
}

// ValidateEntity re-evaluates the entity against the definition: exclusions
// first, then filter requirements, then required component types, each
// failing fast. It is idempotent; revalidating an unchanged entity produces
// no observable change.
func (h *Handler) ValidateEntity(id types.EntityID) {
	match := h.store.IsLive(id)
	if match {
		for _, comp := range h.withoutIDs {
			if h.store.Has(id, comp) {
				match = false
				break
			}
		}
	}
	if match {
		for _, comp := range h.withIDs {
			if !h.store.Has(id, comp) {
				match = false
				break
			}
		}
	}
	var comps []types.Component
	if match {
		comps = make([]types.Component, len(h.requiredIDs))
		for i, comp := range h.requiredIDs {
			c, err := h.store.Get(id, comp)
			if err != nil || c == nil {
				match = false
				break
			}
			comps[i] = c
		}
	}

	pos, present := h.index.Get(id)
	switch {
	case match && present:
		h.entries[pos].comps = comps
	case match:
		h.index.Put(id, int32(len(h.entries)))
		h.entries = append(h.entries, entry{id: id, comps: comps})
	case present:
		h.removeAt(id, pos)
	}
}

// RefreshEntity re-snapshots the cached reference for one component type
// after a replace. Membership is untouched; only insert and delete can change
// With/Without membership.
func (h *Handler) RefreshEntity(id types.EntityID, comp types.ComponentID) {
	pos, present := h.index.Get(id)
	if !present {
		return
	}
	for i, required := range h.requiredIDs {
		if required != comp {
			continue
		}
		c, err := h.store.Get(id, comp)
		if err == nil && c != nil {
			h.entries[pos].comps[i] = c
		}
	}
}

// RemoveEntity drops the entity from the matching set if present.
func (h *Handler) RemoveEntity(id types.EntityID) {
	if pos, ok := h.index.Get(id); ok {
		h.removeAt(id, pos)
	}
}

// Size returns the number of matching entities.
func (h *Handler) Size() int {
	return len(h.entries)
}

// Each calls fn for every matching entity in insertion order until fn
// returns false. The component slice is the handler's cached snapshot and
// must not be mutated.
func (h *Handler) Each(fn func(id types.EntityID, comps []types.Component) bool) {
	for i := range h.entries {
		if !fn(h.entries[i].id, h.entries[i].comps) {
			return
		}
	}
}

func (h *Handler) removeAt(id types.EntityID, pos int32) {
	last := int32(len(h.entries) - 1)
	if pos != last {
		moved := h.entries[last]
		h.entries[pos] = moved
		h.index.Put(moved.id, pos)
	}
	h.entries = h.entries[:last]
	h.index.Del(id)
}
