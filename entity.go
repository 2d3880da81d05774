package raxis

import (
	"github.com/rotisserie/eris"

	"github.com/Jonster5/raxis/types"
)

// Create creates a single entity carrying the given components.
func Create(wCtx WorldContext, components ...types.Component) (types.EntityID, error) {
	ids, err := CreateMany(wCtx, 1, components...)
	if err != nil {
		return types.BadID, err
	}
	return ids[0], nil
}

// CreateMany creates num entities, each carrying its own copy of the given
// components.
func CreateMany(wCtx WorldContext, num int, components ...types.Component) ([]types.EntityID, error) {
	w := wCtx.world()

	metas := make([]types.ComponentMetadata, len(components))
	for i, comp := range components {
		meta, err := w.componentManager.GetComponentByName(comp.Name())
		if err != nil {
			return nil, err
		}
		metas[i] = meta
	}

	ids := make([]types.EntityID, 0, num)
	for i := 0; i < num; i++ {
		id, err := w.store.Create()
		if err != nil {
			return nil, err
		}
		for j, comp := range components {
			c := comp
			if i > 0 {
				// Entities must not share component data.
				cloned, err := metas[j].Clone(comp)
				if err != nil {
					return nil, err
				}
				c = cloned
			}
			if err := w.store.Insert(id, metas[j].ID(), c); err != nil {
				return nil, err
			}
		}
		ids = append(ids, id)
	}
	wCtx.Logger().Debug().Int("entity_count", num).Msg("created entities")
	return ids, nil
}

// Remove destroys an entity. Its children are destroyed first, depth first,
// and component destruction hooks run for every component removed.
func Remove(wCtx WorldContext, id types.EntityID) error {
	return wCtx.world().store.Destroy(id, false)
}

// ForceRemove destroys an entity even if it was already destroyed during the
// same cascade, still emitting the destruction notification.
func ForceRemove(wCtx WorldContext, id types.EntityID) error {
	return wCtx.world().store.Destroy(id, true)
}

// Exists reports whether the entity is live.
func Exists(wCtx WorldContext, id types.EntityID) bool {
	return wCtx.world().store.IsLive(id)
}

// CloneEntity creates a new entity carrying deep copies of every component
// on the source entity. Hierarchy links are not cloned.
func CloneEntity(wCtx WorldContext, id types.EntityID) (types.EntityID, error) {
	w := wCtx.world()
	if !w.store.IsLive(id) {
		return types.BadID, eris.Wrapf(ErrEntityDoesNotExist, "cannot clone entity %d", id)
	}

	newID, err := w.store.Create()
	if err != nil {
		return types.BadID, err
	}
	for _, compID := range w.store.ComponentIDsOf(id) {
		meta, err := w.componentManager.GetComponentByID(compID)
		if err != nil {
			return types.BadID, err
		}
		comp, err := w.store.Get(id, compID)
		if err != nil {
			return types.BadID, err
		}
		cloned, err := meta.Clone(comp)
		if err != nil {
			return types.BadID, err
		}
		if err := w.store.Insert(newID, compID, cloned); err != nil {
			return types.BadID, err
		}
	}
	return newID, nil
}

// AddComponentTo adds a zero-valued component of type T to an entity. Use
// SetComponent afterwards to fill it in.
func AddComponentTo[T types.Component](wCtx WorldContext, id types.EntityID) error {
	w := wCtx.world()
	var t T
	meta, err := w.componentManager.GetComponentByName(t.Name())
	if err != nil {
		return err
	}
	return w.store.Insert(id, meta.ID(), t)
}

// RemoveComponentFrom removes the component of type T from an entity,
// running its destruction hook first.
func RemoveComponentFrom[T types.Component](wCtx WorldContext, id types.EntityID) error {
	w := wCtx.world()
	var t T
	meta, err := w.componentManager.GetComponentByName(t.Name())
	if err != nil {
		return err
	}
	return w.store.Remove(id, meta.ID())
}

// GetComponent returns a copy of the component of type T on the entity.
// Mutations to the returned value are not visible until written back with
// SetComponent or UpdateComponent.
func GetComponent[T types.Component](wCtx WorldContext, id types.EntityID) (*T, error) {
	w := wCtx.world()
	var t T
	meta, err := w.componentManager.GetComponentByName(t.Name())
	if err != nil {
		return nil, err
	}
	comp, err := w.store.Get(id, meta.ID())
	if err != nil {
		return nil, err
	}
	if comp == nil {
		return nil, eris.Wrapf(ErrComponentNotOnEntity, "component %q, entity %d", t.Name(), id)
	}
	value, ok := comp.(T)
	if !ok {
		return nil, eris.Errorf("component %q has unexpected concrete type %T", t.Name(), comp)
	}
	return &value, nil
}

// SetComponent overwrites the component of type T on the entity. A replace
// never changes query membership, only the cached data.
func SetComponent[T types.Component](wCtx WorldContext, id types.EntityID, component *T) error {
	w := wCtx.world()
	var t T
	meta, err := w.componentManager.GetComponentByName(t.Name())
	if err != nil {
		return err
	}
	if err := w.store.Replace(id, meta.ID(), *component); err != nil {
		return err
	}
	wCtx.Logger().Debug().
		Str("component_name", t.Name()).
		Int("component_id", int(meta.ID())).
		Uint64("entity_id", uint64(id)).
		Msg("component replaced")
	return nil
}

// UpdateComponent reads the component of type T, applies fn, and writes the
// result back.
func UpdateComponent[T types.Component](wCtx WorldContext, id types.EntityID, fn func(*T) *T) error {
	value, err := GetComponent[T](wCtx, id)
	if err != nil {
		return err
	}
	return SetComponent(wCtx, id, fn(value))
}

// HasComponent reports whether the entity carries a component of type T.
func HasComponent[T types.Component](wCtx WorldContext, id types.EntityID) bool {
	w := wCtx.world()
	var t T
	meta, err := w.componentManager.GetComponentByName(t.Name())
	if err != nil {
		return false
	}
	return w.store.Has(id, meta.ID())
}

// SetParent links a child entity under a parent. Destroying the parent later
// destroys the child first.
func SetParent(wCtx WorldContext, child, parent types.EntityID) error {
	return wCtx.world().store.SetParent(child, parent)
}

// ClearParent detaches the entity from its parent, if any.
func ClearParent(wCtx WorldContext, id types.EntityID) error {
	return wCtx.world().store.ClearParent(id)
}

// GetParent returns the entity's parent, if it has one.
func GetParent(wCtx WorldContext, id types.EntityID) (types.EntityID, bool) {
	return wCtx.world().store.Parent(id)
}

// GetChildren returns a copy of the entity's direct children.
func GetChildren(wCtx WorldContext, id types.EntityID) []types.EntityID {
	return wCtx.world().store.Children(id)
}
