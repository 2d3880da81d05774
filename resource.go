package raxis

import (
	"reflect"

	"github.com/rotisserie/eris"
)

// SetResource stores a world-scoped singleton keyed by its type. Setting a
// second resource of the same type is a caller error.
func SetResource[T any](wCtx WorldContext, resource T) error {
	w := wCtx.world()
	key := reflect.TypeOf(resource)

	w.resourcesMu.Lock()
	defer w.resourcesMu.Unlock()
	if _, ok := w.resources[key]; ok {
		return eris.Wrapf(ErrDuplicateResource, "resource of type %s", key)
	}
	w.resources[key] = resource
	return nil
}

// GetResource returns the world-scoped resource of type T. An absent
// resource is not an error; the second return reports presence.
func GetResource[T any](wCtx WorldContext) (T, bool) {
	w := wCtx.world()
	var t T
	key := reflect.TypeOf(t)

	w.resourcesMu.RLock()
	defer w.resourcesMu.RUnlock()
	res, ok := w.resources[key]
	if !ok {
		return t, false
	}
	return res.(T), true
}

// SetLocalResource stores a singleton private to the calling system's scope.
// Two systems can hold local resources of the same type without colliding.
func SetLocalResource[T any](wCtx WorldContext, resource T) error {
	sc := wCtx.scope()
	key := reflect.TypeOf(resource)
	if _, ok := sc.localResources[key]; ok {
		return eris.Wrapf(ErrDuplicateResource, "local resource of type %s", key)
	}
	sc.localResources[key] = resource
	return nil
}

// GetLocalResource returns the calling scope's resource of type T, if set.
func GetLocalResource[T any](wCtx WorldContext) (T, bool) {
	var t T
	key := reflect.TypeOf(t)
	res, ok := wCtx.scope().localResources[key]
	if !ok {
		return t, false
	}
	return res.(T), true
}
