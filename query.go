package raxis

import (
	"github.com/rotisserie/eris"

	"github.com/Jonster5/raxis/filter"
	"github.com/Jonster5/raxis/query"
	"github.com/Jonster5/raxis/types"
)

// Query returns a view over all entities carrying every listed component and
// passing every filter. Views obtained for equivalent definitions share one
// incrementally maintained handler, so iterating a view never rescans the
// world. The view stays valid across frames; fetch it once per system call
// or cache it, either way reads are O(matches).
//
// Filters are restricted to With and Without. For ad-hoc composite searches
// use World.FindEntities.
func Query(wCtx WorldContext, components []types.Component, filters ...filter.ComponentFilter) (*query.View, error) {
	w := wCtx.world()

	metas := make([]types.ComponentMetadata, len(components))
	for i, comp := range components {
		meta, err := w.componentManager.GetComponentByName(comp.Name())
		if err != nil {
			return nil, err
		}
		metas[i] = meta
	}
	def := query.Definition{Components: metas, Filters: filters}

	sc := wCtx.scope()
	key := def.Key()
	if view, ok := sc.views[key]; ok {
		return view, nil
	}

	handler, err := w.queryManager.Get(def)
	if err != nil {
		return nil, err
	}
	view := query.NewView(handler, wCtx.Logger())
	sc.views[key] = view
	return view, nil
}

// ResultComponent extracts the component of type T from a query result.
func ResultComponent[T types.Component](r query.Result) (*T, error) {
	var t T
	comp, ok := r.Component(t.Name())
	if !ok {
		return nil, eris.Errorf("component %q is not part of the query definition", t.Name())
	}
	value, ok := comp.(T)
	if !ok {
		return nil, eris.Errorf("component %q has unexpected concrete type %T", t.Name(), comp)
	}
	return &value, nil
}
