package query

import (
	"github.com/rs/zerolog"

	"github.com/Jonster5/raxis/types"
)

// Result is one matching entity together with its required components, in
// definition order. The component values are the handler's cached snapshot;
// mutate state through replace, not through results.
type Result struct {
	Entity types.EntityID
	comps  []types.Component
	def    *Definition
}

// Components returns the entity's required components in definition order.
func (r Result) Components() []types.Component {
	return r.comps
}

// Component returns the component with the given name, if the definition
// includes it.
func (r Result) Component(name string) (types.Component, bool) {
	for i, meta := range r.def.Components {
		if meta.Name() == name {
			return r.comps[i], true
		}
	}
	return nil, false
}

// View is a system's handle onto a shared query handler. Views are scoped to
// the system context that created them and must not be shared across systems;
// sharing the underlying handler is the caching mechanism, sharing the view
// is not.
type View struct {
	handler *Handler
	logger  *zerolog.Logger
}

// NewView binds a view to a handler. The world's context manager calls this;
// application code obtains views through its system context.
func NewView(handler *Handler, logger *zerolog.Logger) *View {
	return &View{handler: handler, logger: logger}
}

// Size returns the number of entities currently matching the query.
func (v *View) Size() int {
	return v.handler.Size()
}

// Empty reports whether no entity matches the query.
func (v *View) Empty() bool {
	return v.handler.Size() == 0
}

// Each calls fn for every match in insertion order until fn returns false.
func (v *View) Each(fn func(Result) bool) {
	def := &v.handler.def
	v.handler.Each(func(id types.EntityID, comps []types.Component) bool {
		return fn(Result{Entity: id, comps: comps, def: def})
	})
}

// Results returns one Result per matching entity, in insertion order. The
// order is not guaranteed stable across revalidations.
func (v *View) Results() []Result {
	out := make([]Result, 0, v.handler.Size())
	v.Each(func(r Result) bool {
		out = append(out, r)
		return true
	})
	return out
}

// Entities returns the IDs of every matching entity.
func (v *View) Entities() []types.EntityID {
	out := make([]types.EntityID, 0, v.handler.Size())
	v.handler.Each(func(id types.EntityID, _ []types.Component) bool {
		out = append(out, id)
		return true
	})
	return out
}

// Single returns the first match. A query with multiple matches gets a
// diagnostic, not an error; an empty query returns false.
func (v *View) Single() (Result, bool) {
	if v.handler.Size() > 1 {
		v.logger.Warn().
			Str("query", v.handler.key).
			Int("matches", v.handler.Size()).
			Msg("Single called on query with multiple matches")
	}
	var first Result
	found := false
	v.Each(func(r Result) bool {
		first = r
		found = true
		return false
	})
	return first, found
}

// Entity returns the first matching entity ID, with the same multiplicity
// caveat as Single.
func (v *View) Entity() (types.EntityID, bool) {
	r, ok := v.Single()
	if !ok {
		return types.BadID, false
	}
	return r.Entity, true
}
