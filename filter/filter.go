package filter

import (
	"fmt"
	"strings"

	"github.com/Jonster5/raxis/types"
)

// ComponentFilter is a predicate over an entity's component set. Filters used
// in cached query definitions are restricted to With/Without; the composite
// forms (And, Or, Not, All) exist for ad-hoc expression searches.
type ComponentFilter interface {
	// Matches reports whether an entity whose component presence is given by
	// has passes the filter.
	Matches(has func(comp types.Component) bool) bool

	// String is the filter's structural identity. Two filters are the same
	// term in a query definition iff their strings are equal.
	fmt.Stringer
}

type with struct {
	comp types.Component
}

// With matches entities that carry the component type T, without retrieving
// its data.
func With[T types.Component]() ComponentFilter {
	var x T
	return &with{comp: x}
}

// WithComponent is the non-generic form of With, for callers that hold a
// component value rather than a type parameter (e.g. the expression parser).
func WithComponent(comp types.Component) ComponentFilter {
	return &with{comp: comp}
}

func (f *with) Matches(has func(comp types.Component) bool) bool {
	return has(f.comp)
}

func (f *with) String() string {
	return "With(" + f.comp.Name() + ")"
}

type without struct {
	comp types.Component
}

// Without matches entities that do not carry the component type T.
func Without[T types.Component]() ComponentFilter {
	var x T
	return &without{comp: x}
}

// WithoutComponent is the non-generic form of Without.
func WithoutComponent(comp types.Component) ComponentFilter {
	return &without{comp: comp}
}

func (f *without) Matches(has func(comp types.Component) bool) bool {
	return !has(f.comp)
}

func (f *without) String() string {
	return "Without(" + f.comp.Name() + ")"
}

// IsExclusion reports whether f is a Without filter. The query cache
// evaluates exclusions before requirements.
func IsExclusion(f ComponentFilter) bool {
	_, ok := f.(*without)
	return ok
}

// Term returns the single component a With/Without filter references, or
// false for composite filters.
func Term(f ComponentFilter) (types.Component, bool) {
	switch v := f.(type) {
	case *with:
		return v.comp, true
	case *without:
		return v.comp, true
	}
	return nil, false
}

// Terms returns every component referenced anywhere in the filter tree.
func Terms(f ComponentFilter) []types.Component {
	switch v := f.(type) {
	case *with:
		return []types.Component{v.comp}
	case *without:
		return []types.Component{v.comp}
	case *and:
		var out []types.Component
		for _, sub := range v.filters {
			out = append(out, Terms(sub)...)
		}
		return out
	case *or:
		var out []types.Component
		for _, sub := range v.filters {
			out = append(out, Terms(sub)...)
		}
		return out
	case *not:
		return Terms(v.filter)
	}
	return nil
}

type and struct {
	filters []ComponentFilter
}

func And(filters ...ComponentFilter) ComponentFilter {
	return &and{filters: filters}
}

func (f *and) Matches(has func(comp types.Component) bool) bool {
	for _, sub := range f.filters {
		if !sub.Matches(has) {
			return false
		}
	}
	return true
}

func (f *and) String() string {
	return "And(" + joinFilters(f.filters) + ")"
}

type or struct {
	filters []ComponentFilter
}

func Or(filters ...ComponentFilter) ComponentFilter {
	return &or{filters: filters}
}

func (f *or) Matches(has func(comp types.Component) bool) bool {
	for _, sub := range f.filters {
		if sub.Matches(has) {
			return true
		}
	}
	return false
}

func (f *or) String() string {
	return "Or(" + joinFilters(f.filters) + ")"
}

type not struct {
	filter ComponentFilter
}

func Not(filter ComponentFilter) ComponentFilter {
	return &not{filter: filter}
}

func (f *not) Matches(has func(comp types.Component) bool) bool {
	return !f.filter.Matches(has)
}

func (f *not) String() string {
	return "Not(" + f.filter.String() + ")"
}

type all struct{}

func All() ComponentFilter {
	return &all{}
}

func (f *all) Matches(func(comp types.Component) bool) bool {
	return true
}

func (f *all) String() string {
	return "All()"
}

func joinFilters(filters []ComponentFilter) string {
	parts := make([]string, len(filters))
	for i, f := range filters {
		parts[i] = f.String()
	}
	return strings.Join(parts, ", ")
}
