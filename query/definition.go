package query

import (
	"strings"

	"github.com/Jonster5/raxis/filter"
	"github.com/Jonster5/raxis/types"
)

// Definition identifies one cached query: an ordered list of required
// component types whose data the query retrieves, plus an ordered list of
// With/Without filter predicates. Two definitions are the same query iff both
// lists match element for element.
type Definition struct {
	Components []types.ComponentMetadata
	Filters    []filter.ComponentFilter
}

// Key returns the definition's structural identity, used to deduplicate
// handlers in the cache.
func (d Definition) Key() string {
	var sb strings.Builder
	for i, c := range d.Components {
		if i > 0 {
			sb.WriteByte(',')
		}
		sb.WriteString(c.Name())
	}
	sb.WriteByte('|')
	for i, f := range d.Filters {
		if i > 0 {
			sb.WriteByte(',')
		}
		sb.WriteString(f.String())
	}
	return sb.String()
}
