package cql

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Jonster5/raxis/component"
	"github.com/Jonster5/raxis/types"
)

type location struct {
	X, Y int
}

func (location) Name() string { return "location" }

type tagged struct {
	Tag string
}

func (tagged) Name() string { return "tagged" }

func testResolver(t *testing.T) func(string) (types.ComponentMetadata, error) {
	t.Helper()
	m := component.NewManager(component.NewMemorySchemaStorage())
	locMeta, err := component.NewComponentMetadata[location]()
	require.NoError(t, err)
	require.NoError(t, m.RegisterComponent(locMeta))
	tagMeta, err := component.NewComponentMetadata[tagged]()
	require.NoError(t, err)
	require.NoError(t, m.RegisterComponent(tagMeta))
	return m.GetComponentByName
}

// evaluate runs the parsed filter against a fixed component set.
func evaluate(t *testing.T, expr string, present ...string) bool {
	t.Helper()
	f, err := Parse(expr, testResolver(t))
	require.NoError(t, err)
	return f.Matches(func(comp types.Component) bool {
		for _, name := range present {
			if comp.Name() == name {
				return true
			}
		}
		return false
	})
}

func TestParseWith(t *testing.T) {
	assert.True(t, evaluate(t, "WITH(location)", "location"))
	assert.False(t, evaluate(t, "WITH(location)", "tagged"))
}

func TestParseWithout(t *testing.T) {
	assert.True(t, evaluate(t, "WITHOUT(location)", "tagged"))
	assert.False(t, evaluate(t, "WITHOUT(location)", "location"))
}

func TestParseAll(t *testing.T) {
	assert.True(t, evaluate(t, "ALL()"))
}

func TestParseNot(t *testing.T) {
	assert.False(t, evaluate(t, "!WITH(location)", "location"))
	assert.True(t, evaluate(t, "!WITH(location)", "tagged"))
}

func TestParseAndOr(t *testing.T) {
	assert.True(t, evaluate(t, "WITH(location) & WITH(tagged)", "location", "tagged"))
	assert.False(t, evaluate(t, "WITH(location) & WITH(tagged)", "location"))
	assert.True(t, evaluate(t, "WITH(location) | WITH(tagged)", "tagged"))
	assert.False(t, evaluate(t, "WITH(location) | WITH(tagged)"))
}

func TestParseGrouping(t *testing.T) {
	expr := "(WITH(location) | WITH(tagged)) & !(WITH(location) & WITH(tagged))"
	assert.True(t, evaluate(t, expr, "location"))
	assert.True(t, evaluate(t, expr, "tagged"))
	assert.False(t, evaluate(t, expr, "location", "tagged"))
	assert.False(t, evaluate(t, expr))
}

func TestParseUnknownComponent(t *testing.T) {
	_, err := Parse("WITH(mystery)", testResolver(t))
	require.Error(t, err)
}

func TestParseSyntaxError(t *testing.T) {
	_, err := Parse("WITH(location) &", testResolver(t))
	require.Error(t, err)
	_, err = Parse("", testResolver(t))
	require.Error(t, err)
}
