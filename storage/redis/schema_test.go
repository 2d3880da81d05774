package redis

import (
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/rotisserie/eris"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Jonster5/raxis/component"
)

type inventory struct {
	Items []string
}

func (inventory) Name() string { return "inventory" }

func newTestStorage(t *testing.T) *Storage {
	t.Helper()
	mr := miniredis.RunT(t)
	s := NewRedisStorage(Options{Addr: mr.Addr()}, "test-namespace")
	t.Cleanup(func() { _ = s.Close() })
	return &s
}

func TestSchemaRoundTrip(t *testing.T) {
	s := newTestStorage(t)

	require.NoError(t, s.SetSchema("inventory", []byte(`{"type":"object"}`)))
	got, err := s.GetSchema("inventory")
	require.NoError(t, err)
	assert.Equal(t, []byte(`{"type":"object"}`), got)
}

func TestGetSchemaMissing(t *testing.T) {
	s := newTestStorage(t)
	_, err := s.GetSchema("never-stored")
	assert.True(t, eris.Is(err, component.ErrNoSchemaFound))
}

func TestSchemasAreNamespaced(t *testing.T) {
	mr := miniredis.RunT(t)
	a := NewRedisStorage(Options{Addr: mr.Addr()}, "world-a")
	b := NewRedisStorage(Options{Addr: mr.Addr()}, "world-b")
	t.Cleanup(func() {
		_ = a.Close()
		_ = b.Close()
	})

	require.NoError(t, a.SetSchema("inventory", []byte(`{}`)))
	_, err := b.GetSchema("inventory")
	assert.True(t, eris.Is(err, component.ErrNoSchemaFound))
}

func TestComponentManagerAgainstRedis(t *testing.T) {
	mr := miniredis.RunT(t)

	// First run registers and persists the schema.
	run1 := NewRedisStorage(Options{Addr: mr.Addr()}, "game")
	m1 := component.NewManager(&run1.SchemaStorage)
	meta, err := component.NewComponentMetadata[inventory]()
	require.NoError(t, err)
	require.NoError(t, m1.RegisterComponent(meta))
	require.NoError(t, run1.Close())

	// A restart against the same redis validates instead of rewriting.
	run2 := NewRedisStorage(Options{Addr: mr.Addr()}, "game")
	m2 := component.NewManager(&run2.SchemaStorage)
	meta2, err := component.NewComponentMetadata[inventory]()
	require.NoError(t, err)
	require.NoError(t, m2.RegisterComponent(meta2))
	require.NoError(t, run2.Close())
}
