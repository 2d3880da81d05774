package storage

import (
	"testing"

	"github.com/rotisserie/eris"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Jonster5/raxis/types"
)

func TestSetParentLinksBothDirections(t *testing.T) {
	s := newTestStore(t)
	parent, err := s.Create()
	require.NoError(t, err)
	child, err := s.Create()
	require.NoError(t, err)

	require.NoError(t, s.SetParent(child, parent))
	got, ok := s.Parent(child)
	assert.True(t, ok)
	assert.Equal(t, parent, got)
	assert.Equal(t, []types.EntityID{child}, s.Children(parent))
}

func TestSetParentReplacesExistingParent(t *testing.T) {
	s := newTestStore(t)
	a, _ := s.Create()
	b, _ := s.Create()
	child, _ := s.Create()

	require.NoError(t, s.SetParent(child, a))
	require.NoError(t, s.SetParent(child, b))

	got, ok := s.Parent(child)
	assert.True(t, ok)
	assert.Equal(t, b, got)
	assert.Empty(t, s.Children(a))
	assert.Equal(t, []types.EntityID{child}, s.Children(b))
}

func TestSetParentRejectsCycles(t *testing.T) {
	s := newTestStore(t)
	a, _ := s.Create()
	b, _ := s.Create()
	c, _ := s.Create()
	require.NoError(t, s.SetParent(b, a))
	require.NoError(t, s.SetParent(c, b))

	assert.True(t, eris.Is(s.SetParent(a, a), ErrHierarchyCycle))
	assert.True(t, eris.Is(s.SetParent(a, c), ErrHierarchyCycle))
	// The failed calls changed nothing.
	got, ok := s.Parent(a)
	assert.False(t, ok)
	assert.Equal(t, types.BadID, got)
}

func TestClearParentDetaches(t *testing.T) {
	s := newTestStore(t)
	parent, _ := s.Create()
	child, _ := s.Create()
	require.NoError(t, s.SetParent(child, parent))

	require.NoError(t, s.ClearParent(child))
	_, ok := s.Parent(child)
	assert.False(t, ok)
	assert.Empty(t, s.Children(parent))

	// Clearing an entity with no parent is a no-op.
	require.NoError(t, s.ClearParent(child))
}

func TestDestroyChildDetachesFromParent(t *testing.T) {
	s := newTestStore(t)
	parent, _ := s.Create()
	kept, _ := s.Create()
	doomed, _ := s.Create()
	require.NoError(t, s.SetParent(kept, parent))
	require.NoError(t, s.SetParent(doomed, parent))

	require.NoError(t, s.Destroy(doomed, false))
	assert.True(t, s.IsLive(parent))
	assert.True(t, s.IsLive(kept))
	assert.Equal(t, []types.EntityID{kept}, s.Children(parent))
}

func TestSetParentRequiresLiveEntities(t *testing.T) {
	s := newTestStore(t)
	live, _ := s.Create()
	dead, _ := s.Create()
	require.NoError(t, s.Destroy(dead, false))

	assert.True(t, eris.Is(s.SetParent(dead, live), ErrEntityDoesNotExist))
	assert.True(t, eris.Is(s.SetParent(live, dead), ErrEntityDoesNotExist))
}
