package query

import (
	"math/rand"
	"sort"
	"testing"

	"github.com/rotisserie/eris"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Jonster5/raxis/component"
	"github.com/Jonster5/raxis/filter"
	"github.com/Jonster5/raxis/storage"
	"github.com/Jonster5/raxis/types"
)

type position struct {
	X, Y float64
}

func (position) Name() string { return "position" }

type velocity struct {
	DX, DY float64
}

func (velocity) Name() string { return "velocity" }

type frozen struct{}

func (frozen) Name() string { return "frozen" }

type fixture struct {
	store   *storage.Store
	comps   *component.Manager
	queries *Manager
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	logger := zerolog.Nop()
	store := storage.NewStore(storage.NewAllocator(types.MaxEntityID), &logger)
	comps := component.NewManager(component.NewMemorySchemaStorage())
	for _, register := range []func() (types.ComponentMetadata, error){
		component.NewComponentMetadata[position],
		component.NewComponentMetadata[velocity],
		component.NewComponentMetadata[frozen],
	} {
		meta, err := register()
		require.NoError(t, err)
		require.NoError(t, comps.RegisterComponent(meta))
		require.NoError(t, store.RegisterTable(meta.ID()))
	}
	queries := NewManager(store, comps.GetComponentByName)
	store.SetListener(queries)
	return &fixture{store: store, comps: comps, queries: queries}
}

func (f *fixture) metaFor(t *testing.T, name string) types.ComponentMetadata {
	t.Helper()
	meta, err := f.comps.GetComponentByName(name)
	require.NoError(t, err)
	return meta
}

func (f *fixture) spawn(t *testing.T, comps ...types.Component) types.EntityID {
	t.Helper()
	id, err := f.store.Create()
	require.NoError(t, err)
	for _, c := range comps {
		require.NoError(t, f.store.Insert(id, f.metaFor(t, c.Name()).ID(), c))
	}
	return id
}

func TestHandlerTracksInsertAndDelete(t *testing.T) {
	f := newFixture(t)
	def := Definition{Components: []types.ComponentMetadata{f.metaFor(t, "position")}}
	h, err := f.queries.Get(def)
	require.NoError(t, err)

	id := f.spawn(t, position{X: 1})
	assert.True(t, h.Contains(id))
	assert.Equal(t, 1, h.Size())

	require.NoError(t, f.store.Remove(id, f.metaFor(t, "position").ID()))
	assert.False(t, h.Contains(id))
	assert.Equal(t, 0, h.Size())
}

func TestHandlerSeedsFromExistingEntities(t *testing.T) {
	f := newFixture(t)
	a := f.spawn(t, position{X: 1})
	f.spawn(t, velocity{DX: 1})
	c := f.spawn(t, position{X: 2}, velocity{DY: 3})

	h, err := f.queries.Get(Definition{
		Components: []types.ComponentMetadata{f.metaFor(t, "position")},
	})
	require.NoError(t, err)
	assert.Equal(t, 2, h.Size())
	assert.True(t, h.Contains(a))
	assert.True(t, h.Contains(c))
}

func TestHandlerWithoutFilter(t *testing.T) {
	f := newFixture(t)
	h, err := f.queries.Get(Definition{
		Components: []types.ComponentMetadata{f.metaFor(t, "position")},
		Filters:    []filter.ComponentFilter{filter.Without[frozen]()},
	})
	require.NoError(t, err)

	id := f.spawn(t, position{})
	assert.True(t, h.Contains(id))

	// Gaining the excluded component removes the entity from the set.
	require.NoError(t, f.store.Insert(id, f.metaFor(t, "frozen").ID(), frozen{}))
	assert.False(t, h.Contains(id))

	// Losing it brings the entity back.
	require.NoError(t, f.store.Remove(id, f.metaFor(t, "frozen").ID()))
	assert.True(t, h.Contains(id))
}

func TestHandlerValidateEntityIsIdempotent(t *testing.T) {
	f := newFixture(t)
	h, err := f.queries.Get(Definition{
		Components: []types.ComponentMetadata{f.metaFor(t, "position")},
		Filters:    []filter.ComponentFilter{filter.Without[frozen]()},
	})
	require.NoError(t, err)

	match := f.spawn(t, position{X: 1})
	miss := f.spawn(t, frozen{})

	snapshot := func() (int, []types.EntityID, []types.Component) {
		ids := make([]types.EntityID, 0, h.Size())
		comps := make([]types.Component, 0, h.Size())
		h.Each(func(id types.EntityID, cs []types.Component) bool {
			ids = append(ids, id)
			comps = append(comps, cs...)
			return true
		})
		return h.Size(), ids, comps
	}

	size, ids, comps := snapshot()
	require.Equal(t, 1, size)

	// Revalidating with no intervening mutation changes nothing, for a
	// member or a non-member alike.
	h.ValidateEntity(match)
	h.ValidateEntity(match)
	h.ValidateEntity(miss)
	gotSize, gotIDs, gotComps := snapshot()
	assert.Equal(t, size, gotSize)
	assert.Equal(t, ids, gotIDs)
	assert.Equal(t, comps, gotComps)
	assert.False(t, h.Contains(miss))
}

func TestHandlerReplaceNeverTogglesMembership(t *testing.T) {
	f := newFixture(t)
	posID := f.metaFor(t, "position").ID()
	h, err := f.queries.Get(Definition{
		Components: []types.ComponentMetadata{f.metaFor(t, "position")},
	})
	require.NoError(t, err)

	id := f.spawn(t, position{X: 0, Y: 0})
	require.Equal(t, 1, h.Size())

	require.NoError(t, f.store.Replace(id, posID, position{X: 5, Y: 5}))
	assert.Equal(t, 1, h.Size())

	// The cached snapshot reflects the replaced data.
	var got position
	h.Each(func(_ types.EntityID, comps []types.Component) bool {
		got = comps[0].(position)
		return false
	})
	assert.Equal(t, position{X: 5, Y: 5}, got)
}

func TestHandlerEntityDestroyed(t *testing.T) {
	f := newFixture(t)
	h, err := f.queries.Get(Definition{
		Components: []types.ComponentMetadata{f.metaFor(t, "position")},
	})
	require.NoError(t, err)

	id := f.spawn(t, position{})
	require.True(t, h.Contains(id))
	require.NoError(t, f.store.Destroy(id, false))
	assert.False(t, h.Contains(id))
}

func TestHandlerRejectsCompositeFilters(t *testing.T) {
	f := newFixture(t)
	_, err := f.queries.Get(Definition{
		Components: []types.ComponentMetadata{f.metaFor(t, "position")},
		Filters: []filter.ComponentFilter{
			filter.Or(filter.With[velocity](), filter.With[frozen]()),
		},
	})
	assert.True(t, eris.Is(err, ErrCompositeFilter))
}

func TestManagerDeduplicatesEquivalentDefinitions(t *testing.T) {
	f := newFixture(t)
	def1 := Definition{
		Components: []types.ComponentMetadata{f.metaFor(t, "position")},
		Filters:    []filter.ComponentFilter{filter.With[velocity]()},
	}
	def2 := Definition{
		Components: []types.ComponentMetadata{f.metaFor(t, "position")},
		Filters:    []filter.ComponentFilter{filter.With[velocity]()},
	}
	h1, err := f.queries.Get(def1)
	require.NoError(t, err)
	h2, err := f.queries.Get(def2)
	require.NoError(t, err)
	assert.Same(t, h1, h2)

	// Different filter order is a different query.
	def3 := Definition{
		Components: []types.ComponentMetadata{f.metaFor(t, "position")},
		Filters:    []filter.ComponentFilter{filter.Without[frozen](), filter.With[velocity]()},
	}
	h3, err := f.queries.Get(def3)
	require.NoError(t, err)
	assert.NotSame(t, h1, h3)
	assert.Len(t, f.queries.Handlers(), 2)
}

// TestHandlerMatchesBruteForce runs a random mutation workload and checks
// after every step that the incrementally maintained set equals a from-scratch
// scan of the store.
func TestHandlerMatchesBruteForce(t *testing.T) {
	f := newFixture(t)
	posID := f.metaFor(t, "position").ID()
	velID := f.metaFor(t, "velocity").ID()
	frzID := f.metaFor(t, "frozen").ID()

	h, err := f.queries.Get(Definition{
		Components: []types.ComponentMetadata{f.metaFor(t, "position")},
		Filters: []filter.ComponentFilter{
			filter.With[velocity](),
			filter.Without[frozen](),
		},
	})
	require.NoError(t, err)

	bruteForce := func() []types.EntityID {
		out := make([]types.EntityID, 0)
		f.store.EachLive(func(id types.EntityID) bool {
			if f.store.Has(id, posID) && f.store.Has(id, velID) && !f.store.Has(id, frzID) {
				out = append(out, id)
			}
			return true
		})
		sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
		return out
	}

	rng := rand.New(rand.NewSource(11))
	var ids []types.EntityID
	compIDs := []types.ComponentID{posID, velID, frzID}
	for step := 0; step < 2000; step++ {
		switch op := rng.Intn(5); {
		case op == 0 || len(ids) == 0:
			id, err := f.store.Create()
			require.NoError(t, err)
			ids = append(ids, id)
		case op == 1:
			victim := rng.Intn(len(ids))
			require.NoError(t, f.store.Destroy(ids[victim], false))
			ids = append(ids[:victim], ids[victim+1:]...)
		case op == 2:
			id := ids[rng.Intn(len(ids))]
			comp := compIDs[rng.Intn(len(compIDs))]
			if !f.store.Has(id, comp) {
				var c types.Component
				switch comp {
				case posID:
					c = position{X: float64(step)}
				case velID:
					c = velocity{DX: float64(step)}
				default:
					c = frozen{}
				}
				require.NoError(t, f.store.Insert(id, comp, c))
			}
		case op == 3:
			id := ids[rng.Intn(len(ids))]
			comp := compIDs[rng.Intn(len(compIDs))]
			if f.store.Has(id, comp) {
				require.NoError(t, f.store.Remove(id, comp))
			}
		default:
			// Replace only refreshes data, so keep it on populated slots to
			// stay comparable with the presence scan.
			id := ids[rng.Intn(len(ids))]
			if f.store.Has(id, posID) {
				require.NoError(t, f.store.Replace(id, posID, position{Y: float64(step)}))
			}
		}

		want := bruteForce()
		got := make([]types.EntityID, 0, h.Size())
		h.Each(func(id types.EntityID, _ []types.Component) bool {
			got = append(got, id)
			return true
		})
		sort.Slice(got, func(i, j int) bool { return got[i] < got[j] })
		require.Equal(t, want, got, "divergence at step %d", step)
	}
}
