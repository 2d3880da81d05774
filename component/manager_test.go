package component

import (
	"testing"

	"github.com/rotisserie/eris"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Jonster5/raxis/types"
)

type energy struct {
	Amount int64
	Cap    int64
}

func (energy) Name() string { return "energy" }

type ownable struct {
	Owner string
}

func (ownable) Name() string { return "ownable" }

// energyV2 reuses the name "energy" with a different shape.
type energyV2 struct {
	Amount int64
	Cap    int64
	Regen  float64
}

func (energyV2) Name() string { return "energy" }

func TestRegisterComponentAssignsSequentialIDs(t *testing.T) {
	m := NewManager(NewMemorySchemaStorage())

	energyMeta, err := NewComponentMetadata[energy]()
	require.NoError(t, err)
	ownableMeta, err := NewComponentMetadata[ownable]()
	require.NoError(t, err)

	require.NoError(t, m.RegisterComponent(energyMeta))
	require.NoError(t, m.RegisterComponent(ownableMeta))
	assert.Equal(t, types.ComponentID(1), energyMeta.ID())
	assert.Equal(t, types.ComponentID(2), ownableMeta.ID())

	got, err := m.GetComponentByName("energy")
	require.NoError(t, err)
	assert.Equal(t, energyMeta, got)
	got, err = m.GetComponentByID(2)
	require.NoError(t, err)
	assert.Equal(t, ownableMeta, got)
	assert.Len(t, m.GetComponents(), 2)
}

func TestRegisterComponentRejectsDuplicateName(t *testing.T) {
	m := NewManager(NewMemorySchemaStorage())
	meta, err := NewComponentMetadata[energy]()
	require.NoError(t, err)
	require.NoError(t, m.RegisterComponent(meta))

	again, err := NewComponentMetadata[energy]()
	require.NoError(t, err)
	err = m.RegisterComponent(again)
	assert.True(t, eris.Is(err, ErrComponentAlreadyRegistered))
}

func TestRegisterComponentValidatesStoredSchema(t *testing.T) {
	storage := NewMemorySchemaStorage()

	// First world run stores the schema.
	m := NewManager(storage)
	meta, err := NewComponentMetadata[energy]()
	require.NoError(t, err)
	require.NoError(t, m.RegisterComponent(meta))

	// A second run against the same storage with the same shape succeeds.
	m2 := NewManager(storage)
	meta2, err := NewComponentMetadata[energy]()
	require.NoError(t, err)
	require.NoError(t, m2.RegisterComponent(meta2))

	// A changed shape under the same name is rejected.
	m3 := NewManager(storage)
	meta3, err := NewComponentMetadata[energyV2]()
	require.NoError(t, err)
	err = m3.RegisterComponent(meta3)
	require.Error(t, err)
	assert.True(t, eris.Is(err, types.ErrComponentSchemaMismatch))
}

func TestGetComponentByNameNotRegistered(t *testing.T) {
	m := NewManager(NewMemorySchemaStorage())
	_, err := m.GetComponentByName("nope")
	assert.True(t, eris.Is(err, ErrComponentNotRegistered))
	_, err = m.GetComponentByID(42)
	assert.True(t, eris.Is(err, ErrComponentNotRegistered))
}

func TestMetadataSchemaUsesSharedHelpers(t *testing.T) {
	meta, err := NewComponentMetadata[energy]()
	require.NoError(t, err)

	want, err := types.SerializeComponentSchema(energy{})
	require.NoError(t, err)
	assert.Equal(t, want, meta.GetSchema())
	require.NoError(t, meta.ValidateAgainstSchema(want))

	other, err := types.SerializeComponentSchema(energyV2{})
	require.NoError(t, err)
	err = meta.ValidateAgainstSchema(other)
	assert.True(t, eris.Is(err, types.ErrComponentSchemaMismatch))
}

func TestMetadataEncodeDecodeRoundTrip(t *testing.T) {
	meta, err := NewComponentMetadata[energy]()
	require.NoError(t, err)

	bz, err := meta.Encode(energy{Amount: 150, Cap: 200})
	require.NoError(t, err)
	decoded, err := meta.Decode(bz)
	require.NoError(t, err)
	assert.Equal(t, energy{Amount: 150, Cap: 200}, decoded)
}

func TestMetadataClone(t *testing.T) {
	meta, err := NewComponentMetadata[energy]()
	require.NoError(t, err)

	original := energy{Amount: 10, Cap: 20}
	cloned, err := meta.Clone(original)
	require.NoError(t, err)
	assert.Equal(t, original, cloned)

	// Cloning a value of the wrong type is an error.
	_, err = meta.Clone(ownable{Owner: "abc"})
	require.Error(t, err)
}
