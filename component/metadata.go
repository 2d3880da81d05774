package component

import (
	"github.com/rotisserie/eris"

	"github.com/Jonster5/raxis/codec"
	"github.com/Jonster5/raxis/types"
)

// Interface guard
var _ types.ComponentMetadata = (*componentMetadata[types.Component])(nil)

// componentMetadata represents one registered component type. It is used to
// identify a component when getting or setting the component of an entity,
// and carries the codec and hook dispatch for that type.
type componentMetadata[T types.Component] struct {
	isIDSet bool
	id      types.ComponentID
	name    string
	schema  []byte
}

// NewComponentMetadata creates the metadata for the component type T.
func NewComponentMetadata[T types.Component]() (types.ComponentMetadata, error) {
	var t T
	schema, err := types.SerializeComponentSchema(t)
	if err != nil {
		return nil, err
	}

	return &componentMetadata[T]{
		name:   t.Name(),
		schema: schema,
	}, nil
}

func (c *componentMetadata[T]) GetSchema() []byte {
	return c.schema
}

// SetID sets this component's ID. It must be unique across the world object.
func (c *componentMetadata[T]) SetID(id types.ComponentID) error {
	if c.isIDSet {
		// Components are only initialized one time per world. In tests it is
		// useful to reuse the same component type in multiple worlds, so
		// re-initialization is allowed as long as the ID does not change.
		if id == c.id {
			return nil
		}
		return eris.Errorf("id for component %v is already set to %v, cannot change to %v", c, c.id, id)
	}
	c.id = id
	c.isIDSet = true
	return nil
}

// String returns the component type name.
func (c *componentMetadata[T]) String() string {
	return c.name
}

// Name returns the component type name.
func (c *componentMetadata[T]) Name() string {
	return c.name
}

// ID returns the component type id.
func (c *componentMetadata[T]) ID() types.ComponentID {
	return c.id
}

// New returns a zero value of the component type.
func (c *componentMetadata[T]) New() types.Component {
	var t T
	return t
}

func (c *componentMetadata[T]) Encode(v any) ([]byte, error) {
	if s, ok := v.(types.Serializable); ok {
		return s.Serialize()
	}
	return codec.Encode(v)
}

func (c *componentMetadata[T]) Decode(bz []byte) (types.Component, error) {
	comp := new(T)
	if d, ok := any(comp).(interface{ Deserialize([]byte) error }); ok {
		if err := d.Deserialize(bz); err != nil {
			return nil, err
		}
		return *comp, nil
	}
	return codec.Decode[T](bz)
}

// Clone deep-copies a component instance. A component that implements the
// Cloner hook controls its own copy; everything else gets a structural copy.
func (c *componentMetadata[T]) Clone(comp types.Component) (types.Component, error) {
	if cloner, ok := comp.(types.Cloner); ok {
		return cloner.Clone(), nil
	}
	v, ok := comp.(T)
	if !ok {
		return nil, eris.Errorf("component %q is not of type %s", comp.Name(), c.name)
	}
	return codec.DeepCopy(v)
}

func (c *componentMetadata[T]) ValidateAgainstSchema(targetSchema []byte) error {
	valid, err := types.IsSchemaValid(c.schema, targetSchema)
	if err != nil {
		return eris.Wrap(err, "failed to compare component schema")
	}
	if !valid {
		return eris.Wrapf(types.ErrComponentSchemaMismatch, "component %q", c.name)
	}
	return nil
}
