package types

import (
	"github.com/invopop/jsonschema"
	"github.com/rotisserie/eris"
	"github.com/wI2L/jsondiff"
)

var ErrComponentSchemaMismatch = eris.New("component schema does not match target schema")

// Component is the interface that the user needs to implement to create a new
// component type. The name is the component's registration identity.
type Component interface {
	// Name returns the name of the component.
	Name() string
}

// EntityMutator is the capability handed to component destroy hooks. It allows
// a hook to perform cascading cleanup without exposing the full store surface.
type EntityMutator interface {
	// DestroyEntity destroys the given entity even if it is mid-destruction.
	DestroyEntity(id EntityID) error
	// RemoveComponent removes a single component from the given entity.
	RemoveComponent(id EntityID, comp ComponentID) error
}

// Destroyable components are notified when they are deleted from an entity or
// when their entity is destroyed.
type Destroyable interface {
	Component
	OnDestroy(api EntityMutator, id EntityID)
}

// Cloner components override the default deep-copy behavior used when an
// entity is cloned and when event payloads are handed to readers.
type Cloner interface {
	Component
	Clone() Component
}

// Serializable components override the default JSON encoding when their state
// is externalized. The produced bytes are treated as opaque by the engine.
type Serializable interface {
	Component
	Serialize() ([]byte, error)
}

// ComponentMetadata wraps a user-defined Component struct and provides the
// functionality the engine needs to store, copy, and introspect it.
type ComponentMetadata interface { //revive:disable-line:exported
	// SetID sets the ComponentID of this component. It must only be set once.
	SetID(ComponentID) error
	// ID returns the ComponentID of the component.
	ID() ComponentID
	// New returns a zero value of the component type.
	New() Component
	Encode(any) ([]byte, error)
	Decode([]byte) (Component, error)
	// Clone deep-copies a component instance, honoring the Cloner hook.
	Clone(Component) (Component, error)
	GetSchema() []byte
	ValidateAgainstSchema(targetSchema []byte) error

	Component
}

// SerializeComponentSchema reflects the JSON schema of a component type.
func SerializeComponentSchema(component Component) ([]byte, error) {
	componentSchema := jsonschema.Reflect(component)
	schema, err := componentSchema.MarshalJSON()
	if err != nil {
		return nil, eris.Wrap(err, "component must be json serializable")
	}
	return schema, nil
}

// IsSchemaValid reports whether two serialized component schemas agree.
func IsSchemaValid(jsonSchemaBytes1 []byte, jsonSchemaBytes2 []byte) (bool, error) {
	patch, err := jsondiff.CompareJSON(jsonSchemaBytes1, jsonSchemaBytes2)
	if err != nil {
		return false, eris.Wrap(err, "")
	}
	return patch.String() == "", nil
}
