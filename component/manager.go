package component

import (
	"fmt"

	"github.com/rotisserie/eris"

	"github.com/Jonster5/raxis/types"
)

var (
	ErrComponentNotRegistered     = eris.New("component not registered")
	ErrComponentAlreadyRegistered = eris.New("component already registered")
)

// SchemaStorage persists component schemas across runs of the same world, so
// a component struct cannot silently change shape between restarts.
type SchemaStorage interface {
	GetSchema(componentName string) ([]byte, error)
	SetSchema(componentName string, schemaData []byte) error
}

// ErrNoSchemaFound is returned by SchemaStorage implementations when no schema
// is stored under the requested component name.
var ErrNoSchemaFound = eris.New("no schema found")

// Manager is the component type registry. It assigns ComponentIDs at
// registration time and owns the name -> metadata mapping.
type Manager struct {
	registeredComponents map[string]types.ComponentMetadata
	registeredByID       map[types.ComponentID]types.ComponentMetadata
	nextComponentID      types.ComponentID
	schemaStorage        SchemaStorage
}

// NewManager creates a new component manager.
func NewManager(schemaStorage SchemaStorage) *Manager {
	return &Manager{
		registeredComponents: make(map[string]types.ComponentMetadata),
		registeredByID:       make(map[types.ComponentID]types.ComponentMetadata),
		nextComponentID:      1,
		schemaStorage:        schemaStorage,
	}
}

// RegisterComponent registers a component type with the manager. There can
// only be one component with a given name, which is declared by the user by
// implementing the Name() method. Registering the same name twice is a caller
// error, not a silent no-op.
func (m *Manager) RegisterComponent(compMetadata types.ComponentMetadata) error {
	if _, ok := m.registeredComponents[compMetadata.Name()]; ok {
		return eris.Wrap(ErrComponentAlreadyRegistered,
			fmt.Sprintf("component %q is already registered", compMetadata.Name()))
	}

	// Try getting the schema from storage. A missing schema just means this is
	// the first time the component is registered against this storage.
	storedSchema, err := m.schemaStorage.GetSchema(compMetadata.Name())
	if err != nil && !eris.Is(err, ErrNoSchemaFound) {
		return err
	}

	if storedSchema != nil {
		// A stored schema must match the component's current shape.
		if err := compMetadata.ValidateAgainstSchema(storedSchema); err != nil {
			if eris.Is(err, types.ErrComponentSchemaMismatch) {
				return eris.Wrap(err,
					fmt.Sprintf("component %q does not match the schema stored in storage", compMetadata.Name()))
			}
			return eris.Wrap(err, "error when validating component schema against stored schema in storage")
		}
	} else {
		if err := m.schemaStorage.SetSchema(compMetadata.Name(), compMetadata.GetSchema()); err != nil {
			return err
		}
	}

	// Set the component ID and register the component. This happens after the
	// schema operations so the component is only registered if they succeed.
	if err := compMetadata.SetID(m.nextComponentID); err != nil {
		return err
	}
	m.registeredComponents[compMetadata.Name()] = compMetadata
	m.registeredByID[compMetadata.ID()] = compMetadata
	m.nextComponentID++

	return nil
}

// GetComponents returns a list of all registered components.
// Note: The order of the components in the list is not deterministic.
func (m *Manager) GetComponents() []types.ComponentMetadata {
	registeredComponents := make([]types.ComponentMetadata, 0, len(m.registeredComponents))
	for _, comp := range m.registeredComponents {
		registeredComponents = append(registeredComponents, comp)
	}
	return registeredComponents
}

// GetComponentByName returns the component metadata for the given component name.
func (m *Manager) GetComponentByName(name string) (types.ComponentMetadata, error) {
	c, ok := m.registeredComponents[name]
	if !ok {
		return nil, eris.Wrap(ErrComponentNotRegistered, fmt.Sprintf("component %q is not registered", name))
	}
	return c, nil
}

// GetComponentByID returns the component metadata for the given component ID.
func (m *Manager) GetComponentByID(id types.ComponentID) (types.ComponentMetadata, error) {
	c, ok := m.registeredByID[id]
	if !ok {
		return nil, eris.Wrap(ErrComponentNotRegistered, fmt.Sprintf("component id %d is not registered", id))
	}
	return c, nil
}

// memorySchemaStorage keeps schemas for the lifetime of the process. It is the
// default when no redis address is configured.
type memorySchemaStorage struct {
	schemas map[string][]byte
}

func NewMemorySchemaStorage() SchemaStorage {
	return &memorySchemaStorage{schemas: make(map[string][]byte)}
}

func (m *memorySchemaStorage) GetSchema(componentName string) ([]byte, error) {
	schema, ok := m.schemas[componentName]
	if !ok {
		return nil, eris.Wrap(ErrNoSchemaFound, componentName)
	}
	return schema, nil
}

func (m *memorySchemaStorage) SetSchema(componentName string, schemaData []byte) error {
	m.schemas[componentName] = schemaData
	return nil
}
