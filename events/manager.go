package events

import (
	"fmt"

	"github.com/rotisserie/eris"
	"github.com/rs/zerolog"

	"github.com/Jonster5/raxis/types"
)

var (
	ErrEventNotRegistered     = eris.New("event not registered")
	ErrEventAlreadyRegistered = eris.New("event already registered")
)

// Manager is the event type registry: one bus per registered event type.
type Manager struct {
	buses       map[string]*Bus
	ordered     []*Bus
	nextEventID types.EventID
	logger      *zerolog.Logger
}

// NewManager creates an empty event registry.
func NewManager(logger *zerolog.Logger) *Manager {
	return &Manager{
		buses:       make(map[string]*Bus),
		ordered:     make([]*Bus, 0),
		nextEventID: 1,
		logger:      logger,
	}
}

// RegisterEvent registers an event type and creates its bus. Registering the
// same name twice is a caller error.
func (m *Manager) RegisterEvent(meta types.EventMetadata) error {
	if _, ok := m.buses[meta.Name()]; ok {
		return eris.Wrap(ErrEventAlreadyRegistered, fmt.Sprintf("event %q is already registered", meta.Name()))
	}
	if err := meta.SetID(m.nextEventID); err != nil {
		return err
	}
	m.nextEventID++
	bus := newBus(meta, m.logger)
	m.buses[meta.Name()] = bus
	m.ordered = append(m.ordered, bus)
	return nil
}

// GetBus returns the bus for the named event type.
func (m *Manager) GetBus(name string) (*Bus, error) {
	bus, ok := m.buses[name]
	if !ok {
		return nil, eris.Wrap(ErrEventNotRegistered, fmt.Sprintf("event %q is not registered", name))
	}
	return bus, nil
}

// NewWriter creates a writer for the named event type.
func (m *Manager) NewWriter(name string, frame func() uint64) (*Writer, error) {
	bus, err := m.GetBus(name)
	if err != nil {
		return nil, err
	}
	return &Writer{bus: bus, frame: frame}, nil
}

// PruneAll drops expired records on every bus. The frame driver calls this at
// each frame boundary before systems run.
func (m *Manager) PruneAll(currentFrame uint64) {
	for _, bus := range m.ordered {
		bus.Prune(currentFrame)
	}
}

// EventNames returns the registered event type names in registration order.
func (m *Manager) EventNames() []string {
	names := make([]string, len(m.ordered))
	for i, bus := range m.ordered {
		names[i] = bus.Name()
	}
	return names
}
