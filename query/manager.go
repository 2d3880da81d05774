package query

import (
	"github.com/Jonster5/raxis/storage"
	"github.com/Jonster5/raxis/types"
)

// Manager is the query cache: at most one live handler per distinct
// definition, shared across all systems that request it. It also implements
// storage.Listener, routing store mutations to the affected handlers.
type Manager struct {
	store    *storage.Store
	resolve  componentResolver
	handlers map[string]*Handler
	// ordered preserves registration order for deterministic notification.
	ordered []*Handler
}

var _ storage.Listener = (*Manager)(nil)

// NewManager creates an empty query cache over the given store. resolve maps
// component names to registered metadata; unregistered names surface as
// errors at query creation.
func NewManager(store *storage.Store, resolve func(name string) (types.ComponentMetadata, error)) *Manager {
	return &Manager{
		store:    store,
		resolve:  resolve,
		handlers: make(map[string]*Handler),
		ordered:  make([]*Handler, 0),
	}
}

// Get returns the handler for the definition, creating and seeding it on a
// cache miss. Seeding validates every currently-live entity exactly once;
// afterwards the handler is maintained incrementally.
func (m *Manager) Get(def Definition) (*Handler, error) {
	key := def.Key()
	if h, ok := m.handlers[key]; ok {
		return h, nil
	}

	h, err := newHandler(def, m.store, m.resolve)
	if err != nil {
		return nil, err
	}
	m.store.EachLive(func(id types.EntityID) bool {
		h.ValidateEntity(id)
		return true
	})
	m.handlers[key] = h
	m.ordered = append(m.ordered, h)
	return h, nil
}

// Handlers returns every registered handler in registration order.
func (m *Manager) Handlers() []*Handler {
	return m.ordered
}

// OnComponentChanged implements storage.Listener.
func (m *Manager) OnComponentChanged(id types.EntityID, comp types.ComponentID) {
	for _, h := range m.ordered {
		if h.AffectedBy(comp) {
			h.ValidateEntity(id)
		}
	}
}

// OnComponentReplaced implements storage.Listener.
func (m *Manager) OnComponentReplaced(id types.EntityID, comp types.ComponentID) {
	for _, h := range m.ordered {
		if h.AffectedBy(comp) {
			h.RefreshEntity(id, comp)
		}
	}
}

// OnEntityDestroyed implements storage.Listener.
func (m *Manager) OnEntityDestroyed(id types.EntityID) {
	for _, h := range m.ordered {
		h.RemoveEntity(id)
	}
}
