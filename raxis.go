package raxis

import (
	"github.com/rotisserie/eris"

	"github.com/Jonster5/raxis/component"
	"github.com/Jonster5/raxis/events"
	"github.com/Jonster5/raxis/types"
)

// RegisterComponent registers a component type with the world. All component
// types must be registered before Run is called; the component's schema is
// validated against the schema storage so a world never silently reuses a
// name for a different shape.
func RegisterComponent[T types.Component](w *World) error {
	if w.isLocked() {
		return eris.Wrap(ErrLateRegistration, "cannot register components after the world has started")
	}
	meta, err := component.NewComponentMetadata[T]()
	if err != nil {
		return err
	}
	if err := w.componentManager.RegisterComponent(meta); err != nil {
		return err
	}
	return w.store.RegisterTable(meta.ID())
}

// MustRegisterComponent is RegisterComponent that panics on error, for
// program-startup registration blocks.
func MustRegisterComponent[T types.Component](w *World) {
	if err := RegisterComponent[T](w); err != nil {
		panic(err)
	}
}

// RegisterEvent registers an event type with the world and creates its bus.
// All event types must be registered before Run is called.
func RegisterEvent[T types.Event](w *World) error {
	if w.isLocked() {
		return eris.Wrap(ErrLateRegistration, "cannot register events after the world has started")
	}
	return w.eventManager.RegisterEvent(events.NewEventMetadata[T]())
}

// RegisterSystems registers main-loop systems. Systems run each frame in
// registration order; duplicate names are allowed.
func RegisterSystems(w *World, systems ...System) error {
	if w.isLocked() {
		return eris.Wrap(ErrLateRegistration, "cannot register systems after the world has started")
	}
	w.systemManager.register(&w.systemManager.registeredSystems, systems, nil)
	return nil
}

// RegisterSystem registers one main-loop system with options.
func RegisterSystem(w *World, system System, opts ...SystemOption) error {
	if w.isLocked() {
		return eris.Wrap(ErrLateRegistration, "cannot register systems after the world has started")
	}
	w.systemManager.register(&w.systemManager.registeredSystems, []System{system}, opts)
	return nil
}

// RegisterStartupSystems registers systems that run exactly once, before the
// first frame.
func RegisterStartupSystems(w *World, systems ...System) error {
	if w.isLocked() {
		return eris.Wrap(ErrLateRegistration, "cannot register systems after the world has started")
	}
	w.systemManager.register(&w.systemManager.registeredStartupSystems, systems, nil)
	return nil
}

// RegisterShutdownSystems registers systems that run exactly once, after the
// last frame.
func RegisterShutdownSystems(w *World, systems ...System) error {
	if w.isLocked() {
		return eris.Wrap(ErrLateRegistration, "cannot register systems after the world has started")
	}
	w.systemManager.register(&w.systemManager.registeredShutdownSystems, systems, nil)
	return nil
}

// NewWorldContext returns a context bound to the world's default scope, for
// use outside any system (tests, setup code).
func NewWorldContext(w *World) WorldContext {
	return newWorldContext(w, w.defaultScope)
}
