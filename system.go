package raxis

import (
	"path/filepath"
	"reflect"
	"runtime"
	"strings"
	"time"

	"github.com/rotisserie/eris"

	"github.com/Jonster5/raxis/log"
	"github.com/Jonster5/raxis/stats"
)

// System is a function that is executed every frame.
type System func(ctx WorldContext) error

type systemEntry struct {
	fn      System
	name    string
	enabled bool
	async   bool
	scope   *systemScope
}

// SystemOption augments a system registration.
type SystemOption func(*systemEntry)

// WithSystemName overrides the name derived from the function.
func WithSystemName(name string) SystemOption {
	return func(e *systemEntry) {
		e.name = name
	}
}

// AsAsync marks the system to run in its own goroutine. The frame still
// waits for it to finish before the next system starts, so ordering is
// preserved, but the system runs off the driver goroutine.
func AsAsync() SystemOption {
	return func(e *systemEntry) {
		e.async = true
	}
}

type systemManager struct {
	// These maintain the order in which the systems were registered.
	registeredSystems         []*systemEntry
	registeredStartupSystems  []*systemEntry
	registeredShutdownSystems []*systemEntry

	// currentSystem is the name of the system that is currently running.
	currentSystem string
}

func newSystemManager() *systemManager {
	return &systemManager{
		registeredSystems:         make([]*systemEntry, 0),
		registeredStartupSystems:  make([]*systemEntry, 0),
		registeredShutdownSystems: make([]*systemEntry, 0),
	}
}

// register adds systems to the given phase. Duplicate names are allowed;
// name-based lookups resolve to the first match in registration order.
func (m *systemManager) register(phase *[]*systemEntry, systems []System, opts []SystemOption) {
	for _, sys := range systems {
		entry := &systemEntry{
			fn:      sys,
			name:    systemName(sys),
			enabled: true,
			scope:   newSystemScope(),
		}
		for _, opt := range opts {
			opt(entry)
		}
		*phase = append(*phase, entry)
	}
}

func (m *systemManager) find(name string) *systemEntry {
	for _, phase := range [][]*systemEntry{
		m.registeredStartupSystems,
		m.registeredSystems,
		m.registeredShutdownSystems,
	} {
		for _, entry := range phase {
			if entry.name == name {
				return entry
			}
		}
	}
	return nil
}

func (m *systemManager) setEnabled(name string, enabled bool) error {
	entry := m.find(name)
	if entry == nil {
		return eris.Wrapf(ErrUnknownSystem, "system %q is not registered", name)
	}
	entry.enabled = enabled
	return nil
}

func (m *systemManager) toggle(name string) (bool, error) {
	entry := m.find(name)
	if entry == nil {
		return false, eris.Wrapf(ErrUnknownSystem, "system %q is not registered", name)
	}
	entry.enabled = !entry.enabled
	return entry.enabled, nil
}

func (m *systemManager) isEnabled(name string) (bool, error) {
	entry := m.find(name)
	if entry == nil {
		return false, eris.Wrapf(ErrUnknownSystem, "system %q is not registered", name)
	}
	return entry.enabled, nil
}

// runPhase executes a phase's systems in registration order. Async systems
// run on their own goroutine but are awaited before the next system starts.
func (m *systemManager) runPhase(w *World, phase []*systemEntry) error {
	defer func() { m.currentSystem = "" }()
	for _, entry := range phase {
		if !entry.enabled {
			continue
		}
		m.currentSystem = entry.name

		ctx := newWorldContext(w, entry.scope)
		ctx.setLogger(*log.CreateSystemLogger(&w.logger, entry.name))

		start := time.Now()
		var err error
		if entry.async {
			done := make(chan error, 1)
			go func() {
				done <- entry.fn(ctx)
			}()
			err = <-done
		} else {
			err = entry.fn(ctx)
		}
		stats.EmitFrameStat(start, "system:"+entry.name)
		if err != nil {
			return eris.Wrapf(err, "system %s generated an error", entry.name)
		}
	}
	return nil
}

func (m *systemManager) systemNames() []string {
	names := make([]string, 0, len(m.registeredSystems))
	for _, entry := range m.registeredSystems {
		names = append(names, entry.name)
	}
	return names
}

// systemName derives a friendly name from the system function, e.g.
// "main.MoveSystem" for a top-level function.
func systemName(fn System) string {
	name := runtime.FuncForPC(reflect.ValueOf(fn).Pointer()).Name()
	name = filepath.Base(name)
	return strings.TrimSuffix(name, "-fm")
}
