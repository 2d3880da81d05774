package worldstage

import (
	"sync"
	"sync/atomic"
)

type Stage string

const (
	Init         Stage = "Init"         // The default stage of the world before Run is called
	Starting     Stage = "Starting"     // World is moved to this stage while startup systems run
	Running      Stage = "Running"      // World is moved to this stage when the frame loop is ticking
	ShuttingDown Stage = "ShuttingDown" // World is moved to this stage while shutdown systems run
	ShutDown     Stage = "ShutDown"     // World is moved to this stage when the loop has fully stopped
)

// Manager is the world lifecycle state machine. Transitions are rare; reads
// happen on every registration call and tick, hence the atomic.
type Manager struct {
	current  *atomic.Value
	mu       sync.Mutex
	watchers map[Stage][]chan struct{}
}

func NewManager() *Manager {
	m := &Manager{
		current:  &atomic.Value{},
		watchers: make(map[Stage][]chan struct{}),
	}
	m.current.Store(Init)
	return m
}

func (m *Manager) CompareAndSwap(oldStage, newStage Stage) (swapped bool) {
	swapped = m.current.CompareAndSwap(oldStage, newStage)
	if swapped {
		m.notify(newStage)
	}
	return swapped
}

func (m *Manager) Current() Stage {
	return m.current.Load().(Stage)
}

func (m *Manager) Store(val Stage) {
	m.current.Store(val)
	m.notify(val)
}

// NotifyOnStage returns a channel that is closed when the world reaches the
// given stage. If the world is already there, the channel is closed already.
func (m *Manager) NotifyOnStage(stage Stage) <-chan struct{} {
	m.mu.Lock()
	defer m.mu.Unlock()
	ch := make(chan struct{})
	if m.Current() == stage {
		close(ch)
		return ch
	}
	m.watchers[stage] = append(m.watchers[stage], ch)
	return ch
}

func (m *Manager) notify(stage Stage) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, ch := range m.watchers[stage] {
		close(ch)
	}
	m.watchers[stage] = nil
}
