package raxis

import (
	"os"
	"reflect"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	"github.com/rs/zerolog"

	"github.com/Jonster5/raxis/component"
	"github.com/Jonster5/raxis/cql"
	"github.com/Jonster5/raxis/events"
	"github.com/Jonster5/raxis/filter"
	"github.com/Jonster5/raxis/log"
	"github.com/Jonster5/raxis/query"
	"github.com/Jonster5/raxis/stats"
	"github.com/Jonster5/raxis/storage"
	redisstorage "github.com/Jonster5/raxis/storage/redis"
	"github.com/Jonster5/raxis/types"
	"github.com/Jonster5/raxis/worldstage"
)

// World owns all runtime state: the entity store, the registered component,
// event and system tables, the query cache, and the frame loop.
type World struct {
	id        string
	namespace string
	config    *WorldConfig
	logger    zerolog.Logger

	worldStage       *worldstage.Manager
	componentManager *component.Manager
	systemManager    *systemManager
	eventManager     *events.Manager
	queryManager     *query.Manager

	allocator *storage.Allocator
	store     *storage.Store

	schemaStorage component.SchemaStorage
	redisStorage  *redisstorage.Storage

	// resources is the world-scoped resource table. Per-system tables live on
	// each system's scope; this one backs the default scope as well.
	resources   map[reflect.Type]any
	resourcesMu sync.RWMutex

	// defaultScope serves WorldContext operations made outside any system,
	// e.g. from tests or from code running before Run.
	defaultScope *systemScope

	frame            atomic.Uint64
	runShutdownPhase atomic.Bool
	tickChannel      <-chan time.Time
	tickDoneChannel  chan<- uint64

	frameWaiters       []chan struct{}
	frameWaitersClosed bool
	frameWaitersMu     sync.Mutex
}

var _ log.Loggable = (*World)(nil)

// NewWorld creates a new World from environment configuration and the given
// options. Component schemas are validated against redis-backed storage when
// REDIS_ADDRESS is set, and against in-memory storage otherwise.
func NewWorld(opts ...WorldOption) (*World, error) {
	cfg, err := loadWorldConfig()
	if err != nil {
		return nil, err
	}

	level, err := zerolog.ParseLevel(cfg.RaxisLogLevel)
	if err != nil {
		return nil, eris.Wrap(err, "failed to parse log level")
	}
	logger := zerolog.New(os.Stdout).Level(level).With().Timestamp().Logger()

	w := &World{
		id:        uuid.New().String(),
		namespace: cfg.RaxisNamespace,
		config:    cfg,
		logger:    logger,

		worldStage:    worldstage.NewManager(),
		systemManager: newSystemManager(),

		resources:    map[reflect.Type]any{},
		defaultScope: newSystemScope(),
	}

	if cfg.RedisAddress != "" {
		rs := redisstorage.NewRedisStorage(redisstorage.Options{
			Addr:     cfg.RedisAddress,
			Password: cfg.RedisPassword,
		}, cfg.RaxisNamespace)
		w.redisStorage = &rs
		w.schemaStorage = &w.redisStorage.SchemaStorage
	} else {
		w.schemaStorage = component.NewMemorySchemaStorage()
	}

	for _, opt := range opts {
		opt(w)
	}

	w.componentManager = component.NewManager(w.schemaStorage)
	w.eventManager = events.NewManager(&w.logger)

	w.allocator = storage.NewAllocator(types.MaxEntityID)
	w.store = storage.NewStore(w.allocator, &w.logger)
	w.queryManager = query.NewManager(w.store, w.componentManager.GetComponentByName)
	w.store.SetListener(w.queryManager)

	if cfg.StatsdAddress != "" {
		if err := stats.Init(cfg.StatsdAddress, []string{"namespace:" + cfg.RaxisNamespace}); err != nil {
			return nil, err
		}
	}

	w.logger.Info().
		Str("world_id", w.id).
		Str("namespace", w.namespace).
		Int("frame_rate", cfg.RaxisFrameRate).
		Msg("created world")

	return w, nil
}

// Namespace returns the world's configured namespace.
func (w *World) Namespace() string {
	return w.namespace
}

// CurrentFrame returns the number of the frame currently being executed, or
// of the last completed frame when the loop is idle. Frames are numbered
// from 1; 0 means no frame has run.
func (w *World) CurrentFrame() uint64 {
	return w.frame.Load()
}

// IsGameRunning reports whether the frame loop is active.
func (w *World) IsGameRunning() bool {
	return w.worldStage.Current() == worldstage.Running
}

// Run starts the world: startup systems run once, then main systems run
// every frame until Stop is called. It blocks until shutdown completes.
func (w *World) Run() error {
	if ok := w.worldStage.CompareAndSwap(worldstage.Init, worldstage.Starting); !ok {
		return eris.Errorf("world is in stage %q and cannot be started", w.worldStage.Current())
	}

	if len(w.componentManager.GetComponents()) == 0 {
		w.logger.Warn().Msg("no components registered")
	}
	if len(w.systemManager.registeredSystems) == 0 {
		w.logger.Warn().Msg("no systems registered")
	}
	log.World(&w.logger, w, zerolog.InfoLevel)

	if err := w.systemManager.runPhase(w, w.systemManager.registeredStartupSystems); err != nil {
		w.worldStage.Store(worldstage.ShutDown)
		return eris.Wrap(err, "startup systems failed")
	}

	if w.tickChannel == nil {
		w.tickChannel = time.Tick(time.Second / time.Duration(w.config.RaxisFrameRate)) //nolint:staticcheck // world lives for the process
	}

	w.worldStage.Store(worldstage.Running)
	w.logger.Info().Msg("world is running")

	shuttingDown := w.worldStage.NotifyOnStage(worldstage.ShuttingDown)
	for {
		select {
		case <-shuttingDown:
			w.finalize()
			return nil
		case <-w.tickChannel:
			if err := w.doFrame(); err != nil {
				w.logger.Err(err).Msg("frame failed, shutting down")
				w.finalize()
				return err
			}
		}
	}
}

// Stop halts scheduling of further frames and blocks until the loop has
// fully stopped. Stop does not run shutdown systems; that is what Shutdown
// is for.
func (w *World) Stop() error {
	return w.halt(false)
}

// Shutdown runs the shutdown systems and then stops the loop, blocking until
// it has fully stopped.
func (w *World) Shutdown() error {
	return w.halt(true)
}

func (w *World) halt(runShutdownSystems bool) error {
	// The flag is set before the stage flips so the loop cannot observe the
	// transition first.
	if runShutdownSystems {
		w.runShutdownPhase.Store(true)
	}
	if ok := w.worldStage.CompareAndSwap(worldstage.Running, worldstage.ShuttingDown); !ok {
		w.runShutdownPhase.Store(false)
		return eris.Wrap(ErrNotRunning, string(w.worldStage.Current()))
	}
	<-w.worldStage.NotifyOnStage(worldstage.ShutDown)
	return nil
}

// doFrame executes one frame: expired events are pruned, the frame counter
// advances, and every enabled main system runs in registration order.
func (w *World) doFrame() error {
	start := time.Now()
	defer func() {
		if panicValue := recover(); panicValue != nil {
			w.logger.Error().
				Uint64("frame", w.CurrentFrame()).
				Str("system", w.systemManager.currentSystem).
				Msgf("a panic occurred: %v", panicValue)
			panic(panicValue)
		}
	}()

	w.eventManager.PruneAll(w.frame.Load())
	w.frame.Add(1)

	err := w.systemManager.runPhase(w, w.systemManager.registeredSystems)
	if err != nil {
		return err
	}

	w.releaseFrameWaiters(false)
	if w.tickDoneChannel != nil {
		w.tickDoneChannel <- w.frame.Load()
	}
	stats.EmitFrameStat(start, "frame")
	return nil
}

// finalize tears the loop down and releases external connections. Shutdown
// systems run only when the halt was requested through Shutdown. It is
// called from the driver goroutine only.
func (w *World) finalize() {
	w.worldStage.Store(worldstage.ShuttingDown)
	w.logger.Info().Msg("shutting down")

	if w.runShutdownPhase.Load() {
		if err := w.systemManager.runPhase(w, w.systemManager.registeredShutdownSystems); err != nil {
			w.logger.Err(err).Msg("shutdown systems failed")
		}
	}
	if w.redisStorage != nil {
		if err := w.redisStorage.Close(); err != nil {
			w.logger.Err(err).Msg("failed to close redis connection")
		}
	}
	w.releaseFrameWaiters(true)

	w.worldStage.Store(worldstage.ShutDown)
	w.logger.Info().Msg("shutdown complete")
}

// WaitForNextFrame blocks until the next frame has fully executed. Returns
// false if the world shut down before another frame ran.
func (w *World) WaitForNextFrame() bool {
	ch := make(chan struct{})
	w.frameWaitersMu.Lock()
	// The running check happens under the mutex so a waiter cannot slip in
	// after the final release and block forever.
	if w.frameWaitersClosed || w.worldStage.Current() != worldstage.Running {
		w.frameWaitersMu.Unlock()
		return false
	}
	w.frameWaiters = append(w.frameWaiters, ch)
	w.frameWaitersMu.Unlock()
	<-ch
	return w.worldStage.Current() == worldstage.Running
}

// releaseFrameWaiters wakes every pending waiter. With final set, later
// waiters are refused instead of queued; finalize uses this on its last
// release.
func (w *World) releaseFrameWaiters(final bool) {
	w.frameWaitersMu.Lock()
	for _, ch := range w.frameWaiters {
		close(ch)
	}
	w.frameWaiters = w.frameWaiters[:0]
	if final {
		w.frameWaitersClosed = true
	}
	w.frameWaitersMu.Unlock()
}

// EnableSystem enables a main-loop system by name. Lookups resolve to the
// first system registered under the name.
func (w *World) EnableSystem(name string) error {
	return w.systemManager.setEnabled(name, true)
}

// DisableSystem disables a system by name. Disabled systems are skipped by
// the frame loop but remain registered.
func (w *World) DisableSystem(name string) error {
	return w.systemManager.setEnabled(name, false)
}

// ToggleSystem flips a system's enabled state and returns the new state.
func (w *World) ToggleSystem(name string) (bool, error) {
	return w.systemManager.toggle(name)
}

// IsSystemEnabled reports a system's enabled state.
func (w *World) IsSystemEnabled(name string) (bool, error) {
	return w.systemManager.isEnabled(name)
}

// FindEntities evaluates a filter expression (e.g. "WITH(position) &
// !WITH(frozen)") against every live entity. This is a debug search; it
// walks the full live set rather than the query cache.
func (w *World) FindEntities(expression string) ([]types.EntityID, error) {
	f, err := cql.Parse(expression, w.componentManager.GetComponentByName)
	if err != nil {
		return nil, err
	}
	return w.findEntities(f), nil
}

func (w *World) findEntities(f filter.ComponentFilter) []types.EntityID {
	found := make([]types.EntityID, 0)
	w.store.EachLive(func(id types.EntityID) bool {
		matches := f.Matches(func(comp types.Component) bool {
			meta, err := w.componentManager.GetComponentByName(comp.Name())
			if err != nil {
				return false
			}
			return w.store.Has(id, meta.ID())
		})
		if matches {
			found = append(found, id)
		}
		return true
	})
	return found
}

// GetRegisteredComponents returns the metadata of every registered
// component.
func (w *World) GetRegisteredComponents() []types.ComponentMetadata {
	return w.componentManager.GetComponents()
}

// GetRegisteredSystems returns the names of the registered main-loop
// systems in registration order.
func (w *World) GetRegisteredSystems() []string {
	return w.systemManager.systemNames()
}

// GetRegisteredEvents returns the names of the registered events.
func (w *World) GetRegisteredEvents() []string {
	return w.eventManager.EventNames()
}

func (w *World) isLocked() bool {
	return w.worldStage.Current() != worldstage.Init
}
