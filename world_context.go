package raxis

import (
	"reflect"
	"time"

	"github.com/rs/zerolog"

	"github.com/Jonster5/raxis/events"
	"github.com/Jonster5/raxis/query"
)

// WorldContext is handed to every system on every frame. All entity, query
// and event operations go through it, so a system never touches world state
// that was not explicitly passed to it.
type WorldContext interface {
	// CurrentFrame returns the frame number currently being executed.
	CurrentFrame() uint64

	// Timestamp returns the unix timestamp of the start of the current frame.
	Timestamp() uint64

	// Logger returns the logger for the current frame. Systems get a
	// sub-logger tagged with their name.
	Logger() *zerolog.Logger

	// Namespace returns the namespace of the world.
	Namespace() string

	setLogger(logger zerolog.Logger)
	world() *World
	scope() *systemScope
}

// systemScope holds the per-system private state: cached query views, event
// readers and writers, and local resources. Each registered system owns one;
// calls made outside any system share the world's default scope.
type systemScope struct {
	views          map[string]*query.View
	readers        map[string]*events.Reader
	writers        map[string]*events.Writer
	localResources map[reflect.Type]any
}

func newSystemScope() *systemScope {
	return &systemScope{
		views:          map[string]*query.View{},
		readers:        map[string]*events.Reader{},
		writers:        map[string]*events.Writer{},
		localResources: map[reflect.Type]any{},
	}
}

type worldContext struct {
	w      *World
	sc     *systemScope
	logger zerolog.Logger
}

var _ WorldContext = (*worldContext)(nil)

func newWorldContext(w *World, sc *systemScope) *worldContext {
	return &worldContext{
		w:      w,
		sc:     sc,
		logger: w.logger,
	}
}

func (ctx *worldContext) CurrentFrame() uint64 {
	return ctx.w.CurrentFrame()
}

func (ctx *worldContext) Timestamp() uint64 {
	return uint64(time.Now().Unix())
}

func (ctx *worldContext) Logger() *zerolog.Logger {
	return &ctx.logger
}

func (ctx *worldContext) Namespace() string {
	return ctx.w.namespace
}

func (ctx *worldContext) setLogger(logger zerolog.Logger) {
	ctx.logger = logger
}

func (ctx *worldContext) world() *World {
	return ctx.w
}

func (ctx *worldContext) scope() *systemScope {
	return ctx.sc
}
