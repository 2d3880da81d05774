package raxis

import (
	"time"

	"github.com/rs/zerolog"

	"github.com/Jonster5/raxis/component"
)

// WorldOption augments the creation of a World.
type WorldOption func(*World)

// WithTickChannel sets the channel that drives frames. Use this for
// refresh-driven pacing (one frame per signal, no fixed interval) or to step
// frames manually in tests.
func WithTickChannel(ch <-chan time.Time) WorldOption {
	return func(w *World) {
		w.tickChannel = ch
	}
}

// WithTickInterval overrides the configured frame rate with a fixed interval
// between frames.
func WithTickInterval(interval time.Duration) WorldOption {
	return func(w *World) {
		w.tickChannel = time.Tick(interval) //nolint:staticcheck // world lives for the process
	}
}

// WithTickDoneChannel sets a channel that receives the frame number after
// each completed frame. Mostly useful for tests that step the loop.
func WithTickDoneChannel(ch chan<- uint64) WorldOption {
	return func(w *World) {
		w.tickDoneChannel = ch
	}
}

// WithCustomLogger replaces the world's logger.
func WithCustomLogger(logger zerolog.Logger) WorldOption {
	return func(w *World) {
		w.logger = logger
	}
}

// WithSchemaStorage replaces the component schema storage. The default is
// in-memory, or redis when a redis address is configured.
func WithSchemaStorage(storage component.SchemaStorage) WorldOption {
	return func(w *World) {
		w.schemaStorage = storage
	}
}
