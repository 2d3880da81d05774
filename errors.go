package raxis

import (
	"github.com/rotisserie/eris"

	"github.com/Jonster5/raxis/component"
	"github.com/Jonster5/raxis/events"
	"github.com/Jonster5/raxis/storage"
)

var (
	// ErrLateRegistration is returned when components, events, or systems are
	// registered after Run has begun startup.
	ErrLateRegistration = eris.New("registration is not allowed after the world has started")

	// ErrUnknownSystem is returned when an enable/disable/toggle target does
	// not name a registered system.
	ErrUnknownSystem = eris.New("system not found")

	// ErrNotRunning is returned by Stop when no frame loop is active.
	ErrNotRunning = eris.New("world is not running")

	// ErrDuplicateResource is returned when a resource of the same type is
	// set twice in the same table.
	ErrDuplicateResource = eris.New("resource already set")
)

// Errors from the underlying modules, re-exported so callers do not need to
// import the internal packages to match them.
var (
	ErrComponentNotRegistered     = component.ErrComponentNotRegistered
	ErrComponentAlreadyRegistered = component.ErrComponentAlreadyRegistered
	ErrComponentAlreadyOnEntity   = storage.ErrComponentAlreadyOnEntity
	ErrComponentNotOnEntity       = storage.ErrComponentNotOnEntity
	ErrEntityDoesNotExist         = storage.ErrEntityDoesNotExist
	ErrAllocatorExhausted         = storage.ErrAllocatorExhausted
	ErrHierarchyCycle             = storage.ErrHierarchyCycle
	ErrEventNotRegistered         = events.ErrEventNotRegistered
	ErrEventAlreadyRegistered     = events.ErrEventAlreadyRegistered
)
