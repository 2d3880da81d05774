package types

// Event is the interface that the user needs to implement to create a new
// event type. Like components, the name is the registration identity.
type Event interface {
	// Name returns the name of the event.
	Name() string
}

// EventMetadata wraps a user-defined Event struct with the functionality the
// event bus needs to identify and copy it.
type EventMetadata interface {
	// SetID sets the EventID of this event type. It must only be set once.
	SetID(EventID) error
	// ID returns the EventID of the event type.
	ID() EventID
	// Clone deep-copies an event payload before it is handed to a reader, so
	// downstream mutation cannot corrupt records still visible to other readers.
	Clone(Event) (Event, error)

	Event
}
