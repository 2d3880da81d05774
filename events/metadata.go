package events

import (
	"github.com/rotisserie/eris"

	"github.com/Jonster5/raxis/codec"
	"github.com/Jonster5/raxis/types"
)

// Interface guard
var _ types.EventMetadata = (*eventMetadata[types.Event])(nil)

// eventMetadata represents one registered event type.
type eventMetadata[T types.Event] struct {
	isIDSet bool
	id      types.EventID
	name    string
}

// NewEventMetadata creates the metadata for the event type T.
func NewEventMetadata[T types.Event]() types.EventMetadata {
	var t T
	return &eventMetadata[T]{name: t.Name()}
}

func (e *eventMetadata[T]) SetID(id types.EventID) error {
	if e.isIDSet {
		if id == e.id {
			return nil
		}
		return eris.Errorf("id for event %q is already set to %v, cannot change to %v", e.name, e.id, id)
	}
	e.id = id
	e.isIDSet = true
	return nil
}

func (e *eventMetadata[T]) ID() types.EventID {
	return e.id
}

func (e *eventMetadata[T]) Name() string {
	return e.name
}

func (e *eventMetadata[T]) String() string {
	return e.name
}

// Clone deep-copies a payload so records handed to one reader cannot be
// mutated out from under another.
func (e *eventMetadata[T]) Clone(ev types.Event) (types.Event, error) {
	if cloner, ok := ev.(interface{ Clone() types.Event }); ok {
		return cloner.Clone(), nil
	}
	v, ok := ev.(T)
	if !ok {
		return nil, eris.Errorf("event %q is not of type %s", ev.Name(), e.name)
	}
	return codec.DeepCopy(v)
}
