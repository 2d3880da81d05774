package storage

import (
	"fmt"

	"github.com/rotisserie/eris"

	"github.com/Jonster5/raxis/types"
)

var ErrHierarchyCycle = eris.New("entity cannot be its own ancestor")

// node is the per-entity hierarchy record. The parent pointer is a relational
// reference for lookup; ownership flows strictly parent -> children, which is
// what makes the cascade on destroy well-defined.
type node struct {
	parent    types.EntityID
	hasParent bool
	children  []types.EntityID
	livePos   int
}

// SetParent makes child a child of parent, detaching it from any previous
// parent. Both links are updated together; the invariant "A is a child of B
// iff A.parent == B" holds before and after every call.
func (s *Store) SetParent(child, parent types.EntityID) error {
	cn, ok := s.nodes.Get(child)
	if !ok {
		return eris.Wrap(ErrEntityDoesNotExist, fmt.Sprintf("child %d", child))
	}
	pn, ok := s.nodes.Get(parent)
	if !ok {
		return eris.Wrap(ErrEntityDoesNotExist, fmt.Sprintf("parent %d", parent))
	}
	if child == parent {
		return ErrHierarchyCycle
	}
	// Walk up from the new parent; re-parenting below a descendant would
	// orphan the subtree and loop the cascade.
	for anc := parent; ; {
		an, ok := s.nodes.Get(anc)
		if !ok || !an.hasParent {
			break
		}
		anc = an.parent
		if anc == child {
			return ErrHierarchyCycle
		}
	}

	if cn.hasParent {
		s.detachChild(cn.parent, child)
	}
	cn.parent = parent
	cn.hasParent = true
	pn.children = append(pn.children, child)
	return nil
}

// ClearParent detaches child from its parent, if it has one.
func (s *Store) ClearParent(child types.EntityID) error {
	cn, ok := s.nodes.Get(child)
	if !ok {
		return eris.Wrap(ErrEntityDoesNotExist, fmt.Sprintf("child %d", child))
	}
	if cn.hasParent {
		s.detachChild(cn.parent, child)
		cn.hasParent = false
	}
	return nil
}

// Parent returns the entity's parent, if any.
func (s *Store) Parent(id types.EntityID) (types.EntityID, bool) {
	n, ok := s.nodes.Get(id)
	if !ok || !n.hasParent {
		return types.BadID, false
	}
	return n.parent, true
}

// Children returns a copy of the entity's ordered child list.
func (s *Store) Children(id types.EntityID) []types.EntityID {
	n, ok := s.nodes.Get(id)
	if !ok {
		return nil
	}
	return append([]types.EntityID(nil), n.children...)
}

func (s *Store) detachChild(parent, child types.EntityID) {
	pn, ok := s.nodes.Get(parent)
	if !ok {
		return
	}
	for i, c := range pn.children {
		if c == child {
			pn.children = append(pn.children[:i], pn.children[i+1:]...)
			return
		}
	}
}
