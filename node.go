package cpn

import "github.com/google/uuid"

type NodeKind int

const (
	PlaceNode NodeKind = iota
	TransitionNode
)

func (k NodeKind) String() string {
	switch k {
	case PlaceNode:
		return "place"
	case TransitionNode:
		return "transition"
	}
	return "unknown"
}

// Node is a vertex of a Net: either a *Place or a *Transition.
type Node interface {
	ID() string
	Name() string
	Kind() NodeKind
	String() string
}

var (
	_ Node = (*Place)(nil)
	_ Node = (*Transition)(nil)
)

// ID returns a new globally unique identifier.
func ID() string {
	return uuid.New().String()
}

// nodeKey keys the input and output indexes. Places and transitions may share
// an ID, so the kind is part of the key.
func nodeKey(n Node) string {
	if n.Kind() == PlaceNode {
		return "p:" + n.ID()
	}
	return "t:" + n.ID()
}

func nodeLess(a, b Node) bool {
	if a.Name() != b.Name() {
		return a.Name() < b.Name()
	}
	return a.ID() < b.ID()
}
