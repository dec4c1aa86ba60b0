package analyzer

import (
	"verylcheck/internal/engine/symbol"
)

// CanAssign decides whether a target may be written, given the kinds of the
// root and leaf of its full path. For a single-element path root and leaf
// are the same kind. Aggregate members take their writability from the root
// declaration.
func CanAssign(root, leaf symbol.Kind) bool {
	switch leaf := leaf.(type) {
	case symbol.Variable:
		return true
	case symbol.StructMember, symbol.UnionMember:
		return writableRoot(root)
	case symbol.Port:
		return leaf.Direction.Writable()
	case symbol.ModportMember:
		return leaf.Direction.Writable()
	}
	return false
}

func writableRoot(root symbol.Kind) bool {
	switch root := root.(type) {
	case symbol.Variable:
		return true
	case symbol.Port:
		return root.Direction.Writable()
	case symbol.ModportMember:
		return root.Direction.Writable()
	}
	return false
}

type symbolGetter interface {
	Get(id symbol.ID) (*symbol.Symbol, bool)
}

// canAssignPath applies CanAssign to a full path. An empty path or a path
// with unknown ids is never assignable.
func canAssignPath(store symbolGetter, fullPath []symbol.ID) bool {
	if len(fullPath) == 0 {
		return false
	}
	leaf, ok := store.Get(fullPath[len(fullPath)-1])
	if !ok {
		return false
	}
	root, ok := store.Get(fullPath[0])
	if !ok {
		return false
	}
	return CanAssign(root.Kind, leaf.Kind)
}
