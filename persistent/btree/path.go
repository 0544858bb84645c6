package btree

import (
	"cmp"
	"fmt"
	"strconv"
	"strings"
)

// --- Slot ------------------------------------------------------------------

// slot holds a step of a path.
type slot[K cmp.Ordered, V any] struct {
	node  *xnode[K, V]
	index int
}

func (s slot[K, V]) String() string {
	if s.node == nil {
		return strconv.Itoa(s.index) + "@_"
	}
	return strconv.Itoa(s.index) + "@" + s.node.String()
}

func (s slot[K, V]) item() xitem[K, V] {
	return s.node.items[s.index]
}

// --- Path ------------------------------------------------------------------

type slotPath[K cmp.Ordered, V any] []slot[K, V]

func (path slotPath[K, V]) String() string {
	var sb = strings.Builder{}
	sb.WriteRune('[')
	for _, s := range path {
		sb.WriteString(fmt.Sprintf("⟨%s⟩", s))
	}
	sb.WriteRune(']')
	return sb.String()
}

func (path slotPath[K, V]) last() slot[K, V] {
	if len(path) == 0 {
		return slot[K, V]{}
	}
	return path[len(path)-1]
}

// foldR applies function f on pairs (parent,child) of slots of path.
// Application starts from the right ('R'), which corresponds to the bottom-most item of the path
// (often a leaf of the tree). zero is an element to apply as `child` in the rightmost call
// of f(parent,child). If path is empty, zero will be returned, otherwise the value returned from
// the final call to f will be returned.
func (path slotPath[K, V]) foldR(f func(slot[K, V], slot[K, V]) slot[K, V], zero slot[K, V]) slot[K, V] {
	if len(path) == 0 {
		return zero
	}
	r := zero
	for i := len(path) - 1; i >= 0; i-- {
		r = f(path[i], r)
	}
	return r
}

func (path slotPath[K, V]) dropLast() slotPath[K, V] {
	if len(path) == 0 {
		return path
	}
	return path[:len(path)-1]
}
