package vector

import (
	"fmt"
	"strings"
)

const (
	defaultBits uint32 = 5 // will produce nodes with degree  2 ^ 5 = 32
	maxBits     uint32 = 5
)

type props struct {
	bits   uint32 // number of bits to use per level
	degree uint32 // degree is always 2 ^ bits
	mask   uint32 // mask is degree - 1, i.e. a bit pattern with trailing 1s of length 'bits'
	shift  uint32 // we do not store h(v), but rather bits*h(v)
}

// init fills in defaults for a zero props value. A zero Vector is usable as an
// empty vector, therefore every exported operation calls init first.
func (p props) init() props {
	if p.bits == 0 {
		p.bits = defaultBits
	}
	p.degree = 1 << p.bits
	p.mask = p.degree - 1
	if p.shift == 0 {
		p.shift = p.bits
	}
	return p
}

func (p props) withShift(shift uint32) props {
	p.shift = shift
	return p
}

// vnode is either an inner node (children != nil) or a leaf bucket (leafs != nil).
type vnode[T any] struct {
	children []*vnode[T]
	leafs    []T
}

func emptyNode[T any](k uint32) *vnode[T] {
	return &vnode[T]{
		children: make([]*vnode[T], int(k)),
	}
}

func newLeaf[T any](tail []T) *vnode[T] {
	l := make([]T, len(tail))
	copy(l, tail)
	return &vnode[T]{leafs: l}
}

// clone creates a shallow copy of an inner node. Cloning a nil node results in
// an empty inner node of degree k.
func (node *vnode[T]) clone(k uint32) *vnode[T] {
	if node == nil {
		return emptyNode[T](k)
	}
	n := &vnode[T]{}
	if node.leafs != nil {
		n.leafs = make([]T, len(node.leafs))
		copy(n.leafs, node.leafs)
	}
	if node.children != nil {
		n.children = make([]*vnode[T], len(node.children))
		copy(n.children, node.children)
	}
	return n
}

func (node *vnode[T]) isLeaf() bool {
	return node != nil && node.leafs != nil
}

func cloneTail[T any](tail []T, l int) []T {
	newTail := make([]T, l)
	copy(newTail, tail[:min(l, len(tail))])
	return newTail
}

// newPath wraps node into a chain of inner nodes, so that it sits at the
// bottom of a sub-trie of height level/bits.
func newPath[T any](level, bits, k uint32, node *vnode[T]) *vnode[T] {
	if level == 0 {
		return node
	}
	top := emptyNode[T](k)
	top.children[0] = newPath(level-bits, bits, k, node)
	return top
}

func (node vnode[T]) String() string {
	b := strings.Builder{}
	b.WriteByte('[')
	if node.leafs != nil {
		for i, l := range node.leafs {
			if i > 0 {
				b.WriteByte(',')
			}
			b.WriteString(fmt.Sprintf("%v", l))
		}
	} else {
		for i, c := range node.children {
			if i > 0 {
				b.WriteByte(',')
			}
			if c == nil {
				b.WriteByte('_')
			} else {
				b.WriteString("▪︎")
			}
		}
	}
	b.WriteByte(']')
	return b.String()
}

// ---------------------------------------------------------------------------

func assertThat(that bool, msg string, msgargs ...interface{}) {
	if !that {
		msg = fmt.Sprintf("persistent.vector: "+msg, msgargs...)
		panic(msg)
	}
}

func min(a, b int) int {
	if a < b {
		return a
	}
	return b
}
