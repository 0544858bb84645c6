package vector

import (
	"github.com/npillmayer/statenet/maybe"
)

// Vector is an immutable persistent vector. The zero value is an empty vector
// ready to use:
//
//     var v vector.Vector[string]
//     v = v.Push("hello")
//
type Vector[T any] struct {
	props
	length uint32
	tail   []T
	root   *vnode[T]
}

// Immutable creates an empty vector with options, if you need any.
func Immutable[T any](opts ...Option) Vector[T] {
	v := Vector[T]{}
	for _, option := range opts {
		v.props = option.config(v.props)
	}
	v.props = v.props.init()
	return v
}

// Option is a type to help initializing vectors at creation time.
type Option struct {
	config func(props) props
}

// DegreeExponent is an option to indirectly set the degree of the underlying tree for a vector.
// The degree of the tree will be 2^exp. Accepted exponents are [1…5]; default is 5, i.e.
// a degree of 32.
//
// Use it like this:
//
//     vec := vector.Immutable[int](DegreeExponent(3))
//
func DegreeExponent(n int) Option {
	conf := func(p props) props {
		if n <= 0 {
			n = 1
		} else if n > int(maxBits) {
			n = int(maxBits)
		}
		return props{bits: uint32(n)}.init()
	}
	return Option{config: conf}
}

// --- API -------------------------------------------------------------------

// Len returns the number of items in v.
func (v Vector[T]) Len() int {
	return int(v.length)
}

// Last returns the last item of v, or nothing if v is empty.
func (v Vector[T]) Last() maybe.Maybe[T] {
	if len(v.tail) == 0 {
		return maybe.Nothing[T]()
	}
	return maybe.Just(v.tail[len(v.tail)-1])
}

// Get returns the item at position i. It panics if i is out of range.
func (v Vector[T]) Get(i int) T {
	assertThat(i >= 0 && uint32(i) < v.length, "vector index out of bounds: %d with length %d", i, v.length)
	v.props = v.props.init()
	return v.bucketFor(uint32(i))[uint32(i)&v.mask]
}

func (v Vector[T]) bucketFor(i uint32) []T {
	if i >= v.tailOffset() {
		return v.tail
	}
	node := v.root
	for level := v.shift; level > 0; level -= v.bits {
		node = node.children[(i>>level)&v.mask]
	}
	assertThat(node.isLeaf(), "inconsistency: expected leaf at level 0")
	return node.leafs
}

// Set returns a copy of v with the item at position i replaced by value.
// Only the nodes on the path from the root to the bucket holding i are copied.
// It panics if i is out of range.
func (v Vector[T]) Set(i int, value T) Vector[T] {
	assertThat(i >= 0 && uint32(i) < v.length, "vector index out of bounds: %d with length %d", i, v.length)
	v.props = v.props.init()
	if uint32(i) >= v.tailOffset() {
		newTail := cloneTail(v.tail, len(v.tail))
		newTail[uint32(i)&v.mask] = value
		return Vector[T]{length: v.length, props: v.props, root: v.root, tail: newTail}
	}
	newRoot := v.assoc(v.shift, v.root, uint32(i), value)
	return Vector[T]{length: v.length, props: v.props, root: newRoot, tail: v.tail}
}

func (v Vector[T]) assoc(level uint32, node *vnode[T], i uint32, value T) *vnode[T] {
	cow := node.clone(v.degree) // copy-on-write
	if level == 0 {
		cow.leafs[i&v.mask] = value
		return cow
	}
	subidx := (i >> level) & v.mask
	cow.children[subidx] = v.assoc(level-v.bits, node.children[subidx], i, value)
	return cow
}

// Push returns a copy of v with value appended.
func (v Vector[T]) Push(value T) Vector[T] {
	v.props = v.props.init()
	if v.length-v.tailOffset() < v.degree { // just append value to tail
		newTail := cloneTail(v.tail, len(v.tail)+1)
		newTail[len(newTail)-1] = value
		return Vector[T]{length: v.length + 1, props: v.props, root: v.root, tail: newTail}
	}
	// tail is full ⇒ have to move tail into tree
	tracer().Debugf("vector tail full at length %d, moving it into trie", v.length)
	tailNode := newLeaf(v.tail)
	newTail := []T{value}
	if (v.length >> v.bits) > (1 << v.shift) { // root is full ⇒ trie grows by one level
		newRoot := emptyNode[T](v.degree)
		newRoot.children[0] = v.root
		newRoot.children[1] = newPath(v.shift, v.bits, v.degree, tailNode)
		tracer().Debugf("vector trie grows to shift %d", v.shift+v.bits)
		return Vector[T]{
			length: v.length + 1,
			props:  v.props.withShift(v.shift + v.bits),
			root:   newRoot,
			tail:   newTail,
		}
	}
	newRoot := v.pushTail(v.shift, v.root, tailNode)
	return Vector[T]{length: v.length + 1, props: v.props, root: newRoot, tail: newTail}
}

// pushTail inserts a full tail bucket as the right-most leaf below parent.
func (v Vector[T]) pushTail(level uint32, parent *vnode[T], tailNode *vnode[T]) *vnode[T] {
	subidx := ((v.length - 1) >> level) & v.mask
	cow := parent.clone(v.degree)
	if level == v.bits {
		cow.children[subidx] = tailNode
		return cow
	}
	if child := parent.child(subidx); child != nil {
		cow.children[subidx] = v.pushTail(level-v.bits, child, tailNode)
	} else {
		cow.children[subidx] = newPath(level-v.bits, v.bits, v.degree, tailNode)
	}
	return cow
}

func (node *vnode[T]) child(i uint32) *vnode[T] {
	if node == nil || int(i) >= len(node.children) {
		return nil
	}
	return node.children[i]
}

// Each calls f for every item of v in ascending position, until f returns false.
func (v Vector[T]) Each(f func(i int, value T) bool) {
	v.props = v.props.init()
	for i := uint32(0); i < v.length; {
		bucket := v.bucketFor(i)
		for _, value := range bucket {
			if !f(int(i), value) {
				return
			}
			i++
		}
	}
}

func (v Vector[T]) tailOffset() uint32 {
	if v.length < v.degree {
		return 0
	}
	return ((v.length - 1) >> v.bits) << v.bits
}
