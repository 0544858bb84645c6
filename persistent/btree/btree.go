package btree

import "cmp"

/*
Remarks:
--------

- 'cow' stands for copy-on-write and is used throughout the code for variables holding clones of nodes.

- We use a programming-style reminiscent of functional programming (folding over slot paths)
  where it makes things easier to understand.

- A new modified incarnation of a tree always is reflected by a new tree.root.

*/

const defaultDegree uint = 3

// Tree is an in-memory B-tree. An empty instance is usable as an empty tree, i.e.
// this is legal:
//
//     tree := btree.Tree[int,int]{}.With(1, 42)
//
// returning a tree containing a single node ⟨1⟩ associated with value 42.
//
type Tree[K cmp.Ordered, V any] struct {
	root   *xnode[K, V]
	depth  uint
	count  int
	degree uint
}

// Immutable constructs a B-tree with options, if you need any.
// Use it like this:
//
//     tree := btree.Immutable[int, string](Degree(16))
//     tree = tree.With(42, "Galaxy")
//     value, found := tree.Find(42)   // returns "Galaxy"
//
func Immutable[K cmp.Ordered, V any](opts ...Option) Tree[K, V] {
	tree := Tree[K, V]{degree: defaultDegree}
	props := treeProps{degree: defaultDegree}
	for _, option := range opts {
		props = option(props)
	}
	tree.degree = props.degree
	return tree
}

type treeProps struct {
	degree uint
}

// Option is a type to help initializing B-trees at creation time.
type Option func(treeProps) treeProps

// Degree is an option to set the minimum number of children an inner node in the tree owns.
// The lower bound for the degree is 2. A node holds at most 2·degree-1 items.
//
// Use it like this:
//
//     tree := btree.Immutable[int, string](Degree(16))
//
func Degree(n int) Option {
	return func(p treeProps) treeProps {
		p.degree = uint(max(2, n))
		return p
	}
}

// --- API -------------------------------------------------------------------

// Len returns the number of keys in the tree.
func (tree Tree[K, V]) Len() int {
	return tree.count
}

// Find locates a key in a tree, if present, and returns the value associated with the key.
// If `key` is not found, the zero value for type V will be returned, together with found=false.
func (tree Tree[K, V]) Find(key K) (V, bool) {
	var path slotPath[K, V] = make([]slot[K, V], 0, tree.depth)
	var found bool
	if found, path = tree.findKeyAndPath(key, path); found {
		return path.last().item().value, true
	}
	var none V
	return none, false
}

// With returns a copy of a tree with a new key inserted, which is associated with `value`.
// If an entry for key is already present in tree, the associated value will be replaced
// (in a new incarnation of the tree, nevertheless).
func (tree Tree[K, V]) With(key K, value V) Tree[K, V] {
	var path slotPath[K, V] = make([]slot[K, V], 0, tree.depth)
	var found bool
	if found, path = tree.findKeyAndPath(key, path); found {
		return tree.replacing(key, value, path)
	}
	item := xitem[K, V]{key, value}
	if tree.root == nil { // virgin tree => insert first node and return
		root := xnode[K, V]{}.withInsertedItem(item, 0)
		return tree.withRoot(&root, 1, 1)
	}
	leafSlot := path.last()
	assertThat(leafSlot.node.isLeaf(), "attempt to insert item at non-leaf")
	cow := leafSlot.node.withInsertedItem(item, leafSlot.index) // copy-on-write
	tracer().Debugf("insert: created copy of (leaf + key@%d) = %s", leafSlot.index, cow)
	maxItems := tree.maxItems()
	newRoot := path.dropLast().foldR(splitAndClone[K, V](maxItems),
		slot[K, V]{node: &cow, index: leafSlot.index},
	)
	depth := tree.depth
	if newRoot.node.overfull(maxItems) {
		top := xnode[K, V]{children: []*xnode[K, V]{newRoot.node}}
		newRoot = slot[K, V]{node: &top, index: 0}.splitChild(newRoot.node)
		depth++
	}
	tracer().Debugf("insert: new root = %s", newRoot)
	return tree.withRoot(newRoot.node, depth, tree.count+1)
}

// Walk calls f for every key/value pair of tree in ascending key order, until f
// returns false.
func (tree Tree[K, V]) Walk(f func(key K, value V) bool) {
	if tree.root != nil {
		tree.root.walk(f)
	}
}

// Keys returns all keys of tree in ascending order.
func (tree Tree[K, V]) Keys() []K {
	keys := make([]K, 0, tree.count)
	tree.Walk(func(key K, _ V) bool {
		keys = append(keys, key)
		return true
	})
	return keys
}

// Depth returns the height of the tree; an empty tree has depth 0.
func (tree Tree[K, V]) Depth() int {
	return int(tree.depth)
}

func (tree Tree[K, V]) maxItems() int {
	d := tree.degree
	if d == 0 {
		d = defaultDegree
	}
	return int(2*d - 1)
}

func (tree Tree[K, V]) withRoot(root *xnode[K, V], depth uint, count int) Tree[K, V] {
	return Tree[K, V]{
		root:   root,
		depth:  depth,
		count:  count,
		degree: tree.degree,
	}
}
