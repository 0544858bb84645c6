package btree

import (
	"cmp"
	"fmt"
	"sort"
	"strings"
)

// xitem is a key/value pair stored in a node.
type xitem[K cmp.Ordered, V any] struct {
	key   K
	value V
}

// xnode is a node of the tree. Leafs have no children; inner nodes always
// have len(items)+1 children.
type xnode[K cmp.Ordered, V any] struct {
	items    []xitem[K, V]
	children []*xnode[K, V]
}

func (node *xnode[K, V]) isLeaf() bool {
	return len(node.children) == 0
}

func (node *xnode[K, V]) overfull(maxItems int) bool {
	return len(node.items) > maxItems
}

// clone creates a copy of node with fresh backing arrays, leaving children shared.
func (node xnode[K, V]) clone() xnode[K, V] {
	cow := xnode[K, V]{
		items: make([]xitem[K, V], len(node.items)),
	}
	copy(cow.items, node.items)
	if node.children != nil {
		cow.children = make([]*xnode[K, V], len(node.children))
		copy(cow.children, node.children)
	}
	return cow
}

func (node *xnode[K, V]) findSlot(key K) (bool, int) {
	items, itemcnt := node.items, len(node.items)
	slotinx := sort.Search(itemcnt, func(i int) bool {
		return items[i].key >= key // sort.Search will find the smallest i for which this is true
	})
	return slotinx < itemcnt && key == items[slotinx].key, slotinx
}

func (node xnode[K, V]) withReplacedValue(value V, at int) xnode[K, V] {
	assertThat(at < len(node.items), "given item index out of range: %d ≤ %d", len(node.items), at)
	cow := node.clone()
	cow.items[at].value = value
	return cow
}

// withInsertedItem is for leafs only; inner nodes receive items by splitting children.
func (node xnode[K, V]) withInsertedItem(item xitem[K, V], at int) xnode[K, V] {
	assertThat(at <= len(node.items), "given item index out of range: %d < %d", len(node.items), at)
	return xnode[K, V]{items: insertAt(node.items, at, item)}
}

func (node *xnode[K, V]) walk(f func(K, V) bool) bool {
	for i, item := range node.items {
		if !node.isLeaf() && !node.children[i].walk(f) {
			return false
		}
		if !f(item.key, item.value) {
			return false
		}
	}
	if !node.isLeaf() {
		return node.children[len(node.children)-1].walk(f)
	}
	return true
}

func (node xnode[K, V]) String() string {
	var sb strings.Builder
	sb.WriteRune('[')
	for i, item := range node.items {
		if i > 0 {
			sb.WriteRune(',')
		}
		sb.WriteString(fmt.Sprintf("%v", item.key))
	}
	sb.WriteRune(']')
	return sb.String()
}

func (tree Tree[K, V]) findKeyAndPath(key K, pathBuf slotPath[K, V]) (found bool, path slotPath[K, V]) {
	path = pathBuf[:0] // we track the path to the key's slot
	if tree.root == nil {
		return
	}
	var index int
	var node *xnode[K, V] = tree.root // walking nodes, start search at the top
	for !node.isLeaf() {
		found, index = node.findSlot(key)
		path = append(path, slot[K, V]{node: node, index: index})
		if found {
			return // we have an exact match
		}
		node = node.children[index]
	}
	found, index = node.findSlot(key)
	path = append(path, slot[K, V]{node: node, index: index})
	tracer().Debugf("slot path for key=%v -> %s", key, path)
	return
}

func (tree Tree[K, V]) replacing(key K, value V, path slotPath[K, V]) Tree[K, V] {
	assertThat(len(path) > 0, "cannot replace item without path")
	hit := path.last() // slot where `key` lives
	cow := hit.node.withReplacedValue(value, hit.index)
	tracer().Debugf("created copy of node for replacement of %v: %s", key, cow)
	newRoot := path.dropLast().foldR(cloneSeam[K, V], slot[K, V]{node: &cow, index: hit.index})
	return tree.withRoot(newRoot.node, tree.depth, tree.count)
}

func splitAndClone[K cmp.Ordered, V any](maxItems int) func(slot[K, V], slot[K, V]) slot[K, V] {
	return func(parent, child slot[K, V]) slot[K, V] {
		if child.node.overfull(maxItems) {
			tracer().Debugf("child is overfull: %v", child)
			return parent.splitChild(child.node)
		}
		return cloneSeam(parent, child)
	}
}

func cloneSeam[K cmp.Ordered, V any](parent, child slot[K, V]) slot[K, V] {
	cowParent := parent.node.clone()
	cowParent.children[parent.index] = child.node
	return slot[K, V]{node: &cowParent, index: parent.index}
}

// splitChild splits an overfull child node, which replaces the child at parent.index.
// It is not checked if the child is indeed overfull.
// Returns a modified copy of the parent with 2 new children, where the left one substitutes
// the original child.
func (parent slot[K, V]) splitChild(child *xnode[K, V]) slot[K, V] {
	half := len(child.items) / 2
	median := child.items[half]
	siblingL := xnode[K, V]{items: cloneSlice(child.items[:half])}
	siblingR := xnode[K, V]{items: cloneSlice(child.items[half+1:])}
	if !child.isLeaf() {
		siblingL.children = cloneSlice(child.children[:half+1])
		siblingR.children = cloneSlice(child.children[half+1:])
	}
	cow := parent.node.clone()
	cow.items = insertAt(cow.items, parent.index, median)
	cow.children[parent.index] = &siblingL
	cow.children = insertAt(cow.children, parent.index+1, &siblingR)
	assertThat(len(cow.children) == len(cow.items)+1, "internal inconsistency after split")
	return slot[K, V]{node: &cow, index: parent.index}
}

// --- Helpers ---------------------------------------------------------------

func insertAt[S any](s []S, at int, x S) []S {
	r := make([]S, len(s)+1)
	copy(r, s[:at])
	r[at] = x
	copy(r[at+1:], s[at:])
	return r
}

func cloneSlice[S any](s []S) []S {
	r := make([]S, len(s))
	copy(r, s)
	return r
}

func assertThat(that bool, msg string, msgargs ...interface{}) {
	if !that {
		msg = fmt.Sprintf("btree: "+msg, msgargs...)
		panic(msg)
	}
}
