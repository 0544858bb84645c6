package statenet

import (
	"github.com/npillmayer/statenet/maybe"
	"github.com/npillmayer/statenet/persistent/btree"
	"github.com/npillmayer/statenet/persistent/vector"
)

// valueStore holds the committed value of every node, indexed by creation index.
// Updates share all untouched parts with the original store.
type valueStore struct {
	values vector.Vector[Value]
}

func newValueStore(conf config) valueStore {
	return valueStore{values: vector.Immutable[Value](vector.DegreeExponent(conf.storeBits))}
}

func (s valueStore) get(index int) Value {
	return s.values.Get(index)
}

func (s valueStore) with(index int, v Value) valueStore {
	return valueStore{values: s.values.Set(index, v)}
}

func (s valueStore) push(v Value) valueStore {
	return valueStore{values: s.values.Push(v)}
}

func (s valueStore) len() int {
	return s.values.Len()
}

// overlay holds values staged for input nodes, keyed by creation index.
type overlay struct {
	staged btree.Tree[int, Value]
}

func emptyOverlay(conf config) overlay {
	return overlay{staged: btree.Immutable[int, Value](btree.Degree(conf.overlayDegree))}
}

func (o overlay) with(index int, v Value) overlay {
	return overlay{staged: o.staged.With(index, v)}
}

func (o overlay) find(index int) maybe.Maybe[Value] {
	return maybe.FromPair[Value](o.staged.Find(index))
}

func (o overlay) isEmpty() bool {
	return o.staged.Len() == 0
}

// each iterates over staged values in ascending index order.
func (o overlay) each(f func(index int, v Value) bool) {
	o.staged.Walk(f)
}
