package statenet

import (
	"fmt"

	"github.com/npillmayer/statenet/maybe"
)

// Network is an immutable version of a network of nodes: a shared topology, the
// committed (baseline) values of all nodes, and values staged for input nodes but
// not yet committed.
//
// Networks are values. None of the operations on a network changes it; operations
// return new networks instead, sharing as much structure as possible with the
// original. The zero Network has no nodes.
type Network struct {
	topo     *topology
	baseline valueStore
	staged   overlay
}

// Len returns the number of nodes in the network.
func (n Network) Len() int {
	if n.topo == nil {
		return 0
	}
	return len(n.topo.nodes)
}

// Value returns the current value of a node: the staged value for an input node
// with a pending change, and the committed value otherwise.
func (n Network) Value(id NodeID) (Value, error) {
	index, err := n.topo.resolve(id)
	if err != nil {
		return nil, err
	}
	return n.value(index), nil
}

func (n Network) value(index int) Value {
	if v, ok := n.staged.find(index).Get(); ok {
		return v
	}
	return n.baseline.get(index)
}

// Baseline returns the committed value of a node, ignoring staged changes.
func (n Network) Baseline(id NodeID) (Value, error) {
	index, err := n.topo.resolve(id)
	if err != nil {
		return nil, err
	}
	return n.baseline.get(index), nil
}

// Staged returns the value staged for a node, if any.
func (n Network) Staged(id NodeID) maybe.Maybe[Value] {
	index, err := n.topo.resolve(id)
	if err != nil {
		return maybe.Nothing[Value]()
	}
	return n.staged.find(index)
}

// ValueOf returns the current value of a node as a value of type T.
func ValueOf[T any](n Network, id NodeID) (T, error) {
	var zero T
	v, err := n.Value(id)
	if err != nil {
		return zero, err
	}
	t, ok := v.(T)
	if !ok {
		return zero, fmt.Errorf("statenet: %w: node %s holds %T, not %T", ErrTypeMismatch, id, v, zero)
	}
	return t, nil
}

// ChangeValue returns a copy of n with value staged for input node id, replacing a
// value staged before. Nothing is recomputed before Commit().
//
// If the node has a validator, the validator's result is staged; if the validator
// rejects the value, an error wrapping ErrInvalidValue is returned.
func (n Network) ChangeValue(id NodeID, value Value) (Network, error) {
	index, err := n.topo.resolve(id)
	if err != nil {
		return n, err
	}
	spec := &n.topo.nodes[index]
	if spec.kind != InputNode {
		return n, fmt.Errorf("statenet: cannot stage value for %s (%s): %w", id, spec.name, ErrNotInputNode)
	}
	if spec.validate != nil {
		if value, err = spec.validate(value); err != nil {
			return n, fmt.Errorf("statenet: %w for node %s (%s): %w", ErrInvalidValue, id, spec.name, err)
		}
	}
	return Network{
		topo:     n.topo,
		baseline: n.baseline,
		staged:   n.staged.with(index, value),
	}, nil
}

// IsConsistent is true if every staged value equals the committed value of its node,
// i.e., if committing would not change anything. The cost is proportional to the
// number of staged values.
func (n Network) IsConsistent() bool {
	consistent := true
	n.staged.each(func(index int, v Value) bool {
		consistent = n.topo.nodes[index].isEqual(v, n.baseline.get(index))
		return consistent
	})
	return consistent
}

// Pending returns the input nodes whose staged value differs from the committed one.
func (n Network) Pending() NodeSet {
	if n.topo == nil {
		return nil
	}
	return n.topo.ids(n.dirty())
}

// dirty lists the creation indices of staged inputs which differ from their
// baseline, in ascending order.
func (n Network) dirty() []int {
	var dirty []int
	n.staged.each(func(index int, v Value) bool {
		if !n.topo.nodes[index].isEqual(v, n.baseline.get(index)) {
			dirty = append(dirty, index)
		}
		return true
	})
	return dirty
}

// Discard returns a copy of n with all staged values dropped.
func (n Network) Discard() Network {
	if n.topo == nil || n.staged.isEmpty() {
		return n
	}
	return Network{
		topo:     n.topo,
		baseline: n.baseline,
		staged:   emptyOverlay(n.topo.conf),
	}
}

// SameTopology is true if n and other derive from the same builder.
func (n Network) SameTopology(other Network) bool {
	return n.topo != nil && n.topo == other.topo
}

// --- Topology --------------------------------------------------------------

// Nodes returns the IDs of all nodes, in creation order.
func (n Network) Nodes() NodeSet {
	if n.topo == nil {
		return nil
	}
	ids := make(NodeSet, len(n.topo.nodes))
	for i := range n.topo.nodes {
		ids[i] = n.topo.id(i)
	}
	return ids
}

// Kind returns whether id is an input or a calculation node.
func (n Network) Kind(id NodeID) (Kind, error) {
	index, err := n.topo.resolve(id)
	if err != nil {
		return 0, err
	}
	return n.topo.nodes[index].kind, nil
}

// Name returns the name of a node.
func (n Network) Name(id NodeID) (string, error) {
	index, err := n.topo.resolve(id)
	if err != nil {
		return "", err
	}
	return n.topo.nodes[index].name, nil
}

// Lookup finds a node by name.
func (n Network) Lookup(name string) (NodeID, bool) {
	if n.topo == nil {
		return NodeID{}, false
	}
	index, ok := n.topo.names[name]
	if !ok {
		return NodeID{}, false
	}
	return n.topo.id(index), true
}

// Dependencies returns the dependencies of a node in declared order. Input nodes have
// no dependencies.
func (n Network) Dependencies(id NodeID) ([]NodeID, error) {
	index, err := n.topo.resolve(id)
	if err != nil {
		return nil, err
	}
	deps := n.topo.nodes[index].deps
	ids := make([]NodeID, len(deps))
	for k, d := range deps {
		ids[k] = n.topo.id(d)
	}
	return ids, nil
}

// Dependents returns the nodes which directly depend on a node.
func (n Network) Dependents(id NodeID) (NodeSet, error) {
	index, err := n.topo.resolve(id)
	if err != nil {
		return nil, err
	}
	return n.topo.ids(n.topo.dependents[index]), nil
}
