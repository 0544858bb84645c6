package statenet

import (
	"fmt"
	"sort"
	"sync/atomic"
)

// topologySerial hands out a unique serial to every builder, so that node IDs of
// different builders never alias.
var topologySerial atomic.Uint64

// nodeSpec describes a node. Specs are never modified after Build().
type nodeSpec struct {
	kind     Kind
	name     string
	deps     []int // creation indices of dependencies, in declared order
	fn       Func
	equal    Equality
	validate Validator
}

func (spec *nodeSpec) isEqual(a, b Value) bool {
	if spec.equal != nil {
		return spec.equal(a, b)
	}
	return DefaultEquality(a, b)
}

// topology is shared by all networks derived from one builder. It is populated by
// the builder and read-only afterwards.
type topology struct {
	serial     uint64
	nodes      []nodeSpec
	dependents [][]int // reverse dependency index, ascending per node
	names      map[string]int
	conf       config
}

func newTopology(conf config) *topology {
	return &topology{
		serial: topologySerial.Add(1),
		names:  make(map[string]int),
		conf:   conf,
	}
}

func (t *topology) id(index int) NodeID {
	return NodeID{topo: t.serial, index: index}
}

// resolve maps a node ID to its creation index.
func (t *topology) resolve(id NodeID) (int, error) {
	if t == nil || id.topo != t.serial || id.index < 0 || id.index >= len(t.nodes) {
		return -1, fmt.Errorf("statenet: %w: %s", ErrUnknownNode, id)
	}
	return id.index, nil
}

// add appends a node and links it into the reverse dependency index.
func (t *topology) add(spec nodeSpec) NodeID {
	index := len(t.nodes)
	t.nodes = append(t.nodes, spec)
	t.dependents = append(t.dependents, nil)
	for _, d := range spec.deps {
		assertThat(d < index, "dependency %d of node %d is not a predecessor", d, index)
		ds := t.dependents[d]
		if l := len(ds); l > 0 && ds[l-1] == index {
			continue // dependency listed more than once
		}
		t.dependents[d] = append(ds, index)
	}
	t.names[spec.name] = index
	return t.id(index)
}

// affected returns the dirty nodes together with all transitive dependents,
// in ascending order (which is a topological order).
func (t *topology) affected(dirty []int) []int {
	seen := make(map[int]struct{}, len(dirty))
	stack := make([]int, 0, len(dirty))
	for _, i := range dirty {
		if _, ok := seen[i]; !ok {
			seen[i] = struct{}{}
			stack = append(stack, i)
		}
	}
	for len(stack) > 0 {
		i := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		for _, d := range t.dependents[i] {
			if _, ok := seen[d]; !ok {
				seen[d] = struct{}{}
				stack = append(stack, d)
			}
		}
	}
	closure := make([]int, 0, len(seen))
	for i := range seen {
		closure = append(closure, i)
	}
	sort.Ints(closure)
	return closure
}

// evaluate applies the calculation of node index over the values of its dependencies
// in store. Errors and panics of the function are reported as *CalculationError.
func (t *topology) evaluate(index int, store valueStore) (v Value, err error) {
	spec := &t.nodes[index]
	assertThat(spec.kind == CalculationNode, "attempt to evaluate input node %d", index)
	inputs := make([]Value, len(spec.deps))
	for k, d := range spec.deps {
		inputs[k] = store.get(d)
	}
	defer func() {
		if r := recover(); r != nil {
			v = nil
			err = t.calculationError(index, fmt.Errorf("%w: %v", ErrCalculationPanic, r))
		}
	}()
	if v, err = spec.fn(inputs); err != nil {
		return nil, t.calculationError(index, err)
	}
	return v, nil
}

func (t *topology) calculationError(index int, cause error) error {
	tracer().Errorf("calculation of node %d (%s) failed: %v", index, t.nodes[index].name, cause)
	return &CalculationError{
		Node:  t.id(index),
		Name:  t.nodes[index].name,
		Cause: cause,
	}
}

func (t *topology) ids(indices []int) NodeSet {
	if len(indices) == 0 {
		return nil
	}
	set := make(NodeSet, len(indices))
	for k, i := range indices {
		set[k] = t.id(i)
	}
	return set
}
