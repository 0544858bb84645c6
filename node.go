package statenet

import (
	"fmt"
	"reflect"
	"sort"
)

// Value is the value of a node. Values are opaque to the network, except for
// being compared with the node's Equality.
type Value = any

// Func calculates the value of a calculation node. inputs holds the values of the
// node's dependencies, in the order they were declared.
//
// Functions have to be pure: they may be re-evaluated at any time and their results
// discarded. A function which panics is treated as if it had returned an error.
type Func func(inputs []Value) (Value, error)

// Equality decides whether two values of a node are to be considered equal.
type Equality func(a, b Value) bool

// Validator checks a value about to be staged for an input node. It may coerce
// the value (e.g., clamp it to a range) or reject it with an error.
type Validator func(v Value) (Value, error)

// DefaultEquality is used for nodes without an explicit Equality.
func DefaultEquality(a, b Value) bool {
	return reflect.DeepEqual(a, b)
}

// Kind tells input nodes from calculation nodes.
type Kind int8

// Kinds of nodes.
const (
	InputNode Kind = iota + 1
	CalculationNode
)

func (k Kind) String() string {
	switch k {
	case InputNode:
		return "input"
	case CalculationNode:
		return "calculation"
	}
	return "undefined"
}

// --- Node IDs --------------------------------------------------------------

// NodeID identifies a node of a network. IDs are issued by a builder in strictly
// increasing order; the order of IDs of one builder is a topological order of its
// nodes. The zero NodeID is never issued.
type NodeID struct {
	topo  uint64 // serial of the topology which issued the ID
	index int    // creation index within the topology
}

// Less orders node IDs. IDs of the same builder are ordered by creation.
func (id NodeID) Less(other NodeID) bool {
	if id.topo != other.topo {
		return id.topo < other.topo
	}
	return id.index < other.index
}

// IsZero is true for the zero NodeID.
func (id NodeID) IsZero() bool {
	return id.topo == 0
}

func (id NodeID) String() string {
	if id.IsZero() {
		return "#?"
	}
	return fmt.Sprintf("#%d", id.index)
}

// NodeSet is a set of node IDs, held in ascending order.
type NodeSet []NodeID

// Contains is true if id is in s.
func (s NodeSet) Contains(id NodeID) bool {
	i := sort.Search(len(s), func(i int) bool { return !s[i].Less(id) })
	return i < len(s) && s[i] == id
}

// Len returns the number of IDs in s.
func (s NodeSet) Len() int {
	return len(s)
}

// --- Node options ----------------------------------------------------------

// NodeOption configures a node when adding it to a builder.
type NodeOption func(*nodeSpec)

// WithName sets a name for a node. Nodes without a name get a random UUID.
func WithName(name string) NodeOption {
	return func(spec *nodeSpec) {
		spec.name = name
	}
}

// WithEquality sets a custom comparison for the values of a node, e.g., a comparison
// with a tolerance for floats.
func WithEquality(eq Equality) NodeOption {
	return func(spec *nodeSpec) {
		spec.equal = eq
	}
}

// WithValidator sets a validator for an input node. Validators are applied to values
// staged with ChangeValue, not to initial values.
func WithValidator(v Validator) NodeOption {
	return func(spec *nodeSpec) {
		spec.validate = v
	}
}
