package statenet

import (
	"fmt"

	"github.com/google/uuid"
)

// Builder assembles the nodes of a network. A builder is used once: after Build()
// every further call fails with ErrBuilderFinalized.
//
// Builders are not safe for concurrent use.
type Builder struct {
	topo      *topology
	initial   []Value // initial values of input nodes, nil for calculations
	finalized bool
}

// NewBuilder creates a builder for a new network topology.
func NewBuilder(opts ...Option) *Builder {
	conf := defaultConfig
	for _, option := range opts {
		option(&conf)
	}
	return &Builder{topo: newTopology(conf)}
}

// AddInput creates an input node with an initial value and returns its ID.
func (b *Builder) AddInput(initial Value, opts ...NodeOption) (NodeID, error) {
	if b.finalized {
		return NodeID{}, fmt.Errorf("statenet: cannot add input: %w", ErrBuilderFinalized)
	}
	spec := nodeSpec{kind: InputNode}
	if err := b.configure(&spec, opts); err != nil {
		return NodeID{}, err
	}
	b.initial = append(b.initial, initial)
	id := b.topo.add(spec)
	tracer().Debugf("added input node %s (%s) = %v", id, spec.name, initial)
	return id, nil
}

// AddCalculation creates a calculation node. fn will be called with the values of
// deps, in the given order. Every dependency has to be a node previously created
// by this builder, otherwise ErrUnknownNode is returned.
//
// fn is not called before Build().
func (b *Builder) AddCalculation(fn Func, deps []NodeID, opts ...NodeOption) (NodeID, error) {
	if b.finalized {
		return NodeID{}, fmt.Errorf("statenet: cannot add calculation: %w", ErrBuilderFinalized)
	}
	if fn == nil {
		return NodeID{}, fmt.Errorf("statenet: %w: missing function", ErrInvalidCalculation)
	}
	spec := nodeSpec{kind: CalculationNode, fn: fn, deps: make([]int, len(deps))}
	for k, dep := range deps {
		index, err := b.topo.resolve(dep)
		if err != nil {
			return NodeID{}, fmt.Errorf("statenet: dependency %d of calculation: %w", k, err)
		}
		spec.deps[k] = index
	}
	if err := b.configure(&spec, opts); err != nil {
		return NodeID{}, err
	}
	if spec.validate != nil {
		return NodeID{}, fmt.Errorf("statenet: %w: validators apply to input nodes only", ErrInvalidCalculation)
	}
	b.initial = append(b.initial, nil)
	id := b.topo.add(spec)
	tracer().Debugf("added calculation node %s (%s) over %v", id, spec.name, deps)
	return id, nil
}

func (b *Builder) configure(spec *nodeSpec, opts []NodeOption) error {
	for _, option := range opts {
		option(spec)
	}
	if spec.name == "" {
		spec.name = uuid.NewString()
		return nil
	}
	if _, exists := b.topo.names[spec.name]; exists {
		return fmt.Errorf("statenet: %w: %q", ErrDuplicateName, spec.name)
	}
	return nil
}

// Build evaluates every calculation once, in creation order, and returns the initial
// network with nothing staged. If a calculation fails, a *CalculationError is returned
// and no network is produced.
//
// Build finalizes the builder, whether it succeeds or not.
func (b *Builder) Build() (Network, error) {
	if b.finalized {
		return Network{}, fmt.Errorf("statenet: cannot build: %w", ErrBuilderFinalized)
	}
	b.finalized = true
	store := newValueStore(b.topo.conf)
	for index := range b.topo.nodes {
		if b.topo.nodes[index].kind == InputNode {
			store = store.push(b.initial[index])
			continue
		}
		v, err := b.topo.evaluate(index, store) // all dependencies have smaller indices
		if err != nil {
			return Network{}, err
		}
		store = store.push(v)
	}
	assertThat(store.len() == len(b.topo.nodes), "value store out of sync with nodes")
	b.initial = nil
	tracer().Infof("built network with %d nodes", len(b.topo.nodes))
	return Network{
		topo:     b.topo,
		baseline: store,
		staged:   emptyOverlay(b.topo.conf),
	}, nil
}
