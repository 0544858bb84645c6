package statenet

// Commit applies all staged values and recomputes every calculation depending on a
// changed input, directly or transitively. It returns the new network, with nothing
// staged, together with the nodes whose value differs from before the commit.
//
// Staged values equal to their committed values are dropped without recomputing
// anything. A calculation which is recomputed but yields a value equal to its old
// one is not reported as changed, and its old value is kept.
//
// Commits are all-or-nothing: if a calculation fails, n is returned unchanged,
// including its staged values, together with a *CalculationError.
func (n Network) Commit() (Network, NodeSet, error) {
	dirty := n.dirty()
	if len(dirty) == 0 {
		return n.Discard(), nil, nil
	}
	affected := n.topo.affected(dirty)
	tracer().Debugf("commit: %d dirty inputs affect %d nodes", len(dirty), len(affected))
	store := n.baseline
	var changed []int
	for _, index := range affected { // ascending indices form a topological order
		spec := &n.topo.nodes[index]
		var v Value
		if spec.kind == InputNode {
			staged, ok := n.staged.find(index).Get()
			assertThat(ok, "dirty input node %d without staged value", index)
			v = staged
		} else {
			var err error
			if v, err = n.topo.evaluate(index, store); err != nil {
				return n, nil, err
			}
		}
		if spec.isEqual(v, n.baseline.get(index)) {
			continue
		}
		store = store.with(index, v)
		changed = append(changed, index)
	}
	tracer().Infof("commit: %d of %d recomputed nodes changed", len(changed), len(affected))
	return Network{
		topo:     n.topo,
		baseline: store,
		staged:   emptyOverlay(n.topo.conf),
	}, n.topo.ids(changed), nil
}
